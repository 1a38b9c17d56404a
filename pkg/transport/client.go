package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// maxBody caps how much of a response body is read.
const maxBody = 8 << 20

// Client posts payloads to envelope endpoints.
type Client struct {
	http     *http.Client
	encoding Encoding
	headers  http.Header
	logger   *zap.Logger
}

// New constructs a Client.
func New(options ...Option) *Client {
	client := &Client{
		http:    &http.Client{Timeout: DefaultTimeout},
		headers: make(http.Header),
		logger:  zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// Submit posts a form payload.
func (c *Client) Submit(ctx context.Context, url string, payload map[string]any) (Response, error) {
	return c.post(ctx, "submit", url, payload)
}

// Fetch posts query parameters to a list endpoint.
func (c *Client) Fetch(ctx context.Context, url string, params map[string]any) (Response, error) {
	return c.post(ctx, "fetch", url, params)
}

func (c *Client) post(ctx context.Context, op, url string, payload map[string]any) (Response, error) {
	var (
		body        []byte
		contentType string
	)
	switch c.encoding {
	case EncodingJSON:
		encoded, err := json.Marshal(payload)
		if err != nil {
			return Response{}, fmt.Errorf("transport: encode payload: %w", err)
		}
		body, contentType = encoded, "application/json"
	default:
		body, contentType = []byte(EncodeForm(payload).Encode()), "application/x-www-form-urlencoded"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("transport: build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	c.logger.Debug("transport request", zap.String("op", op), zap.String("url", url), zap.Int("bytes", len(body)))
	return c.do(req)
}

// FilePart describes a single file to upload.
type FilePart struct {
	// Field is the multipart field name. Defaults to "file".
	Field  string
	Name   string
	Size   int64
	Reader io.Reader
}

// ProgressFunc receives the number of file bytes streamed so far.
type ProgressFunc func(sent, total int64)

// Upload streams one file plus extra form fields as multipart/form-data.
func (c *Client) Upload(ctx context.Context, url string, file FilePart, fields map[string]any, progress ProgressFunc) (Response, error) {
	if file.Reader == nil {
		return Response{}, fmt.Errorf("transport: upload %q: reader is required", file.Name)
	}
	field := file.Field
	if field == "" {
		field = "file"
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		err := writeMultipart(writer, field, file, fields, progress)
		if closeErr := writer.Close(); err == nil {
			err = closeErr
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		pr.Close()
		return Response{}, fmt.Errorf("transport: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.logger.Debug("transport upload", zap.String("url", url), zap.String("file", file.Name), zap.Int64("size", file.Size))
	return c.do(req)
}

func writeMultipart(writer *multipart.Writer, field string, file FilePart, fields map[string]any, progress ProgressFunc) error {
	for key, values := range EncodeForm(fields) {
		for _, value := range values {
			if err := writer.WriteField(key, value); err != nil {
				return err
			}
		}
	}
	part, err := writer.CreateFormFile(field, file.Name)
	if err != nil {
		return err
	}
	reader := file.Reader
	if progress != nil {
		reader = &countingReader{reader: file.Reader, total: file.Size, report: progress}
	}
	_, err = io.Copy(part, reader)
	return err
}

func (c *Client) do(req *http.Request) (Response, error) {
	for key, values := range c.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Accept", "application/json")
	url := req.URL.String()

	resp, err := c.http.Do(req)
	if err != nil {
		classified := classify(url, err)
		c.logger.Warn("transport failed", zap.String("url", url), zap.Stringer("kind", classified.Kind), zap.Error(err))
		return Response{}, classified
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return Response{}, classify(url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("transport status", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return Response{}, &Error{Kind: KindHTTP, URL: url, Status: resp.StatusCode, Err: fmt.Errorf("%s", strings.TrimSpace(string(raw)))}
	}

	var envelope Response
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return Response{}, &Error{Kind: KindDecode, URL: url, Status: resp.StatusCode, Err: err}
		}
	}
	c.logger.Debug("transport response", zap.String("url", url), zap.Bool("failed", envelope.Failed()))
	return envelope, nil
}

type countingReader struct {
	reader io.Reader
	sent   int64
	total  int64
	report ProgressFunc
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		r.sent += int64(n)
		r.report(r.sent, r.total)
	}
	return n, err
}
