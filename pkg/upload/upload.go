package upload

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"maps"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/pkg/pipeline"
	"github.com/goliatone/go-formkit/pkg/transport"
)

// Separator follows the file header in every alert.
const Separator = "----------------------------------------"

const (
	AlertSuccess = "success"
	AlertError   = "error"
)

// Alert is the per-file result shown after an upload.
type Alert struct {
	Type     string   `json:"type"`
	Messages []string `json:"messages"`
}

// File is one file handed to Upload.
type File struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// Session uploads files against a Config and keeps the resulting alerts
// until Close.
type Session struct {
	cfg     Config
	options config

	mu      sync.Mutex
	alerts  []Alert
	visible bool
}

// New validates cfg and returns a session.
func New(cfg Config, opts ...Option) (*Session, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, ErrNoURL
	}
	options := config{
		notifier:       pipeline.NotifierFuncs{},
		logger:         zap.NewNop(),
		sanitizer:      bluemonday.StrictPolicy(),
		networkMessage: pipeline.DefaultNetworkMessage,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if options.uploader == nil {
		options.uploader = transport.New(transport.WithLogger(options.logger))
	}
	return &Session{cfg: cfg, options: options}, nil
}

func (s *Session) Config() Config {
	return s.cfg
}

// Check applies the session's constraints to a file.
func (s *Session) Check(name string, size int64) error {
	return s.cfg.Check(name, size)
}

// Upload sends every accepted file in order. Rejected files are reported
// through the notifier and skipped. The returned alerts cover the files
// that received a response; the error joins rejections and transport
// failures.
func (s *Session) Upload(ctx context.Context, files ...File) ([]Alert, error) {
	if len(files) > 1 && !s.cfg.Multiple {
		return nil, ErrSingleFile
	}
	var (
		alerts []Alert
		errs   []error
	)
	for _, file := range files {
		if err := s.Check(file.Name, file.Size); err != nil {
			s.options.notifier.Error(err.Error())
			s.options.logger.Debug("upload rejected", zap.String("file", file.Name), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		resp, err := s.send(ctx, file)
		if err != nil {
			s.options.notifier.Error(s.options.networkMessage)
			errs = append(errs, fmt.Errorf("upload: %s: %w", file.Name, err))
			continue
		}
		alerts = append(alerts, s.alertFor(file.Name, resp))
	}

	if len(alerts) > 0 {
		s.mu.Lock()
		s.alerts = append(s.alerts, alerts...)
		s.visible = true
		s.mu.Unlock()
	}
	return alerts, errors.Join(errs...)
}

func (s *Session) send(ctx context.Context, file File) (transport.Response, error) {
	fields := make(map[string]any, len(s.cfg.Params)+1)
	maps.Copy(fields, s.cfg.Params)
	fields["size"] = file.Size

	var progress transport.ProgressFunc
	if s.options.onProgress != nil {
		name := file.Name
		progress = func(sent, total int64) {
			s.options.onProgress(Progress{File: name, Sent: sent, Total: total})
		}
	}
	s.options.logger.Debug("upload start", zap.String("file", file.Name), zap.String("url", s.cfg.URL))
	return s.options.uploader.Upload(ctx, s.cfg.URL, transport.FilePart{
		Name:   file.Name,
		Size:   file.Size,
		Reader: file.Reader,
	}, fields, progress)
}

func (s *Session) alertFor(name string, resp transport.Response) Alert {
	alert := Alert{Type: AlertSuccess, Messages: []string{"File: " + s.clean(name), Separator}}
	if !resp.HasData() {
		alert.Type = AlertError
		for _, line := range resp.Msg {
			alert.Messages = append(alert.Messages, s.clean(line))
		}
		return alert
	}
	if line := strings.Join(resp.Msg, " "); line != "" {
		alert.Messages = append(alert.Messages, s.clean(line))
	}
	return alert
}

// clean strips markup from server text. Alerts are plain text: hosts that
// emit HTML escape them on output.
func (s *Session) clean(text string) string {
	return html.UnescapeString(s.options.sanitizer.Sanitize(text))
}

// Alerts returns every alert collected since the last Close.
func (s *Session) Alerts() []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Alert(nil), s.alerts...)
}

// AlertsVisible reports whether at least one upload produced an alert.
func (s *Session) AlertsVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Close hides the alert area and invokes the completion callback.
func (s *Session) Close() {
	s.mu.Lock()
	s.visible = false
	s.alerts = nil
	s.mu.Unlock()
	if s.options.onComplete != nil {
		s.options.onComplete()
	}
}
