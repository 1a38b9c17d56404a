package transport

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single request when no HTTP client is supplied.
const DefaultTimeout = 30 * time.Second

// Encoding selects the request body format for Submit and Fetch.
type Encoding int

const (
	// EncodingForm sends application/x-www-form-urlencoded bodies.
	EncodingForm Encoding = iota
	// EncodingJSON sends application/json bodies.
	EncodingJSON
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithEncoding selects the body encoding.
func WithEncoding(encoding Encoding) Option {
	return func(c *Client) {
		c.encoding = encoding
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Add(key, value)
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}
