// Package transport posts form payloads and file uploads to HTTP endpoints
// that answer with the {msg, data, total} envelope. A non-empty msg is a
// business failure; transport-level failures are reported as *Error.
package transport
