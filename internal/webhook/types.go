package webhook

import (
	"context"
	"net/http"

	"github.com/mattjoyce/rolegate/internal/interaction"
)

// Dispatcher answers verified interaction bodies.
type Dispatcher interface {
	Dispatch(ctx context.Context, body []byte) interaction.Reply
}

// Config holds interaction server configuration.
type Config struct {
	Listen string

	// Path is the URL path the platform posts interactions to
	Path string

	// MaxBodySize is the maximum allowed request body size in bytes (default: 1MB)
	MaxBodySize int64
}

// Request is a transport-neutral inbound interaction.
type Request struct {
	Header http.Header
	Body   []byte
}

// Response is what the shim writes back.
type Response struct {
	Status int
	Body   []byte
}

// ErrorResponse is the JSON response for rejected requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Default values
const (
	DefaultMaxBodySize = 1048576 // 1 MB
	DefaultPath        = "/interactions"
)
