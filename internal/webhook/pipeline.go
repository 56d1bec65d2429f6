package webhook

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mattjoyce/rolegate/internal/signature"
)

// rejectionBody is the only body sent for a failed signature check.
var rejectionBody = []byte(`{"error":"unauthorized"}`)

// Pipeline runs verify, dispatch and encode for one request.
type Pipeline struct {
	verifier   *signature.Verifier
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewPipeline creates a Pipeline.
func NewPipeline(verifier *signature.Verifier, dispatcher Dispatcher, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{verifier: verifier, dispatcher: dispatcher, logger: logger}
}

// Process verifies req and, when it is authentic, dispatches it. Only an
// authentication failure produces a non-2xx status.
func (p *Pipeline) Process(ctx context.Context, req Request) Response {
	if !p.verifier.VerifyRequest(req.Header, req.Body) {
		p.logger.Warn("interaction signature verification failed")
		return Response{Status: http.StatusUnauthorized, Body: rejectionBody}
	}

	reply := p.dispatcher.Dispatch(ctx, req.Body)
	return Response{Status: http.StatusOK, Body: reply.Encode(p.logger)}
}
