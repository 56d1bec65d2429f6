package interaction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/mattjoyce/rolegate/internal/interaction"

// CommandHandler answers command interactions. Implementations must be total:
// missing optional fields produce a descriptive Reply, not an error.
type CommandHandler[T any] interface {
	HandleCommand(ctx context.Context, env Envelope[T]) Reply
}

// HandlerFunc adapts a function to CommandHandler.
type HandlerFunc[T any] func(ctx context.Context, env Envelope[T]) Reply

// HandleCommand calls f.
func (f HandlerFunc[T]) HandleCommand(ctx context.Context, env Envelope[T]) Reply {
	return f(ctx, env)
}

// Dispatcher classifies verified interaction bodies and produces replies.
type Dispatcher[T any] struct {
	handler CommandHandler[T]
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewDispatcher creates a Dispatcher delegating commands to handler.
func NewDispatcher[T any](handler CommandHandler[T], logger *slog.Logger) *Dispatcher[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher[T]{
		handler: handler,
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
	}
}

// Dispatch routes an already-verified body. It always returns a Reply.
func (d *Dispatcher[T]) Dispatch(ctx context.Context, body []byte) Reply {
	ctx, span := d.tracer.Start(ctx, "interaction.dispatch")
	defer span.End()

	var head kindExtractor
	if err := json.Unmarshal(body, &head); err != nil {
		d.logger.Warn("interaction body is not valid JSON", "error", err)
		span.SetAttributes(attribute.String("interaction.outcome", "parse_error"))
		return Message(ParseFailure)
	}
	span.SetAttributes(attribute.String("interaction.kind", head.Kind.String()))

	switch head.Kind {
	case KindHandshake:
		d.logger.Debug("handshake acknowledged")
		return Pong()

	case KindCommand:
		var env Envelope[T]
		if err := json.Unmarshal(body, &env); err != nil {
			d.logger.Warn("command interaction does not match schema", "error", err)
			span.SetAttributes(attribute.String("interaction.outcome", "parse_error"))
			return Message(ParseFailure)
		}
		if env.Token == "" {
			d.logger.Warn("command interaction has no token")
			span.SetAttributes(attribute.String("interaction.outcome", "parse_error"))
			return Message(ParseFailure)
		}
		return d.runHandler(ctx, span, env)

	default:
		d.logger.Warn("unrecognized interaction type", "type", int(head.Kind))
		span.SetAttributes(attribute.String("interaction.outcome", "unrecognized"))
		return Message(ParseFailure)
	}
}

func (d *Dispatcher[T]) runHandler(ctx context.Context, span trace.Span, env Envelope[T]) (reply Reply) {
	if d.handler == nil {
		d.logger.Error("no command handler configured")
		return Message(CommandFailure)
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("command handler panic: %v", r)
			d.logger.Error("command handler panicked", "interaction_id", env.ID.String(), "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "handler panic")
			reply = Message(CommandFailure)
		}
	}()

	reply = d.handler.HandleCommand(ctx, env)
	span.SetAttributes(attribute.Int("interaction.reply_type", int(reply.Kind)))
	return reply
}
