package webhook

import (
	"context"
	"crypto/ed25519"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/mattjoyce/rolegate/internal/interaction"
	"github.com/mattjoyce/rolegate/internal/signature"
)

const testTimestamp = "1617000000"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fixture holds a key pair and a pipeline whose command handler echoes
// the command name.
type fixture struct {
	priv     ed25519.PrivateKey
	pipeline *Pipeline
	calls    int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	f := &fixture{priv: priv}
	type named struct {
		Name string `json:"name"`
	}
	handler := interaction.HandlerFunc[named](func(ctx context.Context, env interaction.Envelope[named]) interaction.Reply {
		f.calls++
		return interaction.Message("ran " + env.Data.Name)
	})
	dispatcher := interaction.NewDispatcher[named](handler, testLogger())
	f.pipeline = NewPipeline(signature.New(pub), dispatcher, testLogger())
	return f
}

func (f *fixture) signedHeader(body []byte) http.Header {
	h := http.Header{}
	h.Set(signature.HeaderSignature, signature.Sign(f.priv, testTimestamp, body))
	h.Set(signature.HeaderTimestamp, testTimestamp)
	return h
}
