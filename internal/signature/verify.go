// Package signature verifies detached Ed25519 signatures on inbound
// interaction requests.
//
// The platform signs the concatenation of the X-Signature-Timestamp header
// bytes and the raw request body. Verification must run over the exact bytes
// received, before any JSON decoding.
package signature

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Header names carrying the detached signature.
const (
	HeaderSignature = "X-Signature-Ed25519"
	HeaderTimestamp = "X-Signature-Timestamp"
)

// ErrInvalidPublicKey is returned when a configured public key cannot be used.
var ErrInvalidPublicKey = errors.New("invalid public key")

// ParsePublicKey decodes a hex-encoded Ed25519 public key.
func ParsePublicKey(hexKey string) (ed25519.PublicKey, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(hexKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: key has %d bytes, want %d", ErrInvalidPublicKey, len(raw), ed25519.PublicKeySize)
	}
	return ed25519.PublicKey(raw), nil
}

// Verifier checks request signatures against a single public key.
// It holds no mutable state and is safe for concurrent use.
type Verifier struct {
	publicKey ed25519.PublicKey
	maxSkew   time.Duration
	now       func() time.Time
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithMaxSkew rejects requests whose timestamp header, read as unix seconds,
// is further than d from the current time. Zero disables the check.
func WithMaxSkew(d time.Duration) Option {
	return func(v *Verifier) { v.maxSkew = d }
}

// WithClock overrides the time source used for skew checks.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

// New creates a Verifier for publicKey.
func New(publicKey ed25519.PublicKey, opts ...Option) *Verifier {
	v := &Verifier{publicKey: publicKey, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify reports whether sigHex is a valid signature of timestamp||body.
//
// A missing signature, timestamp or body is a rejection, never an error.
// The signature must decode to exactly 64 bytes; nothing is padded or
// truncated.
func (v *Verifier) Verify(sigHex, timestamp string, body []byte) bool {
	if v == nil || len(v.publicKey) != ed25519.PublicKeySize {
		return false
	}
	if sigHex == "" || timestamp == "" || len(body) == 0 {
		return false
	}

	sig, err := hex.DecodeString(sigHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}

	if !v.fresh(timestamp) {
		return false
	}

	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	msg = append(msg, body...)

	return ed25519.Verify(v.publicKey, msg, sig)
}

// VerifyRequest reads the signature headers from h and verifies body.
func (v *Verifier) VerifyRequest(h http.Header, body []byte) bool {
	return v.Verify(h.Get(HeaderSignature), h.Get(HeaderTimestamp), body)
}

func (v *Verifier) fresh(timestamp string) bool {
	if v.maxSkew <= 0 {
		return true
	}
	secs, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	delta := v.now().Sub(time.Unix(secs, 0))
	if delta < 0 {
		delta = -delta
	}
	return delta <= v.maxSkew
}

// Sign produces the hex signature the platform would send for timestamp and
// body. Used by the invoke harness and tests.
func Sign(privateKey ed25519.PrivateKey, timestamp string, body []byte) string {
	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	msg = append(msg, body...)
	return hex.EncodeToString(ed25519.Sign(privateKey, msg))
}

// ParsePrivateKey decodes a hex-encoded Ed25519 private key. Both the 32-byte
// seed form and the 64-byte expanded form are accepted.
func ParsePrivateKey(hexKey string) (ed25519.PrivateKey, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(hexKey))
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	switch len(raw) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(raw), nil
	default:
		return nil, fmt.Errorf("private key has %d bytes, want %d or %d", len(raw), ed25519.SeedSize, ed25519.PrivateKeySize)
	}
}
