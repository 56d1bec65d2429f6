// Package webhook serves the interaction endpoint the platform posts to.
//
// The HTTP server is a thin shim around Pipeline, which owns the ordering
// every request goes through regardless of how it arrived (HTTP listener or
// the "rolegate invoke" harness).
//
// # Security Model
//
// - Ed25519 signature over X-Signature-Timestamp || raw body, checked before
// any decoding
// - Body size limits enforced before verification
// - No verification details leaked in error responses (always generic 401)
// - Request logging excludes payloads and tokens
//
// # Request Flow
//
//  1. HTTP POST arrives at the configured path
//  2. Body size checked (reject with 413 if too large)
//  3. Signature verified (reject with 401 {"error":"unauthorized"})
//  4. Body dispatched; handshake, command or parse failure
//  5. 200 OK with the JSON reply
//
// # Error Responses
//
// - 401 Unauthorized: invalid or missing signature (no details)
// - 405 Method Not Allowed: anything but POST on the interaction path
// - 413 Payload Too Large: body exceeds max_body_size
// - 500 Internal Server Error: body could not be read
//
// Malformed interaction payloads are not HTTP errors; they are answered with a
// 200 "failed to parse" message so the platform receives its acknowledgement.
package webhook
