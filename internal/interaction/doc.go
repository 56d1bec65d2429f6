// Package interaction models inbound platform interactions and routes them.
//
// An inbound body is decoded in two phases. The first phase reads only the
// "type" discriminator, so a handshake is acknowledged even when the rest of
// the payload would not decode. Command interactions are then decoded into an
// Envelope whose Data field is typed by the integrator and handed to a
// CommandHandler.
//
// # Request Flow
//
//  1. Signature verified by the caller over the raw body
//  2. Discriminator decoded (invalid JSON replies "failed to parse")
//  3. Handshake answered with a Pong reply, nothing else runs
//  4. Command envelope decoded and passed to the CommandHandler
//  5. Any other discriminator replies "failed to parse"
//
// Every outcome is a Reply. Nothing in this package returns a transport-level
// error for bad input.
package interaction
