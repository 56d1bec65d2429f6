package interaction

import (
	"encoding/json"
	"log/slog"
)

// ReplyKind mirrors the platform's interaction response types.
type ReplyKind int

const (
	ReplyPong                     ReplyKind = 1
	ReplyAcknowledge              ReplyKind = 2
	ReplyChannelMessage           ReplyKind = 3
	ReplyChannelMessageWithSource ReplyKind = 4
	ReplyAckWithSource            ReplyKind = 5
)

// Reply contents produced by the dispatcher itself.
const (
	ParseFailure   = "failed to parse"
	CommandFailure = "command failed"
)

// fallbackBody is written when a reply cannot be encoded.
var fallbackBody = []byte(`{"type":4,"data":{"tts":false,"content":"internal error"}}`)

// marshal is swapped in tests to exercise the fallback path.
var marshal = json.Marshal

// Reply is the synchronous response to an interaction.
type Reply struct {
	Kind ReplyKind    `json:"type"`
	Data *MessageData `json:"data"`
}

// MessageData is the message attached to a reply.
type MessageData struct {
	TTS     bool   `json:"tts"`
	Content string `json:"content"`
}

// Pong acknowledges a handshake. It never carries data.
func Pong() Reply {
	return Reply{Kind: ReplyPong}
}

// ReplyWith builds a reply of kind with a plain text message.
func ReplyWith(kind ReplyKind, content string) Reply {
	return Reply{
		Kind: kind,
		Data: &MessageData{Content: content},
	}
}

// Message builds a channel message reply shown alongside the user's command.
func Message(content string) Reply {
	return ReplyWith(ReplyChannelMessageWithSource, content)
}

// Content returns the message content, or "" for a reply without data.
func (r Reply) Content() string {
	if r.Data == nil {
		return ""
	}
	return r.Data.Content
}

// Encode serializes r. A failure here is a bug; it is logged and a minimal
// hardcoded body is returned instead so the request still gets a response.
func (r Reply) Encode(logger *slog.Logger) []byte {
	b, err := marshal(r)
	if err != nil {
		if logger != nil {
			logger.Error("failed to encode interaction reply", "type", int(r.Kind), "error", err)
		}
		return fallbackBody
	}
	return b
}
