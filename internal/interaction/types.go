package interaction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Kind is the interaction type discriminator.
type Kind int

const (
	KindHandshake Kind = 1
	KindCommand   Kind = 2
)

// Valid reports whether k is a kind this service handles.
func (k Kind) Valid() bool {
	return k == KindHandshake || k == KindCommand
}

func (k Kind) String() string {
	switch k {
	case KindHandshake:
		return "handshake"
	case KindCommand:
		return "command"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Snowflake is an opaque platform identifier. The platform encodes them as
// decimal strings (occasionally bare JSON numbers); both are kept verbatim as
// text so no precision is lost.
type Snowflake string

// UnmarshalJSON accepts a JSON string or an integer literal.
func (s *Snowflake) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = Snowflake(str)
		return nil
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return fmt.Errorf("snowflake: invalid literal %q", b)
		}
	}
	if len(b) == 0 {
		return fmt.Errorf("snowflake: empty literal")
	}
	*s = Snowflake(b)
	return nil
}

func (s Snowflake) String() string { return string(s) }

// Envelope is an inbound interaction. T is the integrator's command schema.
type Envelope[T any] struct {
	ID        Snowflake `json:"id,omitempty"`
	Kind      Kind      `json:"type"`
	Data      *T        `json:"data,omitempty"`
	GuildID   Snowflake `json:"guild_id,omitempty"`
	ChannelID Snowflake `json:"channel_id,omitempty"`
	Member    *Member   `json:"member,omitempty"`
	Token     string    `json:"token"`
	Version   int       `json:"version,omitempty"`
}

// Member is the invoking guild member.
type Member struct {
	User     User       `json:"user"`
	Roles    []string   `json:"roles"`
	Nick     *string    `json:"nick,omitempty"`
	Mute     bool       `json:"mute"`
	Deaf     bool       `json:"deaf"`
	JoinedAt *time.Time `json:"joined_at,omitempty"`
}

// HasRole reports whether the member already holds roleID.
func (m *Member) HasRole(roleID string) bool {
	if m == nil {
		return false
	}
	for _, r := range m.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}

// User is a platform user.
type User struct {
	ID            Snowflake `json:"id"`
	Username      string    `json:"username"`
	Bot           bool      `json:"bot,omitempty"`
	Discriminator string    `json:"discriminator"`
	Avatar        *string   `json:"avatar,omitempty"`
}

// kindExtractor is used for the first decoding phase only.
type kindExtractor struct {
	Kind Kind `json:"type"`
}
