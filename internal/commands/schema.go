package commands

import (
	"bytes"
	"encoding/json"
)

// Command is the name-level view of command data. Raw keeps the full data
// object so the selected handler can decode its own schema.
type Command struct {
	ID   string
	Name string
	Raw  json.RawMessage
}

// UnmarshalJSON reads id and name and retains the raw object.
func (c *Command) UnmarshalJSON(b []byte) error {
	var head struct {
		ID   json.RawMessage `json:"id"`
		Name string          `json:"name"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return err
	}
	c.ID = literal(head.ID)
	c.Name = head.Name
	c.Raw = append(json.RawMessage(nil), b...)
	return nil
}

// RoleCommand is the schema of the "role" command.
type RoleCommand struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Options []Option `json:"options"`
}

// Option is a named command option with a typed value.
type Option struct {
	Name  string          `json:"name"`
	Type  int             `json:"type,omitempty"`
	Value json.RawMessage `json:"value"`
}

// String returns the option value as text. Strings are unquoted and integer
// literals keep their digits. Anything else returns "".
func (o Option) String() string {
	return literal(o.Value)
}

// Find returns the first option named name.
func (c *RoleCommand) Find(name string) (Option, bool) {
	if c == nil {
		return Option{}, false
	}
	for _, opt := range c.Options {
		if opt.Name == name {
			return opt, true
		}
	}
	return Option{}, false
}

func literal(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}
	for _, c := range raw {
		if c < '0' || c > '9' {
			return ""
		}
	}
	return string(raw)
}
