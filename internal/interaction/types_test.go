package interaction

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleCommand is a command interaction as the platform delivers it.
const sampleCommand = `{
	"type": 2,
	"token": "A_UNIQUE_TOKEN",
	"member": {
		"user": {
			"id": 53908232506183680,
			"username": "Mason",
			"avatar": "a_d5efa99b3eeaa7dd43acca82f5692432",
			"discriminator": "1337",
			"public_flags": 131141
		},
		"roles": ["539082325061836999"],
		"premium_since": null,
		"permissions": "2147483647",
		"pending": false,
		"nick": null,
		"mute": false,
		"joined_at": "2017-03-13T19:19:14.040000+00:00",
		"is_pending": false,
		"deaf": false
	},
	"id": "786008729715212338",
	"guild_id": "290926798626357999",
	"data": {
		"options": [{"name": "cardname", "value": "The Gitrog Monster"}],
		"name": "cardsearch",
		"id": "771825006014889984"
	},
	"channel_id": "645027906669510667",
	"version": 1
}`

type cardSearch struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Options []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"options"`
}

func TestEnvelope_DecodeSample(t *testing.T) {
	var env Envelope[cardSearch]
	require.NoError(t, json.Unmarshal([]byte(sampleCommand), &env))

	assert.Equal(t, KindCommand, env.Kind)
	assert.Equal(t, "A_UNIQUE_TOKEN", env.Token)
	assert.Equal(t, Snowflake("290926798626357999"), env.GuildID)
	assert.Equal(t, Snowflake("645027906669510667"), env.ChannelID)
	assert.Equal(t, Snowflake("786008729715212338"), env.ID)
	assert.Equal(t, 1, env.Version)

	require.NotNil(t, env.Data)
	assert.Equal(t, "cardsearch", env.Data.Name)
	require.Len(t, env.Data.Options, 1)
	assert.Equal(t, "The Gitrog Monster", env.Data.Options[0].Value)

	require.NotNil(t, env.Member)
	assert.Equal(t, "Mason", env.Member.User.Username)
	// Numeric ids are kept digit-for-digit.
	assert.Equal(t, Snowflake("53908232506183680"), env.Member.User.ID)
	assert.Nil(t, env.Member.Nick)
	require.NotNil(t, env.Member.JoinedAt)
	assert.Equal(t, 2017, env.Member.JoinedAt.Year())
	assert.Equal(t, time.March, env.Member.JoinedAt.Month())
	assert.True(t, env.Member.HasRole("539082325061836999"))
	assert.False(t, env.Member.HasRole("1"))
}

func TestEnvelope_OptionalFieldsAbsent(t *testing.T) {
	var env Envelope[cardSearch]
	require.NoError(t, json.Unmarshal([]byte(`{"type":1,"token":"t"}`), &env))

	assert.Equal(t, KindHandshake, env.Kind)
	assert.Nil(t, env.Data)
	assert.Nil(t, env.Member)
	assert.Empty(t, env.GuildID)
	assert.Empty(t, env.ChannelID)
}

func TestSnowflake_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Snowflake
		wantErr bool
	}{
		{name: "string", input: `"290926798626357999"`, want: "290926798626357999"},
		{name: "number beyond float precision", input: `18446744073709551615`, want: "18446744073709551615"},
		{name: "null", input: `null`, want: ""},
		{name: "negative number", input: `-1`, wantErr: true},
		{name: "float", input: `1.5`, wantErr: true},
		{name: "bool", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Snowflake
			err := json.Unmarshal([]byte(tt.input), &s)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s)
		})
	}
}

func TestKind(t *testing.T) {
	assert.True(t, KindHandshake.Valid())
	assert.True(t, KindCommand.Valid())
	assert.False(t, Kind(0).Valid())
	assert.False(t, Kind(3).Valid())
	assert.Equal(t, "handshake", KindHandshake.String())
	assert.Equal(t, "command", KindCommand.String())
	assert.Equal(t, "unknown(7)", Kind(7).String())
}

func TestMember_HasRoleNil(t *testing.T) {
	var m *Member
	assert.False(t, m.HasRole("x"))
}
