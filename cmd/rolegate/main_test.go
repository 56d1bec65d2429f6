package main

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutputWithExitCode(t *testing.T, run func() int) (int, string, string) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe stdout failed: %v", err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe stderr failed: %v", err)
	}

	os.Stdout = stdoutW
	os.Stderr = stderrW

	code := run()

	_ = stdoutW.Close()
	_ = stderrW.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	stdoutBytes, _ := io.ReadAll(stdoutR)
	stderrBytes, _ := io.ReadAll(stderrR)

	_ = stdoutR.Close()
	_ = stderrR.Close()

	return code, string(stdoutBytes), string(stderrBytes)
}

func setVersionMetadataForTest(t *testing.T, v, commit, built string) {
	t.Helper()

	origVersion := version
	origCommit := gitCommit
	origBuildDate := buildDate

	version = v
	gitCommit = commit
	buildDate = built

	t.Cleanup(func() {
		version = origVersion
		gitCommit = origCommit
		buildDate = origBuildDate
	})
}

// writeConfigFixture writes a config using a fresh key pair and returns the
// config path and the hex private key seed.
func writeConfigFixture(t *testing.T) (string, string) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "rolegate.yaml")
	content := `service:
  log_level: error
discord:
  public_key: ` + hex.EncodeToString(pub) + `
  bot_token: test-token
roles:
  names:
    "646518404030922772": Streamer
  safelist: ["646518404030922772"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path, hex.EncodeToString(priv.Seed())
}

func TestRunCLIUnknownCommand(t *testing.T) {
	code, _, stderr := captureOutputWithExitCode(t, func() int {
		return runCLI([]string{"frobnicate"})
	})
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Unknown command: frobnicate")
}

func TestRunCLIHelp(t *testing.T) {
	code, stdout, _ := captureOutputWithExitCode(t, func() int {
		return runCLI([]string{"help"})
	})
	assert.Equal(t, 0, code)
	for _, cmd := range []string{"start", "config check", "config lock", "invoke", "keygen", "version"} {
		assert.Contains(t, stdout, cmd)
	}
}

func TestRunVersionJSONOutputIncludesMetadata(t *testing.T) {
	setVersionMetadataForTest(t, "1.2.3", "0123456789abcdef0123", "2026-01-02T03:04:05+10:00")

	code, stdout, stderr := captureOutputWithExitCode(t, func() int {
		return runCLI([]string{"version", "--json"})
	})
	require.Equal(t, 0, code, "stderr: %s", stderr)

	var got versionInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "1.2.3", got.Version)
	assert.Equal(t, "0123456789ab", got.Commit)
	assert.Equal(t, "2026-01-01T17:04:05Z", got.BuildTime)
}

func TestRunVersionRejectsArgs(t *testing.T) {
	code, _, stderr := captureOutputWithExitCode(t, func() int {
		return runVersion([]string{"extra"})
	})
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Usage: rolegate version")
}

func TestRunKeygenJSON(t *testing.T) {
	code, stdout, _ := captureOutputWithExitCode(t, func() int {
		return runKeygen([]string{"--json"})
	})
	require.Equal(t, 0, code)

	var pair struct {
		PublicKey  string `json:"public_key"`
		PrivateKey string `json:"private_key"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &pair))

	seed, err := hex.DecodeString(pair.PrivateKey)
	require.NoError(t, err)
	priv := ed25519.NewKeyFromSeed(seed)
	assert.Equal(t, pair.PublicKey, hex.EncodeToString(priv.Public().(ed25519.PublicKey)))
}

func TestRunConfigCheck(t *testing.T) {
	path, _ := writeConfigFixture(t)

	code, stdout, stderr := captureOutputWithExitCode(t, func() int {
		return runCLI([]string{"config", "check", "--config", path})
	})
	assert.Equal(t, 0, code, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Configuration valid.")

	code, stdout, _ = captureOutputWithExitCode(t, func() int {
		return runCLI([]string{"config", "check", "--config", path, "--json"})
	})
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, `"valid": true`)
}

func TestRunConfigCheckLoadFailure(t *testing.T) {
	code, _, stderr := captureOutputWithExitCode(t, func() int {
		return runCLI([]string{"config", "check", "--config", filepath.Join(t.TempDir(), "missing.yaml")})
	})
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Config load error")
}

func TestRunConfigLockThenTamper(t *testing.T) {
	path, _ := writeConfigFixture(t)

	code, stdout, stderr := captureOutputWithExitCode(t, func() int {
		return runCLI([]string{"config", "lock", "--config", filepath.Dir(path)})
	})
	require.Equal(t, 0, code, "stderr: %s", stderr)
	assert.Contains(t, stdout, ".checksums")

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteString("# edited\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	code, _, stderr = captureOutputWithExitCode(t, func() int {
		return runCLI([]string{"config", "check", "--config", path})
	})
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Config load error")

	code, _, _ = captureOutputWithExitCode(t, func() int {
		return runCLI([]string{"config", "lock", "--config", path})
	})
	assert.Equal(t, 0, code, "re-locking an edited config should succeed")
}

func TestRunInvoke(t *testing.T) {
	path, seed := writeConfigFixture(t)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
	}{
		{
			name:     "handshake",
			args:     []string{"--handshake"},
			wantCode: 0,
			wantOut:  `{"type":1,"data":null}`,
		},
		{
			name: "role grant",
			args: []string{
				"--command", "role", "--option", "i-want-to-be-a=646518404030922772",
				"--guild", "100", "--user-id", "200", "--username", "corgi", "--dry-run",
			},
			wantCode: 0,
			wantOut:  "corgi has accepted the Streamer role",
		},
		{
			name: "role outside safelist",
			args: []string{
				"--command", "role", "--option", "i-want-to-be-a=1",
				"--guild", "100", "--user-id", "200", "--username", "corgi", "--dry-run",
			},
			wantCode: 0,
			wantOut:  "role 1 cannot be self-assigned",
		},
		{
			name:     "ping",
			args:     []string{"--command", "ping"},
			wantCode: 0,
			wantOut:  "uh, did this work?",
		},
		{
			name:     "unknown command",
			args:     []string{"--command", "dance"},
			wantCode: 0,
			wantOut:  "unknown_command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", path, "--private-key", seed}, tt.args...)
			code, stdout, stderr := captureOutputWithExitCode(t, func() int {
				return runInvoke(args)
			})
			assert.Equal(t, tt.wantCode, code, "stderr: %s", stderr)
			assert.Contains(t, stdout, "status: 200")
			assert.Contains(t, stdout, tt.wantOut)
		})
	}
}

func TestRunInvokeWrongKeyIsUnauthorized(t *testing.T) {
	path, _ := writeConfigFixture(t)
	_, otherSeed := writeConfigFixture(t)

	code, stdout, _ := captureOutputWithExitCode(t, func() int {
		return runInvoke([]string{"--config", path, "--private-key", otherSeed, "--handshake"})
	})
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "status: 401")
	assert.Contains(t, stdout, `{"error":"unauthorized"}`)
}

func TestRunInvokeBodyFile(t *testing.T) {
	path, seed := writeConfigFixture(t)
	bodyPath := filepath.Join(t.TempDir(), "body.json")
	require.NoError(t, os.WriteFile(bodyPath, []byte(`{"type":7}`), 0o600))

	code, stdout, _ := captureOutputWithExitCode(t, func() int {
		return runInvoke([]string{"--config", path, "--private-key", seed, "--body", bodyPath})
	})
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "failed to parse")
}

func TestInvokeOptionsBuildBody(t *testing.T) {
	_, err := invokeOptions{}.buildBody(strings.NewReader(""))
	assert.Error(t, err, "no mode selected")

	_, err = invokeOptions{handshake: true, command: "role"}.buildBody(strings.NewReader(""))
	assert.Error(t, err, "two modes selected")

	_, err = invokeOptions{command: "role", options: []string{"novalue"}}.buildBody(strings.NewReader(""))
	assert.Error(t, err)

	body, err := invokeOptions{bodyPath: "-"}.buildBody(strings.NewReader(`{"type":1}`))
	require.NoError(t, err)
	assert.Equal(t, `{"type":1}`, string(body))

	body, err = invokeOptions{
		command:  "role",
		options:  []string{"i-want-to-be-a=42"},
		guildID:  "7",
		userID:   "8",
		username: "corgi",
	}.buildBody(strings.NewReader(""))
	require.NoError(t, err)

	var env map[string]any
	require.NoError(t, json.Unmarshal(body, &env))
	assert.EqualValues(t, 2, env["type"])
	assert.Equal(t, "7", env["guild_id"])
	data := env["data"].(map[string]any)
	assert.Equal(t, "role", data["name"])
	opt := data["options"].([]any)[0].(map[string]any)
	assert.Equal(t, "i-want-to-be-a", opt["name"])
	assert.Equal(t, "42", opt["value"])
}
