package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// ChecksumFileName is the manifest written next to the config file.
const ChecksumFileName = ".checksums"

// ChecksumManifest records expected BLAKE3 hashes by file basename.
type ChecksumManifest struct {
	Version     int               `yaml:"version"`
	GeneratedAt string            `yaml:"generated_at"`
	Hashes      map[string]string `yaml:"hashes"`
}

// ComputeBlake3Hash computes the BLAKE3 hash of a file.
func ComputeBlake3Hash(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

// VerifyFileHash verifies a file against an expected BLAKE3 hash.
func VerifyFileHash(filePath, expectedHash string) error {
	actualHash, err := ComputeBlake3Hash(filePath)
	if err != nil {
		return fmt.Errorf("failed to compute hash: %w", err)
	}

	if actualHash != expectedHash {
		return fmt.Errorf("hash mismatch for %s: expected %s, got %s",
			filepath.Base(filePath), expectedHash, actualHash)
	}

	return nil
}

// Lock writes a .checksums manifest covering configPath. The config carries
// the bot token, so the manifest lets Load detect edits made outside
// "rolegate config lock".
func Lock(configPath string) (*ChecksumManifest, string, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	hash, err := ComputeBlake3Hash(absPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash %s: %w", absPath, err)
	}

	dir := filepath.Dir(absPath)
	manifest, err := LoadChecksums(dir)
	if err != nil {
		manifest = &ChecksumManifest{Version: 1, Hashes: make(map[string]string)}
	}
	manifest.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	manifest.Hashes[filepath.Base(absPath)] = hash

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal checksums: %w", err)
	}

	checksumPath := filepath.Join(dir, ChecksumFileName)
	// Write with restrictive permissions (contains expected hashes)
	if err := os.WriteFile(checksumPath, data, 0600); err != nil {
		return nil, "", fmt.Errorf("failed to write checksums: %w", err)
	}

	return manifest, checksumPath, nil
}

// LoadChecksums reads the .checksums file from a config directory.
func LoadChecksums(configDir string) (*ChecksumManifest, error) {
	checksumPath := filepath.Join(configDir, ChecksumFileName)

	data, err := os.ReadFile(checksumPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("checksums file not found (run 'rolegate config lock')")
		}
		return nil, fmt.Errorf("failed to read checksums: %w", err)
	}

	var manifest ChecksumManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse checksums: %w", err)
	}

	if manifest.Version != 1 {
		return nil, fmt.Errorf("unsupported checksums version: %d", manifest.Version)
	}
	if manifest.Hashes == nil {
		manifest.Hashes = make(map[string]string)
	}

	return &manifest, nil
}

// verifyConfigHash checks path against the manifest in its directory.
// A missing manifest skips verification; a manifest that does not list the
// file, or lists a different hash, is a hard failure.
func verifyConfigHash(path string) error {
	dir := filepath.Dir(path)
	if _, err := os.Stat(filepath.Join(dir, ChecksumFileName)); os.IsNotExist(err) {
		return nil
	}

	manifest, err := LoadChecksums(dir)
	if err != nil {
		return err
	}

	basename := filepath.Base(path)
	expectedHash, ok := manifest.Hashes[basename]
	if !ok {
		return fmt.Errorf("config file %s has no hash in checksums at %s\n"+
			"Run: rolegate config lock --config %s", basename, dir, path)
	}

	if err := VerifyFileHash(path, expectedHash); err != nil {
		return fmt.Errorf("config verification failed for %s: %w\n"+
			"This indicates tampering or unauthorized modification.\n"+
			"If you edited this file intentionally, run: rolegate config lock --config %s", path, err, path)
	}
	return nil
}
