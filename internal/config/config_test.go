// Package config provides tests for configuration loading and validation.
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "mock", cfg.Blob.Backend)
	assert.Equal(t, "Memory", cfg.Model.Class)
	assert.Equal(t, 8080, cfg.Main.Port)
}

func TestLoad_MissingFile_UsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.ini"))
	require.NoError(t, err)
	assert.Equal(t, "FactVault", cfg.Main.Name)
	assert.Equal(t, "mock", cfg.Blob.Backend)
}

func TestLoad_FromINIFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	content := `[main]
name = TestVault
port = 9090
loglevel = debug

[blob]
backend = network
publisher = http://publisher.local
aggregator = http://aggregator.local
epochs = 3
timeout = 10

[model]
class = Database
driver = sqlite3
dsn = vault.db

[ratelimit]
free = 500
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0640))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "TestVault", cfg.Main.Name)
	assert.Equal(t, 9090, cfg.Main.Port)
	assert.Equal(t, "debug", cfg.Main.LogLevel)
	assert.Equal(t, "network", cfg.Blob.Backend)
	assert.Equal(t, "http://publisher.local", cfg.Blob.PublisherURL)
	assert.Equal(t, 3, cfg.Blob.Epochs)
	assert.Equal(t, 10*time.Second, cfg.Blob.Timeout)
	assert.Equal(t, "Database", cfg.Model.Class)
	assert.Equal(t, 500, cfg.RateLimit.Free)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	require.NoError(t, os.WriteFile(path, []byte("[main]\nport = 9090\n"), 0640))

	t.Setenv("FACTVAULT_MAIN_PORT", "7070")
	t.Setenv("FACTVAULT_BLOB_DIR", "/tmp/blobs")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Main.Port)
	assert.Equal(t, "/tmp/blobs", cfg.Blob.Dir)
}

func TestValidate_RejectsUnknownBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Blob.Backend = "s3"
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsUnknownModelClass(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model.Class = "Redis"
	assert.Error(t, cfg.Validate())
}

func TestValidate_NetworkBackendRequiresURLs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Blob.Backend = "network"
	cfg.Blob.PublisherURL = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_DatabaseClassChecksDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model.Class = "Database"
	cfg.Model.Driver = "oracle"
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsBadPort(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Main.Port = 0
	assert.Error(t, cfg.Validate())
}
