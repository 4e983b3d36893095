// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON_Success(t *testing.T) {
	// Arrange
	body := `{
		"crypto": {"cipher": "chacha20poly1305"},
		"storage": {
			"db": {
				"driver": "sqlite3",
				"dsn": "file:/tmp/notes.db"
			}
		},
		"server": {
			"http_address": "127.0.0.1:9090",
			"request_timeout": "45s"
		},
		"workers": {"crypto_pool_size": 4}
	}`
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	// Act
	cfg, err := parseJSON(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, CipherChaCha20, cfg.Crypto.Cipher)
	assert.Equal(t, DriverSQLite, cfg.Storage.DB.Driver)
	assert.Equal(t, "file:/tmp/notes.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.HTTPAddress)
	assert.Equal(t, 45*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 4, cfg.Workers.CryptoPoolSize)
}

func TestParseJSON_PartialFields(t *testing.T) {
	body := `{"server": {"http_address": "0.0.0.0:8080"}}`
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := parseJSON(path)

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.HTTPAddress)
	assert.Empty(t, cfg.Crypto.Cipher)
	assert.Zero(t, cfg.Server.RequestTimeout)
}

func TestParseJSON_FileMissing(t *testing.T) {
	cfg, err := parseJSON(filepath.Join(t.TempDir(), "absent.json"))

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestParseJSON_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server": `), 0o600))

	cfg, err := parseJSON(path)

	assert.Error(t, err)
	assert.Nil(t, cfg)
}
