package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/quill/pkg/authhttp"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"QUILL_BASE_URL", "QUILL_STORAGE", "QUILL_DATABASE_FILE", "QUILL_API_TIMEOUT",
		"QUILL_LOGIN_TIMEOUT", "QUILL_REFRESH_PATH", "QUILL_RATE_LIMIT_RPS", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	require.Equal(t, StorageSQLite, cfg.Storage)
	require.Equal(t, "quill.db", cfg.DatabaseFile)
	require.Equal(t, authhttp.DefaultAPITimeout, cfg.APITimeout)
	require.Equal(t, authhttp.DefaultLoginTimeout, cfg.LoginTimeout)
	require.Equal(t, authhttp.DefaultRefreshPath, cfg.RefreshPath)
	require.Zero(t, cfg.RateLimitRPS)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("QUILL_BASE_URL", "https://quill.example.com")
	t.Setenv("QUILL_STORAGE", "Redis")
	t.Setenv("QUILL_API_TIMEOUT", "90")
	t.Setenv("QUILL_LOGIN_TIMEOUT", "30s")
	t.Setenv("QUILL_RATE_LIMIT_RPS", "2.5")
	t.Setenv("QUILL_RATE_LIMIT_BURST", "not-a-number")

	cfg := LoadConfig()
	require.Equal(t, "https://quill.example.com", cfg.BaseURL)
	require.Equal(t, StorageRedis, cfg.Storage)
	require.Equal(t, 90*time.Second, cfg.APITimeout)
	require.Equal(t, 30*time.Second, cfg.LoginTimeout)
	require.InDelta(t, 2.5, cfg.RateLimitRPS, 0.001)
	require.Equal(t, 1, cfg.RateBurst)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := Config{BaseURL: "ftp://nope", Storage: "floppy", APITimeout: time.Second}
	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "http(s)")
	require.Contains(t, err.Error(), "floppy")
	require.Contains(t, err.Error(), "timeouts")
}

func TestSealPassphraseFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seal")
	require.NoError(t, os.WriteFile(path, []byte("hunter2\n"), 0o600))

	got, err := Config{SealKeyFile: path}.sealPassphrase()
	require.NoError(t, err)
	require.Equal(t, "hunter2", got)

	got, err = Config{SealKey: "inline", SealKeyFile: path}.sealPassphrase()
	require.NoError(t, err)
	require.Equal(t, "inline", got)

	_, err = Config{SealKeyFile: filepath.Join(t.TempDir(), "missing")}.sealPassphrase()
	require.Error(t, err)
}
