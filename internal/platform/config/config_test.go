package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"EXPENSES_ADDR", "OPS_ADDR", "REQUEST_TIMEOUT", "SHUTDOWN_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT",
	"AUTH_USERNAME", "AUTH_PASSWORD", "AUTH_PASSWORD_HASH",
	"STORE_BACKEND", "STORE_CONTAINER", "DATABASE_URL", "BOLT_PATH",
	"REDIS_URL", "REDIS_POOL_SIZE", "REDIS_MIN_IDLE_CONNS",
	"REDIS_DIAL_TIMEOUT", "REDIS_READ_TIMEOUT", "REDIS_WRITE_TIMEOUT",
}

// clearEnv blanks every key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTH_USERNAME", "admin")
	t.Setenv("AUTH_PASSWORD", "pw")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, ":9090", cfg.Server.OpsAddr)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "expenses", cfg.Store.Container)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
}

func TestFromEnvValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing credentials",
			env:     map[string]string{},
			wantErr: "AUTH_USERNAME is required",
		},
		{
			name:    "postgres without url",
			env:     map[string]string{"AUTH_USERNAME": "a", "AUTH_PASSWORD": "b", "STORE_BACKEND": "postgres"},
			wantErr: "DATABASE_URL is required",
		},
		{
			name:    "redis without url",
			env:     map[string]string{"AUTH_USERNAME": "a", "AUTH_PASSWORD_HASH": "h", "STORE_BACKEND": "redis"},
			wantErr: "REDIS_URL is required",
		},
		{
			name:    "unknown backend",
			env:     map[string]string{"AUTH_USERNAME": "a", "AUTH_PASSWORD": "b", "STORE_BACKEND": "cosmos"},
			wantErr: `unknown backend "cosmos"`,
		},
		{
			name:    "bad duration",
			env:     map[string]string{"AUTH_USERNAME": "a", "AUTH_PASSWORD": "b", "REQUEST_TIMEOUT": "soon"},
			wantErr: "REQUEST_TIMEOUT",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv only fills variables that are absent, not merely empty
	for _, key := range configKeys {
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("AUTH_PASSWORD", "from-env")

	file := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(file, []byte("AUTH_USERNAME=dotenv-user\nAUTH_PASSWORD=from-file\nSTORE_BACKEND=bolt\n"), 0o600))

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "dotenv-user", cfg.Auth.Username)
	assert.Equal(t, "from-env", cfg.Auth.Password)
	assert.Equal(t, BackendBolt, cfg.Store.Backend)
}

func TestLoadSkipsMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTH_USERNAME", "a")
	t.Setenv("AUTH_PASSWORD", "b")

	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}
