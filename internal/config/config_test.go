package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_BACKEND", "postgres")
	t.Setenv("DB_DSN", "postgres://localhost/docket")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.IsProduction)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, "courtroom,counsel", cfg.ConflictScopes)
	assert.Equal(t, "fixed", cfg.TimezoneMode)
	assert.Equal(t, 8, cfg.EnrichConcurrency)
	assert.Equal(t, 10*time.Second, cfg.LockTTL)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("SCHEDULER_CONFLICT_SCOPES", "global")
	t.Setenv("SCHEDULER_TIMEZONE_MODE", "iana")
	t.Setenv("JWT_ACCESS_TOKEN_TTL", "1h")
	t.Setenv("RATE_LIMIT_RPS", "0.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction)
	assert.Equal(t, "global", cfg.ConflictScopes)
	assert.Equal(t, "iana", cfg.TimezoneMode)
	assert.Equal(t, time.Hour, cfg.JWTAccessTokenTTL)
	assert.Equal(t, 0.5, cfg.RateLimitRPS)
}

func TestLoadMongoBackend(t *testing.T) {
	t.Setenv("DB_BACKEND", "mongo")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendMongo, cfg.DBBackend)
	assert.Equal(t, "court_docket", cfg.MongoDatabase)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing dsn", map[string]string{"DB_BACKEND": "postgres", "DB_DSN": "", "JWT_SECRET": "s"}},
		{"missing mongo uri", map[string]string{"DB_BACKEND": "mongo", "MONGODB_URI": "", "JWT_SECRET": "s"}},
		{"unknown backend", map[string]string{"DB_BACKEND": "oracle", "JWT_SECRET": "s"}},
		{"missing secret", map[string]string{"DB_BACKEND": "memory", "JWT_SECRET": ""}},
		{"bad ttl", map[string]string{"DB_BACKEND": "memory", "JWT_SECRET": "s", "JWT_ACCESS_TOKEN_TTL": "soon"}},
		{"bad cost", map[string]string{"DB_BACKEND": "memory", "JWT_SECRET": "s", "BCRYPT_COST": "high"}},
		{"bad tz mode", map[string]string{"DB_BACKEND": "memory", "JWT_SECRET": "s", "SCHEDULER_TIMEZONE_MODE": "dst"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
