package config

import (
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"APP_PORT", "APP_ENV", "LOG_LEVEL", "CORS_ALLOWED_ORIGINS", "STORE_DRIVER", "MONGO_DATABASE", "JWT_ACCESS_EXPIRATION_TIME", "REDIS_URL", "APP_SHUTDOWN_GRACE", "APP_MONITOR_INTERVAL"} {
		t.Setenv(key, "")
	}
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.App.Port)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.App.AllowedOrigins)
	assert.Equal(t, DriverMongoDB, cfg.Store.Driver)
	assert.Equal(t, "notifications", cfg.Mongo.Database)
	assert.Equal(t, "24h", cfg.JWT.AccessExpiration)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, 10*time.Second, cfg.App.ShutdownGrace)
	assert.Equal(t, time.Minute, cfg.App.MonitorInterval)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("APP_PORT", "8081")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "inbox")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.App.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.App.AllowedOrigins)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://postgres:pw@localhost:5432/inbox?sslmode=disable", cfg.DatabaseURL())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"STORE_DRIVER": "sqlite"}},
		{"bad port", map[string]string{"JWT_SECRET_KEY": "s", "STORE_DRIVER": "sqlite", "APP_PORT": "http"}},
		{"mongo without uri", map[string]string{"JWT_SECRET_KEY": "s"}},
		{"postgres without password", map[string]string{"JWT_SECRET_KEY": "s", "STORE_DRIVER": "postgres"}},
		{"unknown driver", map[string]string{"JWT_SECRET_KEY": "s", "STORE_DRIVER": "cassandra"}},
		{"bad expiration", map[string]string{"JWT_SECRET_KEY": "s", "STORE_DRIVER": "sqlite", "JWT_ACCESS_EXPIRATION_TIME": "1 day"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			for _, key := range []string{"JWT_SECRET_KEY", "STORE_DRIVER", "MONGO_URI", "DB_PASSWORD", "APP_PORT", "JWT_ACCESS_EXPIRATION_TIME"} {
				t.Setenv(key, "")
			}
			for k, v := range c.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDatabaseURL_EscapesCredentials(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "app@notify",
		Password: "p@ss/w:rd?#",
		Name:     "notifications",
		SSLMode:  "require",
	}}

	dsn := cfg.DatabaseURL()

	parsed, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "postgres", parsed.Scheme)
	assert.Equal(t, "app@notify", parsed.User.Username())
	password, ok := parsed.User.Password()
	require.True(t, ok)
	assert.Equal(t, "p@ss/w:rd?#", password)
	assert.Equal(t, "db.internal:5433", parsed.Host)
	assert.Equal(t, "/notifications", parsed.Path)
	assert.Equal(t, "require", parsed.Query().Get("sslmode"))
}
