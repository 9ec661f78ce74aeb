package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// GIVEN: no settlement environment variables
	for _, key := range []string{"APP_PORT", "APP_ENV", "LOG_LEVEL", "DB_DRIVER", "SQLITE_PATH",
		"DATABASE_URL", "SETTLEMENT_POLICY_FILE", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}

	// WHEN: loading
	cfg, err := Load()
	require.NoError(t, err)

	// THEN: defaults apply and validate
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "settlement.db", cfg.Database.SQLitePath)
	assert.Equal(t, []string{"*"}, cfg.App.CORSOrigins)
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_ENV", "Production")
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/settlements")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.CORSOrigins)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("APP_PORT", "eighty")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"postgres without url", Config{App: AppConfig{Port: 8080, LogLevel: "info"}, Database: DatabaseConfig{Driver: DriverPostgres}}},
		{"unknown driver", Config{App: AppConfig{Port: 8080, LogLevel: "info"}, Database: DatabaseConfig{Driver: "mysql"}}},
		{"bad log level", Config{App: AppConfig{Port: 8080, LogLevel: "loud"}, Database: DatabaseConfig{Driver: DriverSQLite, SQLitePath: "x.db"}}},
		{"port out of range", Config{App: AppConfig{Port: 70000, LogLevel: "info"}, Database: DatabaseConfig{Driver: DriverSQLite, SQLitePath: "x.db"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Validate())
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLogLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLogLevel("verbose")
	assert.Error(t, err)
}
