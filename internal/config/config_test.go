package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "./data/telecast.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Pretty)
	assert.Empty(t, cfg.MediaSource.BaseURL)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("TELECAST_SERVER_PORT", "9000")
	t.Setenv("TELECAST_LOGGING_LEVEL", "debug")
	t.Setenv("TELECAST_DATABASE_PATH", "/tmp/telecast-test.db")
	t.Setenv("TELECAST_MEDIASOURCE_BASEURL", "http://plex.local:32400")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/tmp/telecast-test.db", cfg.Database.Path)
	assert.Equal(t, "http://plex.local:32400", cfg.MediaSource.BaseURL)
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: 0, ReadTimeout: time.Second},
		Database: DatabaseConfig{Path: "./test.db"},
		Logging:  LoggingConfig{Level: "info"},
	}

	assert.Error(t, cfg.Validate())
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: 8000, ReadTimeout: time.Second},
		Database: DatabaseConfig{Path: "./test.db"},
		Logging:  LoggingConfig{Level: "verbose"},
	}

	assert.Error(t, cfg.Validate())
}

func TestValidate_EmptyDatabasePath(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{Port: 8000, ReadTimeout: time.Second},
		Logging: LoggingConfig{Level: "info"},
	}

	assert.Error(t, cfg.Validate())
}

func TestValidate_Valid(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: 8000, ReadTimeout: 30 * time.Second},
		Database: DatabaseConfig{Path: "./data/telecast.db"},
		Logging:  LoggingConfig{Level: "info"},
	}

	assert.NoError(t, cfg.Validate())
}
