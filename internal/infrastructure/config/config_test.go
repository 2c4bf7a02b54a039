package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"WIKIBOARD_APP_NAME":                os.Getenv("WIKIBOARD_APP_NAME"),
		"WIKIBOARD_APP_ENV":                 os.Getenv("WIKIBOARD_APP_ENV"),
		"WIKIBOARD_APP_PORT":                os.Getenv("WIKIBOARD_APP_PORT"),
		"WIKIBOARD_DATABASE_HOST":           os.Getenv("WIKIBOARD_DATABASE_HOST"),
		"WIKIBOARD_DATABASE_PORT":           os.Getenv("WIKIBOARD_DATABASE_PORT"),
		"WIKIBOARD_DATABASE_USER":           os.Getenv("WIKIBOARD_DATABASE_USER"),
		"WIKIBOARD_DATABASE_PASSWORD":       os.Getenv("WIKIBOARD_DATABASE_PASSWORD"),
		"WIKIBOARD_DATABASE_DBNAME":         os.Getenv("WIKIBOARD_DATABASE_DBNAME"),
		"WIKIBOARD_DATABASE_SSLMODE":        os.Getenv("WIKIBOARD_DATABASE_SSLMODE"),
		"WIKIBOARD_DATABASE_MAX_OPEN_CONNS": os.Getenv("WIKIBOARD_DATABASE_MAX_OPEN_CONNS"),
		"WIKIBOARD_DATABASE_MAX_IDLE_CONNS": os.Getenv("WIKIBOARD_DATABASE_MAX_IDLE_CONNS"),
		"WIKIBOARD_JWT_SECRET":              os.Getenv("WIKIBOARD_JWT_SECRET"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "wikiboard-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "wikiboard", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Empty(t, cfg.Gamification.Thresholds)
	})

	t.Run("loads values from environment variables with WIKIBOARD prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("WIKIBOARD_APP_NAME", "test-app")
		os.Setenv("WIKIBOARD_APP_ENV", "testing")
		os.Setenv("WIKIBOARD_APP_PORT", "9000")
		os.Setenv("WIKIBOARD_DATABASE_HOST", "testdb.local")
		os.Setenv("WIKIBOARD_DATABASE_PORT", "5433")
		os.Setenv("WIKIBOARD_DATABASE_USER", "testuser")
		os.Setenv("WIKIBOARD_DATABASE_PASSWORD", "testpass")
		os.Setenv("WIKIBOARD_DATABASE_DBNAME", "testdb")
		os.Setenv("WIKIBOARD_DATABASE_SSLMODE", "require")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("WIKIBOARD_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("WIKIBOARD_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("production requires jwt secret", func(t *testing.T) {
		clearEnv()
		os.Setenv("WIKIBOARD_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.example.com",
		Port:     5432,
		User:     "wiki",
		Password: "p@ss/word",
		DBName:   "wikiboard",
		SSLMode:  "require",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.example.com:5432")
	assert.Contains(t, dsn, "sslmode=require")
	// Special characters in the password must be escaped
	assert.NotContains(t, dsn, "p@ss/word")
}
