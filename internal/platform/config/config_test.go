// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultimatemercer/identity/internal/platform/config"
)

/*
TestLoad_Defaults checks the development defaults with an empty environment.
*/
func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"ENVIRONMENT", "STORE_DRIVER", "JWT_SECRET", "PASSWORD_HASH_ITERATIONS", "SERVER_PORT",
		"ACCESS_TOKEN_TTL", "RESET_TOKEN_TTL", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "DATABASE_URL",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.ServerPort)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, config.DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 100000, cfg.PasswordHashIterations)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, time.Hour, cfg.ResetTokenTTL)
	assert.True(t, cfg.IsDevelopment())
}

/*
TestLoad_Overrides parses typed values from the environment.
*/
func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/identity.db")
	t.Setenv("PASSWORD_HASH_ITERATIONS", "5000")
	t.Setenv("RESET_TOKEN_TTL", "30m")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "/tmp/identity.db", cfg.SQLitePath)
	assert.Equal(t, 5000, cfg.PasswordHashIterations)
	assert.Equal(t, 30*time.Minute, cfg.ResetTokenTTL)
	assert.False(t, cfg.IsProduction())
}

/*
TestConfig_Validate rejects unsafe or inconsistent settings.
*/
func TestConfig_Validate(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			Environment:            "development",
			StoreDriver:            config.DriverPostgres,
			DatabaseURL:            "postgres://localhost/identity",
			DatabaseMaxConns:       25,
			DatabaseMinConns:       5,
			RedisPoolSize:          10,
			JWTSecret:              "secret",
			PasswordHashIterations: 100000,
			AccessTokenTTL:         time.Minute,
			ResetTokenTTL:          time.Hour,
			RateLimitRPS:           1,
			RateLimitBurst:         1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{"valid", func(c *config.Config) {}, ""},
		{"unknown_environment", func(c *config.Config) { c.Environment = "staging" }, "ENVIRONMENT"},
		{"unknown_driver", func(c *config.Config) { c.StoreDriver = "mysql" }, "STORE_DRIVER"},
		{"sqlite_without_path", func(c *config.Config) { c.StoreDriver = config.DriverSQLite }, "SQLITE_PATH"},
		{"default_secret_in_production", func(c *config.Config) { c.Environment = "production" }, "JWT_SECRET"},
		{"weak_iterations", func(c *config.Config) { c.PasswordHashIterations = 10 }, "PASSWORD_HASH_ITERATIONS"},
		{"zero_rate", func(c *config.Config) { c.RateLimitRPS = 0 }, "RATE_LIMIT_RPS"},
		{"pool_min_above_max", func(c *config.Config) { c.DatabaseMinConns = 30 }, "DATABASE_MIN_CONNS"},
		{"pool_sizing_ignored_for_sqlite", func(c *config.Config) {
			c.StoreDriver, c.SQLitePath, c.DatabaseMaxConns = config.DriverSQLite, "identity.db", 0
		}, ""},
		{"empty_redis_pool", func(c *config.Config) { c.RedisPoolSize = 0 }, "REDIS_POOL_SIZE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
