package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(nil))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, 10, cfg.PostsPerPage)
	require.Equal(t, 20*time.Second, cfg.PageCacheTTL)
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"PORT":               "9000",
		"STORAGE":            "memory",
		"DB_DRIVER":          "mysql",
		"POSTS_PER_PAGE":     "5",
		"PAGE_CACHE_ENABLED": "false",
		"PAGE_CACHE_TTL":     "1m",
		"REDIS_DB":           "3",
		"ADMIN_USERNAMES":    "root, editor ,",
		"LOG_DEV":            "true",
	}))
	require.NoError(t, err)
	require.Equal(t, "9000", cfg.Port)
	require.Equal(t, StorageMemory, cfg.Storage)
	require.Equal(t, "mysql", cfg.DBDriver)
	require.Equal(t, 5, cfg.PostsPerPage)
	require.False(t, cfg.PageCacheEnabled)
	require.Equal(t, time.Minute, cfg.PageCacheTTL)
	require.Equal(t, 3, cfg.RedisDB)
	require.Equal(t, []string{"root", "editor"}, cfg.AdminUsernames)
	require.True(t, cfg.LogDev)
	require.True(t, cfg.IsAdminUsername("editor"))
	require.False(t, cfg.IsAdminUsername("guest"))
}

func TestFromLookup_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "bad int", env: map[string]string{"POSTS_PER_PAGE": "ten"}, want: "POSTS_PER_PAGE"},
		{name: "bad bool", env: map[string]string{"PAGE_CACHE_ENABLED": "maybe"}, want: "PAGE_CACHE_ENABLED"},
		{name: "bad duration", env: map[string]string{"PAGE_CACHE_TTL": "20"}, want: "PAGE_CACHE_TTL"},
		{name: "unknown storage", env: map[string]string{"STORAGE": "files"}, want: "STORAGE"},
		{name: "unknown driver", env: map[string]string{"DB_DRIVER": "sqlite"}, want: "DB_DRIVER"},
		{name: "zero per page", env: map[string]string{"POSTS_PER_PAGE": "0"}, want: "POSTS_PER_PAGE"},
		{name: "unknown gin mode", env: map[string]string{"GIN_MODE": "prod"}, want: "GIN_MODE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromLookup(lookupFrom(tt.env))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}
