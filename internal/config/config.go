package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageGorm   = "gorm"
	StorageMemory = "memory"
)

type Config struct {
	Port    string
	GinMode string

	Storage     string // gorm, memory
	DBDriver    string // postgres, mysql
	DatabaseURL string

	SessionSecret  string
	AdminUsernames []string

	PostsPerPage int

	PageCacheEnabled bool
	PageCacheTTL     time.Duration
	PageCacheSize    int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MediaRoot   string
	MaxUploadMB int

	LogLevel string
	LogDev   bool
}

// Default returns the configuration used when no variable is set.
func Default() Config {
	return Config{
		Port:             "8080",
		GinMode:          "release",
		Storage:          StorageGorm,
		DBDriver:         "postgres",
		DatabaseURL:      "host=localhost user=postgres password=postgres dbname=yatube port=5432 sslmode=disable",
		SessionSecret:    "secret_key_change_me",
		PostsPerPage:     10,
		PageCacheEnabled: true,
		PageCacheTTL:     20 * time.Second,
		PageCacheSize:    500,
		MediaRoot:        "media",
		MaxUploadMB:      10,
		LogLevel:         "info",
	}
}

// Load reads .env (if present) and the process environment on top of Default.
// The bool result reports whether a .env file was found.
func Load() (Config, bool, error) {
	found := godotenv.Load() == nil
	cfg, err := FromLookup(os.LookupEnv)
	return cfg, found, err
}

// FromLookup builds a Config from an environment lookup function.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	env := envReader{lookup: lookup}

	env.str("PORT", &cfg.Port)
	env.str("GIN_MODE", &cfg.GinMode)
	env.str("STORAGE", &cfg.Storage)
	env.str("DB_DRIVER", &cfg.DBDriver)
	env.str("DATABASE_URL", &cfg.DatabaseURL)
	env.str("SESSION_SECRET", &cfg.SessionSecret)
	env.list("ADMIN_USERNAMES", &cfg.AdminUsernames)
	env.integer("POSTS_PER_PAGE", &cfg.PostsPerPage)
	env.boolean("PAGE_CACHE_ENABLED", &cfg.PageCacheEnabled)
	env.duration("PAGE_CACHE_TTL", &cfg.PageCacheTTL)
	env.integer("PAGE_CACHE_SIZE", &cfg.PageCacheSize)
	env.str("REDIS_ADDR", &cfg.RedisAddr)
	env.str("REDIS_PASSWORD", &cfg.RedisPassword)
	env.integer("REDIS_DB", &cfg.RedisDB)
	env.str("MEDIA_ROOT", &cfg.MediaRoot)
	env.integer("MAX_UPLOAD_MB", &cfg.MaxUploadMB)
	env.str("LOG_LEVEL", &cfg.LogLevel)
	env.boolean("LOG_DEV", &cfg.LogDev)

	if env.err != nil {
		return Config{}, env.err
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Storage {
	case StorageGorm, StorageMemory:
	default:
		return fmt.Errorf("STORAGE must be %q or %q, got %q", StorageGorm, StorageMemory, c.Storage)
	}
	switch c.DBDriver {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or mysql, got %q", c.DBDriver)
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("GIN_MODE must be debug, release or test, got %q", c.GinMode)
	}
	if c.PostsPerPage <= 0 {
		return fmt.Errorf("POSTS_PER_PAGE must be positive, got %d", c.PostsPerPage)
	}
	if c.PageCacheSize <= 0 {
		return fmt.Errorf("PAGE_CACHE_SIZE must be positive, got %d", c.PageCacheSize)
	}
	return nil
}

// IsAdminUsername reports whether username is promoted to admin on signup.
func (c Config) IsAdminUsername(username string) bool {
	for _, name := range c.AdminUsernames {
		if name == username {
			return true
		}
	}
	return false
}

// envReader keeps the first parse error so Load can report it once.
type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *envReader) get(key string) (string, bool) {
	v, ok := r.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (r *envReader) fail(key, value string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid %s=%q: %w", key, value, err)
	}
}

func (r *envReader) str(key string, dst *string) {
	if v, ok := r.get(key); ok {
		*dst = v
	}
}

func (r *envReader) list(key string, dst *[]string) {
	v, ok := r.get(key)
	if !ok {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

func (r *envReader) integer(key string, dst *int) {
	v, ok := r.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v, err)
		return
	}
	*dst = n
}

func (r *envReader) boolean(key string, dst *bool) {
	v, ok := r.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, v, err)
		return
	}
	*dst = b
}

func (r *envReader) duration(key string, dst *time.Duration) {
	v, ok := r.get(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, v, err)
		return
	}
	*dst = d
}
