// Package config loads process-wide configuration from the
// environment. Storage settings are required and validated at startup;
// the service refuses to boot without them.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Config holds all runtime settings.
type Config struct {
	HTTPPort string

	// StorageProvider selects the upload backend: supabase (default),
	// s3, or localfs.
	StorageProvider string

	SupabaseURL    string
	SupabaseAPIKey string
	SupabaseBucket string

	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string

	LocalRoot    string
	LocalBaseURL string

	// CallbackURL, when set, receives a best-effort POST after each
	// successful render.
	CallbackURL string

	// RedisAddr, when set, enables best-effort job status publishing
	// on RedisChannel.
	RedisAddr    string
	RedisChannel string

	RendererBin   string
	RendererScene string

	StreamIdleTimeout time.Duration
}

// Load reads configuration from the environment and validates the
// settings required by the selected storage provider.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:        env("HTTP_PORT", "5000"),
		StorageProvider: env("STORAGE_PROVIDER", "supabase"),

		SupabaseURL:    os.Getenv("SUPABASE_URL"),
		SupabaseAPIKey: os.Getenv("SUPABASE_API_KEY"),
		SupabaseBucket: os.Getenv("SUPABASE_BUCKET"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    os.Getenv("S3_REGION"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    os.Getenv("S3_BUCKET"),

		LocalRoot:    os.Getenv("STORAGE_LOCAL_ROOT"),
		LocalBaseURL: os.Getenv("STORAGE_LOCAL_BASEURL"),

		CallbackURL:  os.Getenv("CALLBACK_URL"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		RedisChannel: env("REDIS_CHANNEL", "render:status"),

		RendererBin:   env("RENDERER_BIN", "manim"),
		RendererScene: env("RENDERER_SCENE", "ArchitectureDiagram"),

		StreamIdleTimeout: 30 * time.Second,
	}

	if raw := os.Getenv("STREAM_IDLE_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid STREAM_IDLE_TIMEOUT %q: %w", raw, err)
		}
		cfg.StreamIdleTimeout = d
	}

	var missing []string
	switch cfg.StorageProvider {
	case "supabase":
		missing = requireAll(map[string]string{
			"SUPABASE_URL":     cfg.SupabaseURL,
			"SUPABASE_API_KEY": cfg.SupabaseAPIKey,
			"SUPABASE_BUCKET":  cfg.SupabaseBucket,
		})
	case "s3":
		missing = requireAll(map[string]string{
			"S3_ENDPOINT":   cfg.S3Endpoint,
			"S3_REGION":     cfg.S3Region,
			"S3_ACCESS_KEY": cfg.S3AccessKey,
			"S3_SECRET_KEY": cfg.S3SecretKey,
			"S3_BUCKET":     cfg.S3Bucket,
		})
	case "localfs":
		missing = requireAll(map[string]string{
			"STORAGE_LOCAL_ROOT":    cfg.LocalRoot,
			"STORAGE_LOCAL_BASEURL": cfg.LocalBaseURL,
		})
	default:
		return Config{}, fmt.Errorf("unknown storage provider: %s", cfg.StorageProvider)
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func env(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func requireAll(vars map[string]string) []string {
	var missing []string
	for key, value := range vars {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}
	// Deterministic order for error messages.
	sort.Strings(missing)
	return missing
}
