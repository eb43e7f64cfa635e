package config

import (
	"strings"
	"testing"
	"time"
)

func setSupabaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORAGE_PROVIDER", "supabase")
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_API_KEY", "key")
	t.Setenv("SUPABASE_BUCKET", "videos")
}

func TestLoadDefaults(t *testing.T) {
	setSupabaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTPPort != "5000" {
		t.Errorf("expected default port 5000, got %s", cfg.HTTPPort)
	}
	if cfg.RendererBin != "manim" {
		t.Errorf("expected default renderer bin, got %s", cfg.RendererBin)
	}
	if cfg.RendererScene != "ArchitectureDiagram" {
		t.Errorf("expected default scene, got %s", cfg.RendererScene)
	}
	if cfg.StreamIdleTimeout != 30*time.Second {
		t.Errorf("expected 30s idle timeout, got %s", cfg.StreamIdleTimeout)
	}
}

func TestLoadMissingSupabaseVars(t *testing.T) {
	t.Setenv("STORAGE_PROVIDER", "supabase")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_API_KEY", "")
	t.Setenv("SUPABASE_BUCKET", "b")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing storage settings")
	}
	for _, name := range []string{"SUPABASE_URL", "SUPABASE_API_KEY"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error should name %s, got: %v", name, err)
		}
	}
	if strings.Contains(err.Error(), "SUPABASE_BUCKET") {
		t.Errorf("error should not name provided vars, got: %v", err)
	}
}

func TestLoadS3Provider(t *testing.T) {
	t.Setenv("STORAGE_PROVIDER", "s3")
	t.Setenv("S3_ENDPOINT", "http://minio:9000")
	t.Setenv("S3_REGION", "us-east-1")
	t.Setenv("S3_ACCESS_KEY", "ak")
	t.Setenv("S3_SECRET_KEY", "sk")
	t.Setenv("S3_BUCKET", "videos")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.S3Bucket != "videos" {
		t.Errorf("expected bucket videos, got %s", cfg.S3Bucket)
	}
}

func TestLoadUnknownProvider(t *testing.T) {
	t.Setenv("STORAGE_PROVIDER", "ftp")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "unknown storage provider") {
		t.Fatalf("expected unknown provider error, got %v", err)
	}
}

func TestLoadIdleTimeoutOverride(t *testing.T) {
	setSupabaseEnv(t)
	t.Setenv("STREAM_IDLE_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StreamIdleTimeout != 5*time.Second {
		t.Errorf("expected 5s, got %s", cfg.StreamIdleTimeout)
	}

	t.Setenv("STREAM_IDLE_TIMEOUT", "nonsense")
	if _, err := Load(); err == nil {
		t.Error("expected error for invalid idle timeout")
	}
}
