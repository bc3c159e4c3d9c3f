package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr())
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.DSN != "database.sqlite" {
		t.Fatalf("unexpected database config %+v", cfg.Database)
	}
	if cfg.Upload.URLPath != "/uploads" {
		t.Fatalf("unexpected upload url path %q", cfg.Upload.URLPath)
	}
	want := []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
	if !reflect.DeepEqual(cfg.Upload.AllowedExtensions, want) {
		t.Fatalf("expected extensions %v, got %v", want, cfg.Upload.AllowedExtensions)
	}
	if cfg.Redis.Enabled {
		t.Fatal("expected redis cache to be disabled by default")
	}
	if cfg.ConfigFile != "" {
		t.Fatalf("expected no config file, got %q", cfg.ConfigFile)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CMSDASH_SERVER_PORT", "9090")
	t.Setenv("CMSDASH_DATABASE_DRIVER", " Postgres ")
	t.Setenv("CMSDASH_UPLOAD_URL_PATH", "media/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port override, got %q", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" {
		t.Fatalf("expected normalized driver, got %q", cfg.Database.Driver)
	}
	if cfg.Upload.URLPath != "/media" {
		t.Fatalf("expected normalized url path, got %q", cfg.Upload.URLPath)
	}
}

func TestLoadReadsConfigFileAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := "server:\n  mode: debug\nupload:\n  allowed_extensions: [\"PNG\", \"jpg\"]\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("CMSDASH_REDIS_ENABLED=true\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("CMSDASH_REDIS_ENABLED") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Mode != "debug" {
		t.Fatalf("expected mode from file, got %q", cfg.Server.Mode)
	}
	if !reflect.DeepEqual(cfg.Upload.AllowedExtensions, []string{".png", ".jpg"}) {
		t.Fatalf("unexpected extensions %v", cfg.Upload.AllowedExtensions)
	}
	if !cfg.Redis.Enabled {
		t.Fatal("expected .env to enable redis")
	}
	if filepath.Base(cfg.ConfigFile) != "config.yaml" {
		t.Fatalf("expected config file to be recorded, got %q", cfg.ConfigFile)
	}
}
