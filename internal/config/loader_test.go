package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "conf"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "conf", "global.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	t.Setenv("GUESTLIST_ROOT", root)
	return root
}

func TestLoad_YAMLWithDefaults(t *testing.T) {
	root := writeYAML(t, `
http:
  listen_addr: ":8080"
database:
  driver: sqlite
  dsn: "file:guestlist.db"
session:
  ttl: 48h
`)

	cfg, err := Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.ListenAddr != ":8080" {
		t.Errorf("listen_addr = %q", cfg.HTTP.ListenAddr)
	}
	if cfg.Session.TTL != 48*time.Hour {
		t.Errorf("session ttl = %v, want 48h", cfg.Session.TTL)
	}
	if cfg.Invite.CodeLength != 6 || cfg.Dashboard.RecentLimit != 5 {
		t.Errorf("defaults not applied: %+v %+v", cfg.Invite, cfg.Dashboard)
	}
	if cfg.Paths.Root != root {
		t.Errorf("root = %q, want %q", cfg.Paths.Root, root)
	}
	if Get() != cfg {
		t.Errorf("Get() did not return the cached config")
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	writeYAML(t, `
database:
  driver: mysql
  dsn: "app@tcp(127.0.0.1:3306)/guestlist"
`)
	t.Setenv("GUESTLIST_HTTP__LISTEN_ADDR", "127.0.0.1:9000")
	t.Setenv("GUESTLIST_AUTH__MIN_PASSWORD_LENGTH", "12")

	cfg, err := Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.ListenAddr != "127.0.0.1:9000" {
		t.Errorf("listen_addr = %q", cfg.HTTP.ListenAddr)
	}
	if cfg.Auth.MinPasswordLength != 12 {
		t.Errorf("min_password_length = %d, want 12", cfg.Auth.MinPasswordLength)
	}
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	writeYAML(t, `
database:
  driver: postgres
  dsn: "postgres://localhost"
`)
	if _, err := Load(context.Background(), nil); err == nil {
		t.Fatalf("expected validation error for unknown driver")
	}
}

func TestLoad_ResolvesVaultReferences(t *testing.T) {
	writeYAML(t, `
database:
  driver: mysql
  dsn: "app@tcp(127.0.0.1:3306)/guestlist"
  password: "vault:secret/guestlist#db_password"
`)

	var gotRef string
	resolve := func(_ context.Context, ref string) (string, error) {
		gotRef = ref
		return "s3cret", nil
	}
	cfg, err := Load(context.Background(), resolve)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if gotRef != "secret/guestlist#db_password" {
		t.Errorf("resolver ref = %q", gotRef)
	}
	if cfg.Database.Password != "s3cret" {
		t.Errorf("password = %q, want resolved value", cfg.Database.Password)
	}
}

func TestLoad_VaultReferenceWithoutResolver(t *testing.T) {
	writeYAML(t, `
database:
  driver: mysql
  dsn: "vault:secret/guestlist#dsn"
`)
	if _, err := Load(context.Background(), nil); err == nil {
		t.Fatalf("expected error when no resolver is configured")
	}
}

func TestLoad_ResolverFailure(t *testing.T) {
	writeYAML(t, `
database:
  driver: mysql
  dsn: "app@tcp(127.0.0.1:3306)/guestlist"
  password: "vault:secret/guestlist#db_password"
`)
	boom := errors.New("vault sealed")
	_, err := Load(context.Background(), func(context.Context, string) (string, error) {
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
}
