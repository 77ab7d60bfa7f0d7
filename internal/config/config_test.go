package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("APP_ENV", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("port = %s want 8080", cfg.Port)
	}
	if cfg.DatabaseDSN != "lawbill.db" {
		t.Fatalf("dsn = %s want lawbill.db", cfg.DatabaseDSN)
	}
	if cfg.Env != "development" {
		t.Fatalf("env = %s want development", cfg.Env)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_DSN", "postgres://law@localhost/lawbill")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("port = %s want 9090", cfg.Port)
	}
	if cfg.DatabaseDSN != "postgres://law@localhost/lawbill" {
		t.Fatalf("dsn = %s", cfg.DatabaseDSN)
	}
}

func TestParseBool(t *testing.T) {
	t.Setenv("FLAG", "1")
	if !ParseBool("FLAG", false) {
		t.Fatal("FLAG=1 should parse true")
	}
	t.Setenv("FLAG", "false")
	if ParseBool("FLAG", true) {
		t.Fatal("FLAG=false should parse false")
	}
	t.Setenv("FLAG", "maybe")
	if !ParseBool("FLAG", true) {
		t.Fatal("invalid value should fall back to default")
	}
	t.Setenv("FLAG", "")
	if ParseBool("FLAG", false) {
		t.Fatal("unset should fall back to default")
	}
}
