package config

import (
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	configViper := NewViper()
	configViper.Set("editor.signing_secret", "secret")

	cfg, err := Load(configViper)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddress != "0.0.0.0:8080" {
		t.Fatalf("unexpected address %q", cfg.HTTPAddress)
	}
	if cfg.DatabasePath != "folio.db" {
		t.Fatalf("unexpected database path %q", cfg.DatabasePath)
	}
	if cfg.EditorSessionTTL != 720*time.Minute {
		t.Fatalf("unexpected session ttl %v", cfg.EditorSessionTTL)
	}
}

func TestLoadRequiresSigningSecret(t *testing.T) {
	if _, err := Load(NewViper()); err == nil {
		t.Fatal("expected an error without a signing secret")
	}
}

func TestLoadRequiresDatabasePath(t *testing.T) {
	configViper := NewViper()
	configViper.Set("editor.signing_secret", "secret")
	configViper.Set("database.path", "  ")
	if _, err := Load(configViper); err == nil {
		t.Fatal("expected an error for a blank database path")
	}
}
