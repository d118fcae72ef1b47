package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	SnapshotEvery int `env:"FORTRESS_TEST_SNAPSHOT_EVERY" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.SnapshotEvery != 123 {
		t.Fatalf("expected default 123, got %d", cfg.SnapshotEvery)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("FORTRESS_TEST_SNAPSHOT_EVERY", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
