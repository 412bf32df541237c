package logger

import (
	"testing"

	"go.uber.org/zap"
)

func TestBuildConfig_ModeSelectsEncoderAndLevel(t *testing.T) {
	t.Parallel()

	prod, err := buildConfig(Options{Mode: "prod"})
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	if prod.Encoding != "json" || prod.Level.Level() != zap.InfoLevel {
		t.Fatalf("prod encoding=%s level=%s, want json info", prod.Encoding, prod.Level.Level())
	}

	dev, err := buildConfig(Options{Mode: "dev"})
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	if dev.Encoding != "console" || dev.Level.Level() != zap.DebugLevel {
		t.Fatalf("dev encoding=%s level=%s, want console debug", dev.Encoding, dev.Level.Level())
	}
}

func TestBuildConfig_LevelOverridesMode(t *testing.T) {
	t.Parallel()

	cfg, err := buildConfig(Options{Mode: "prod", Level: "warn", Process: "worker"})
	if err != nil {
		t.Fatalf("buildConfig: %v", err)
	}
	if cfg.Level.Level() != zap.WarnLevel {
		t.Fatalf("level=%s, want warn", cfg.Level.Level())
	}
	if cfg.InitialFields["process"] != "worker" {
		t.Fatalf("initial fields=%v, want process=worker", cfg.InitialFields)
	}

	if _, err := buildConfig(Options{Level: "loud"}); err == nil {
		t.Fatalf("unknown level accepted")
	}
}
