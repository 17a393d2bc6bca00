package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nstehr/vimy/vimy-tactics/tactics"
)

func TestLoad_DefaultsMatchTacticsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Tactics != tactics.DefaultConfig() {
		t.Errorf("embedded tactics defaults drifted:\n got %+v\nwant %+v", cfg.Tactics, tactics.DefaultConfig())
	}
	if cfg.Bridge.Socket == "" {
		t.Error("expected a default socket path")
	}
	if cfg.Telemetry.Dir != "" {
		t.Error("telemetry should be disabled by default")
	}
}

func TestLoad_OverlayKeepsUnsetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tactics.yaml")
	overlay := `
log_level: debug
bridge:
  websocket: 127.0.0.1:7788
tactics:
  quantum: 250ms
  close_radius: 3
`
	if err := os.WriteFile(path, []byte(overlay), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Tactics.Quantum != 250*time.Millisecond {
		t.Errorf("quantum = %v", cfg.Tactics.Quantum)
	}
	if cfg.Tactics.CloseRadius != 3 {
		t.Errorf("close_radius = %d", cfg.Tactics.CloseRadius)
	}
	if cfg.Tactics.TrackingRadius != tactics.DefaultConfig().TrackingRadius {
		t.Errorf("tracking_radius should keep its default, got %d", cfg.Tactics.TrackingRadius)
	}
	if cfg.Bridge.Socket == "" || cfg.Bridge.Websocket != "127.0.0.1:7788" {
		t.Errorf("bridge = %+v", cfg.Bridge)
	}
	lvl, err := cfg.Level()
	if err != nil || lvl != slog.LevelDebug {
		t.Errorf("level = %v, %v", lvl, err)
	}
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]string{
		"zero quantum": "tactics:\n  quantum: 0s\n",
		"bad ratio":    "tactics:\n  regroup_ratio: 1.5\n",
		"bad level":    "log_level: loud\n",
		"bad yaml":     "tactics: [\n",
	}
	for name, body := range cases {
		path := filepath.Join(t.TempDir(), "c.yaml")
		os.WriteFile(path, []byte(body), 0o644)
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	cfg, _ := Load("")
	cfg.Tactics.PoisonCooldown = 45 * time.Second
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Tactics.PoisonCooldown != 45*time.Second {
		t.Errorf("poison_cooldown = %v", back.Tactics.PoisonCooldown)
	}
}
