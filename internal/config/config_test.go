package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MeetingTitle != DefaultMeetingTitle {
		t.Errorf("MeetingTitle = %q, want %q", cfg.MeetingTitle, DefaultMeetingTitle)
	}
	if cfg.Capture != CaptureAuto {
		t.Errorf("Capture = %v, want %v", cfg.Capture, CaptureAuto)
	}
	if cfg.Timing.ProcessingDelay != 1500*time.Millisecond {
		t.Errorf("ProcessingDelay = %v, want 1.5s", cfg.Timing.ProcessingDelay)
	}
	if cfg.Timing.ShareDismiss != 3*time.Second {
		t.Errorf("ShareDismiss = %v, want 3s", cfg.Timing.ShareDismiss)
	}
	if len(cfg.Teams) != len(DefaultTeams) {
		t.Errorf("Teams = %d, want %d", len(cfg.Teams), len(DefaultTeams))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestDefaultTeamsNotAliased(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Teams[0] = "changed"
	if DefaultTeams[0] == "changed" {
		t.Error("DefaultConfig must copy DefaultTeams")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timing.WordInterval != DefaultWordInterval {
		t.Errorf("WordInterval = %v, want %v", cfg.Timing.WordInterval, DefaultWordInterval)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
meeting_title: Quarterly Review
capture: scripted
teams: [Finance, Legal]
timing:
  processing_delay: 2s
  share_dismiss: 4s
log:
  level: debug
  json: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MeetingTitle != "Quarterly Review" {
		t.Errorf("MeetingTitle = %q", cfg.MeetingTitle)
	}
	if cfg.Capture != CaptureScripted {
		t.Errorf("Capture = %v, want scripted", cfg.Capture)
	}
	if len(cfg.Teams) != 2 || cfg.Teams[1] != "Legal" {
		t.Errorf("Teams = %v", cfg.Teams)
	}
	if cfg.Timing.ProcessingDelay != 2*time.Second {
		t.Errorf("ProcessingDelay = %v, want 2s", cfg.Timing.ProcessingDelay)
	}
	if cfg.Timing.ToastDuration != DefaultToastDuration {
		t.Errorf("ToastDuration = %v, want default", cfg.Timing.ToastDuration)
	}
	if !cfg.Log.JSON || cfg.Log.Level != "debug" {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("capture: scripted\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("EXECMIND_CAPTURE", "LIVE")
	t.Setenv("EXECMIND_TEAMS", "Ops, , Sales")
	t.Setenv("EXECMIND_PROCESSING_DELAY", "250ms")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Capture != CaptureLive {
		t.Errorf("Capture = %v, want live", cfg.Capture)
	}
	if len(cfg.Teams) != 2 || cfg.Teams[0] != "Ops" || cfg.Teams[1] != "Sales" {
		t.Errorf("Teams = %v", cfg.Teams)
	}
	if cfg.Timing.ProcessingDelay != 250*time.Millisecond {
		t.Errorf("ProcessingDelay = %v", cfg.Timing.ProcessingDelay)
	}
}

func TestLoadBadEnvDuration(t *testing.T) {
	t.Setenv("EXECMIND_PROCESSING_DELAY", "soon")
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("expected error for unparseable duration")
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capture = "telepathy"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown capture mode")
	}

	cfg = DefaultConfig()
	cfg.Teams = nil
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty teams")
	}

	cfg = DefaultConfig()
	cfg.Timing.ProcessingDelay = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero processing delay")
	}

	cfg = DefaultConfig()
	cfg.Timing.WordLeadIn = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("zero lead-in should be allowed: %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	if got := expandPath("~/x.sock"); got != filepath.Join(home, "x.sock") {
		t.Errorf("expandPath = %q", got)
	}
	if got := expandPath("/abs/x.sock"); got != "/abs/x.sock" {
		t.Errorf("expandPath = %q", got)
	}
}
