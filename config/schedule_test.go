package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultScheduleIsForbidFloats(t *testing.T) {
	s := Default()
	if !s.ForbidFloats {
		t.Error("default schedule should forbid floats")
	}
	if s.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", s.Version, CurrentVersion)
	}
}

func TestCostOfFallsBackToRegular(t *testing.T) {
	s := Default()
	if got := s.CostOf("i32.add"); got != s.RegularOpCost {
		t.Errorf("CostOf(unlisted) = %d, want RegularOpCost %d", got, s.RegularOpCost)
	}
	if got := s.CostOf("call"); got != s.PerOpCost["call"] {
		t.Errorf("CostOf(call) = %d, want %d", got, s.PerOpCost["call"])
	}
}

func TestHostModuleEnableRoundtrip(t *testing.T) {
	s := &Schedule{}
	if s.HostModuleEnabled(3) {
		t.Fatal("selector 3 should start disabled")
	}
	s.EnableHostModule(3)
	if !s.HostModuleEnabled(3) {
		t.Fatal("selector 3 should be enabled after EnableHostModule")
	}
	if s.HostModuleEnabled(4) {
		t.Fatal("selector 4 should remain disabled")
	}
}

func TestLoadFileMissingYieldsDefaults(t *testing.T) {
	s, err := LoadFile(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Version != CurrentVersion {
		t.Errorf("missing file should yield Default(), got version %d", s.Version)
	}
}

func TestLoadFileMalformedIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("this is not = [valid toml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.toml")
	contents := "RegularOpCost = 7\nMaxStackHeight = 128\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.RegularOpCost != 7 {
		t.Errorf("RegularOpCost = %d, want 7", s.RegularOpCost)
	}
	if s.MaxStackHeight != 128 {
		t.Errorf("MaxStackHeight = %d, want 128", s.MaxStackHeight)
	}
}
