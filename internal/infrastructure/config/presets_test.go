package config

import (
	"os"
	"path/filepath"
	"testing"
)

// === LoadPresets ===

func TestLoadPresets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.yaml")
	content := `agents:
  - name: Tradutor
    avatar: "🌐"
    system_instruction: Traduza tudo para o inglês.
    intercept: true
  - name: Poeta
    avatar: "🪶"
    system_instruction: Responda em versos.
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	presets, err := LoadPresets(path)
	if err != nil {
		t.Fatalf("LoadPresets: %v", err)
	}
	if len(presets) != 2 {
		t.Fatalf("expected 2 presets, got %d", len(presets))
	}
	if !presets[0].Intercept {
		t.Error("first preset should be intercept")
	}
	if presets[1].Intercept {
		t.Error("second preset should not be intercept")
	}
	if presets[1].SystemInstruction != "Responda em versos." {
		t.Errorf("system instruction: got %q", presets[1].SystemInstruction)
	}
}

func TestLoadPresets_MissingFile(t *testing.T) {
	presets, err := LoadPresets(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if presets != nil {
		t.Errorf("expected nil presets, got %v", presets)
	}
}

func TestLoadPresets_EmptyPath(t *testing.T) {
	presets, err := LoadPresets("")
	if err != nil || presets != nil {
		t.Errorf("empty path should be a no-op, got %v / %v", presets, err)
	}
}

func TestLoadPresets_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.yaml")
	if err := os.WriteFile(path, []byte("agents: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPresets(path); err == nil {
		t.Error("malformed yaml should error")
	}
}
