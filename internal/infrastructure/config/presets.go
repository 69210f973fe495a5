package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AgentPreset is one entry of the optional agents.yaml preset file.
// Presets are the only way to define intercept agents, which are
// non-deletable once seeded.
type AgentPreset struct {
	Name              string `yaml:"name"`
	Avatar            string `yaml:"avatar"`
	SystemInstruction string `yaml:"system_instruction"`
	Intercept         bool   `yaml:"intercept"`
}

type presetFile struct {
	Agents []AgentPreset `yaml:"agents"`
}

// LoadPresets parses an agent preset file. A missing path returns an
// empty list, not an error.
func LoadPresets(path string) ([]AgentPreset, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read agent presets: %w", err)
	}

	var f presetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse agent presets: %w", err)
	}
	return f.Agents, nil
}
