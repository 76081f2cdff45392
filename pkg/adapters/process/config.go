// Package process answers interaction requests by running allow-listed
// external programs, e.g. a scripted opponent or a hardware dice reader.
package process

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/gambit/pkg/domain"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ProcessConfig describes the program answering one interaction type.
type ProcessConfig struct {
	// Type is the interaction type the program answers (e.g. "DiceRoll").
	Type        domain.InteractionType `yaml:"type" json:"type"`
	Command     string                 `yaml:"command" json:"command"`
	Args        []string               `yaml:"args" json:"args"`
	Environment map[string]string      `yaml:"env" json:"env"`
	Description string                 `yaml:"description" json:"description"`
}

// ConfigFile represents the structure of providers.yaml.
type ConfigFile struct {
	Providers []ProcessConfig `yaml:"providers" json:"providers"`
}

// LoadProviders reads a configuration file (YAML or JSON by extension) and
// returns the programs keyed by interaction type. A missing file yields an
// empty map.
func LoadProviders(path string) (map[domain.InteractionType]ProcessConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[domain.InteractionType]ProcessConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read providers config: %w", err)
	}

	var cfg ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	out := make(map[domain.InteractionType]ProcessConfig, len(cfg.Providers))
	for _, p := range cfg.Providers {
		if p.Type == "" || p.Command == "" {
			continue
		}
		out[p.Type] = p
	}
	return out, nil
}
