package cmd

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	sim "github.com/torpedo-sim/torpedo-sim/sim"
)

// Define struct for YAML
type ScenarioFile struct {
	Scenarios map[string]yaml.Node `yaml:"scenarios"`
}

// LoadScenario reads the named scenario from the presets file and returns a
// validated configuration. Scenario values overlay the defaults, so presets
// only need to state what they change. A missing file falls back to the
// defaults only for the "baseline" scenario.
func LoadScenario(path string, name string) (sim.Config, error) {
	cfg := sim.DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && name == "baseline" {
			return cfg, cfg.Validate()
		}
		return sim.Config{}, err
	}

	var file ScenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return sim.Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	node, ok := file.Scenarios[name]
	if !ok {
		names := make([]string, 0, len(file.Scenarios))
		for n := range file.Scenarios {
			names = append(names, n)
		}
		sort.Strings(names)
		return sim.Config{}, fmt.Errorf("scenario %q not found; available: %v", name, names)
	}

	// Decode over the defaults: absent keys keep their default values.
	if err := node.Decode(&cfg); err != nil {
		return sim.Config{}, fmt.Errorf("decoding scenario %q: %w", name, err)
	}

	// Inconsistent scenario values are fatal here, before any tick runs.
	if err := cfg.Validate(); err != nil {
		return sim.Config{}, err
	}
	return cfg, nil
}
