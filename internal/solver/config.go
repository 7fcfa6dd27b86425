package solver

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config selects and parameterizes the MILP solver binary.
//
// Options are solver-native and forwarded verbatim on the command line
// (e.g. ratioGap for CBC, mip_rel_gap for HiGHS). SolveKeywords are
// driver-native: recognized keys are "timelimit" (seconds) and "threads".
type Config struct {
	SolverName     string            `yaml:"solver_name"`
	ExecutablePath string            `yaml:"executable_path"`
	Options        map[string]string `yaml:"options"`
	SolveKeywords  map[string]any    `yaml:"solve_keywords"`
}

// LoadConfig reads a YAML solver configuration file.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Config{}, fmt.Errorf("parse solver config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Default returns the CBC configuration used when no config file is given.
func Default() Config {
	return Config{SolverName: "cbc"}
}

func (c Config) Validate() error {
	switch c.SolverName {
	case "", "cbc", "highs":
		return nil
	}
	return fmt.Errorf("unsupported solver %q (supported: cbc, highs)", c.SolverName)
}

// TimeLimitSeconds reads the "timelimit" solve keyword; 0 means none.
func (c Config) TimeLimitSeconds() float64 {
	return c.keywordFloat("timelimit")
}

// Threads reads the "threads" solve keyword; 0 means solver default.
func (c Config) Threads() int {
	return int(c.keywordFloat("threads"))
}

func (c Config) keywordFloat(key string) float64 {
	v, ok := c.SolveKeywords[key]
	if !ok {
		return 0
	}
	switch x := v.(type) {
	case int:
		return float64(x)
	case float64:
		return x
	}
	return 0
}
