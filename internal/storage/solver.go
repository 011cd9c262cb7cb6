package storage

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/kepler/internal/kepler"
)

// SaveSolver persists a solver's eccentricity as YAML. Derived tables are
// rebuilt on load.
func SaveSolver(path string, s kepler.Solver) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode solver: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadSolver restores whichever solver the stored eccentricity calls for.
func LoadSolver(path string) (kepler.Solver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var stored struct {
		Eccentricity *float64 `yaml:"eccentricity"`
	}
	if err := yaml.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decode solver %s: %w", path, err)
	}
	if stored.Eccentricity == nil {
		return nil, fmt.Errorf("decode solver %s: missing eccentricity", path)
	}
	return kepler.New(*stored.Eccentricity)
}
