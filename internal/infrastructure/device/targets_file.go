package device

import (
	"fmt"
	"os"

	"medi-cal-assistant/internal/domain/entity"

	"gopkg.in/yaml.v3"
)

type targetFile struct {
	DefaultOffset *entity.Point           `yaml:"default_offset"`
	Targets       map[string]targetRecord `yaml:"targets"`
}

type targetRecord struct {
	X      int           `yaml:"x"`
	Y      int           `yaml:"y"`
	Offset *entity.Point `yaml:"offset"`
}

// LoadTargetTable reads a YAML file and layers it over the built-in table.
// An empty path returns the built-in table.
func LoadTargetTable(path string) (*TargetTable, error) {
	if path == "" {
		return DefaultTargetTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read targets file: %w", err)
	}
	return ParseTargetTable(data)
}

func ParseTargetTable(data []byte) (*TargetTable, error) {
	var f targetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse targets file: %w", err)
	}

	targets := defaultTargets()
	for name, rec := range f.Targets {
		targets[name] = Target{Point: entity.Point{X: rec.X, Y: rec.Y}, Offset: rec.Offset}
	}
	offset := DefaultOffset
	if f.DefaultOffset != nil {
		offset = *f.DefaultOffset
	}
	return NewTargetTable(targets, offset), nil
}
