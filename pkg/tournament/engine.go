// Package tournament builds and runs fastchess round-robins between
// historical engine binaries.
package tournament

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultEngineName is the bare binary name used when a spec names no version.
const defaultEngineName = "prokopakop"

// ErrBadEngineSpec signals an engine entry that is neither a plain version
// string nor a label/options mapping.
var ErrBadEngineSpec = errors.New("bad engine spec")

// EngineSpec is one tournament participant. In YAML it is either a plain
// scalar (a point identifier resolved against the release directory) or a
// mapping with an optional name, a display label, and UCI options:
//
//	engines:
//	  - 9119428
//	  - label: experiment-18-0
//	    options:
//	      NNUE: train/experiment-18/.../quantised.bin
type EngineSpec struct {
	// Name is the point identifier, or empty for the default binary.
	Name string `yaml:"name"`

	// Label overrides the display name fastchess reports.
	Label string `yaml:"label"`

	// Options are UCI options passed as option.K=V.
	Options map[string]string `yaml:"options"`
}

// UnmarshalYAML accepts both the scalar and the mapping form.
func (e *EngineSpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		e.Name = value.Value

		return nil
	case yaml.MappingNode:
		type plain EngineSpec

		err := value.Decode((*plain)(e))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadEngineSpec, err)
		}

		return nil
	default:
		return fmt.Errorf("%w: expected scalar or mapping, got yaml kind %d", ErrBadEngineSpec, value.Kind)
	}
}

// DisplayName is the label when set, the name otherwise, and the default
// binary name when both are empty.
func (e EngineSpec) DisplayName() string {
	if e.Label != "" {
		return e.Label
	}

	if e.Name != "" {
		return e.Name
	}

	return defaultEngineName
}

// enginesFile is the on-disk roster shape.
type enginesFile struct {
	Engines []EngineSpec `yaml:"engines"`
}

// LoadEngines reads the tournament roster from a YAML file.
func LoadEngines(path string) ([]EngineSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read engines file: %w", err)
	}

	var file enginesFile

	unmarshalErr := yaml.Unmarshal(data, &file)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("parse engines file: %w", unmarshalErr)
	}

	if len(file.Engines) == 0 {
		return nil, fmt.Errorf("%w: engines file lists no engines", ErrBadEngineSpec)
	}

	return file.Engines, nil
}
