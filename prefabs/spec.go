package prefabs

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

type PointSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type MountSpec struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Angle float64 `yaml:"angle"`
}

// ModuleSpec describes one module kind.
type ModuleSpec struct {
	Kind       string            `yaml:"kind"`
	Mass       float64           `yaml:"mass"`
	Moment     float64           `yaml:"moment"`
	Battery    float64           `yaml:"battery"`
	Editable   bool              `yaml:"editable"`
	Projectile bool              `yaml:"projectile"`
	Geometry   []PointSpec       `yaml:"geometry"`
	Mounts     []MountSpec       `yaml:"mounts"`
	Muzzle     PointSpec         `yaml:"muzzle"`
	Actions    []string          `yaml:"actions"`
	Triggers   map[string]string `yaml:"triggers"`
}

type ModuleCatalog struct {
	Modules []ModuleSpec `yaml:"modules"`
}

// LoadModuleSpecs reads modules.yaml and indexes it by kind.
func LoadModuleSpecs() (map[string]ModuleSpec, error) {
	catalog, err := LoadSpec[ModuleCatalog]("modules.yaml")
	if err != nil {
		return nil, err
	}
	out := make(map[string]ModuleSpec, len(catalog.Modules))
	for _, spec := range catalog.Modules {
		if spec.Kind == "" {
			return nil, fmt.Errorf("prefabs: modules.yaml: module without kind")
		}
		if _, dup := out[spec.Kind]; dup {
			return nil, fmt.Errorf("prefabs: modules.yaml: duplicate kind %q", spec.Kind)
		}
		if len(spec.Geometry) < 3 {
			return nil, fmt.Errorf("prefabs: modules.yaml: %s needs at least 3 vertices, got %d", spec.Kind, len(spec.Geometry))
		}
		if spec.Mass <= 0 {
			return nil, fmt.Errorf("prefabs: modules.yaml: %s mass must be positive", spec.Kind)
		}
		out[spec.Kind] = spec
	}
	return out, nil
}
