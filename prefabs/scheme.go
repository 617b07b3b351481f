package prefabs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Scheme is the serialized blueprint of a ship: a tree of modules rooted at
// the cockpit. Mounts maps a mount index on this module to the child placed
// there; the child's MountOn names its own mount index used for the joint.
type Scheme struct {
	Type     string            `yaml:"type" msgpack:"type"`
	X        *float64          `yaml:"x,omitempty" msgpack:"x,omitempty"`
	Y        *float64          `yaml:"y,omitempty" msgpack:"y,omitempty"`
	Angle    float64           `yaml:"angle,omitempty" msgpack:"angle,omitempty"`
	Triggers map[string]string `yaml:"triggers,omitempty" msgpack:"triggers,omitempty"`
	MountOn  *int              `yaml:"mount_on,omitempty" msgpack:"mount_on,omitempty"`
	Mounts   map[int]*Scheme   `yaml:"mounts,omitempty" msgpack:"mounts,omitempty"`
}

// Count returns the number of modules in the tree.
func (s *Scheme) Count() int {
	if s == nil {
		return 0
	}
	n := 1
	for _, child := range s.Mounts {
		n += child.Count()
	}
	return n
}

type Format string

const (
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

var ErrUnknownFormat = errors.New("prefabs: unknown scheme format")

// FormatForPath picks a format from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".msgpack", ".mp":
		return FormatMsgpack, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

func MarshalScheme(s *Scheme, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(s)
	case FormatMsgpack:
		return msgpack.Marshal(s)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func UnmarshalScheme(data []byte, format Format) (*Scheme, error) {
	var s Scheme
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &s)
	case FormatMsgpack:
		err = msgpack.Unmarshal(data, &s)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("prefabs: decode %s scheme: %w", format, err)
	}
	if s.Type == "" {
		return nil, fmt.Errorf("prefabs: decode %s scheme: missing root type", format)
	}
	return &s, nil
}

// LoadScheme reads a scheme from disk, falling back to the embedded copy
// for yaml files.
func LoadScheme(path string) (*Scheme, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if format != FormatYAML {
			return nil, fmt.Errorf("prefabs: load scheme %s: %w", path, err)
		}
		if data, err = Load(filepath.Base(path)); err != nil {
			return nil, fmt.Errorf("prefabs: load scheme %s: %w", path, err)
		}
	}
	return UnmarshalScheme(data, format)
}

func SaveScheme(path string, s *Scheme) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	data, err := MarshalScheme(s, format)
	if err != nil {
		return fmt.Errorf("prefabs: encode scheme %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("prefabs: save scheme %s: %w", path, err)
	}
	return nil
}
