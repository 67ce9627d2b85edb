// cmd/slntools/config/settings.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/willibrandon/slntools/textfile"
)

// Settings holds user defaults for the slntools commands.
type Settings struct {
	Verbosity string        `yaml:"verbosity"`
	Color     *bool         `yaml:"color"`
	Swap      SwapSettings  `yaml:"swap"`
	Todos     TodoSettings  `yaml:"todos"`
	Spaces    SpaceSettings `yaml:"spaces"`
}

// SwapSettings configures the swap command.
type SwapSettings struct {
	// TestMarker is inserted into file names when --test redirects writes
	TestMarker string `yaml:"testMarker"`
}

// TodoSettings configures the todos command.
type TodoSettings struct {
	Extensions []string `yaml:"extensions"`
}

// SpaceSettings configures the spaces command.
type SpaceSettings struct {
	TabSize int `yaml:"tabSize"`
}

// New creates Settings with default values.
func New() *Settings {
	return &Settings{
		Verbosity: "normal",
		Swap:      SwapSettings{TestMarker: "test"},
		Todos:     TodoSettings{Extensions: append([]string(nil), textfile.DefaultTodoExtensions...)},
		Spaces:    SpaceSettings{TabSize: textfile.DefaultTabSize},
	}
}

// DefaultPath returns the user settings file location:
// $XDG_CONFIG_HOME/slntools/config.yaml, or the platform config directory.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "slntools", "config.yaml")
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "slntools", "config.yaml")
}

// Load returns the defaults merged with the settings file at path. An empty
// path means DefaultPath, which may be absent; an explicit path must exist.
func Load(path string) (*Settings, error) {
	s := New()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return s, nil
		}
	}

	if err := s.LoadFile(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, err
	}
	return s, nil
}

// LoadFile merges the YAML settings file at path into s.
func (s *Settings) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading settings file: %w", err)
	}

	var loaded Settings
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parsing settings file %s: %w", path, err)
	}

	s.merge(&loaded)
	return nil
}

// merge copies the values set in loaded over s.
func (s *Settings) merge(loaded *Settings) {
	if loaded.Verbosity != "" {
		s.Verbosity = loaded.Verbosity
	}
	if loaded.Color != nil {
		s.Color = loaded.Color
	}
	if loaded.Swap.TestMarker != "" {
		s.Swap.TestMarker = loaded.Swap.TestMarker
	}
	if len(loaded.Todos.Extensions) > 0 {
		s.Todos.Extensions = loaded.Todos.Extensions
	}
	if loaded.Spaces.TabSize > 0 {
		s.Spaces.TabSize = loaded.Spaces.TabSize
	}
}
