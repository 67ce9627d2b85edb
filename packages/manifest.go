// Package packages reads packages.config manifests and resolves assembly paths in the
// packages.config (V2) folder layout.
package packages

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/willibrandon/slntools/solution"
)

// ManifestFileName is the per-project manifest of installed packages.
const ManifestFileName = "packages.config"

// Package is one <package> entry of a packages.config file.
type Package struct {
	ID              string `xml:"id,attr"`
	Version         string `xml:"version,attr"`
	TargetFramework string `xml:"targetFramework,attr"`
}

// Manifest is a parsed packages.config file.
type Manifest struct {
	XMLName  xml.Name  `xml:"packages"`
	Packages []Package `xml:"package"`

	// Path is the absolute path of the manifest file
	Path string `xml:"-"`
}

// LoadManifest reads the packages.config file at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("package manifest %s: %w", path, solution.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read package manifest: %w", err)
	}

	var m Manifest
	if err := xml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse package manifest %s: %v: %w", path, err, solution.ErrMalformed)
	}

	if abs, err := filepath.Abs(path); err == nil {
		m.Path = abs
	} else {
		m.Path = path
	}

	return &m, nil
}

// LoadManifestFor reads the packages.config file next to a project file.
func LoadManifestFor(projectPath string) (*Manifest, error) {
	return LoadManifest(filepath.Join(filepath.Dir(projectPath), ManifestFileName))
}

// Find returns the package with the given id. Package ids are case-insensitive.
func (m *Manifest) Find(id string) (Package, error) {
	for _, p := range m.Packages {
		if !strings.EqualFold(p.ID, id) {
			continue
		}
		if p.Version == "" || p.TargetFramework == "" {
			return Package{}, fmt.Errorf("package %q in %s has no version or targetFramework: %w", id, m.Path, solution.ErrMalformed)
		}
		return p, nil
	}
	return Package{}, fmt.Errorf("package %q in %s: %w", id, m.Path, solution.ErrNotFound)
}
