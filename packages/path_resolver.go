package packages

import (
	"fmt"
	"path/filepath"
)

// PackagesFolderName is the folder next to the solution holding restored packages.
const PackagesFolderName = "packages"

// PathResolver resolves paths for the V2 (packages.config) layout.
type PathResolver struct {
	root string
}

// NewPathResolver creates a resolver rooted at the given packages folder.
func NewPathResolver(root string) *PathResolver {
	return &PathResolver{root: root}
}

// NewSolutionPathResolver creates a resolver for the packages folder of the solution at slnPath.
func NewSolutionPathResolver(slnPath string) *PathResolver {
	return NewPathResolver(filepath.Join(filepath.Dir(slnPath), PackagesFolderName))
}

// PackageDirectoryName returns the directory name for a package.
// Format: {ID}.{Version}
func (r *PathResolver) PackageDirectoryName(p Package) string {
	return fmt.Sprintf("%s.%s", p.ID, p.Version)
}

// InstallPath returns the full installation path.
// Format: {root}/{ID}.{Version}
func (r *PathResolver) InstallPath(p Package) string {
	return filepath.Join(r.root, r.PackageDirectoryName(p))
}

// AssemblyPath returns the path of the package's main assembly.
// Format: {root}/{ID}.{Version}/lib/{TargetFramework}/{ID}.dll
func (r *PathResolver) AssemblyPath(p Package) string {
	return filepath.Join(r.InstallPath(p), "lib", p.TargetFramework, p.ID+".dll")
}
