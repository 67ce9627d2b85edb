package solution

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// IsSolutionFile checks if a file path has a solution file extension
func IsSolutionFile(path string) bool {
	if path == "" {
		return false
	}
	return strings.ToLower(filepath.Ext(path)) == ".sln"
}

// IsProjectFile checks if a file path has a project file extension
func IsProjectFile(path string) bool {
	if path == "" {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".csproj" || ext == ".vbproj" || ext == ".fsproj"
}

// ListSolutions returns the solution files directly inside dir, sorted.
func ListSolutions(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var found []string
	for _, e := range entries {
		if e.IsDir() || !IsSolutionFile(e.Name()) {
			continue
		}
		found = append(found, filepath.Join(dir, e.Name()))
	}
	sort.Strings(found)
	return found, nil
}

// Find returns the single solution file in dir.
func Find(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		absDir = dir
	}

	found, err := ListSolutions(absDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("directory %s: %w", absDir, ErrNotFound)
		}
		return "", fmt.Errorf("cannot read directory %s: %w", absDir, err)
	}

	switch len(found) {
	case 0:
		return "", fmt.Errorf("directory %s is not a solution directory: %w", absDir, ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("directory %s contains %d solution files: %w", absDir, len(found), ErrAmbiguous)
	}
}

// FindFrom searches start and its ancestors for the nearest directory that
// contains a solution file, and returns that file. The directory must hold
// exactly one solution.
func FindFrom(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("cannot resolve %s: %w", start, err)
	}

	for {
		found, err := ListSolutions(dir)
		if err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("cannot read directory %s: %w", dir, err)
		}

		switch len(found) {
		case 0:
		case 1:
			return found[0], nil
		default:
			return "", fmt.Errorf("directory %s contains %d solution files: %w", dir, len(found), ErrAmbiguous)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no solution file found in %s or its parent directories: %w", start, ErrNotFound)
		}
		dir = parent
	}
}
