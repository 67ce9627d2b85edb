package solution

import (
	"path/filepath"
	"strings"
)

// NormalizePath converts Windows-style paths to forward slash format
func NormalizePath(path string) string {
	if path == "" {
		return ""
	}

	// Check if this is a UNC path (starts with \\ or //)
	isUNC := strings.HasPrefix(path, "\\\\") || strings.HasPrefix(path, "//")

	normalized := strings.ReplaceAll(path, "\\", "/")
	for strings.Contains(normalized, "//") {
		normalized = strings.ReplaceAll(normalized, "//", "/")
	}

	if isUNC {
		normalized = "/" + normalized
	}

	return normalized
}

// IsURL reports whether path is a URL (http://host/app) rather than a file path.
func IsURL(path string) bool {
	scheme, _, ok := strings.Cut(path, "://")
	return ok && scheme != "" && !strings.ContainsAny(scheme, `/\.`)
}

// ResolvePath resolves a path written in a solution or project file against
// baseDir. Absolute paths are only cleaned.
func ResolvePath(baseDir, path string) string {
	if path == "" {
		return ""
	}

	native := filepath.FromSlash(NormalizePath(path))
	if filepath.IsAbs(native) {
		return filepath.Clean(native)
	}

	return filepath.Clean(filepath.Join(baseDir, native))
}

// RelativePath returns target relative to the directory of fromFile, using
// backslash separators as Visual Studio writes them. If no relative form
// exists (different volumes) target is returned unchanged.
func RelativePath(fromFile, target string) string {
	if target == "" {
		return ""
	}

	rel, err := filepath.Rel(filepath.Dir(fromFile), target)
	if err != nil {
		rel = target
	}

	return strings.ReplaceAll(filepath.ToSlash(rel), "/", "\\")
}

// WithMarker returns path with marker inserted before its extension
// (App.sln -> App.test.sln). An empty marker returns path unchanged.
func WithMarker(path, marker string) string {
	if marker == "" {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "." + marker + ext
}
