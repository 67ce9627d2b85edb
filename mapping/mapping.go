// Package mapping reads the mapping file that tells the linker where the local
// source project for a packaged dependency lives.
//
// The file sits next to the solution and looks like:
//
//	<Popper>
//	  <Project Name="Widgets" ProjectFile="$(DEV)\Widgets\Widgets.csproj" />
//	</Popper>
package mapping

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/willibrandon/slntools/solution"
)

// FileName is the name of the mapping file next to a solution.
const FileName = "popper.config"

// File is a loaded mapping file.
type File struct {
	// Path is the absolute path of the mapping file
	Path string

	// Projects maps a dependency name to the absolute path of its project file
	Projects map[string]string
}

type xmlFile struct {
	Projects []xmlProject `xml:"Project"`
}

type xmlProject struct {
	Name        string `xml:"Name,attr"`
	ProjectFile string `xml:"ProjectFile,attr"`
}

// PathFor returns the mapping file path for the solution at slnPath.
func PathFor(slnPath string) string {
	return filepath.Join(filepath.Dir(slnPath), FileName)
}

// Load reads the mapping file at path. $(NAME) tags in ProjectFile values are
// replaced from env; relative results resolve against the file's directory.
func Load(path string, env map[string]string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("mapping file %s: %w", path, solution.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}
	return Parse(path, data, env)
}

// Parse parses mapping file content. The root element name is not checked.
func Parse(path string, data []byte, env map[string]string) (*File, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	var x xmlFile
	if err := xml.Unmarshal(data, &x); err != nil {
		return nil, fmt.Errorf("failed to parse mapping file %s: %v: %w", absPath, err, solution.ErrMalformed)
	}

	f := &File{Path: absPath, Projects: make(map[string]string, len(x.Projects))}
	dir := filepath.Dir(absPath)

	for _, p := range x.Projects {
		if p.Name == "" || p.ProjectFile == "" {
			return nil, fmt.Errorf("mapping file %s: <Project> needs Name and ProjectFile: %w", absPath, solution.ErrMalformed)
		}
		expanded, err := ExpandTags(p.ProjectFile, env)
		if err != nil {
			return nil, fmt.Errorf("mapping file %s, project %q: %w", absPath, p.Name, err)
		}
		f.Projects[p.Name] = solution.ResolvePath(dir, expanded)
	}

	return f, nil
}

// Lookup returns the project file mapped to name.
func (f *File) Lookup(name string) (string, error) {
	path, ok := f.Projects[name]
	if !ok {
		return "", fmt.Errorf("no entry for %q in %s: %w", name, f.Path, solution.ErrNotFound)
	}
	return path, nil
}

// ExpandTags replaces every $(NAME) in s with env[NAME]. Unknown names and
// unterminated tags are errors.
func ExpandTags(s string, env map[string]string) (string, error) {
	var b strings.Builder
	rest := s

	for {
		start := strings.Index(rest, "$(")
		if start < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		end := strings.IndexByte(rest[start+2:], ')')
		if end < 0 {
			return "", fmt.Errorf("unterminated tag in %q: %w", s, solution.ErrMalformed)
		}

		name := rest[start+2 : start+2+end]
		value, ok := env[name]
		if !ok {
			return "", fmt.Errorf("unknown tag $(%s) in %q: %w", name, s, solution.ErrNotFound)
		}

		b.WriteString(rest[:start])
		b.WriteString(value)
		rest = rest[start+2+end+1:]
	}
}

// Environ converts os.Environ style KEY=VALUE pairs into a map.
func Environ(pairs []string) map[string]string {
	env := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = v
		}
	}
	return env
}
