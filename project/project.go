// Package project provides loading and saving of MSBuild project files (.csproj, .vbproj, .fsproj)
// with their assembly and project references exposed as editable lists.
//
// Everything outside the reference elements passes through untouched. Kept
// references stay where they are, removed ones are cut out together with their
// indentation, and new ones are placed after the last reference of their kind.
package project

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/willibrandon/slntools/solution"
)

// MSBuildNamespace is the namespace of classic (non-SDK) project files.
const MSBuildNamespace = "http://schemas.microsoft.com/developer/msbuild/2003"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reference represents a <Reference> element (assembly or packaged library).
type Reference struct {
	// Name is the Include attribute, possibly a full assembly name
	Name string

	// HintPath is the absolute path of the assembly, empty if the element has none
	HintPath string

	elem     *etree.Element
	hintText string
}

// AssemblyName returns the simple name part of Name
// ("Widgets, Version=1.2.0.0, Culture=neutral" -> "Widgets").
func (r Reference) AssemblyName() string {
	name, _, _ := strings.Cut(r.Name, ",")
	return strings.TrimSpace(name)
}

// ProjectReference represents a <ProjectReference> element.
type ProjectReference struct {
	// Name of the referenced project
	Name string

	// Include is the absolute path of the referenced project file
	Include string

	// GUID is the referenced project's identity
	GUID string

	elem        *etree.Element
	includeText string
}

// ParseError represents an error while reading a project file.
type ParseError struct {
	FilePath string
	Message  string
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// Unwrap lets errors.Is match solution.ErrMalformed.
func (e *ParseError) Unwrap() error {
	return solution.ErrMalformed
}

// Document is a loaded project file.
type Document struct {
	// Path is the absolute path the document was loaded from
	Path string

	// ProjectGUID is the project's own <ProjectGuid> value as written
	ProjectGUID string

	References        []Reference
	ProjectReferences []ProjectReference

	doc    *etree.Document
	hasBOM bool
	crlf   bool

	// self-closing tag endings as written (" />", "/>"), by element
	closers     map[*etree.Element]string
	emptyCloser string
}

// Load loads and parses a project file from the given path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("project file %s: %w", path, solution.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}
	return Parse(path, data)
}

// Parse parses project XML. Relative paths resolve against the directory of path.
func Parse(path string, data []byte) (*Document, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	d := &Document{
		Path: absPath,
		doc:  etree.NewDocument(),
		crlf: bytes.Contains(data, []byte("\r\n")),
	}

	if bytes.HasPrefix(data, utf8BOM) {
		d.hasBOM = true
		data = data[len(utf8BOM):]
	}

	d.doc.ReadSettings.PreserveCData = true
	if err := d.doc.ReadFromBytes(data); err != nil {
		return nil, &ParseError{FilePath: absPath, Message: fmt.Sprintf("failed to parse project XML: %v", err)}
	}

	root := d.doc.Root()
	if root == nil || root.Tag != "Project" {
		return nil, &ParseError{FilePath: absPath, Message: "root element is not <Project>"}
	}

	d.recordClosers(data)
	dir := filepath.Dir(absPath)

	for _, e := range d.doc.FindElements("//Reference") {
		include := e.SelectAttrValue("Include", "")
		if include == "" {
			return nil, &ParseError{FilePath: absPath, Message: "<Reference> without Include attribute"}
		}
		hint := childText(e, "HintPath")
		d.References = append(d.References, Reference{
			Name:     include,
			HintPath: solution.ResolvePath(dir, hint),
			elem:     e,
			hintText: hint,
		})
	}

	for _, e := range d.doc.FindElements("//ProjectReference") {
		include := e.SelectAttrValue("Include", "")
		if include == "" {
			return nil, &ParseError{FilePath: absPath, Message: "<ProjectReference> without Include attribute"}
		}
		name := childText(e, "Name")
		if name == "" {
			base := filepath.Base(solution.NormalizePath(include))
			name = strings.TrimSuffix(base, filepath.Ext(base))
		}
		d.ProjectReferences = append(d.ProjectReferences, ProjectReference{
			Name:        name,
			Include:     solution.ResolvePath(dir, include),
			GUID:        childText(e, "Project"),
			elem:        e,
			includeText: include,
		})
	}

	guidElem := d.doc.FindElement("//ProjectGuid")
	if guidElem == nil || strings.TrimSpace(guidElem.Text()) == "" {
		return nil, &ParseError{FilePath: absPath, Message: "missing <ProjectGuid>"}
	}
	d.ProjectGUID = strings.TrimSpace(guidElem.Text())
	if _, err := NormalizeGUID(d.ProjectGUID); err != nil {
		return nil, &ParseError{FilePath: absPath, Message: fmt.Sprintf("invalid <ProjectGuid> %q", d.ProjectGUID)}
	}

	return d, nil
}

// NormalizeGUID returns guid in the braced upper-case form used by solution files.
func NormalizeGUID(guid string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(guid))
	if err != nil {
		return "", fmt.Errorf("invalid GUID %q: %w", guid, err)
	}
	return "{" + strings.ToUpper(u.String()) + "}", nil
}

// HasReference reports whether an assembly reference with the given simple name exists.
func (d *Document) HasReference(name string) bool {
	for _, r := range d.References {
		if r.AssemblyName() == name {
			return true
		}
	}
	return false
}

// RemoveReferences removes every assembly reference with the given simple name
// and returns how many were removed.
func (d *Document) RemoveReferences(name string) int {
	kept := d.References[:0]
	removed := 0
	for _, r := range d.References {
		if r.AssemblyName() == name {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	d.References = kept
	return removed
}

// AddReference appends an assembly reference. hintPath is absolute.
func (d *Document) AddReference(name, hintPath string) {
	d.References = append(d.References, Reference{Name: name, HintPath: hintPath})
}

// HasProjectReference reports whether a project reference with the given name exists.
func (d *Document) HasProjectReference(name string) bool {
	for _, pr := range d.ProjectReferences {
		if pr.Name == name {
			return true
		}
	}
	return false
}

// RemoveProjectReferences removes every project reference with the given name
// and returns how many were removed.
func (d *Document) RemoveProjectReferences(name string) int {
	kept := d.ProjectReferences[:0]
	removed := 0
	for _, pr := range d.ProjectReferences {
		if pr.Name == name {
			removed++
			continue
		}
		kept = append(kept, pr)
	}
	d.ProjectReferences = kept
	return removed
}

// AddProjectReference appends a project reference. include is absolute.
func (d *Document) AddProjectReference(name, include, guid string) {
	d.ProjectReferences = append(d.ProjectReferences, ProjectReference{Name: name, Include: include, GUID: guid})
}

func childText(e *etree.Element, tag string) string {
	c := e.SelectElement(tag)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Text())
}
