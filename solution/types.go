// Package solution provides a lossless model of Visual Studio solution (.sln) files.
//
// A Document keeps the project list and the configuration matrix as structured
// data and carries every region it does not understand as opaque lines, so that
// a parse followed by a write reproduces the original file.
package solution

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates a required file or entry does not exist
	ErrNotFound = errors.New("not found")

	// ErrMalformed indicates input that does not match the expected grammar
	ErrMalformed = errors.New("malformed input")

	// ErrAmbiguous indicates several candidates where exactly one was expected
	ErrAmbiguous = errors.New("ambiguous input")
)

// ProjectType GUIDs for common project types
const (
	// ProjectTypeCSProject identifies a C# project (classic)
	ProjectTypeCSProject = "{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}"

	// ProjectTypeCSProjectSDK identifies a SDK-style C# project (.NET Core/.NET 5+)
	ProjectTypeCSProjectSDK = "{9A19103F-16F7-4668-BE54-9A1E7A4F7556}"

	// ProjectTypeVBProject identifies a VB.NET project
	ProjectTypeVBProject = "{F184B08F-C81C-45F6-A57F-5ABD9991F28F}"

	// ProjectTypeFSProject identifies an F# project
	ProjectTypeFSProject = "{F2A71F9B-5D33-465A-A702-920D77279786}"
)

// Names of the global sections that are modeled rather than carried opaquely.
const (
	SectionSolutionConfigurations = "SolutionConfigurationPlatforms"
	SectionProjectConfigurations  = "ProjectConfigurationPlatforms"
)

// DefaultHeader is written for documents that were not parsed from a file.
var DefaultHeader = []string{
	"Microsoft Visual Studio Solution File, Format Version 12.00",
	"# Visual Studio 2012",
}

// Document is the structural model of a solution file.
type Document struct {
	// FilePath is the absolute path the document was parsed from
	FilePath string

	// HasBOM records a UTF-8 byte order mark at the start of the file
	HasBOM bool

	// Header holds the lines before the first project, verbatim
	Header []string

	// FormatVersion is the solution file format version (e.g., "12.00")
	FormatVersion string

	// VisualStudioVersion is the Visual Studio version that wrote the file
	VisualStudioVersion string

	// Projects in file order
	Projects []Project

	// SolutionConfigurations in encounter order
	SolutionConfigurations []Configuration

	// ProjectConfigurations holds one entry per project and solution configuration
	ProjectConfigurations []ProjectConfiguration

	// GlobalSections in file order, including placeholders for the modeled sections
	GlobalSections []GlobalSection

	// blank lines in front of Global, in front of EndGlobal and after it
	beforeGlobal    []string
	beforeEndGlobal []string
	trailer         []string
}

// Project is a Project ... EndProject block.
type Project struct {
	// TypeGUID identifies the project type (C#, VB.NET, F#, folder)
	TypeGUID string

	// Name is the display name of the project
	Name string

	// Path is the absolute path of the project file. URL paths of web
	// projects are kept as written.
	Path string

	// GUID is the unique identifier for this project instance
	GUID string

	// Content holds the lines between the header and EndProject, verbatim
	Content []string

	rawPath string
	leading []string
}

// Configuration is a Configuration|Platform pair.
type Configuration struct {
	Configuration string
	Platform      string
}

// String returns the Configuration|Platform form used in solution files.
func (c Configuration) String() string {
	return c.Configuration + "|" + c.Platform
}

// ProjectConfiguration maps a solution configuration to what a project builds under it.
type ProjectConfiguration struct {
	GUID     string
	Solution Configuration
	Project  Configuration
}

// GlobalSection is a GlobalSection(Name) = Order ... EndGlobalSection block.
type GlobalSection struct {
	Name    string
	Order   string
	Content []string

	leading []string
}

// IsModeled reports whether the section body is regenerated from the document model.
func (s GlobalSection) IsModeled() bool {
	return s.Name == SectionSolutionConfigurations || s.Name == SectionProjectConfigurations
}

// ParseError represents an error during solution file parsing
type ParseError struct {
	// FilePath is the path to the file being parsed
	FilePath string

	// Line is the line number where the error occurred
	Line int

	// Message describes what went wrong
	Message string
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.FilePath, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// Unwrap lets errors.Is match ErrMalformed.
func (e *ParseError) Unwrap() error {
	return ErrMalformed
}

// IsBuildable returns true if the project is a compilable .NET project
func (p *Project) IsBuildable() bool {
	switch strings.ToUpper(p.TypeGUID) {
	case ProjectTypeCSProject, ProjectTypeCSProjectSDK, ProjectTypeVBProject, ProjectTypeFSProject:
		return true
	}
	return false
}

// HasLocalProjectFile reports whether the project is buildable from a project
// file on disk, as opposed to a web site folder or a project hosted at a URL.
func (p *Project) HasLocalProjectFile() bool {
	return p.IsBuildable() && IsProjectFile(p.Path) && !IsURL(p.Path)
}

// FindProject returns the project with the given name. Names are case-sensitive.
func (d *Document) FindProject(name string) (*Project, bool) {
	for i := range d.Projects {
		if d.Projects[i].Name == name {
			return &d.Projects[i], true
		}
	}
	return nil, false
}

// FindProjectByGUID returns the project with the given GUID.
func (d *Document) FindProjectByGUID(guid string) (*Project, bool) {
	for i := range d.Projects {
		if strings.EqualFold(d.Projects[i].GUID, guid) {
			return &d.Projects[i], true
		}
	}
	return nil, false
}

// AddProject appends a project entry.
func (d *Document) AddProject(p Project) {
	d.Projects = append(d.Projects, p)
}

// RemoveProject removes the project with the given GUID together with all of
// its configuration entries. It returns false if no such project exists.
func (d *Document) RemoveProject(guid string) bool {
	for i := range d.Projects {
		if strings.EqualFold(d.Projects[i].GUID, guid) {
			d.Projects = append(d.Projects[:i], d.Projects[i+1:]...)
			d.RemoveProjectConfigurations(guid)
			return true
		}
	}
	return false
}

// ProjectConfigurationsFor returns the configuration entries of one project.
func (d *Document) ProjectConfigurationsFor(guid string) []ProjectConfiguration {
	var out []ProjectConfiguration
	for _, pc := range d.ProjectConfigurations {
		if strings.EqualFold(pc.GUID, guid) {
			out = append(out, pc)
		}
	}
	return out
}

// SetProjectConfiguration adds pc, replacing an existing entry for the same
// project and solution configuration.
func (d *Document) SetProjectConfiguration(pc ProjectConfiguration) {
	for i := range d.ProjectConfigurations {
		cur := &d.ProjectConfigurations[i]
		if strings.EqualFold(cur.GUID, pc.GUID) && cur.Solution == pc.Solution {
			cur.Project = pc.Project
			return
		}
	}
	d.ProjectConfigurations = append(d.ProjectConfigurations, pc)
}

// RemoveProjectConfigurations drops every configuration entry for guid and
// returns how many were removed.
func (d *Document) RemoveProjectConfigurations(guid string) int {
	kept := d.ProjectConfigurations[:0]
	removed := 0
	for _, pc := range d.ProjectConfigurations {
		if strings.EqualFold(pc.GUID, guid) {
			removed++
			continue
		}
		kept = append(kept, pc)
	}
	d.ProjectConfigurations = kept
	return removed
}

// HasSolutionConfiguration reports whether cfg is declared at the solution level.
func (d *Document) HasSolutionConfiguration(cfg Configuration) bool {
	for _, c := range d.SolutionConfigurations {
		if c == cfg {
			return true
		}
	}
	return false
}
