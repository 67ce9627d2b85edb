package solution

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const crlf = "\r\n"

// Save writes the document to path.
func (d *Document) Save(path string) error {
	if err := os.WriteFile(path, d.Bytes(path), 0644); err != nil {
		return fmt.Errorf("failed to write solution file: %w", err)
	}
	return nil
}

// Bytes serializes the document as it would be written to destPath. Project
// paths are written as they were read unless they no longer resolve to the
// same location from destPath, and every line ends with CRLF.
func (d *Document) Bytes(destPath string) []byte {
	w := &lineWriter{}

	if d.HasBOM {
		w.buf.Write(utf8BOM)
	}

	header := d.Header
	if len(header) == 0 {
		header = DefaultHeader
	}
	for _, line := range header {
		w.line(line)
	}

	for _, p := range d.Projects {
		w.lines(p.leading)
		w.linef(`Project("%s") = "%s", "%s", "%s"`, p.TypeGUID, p.Name, writtenPath(destPath, p), p.GUID)
		for _, line := range p.Content {
			w.line(line)
		}
		w.line("EndProject")
	}

	w.lines(d.beforeGlobal)
	w.line("Global")
	for _, s := range d.sectionsToWrite() {
		w.lines(s.leading)
		w.linef("\tGlobalSection(%s) = %s", s.Name, s.Order)
		switch s.Name {
		case SectionSolutionConfigurations:
			for _, c := range d.SolutionConfigurations {
				w.linef("\t\t%s = %s", c, c)
			}
		case SectionProjectConfigurations:
			for _, pc := range d.ProjectConfigurations {
				w.linef("\t\t%s.%s.ActiveCfg = %s", pc.GUID, pc.Solution, pc.Project)
				w.linef("\t\t%s.%s.Build.0 = %s", pc.GUID, pc.Solution, pc.Project)
			}
		default:
			for _, line := range s.Content {
				w.line(line)
			}
		}
		w.line("\tEndGlobalSection")
	}
	w.lines(d.beforeEndGlobal)
	w.line("EndGlobal")
	w.lines(d.trailer)

	return w.buf.Bytes()
}

// writtenPath returns the path text for p in a solution saved at destPath.
func writtenPath(destPath string, p Project) string {
	if IsURL(p.Path) {
		return p.Path
	}
	if p.rawPath != "" && ResolvePath(filepath.Dir(destPath), p.rawPath) == p.Path {
		return p.rawPath
	}

	rel := RelativePath(destPath, p.Path)
	if strings.HasSuffix(p.rawPath, `\`) || strings.HasSuffix(p.rawPath, "/") {
		rel += `\`
	}
	return rel
}

// sectionsToWrite returns the global sections in file order, adding the
// modeled sections in front when the original file had none but the model
// has entries for them.
func (d *Document) sectionsToWrite() []GlobalSection {
	var hasSolution, hasProject bool
	for _, s := range d.GlobalSections {
		switch s.Name {
		case SectionSolutionConfigurations:
			hasSolution = true
		case SectionProjectConfigurations:
			hasProject = true
		}
	}

	var sections []GlobalSection
	if !hasSolution && len(d.SolutionConfigurations) > 0 {
		sections = append(sections, GlobalSection{Name: SectionSolutionConfigurations, Order: "preSolution"})
	}
	if !hasProject && len(d.ProjectConfigurations) > 0 {
		sections = append(sections, GlobalSection{Name: SectionProjectConfigurations, Order: "postSolution"})
	}
	return append(sections, d.GlobalSections...)
}

type lineWriter struct {
	buf bytes.Buffer
}

func (w *lineWriter) line(s string) {
	w.buf.WriteString(s)
	w.buf.WriteString(crlf)
}

func (w *lineWriter) lines(lines []string) {
	for _, s := range lines {
		w.line(s)
	}
}

func (w *lineWriter) linef(format string, args ...any) {
	fmt.Fprintf(&w.buf, format, args...)
	w.buf.WriteString(crlf)
}
