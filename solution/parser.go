package solution

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	formatVersionRegex = regexp.MustCompile(`^Microsoft Visual Studio Solution File, Format Version (\S+)`)
	vsVersionRegex     = regexp.MustCompile(`^VisualStudioVersion = (\S+)`)

	// Project("{TYPE}") = "Name", "Path", "{GUID}"
	projectRegex = regexp.MustCompile(`^Project\("(\{[^"]*\})"\)\s*=\s*"([^"]*)",\s*"([^"]*)",\s*"(\{[^"]*\})"\s*$`)

	sectionRegex = regexp.MustCompile(`^\s*GlobalSection\(([^)]*)\)\s*=\s*(preSolution|postSolution)\s*$`)

	// Debug|Any CPU = Debug|Any CPU
	solutionConfigRegex = regexp.MustCompile(`^\s*([^|=]+)\|(.+?)\s*=\s*\S.*$`)

	// {GUID}.Debug|Any CPU.ActiveCfg = Debug|Any CPU
	projectConfigRegex = regexp.MustCompile(`^\s*(\{[^}]+\})\.([^|]+)\|(.+?)\.(\w+(?:\.\d+)?)\s*=\s*([^|]+)\|(.+?)\s*$`)
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type parseState int

const (
	stateHeader parseState = iota
	stateTop
	stateProject
	stateGlobal
	stateSection
	stateDone
)

// Parse reads and parses a .sln file
func Parse(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("solution file %s: %w", path, ErrNotFound)
		}
		return nil, &ParseError{FilePath: path, Message: fmt.Sprintf("cannot read file: %v", err)}
	}
	return ParseBytes(path, data)
}

// ParseBytes parses solution text. Project paths resolve against the directory of path.
func ParseBytes(path string, data []byte) (*Document, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	p := &parser{
		doc:   &Document{FilePath: absPath},
		dir:   filepath.Dir(absPath),
		state: stateHeader,
	}

	if bytes.HasPrefix(data, utf8BOM) {
		p.doc.HasBOM = true
		data = data[len(utf8BOM):]
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		p.lineNum++
		if err := p.line(scanner.Text()); err != nil {
			return nil, err
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, p.fail("error reading file: %v", err)
	}

	return p.finish()
}

type parser struct {
	doc     *Document
	dir     string
	state   parseState
	lineNum int

	project *Project
	section *GlobalSection

	// blank lines waiting for the block they precede
	blanks []string
}

func (p *parser) fail(format string, args ...any) error {
	return &ParseError{
		FilePath: p.doc.FilePath,
		Line:     p.lineNum,
		Message:  fmt.Sprintf(format, args...),
	}
}

func (p *parser) line(line string) error {
	trimmed := strings.TrimSpace(line)

	switch p.state {
	case stateHeader:
		if !strings.HasPrefix(trimmed, "Project(") && trimmed != "Global" {
			p.doc.Header = append(p.doc.Header, line)
			if m := formatVersionRegex.FindStringSubmatch(trimmed); m != nil {
				p.doc.FormatVersion = m[1]
			} else if m := vsVersionRegex.FindStringSubmatch(trimmed); m != nil {
				p.doc.VisualStudioVersion = m[1]
			}
			return nil
		}
		if p.doc.FormatVersion == "" {
			return p.fail("missing solution file header")
		}
		p.state = stateTop
		return p.top(line, trimmed)

	case stateTop:
		return p.top(line, trimmed)

	case stateProject:
		if trimmed == "EndProject" {
			p.doc.Projects = append(p.doc.Projects, *p.project)
			p.project = nil
			p.state = stateTop
			return nil
		}
		if strings.HasPrefix(trimmed, "Project(") {
			return p.fail("unexpected Project: missing EndProject for %q", p.project.Name)
		}
		p.project.Content = append(p.project.Content, line)
		return nil

	case stateGlobal:
		if trimmed == "" {
			p.blanks = append(p.blanks, line)
			return nil
		}
		if trimmed == "EndGlobal" {
			p.doc.beforeEndGlobal = p.takeBlanks()
			p.state = stateDone
			return nil
		}
		m := sectionRegex.FindStringSubmatch(line)
		if m == nil {
			return p.fail("unexpected line in Global: %q", trimmed)
		}
		p.section = &GlobalSection{Name: m[1], Order: m[2], leading: p.takeBlanks()}
		p.state = stateSection
		return nil

	case stateSection:
		if trimmed == "EndGlobalSection" {
			p.doc.GlobalSections = append(p.doc.GlobalSections, *p.section)
			p.section = nil
			p.state = stateGlobal
			return nil
		}
		return p.sectionLine(line, trimmed)

	case stateDone:
		if trimmed != "" {
			return p.fail("unexpected content after EndGlobal: %q", trimmed)
		}
		p.doc.trailer = append(p.doc.trailer, line)
	}

	return nil
}

func (p *parser) takeBlanks() []string {
	blanks := p.blanks
	p.blanks = nil
	return blanks
}

func (p *parser) top(line, trimmed string) error {
	if trimmed == "" {
		p.blanks = append(p.blanks, line)
		return nil
	}

	if trimmed == "Global" {
		p.doc.beforeGlobal = p.takeBlanks()
		p.state = stateGlobal
		return nil
	}

	m := projectRegex.FindStringSubmatch(trimmed)
	if m == nil {
		return p.fail("expected Project or Global, found %q", trimmed)
	}

	path := m[3]
	if !IsURL(path) {
		path = ResolvePath(p.dir, path)
	}
	p.project = &Project{
		TypeGUID: m[1],
		Name:     m[2],
		Path:     path,
		GUID:     m[4],
		rawPath:  m[3],
		leading:  p.takeBlanks(),
	}
	p.state = stateProject
	return nil
}

func (p *parser) sectionLine(line, trimmed string) error {
	switch p.section.Name {
	case SectionSolutionConfigurations:
		if trimmed == "" {
			return nil
		}
		m := solutionConfigRegex.FindStringSubmatch(line)
		if m == nil {
			return p.fail("malformed solution configuration %q", trimmed)
		}
		cfg := Configuration{Configuration: strings.TrimSpace(m[1]), Platform: m[2]}
		if !p.doc.HasSolutionConfiguration(cfg) {
			p.doc.SolutionConfigurations = append(p.doc.SolutionConfigurations, cfg)
		}

	case SectionProjectConfigurations:
		if trimmed == "" {
			return nil
		}
		m := projectConfigRegex.FindStringSubmatch(line)
		if m == nil {
			return p.fail("malformed project configuration %q", trimmed)
		}
		// Build.0 mirrors ActiveCfg and is regenerated on write
		if m[4] != "ActiveCfg" {
			return nil
		}
		p.doc.SetProjectConfiguration(ProjectConfiguration{
			GUID:     m[1],
			Solution: Configuration{Configuration: m[2], Platform: m[3]},
			Project:  Configuration{Configuration: strings.TrimSpace(m[5]), Platform: m[6]},
		})

	default:
		p.section.Content = append(p.section.Content, line)
	}

	return nil
}

func (p *parser) finish() (*Document, error) {
	switch p.state {
	case stateHeader:
		if p.doc.FormatVersion == "" {
			return nil, p.fail("missing solution file header")
		}
	case stateProject:
		return nil, p.fail("unexpected end of file: missing EndProject for %q", p.project.Name)
	case stateSection:
		return nil, p.fail("unexpected end of file: missing EndGlobalSection for %q", p.section.Name)
	case stateGlobal:
		return nil, p.fail("unexpected end of file: missing EndGlobal")
	}
	return p.doc, nil
}
