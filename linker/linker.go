// Package linker swaps a dependency of a solution between its packaged form
// (an assembly reference into the packages folder) and its local source form
// (a project reference plus a solution entry).
//
// The direction is decided by the solution itself: if the dependency is
// already a project of the solution it goes back to its package, otherwise
// the local project is linked in. All files are read and every change is
// planned before anything is written.
package linker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/willibrandon/slntools/mapping"
	"github.com/willibrandon/slntools/observability"
	"github.com/willibrandon/slntools/packages"
	"github.com/willibrandon/slntools/project"
	"github.com/willibrandon/slntools/solution"
)

// Shared error taxonomy. errors.Is works against errors from any slntools package.
var (
	ErrNotFound  = solution.ErrNotFound
	ErrMalformed = solution.ErrMalformed
	ErrAmbiguous = solution.ErrAmbiguous
)

// DefaultPlatform is used for the local project when no better mapping is known.
const DefaultPlatform = "AnyCPU"

// Direction is the way a swap moves a dependency.
type Direction int

const (
	// ToLocal replaces assembly references with project references to the local source.
	ToLocal Direction = iota
	// ToPackage replaces project references with assembly references into the packages folder.
	ToPackage
)

func (d Direction) String() string {
	switch d {
	case ToLocal:
		return "local"
	case ToPackage:
		return "package"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Request describes one swap.
type Request struct {
	// SolutionDir is the directory holding the solution. Empty means search
	// upwards from the working directory.
	SolutionDir string

	// ProjectName is the dependency to swap
	ProjectName string
}

// Result describes a completed swap.
type Result struct {
	Direction        Direction
	SolutionPath     string
	LocalProjectPath string

	// ModifiedProjects are the project files whose references changed
	ModifiedProjects []string

	// Written lists every file written, in write order
	Written []string
}

// Linker performs reference swaps.
type Linker struct {
	logger  observability.Logger
	env     map[string]string
	workDir string
	marker  string
}

// Option configures a Linker.
type Option func(*Linker)

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(l *Linker) {
		l.logger = logger
	}
}

// WithEnv sets the variables available to $(NAME) tags in the mapping file.
func WithEnv(env map[string]string) Option {
	return func(l *Linker) {
		l.env = env
	}
}

// WithWorkDir sets the directory relative solution directories and the
// solution search start from.
func WithWorkDir(dir string) Option {
	return func(l *Linker) {
		l.workDir = dir
	}
}

// WithOutputMarker redirects every write to a sibling file named
// <base>.<marker><ext>, leaving the originals untouched.
func WithOutputMarker(marker string) Option {
	return func(l *Linker) {
		l.marker = marker
	}
}

// New creates a Linker.
func New(opts ...Option) *Linker {
	l := &Linker{
		logger:  observability.NewNullLogger(),
		env:     map[string]string{},
		workDir: ".",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// plan is a fully computed swap waiting to be written.
type plan struct {
	result   *Result
	sln      *solution.Document
	projects []*project.Document
}

// Swap moves req.ProjectName between its packaged and local form in the solution.
// On error nothing has been written.
func (l *Linker) Swap(ctx context.Context, req Request) (*Result, error) {
	if req.ProjectName == "" {
		return nil, errors.New("project name is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := l.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := l.write(p); err != nil {
		return p.result, err
	}

	l.logger.InfoContext(ctx, "Swapped {ProjectName} to {Direction} in {SolutionPath}",
		req.ProjectName, p.result.Direction.String(), p.result.SolutionPath)

	return p.result, nil
}

// prepare reads every input and applies the swap in memory.
func (l *Linker) prepare(ctx context.Context, req Request) (*plan, error) {
	name := req.ProjectName
	log := l.logger.ForContext("ProjectName", name)

	slnPath, err := l.findSolution(req.SolutionDir)
	if err != nil {
		return nil, err
	}
	log.DebugContext(ctx, "Using solution {Path}", slnPath)

	m, err := mapping.Load(mapping.PathFor(slnPath), l.env)
	if err != nil {
		return nil, err
	}
	localPath, err := m.Lookup(name)
	if err != nil {
		return nil, err
	}

	local, err := project.Load(localPath)
	if err != nil {
		return nil, err
	}
	localGUID, err := project.NormalizeGUID(local.ProjectGUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", localPath, err, ErrMalformed)
	}
	log.DebugContext(ctx, "Local project is {Path} {ProjectGuid}", localPath, localGUID)

	localSln, err := l.loadLocalSolution(ctx, log, localPath)
	if err != nil {
		return nil, err
	}

	sln, err := solution.Parse(slnPath)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Direction:        ToLocal,
		SolutionPath:     slnPath,
		LocalProjectPath: localPath,
	}
	if _, ok := sln.FindProject(name); ok {
		result.Direction = ToPackage
	}
	log.InfoContext(ctx, "Swapping {ProjectName} to {Direction}", name, result.Direction.String())

	p := &plan{result: result, sln: sln}
	resolver := packages.NewSolutionPathResolver(slnPath)

	for i := range sln.Projects {
		sp := &sln.Projects[i]
		if !sp.HasLocalProjectFile() || sp.Name == name {
			continue
		}

		doc, err := project.Load(sp.Path)
		if err != nil {
			return nil, err
		}

		var changed bool
		switch result.Direction {
		case ToLocal:
			changed, err = linkLocal(doc, name, localPath, localGUID)
		case ToPackage:
			changed, err = linkPackage(doc, name, resolver)
		}
		if err != nil {
			return nil, err
		}

		if changed {
			log.DebugContext(ctx, "Updated references in {Path}", doc.Path)
			p.projects = append(p.projects, doc)
			result.ModifiedProjects = append(result.ModifiedProjects, doc.Path)
		}
	}

	switch result.Direction {
	case ToLocal:
		addLocalProject(sln, localSln, name, localPath, localGUID)
	case ToPackage:
		existing, _ := sln.FindProject(name)
		sln.RemoveProject(existing.GUID)
	}

	return p, nil
}

func (l *Linker) findSolution(dir string) (string, error) {
	if dir == "" {
		return solution.FindFrom(l.workDir)
	}
	return solution.Find(solution.ResolvePath(l.workDir, dir))
}

// loadLocalSolution finds and parses the solution owning the local project.
// A missing solution is not an error; the caller falls back to default platforms.
func (l *Linker) loadLocalSolution(ctx context.Context, log observability.Logger, localPath string) (*solution.Document, error) {
	path, err := solution.FindFrom(filepath.Dir(localPath))
	if errors.Is(err, ErrNotFound) {
		log.WarnContext(ctx, "No solution found for local project {Path}, using {Platform} platforms", localPath, DefaultPlatform)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return solution.Parse(path)
}

// linkLocal replaces assembly references to name with a project reference.
func linkLocal(doc *project.Document, name, localPath, localGUID string) (bool, error) {
	if doc.RemoveReferences(name) == 0 {
		return false, nil
	}
	if !doc.HasProjectReference(name) {
		doc.AddProjectReference(name, localPath, localGUID)
	}
	return true, nil
}

// linkPackage replaces project references to name with an assembly reference
// into the packages folder, as listed in the project's packages.config.
func linkPackage(doc *project.Document, name string, resolver *packages.PathResolver) (bool, error) {
	if doc.RemoveProjectReferences(name) == 0 {
		return false, nil
	}

	manifest, err := packages.LoadManifestFor(doc.Path)
	if err != nil {
		return false, err
	}
	pkg, err := manifest.Find(name)
	if err != nil {
		return false, err
	}

	if !doc.HasReference(name) {
		doc.AddReference(name, resolver.AssemblyPath(pkg))
	}
	return true, nil
}

// addLocalProject adds the local project to sln with one project configuration
// per solution configuration.
func addLocalProject(sln, localSln *solution.Document, name, localPath, localGUID string) {
	typeGUID := solution.ProjectTypeCSProject
	guid := localGUID
	var known []solution.ProjectConfiguration

	if localSln != nil {
		entry, ok := localSln.FindProjectByGUID(localGUID)
		if !ok {
			entry, ok = localSln.FindProject(name)
		}
		if ok {
			typeGUID = entry.TypeGUID
			known = localSln.ProjectConfigurationsFor(entry.GUID)
		}
	}

	sln.AddProject(solution.Project{
		TypeGUID: typeGUID,
		Name:     name,
		Path:     localPath,
		GUID:     guid,
	})

	for _, sc := range sln.SolutionConfigurations {
		sln.SetProjectConfiguration(solution.ProjectConfiguration{
			GUID:     guid,
			Solution: sc,
			Project:  deriveConfiguration(known, sc),
		})
	}
}

// deriveConfiguration picks the project configuration for solution
// configuration sc: an exact match in the local solution, else one with the
// same configuration name, else the name with the default platform.
func deriveConfiguration(known []solution.ProjectConfiguration, sc solution.Configuration) solution.Configuration {
	for _, pc := range known {
		if pc.Solution == sc {
			return pc.Project
		}
	}
	for _, pc := range known {
		if pc.Solution.Configuration == sc.Configuration {
			return pc.Project
		}
	}
	return solution.Configuration{Configuration: sc.Configuration, Platform: DefaultPlatform}
}

// write saves dirty projects first, then the solution.
func (l *Linker) write(p *plan) error {
	for _, doc := range p.projects {
		dest := solution.WithMarker(doc.Path, l.marker)
		if err := doc.Save(dest); err != nil {
			return err
		}
		l.logger.Debug("Wrote {Path}", dest)
		p.result.Written = append(p.result.Written, dest)
	}

	dest := solution.WithMarker(p.sln.FilePath, l.marker)
	if err := p.sln.Save(dest); err != nil {
		return err
	}
	l.logger.Debug("Wrote {Path}", dest)
	p.result.Written = append(p.result.Written, dest)

	return nil
}
