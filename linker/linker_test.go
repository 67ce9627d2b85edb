package linker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willibrandon/slntools/project"
	"github.com/willibrandon/slntools/solution"
)

const (
	guidA       = "{11111111-1111-1111-1111-111111111111}"
	guidB       = "{22222222-2222-2222-2222-222222222222}"
	guidWidgets = "{77777777-7777-7777-7777-777777777777}"
)

const appSln = `
Microsoft Visual Studio Solution File, Format Version 12.00
# Visual Studio 15
VisualStudioVersion = 15.0.28307.271
MinimumVisualStudioVersion = 10.0.40219.1
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "A", "A\A.csproj", "{11111111-1111-1111-1111-111111111111}"
EndProject
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "B", "B\B.csproj", "{22222222-2222-2222-2222-222222222222}"
EndProject
Global
	GlobalSection(SolutionConfigurationPlatforms) = preSolution
		Debug|Any CPU = Debug|Any CPU
		Release|Any CPU = Release|Any CPU
	EndGlobalSection
	GlobalSection(ProjectConfigurationPlatforms) = postSolution
		{11111111-1111-1111-1111-111111111111}.Debug|Any CPU.ActiveCfg = Debug|Any CPU
		{11111111-1111-1111-1111-111111111111}.Debug|Any CPU.Build.0 = Debug|Any CPU
		{11111111-1111-1111-1111-111111111111}.Release|Any CPU.ActiveCfg = Release|Any CPU
		{11111111-1111-1111-1111-111111111111}.Release|Any CPU.Build.0 = Release|Any CPU
		{22222222-2222-2222-2222-222222222222}.Debug|Any CPU.ActiveCfg = Debug|Any CPU
		{22222222-2222-2222-2222-222222222222}.Debug|Any CPU.Build.0 = Debug|Any CPU
		{22222222-2222-2222-2222-222222222222}.Release|Any CPU.ActiveCfg = Release|Any CPU
		{22222222-2222-2222-2222-222222222222}.Release|Any CPU.Build.0 = Release|Any CPU
	EndGlobalSection
	GlobalSection(SolutionProperties) = preSolution
		HideSolutionNode = FALSE
	EndGlobalSection
EndGlobal
`

const widgetsSln = `
Microsoft Visual Studio Solution File, Format Version 12.00
# Visual Studio 15
Project("{9A19103F-16F7-4668-BE54-9A1E7A4F7556}") = "Widgets", "Widgets.csproj", "{77777777-7777-7777-7777-777777777777}"
EndProject
Global
	GlobalSection(SolutionConfigurationPlatforms) = preSolution
		Debug|Any CPU = Debug|Any CPU
		Release|Mixed Platforms = Release|Mixed Platforms
	EndGlobalSection
	GlobalSection(ProjectConfigurationPlatforms) = postSolution
		{77777777-7777-7777-7777-777777777777}.Debug|Any CPU.ActiveCfg = Debug|x86
		{77777777-7777-7777-7777-777777777777}.Release|Mixed Platforms.ActiveCfg = Release|Any CPU
	EndGlobalSection
EndGlobal
`

const projectTemplate = `<?xml version="1.0" encoding="utf-8"?>
<Project ToolsVersion="4.0" DefaultTargets="Build" xmlns="http://schemas.microsoft.com/developer/msbuild/2003">
  <PropertyGroup>
    <ProjectGuid>%GUID%</ProjectGuid>
    <OutputType>Library</OutputType>
  </PropertyGroup>
  <ItemGroup>
    <Reference Include="System" />%REFS%
  </ItemGroup>
  <ItemGroup>
    <Compile Include="Class1.cs" />
  </ItemGroup>
</Project>
`

const widgetsReference = `
    <Reference Include="Widgets">
      <HintPath>..\packages\Widgets.1.2.0\lib\net45\Widgets.dll</HintPath>
    </Reference>`

const manifest = `<?xml version="1.0" encoding="utf-8"?>
<packages>
  <package id="Widgets" version="1.2.0" targetFramework="net45" />
</packages>
`

type fixture struct {
	root    string
	appDir  string
	slnPath string
	aPath   string
	bPath   string
	wPath   string
}

func crlf(s string) string {
	return strings.ReplaceAll(s, "\n", "\r\n")
}

func csproj(guid, refs string) string {
	s := strings.Replace(projectTemplate, "%GUID%", guid, 1)
	return strings.Replace(s, "%REFS%", refs, 1)
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// newFixture lays out root/App (App.sln with A and B, A referencing the
// Widgets package) and root/Widgets (the local Widgets project and solution).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		root:    root,
		appDir:  filepath.Join(root, "App"),
		slnPath: filepath.Join(root, "App", "App.sln"),
		aPath:   filepath.Join(root, "App", "A", "A.csproj"),
		bPath:   filepath.Join(root, "App", "B", "B.csproj"),
		wPath:   filepath.Join(root, "Widgets", "Widgets.csproj"),
	}

	write(t, f.slnPath, crlf(appSln))
	write(t, filepath.Join(f.appDir, "popper.config"),
		`<Popper><Project Name="Widgets" ProjectFile="$(DEV)\Widgets\Widgets.csproj" /></Popper>`)
	write(t, f.aPath, crlf(csproj(guidA, widgetsReference)))
	write(t, filepath.Join(f.appDir, "A", "packages.config"), manifest)
	write(t, f.bPath, crlf(csproj(guidB, "")))
	write(t, f.wPath, crlf(csproj(guidWidgets, "")))
	write(t, filepath.Join(root, "Widgets", "Widgets.sln"), crlf(widgetsSln))

	return f
}

func (f *fixture) linker(opts ...Option) *Linker {
	base := []Option{
		WithEnv(map[string]string{"DEV": f.root}),
		WithWorkDir(f.root),
	}
	return New(append(base, opts...)...)
}

func (f *fixture) snapshot(t *testing.T) map[string]string {
	t.Helper()
	return map[string]string{
		f.slnPath: read(t, f.slnPath),
		f.aPath:   read(t, f.aPath),
		f.bPath:   read(t, f.bPath),
	}
}

func TestSwap_ToLocal(t *testing.T) {
	f := newFixture(t)
	bBefore := read(t, f.bPath)

	result, err := f.linker().Swap(context.Background(), Request{SolutionDir: "App", ProjectName: "Widgets"})
	require.NoError(t, err)

	assert.Equal(t, ToLocal, result.Direction)
	assert.Equal(t, f.slnPath, result.SolutionPath)
	assert.Equal(t, f.wPath, result.LocalProjectPath)
	assert.Equal(t, []string{f.aPath}, result.ModifiedProjects)
	assert.Equal(t, []string{f.aPath, f.slnPath}, result.Written)

	a, err := project.Load(f.aPath)
	require.NoError(t, err)
	assert.False(t, a.HasReference("Widgets"))
	require.Len(t, a.ProjectReferences, 1)
	assert.Equal(t, f.wPath, a.ProjectReferences[0].Include)
	assert.Equal(t, guidWidgets, a.ProjectReferences[0].GUID)
	assert.Contains(t, read(t, f.aPath), `<ProjectReference Include="..\..\Widgets\Widgets.csproj">`)

	assert.Equal(t, bBefore, read(t, f.bPath), "projects without the reference are not rewritten")

	sln, err := solution.Parse(f.slnPath)
	require.NoError(t, err)
	w, ok := sln.FindProject("Widgets")
	require.True(t, ok)
	assert.Equal(t, solution.ProjectTypeCSProjectSDK, w.TypeGUID)
	assert.Equal(t, f.wPath, w.Path)

	configs := sln.ProjectConfigurationsFor(guidWidgets)
	require.Len(t, configs, len(sln.SolutionConfigurations))
	assert.Equal(t, solution.Configuration{Configuration: "Debug", Platform: "x86"}, configs[0].Project)
	assert.Equal(t, solution.Configuration{Configuration: "Release", Platform: "Any CPU"}, configs[1].Project)
}

func TestSwap_TogglesBack(t *testing.T) {
	f := newFixture(t)
	l := f.linker()
	req := Request{SolutionDir: "App", ProjectName: "Widgets"}

	_, err := l.Swap(context.Background(), req)
	require.NoError(t, err)

	result, err := l.Swap(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, ToPackage, result.Direction)
	assert.Equal(t, []string{f.aPath}, result.ModifiedProjects)

	a, err := project.Load(f.aPath)
	require.NoError(t, err)
	assert.Empty(t, a.ProjectReferences)
	require.True(t, a.HasReference("Widgets"))
	assert.Equal(t,
		filepath.Join(f.appDir, "packages", "Widgets.1.2.0", "lib", "net45", "Widgets.dll"),
		a.References[1].HintPath)

	// Back to the original bytes: same reference, same position
	assert.Equal(t, crlf(csproj(guidA, widgetsReference)), read(t, f.aPath))

	sln, err := solution.Parse(f.slnPath)
	require.NoError(t, err)
	_, ok := sln.FindProject("Widgets")
	assert.False(t, ok)
	assert.Empty(t, sln.ProjectConfigurationsFor(guidWidgets))
	assert.Equal(t, crlf(appSln), read(t, f.slnPath))
}

func TestSwap_NoLocalSolutionFallsBackToAnyCPU(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(filepath.Join(f.root, "Widgets", "Widgets.sln")))

	_, err := f.linker().Swap(context.Background(), Request{SolutionDir: "App", ProjectName: "Widgets"})
	require.NoError(t, err)

	sln, err := solution.Parse(f.slnPath)
	require.NoError(t, err)
	w, ok := sln.FindProject("Widgets")
	require.True(t, ok)
	assert.Equal(t, solution.ProjectTypeCSProject, w.TypeGUID)

	for _, pc := range sln.ProjectConfigurationsFor(guidWidgets) {
		assert.Equal(t, DefaultPlatform, pc.Project.Platform)
		assert.Equal(t, pc.Solution.Configuration, pc.Project.Configuration)
	}
}

func TestSwap_ReferenceExclusivity(t *testing.T) {
	f := newFixture(t)
	l := f.linker()
	req := Request{SolutionDir: "App", ProjectName: "Widgets"}

	for i := 0; i < 4; i++ {
		_, err := l.Swap(context.Background(), req)
		require.NoError(t, err)

		a, err := project.Load(f.aPath)
		require.NoError(t, err)
		assert.NotEqual(t, a.HasReference("Widgets"), a.HasProjectReference("Widgets"))

		b, err := project.Load(f.bPath)
		require.NoError(t, err)
		assert.False(t, b.HasReference("Widgets"))
		assert.False(t, b.HasProjectReference("Widgets"))
	}
}

func TestSwap_AtomicOnMissingManifestEntry(t *testing.T) {
	f := newFixture(t)
	l := f.linker()
	req := Request{SolutionDir: "App", ProjectName: "Widgets"}

	_, err := l.Swap(context.Background(), req)
	require.NoError(t, err)

	write(t, filepath.Join(f.appDir, "A", "packages.config"), `<packages></packages>`)
	before := f.snapshot(t)

	_, err = l.Swap(context.Background(), req)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, f.snapshot(t))
}

func TestSwap_OutputMarker(t *testing.T) {
	f := newFixture(t)
	before := f.snapshot(t)

	result, err := f.linker(WithOutputMarker("test")).Swap(context.Background(), Request{SolutionDir: "App", ProjectName: "Widgets"})
	require.NoError(t, err)

	testA := filepath.Join(f.appDir, "A", "A.test.csproj")
	testSln := filepath.Join(f.appDir, "App.test.sln")
	assert.Equal(t, []string{testA, testSln}, result.Written)
	assert.FileExists(t, testA)
	assert.FileExists(t, testSln)
	assert.Equal(t, before, f.snapshot(t))
}

func TestSwap_SearchesUpFromWorkDir(t *testing.T) {
	f := newFixture(t)

	l := New(
		WithEnv(map[string]string{"DEV": f.root}),
		WithWorkDir(filepath.Join(f.appDir, "B")),
	)
	result, err := l.Swap(context.Background(), Request{ProjectName: "Widgets"})
	require.NoError(t, err)
	assert.Equal(t, f.slnPath, result.SolutionPath)
}

func TestSwap_Errors(t *testing.T) {
	t.Run("no solution", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.linker().Swap(context.Background(), Request{SolutionDir: "Missing", ProjectName: "Widgets"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ambiguous solution", func(t *testing.T) {
		f := newFixture(t)
		write(t, filepath.Join(f.appDir, "Other.sln"), crlf(appSln))
		_, err := f.linker().Swap(context.Background(), Request{SolutionDir: "App", ProjectName: "Widgets"})
		assert.ErrorIs(t, err, ErrAmbiguous)
	})

	t.Run("no mapping entry", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.linker().Swap(context.Background(), Request{SolutionDir: "App", ProjectName: "Gadgets"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("no mapping file", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, os.Remove(filepath.Join(f.appDir, "popper.config")))
		_, err := f.linker().Swap(context.Background(), Request{SolutionDir: "App", ProjectName: "Widgets"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown mapping tag", func(t *testing.T) {
		f := newFixture(t)
		_, err := New(WithWorkDir(f.root)).Swap(context.Background(), Request{SolutionDir: "App", ProjectName: "Widgets"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("malformed solution", func(t *testing.T) {
		f := newFixture(t)
		write(t, f.slnPath, "Global\r\n")
		_, err := f.linker().Swap(context.Background(), Request{SolutionDir: "App", ProjectName: "Widgets"})
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := New().Swap(context.Background(), Request{})
		assert.Error(t, err)
	})

	t.Run("canceled", func(t *testing.T) {
		f := newFixture(t)
		before := f.snapshot(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := f.linker().Swap(ctx, Request{SolutionDir: "App", ProjectName: "Widgets"})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, before, f.snapshot(t))
	})
}

func TestDirection_String(t *testing.T) {
	assert.Equal(t, "local", ToLocal.String())
	assert.Equal(t, "package", ToPackage.String())
	assert.Equal(t, "Direction(7)", Direction(7).String())
}

func TestSwap_LeavesWebProjectsAlone(t *testing.T) {
	f := newFixture(t)
	web := `Project("{E24C65DC-7377-472B-9ABA-BC803B73C61A}") = "WebSite1", "WebSite1\", "{44444444-4444-4444-4444-444444444444}"
EndProject
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "Remote", "http://localhost/Remote/Remote.csproj", "{55555555-5555-5555-5555-555555555555}"
EndProject
`
	sln := strings.Replace(appSln, "Global\n", web+"Global\n", 1)
	write(t, f.slnPath, crlf(sln))

	l := f.linker()
	req := Request{SolutionDir: "App", ProjectName: "Widgets"}

	result, err := l.Swap(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{f.aPath}, result.ModifiedProjects)
	assert.Contains(t, read(t, f.slnPath), crlf(web))

	_, err = l.Swap(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, crlf(sln), read(t, f.slnPath))
}
