package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willibrandon/slntools/cmd/slntools/config"
	"github.com/willibrandon/slntools/cmd/slntools/output"
)

const swapSolution = `Microsoft Visual Studio Solution File, Format Version 12.00
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "A", "A\A.csproj", "{11111111-1111-1111-1111-111111111111}"
EndProject
Global
	GlobalSection(SolutionConfigurationPlatforms) = preSolution
		Debug|Any CPU = Debug|Any CPU
	EndGlobalSection
	GlobalSection(ProjectConfigurationPlatforms) = postSolution
		{11111111-1111-1111-1111-111111111111}.Debug|Any CPU.ActiveCfg = Debug|Any CPU
		{11111111-1111-1111-1111-111111111111}.Debug|Any CPU.Build.0 = Debug|Any CPU
	EndGlobalSection
EndGlobal
`

const swapProject = `<Project ToolsVersion="4.0" xmlns="http://schemas.microsoft.com/developer/msbuild/2003">
  <PropertyGroup>
    <ProjectGuid>%s</ProjectGuid>
  </PropertyGroup>
  <ItemGroup>%s
  </ItemGroup>
</Project>
`

func writeSwapFixture(t *testing.T) (slnDir string) {
	t.Helper()
	root := t.TempDir()
	slnDir = filepath.Join(root, "App")

	files := map[string]string{
		filepath.Join(slnDir, "App.sln"): swapSolution,
		filepath.Join(slnDir, "popper.config"): `<Popper><Project Name="Widgets" ProjectFile="` +
			filepath.Join(root, "Widgets", "Widgets.csproj") + `"/></Popper>`,
		filepath.Join(slnDir, "A", "A.csproj"): strings.Replace(strings.Replace(swapProject, "%s",
			"{11111111-1111-1111-1111-111111111111}", 1), "%s",
			"\n    <Reference Include=\"Widgets\">\n      <HintPath>..\\packages\\Widgets.1.0.0\\lib\\net45\\Widgets.dll</HintPath>\n    </Reference>", 1),
		filepath.Join(slnDir, "A", "packages.config"): `<packages><package id="Widgets" version="1.0.0" targetFramework="net45"/></packages>`,
		filepath.Join(root, "Widgets", "Widgets.csproj"): strings.Replace(strings.Replace(swapProject, "%s",
			"{77777777-7777-7777-7777-777777777777}", 1), "%s", "", 1),
	}
	for path, content := range files {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return slnDir
}

func TestSwapCommand(t *testing.T) {
	console, out := newTestConsole(output.VerbosityDetailed)
	slnDir := writeSwapFixture(t)

	cmd := NewSwapCommand(console, config.New())
	cmd.SetArgs([]string{"Widgets", "--slndir", slnDir})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Linked Widgets to local project")
	assert.Contains(t, out.String(), "wrote "+filepath.Join(slnDir, "App.sln"))

	sln, err := os.ReadFile(filepath.Join(slnDir, "App.sln"))
	require.NoError(t, err)
	assert.Contains(t, string(sln), `"Widgets", "..\Widgets\Widgets.csproj", "{77777777-7777-7777-7777-777777777777}"`)

	out.Reset()
	cmd = NewSwapCommand(console, config.New())
	cmd.SetArgs([]string{"Widgets", "-s", slnDir})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Linked Widgets back to its package")
}

func TestSwapCommand_TestMarker(t *testing.T) {
	console, _ := newTestConsole(output.VerbosityNormal)
	slnDir := writeSwapFixture(t)
	before, err := os.ReadFile(filepath.Join(slnDir, "App.sln"))
	require.NoError(t, err)

	settings := config.New()
	settings.Swap.TestMarker = "dry"

	cmd := NewSwapCommand(console, settings)
	cmd.SetArgs([]string{"Widgets", "--slndir", slnDir, "--test"})
	require.NoError(t, cmd.Execute())

	assert.FileExists(t, filepath.Join(slnDir, "App.dry.sln"))
	assert.FileExists(t, filepath.Join(slnDir, "A", "A.dry.csproj"))

	after, err := os.ReadFile(filepath.Join(slnDir, "App.sln"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSwapCommand_Errors(t *testing.T) {
	console, _ := newTestConsole(output.VerbosityNormal)

	cmd := NewSwapCommand(console, config.New())
	cmd.SetArgs([]string{})
	assert.Error(t, cmd.Execute())

	cmd = NewSwapCommand(console, config.New())
	cmd.SetArgs([]string{"Gadgets", "--slndir", writeSwapFixture(t)})
	assert.Error(t, cmd.Execute())
}

func TestSwapCommand_HiddenTestFlag(t *testing.T) {
	console, _ := newTestConsole(output.VerbosityNormal)
	cmd := NewSwapCommand(console, config.New())

	f := cmd.Flags().Lookup("test")
	require.NotNil(t, f)
	assert.True(t, f.Hidden)
}
