// File: cmd/cmd_test.go
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/stylebox/api/schemas"
	"github.com/xkilldash9x/stylebox/internal/config"
	"github.com/xkilldash9x/stylebox/internal/fonts"
	"github.com/xkilldash9x/stylebox/internal/observability"
	"github.com/xkilldash9x/stylebox/internal/reporting/sarif"
)

// executeCommand runs a fresh command tree and returns everything written to
// stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)
	t.Setenv("STYLEBOX_LOGGER_LEVEL", "fatal")

	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func findElement(t *testing.T, rep schemas.BoxReport, id string) schemas.ElementReport {
	t.Helper()
	for _, el := range rep.Elements {
		if el.ID == id {
			return el
		}
	}
	t.Fatalf("element %q not in report", id)
	return schemas.ElementReport{}
}

func TestVersion(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "stylebox version "+Version+"\n", out)

	out, err = executeCommand(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "stylebox version "+Version)
}

func TestLayoutCommand(t *testing.T) {
	doc := writeTemp(t, "doc.rml", `<rml><body><div id="box"/></body></rml>`)
	sheet := writeTemp(t, "sheet.css", "#box { height: 25px; }")

	t.Run("JSON report", func(t *testing.T) {
		out, err := executeCommand(t, "layout", doc, "--css", sheet, "--width", "300", "--height", "200")
		require.NoError(t, err)

		var rep schemas.BoxReport
		require.NoError(t, json.Unmarshal([]byte(out), &rep))
		assert.Equal(t, doc, rep.Document)
		assert.Equal(t, schemas.Size{Width: 300, Height: 200}, rep.Viewport)
		assert.Equal(t, schemas.Rect{X: 8, Y: 8, Width: 284, Height: 25}, findElement(t, rep, "box").Rect)
	})

	t.Run("Several documents", func(t *testing.T) {
		other := writeTemp(t, "other.rml", `<rml><body><div id="box"/></body></rml>`)
		out, err := executeCommand(t, "layout", doc, other, "--concurrency", "2")
		require.NoError(t, err)

		var reps []schemas.BoxReport
		require.NoError(t, json.Unmarshal([]byte(out), &reps))
		require.Len(t, reps, 2)
		assert.Equal(t, doc, reps[0].Document)
		assert.Equal(t, other, reps[1].Document)
	})

	t.Run("XPath selection", func(t *testing.T) {
		page := writeTemp(t, "page.html", `<html><body><div id="a"></div><p id="b">x</p></body></html>`)
		out, err := executeCommand(t, "layout", page, "--select", "//p")
		require.NoError(t, err)

		var rep schemas.BoxReport
		require.NoError(t, json.Unmarshal([]byte(out), &rep))
		require.Len(t, rep.Elements, 1)
		assert.Equal(t, "b", rep.Elements[0].ID)
	})

	t.Run("Text output to file", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "report.txt")
		out, err := executeCommand(t, "layout", doc, "--format", "text", "--output", target)
		require.NoError(t, err)
		assert.Empty(t, out)

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Contains(t, string(data), "# "+doc)
		assert.Contains(t, string(data), "body > div#box")
	})

	t.Run("Missing document", func(t *testing.T) {
		_, err := executeCommand(t, "layout", filepath.Join(t.TempDir(), "nope.rml"))
		assert.Error(t, err)
	})

	t.Run("Requires a document", func(t *testing.T) {
		_, err := executeCommand(t, "layout")
		assert.Error(t, err)
	})

	t.Run("Rejects an unknown format", func(t *testing.T) {
		_, err := executeCommand(t, "layout", doc, "--format", "yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "output.format")
	})
}

func TestLintCommand(t *testing.T) {
	t.Run("Clean sheet", func(t *testing.T) {
		sheet := writeTemp(t, "ok.css", "p { color: red; margin: 4px; }")
		out, err := executeCommand(t, "lint", sheet, "--format", "text")
		require.NoError(t, err)
		assert.Contains(t, out, "0 diagnostics in 1 sheets")
	})

	t.Run("Diagnostics fail the run", func(t *testing.T) {
		sheet := writeTemp(t, "bad.css", "p {\n  width: blue;\n  bogus: 1;\n  color: red;\n}\n")
		out, err := executeCommand(t, "lint", sheet)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrLintFailed)

		var rep schemas.LintReport
		require.NoError(t, json.Unmarshal([]byte(out), &rep))
		assert.Equal(t, 2, rep.Total)
		require.Len(t, rep.Sheets, 1)
		assert.Equal(t, 1, rep.Sheets[0].Rules)

		kinds := []string{rep.Sheets[0].Diagnostics[0].Kind, rep.Sheets[0].Diagnostics[1].Kind}
		assert.ElementsMatch(t, []string{"invalid-value", "unknown-property"}, kinds)
		assert.Equal(t, 2, rep.Sheets[0].Diagnostics[0].Line)
	})
}

func TestLintSARIF(t *testing.T) {
	sheet := writeTemp(t, "bad.css", "p { colour: red; color: blue; }")
	out, err := executeCommand(t, "lint", sheet, "--format", "sarif")
	require.ErrorIs(t, err, ErrLintFailed)

	var log sarif.Log
	require.NoError(t, json.Unmarshal([]byte(out), &log))
	require.Len(t, log.Runs, 1)
	assert.Equal(t, Version, *log.Runs[0].Tool.Driver.Version)
	require.Len(t, log.Runs[0].Results, 1)
	assert.Equal(t, "STYLEBOX-UNKNOWN-PROPERTY", log.Runs[0].Results[0].RuleID)

	_, err = executeCommand(t, "layout", sheet, "--format", "sarif")
	assert.ErrorContains(t, err, "only available for lint")
}

func TestConfigFile(t *testing.T) {
	t.Run("Invalid values are rejected", func(t *testing.T) {
		path := writeTemp(t, "stylebox.yaml", "engine:\n  batch_concurrency: 0\n")
		_, err := executeCommand(t, "--config", path, "version")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch_concurrency")
	})

	t.Run("Explicit file must exist", func(t *testing.T) {
		_, err := executeCommand(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "version")
		assert.Error(t, err)
	})

	t.Run("Values reach subcommands", func(t *testing.T) {
		path := writeTemp(t, "stylebox.yaml", "engine:\n  viewport_width: 500\n  user_agent_sheet: false\n")
		doc := writeTemp(t, "doc.rml", `<rml><body style="display: block"><div id="box" style="display: block; height: 5px"/></body></rml>`)
		out, err := executeCommand(t, "--config", path, "layout", doc)
		require.NoError(t, err)

		var rep schemas.BoxReport
		require.NoError(t, json.Unmarshal([]byte(out), &rep))
		assert.Equal(t, 500.0, rep.Viewport.Width)
		assert.Equal(t, schemas.Rect{X: 0, Y: 0, Width: 500, Height: 5}, findElement(t, rep, "box").Rect)
	})
}

func TestNewFontProvider(t *testing.T) {
	cfg := config.NewDefaultConfig().Fonts()
	est, ok := newFontProvider(cfg).(*fonts.Estimator)
	require.True(t, ok)
	assert.Equal(t, cfg.AdvanceRatio, est.AdvanceRatio)

	cfg.Face = config.FaceBasic
	_, ok = newFontProvider(cfg).(*fonts.FaceProvider)
	assert.True(t, ok)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, "html", formatOf("a/b.HTML"))
	assert.Equal(t, "rml", formatOf("menu.rml"))
	assert.Equal(t, "", formatOf("doc.txt"))
}
