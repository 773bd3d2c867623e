package emitter

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/swagger2doc/internal/ordered"
	"github.com/mark3labs/swagger2doc/internal/spec"
)

const fixture = `swagger: "2.0"
info: {title: Sample API, version: "1.0.0"}
paths:
  /hello:
    get:
      tags: [greetings, "Admin Tools"]
      summary: Say hello
      responses:
        "200": {description: ok, schema: {$ref: '#/definitions/Hello'}}
definitions:
  Hello:
    type: object
    properties:
      zeta: {type: string}
      alpha: {type: string, enum: [a, b]}
`

func minimalDocument(t *testing.T, opts ...spec.Option) *spec.Document {
	t.Helper()
	raw, err := ordered.Decode([]byte(fixture))
	require.NoError(t, err)
	doc, err := spec.Normalize(context.Background(), raw, append([]spec.Option{spec.WithPackageVersion("1.0.0")}, opts...)...)
	require.NoError(t, err)
	return doc
}

func plannedPaths(res *Result) []string {
	out := make([]string, 0, len(res.Planned))
	for _, pf := range res.Planned {
		out = append(out, pf.RelPath)
	}
	return out
}

func TestEmit_DryRun_Plan(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	res, err := Emit(context.Background(), minimalDocument(t), Options{OutDir: dir, DryRun: true})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	assert.Equal(t, []string{
		"docs/Admin-Tools.json",
		"docs/greetings.json",
		"docs/models/Hello.json",
		"swagger.json",
	}, plannedPaths(res))
	for _, pf := range res.Planned {
		assert.Positive(t, pf.Size)
		assert.Equal(t, os.FileMode(0o644), pf.Mode)
	}
	// Dry-run should not have written files
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatalf("expected no files written on dry-run")
	}
}

func TestEmit_WriteAndContents(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	_, err := Emit(context.Background(), minimalDocument(t), Options{OutDir: dir, Concurrency: 2})
	require.NoError(t, err)

	var whole map[string]any
	data, err := os.ReadFile(filepath.Join(dir, "swagger.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &whole))
	assert.Equal(t, "Sample API", whole["title"])
	assert.Equal(t, "1.0.0", whole["packageVersion"])

	var group TagGroup
	data, err = os.ReadFile(filepath.Join(dir, "docs", "greetings.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &group))
	assert.Equal(t, "greetings", group.Tag)
	require.Len(t, group.Operations, 1)
	assert.Equal(t, "getHello", group.Operations[0].MethodName)

	data, err = os.ReadFile(filepath.Join(dir, "docs", "models", "Hello.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "Alpha Enum"`)
	// Property order from the source survives.
	assert.Less(t, strings.Index(string(data), `"zeta"`), strings.Index(string(data), `"alpha"`))
}

func TestEmit_YAMLKeepsOrder(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	res, err := Emit(context.Background(), minimalDocument(t), Options{OutDir: dir, Format: FormatYAML})
	require.NoError(t, err)
	assert.Contains(t, plannedPaths(res), "swagger.yaml")

	data, err := os.ReadFile(filepath.Join(dir, "swagger.yaml"))
	require.NoError(t, err)
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal(data, &node))
	root := node.Content[0]
	require.Equal(t, yaml.MappingNode, root.Kind)
	assert.Equal(t, "swagger", root.Content[0].Value)
	assert.Equal(t, "title", root.Content[2].Value)
	assert.Contains(t, string(data), "swagger: \"2.0\"")
	assert.Contains(t, string(data), "title: Sample API")
}

func TestEmit_CustomPaths(t *testing.T) {
	t.Parallel()
	doc := minimalDocument(t, spec.WithDocsPath("api/ref"), spec.WithModelPath("api/types"))
	res, err := Emit(context.Background(), doc, Options{OutDir: t.TempDir(), DryRun: true})
	require.NoError(t, err)
	assert.Contains(t, plannedPaths(res), "api/ref/greetings.json")
	assert.Contains(t, plannedPaths(res), "api/types/Hello.json")
}

func TestEmit_RejectsEscapingPaths(t *testing.T) {
	t.Parallel()
	doc := minimalDocument(t, spec.WithModelPath("../outside"))
	_, err := Emit(context.Background(), doc, Options{OutDir: t.TempDir(), DryRun: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relative to the output directory")
}

func TestEmit_NoForce_NonEmptyDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	// create a file to make directory non-empty
	if err := os.WriteFile(filepath.Join(dir, "existing.txt"), []byte("x"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}
	_, err := Emit(context.Background(), minimalDocument(t), Options{OutDir: dir})
	if err == nil {
		t.Fatalf("expected error on non-empty dir without force")
	}

	_, err = Emit(context.Background(), minimalDocument(t), Options{OutDir: dir, Force: true})
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "swagger.json"))
	assert.NoError(t, err)
}

func TestEmit_InvalidOptions(t *testing.T) {
	t.Parallel()
	_, err := Emit(context.Background(), nil, Options{OutDir: t.TempDir()})
	assert.Error(t, err)
	_, err = Emit(context.Background(), minimalDocument(t), Options{})
	assert.Error(t, err)
	_, err = Emit(context.Background(), minimalDocument(t), Options{OutDir: t.TempDir(), Format: "xml"})
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]Format{
		"":         FormatJSON,
		"JSON":     FormatJSON,
		"yml":      FormatYAML,
		" yaml ":   FormatYAML,
		"Markdown": FormatMarkdown,
		"md":       FormatMarkdown,
		"HTML":     FormatHTML,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("toml")
	assert.Error(t, err)
	assert.True(t, FormatMarkdown.IsDocument())
	assert.False(t, FormatYAML.IsDocument())
}

func TestFileName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Admin-Tools", fileName("Admin Tools"))
	assert.Equal(t, "a-b", fileName("a/b"))
	assert.Equal(t, "_", fileName(".."))
	assert.Equal(t, "v1.User", fileName("v1.User"))
}
