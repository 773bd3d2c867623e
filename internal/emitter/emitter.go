// Package emitter writes a normalized document to disk: the whole document,
// one file per tag group and one file per model. Data formats serialize the
// normalized values; document formats render linked markdown or HTML pages.
package emitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"

	"github.com/moby/sys/atomicwriter"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/swagger2doc/internal/spec"
)

// Format selects the serialization of emitted files.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat accepts json, yaml (yml), markdown (md) or html,
// case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("emitter: unknown format %q (want json, yaml, markdown or html)", s)
	}
}

// IsDocument reports whether f renders pages rather than serialized data.
func (f Format) IsDocument() bool {
	return f == FormatMarkdown || f == FormatHTML
}

// Options controls where and how the document is written.
type Options struct {
	OutDir string // required; target directory
	Format Format // defaults to json
	Force  bool   // write into a non-empty directory
	DryRun bool   // don't write, only plan
	// Concurrency bounds parallel writes; defaults to GOMAXPROCS.
	Concurrency int
	Logger      logrus.FieldLogger
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Result lists the planned files, sorted by path.
type Result struct {
	OutDir  string
	Planned []PlannedFile
}

// TagGroup is the content of a per-tag file.
type TagGroup struct {
	Tag        string            `json:"tag"`
	Operations []*spec.Operation `json:"operations"`
}

const fileMode os.FileMode = 0o644

// Emit renders doc under opts.OutDir. Nothing is written on dry runs.
func Emit(ctx context.Context, doc *spec.Document, opts Options) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("emitter: nil document")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("emitter: OutDir is required")
	}
	format, err := ParseFormat(string(opts.Format))
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	files, err := render(doc, format)
	if err != nil {
		return nil, err
	}

	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, p)
	}
	sort.Strings(rels)
	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[rel]), Mode: fileMode})
	}

	abs, err := filepath.Abs(opts.OutDir)
	if err != nil {
		return nil, fmt.Errorf("resolve out dir: %w", err)
	}
	if !opts.DryRun {
		if err := writeFiles(ctx, abs, files, opts, log); err != nil {
			return nil, err
		}
	}
	return &Result{OutDir: abs, Planned: planned}, nil
}

// layout maps outputs to slash-separated paths relative to the output dir.
type layout struct {
	format   Format
	docsDir  string
	modelDir string
}

func (l layout) ext() string {
	switch l.format {
	case FormatMarkdown:
		return ".md"
	case FormatHTML:
		return ".html"
	default:
		return "." + string(l.format)
	}
}

func (l layout) mainFile() string {
	switch l.format {
	case FormatMarkdown:
		return "README.md"
	case FormatHTML:
		return "index.html"
	default:
		return "swagger" + l.ext()
	}
}

func (l layout) tagFile(tag string) string {
	return l.docsDir + "/" + fileName(tag) + l.ext()
}

func (l layout) modelFile(name string) string {
	return l.modelDir + "/" + fileName(name) + l.ext()
}

// fileSet holds rendered outputs keyed by relative path.
type fileSet map[string][]byte

func (s fileSet) put(rel string, build func() ([]byte, error)) error {
	if _, dup := s[rel]; dup {
		return fmt.Errorf("emitter: two outputs map to %s", rel)
	}
	b, err := build()
	if err != nil {
		return fmt.Errorf("encode %s: %w", rel, err)
	}
	s[rel] = b
	return nil
}

// render produces every output file for format.
func render(doc *spec.Document, format Format) (fileSet, error) {
	docsDir, err := subdir(doc.DocsPath, spec.DefaultDocsPath)
	if err != nil {
		return nil, err
	}
	modelDir, err := subdir(doc.ModelPath, spec.DefaultModelPath)
	if err != nil {
		return nil, err
	}
	l := layout{format: format, docsDir: docsDir, modelDir: modelDir}
	if format.IsDocument() {
		return renderPages(doc, l)
	}
	return renderData(doc, l)
}

func renderData(doc *spec.Document, l layout) (fileSet, error) {
	files := fileSet{}
	enc := func(v any) func() ([]byte, error) {
		return func() ([]byte, error) { return encode(v, l.format) }
	}
	if err := files.put(l.mainFile(), enc(doc)); err != nil {
		return nil, err
	}
	for tag, ops := range doc.OperationsByTag.All() {
		if err := files.put(l.tagFile(tag), enc(TagGroup{Tag: tag, Operations: ops})); err != nil {
			return nil, err
		}
	}
	for name, def := range doc.Definitions.All() {
		if err := files.put(l.modelFile(name), enc(def)); err != nil {
			return nil, err
		}
	}
	return files, nil
}

// subdir validates a docs or model path; it must stay inside the output dir.
func subdir(p, fallback string) (string, error) {
	if strings.TrimSpace(p) == "" {
		p = fallback
	}
	clean := filepath.ToSlash(filepath.Clean(filepath.FromSlash(p)))
	if !filepath.IsLocal(filepath.FromSlash(clean)) {
		return "", fmt.Errorf("emitter: path %q must be relative to the output directory", p)
	}
	return clean, nil
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// fileName turns a tag or model name into a single path element.
func fileName(name string) string {
	s := strings.Trim(unsafeName.ReplaceAllString(name, "-"), "-.")
	if s == "" {
		return "_"
	}
	return s
}

func encode(v any, format Format) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	if format == FormatJSON {
		return append(b, '\n'), nil
	}
	// JSON is YAML; going through a node keeps key order.
	var node yaml.Node
	if err := yaml.Unmarshal(b, &node); err != nil {
		return nil, err
	}
	blockStyle(&node)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// blockStyle drops the quoting and flow styles carried over from JSON so the
// encoder picks plain block YAML, quoting only where needed.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func writeFiles(ctx context.Context, abs string, files map[string][]byte, opts Options, log logrus.FieldLogger) error {
	// Pre-flight: if directory exists and not empty and not force, error.
	if st, err := os.Stat(abs); err == nil && st.IsDir() && !opts.Force {
		entries, rerr := os.ReadDir(abs)
		if rerr == nil && len(entries) > 0 {
			return fmt.Errorf("emitter: output directory %q is not empty (use --force to overwrite)", abs)
		}
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for rel, content := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p := filepath.Join(abs, filepath.FromSlash(rel))
			if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
				return fmt.Errorf("mkdir: %w", err)
			}
			if err := atomicwriter.WriteFile(p, content, fileMode); err != nil {
				return fmt.Errorf("write %s: %w", rel, err)
			}
			log.WithFields(logrus.Fields{"file": rel, "bytes": len(content)}).Debug("wrote file")
			return nil
		})
	}
	return g.Wait()
}
