package spec

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/mark3labs/swagger2doc/internal/naming"
	"github.com/mark3labs/swagger2doc/internal/ordered"
)

const (
	DefaultPackageName = "test-api"
	DefaultClassName   = "API"
	DefaultDocsPath    = "docs"
	DefaultModelPath   = "docs/models"

	// FallbackPackageVersion is used when no version is supplied or found.
	FallbackPackageVersion = "dev-master@dev"
)

// VersionResolver looks up the version of the generated package.
type VersionResolver interface {
	Resolve(ctx context.Context) (string, error)
}

// Option configures a Normalizer.
type Option func(*config)

type config struct {
	logger          logrus.FieldLogger
	packageVersion  string
	versionResolver VersionResolver
	packageName     string
	className       string
	moduleName      string
	docsPath        string
	modelPath       string
	enumDescription bool
	globalSecurity  bool
}

func defaultConfig() config {
	return config{
		logger:          discardLogger(),
		packageName:     DefaultPackageName,
		className:       DefaultClassName,
		docsPath:        DefaultDocsPath,
		modelPath:       DefaultModelPath,
		enumDescription: true,
	}
}

// WithLogger sets the logger used for debug traces and warnings.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPackageVersion fixes the package version, skipping any resolver.
func WithPackageVersion(v string) Option {
	return func(c *config) { c.packageVersion = v }
}

// WithVersionResolver sets the collaborator asked for the package version
// when none is given explicitly.
func WithVersionResolver(r VersionResolver) Option {
	return func(c *config) { c.versionResolver = r }
}

func WithPackageName(name string) Option {
	return func(c *config) { setIfNotEmpty(&c.packageName, name) }
}

func WithClassName(name string) Option {
	return func(c *config) { setIfNotEmpty(&c.className, name) }
}

func WithModuleName(name string) Option {
	return func(c *config) { c.moduleName = name }
}

func WithDocsPath(p string) Option {
	return func(c *config) { setIfNotEmpty(&c.docsPath, p) }
}

func WithModelPath(p string) Option {
	return func(c *config) { setIfNotEmpty(&c.modelPath, p) }
}

// WithEnumDescription controls whether synthesized enums carry the
// description of the parameter or property they come from.
func WithEnumDescription(enabled bool) Option {
	return func(c *config) { c.enumDescription = enabled }
}

// WithGlobalSecurity makes operations without a security requirement inherit
// the document-level one.
func WithGlobalSecurity(enabled bool) Option {
	return func(c *config) { c.globalSecurity = enabled }
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Normalizer turns a decoded Swagger 2.0 document into a Document.
type Normalizer struct {
	raw      *ordered.Object
	cfg      config
	meta     Document
	security *SecuritySchemeResolver
}

// New checks the document version and prepares the document metadata,
// security records and model definitions.
func New(ctx context.Context, raw *ordered.Object, opts ...Option) (*Normalizer, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	v, _ := raw.Get("swagger")
	if s, ok := v.(string); !ok || s != "2.0" {
		msg := fmt.Sprintf("unsupported swagger version %v, expected \"2.0\"", v)
		switch v.(type) {
		case int, int64, uint64, float64:
			msg = fmt.Sprintf("unsupported swagger version %v (a number), expected the string \"2.0\"; quote it in YAML: swagger: \"2.0\"", v)
		}
		return nil, &SpecError{
			Code:        UnsupportedVersion,
			Message:     msg,
			JSONPointer: jsonPointer("swagger"),
			Cause:       ErrUnsupportedVersion,
		}
	}

	n := &Normalizer{raw: raw, cfg: cfg}
	schemes := ordered.Obj(raw, "securityDefinitions")
	n.security = NewSecuritySchemeResolver(schemes, WithResolverLogger(cfg.logger))

	info := ordered.Obj(raw, "info")
	n.meta = Document{
		Swagger:             "2.0",
		Title:               ordered.Str(info, "title"),
		Description:         ordered.Str(info, "description"),
		APIVersion:          ordered.Str(info, "version"),
		PackageVersion:      n.packageVersion(ctx),
		PackageName:         cfg.packageName,
		ClassName:           cfg.className,
		ModuleName:          cfg.moduleName,
		IsSecure:            raw.Has("securityDefinitions"),
		Host:                ordered.Str(raw, "host"),
		BasePath:            ordered.Str(raw, "basePath"),
		Schemes:             ordered.Strings(raw, "schemes"),
		Consumes:            ordered.Strings(raw, "consumes"),
		Produces:            ordered.Strings(raw, "produces"),
		DocsPath:            cfg.docsPath,
		ModelPath:           cfg.modelPath,
		SecurityDefinitions: n.security.Parse(),
		Definitions:         buildDefinitions(ordered.Obj(raw, "definitions"), cfg.enumDescription),
	}
	return n, nil
}

func (n *Normalizer) packageVersion(ctx context.Context) string {
	if n.cfg.packageVersion != "" {
		return n.cfg.packageVersion
	}
	if n.cfg.versionResolver != nil {
		v, err := n.cfg.versionResolver.Resolve(ctx)
		switch {
		case err != nil:
			n.cfg.logger.WithError(err).Warnf("package version lookup failed, using %s", FallbackPackageVersion)
		case v != "":
			return v
		}
	}
	return FallbackPackageVersion
}

// Parse normalizes every operation and returns the assembled document. Each
// call builds a fresh Document.
func (n *Normalizer) Parse() (*Document, error) {
	var global any
	if n.cfg.globalSecurity {
		global, _ = n.raw.Get("security")
	}
	on := NewOperationNormalizer(ordered.Obj(n.raw, "paths"), n.security, n.meta.Definitions, OperationOptions{
		PackageName: n.cfg.packageName,
		ClassName:   n.cfg.className,
		ModuleName:  n.cfg.moduleName,
		DocsPath:    n.cfg.docsPath,
		ModelPath:   n.cfg.modelPath,
		Classifier: ClassifierOptions{
			AddEnumDescription: n.cfg.enumDescription,
			Logger:             n.cfg.logger,
		},
		GlobalSecurity: global,
		Logger:         n.cfg.logger,
	})
	ops, err := on.Parse()
	if err != nil {
		return nil, err
	}
	doc := n.meta
	doc.Operations = ops
	doc.OperationsByTag = on.TagGroups()
	n.cfg.logger.WithFields(logrus.Fields{
		"operations": len(ops),
		"tags":       doc.OperationsByTag.Len(),
		"models":     doc.Definitions.Len(),
	}).Debug("normalized document")
	return &doc, nil
}

// Normalize is New followed by Parse.
func Normalize(ctx context.Context, raw *ordered.Object, opts ...Option) (*Document, error) {
	n, err := New(ctx, raw, opts...)
	if err != nil {
		return nil, err
	}
	return n.Parse()
}

// buildDefinitions wraps each model schema and collects the enums declared on
// its properties. Enums are named after the property.
func buildDefinitions(raw *ordered.Object, enumDescription bool) *ordered.Map[*Definition] {
	defs := ordered.New[*Definition]()
	for name, v := range raw.All() {
		def := &Definition{Name: name, Schema: v, Enums: []*EnumDefinition{}}
		schema, _ := v.(*ordered.Object)
		for prop, pv := range ordered.Obj(schema, "properties").All() {
			p, ok := pv.(*ordered.Object)
			if !ok {
				continue
			}
			values := ordered.List(p, "enum")
			switch {
			case len(values) > 1:
				desc := ""
				if enumDescription {
					desc = ordered.Str(p, "description")
				}
				def.Enums = append(def.Enums, newEnumDefinition(prop, values, desc))
			case len(values) == 1:
				def.Singletons = append(def.Singletons, &SingletonProperty{
					Name:          prop,
					CamelCaseName: naming.CamelCase(prop),
					Value:         values[0],
				})
			}
		}
		defs.Set(name, def)
	}
	return defs
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
