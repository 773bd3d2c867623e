package spec

import (
	"github.com/sirupsen/logrus"

	"github.com/mark3labs/swagger2doc/internal/naming"
	"github.com/mark3labs/swagger2doc/internal/ordered"
)

// SecuritySchemeResolver precomputes the header and parameter records each
// security scheme injects into the operations that require it.
type SecuritySchemeResolver struct {
	schemes    *ordered.Object
	headers    *ordered.Map[[]*Parameter]
	parameters *ordered.Map[[]*Parameter]
	log        logrus.FieldLogger
}

// ResolverOption configures a SecuritySchemeResolver.
type ResolverOption func(*SecuritySchemeResolver)

func WithResolverLogger(l logrus.FieldLogger) ResolverOption {
	return func(r *SecuritySchemeResolver) {
		if l != nil {
			r.log = l
		}
	}
}

// NewSecuritySchemeResolver builds records for every scheme declaring an
// "in" location. Other schemes, such as OAuth2 flows, contribute nothing.
func NewSecuritySchemeResolver(schemes *ordered.Object, opts ...ResolverOption) *SecuritySchemeResolver {
	r := &SecuritySchemeResolver{
		schemes:    schemes,
		headers:    ordered.New[[]*Parameter](),
		parameters: ordered.New[[]*Parameter](),
		log:        discardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	for name, v := range schemes.All() {
		cfg, ok := v.(*ordered.Object)
		if !ok {
			continue
		}
		in := Location(ordered.Str(cfg, "in"))
		if in == "" {
			continue
		}
		rec := schemeRecord(name, in, cfg)
		table := r.parameters
		if in == InHeader {
			table = r.headers
		}
		list, _ := table.Get(name)
		table.Set(name, append(list, rec))
	}
	return r
}

func schemeRecord(scheme string, in Location, cfg *ordered.Object) *Parameter {
	title := "Parameter for authorization by " + scheme
	if in == InHeader {
		title = "Header for authorization by " + scheme
	}
	def, _ := cfg.Get("default")
	if def == nil {
		def = ""
	}
	name := ordered.Str(cfg, "name")
	required := ordered.Flag(cfg, "required")
	rec := &Parameter{
		Title:         title,
		Description:   title,
		Name:          name,
		CamelCaseName: naming.CamelCase(name),
		SchemaName:    scheme,
		In:            in,
		Required:      required,
		Cardinality:   cardinality(required),
		Value:         []any{def},
	}
	rec.setLocationFlag(in)
	return rec
}

// Parse returns the scheme table unchanged.
func (r *SecuritySchemeResolver) Parse() *ordered.Object { return r.schemes }

// HeadersForRequest returns copies of the header records of the schemes named
// by a security requirement.
func (r *SecuritySchemeResolver) HeadersForRequest(requirement any) []*Parameter {
	return r.resolve(r.headers, requirement)
}

// ParametersForRequest returns copies of the non-header records of the
// schemes named by a security requirement.
func (r *SecuritySchemeResolver) ParametersForRequest(requirement any) []*Parameter {
	return r.resolve(r.parameters, requirement)
}

// resolve accepts a requirement object (scheme name → scopes) or a list of
// them. Schemes contribute in iteration order, at most once per call.
func (r *SecuritySchemeResolver) resolve(table *ordered.Map[[]*Parameter], requirement any) []*Parameter {
	out := []*Parameter{}
	seen := make(map[string]bool)
	add := func(req *ordered.Object) {
		for name := range req.All() {
			if seen[name] {
				continue
			}
			seen[name] = true
			records, ok := table.Get(name)
			if !ok {
				if !r.schemes.Has(name) {
					r.log.WithField("scheme", name).Debug("security requirement names an unknown scheme")
				}
				continue
			}
			for _, rec := range records {
				out = append(out, rec.clone())
			}
		}
	}
	switch req := requirement.(type) {
	case *ordered.Object:
		add(req)
	case []any:
		for _, item := range req {
			if obj, ok := item.(*ordered.Object); ok {
				add(obj)
			}
		}
	}
	return out
}
