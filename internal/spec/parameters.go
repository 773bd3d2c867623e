package spec

import (
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mark3labs/swagger2doc/internal/naming"
	"github.com/mark3labs/swagger2doc/internal/ordered"
)

// ClassifierOptions tunes ParameterClassifier.
type ClassifierOptions struct {
	// AddEnumDescription copies a parameter's description onto the enum
	// synthesized from it.
	AddEnumDescription bool
	Logger             logrus.FieldLogger
}

// DefaultClassifierOptions returns the options used when none are given.
func DefaultClassifierOptions() ClassifierOptions {
	return ClassifierOptions{AddEnumDescription: true}
}

// ParameterClassifier turns a raw parameter list into classified records.
// The location buckets and Enums are filled by Parse and reset on each call.
type ParameterClassifier struct {
	params []any
	opts   ClassifierOptions

	Headers   []*Parameter
	Paths     []*Parameter
	Querys    []*Parameter
	FormDatas []*Parameter
	Bodys     []*Parameter
	Enums     []*EnumDefinition
}

var classifierBuckets = map[Location]func(*ParameterClassifier) *[]*Parameter{
	InHeader:   func(c *ParameterClassifier) *[]*Parameter { return &c.Headers },
	InPath:     func(c *ParameterClassifier) *[]*Parameter { return &c.Paths },
	InQuery:    func(c *ParameterClassifier) *[]*Parameter { return &c.Querys },
	InFormData: func(c *ParameterClassifier) *[]*Parameter { return &c.FormDatas },
	InBody:     func(c *ParameterClassifier) *[]*Parameter { return &c.Bodys },
}

func NewParameterClassifier(params []any, opts ClassifierOptions) *ParameterClassifier {
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	return &ParameterClassifier{params: params, opts: opts}
}

// Parse classifies every parameter in input order and returns the flat list.
// Excluded parameters appear nowhere; parameters with an unknown location
// appear only in the flat list.
func (c *ParameterClassifier) Parse() []*Parameter {
	c.Headers = []*Parameter{}
	c.Paths = []*Parameter{}
	c.Querys = []*Parameter{}
	c.FormDatas = []*Parameter{}
	c.Bodys = []*Parameter{}
	c.Enums = []*EnumDefinition{}

	out := make([]*Parameter, 0, len(c.params))
	for i, item := range c.params {
		raw, ok := item.(*ordered.Object)
		if !ok {
			c.opts.Logger.WithField("index", i).Debug("skipping parameter that is not an object")
			continue
		}
		p, enum, ok := classifyParameter(raw, c.opts)
		if !ok {
			continue
		}
		if enum != nil {
			c.Enums = append(c.Enums, enum)
		}
		if bucket, known := classifierBuckets[p.In]; known {
			b := bucket(c)
			*b = append(*b, p)
		} else if p.In != "" {
			c.opts.Logger.WithFields(logrus.Fields{"parameter": p.Name, "in": p.In}).Debug("parameter location has no bucket")
		}
		out = append(out, p)
	}
	return out
}

// classifyParameter builds the normalized record for one raw parameter. It
// reports false when the parameter carries an exclusion marker. The returned
// enum is non-nil only when the parameter declares more than one value.
func classifyParameter(raw *ordered.Object, opts ClassifierOptions) (*Parameter, *EnumDefinition, bool) {
	if isExcluded(raw) {
		return nil, nil, false
	}
	p := &Parameter{
		Name:             ordered.Str(raw, "name"),
		In:               Location(ordered.Str(raw, "in")),
		Description:      ordered.Str(raw, "description"),
		Type:             ordered.Str(raw, "type"),
		Format:           ordered.Str(raw, "format"),
		Required:         ordered.Flag(raw, "required"),
		CollectionFormat: ordered.Str(raw, "collectionFormat"),
		Extensions:       extensions(raw),
	}
	p.Default, _ = raw.Get("default")
	p.Schema, _ = raw.Get("schema")
	p.Items, _ = raw.Get("items")

	if v, ok := raw.Get("$ref"); ok {
		p.Ref, _ = refName(v)
	} else if p.In == InBody {
		if v, ok := ordered.Obj(raw, "schema").Get("$ref"); ok {
			p.Ref, _ = refName(v)
		}
	}

	var enum *EnumDefinition
	if values := ordered.List(raw, "enum"); len(values) > 0 {
		p.Enum = slices.Clone(values)
		if len(values) == 1 {
			p.IsSingleton = true
			p.Singleton = values[0]
		} else {
			desc := ""
			if opts.AddEnumDescription {
				desc = p.Description
			}
			enum = newEnumDefinition(p.Name, values, desc)
		}
	}

	p.setLocationFlag(p.In)
	if p.In == InQuery {
		if pattern := ordered.Str(raw, "x-name-pattern"); pattern != "" {
			p.IsPatternType = true
			p.Pattern = pattern
		}
	}
	p.Cardinality = cardinality(p.Required)
	p.CamelCaseName = naming.CamelCase(p.Name)
	return p, enum, true
}

// isExcluded reports whether a parameter is hidden from bindings, either
// explicitly or because a proxy injects it.
func isExcluded(raw *ordered.Object) bool {
	v, _ := raw.Get("x-exclude-from-bindings")
	if b, ok := v.(bool); ok && b {
		return true
	}
	return raw.Has("x-proxy-header")
}

func newEnumDefinition(name string, values []any, description string) *EnumDefinition {
	camel := naming.CamelCase(name)
	return &EnumDefinition{
		Name:          naming.UpperFirst(camel) + " Enum",
		CamelCaseName: camel,
		Values:        slices.Clone(values),
		Description:   description,
	}
}

func cardinality(required bool) string {
	if required {
		return ""
	}
	return "?"
}

// refName returns the last "/" segment of a $ref value. ok is false when the
// value is not a string.
func refName(v any) (name string, ok bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return s[strings.LastIndex(s, "/")+1:], true
}

// extensions collects the x- keys of obj, or nil when there are none.
func extensions(obj *ordered.Object) *ordered.Object {
	var out *ordered.Object
	for k, v := range obj.All() {
		if !strings.HasPrefix(k, "x-") {
			continue
		}
		if out == nil {
			out = ordered.New[any]()
		}
		out.Set(k, v)
	}
	return out
}
