package spec

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mark3labs/swagger2doc/internal/naming"
	"github.com/mark3labs/swagger2doc/internal/ordered"
)

// OperationOptions carries the renderer metadata attached to every operation
// and the options of the nested parameter classifier.
type OperationOptions struct {
	PackageName string
	ClassName   string
	ModuleName  string
	DocsPath    string
	ModelPath   string
	Classifier  ClassifierOptions
	// GlobalSecurity, when non-nil, is used by operations declaring no
	// security of their own.
	GlobalSecurity any
	Logger         logrus.FieldLogger
}

// OperationNormalizer builds an Operation for every verb of every path.
type OperationNormalizer struct {
	paths       *ordered.Object
	security    *SecuritySchemeResolver
	definitions *ordered.Map[*Definition]
	opts        OperationOptions
	groups      *ordered.Map[[]*Operation]
}

func NewOperationNormalizer(paths *ordered.Object, security *SecuritySchemeResolver, definitions *ordered.Map[*Definition], opts OperationOptions) *OperationNormalizer {
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	if opts.Classifier.Logger == nil {
		opts.Classifier.Logger = opts.Logger
	}
	return &OperationNormalizer{
		paths:       paths,
		security:    security,
		definitions: definitions,
		opts:        opts,
		groups:      ordered.New[[]*Operation](),
	}
}

// Parse returns operations in path then verb input order. It fails only when
// a security scheme injects a parameter that no bucket can hold.
func (n *OperationNormalizer) Parse() ([]*Operation, error) {
	n.groups = ordered.New[[]*Operation]()
	ops := []*Operation{}
	for path, v := range n.paths.All() {
		item, ok := v.(*ordered.Object)
		if !ok {
			n.opts.Logger.WithField("path", path).Debug("skipping path item that is not an object")
			continue
		}
		shared := ordered.List(item, "parameters")
		for key, rawOp := range item.All() {
			verb := strings.ToLower(key)
			if !slices.Contains(Verbs, verb) {
				continue
			}
			raw, ok := rawOp.(*ordered.Object)
			if !ok {
				continue
			}
			op, err := n.normalize(path, verb, raw, shared)
			if err != nil {
				return nil, err
			}
			for _, tag := range op.Tags {
				list, _ := n.groups.Get(tag)
				n.groups.Set(tag, append(list, op))
			}
			ops = append(ops, op)
		}
	}
	return ops, nil
}

// TagGroups maps each tag to its operations, in first-seen tag order. It is
// filled by Parse.
func (n *OperationNormalizer) TagGroups() *ordered.Map[[]*Operation] { return n.groups }

func (n *OperationNormalizer) normalize(path, verb string, raw *ordered.Object, shared []any) (*Operation, error) {
	op := newOperation(path, strings.ToUpper(verb))
	setVerbFlags(op)

	op.OperationID = ordered.Str(raw, "operationId")
	if op.OperationID != "" {
		op.MethodName = normalizeOperationID(op.OperationID)
	} else {
		op.MethodName = methodNameFromPath(op.Method, path)
	}
	op.Tags = ordered.Strings(raw, "tags")
	op.Summary = ordered.Str(raw, "summary")
	op.Description = ordered.Str(raw, "description")
	op.ExternalDocs = ordered.Obj(raw, "externalDocs")
	op.Produces = ordered.Strings(raw, "produces")
	op.Consumes = ordered.Strings(raw, "consumes")
	op.Schemes = ordered.Strings(raw, "schemes")
	op.IsDeprecated = ordered.Flag(raw, "deprecated")
	if security, ok := raw.Get("security"); ok {
		op.Security = security
		op.IsSecure = true
	} else if n.opts.GlobalSecurity != nil {
		op.Security = n.opts.GlobalSecurity
		op.IsSecure = true
	}

	if params := mergeParameters(shared, ordered.List(raw, "parameters")); len(params) > 0 {
		c := NewParameterClassifier(params, n.opts.Classifier)
		op.Parameters = c.Parse()
		op.Headers = c.Headers
		op.QueryParams = c.Querys
		op.PathParams = c.Paths
		op.FormDataParams = c.FormDatas
		op.BodyParams = c.Bodys
		op.Enums = c.Enums
	}
	if responses := ordered.Obj(raw, "responses"); responses.Len() > 0 {
		op.Responses = NewResponseResolver(responses).Parse()
	}
	if err := n.mergeSecurity(op); err != nil {
		return nil, err
	}

	op.PackageName = n.opts.PackageName
	op.ClassName = n.opts.ClassName
	op.ModuleName = n.opts.ModuleName
	op.DocsPath = n.opts.DocsPath
	op.ModelPath = n.opts.ModelPath
	op.Definitions = n.definitions
	return op, nil
}

// mergeSecurity appends the records of the operation's security requirement
// after its declared parameters.
func (n *OperationNormalizer) mergeSecurity(op *Operation) error {
	if n.security == nil {
		return nil
	}
	op.Headers = append(op.Headers, n.security.HeadersForRequest(op.Security)...)
	for _, p := range n.security.ParametersForRequest(op.Security) {
		bucket, ok := operationBuckets[p.In]
		if !ok {
			return &SpecError{
				Code:        InvalidSecurityMapping,
				Message:     fmt.Sprintf("%s %s: security scheme %q injects %q into unsupported location %q", op.Method, op.Path, p.SchemaName, p.Name, p.In),
				JSONPointer: jsonPointer("securityDefinitions", p.SchemaName, "in"),
				Cause:       ErrInvalidSecurityMapping,
			}
		}
		op.Parameters = append(op.Parameters, p)
		b := bucket(op)
		*b = append(*b, p)
	}
	return nil
}

func setVerbFlags(op *Operation) {
	switch op.Method {
	case "GET":
		op.IsGET = true
	case "PUT":
		op.IsPUT = true
	case "POST":
		op.IsPOST = true
	case "DELETE":
		op.IsDELETE = true
	case "OPTIONS":
		op.IsOPTIONS = true
	case "HEAD":
		op.IsHEAD = true
	case "PATCH":
		op.IsPATCH = true
	case "TRACE":
		op.IsTRACE = true
	case "CONNECT":
		op.IsCONNECT = true
	}
}

// mergeParameters combines path-level and operation-level parameters. An
// operation entry replaces a path entry with the same location and name.
func mergeParameters(shared, own []any) []any {
	if len(shared) == 0 {
		return own
	}
	overridden := make(map[string]bool, len(own))
	for _, p := range own {
		if key, ok := paramKey(p); ok {
			overridden[key] = true
		}
	}
	out := make([]any, 0, len(shared)+len(own))
	for _, p := range shared {
		if key, ok := paramKey(p); ok && overridden[key] {
			continue
		}
		out = append(out, p)
	}
	return append(out, own...)
}

func paramKey(p any) (string, bool) {
	obj, ok := p.(*ordered.Object)
	if !ok {
		return "", false
	}
	name := ordered.Str(obj, "name")
	if name == "" {
		return "", false
	}
	return ordered.Str(obj, "in") + ":" + name, true
}

var operationIDReplacer = strings.NewReplacer(".", "_", "-", "_", "{", "_", "}", "_", " ", "_")

// normalizeOperationID makes an operationId usable as a method name:
// "users.get-by{id}" → "users_get_by_id_".
func normalizeOperationID(id string) string {
	return operationIDReplacer.Replace(id)
}

// methodNameFromPath derives a method name from the verb and path:
// GET /users/{id} → getUsersById. The root path yields the upper-case verb.
func methodNameFromPath(method, path string) string {
	if path == "/" || path == "" {
		return method
	}
	clean := strings.TrimPrefix(strings.TrimSuffix(path, "/"), "/")
	segments := strings.Split(clean, "/")
	for i, seg := range segments {
		if len(seg) >= 2 && seg[0] == '{' && seg[len(seg)-1] == '}' {
			segments[i] = "by" + naming.UpperFirst(seg[1:len(seg)-1])
		}
	}
	verb := strings.ToLower(method)
	rest := naming.CamelCase(strings.Join(segments, "-"))
	if rest == "" {
		return verb
	}
	return verb + naming.UpperFirst(rest)
}
