package spec

import (
	"slices"

	"github.com/mark3labs/swagger2doc/internal/ordered"
)

// Normalized model handed to renderers and the emitter. JSON names follow the
// template variables renderers already use.

// Location is the value of a parameter's "in" field.
type Location string

const (
	InPath     Location = "path"
	InQuery    Location = "query"
	InHeader   Location = "header"
	InFormData Location = "formData"
	InBody     Location = "body"
)

// Verbs are the path item keys treated as operations, in declaration order of
// the verb flags on Operation.
var Verbs = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace", "connect"}

type Document struct {
	Swagger        string   `json:"swagger"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	APIVersion     string   `json:"apiVersion"`
	PackageVersion string   `json:"packageVersion"`
	PackageName    string   `json:"packageName"`
	ClassName      string   `json:"className"`
	ModuleName     string   `json:"moduleName,omitempty"`
	IsSecure       bool     `json:"isSecure"`
	Host           string   `json:"host,omitempty"`
	BasePath       string   `json:"basePath,omitempty"`
	Schemes        []string `json:"schemes,omitempty"`
	Consumes       []string `json:"consumes,omitempty"`
	Produces       []string `json:"produces,omitempty"`
	DocsPath       string   `json:"docsPath"`
	ModelPath      string   `json:"modelPath"`

	Definitions         *ordered.Map[*Definition]  `json:"definitions"`
	Operations          []*Operation               `json:"operations"`
	OperationsByTag     *ordered.Map[[]*Operation] `json:"operationsByTag"`
	SecurityDefinitions *ordered.Object            `json:"securityDefinitions,omitempty"`
}

// Operation is one verb on one path.
type Operation struct {
	Path         string          `json:"path"`
	Method       string          `json:"method"`
	MethodName   string          `json:"methodName"`
	OperationID  string          `json:"operationId,omitempty"`
	Tags         []string        `json:"tags,omitempty"`
	Summary      string          `json:"summary,omitempty"`
	Description  string          `json:"description,omitempty"`
	ExternalDocs *ordered.Object `json:"externalDocs,omitempty"`
	Produces     []string        `json:"produces,omitempty"`
	Consumes     []string        `json:"consumes,omitempty"`
	Schemes      []string        `json:"schemes,omitempty"`
	IsDeprecated bool            `json:"isDeprecated"`
	Security     any             `json:"security,omitempty"`
	IsSecure     bool            `json:"isSecure"`

	IsGET     bool `json:"isGET"`
	IsPUT     bool `json:"isPUT"`
	IsPOST    bool `json:"isPOST"`
	IsDELETE  bool `json:"isDELETE"`
	IsOPTIONS bool `json:"isOPTIONS"`
	IsHEAD    bool `json:"isHEAD"`
	IsPATCH   bool `json:"isPATCH"`
	IsTRACE   bool `json:"isTRACE"`
	IsCONNECT bool `json:"isCONNECT"`

	Headers        []*Parameter      `json:"headers"`
	QueryParams    []*Parameter      `json:"queryParams"`
	PathParams     []*Parameter      `json:"pathParams"`
	FormDataParams []*Parameter      `json:"formDataParams"`
	BodyParams     []*Parameter      `json:"bodyParams"`
	Parameters     []*Parameter      `json:"parameters"`
	Enums          []*EnumDefinition `json:"enums"`

	Responses *ordered.Map[*Response] `json:"responses,omitempty"`

	PackageName string `json:"packageName"`
	ClassName   string `json:"className"`
	ModuleName  string `json:"moduleName,omitempty"`
	DocsPath    string `json:"docsPath"`
	ModelPath   string `json:"modelPath"`

	// Definitions is shared by every operation of a document.
	Definitions *ordered.Map[*Definition] `json:"-"`
}

func newOperation(path, verb string) *Operation {
	return &Operation{
		Path:           path,
		Method:         verb,
		Headers:        []*Parameter{},
		QueryParams:    []*Parameter{},
		PathParams:     []*Parameter{},
		FormDataParams: []*Parameter{},
		BodyParams:     []*Parameter{},
		Parameters:     []*Parameter{},
		Enums:          []*EnumDefinition{},
	}
}

// operationBuckets maps each known location to its bucket on an Operation.
var operationBuckets = map[Location]func(*Operation) *[]*Parameter{
	InHeader:   func(o *Operation) *[]*Parameter { return &o.Headers },
	InQuery:    func(o *Operation) *[]*Parameter { return &o.QueryParams },
	InPath:     func(o *Operation) *[]*Parameter { return &o.PathParams },
	InFormData: func(o *Operation) *[]*Parameter { return &o.FormDataParams },
	InBody:     func(o *Operation) *[]*Parameter { return &o.BodyParams },
}

// Parameter is a classified request parameter, or a header/parameter record
// derived from a security scheme (Title and SchemaName set).
type Parameter struct {
	Name             string          `json:"name"`
	CamelCaseName    string          `json:"camelCaseName"`
	In               Location        `json:"in,omitempty"`
	Title            string          `json:"title,omitempty"`
	Description      string          `json:"description,omitempty"`
	SchemaName       string          `json:"schemaName,omitempty"`
	Type             string          `json:"type,omitempty"`
	Format           string          `json:"format,omitempty"`
	Required         bool            `json:"required"`
	Cardinality      string          `json:"cardinality"`
	Default          any             `json:"default,omitempty"`
	Value            []any           `json:"value,omitempty"`
	Ref              string          `json:"ref,omitempty"`
	Enum             []any           `json:"enum,omitempty"`
	IsSingleton      bool            `json:"isSingleton,omitempty"`
	Singleton        any             `json:"singleton,omitempty"`
	IsPatternType    bool            `json:"isPatternType,omitempty"`
	Pattern          string          `json:"pattern,omitempty"`
	CollectionFormat string          `json:"collectionFormat,omitempty"`
	Schema           any             `json:"schema,omitempty"`
	Items            any             `json:"items,omitempty"`
	Extensions       *ordered.Object `json:"extensions,omitempty"`

	IsPathParameter     bool `json:"isPathParameter,omitempty"`
	IsQueryParameter    bool `json:"isQueryParameter,omitempty"`
	IsHeaderParameter   bool `json:"isHeaderParameter,omitempty"`
	IsFormDataParameter bool `json:"isFormDataParameter,omitempty"`
	IsBodyParameter     bool `json:"isBodyParameter,omitempty"`
}

// setLocationFlag sets the Is<In>Parameter flag matching in. Unknown
// locations set nothing.
func (p *Parameter) setLocationFlag(in Location) bool {
	switch in {
	case InPath:
		p.IsPathParameter = true
	case InQuery:
		p.IsQueryParameter = true
	case InHeader:
		p.IsHeaderParameter = true
	case InFormData:
		p.IsFormDataParameter = true
	case InBody:
		p.IsBodyParameter = true
	default:
		return false
	}
	return true
}

func (p *Parameter) clone() *Parameter {
	c := *p
	c.Value = slices.Clone(p.Value)
	c.Enum = slices.Clone(p.Enum)
	return &c
}

// EnumDefinition is a named list of literal values synthesized from a
// parameter or a model property.
type EnumDefinition struct {
	Name          string `json:"name"`
	CamelCaseName string `json:"camelCaseName"`
	Values        []any  `json:"values"`
	Description   string `json:"description,omitempty"`
}

// SingletonProperty is a model property whose enum admits a single value.
type SingletonProperty struct {
	Name          string `json:"name"`
	CamelCaseName string `json:"camelCaseName"`
	Value         any    `json:"value"`
}

// Definition is a model schema with the enums found on its properties.
type Definition struct {
	Name       string               `json:"name"`
	Schema     any                  `json:"schema"`
	Enums      []*EnumDefinition    `json:"enums"`
	Singletons []*SingletonProperty `json:"singletons,omitempty"`
}

type Response struct {
	Code        string          `json:"code"`
	Description string          `json:"description,omitempty"`
	Ref         string          `json:"ref,omitempty"`
	Schema      any             `json:"schema,omitempty"`
	ItemsRef    string          `json:"itemsRef,omitempty"`
	Headers     *ordered.Object `json:"headers,omitempty"`
	Examples    *ordered.Object `json:"examples,omitempty"`
	Extensions  *ordered.Object `json:"extensions,omitempty"`
}

// SchemaRef replaces a response schema that points at a model. Ref is empty
// when the pointer was not a string.
type SchemaRef struct {
	Ref string `json:"ref,omitempty"`
}
