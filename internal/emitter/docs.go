package emitter

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/mark3labs/swagger2doc/internal/ordered"
	"github.com/mark3labs/swagger2doc/internal/spec"
)

//go:embed templates/markdown/*.tmpl templates/html/*.tmpl
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"join":       strings.Join,
	"upper":      strings.ToUpper,
	"cell":       tableCell,
	"joinValues": joinValues,
}

var (
	markdownTemplates *template.Template
	htmlTemplates     *htmltemplate.Template
)

func init() {
	markdownTemplates = template.Must(template.New("").
		Funcs(templateFuncs).
		ParseFS(templateFS, "templates/markdown/*.tmpl"))
	htmlTemplates = htmltemplate.Must(htmltemplate.New("").
		Funcs(htmltemplate.FuncMap(templateFuncs)).
		ParseFS(templateFS, "templates/html/*.tmpl"))
}

// executePage renders the named page template for a document format.
func executePage(format Format, name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if format == FormatHTML {
		err = htmlTemplates.ExecuteTemplate(&buf, name, data)
	} else {
		err = markdownTemplates.ExecuteTemplate(&buf, name, data)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// tableCell keeps a value on one markdown table row.
func tableCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", "<br>")
}

func joinValues(values []any) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprint(v))
	}
	return strings.Join(parts, ", ")
}

type link struct {
	Name string
	Href string
}

type mainPage struct {
	Doc      *spec.Document
	Tags     []tagView
	Models   []link
	Security []securityView
}

type tagPage struct {
	Doc  *spec.Document
	Home string
	Tag  tagView
}

type modelPage struct {
	Doc         *spec.Document
	Home        string
	Name        string
	Description string
	Properties  []typedRow
	Enums       []*spec.EnumDefinition
	Singletons  []*spec.SingletonProperty
}

type tagView struct {
	Name string
	// Href points at the tag page from the main page.
	Href       string
	Operations []operationView
}

type operationView struct {
	*spec.Operation
	Anchor        string
	SecurityNames []string
	ParamGroups   []paramGroup
	ResponseRows  []responseRow
}

type paramGroup struct {
	Title string
	Rows  []typedRow
}

// typedRow is a parameter or model property with a display type. Href links
// the type to its model page when there is one.
type typedRow struct {
	Name        string
	TypeName    string
	Href        string
	Required    bool
	Description string
}

type responseRow struct {
	Code        string
	Description string
	TypeName    string
	Href        string
}

type securityView struct {
	Name        string
	Type        string
	Detail      string
	Description string
}

// renderPages lays the document out as linked pages: a main page with the
// security schemes and method list, one page per tag and one per model.
func renderPages(doc *spec.Document, l layout) (fileSet, error) {
	files := fileSet{}
	page := func(name string, data any) func() ([]byte, error) {
		return func() ([]byte, error) { return executePage(l.format, name, data) }
	}

	tags := make([]tagView, 0, doc.OperationsByTag.Len())
	for tag, ops := range doc.OperationsByTag.All() {
		tags = append(tags, l.tagView(doc, tag, ops))
	}
	models := make([]link, 0, doc.Definitions.Len())
	for name := range doc.Definitions.All() {
		models = append(models, link{Name: name, Href: l.modelFile(name)})
	}

	home := mainPage{Doc: doc, Tags: tags, Models: models, Security: securityViews(doc.SecurityDefinitions)}
	if err := files.put(l.mainFile(), page("main.tmpl", home)); err != nil {
		return nil, err
	}
	for _, tag := range tags {
		data := tagPage{Doc: doc, Home: relLink(l.docsDir, l.mainFile()), Tag: tag}
		if err := files.put(l.tagFile(tag.Name), page("tag.tmpl", data)); err != nil {
			return nil, err
		}
	}
	for name, def := range doc.Definitions.All() {
		if err := files.put(l.modelFile(name), page("model.tmpl", l.modelPage(doc, def))); err != nil {
			return nil, err
		}
	}
	return files, nil
}

func (l layout) tagView(doc *spec.Document, tag string, ops []*spec.Operation) tagView {
	view := tagView{Name: tag, Href: l.tagFile(tag)}
	for _, op := range ops {
		ov := operationView{
			Operation:     op,
			Anchor:        fileName(op.MethodName),
			SecurityNames: securityNames(op.Security),
		}
		for _, g := range []struct {
			title  string
			params []*spec.Parameter
		}{
			{"Path parameters", op.PathParams},
			{"Query parameters", op.QueryParams},
			{"Headers", op.Headers},
			{"Form data", op.FormDataParams},
			{"Body", op.BodyParams},
		} {
			if len(g.params) == 0 {
				continue
			}
			group := paramGroup{Title: g.title}
			for _, p := range g.params {
				typeName, ref := paramType(p)
				desc := p.Description
				if desc == "" {
					desc = p.Title
				}
				group.Rows = append(group.Rows, typedRow{
					Name:        p.Name,
					TypeName:    typeName,
					Href:        l.modelHref(doc, l.docsDir, ref),
					Required:    p.Required,
					Description: desc,
				})
			}
			ov.ParamGroups = append(ov.ParamGroups, group)
		}
		for code, r := range op.Responses.All() {
			typeName, ref := responseType(r)
			ov.ResponseRows = append(ov.ResponseRows, responseRow{
				Code:        code,
				Description: r.Description,
				TypeName:    typeName,
				Href:        l.modelHref(doc, l.docsDir, ref),
			})
		}
		view.Operations = append(view.Operations, ov)
	}
	return view
}

func (l layout) modelPage(doc *spec.Document, def *spec.Definition) modelPage {
	page := modelPage{
		Doc:        doc,
		Home:       relLink(l.modelDir, l.mainFile()),
		Name:       def.Name,
		Enums:      def.Enums,
		Singletons: def.Singletons,
	}
	schema, _ := def.Schema.(*ordered.Object)
	page.Description = ordered.Str(schema, "description")
	required := make(map[string]bool)
	for _, name := range ordered.Strings(schema, "required") {
		required[name] = true
	}
	for name, v := range ordered.Obj(schema, "properties").All() {
		typeName, ref := schemaType(v)
		prop, _ := v.(*ordered.Object)
		page.Properties = append(page.Properties, typedRow{
			Name:        name,
			TypeName:    typeName,
			Href:        l.modelHref(doc, l.modelDir, ref),
			Required:    required[name],
			Description: ordered.Str(prop, "description"),
		})
	}
	return page
}

// modelHref links from a page in fromDir to the page of model ref, or returns
// "" when the document has no such model.
func (l layout) modelHref(doc *spec.Document, fromDir, ref string) string {
	if ref == "" || !doc.Definitions.Has(ref) {
		return ""
	}
	return relLink(fromDir, l.modelFile(ref))
}

func relLink(fromDir, target string) string {
	rel, err := filepath.Rel(filepath.FromSlash(fromDir), filepath.FromSlash(target))
	if err != nil {
		return target
	}
	return filepath.ToSlash(rel)
}

// schemaType describes a schema for display and returns the model it refers
// to, directly or through array items.
func schemaType(v any) (string, string) {
	obj, ok := v.(*ordered.Object)
	if !ok || obj == nil {
		return "", ""
	}
	if ref := ordered.Str(obj, "$ref"); ref != "" {
		name := ref[strings.LastIndex(ref, "/")+1:]
		return name, name
	}
	t := ordered.Str(obj, "type")
	if t == "array" {
		if inner, ref := schemaType(ordered.Obj(obj, "items")); inner != "" {
			return "array of " + inner, ref
		}
		return t, ""
	}
	if f := ordered.Str(obj, "format"); f != "" && t != "" {
		return t + " (" + f + ")", ""
	}
	return t, ""
}

func paramType(p *spec.Parameter) (string, string) {
	switch {
	case p.Ref != "":
		return p.Ref, p.Ref
	case p.Schema != nil:
		return schemaType(p.Schema)
	case p.Type == "array":
		if inner, ref := schemaType(p.Items); inner != "" {
			return "array of " + inner, ref
		}
	case p.Format != "":
		return p.Type + " (" + p.Format + ")", ""
	}
	return p.Type, ""
}

func responseType(r *spec.Response) (string, string) {
	if ref, ok := r.Schema.(*spec.SchemaRef); ok {
		return ref.Ref, ref.Ref
	}
	if name, ref := schemaType(r.Schema); name != "" {
		return name, ref
	}
	// A response $ref names a shared response, not a model.
	return r.Ref, ""
}

// securityNames lists the schemes named by a requirement object or a list of
// them.
func securityNames(requirement any) []string {
	var names []string
	add := func(req *ordered.Object) {
		names = append(names, req.Keys()...)
	}
	switch r := requirement.(type) {
	case *ordered.Object:
		add(r)
	case []any:
		for _, item := range r {
			if req, ok := item.(*ordered.Object); ok {
				add(req)
			}
		}
	}
	return names
}

func securityViews(defs *ordered.Object) []securityView {
	var out []securityView
	for name, v := range defs.All() {
		scheme, _ := v.(*ordered.Object)
		view := securityView{
			Name:        name,
			Type:        ordered.Str(scheme, "type"),
			Description: ordered.Str(scheme, "description"),
		}
		switch view.Type {
		case "apiKey":
			view.Detail = ordered.Str(scheme, "name") + " in " + ordered.Str(scheme, "in")
		case "oauth2":
			detail := "flow " + ordered.Str(scheme, "flow")
			if scopes := ordered.Obj(scheme, "scopes").Keys(); len(scopes) > 0 {
				detail += "; scopes " + strings.Join(scopes, ", ")
			}
			view.Detail = detail
		case "basic":
			view.Detail = "HTTP basic"
		}
		out = append(out, view)
	}
	return out
}
