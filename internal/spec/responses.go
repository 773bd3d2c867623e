package spec

import "github.com/mark3labs/swagger2doc/internal/ordered"

// ResponseResolver replaces model references in response schemas with
// SchemaRef values.
type ResponseResolver struct {
	responses *ordered.Object
}

func NewResponseResolver(responses *ordered.Object) *ResponseResolver {
	return &ResponseResolver{responses: responses}
}

// Parse returns the responses keyed by status code in input order.
func (r *ResponseResolver) Parse() *ordered.Map[*Response] {
	out := ordered.New[*Response]()
	for code, v := range r.responses.All() {
		raw, ok := v.(*ordered.Object)
		if !ok {
			out.Set(code, &Response{Code: code})
			continue
		}
		resp := &Response{
			Code:        code,
			Description: ordered.Str(raw, "description"),
			Headers:     ordered.Obj(raw, "headers"),
			Examples:    ordered.Obj(raw, "examples"),
			Extensions:  extensions(raw),
		}
		if ref, ok := raw.Get("$ref"); ok {
			resp.Ref, _ = refName(ref)
		}
		if schema, ok := raw.Get("schema"); ok {
			resp.Schema, resp.ItemsRef = resolveSchema(schema)
		}
		out.Set(code, resp)
	}
	return out
}

// resolveSchema swaps a referencing schema for a SchemaRef. Inline schemas
// are returned as is, along with the model name of their array items if any.
func resolveSchema(schema any) (any, string) {
	obj, ok := schema.(*ordered.Object)
	if !ok {
		return schema, ""
	}
	if ref, ok := obj.Get("$ref"); ok {
		name, _ := refName(ref)
		return &SchemaRef{Ref: name}, ""
	}
	var itemsRef string
	if ref, ok := ordered.Obj(obj, "items").Get("$ref"); ok {
		itemsRef, _ = refName(ref)
	}
	return obj, itemsRef
}
