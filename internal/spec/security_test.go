package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/swagger2doc/internal/ordered"
)

const securityFixture = `
securityDefinitions:
  APIKeyHeader:
    type: apiKey
    in: header
    name: Authorization
  APIKeyQuery:
    type: apiKey
    in: query
    name: access_token
    default: secret
  OAuth:
    type: oauth2
    flow: implicit
    authorizationUrl: https://example.com/oauth
requirements:
  header: {APIKeyHeader: []}
  unknown: {test: []}
  both: {APIKeyQuery: [], APIKeyHeader: [], OAuth: [read]}
  alternatives:
    - {APIKeyHeader: []}
    - {APIKeyHeader: [], APIKeyQuery: []}
`

func securityResolver(t *testing.T) (*SecuritySchemeResolver, *ordered.Object) {
	t.Helper()
	fixture := decodeYAML(t, securityFixture)
	return NewSecuritySchemeResolver(ordered.Obj(fixture, "securityDefinitions")), ordered.Obj(fixture, "requirements")
}

func requirement(reqs *ordered.Object, name string) any {
	v, _ := reqs.Get(name)
	return v
}

func TestSecuritySchemeResolver_HeaderScheme(t *testing.T) {
	t.Parallel()
	r, reqs := securityResolver(t)

	headers := r.HeadersForRequest(requirement(reqs, "header"))
	require.Len(t, headers, 1)
	h := headers[0]
	assert.Equal(t, "authorization", h.CamelCaseName)
	assert.Equal(t, "Authorization", h.Name)
	assert.True(t, h.IsHeaderParameter)
	assert.Equal(t, "APIKeyHeader", h.SchemaName)
	assert.Equal(t, "Header for authorization by APIKeyHeader", h.Title)
	assert.Equal(t, h.Title, h.Description)
	assert.False(t, h.Required)
	assert.Equal(t, []any{""}, h.Value)

	assert.Empty(t, r.ParametersForRequest(requirement(reqs, "header")))
}

func TestSecuritySchemeResolver_UnknownSchemeIsSkipped(t *testing.T) {
	t.Parallel()
	r, reqs := securityResolver(t)
	assert.Empty(t, r.HeadersForRequest(requirement(reqs, "unknown")))
	assert.Empty(t, r.ParametersForRequest(requirement(reqs, "unknown")))
}

func TestSecuritySchemeResolver_NonObjectRequirement(t *testing.T) {
	t.Parallel()
	r, _ := securityResolver(t)
	for _, req := range []any{nil, "APIKeyHeader", 3, []any{"APIKeyHeader"}} {
		assert.NotNil(t, r.HeadersForRequest(req))
		assert.Empty(t, r.HeadersForRequest(req))
	}
}

func TestSecuritySchemeResolver_ParameterScheme(t *testing.T) {
	t.Parallel()
	r, reqs := securityResolver(t)

	params := r.ParametersForRequest(requirement(reqs, "both"))
	require.Len(t, params, 1)
	p := params[0]
	assert.Equal(t, InQuery, p.In)
	assert.True(t, p.IsQueryParameter)
	assert.Equal(t, "accessToken", p.CamelCaseName)
	assert.Equal(t, "Parameter for authorization by APIKeyQuery", p.Title)
	assert.Equal(t, []any{"secret"}, p.Value)

	// OAuth declares no location and contributes nothing.
	headers := r.HeadersForRequest(requirement(reqs, "both"))
	require.Len(t, headers, 1)
	assert.Equal(t, "APIKeyHeader", headers[0].SchemaName)
}

func TestSecuritySchemeResolver_RequirementList(t *testing.T) {
	t.Parallel()
	r, reqs := securityResolver(t)

	headers := r.HeadersForRequest(requirement(reqs, "alternatives"))
	require.Len(t, headers, 1, "a scheme named by several alternatives contributes once")
	params := r.ParametersForRequest(requirement(reqs, "alternatives"))
	require.Len(t, params, 1)
	assert.Equal(t, "APIKeyQuery", params[0].SchemaName)
}

func TestSecuritySchemeResolver_ReturnsFreshRecords(t *testing.T) {
	t.Parallel()
	r, reqs := securityResolver(t)

	first := r.HeadersForRequest(requirement(reqs, "header"))
	first[0].Value[0] = "mutated"
	first[0].Name = "mutated"

	second := r.HeadersForRequest(requirement(reqs, "header"))
	assert.NotSame(t, first[0], second[0])
	assert.Equal(t, "Authorization", second[0].Name)
	assert.Equal(t, []any{""}, second[0].Value)
}

func TestSecuritySchemeResolver_ParseIsPassThrough(t *testing.T) {
	t.Parallel()
	fixture := decodeYAML(t, securityFixture)
	schemes := ordered.Obj(fixture, "securityDefinitions")
	r := NewSecuritySchemeResolver(schemes)
	assert.Same(t, schemes, r.Parse())
	assert.Equal(t, []string{"APIKeyHeader", "APIKeyQuery", "OAuth"}, r.Parse().Keys())
}

func TestSecuritySchemeResolver_NilSchemes(t *testing.T) {
	t.Parallel()
	r := NewSecuritySchemeResolver(nil)
	assert.Nil(t, r.Parse())
	assert.Empty(t, r.HeadersForRequest(decodeYAML(t, "a: []")))
}
