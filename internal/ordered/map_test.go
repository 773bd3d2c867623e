package ordered

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_SetKeepsFirstPosition(t *testing.T) {
	t.Parallel()
	m := New[int]()
	m.Set("b", 1)
	m.Set("a", 2)
	m.Set("b", 3)

	assert.Equal(t, []string{"b", "a"}, m.Keys())
	v, ok := m.Get("b")
	require.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, 2, m.Len())
}

func TestMap_NilSafe(t *testing.T) {
	t.Parallel()
	var m *Map[string]
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.Has("x"))
	assert.Nil(t, m.Keys())
	for range m.All() {
		t.Fatalf("nil map should not yield")
	}
	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

func TestMap_ZeroValueUsable(t *testing.T) {
	t.Parallel()
	var m Map[bool]
	m.Set("x", true)
	assert.True(t, m.Has("x"))
}

func TestDecode_PreservesOrderJSONAndYAML(t *testing.T) {
	t.Parallel()
	inputs := map[string]string{
		"json": `{"zeta": 1, "alpha": {"y": [1, "two", true], "x": null}, "mid": 1.5}`,
		"yaml": "zeta: 1\nalpha:\n  y: [1, two, true]\n  x: ~\nmid: 1.5\n",
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			obj, err := Decode([]byte(in))
			require.NoError(t, err)
			assert.Equal(t, []string{"zeta", "alpha", "mid"}, obj.Keys())

			alpha := Obj(obj, "alpha")
			require.NotNil(t, alpha)
			assert.Equal(t, []string{"y", "x"}, alpha.Keys())
			assert.Equal(t, []any{1, "two", true}, List(alpha, "y"))

			out, err := json.Marshal(obj)
			require.NoError(t, err)
			assert.Equal(t, `{"zeta":1,"alpha":{"y":[1,"two",true],"x":null},"mid":1.5}`, string(out))
		})
	}
}

func TestDecode_MergeKeysAndAliases(t *testing.T) {
	t.Parallel()
	in := `base: &base
  a: 1
  b: 2
child:
  <<: *base
  b: 3
ref: *base
`
	obj, err := Decode([]byte(in))
	require.NoError(t, err)
	child := Obj(obj, "child")
	require.NotNil(t, child)
	v, _ := child.Get("b")
	assert.Equal(t, 3, v)
	v, _ = child.Get("a")
	assert.Equal(t, 1, v)
	assert.NotNil(t, Obj(obj, "ref"))
}

func TestDecode_TimestampStaysString(t *testing.T) {
	t.Parallel()
	obj, err := Decode([]byte("released: 2020-01-02\n"))
	require.NoError(t, err)
	assert.Equal(t, "2020-01-02", Str(obj, "released"))
}

func TestDecode_RejectsNonMapping(t *testing.T) {
	t.Parallel()
	_, err := Decode([]byte("- a\n- b\n"))
	require.Error(t, err)
	_, err = Decode([]byte("{not: valid"))
	require.Error(t, err)
}

func TestStrings_SkipsNonStrings(t *testing.T) {
	t.Parallel()
	obj, err := Decode([]byte(`tags: [a, 1, b]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, Strings(obj, "tags"))
	assert.Empty(t, Str(obj, "missing"))
	assert.False(t, Flag(obj, "tags"))
}

func TestMap_MarshalAfterReset(t *testing.T) {
	t.Parallel()
	m := New[[]string]()
	m.Set("pets", []string{"list"})
	m.Set("store", []string{"order"})
	m.Set("pets", []string{"list", "create"})

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"pets":["list","create"],"store":["order"]}`, string(b))

	var zero Map[int]
	b, err = json.Marshal(&zero)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(b))
}
