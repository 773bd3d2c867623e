package ordered

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Object is a decoded JSON/YAML mapping.
type Object = Map[any]

// Decode parses JSON or YAML bytes whose root is a mapping. Mappings become
// *Object, sequences []any and scalars their natural Go value.
func Decode(data []byte) (*Object, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	v, err := FromNode(&root)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*Object)
	if !ok {
		return nil, errors.New("parse document: root is not a mapping")
	}
	return obj, nil
}

var (
	// ErrAliasCycle is returned when an alias refers to a node that contains it.
	ErrAliasCycle = errors.New("alias refers to an enclosing node")
	// ErrExcessiveAliasing is returned when alias expansion dominates the
	// decoded document, as in a billion laughs input.
	ErrExcessiveAliasing = errors.New("document contains excessive aliasing")
)

// FromNode converts a yaml.v3 node tree into ordered values. Aliases are
// expanded in place under the same limits yaml.v3 applies when decoding.
func FromNode(n *yaml.Node) (any, error) {
	d := &decoder{active: make(map[*yaml.Node]bool)}
	return d.node(n)
}

type decoder struct {
	// active holds the collections currently being decoded.
	active      map[*yaml.Node]bool
	decodeCount int
	aliasCount  int
	aliasDepth  int
}

// allowedAliasRatio mirrors yaml.v3: small documents may be almost all
// aliases, large ones may not.
func allowedAliasRatio(decodeCount int) float64 {
	switch {
	case decodeCount <= 400000:
		return 0.99
	case decodeCount >= 4000000:
		return 0.10
	default:
		return 0.99 - 0.89*(float64(decodeCount-400000)/3600000)
	}
}

func (d *decoder) node(n *yaml.Node) (any, error) {
	if n == nil {
		return nil, nil
	}
	d.decodeCount++
	if d.aliasDepth > 0 {
		d.aliasCount++
	}
	if d.aliasCount > 100 && d.decodeCount > 1000 &&
		float64(d.aliasCount)/float64(d.decodeCount) > allowedAliasRatio(d.decodeCount) {
		return nil, ErrExcessiveAliasing
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return d.node(n.Content[0])
	case yaml.AliasNode:
		if d.active[n.Alias] {
			return nil, fmt.Errorf("line %d: *%s: %w", n.Line, n.Value, ErrAliasCycle)
		}
		d.aliasDepth++
		v, err := d.node(n.Alias)
		d.aliasDepth--
		return v, err
	case yaml.MappingNode:
		d.active[n] = true
		defer delete(d.active, n)
		obj := New[any]()
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode := n.Content[i]
			if keyNode.Kind == yaml.AliasNode {
				keyNode = keyNode.Alias
			}
			if keyNode.Tag == "!!merge" {
				if err := d.merge(obj, n.Content[i+1]); err != nil {
					return nil, err
				}
				continue
			}
			v, err := d.node(n.Content[i+1])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", keyNode.Value, err)
			}
			obj.Set(keyNode.Value, v)
		}
		return obj, nil
	case yaml.SequenceNode:
		d.active[n] = true
		defer delete(d.active, n)
		out := make([]any, 0, len(n.Content))
		for idx, c := range n.Content {
			v, err := d.node(c)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", idx, err)
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.ScalarNode:
		// Keep timestamps as written; renderers expect JSON-compatible values.
		if n.Tag == "!!timestamp" {
			return n.Value, nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported node kind %v", n.Line, n.Kind)
	}
}

// merge applies a YAML merge key; explicit keys win over merged ones.
func (d *decoder) merge(obj *Object, n *yaml.Node) error {
	v, err := d.node(n)
	if err != nil {
		return err
	}
	var sources []*Object
	switch src := v.(type) {
	case *Object:
		sources = append(sources, src)
	case []any:
		for _, item := range src {
			if o, ok := item.(*Object); ok {
				sources = append(sources, o)
			}
		}
	}
	for _, src := range sources {
		for k, val := range src.All() {
			if !obj.Has(k) {
				obj.Set(k, val)
			}
		}
	}
	return nil
}

// Str returns obj[key] when it is a string.
func Str(obj *Object, key string) string {
	v, _ := obj.Get(key)
	s, _ := v.(string)
	return s
}

// Flag returns obj[key] when it is a bool.
func Flag(obj *Object, key string) bool {
	v, _ := obj.Get(key)
	b, _ := v.(bool)
	return b
}

// Obj returns obj[key] when it is a mapping.
func Obj(obj *Object, key string) *Object {
	v, _ := obj.Get(key)
	o, _ := v.(*Object)
	return o
}

// List returns obj[key] when it is a sequence.
func List(obj *Object, key string) []any {
	v, _ := obj.Get(key)
	l, _ := v.([]any)
	return l
}

// Strings returns the string elements of obj[key], skipping anything else.
func Strings(obj *Object, key string) []string {
	l := List(obj, key)
	if len(l) == 0 {
		return nil
	}
	out := make([]string, 0, len(l))
	for _, item := range l {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
