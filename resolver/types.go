package resolver

import (
	"slices"

	js "github.com/atinseau/typebars-sub000/jsonschema"
)

// TypeSet returns the JSON type names a value described by s can have,
// following $ref and combinators: anyOf/oneOf branches are unioned, allOf
// branches intersected with the schema's own "type". A nil result means
// the schema places no type constraint.
func TypeSet(s, root *js.Schema) (js.Types, error) {
	r, err := resolveNormalized(s, root)
	if err != nil {
		return nil, err
	}
	return typeSet(r, root, 0)
}

func typeSet(s, root *js.Schema, depth int) (js.Types, error) {
	if s.IsFalse() {
		return js.Types{}, nil
	}
	if depth >= maxCombinatorDepth {
		return nil, nil
	}
	out := normalizeTypes(s.Type)

	for _, b := range s.AllOf {
		t, err := branchTypes(b, root, depth)
		if err != nil {
			return nil, err
		}
		out = intersectTypes(out, t)
	}

	for _, group := range [][]*js.Schema{s.AnyOf, s.OneOf} {
		if len(group) == 0 {
			continue
		}
		var union js.Types
		unconstrained := false
		for _, b := range group {
			t, err := branchTypes(b, root, depth)
			if err != nil {
				return nil, err
			}
			if t == nil {
				unconstrained = true
				continue
			}
			union = unionTypes(union, t)
		}
		if !unconstrained {
			out = intersectTypes(out, union)
		}
	}
	return out, nil
}

func branchTypes(b, root *js.Schema, depth int) (js.Types, error) {
	r, err := resolveNormalized(b, root)
	if err != nil {
		return nil, err
	}
	return typeSet(r, root, depth+1)
}

func normalizeTypes(t js.Types) js.Types {
	if len(t) == 0 {
		return nil
	}
	out := slices.Clone(t)
	slices.Sort(out)
	return slices.Compact(out)
}

func unionTypes(a, b js.Types) js.Types {
	out := append(slices.Clone(a), b...)
	slices.Sort(out)
	return slices.Compact(out)
}

// intersectTypes treats nil as "any type". integer is a subset of number.
func intersectTypes(a, b js.Types) js.Types {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	out := js.Types{}
	for _, t := range a {
		switch {
		case b.Has(t):
			out = append(out, t)
		case t == js.TypeInteger && b.Has(js.TypeNumber):
			out = append(out, js.TypeInteger)
		case t == js.TypeNumber && b.Has(js.TypeInteger):
			out = append(out, js.TypeInteger)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Compatible reports whether a value whose types are a may be passed where
// types b are expected. A nil set is unconstrained and compatible with
// everything; integer and number are interchangeable.
func Compatible(a, b js.Types) bool {
	if a == nil || b == nil {
		return true
	}
	return len(intersectTypes(a, b)) > 0
}

// PropertyNames lists the property names declared on s or any of its
// combinator branches, sorted and without duplicates. `false` properties
// are omitted.
func PropertyNames(s, root *js.Schema) ([]string, error) {
	r, err := resolveNormalized(s, root)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := collectNames(r, root, 0, &names); err != nil {
		return nil, err
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

func collectNames(s, root *js.Schema, depth int, names *[]string) error {
	if depth >= maxCombinatorDepth {
		return nil
	}
	for name, p := range s.Properties {
		if !p.IsFalse() {
			*names = append(*names, name)
		}
	}
	for _, group := range [][]*js.Schema{s.AllOf, s.AnyOf, s.OneOf} {
		for _, b := range group {
			r, err := resolveNormalized(b, root)
			if err != nil {
				return err
			}
			if err := collectNames(r, root, depth+1, names); err != nil {
				return err
			}
		}
	}
	return nil
}
