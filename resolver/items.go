package resolver

import (
	js "github.com/atinseau/typebars-sub000/jsonschema"
)

// ResolveArrayItems returns the schema of the elements of s. The boolean
// result is false (NotApplicable) when s is not array-shaped: its type
// excludes "array" and it declares no "items".
//
// A tuple ("items" as an array) yields `{oneOf: [members...]}`. Missing or
// `false` items yield `{}`. When s is array-shaped only through its
// combinator branches, the element schemas of those branches are combined.
func ResolveArrayItems(s, root *js.Schema) (*js.Schema, bool, error) {
	r, err := resolveNormalized(s, root)
	if err != nil {
		return nil, false, err
	}
	return resolveItems(r, root, 0)
}

func resolveItems(s, root *js.Schema, depth int) (*js.Schema, bool, error) {
	if s.IsFalse() || depth >= maxCombinatorDepth {
		return nil, false, nil
	}
	switch {
	case s.ItemsTuple != nil:
		members := make([]*js.Schema, 0, len(s.ItemsTuple))
		for _, m := range s.ItemsTuple {
			r, err := resolveNormalized(m, root)
			if err != nil {
				return nil, false, err
			}
			members = append(members, r)
		}
		if len(members) == 0 {
			return js.Any(), true, nil
		}
		return &js.Schema{OneOf: members}, true, nil
	case s.Items != nil:
		if s.Items.IsFalse() {
			return js.Any(), true, nil
		}
		r, err := resolveNormalized(s.Items, root)
		if err != nil {
			return nil, false, err
		}
		return r, true, nil
	}

	if branch, ok, err := itemsFromCombinators(s, root, depth); err != nil || ok {
		return branch, ok, err
	}
	if s.HasType(js.TypeArray) {
		return js.Any(), true, nil
	}
	return nil, false, nil
}

// itemsFromCombinators collects the element schemas of the array-shaped
// branches of s. allOf hits are conjunctive, anyOf/oneOf hits disjunctive.
func itemsFromCombinators(s, root *js.Schema, depth int) (*js.Schema, bool, error) {
	collect := func(branches []*js.Schema) ([]*js.Schema, error) {
		var hits []*js.Schema
		for _, b := range branches {
			r, err := resolveNormalized(b, root)
			if err != nil {
				return nil, err
			}
			it, ok, err := resolveItems(r, root, depth+1)
			if err != nil {
				return nil, err
			}
			if ok {
				hits = append(hits, it)
			}
		}
		return hits, nil
	}

	hits, err := collect(s.AllOf)
	if err != nil {
		return nil, false, err
	}
	switch len(hits) {
	case 0:
	case 1:
		return hits[0], true, nil
	default:
		return &js.Schema{AllOf: hits}, true, nil
	}

	hits, err = collect(s.AnyOf)
	if err != nil {
		return nil, false, err
	}
	more, err := collect(s.OneOf)
	if err != nil {
		return nil, false, err
	}
	hits = append(hits, more...)
	switch len(hits) {
	case 0:
		return nil, false, nil
	case 1:
		return hits[0], true, nil
	}
	return &js.Schema{OneOf: hits}, true, nil
}
