package resolver

import (
	js "github.com/atinseau/typebars-sub000/jsonschema"
)

// Simplify returns s with single-member allOf/anyOf/oneOf wrappers removed
// and structurally equal anyOf/oneOf members deduplicated, recursively.
// A combinator left with one member collapses to that member when it is the
// only keyword of its schema. Simplify never mutates s, and
// Simplify(Simplify(s)) is equal to Simplify(s).
func Simplify(s *js.Schema) *js.Schema {
	return simplify(s, make(map[*js.Schema]*js.Schema))
}

func simplify(s *js.Schema, memo map[*js.Schema]*js.Schema) *js.Schema {
	if s == nil || s.Bool != nil {
		return s
	}
	if done, ok := memo[s]; ok {
		return done
	}
	c := s.ShallowCopy()
	memo[s] = c

	for k, p := range c.Properties {
		c.Properties[k] = simplify(p, memo)
	}
	c.AdditionalProperties = simplify(c.AdditionalProperties, memo)
	c.Items = simplify(c.Items, memo)
	for i, m := range c.ItemsTuple {
		c.ItemsTuple[i] = simplify(m, memo)
	}
	c.Not = simplify(c.Not, memo)
	for i, m := range c.AllOf {
		c.AllOf[i] = simplify(m, memo)
	}
	c.AnyOf = dedupe(c.AnyOf, memo)
	c.OneOf = dedupe(c.OneOf, memo)

	out := c
	switch {
	case len(c.AllOf) == 1 && c.OnlyKeyword("allOf"):
		out = c.AllOf[0]
	case len(c.AnyOf) == 1 && c.OnlyKeyword("anyOf"):
		out = c.AnyOf[0]
	case len(c.OneOf) == 1 && c.OnlyKeyword("oneOf"):
		out = c.OneOf[0]
	}
	memo[s] = out
	return out
}

// dedupe simplifies members and drops those structurally equal to an
// earlier one. Order of first occurrence is kept.
func dedupe(members []*js.Schema, memo map[*js.Schema]*js.Schema) []*js.Schema {
	if members == nil {
		return nil
	}
	out := make([]*js.Schema, 0, len(members))
	for _, m := range members {
		sm := simplify(m, memo)
		dup := false
		for _, kept := range out {
			if js.Equal(kept, sm) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, sm)
		}
	}
	return out
}
