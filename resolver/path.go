package resolver

import (
	js "github.com/atinseau/typebars-sub000/jsonschema"
)

// maxCombinatorDepth bounds nested combinator search. Schemas whose
// combinator branches lead back to themselves through $ref would otherwise
// recurse forever.
const maxCombinatorDepth = 64

// lengthSegment is the intrinsic property available on every array.
const lengthSegment = "length"

// ResolvePath resolves segments one by one starting at s. The boolean result
// is false when some segment cannot be found; that is NotFound and differs
// from a resolved but unconstrained `{}`.
func ResolvePath(s, root *js.Schema, segments []string) (*js.Schema, bool, error) {
	cur, n, err := Walk(s, root, segments)
	if err != nil || n < len(segments) {
		return nil, false, err
	}
	return cur, true, nil
}

// Walk resolves as many leading segments as possible. It returns the schema
// reached and the number of segments consumed; when fewer than
// len(segments) were consumed the returned schema is the one on which the
// next segment was not found.
func Walk(s, root *js.Schema, segments []string) (*js.Schema, int, error) {
	cur, err := resolveNormalized(s, root)
	if err != nil {
		return nil, 0, err
	}
	for i, seg := range segments {
		next, ok, err := resolveSegment(cur, seg, root, 0)
		if err != nil {
			return nil, i, err
		}
		if !ok {
			return cur, i, nil
		}
		cur = next
	}
	return cur, len(segments), nil
}

// ResolveSegment resolves a single property name against s.
func ResolveSegment(s, root *js.Schema, segment string) (*js.Schema, bool, error) {
	cur, err := resolveNormalized(s, root)
	if err != nil {
		return nil, false, err
	}
	return resolveSegment(cur, segment, root, 0)
}

// resolveSegment expects s to be ref-resolved and normalized.
func resolveSegment(s *js.Schema, seg string, root *js.Schema, depth int) (*js.Schema, bool, error) {
	if s.IsFalse() {
		return nil, false, nil
	}
	if prop, ok := s.Properties[seg]; ok {
		if prop.IsFalse() {
			return nil, false, nil
		}
		r, err := resolveNormalized(prop, root)
		if err != nil {
			return nil, false, err
		}
		return r, true, nil
	}
	if ap := s.AdditionalProperties; ap != nil && !ap.IsFalse() {
		r, err := resolveNormalized(ap, root)
		if err != nil {
			return nil, false, err
		}
		return r, true, nil
	}
	if seg == lengthSegment {
		types, err := TypeSet(s, root)
		if err != nil {
			return nil, false, err
		}
		if types.Has(js.TypeArray) {
			return js.Integer(), true, nil
		}
	}
	return resolveInCombinators(s, seg, root, depth)
}

// ResolveInCombinators searches the allOf, anyOf and oneOf branches of s for
// segment. allOf hits are conjunctive; anyOf/oneOf hits keep the keyword
// they were found under. anyOf is consulted before oneOf.
func ResolveInCombinators(s, root *js.Schema, segment string) (*js.Schema, bool, error) {
	cur, err := resolveNormalized(s, root)
	if err != nil {
		return nil, false, err
	}
	return resolveInCombinators(cur, segment, root, 0)
}

func resolveInCombinators(s *js.Schema, seg string, root *js.Schema, depth int) (*js.Schema, bool, error) {
	if depth >= maxCombinatorDepth {
		return nil, false, nil
	}
	if len(s.AllOf) > 0 {
		hits, err := branchHits(s.AllOf, seg, root, depth)
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
	}
	for _, kw := range [...]string{"anyOf", "oneOf"} {
		branches := s.AnyOf
		if kw == "oneOf" {
			branches = s.OneOf
		}
		if len(branches) == 0 {
			continue
		}
		hits, err := branchHits(branches, seg, root, depth)
		if err != nil {
			return nil, false, err
		}
		switch len(hits) {
		case 0:
			continue
		case 1:
			return hits[0], true, nil
		}
		if kw == "anyOf" {
			return &js.Schema{AnyOf: hits}, true, nil
		}
		return &js.Schema{OneOf: hits}, true, nil
	}
	return nil, false, nil
}

func branchHits(branches []*js.Schema, seg string, root *js.Schema, depth int) ([]*js.Schema, error) {
	var hits []*js.Schema
	for _, b := range branches {
		r, err := resolveNormalized(b, root)
		if err != nil {
			return nil, err
		}
		hit, ok, err := resolveSegment(r, seg, root, depth+1)
		if err != nil {
			return nil, err
		}
		if ok {
			hits = append(hits, hit)
		}
	}
	return hits, nil
}
