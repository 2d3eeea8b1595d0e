package resolver

import (
	"slices"
	"strconv"
	"strings"

	js "github.com/atinseau/typebars-sub000/jsonschema"
)

// AssertNoConditional walks every schema reachable from s and fails on the
// first if/then/else keyword with a *ConditionalSchemaError whose Path is a
// JSON Pointer below path. visited holds schemas already checked and may be
// shared across calls; it also makes the walk terminate on cyclic graphs.
// A nil visited map is allowed.
func AssertNoConditional(s *js.Schema, path string, visited map[*js.Schema]struct{}) error {
	if visited == nil {
		visited = make(map[*js.Schema]struct{})
	}
	return walk(s, path, visited, func(n *js.Schema, at string) error {
		if kw := n.ConditionalKeyword(); kw != "" {
			return &ConditionalSchemaError{Path: pointer(at), Keyword: kw}
		}
		return nil
	})
}

// AssertNoConditionalAll checks the input schema and every identifier
// schema. Identifier schemas are visited in ascending key order so that the
// reported error is deterministic.
func AssertNoConditionalAll(input *js.Schema, identifiers map[int]*js.Schema) error {
	visited := make(map[*js.Schema]struct{})
	if err := AssertNoConditional(input, "", visited); err != nil {
		return err
	}
	for _, id := range sortedKeys(identifiers) {
		if err := AssertNoConditional(identifiers[id], "/identifierSchemas/"+strconv.Itoa(id), visited); err != nil {
			return err
		}
	}
	return nil
}

// CheckRefsAll runs CheckRefs over the input schema and each identifier
// schema; every schema resolves references against its own root.
func CheckRefsAll(input *js.Schema, identifiers map[int]*js.Schema) error {
	if err := CheckRefs(input, input); err != nil {
		return err
	}
	for _, id := range sortedKeys(identifiers) {
		s := identifiers[id]
		if err := CheckRefs(s, s); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[int]*js.Schema) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func pointer(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

func escapePointer(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}

// walk visits s and every schema reachable through properties,
// additionalProperties, items, combinators, not and definitions, each once.
// Map keys are visited in sorted order.
func walk(s *js.Schema, at string, visited map[*js.Schema]struct{}, fn func(*js.Schema, string) error) error {
	if s == nil || s.Bool != nil {
		return nil
	}
	if _, seen := visited[s]; seen {
		return nil
	}
	visited[s] = struct{}{}

	if err := fn(s, at); err != nil {
		return err
	}

	child := func(c *js.Schema, suffix string) error {
		return walk(c, at+suffix, visited, fn)
	}
	named := func(kw string, m map[string]*js.Schema) error {
		names := make([]string, 0, len(m))
		for k := range m {
			names = append(names, k)
		}
		slices.Sort(names)
		for _, k := range names {
			if err := child(m[k], "/"+kw+"/"+escapePointer(k)); err != nil {
				return err
			}
		}
		return nil
	}
	list := func(kw string, l []*js.Schema) error {
		for i, c := range l {
			if err := child(c, "/"+kw+"/"+strconv.Itoa(i)); err != nil {
				return err
			}
		}
		return nil
	}

	if err := named("properties", s.Properties); err != nil {
		return err
	}
	if err := child(s.AdditionalProperties, "/additionalProperties"); err != nil {
		return err
	}
	if err := child(s.Items, "/items"); err != nil {
		return err
	}
	if err := list("items", s.ItemsTuple); err != nil {
		return err
	}
	if err := list("allOf", s.AllOf); err != nil {
		return err
	}
	if err := list("anyOf", s.AnyOf); err != nil {
		return err
	}
	if err := list("oneOf", s.OneOf); err != nil {
		return err
	}
	if err := child(s.Not, "/not"); err != nil {
		return err
	}
	if err := named("definitions", s.Definitions); err != nil {
		return err
	}
	return named("$defs", s.Defs)
}
