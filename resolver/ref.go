// Package resolver navigates JSON Schema graphs for the template analyzer:
// local $ref resolution, property path lookup, array item lookup,
// combinator search, conditional-schema rejection and output
// simplification.
//
// Two outcomes are distinguished everywhere. A false "found" result
// (NotFound / NotApplicable) is an ordinary answer the caller turns into a
// diagnostic. A non-nil error is fatal and aborts the analysis.
package resolver

import (
	"strings"

	js "github.com/atinseau/typebars-sub000/jsonschema"
)

const (
	definitionsPrefix = "#/definitions/"
	defsPrefix        = "#/$defs/"
)

// ResolveRef follows the `$ref` of s, if any, against the definitions of
// root. Only local `#/definitions/<Name>` and `#/$defs/<Name>` references
// are supported. Chained references are followed until a schema without
// `$ref` is reached. A schema without `$ref` is returned unchanged.
func ResolveRef(s, root *js.Schema) (*js.Schema, error) {
	if s == nil || s.Ref == "" {
		return s, nil
	}
	var visited map[string]struct{}
	for s != nil && s.Ref != "" {
		if _, loop := visited[s.Ref]; loop {
			return nil, &RefError{Ref: s.Ref, Reason: "reference cycle"}
		}
		if visited == nil {
			visited = make(map[string]struct{}, 2)
		}
		visited[s.Ref] = struct{}{}

		target, err := lookupRef(s.Ref, root)
		if err != nil {
			return nil, err
		}
		s = target
	}
	return s, nil
}

func lookupRef(ref string, root *js.Schema) (*js.Schema, error) {
	var (
		table map[string]*js.Schema
		name  string
	)
	switch {
	case strings.HasPrefix(ref, definitionsPrefix):
		name = strings.TrimPrefix(ref, definitionsPrefix)
		if root != nil {
			table = root.Definitions
		}
	case strings.HasPrefix(ref, defsPrefix):
		name = strings.TrimPrefix(ref, defsPrefix)
		if root != nil {
			table = root.Defs
		}
	default:
		return nil, &RefError{Ref: ref, Reason: "only #/definitions/<Name> and #/$defs/<Name> are supported"}
	}
	if name == "" || strings.Contains(name, "/") {
		return nil, &RefError{Ref: ref, Reason: "expected a single definition name"}
	}
	name = unescapePointer(name)
	target, ok := table[name]
	if !ok || target == nil {
		return nil, &RefError{Ref: ref, Reason: "definition not found"}
	}
	return target, nil
}

// unescapePointer decodes RFC 6901 escapes (~1 for '/', ~0 for '~').
func unescapePointer(s string) string {
	if !strings.Contains(s, "~") {
		return s
	}
	return strings.ReplaceAll(strings.ReplaceAll(s, "~1", "/"), "~0", "~")
}

// CheckRefs walks every schema reachable from s and resolves each `$ref`
// against root, returning the first failure. It lets callers surface
// broken references before any template is analyzed.
func CheckRefs(s, root *js.Schema) error {
	return walk(s, "", make(map[*js.Schema]struct{}), func(n *js.Schema, _ string) error {
		if n.Ref == "" {
			return nil
		}
		_, err := ResolveRef(n, root)
		return err
	})
}

// normalize maps the `true` boolean schema and nil to `{}` so callers only
// deal with object schemas and `false`.
func normalize(s *js.Schema) *js.Schema {
	if s == nil || s.IsTrue() {
		return js.Any()
	}
	return s
}

// resolveNormalized resolves the reference of s and normalizes the result.
func resolveNormalized(s, root *js.Schema) (*js.Schema, error) {
	r, err := ResolveRef(s, root)
	if err != nil {
		return nil, err
	}
	return normalize(r), nil
}
