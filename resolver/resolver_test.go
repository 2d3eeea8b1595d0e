package resolver_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	js "github.com/atinseau/typebars-sub000/jsonschema"
	"github.com/atinseau/typebars-sub000/resolver"
)

func TestResolveRef(t *testing.T) {
	root := js.MustParse(`{
		"definitions": {"Name": {"type": "string"}, "Alias": {"$ref": "#/definitions/Name"}},
		"$defs": {"a/b": {"type": "integer"}}
	}`)

	got, err := resolver.ResolveRef(&js.Schema{Ref: "#/definitions/Alias"}, root)
	require.NoError(t, err)
	assert.True(t, js.Equal(js.String(), got))

	got, err = resolver.ResolveRef(&js.Schema{Ref: "#/$defs/a~1b"}, root)
	require.NoError(t, err)
	assert.True(t, js.Equal(js.Integer(), got))

	plain := js.Number()
	got, err = resolver.ResolveRef(plain, root)
	require.NoError(t, err)
	assert.Same(t, plain, got)
}

func TestResolveRef_Errors(t *testing.T) {
	root := js.MustParse(`{
		"definitions": {"A": {"$ref": "#/definitions/B"}, "B": {"$ref": "#/definitions/A"}}
	}`)
	cases := map[string]string{
		"remote":  "http://example.com/schema.json",
		"pointer": "#/properties/x",
		"missing": "#/definitions/Nope",
		"nested":  "#/definitions/A/properties",
		"cycle":   "#/definitions/A",
	}
	for name, ref := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := resolver.ResolveRef(&js.Schema{Ref: ref}, root)
			var re *resolver.RefError
			require.True(t, errors.As(err, &re), "got %v", err)
		})
	}
}

func TestResolvePath(t *testing.T) {
	root := js.MustParse(`{
		"type": "object",
		"definitions": {"Address": {"type": "object", "properties": {"city": {"type": "string"}}}},
		"properties": {
			"user": {"type": "object", "properties": {
				"address": {"$ref": "#/definitions/Address"},
				"anything": true,
				"never": false
			}},
			"tags": {"type": "array", "items": {"type": "string"}},
			"meta": {"type": "object", "additionalProperties": {"type": "number"}},
			"open": {"type": "object", "additionalProperties": true}
		}
	}`)

	tests := []struct {
		path  []string
		want  *js.Schema
		found bool
	}{
		{[]string{"user", "address", "city"}, js.String(), true},
		{[]string{"user", "anything"}, js.Any(), true},
		{[]string{"user", "never"}, nil, false},
		{[]string{"user", "missing"}, nil, false},
		{[]string{"tags", "length"}, js.Integer(), true},
		{[]string{"meta", "whatever"}, js.Number(), true},
		{[]string{"open", "x"}, js.Any(), true},
		{[]string{"user", "address", "zip"}, nil, false},
	}
	for _, tt := range tests {
		got, ok, err := resolver.ResolvePath(root, root, tt.path)
		require.NoError(t, err, tt.path)
		require.Equal(t, tt.found, ok, tt.path)
		if tt.found {
			assert.True(t, js.Equal(tt.want, got), "%v", tt.path)
		}
	}
}

func TestResolvePath_RefTransparency(t *testing.T) {
	root := js.MustParse(`{
		"definitions": {"User": {"type": "object", "properties": {"id": {"type": "integer"}}}},
		"$ref": "#/definitions/User"
	}`)
	resolved, err := resolver.ResolveRef(root, root)
	require.NoError(t, err)

	a, okA, err := resolver.ResolvePath(root, root, []string{"id"})
	require.NoError(t, err)
	b, okB, err := resolver.ResolvePath(resolved, root, []string{"id"})
	require.NoError(t, err)
	require.True(t, okA)
	require.True(t, okB)
	assert.True(t, js.Equal(a, b))
}

func TestResolvePath_Combinators(t *testing.T) {
	root := js.MustParse(`{
		"allOf": [
			{"properties": {"a": {"type": "string"}}},
			{"properties": {"a": {"minLength": 1}, "b": {"type": "number"}}}
		],
		"anyOf": [
			{"properties": {"c": {"type": "string"}}},
			{"properties": {"c": {"type": "null"}}}
		],
		"oneOf": [
			{"properties": {"d": {"type": "boolean"}}},
			{"properties": {"e": {"type": "string"}}}
		]
	}`)

	got, ok, err := resolver.ResolvePath(root, root, []string{"a"})
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got.AllOf, 2)

	got, ok, err = resolver.ResolvePath(root, root, []string{"b"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, js.Equal(js.Number(), got))

	got, ok, err = resolver.ResolvePath(root, root, []string{"c"})
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got.AnyOf, 2)
	assert.Nil(t, got.OneOf)

	got, ok, err = resolver.ResolvePath(root, root, []string{"d"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, js.Equal(js.Boolean(), got))

	_, ok, err = resolver.ResolvePath(root, root, []string{"z"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolvePath_CyclicCombinatorsTerminate(t *testing.T) {
	root := js.MustParse(`{
		"definitions": {"Loop": {"anyOf": [{"$ref": "#/definitions/Loop"}, {"type": "null"}]}},
		"$ref": "#/definitions/Loop"
	}`)
	_, ok, err := resolver.ResolvePath(root, root, []string{"x"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolveArrayItems(t *testing.T) {
	root := js.MustParse(`{"definitions": {"Item": {"type": "string"}}}`)
	tests := []struct {
		name   string
		schema string
		want   *js.Schema
		ok     bool
	}{
		{"single", `{"type": "array", "items": {"$ref": "#/definitions/Item"}}`, js.String(), true},
		{"absent", `{"type": "array"}`, js.Any(), true},
		{"false", `{"type": "array", "items": false}`, js.Any(), true},
		{"tuple", `{"type": "array", "items": [{"type": "string"}, {"type": "number"}]}`,
			&js.Schema{OneOf: []*js.Schema{js.String(), js.Number()}}, true},
		{"untyped with items", `{"items": {"type": "number"}}`, js.Number(), true},
		{"not array", `{"type": "string"}`, nil, false},
		{"nullable array", `{"anyOf": [{"type": "array", "items": {"type": "integer"}}, {"type": "null"}]}`, js.Integer(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := resolver.ResolveArrayItems(js.MustParse(tt.schema), root)
			require.NoError(t, err)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, js.Equal(tt.want, got))
			}
		})
	}
}

func TestTypeSetAndCompatible(t *testing.T) {
	root := js.Any()
	ts, err := resolver.TypeSet(js.MustParse(`{"anyOf": [{"type": "string"}, {"type": ["null", "string"]}]}`), root)
	require.NoError(t, err)
	assert.Equal(t, js.Types{"null", "string"}, ts)

	ts, err = resolver.TypeSet(js.MustParse(`{"allOf": [{"type": ["number", "string"]}, {"type": "integer"}]}`), root)
	require.NoError(t, err)
	assert.Equal(t, js.Types{"integer"}, ts)

	ts, err = resolver.TypeSet(js.Any(), root)
	require.NoError(t, err)
	assert.Nil(t, ts)

	assert.True(t, resolver.Compatible(js.Types{"integer"}, js.Types{"number"}))
	assert.True(t, resolver.Compatible(js.Types{"number"}, js.Types{"integer", "null"}))
	assert.False(t, resolver.Compatible(js.Types{"string"}, js.Types{"number"}))
	assert.True(t, resolver.Compatible(nil, js.Types{"number"}))
}

func TestWalk(t *testing.T) {
	root := js.MustParse(`{"properties": {"a": {"properties": {"b": {"type": "string"}, "c": {}}}}}`)
	at, n, err := resolver.Walk(root, root, []string{"a", "x", "y"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	names, err := resolver.PropertyNames(at, root)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, names)

	_, n, err = resolver.Walk(root, root, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPropertyNames(t *testing.T) {
	s := js.MustParse(`{
		"properties": {"b": {}, "a": {}, "hidden": false},
		"anyOf": [{"properties": {"c": {}, "a": {}}}]
	}`)
	names, err := resolver.PropertyNames(s, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestAssertNoConditional(t *testing.T) {
	s := js.MustParse(`{
		"properties": {"ok": {"type": "string"}, "bad": {"items": [{}, {"if": {}, "then": {}}]}}
	}`)
	err := resolver.AssertNoConditional(s, "", nil)
	var ce *resolver.ConditionalSchemaError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "/properties/bad/items/1", ce.Path)
	assert.Equal(t, "if", ce.Keyword)

	defs := js.MustParse(`{"$defs": {"X": {"else": {}}}}`)
	err = resolver.AssertNoConditional(defs, "", nil)
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "/$defs/X", ce.Path)
	assert.Equal(t, "else", ce.Keyword)

	require.NoError(t, resolver.AssertNoConditional(js.String(), "", nil))
}

func TestAssertNoConditional_CycleTerminates(t *testing.T) {
	s := &js.Schema{Type: js.Types{js.TypeObject}}
	s.Properties = map[string]*js.Schema{"self": s, "list": {Items: s}}
	require.NoError(t, resolver.AssertNoConditional(s, "", nil))
}

func TestAssertNoConditionalAll(t *testing.T) {
	input := js.MustParse(`{"properties": {"a": {"type": "string"}}}`)
	ids := map[int]*js.Schema{
		1: js.MustParse(`{"type": "object"}`),
		2: js.MustParse(`{"properties": {"x": {"then": {}}}}`),
	}
	err := resolver.AssertNoConditionalAll(input, ids)
	var ce *resolver.ConditionalSchemaError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "/identifierSchemas/2/properties/x", ce.Path)
	assert.Equal(t, "then", ce.Keyword)
}

func TestCheckRefs(t *testing.T) {
	s := js.MustParse(`{"properties": {"a": {"$ref": "#/definitions/Missing"}}}`)
	var re *resolver.RefError
	require.True(t, errors.As(resolver.CheckRefs(s, s), &re))
	assert.Equal(t, "#/definitions/Missing", re.Ref)

	ok := js.MustParse(`{"definitions": {"A": {"type": "string"}}, "properties": {"a": {"$ref": "#/definitions/A"}}}`)
	require.NoError(t, resolver.CheckRefsAll(ok, map[int]*js.Schema{1: js.String()}))
}

func TestSimplify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"unwrap oneOf", `{"oneOf": [{"type": "string"}]}`, `{"type": "string"}`},
		{"unwrap allOf", `{"allOf": [{"type": "number"}]}`, `{"type": "number"}`},
		{"dedupe to single", `{"oneOf": [{"type": "number"}, {"type": "number"}]}`, `{"type": "number"}`},
		{"key order independent", `{"anyOf": [
			{"type": "object", "properties": {"a": {"type": "string"}, "b": {"type": "number"}}},
			{"properties": {"b": {"type": "number"}, "a": {"type": "string"}}, "type": "object"}
		]}`, `{"type": "object", "properties": {"a": {"type": "string"}, "b": {"type": "number"}}}`},
		{"keeps distinct", `{"oneOf": [{"type": "number"}, {"type": "string"}]}`, `{"oneOf": [{"type": "number"}, {"type": "string"}]}`},
		{"nested", `{"oneOf": [{"oneOf": [{"type": "string"}]}, {"type": "string"}]}`, `{"type": "string"}`},
		{"not bare", `{"description": "d", "oneOf": [{"type": "string"}]}`, `{"description": "d", "oneOf": [{"type": "string"}]}`},
		{"inside properties", `{"properties": {"a": {"anyOf": [{"type": "null"}]}}}`, `{"properties": {"a": {"type": "null"}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := js.MustParse(tt.in)
			got := resolver.Simplify(in)
			assert.True(t, js.Equal(js.MustParse(tt.want), got))
			assert.True(t, js.Equal(got, resolver.Simplify(got)), "not idempotent")
			assert.True(t, js.Equal(js.MustParse(tt.in), in), "input mutated")
		})
	}
}

func TestSimplify_Cycle(t *testing.T) {
	s := &js.Schema{Type: js.Types{js.TypeObject}}
	s.Properties = map[string]*js.Schema{"next": {OneOf: []*js.Schema{s}}}
	got := resolver.Simplify(s)
	require.NotNil(t, got)
	assert.True(t, got.HasType(js.TypeObject))
}
