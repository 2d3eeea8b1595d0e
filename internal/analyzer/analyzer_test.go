package analyzer_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/atinseau/typebars-sub000/ast"
	"github.com/atinseau/typebars-sub000/diag"
	"github.com/atinseau/typebars-sub000/helpers"
	"github.com/atinseau/typebars-sub000/internal/analyzer"
	js "github.com/atinseau/typebars-sub000/jsonschema"
	"github.com/atinseau/typebars-sub000/resolver"
)

const userSchema = `{
	"type": "object",
	"definitions": {
		"Address": {"type": "object", "properties": {"city": {"type": "string"}, "zip": {"type": "integer"}}}
	},
	"properties": {
		"name": {"type": "string"},
		"age": {"type": "number"},
		"active": {"type": "boolean"},
		"address": {"$ref": "#/definitions/Address"},
		"tags": {"type": "array", "items": {"type": "string"}},
		"orders": {"type": "array", "items": {"type": "object", "properties": {"id": {"type": "integer"}, "total": {"type": "number"}}}},
		"nickname": {"type": ["string", "null"]}
	}
}`

func analyze(t *testing.T, prog *ast.Program, schema string, opts analyzer.Options) analyzer.Result {
	t.Helper()
	res, err := analyzer.Analyze(prog, js.MustParse(schema), opts)
	require.NoError(t, err)
	return res
}

func assertSchema(t *testing.T, want string, got *js.Schema) {
	t.Helper()
	w := js.MustParse(want)
	if !js.Equal(w, got) {
		b, _ := got.MarshalJSON()
		t.Fatalf("output schema mismatch\nwant: %s\n got: %s", want, b)
	}
}

func TestScenarios(t *testing.T) {
	ageSchema := `{"properties": {"age": {"type": "number"}}}`

	t.Run("a: bare expression keeps its type", func(t *testing.T) {
		res := analyze(t, ast.NewProgram(ast.Expr("age")), ageSchema, analyzer.Options{})
		assert.True(t, res.Valid)
		assert.Empty(t, res.Diagnostics)
		assertSchema(t, `{"type": "number"}`, res.OutputSchema)
	})

	t.Run("b: mixed content is a string", func(t *testing.T) {
		res := analyze(t, ast.NewProgram(ast.Text("Hello "), ast.Expr("age")), ageSchema, analyzer.Options{})
		assert.True(t, res.Valid)
		assertSchema(t, `{"type": "string"}`, res.OutputSchema)
	})

	t.Run("c: each is a string", func(t *testing.T) {
		prog := ast.NewProgram(ast.BlockOf("each", ast.Args(ast.Path("items")), ast.NewProgram(ast.Expr("this")), nil))
		res := analyze(t, prog, `{"properties": {"items": {"type": "array", "items": {"type": "string"}}}}`, analyzer.Options{})
		assert.True(t, res.Valid)
		assert.Empty(t, res.Diagnostics)
		assertSchema(t, `{"type": "string"}`, res.OutputSchema)
	})

	t.Run("d: if/else with different branch types", func(t *testing.T) {
		prog := ast.NewProgram(ast.BlockOf("if", ast.Args(ast.Path("x")),
			ast.NewProgram(ast.Text("1")),
			ast.NewProgram(ast.Text("hello"))))
		res := analyze(t, prog, `{"properties": {"x": {"type": "number"}}}`, analyzer.Options{})
		assert.True(t, res.Valid)
		assertSchema(t, `{"oneOf": [{"type": "number"}, {"type": "string"}]}`, res.OutputSchema)
	})

	t.Run("e: unknown property", func(t *testing.T) {
		res := analyze(t, ast.NewProgram(ast.Expr("meetingId")), ageSchema, analyzer.Options{})
		assert.False(t, res.Valid)
		require.Len(t, res.Diagnostics, 1)
		d := res.Diagnostics[0]
		assert.Equal(t, diag.CodeUnknownProperty, d.Code)
		assert.Equal(t, diag.SeverityError, d.Severity)
		assert.Equal(t, "meetingId", d.Details.Path)
		assert.Equal(t, []string{"age"}, d.Details.AvailableProperties)
	})

	t.Run("f: conditional schema is fatal", func(t *testing.T) {
		_, err := analyzer.Analyze(ast.NewProgram(ast.Expr("a")),
			js.MustParse(`{"properties": {"a": {"if": {"type": "string"}, "then": {"minLength": 1}}}}`), analyzer.Options{})
		var ce *resolver.ConditionalSchemaError
		require.True(t, errors.As(err, &ce), "got %v", err)
		assert.Equal(t, "/properties/a", ce.Path)
	})
}

func TestProgramShapes(t *testing.T) {
	tests := []struct {
		name string
		prog *ast.Program
		want string
	}{
		{"empty", ast.NewProgram(), `{"type": "string"}`},
		{"whitespace only", ast.NewProgram(ast.Text("  \n\t")), `{"type": "string"}`},
		{"comment only", ast.NewProgram(ast.Note("note"), ast.Text(" ")), `{"type": "string"}`},
		{"number literal", ast.NewProgram(ast.Text(" 42 ")), `{"type": "number"}`},
		{"negative decimal", ast.NewProgram(ast.Text("-3.5")), `{"type": "number"}`},
		{"exponent is text", ast.NewProgram(ast.Text("1e5")), `{"type": "string"}`},
		{"boolean literal", ast.NewProgram(ast.Text("true")), `{"type": "boolean"}`},
		{"null literal", ast.NewProgram(ast.Text("null")), `{"type": "null"}`},
		{"plain text", ast.NewProgram(ast.Text("hello")), `{"type": "string"}`},
		{"expression with whitespace", ast.NewProgram(ast.Text("\n  "), ast.Expr("age"), ast.Text("\n")), `{"type": "number"}`},
		{"expression with comment", ast.NewProgram(ast.Note("x"), ast.Expr("active")), `{"type": "boolean"}`},
		{"two expressions", ast.NewProgram(ast.Expr("age"), ast.Expr("age")), `{"type": "string"}`},
		{"object passthrough", ast.NewProgram(ast.Expr("address")),
			`{"type": "object", "properties": {"city": {"type": "string"}, "zip": {"type": "integer"}}}`},
		{"this is the root", ast.NewProgram(ast.Expr("this.age")), `{"type": "number"}`},
		{"nested path through ref", ast.NewProgram(ast.Expr("address.zip")), `{"type": "integer"}`},
		{"array length", ast.NewProgram(ast.Expr("tags.length")), `{"type": "integer"}`},
		{"string literal expression", ast.NewProgram(ast.ExprOf(ast.Str("x"))), `{"type": "string"}`},
		{"undefined literal", ast.NewProgram(ast.ExprOf(ast.Undefined())), `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := analyze(t, tt.prog, userSchema, analyzer.Options{})
			assert.True(t, res.Valid)
			assert.Empty(t, res.Diagnostics)
			assertSchema(t, tt.want, res.OutputSchema)
		})
	}
}

func TestMixedReportsEveryProblem(t *testing.T) {
	prog := ast.NewProgram(ast.Expr("missing1"), ast.Text(" and "), ast.Expr("address.street"), ast.Expr("name"))
	res := analyze(t, prog, userSchema, analyzer.Options{})
	assert.False(t, res.Valid)
	require.Len(t, res.Diagnostics, 2)
	assert.Equal(t, "missing1", res.Diagnostics[0].Details.Path)
	assert.Equal(t, "address.street", res.Diagnostics[1].Details.Path)
	assert.Equal(t, []string{"city", "zip"}, res.Diagnostics[1].Details.AvailableProperties)
	assertSchema(t, `{"type": "string"}`, res.OutputSchema)
}

func TestIfBlock(t *testing.T) {
	t.Run("equal branches collapse", func(t *testing.T) {
		prog := ast.NewProgram(ast.BlockOf("if", ast.Args(ast.Path("active")),
			ast.NewProgram(ast.Expr("name")), ast.NewProgram(ast.Text("anonymous"))))
		res := analyze(t, prog, userSchema, analyzer.Options{})
		assertSchema(t, `{"type": "string"}`, res.OutputSchema)
	})

	t.Run("no else keeps the then type", func(t *testing.T) {
		prog := ast.NewProgram(ast.BlockOf("if", ast.Args(ast.Path("active")), ast.NewProgram(ast.Expr("age")), nil))
		res := analyze(t, prog, userSchema, analyzer.Options{})
		assertSchema(t, `{"type": "number"}`, res.OutputSchema)
	})

	t.Run("unless behaves like if", func(t *testing.T) {
		prog := ast.NewProgram(ast.BlockOf("unless", ast.Args(ast.Path("active")),
			ast.NewProgram(ast.Text("true")), ast.NewProgram(ast.Expr("age"))))
		res := analyze(t, prog, userSchema, analyzer.Options{})
		assertSchema(t, `{"oneOf": [{"type": "boolean"}, {"type": "number"}]}`, res.OutputSchema)
	})

	t.Run("condition is checked but does not type", func(t *testing.T) {
		prog := ast.NewProgram(ast.BlockOf("if", ast.Args(ast.Path("nope")), ast.NewProgram(ast.Text("7")), nil))
		res := analyze(t, prog, userSchema, analyzer.Options{})
		assert.False(t, res.Valid)
		assert.Equal(t, []diag.Code{diag.CodeUnknownProperty}, res.Diagnostics.Codes())
		assertSchema(t, `{"type": "number"}`, res.OutputSchema)
	})

	t.Run("missing condition", func(t *testing.T) {
		prog := ast.NewProgram(ast.BlockOf("if", nil, ast.NewProgram(ast.Text("x")), nil))
		res := analyze(t, prog, userSchema, analyzer.Options{})
		assert.Equal(t, []diag.Code{diag.CodeMissingArgument}, res.Diagnostics.Codes())
		assert.Equal(t, "if", res.Diagnostics[0].Details.HelperName)
	})

	t.Run("else if chain is deduplicated", func(t *testing.T) {
		inner := ast.BlockOf("if", ast.Args(ast.Path("age")), ast.NewProgram(ast.Text("2")), ast.NewProgram(ast.Text("3")))
		prog := ast.NewProgram(ast.BlockOf("if", ast.Args(ast.Path("active")), ast.NewProgram(ast.Text("1")), ast.NewProgram(inner)))
		res := analyze(t, prog, userSchema, analyzer.Options{})
		assertSchema(t, `{"type": "number"}`, res.OutputSchema)
	})
}

func TestEachBlock(t *testing.T) {
	t.Run("body sees the element schema", func(t *testing.T) {
		body := ast.NewProgram(ast.Expr("id"), ast.Text(": "), ast.Expr("total"), ast.Expr("missing"))
		prog := ast.NewProgram(ast.BlockOf("each", ast.Args(ast.Path("orders")), body, nil))
		res := analyze(t, prog, userSchema, analyzer.Options{})
		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, "missing", res.Diagnostics[0].Details.Path)
		assert.Equal(t, []string{"id", "total"}, res.Diagnostics[0].Details.AvailableProperties)
		assertSchema(t, `{"type": "string"}`, res.OutputSchema)
	})

	t.Run("inverse sees the parent context", func(t *testing.T) {
		prog := ast.NewProgram(ast.BlockOf("each", ast.Args(ast.Path("orders")),
			ast.NewProgram(ast.Expr("id")), ast.NewProgram(ast.Expr("name"))))
		res := analyze(t, prog, userSchema, analyzer.Options{})
		assert.True(t, res.Valid)
		assert.Empty(t, res.Diagnostics)
	})

	t.Run("non-array collection", func(t *testing.T) {
		prog := ast.NewProgram(ast.BlockOf("each", ast.Args(ast.Path("name")), ast.NewProgram(ast.Expr("this")), nil))
		res := analyze(t, prog, userSchema, analyzer.Options{})
		require.Len(t, res.Diagnostics, 1)
		d := res.Diagnostics[0]
		assert.Equal(t, diag.CodeTypeMismatch, d.Code)
		assert.Equal(t, "array", d.Details.Expected)
		assert.Equal(t, "string", d.Details.Actual)
		assertSchema(t, `{"type": "string"}`, res.OutputSchema)
	})

	t.Run("unresolved collection", func(t *testing.T) {
		prog := ast.NewProgram(ast.BlockOf("each", ast.Args(ast.Path("nope")), ast.NewProgram(ast.Expr("this")), nil))
		res := analyze(t, prog, userSchema, analyzer.Options{})
		assert.Equal(t, []diag.Code{diag.CodeUnknownProperty}, res.Diagnostics.Codes())
		assertSchema(t, `{"type": "string"}`, res.OutputSchema)
	})

	t.Run("missing collection", func(t *testing.T) {
		prog := ast.NewProgram(ast.BlockOf("each", nil, ast.NewProgram(ast.Text("x")), nil))
		res := analyze(t, prog, userSchema, analyzer.Options{})
		assert.Equal(t, []diag.Code{diag.CodeMissingArgument}, res.Diagnostics.Codes())
	})

	t.Run("failed collection does not cascade into the body", func(t *testing.T) {
		tests := []struct {
			name string
			args []ast.Expression
			want diag.Code
		}{
			{"unresolved", ast.Args(ast.Path("nope")), diag.CodeUnknownProperty},
			{"not an array", ast.Args(ast.Path("name")), diag.CodeTypeMismatch},
			{"missing", nil, diag.CodeMissingArgument},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				body := ast.NewProgram(
					ast.Expr("id"),
					ast.Expr("name"),
					ast.BlockOf("each", ast.Args(ast.Path("lines")), ast.NewProgram(ast.Expr("sku")), nil),
					ast.BlockOf("with", ast.Args(ast.Path("this")), ast.NewProgram(ast.Expr("city")), nil),
					ast.Expr("round", ast.Path("total")),
				)
				prog := ast.NewProgram(ast.BlockOf("each", tt.args, body, nil))
				res := analyze(t, prog, userSchema, analyzer.Options{Helpers: helpers.MustTable(
					helpers.Contract{Name: "round", Params: []helpers.Param{{Name: "value", Schema: js.Number()}}, Returns: js.Number()},
				)})
				assert.Equal(t, []diag.Code{tt.want}, res.Diagnostics.Codes())
				assertSchema(t, `{"type": "string"}`, res.OutputSchema)
			})
		}
	})

	t.Run("parent access from a failed body is still checked", func(t *testing.T) {
		body := ast.NewProgram(ast.Expr("id"), ast.Expr("../nmae"))
		prog := ast.NewProgram(ast.BlockOf("each", ast.Args(ast.Path("nope")), body, nil))
		res := analyze(t, prog, userSchema, analyzer.Options{})
		require.Equal(t, []diag.Code{diag.CodeUnknownProperty, diag.CodeUnknownProperty}, res.Diagnostics.Codes())
		assert.Equal(t, "nope", res.Diagnostics[0].Details.Path)
		assert.Equal(t, "nmae", res.Diagnostics[1].Details.Path)
	})

	t.Run("loop variables and parent access", func(t *testing.T) {
		body := ast.NewProgram(ast.Expr("@index"), ast.Expr("@first"), ast.Expr("../name"), ast.Expr("@root.age"))
		prog := ast.NewProgram(ast.BlockOf("each", ast.Args(ast.Path("tags")), body, nil))
		res := analyze(t, prog, userSchema, analyzer.Options{})
		assert.True(t, res.Valid)
		assert.Empty(t, res.Diagnostics)
	})

	t.Run("index type inside each", func(t *testing.T) {
		prog := ast.NewProgram(ast.BlockOf("with", ast.Args(ast.Path("address")),
			ast.NewProgram(ast.BlockOf("each", ast.Args(ast.Path("@root.tags")), ast.NewProgram(ast.Expr("@index")), nil)), nil))
		res := analyze(t, prog, userSchema, analyzer.Options{})
		assert.Empty(t, res.Diagnostics)
		assertSchema(t, `{"type": "string"}`, res.OutputSchema)
	})

	t.Run("tuple items", func(t *testing.T) {
		schema := `{"properties": {"pair": {"type": "array", "items": [{"type": "string"}, {"type": "number"}]}}}`
		prog := ast.NewProgram(ast.BlockOf("each", ast.Args(ast.Path("pair")), ast.NewProgram(ast.Expr("length")), nil))
		res := analyze(t, prog, schema, analyzer.Options{})
		assert.Equal(t, []diag.Code{diag.CodeUnknownProperty}, res.Diagnostics.Codes())
	})
}

func TestWithBlock(t *testing.T) {
	t.Run("transparent type", func(t *testing.T) {
		prog := ast.NewProgram(ast.BlockOf("with", ast.Args(ast.Path("address")), ast.NewProgram(ast.Expr("zip")), nil))
		res := analyze(t, prog, userSchema, analyzer.Options{})
		assert.Empty(t, res.Diagnostics)
		assertSchema(t, `{"type": "integer"}`, res.OutputSchema)
	})

	t.Run("inverse sees the parent context", func(t *testing.T) {
		prog := ast.NewProgram(ast.BlockOf("with", ast.Args(ast.Path("address")),
			ast.NewProgram(ast.Expr("city")), ast.NewProgram(ast.Expr("name"), ast.Expr("city"))))
		res := analyze(t, prog, userSchema, analyzer.Options{})
		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, "city", res.Diagnostics[0].Details.Path)
		assertSchema(t, `{"type": "string"}`, res.OutputSchema)
	})

	t.Run("context restored after the block", func(t *testing.T) {
		prog := ast.NewProgram(
			ast.BlockOf("with", ast.Args(ast.Path("address")), ast.NewProgram(ast.Expr("city")), nil),
			ast.Expr("name"),
		)
		res := analyze(t, prog, userSchema, analyzer.Options{})
		assert.Empty(t, res.Diagnostics)
	})

	t.Run("missing argument", func(t *testing.T) {
		prog := ast.NewProgram(ast.BlockOf("with", nil, ast.NewProgram(ast.Text("5")), nil))
		res := analyze(t, prog, userSchema, analyzer.Options{})
		assert.Equal(t, []diag.Code{diag.CodeMissingArgument}, res.Diagnostics.Codes())
		assertSchema(t, `{"type": "number"}`, res.OutputSchema)
	})

	t.Run("unresolved subject does not cascade", func(t *testing.T) {
		prog := ast.NewProgram(ast.BlockOf("with", ast.Args(ast.Path("nope")),
			ast.NewProgram(ast.Expr("city"), ast.Text(" "), ast.Expr("zip")), nil))
		res := analyze(t, prog, userSchema, analyzer.Options{})
		require.Equal(t, []diag.Code{diag.CodeUnknownProperty}, res.Diagnostics.Codes())
		assert.Equal(t, "nope", res.Diagnostics[0].Details.Path)
	})

	t.Run("missing argument does not cascade", func(t *testing.T) {
		prog := ast.NewProgram(ast.BlockOf("with", nil, ast.NewProgram(ast.Expr("city")), nil))
		res := analyze(t, prog, userSchema, analyzer.Options{})
		assert.Equal(t, []diag.Code{diag.CodeMissingArgument}, res.Diagnostics.Codes())
		assertSchema(t, `{}`, res.OutputSchema)
	})

	t.Run("identifiers inside a failed body are still checked", func(t *testing.T) {
		prog := ast.NewProgram(ast.BlockOf("with", ast.Args(ast.Path("nope")), ast.NewProgram(ast.Expr("id:1")), nil))
		res := analyze(t, prog, userSchema, analyzer.Options{})
		assert.Equal(t, []diag.Code{diag.CodeUnknownProperty, diag.CodeMissingIdentifierSchemas}, res.Diagnostics.Codes())
	})
}

func TestIdentifiers(t *testing.T) {
	ids := map[int]*js.Schema{
		1: js.MustParse(`{"properties": {"meta": {"type": "object", "properties": {"id": {"type": "integer"}}}}}`),
	}

	t.Run("resolves against the identifier schema", func(t *testing.T) {
		res := analyze(t, ast.NewProgram(ast.Expr("meta.id:1")), userSchema, analyzer.Options{Identifiers: ids})
		assert.Empty(t, res.Diagnostics)
		assertSchema(t, `{"type": "integer"}`, res.OutputSchema)
	})

	t.Run("no identifier table", func(t *testing.T) {
		res := analyze(t, ast.NewProgram(ast.Expr("meta.id:1")), userSchema, analyzer.Options{})
		require.Equal(t, []diag.Code{diag.CodeMissingIdentifierSchemas}, res.Diagnostics.Codes())
		d := res.Diagnostics[0]
		require.NotNil(t, d.Details.Identifier)
		assert.Equal(t, 1, *d.Details.Identifier)
		assert.Equal(t, "meta.id", d.Details.Path)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		res := analyze(t, ast.NewProgram(ast.Expr("meta.id:7")), userSchema, analyzer.Options{Identifiers: ids})
		assert.Equal(t, []diag.Code{diag.CodeUnknownIdentifier}, res.Diagnostics.Codes())
	})

	t.Run("property not found", func(t *testing.T) {
		res := analyze(t, ast.NewProgram(ast.Expr("meta.name:1")), userSchema, analyzer.Options{Identifiers: ids})
		require.Equal(t, []diag.Code{diag.CodeIdentifierPropertyNotFound}, res.Diagnostics.Codes())
		assert.Equal(t, []string{"id"}, res.Diagnostics[0].Details.AvailableProperties)
	})

	t.Run("non numeric suffix is a plain segment", func(t *testing.T) {
		res := analyze(t, ast.NewProgram(ast.Expr("name:x")), userSchema, analyzer.Options{Identifiers: ids})
		assert.Equal(t, []diag.Code{diag.CodeUnknownProperty}, res.Diagnostics.Codes())
	})

	t.Run("conditional identifier schema is fatal", func(t *testing.T) {
		bad := map[int]*js.Schema{2: js.MustParse(`{"else": {}}`)}
		_, err := analyzer.Analyze(ast.NewProgram(), js.MustParse(userSchema), analyzer.Options{Identifiers: bad})
		var ce *resolver.ConditionalSchemaError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "else", ce.Keyword)
	})
}

func TestHelpers(t *testing.T) {
	tbl := helpers.MustTable(
		helpers.Contract{
			Name:    "round",
			Params:  []helpers.Param{{Name: "value", Schema: js.Number()}, {Name: "digits", Schema: js.Integer(), Optional: true}},
			Returns: js.Number(),
		},
		helpers.Contract{Name: "now", Returns: js.Integer()},
		helpers.Contract{Name: "repeat", Params: []helpers.Param{{Name: "times", Schema: js.Integer()}}},
	)
	opts := analyzer.Options{Helpers: tbl}

	t.Run("return type", func(t *testing.T) {
		res := analyze(t, ast.NewProgram(ast.Expr("round", ast.Path("age"), ast.Num(2))), userSchema, opts)
		assert.Empty(t, res.Diagnostics)
		assertSchema(t, `{"type": "number"}`, res.OutputSchema)
	})

	t.Run("zero argument helper", func(t *testing.T) {
		res := analyze(t, ast.NewProgram(ast.Expr("now")), userSchema, opts)
		assert.Empty(t, res.Diagnostics)
		assertSchema(t, `{"type": "integer"}`, res.OutputSchema)
	})

	t.Run("declared property shadows a zero argument helper", func(t *testing.T) {
		res := analyze(t, ast.NewProgram(ast.Expr("now")), `{"properties": {"now": {"type": "string"}}}`, opts)
		assert.Empty(t, res.Diagnostics)
		assertSchema(t, `{"type": "string"}`, res.OutputSchema)

		res = analyze(t, ast.NewProgram(ast.Expr("default")), `{"properties": {"default": {"type": "boolean"}}}`,
			analyzer.Options{Helpers: helpers.Builtins()})
		assert.Empty(t, res.Diagnostics)
		assertSchema(t, `{"type": "boolean"}`, res.OutputSchema)
	})

	t.Run("additional properties do not shadow a helper", func(t *testing.T) {
		res := analyze(t, ast.NewProgram(ast.Expr("now")), `{"additionalProperties": {"type": "string"}}`, opts)
		assert.Empty(t, res.Diagnostics)
		assertSchema(t, `{"type": "integer"}`, res.OutputSchema)
	})

	t.Run("missing argument", func(t *testing.T) {
		res := analyze(t, ast.NewProgram(ast.Expr("round").WithHash(ast.Pair("mode", ast.Str("up")))), userSchema, opts)
		require.Equal(t, []diag.Code{diag.CodeMissingArgument}, res.Diagnostics.Codes())
		assert.Equal(t, `helper "round" expects at least 1 argument(s), got 0`, res.Diagnostics[0].Message)
	})

	t.Run("type mismatch names the parameter", func(t *testing.T) {
		res := analyze(t, ast.NewProgram(ast.Expr("round", ast.Path("name"))), userSchema, opts)
		require.Equal(t, []diag.Code{diag.CodeTypeMismatch}, res.Diagnostics.Codes())
		d := res.Diagnostics[0]
		assert.Equal(t, "round", d.Details.HelperName)
		assert.Equal(t, "value", d.Details.Param)
		assert.Equal(t, "number", d.Details.Expected)
		assert.Equal(t, "string", d.Details.Actual)
		assert.Contains(t, d.Message, `"value"`)
	})

	t.Run("integer and number are compatible", func(t *testing.T) {
		res := analyze(t, ast.NewProgram(ast.Expr("repeat", ast.Path("age")), ast.Expr("round", ast.Path("address.zip"))), userSchema, opts)
		assert.Empty(t, res.Diagnostics)
	})

	t.Run("nullable argument still intersects", func(t *testing.T) {
		res := analyze(t, ast.NewProgram(ast.Expr("round", ast.Path("nickname"))), userSchema, opts)
		assert.Equal(t, []diag.Code{diag.CodeTypeMismatch}, res.Diagnostics.Codes())
		assert.Equal(t, "null | string", res.Diagnostics[0].Details.Actual)
	})

	t.Run("unknown helper warns and resolves its arguments", func(t *testing.T) {
		res := analyze(t, ast.NewProgram(ast.Expr("shout", ast.Path("nope"))), userSchema, opts)
		assert.Equal(t, []diag.Code{diag.CodeUnknownHelper, diag.CodeUnknownProperty}, res.Diagnostics.Codes())
		assert.False(t, res.Valid)
		assertSchema(t, `{"type": "string"}`, res.OutputSchema)
	})

	t.Run("unknown helper alone keeps the template valid", func(t *testing.T) {
		res := analyze(t, ast.NewProgram(ast.Expr("shout", ast.Path("name"))), userSchema, opts)
		assert.True(t, res.Valid)
		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, diag.SeverityWarning, res.Diagnostics[0].Severity)
	})

	t.Run("custom block", func(t *testing.T) {
		prog := ast.NewProgram(ast.BlockOf("round", ast.Args(ast.Path("name")), ast.NewProgram(ast.Expr("age")), nil))
		res := analyze(t, prog, userSchema, opts)
		assert.Equal(t, []diag.Code{diag.CodeTypeMismatch}, res.Diagnostics.Codes())
		assertSchema(t, `{"type": "number"}`, res.OutputSchema)
	})

	t.Run("unknown block", func(t *testing.T) {
		prog := ast.NewProgram(ast.BlockOf("shout", nil, ast.NewProgram(ast.Expr("nope")), ast.NewProgram(ast.Expr("age"))))
		res := analyze(t, prog, userSchema, opts)
		assert.Equal(t, []diag.Code{diag.CodeUnknownHelper, diag.CodeUnknownProperty}, res.Diagnostics.Codes())
		assert.Equal(t, `unknown block helper "shout"`, res.Diagnostics[0].Message)
		assertSchema(t, `{"type": "string"}`, res.OutputSchema)
	})

	t.Run("builtins", func(t *testing.T) {
		prog := ast.NewProgram(ast.Expr("eq", ast.Path("age"), ast.Num(3)))
		res := analyze(t, prog, userSchema, analyzer.Options{Helpers: helpers.Builtins()})
		assert.Empty(t, res.Diagnostics)
		assertSchema(t, `{"type": "boolean"}`, res.OutputSchema)
	})
}

func TestUnanalyzable(t *testing.T) {
	prog := ast.NewProgram(
		ast.ExprOf(ast.Sub("lookup", ast.Path("name"))),
		&ast.UnknownStatement{Type: "PartialStatement"},
	)
	res := analyze(t, prog, userSchema, analyzer.Options{})
	assert.True(t, res.Valid)
	assert.Equal(t, []diag.Code{diag.CodeUnanalyzable, diag.CodeUnanalyzable}, res.Diagnostics.Codes())
	assert.Equal(t, "PartialStatement cannot be statically analyzed", res.Diagnostics[1].Message)
}

func TestLocationsAndSnippets(t *testing.T) {
	src := "Hi {{nope}}!"
	prog := ast.NewProgram(
		ast.At(ast.Text("Hi "), 1, 0, 1, 3),
		ast.At(&ast.Mustache{Path: ast.At(ast.Path("nope"), 1, 5, 1, 9), Escaped: true}, 1, 3, 1, 11),
		ast.At(ast.Text("!"), 1, 11, 1, 12),
	)
	prog.Source = src
	res := analyze(t, prog, userSchema, analyzer.Options{})
	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	require.NotNil(t, d.Loc)
	assert.Equal(t, 5, d.Loc.Start.Column)
	assert.Equal(t, "nope", d.Source)
}

func TestFatalRefError(t *testing.T) {
	_, err := analyzer.Analyze(ast.NewProgram(ast.Text("x")),
		js.MustParse(`{"properties": {"a": {"$ref": "#/definitions/Gone"}}}`), analyzer.Options{})
	var re *resolver.RefError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "#/definitions/Gone", re.Ref)
}

func TestCyclicSchema(t *testing.T) {
	schema := `{
		"definitions": {"Node": {"type": "object", "properties": {"value": {"type": "string"}, "next": {"$ref": "#/definitions/Node"}}}},
		"$ref": "#/definitions/Node"
	}`
	res := analyze(t, ast.NewProgram(ast.Expr("next.next.next.value")), schema, analyzer.Options{})
	assert.Empty(t, res.Diagnostics)
	assertSchema(t, `{"type": "string"}`, res.OutputSchema)
}

func TestInputsAreNotMutated(t *testing.T) {
	input := js.MustParse(userSchema)
	prog := ast.NewProgram(ast.BlockOf("if", ast.Args(ast.Path("active")),
		ast.NewProgram(ast.Expr("address")), ast.NewProgram(ast.Expr("address"))))
	_, err := analyzer.Analyze(prog, input, analyzer.Options{})
	require.NoError(t, err)
	assert.True(t, js.Equal(js.MustParse(userSchema), input))
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	prog := ast.NewProgram(ast.BlockOf("shout", nil, nil, nil))
	_, err := analyzer.Analyze(prog, js.MustParse(userSchema), analyzer.Options{Logger: zap.New(core)})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("analysis started").Len())
	assert.Equal(t, 1, logs.FilterMessage("unknown block helper").Len())
	finished := logs.FilterMessage("analysis finished").All()
	require.Len(t, finished, 1)
	assert.Equal(t, true, finished[0].ContextMap()["valid"])
}
