package typebars

import (
	"fmt"

	"github.com/atinseau/typebars-sub000/ast"
	"github.com/atinseau/typebars-sub000/internal/analyzer"
	js "github.com/atinseau/typebars-sub000/jsonschema"
)

// Analyze checks program against the input schema and infers its output
// schema. Template mistakes are reported as diagnostics in the Result; the
// error is non-nil only when a schema cannot be analyzed at all (a *RefError
// or a *ConditionalSchemaError, reachable with errors.As).
//
// When several opts are given the last one wins.
func Analyze(program *ast.Program, input *js.Schema, opts ...AnalyzeOpt) (Result, error) {
	var o AnalyzeOpt
	if len(opts) > 0 {
		o = opts[len(opts)-1]
	}
	res, err := analyzer.Analyze(program, input, analyzer.Options{
		Identifiers: o.Identifiers,
		Helpers:     o.Helpers,
		Logger:      o.Logger,
		Translator:  o.Translator,
	})
	if err != nil {
		return Result{}, fmt.Errorf("typebars: %w", err)
	}
	return Result{
		Valid:        res.Valid,
		Diagnostics:  res.Diagnostics,
		OutputSchema: res.OutputSchema,
	}, nil
}

// AnalyzeJSON is Analyze for wire inputs: astJSON is a Handlebars AST in its
// JSON form and schemaJSON a JSON Schema document. Duplicate keys in the
// schema are rejected.
func AnalyzeJSON(astJSON, schemaJSON []byte, opts ...AnalyzeOpt) (Result, error) {
	program, err := ast.Decode(astJSON)
	if err != nil {
		return Result{}, fmt.Errorf("typebars: decoding template: %w", err)
	}
	input, err := js.ParseStrict(schemaJSON)
	if err != nil {
		return Result{}, fmt.Errorf("typebars: decoding schema: %w", err)
	}
	return Analyze(program, input, opts...)
}

// Classify returns the shape of a template. Renderers use it to produce
// values that match the inferred output schema.
func Classify(program *ast.Program) Shape { return ast.Classify(program) }

// CoerceLiteral converts the rendered text of a literal or single-block
// template into its runtime value: float64, bool, nil or the text itself.
func CoerceLiteral(text string) any { return ast.CoerceLiteral(text) }
