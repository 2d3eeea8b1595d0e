// Package typebars statically checks mustache/Handlebars templates against
// JSON Schema (Draft-07) and infers the schema of the value a template
// renders to.
//
// - One walk over the template AST both validates references and infers the output schema
// - A closed diagnostic taxonomy (UNKNOWN_PROPERTY, TYPE_MISMATCH, ...) with locations and snippets
// - Helper contracts describe custom helpers; calls are checked against them
// - Schema defects ($ref that cannot be followed, if/then/else) are fatal errors, not diagnostics
//
// Design policy:
// - Keep only public APIs in the root package; the walk lives under internal/analyzer.
// - Schema model under jsonschema/, schema navigation under resolver/, diagnostics under diag/.
// - Inputs (AST, schemas, helper tables) are never mutated and may be shared across goroutines.
//
// Typical usage:
//
//	res, err := typebars.Analyze(program, inputSchema)
//	if err != nil {
//		// the schema itself is broken
//	}
//	for _, d := range res.Diagnostics {
//		fmt.Println(d)
//	}
//
//	c, err := typebars.NewChecker(typebars.CheckerOptions{Helpers: helpers.Builtins()})
//	res, err = c.Check(program, inputSchema, nil)
package typebars
