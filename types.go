package typebars

import (
	"go.uber.org/zap"

	"github.com/atinseau/typebars-sub000/ast"
	"github.com/atinseau/typebars-sub000/helpers"
	"github.com/atinseau/typebars-sub000/i18n"
	js "github.com/atinseau/typebars-sub000/jsonschema"
)

// AnalyzeOpt bundles the optional inputs of Analyze.
type AnalyzeOpt struct {
	// Identifiers maps N to the schema that `path:N` references resolve
	// against. Leave nil when the template has no identifier sources.
	Identifiers map[int]*js.Schema
	// Helpers lists the custom helpers the template may call.
	Helpers *helpers.Table
	Logger  *zap.Logger // Debug-level tracing; nil disables logging.
	// Translator renders diagnostic messages. nil uses i18n.Current().
	Translator i18n.Translator
}

// Result is the outcome of an analysis.
type Result struct {
	// Valid is false when any error-severity diagnostic was reported.
	Valid       bool        `json:"valid"`
	Diagnostics Diagnostics `json:"diagnostics"`
	// OutputSchema describes the value the template renders to.
	OutputSchema *js.Schema `json:"outputSchema"`
}

// Err returns the error-severity diagnostics as an error, or nil when the
// template is valid.
func (r Result) Err() error {
	if errs := r.Diagnostics.Errors(); len(errs) > 0 {
		return errs
	}
	return nil
}

// Shape classifies a template by how its runtime value is produced.
type Shape = ast.Shape

const (
	ShapeEmpty      = ast.ShapeEmpty      // no output statements; renders ""
	ShapeExpression = ast.ShapeExpression // one {{expr}}; the raw value passes through
	ShapeBlock      = ast.ShapeBlock      // one block; the rendered text is coerced
	ShapeLiteral    = ast.ShapeLiteral    // text only; the trimmed text is coerced
	ShapeMixed      = ast.ShapeMixed      // anything else; renders a string
)
