package typebars

import (
	"errors"

	"github.com/atinseau/typebars-sub000/diag"
	"github.com/atinseau/typebars-sub000/resolver"
)

// Diagnostic codes (re-exported for IDE completion)
const (
	CodeUnknownProperty            = diag.CodeUnknownProperty
	CodeTypeMismatch               = diag.CodeTypeMismatch
	CodeMissingArgument            = diag.CodeMissingArgument
	CodeUnknownHelper              = diag.CodeUnknownHelper
	CodeUnanalyzable               = diag.CodeUnanalyzable
	CodeMissingIdentifierSchemas   = diag.CodeMissingIdentifierSchemas
	CodeUnknownIdentifier          = diag.CodeUnknownIdentifier
	CodeIdentifierPropertyNotFound = diag.CodeIdentifierPropertyNotFound
	CodeParseError                 = diag.CodeParseError
)

// Diagnostic is a single static finding.
type Diagnostic = diag.Diagnostic

// Diagnostics is an ordered collection of findings that implements error.
type Diagnostics = diag.List

// RefError reports a $ref that cannot be followed.
type RefError = resolver.RefError

// ConditionalSchemaError reports an if/then/else keyword in a schema.
type ConditionalSchemaError = resolver.ConditionalSchemaError

// AsDiagnostics extracts Diagnostics from an error using errors.As internally.
func AsDiagnostics(err error) (Diagnostics, bool) { return diag.AsList(err) }

// IsSchemaError reports whether err is one of the fatal schema errors
// returned by Analyze: a *RefError or a *ConditionalSchemaError.
func IsSchemaError(err error) bool {
	var re *RefError
	var ce *ConditionalSchemaError
	return errors.As(err, &re) || errors.As(err, &ce)
}
