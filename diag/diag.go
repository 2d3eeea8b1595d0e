// Package diag defines the diagnostics reported by template analysis.
//
// Diagnostics form a closed taxonomy: every finding carries one of the Code
// constants below and a Severity. Error-severity diagnostics make a template
// invalid; warnings flag constructs that are legal but could not be checked.
package diag

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/atinseau/typebars-sub000/ast"
)

// Severity is "error" or "warning".
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Code identifies the kind of a diagnostic.
type Code string

// Diagnostic codes
const (
	CodeUnknownProperty            Code = "UNKNOWN_PROPERTY"
	CodeTypeMismatch               Code = "TYPE_MISMATCH"
	CodeMissingArgument            Code = "MISSING_ARGUMENT"
	CodeUnknownHelper              Code = "UNKNOWN_HELPER"
	CodeUnanalyzable               Code = "UNANALYZABLE"
	CodeMissingIdentifierSchemas   Code = "MISSING_IDENTIFIER_SCHEMAS"
	CodeUnknownIdentifier          Code = "UNKNOWN_IDENTIFIER"
	CodeIdentifierPropertyNotFound Code = "IDENTIFIER_PROPERTY_NOT_FOUND"

	// Reported by parsers; part of the shared taxonomy.
	CodeParseError Code = "PARSE_ERROR"
)

// Codes lists every diagnostic code.
var Codes = []Code{
	CodeUnknownProperty,
	CodeTypeMismatch,
	CodeMissingArgument,
	CodeUnknownHelper,
	CodeUnanalyzable,
	CodeMissingIdentifierSchemas,
	CodeUnknownIdentifier,
	CodeIdentifierPropertyNotFound,
	CodeParseError,
}

// Severity returns the severity diagnostics with this code are reported at.
func (c Code) Severity() Severity {
	switch c {
	case CodeUnknownHelper, CodeUnanalyzable:
		return SeverityWarning
	}
	return SeverityError
}

// Details carries structured data about a diagnostic so tooling does not
// have to parse Message.
type Details struct {
	Path                string   `json:"path,omitempty"`
	HelperName          string   `json:"helperName,omitempty"`
	Param               string   `json:"param,omitempty"`
	Expected            string   `json:"expected,omitempty"`
	Actual              string   `json:"actual,omitempty"`
	AvailableProperties []string `json:"availableProperties,omitempty"`
	Identifier          *int     `json:"identifier,omitempty"`
}

// Diagnostic is a single static finding.
type Diagnostic struct {
	Severity Severity            `json:"severity"`
	Code     Code                `json:"code"`
	Message  string              `json:"message"`
	Loc      *ast.SourceLocation `json:"loc,omitempty"`
	Source   string              `json:"source,omitempty"` // template text covered by Loc, best-effort
	Details  *Details            `json:"details,omitempty"`
}

func (d Diagnostic) String() string {
	if d.Loc == nil {
		return fmt.Sprintf("%s %s: %s", d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("%d:%d: %s %s: %s", d.Loc.Start.Line, d.Loc.Start.Column, d.Severity, d.Code, d.Message)
}

// List is an ordered collection of diagnostics that implements error.
type List []Diagnostic

// Error summarizes the first few diagnostics.
func (l List) Error() string {
	if len(l) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(l)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s: %s", l[i].Code, l[i].Message)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// HasErrors reports whether any diagnostic has error severity.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns the error-severity diagnostics.
func (l List) Errors() List { return l.filter(SeverityError) }

// Warnings returns the warning-severity diagnostics.
func (l List) Warnings() List { return l.filter(SeverityWarning) }

func (l List) filter(s Severity) List {
	var out List
	for _, d := range l {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}

// Codes returns the code of each diagnostic, in order.
func (l List) Codes() []Code {
	out := make([]Code, len(l))
	for i, d := range l {
		out[i] = d.Code
	}
	return out
}

// Clone returns a copy of l that shares no slices with it.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	for i, d := range l {
		if d.Details != nil {
			det := *d.Details
			det.AvailableProperties = append([]string(nil), d.Details.AvailableProperties...)
			if det.Identifier != nil {
				n := *det.Identifier
				det.Identifier = &n
			}
			d.Details = &det
		}
		if d.Loc != nil {
			l := *d.Loc
			d.Loc = &l
		}
		out[i] = d
	}
	return out
}

// Encode renders l as a JSON array. A nil list encodes as [].
func Encode(l List) ([]byte, error) {
	if l == nil {
		l = List{}
	}
	return json.Marshal(l)
}

// AsList extracts a List from an error using errors.As internally.
func AsList(err error) (List, bool) {
	if err == nil {
		return nil, false
	}
	var l List
	if errors.As(err, &l) {
		return l, true
	}
	return nil, false
}
