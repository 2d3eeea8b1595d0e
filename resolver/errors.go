package resolver

import "fmt"

// RefError reports a `$ref` that cannot be followed: an unsupported form,
// a missing definition, or a chain that loops back on itself. It is fatal:
// it signals a schema authoring mistake, not a template mistake.
type RefError struct {
	Ref    string
	Reason string
}

func (e *RefError) Error() string {
	return fmt.Sprintf("unresolvable $ref %q: %s", e.Ref, e.Reason)
}

// ConditionalSchemaError reports an if/then/else keyword found in a schema.
// Conditional schemas depend on runtime data and cannot be resolved
// statically.
type ConditionalSchemaError struct {
	// Path is a JSON Pointer to the offending schema node.
	Path string
	// Keyword is "if", "then" or "else".
	Keyword string
}

func (e *ConditionalSchemaError) Error() string {
	return fmt.Sprintf("unsupported conditional schema: %q keyword at %s; if/then/else cannot be resolved without runtime data", e.Keyword, e.Path)
}
