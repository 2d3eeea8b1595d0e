package jsonschema

import "slices"

// Schema is the JSON Schema Draft-07 subset understood by the analyzer.
//
// A boolean schema (`true` / `false`) is a Schema with Bool set and every
// other field empty. Use True and False to build them.
type Schema struct {
	// Bool is non-nil for boolean schemas.
	Bool *bool `json:"-"`

	// Core
	ID          string             `json:"$id,omitempty"`
	Dialect     string             `json:"$schema,omitempty"`
	Ref         string             `json:"$ref,omitempty"`
	Definitions map[string]*Schema `json:"definitions,omitempty"`
	Defs        map[string]*Schema `json:"$defs,omitempty"`

	// Metadata
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Format      string `json:"format,omitempty"`
	Default     any    `json:"default,omitempty"`

	// Validation
	Type  Types `json:"type,omitempty"`
	Enum  []any `json:"enum,omitempty"`
	Const any   `json:"const,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties *Schema            `json:"additionalProperties,omitempty"`

	// Array. Items and ItemsTuple are mutually exclusive; both map to the
	// "items" keyword.
	Items      *Schema   `json:"-"`
	ItemsTuple []*Schema `json:"-"`

	// Combinators
	AllOf []*Schema `json:"allOf,omitempty"`
	AnyOf []*Schema `json:"anyOf,omitempty"`
	OneOf []*Schema `json:"oneOf,omitempty"`
	Not   *Schema   `json:"not,omitempty"`

	// Conditional keywords are decoded only so that they can be rejected.
	If   *Schema `json:"if,omitempty"`
	Then *Schema `json:"then,omitempty"`
	Else *Schema `json:"else,omitempty"`

	// Extra holds keywords this package does not model (minLength, pattern, ...).
	Extra map[string]any `json:"-"`
}

// Types is the value of the "type" keyword. It marshals as a bare string
// when it holds a single name.
type Types []string

// JSON type names.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeNull    = "null"
	TypeObject  = "object"
	TypeArray   = "array"
)

// Has reports whether name is one of the listed types.
func (t Types) Has(name string) bool { return slices.Contains(t, name) }

// True returns the boolean schema that accepts everything.
func True() *Schema { b := true; return &Schema{Bool: &b} }

// False returns the boolean schema that accepts nothing.
func False() *Schema { b := false; return &Schema{Bool: &b} }

// Any returns the unconstrained schema `{}`.
func Any() *Schema { return &Schema{} }

// OfType returns `{type: names...}`.
func OfType(names ...string) *Schema { return &Schema{Type: Types(names)} }

// String, Number, Integer, Boolean and Null return the primitive schemas.
func String() *Schema  { return OfType(TypeString) }
func Number() *Schema  { return OfType(TypeNumber) }
func Integer() *Schema { return OfType(TypeInteger) }
func Boolean() *Schema { return OfType(TypeBoolean) }
func Null() *Schema    { return OfType(TypeNull) }

// IsTrue reports whether s is the `true` boolean schema.
func (s *Schema) IsTrue() bool { return s != nil && s.Bool != nil && *s.Bool }

// IsFalse reports whether s is the `false` boolean schema.
func (s *Schema) IsFalse() bool { return s != nil && s.Bool != nil && !*s.Bool }

// IsEmpty reports whether s is nil, `true` or `{}` with no annotations.
func (s *Schema) IsEmpty() bool {
	if s == nil || s.IsTrue() {
		return true
	}
	if s.Bool != nil {
		return false
	}
	return s.keywordCount() == 0 && !s.annotated()
}

// annotated reports whether s carries $id, $schema, title or description.
func (s *Schema) annotated() bool {
	return s.ID != "" || s.Dialect != "" || s.Title != "" || s.Description != ""
}

// HasType reports whether the "type" keyword lists name.
func (s *Schema) HasType(name string) bool { return s != nil && s.Type.Has(name) }

// HasConditional reports whether s itself carries if/then/else.
func (s *Schema) HasConditional() bool {
	return s != nil && (s.If != nil || s.Then != nil || s.Else != nil)
}

// ConditionalKeyword returns the first conditional keyword present on s.
func (s *Schema) ConditionalKeyword() string {
	switch {
	case s == nil:
		return ""
	case s.If != nil:
		return "if"
	case s.Then != nil:
		return "then"
	case s.Else != nil:
		return "else"
	}
	return ""
}

// ShallowCopy returns a copy of s whose maps and slices are cloned one level
// deep. Sub-schemas are shared.
func (s *Schema) ShallowCopy() *Schema {
	if s == nil {
		return nil
	}
	c := *s
	if s.Bool != nil {
		b := *s.Bool
		c.Bool = &b
	}
	c.Type = slices.Clone(s.Type)
	c.Enum = slices.Clone(s.Enum)
	c.Required = slices.Clone(s.Required)
	c.ItemsTuple = slices.Clone(s.ItemsTuple)
	c.AllOf = slices.Clone(s.AllOf)
	c.AnyOf = slices.Clone(s.AnyOf)
	c.OneOf = slices.Clone(s.OneOf)
	c.Properties = cloneMap(s.Properties)
	c.Definitions = cloneMap(s.Definitions)
	c.Defs = cloneMap(s.Defs)
	if s.Extra != nil {
		c.Extra = make(map[string]any, len(s.Extra))
		for k, v := range s.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}

// keywordCount counts the constraining keywords set on s. Annotations
// (title, description) are not counted.
func (s *Schema) keywordCount() int {
	n := 0
	count := func(present bool) {
		if present {
			n++
		}
	}
	count(s.Ref != "")
	count(len(s.Type) > 0)
	count(s.Enum != nil)
	count(s.Const != nil)
	count(s.Format != "")
	count(s.Default != nil)
	count(s.Properties != nil)
	count(s.Required != nil)
	count(s.AdditionalProperties != nil)
	count(s.Items != nil)
	count(s.ItemsTuple != nil)
	count(s.AllOf != nil)
	count(s.AnyOf != nil)
	count(s.OneOf != nil)
	count(s.Not != nil)
	count(s.If != nil || s.Then != nil || s.Else != nil)
	count(s.Definitions != nil || s.Defs != nil)
	count(len(s.Extra) > 0)
	return n
}

// OnlyKeyword reports whether the only keyword set on s is the named
// combinator ("allOf", "anyOf" or "oneOf").
func (s *Schema) OnlyKeyword(name string) bool {
	if s == nil || s.Bool != nil || s.keywordCount() != 1 || s.annotated() {
		return false
	}
	switch name {
	case "allOf":
		return s.AllOf != nil
	case "anyOf":
		return s.AnyOf != nil
	case "oneOf":
		return s.OneOf != nil
	}
	return false
}

func cloneMap(m map[string]*Schema) map[string]*Schema {
	if m == nil {
		return nil
	}
	out := make(map[string]*Schema, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
