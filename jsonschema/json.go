package jsonschema

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// schemaAlias drops the Schema methods so the default codec can be reused.
type schemaAlias Schema

// knownKeywords lists every keyword decoded into a typed field.
var knownKeywords = map[string]struct{}{
	"$id": {}, "$schema": {}, "$ref": {}, "definitions": {}, "$defs": {},
	"title": {}, "description": {}, "format": {}, "default": {},
	"type": {}, "enum": {}, "const": {},
	"properties": {}, "required": {}, "additionalProperties": {},
	"items": {},
	"allOf": {}, "anyOf": {}, "oneOf": {}, "not": {},
	"if": {}, "then": {}, "else": {},
}

// UnmarshalJSON accepts a schema object or a boolean schema.
func (s *Schema) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true":
		*s = *True()
		return nil
	case "false":
		*s = *False()
		return nil
	}
	if len(data) == 0 || data[0] != '{' {
		return fmt.Errorf("jsonschema: a schema must be an object or a boolean, got %s", snippet(data))
	}

	var a schemaAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*s = Schema(a)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if items, ok := raw["items"]; ok {
		if err := s.unmarshalItems(items); err != nil {
			return fmt.Errorf("jsonschema: items: %w", err)
		}
	}
	for k, v := range raw {
		if _, known := knownKeywords[k]; known {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return fmt.Errorf("jsonschema: %s: %w", k, err)
		}
		if s.Extra == nil {
			s.Extra = make(map[string]any)
		}
		s.Extra[k] = val
	}
	return nil
}

func (s *Schema) unmarshalItems(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var tuple []*Schema
		if err := json.Unmarshal(data, &tuple); err != nil {
			return err
		}
		if tuple == nil {
			tuple = []*Schema{}
		}
		s.ItemsTuple = tuple
		return nil
	}
	var one Schema
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	s.Items = &one
	return nil
}

// MarshalJSON renders s with keys in sorted order. A value receiver keeps
// non-pointer Schema values marshalable.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s.Bool != nil {
		if *s.Bool {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	}
	base, err := json.Marshal(schemaAlias(s))
	if err != nil {
		return nil, err
	}
	if s.Items == nil && s.ItemsTuple == nil && len(s.Extra) == 0 {
		return base, nil
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	for k, v := range s.Extra {
		if _, known := knownKeywords[k]; known {
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("jsonschema: %s: %w", k, err)
		}
		m[k] = b
	}
	switch {
	case s.ItemsTuple != nil:
		b, err := json.Marshal(s.ItemsTuple)
		if err != nil {
			return nil, err
		}
		m["items"] = b
	case s.Items != nil:
		b, err := json.Marshal(s.Items)
		if err != nil {
			return nil, err
		}
		m["items"] = b
	}
	return json.Marshal(m)
}

// UnmarshalJSON accepts a single type name or a list of names.
func (t *Types) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*t = Types{name}
		return nil
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("jsonschema: invalid value for \"type\": %s", snippet(data))
	}
	*t = Types(names)
	return nil
}

// MarshalJSON writes a bare string for a single type.
func (t Types) MarshalJSON() ([]byte, error) {
	if len(t) == 1 {
		return json.Marshal(t[0])
	}
	return json.Marshal([]string(t))
}

// Parse decodes a JSON document into a Schema.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("jsonschema: invalid JSON: %w", err)
	}
	return &s, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level schema literals.
func MustParse(data string) *Schema {
	s, err := Parse([]byte(data))
	if err != nil {
		panic(err)
	}
	return s
}

func snippet(b []byte) string {
	const max = 32
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
