package jsonschema

import (
	"reflect"
	"slices"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
	json "github.com/goccy/go-json"
)

// Equal reports whether a and b describe the same schema structurally.
// Map keys are compared independent of order, type lists are compared as
// sets, and `true` equals `{}`. Cyclic graphs are supported: a pair already
// under comparison is assumed equal.
func Equal(a, b *Schema) bool {
	return equal(a, b, make(map[[2]*Schema]struct{}))
}

func equal(a, b *Schema, seen map[[2]*Schema]struct{}) bool {
	if a == b {
		return true
	}
	if a.IsEmpty() && b.IsEmpty() {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if (a.Bool == nil) != (b.Bool == nil) {
		return false
	}
	if a.Bool != nil {
		return *a.Bool == *b.Bool
	}
	key := [2]*Schema{a, b}
	if _, ok := seen[key]; ok {
		return true
	}
	seen[key] = struct{}{}

	if a.ID != b.ID || a.Dialect != b.Dialect || a.Ref != b.Ref ||
		a.Title != b.Title || a.Description != b.Description || a.Format != b.Format {
		return false
	}
	if !sameSet(a.Type, b.Type) || !sameSet(a.Required, b.Required) {
		return false
	}
	if !reflect.DeepEqual(a.Enum, b.Enum) || !reflect.DeepEqual(a.Const, b.Const) ||
		!reflect.DeepEqual(a.Default, b.Default) || !reflect.DeepEqual(normExtra(a.Extra), normExtra(b.Extra)) {
		return false
	}
	if !equalMap(a.Properties, b.Properties, seen) ||
		!equalMap(a.Definitions, b.Definitions, seen) ||
		!equalMap(a.Defs, b.Defs, seen) {
		return false
	}
	if !equalOpt(a.AdditionalProperties, b.AdditionalProperties, seen) ||
		!equalOpt(a.Items, b.Items, seen) ||
		!equalOpt(a.Not, b.Not, seen) ||
		!equalOpt(a.If, b.If, seen) ||
		!equalOpt(a.Then, b.Then, seen) ||
		!equalOpt(a.Else, b.Else, seen) {
		return false
	}
	if (a.ItemsTuple == nil) != (b.ItemsTuple == nil) {
		return false
	}
	return equalList(a.ItemsTuple, b.ItemsTuple, seen) &&
		equalList(a.AllOf, b.AllOf, seen) &&
		equalList(a.AnyOf, b.AnyOf, seen) &&
		equalList(a.OneOf, b.OneOf, seen)
}

// equalOpt compares optional sub-schemas where absence differs from `{}`.
func equalOpt(a, b *Schema, seen map[[2]*Schema]struct{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return equal(a, b, seen)
}

func equalList(a, b []*Schema, seen map[[2]*Schema]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalOpt(a[i], b[i], seen) {
			return false
		}
	}
	return true
}

func equalMap(a, b map[string]*Schema, seen map[[2]*Schema]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !equalOpt(av, bv, seen) {
			return false
		}
	}
	return true
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as, bs := slices.Clone(a), slices.Clone(b)
	sort.Strings(as)
	sort.Strings(bs)
	return slices.Equal(as, bs)
}

func normExtra(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return m
}

// Fingerprint returns a 64-bit structural hash of s. Equal schemas without
// cycles hash identically; cyclic graphs hash deterministically.
func Fingerprint(s *Schema) uint64 {
	d := xxhash.New()
	fingerprint(d, s, make(map[*Schema]int))
	return d.Sum64()
}

func fingerprint(d *xxhash.Digest, s *Schema, seen map[*Schema]int) {
	switch {
	case s == nil:
		_, _ = d.WriteString("~")
		return
	case s.IsEmpty():
		_, _ = d.WriteString("{}")
		return
	case s.IsFalse():
		_, _ = d.WriteString("F")
		return
	}
	if id, ok := seen[s]; ok {
		_, _ = d.WriteString("@" + strconv.Itoa(id))
		return
	}
	seen[s] = len(seen)

	str := func(k, v string) {
		if v != "" {
			_, _ = d.WriteString(k + "=" + strconv.Quote(v) + ";")
		}
	}
	val := func(k string, v any) {
		if v == nil {
			return
		}
		b, err := json.Marshal(v)
		if err != nil {
			b = []byte("?")
		}
		_, _ = d.WriteString(k + "=")
		_, _ = d.Write(b)
		_, _ = d.WriteString(";")
	}
	set := func(k string, v []string) {
		if v == nil {
			return
		}
		c := slices.Clone(v)
		sort.Strings(c)
		val(k, c)
	}
	sub := func(k string, v *Schema) {
		if v == nil {
			return
		}
		_, _ = d.WriteString(k + ":")
		fingerprint(d, v, seen)
		_, _ = d.WriteString(";")
	}
	list := func(k string, v []*Schema) {
		if v == nil {
			return
		}
		_, _ = d.WriteString(k + "[")
		for _, m := range v {
			fingerprint(d, m, seen)
			_, _ = d.WriteString(",")
		}
		_, _ = d.WriteString("]")
	}
	dict := func(k string, v map[string]*Schema) {
		if v == nil {
			return
		}
		keys := make([]string, 0, len(v))
		for name := range v {
			keys = append(keys, name)
		}
		sort.Strings(keys)
		_, _ = d.WriteString(k + "{")
		for _, name := range keys {
			_, _ = d.WriteString(strconv.Quote(name) + ":")
			fingerprint(d, v[name], seen)
			_, _ = d.WriteString(",")
		}
		_, _ = d.WriteString("}")
	}

	str("$id", s.ID)
	str("$schema", s.Dialect)
	str("$ref", s.Ref)
	str("title", s.Title)
	str("description", s.Description)
	str("format", s.Format)
	set("type", s.Type)
	set("required", s.Required)
	val("enum", s.Enum)
	val("const", s.Const)
	val("default", s.Default)
	val("extra", normExtra(s.Extra))
	dict("properties", s.Properties)
	dict("definitions", s.Definitions)
	dict("$defs", s.Defs)
	sub("additionalProperties", s.AdditionalProperties)
	sub("items", s.Items)
	list("tuple", s.ItemsTuple)
	list("allOf", s.AllOf)
	list("anyOf", s.AnyOf)
	list("oneOf", s.OneOf)
	sub("not", s.Not)
	sub("if", s.If)
	sub("then", s.Then)
	sub("else", s.Else)
}
