// Package helpers describes the helpers a host makes available to templates.
//
// A Contract declares a helper's parameters and return schema; a Table is an
// immutable set of contracts keyed by name. The analyzer only reads
// contracts: invoking helpers is the renderer's business.
package helpers

import (
	"errors"
	"fmt"
	"slices"

	js "github.com/atinseau/typebars-sub000/jsonschema"
)

// Param declares one positional helper parameter.
type Param struct {
	Name string `json:"name"`
	// Schema is the accepted value schema. Nil accepts anything.
	Schema      *js.Schema `json:"schema,omitempty"`
	Optional    bool       `json:"optional,omitempty"`
	Description string     `json:"description,omitempty"`
}

// Contract is the static signature of a helper.
type Contract struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Params      []Param `json:"params,omitempty"`
	// Returns is the schema of the helper's result; nil means string.
	Returns *js.Schema `json:"returns,omitempty"`
}

// ReturnSchema returns the declared result schema, defaulting to string.
func (c Contract) ReturnSchema() *js.Schema {
	if c.Returns == nil {
		return js.String()
	}
	return c.Returns
}

// RequiredCount is the number of non-optional parameters.
func (c Contract) RequiredCount() int {
	n := 0
	for _, p := range c.Params {
		if !p.Optional {
			n++
		}
	}
	return n
}

// Param returns the i-th declared parameter.
func (c Contract) Param(i int) (Param, bool) {
	if i < 0 || i >= len(c.Params) {
		return Param{}, false
	}
	return c.Params[i], true
}

var (
	// ErrEmptyName is returned when a contract has no name.
	ErrEmptyName = errors.New("helpers: contract name is empty")
	// ErrDuplicate is returned when two contracts share a name.
	ErrDuplicate = errors.New("helpers: duplicate contract")
)

// Table maps helper names to contracts. A Table never changes after it is
// built, so it can be shared freely between goroutines. The nil *Table is
// an empty table.
type Table struct {
	byName map[string]Contract
	names  []string
}

// NewTable builds a table from contracts. Names must be unique.
func NewTable(contracts ...Contract) (*Table, error) {
	b := NewBuilder()
	for _, c := range contracts {
		b.Register(c)
	}
	return b.Build()
}

// MustTable is NewTable that panics on error.
func MustTable(contracts ...Contract) *Table {
	t, err := NewTable(contracts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the contract registered under name.
func (t *Table) Lookup(name string) (Contract, bool) {
	if t == nil {
		return Contract{}, false
	}
	c, ok := t.byName[name]
	return c, ok
}

// Has reports whether name is registered.
func (t *Table) Has(name string) bool {
	_, ok := t.Lookup(name)
	return ok
}

// Names returns the registered names in sorted order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	return slices.Clone(t.names)
}

// Contracts returns the registered contracts ordered by name.
func (t *Table) Contracts() []Contract {
	if t == nil {
		return nil
	}
	out := make([]Contract, 0, len(t.names))
	for _, name := range t.names {
		out = append(out, t.byName[name])
	}
	return out
}

// Len returns the number of contracts.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}

// With returns a new table holding t's contracts plus the given ones.
// A given contract replaces an existing one of the same name.
func (t *Table) With(contracts ...Contract) (*Table, error) {
	b := NewBuilder()
	if t != nil {
		for _, name := range t.names {
			if !slices.ContainsFunc(contracts, func(c Contract) bool { return c.Name == name }) {
				b.Register(t.byName[name])
			}
		}
	}
	for _, c := range contracts {
		b.Register(c)
	}
	return b.Build()
}

// Builder accumulates contracts for a Table. The first registration error
// is kept and returned by Build.
type Builder struct {
	contracts map[string]Contract
	err       error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{contracts: make(map[string]Contract)}
}

// Register adds c to the builder.
func (b *Builder) Register(c Contract) *Builder {
	if b.err != nil {
		return b
	}
	if c.Name == "" {
		b.err = ErrEmptyName
		return b
	}
	if _, dup := b.contracts[c.Name]; dup {
		b.err = fmt.Errorf("%w: %q", ErrDuplicate, c.Name)
		return b
	}
	c.Params = slices.Clone(c.Params)
	b.contracts[c.Name] = c
	return b
}

// Build returns the table, or the first registration error.
func (b *Builder) Build() (*Table, error) {
	if b.err != nil {
		return nil, b.err
	}
	t := &Table{byName: make(map[string]Contract, len(b.contracts))}
	for name, c := range b.contracts {
		t.byName[name] = c
		t.names = append(t.names, name)
	}
	slices.Sort(t.names)
	return t, nil
}
