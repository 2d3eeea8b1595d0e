// Package analyzer implements the validate-and-infer walk over a template
// AST. A single depth-first traversal reports diagnostics and computes the
// schema of the value the template renders to.
//
// The active data context is an explicit scope argument of every recursive
// call, so leaving a block restores the outer context by returning.
package analyzer

import (
	"go.uber.org/zap"

	"github.com/atinseau/typebars-sub000/ast"
	"github.com/atinseau/typebars-sub000/diag"
	"github.com/atinseau/typebars-sub000/helpers"
	"github.com/atinseau/typebars-sub000/i18n"
	js "github.com/atinseau/typebars-sub000/jsonschema"
	"github.com/atinseau/typebars-sub000/resolver"
)

// Options holds the optional inputs of an analysis.
type Options struct {
	// Identifiers maps N to the schema of `path:N` references. A nil map
	// means no identifier schemas were supplied.
	Identifiers map[int]*js.Schema
	Helpers     *helpers.Table
	Logger      *zap.Logger
	Translator  i18n.Translator
}

// Result is the outcome of a successful analysis.
type Result struct {
	Valid        bool
	Diagnostics  diag.List
	OutputSchema *js.Schema
}

// env bundles the read-only inputs of one analysis.
type env struct {
	root        *js.Schema
	identifiers map[int]*js.Schema
	helpers     *helpers.Table
	log         *zap.Logger
}

type walker struct {
	env   env
	diags *diag.Collector
}

// Analyze checks prog against input. The returned error is non-nil only for
// schema defects that make the analysis impossible: an unresolvable $ref
// (*resolver.RefError) or a conditional keyword
// (*resolver.ConditionalSchemaError). Both are detected before the walk
// starts.
func Analyze(prog *ast.Program, input *js.Schema, opts Options) (Result, error) {
	if input == nil {
		input = js.Any()
	}
	if err := resolver.AssertNoConditionalAll(input, opts.Identifiers); err != nil {
		return Result{}, err
	}
	if err := resolver.CheckRefsAll(input, opts.Identifiers); err != nil {
		return Result{}, err
	}
	if prog == nil {
		prog = ast.NewProgram()
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	w := &walker{
		env: env{
			root:        input,
			identifiers: opts.Identifiers,
			helpers:     opts.Helpers,
			log:         log,
		},
		diags: diag.NewCollector(prog.Source, opts.Translator),
	}
	log.Debug("analysis started",
		zap.Int("statements", len(prog.Body)),
		zap.Int("identifiers", len(opts.Identifiers)),
		zap.Int("helpers", opts.Helpers.Len()))

	out, err := w.program(prog, rootScope(input))
	if err != nil {
		return Result{}, err
	}

	list := w.diags.List()
	if list == nil {
		list = diag.List{}
	}
	res := Result{
		Valid:        !list.HasErrors(),
		Diagnostics:  list,
		OutputSchema: resolver.Simplify(out),
	}
	log.Debug("analysis finished",
		zap.Bool("valid", res.Valid),
		zap.Int("diagnostics", len(list)))
	return res, nil
}

// scope is the data context of a program: the schema `this` refers to, the
// root its $refs resolve against, and the enclosing scope for `../`.
type scope struct {
	data   *js.Schema
	root   *js.Schema
	parent *scope
	// loop is set inside an each body, where @index and friends exist.
	loop bool
	// lenient is set when the block subject already failed. Paths resolved
	// here are unconstrained and report nothing.
	lenient bool
}

func rootScope(input *js.Schema) *scope {
	return &scope{data: input, root: input}
}

// enter returns the scope of a block body whose context is v.
func (sc *scope) enter(v value, loop bool) *scope {
	return &scope{data: v.schema, root: v.root, parent: sc, loop: loop, lenient: !v.ok}
}

// up returns the scope n levels out, stopping at the outermost one.
func (sc *scope) up(n int) *scope {
	for ; n > 0 && sc.parent != nil; n-- {
		sc = sc.parent
	}
	return sc
}

// value is the resolution of an expression.
type value struct {
	schema *js.Schema
	// root resolves $refs left inside schema.
	root *js.Schema
	// ok is false when resolution failed and a diagnostic was reported;
	// schema is then `{}`.
	ok bool
}

func (sc *scope) value() value { return value{schema: sc.data, root: sc.root, ok: !sc.lenient} }

func standalone(s *js.Schema) value { return value{schema: s, root: s, ok: true} }

func failed() value { return value{schema: js.Any(), root: js.Any(), ok: false} }
