package analyzer

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/atinseau/typebars-sub000/ast"
	"github.com/atinseau/typebars-sub000/diag"
	"github.com/atinseau/typebars-sub000/helpers"
	js "github.com/atinseau/typebars-sub000/jsonschema"
	"github.com/atinseau/typebars-sub000/resolver"
)

// block dispatches on the block helper name and returns the block's type.
func (w *walker) block(b *ast.Block, sc *scope) (*js.Schema, error) {
	name := b.Name()
	switch name {
	case "if", "unless":
		return w.ifBlock(b, sc)
	case "each":
		return w.eachBlock(b, sc)
	case "with":
		return w.withBlock(b, sc)
	}
	if c, ok := w.env.helpers.Lookup(name); ok {
		return w.customBlock(b, c, sc)
	}

	w.env.log.Debug("unknown block helper", zap.String("helper", name))
	w.diags.Report(diag.CodeUnknownHelper, b.Loc, &diag.Details{HelperName: name}, map[string]string{"form": "block"})
	if err := w.args(b.Params, b.Hash, sc); err != nil {
		return nil, err
	}
	if err := w.branches(b, sc, sc); err != nil {
		return nil, err
	}
	return js.String(), nil
}

// firstParam returns the subject of a built-in block, reporting
// MISSING_ARGUMENT when there is none.
func (w *walker) firstParam(b *ast.Block) (ast.Expression, bool) {
	if len(b.Params) == 0 {
		w.diags.Report(diag.CodeMissingArgument, b.Loc, &diag.Details{HelperName: b.Name()}, map[string]string{"form": "block"})
		return nil, false
	}
	return b.Params[0], true
}

// branches walks the body under body and the inverse under inverse, for
// diagnostics only.
func (w *walker) branches(b *ast.Block, body, inverse *scope) error {
	if _, err := w.program(b.Program, body); err != nil {
		return err
	}
	if b.Inverse != nil {
		if _, err := w.program(b.Inverse, inverse); err != nil {
			return err
		}
	}
	return nil
}

// ifBlock types {{#if}} and {{#unless}}. The condition is checked but never
// affects the type. Without an else branch the type is the body's type,
// even though a falsy condition renders "".
func (w *walker) ifBlock(b *ast.Block, sc *scope) (*js.Schema, error) {
	if cond, ok := w.firstParam(b); ok {
		if _, err := w.expr(cond, sc); err != nil {
			return nil, err
		}
	}
	then, err := w.program(b.Program, sc)
	if err != nil {
		return nil, err
	}
	if b.Inverse == nil {
		return then, nil
	}
	els, err := w.program(b.Inverse, sc)
	if err != nil {
		return nil, err
	}
	if js.Equal(then, els) {
		return then, nil
	}
	return resolver.Simplify(&js.Schema{OneOf: []*js.Schema{then, els}}), nil
}

// eachBlock types {{#each}}: always a string. The body sees the element
// schema; the inverse, rendered for empty collections, sees the outer
// context. When the collection is missing or not an array the body is
// walked leniently so the one diagnostic does not cascade.
func (w *walker) eachBlock(b *ast.Block, sc *scope) (*js.Schema, error) {
	empty := sc.enter(failed(), true)
	coll, ok := w.firstParam(b)
	if !ok {
		return js.String(), w.branches(b, empty, sc)
	}
	v, err := w.expr(coll, sc)
	if err != nil {
		return nil, err
	}
	if !v.ok {
		return js.String(), w.branches(b, empty, sc)
	}
	items, isArray, err := resolver.ResolveArrayItems(v.schema, v.root)
	if err != nil {
		return nil, err
	}
	if !isArray {
		w.diags.Report(diag.CodeTypeMismatch, locOf(coll, b.Loc), &diag.Details{
			Path:       describe(coll),
			HelperName: "each",
			Expected:   js.TypeArray,
			Actual:     label(v),
		}, nil)
		return js.String(), w.branches(b, empty, sc)
	}
	body := sc.enter(value{schema: items, root: v.root, ok: true}, true)
	return js.String(), w.branches(b, body, sc)
}

// withBlock types {{#with}}: the body's type, with the body seeing the
// resolved context.
func (w *walker) withBlock(b *ast.Block, sc *scope) (*js.Schema, error) {
	ctx := failed()
	if subject, ok := w.firstParam(b); ok {
		v, err := w.expr(subject, sc)
		if err != nil {
			return nil, err
		}
		ctx = v
	}
	body, err := w.program(b.Program, sc.enter(ctx, sc.loop))
	if err != nil {
		return nil, err
	}
	if b.Inverse != nil {
		if _, err := w.program(b.Inverse, sc); err != nil {
			return nil, err
		}
	}
	return body, nil
}

// customBlock checks a registered block helper like a helper call and walks
// its branches under the unchanged context.
func (w *walker) customBlock(b *ast.Block, c helpers.Contract, sc *scope) (*js.Schema, error) {
	if err := w.checkCall(c, b.Params, b.Hash, b.Loc, sc); err != nil {
		return nil, err
	}
	if err := w.branches(b, sc, sc); err != nil {
		return nil, err
	}
	return c.ReturnSchema(), nil
}

// call resolves a helper call in mustache position.
func (w *walker) call(path ast.Expression, params []ast.Expression, hash *ast.Hash, loc *ast.SourceLocation, sc *scope) (value, error) {
	p, ok := path.(*ast.PathExpr)
	if !ok {
		w.unanalyzable("helper call", locOf(path, loc))
		return standalone(js.Any()), w.args(params, hash, sc)
	}
	name := p.String()
	c, ok := w.env.helpers.Lookup(name)
	if !ok {
		w.diags.Report(diag.CodeUnknownHelper, loc, &diag.Details{HelperName: name}, nil)
		return standalone(js.String()), w.args(params, hash, sc)
	}
	if err := w.checkCall(c, params, hash, loc, sc); err != nil {
		return value{}, err
	}
	return standalone(c.ReturnSchema()), nil
}

// checkCall validates arguments against a contract.
func (w *walker) checkCall(c helpers.Contract, params []ast.Expression, hash *ast.Hash, loc *ast.SourceLocation, sc *scope) error {
	if required := c.RequiredCount(); len(params) < required {
		w.diags.Report(diag.CodeMissingArgument, loc, &diag.Details{HelperName: c.Name}, map[string]string{
			"required": strconv.Itoa(required),
			"given":    strconv.Itoa(len(params)),
		})
	}
	for i, arg := range params {
		v, err := w.expr(arg, sc)
		if err != nil {
			return err
		}
		param, declared := c.Param(i)
		if !declared || param.Schema == nil || !v.ok {
			continue
		}
		want := standalone(param.Schema)
		if resolver.Compatible(types(v), types(want)) {
			continue
		}
		w.diags.Report(diag.CodeTypeMismatch, locOf(arg, loc), &diag.Details{
			Path:       describe(arg),
			HelperName: c.Name,
			Param:      param.Name,
			Expected:   label(want),
			Actual:     label(v),
		}, map[string]string{"form": "param"})
	}
	return w.hash(hash, sc)
}

// args resolves arguments for their diagnostics only.
func (w *walker) args(params []ast.Expression, hash *ast.Hash, sc *scope) error {
	for _, arg := range params {
		if _, err := w.expr(arg, sc); err != nil {
			return err
		}
	}
	return w.hash(hash, sc)
}

func (w *walker) hash(h *ast.Hash, sc *scope) error {
	if h == nil {
		return nil
	}
	for _, pair := range h.Pairs {
		if _, err := w.expr(pair.Value, sc); err != nil {
			return err
		}
	}
	return nil
}
