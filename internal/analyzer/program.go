package analyzer

import (
	"slices"

	"github.com/atinseau/typebars-sub000/ast"
	js "github.com/atinseau/typebars-sub000/jsonschema"
	"github.com/atinseau/typebars-sub000/resolver"
)

// program infers the schema of a template or block body.
func (w *walker) program(p *ast.Program, sc *scope) (*js.Schema, error) {
	body := ast.EffectiveBody(p)
	switch ast.Classify(p) {
	case ast.ShapeEmpty:
		return js.String(), nil
	case ast.ShapeExpression:
		v, err := w.mustache(body[0].(*ast.Mustache), sc)
		if err != nil {
			return nil, err
		}
		return v.schema, nil
	case ast.ShapeBlock:
		return w.block(body[0].(*ast.Block), sc)
	case ast.ShapeLiteral:
		switch ast.ClassifyLiteral(ast.LiteralText(p)) {
		case ast.LiteralNumber:
			return js.Number(), nil
		case ast.LiteralBoolean:
			return js.Boolean(), nil
		case ast.LiteralNull:
			return js.Null(), nil
		}
		return js.String(), nil
	}

	for _, st := range p.Body {
		if err := w.statement(st, sc); err != nil {
			return nil, err
		}
	}
	return js.String(), nil
}

// statement walks st for its diagnostics only.
func (w *walker) statement(st ast.Statement, sc *scope) error {
	switch s := st.(type) {
	case *ast.Content, *ast.Comment:
		return nil
	case *ast.Mustache:
		_, err := w.mustache(s, sc)
		return err
	case *ast.Block:
		_, err := w.block(s, sc)
		return err
	case *ast.UnknownStatement:
		w.unanalyzable(s.Type, s.Loc)
		return nil
	}
	w.unanalyzable("statement", nil)
	return nil
}

// mustache resolves an output statement: a plain expression or a helper
// call. A bare single-segment path naming a registered helper is a call
// without arguments, unless the context has a property of that name.
func (w *walker) mustache(m *ast.Mustache, sc *scope) (value, error) {
	if len(m.Params) > 0 || (m.Hash != nil && len(m.Hash.Pairs) > 0) {
		return w.call(m.Path, m.Params, m.Hash, m.Loc, sc)
	}
	if p, ok := m.Path.(*ast.PathExpr); ok && !p.Data && p.Depth == 0 && len(p.Parts) == 1 && w.env.helpers.Has(p.Parts[0]) {
		shadowed, err := w.isProperty(p.Parts[0], sc)
		if err != nil {
			return value{}, err
		}
		if !shadowed {
			return w.call(m.Path, nil, nil, m.Loc, sc)
		}
	}
	return w.expr(m.Path, sc)
}

// isProperty reports whether the current context declares a property
// called name. additionalProperties does not count.
func (w *walker) isProperty(name string, sc *scope) (bool, error) {
	if sc.lenient {
		return false, nil
	}
	names, err := resolver.PropertyNames(sc.data, sc.root)
	if err != nil {
		return false, err
	}
	return slices.Contains(names, name), nil
}
