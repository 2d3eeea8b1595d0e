package analyzer

import (
	"strconv"
	"strings"

	"github.com/atinseau/typebars-sub000/ast"
	"github.com/atinseau/typebars-sub000/diag"
	js "github.com/atinseau/typebars-sub000/jsonschema"
	"github.com/atinseau/typebars-sub000/resolver"
)

// expr resolves an expression in argument or output position.
func (w *walker) expr(e ast.Expression, sc *scope) (value, error) {
	switch x := e.(type) {
	case *ast.PathExpr:
		return w.path(x, sc)
	case *ast.StringLiteral:
		return standalone(js.String()), nil
	case *ast.NumberLiteral:
		return standalone(js.Number()), nil
	case *ast.BooleanLiteral:
		return standalone(js.Boolean()), nil
	case *ast.NullLiteral:
		return standalone(js.Null()), nil
	case *ast.UndefinedLiteral:
		return standalone(js.Any()), nil
	case *ast.SubExpression:
		w.unanalyzable("sub-expression", x.Loc)
		return standalone(js.Any()), nil
	case *ast.UnknownExpression:
		w.unanalyzable(x.Type, x.Loc)
		return standalone(js.Any()), nil
	}
	w.unanalyzable("expression", nil)
	return standalone(js.Any()), nil
}

func (w *walker) unanalyzable(construct string, loc *ast.SourceLocation) {
	w.diags.Report(diag.CodeUnanalyzable, loc, nil, map[string]string{"construct": construct})
}

func (w *walker) path(p *ast.PathExpr, sc *scope) (value, error) {
	if p.Data {
		return w.dataVar(p, sc)
	}
	target := sc.up(p.Depth)
	if p.IsThis() {
		return target.value(), nil
	}

	segs, id, hasID := splitIdentifier(p.Parts)
	if hasID {
		return w.identifierPath(p, segs, id)
	}
	if target.lenient {
		return failed(), nil
	}

	at, n, err := resolver.Walk(target.data, target.root, segs)
	if err != nil {
		return value{}, err
	}
	if n == len(segs) {
		return value{schema: at, root: target.root, ok: true}, nil
	}
	names, err := resolver.PropertyNames(at, target.root)
	if err != nil {
		return value{}, err
	}
	w.diags.Report(diag.CodeUnknownProperty, p.Loc, &diag.Details{
		Path:                strings.Join(segs, "."),
		AvailableProperties: names,
	}, nil)
	return failed(), nil
}

// splitIdentifier strips a `:N` suffix from the last segment. Only the last
// segment may carry it.
func splitIdentifier(parts []string) ([]string, int, bool) {
	if len(parts) == 0 {
		return parts, 0, false
	}
	last := parts[len(parts)-1]
	i := strings.LastIndexByte(last, ':')
	if i < 0 {
		return parts, 0, false
	}
	id, err := strconv.Atoi(last[i+1:])
	if err != nil || id < 0 || last[i+1] == '+' || last[i+1] == '-' {
		return parts, 0, false
	}
	segs := append([]string(nil), parts[:len(parts)-1]...)
	if name := last[:i]; name != "" {
		segs = append(segs, name)
	}
	return segs, id, true
}

func (w *walker) identifierPath(p *ast.PathExpr, segs []string, id int) (value, error) {
	details := func() *diag.Details {
		n := id
		return &diag.Details{Path: strings.Join(segs, "."), Identifier: &n}
	}
	if w.env.identifiers == nil {
		w.diags.Report(diag.CodeMissingIdentifierSchemas, p.Loc, details(), nil)
		return failed(), nil
	}
	schema, ok := w.env.identifiers[id]
	if !ok || schema == nil {
		w.diags.Report(diag.CodeUnknownIdentifier, p.Loc, details(), nil)
		return failed(), nil
	}
	at, n, err := resolver.Walk(schema, schema, segs)
	if err != nil {
		return value{}, err
	}
	if n == len(segs) {
		return value{schema: at, root: schema, ok: true}, nil
	}
	names, err := resolver.PropertyNames(at, schema)
	if err != nil {
		return value{}, err
	}
	d := details()
	d.AvailableProperties = names
	w.diags.Report(diag.CodeIdentifierPropertyNotFound, p.Loc, d, nil)
	return failed(), nil
}

// dataVar resolves @-variables. @root addresses the input schema; the loop
// variables are typed inside each bodies. Anything else is unconstrained.
func (w *walker) dataVar(p *ast.PathExpr, sc *scope) (value, error) {
	if len(p.Parts) == 0 {
		return standalone(js.Any()), nil
	}
	if p.Parts[0] == "root" {
		root := &ast.PathExpr{Original: p.Original, Parts: p.Parts[1:], Loc: p.Loc}
		return w.path(root, rootScope(w.env.root))
	}
	if !sc.loop || len(p.Parts) > 1 {
		return standalone(js.Any()), nil
	}
	switch p.Parts[0] {
	case "index":
		return standalone(js.Integer()), nil
	case "key":
		return standalone(js.String()), nil
	case "first", "last":
		return standalone(js.Boolean()), nil
	}
	return standalone(js.Any()), nil
}

// types returns the type names of v. Schemas whose types cannot be computed
// count as unconstrained.
func types(v value) js.Types {
	t, err := resolver.TypeSet(v.schema, v.root)
	if err != nil {
		return nil
	}
	return t
}

// label renders the types of v for diagnostics.
func label(v value) string {
	t := types(v)
	if len(t) == 0 {
		return "unknown"
	}
	return strings.Join(t, " | ")
}

// describe renders an argument expression for diagnostics.
func describe(e ast.Expression) string {
	switch x := e.(type) {
	case *ast.PathExpr:
		return x.String()
	case *ast.StringLiteral:
		return strconv.Quote(x.Value)
	case *ast.NumberLiteral:
		return strconv.FormatFloat(x.Value, 'f', -1, 64)
	case *ast.BooleanLiteral:
		return strconv.FormatBool(x.Value)
	case *ast.NullLiteral:
		return "null"
	case *ast.UndefinedLiteral:
		return "undefined"
	case *ast.SubExpression:
		return "(sub-expression)"
	}
	return ""
}

func locOf(n ast.Node, fallback *ast.SourceLocation) *ast.SourceLocation {
	if n != nil {
		if l := n.Location(); l != nil {
			return l
		}
	}
	return fallback
}
