package ast

import "strings"

// NewProgram returns a program with the given body.
func NewProgram(body ...Statement) *Program {
	if body == nil {
		body = []Statement{}
	}
	return &Program{Body: body}
}

// Text returns a content statement.
func Text(s string) *Content { return &Content{Value: s} }

// Note returns a comment statement.
func Note(s string) *Comment { return &Comment{Value: s} }

// Path parses a dotted path. `this` and `.` refer to the current context,
// a `this.` or `./` prefix is dropped, `../` prefixes raise Depth and a
// leading `@` marks a data variable.
func Path(original string) *PathExpr {
	p := &PathExpr{Original: original}
	rest := original
	for strings.HasPrefix(rest, "../") {
		p.Depth++
		rest = rest[3:]
	}
	if strings.HasPrefix(rest, "@") {
		p.Data = true
		rest = rest[1:]
	}
	switch {
	case rest == "this" || rest == "." || rest == "":
		rest = ""
	case strings.HasPrefix(rest, "this."):
		rest = rest[len("this."):]
	case strings.HasPrefix(rest, "./"):
		rest = rest[len("./"):]
	}
	if rest != "" {
		p.Parts = strings.FieldsFunc(rest, func(r rune) bool { return r == '.' || r == '/' })
	}
	return p
}

// Expr returns a mustache statement. With params it is a helper call.
func Expr(path string, params ...Expression) *Mustache {
	return &Mustache{Path: Path(path), Params: params, Escaped: true}
}

// ExprOf returns a mustache statement wrapping an arbitrary expression.
func ExprOf(e Expression) *Mustache { return &Mustache{Path: e, Escaped: true} }

// WithHash attaches key=value arguments to a mustache statement.
func (m *Mustache) WithHash(pairs ...HashPair) *Mustache {
	m.Hash = &Hash{Pairs: pairs}
	return m
}

// Pair returns a hash argument.
func Pair(key string, value Expression) HashPair { return HashPair{Key: key, Value: value} }

// BlockOf returns a block statement. inverse may be nil.
func BlockOf(name string, params []Expression, body, inverse *Program) *Block {
	if body == nil {
		body = NewProgram()
	}
	return &Block{Path: Path(name), Params: params, Program: body, Inverse: inverse}
}

// Args is shorthand for a parameter list.
func Args(params ...Expression) []Expression { return params }

// Str, Num, Bool, Null and Undefined return literal expressions.
func Str(v string) *StringLiteral   { return &StringLiteral{Value: v} }
func Num(v float64) *NumberLiteral  { return &NumberLiteral{Value: v} }
func Bool(v bool) *BooleanLiteral   { return &BooleanLiteral{Value: v} }
func Null() *NullLiteral            { return &NullLiteral{} }
func Undefined() *UndefinedLiteral { return &UndefinedLiteral{} }

// Sub returns a sub-expression `(name params...)`.
func Sub(name string, params ...Expression) *SubExpression {
	return &SubExpression{Path: Path(name), Params: params}
}

// At sets the node location and returns the node, for fluent construction.
func At[N interface{ setLoc(*SourceLocation) }](n N, startLine, startCol, endLine, endCol int) N {
	n.setLoc(&SourceLocation{
		Start: Position{Line: startLine, Column: startCol},
		End:   Position{Line: endLine, Column: endCol},
	})
	return n
}

func (p *Program) setLoc(l *SourceLocation)          { p.Loc = l }
func (s *Content) setLoc(l *SourceLocation)          { s.Loc = l }
func (s *Comment) setLoc(l *SourceLocation)          { s.Loc = l }
func (s *Mustache) setLoc(l *SourceLocation)         { s.Loc = l }
func (s *Block) setLoc(l *SourceLocation)            { s.Loc = l }
func (s *UnknownStatement) setLoc(l *SourceLocation) { s.Loc = l }
func (e *PathExpr) setLoc(l *SourceLocation)         { e.Loc = l }
func (e *SubExpression) setLoc(l *SourceLocation)    { e.Loc = l }
