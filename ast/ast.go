// Package ast defines the template syntax tree consumed by the analyzer.
//
// The tree mirrors the Handlebars AST: a Program holds statements, and
// statements hold expressions. Statement and Expression are closed unions;
// every variant lives in this package. Trees are produced by an external
// parser, either built directly with the constructors in build.go or decoded
// from the Handlebars JSON form with Decode. The analyzer never mutates them.
package ast

// Position is a line/column pair. Lines start at 1, columns at 0.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// SourceLocation spans a node in the template source.
type SourceLocation struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Node is implemented by every tree node.
type Node interface {
	Location() *SourceLocation
}

// Statement is one of *Content, *Comment, *Mustache, *Block or
// *UnknownStatement.
type Statement interface {
	Node
	statementNode()
}

// Expression is one of *PathExpr, *StringLiteral, *NumberLiteral,
// *BooleanLiteral, *NullLiteral, *UndefinedLiteral, *SubExpression or
// *UnknownExpression.
type Expression interface {
	Node
	expressionNode()
}

// Program is an ordered statement list: a whole template or a block body.
type Program struct {
	Body        []Statement
	BlockParams []string
	// Source is the template text, used for diagnostic snippets. Only the
	// root program needs it.
	Source string
	Loc    *SourceLocation
}

func (p *Program) Location() *SourceLocation { return p.Loc }

// Content is raw template text.
type Content struct {
	Value string
	Loc   *SourceLocation
}

// Comment is a {{! }} or {{!-- --}} comment.
type Comment struct {
	Value string
	Loc   *SourceLocation
}

// Mustache is a {{expr}} or {{helper arg...}} output statement.
type Mustache struct {
	Path    Expression
	Params  []Expression
	Hash    *Hash
	Escaped bool
	Loc     *SourceLocation
}

// Block is a {{#name arg...}}...{{else}}...{{/name}} statement.
type Block struct {
	Path    *PathExpr
	Params  []Expression
	Hash    *Hash
	Program *Program
	Inverse *Program
	Loc     *SourceLocation
}

// UnknownStatement stands for a statement kind this package does not model,
// such as partials or decorators.
type UnknownStatement struct {
	Type string
	Loc  *SourceLocation
}

func (s *Content) Location() *SourceLocation          { return s.Loc }
func (s *Comment) Location() *SourceLocation          { return s.Loc }
func (s *Mustache) Location() *SourceLocation         { return s.Loc }
func (s *Block) Location() *SourceLocation            { return s.Loc }
func (s *UnknownStatement) Location() *SourceLocation { return s.Loc }

func (*Content) statementNode()          {}
func (*Comment) statementNode()          {}
func (*Mustache) statementNode()         {}
func (*Block) statementNode()            {}
func (*UnknownStatement) statementNode() {}

// Name returns the helper name of a block.
func (b *Block) Name() string {
	if b.Path == nil {
		return ""
	}
	return b.Path.String()
}

// Hash holds key=value arguments.
type Hash struct {
	Pairs []HashPair
	Loc   *SourceLocation
}

// HashPair is one key=value argument.
type HashPair struct {
	Key   string
	Value Expression
	Loc   *SourceLocation
}

// PathExpr is a dotted data reference such as `user.name`, `this`, `.`,
// `@index` or `meta.id:2`.
type PathExpr struct {
	// Original is the path as written.
	Original string
	// Parts holds the segments with any leading `this` / `.` removed.
	Parts []string
	// Data marks @-prefixed data variables.
	Data bool
	// Depth counts leading `../` segments.
	Depth int
	Loc   *SourceLocation
}

// IsThis reports whether the path designates the current context itself.
func (p *PathExpr) IsThis() bool { return !p.Data && len(p.Parts) == 0 }

// StringLiteral is a quoted string argument.
type StringLiteral struct {
	Value string
	Loc   *SourceLocation
}

// NumberLiteral is a numeric argument.
type NumberLiteral struct {
	Value float64
	Loc   *SourceLocation
}

// BooleanLiteral is true or false.
type BooleanLiteral struct {
	Value bool
	Loc   *SourceLocation
}

// NullLiteral is the null keyword.
type NullLiteral struct {
	Loc *SourceLocation
}

// UndefinedLiteral is the undefined keyword.
type UndefinedLiteral struct {
	Loc *SourceLocation
}

// SubExpression is a parenthesized helper call used as an argument.
type SubExpression struct {
	Path   Expression
	Params []Expression
	Hash   *Hash
	Loc    *SourceLocation
}

// UnknownExpression stands for an expression kind this package does not
// model.
type UnknownExpression struct {
	Type string
	Loc  *SourceLocation
}

func (e *PathExpr) Location() *SourceLocation          { return e.Loc }
func (e *StringLiteral) Location() *SourceLocation     { return e.Loc }
func (e *NumberLiteral) Location() *SourceLocation     { return e.Loc }
func (e *BooleanLiteral) Location() *SourceLocation    { return e.Loc }
func (e *NullLiteral) Location() *SourceLocation       { return e.Loc }
func (e *UndefinedLiteral) Location() *SourceLocation  { return e.Loc }
func (e *SubExpression) Location() *SourceLocation     { return e.Loc }
func (e *UnknownExpression) Location() *SourceLocation { return e.Loc }

func (*PathExpr) expressionNode()          {}
func (*StringLiteral) expressionNode()     {}
func (*NumberLiteral) expressionNode()     {}
func (*BooleanLiteral) expressionNode()    {}
func (*NullLiteral) expressionNode()       {}
func (*UndefinedLiteral) expressionNode()  {}
func (*SubExpression) expressionNode()     {}
func (*UnknownExpression) expressionNode() {}
