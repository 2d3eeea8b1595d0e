package ast

import (
	"regexp"
	"strconv"
	"strings"
)

// Shape classifies a program by how its runtime value is produced. The
// analyzer and any renderer must agree on it so that rendered values match
// the inferred output schema.
type Shape int

const (
	// ShapeEmpty: no effective statements; renders "".
	ShapeEmpty Shape = iota
	// ShapeExpression: a single mustache; its raw value passes through.
	ShapeExpression
	// ShapeBlock: a single block; its rendered text is coerced with
	// CoerceLiteral.
	ShapeBlock
	// ShapeLiteral: text only; the trimmed text is coerced with
	// CoerceLiteral.
	ShapeLiteral
	// ShapeMixed: anything else; statements render and concatenate.
	ShapeMixed
)

func (s Shape) String() string {
	switch s {
	case ShapeEmpty:
		return "empty"
	case ShapeExpression:
		return "expression"
	case ShapeBlock:
		return "block"
	case ShapeLiteral:
		return "literal"
	case ShapeMixed:
		return "mixed"
	}
	return "unknown"
}

// EffectiveBody returns the statements that contribute to the output:
// comments and whitespace-only text are dropped.
func EffectiveBody(p *Program) []Statement {
	if p == nil {
		return nil
	}
	out := make([]Statement, 0, len(p.Body))
	for _, st := range p.Body {
		switch s := st.(type) {
		case *Comment:
			continue
		case *Content:
			if strings.TrimSpace(s.Value) == "" {
				continue
			}
		}
		out = append(out, st)
	}
	return out
}

// Classify returns the shape of p.
func Classify(p *Program) Shape {
	eff := EffectiveBody(p)
	if len(eff) == 0 {
		return ShapeEmpty
	}
	if len(eff) == 1 {
		switch eff[0].(type) {
		case *Mustache:
			return ShapeExpression
		case *Block:
			return ShapeBlock
		}
	}
	for _, st := range eff {
		if _, ok := st.(*Content); !ok {
			return ShapeMixed
		}
	}
	return ShapeLiteral
}

// LiteralText returns the concatenated, trimmed text of a literal-only program.
func LiteralText(p *Program) string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	for _, st := range p.Body {
		if c, ok := st.(*Content); ok {
			b.WriteString(c.Value)
		}
	}
	return strings.TrimSpace(b.String())
}

// LiteralKind names the JSON type a rendered literal coerces to.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBoolean
	LiteralNull
)

// numericLiteral is deliberately narrow: no exponent, hex, leading plus or
// bare dot.
var numericLiteral = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// ClassifyLiteral reports the kind text coerces to after trimming.
func ClassifyLiteral(text string) LiteralKind {
	t := strings.TrimSpace(text)
	switch {
	case numericLiteral.MatchString(t):
		return LiteralNumber
	case t == "true" || t == "false":
		return LiteralBoolean
	case t == "null":
		return LiteralNull
	}
	return LiteralString
}

// CoerceLiteral converts rendered text into the value a renderer returns:
// float64, bool, nil, or the original string.
func CoerceLiteral(text string) any {
	t := strings.TrimSpace(text)
	switch ClassifyLiteral(t) {
	case LiteralNumber:
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return f
		}
	case LiteralBoolean:
		return t == "true"
	case LiteralNull:
		return nil
	}
	return text
}
