package ast

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// ErrNotProgram is returned by Decode when the document root is not a
// Program node.
var ErrNotProgram = errors.New("ast: root node is not a Program")

// rawNode is the union of all fields used by Handlebars JSON nodes.
type rawNode struct {
	Type        string            `json:"type"`
	Body        []json.RawMessage `json:"body"`
	BlockParams []string          `json:"blockParams"`
	Value       json.RawMessage   `json:"value"`
	Original    json.RawMessage   `json:"original"`
	Path        json.RawMessage   `json:"path"`
	Params      []json.RawMessage `json:"params"`
	Hash        json.RawMessage   `json:"hash"`
	Program     json.RawMessage   `json:"program"`
	Inverse     json.RawMessage   `json:"inverse"`
	Escaped     *bool             `json:"escaped"`
	Parts       []string          `json:"parts"`
	Data        bool              `json:"data"`
	Depth       int               `json:"depth"`
	Pairs       []json.RawMessage `json:"pairs"`
	Key         string            `json:"key"`
	Loc         *SourceLocation   `json:"loc"`
}

// Decode parses the JSON form of a Handlebars AST, as produced by
// `Handlebars.parse` in JavaScript. Node kinds without a Go counterpart
// (partials, decorators) become UnknownStatement / UnknownExpression.
func Decode(data []byte) (*Program, error) {
	p, err := decodeProgram(data)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotProgram
	}
	return p, nil
}

// DecodeWithSource is Decode plus attaching the template text for snippets.
func DecodeWithSource(data []byte, source string) (*Program, error) {
	p, err := Decode(data)
	if err != nil {
		return nil, err
	}
	p.Source = source
	return p, nil
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || string(t) == "null"
}

func decodeRaw(data []byte) (*rawNode, error) {
	var n rawNode
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("ast: %w", err)
	}
	return &n, nil
}

func decodeProgram(data []byte) (*Program, error) {
	if isNull(data) {
		return nil, nil
	}
	n, err := decodeRaw(data)
	if err != nil {
		return nil, err
	}
	if n.Type != "Program" {
		return nil, fmt.Errorf("%w (got %q)", ErrNotProgram, n.Type)
	}
	p := &Program{Body: make([]Statement, 0, len(n.Body)), BlockParams: n.BlockParams, Loc: n.Loc}
	for i, raw := range n.Body {
		st, err := decodeStatement(raw)
		if err != nil {
			return nil, fmt.Errorf("ast: body[%d]: %w", i, err)
		}
		p.Body = append(p.Body, st)
	}
	return p, nil
}

func decodeStatement(data []byte) (Statement, error) {
	n, err := decodeRaw(data)
	if err != nil {
		return nil, err
	}
	switch n.Type {
	case "ContentStatement":
		var v string
		if err := json.Unmarshal(n.Value, &v); err != nil {
			return nil, fmt.Errorf("content value: %w", err)
		}
		return &Content{Value: v, Loc: n.Loc}, nil
	case "CommentStatement":
		var v string
		if !isNull(n.Value) {
			if err := json.Unmarshal(n.Value, &v); err != nil {
				return nil, fmt.Errorf("comment value: %w", err)
			}
		}
		return &Comment{Value: v, Loc: n.Loc}, nil
	case "MustacheStatement":
		path, err := decodeExpression(n.Path)
		if err != nil {
			return nil, fmt.Errorf("mustache path: %w", err)
		}
		params, hash, err := decodeArgs(n)
		if err != nil {
			return nil, err
		}
		escaped := true
		if n.Escaped != nil {
			escaped = *n.Escaped
		}
		return &Mustache{Path: path, Params: params, Hash: hash, Escaped: escaped, Loc: n.Loc}, nil
	case "BlockStatement":
		pe, err := decodeExpression(n.Path)
		if err != nil {
			return nil, fmt.Errorf("block path: %w", err)
		}
		path, ok := pe.(*PathExpr)
		if !ok {
			return nil, errors.New("block path is not a PathExpression")
		}
		params, hash, err := decodeArgs(n)
		if err != nil {
			return nil, err
		}
		body, err := decodeProgram(n.Program)
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", path.Original, err)
		}
		if body == nil {
			body = NewProgram()
		}
		inverse, err := decodeProgram(n.Inverse)
		if err != nil {
			return nil, fmt.Errorf("block %s inverse: %w", path.Original, err)
		}
		return &Block{Path: path, Params: params, Hash: hash, Program: body, Inverse: inverse, Loc: n.Loc}, nil
	}
	return &UnknownStatement{Type: n.Type, Loc: n.Loc}, nil
}

func decodeArgs(n *rawNode) ([]Expression, *Hash, error) {
	params := make([]Expression, 0, len(n.Params))
	for i, raw := range n.Params {
		e, err := decodeExpression(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("params[%d]: %w", i, err)
		}
		params = append(params, e)
	}
	hash, err := decodeHash(n.Hash)
	if err != nil {
		return nil, nil, err
	}
	return params, hash, nil
}

func decodeHash(data []byte) (*Hash, error) {
	if isNull(data) {
		return nil, nil
	}
	n, err := decodeRaw(data)
	if err != nil {
		return nil, err
	}
	h := &Hash{Loc: n.Loc, Pairs: make([]HashPair, 0, len(n.Pairs))}
	for _, raw := range n.Pairs {
		pn, err := decodeRaw(raw)
		if err != nil {
			return nil, err
		}
		v, err := decodeExpression(pn.Value)
		if err != nil {
			return nil, fmt.Errorf("hash %s: %w", pn.Key, err)
		}
		h.Pairs = append(h.Pairs, HashPair{Key: pn.Key, Value: v, Loc: pn.Loc})
	}
	return h, nil
}

func decodeExpression(data []byte) (Expression, error) {
	if isNull(data) {
		return nil, errors.New("missing expression")
	}
	n, err := decodeRaw(data)
	if err != nil {
		return nil, err
	}
	switch n.Type {
	case "PathExpression":
		var original string
		_ = json.Unmarshal(n.Original, &original)
		parts := n.Parts
		if parts == nil {
			parts = []string{}
		}
		return &PathExpr{Original: original, Parts: parts, Data: n.Data, Depth: n.Depth, Loc: n.Loc}, nil
	case "StringLiteral":
		var v string
		if err := json.Unmarshal(n.Value, &v); err != nil {
			return nil, fmt.Errorf("string literal: %w", err)
		}
		return &StringLiteral{Value: v, Loc: n.Loc}, nil
	case "NumberLiteral":
		var v float64
		if err := json.Unmarshal(n.Value, &v); err != nil {
			return nil, fmt.Errorf("number literal: %w", err)
		}
		return &NumberLiteral{Value: v, Loc: n.Loc}, nil
	case "BooleanLiteral":
		var v bool
		if err := json.Unmarshal(n.Value, &v); err != nil {
			return nil, fmt.Errorf("boolean literal: %w", err)
		}
		return &BooleanLiteral{Value: v, Loc: n.Loc}, nil
	case "NullLiteral":
		return &NullLiteral{Loc: n.Loc}, nil
	case "UndefinedLiteral":
		return &UndefinedLiteral{Loc: n.Loc}, nil
	case "SubExpression":
		path, err := decodeExpression(n.Path)
		if err != nil {
			return nil, fmt.Errorf("sub-expression path: %w", err)
		}
		params, hash, err := decodeArgs(n)
		if err != nil {
			return nil, err
		}
		return &SubExpression{Path: path, Params: params, Hash: hash, Loc: n.Loc}, nil
	}
	return &UnknownExpression{Type: n.Type, Loc: n.Loc}, nil
}

// Encode renders p in the Handlebars JSON form accepted by Decode.
func Encode(p *Program) ([]byte, error) {
	if p == nil {
		return nil, errors.New("ast: nil program")
	}
	return json.Marshal(encodeProgram(p))
}

type object = map[string]any

func withLoc(o object, loc *SourceLocation) object {
	if loc != nil {
		o["loc"] = loc
	}
	return o
}

func encodeProgram(p *Program) any {
	if p == nil {
		return nil
	}
	body := make([]any, 0, len(p.Body))
	for _, st := range p.Body {
		body = append(body, encodeStatement(st))
	}
	o := object{"type": "Program", "body": body}
	if p.BlockParams != nil {
		o["blockParams"] = p.BlockParams
	}
	return withLoc(o, p.Loc)
}

func encodeStatement(st Statement) any {
	switch s := st.(type) {
	case *Content:
		return withLoc(object{"type": "ContentStatement", "value": s.Value, "original": s.Value}, s.Loc)
	case *Comment:
		return withLoc(object{"type": "CommentStatement", "value": s.Value}, s.Loc)
	case *Mustache:
		o := object{"type": "MustacheStatement", "path": encodeExpression(s.Path), "escaped": s.Escaped}
		encodeArgs(o, s.Params, s.Hash)
		return withLoc(o, s.Loc)
	case *Block:
		o := object{"type": "BlockStatement", "path": encodeExpression(s.Path), "program": encodeProgram(s.Program), "inverse": encodeProgram(s.Inverse)}
		encodeArgs(o, s.Params, s.Hash)
		return withLoc(o, s.Loc)
	case *UnknownStatement:
		return withLoc(object{"type": s.Type}, s.Loc)
	}
	return nil
}

func encodeArgs(o object, params []Expression, hash *Hash) {
	ps := make([]any, 0, len(params))
	for _, e := range params {
		ps = append(ps, encodeExpression(e))
	}
	o["params"] = ps
	if hash == nil {
		o["hash"] = nil
		return
	}
	pairs := make([]any, 0, len(hash.Pairs))
	for _, hp := range hash.Pairs {
		pairs = append(pairs, withLoc(object{"type": "HashPair", "key": hp.Key, "value": encodeExpression(hp.Value)}, hp.Loc))
	}
	o["hash"] = withLoc(object{"type": "Hash", "pairs": pairs}, hash.Loc)
}

func encodeExpression(e Expression) any {
	switch x := e.(type) {
	case *PathExpr:
		if x == nil {
			return nil
		}
		parts := x.Parts
		if parts == nil {
			parts = []string{}
		}
		return withLoc(object{"type": "PathExpression", "original": x.Original, "parts": parts, "data": x.Data, "depth": x.Depth}, x.Loc)
	case *StringLiteral:
		return withLoc(object{"type": "StringLiteral", "value": x.Value, "original": x.Value}, x.Loc)
	case *NumberLiteral:
		return withLoc(object{"type": "NumberLiteral", "value": x.Value, "original": x.Value}, x.Loc)
	case *BooleanLiteral:
		return withLoc(object{"type": "BooleanLiteral", "value": x.Value, "original": x.Value}, x.Loc)
	case *NullLiteral:
		return withLoc(object{"type": "NullLiteral", "value": nil, "original": nil}, x.Loc)
	case *UndefinedLiteral:
		return withLoc(object{"type": "UndefinedLiteral"}, x.Loc)
	case *SubExpression:
		o := object{"type": "SubExpression", "path": encodeExpression(x.Path)}
		encodeArgs(o, x.Params, x.Hash)
		return withLoc(o, x.Loc)
	case *UnknownExpression:
		return withLoc(object{"type": x.Type}, x.Loc)
	}
	return nil
}

// String renders a path expression the way it was written.
func (p *PathExpr) String() string {
	if p.Original != "" {
		return p.Original
	}
	prefix := strings.Repeat("../", p.Depth)
	if p.Data {
		prefix += "@"
	}
	if len(p.Parts) == 0 {
		return prefix + "this"
	}
	return prefix + strings.Join(p.Parts, ".")
}
