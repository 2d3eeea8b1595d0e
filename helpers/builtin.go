package helpers

import js "github.com/atinseau/typebars-sub000/jsonschema"

func binary(name, desc string, operand, result *js.Schema) Contract {
	return Contract{
		Name:        name,
		Description: desc,
		Params: []Param{
			{Name: "a", Schema: operand},
			{Name: "b", Schema: operand},
		},
		Returns: result,
	}
}

// Builtins returns the contracts of the helpers shipped with typebars
// renderers. Each call returns a fresh table.
func Builtins() *Table {
	return MustTable(
		binary("add", "a + b", js.Number(), js.Number()),
		binary("subtract", "a - b", js.Number(), js.Number()),
		binary("multiply", "a * b", js.Number(), js.Number()),
		binary("divide", "a / b", js.Number(), js.Number()),
		binary("lt", "a < b", js.Number(), js.Boolean()),
		binary("gt", "a > b", js.Number(), js.Boolean()),
		binary("eq", "a equals b", nil, js.Boolean()),
		binary("ne", "a differs from b", nil, js.Boolean()),
		binary("and", "both operands are truthy", nil, js.Boolean()),
		binary("or", "either operand is truthy", nil, js.Boolean()),
		Contract{
			Name:        "not",
			Description: "logical negation",
			Params:      []Param{{Name: "value"}},
			Returns:     js.Boolean(),
		},
		Contract{
			Name:        "uppercase",
			Description: "upper-cases a string",
			Params:      []Param{{Name: "value", Schema: js.String()}},
			Returns:     js.String(),
		},
		Contract{
			Name:        "lowercase",
			Description: "lower-cases a string",
			Params:      []Param{{Name: "value", Schema: js.String()}},
			Returns:     js.String(),
		},
		Contract{
			Name:        "concat",
			Description: "joins the string form of its arguments",
			Params:      []Param{{Name: "a"}, {Name: "b", Optional: true}},
			Returns:     js.String(),
		},
		Contract{
			Name:        "default",
			Description: "value, or fallback when value is empty",
			Params:      []Param{{Name: "value"}, {Name: "fallback"}},
			Returns:     js.Any(),
		},
	)
}
