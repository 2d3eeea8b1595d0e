package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"

	js "github.com/atinseau/typebars-sub000/jsonschema"
)

// Format names a helper manifest encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONC Format = "jsonc"
	FormatYAML  Format = "yaml"
	FormatTOML  Format = "toml"
)

// FormatFromPath infers the manifest format from a file extension.
// Unknown extensions are treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	case ".jsonc":
		return FormatJSONC
	default:
		return FormatJSON
	}
}

// Manifest is the document form of a helper table:
//
//	{"helpers": [{"name": "add", "params": [{"name": "a", "schema": {"type": "number"}}], "returns": {"type": "number"}}]}
type Manifest struct {
	Helpers []Contract `json:"helpers"`
}

// Load decodes a manifest in the given format and builds its table.
func Load(data []byte, f Format) (*Table, error) {
	raw, err := toJSON(data, f)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("helpers: %w", err)
	}
	return NewTable(m.Helpers...)
}

// LoadFile reads a manifest from disk; the format follows the extension.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	t, err := Load(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func toJSON(data []byte, f Format) ([]byte, error) {
	switch f {
	case FormatJSON, "":
		return data, nil
	case FormatJSONC:
		return jsonc.ToJSON(data), nil
	case FormatYAML:
		out, err := js.YAMLToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("helpers: %w", err)
		}
		return out, nil
	case FormatTOML:
		var doc map[string]any
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("helpers: %w", err)
		}
		out, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("helpers: %w", err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("helpers: unsupported format %q", f)
}
