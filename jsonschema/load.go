package jsonschema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

// Format names a schema document encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONC Format = "jsonc"
	FormatYAML  Format = "yaml"
)

// FormatFromPath infers the document format from a file extension.
// Unknown extensions are treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".jsonc":
		return FormatJSONC
	default:
		return FormatJSON
	}
}

// ParseJSONC strips // and /* */ comments and trailing commas, then parses
// the result as JSON. Duplicate keys are rejected.
func ParseJSONC(data []byte) (*Schema, error) {
	return ParseStrict(jsonc.ToJSON(data))
}

// ParseFormat decodes data in the given format. All formats reject
// duplicate object keys.
func ParseFormat(data []byte, f Format) (*Schema, error) {
	switch f {
	case FormatYAML:
		return ParseYAML(data)
	case FormatJSONC:
		return ParseJSONC(data)
	case FormatJSON, "":
		return ParseStrict(data)
	}
	return nil, fmt.Errorf("jsonschema: unsupported format %q", f)
}

// LoadFile reads a schema document from disk; the format follows the file
// extension.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	s, err := ParseFormat(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
