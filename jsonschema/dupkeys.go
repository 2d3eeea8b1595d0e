package jsonschema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// DuplicateJSONKeyError reports an object key that appears twice in a JSON
// document. Path is the JSON Pointer of the enclosing object.
type DuplicateJSONKeyError struct {
	Key  string
	Path string
}

func (e *DuplicateJSONKeyError) Error() string {
	return fmt.Sprintf("duplicate JSON key %q in %s", e.Key, e.Path)
}

type dupFrame struct {
	object       bool
	keys         map[string]struct{}
	expectingKey bool
	// segment is the pointer segment of the value currently being read.
	segment string
	index   int
}

// CheckDuplicateKeys scans a JSON document and returns a
// *DuplicateJSONKeyError for the first object key that repeats. Plain
// decoding keeps the last value silently, which hides schema mistakes.
func CheckDuplicateKeys(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var stack []*dupFrame

	pointer := func() string {
		if len(stack) == 0 {
			return "/"
		}
		var b strings.Builder
		for _, f := range stack[:len(stack)-1] {
			b.WriteString("/")
			b.WriteString(f.segment)
		}
		if b.Len() == 0 {
			return "/"
		}
		return b.String()
	}
	// valueDone marks the end of a value inside the top container.
	valueDone := func() {
		if len(stack) == 0 {
			return
		}
		top := stack[len(stack)-1]
		if top.object {
			top.expectingKey = true
			return
		}
		top.index++
		top.segment = strconv.Itoa(top.index)
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("jsonschema: %w", err)
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{':
				stack = append(stack, &dupFrame{object: true, keys: make(map[string]struct{}), expectingKey: true})
			case '[':
				stack = append(stack, &dupFrame{segment: "0"})
			case '}', ']':
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
				valueDone()
			}
		case string:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.object && top.expectingKey {
					if _, dup := top.keys[v]; dup {
						return &DuplicateJSONKeyError{Key: v, Path: pointer()}
					}
					top.keys[v] = struct{}{}
					top.expectingKey = false
					top.segment = strings.ReplaceAll(strings.ReplaceAll(v, "~", "~0"), "/", "~1")
					continue
				}
			}
			valueDone()
		default:
			valueDone()
		}
	}
}

// ParseStrict is Parse that first rejects duplicate object keys.
func ParseStrict(data []byte) (*Schema, error) {
	if err := CheckDuplicateKeys(data); err != nil {
		return nil, err
	}
	return Parse(data)
}
