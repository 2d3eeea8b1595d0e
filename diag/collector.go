package diag

import (
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/atinseau/typebars-sub000/ast"
	"github.com/atinseau/typebars-sub000/i18n"
)

// Collector accumulates diagnostics in visitation order. It is not safe for
// concurrent use; each analysis owns one.
type Collector struct {
	source string
	tr     i18n.Translator
	list   List
}

// NewCollector returns a Collector that extracts snippets from source and
// renders messages with tr. A nil tr uses the package-level i18n translator.
func NewCollector(source string, tr i18n.Translator) *Collector {
	if tr == nil {
		tr = i18n.Current()
	}
	return &Collector{source: source, tr: tr}
}

// Report appends a diagnostic for code at loc. details may be nil. data
// holds extra message values (such as "form") that are not part of Details.
func (c *Collector) Report(code Code, loc *ast.SourceLocation, details *Details, data map[string]string) {
	msgData := messageData(details, data)
	d := Diagnostic{
		Severity: code.Severity(),
		Code:     code,
		Message:  c.tr.Message(string(code), msgData),
		Details:  details,
	}
	if loc != nil {
		l := *loc
		d.Loc = &l
		d.Source = Snippet(c.source, loc)
	}
	c.list = append(c.list, d)
}

// List returns the diagnostics collected so far.
func (c *Collector) List() List { return c.list }

// Len returns the number of diagnostics collected so far.
func (c *Collector) Len() int { return len(c.list) }

// HasErrors reports whether an error-severity diagnostic was collected.
func (c *Collector) HasErrors() bool { return c.list.HasErrors() }

func messageData(d *Details, extra map[string]string) map[string]string {
	out := make(map[string]string, len(extra)+7)
	if d != nil {
		put := func(k, v string) {
			if v != "" {
				out[k] = v
			}
		}
		put("path", d.Path)
		put("helper", d.HelperName)
		put("param", d.Param)
		put("expected", d.Expected)
		put("actual", d.Actual)
		put("available", strings.Join(d.AvailableProperties, ", "))
		if d.Identifier != nil {
			out["identifier"] = strconv.Itoa(*d.Identifier)
		}
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// Snippet returns the text of source covered by loc. Lines are 1-based and
// columns 0-based. A single-line location yields the exact span; a
// multi-line location yields its whole lines, trimmed. Out-of-range
// locations yield "".
func Snippet(source string, loc *ast.SourceLocation) string {
	if source == "" || loc == nil || loc.Start.Line < 1 || loc.End.Line < loc.Start.Line {
		return ""
	}
	lines := strings.Split(source, "\n")
	if loc.Start.Line > len(lines) {
		return ""
	}
	end := min(loc.End.Line, len(lines))
	if loc.Start.Line == end {
		line := lines[end-1]
		from := offset(line, loc.Start.Column)
		to := len(line)
		if loc.End.Line == loc.Start.Line {
			to = max(from, offset(line, loc.End.Column))
		}
		return strings.TrimSpace(line[from:to])
	}
	return strings.TrimSpace(strings.Join(lines[loc.Start.Line-1:end], "\n"))
}

// offset converts a column, counted in UTF-16 code units as Handlebars
// reports them, to a byte offset in line. The result is always on a rune
// boundary and at most len(line).
func offset(line string, col int) int {
	units := 0
	for i, r := range line {
		if units >= col {
			return i
		}
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		units += n
	}
	return len(line)
}
