package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	typebars "github.com/atinseau/typebars-sub000"
	"github.com/atinseau/typebars-sub000/ast"
	"github.com/atinseau/typebars-sub000/helpers"
	js "github.com/atinseau/typebars-sub000/jsonschema"
)

// Exit codes
const (
	exitOK      = 0
	exitInvalid = 1
	exitUsage   = 2
	exitFailure = 3
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return exitUsage
	}
	switch args[0] {
	case "check":
		return checkCmd(args[1:], stdout, stderr)
	case "classify":
		return classifyCmd(args[1:], stdout, stderr)
	case "helpers":
		return helpersCmd(args[1:], stdout, stderr)
	}
	usage(stderr)
	return exitUsage
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "typebars CLI\n\nUsage:\n  typebars check -template ast.json -schema schema.json [-helpers manifest] [-id N=schema.json ...] [-source tpl.hbs] [-lang en|ja] [-json] [-v]\n  typebars classify -template ast.json\n  typebars helpers [-helpers manifest]\n\nNotes:\n  - Templates are Handlebars ASTs in JSON form (Handlebars.parse output).\n  - Schemas may be .json, .jsonc or .yaml; helper manifests may also be .toml.")
}

// idFlags collects repeated -id N=path flags.
type idFlags map[int]string

func (f idFlags) String() string {
	parts := make([]string, 0, len(f))
	for id, path := range f {
		parts = append(parts, strconv.Itoa(id)+"="+path)
	}
	return strings.Join(parts, ",")
}

func (f idFlags) Set(v string) error {
	n, path, ok := strings.Cut(v, "=")
	if !ok || path == "" {
		return fmt.Errorf("expected N=path, got %q", v)
	}
	id, err := strconv.Atoi(n)
	if err != nil || id < 0 {
		return fmt.Errorf("identifier must be a non-negative integer, got %q", n)
	}
	f[id] = path
	return nil
}

func checkCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var templatePath, schemaPath, helpersPath, sourcePath, lang string
	var asJSON, verbose bool
	ids := idFlags{}
	fs.StringVar(&templatePath, "template", "", "Handlebars AST in JSON form")
	fs.StringVar(&schemaPath, "schema", "", "input JSON Schema (.json, .jsonc, .yaml)")
	fs.StringVar(&helpersPath, "helpers", "", "helper manifest merged over the built-in helpers")
	fs.StringVar(&sourcePath, "source", "", "template text, for diagnostic snippets")
	fs.StringVar(&lang, "lang", "", "message language (en, ja)")
	fs.BoolVar(&asJSON, "json", false, "print the result as JSON")
	fs.BoolVar(&verbose, "v", false, "enable debug logs")
	fs.Var(ids, "id", "identifier schema as N=path (repeatable)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if templatePath == "" || schemaPath == "" {
		fs.Usage()
		return exitUsage
	}

	log := zap.NewNop()
	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(stderr, "creating logger: %v\n", err)
			return exitFailure
		}
		defer func() { _ = l.Sync() }()
		log = l
	}

	program, err := loadTemplate(templatePath, sourcePath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	input, err := js.LoadFile(schemaPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	var identifiers map[int]*js.Schema
	if len(ids) > 0 {
		identifiers = make(map[int]*js.Schema, len(ids))
		for id, path := range ids {
			s, err := js.LoadFile(path)
			if err != nil {
				fmt.Fprintln(stderr, err)
				return exitFailure
			}
			identifiers[id] = s
		}
	}
	table, err := helperTable(helpersPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}

	c, err := typebars.NewChecker(typebars.CheckerOptions{Helpers: table, CacheSize: -1, Logger: log, Language: lang})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	res, err := c.Check(program, input, identifiers)
	if err != nil {
		if typebars.IsSchemaError(err) {
			fmt.Fprintf(stderr, "schema error: %v\n", err)
		} else {
			fmt.Fprintln(stderr, err)
		}
		return exitFailure
	}

	if asJSON {
		b, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitFailure
		}
		fmt.Fprintln(stdout, string(b))
	} else {
		for _, d := range res.Diagnostics {
			fmt.Fprintln(stdout, d.String())
		}
		out, err := json.Marshal(res.OutputSchema)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitFailure
		}
		fmt.Fprintf(stdout, "output: %s\n", out)
	}
	if !res.Valid {
		return exitInvalid
	}
	return exitOK
}

func classifyCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("classify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var templatePath string
	fs.StringVar(&templatePath, "template", "", "Handlebars AST in JSON form")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if templatePath == "" {
		fs.Usage()
		return exitUsage
	}
	program, err := loadTemplate(templatePath, "")
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	fmt.Fprintln(stdout, typebars.Classify(program))
	return exitOK
}

func helpersCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("helpers", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var helpersPath string
	fs.StringVar(&helpersPath, "helpers", "", "helper manifest merged over the built-in helpers")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	table, err := helperTable(helpersPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	b, err := json.MarshalIndent(helpers.Manifest{Helpers: table.Contracts()}, "", "  ")
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	fmt.Fprintln(stdout, string(b))
	return exitOK
}

func loadTemplate(path, sourcePath string) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var source string
	if sourcePath != "" {
		src, err := os.ReadFile(sourcePath)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", sourcePath, err)
		}
		source = string(src)
	}
	program, err := ast.DecodeWithSource(data, source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return program, nil
}

// helperTable returns the built-in helpers, overridden by the manifest at
// path when one is given.
func helperTable(path string) (*helpers.Table, error) {
	base := helpers.Builtins()
	if path == "" {
		return base, nil
	}
	loaded, err := helpers.LoadFile(path)
	if err != nil {
		return nil, err
	}
	merged, err := base.With(loaded.Contracts()...)
	if err != nil {
		return nil, fmt.Errorf("merging %s: %w", path, err)
	}
	return merged, nil
}
