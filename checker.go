package typebars

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/atinseau/typebars-sub000/ast"
	"github.com/atinseau/typebars-sub000/helpers"
	"github.com/atinseau/typebars-sub000/i18n"
	js "github.com/atinseau/typebars-sub000/jsonschema"
)

// DefaultCacheSize is the result cache capacity used when
// CheckerOptions.CacheSize is zero.
const DefaultCacheSize = 256

// CheckerOptions configures NewChecker.
type CheckerOptions struct {
	// Helpers is the helper table every check uses. nil selects
	// helpers.Builtins().
	Helpers *helpers.Table
	// CacheSize bounds the result cache. 0 selects DefaultCacheSize and a
	// negative value disables caching.
	CacheSize int
	// Registerer receives the checker metrics. nil leaves them unregistered.
	Registerer prometheus.Registerer
	Logger     *zap.Logger
	// Language selects the message catalog ("en", "ja"). Empty captures
	// i18n.Current() at construction.
	Language string
}

// Checker is a long-lived analyzer bound to one helper table and message
// language. Results are cached by template and schema content. A Checker is
// safe for concurrent use.
type Checker struct {
	helpers *helpers.Table
	tr      i18n.Translator
	log     *zap.Logger
	cache   *lru.ARCCache
	metrics *checkerMetrics
}

// NewChecker builds a Checker from o.
func NewChecker(o CheckerOptions) (*Checker, error) {
	c := &Checker{
		helpers: o.Helpers,
		log:     o.Logger,
		metrics: newCheckerMetrics(o.Registerer),
	}
	if c.helpers == nil {
		c.helpers = helpers.Builtins()
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if o.Language != "" {
		c.tr = i18n.New(o.Language)
	} else {
		c.tr = i18n.Current()
	}

	size := o.CacheSize
	if size == 0 {
		size = DefaultCacheSize
	}
	if size > 0 {
		cache, err := lru.NewARC(size)
		if err != nil {
			return nil, fmt.Errorf("typebars: creating result cache: %w", err)
		}
		c.cache = cache
	}
	return c, nil
}

// Helpers returns the helper table bound to c.
func (c *Checker) Helpers() *helpers.Table { return c.helpers }

// Check analyzes program against input with the checker's helpers. It has
// the same contract as Analyze. Schema errors are never cached.
//
// Cached results share OutputSchema with earlier callers; treat it as
// read-only.
func (c *Checker) Check(program *ast.Program, input *js.Schema, identifiers map[int]*js.Schema) (Result, error) {
	if program == nil {
		program = ast.NewProgram()
	}
	key, cacheable := c.key(program, input, identifiers)
	if cacheable {
		if v, ok := c.cache.Get(key); ok {
			c.metrics.cacheHits.Inc()
			c.log.Debug("check cache hit", zap.Uint64("key", key))
			res := v.(Result)
			res.Diagnostics = res.Diagnostics.Clone()
			c.metrics.observe(res)
			return res, nil
		}
		c.metrics.cacheMisses.Inc()
	}

	res, err := Analyze(program, input, AnalyzeOpt{
		Identifiers: identifiers,
		Helpers:     c.helpers,
		Logger:      c.log,
		Translator:  c.tr,
	})
	if err != nil {
		c.metrics.analyses.WithLabelValues(resultSchemaError).Inc()
		c.log.Warn("schema cannot be analyzed", zap.Error(err))
		return Result{}, err
	}
	c.metrics.observe(res)
	if cacheable {
		stored := res
		stored.Diagnostics = res.Diagnostics.Clone()
		c.cache.Add(key, stored)
	}
	return res, nil
}

// CheckJSON is Check for wire inputs, like AnalyzeJSON.
func (c *Checker) CheckJSON(astJSON, schemaJSON []byte) (Result, error) {
	program, err := ast.Decode(astJSON)
	if err != nil {
		return Result{}, fmt.Errorf("typebars: decoding template: %w", err)
	}
	input, err := js.ParseStrict(schemaJSON)
	if err != nil {
		return Result{}, fmt.Errorf("typebars: decoding schema: %w", err)
	}
	return c.Check(program, input, nil)
}

// Purge drops every cached result.
func (c *Checker) Purge() {
	if c.cache != nil {
		c.cache.Purge()
	}
}

// key hashes everything a result depends on: the template tree and text,
// the input schema and the identifier schemas. The helper table and
// language are fixed per Checker.
func (c *Checker) key(program *ast.Program, input *js.Schema, identifiers map[int]*js.Schema) (uint64, bool) {
	if c.cache == nil {
		return 0, false
	}
	wire, err := ast.Encode(program)
	if err != nil {
		c.log.Debug("template not cacheable", zap.Error(err))
		return 0, false
	}
	d := xxhash.New()
	var buf [8]byte
	sum := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = d.Write(buf[:])
	}
	_, _ = d.Write(wire)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(program.Source)
	_, _ = d.WriteString("\x00")
	sum(js.Fingerprint(input))

	if identifiers == nil {
		_, _ = d.WriteString("-")
		return d.Sum64(), true
	}
	ids := make([]int, 0, len(identifiers))
	for id := range identifiers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	_, _ = d.WriteString("+")
	for _, id := range ids {
		_, _ = d.WriteString(strconv.Itoa(id) + "=")
		sum(js.Fingerprint(identifiers[id]))
	}
	return d.Sum64(), true
}
