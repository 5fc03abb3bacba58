package indicator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/aevon-lab/project-indica/internal/core/aggregation"
)

// maxKeyQueries bounds concurrent index queries in AggregateAcrossKeys.
const maxKeyQueries = 8

// Calculator groups emitters that share a window and a set of filters.
type Calculator struct {
	slug      string
	window    time.Duration
	hasWindow bool
	emitters  []Emitter
	filters   []Predicate
	docFilter Filter
	owner     *Type
}

// CalculatorOption configures a Calculator.
type CalculatorOption func(*Calculator) error

// WithWindow sets the lookback window. Zero and negative windows are allowed.
func WithWindow(d time.Duration) CalculatorOption {
	return func(c *Calculator) error {
		c.window = d
		c.hasWindow = true
		return nil
	}
}

// WithEmitter declares an emitter. A later declaration with the same slug replaces the earlier one.
func WithEmitter(slug string, def EmitterDef, fn EmitFunc) CalculatorOption {
	return func(c *Calculator) error {
		if slug == "" {
			return fmt.Errorf("%w: emitter slug is required", ErrInvalidDefinition)
		}
		if def.Kind != KindDate && def.Kind != KindNull {
			return fmt.Errorf("%w: emitter %s has kind %q", ErrEmitterType, slug, def.Kind)
		}
		if !aggregation.ValidOperator(def.Reduce) {
			return fmt.Errorf("%w: emitter %s: unknown reduce operator %q", ErrInvalidDefinition, slug, def.Reduce)
		}
		e := Emitter{Slug: slug, Def: def, fn: fn}
		for i := range c.emitters {
			if c.emitters[i].Slug == slug {
				c.emitters[i] = e
				return nil
			}
		}
		c.emitters = append(c.emitters, e)
		return nil
	}
}

// WithFilter declares a named predicate. Every predicate must hold for the
// calculator's emitters to run.
func WithFilter(name string, fn func(View) (bool, error)) CalculatorOption {
	return func(c *Calculator) error {
		for i := range c.filters {
			if c.filters[i].Name == name {
				c.filters[i].Fn = fn
				return nil
			}
		}
		c.filters = append(c.filters, Predicate{Name: name, Fn: fn})
		return nil
	}
}

// WithCalculatorFilter sets the calculator's own document filter, evaluated
// before the named predicates.
func WithCalculatorFilter(f Filter) CalculatorOption {
	return func(c *Calculator) error {
		c.docFilter = f
		return nil
	}
}

// Extending inherits the parent's window, emitters and filters. Options applied
// afterwards override them by slug or name.
func Extending(parent *Calculator) CalculatorOption {
	return func(c *Calculator) error {
		if parent == nil {
			return fmt.Errorf("%w: nil parent calculator", ErrInvalidDefinition)
		}
		if parent.hasWindow && !c.hasWindow {
			c.window, c.hasWindow = parent.window, true
		}
		for _, e := range parent.emitters {
			if err := WithEmitter(e.Slug, e.Def, e.fn)(c); err != nil {
				return err
			}
		}
		for _, p := range parent.filters {
			if err := WithFilter(p.Name, p.Fn)(c); err != nil {
				return err
			}
		}
		if c.docFilter == nil {
			c.docFilter = parent.docFilter
		}
		return nil
	}
}

// NewCalculator builds a calculator. A calculator with any date emitter must have a window.
func NewCalculator(slug string, opts ...CalculatorOption) (*Calculator, error) {
	if slug == "" {
		return nil, fmt.Errorf("%w: calculator slug is required", ErrInvalidDefinition)
	}
	c := &Calculator{slug: slug}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("calculator %s: %w", slug, err)
		}
	}
	if !c.hasWindow {
		for _, e := range c.emitters {
			if e.Def.Kind == KindDate {
				return nil, fmt.Errorf("%w: calculator %s has date emitter %s but no window",
					ErrInvalidWindowConfiguration, slug, e.Slug)
			}
		}
	}
	sort.Slice(c.emitters, func(i, j int) bool { return c.emitters[i].Slug < c.emitters[j].Slug })
	sort.Slice(c.filters, func(i, j int) bool { return c.filters[i].Name < c.filters[j].Name })
	return c, nil
}

func (c *Calculator) Slug() string { return c.slug }

// Window returns the lookback window and whether one is configured.
func (c *Calculator) Window() (time.Duration, bool) { return c.window, c.hasWindow }

// Emitters returns the emitters sorted by slug.
func (c *Calculator) Emitters() []Emitter { return slices.Clone(c.emitters) }

func (c *Calculator) Emitter(slug string) (Emitter, bool) {
	for _, e := range c.emitters {
		if e.Slug == slug {
			return e, true
		}
	}
	return Emitter{}, false
}

func (c *Calculator) bind(owner *Type) *Calculator {
	clone := *c
	clone.emitters = slices.Clone(c.emitters)
	clone.filters = slices.Clone(c.filters)
	clone.owner = owner
	return &clone
}

// PassesFilter reports whether v satisfies the calculator filter and every named predicate.
func (c *Calculator) PassesFilter(v View) (bool, error) {
	if c.docFilter != nil {
		ok, err := c.docFilter.Filter(v)
		if err != nil || !ok {
			return false, err
		}
	}
	for _, p := range c.filters {
		ok, err := p.Fn(v)
		if err != nil {
			return false, fmt.Errorf("filter %s: %w", p.Name, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Calculate runs every emitter against v. A filtered-out document yields an empty
// slice for every emitter.
func (c *Calculator) Calculate(v View) (map[string][]EmittedValue, error) {
	pass, err := c.PassesFilter(v)
	if err != nil {
		return nil, fmt.Errorf("calculator %s: %w", c.slug, err)
	}

	out := make(map[string][]EmittedValue, len(c.emitters))
	for _, e := range c.emitters {
		values := []EmittedValue{}
		if pass {
			for ev, err := range e.Values(v) {
				if err != nil {
					var emitErr *EmitError
					if errors.As(err, &emitErr) {
						emitErr.Calculator = c.slug
					}
					return nil, err
				}
				values = append(values, ev)
			}
		}
		out[e.Slug] = values
	}
	return out, nil
}

// QueryWindow queries every emitter of the calculator for one group key. Date
// emitters cover [today - window, today]; null emitters cover undated values.
// With reduce set each emitter yields its reduce operator's value, otherwise the
// source ids of the matched documents.
func (c *Calculator) QueryWindow(ctx context.Context, idx Index, key []interface{}, reduce bool) (Result, error) {
	if c.owner == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrUnboundCalculator, c.slug)
	}
	res := newResult(reduce)
	for _, e := range c.emitters {
		q := RangeQuery{
			IndicatorType: c.owner.name,
			Group:         key,
			Calculator:    c.slug,
			Emitter:       e.Slug,
		}
		switch e.Def.Kind {
		case KindDate:
			end := c.owner.today()
			start := end.AddDays(-aggregation.WindowDays(c.window))
			q.Start, q.End = start.String(), end.String()
			q.Descending = start.After(end)
		case KindNull:
			q.Null = true
		default:
			return Result{}, fmt.Errorf("%w: %s.%s has kind %q", ErrEmitterType, c.slug, e.Slug, e.Def.Kind)
		}

		if reduce {
			stats, err := idx.Reduce(ctx, q)
			if err != nil {
				return Result{}, fmt.Errorf("reduce %s.%s: %w", c.slug, e.Slug, err)
			}
			res.Values[e.Slug] = stats.Value(e.Def.Reduce)
			continue
		}

		ids, err := idx.IDs(ctx, q)
		if err != nil {
			return Result{}, fmt.Errorf("ids %s.%s: %w", c.slug, e.Slug, err)
		}
		sourceIDs := make([]string, 0, len(ids))
		for _, id := range ids {
			sourceID, err := c.owner.SourceID(id)
			if err != nil {
				return Result{}, err
			}
			sourceIDs = append(sourceIDs, sourceID)
		}
		res.IDs[e.Slug] = sourceIDs
	}
	return res, nil
}

// AggregateAcrossKeys runs QueryWindow for every key and merges the results:
// values are summed, ids are unioned and sorted.
func (c *Calculator) AggregateAcrossKeys(ctx context.Context, idx Index, keys [][]interface{}, reduce bool) (Result, error) {
	results := make([]Result, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxKeyQueries)
	for i, key := range keys {
		g.Go(func() error {
			r, err := c.QueryWindow(gctx, idx, key, reduce)
			if err != nil {
				return fmt.Errorf("key %v: %w", key, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	merged := newResult(reduce)
	if reduce {
		for _, e := range c.emitters {
			total := decimal.Zero
			for _, r := range results {
				total = total.Add(r.Values[e.Slug])
			}
			merged.Values[e.Slug] = total
		}
		return merged, nil
	}

	for _, e := range c.emitters {
		seen := map[string]struct{}{}
		for _, r := range results {
			for _, id := range r.IDs[e.Slug] {
				seen[id] = struct{}{}
			}
		}
		ids := make([]string, 0, len(seen))
		for id := range seen {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		merged.IDs[e.Slug] = ids
	}
	return merged, nil
}

func stripPrefix(id, prefix string) (string, bool) {
	if !strings.HasPrefix(id, prefix) {
		return "", false
	}
	return id[len(prefix):], true
}
