package indicator

import (
	"crypto/sha256"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aevon-lab/project-indica/internal/core/aggregation"
)

// Definition is the on-disk YAML shape of one indicator type. Definitions are
// loaded at startup and fingerprinted so operators can tell which revision is live.
type Definition struct {
	Name           string                 `yaml:"name"`
	SourceType     string                 `yaml:"source_type"`
	Domains        []string               `yaml:"domains"`
	Database       string                 `yaml:"database"`
	GroupBy        []GroupByDefinition    `yaml:"group_by"`
	DocumentFilter []PredicateDefinition  `yaml:"document_filter"`
	Calculators    []CalculatorDefinition `yaml:"calculators"`
	Fingerprint    string                 `yaml:"-"`
	Path           string                 `yaml:"-"`
}

type GroupByDefinition struct {
	Field string    `yaml:"field"`
	Path  string    `yaml:"path"` // defaults to field
	Type  GroupType `yaml:"type"`
}

// PredicateDefinition tests one document field. Exactly one condition is set.
type PredicateDefinition struct {
	Name      string        `yaml:"name"`
	Field     string        `yaml:"field"`
	Equals    interface{}   `yaml:"equals"`
	NotEquals interface{}   `yaml:"not_equals"`
	Exists    *bool         `yaml:"exists"`
	In        []interface{} `yaml:"in"`
}

type CalculatorDefinition struct {
	Slug     string                `yaml:"slug"`
	Extends  string                `yaml:"extends"`
	Window   string                `yaml:"window"`
	Filters  []PredicateDefinition `yaml:"filters"`
	Emitters []EmitterDefinition   `yaml:"emitters"`
}

// EmitterDefinition describes a declarative emitter. Each selects a list of items
// (the whole document when empty); Date, Value and GroupBy are paths inside each
// item. CountItems, when set, emits a single value: the length of that list.
type EmitterDefinition struct {
	Slug       string   `yaml:"slug"`
	Kind       string   `yaml:"kind"`
	Reduce     string   `yaml:"reduce"`
	Each       string   `yaml:"each"`
	Date       string   `yaml:"date"`
	Value      string   `yaml:"value"`
	GroupBy    []string `yaml:"group_by"`
	CountItems string   `yaml:"count_items"`
}

// LoadDefinitions reads every *.yaml / *.yml file in dir. A missing directory
// yields no definitions.
func LoadDefinitions(dir string) ([]Definition, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("indicator definition dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("indicator definition path %q is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading indicator definition dir: %w", err)
	}

	seen := map[string]string{}
	var defs []Definition
	for _, e := range entries {
		if e.IsDir() || (!strings.HasSuffix(e.Name(), ".yaml") && !strings.HasSuffix(e.Name(), ".yml")) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading definition file %s: %w", path, err)
		}
		var def Definition
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("parsing definition file %s: %w", path, err)
		}
		if def.Name == "" {
			continue
		}
		if prev, dup := seen[def.Name]; dup {
			return nil, fmt.Errorf("%w: indicator %q defined in both %s and %s", ErrInvalidDefinition, def.Name, prev, path)
		}
		seen[def.Name] = path
		def.Path = path
		def.Fingerprint = fmt.Sprintf("%x", sha256.Sum256(data))
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs, nil
}

// LoadTypes loads and builds every definition in dir.
func LoadTypes(dir string, opts ...TypeOption) ([]*Type, error) {
	defs, err := LoadDefinitions(dir)
	if err != nil {
		return nil, err
	}
	types := make([]*Type, 0, len(defs))
	for _, def := range defs {
		t, err := def.Build(opts...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", def.Path, err)
		}
		types = append(types, t)
	}
	return types, nil
}

// Build compiles the definition into a Type. Extra options are applied last.
func (d Definition) Build(extra ...TypeOption) (*Type, error) {
	if d.SourceType == "" {
		return nil, fmt.Errorf("%w: indicator %q: source_type must not be empty", ErrInvalidDefinition, d.Name)
	}
	opts := []TypeOption{WithSourceType(d.SourceType), WithDomains(d.Domains...)}
	if d.Database != "" {
		opts = append(opts, WithDatabase(d.Database))
	}
	for _, g := range d.GroupBy {
		path := g.Path
		if path == "" {
			path = g.Field
		}
		opts = append(opts, WithGroupBy(GroupByPath(g.Field, path)))
		if g.Type != "" {
			opts = append(opts, WithGroupByType(g.Field, g.Type))
		}
	}
	if len(d.DocumentFilter) > 0 {
		f, err := compilePredicates(d.DocumentFilter)
		if err != nil {
			return nil, fmt.Errorf("indicator %q: document_filter: %w", d.Name, err)
		}
		opts = append(opts, WithDocumentFilter(f))
	}

	built := map[string]*Calculator{}
	for _, cd := range d.Calculators {
		c, err := cd.build(built)
		if err != nil {
			return nil, fmt.Errorf("indicator %q: %w", d.Name, err)
		}
		built[cd.Slug] = c
		opts = append(opts, WithCalculator(c))
	}
	return NewType(d.Name, append(opts, extra...)...)
}

func (cd CalculatorDefinition) build(built map[string]*Calculator) (*Calculator, error) {
	var opts []CalculatorOption
	if cd.Extends != "" {
		parent, ok := built[cd.Extends]
		if !ok {
			return nil, fmt.Errorf("%w: calculator %q extends unknown calculator %q", ErrInvalidDefinition, cd.Slug, cd.Extends)
		}
		opts = append(opts, Extending(parent))
	}
	if cd.Window != "" {
		w, err := aggregation.ParseWindowSize(cd.Window)
		if err != nil {
			return nil, fmt.Errorf("%w: calculator %q: %v", ErrInvalidWindowConfiguration, cd.Slug, err)
		}
		opts = append(opts, WithWindow(w))
	}
	for i, pd := range cd.Filters {
		pred, err := pd.compile()
		if err != nil {
			return nil, fmt.Errorf("calculator %q: filter %d: %w", cd.Slug, i, err)
		}
		name := pd.Name
		if name == "" {
			name = fmt.Sprintf("filter_%d", i)
		}
		opts = append(opts, WithFilter(name, pred))
	}
	for _, ed := range cd.Emitters {
		def, fn, err := ed.compile()
		if err != nil {
			return nil, fmt.Errorf("calculator %q: %w", cd.Slug, err)
		}
		opts = append(opts, WithEmitter(ed.Slug, def, fn))
	}
	return NewCalculator(cd.Slug, opts...)
}

func compilePredicates(defs []PredicateDefinition) (Filter, error) {
	preds := make([]Filter, 0, len(defs))
	for i, pd := range defs {
		p, err := pd.compile()
		if err != nil {
			return nil, fmt.Errorf("predicate %d: %w", i, err)
		}
		preds = append(preds, FilterFunc(p))
	}
	return FilterFunc(func(v View) (bool, error) { return allPass(v, preds) }), nil
}

func (pd PredicateDefinition) compile() (func(View) (bool, error), error) {
	if pd.Field == "" {
		return nil, fmt.Errorf("%w: predicate field is required", ErrInvalidDefinition)
	}
	set := 0
	for _, isSet := range []bool{pd.Equals != nil, pd.NotEquals != nil, pd.Exists != nil, pd.In != nil} {
		if isSet {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("%w: predicate on %q needs exactly one of equals, not_equals, exists, in", ErrInvalidDefinition, pd.Field)
	}

	field := pd.Field
	switch {
	case pd.Exists != nil:
		want := *pd.Exists
		return func(v View) (bool, error) {
			_, ok := v.Get(field)
			return ok == want, nil
		}, nil
	case pd.Equals != nil:
		want := pd.Equals
		return func(v View) (bool, error) {
			got, ok := v.Get(field)
			return ok && scalarEqual(got, want), nil
		}, nil
	case pd.NotEquals != nil:
		want := pd.NotEquals
		return func(v View) (bool, error) {
			got, ok := v.Get(field)
			return !ok || !scalarEqual(got, want), nil
		}, nil
	default:
		want := pd.In
		return func(v View) (bool, error) {
			got, ok := v.Get(field)
			if !ok {
				return false, nil
			}
			for _, w := range want {
				if scalarEqual(got, w) {
					return true, nil
				}
			}
			return false, nil
		}, nil
	}
}

// scalarEqual compares decoded JSON and YAML scalars. Numbers compare by value
// regardless of their Go representation.
func scalarEqual(a, b interface{}) bool {
	da, errA := aggregation.ToDecimal(a)
	db, errB := aggregation.ToDecimal(b)
	if errA == nil && errB == nil && isNumber(a) && isNumber(b) {
		return da.Equal(db)
	}
	return reflect.DeepEqual(a, b)
}

func isNumber(v interface{}) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func (ed EmitterDefinition) compile() (EmitterDef, EmitFunc, error) {
	kind := Kind(ed.Kind)
	// An unquoted YAML "null" decodes to the empty string.
	if kind == "" {
		kind = KindNull
	}
	if kind != KindDate && kind != KindNull {
		return EmitterDef{}, nil, fmt.Errorf("%w: emitter %q has kind %q", ErrEmitterType, ed.Slug, ed.Kind)
	}
	reduce := ed.Reduce
	if reduce == "" {
		reduce = aggregation.OpCount
	}
	def := EmitterDef{Kind: kind, Reduce: reduce}

	if ed.CountItems != "" {
		return def, ed.countItems(), nil
	}
	return def, ed.perItem(), nil
}

func (ed EmitterDefinition) countItems() EmitFunc {
	return func(v View) iter.Seq[Raw] {
		return func(yield func(Raw) bool) {
			items := itemsAt(v.Data(), ed.CountItems)
			var at interface{}
			if ed.Date != "" {
				d, ok := v.Get(ed.Date)
				if !ok {
					yield(EmitInvalid(fmt.Sprintf("date field %q missing", ed.Date)))
					return
				}
				at = d
			}
			yield(EmitPair(at, len(items)))
		}
	}
}

func (ed EmitterDefinition) perItem() EmitFunc {
	return func(v View) iter.Seq[Raw] {
		return func(yield func(Raw) bool) {
			for _, item := range itemsAt(v.Data(), ed.Each) {
				out := Value{}
				if ed.Date != "" {
					d, ok := LookupPath(item, ed.Date)
					if !ok {
						yield(EmitInvalid(fmt.Sprintf("date field %q missing", ed.Date)))
						return
					}
					out.Date = d
				}
				if ed.Value != "" {
					val, ok := LookupPath(item, ed.Value)
					if !ok {
						yield(EmitInvalid(fmt.Sprintf("value field %q missing", ed.Value)))
						return
					}
					out.Value = val
				}
				if len(ed.GroupBy) > 0 {
					group := make([]interface{}, len(ed.GroupBy))
					for i, path := range ed.GroupBy {
						group[i], _ = LookupPath(item, path)
					}
					out.GroupBy = group
				}
				if !yield(EmitValue(out)) {
					return
				}
			}
		}
	}
}

// itemsAt returns the list at path, a single-element list for a scalar or object,
// and nothing when the path is missing. An empty path selects the whole body.
func itemsAt(body map[string]interface{}, path string) []interface{} {
	if path == "" {
		return []interface{}{body}
	}
	val, ok := LookupPath(body, path)
	if !ok {
		return nil
	}
	if list, isList := val.([]interface{}); isList {
		return list
	}
	return []interface{}{val}
}
