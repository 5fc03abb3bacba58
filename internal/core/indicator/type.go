package indicator

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// DefaultDatabase is the logical database an indicator reports into when none is set.
const DefaultDatabase = "indicators"

// GroupType is the declared type of a group-by attribute.
type GroupType string

const (
	GroupTypeInteger GroupType = "integer"
	GroupTypeString  GroupType = "string"
	GroupTypeDate    GroupType = "date"
)

func (t GroupType) valid() bool {
	switch t {
	case GroupTypeInteger, GroupTypeString, GroupTypeDate:
		return true
	}
	return false
}

// GroupBy names one dimension of an indicator and how to read it from a source document.
type GroupBy struct {
	Attribute string
	Getter    func(View) (interface{}, error)
}

// GroupByField reads the group value from the document field of the same name.
func GroupByField(attribute string) GroupBy {
	return GroupByPath(attribute, attribute)
}

// GroupByPath reads the group value from a dotted path.
func GroupByPath(attribute, path string) GroupBy {
	return GroupBy{
		Attribute: attribute,
		Getter: func(v View) (interface{}, error) {
			val, ok := v.Lookup(path)
			if !ok {
				return nil, fmt.Errorf("%w: group_by %s: field %q missing", ErrInvalidGroupValue, attribute, path)
			}
			return val, nil
		},
	}
}

// Type is an indicator type: a set of calculators over one source document type,
// grouped by a fixed list of attributes.
type Type struct {
	name        string
	sourceType  string
	database    string
	domains     []string
	groupBy     []GroupBy
	groupTypes  map[string]GroupType
	docFilter   Filter
	calculators []*Calculator
	now         func() time.Time
}

// TypeOption configures a Type.
type TypeOption func(*Type) error

// WithSourceType sets the source doc_type the indicator consumes.
func WithSourceType(docType string) TypeOption {
	return func(t *Type) error {
		t.sourceType = docType
		return nil
	}
}

func WithDomains(domains ...string) TypeOption {
	return func(t *Type) error {
		t.domains = append(t.domains, domains...)
		return nil
	}
}

func WithDatabase(name string) TypeOption {
	return func(t *Type) error {
		t.database = name
		return nil
	}
}

// WithGroupBy appends group-by dimensions in order.
func WithGroupBy(groups ...GroupBy) TypeOption {
	return func(t *Type) error {
		for _, g := range groups {
			if g.Attribute == "" || g.Getter == nil {
				return fmt.Errorf("%w: group_by needs an attribute and a getter", ErrInvalidDefinition)
			}
			for _, existing := range t.groupBy {
				if existing.Attribute == g.Attribute {
					return fmt.Errorf("%w: duplicate group_by %q", ErrInvalidDefinition, g.Attribute)
				}
			}
			t.groupBy = append(t.groupBy, g)
		}
		return nil
	}
}

// WithGroupByType declares the type of a group-by attribute. Undeclared attributes are strings.
func WithGroupByType(attribute string, gt GroupType) TypeOption {
	return func(t *Type) error {
		if !gt.valid() {
			return fmt.Errorf("%w: %s has type %q", ErrInvalidGroupByType, attribute, gt)
		}
		t.groupTypes[attribute] = gt
		return nil
	}
}

// WithDocumentFilter restricts which source documents produce an indicator document.
func WithDocumentFilter(f Filter) TypeOption {
	return func(t *Type) error {
		t.docFilter = f
		return nil
	}
}

// WithCalculator registers a calculator. Calculators are evaluated in registration order.
func WithCalculator(c *Calculator) TypeOption {
	return func(t *Type) error {
		if c == nil {
			return fmt.Errorf("%w: nil calculator", ErrInvalidDefinition)
		}
		for _, existing := range t.calculators {
			if existing.slug == c.slug {
				return fmt.Errorf("%w: duplicate calculator %q", ErrInvalidDefinition, c.slug)
			}
		}
		t.calculators = append(t.calculators, c.bind(t))
		return nil
	}
}

// WithClock overrides the clock used to anchor query windows.
func WithClock(now func() time.Time) TypeOption {
	return func(t *Type) error {
		t.now = now
		return nil
	}
}

// NewType builds an indicator type.
func NewType(name string, opts ...TypeOption) (*Type, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: indicator name is required", ErrInvalidDefinition)
	}
	t := &Type{
		name:       name,
		database:   DefaultDatabase,
		groupTypes: map[string]GroupType{},
		now:        time.Now,
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, fmt.Errorf("indicator %s: %w", name, err)
		}
	}
	for attr := range t.groupTypes {
		if !slices.Contains(t.GroupNames(), attr) {
			return nil, fmt.Errorf("indicator %s: %w: type declared for unknown attribute %q",
				name, ErrInvalidGroupByType, attr)
		}
	}
	return t, nil
}

func (t *Type) Name() string       { return t.name }
func (t *Type) SourceType() string { return t.sourceType }
func (t *Type) Database() string   { return t.database }
func (t *Type) Domains() []string  { return slices.Clone(t.domains) }

// GroupNames returns the group-by attribute names in declaration order.
func (t *Type) GroupNames() []string {
	names := make([]string, len(t.groupBy))
	for i, g := range t.groupBy {
		names[i] = g.Attribute
	}
	return names
}

// GroupTypeMap returns the type of every group-by attribute, defaulting to string.
func (t *Type) GroupTypeMap() map[string]GroupType {
	out := make(map[string]GroupType, len(t.groupBy))
	for _, g := range t.groupBy {
		gt, ok := t.groupTypes[g.Attribute]
		if !ok {
			gt = GroupTypeString
		}
		out[g.Attribute] = gt
	}
	return out
}

// Calculators returns the registered calculators in registration order.
func (t *Type) Calculators() []*Calculator { return slices.Clone(t.calculators) }

func (t *Type) Calculator(slug string) (*Calculator, error) {
	for _, c := range t.calculators {
		if c.slug == slug {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrUnknownCalculator, t.name, slug)
}

func (t *Type) HasCalculator(slug string) bool {
	_, err := t.Calculator(slug)
	return err == nil
}

// DocumentID returns the indicator document id for a source document id.
func (t *Type) DocumentID(sourceID string) string {
	return t.name + "-" + sourceID
}

// SourceID reverses DocumentID.
func (t *Type) SourceID(documentID string) (string, error) {
	id, ok := stripPrefix(documentID, t.name+"-")
	if !ok {
		return "", fmt.Errorf("%w: %q is not a %s document", ErrCorruptIdentifier, documentID, t.name)
	}
	return id, nil
}

// Observes reports whether changes to documents of docType in domain feed this
// type. A type without domains observes every domain.
func (t *Type) Observes(docType, domain string) bool {
	if t.sourceType != "" && t.sourceType != docType {
		return false
	}
	return len(t.domains) == 0 || slices.Contains(t.domains, domain)
}

// PassesDocumentFilter reports whether v should produce an indicator document at all.
func (t *Type) PassesDocumentFilter(v View) (bool, error) {
	if t.docFilter == nil {
		return true, nil
	}
	return t.docFilter.Filter(v)
}

// Calculate builds a fresh indicator document for v. The existing document, if
// any, is never consulted.
func (t *Type) Calculate(v View) (*Document, error) {
	doc := &Document{
		ID:          t.DocumentID(v.ID()),
		DocType:     t.name,
		SourceID:    v.ID(),
		Domains:     t.Domains(),
		GroupNames:  t.GroupNames(),
		GroupValues: make([]interface{}, len(t.groupBy)),
		Calculators: make(map[string]map[string][]EmittedValue, len(t.calculators)),
	}
	if doc.Domains == nil {
		doc.Domains = []string{}
	}
	for _, c := range t.calculators {
		values, err := c.Calculate(v)
		if err != nil {
			return nil, fmt.Errorf("indicator %s: %w", t.name, err)
		}
		doc.Calculators[c.slug] = values
	}
	for i, g := range t.groupBy {
		val, err := g.Getter(v)
		if err != nil {
			return nil, fmt.Errorf("indicator %s: %w", t.name, err)
		}
		doc.GroupValues[i] = val
	}
	return doc, nil
}

// QueryWindow runs a windowed query for the named calculator and one group key.
func (t *Type) QueryWindow(ctx context.Context, idx Index, calculator string, key []interface{}, reduce bool) (Result, error) {
	c, err := t.Calculator(calculator)
	if err != nil {
		return Result{}, err
	}
	return c.QueryWindow(ctx, idx, key, reduce)
}

// AggregateAcrossKeys runs a windowed query for the named calculator over many group keys.
func (t *Type) AggregateAcrossKeys(ctx context.Context, idx Index, calculator string, keys [][]interface{}, reduce bool) (Result, error) {
	c, err := t.Calculator(calculator)
	if err != nil {
		return Result{}, err
	}
	return c.AggregateAcrossKeys(ctx, idx, keys, reduce)
}

func (t *Type) today() Date {
	return DateOf(t.now().UTC())
}
