package indicator

// Filter decides whether a source document contributes to an indicator or calculator.
type Filter interface {
	Filter(View) (bool, error)
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(View) (bool, error)

func (f FilterFunc) Filter(v View) (bool, error) { return f(v) }

// Predicate is a named calculator filter.
type Predicate struct {
	Name string
	Fn   func(View) (bool, error)
}

func allPass(v View, filters []Filter) (bool, error) {
	for _, f := range filters {
		ok, err := f.Filter(v)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}
