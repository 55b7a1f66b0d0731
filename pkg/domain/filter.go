package domain

// Filter is a structural predicate over documents.
// Field names use dotted paths; a path that crosses an array matches when any element matches,
// following MongoDB query semantics.
type Filter interface {
	isFilter()
}

// And matches when every child matches. An empty And matches everything.
type And []Filter

// Or matches when at least one child matches. An empty Or matches nothing.
type Or []Filter

// Regex matches string values of Field against Pattern (RE2 syntax).
type Regex struct {
	Field   string
	Pattern string
}

// Equal matches when Field holds Value.
type Equal struct {
	Field string
	Value any
}

// Exists matches when Field is present, whatever its value.
type Exists struct {
	Field string
}

func (And) isFilter()    {}
func (Or) isFilter()     {}
func (Regex) isFilter()  {}
func (Equal) isFilter()  {}
func (Exists) isFilter() {}
