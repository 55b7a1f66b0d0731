package engine

// Registry assigns each distinct expression a stable zero-based index, in first-seen order.
// It is owned by one session and is not safe for concurrent use.
type Registry struct {
	index map[string]int
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register returns the index of text, assigning the next one if text is new.
func (r *Registry) Register(text string) int {
	if i, ok := r.index[text]; ok {
		return i
	}
	i := len(r.order)
	r.index[text] = i
	r.order = append(r.order, text)
	return i
}

// Index returns the index of text, if registered.
func (r *Registry) Index(text string) (int, bool) {
	i, ok := r.index[text]
	return i, ok
}

// Len returns the number of distinct expressions.
func (r *Registry) Len() int {
	return len(r.order)
}

// Expressions returns the distinct expressions in first-seen order.
func (r *Registry) Expressions() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
