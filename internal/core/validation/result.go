package validation

// Result is one node of the tree produced by a validation run.
//
// Valid is the node's own verdict. Combinators fold their children into it,
// but readers that need the verdict of a whole subtree should call
// EffectiveValid instead of trusting the local flag.
type Result struct {
	Valid   bool
	Message string

	// Container is the object that held Value when it was checked. It is kept
	// for diagnostics only.
	Container any
	// Locator is the field name (string) or element index (int) of Value
	// inside Container, or nil for a root result.
	Locator any
	Value   any

	Children []*Result
}

func newResult(valid bool, message string, container, locator, value any) *Result {
	return &Result{
		Valid:     valid,
		Message:   message,
		Container: container,
		Locator:   locator,
		Value:     value,
	}
}

// EffectiveValid reports whether the node and every descendant are valid.
func (r *Result) EffectiveValid() bool {
	if r == nil {
		return true
	}
	if !r.Valid {
		return false
	}
	for _, child := range r.Children {
		if !child.EffectiveValid() {
			return false
		}
	}
	return true
}

// IsEndpoint reports whether the node has no children.
func (r *Result) IsEndpoint() bool {
	return len(r.Children) == 0
}

func (r *Result) add(child *Result) {
	r.Children = append(r.Children, child)
	if !child.EffectiveValid() {
		r.Valid = false
	}
}

func (r *Result) annotate(suffix string) {
	r.Message += suffix
}
