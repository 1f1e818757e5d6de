//nolint:revive // Package name intentionally shadows stdlib errors for convenience.
package errors

// ResolveError represents a version spec that matched no candidate in the
// upstream version list. Candidates carries up to the 5 nearest versions
// to help the user correct the spec.
type ResolveError struct {
	Base Error `json:"error"`

	Tool       string   `json:"tool,omitempty"`
	Spec       string   `json:"spec,omitempty"`
	Candidates []string `json:"candidates,omitempty"`
}

// NewResolveError creates a ResolveError.
func NewResolveError(tool, spec string, candidates []string) *ResolveError {
	if len(candidates) > 5 {
		candidates = candidates[:5]
	}
	return &ResolveError{
		Base: Error{
			Category: CategoryResolve,
			Code:     CodeResolveNoMatch,
			Message:  "no version of " + tool + " matches " + spec,
		},
		Tool:       tool,
		Spec:       spec,
		Candidates: candidates,
	}
}

func (e *ResolveError) Error() string { return e.Base.Error() }
func (e *ResolveError) Unwrap() error { return e.Base.Cause }
func (e *ResolveError) Is(target error) bool {
	t, ok := target.(*ResolveError)
	if !ok {
		return false
	}
	return e.Base.Code == t.Base.Code
}
