//nolint:revive // Package name intentionally shadows stdlib errors for convenience.
package errors

// ExtractKind classifies an archive extraction failure.
type ExtractKind string

const (
	ExtractKindFormat     ExtractKind = "format"
	ExtractKindUnsafePath ExtractKind = "unsafe_path"
	ExtractKindIO         ExtractKind = "io"
)

// ExtractError represents an archive extraction failure.
type ExtractError struct {
	Base Error `json:"error"`

	Kind  ExtractKind `json:"kind"`
	Entry string      `json:"entry,omitempty"`
}

// NewExtractError creates an ExtractError of the given kind.
func NewExtractError(kind ExtractKind, entry string, cause error) *ExtractError {
	code := CodeExtractIO
	switch kind {
	case ExtractKindFormat:
		code = CodeExtractFormat
	case ExtractKindUnsafePath:
		code = CodeExtractUnsafePath
	}
	return &ExtractError{
		Base: Error{
			Category: CategoryExtract,
			Code:     code,
			Message:  "archive extraction failed: " + string(kind),
			Cause:    cause,
		},
		Kind:  kind,
		Entry: entry,
	}
}

func (e *ExtractError) Error() string { return e.Base.Error() }
func (e *ExtractError) Unwrap() error { return e.Base.Cause }
func (e *ExtractError) Is(target error) bool {
	t, ok := target.(*ExtractError)
	if !ok {
		return false
	}
	return e.Base.Code == t.Base.Code
}
