//nolint:revive // Package name intentionally shadows stdlib errors for convenience.
package errors

// PlatformError represents a request for a runtime on a platform its
// platform matrix excludes, or for which it has no download_url.
type PlatformError struct {
	Base Error `json:"error"`

	Tool     string `json:"tool,omitempty"`
	Platform string `json:"platform,omitempty"`
}

// NewPlatformError creates a PlatformError.
func NewPlatformError(tool, platform string) *PlatformError {
	return &PlatformError{
		Base: Error{
			Category: CategoryPlatform,
			Code:     CodePlatformUnsupported,
			Message:  "unsupported platform for " + tool,
			Hint:     "Run 'vx list --all' to see which platforms this tool supports.",
		},
		Tool:     tool,
		Platform: platform,
	}
}

func (e *PlatformError) Error() string { return e.Base.Error() }
func (e *PlatformError) Unwrap() error { return e.Base.Cause }
func (e *PlatformError) Is(target error) bool {
	t, ok := target.(*PlatformError)
	if !ok {
		return false
	}
	return e.Base.Code == t.Base.Code
}
