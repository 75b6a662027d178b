package kde

import "fmt"

// ConfigurationError reports a parameter combination the rules cannot work
// with. It is returned at construction and never from the traversal hooks.
type ConfigurationError struct {
	Parameter string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("kde: invalid %s: %s", e.Parameter, e.Reason)
}

// ErrNoBandwidth is returned when a bandwidth is required from a kernel that
// does not expose one.
var ErrNoBandwidth = &ConfigurationError{
	Parameter: "kernel",
	Reason:    "kernel does not expose a bandwidth",
}

func invalid(parameter, format string, args ...any) error {
	return &ConfigurationError{Parameter: parameter, Reason: fmt.Sprintf(format, args...)}
}
