package preprocess

import (
	"fmt"
	"strings"
)

// PreprocessError reports a preprocessing step that ran and failed
type PreprocessError struct {
	Step   string
	Stderr string
	Err    error
}

func (e *PreprocessError) Error() string {
	msg := fmt.Sprintf("preprocessing %q failed: %v", e.Step, e.Err)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *PreprocessError) Unwrap() error { return e.Err }

// PreprocessNotFoundError reports a missing interpreter or script
type PreprocessNotFoundError struct {
	Name string
	Err  error
}

func (e *PreprocessNotFoundError) Error() string {
	return fmt.Sprintf("preprocessing script not found: %s: %v", e.Name, e.Err)
}

func (e *PreprocessNotFoundError) Unwrap() error { return e.Err }
