package ffmpeg

import (
	"errors"
	"fmt"
	"time"
)

// TimeoutError reports that the engine exceeded its wall-clock budget. It is
// distinct from an engine-reported failure.
type TimeoutError struct {
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("ffmpeg exceeded wall-clock budget of %s", e.Budget)
}

// ExitError reports a non-zero engine exit with its diagnostics verbatim
type ExitError struct {
	Err    error
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("ffmpeg failed: %v\n%s", e.Err, e.Stderr)
	}
	return fmt.Sprintf("ffmpeg failed: %v", e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }

// IsTimeout reports whether err is (or wraps) a wall-clock timeout
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
