package predictability

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is wrapped by every error caused by malformed or
// insufficient input, unsupported settings, missing trained state or an
// unreadable model file.
var ErrInvalidArgument = errors.New("invalid argument")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// SkippedRecord describes a metadata record dropped during reorganization.
type SkippedRecord struct {
	Index int
	Err   error
}
