package sockio

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

var (
	// ErrTooLarge is returned when an encoded address does not fit the
	// fixed-size field reserved for it in a request record.
	ErrTooLarge = errors.New("value too large for request field")

	// ErrUnsupported is returned by Default on platforms without a control
	// channel backend.
	ErrUnsupported = errors.New("interface control channel not supported on this platform")
)

// OpError is the error returned by every control channel operation. Err is
// usually a unix.Errno straight from the kernel.
type OpError struct {
	Op   Op
	Name string
	Err  error
}

func (e *OpError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Errno returns the numeric status carried by err: zero for nil, the kernel
// errno when there is one, and EINVAL for anything else.
func Errno(err error) unix.Errno {
	if err == nil {
		return 0
	}

	var errno unix.Errno
	if errors.As(err, &errno) {
		return errno
	}
	return unix.EINVAL
}
