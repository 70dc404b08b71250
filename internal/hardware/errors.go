package hardware

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedPlatform is returned by NewPlatform when the running OS is
	// not Linux, macOS or Windows.
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrUnavailable means a query ran but produced no value.
	ErrUnavailable = errors.New("attribute unavailable")

	// ErrPlaceholder means the firmware reported a vendor placeholder such as
	// "To be filled by O.E.M." instead of a real value.
	ErrPlaceholder = errors.New("value is a firmware placeholder")

	// ErrTimeout means a query did not finish within its deadline.
	ErrTimeout = errors.New("query timed out")

	// ErrPermission means the query needs privileges the process does not have.
	ErrPermission = errors.New("permission denied")
)

// QueryError records why a single attribute could not be collected.
// It never aborts collection; it is attached to the unavailable attribute.
type QueryError struct {
	Kind Kind
	Err  error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// FatalError means the platform facility itself is broken (sysfs not mounted,
// ioreg missing, registry unreadable). Collection stops and no code is produced.
type FatalError struct {
	Platform string
	Err      error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s hardware collection failed: %v", e.Platform, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}
