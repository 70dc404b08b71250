package hardware

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultQueryTimeout bounds every individual platform query.
const DefaultQueryTimeout = 5 * time.Second

// Interface is a network interface as reported by the operating system.
// Virtual is set by platforms that can tell from OS metadata that the
// interface has no backing hardware device. Type ("Ethernet", "Wi-Fi") is
// informational only.
type Interface struct {
	Index   int
	Name    string
	MAC     string
	Flags   []string
	Virtual bool
	Type    string
}

// Platform is the per-OS query surface. Every method is best-effort: it
// returns a value or an error, never blocks past ctx and never needs elevation.
type Platform interface {
	// Name is the GOOS-style platform name.
	Name() string

	// Check verifies that the OS facility used by the queries is usable at all.
	// A failure here is fatal; per-attribute failures are not.
	Check(ctx context.Context) error

	MotherboardSerial(ctx context.Context) (string, error)
	MotherboardUUID(ctx context.Context) (string, error)
	NetworkInterfaces(ctx context.Context) ([]Interface, error)
	CPUPhysicalID(ctx context.Context) (string, error)
	DiskModel(ctx context.Context) (string, error)
	ProductModel(ctx context.Context) (string, error)
}

// Options tunes the concrete platform implementations.
type Options struct {
	// CommandTimeout bounds each external command (system_profiler, lsblk,
	// powershell). Zero means DefaultQueryTimeout.
	CommandTimeout time.Duration
}

func (o Options) commandTimeout() time.Duration {
	if o.CommandTimeout > 0 {
		return o.CommandTimeout
	}
	return DefaultQueryTimeout
}

// NewPlatform returns the Platform for the running operating system, or
// ErrUnsupportedPlatform.
func NewPlatform(opts Options) (Platform, error) {
	return newPlatform(opts)
}

// bounded runs fn and gives up when ctx is done, so a query that ignores its
// context (ghw and wmi calls take none) still cannot stall collection. An
// abandoned call keeps running in the background and its result is dropped.
func bounded[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		val T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v, err}
	}()

	select {
	case r := <-ch:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
	}
}

// usable reports whether a library-reported value is worth returning rather
// than falling through. ghw reports "unknown" for values it could not read.
func usable(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, "unknown")
}

func logFallback(attr, source string, err error) {
	entry := logrus.WithFields(logrus.Fields{"attribute": attr, "source": source})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Debug("Primary source gave no value, trying fallback")
}
