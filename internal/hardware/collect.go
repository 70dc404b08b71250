package hardware

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// CollectOptions controls a single collection run.
type CollectOptions struct {
	// QueryTimeout bounds each Platform query. Zero means DefaultQueryTimeout.
	QueryTimeout time.Duration
	// SkipSystemInfo leaves AttributeSet.System empty.
	SkipSystemInfo bool
}

// Collect runs every Platform query exactly once, in the order of Kinds,
// and assembles the raw AttributeSet. Per-attribute failures become
// unavailable attributes. Only a failing Check or a cancelled ctx returns an
// error.
func Collect(ctx context.Context, p Platform, opts CollectOptions) (AttributeSet, error) {
	timeout := opts.QueryTimeout
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}

	if err := ctx.Err(); err != nil {
		return AttributeSet{}, err
	}

	log := logrus.WithField("platform", p.Name())

	_, err := run(ctx, timeout, func(qctx context.Context) (struct{}, error) {
		return struct{}{}, p.Check(qctx)
	})
	if err != nil {
		return AttributeSet{}, &FatalError{Platform: p.Name(), Err: err}
	}

	queries := map[Kind]func(context.Context) (string, error){
		KindMotherboardSerial: p.MotherboardSerial,
		KindMotherboardUUID:   p.MotherboardUUID,
		KindCPUPhysicalID:     p.CPUPhysicalID,
		KindDiskModel:         p.DiskModel,
		KindProductModel:      p.ProductModel,
	}

	var (
		set      AttributeSet
		physical []Interface
	)
	for _, kind := range Kinds {
		var attrs []Attribute
		if kind == KindMACAddress {
			ifaces, err := run(ctx, timeout, p.NetworkInterfaces)
			physical, attrs = macAttributes(ifaces, err)
		} else {
			value, err := run(ctx, timeout, queries[kind])
			attrs = []Attribute{toAttribute(kind, value, err)}
		}
		if cerr := ctx.Err(); cerr != nil {
			return AttributeSet{}, fmt.Errorf("collect %s: %w", kind, cerr)
		}
		for _, attr := range attrs {
			logAttribute(log, attr)
		}
		set.Attributes = append(set.Attributes, attrs...)
	}

	if !opts.SkipSystemInfo {
		set.System = collectSystemInfo(ctx, p, timeout, physical)
	}
	return set, nil
}

// run bounds a single query by timeout, including queries that ignore ctx.
func run[T any](ctx context.Context, timeout time.Duration, query func(context.Context) (T, error)) (T, error) {
	qctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return bounded(qctx, func() (T, error) { return query(qctx) })
}

// macAttributes filters raw interfaces down to physical ones. An empty result
// still yields one unavailable MAC attribute so the payload column exists.
func macAttributes(ifaces []Interface, err error) ([]Interface, []Attribute) {
	if err != nil {
		return nil, []Attribute{unavailable(KindMACAddress, classify(err))}
	}
	physical := PhysicalInterfaces(ifaces)
	if len(physical) == 0 {
		return nil, []Attribute{unavailable(KindMACAddress, ErrUnavailable)}
	}
	attrs := make([]Attribute, 0, len(physical))
	for _, ifc := range physical {
		attrs = append(attrs, available(KindMACAddress, ifc.MAC, ifc.Name))
	}
	return physical, attrs
}

func toAttribute(kind Kind, value string, err error) Attribute {
	if err != nil {
		return unavailable(kind, classify(err))
	}
	if strings.TrimSpace(value) == "" {
		return unavailable(kind, ErrUnavailable)
	}
	return available(kind, value, "")
}

// classify maps low-level failures onto the package sentinels while keeping
// the original error in the chain.
func classify(err error) error {
	switch {
	case errors.Is(err, ErrTimeout), errors.Is(err, ErrPermission), errors.Is(err, ErrUnavailable):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %v", ErrPermission, err)
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, exec.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return err
	}
}

func logAttribute(log *logrus.Entry, a Attribute) {
	entry := log.WithField("attribute", a.Kind.String())
	if !a.Available {
		entry.WithError(a.Err).Warn("Hardware attribute unavailable")
		return
	}
	if a.Source != "" {
		entry = entry.WithField("interface", a.Source)
	}
	entry.WithField("value", a.Value).Debug("Hardware attribute collected")
}
