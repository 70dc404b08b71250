// Package identity runs the fingerprint pipeline end to end:
// collect, normalize, aggregate, digest and report.
package identity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tusharlock10/sentinel-hwid/internal/crypto"
	"github.com/tusharlock10/sentinel-hwid/internal/fingerprint"
	"github.com/tusharlock10/sentinel-hwid/internal/hardware"
	"github.com/tusharlock10/sentinel-hwid/internal/report"
	"github.com/tusharlock10/sentinel-hwid/internal/virt"
)

// Stage is a step of the pipeline. A run moves strictly forward through
// the stages; the only terminal failure happens in StageCollect.
type Stage int

const (
	StageStart Stage = iota
	StageCollect
	StageNormalize
	StageAggregate
	StageDigest
	StageReport
	StageEnd
)

func (s Stage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageCollect:
		return "collect"
	case StageNormalize:
		return "normalize"
	case StageAggregate:
		return "aggregate"
	case StageDigest:
		return "digest"
	case StageReport:
		return "report"
	case StageEnd:
		return "end"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Options tunes a Generator.
type Options struct {
	// QueryTimeout bounds each hardware query. Zero means hardware.DefaultQueryTimeout.
	QueryTimeout time.Duration
	// Describe adds the system summary and the hypervisor check to the
	// report. Neither affects the code.
	Describe bool
}

// Result is the outcome of one successful run.
type Result struct {
	Platform       string
	Virtualization virt.Result
	Attributes     hardware.AttributeSet
	Normalized     fingerprint.Normalized
	Payload        fingerprint.Payload
	Fingerprint    crypto.Fingerprint
	Code           string
	Report         *report.Report
}

// Generator derives the unique code for the machine behind a Platform.
type Generator struct {
	platform hardware.Platform
	opts     Options
	detect   func(context.Context) virt.Result
	stage    Stage
}

// New creates a Generator for p.
func New(p hardware.Platform, opts Options) *Generator {
	return &Generator{
		platform: p,
		opts:     opts,
		detect:   virt.Detect,
	}
}

// Stage returns the last stage the generator entered.
func (g *Generator) Stage() Stage {
	return g.stage
}

func (g *Generator) enter(s Stage) {
	g.stage = s
	logrus.WithField("stage", s.String()).Debug("Entering stage")
}

// Run executes the pipeline once. It fails only when the platform facility
// is unusable or ctx is cancelled; missing attributes degrade to empty
// fields.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	if g.platform == nil {
		return nil, hardware.ErrUnsupportedPlatform
	}
	g.enter(StageStart)
	res := &Result{Platform: g.platform.Name()}

	g.enter(StageCollect)
	set, err := hardware.Collect(ctx, g.platform, hardware.CollectOptions{
		QueryTimeout:   g.opts.QueryTimeout,
		SkipSystemInfo: !g.opts.Describe,
	})
	if err != nil {
		return nil, fmt.Errorf("collect hardware attributes: %w", err)
	}
	res.Attributes = set
	if g.opts.Describe {
		res.Virtualization = g.detect(ctx)
		if res.Virtualization.Guest() {
			logrus.WithField("hypervisor", res.Virtualization.System).
				Warn("Running as a virtual machine guest, hardware identifiers may be assigned by the hypervisor")
		}
	}

	g.enter(StageNormalize)
	res.Normalized = fingerprint.Normalize(set)
	if len(res.Normalized.MACs) == 0 && res.Normalized.MotherboardSerial == "" && res.Normalized.MotherboardUUID == "" {
		logrus.Warn("No primary hardware attribute available, the code rests on secondary attributes only")
	}

	g.enter(StageAggregate)
	res.Payload = fingerprint.Aggregate(res.Normalized)
	logrus.WithField("payload", res.Payload.String()).Debug("Canonical payload built")

	g.enter(StageDigest)
	res.Fingerprint = crypto.Digest(res.Payload)
	res.Code = crypto.FormatCode(res.Fingerprint)

	g.enter(StageReport)
	res.Report = report.New(res.Platform, set.System, res.Virtualization, res.Normalized, res.Fingerprint)

	g.enter(StageEnd)
	logrus.WithFields(logrus.Fields{
		"platform": res.Platform,
		"code":     res.Code,
	}).Info("Unique code derived")
	return res, nil
}

// Fatal reports whether err ended a run before a code was produced because
// the platform is unsupported or its hardware facility is unusable.
func Fatal(err error) bool {
	var fatal *hardware.FatalError
	return errors.As(err, &fatal) || errors.Is(err, hardware.ErrUnsupportedPlatform)
}

// SetupSignalHandler returns a context that is cancelled on SIGINT or
// SIGTERM so an interrupted run stops its pending queries.
func SetupSignalHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logrus.WithField("signal", sig.String()).Warn("Received signal, aborting")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}
