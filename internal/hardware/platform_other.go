//go:build !linux && !darwin && !windows

package hardware

import (
	"fmt"
	"runtime"
)

func newPlatform(Options) (Platform, error) {
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, runtime.GOOS)
}
