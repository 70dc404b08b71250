//go:build linux

package virt

import (
	"context"

	"github.com/shirou/gopsutil/v4/host"
)

func detect(ctx context.Context) (Result, error) {
	system, role, err := host.VirtualizationWithContext(ctx)
	if err != nil {
		return Result{}, err
	}
	return newResult(system, role), nil
}
