//go:build darwin

package virt

import (
	"context"

	"golang.org/x/sys/unix"
)

// detect reads kern.hv_vmm_present, which the kernel sets to 1 when running
// under a hypervisor. hw.model names the hypervisor when it is a known one.
func detect(ctx context.Context) (Result, error) {
	present, err := unix.SysctlUint32("kern.hv_vmm_present")
	if err != nil {
		return Result{}, err
	}
	if present == 0 {
		return Result{}, nil
	}

	model, _ := unix.Sysctl("hw.model")
	system := matchHypervisor(model)
	if system == "" {
		system = "unknown"
	}
	return Result{System: system, Role: RoleGuest}, nil
}
