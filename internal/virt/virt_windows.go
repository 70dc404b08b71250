//go:build windows

package virt

import (
	"context"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const biosKey = `HARDWARE\DESCRIPTION\System\BIOS`

// detect matches the SMBIOS manufacturer and product name the firmware
// publishes under the BIOS registry key against known hypervisor vendors.
func detect(ctx context.Context) (Result, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, biosKey, registry.QUERY_VALUE)
	if err != nil {
		return Result{}, fmt.Errorf("open HKLM\\%s: %w", biosKey, err)
	}
	defer k.Close()

	manufacturer, _, _ := k.GetStringValue("SystemManufacturer")
	product, _, _ := k.GetStringValue("SystemProductName")

	system := matchHypervisor(manufacturer, product)
	if system == "" {
		return Result{}, nil
	}
	return Result{System: system, Role: RoleGuest}, nil
}
