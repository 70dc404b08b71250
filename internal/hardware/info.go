package hardware

import (
	"context"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/sirupsen/logrus"
)

// SystemInfo describes the machine for the report. None of it is hashed:
// OS upgrades and firmware updates must not change the unique code.
type SystemInfo struct {
	OS            string
	OSVersion     string
	KernelVersion string
	CPUModel      string
	Firmware      Firmware
	// InterfaceTypes maps physical interface names to their link type.
	InterfaceTypes map[string]string
}

// Firmware holds BIOS and baseboard vendor details.
type Firmware struct {
	BIOSVendor  string
	BIOSVersion string
	BIOSDate    string
	BoardVendor string
}

// FirmwareReader is implemented by platforms that can read firmware details.
type FirmwareReader interface {
	Firmware(ctx context.Context) (Firmware, error)
}

// Replaced in tests.
var (
	hostInfo = host.InfoWithContext
	cpuInfo  = cpu.InfoWithContext
)

// collectSystemInfo gathers the informational summary. Every part is
// optional; failures are logged and leave the field empty.
func collectSystemInfo(ctx context.Context, p Platform, timeout time.Duration, physical []Interface) SystemInfo {
	log := logrus.WithField("platform", p.Name())
	var info SystemInfo

	h, err := run(ctx, timeout, hostInfo)
	if h != nil {
		info.OS = firstUsable(h.Platform, h.OS)
		info.OSVersion = firstUsable(h.PlatformVersion)
		info.KernelVersion = firstUsable(h.KernelVersion)
	}
	if err != nil {
		log.WithError(err).Debug("Host information incomplete")
	}

	cpus, err := run(ctx, timeout, cpuInfo)
	if err != nil {
		log.WithError(err).Debug("CPU information unavailable")
	}
	for _, c := range cpus {
		if usable(c.ModelName) {
			info.CPUModel = strings.TrimSpace(c.ModelName)
			break
		}
	}

	if fr, ok := p.(FirmwareReader); ok {
		fw, err := run(ctx, timeout, fr.Firmware)
		if err != nil {
			log.WithError(err).Debug("Firmware information unavailable")
		}
		info.Firmware = Firmware{
			BIOSVendor:  firstUsable(fw.BIOSVendor),
			BIOSVersion: firstUsable(fw.BIOSVersion),
			BIOSDate:    firstUsable(fw.BIOSDate),
			BoardVendor: firstUsable(fw.BoardVendor),
		}
	}

	for _, ifc := range physical {
		if ifc.Type == "" {
			continue
		}
		if info.InterfaceTypes == nil {
			info.InterfaceTypes = make(map[string]string)
		}
		info.InterfaceTypes[ifc.Name] = ifc.Type
	}
	return info
}

func firstUsable(values ...string) string {
	for _, v := range values {
		if usable(v) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
