//go:build darwin

package hardware

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"golang.org/x/sys/unix"

	"github.com/tusharlock10/sentinel-hwid/internal/process"
)

const appleVendor = "Apple Inc."

// darwinPlatform reads the hardware overview from system_profiler once and
// serves serial, UUID and model from it; ioreg and sysctl are fallbacks.
type darwinPlatform struct {
	timeout time.Duration

	once     sync.Once
	overview hardwareOverview
	err      error
}

func newPlatform(opts Options) (Platform, error) {
	return &darwinPlatform{timeout: opts.commandTimeout()}, nil
}

func (p *darwinPlatform) Name() string { return "darwin" }

func (p *darwinPlatform) Check(ctx context.Context) error {
	if _, err := exec.LookPath("ioreg"); err != nil {
		return fmt.Errorf("ioreg not available: %w", err)
	}
	return nil
}

func (p *darwinPlatform) hardwareOverview(ctx context.Context) (hardwareOverview, error) {
	p.once.Do(func() {
		out, err := process.Run(ctx, p.timeout, "system_profiler", "SPHardwareDataType", "-json")
		if err != nil {
			p.err = err
			return
		}
		p.overview, p.err = parseHardwareOverview([]byte(out))
	})
	return p.overview, p.err
}

func (p *darwinPlatform) MotherboardSerial(ctx context.Context) (string, error) {
	hw, err := p.hardwareOverview(ctx)
	if err == nil && usable(hw.SerialNumber) {
		return hw.SerialNumber, nil
	}
	logFallback("motherboard_serial", "system_profiler", err)
	return p.ioreg(ctx, ioregSerialRe)
}

func (p *darwinPlatform) MotherboardUUID(ctx context.Context) (string, error) {
	hw, err := p.hardwareOverview(ctx)
	if err == nil && usable(hw.PlatformUUID) {
		return hw.PlatformUUID, nil
	}
	logFallback("motherboard_uuid", "system_profiler", err)

	id, err := p.ioreg(ctx, ioregUUIDRe)
	if err == nil {
		return id, nil
	}
	logFallback("motherboard_uuid", "ioreg", err)
	return host.HostIDWithContext(ctx)
}

// NetworkInterfaces annotates interfaces with their hardware port. iPhone
// USB tethering and Thunderbolt Bridge show up as enN with universally
// administered MACs and are only recognizable by port name.
func (p *darwinPlatform) NetworkInterfaces(ctx context.Context) ([]Interface, error) {
	out, err := process.Run(ctx, p.timeout, "networksetup", "-listallhardwareports")
	if err != nil {
		logFallback("mac_address", "networksetup", err)
		return systemInterfaces(ctx, nil)
	}
	return systemInterfaces(ctx, parseHardwarePorts(out).annotate)
}

// CPUPhysicalID has no per-chip serial on macOS; the brand string stands in.
// Apple silicon reports the chip name in the hardware overview instead.
func (p *darwinPlatform) CPUPhysicalID(ctx context.Context) (string, error) {
	brand, err := unix.Sysctl("machdep.cpu.brand_string")
	if err == nil && usable(brand) {
		return brand, nil
	}
	logFallback("cpu_physical_id", "sysctl machdep.cpu.brand_string", err)

	hw, err := p.hardwareOverview(ctx)
	if err == nil {
		if v := firstUsable(hw.ChipType, hw.CPUType); v != "" {
			return v, nil
		}
	}
	logFallback("cpu_physical_id", "system_profiler", err)

	infos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return "", err
	}
	for _, info := range infos {
		if usable(info.ModelName) {
			return info.ModelName, nil
		}
	}
	return "", ErrUnavailable
}

func (p *darwinPlatform) DiskModel(ctx context.Context) (string, error) {
	out, err := process.Run(ctx, p.timeout, "diskutil", "info", "disk0")
	if err == nil {
		if name := parseDiskutilMediaName(out); usable(name) {
			return name, nil
		}
	}
	logFallback("disk_model", "diskutil", err)

	out, err = process.Run(ctx, p.timeout, "system_profiler", "SPStorageDataType", "-json")
	if err != nil {
		return "", err
	}
	return parseStorageDeviceName([]byte(out))
}

func (p *darwinPlatform) ProductModel(ctx context.Context) (string, error) {
	hw, err := p.hardwareOverview(ctx)
	if err == nil && usable(hw.MachineModel) {
		return hw.MachineModel, nil
	}
	logFallback("product_model", "system_profiler", err)

	model, err := unix.Sysctl("hw.model")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(model), nil
}

// Firmware reports the boot ROM as the BIOS; Apple builds both firmware and
// board.
func (p *darwinPlatform) Firmware(ctx context.Context) (Firmware, error) {
	hw, err := p.hardwareOverview(ctx)
	if err != nil {
		return Firmware{}, err
	}
	return Firmware{
		BIOSVendor:  appleVendor,
		BIOSVersion: hw.BootROMVersion,
		BoardVendor: appleVendor,
	}, nil
}

func (p *darwinPlatform) ioreg(ctx context.Context, re *regexp.Regexp) (string, error) {
	out, err := process.Run(ctx, p.timeout, "ioreg", "-rd1", "-c", "IOPlatformExpertDevice")
	if err != nil {
		return "", err
	}
	v := parseIORegValue(out, re)
	if v == "" {
		return "", ErrUnavailable
	}
	return v, nil
}
