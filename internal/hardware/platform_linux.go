//go:build linux

package hardware

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jaypipes/ghw"
	"github.com/shirou/gopsutil/v4/cpu"

	"github.com/tusharlock10/sentinel-hwid/internal/process"
)

// linuxPlatform reads sysfs below root. ghw is pointed at the same root so
// both sources agree.
type linuxPlatform struct {
	root    string
	sysfs   string
	timeout time.Duration
}

func newPlatform(opts Options) (Platform, error) {
	return newLinuxPlatform("/", opts.commandTimeout()), nil
}

func newLinuxPlatform(root string, timeout time.Duration) *linuxPlatform {
	return &linuxPlatform{
		root:    root,
		sysfs:   filepath.Join(root, "sys"),
		timeout: timeout,
	}
}

func (p *linuxPlatform) Name() string { return "linux" }

func (p *linuxPlatform) ghwOptions() []*ghw.WithOption {
	return []*ghw.WithOption{ghw.WithChroot(p.root), ghw.WithDisableWarnings()}
}

func (p *linuxPlatform) Check(ctx context.Context) error {
	info, err := os.Stat(filepath.Join(p.sysfs, "class"))
	if err != nil {
		return fmt.Errorf("sysfs not mounted at %s: %w", p.sysfs, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("sysfs not mounted at %s", p.sysfs)
	}
	return nil
}

func (p *linuxPlatform) MotherboardSerial(ctx context.Context) (string, error) {
	bb, err := ghw.Baseboard(p.ghwOptions()...)
	if err == nil && usable(bb.SerialNumber) {
		return bb.SerialNumber, nil
	}
	logFallback("motherboard_serial", "ghw baseboard", err)
	return p.readDMI("board_serial")
}

func (p *linuxPlatform) MotherboardUUID(ctx context.Context) (string, error) {
	prod, err := ghw.Product(p.ghwOptions()...)
	if err == nil && usable(prod.UUID) {
		return prod.UUID, nil
	}
	logFallback("motherboard_uuid", "ghw product", err)
	return p.readDMI("product_uuid")
}

func (p *linuxPlatform) NetworkInterfaces(ctx context.Context) ([]Interface, error) {
	return systemInterfaces(ctx, p.annotate)
}

// annotate marks interfaces without a backing device link in
// /sys/class/net as virtual and detects wireless links.
func (p *linuxPlatform) annotate(ifc *Interface) {
	dir := filepath.Join(p.sysfs, "class", "net", ifc.Name)
	if _, err := os.Stat(filepath.Join(dir, "device")); err != nil {
		ifc.Virtual = true
	}
	if _, err := os.Stat(filepath.Join(dir, "wireless")); err == nil {
		ifc.Type = "Wi-Fi"
	} else if ifc.Type == "" && !ifc.Virtual {
		ifc.Type = "Ethernet"
	}
}

func (p *linuxPlatform) CPUPhysicalID(ctx context.Context) (string, error) {
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return "", err
	}
	for _, info := range infos {
		if id := strings.TrimSpace(info.PhysicalID); id != "" {
			return id, nil
		}
	}
	return "", ErrUnavailable
}

// DiskModel returns the model of the first non-removable disk by name.
func (p *linuxPlatform) DiskModel(ctx context.Context) (string, error) {
	block, err := ghw.Block(p.ghwOptions()...)
	if err == nil {
		disks := make([]*ghw.Disk, 0, len(block.Disks))
		for _, d := range block.Disks {
			if d != nil && !d.IsRemovable {
				disks = append(disks, d)
			}
		}
		sort.Slice(disks, func(i, j int) bool { return disks[i].Name < disks[j].Name })
		for _, d := range disks {
			if usable(d.Model) {
				return d.Model, nil
			}
		}
	}
	logFallback("disk_model", "ghw block", err)

	// -e7,11 excludes loop devices and optical drives.
	out, err := process.Run(ctx, p.timeout, "lsblk", "-dnP", "-e7,11", "-o", "NAME,MODEL,RM")
	if err != nil {
		return "", err
	}
	model := parseLsblkModel(out)
	if model == "" {
		return "", ErrUnavailable
	}
	return model, nil
}

func (p *linuxPlatform) ProductModel(ctx context.Context) (string, error) {
	bb, err := ghw.Baseboard(p.ghwOptions()...)
	if err == nil && usable(bb.Product) {
		return bb.Product, nil
	}
	logFallback("product_model", "ghw baseboard", err)

	prod, err := ghw.Product(p.ghwOptions()...)
	if err != nil {
		return "", err
	}
	if !usable(prod.Name) {
		return "", ErrUnavailable
	}
	return prod.Name, nil
}

func (p *linuxPlatform) Firmware(ctx context.Context) (Firmware, error) {
	var fw Firmware
	bios, err := ghw.BIOS(p.ghwOptions()...)
	if err != nil {
		return fw, err
	}
	fw.BIOSVendor, fw.BIOSVersion, fw.BIOSDate = bios.Vendor, bios.Version, bios.Date

	bb, err := ghw.Baseboard(p.ghwOptions()...)
	if err != nil {
		return fw, err
	}
	fw.BoardVendor = bb.Vendor
	return fw, nil
}

func (p *linuxPlatform) readDMI(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(p.sysfs, "class", "dmi", "id", name))
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return "", fmt.Errorf("%w: %s", ErrPermission, name)
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
