//go:build windows

package hardware

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/yusufpapurcu/wmi"
	"golang.org/x/sys/windows/registry"

	"github.com/tusharlock10/sentinel-hwid/internal/process"
)

const (
	hardwareDescriptionKey = `HARDWARE\DESCRIPTION\System`
	biosKey                = `HARDWARE\DESCRIPTION\System\BIOS`
)

// WMI maps struct type names to class names.
type Win32_BaseBoard struct {
	SerialNumber string
	Product      string
	Manufacturer string
}

type Win32_BIOS struct {
	Manufacturer      string
	SMBIOSBIOSVersion string
	ReleaseDate       string
}

// Win32_NetworkAdapter columns are NULL for adapters that are not connected
// or have no MAC, hence the pointers.
type Win32_NetworkAdapter struct {
	NetConnectionID *string
	MACAddress      *string
	Description     *string
	PNPDeviceID     *string
	PhysicalAdapter *bool
}

type Win32_ComputerSystemProduct struct {
	UUID string
}

type Win32_DiskDrive struct {
	Index uint32
	Model string
}

type windowsPlatform struct {
	timeout time.Duration
}

func newPlatform(opts Options) (Platform, error) {
	return &windowsPlatform{timeout: opts.commandTimeout()}, nil
}

func (p *windowsPlatform) Name() string { return "windows" }

func (p *windowsPlatform) Check(ctx context.Context) error {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, hardwareDescriptionKey, registry.QUERY_VALUE)
	if err != nil {
		return fmt.Errorf("open HKLM\\%s: %w", hardwareDescriptionKey, err)
	}
	return k.Close()
}

func (p *windowsPlatform) MotherboardSerial(ctx context.Context) (string, error) {
	var boards []Win32_BaseBoard
	err := wmi.Query(wmi.CreateQuery(&boards, ""), &boards)
	if err == nil && len(boards) > 0 && usable(boards[0].SerialNumber) {
		return boards[0].SerialNumber, nil
	}
	logFallback("motherboard_serial", "wmi Win32_BaseBoard", err)
	return p.cim(ctx, "Win32_BaseBoard", "SerialNumber")
}

func (p *windowsPlatform) MotherboardUUID(ctx context.Context) (string, error) {
	var products []Win32_ComputerSystemProduct
	err := wmi.Query(wmi.CreateQuery(&products, ""), &products)
	if err == nil && len(products) > 0 && usable(products[0].UUID) {
		return products[0].UUID, nil
	}
	logFallback("motherboard_uuid", "wmi Win32_ComputerSystemProduct", err)
	return p.cim(ctx, "Win32_ComputerSystemProduct", "UUID")
}

// NetworkInterfaces annotates the gopsutil list with Win32_NetworkAdapter
// metadata. Without it VPN and hypervisor adapters with universally
// administered MACs (TAP-Windows, VMware VMnet) would pass the filter.
func (p *windowsPlatform) NetworkInterfaces(ctx context.Context) ([]Interface, error) {
	var rows []Win32_NetworkAdapter
	if err := wmi.Query(wmi.CreateQuery(&rows, "WHERE MACAddress IS NOT NULL"), &rows); err != nil {
		logFallback("mac_address", "wmi Win32_NetworkAdapter", err)
		return systemInterfaces(ctx, nil)
	}

	table := make(adapterTable, 0, len(rows))
	for _, r := range rows {
		table = append(table, pnpAdapter(deref(r.NetConnectionID), deref(r.MACAddress),
			deref(r.Description), deref(r.PNPDeviceID), r.PhysicalAdapter))
	}
	return systemInterfaces(ctx, table.annotate)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// CPUPhysicalID returns the ProcessorId of the first processor.
func (p *windowsPlatform) CPUPhysicalID(ctx context.Context) (string, error) {
	infos, err := cpu.InfoWithContext(ctx)
	if err == nil {
		for _, info := range infos {
			if id := strings.TrimSpace(info.PhysicalID); id != "" {
				return id, nil
			}
		}
	}
	logFallback("cpu_physical_id", "gopsutil cpu", err)
	return p.cim(ctx, "Win32_Processor", "ProcessorId")
}

func (p *windowsPlatform) DiskModel(ctx context.Context) (string, error) {
	var drives []Win32_DiskDrive
	err := wmi.Query(wmi.CreateQuery(&drives, "WHERE Index = 0"), &drives)
	if err == nil && len(drives) > 0 && usable(drives[0].Model) {
		return drives[0].Model, nil
	}
	logFallback("disk_model", "wmi Win32_DiskDrive", err)
	return p.cim(ctx, "Win32_DiskDrive", "Model")
}

func (p *windowsPlatform) ProductModel(ctx context.Context) (string, error) {
	var boards []Win32_BaseBoard
	err := wmi.Query(wmi.CreateQuery(&boards, ""), &boards)
	if err == nil && len(boards) > 0 && usable(boards[0].Product) {
		return boards[0].Product, nil
	}
	logFallback("product_model", "wmi Win32_BaseBoard", err)

	k, err := registry.OpenKey(registry.LOCAL_MACHINE, biosKey, registry.QUERY_VALUE)
	if err != nil {
		return "", err
	}
	defer k.Close()

	name, _, err := k.GetStringValue("SystemProductName")
	if err != nil {
		return "", err
	}
	return name, nil
}

func (p *windowsPlatform) Firmware(ctx context.Context) (Firmware, error) {
	var fw Firmware
	var bios []Win32_BIOS
	if err := wmi.Query(wmi.CreateQuery(&bios, ""), &bios); err != nil {
		return fw, err
	}
	if len(bios) > 0 {
		fw.BIOSVendor = bios[0].Manufacturer
		fw.BIOSVersion = bios[0].SMBIOSBIOSVersion
		fw.BIOSDate = parseCIMDate(bios[0].ReleaseDate)
	}

	var boards []Win32_BaseBoard
	if err := wmi.Query(wmi.CreateQuery(&boards, ""), &boards); err != nil {
		return fw, err
	}
	if len(boards) > 0 {
		fw.BoardVendor = boards[0].Manufacturer
	}
	return fw, nil
}

// cim reads a single property of the first instance of class through
// PowerShell, for hosts where the WMI COM query fails.
func (p *windowsPlatform) cim(ctx context.Context, class, property string) (string, error) {
	script := fmt.Sprintf("(Get-CimInstance -ClassName %s | Select-Object -First 1).%s", class, property)
	out, err := process.Run(ctx, p.timeout, "powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	if err != nil {
		return "", err
	}
	return firstLine(out), nil
}
