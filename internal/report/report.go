// Package report renders the collected hardware and the unique code for
// humans (text) or tools (JSON).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tusharlock10/sentinel-hwid/internal/crypto"
	"github.com/tusharlock10/sentinel-hwid/internal/fingerprint"
	"github.com/tusharlock10/sentinel-hwid/internal/hardware"
	"github.com/tusharlock10/sentinel-hwid/internal/virt"
)

const (
	unavailableText = "(unavailable)"
	noneText        = "(none)"
	codePrefix      = "Unique Code: "
)

// Report is everything printed for one run. Empty strings are unavailable
// attributes. System and Virtualization are informational and play no part
// in the code.
type Report struct {
	Platform       string
	Version        string
	System         hardware.SystemInfo
	Virtualization virt.Result
	Hardware       fingerprint.Normalized
	Fingerprint    crypto.Fingerprint
	UniqueCode     string
}

// New assembles a Report from the normalized attributes and their digest.
func New(platform string, system hardware.SystemInfo, v virt.Result, n fingerprint.Normalized, fp crypto.Fingerprint) *Report {
	return &Report{
		Platform:       platform,
		System:         system,
		Virtualization: v,
		Hardware:       n,
		Fingerprint:    fp,
		UniqueCode:     crypto.FormatCode(fp),
	}
}

// Write renders r in the given format ("text" or "json").
func (r *Report) Write(w io.Writer, format string) error {
	switch format {
	case "", "text":
		return r.WriteText(w)
	case "json":
		return r.WriteJSON(w)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// WriteText writes the human-readable report, ending with the
// "Unique Code: XXXX-XXXX-XXXX-XXXX" line.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	b.WriteString("Hardware Information:\n")
	for _, it := range r.Hardware.Items {
		value := it.Value
		if it.Kind == hardware.KindMACAddress {
			value = strings.TrimSpace(it.Source + " " + it.Value)
			if it.Value == "" {
				value = noneText
			}
		}
		line(&b, it.Kind.Label(), value)
	}

	if r.hasSystem() {
		sys := r.System
		b.WriteString("\nSystem Information:\n")
		line(&b, "Operating System", join(" ", sys.OS, sys.OSVersion)+suffix("kernel ", sys.KernelVersion))
		line(&b, "CPU Model", sys.CPUModel)
		line(&b, "BIOS", join(" ", sys.Firmware.BIOSVendor, sys.Firmware.BIOSVersion)+suffix("", sys.Firmware.BIOSDate))
		line(&b, "Board Vendor", sys.Firmware.BoardVendor)
		line(&b, "Virtualization", r.Virtualization.String())
	}

	b.WriteString("\n")
	b.WriteString(codePrefix + r.UniqueCode + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Report) hasSystem() bool {
	sys := r.System
	return sys.OS != "" || sys.CPUModel != "" || sys.Firmware != (hardware.Firmware{}) || r.Virtualization.System != ""
}

// labelWidth fits the longest label plus its colon.
const labelWidth = len("Motherboard Serial:")

func line(b *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		value = unavailableText
	}
	fmt.Fprintf(b, "  %-*s %s\n", labelWidth, label+":", strings.TrimSpace(value))
}

func join(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

// suffix renders " (<prefix><v>)", or nothing when v is empty.
func suffix(prefix, v string) string {
	if v == "" {
		return ""
	}
	return " (" + prefix + v + ")"
}

type jsonInterface struct {
	Name string `json:"name"`
	MAC  string `json:"mac"`
	Type string `json:"type,omitempty"`
}

type jsonHardware struct {
	MotherboardSerial *string         `json:"motherboard_serial"`
	MotherboardUUID   *string         `json:"motherboard_uuid"`
	NetworkInterfaces []jsonInterface `json:"network_interfaces"`
	CPUPhysicalID     *string         `json:"cpu_physical_id"`
	DiskModel         *string         `json:"disk_model"`
	ProductModel      *string         `json:"product_model"`
}

type jsonSystem struct {
	OS            *string `json:"os"`
	OSVersion     *string `json:"os_version"`
	KernelVersion *string `json:"kernel_version"`
	CPUModel      *string `json:"cpu_model"`
	BIOSVendor    *string `json:"bios_vendor"`
	BIOSVersion   *string `json:"bios_version"`
	BIOSDate      *string `json:"bios_date"`
	BoardVendor   *string `json:"board_vendor"`
}

type jsonReport struct {
	Platform       string       `json:"platform"`
	Version        string       `json:"version,omitempty"`
	Virtualization virt.Result  `json:"virtualization"`
	System         jsonSystem   `json:"system"`
	Hardware       jsonHardware `json:"hardware"`
	Fingerprint    string       `json:"fingerprint"`
	UniqueCode     string       `json:"unique_code"`
}

// WriteJSON writes the report as an indented JSON object. Unavailable
// attributes are null.
func (r *Report) WriteJSON(w io.Writer) error {
	hw, sys := r.Hardware, r.System
	out := jsonReport{
		Platform:       r.Platform,
		Version:        r.Version,
		Virtualization: r.Virtualization,
		System: jsonSystem{
			OS:            optional(sys.OS),
			OSVersion:     optional(sys.OSVersion),
			KernelVersion: optional(sys.KernelVersion),
			CPUModel:      optional(sys.CPUModel),
			BIOSVendor:    optional(sys.Firmware.BIOSVendor),
			BIOSVersion:   optional(sys.Firmware.BIOSVersion),
			BIOSDate:      optional(sys.Firmware.BIOSDate),
			BoardVendor:   optional(sys.Firmware.BoardVendor),
		},
		Hardware: jsonHardware{
			MotherboardSerial: optional(hw.MotherboardSerial),
			MotherboardUUID:   optional(hw.MotherboardUUID),
			NetworkInterfaces: make([]jsonInterface, 0, len(hw.Interfaces)),
			CPUPhysicalID:     optional(hw.CPUPhysicalID),
			DiskModel:         optional(hw.DiskModel),
			ProductModel:      optional(hw.ProductModel),
		},
		Fingerprint: r.Fingerprint.Hex(),
		UniqueCode:  r.UniqueCode,
	}
	for _, ifc := range hw.Interfaces {
		out.Hardware.NetworkInterfaces = append(out.Hardware.NetworkInterfaces, jsonInterface{
			Name: ifc.Name,
			MAC:  ifc.MAC,
			Type: sys.InterfaceTypes[ifc.Name],
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
