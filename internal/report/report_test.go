package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tusharlock10/sentinel-hwid/internal/crypto"
	"github.com/tusharlock10/sentinel-hwid/internal/fingerprint"
	"github.com/tusharlock10/sentinel-hwid/internal/hardware"
	"github.com/tusharlock10/sentinel-hwid/internal/virt"
)

func sampleHardware(macs ...hardware.Attribute) fingerprint.Normalized {
	attrs := []hardware.Attribute{
		{Kind: hardware.KindMotherboardSerial, Value: "ABC123", Available: true},
		{Kind: hardware.KindMotherboardUUID, Err: hardware.ErrUnavailable},
	}
	attrs = append(attrs, macs...)
	attrs = append(attrs,
		hardware.Attribute{Kind: hardware.KindCPUPhysicalID, Value: "CPU001", Available: true},
		hardware.Attribute{Kind: hardware.KindDiskModel, Err: hardware.ErrUnavailable},
		hardware.Attribute{Kind: hardware.KindProductModel, Value: "Model-X", Available: true},
	)
	return fingerprint.Normalize(hardware.AttributeSet{Attributes: attrs})
}

func nic(name, mac string) hardware.Attribute {
	return hardware.Attribute{Kind: hardware.KindMACAddress, Value: mac, Available: true, Source: name}
}

func newReport(system hardware.SystemInfo, v virt.Result, n fingerprint.Normalized) *Report {
	return New("linux", system, v, n, crypto.Digest(fingerprint.Aggregate(n)))
}

func sampleSystem() hardware.SystemInfo {
	return hardware.SystemInfo{
		OS:            "ubuntu",
		OSVersion:     "24.04",
		KernelVersion: "6.8.0-45-generic",
		CPUModel:      "Intel(R) Core(TM) i7-1185G7 @ 3.00GHz",
		Firmware: hardware.Firmware{
			BIOSVendor:  "Dell Inc.",
			BIOSVersion: "1.22.0",
			BIOSDate:    "03/01/2024",
			BoardVendor: "Dell Inc.",
		},
		InterfaceTypes: map[string]string{"eth0": "Ethernet"},
	}
}

func TestWriteText(t *testing.T) {
	r := newReport(hardware.SystemInfo{}, virt.Result{}, sampleHardware(nic("eth0", "aa:bb:cc:dd:ee:ff")))

	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))

	want := "Hardware Information:\n" +
		"  Motherboard Serial: ABC123\n" +
		"  Motherboard UUID:   (unavailable)\n" +
		"  Network Interface:  eth0 AA:BB:CC:DD:EE:FF\n" +
		"  CPU Physical ID:    CPU001\n" +
		"  Disk Model:         (unavailable)\n" +
		"  Product Model:      Model-X\n" +
		"\n" +
		"Unique Code: 72E5-CB31-53BC-15BA\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteTextSystemInformation(t *testing.T) {
	r := newReport(sampleSystem(), virt.Result{System: "kvm", Role: virt.RoleGuest}, sampleHardware(nic("eth0", "aa:bb:cc:dd:ee:ff")))

	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))

	want := "  Product Model:      Model-X\n" +
		"\n" +
		"System Information:\n" +
		"  Operating System:   ubuntu 24.04 (kernel 6.8.0-45-generic)\n" +
		"  CPU Model:          Intel(R) Core(TM) i7-1185G7 @ 3.00GHz\n" +
		"  BIOS:               Dell Inc. 1.22.0 (03/01/2024)\n" +
		"  Board Vendor:       Dell Inc.\n" +
		"  Virtualization:     kvm (guest)\n" +
		"\n" +
		"Unique Code: 72E5-CB31-53BC-15BA\n"
	assert.Contains(t, buf.String(), want)
}

func TestWriteTextPartialSystemInformation(t *testing.T) {
	r := newReport(hardware.SystemInfo{OS: "darwin"}, virt.Result{}, sampleHardware())

	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))
	assert.Contains(t, buf.String(), "  Operating System:   darwin\n")
	assert.Contains(t, buf.String(), "  BIOS:               (unavailable)\n")
	assert.Contains(t, buf.String(), "  Virtualization:     none\n")
}

func TestWriteTextNoInterfaces(t *testing.T) {
	r := newReport(hardware.SystemInfo{}, virt.Result{}, fingerprint.Normalize(hardware.AttributeSet{}))

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf, "text"))
	assert.Equal(t, "Hardware Information:\n  Network Interface:  (none)\n\nUnique Code: 8857-2C76-03BD-2BB7\n", buf.String())
}

func TestWriteTextMultipleInterfaces(t *testing.T) {
	r := newReport(hardware.SystemInfo{}, virt.Result{}, sampleHardware(
		nic("eth0", "00:1a:2b:3c:4d:5e"),
		nic("wlan0", "00:1a:2b:3c:4d:01"),
	))

	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))
	assert.Contains(t, buf.String(), "  Network Interface:  eth0 00:1A:2B:3C:4D:5E\n  Network Interface:  wlan0 00:1A:2B:3C:4D:01\n")
}

func TestSystemInformationDoesNotChangeCode(t *testing.T) {
	hw := sampleHardware(nic("eth0", "aa:bb:cc:dd:ee:ff"))
	bare := newReport(hardware.SystemInfo{}, virt.Result{}, hw)
	full := newReport(sampleSystem(), virt.Result{System: "vmware", Role: virt.RoleGuest}, hw)

	assert.Equal(t, bare.UniqueCode, full.UniqueCode)
	assert.Equal(t, bare.Fingerprint, full.Fingerprint)
}

func TestWriteJSON(t *testing.T) {
	r := newReport(sampleSystem(), virt.Result{System: "kvm", Role: virt.RoleGuest}, sampleHardware(nic("eth0", "aa:bb:cc:dd:ee:ff")))
	r.Version = "1.4.0"

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf, "json"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "linux", got["platform"])
	assert.Equal(t, "1.4.0", got["version"])
	assert.Equal(t, "72E5-CB31-53BC-15BA", got["unique_code"])
	assert.Equal(t, "72e5cb3153bc15ba591b3d02892dce77", got["fingerprint"])
	assert.Equal(t, map[string]any{"system": "kvm", "role": "guest"}, got["virtualization"])

	hw := got["hardware"].(map[string]any)
	assert.Equal(t, "ABC123", hw["motherboard_serial"])
	assert.Nil(t, hw["motherboard_uuid"])
	assert.Nil(t, hw["disk_model"])
	assert.Equal(t, []any{map[string]any{"name": "eth0", "mac": "AA:BB:CC:DD:EE:FF", "type": "Ethernet"}}, hw["network_interfaces"])

	sys := got["system"].(map[string]any)
	assert.Equal(t, "ubuntu", sys["os"])
	assert.Equal(t, "Dell Inc.", sys["bios_vendor"])
	assert.Equal(t, "03/01/2024", sys["bios_date"])
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	r := newReport(hardware.SystemInfo{}, virt.Result{}, fingerprint.Normalize(hardware.AttributeSet{}))
	require.NoError(t, r.WriteJSON(&buf))

	assert.Contains(t, buf.String(), `"network_interfaces": []`)
	assert.Contains(t, buf.String(), `"virtualization": {}`)
	assert.Contains(t, buf.String(), `"os": null`)
	assert.Contains(t, buf.String(), `"fingerprint": "88572c7603bd2bb7f2bd0128fc8d65d8"`)
	assert.NotContains(t, buf.String(), `"version"`)
}

func TestWriteUnknownFormat(t *testing.T) {
	r := newReport(hardware.SystemInfo{}, virt.Result{}, sampleHardware())

	var buf bytes.Buffer
	assert.Error(t, r.Write(&buf, "xml"))
	assert.Zero(t, buf.Len())
}
