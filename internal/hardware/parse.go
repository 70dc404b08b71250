package hardware

import (
	"bufio"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	ioregUUIDRe   = regexp.MustCompile(`"IOPlatformUUID"\s*=\s*"([^"]*)"`)
	ioregSerialRe = regexp.MustCompile(`"IOPlatformSerialNumber"\s*=\s*"([^"]*)"`)
	lsblkPairRe   = regexp.MustCompile(`([A-Z]+)="([^"]*)"`)
)

// hardwareOverview is the subset of `system_profiler SPHardwareDataType -json`
// the darwin platform reads.
type hardwareOverview struct {
	SerialNumber   string `json:"serial_number"`
	PlatformUUID   string `json:"platform_UUID"`
	MachineModel   string `json:"machine_model"`
	ChipType       string `json:"chip_type"`
	CPUType        string `json:"cpu_type"`
	BootROMVersion string `json:"boot_rom_version"`
}

type spHardware struct {
	SPHardwareDataType []hardwareOverview `json:"SPHardwareDataType"`
}

type spStorage struct {
	SPStorageDataType []struct {
		PhysicalDrive struct {
			DeviceName string `json:"device_name"`
			IsInternal string `json:"is_internal_disk"`
		} `json:"physical_drive"`
	} `json:"SPStorageDataType"`
}

func parseHardwareOverview(data []byte) (hardwareOverview, error) {
	var sp spHardware
	if err := json.Unmarshal(data, &sp); err != nil {
		return hardwareOverview{}, fmt.Errorf("decode SPHardwareDataType: %w", err)
	}
	if len(sp.SPHardwareDataType) == 0 {
		return hardwareOverview{}, fmt.Errorf("%w: empty SPHardwareDataType", ErrUnavailable)
	}
	return sp.SPHardwareDataType[0], nil
}

// parseStorageDeviceName returns the device name of the first internal
// physical drive in `system_profiler SPStorageDataType -json` output.
func parseStorageDeviceName(data []byte) (string, error) {
	var sp spStorage
	if err := json.Unmarshal(data, &sp); err != nil {
		return "", fmt.Errorf("decode SPStorageDataType: %w", err)
	}
	for _, vol := range sp.SPStorageDataType {
		drive := vol.PhysicalDrive
		if drive.DeviceName != "" && drive.IsInternal != "no" {
			return drive.DeviceName, nil
		}
	}
	return "", ErrUnavailable
}

// parseIORegValue extracts a quoted platform expert property from
// `ioreg -rd1 -c IOPlatformExpertDevice` output.
func parseIORegValue(out string, re *regexp.Regexp) string {
	m := re.FindStringSubmatch(out)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// parseDiskutilMediaName reads "Device / Media Name" from `diskutil info`.
func parseDiskutilMediaName(out string) string {
	return keyValue(out, "Device / Media Name")
}

// keyValue finds the first "key: value" line with the given key.
func keyValue(out, key string) string {
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		k, v, ok := strings.Cut(sc.Text(), ":")
		if ok && strings.TrimSpace(k) == key {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// parseHardwarePorts reads `networksetup -listallhardwareports` output. The
// port name is both the description and the link type.
func parseHardwarePorts(out string) adapterTable {
	var (
		table adapterTable
		cur   *adapter
	)
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		k, v, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		switch strings.TrimSpace(k) {
		case "Hardware Port":
			table = append(table, adapter{Description: v, Type: v, Physical: true})
			cur = &table[len(table)-1]
		case "Device":
			if cur != nil {
				cur.Name = v
			}
		case "Ethernet Address":
			if cur != nil && v != "N/A" {
				cur.MAC = v
			}
		}
	}
	return table
}

// parseLsblkModel returns the model of the first non-removable disk in
// `lsblk -dnP -o NAME,MODEL,RM` output.
func parseLsblkModel(out string) string {
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		fields := make(map[string]string)
		for _, m := range lsblkPairRe.FindAllStringSubmatch(sc.Text(), -1) {
			fields[m[1]] = m[2]
		}
		if fields["RM"] != "0" {
			continue
		}
		if model := strings.TrimSpace(fields["MODEL"]); model != "" {
			return model
		}
	}
	return ""
}

// parseCIMDate turns a CIM_DATETIME such as "20210301000000.000000+000"
// into "2021-03-01". Anything else is returned unchanged.
func parseCIMDate(v string) string {
	v = strings.TrimSpace(v)
	if len(v) < 8 {
		return v
	}
	for _, c := range v[:8] {
		if c < '0' || c > '9' {
			return v
		}
	}
	return v[0:4] + "-" + v[4:6] + "-" + v[6:8]
}

// firstLine returns the first non-blank line, trimmed. Used for single
// value command output such as a PowerShell property.
func firstLine(out string) string {
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line
		}
	}
	return ""
}
