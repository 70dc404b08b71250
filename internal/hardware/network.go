package hardware

import (
	"bytes"
	"context"
	"net"
	"sort"
	"strings"

	gnet "github.com/shirou/gopsutil/v4/net"
)

// virtualInterfacePrefixes lists interface name prefixes used by virtual,
// VPN, bridge and container adapters. They appear and disappear with
// software, so they must not feed the fingerprint.
var virtualInterfacePrefixes = []string{
	// loopback
	"lo",
	// VPN and tunnels
	"utun", "tun", "tap", "ipsec", "ppp", "gif", "stf", "wg", "zt", "tailscale",
	// containers and bridges
	"docker", "br-", "veth", "cni", "flannel", "cali", "virbr", "bridge",
	// hypervisor host adapters
	"vmnet", "vboxnet", "vnic", "vnet", "vethernet",
	// Apple peer-to-peer and companion links
	"awdl", "llw", "anpi", "ap1",
}

// virtualAdapterMarkers are matched against adapter descriptions and
// friendly names. Windows names adapters "Ethernet 2" or "VMware Network
// Adapter VMnet8", and macOS hardware ports are named "iPhone USB", so the
// prefixes above do not catch them.
var virtualAdapterMarkers = []string{
	"vmware", "virtualbox", "hyper-v", "virtual", "parallels",
	"tap-windows", "tap adapter", "wintun", "wireguard", "openvpn",
	"tailscale", "zerotier", "fortinet", "vpn", "npcap", "loopback",
	"iphone", "ipad", "bluetooth pan", "thunderbolt bridge",
}

var wirelessMarkers = []string{"wi-fi", "wifi", "wireless", "802.11", "wlan"}

// PhysicalInterfaces keeps only interfaces that look like real hardware and
// orders them by interface index, then name.
func PhysicalInterfaces(ifaces []Interface) []Interface {
	var out []Interface
	for _, ifc := range ifaces {
		if isPhysical(ifc) {
			out = append(out, ifc)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Index != out[j].Index {
			return out[i].Index < out[j].Index
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func isPhysical(ifc Interface) bool {
	if ifc.Virtual {
		return false
	}
	for _, f := range ifc.Flags {
		if f == "loopback" || f == "pointtopoint" {
			return false
		}
	}
	if isVirtualInterfaceName(ifc.Name) || hasMarker(ifc.Name, virtualAdapterMarkers) {
		return false
	}
	return isHardwareMAC(ifc.MAC)
}

func isVirtualInterfaceName(name string) bool {
	lower := strings.ToLower(name)
	for _, prefix := range virtualInterfacePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

func hasMarker(s string, markers []string) bool {
	lower := strings.ToLower(s)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// isHardwareMAC rejects empty, all-zero, multicast/broadcast and locally
// administered addresses. Hypervisors and VPN drivers hand out locally
// administered MACs; burned-in ones are universally administered.
func isHardwareMAC(mac string) bool {
	hw, err := net.ParseMAC(strings.TrimSpace(mac))
	if err != nil || len(hw) == 0 {
		return false
	}
	zero := true
	for _, b := range hw {
		if b != 0 {
			zero = false
			break
		}
	}
	if zero {
		return false
	}
	if hw[0]&0x01 != 0 || hw[0]&0x02 != 0 {
		return false
	}
	return true
}

// guessInterfaceType names the link type from the interface name alone.
// Platforms that know better overwrite it.
func guessInterfaceType(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lower, "wl"), hasMarker(lower, wirelessMarkers):
		return "Wi-Fi"
	case strings.HasPrefix(lower, "en"), strings.HasPrefix(lower, "eth"):
		return "Ethernet"
	default:
		return ""
	}
}

// adapter is OS metadata about one network adapter: WMI Win32_NetworkAdapter
// rows on Windows, `networksetup -listallhardwareports` entries on macOS.
type adapter struct {
	Name        string
	MAC         string
	Description string
	Type        string
	Physical    bool
}

// pnpAdapter builds an adapter from Win32_NetworkAdapter columns. Software
// adapters (VPN, hypervisor switches) enumerate under the ROOT\ PnP tree.
func pnpAdapter(name, mac, description, pnpDeviceID string, physical *bool) adapter {
	a := adapter{
		Name:        name,
		MAC:         mac,
		Description: description,
		Physical:    !strings.HasPrefix(strings.ToUpper(pnpDeviceID), `ROOT\`),
	}
	if physical != nil && !*physical {
		a.Physical = false
	}
	if hasMarker(description, wirelessMarkers) {
		a.Type = "Wi-Fi"
	} else if a.Physical {
		a.Type = "Ethernet"
	}
	return a
}

type adapterTable []adapter

// lookup finds the adapter for ifc by name, then by MAC address.
func (t adapterTable) lookup(ifc Interface) (adapter, bool) {
	for _, a := range t {
		if a.Name != "" && strings.EqualFold(a.Name, ifc.Name) {
			return a, true
		}
	}
	hw, err := net.ParseMAC(strings.TrimSpace(ifc.MAC))
	if err != nil {
		return adapter{}, false
	}
	for _, a := range t {
		other, err := net.ParseMAC(strings.TrimSpace(a.MAC))
		if err == nil && bytes.Equal(hw, other) {
			return a, true
		}
	}
	return adapter{}, false
}

// annotate marks ifc virtual when its adapter is a software device or
// carries a virtual description. Interfaces without an adapter entry are
// left to the generic filter.
func (t adapterTable) annotate(ifc *Interface) {
	a, ok := t.lookup(*ifc)
	if !ok {
		return
	}
	if a.Type != "" {
		ifc.Type = a.Type
	}
	if !a.Physical || hasMarker(a.Description, virtualAdapterMarkers) {
		ifc.Virtual = true
	}
}

// systemInterfaces enumerates interfaces through gopsutil and lets the
// platform annotate them with what it knows about the backing device.
func systemInterfaces(ctx context.Context, annotate func(*Interface)) ([]Interface, error) {
	stats, err := gnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Interface, 0, len(stats))
	for _, s := range stats {
		ifc := Interface{
			Index: s.Index,
			Name:  s.Name,
			MAC:   s.HardwareAddr,
			Flags: s.Flags,
			Type:  guessInterfaceType(s.Name),
		}
		if annotate != nil {
			annotate(&ifc)
		}
		out = append(out, ifc)
	}
	return out, nil
}
