// Package virt reports whether the machine runs as a virtual machine guest.
// The result is informational only and never feeds the unique code.
package virt

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

// Result describes the detected virtualization environment. System is empty
// on bare metal or when detection is not possible.
type Result struct {
	System string `json:"system,omitempty"`
	Role   string `json:"role,omitempty"`
}

// Guest reports whether the machine was detected as a virtual machine guest.
// A hypervisor host (RoleHost) runs on real hardware.
func (r Result) Guest() bool {
	return r.Role == RoleGuest
}

func (r Result) String() string {
	if r.System == "" {
		return "none"
	}
	if r.Role == "" {
		return r.System
	}
	return r.System + " (" + r.Role + ")"
}

const (
	RoleGuest = "guest"
	RoleHost  = "host"
)

// newResult drops roles other than guest and host, and any role without a
// system.
func newResult(system, role string) Result {
	if system == "" || (role != RoleGuest && role != RoleHost) {
		role = ""
	}
	return Result{System: system, Role: role}
}

// Detect checks the platform for a hypervisor. Failures are logged and
// reported as an empty Result.
func Detect(ctx context.Context) Result {
	res, err := detect(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Virtualization detection failed")
		return Result{}
	}
	if res.System != "" {
		logrus.WithFields(logrus.Fields{
			"system": res.System,
			"role":   res.Role,
		}).Debug("Virtualization detected")
	}
	return res
}

// hypervisorVendors maps substrings of firmware vendor and model strings to
// a hypervisor name.
var hypervisorVendors = []struct {
	match  string
	system string
}{
	{"vmware", "vmware"},
	{"virtualbox", "vbox"},
	{"innotek", "vbox"},
	{"qemu", "qemu"},
	{"kvm", "kvm"},
	{"bochs", "bochs"},
	{"xen", "xen"},
	{"hvm domu", "xen"},
	{"parallels", "parallels"},
	{"virtual machine", "hyperv"},
	{"microsoft corporation virtual", "hyperv"},
	{"amazon ec2", "kvm"},
	{"google compute engine", "kvm"},
	{"virtualmac", "apple"},
}

// matchHypervisor looks for a known hypervisor name in any of the given
// firmware strings.
func matchHypervisor(values ...string) string {
	for _, v := range values {
		lower := strings.ToLower(v)
		if lower == "" {
			continue
		}
		for _, h := range hypervisorVendors {
			if strings.Contains(lower, h.match) {
				return h.system
			}
		}
	}
	return ""
}
