package virt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchHypervisor(t *testing.T) {
	cases := []struct {
		values []string
		want   string
	}{
		{[]string{"VMware, Inc.", "VMware Virtual Platform"}, "vmware"},
		{[]string{"innotek GmbH", "VirtualBox"}, "vbox"},
		{[]string{"QEMU", "Standard PC (Q35 + ICH9, 2009)"}, "qemu"},
		{[]string{"Microsoft Corporation", "Virtual Machine"}, "hyperv"},
		{[]string{"Xen", "HVM domU"}, "xen"},
		{[]string{"", "VirtualMac2,1"}, "apple"},
		{[]string{"Dell Inc.", "OptiPlex 7090"}, ""},
		{[]string{"LENOVO", "20XW0026GE"}, ""},
		{nil, ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, matchHypervisor(tc.values...), "%v", tc.values)
	}
}

func TestResult(t *testing.T) {
	assert.Equal(t, "none", Result{}.String())
	assert.False(t, Result{}.Guest())

	r := Result{System: "kvm", Role: RoleGuest}
	assert.True(t, r.Guest())
	assert.Equal(t, "kvm (guest)", r.String())

	assert.Equal(t, "docker", Result{System: "docker"}.String())
}

func TestNewResult(t *testing.T) {
	assert.Equal(t, Result{System: "kvm", Role: RoleGuest}, newResult("kvm", "guest"))
	assert.Equal(t, Result{System: "kvm", Role: RoleHost}, newResult("kvm", "host"))
	assert.Equal(t, Result{System: "docker"}, newResult("docker", "container"))
	assert.Equal(t, Result{}, newResult("", "guest"))

	host := newResult("kvm", "host")
	assert.False(t, host.Guest())
	assert.Equal(t, "kvm (host)", host.String())
}

func TestDetectNeverFails(t *testing.T) {
	// The value depends on the host; only the call contract is checked.
	res := Detect(context.Background())
	if res.System == "" {
		assert.Empty(t, res.Role)
	}
}
