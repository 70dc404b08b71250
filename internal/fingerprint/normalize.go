// Package fingerprint turns a raw hardware.AttributeSet into the canonical
// payload that is hashed into the unique code.
package fingerprint

import (
	"net"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tusharlock10/sentinel-hwid/internal/hardware"
)

// NetworkInterface is a physical interface with its canonical MAC.
type NetworkInterface struct {
	Name string
	MAC  string
}

// Item is one report line: a canonical value with the interface it came
// from, if any. Value is empty for an unavailable attribute.
type Item struct {
	Kind   hardware.Kind
	Source string
	Value  string
}

// Normalized holds canonical attribute values. An empty string (or an empty
// MACs slice) is the placeholder for an unavailable attribute.
type Normalized struct {
	MotherboardSerial string
	MotherboardUUID   string
	// MACs is deduplicated and sorted; Interfaces keeps collection order
	// for display.
	MACs          []string
	Interfaces    []NetworkInterface
	CPUPhysicalID string
	DiskModel     string
	ProductModel  string

	// Items lists primary then secondary attributes in collection order,
	// one per MAC address. Without any MAC a single empty MAC item stands in.
	Items []Item
}

// placeholders are values firmware vendors leave in unprogrammed DMI/SMBIOS
// fields. Compared case-insensitively after cleaning.
var placeholders = map[string]struct{}{
	"to be filled by o.e.m.":   {},
	"to be filled by oem":      {},
	"default string":           {},
	"not specified":            {},
	"not applicable":           {},
	"not available":            {},
	"none":                     {},
	"n/a":                      {},
	"na":                       {},
	"null":                     {},
	"unknown":                  {},
	"undefined":                {},
	"invalid":                  {},
	"oem":                      {},
	"o.e.m.":                   {},
	"system serial number":     {},
	"system product name":      {},
	"base board serial number": {},
	"base board product name":  {},
	"chassis serial number":    {},
	"serial number":            {},
	"0123456789":               {},
	"1234567890":               {},
}

var (
	hexLikeRe     = regexp.MustCompile(`^[0-9A-Fa-f]+$`)
	repeatedRe    = regexp.MustCompile(`^(?:0+|[Ff]+)$`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	uuidSeparator = strings.NewReplacer("-", "", "{", "", "}", "")
)

// Normalize canonicalizes every available attribute in set. Unavailable
// attributes and firmware placeholders become empty values.
func Normalize(set hardware.AttributeSet) Normalized {
	var n Normalized

	seen := make(map[string]struct{})
	for _, a := range set.Primary() {
		v := Value(a.Kind, a)
		switch a.Kind {
		case hardware.KindMotherboardSerial:
			n.MotherboardSerial = v
		case hardware.KindMotherboardUUID:
			n.MotherboardUUID = v
		case hardware.KindMACAddress:
			if v == "" {
				continue
			}
			n.Interfaces = append(n.Interfaces, NetworkInterface{Name: a.Source, MAC: v})
			if _, dup := seen[v]; !dup {
				seen[v] = struct{}{}
				n.MACs = append(n.MACs, v)
			}
		}
		n.Items = append(n.Items, Item{Kind: a.Kind, Source: a.Source, Value: v})
	}
	if len(n.Interfaces) == 0 {
		n.Items = append(n.Items, Item{Kind: hardware.KindMACAddress})
	}
	sort.Strings(n.MACs)

	for _, a := range set.Secondary() {
		v := Value(a.Kind, a)
		switch a.Kind {
		case hardware.KindCPUPhysicalID:
			n.CPUPhysicalID = v
		case hardware.KindDiskModel:
			n.DiskModel = v
		case hardware.KindProductModel:
			n.ProductModel = v
		}
		n.Items = append(n.Items, Item{Kind: a.Kind, Value: v})
	}

	return n
}

// Value returns the canonical form of a single attribute, or "" when it is
// unavailable or a placeholder.
func Value(kind hardware.Kind, a hardware.Attribute) string {
	if !a.Available {
		return ""
	}
	v := clean(a.Value)
	if v == "" {
		return ""
	}
	if IsPlaceholder(v) {
		logrus.WithFields(logrus.Fields{
			"attribute": kind.String(),
			"value":     v,
		}).WithError(hardware.ErrPlaceholder).Warn("Hardware attribute ignored")
		return ""
	}

	switch kind {
	case hardware.KindMACAddress:
		return canonicalMAC(v)
	case hardware.KindMotherboardUUID:
		return canonicalUUID(v)
	default:
		return upperIfHex(v)
	}
}

// IsPlaceholder reports whether v is a known firmware filler value or a run
// of zeros or Fs (the blank UUID patterns), ignoring separators.
func IsPlaceholder(v string) bool {
	if _, ok := placeholders[strings.ToLower(v)]; ok {
		return true
	}
	bare := uuidSeparator.Replace(v)
	return len(bare) >= 4 && repeatedRe.MatchString(bare)
}

// clean trims whitespace and NULs, strips surrounding quotes and collapses
// internal whitespace runs.
func clean(v string) string {
	v = strings.Trim(v, " \t\r\n\x00")
	for len(v) >= 2 {
		first, last := v[0], v[len(v)-1]
		if (first == '"' || first == '\'') && first == last {
			v = strings.Trim(v[1:len(v)-1], " \t\r\n\x00")
			continue
		}
		break
	}
	return whitespaceRe.ReplaceAllString(v, " ")
}

func canonicalMAC(v string) string {
	hw, err := net.ParseMAC(v)
	if err != nil {
		return ""
	}
	return strings.ToUpper(hw.String())
}

func canonicalUUID(v string) string {
	id, err := uuid.Parse(v)
	if err != nil {
		return upperIfHex(v)
	}
	return strings.ToUpper(id.String())
}

func upperIfHex(v string) string {
	if hexLikeRe.MatchString(uuidSeparator.Replace(v)) {
		return strings.ToUpper(v)
	}
	return v
}
