package fingerprint

import "strings"

const (
	fieldSeparator = "|"
	listSeparator  = ","
)

// Payload is the canonical byte string fed to the digest.
type Payload []byte

func (p Payload) String() string { return string(p) }

var escaper = strings.NewReplacer(`\`, `\\`, `|`, `\|`, `,`, `\,`)

// Aggregate concatenates the normalized fields in the fixed order
// serial|uuid|macs|cpu|disk|product. Absent fields stay empty so the
// separator count never changes.
func Aggregate(n Normalized) Payload {
	macs := make([]string, len(n.MACs))
	for i, m := range n.MACs {
		macs[i] = escaper.Replace(m)
	}

	fields := []string{
		escaper.Replace(n.MotherboardSerial),
		escaper.Replace(n.MotherboardUUID),
		strings.Join(macs, listSeparator),
		escaper.Replace(n.CPUPhysicalID),
		escaper.Replace(n.DiskModel),
		escaper.Replace(n.ProductModel),
	}
	return Payload(strings.Join(fields, fieldSeparator))
}
