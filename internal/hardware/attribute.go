package hardware

// Kind identifies one hardware attribute that feeds the fingerprint.
type Kind int

const (
	KindMotherboardSerial Kind = iota
	KindMotherboardUUID
	KindMACAddress
	KindCPUPhysicalID
	KindDiskModel
	KindProductModel
)

// Kinds lists every attribute kind in collection order.
var Kinds = []Kind{
	KindMotherboardSerial,
	KindMotherboardUUID,
	KindMACAddress,
	KindCPUPhysicalID,
	KindDiskModel,
	KindProductModel,
}

func (k Kind) String() string {
	switch k {
	case KindMotherboardSerial:
		return "motherboard_serial"
	case KindMotherboardUUID:
		return "motherboard_uuid"
	case KindMACAddress:
		return "mac_address"
	case KindCPUPhysicalID:
		return "cpu_physical_id"
	case KindDiskModel:
		return "disk_model"
	case KindProductModel:
		return "product_model"
	default:
		return "unknown"
	}
}

// Label is the human-readable name used in reports.
func (k Kind) Label() string {
	switch k {
	case KindMotherboardSerial:
		return "Motherboard Serial"
	case KindMotherboardUUID:
		return "Motherboard UUID"
	case KindMACAddress:
		return "Network Interface"
	case KindCPUPhysicalID:
		return "CPU Physical ID"
	case KindDiskModel:
		return "Disk Model"
	case KindProductModel:
		return "Product Model"
	default:
		return "Unknown"
	}
}

// Primary reports whether k is a primary (uniqueness-bearing) attribute.
func (k Kind) Primary() bool {
	return k == KindMotherboardSerial || k == KindMotherboardUUID || k == KindMACAddress
}

// Attribute is one collected hardware value.
// Source holds the network interface name for MAC attributes and is never hashed.
type Attribute struct {
	Kind      Kind
	Value     string
	Available bool
	Source    string
	Err       error
}

func available(kind Kind, value, source string) Attribute {
	return Attribute{Kind: kind, Value: value, Available: true, Source: source}
}

func unavailable(kind Kind, err error) Attribute {
	if err == nil {
		err = ErrUnavailable
	}
	return Attribute{Kind: kind, Err: &QueryError{Kind: kind, Err: err}}
}

// AttributeSet is the ordered output of one collection run. System is the
// informational summary gathered alongside; it never reaches the payload.
type AttributeSet struct {
	Attributes []Attribute
	System     SystemInfo
}

// Get returns the first attribute of the given kind. The zero Attribute
// (unavailable) is returned when none was collected.
func (s AttributeSet) Get(kind Kind) Attribute {
	for _, a := range s.Attributes {
		if a.Kind == kind {
			return a
		}
	}
	return Attribute{Kind: kind}
}

// All returns every attribute of the given kind in collection order.
func (s AttributeSet) All(kind Kind) []Attribute {
	var out []Attribute
	for _, a := range s.Attributes {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

// Primary returns motherboard serial/UUID and MAC attributes.
func (s AttributeSet) Primary() []Attribute {
	var out []Attribute
	for _, a := range s.Attributes {
		if a.Kind.Primary() {
			out = append(out, a)
		}
	}
	return out
}

// Secondary returns CPU, disk and product attributes.
func (s AttributeSet) Secondary() []Attribute {
	var out []Attribute
	for _, a := range s.Attributes {
		if !a.Kind.Primary() {
			out = append(out, a)
		}
	}
	return out
}
