package index

// Slot identifies one half of the blue/green index pair.
type Slot int

const (
	SlotNone Slot = iota
	SlotPrimary
	SlotSecondary
)

func (s Slot) String() string {
	switch s {
	case SlotPrimary:
		return "primary"
	case SlotSecondary:
		return "secondary"
	default:
		return "none"
	}
}

// PhysicalName returns the concrete index name of slot for logical,
// e.g. primary_products. SlotNone has no physical name.
func PhysicalName(logical string, s Slot) string {
	if s == SlotNone {
		return ""
	}
	return s.String() + "_" + logical
}

// SelectSlots picks the slot to build and the slot to retire given the
// currently live one. The target is never the live slot.
func SelectSlots(live Slot) (target, stale Slot) {
	if live == SlotPrimary {
		return SlotSecondary, SlotPrimary
	}
	return SlotPrimary, SlotSecondary
}
