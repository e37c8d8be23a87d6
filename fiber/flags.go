package fiber

import "strings"

// Flags records the mutations a node needs at commit time.
type Flags uint16

const NoFlags Flags = 0

const (
	Placement Flags = 1 << iota
	Update
	ChildDeletion
	Snapshot
	Callback

	// MutationMask covers the flags the mutation pass acts on.
	MutationMask = Placement | Update | ChildDeletion
)

func (f Flags) Has(flag Flags) bool {
	return f&flag != 0
}

func (f *Flags) set(flag Flags) {
	*f |= flag
}

func (f *Flags) clear(flag Flags) {
	*f &^= flag
}

var flagNames = []struct {
	f    Flags
	name string
}{
	{Placement, "placement"},
	{Update, "update"},
	{ChildDeletion, "deletion"},
	{Snapshot, "snapshot"},
	{Callback, "callback"},
}

func (f Flags) String() string {
	if f == NoFlags {
		return "none"
	}
	var parts []string
	for _, fn := range flagNames {
		if f.Has(fn.f) {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}

// Kind identifies what a node renders.
type Kind uint8

const (
	KindHostRoot Kind = iota
	KindHost
	KindComposite
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindHostRoot:
		return "root"
	case KindHost:
		return "host"
	case KindComposite:
		return "composite"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "root":
		return KindHostRoot, true
	case "host", "":
		return KindHost, true
	case "composite":
		return KindComposite, true
	case "text":
		return KindText, true
	}
	return 0, false
}
