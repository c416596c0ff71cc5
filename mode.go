package tyname

import (
	"fmt"
	"strings"
)

// Mode selects how much of a type name Format produces.
type Mode int

const (
	// Display is human-readable and permissive: unbound generic parameters
	// are rendered by name and generic definitions list their placeholders.
	Display Mode = iota

	// FullName is the strict, namespace-qualified name. Types that still
	// contain unbound generic parameters have no FullName unless they are
	// themselves a generic definition. Generic arguments are rendered
	// assembly-qualified so the result can be reparsed unambiguously.
	FullName

	// AssemblyQualified is FullName followed by the defining assembly identity.
	AssemblyQualified
)

// String returns the canonical text form of the mode.
func (m Mode) String() string {
	switch m {
	case Display:
		return "display"
	case FullName:
		return "fullname"
	case AssemblyQualified:
		return "assemblyqualified"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a text form to a Mode. Matching is case-insensitive and
// accepts the short aliases "full" and "aq".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "display":
		return Display, nil
	case "fullname", "full":
		return FullName, nil
	case "assemblyqualified", "aq":
		return AssemblyQualified, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (expected display, fullname or assemblyqualified)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.valid() {
		return nil, fmt.Errorf("invalid mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

func (m Mode) valid() bool {
	return m >= Display && m <= AssemblyQualified
}

// strict reports whether the mode refuses unbound generic parameters.
func (m Mode) strict() bool {
	return m != Display
}

// argumentMode is the mode generic arguments are rendered in. A name inside
// a generic instantiation must be self-qualifying, so FullName arguments are
// assembly-qualified.
func (m Mode) argumentMode() Mode {
	if m == FullName {
		return AssemblyQualified
	}
	return m
}
