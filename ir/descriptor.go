package ir

// DescriptorKind identifies the variant of a type descriptor.
type DescriptorKind int

const (
	// Root descriptors (end a compound chain)
	KindNamed            DescriptorKind = iota // Named type, possibly nested
	KindGeneric                                // Generic instantiation or definition
	KindGenericParameter                       // Unbound generic placeholder

	// Compound descriptors (wrap exactly one element)
	KindPointer // Pointer to T (T*)
	KindByRef   // By-reference T (T&)
	KindSZArray // Single-dimension zero-lower-bound array (T[])
	KindArray   // Array with explicit rank (T[*], T[,], ...)
)

// String returns the string representation of the descriptor kind.
func (k DescriptorKind) String() string {
	switch k {
	case KindNamed:
		return "Named"
	case KindGeneric:
		return "Generic"
	case KindGenericParameter:
		return "GenericParameter"
	case KindPointer:
		return "Pointer"
	case KindByRef:
		return "ByRef"
	case KindSZArray:
		return "SZArray"
	case KindArray:
		return "Array"
	default:
		return "Unknown"
	}
}

// IsCompound reports whether descriptors of this kind wrap an element type.
func (k DescriptorKind) IsCompound() bool {
	switch k {
	case KindPointer, KindByRef, KindSZArray, KindArray:
		return true
	}
	return false
}

// TypeDescriptor is the base interface for all type descriptors.
// Descriptors are read-only once built and may be shared freely across goroutines.
type TypeDescriptor interface {
	// Kind returns the descriptor kind for type switching.
	Kind() DescriptorKind

	// Assembly returns the identity of the defining module/assembly.
	// Descriptors without an explicit identity inherit one by convention:
	// compound types from their element, generic types from their
	// definition, nested types from their declaring type.
	Assembly() string

	// Ensure only types in this package can implement TypeDescriptor.
	sealed()
}

// compoundBase carries the fields shared by pointer, by-ref and array descriptors.
type compoundBase struct {
	// Element is the wrapped type.
	Element TypeDescriptor

	// AssemblyIdentity overrides the identity inherited from Element.
	AssemblyIdentity string
}

// Assembly returns the explicit identity or the element's.
func (c compoundBase) Assembly() string {
	if c.AssemblyIdentity != "" {
		return c.AssemblyIdentity
	}
	if c.Element == nil {
		return ""
	}
	return c.Element.Assembly()
}

func (compoundBase) sealed() {}

// Elem returns the element type of a compound descriptor.
// The second result is false for root descriptors.
func Elem(d TypeDescriptor) (TypeDescriptor, bool) {
	switch t := d.(type) {
	case *PointerDescriptor:
		return t.Element, true
	case *ByRefDescriptor:
		return t.Element, true
	case *SZArrayDescriptor:
		return t.Element, true
	case *ArrayDescriptor:
		return t.Element, true
	}
	return nil, false
}
