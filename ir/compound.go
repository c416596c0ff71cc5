package ir

// PointerDescriptor represents an unmanaged pointer (T*).
type PointerDescriptor struct {
	compoundBase
}

// Kind returns KindPointer.
func (d *PointerDescriptor) Kind() DescriptorKind { return KindPointer }

// Ptr returns a PointerDescriptor for element.
func Ptr(element TypeDescriptor) *PointerDescriptor {
	return &PointerDescriptor{compoundBase{Element: element}}
}

// ByRefDescriptor represents a managed reference (T&).
type ByRefDescriptor struct {
	compoundBase
}

// Kind returns KindByRef.
func (d *ByRefDescriptor) Kind() DescriptorKind { return KindByRef }

// ByRef returns a ByRefDescriptor for element.
func ByRef(element TypeDescriptor) *ByRefDescriptor {
	return &ByRefDescriptor{compoundBase{Element: element}}
}

// SZArrayDescriptor represents a single-dimension, zero-lower-bound array (T[]).
type SZArrayDescriptor struct {
	compoundBase
}

// Kind returns KindSZArray.
func (d *SZArrayDescriptor) Kind() DescriptorKind { return KindSZArray }

// SZArray returns an SZArrayDescriptor for element.
func SZArray(element TypeDescriptor) *SZArrayDescriptor {
	return &SZArrayDescriptor{compoundBase{Element: element}}
}

// ArrayDescriptor represents an array with an explicit rank.
//
// Rank 1 is distinct from SZArrayDescriptor: it renders as T[*] because its
// lower bound is not fixed at zero. Rank must be at least 1.
type ArrayDescriptor struct {
	compoundBase

	// Rank is the number of dimensions.
	Rank int
}

// Kind returns KindArray.
func (d *ArrayDescriptor) Kind() DescriptorKind { return KindArray }

// Array returns an ArrayDescriptor of the given rank.
func Array(element TypeDescriptor, rank int) *ArrayDescriptor {
	return &ArrayDescriptor{compoundBase: compoundBase{Element: element}, Rank: rank}
}
