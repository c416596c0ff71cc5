package ir

// Equal reports whether a and b describe the same type.
//
// Descriptors are compared structurally: kinds, simple names, namespaces,
// ranks, generic arguments and the definition flag. Assembly identities are
// compared by their effective value (see TypeDescriptor.Assembly) at each
// node, including every declaring type of a nesting chain, so an identity
// inherited by convention equals one set explicitly.
func Equal(a, b TypeDescriptor) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}
	if a.Kind() != b.Kind() || a.Assembly() != b.Assembly() {
		return false
	}

	switch x := a.(type) {
	case *NamedDescriptor:
		return sameChain(x, b.(*NamedDescriptor))
	case *GenericDescriptor:
		y := b.(*GenericDescriptor)
		if x.Definition != y.Definition || len(x.Args) != len(y.Args) {
			return false
		}
		if !sameChain(x.Type, y.Type) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case *GenericParameterDescriptor:
		y := b.(*GenericParameterDescriptor)
		return x.Name == y.Name && x.Position == y.Position
	case *ArrayDescriptor:
		if x.Rank != b.(*ArrayDescriptor).Rank {
			return false
		}
	}

	ea, _ := Elem(a)
	eb, _ := Elem(b)
	return Equal(ea, eb)
}

// sameChain compares two nesting chains by simple name, namespace and
// effective assembly.
func sameChain(a, b *NamedDescriptor) bool {
	for a != nil && b != nil {
		if a.Name != b.Name || a.Namespace != b.Namespace || a.Assembly() != b.Assembly() {
			return false
		}
		a, b = a.DeclaringType, b.DeclaringType
	}
	return a == nil && b == nil
}
