package ir

// NamedDescriptor represents a named type, optionally nested inside another.
//
// Namespace is only meaningful on the outermost type of a nesting chain;
// Validate rejects a namespace on a type that has a DeclaringType.
type NamedDescriptor struct {
	// Name is the simple name (e.g., "List`1", "Inner").
	Name string

	// Namespace is the dotted namespace of a top-level type (e.g., "System.Collections").
	Namespace string

	// DeclaringType is the enclosing type for nested types, nil for top-level types.
	DeclaringType *NamedDescriptor

	// AssemblyIdentity is the defining assembly (e.g., "Acme, Version=1.0.0.0").
	// Nested types without one inherit the declaring type's.
	AssemblyIdentity string
}

// Kind returns KindNamed.
func (d *NamedDescriptor) Kind() DescriptorKind { return KindNamed }

// Assembly returns the explicit identity or the declaring type's.
func (d *NamedDescriptor) Assembly() string {
	if d.AssemblyIdentity != "" || d.DeclaringType == nil {
		return d.AssemblyIdentity
	}
	return d.DeclaringType.Assembly()
}

// Outermost returns the top-level type of the nesting chain.
func (d *NamedDescriptor) Outermost() *NamedDescriptor {
	n := d
	for n.DeclaringType != nil {
		n = n.DeclaringType
	}
	return n
}

// In returns d with its assembly identity set. It mutates and returns d so it
// can be chained onto a constructor: ir.Named("Acme", "Pair").In("Acme").
func (d *NamedDescriptor) In(assembly string) *NamedDescriptor {
	d.AssemblyIdentity = assembly
	return d
}

func (*NamedDescriptor) sealed() {}

// Named returns a NamedDescriptor for a top-level type.
func Named(namespace, name string) *NamedDescriptor {
	return &NamedDescriptor{Name: name, Namespace: namespace}
}

// Nested returns a NamedDescriptor for a type nested inside outer.
func Nested(outer *NamedDescriptor, name string) *NamedDescriptor {
	return &NamedDescriptor{Name: name, DeclaringType: outer}
}

// GenericDescriptor represents a generic type: a named definition plus an
// ordered list of type arguments.
//
// When Definition is true the descriptor is the generic definition itself and
// Args are its unbound placeholders (normally GenericParameterDescriptors).
// Otherwise it is an instantiation, closed or still open.
type GenericDescriptor struct {
	// Type is the named generic definition (e.g., System.Collections.Generic.List`1).
	Type *NamedDescriptor

	// Args are the type arguments in declaration order.
	Args []TypeDescriptor

	// Definition marks the generic definition (List<T>) as opposed to an instantiation.
	Definition bool

	// AssemblyIdentity overrides the identity inherited from Type.
	AssemblyIdentity string
}

// Kind returns KindGeneric.
func (d *GenericDescriptor) Kind() DescriptorKind { return KindGeneric }

// Assembly returns the explicit identity or the definition's.
func (d *GenericDescriptor) Assembly() string {
	if d.AssemblyIdentity != "" || d.Type == nil {
		return d.AssemblyIdentity
	}
	return d.Type.Assembly()
}

func (*GenericDescriptor) sealed() {}

// Generic returns a GenericDescriptor instantiating def with args.
func Generic(def *NamedDescriptor, args ...TypeDescriptor) *GenericDescriptor {
	return &GenericDescriptor{Type: def, Args: args}
}

// GenericDefinition returns the generic definition of def over the given placeholders.
func GenericDefinition(def *NamedDescriptor, params ...*GenericParameterDescriptor) *GenericDescriptor {
	args := make([]TypeDescriptor, len(params))
	for i, p := range params {
		args[i] = p
	}
	return &GenericDescriptor{Type: def, Args: args, Definition: true}
}

// GenericParameterDescriptor represents an unbound generic placeholder (T, TKey, ...).
// Its nesting chain is itself: it is never namespace-qualified.
type GenericParameterDescriptor struct {
	// Name is the placeholder name.
	Name string

	// Position is the zero-based index in the declaring parameter list.
	Position int

	// AssemblyIdentity is the assembly of the declaring generic, if known.
	AssemblyIdentity string
}

// Kind returns KindGenericParameter.
func (d *GenericParameterDescriptor) Kind() DescriptorKind { return KindGenericParameter }

// Assembly returns the explicit identity.
func (d *GenericParameterDescriptor) Assembly() string { return d.AssemblyIdentity }

func (*GenericParameterDescriptor) sealed() {}

// GenericParam returns a GenericParameterDescriptor.
func GenericParam(name string, position int) *GenericParameterDescriptor {
	return &GenericParameterDescriptor{Name: name, Position: position}
}
