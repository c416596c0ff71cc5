package ir

// Catalog is the set of descriptors a provider extracted from one load.
type Catalog struct {
	// Package is the first requested package.
	Package PackageInfo

	// Types contains the declared named types, in provider order.
	// Generic declarations appear as generic definitions.
	Types []TypeDescriptor

	// Members contains the typed members (struct fields) of the declared types.
	Members []Member

	// Warnings contains non-fatal issues encountered while building the catalog.
	Warnings []Warning
}

// Member is a typed member of a declared type.
type Member struct {
	// Owner is the declared type the member belongs to.
	Owner TypeDescriptor

	// Name is the member name.
	Name string

	// Type is the member's type.
	Type TypeDescriptor
}

// AddType adds a declared type to the catalog.
func (c *Catalog) AddType(t TypeDescriptor) {
	c.Types = append(c.Types, t)
}

// AddMember adds a member to the catalog.
func (c *Catalog) AddMember(m Member) {
	c.Members = append(c.Members, m)
}

// AddWarning adds a warning to the catalog.
func (c *Catalog) AddWarning(w Warning) {
	c.Warnings = append(c.Warnings, w)
}

// FindType looks up a declared type by namespace and simple name.
// Returns nil if not found.
func (c *Catalog) FindType(namespace, name string) TypeDescriptor {
	for _, t := range c.Types {
		n := RootName(t)
		if n != nil && n.Namespace == namespace && n.Name == name {
			return t
		}
	}
	return nil
}

// MembersOf returns the members declared on owner, in declaration order.
func (c *Catalog) MembersOf(owner TypeDescriptor) []Member {
	var out []Member
	for _, m := range c.Members {
		if m.Owner == owner {
			out = append(out, m)
		}
	}
	return out
}

// RootName returns the named type at the root of d: the definition of a
// generic, the innermost element of a compound type. Returns nil for
// generic parameters.
func RootName(d TypeDescriptor) *NamedDescriptor {
	for {
		switch t := d.(type) {
		case *NamedDescriptor:
			return t
		case *GenericDescriptor:
			return t.Type
		case *GenericParameterDescriptor:
			return nil
		}
		elem, ok := Elem(d)
		if !ok {
			return nil
		}
		d = elem
	}
}
