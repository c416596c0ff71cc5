package tyname

import (
	"strings"

	"github.com/broady/tyname/ir"
)

// Format renders d as a type name in the given mode.
//
// In FullName and AssemblyQualified modes, a descriptor that still contains
// unbound generic parameters anywhere in its structure has no name, and
// Format returns ("", false); the one exception is a generic definition,
// which renders without its placeholder list. Display always succeeds.
//
// Format panics with a *ContractError if d fails ir.Validate or mode is not
// one of the defined modes.
func Format(d ir.TypeDescriptor, mode Mode) (string, bool) {
	if !mode.valid() {
		panic(&ContractError{Errors: []error{&ir.ValidationError{Code: "invalid_mode", Message: "invalid format mode " + mode.String()}}})
	}
	if errs := ir.Validate(d); len(errs) > 0 {
		panic(&ContractError{Errors: errs})
	}
	if mode.strict() && !ir.IsGenericDefinition(d) && ir.ContainsGenericParameters(d) {
		return "", false
	}

	var b nameBuilder
	b.appendType(d, mode)
	return b.String(), true
}

// appendType writes d: nesting chain, generic arguments, compound
// decorations, then the assembly qualifier.
func (b *nameBuilder) appendType(d ir.TypeDescriptor, mode Mode) {
	// Compound decoration is a suffix, so peel it first (outermost first)
	// and re-apply it after the name.
	var layers []ir.TypeDescriptor
	root := d
	for {
		elem, ok := ir.Elem(root)
		if !ok {
			break
		}
		layers = append(layers, root)
		root = elem
	}

	switch r := root.(type) {
	case *ir.GenericParameterDescriptor:
		b.append(r.Name)
	case *ir.NamedDescriptor:
		b.appendNestedName(r)
	case *ir.GenericDescriptor:
		b.appendNestedName(r.Type)
		// Placeholder lists are diagnostic only.
		if !r.Definition || mode == Display {
			b.appendGenericArguments(r.Args, mode.argumentMode())
		}
	}

	for i := len(layers) - 1; i >= 0; i-- {
		b.appendDecoration(layers[i])
	}

	// The identity comes from d itself, not the peeled root.
	if mode == AssemblyQualified {
		if asm := d.Assembly(); asm != "" {
			b.append(", ")
			b.append(asm)
		}
	}
}

// appendNestedName writes Namespace.Outer+Inner+Innermost for n.
func (b *nameBuilder) appendNestedName(n *ir.NamedDescriptor) {
	var chain []*ir.NamedDescriptor
	for cur := n; cur != nil; cur = cur.DeclaringType {
		chain = append(chain, cur)
	}

	outermost := len(chain) - 1
	for i := outermost; i >= 0; i-- {
		cur := chain[i]
		if i == outermost {
			if cur.Namespace != "" {
				b.append(cur.Namespace)
				b.appendByte('.')
			}
		} else {
			b.appendByte('+')
		}
		b.append(cur.Name)
	}
}

func (b *nameBuilder) appendGenericArguments(args []ir.TypeDescriptor, mode Mode) {
	b.openGenericArguments()
	for _, arg := range args {
		b.openGenericArgument()
		b.appendType(arg, mode)
		b.closeGenericArgument()
	}
	b.closeGenericArguments()
}

func (b *nameBuilder) appendDecoration(layer ir.TypeDescriptor) {
	switch t := layer.(type) {
	case *ir.PointerDescriptor:
		b.appendByte('*')
	case *ir.ByRefDescriptor:
		b.appendByte('&')
	case *ir.SZArrayDescriptor:
		b.append("[]")
	case *ir.ArrayDescriptor:
		if t.Rank == 1 {
			b.append("[*]")
			return
		}
		b.appendByte('[')
		b.append(strings.Repeat(",", t.Rank-1))
		b.appendByte(']')
	}
}
