package ir

import (
	"fmt"
	"strings"
)

// ValidationError represents a descriptor contract violation.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks a descriptor for contract violations: nil descriptors or
// elements, non-positive array ranks, generics without arguments, cyclic
// nesting or wrapping, and namespaces on nested types.
// Returns all violations found (not just the first).
func Validate(d TypeDescriptor) []error {
	v := &validator{inStack: make(map[TypeDescriptor]bool)}
	v.walk(d, "type")

	var result []error
	for _, e := range v.errors {
		result = append(result, e)
	}
	return result
}

type validator struct {
	errors  []*ValidationError
	inStack map[TypeDescriptor]bool
}

func (v *validator) fail(code, format string, args ...any) {
	v.errors = append(v.errors, &ValidationError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}

func (v *validator) walk(d TypeDescriptor, path string) {
	if isNil(d) {
		v.fail("nil_descriptor", "%s: descriptor is nil", path)
		return
	}
	if v.inStack[d] {
		v.fail("descriptor_cycle", "%s: descriptor refers back to itself", path)
		return
	}
	v.inStack[d] = true
	defer delete(v.inStack, d)

	switch t := d.(type) {
	case *NamedDescriptor:
		v.checkNesting(t, path)
	case *GenericDescriptor:
		if t.Type == nil {
			v.fail("nil_generic_type", "%s: generic has no definition type", path)
		} else {
			v.checkNesting(t.Type, path)
		}
		if len(t.Args) == 0 {
			v.fail("missing_generic_arguments", "%s: generic has no type arguments", path)
		}
		for i, arg := range t.Args {
			argPath := fmt.Sprintf("%s.args[%d]", path, i)
			if isNil(arg) {
				v.fail("nil_generic_argument", "%s: generic argument is nil", argPath)
				continue
			}
			v.walk(arg, argPath)
		}
	case *GenericParameterDescriptor:
		// Placeholders end the chain.
	case *ArrayDescriptor:
		if t.Rank < 1 {
			v.fail("invalid_rank", "%s: array rank must be at least 1, got %d", path, t.Rank)
		}
		v.walkElement(t.Element, path)
	case *PointerDescriptor, *ByRefDescriptor, *SZArrayDescriptor:
		elem, _ := Elem(t)
		v.walkElement(elem, path)
	default:
		v.fail("unknown_descriptor", "%s: unknown descriptor %T", path, d)
	}
}

func (v *validator) walkElement(elem TypeDescriptor, path string) {
	if isNil(elem) {
		v.fail("nil_element", "%s: compound type has no element", path)
		return
	}
	v.walk(elem, path+".element")
}

// checkNesting walks the declaring-type chain, detecting cycles and
// namespaces set below the outermost type.
func (v *validator) checkNesting(n *NamedDescriptor, path string) {
	visited := make(map[*NamedDescriptor]bool)
	for cur := n; cur != nil; cur = cur.DeclaringType {
		if visited[cur] {
			v.fail("nesting_cycle", "%s: circular nesting detected at %q", path, cur.Name)
			return
		}
		visited[cur] = true
		if cur.DeclaringType != nil && cur.Namespace != "" {
			v.fail("nested_namespace", "%s: nested type %q must not carry namespace %q", path, cur.Name, cur.Namespace)
		}
	}
}

// isNil reports whether d is nil or a typed nil pointer.
func isNil(d TypeDescriptor) bool {
	switch t := d.(type) {
	case nil:
		return true
	case *NamedDescriptor:
		return t == nil
	case *GenericDescriptor:
		return t == nil
	case *GenericParameterDescriptor:
		return t == nil
	case *PointerDescriptor:
		return t == nil
	case *ByRefDescriptor:
		return t == nil
	case *SZArrayDescriptor:
		return t == nil
	case *ArrayDescriptor:
		return t == nil
	}
	return false
}

// ContainsGenericParameters reports whether any unbound generic parameter
// appears anywhere in d, including element and argument positions.
// d must be valid.
func ContainsGenericParameters(d TypeDescriptor) bool {
	switch t := d.(type) {
	case *GenericParameterDescriptor:
		return true
	case *GenericDescriptor:
		for _, arg := range t.Args {
			if ContainsGenericParameters(arg) {
				return true
			}
		}
		return false
	case *NamedDescriptor:
		return false
	}
	if elem, ok := Elem(d); ok {
		return ContainsGenericParameters(elem)
	}
	return false
}

// IsGenericDefinition reports whether d is itself a generic definition.
// Compound types wrapping a definition are not definitions.
func IsGenericDefinition(d TypeDescriptor) bool {
	g, ok := d.(*GenericDescriptor)
	return ok && g.Definition
}

// nameMetachars are the characters with meaning in the type-name grammar.
// A simple name containing any of them cannot be parsed back unambiguously.
const nameMetachars = "[],+&*\\"

// Lint reports names in d that will not survive a format/parse round trip.
// Names are never escaped, so these are warnings rather than errors.
// d must be valid.
func Lint(d TypeDescriptor) []Warning {
	var warnings []Warning
	seen := make(map[*NamedDescriptor]bool)
	reported := make(map[string]bool)

	var lintNamed func(n *NamedDescriptor)
	lintNamed = func(n *NamedDescriptor) {
		for cur := n; cur != nil && !seen[cur]; cur = cur.DeclaringType {
			seen[cur] = true
			if strings.ContainsAny(cur.Name, nameMetachars+".") {
				warnings = append(warnings, Warning{
					Code:     "AMBIGUOUS_NAME",
					Message:  fmt.Sprintf("name %q contains characters reserved by the type-name grammar", cur.Name),
					TypeName: cur.Name,
				})
			}
			if strings.ContainsAny(cur.Namespace, nameMetachars) {
				warnings = append(warnings, Warning{
					Code:     "AMBIGUOUS_NAMESPACE",
					Message:  fmt.Sprintf("namespace %q contains characters reserved by the type-name grammar", cur.Namespace),
					TypeName: cur.Name,
				})
			}
		}
	}

	var walk func(d TypeDescriptor)
	walk = func(d TypeDescriptor) {
		if asm := d.Assembly(); strings.ContainsAny(asm, "[]") && !reported[asm] {
			reported[asm] = true
			warnings = append(warnings, Warning{
				Code:    "AMBIGUOUS_ASSEMBLY",
				Message: fmt.Sprintf("assembly identity %q contains brackets", asm),
			})
		}
		switch t := d.(type) {
		case *NamedDescriptor:
			lintNamed(t)
		case *GenericDescriptor:
			lintNamed(t.Type)
			for _, arg := range t.Args {
				walk(arg)
			}
		case *GenericParameterDescriptor:
			if strings.ContainsAny(t.Name, nameMetachars+".") {
				warnings = append(warnings, Warning{
					Code:     "AMBIGUOUS_NAME",
					Message:  fmt.Sprintf("generic parameter %q contains characters reserved by the type-name grammar", t.Name),
					TypeName: t.Name,
				})
			}
		default:
			if elem, ok := Elem(d); ok {
				walk(elem)
			}
		}
	}
	walk(d)
	return warnings
}
