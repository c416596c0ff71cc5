package ir

import (
	"errors"
	"fmt"

	"fortio.org/safecast"
)

// Wire kind discriminators shared by the JSON and msgpack codecs.
const (
	wireNamed            = "named"
	wireGeneric          = "generic"
	wireGenericParameter = "genericParameter"
	wirePointer          = "pointer"
	wireByRef            = "byRef"
	wireSZArray          = "szArray"
	wireArray            = "array"
)

// wireDescriptor is the serialized shape of every descriptor variant.
// All variants include a "kind" field for type discrimination.
type wireDescriptor struct {
	Kind          string            `json:"kind" msgpack:"kind"`
	Name          string            `json:"name,omitempty" msgpack:"name,omitempty"`
	Namespace     string            `json:"namespace,omitempty" msgpack:"namespace,omitempty"`
	DeclaringType *wireDescriptor   `json:"declaringType,omitempty" msgpack:"declaringType,omitempty"`
	Type          *wireDescriptor   `json:"type,omitempty" msgpack:"type,omitempty"`
	Args          []*wireDescriptor `json:"args,omitempty" msgpack:"args,omitempty"`
	Definition    bool              `json:"definition,omitempty" msgpack:"definition,omitempty"`
	Position      int               `json:"position,omitempty" msgpack:"position,omitempty"`
	Element       *wireDescriptor   `json:"element,omitempty" msgpack:"element,omitempty"`
	Rank          uint32            `json:"rank,omitempty" msgpack:"rank,omitempty"`
	Assembly      string            `json:"assembly,omitempty" msgpack:"assembly,omitempty"`
}

// toWire converts a descriptor to its wire shape. Only explicit assembly
// identities are written; inherited ones are recomputed on decode.
func toWire(d TypeDescriptor) (*wireDescriptor, error) {
	if isNil(d) {
		return nil, errors.New("cannot encode nil descriptor")
	}

	switch t := d.(type) {
	case *NamedDescriptor:
		return namedToWire(t), nil
	case *GenericDescriptor:
		if t.Type == nil {
			return nil, errors.New("cannot encode generic without definition type")
		}
		w := &wireDescriptor{
			Kind:       wireGeneric,
			Type:       namedToWire(t.Type),
			Definition: t.Definition,
			Assembly:   t.AssemblyIdentity,
		}
		for i, arg := range t.Args {
			wa, err := toWire(arg)
			if err != nil {
				return nil, fmt.Errorf("args[%d]: %w", i, err)
			}
			w.Args = append(w.Args, wa)
		}
		return w, nil
	case *GenericParameterDescriptor:
		return &wireDescriptor{
			Kind:     wireGenericParameter,
			Name:     t.Name,
			Position: t.Position,
			Assembly: t.AssemblyIdentity,
		}, nil
	case *PointerDescriptor:
		return compoundToWire(wirePointer, t.compoundBase)
	case *ByRefDescriptor:
		return compoundToWire(wireByRef, t.compoundBase)
	case *SZArrayDescriptor:
		return compoundToWire(wireSZArray, t.compoundBase)
	case *ArrayDescriptor:
		w, err := compoundToWire(wireArray, t.compoundBase)
		if err != nil {
			return nil, err
		}
		rank, err := safecast.Conv[uint32](t.Rank)
		if err != nil {
			return nil, fmt.Errorf("array rank %d: %w", t.Rank, err)
		}
		w.Rank = rank
		return w, nil
	default:
		return nil, fmt.Errorf("cannot encode unknown descriptor %T", d)
	}
}

func namedToWire(n *NamedDescriptor) *wireDescriptor {
	w := &wireDescriptor{
		Kind:      wireNamed,
		Name:      n.Name,
		Namespace: n.Namespace,
		Assembly:  n.AssemblyIdentity,
	}
	if n.DeclaringType != nil {
		w.DeclaringType = namedToWire(n.DeclaringType)
	}
	return w
}

func compoundToWire(kind string, c compoundBase) (*wireDescriptor, error) {
	elem, err := toWire(c.Element)
	if err != nil {
		return nil, fmt.Errorf("%s element: %w", kind, err)
	}
	return &wireDescriptor{Kind: kind, Element: elem, Assembly: c.AssemblyIdentity}, nil
}

// fromWire converts a wire shape back into a descriptor.
func fromWire(w *wireDescriptor) (TypeDescriptor, error) {
	if w == nil {
		return nil, errors.New("descriptor is null")
	}

	switch w.Kind {
	case wireNamed:
		return namedFromWire(w)
	case wireGeneric:
		if w.Type == nil {
			return nil, errors.New("generic descriptor requires \"type\"")
		}
		def, err := namedFromWire(w.Type)
		if err != nil {
			return nil, fmt.Errorf("type: %w", err)
		}
		g := &GenericDescriptor{Type: def, Definition: w.Definition, AssemblyIdentity: w.Assembly}
		for i, wa := range w.Args {
			arg, err := fromWire(wa)
			if err != nil {
				return nil, fmt.Errorf("args[%d]: %w", i, err)
			}
			g.Args = append(g.Args, arg)
		}
		return g, nil
	case wireGenericParameter:
		return &GenericParameterDescriptor{Name: w.Name, Position: w.Position, AssemblyIdentity: w.Assembly}, nil
	case wirePointer, wireByRef, wireSZArray, wireArray:
		elem, err := fromWire(w.Element)
		if err != nil {
			return nil, fmt.Errorf("%s element: %w", w.Kind, err)
		}
		base := compoundBase{Element: elem, AssemblyIdentity: w.Assembly}
		switch w.Kind {
		case wirePointer:
			return &PointerDescriptor{base}, nil
		case wireByRef:
			return &ByRefDescriptor{base}, nil
		case wireSZArray:
			return &SZArrayDescriptor{base}, nil
		}
		rank, err := safecast.Conv[int](w.Rank)
		if err != nil {
			return nil, fmt.Errorf("array rank %d: %w", w.Rank, err)
		}
		return &ArrayDescriptor{compoundBase: base, Rank: rank}, nil
	case "":
		return nil, errors.New("descriptor is missing \"kind\"")
	default:
		return nil, fmt.Errorf("unknown descriptor kind %q", w.Kind)
	}
}

func namedFromWire(w *wireDescriptor) (*NamedDescriptor, error) {
	if w.Kind != wireNamed {
		return nil, fmt.Errorf("expected %q descriptor, got %q", wireNamed, w.Kind)
	}
	n := &NamedDescriptor{Name: w.Name, Namespace: w.Namespace, AssemblyIdentity: w.Assembly}
	if w.DeclaringType != nil {
		outer, err := namedFromWire(w.DeclaringType)
		if err != nil {
			return nil, fmt.Errorf("declaringType: %w", err)
		}
		n.DeclaringType = outer
	}
	return n, nil
}
