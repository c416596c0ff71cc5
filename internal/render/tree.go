// Package render draws descriptors as trees for terminal output.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/broady/tyname"
	"github.com/broady/tyname/ir"
	"github.com/charmbracelet/lipgloss"
)

// Tree renders descriptor trees. Colors follow the terminal capabilities
// of the writer it was created for.
type Tree struct {
	kind     lipgloss.Style
	name     lipgloss.Style
	assembly lipgloss.Style
	branch   lipgloss.Style
}

// NewTree returns a Tree styled for w.
func NewTree(w io.Writer) *Tree {
	r := lipgloss.NewRenderer(w)
	return &Tree{
		kind:     r.NewStyle().Foreground(lipgloss.Color("6")),
		name:     r.NewStyle().Bold(true),
		assembly: r.NewStyle().Foreground(lipgloss.Color("8")),
		branch:   r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Render returns d as an indented tree, one node per line. d must be valid.
func (t *Tree) Render(d ir.TypeDescriptor) string {
	var sb strings.Builder
	t.node(&sb, d, "", "")
	return sb.String()
}

func (t *Tree) node(sb *strings.Builder, d ir.TypeDescriptor, prefix, childPrefix string) {
	sb.WriteString(t.branch.Render(prefix))
	sb.WriteString(t.label(d))
	sb.WriteByte('\n')

	children := childrenOf(d)
	for i, c := range children {
		if i == len(children)-1 {
			t.node(sb, c, childPrefix+"└── ", childPrefix+"    ")
		} else {
			t.node(sb, c, childPrefix+"├── ", childPrefix+"│   ")
		}
	}
}

func (t *Tree) label(d ir.TypeDescriptor) string {
	var parts []string
	switch v := d.(type) {
	case *ir.NamedDescriptor:
		parts = append(parts, t.kind.Render("named"), t.name.Render(displayName(v)))
	case *ir.GenericDescriptor:
		kind := "generic"
		if v.Definition {
			kind = "generic definition"
		}
		parts = append(parts, t.kind.Render(kind), t.name.Render(displayName(v.Type)))
	case *ir.GenericParameterDescriptor:
		parts = append(parts, t.kind.Render("parameter"), t.name.Render(fmt.Sprintf("%s #%d", v.Name, v.Position)))
	case *ir.ArrayDescriptor:
		parts = append(parts, t.kind.Render(fmt.Sprintf("array rank %d", v.Rank)))
	default:
		parts = append(parts, t.kind.Render(strings.ToLower(d.Kind().String())))
	}
	if asm := d.Assembly(); asm != "" {
		parts = append(parts, t.assembly.Render("("+asm+")"))
	}
	return strings.Join(parts, " ")
}

// displayName is the nesting chain of n without generic arguments.
func displayName(n *ir.NamedDescriptor) string {
	name, _ := tyname.Format(n, tyname.Display)
	return name
}

func childrenOf(d ir.TypeDescriptor) []ir.TypeDescriptor {
	if g, ok := d.(*ir.GenericDescriptor); ok {
		return g.Args
	}
	if elem, ok := ir.Elem(d); ok {
		return []ir.TypeDescriptor{elem}
	}
	return nil
}
