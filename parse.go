package tyname

import (
	"fmt"
	"strings"

	"github.com/broady/tyname/ir"
)

// nameTerminators end a simple name inside a nested name.
const nameTerminators = "[]*&,+"

// Parse reconstructs a descriptor from a name produced by Format in any mode.
//
// Generic arguments are parsed as instantiations, never definitions, and a
// bare name is always a named type: the grammar cannot tell a generic
// parameter from a top-level type without a namespace. An assembly qualifier
// is attached to the outermost named type of the root's nesting chain;
// compound, generic and nested descriptors inherit it from there.
func Parse(s string) (ir.TypeDescriptor, error) {
	if s == "" {
		return nil, &ParseError{Input: s, Msg: "empty type name"}
	}
	p := &parser{input: s}
	d, err := p.parseTypeName(false)
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, p.errorf("unexpected %q after type name", p.peek())
	}
	return d, nil
}

// MustParse is like Parse but panics if s cannot be parsed.
func MustParse(s string) ir.TypeDescriptor {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Canonical parses name and formats it again in mode. The boolean result is
// false when the parsed type has no name in mode.
func Canonical(name string, mode Mode) (string, bool, error) {
	d, err := Parse(name)
	if err != nil {
		return "", false, err
	}
	out, ok := Format(d, mode)
	return out, ok, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) done() bool {
	return p.pos >= len(p.input)
}

func (p *parser) peek() byte {
	return p.peekAt(0)
}

// peekAt returns the byte n positions ahead, or 0 past the end.
func (p *parser) peekAt(n int) byte {
	if p.pos+n >= len(p.input) {
		return 0
	}
	return p.input[p.pos+n]
}

func (p *parser) errorf(format string, args ...any) *ParseError {
	return &ParseError{Input: p.input, Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(c byte, what string) error {
	if p.peek() != c {
		if p.done() {
			return p.errorf("expected %q %s, got end of input", c, what)
		}
		return p.errorf("expected %q %s, got %q", c, what, p.peek())
	}
	p.pos++
	return nil
}

// parseTypeName parses one typeName. Inside a generic argument the assembly
// qualifier ends at the closing bracket; at top level it runs to the end.
func (p *parser) parseTypeName(inArgument bool) (ir.TypeDescriptor, error) {
	named := p.parseNestedName()
	var d ir.TypeDescriptor = named

	if p.peek() == '[' && p.peekAt(1) == '[' {
		args, err := p.parseGenericArguments()
		if err != nil {
			return nil, err
		}
		d = ir.Generic(named, args...)
	}

	d, err := p.parseDecorations(d)
	if err != nil {
		return nil, err
	}

	if p.peek() == ',' {
		asm, err := p.parseAssembly(inArgument)
		if err != nil {
			return nil, err
		}
		named.Outermost().AssemblyIdentity = asm
	}
	return d, nil
}

// parseNestedName parses (namespace '.')? name ('+' name)* and returns the
// innermost type. The namespace is everything before the last dot of the
// first segment.
func (p *parser) parseNestedName() *ir.NamedDescriptor {
	first := p.parseSimpleName()
	var n *ir.NamedDescriptor
	if dot := strings.LastIndexByte(first, '.'); dot >= 0 {
		n = ir.Named(first[:dot], first[dot+1:])
	} else {
		n = ir.Named("", first)
	}
	for p.peek() == '+' {
		p.pos++
		n = ir.Nested(n, p.parseSimpleName())
	}
	return n
}

func (p *parser) parseSimpleName() string {
	start := p.pos
	for !p.done() && strings.IndexByte(nameTerminators, p.peek()) < 0 {
		p.pos++
	}
	return p.input[start:p.pos]
}

// parseGenericArguments parses '[' '[' typeName ']' (',' '[' typeName ']')* ']'.
func (p *parser) parseGenericArguments() ([]ir.TypeDescriptor, error) {
	p.pos++ // list '['
	var args []ir.TypeDescriptor
	for {
		if err := p.expect('[', "to open generic argument"); err != nil {
			return nil, err
		}
		arg, err := p.parseTypeName(true)
		if err != nil {
			return nil, err
		}
		if err := p.expect(']', "to close generic argument"); err != nil {
			return nil, err
		}
		args = append(args, arg)

		switch p.peek() {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return args, nil
		default:
			if p.done() {
				return nil, p.errorf("unterminated generic argument list")
			}
			return nil, p.errorf("expected ',' or ']' in generic argument list, got %q", p.peek())
		}
	}
}

// parseDecorations wraps d in one compound layer per suffix, left to right,
// so the last suffix becomes the outermost layer.
func (p *parser) parseDecorations(d ir.TypeDescriptor) (ir.TypeDescriptor, error) {
	for {
		switch p.peek() {
		case '*':
			p.pos++
			d = ir.Ptr(d)
		case '&':
			p.pos++
			d = ir.ByRef(d)
		case '[':
			start := p.pos
			p.pos++
			switch p.peek() {
			case ']':
				p.pos++
				d = ir.SZArray(d)
			case '*':
				p.pos++
				if err := p.expect(']', "to close rank-1 array"); err != nil {
					return nil, err
				}
				d = ir.Array(d, 1)
			case ',':
				rank := 1
				for p.peek() == ',' {
					rank++
					p.pos++
				}
				if err := p.expect(']', "to close array rank"); err != nil {
					return nil, err
				}
				d = ir.Array(d, rank)
			default:
				p.pos = start
				return nil, p.errorf("malformed array suffix")
			}
		default:
			return d, nil
		}
	}
}

// parseAssembly parses ',' ' '? assemblyIdentity. The identity is kept
// verbatim.
func (p *parser) parseAssembly(inArgument bool) (string, error) {
	p.pos++ // ','
	if p.peek() == ' ' {
		p.pos++
	}
	start := p.pos
	end := len(p.input)
	if inArgument {
		i := strings.IndexByte(p.input[start:], ']')
		if i < 0 {
			return "", p.errorf("unterminated generic argument")
		}
		end = start + i
	}
	asm := p.input[start:end]
	if asm == "" {
		return "", p.errorf("empty assembly identity")
	}
	p.pos = end
	return asm, nil
}
