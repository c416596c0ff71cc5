package tyname

import "strings"

type builderContext int

const (
	ctxGenericArguments builderContext = iota + 1
	ctxGenericArgument
)

type builderFrame struct {
	ctx  builderContext
	args int // arguments opened so far, for ctxGenericArguments
}

// nameBuilder accumulates a type name left to right. Generic argument
// contexts must be closed in strict LIFO order; violating that is a bug in
// the caller and panics. A nameBuilder is used for exactly one name.
type nameBuilder struct {
	buf   strings.Builder
	stack []builderFrame
}

func (b *nameBuilder) append(s string) {
	b.buf.WriteString(s)
}

func (b *nameBuilder) appendByte(c byte) {
	b.buf.WriteByte(c)
}

func (b *nameBuilder) openGenericArguments() {
	b.stack = append(b.stack, builderFrame{ctx: ctxGenericArguments})
	b.buf.WriteByte('[')
}

func (b *nameBuilder) openGenericArgument() {
	list := b.top(ctxGenericArguments)
	if list.args > 0 {
		b.buf.WriteByte(',')
	}
	list.args++
	b.stack = append(b.stack, builderFrame{ctx: ctxGenericArgument})
	b.buf.WriteByte('[')
}

func (b *nameBuilder) closeGenericArgument() {
	b.pop(ctxGenericArgument)
	b.buf.WriteByte(']')
}

func (b *nameBuilder) closeGenericArguments() {
	if f := b.pop(ctxGenericArguments); f.args == 0 {
		panic("tyname: generic argument list closed with no arguments")
	}
	b.buf.WriteByte(']')
}

func (b *nameBuilder) top(want builderContext) *builderFrame {
	if len(b.stack) == 0 || b.stack[len(b.stack)-1].ctx != want {
		panic("tyname: name builder context mismatch")
	}
	return &b.stack[len(b.stack)-1]
}

func (b *nameBuilder) pop(want builderContext) builderFrame {
	f := *b.top(want)
	b.stack = b.stack[:len(b.stack)-1]
	return f
}

// String returns the finished name. All contexts must be closed.
func (b *nameBuilder) String() string {
	if len(b.stack) > 0 {
		panic("tyname: name builder has unclosed generic argument contexts")
	}
	return b.buf.String()
}
