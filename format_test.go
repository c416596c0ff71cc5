package tyname

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/broady/tyname/ir"
)

const corlib = ir.CoreLibrary

func acmeFoo() *ir.NamedDescriptor {
	return ir.Named("Acme", "Foo").In("Acme, Version=1.0.0.0")
}

func TestFormat(t *testing.T) {
	outer := ir.Named("Acme.Collections", "Outer").In("Acme")
	inner := ir.Nested(outer, "Inner")
	leaf := ir.Nested(inner, "Leaf")

	overridden := ir.Ptr(acmeFoo())
	overridden.AssemblyIdentity = "Other"

	tests := []struct {
		name string
		typ  ir.TypeDescriptor
		mode Mode
		want string
	}{
		{
			name: "simple full name",
			typ:  ir.Int32(),
			mode: FullName,
			want: "System.Int32",
		},
		{
			name: "simple assembly qualified",
			typ:  ir.Int32(),
			mode: AssemblyQualified,
			want: "System.Int32, " + corlib,
		},
		{
			name: "nested chain",
			typ:  leaf,
			mode: FullName,
			want: "Acme.Collections.Outer+Inner+Leaf",
		},
		{
			name: "nested chain inherits assembly",
			typ:  leaf,
			mode: AssemblyQualified,
			want: "Acme.Collections.Outer+Inner+Leaf, Acme",
		},
		{
			name: "no namespace",
			typ:  ir.Named("", "Global"),
			mode: FullName,
			want: "Global",
		},
		{
			name: "missing assembly identity adds no qualifier",
			typ:  ir.Named("", "int"),
			mode: AssemblyQualified,
			want: "int",
		},
		{
			name: "pointer to array",
			typ:  ir.Ptr(ir.SZArray(ir.Int32())),
			mode: FullName,
			want: "System.Int32[]*",
		},
		{
			name: "rank 2 array",
			typ:  ir.Array(ir.Int32(), 2),
			mode: FullName,
			want: "System.Int32[,]",
		},
		{
			name: "explicit rank 1 array",
			typ:  ir.Array(ir.Int32(), 1),
			mode: FullName,
			want: "System.Int32[*]",
		},
		{
			name: "zero lower bound array",
			typ:  ir.SZArray(ir.Int32()),
			mode: FullName,
			want: "System.Int32[]",
		},
		{
			name: "byref to pointer",
			typ:  ir.ByRef(ir.Ptr(ir.Int32())),
			mode: FullName,
			want: "System.Int32*&",
		},
		{
			name: "multidimensional array of jagged array",
			typ:  ir.Array(ir.SZArray(ir.Int32()), 3),
			mode: FullName,
			want: "System.Int32[][,,]",
		},
		{
			name: "compound inherits element assembly",
			typ:  ir.Ptr(acmeFoo()),
			mode: AssemblyQualified,
			want: "Acme.Foo*, Acme, Version=1.0.0.0",
		},
		{
			name: "compound assembly override wins over element",
			typ:  overridden,
			mode: AssemblyQualified,
			want: "Acme.Foo*, Other",
		},
		{
			name: "generic display",
			typ:  ir.Generic(ir.Named("Acme", "Pair"), ir.Int32(), ir.String()),
			mode: Display,
			want: "Acme.Pair[[System.Int32],[System.String]]",
		},
		{
			name: "generic full name qualifies arguments",
			typ:  ir.Generic(ir.List(), acmeFoo()),
			mode: FullName,
			want: "System.Collections.Generic.List`1[[Acme.Foo, Acme, Version=1.0.0.0]]",
		},
		{
			name: "nested generic arguments",
			typ:  ir.Generic(ir.List(), ir.Generic(ir.Dictionary(), ir.String(), ir.SZArray(acmeFoo()))),
			mode: FullName,
			want: "System.Collections.Generic.List`1[[System.Collections.Generic.Dictionary`2[[System.String, " + corlib +
				"],[Acme.Foo[], Acme, Version=1.0.0.0]], " + corlib + "]]",
		},
		{
			name: "array of generic",
			typ:  ir.SZArray(ir.Generic(ir.List(), ir.Int32())),
			mode: AssemblyQualified,
			want: "System.Collections.Generic.List`1[[System.Int32, " + corlib + "]][], " + corlib,
		},
		{
			name: "generic nested in generic container",
			typ:  ir.Generic(ir.Nested(ir.Named("Acme", "Outer").In("Acme"), "Box`1"), ir.Int32()),
			mode: AssemblyQualified,
			want: "Acme.Outer+Box`1[[System.Int32, " + corlib + "]], Acme",
		},
		{
			name: "generic definition display lists placeholders",
			typ:  ir.GenericDefinition(ir.Dictionary(), ir.GenericParam("TKey", 0), ir.GenericParam("TValue", 1)),
			mode: Display,
			want: "System.Collections.Generic.Dictionary`2[[TKey],[TValue]]",
		},
		{
			name: "generic definition full name omits placeholders",
			typ:  ir.GenericDefinition(ir.Dictionary(), ir.GenericParam("TKey", 0), ir.GenericParam("TValue", 1)),
			mode: FullName,
			want: "System.Collections.Generic.Dictionary`2",
		},
		{
			name: "generic definition assembly qualified",
			typ:  ir.GenericDefinition(ir.List(), ir.GenericParam("T", 0)),
			mode: AssemblyQualified,
			want: "System.Collections.Generic.List`1, " + corlib,
		},
		{
			name: "generic parameter display",
			typ:  ir.SZArray(ir.GenericParam("T", 0)),
			mode: Display,
			want: "T[]",
		},
		{
			name: "empty name passes through",
			typ:  ir.Named("Acme", ""),
			mode: FullName,
			want: "Acme.",
		},
		{
			name: "whitespace name passes through",
			typ:  ir.Named("", "  "),
			mode: FullName,
			want: "  ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Format(tt.typ, tt.mode)
			if !ok {
				t.Fatalf("Format() returned no result")
			}
			if got != tt.want {
				t.Errorf("Format() =\n  %q\nwant\n  %q", got, tt.want)
			}
		})
	}
}

func TestFormat_Scenario(t *testing.T) {
	pair := ir.Generic(ir.Named("Acme", "Pair").In("Acme, Version=1.0.0.0"), ir.Int32(), ir.String())

	got, ok := Format(pair, AssemblyQualified)
	if !ok {
		t.Fatal("Format() returned no result")
	}
	want := "Acme.Pair[[System.Int32, " + corlib + "],[System.String, " + corlib + "]], Acme, Version=1.0.0.0"
	if got != want {
		t.Errorf("Format() =\n  %q\nwant\n  %q", got, want)
	}
	if !strings.HasSuffix(got, "]], Acme, Version=1.0.0.0") {
		t.Errorf("outer assembly qualifier must come last: %q", got)
	}
}

func TestFormat_StrictModeRejectsOpenTypes(t *testing.T) {
	tkey := ir.GenericParam("TKey", 0)
	tests := []struct {
		name        string
		typ         ir.TypeDescriptor
		wantDisplay string
	}{
		{
			name:        "open instantiation",
			typ:         ir.Generic(ir.Dictionary(), tkey, ir.String()),
			wantDisplay: "System.Collections.Generic.Dictionary`2[[TKey],[System.String]]",
		},
		{
			name:        "bare parameter",
			typ:         tkey,
			wantDisplay: "TKey",
		},
		{
			name:        "parameter under compound",
			typ:         ir.Ptr(ir.Array(tkey, 2)),
			wantDisplay: "TKey[,]*",
		},
		{
			name:        "parameter deep in arguments",
			typ:         ir.Generic(ir.List(), ir.Generic(ir.List(), ir.SZArray(tkey))),
			wantDisplay: "System.Collections.Generic.List`1[[System.Collections.Generic.List`1[[TKey[]]]]]",
		},
		{
			name:        "compound over a definition is not a definition",
			typ:         ir.SZArray(ir.GenericDefinition(ir.List(), ir.GenericParam("T", 0))),
			wantDisplay: "System.Collections.Generic.List`1[[T]][]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, mode := range []Mode{FullName, AssemblyQualified} {
				if got, ok := Format(tt.typ, mode); ok || got != "" {
					t.Errorf("Format(%s) = (%q, %v), want no result", mode, got, ok)
				}
			}
			got, ok := Format(tt.typ, Display)
			if !ok {
				t.Fatal("Format(display) returned no result")
			}
			if got != tt.wantDisplay {
				t.Errorf("Format(display) = %q, want %q", got, tt.wantDisplay)
			}
		})
	}
}

func TestFormat_NestingOrder(t *testing.T) {
	outer := ir.Named("Acme", "Outer")
	inner := ir.Nested(outer, "Inner")

	got, _ := Format(inner, FullName)
	if strings.Count(got, "Acme") != 1 {
		t.Errorf("namespace must appear once: %q", got)
	}
	if i, j := strings.Index(got, "Outer"), strings.Index(got, "Inner"); i < 0 || j < 0 || i > j {
		t.Errorf("Outer must precede Inner: %q", got)
	}
	if !strings.Contains(got, "Outer+Inner") {
		t.Errorf("nested names must be joined by '+': %q", got)
	}
}

func TestFormat_Idempotent(t *testing.T) {
	typ := ir.Ptr(ir.Generic(ir.Dictionary(), ir.String(), ir.Array(acmeFoo(), 2)))
	for _, mode := range []Mode{Display, FullName, AssemblyQualified} {
		first, ok1 := Format(typ, mode)
		second, ok2 := Format(typ, mode)
		if first != second || ok1 != ok2 {
			t.Errorf("Format(%s) not idempotent: %q then %q", mode, first, second)
		}
	}
}

func TestFormat_ConcurrentCalls(t *testing.T) {
	typ := ir.Generic(ir.Named("Acme", "Pair").In("Acme"), ir.Int32(), ir.SZArray(ir.String()))
	want, _ := Format(typ, AssemblyQualified)

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got, _ := Format(typ, AssemblyQualified); got != want {
				errs <- got
			}
		}()
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Errorf("concurrent Format() = %q, want %q", got, want)
	}
}

func TestFormat_ContractViolationsPanic(t *testing.T) {
	tests := []struct {
		name     string
		typ      ir.TypeDescriptor
		mode     Mode
		wantCode string
	}{
		{"nil descriptor", nil, FullName, "nil_descriptor"},
		{"zero rank", ir.Array(ir.Int32(), 0), FullName, "invalid_rank"},
		{"negative rank", ir.Array(ir.Int32(), -2), Display, "invalid_rank"},
		{"nil element", ir.Ptr(nil), FullName, "nil_element"},
		{"generic without arguments", ir.Generic(ir.List()), FullName, "missing_generic_arguments"},
		{"invalid mode", ir.Int32(), Mode(42), "invalid_mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				rec := recover()
				if rec == nil {
					t.Fatal("Format() did not panic")
				}
				cerr, ok := rec.(*ContractError)
				if !ok {
					t.Fatalf("panic value = %T, want *ContractError", rec)
				}
				var verr *ir.ValidationError
				if !errors.As(cerr, &verr) {
					t.Fatalf("ContractError does not wrap *ir.ValidationError: %v", cerr)
				}
				if verr.Code != tt.wantCode {
					t.Errorf("code = %q, want %q", verr.Code, tt.wantCode)
				}
			}()
			Format(tt.typ, tt.mode)
		})
	}
}
