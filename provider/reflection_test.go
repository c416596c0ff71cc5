package provider

import (
	"context"
	"reflect"
	"runtime/debug"
	"testing"
	"time"

	"github.com/broady/tyname"
	"github.com/broady/tyname/ir"
)

type reflItem struct {
	ID    string
	Price float64
}

type reflPair[K comparable, V any] struct {
	Key   K
	Value V
}

type reflOrder struct {
	Items    []reflItem
	Lookup   map[string]*reflItem
	First    reflPair[int, string]
	Ref      reflPair[string, *reflItem]
	Placed   time.Time
	Checksum [4]byte
	Notify   chan struct{}
	Hook     func()
	Any      any
	Stringer interface{ String() string }
	Parent   *reflOrder
	note     string
}

var testBuildInfo = &debug.BuildInfo{
	Main: debug.Module{Path: "github.com/broady/tyname", Version: "(devel)"},
	Deps: []*debug.Module{
		{Path: "github.com/broady", Version: "v0.0.1"},
		{Path: "example.com/lib", Version: "v1.2.3", Replace: &debug.Module{Path: "example.com/fork", Version: "v1.2.4"}},
	},
}

func buildReflection(t *testing.T, roots ...reflect.Type) *ir.Catalog {
	t.Helper()
	p := &ReflectionProvider{BuildInfo: testBuildInfo}
	catalog, err := p.BuildCatalog(context.Background(), ReflectionInputOptions{RootTypes: roots})
	if err != nil {
		t.Fatalf("BuildCatalog failed: %v", err)
	}
	return catalog
}

func TestReflectionProvider_Catalog(t *testing.T) {
	catalog := buildReflection(t, reflect.TypeOf(&reflOrder{}))
	const pkg = "github.com/broady/tyname/provider"

	if catalog.Package.Path != pkg || catalog.Package.Name != "provider" {
		t.Errorf("Package = %+v", catalog.Package)
	}
	if catalog.Package.Module != "github.com/broady/tyname" {
		t.Errorf("Package.Module = %q, want the main module without version", catalog.Package.Module)
	}

	for _, name := range []string{"reflOrder", "reflItem", "reflPair_int_string", "Time"} {
		found := false
		for _, typ := range catalog.Types {
			if ir.RootName(typ).Name == name {
				found = true
			}
		}
		if !found {
			t.Errorf("type %s not declared", name)
		}
	}

	order := catalog.FindType(pkg, "reflOrder")
	if order == nil {
		t.Fatal("reflOrder not found")
	}

	tests := []struct {
		field string
		mode  tyname.Mode
		want  string
	}{
		{"Items", tyname.FullName, pkg + ".reflItem[]"},
		{"Lookup", tyname.FullName, "map[[string],[" + pkg + ".reflItem*, github.com/broady/tyname]]"},
		{"First", tyname.AssemblyQualified, pkg + ".reflPair_int_string, github.com/broady/tyname"},
		{"Ref", tyname.FullName, pkg + ".reflPair_string_Ptr" + "github_com_broady_tyname_provider_reflItem"},
		{"Placed", tyname.AssemblyQualified, "time.Time, std"},
		{"Checksum", tyname.FullName, "uint8[]"},
		{"Any", tyname.FullName, "any"},
		{"Stringer", tyname.FullName, "any"},
		{"Parent", tyname.FullName, pkg + ".reflOrder*"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got := mustFormat(t, memberType(t, catalog, order, tt.field), tt.mode)
			if got != tt.want {
				t.Errorf("%s = %q, want %q", tt.field, got, tt.want)
			}
		})
	}

	counts := make(map[string]int)
	for _, w := range catalog.Warnings {
		counts[w.Code]++
	}
	if counts[WarnUnsupportedType] != 2 || counts[WarnFixedArray] != 1 || counts[WarnInterfaceType] != 1 {
		t.Errorf("warning counts = %v", counts)
	}
	if n := len(catalog.MembersOf(order)); n != 9 {
		t.Errorf("reflOrder has %d members, want 9", n)
	}
}

func TestReflectionProvider_Errors(t *testing.T) {
	p := &ReflectionProvider{}
	if _, err := p.BuildCatalog(context.Background(), ReflectionInputOptions{}); err == nil {
		t.Error("expected error for no root types")
	}
	if _, err := p.BuildCatalog(context.Background(), ReflectionInputOptions{
		RootTypes: []reflect.Type{reflect.TypeOf(make(chan int))},
	}); err == nil {
		t.Error("expected error for an unsupported root type")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.BuildCatalog(ctx, ReflectionInputOptions{RootTypes: []reflect.Type{reflect.TypeOf(reflItem{})}}); err == nil {
		t.Error("expected error for a canceled context")
	}
}

func TestReflectionAssemblyFor(t *testing.T) {
	b := &reflectionCatalogBuilder{modules: modulesOf(testBuildInfo)}
	tests := []struct {
		pkgPath string
		want    string
	}{
		{"github.com/broady/tyname", "github.com/broady/tyname"},
		{"github.com/broady/tyname/ir", "github.com/broady/tyname"},
		{"github.com/broady/other", "github.com/broady, Version=v0.0.1"},
		{"github.com/broadyx", ""},
		{"example.com/fork/sub", "example.com/fork, Version=v1.2.4"},
		{"encoding/json", "std"},
	}
	for _, tt := range tests {
		if got := b.assemblyFor(tt.pkgPath); got != tt.want {
			t.Errorf("assemblyFor(%q) = %q, want %q", tt.pkgPath, got, tt.want)
		}
	}
}

func TestSyntheticName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Pair[int,string]", "Pair_int_string"},
		{"Box[*example.com/m.Item]", "Box_Ptrexample_com_m_Item"},
		{"Page[map[string]int]", "Page_map_stringint"},
	}
	for _, tt := range tests {
		if got := syntheticName(tt.in); got != tt.want {
			t.Errorf("syntheticName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
