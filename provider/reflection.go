package provider

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"
	"strings"

	"github.com/broady/tyname/ir"
)

// ReflectionProvider extracts types using runtime reflection.
//
// Reflection does not expose the type arguments of an instantiated generic
// type, so instantiations are declared as plain named types with a synthetic
// name (Pair[int,string] becomes Pair_int_string). Prefer SourceProvider
// when the source is available.
type ReflectionProvider struct {
	// BuildInfo supplies module versions for assembly identities.
	// If nil, the running binary's build info is used.
	BuildInfo *debug.BuildInfo
}

// ReflectionInputOptions configures reflection-based type extraction.
type ReflectionInputOptions struct {
	// RootTypes are the types to extract, specified as reflect.Type values.
	RootTypes []reflect.Type
}

// BuildCatalog extracts the root types, and every named type they reach,
// into a Catalog.
func (p *ReflectionProvider) BuildCatalog(ctx context.Context, opts ReflectionInputOptions) (*ir.Catalog, error) {
	if len(opts.RootTypes) == 0 {
		return nil, fmt.Errorf("no root types provided")
	}

	info := p.BuildInfo
	if info == nil {
		info, _ = debug.ReadBuildInfo()
	}

	b := &reflectionCatalogBuilder{
		catalog: &ir.Catalog{},
		modules: modulesOf(info),
		named:   make(map[reflect.Type]*ir.NamedDescriptor),
	}

	for _, t := range opts.RootTypes {
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if b.catalog.Package.IsZero() && t.PkgPath() != "" {
			b.catalog.Package = ir.PackageInfo{
				Path:   t.PkgPath(),
				Name:   packageName(t),
				Module: b.assemblyFor(t.PkgPath()),
			}
		}
		if _, err := b.typeToDescriptor(t); err != nil {
			return nil, fmt.Errorf("root type %s: %w", t, err)
		}
	}
	if err := b.drain(ctx); err != nil {
		return nil, err
	}
	return b.catalog, nil
}

// moduleVersion is one module from the build info.
type moduleVersion struct {
	path    string
	version string
}

// modulesOf lists the main module and its dependencies. A development
// build of the main module has no version.
func modulesOf(info *debug.BuildInfo) []moduleVersion {
	if info == nil {
		return nil
	}
	var mods []moduleVersion
	if info.Main.Path != "" {
		version := info.Main.Version
		if version == "(devel)" {
			version = ""
		}
		mods = append(mods, moduleVersion{info.Main.Path, version})
	}
	for _, dep := range info.Deps {
		if dep.Replace != nil && dep.Replace.Version != "" {
			dep = dep.Replace
		}
		mods = append(mods, moduleVersion{dep.Path, dep.Version})
	}
	return mods
}

// reflectionCatalogBuilder maintains state during catalog construction.
type reflectionCatalogBuilder struct {
	catalog *ir.Catalog
	modules []moduleVersion
	named   map[reflect.Type]*ir.NamedDescriptor // named types seen so far
	pending []reflect.Type                       // named types waiting to be declared
}

// assemblyFor returns the identity of the module with the longest path
// prefix of pkgPath.
func (b *reflectionCatalogBuilder) assemblyFor(pkgPath string) string {
	best := -1
	for i, m := range b.modules {
		if pkgPath != m.path && !strings.HasPrefix(pkgPath, m.path+"/") {
			continue
		}
		if best < 0 || len(m.path) > len(b.modules[best].path) {
			best = i
		}
	}
	if best >= 0 {
		return moduleIdentity(b.modules[best].path, b.modules[best].version)
	}
	if isStdPackage(pkgPath) {
		return StdAssembly
	}
	return ""
}

func (b *reflectionCatalogBuilder) drain(ctx context.Context) error {
	for len(b.pending) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := b.pending[0]
		b.pending = b.pending[1:]
		if err := b.declare(t); err != nil {
			return err
		}
	}
	return nil
}

// declare adds a named type and its exported struct fields to the catalog.
func (b *reflectionCatalogBuilder) declare(t reflect.Type) error {
	decl := b.named[t]
	b.catalog.AddType(decl)
	if t.Kind() != reflect.Struct {
		return nil
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		typ, err := b.typeToDescriptor(field.Type)
		var unsupported *unsupportedReflectError
		if errors.As(err, &unsupported) {
			b.catalog.AddWarning(ir.Warning{
				Code:     WarnUnsupportedType,
				Message:  fmt.Sprintf("field %s.%s: %v", decl.Name, field.Name, unsupported),
				TypeName: decl.Name,
			})
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to convert field %s.%s: %w", decl.Name, field.Name, err)
		}
		b.catalog.AddMember(ir.Member{Owner: decl, Name: field.Name, Type: typ})
	}
	return nil
}

// unsupportedReflectError marks a reflected type that has no descriptor.
type unsupportedReflectError struct {
	typ reflect.Type
}

func (e *unsupportedReflectError) Error() string {
	return fmt.Sprintf("unsupported type: %s", e.typ)
}

// typeToDescriptor converts a reflect.Type, queueing named types from
// packages for declaration.
func (b *reflectionCatalogBuilder) typeToDescriptor(t reflect.Type) (ir.TypeDescriptor, error) {
	if t.Name() != "" {
		if t.PkgPath() == "" {
			// Predeclared: int, string, error, ...
			return ir.Named("", t.Name()), nil
		}
		return b.namedDescriptor(t), nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem, err := b.typeToDescriptor(t.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Ptr(elem), nil

	case reflect.Slice:
		elem, err := b.typeToDescriptor(t.Elem())
		if err != nil {
			return nil, err
		}
		return ir.SZArray(elem), nil

	case reflect.Array:
		elem, err := b.typeToDescriptor(t.Elem())
		if err != nil {
			return nil, err
		}
		b.catalog.AddWarning(ir.Warning{
			Code:    WarnFixedArray,
			Message: fmt.Sprintf("array length %d of %s is not part of the type name", t.Len(), t),
		})
		return ir.SZArray(elem), nil

	case reflect.Map:
		key, err := b.typeToDescriptor(t.Key())
		if err != nil {
			return nil, err
		}
		value, err := b.typeToDescriptor(t.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Generic(ir.Named("", "map"), key, value), nil

	case reflect.Interface:
		if t.NumMethod() > 0 {
			b.catalog.AddWarning(ir.Warning{
				Code:    WarnInterfaceType,
				Message: fmt.Sprintf("interface type %s mapped to 'any'", t),
			})
		}
		return ir.Named("", "any"), nil

	default:
		return nil, &unsupportedReflectError{typ: t}
	}
}

func (b *reflectionCatalogBuilder) namedDescriptor(t reflect.Type) *ir.NamedDescriptor {
	if n, ok := b.named[t]; ok {
		return n
	}
	name := t.Name()
	if strings.Contains(name, "[") {
		name = syntheticName(name)
	}
	n := ir.Named(t.PkgPath(), name).In(b.assemblyFor(t.PkgPath()))
	b.named[t] = n
	b.pending = append(b.pending, t)
	return n
}

// syntheticName flattens a generic instantiation name into an identifier.
func syntheticName(name string) string {
	r := strings.NewReplacer(
		".", "_",
		"/", "_",
		"[", "_",
		"]", "",
		",", "_",
		" ", "",
		"*", "Ptr",
	)
	return r.Replace(name)
}

// packageName guesses the package name from the type's String form.
func packageName(t reflect.Type) string {
	s := t.String()
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return s[:i]
	}
	return ""
}
