// Package provider builds type descriptors from Go code.
//
// Go types map onto descriptors as follows: the package path is the
// namespace and the owning module ("path, Version=v1.2.3") is the assembly
// identity, with "std" for the standard library. Basic types have neither.
// Pointers, slices and arrays become compound types, maps become the generic
// type "map" over key and value, and instantiated generic types become
// generic instantiations. Channels, functions and anonymous structs have no
// descriptor and are skipped with an UNSUPPORTED_TYPE warning.
package provider

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"go/types"
	"strings"

	"github.com/broady/tyname/ir"
	"golang.org/x/tools/go/packages"
)

// Warning codes reported by the providers.
const (
	WarnUnsupportedType = "UNSUPPORTED_TYPE"
	WarnFixedArray      = "FIXED_ARRAY"
	WarnInterfaceType   = "INTERFACE_TYPE"
)

// StdAssembly is the assembly identity of standard library packages.
const StdAssembly = "std"

// SourceProvider extracts types by analyzing Go source code.
type SourceProvider struct{}

// SourceInputOptions configures source-based type extraction.
type SourceInputOptions struct {
	// Packages are the Go package patterns to analyze.
	Packages []string

	// RootTypes are the type names to extract (e.g., "User", "Pair").
	// Named types from the loaded packages that they reference are
	// extracted too. If empty, all exported types are extracted.
	RootTypes []string

	// Dir is the directory to run the build system in. Defaults to the
	// current directory.
	Dir string
}

// BuildCatalog loads the packages and returns a Catalog of their types.
func (p *SourceProvider) BuildCatalog(ctx context.Context, opts SourceInputOptions) (*ir.Catalog, error) {
	if len(opts.Packages) == 0 {
		return nil, fmt.Errorf("no packages specified")
	}

	cfg := &packages.Config{
		Context: ctx,
		Dir:     opts.Dir,
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedImports |
			packages.NeedDeps |
			packages.NeedModule |
			packages.NeedTypes,
	}

	pkgs, err := packages.Load(cfg, opts.Packages...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found")
	}
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("package %s has errors: %v", pkg.PkgPath, pkg.Errors)
		}
	}

	b := &catalogBuilder{
		pkgs:       pkgs,
		catalog:    &ir.Catalog{},
		assemblies: make(map[string]string),
		named:      make(map[*types.TypeName]*ir.NamedDescriptor),
		declared:   make(map[*types.TypeName]bool),
		local:      make(map[*types.Package]bool),
	}
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		b.assemblies[pkg.PkgPath] = assemblyOf(pkg)
		if pkg.Fset != nil && b.fset == nil {
			b.fset = pkg.Fset
		}
	})
	for _, pkg := range pkgs {
		b.local[pkg.Types] = true
	}

	// packages.Load does not keep input order; use the first requested one.
	mainPkg := pkgs[0]
	for _, pkg := range pkgs {
		if pkg.PkgPath == opts.Packages[0] {
			mainPkg = pkg
			break
		}
	}
	b.catalog.Package = ir.PackageInfo{
		Path:   mainPkg.PkgPath,
		Name:   mainPkg.Name,
		Module: b.assemblies[mainPkg.PkgPath],
	}

	if len(opts.RootTypes) > 0 {
		for _, name := range opts.RootTypes {
			if err := b.extractRootType(ctx, name); err != nil {
				return nil, fmt.Errorf("failed to extract root type %s: %w", name, err)
			}
		}
	} else if err := b.extractAllExportedTypes(ctx); err != nil {
		return nil, fmt.Errorf("failed to extract exported types: %w", err)
	}

	return b.catalog, nil
}

// assemblyOf derives the assembly identity of a loaded package.
func assemblyOf(pkg *packages.Package) string {
	m := pkg.Module
	if m == nil {
		if isStdPackage(pkg.PkgPath) {
			return StdAssembly
		}
		return ""
	}
	if m.Replace != nil && m.Replace.Version != "" {
		m = m.Replace
	}
	return moduleIdentity(m.Path, m.Version)
}

// moduleIdentity formats a module path and version as an assembly identity.
func moduleIdentity(path, version string) string {
	if version == "" {
		return path
	}
	return path + ", Version=" + version
}

// isStdPackage reports whether path looks like a standard library import path.
func isStdPackage(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return path != "" && !strings.Contains(first, ".")
}

// catalogBuilder accumulates descriptors while walking the loaded packages.
type catalogBuilder struct {
	pkgs       []*packages.Package
	fset       *token.FileSet
	catalog    *ir.Catalog
	assemblies map[string]string                       // key: package path
	named      map[*types.TypeName]*ir.NamedDescriptor // shared named descriptors
	declared   map[*types.TypeName]bool                // already added to the catalog
	local      map[*types.Package]bool                 // packages that were requested
	pending    []*types.TypeName
}

// unsupportedError marks a Go type that has no descriptor.
type unsupportedError struct {
	typ types.Type
}

func (e *unsupportedError) Error() string {
	return fmt.Sprintf("unsupported type: %s", e.typ)
}

func (b *catalogBuilder) extractRootType(ctx context.Context, name string) error {
	for _, pkg := range b.pkgs {
		tn, ok := pkg.Types.Scope().Lookup(name).(*types.TypeName)
		if !ok {
			continue
		}
		b.pending = append(b.pending, tn)
		return b.drain(ctx)
	}
	return fmt.Errorf("type %s not found in any package", name)
}

func (b *catalogBuilder) extractAllExportedTypes(ctx context.Context) error {
	for _, pkg := range b.pkgs {
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			obj := scope.Lookup(name)
			if !obj.Exported() {
				continue
			}
			if tn, ok := obj.(*types.TypeName); ok {
				b.pending = append(b.pending, tn)
			}
		}
	}
	return b.drain(ctx)
}

// drain declares every pending type, including those discovered while
// converting member types.
func (b *catalogBuilder) drain(ctx context.Context) error {
	for len(b.pending) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		tn := b.pending[0]
		b.pending = b.pending[1:]
		if err := b.declareType(tn); err != nil {
			return err
		}
	}
	return nil
}

// declareType adds a named type and its struct fields to the catalog.
func (b *catalogBuilder) declareType(tn *types.TypeName) error {
	if tn.IsAlias() || b.declared[tn] {
		return nil
	}
	named, ok := tn.Type().(*types.Named)
	if !ok {
		return nil
	}
	b.declared[tn] = true

	var decl ir.TypeDescriptor = b.namedDescriptor(tn)
	if tparams := named.TypeParams(); tparams.Len() > 0 {
		params := make([]*ir.GenericParameterDescriptor, tparams.Len())
		for i := range params {
			params[i] = ir.GenericParam(tparams.At(i).Obj().Name(), i)
		}
		decl = ir.GenericDefinition(b.namedDescriptor(tn), params...)
	}
	b.catalog.AddType(decl)

	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return nil
	}
	for i := 0; i < st.NumFields(); i++ {
		field := st.Field(i)
		if !field.Exported() {
			continue
		}
		typ, err := b.convertType(field.Type())
		var unsupported *unsupportedError
		if errors.As(err, &unsupported) {
			b.warn(WarnUnsupportedType, fmt.Sprintf("field %s.%s: %v", tn.Name(), field.Name(), err), tn.Name(), field.Pos())
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to convert field %s.%s: %w", tn.Name(), field.Name(), err)
		}
		b.catalog.AddMember(ir.Member{Owner: decl, Name: field.Name(), Type: typ})
	}
	return nil
}

// namedDescriptor returns the shared descriptor for a declared Go type,
// queueing it for declaration if it belongs to a requested package.
func (b *catalogBuilder) namedDescriptor(tn *types.TypeName) *ir.NamedDescriptor {
	if n, ok := b.named[tn]; ok {
		return n
	}
	var n *ir.NamedDescriptor
	if pkg := tn.Pkg(); pkg != nil {
		n = ir.Named(pkg.Path(), tn.Name()).In(b.assemblyFor(pkg.Path()))
		if b.local[pkg] && !b.declared[tn] {
			b.pending = append(b.pending, tn)
		}
	} else {
		// Universe types such as error and comparable.
		n = ir.Named("", tn.Name())
	}
	b.named[tn] = n
	return n
}

func (b *catalogBuilder) assemblyFor(pkgPath string) string {
	if asm, ok := b.assemblies[pkgPath]; ok {
		return asm
	}
	if isStdPackage(pkgPath) {
		return StdAssembly
	}
	return ""
}

// convertType converts a Go type to a TypeDescriptor.
func (b *catalogBuilder) convertType(t types.Type) (ir.TypeDescriptor, error) {
	switch typ := t.(type) {
	case *types.Basic:
		return ir.Named("", typ.Name()), nil

	case *types.Named:
		def := b.namedDescriptor(typ.Obj())
		targs := typ.TypeArgs()
		if targs.Len() == 0 {
			return def, nil
		}
		args := make([]ir.TypeDescriptor, targs.Len())
		for i := range args {
			arg, err := b.convertType(targs.At(i))
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		return ir.Generic(def, args...), nil

	case *types.Alias:
		return b.convertType(types.Unalias(typ))

	case *types.Pointer:
		elem, err := b.convertType(typ.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Ptr(elem), nil

	case *types.Slice:
		elem, err := b.convertType(typ.Elem())
		if err != nil {
			return nil, err
		}
		return ir.SZArray(elem), nil

	case *types.Array:
		elem, err := b.convertType(typ.Elem())
		if err != nil {
			return nil, err
		}
		b.warn(WarnFixedArray, fmt.Sprintf("array length %d of %s is not part of the type name", typ.Len(), typ), "", token.NoPos)
		return ir.SZArray(elem), nil

	case *types.Map:
		key, err := b.convertType(typ.Key())
		if err != nil {
			return nil, err
		}
		value, err := b.convertType(typ.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Generic(ir.Named("", "map"), key, value), nil

	case *types.Interface:
		if !typ.Empty() {
			b.warn(WarnInterfaceType, fmt.Sprintf("interface type %s mapped to 'any'", typ), "", token.NoPos)
		}
		return ir.Named("", "any"), nil

	case *types.TypeParam:
		return ir.GenericParam(typ.Obj().Name(), typ.Index()), nil

	case *types.Chan, *types.Signature, *types.Struct, *types.Tuple, *types.Union:
		return nil, &unsupportedError{typ: t}

	default:
		return nil, fmt.Errorf("unknown type: %T", t)
	}
}

func (b *catalogBuilder) warn(code, msg, typeName string, pos token.Pos) {
	w := ir.Warning{Code: code, Message: msg, TypeName: typeName}
	if pos.IsValid() && b.fset != nil {
		p := b.fset.Position(pos)
		w.Source = &ir.Source{File: p.Filename, Line: p.Line, Column: p.Column}
	}
	b.catalog.AddWarning(w)
}
