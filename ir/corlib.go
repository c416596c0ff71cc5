package ir

// CoreLibrary is the assembly identity used for the well-known System types.
const CoreLibrary = "System.Private.CoreLib, Version=8.0.0.0, Culture=neutral, PublicKeyToken=7cec85d7bea7798e"

// Convenience constructors for the well-known System types.
// Each call returns a fresh descriptor so callers may adjust it.

func corlib(name string) *NamedDescriptor {
	return Named("System", name).In(CoreLibrary)
}

// Object returns System.Object.
func Object() *NamedDescriptor { return corlib("Object") }

// Void returns System.Void.
func Void() *NamedDescriptor { return corlib("Void") }

// Boolean returns System.Boolean.
func Boolean() *NamedDescriptor { return corlib("Boolean") }

// Char returns System.Char.
func Char() *NamedDescriptor { return corlib("Char") }

// Byte returns System.Byte.
func Byte() *NamedDescriptor { return corlib("Byte") }

// Int16 returns System.Int16.
func Int16() *NamedDescriptor { return corlib("Int16") }

// Int32 returns System.Int32.
func Int32() *NamedDescriptor { return corlib("Int32") }

// Int64 returns System.Int64.
func Int64() *NamedDescriptor { return corlib("Int64") }

// IntPtr returns System.IntPtr.
func IntPtr() *NamedDescriptor { return corlib("IntPtr") }

// Single returns System.Single.
func Single() *NamedDescriptor { return corlib("Single") }

// Double returns System.Double.
func Double() *NamedDescriptor { return corlib("Double") }

// String returns System.String.
func String() *NamedDescriptor { return corlib("String") }

// List returns the System.Collections.Generic.List`1 definition type.
func List() *NamedDescriptor {
	return Named("System.Collections.Generic", "List`1").In(CoreLibrary)
}

// Dictionary returns the System.Collections.Generic.Dictionary`2 definition type.
func Dictionary() *NamedDescriptor {
	return Named("System.Collections.Generic", "Dictionary`2").In(CoreLibrary)
}
