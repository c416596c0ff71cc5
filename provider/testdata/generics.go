package testdata

// Pair holds two values of different types.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// Page is a generic container referencing another generic.
type Page[T any] struct {
	Items []T
	Next  *Page[T]
	Pairs []Pair[string, T]
}

// Catalog instantiates the generics above.
type Catalog struct {
	Users   Page[User]
	Index   Pair[int, *User]
	Grouped map[Status]Page[User]
}

// Ref is an alias that should resolve to its target.
type Ref = Pair[string, int]

// Holder uses the alias in a field.
type Holder struct {
	Ref Ref
}
