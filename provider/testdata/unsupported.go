package testdata

// Mixed has fields with no type name alongside supported ones.
type Mixed struct {
	Events   chan string
	Callback func(int) error
	Inline   struct{ X int }
	Digest   [32]byte
	Handler  interface{ Handle() }
	Name     string
}
