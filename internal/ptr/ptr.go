package ptr

// Ref returns a pointer to the value passed as argument. Useful for optional
// struct fields like target dates.
func Ref[T any](v T) *T {
	return &v
}
