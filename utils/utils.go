package utils

// Pointer returns a pointer to v.
func Pointer[T any](v T) *T {
	return &v
}
