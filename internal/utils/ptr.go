package utils

func Ptr[T any](v T) *T {
	return &v
}

func OrZero[T comparable](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

// OrDefault dereferences v, or returns def when v is nil.
func OrDefault[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}
