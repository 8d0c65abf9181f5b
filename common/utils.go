package common

import "cmp"

// Coalesce picks the first argument that is not the zero value of T, e.g. a zero work group
// dimension falls back to 1 with Coalesce(x, 1).
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// Clamp limits v to [lo, hi]. A zero hi leaves the upper bound open.
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	var zero T
	if hi != zero {
		v = min(v, hi)
	}
	return max(v, lo)
}
