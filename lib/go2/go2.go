// Package go2 contains general utility helpers that should've been in Go. Maybe they'll be in Go 2.0.
package go2

func Pointer[T any](v T) *T {
	return &v
}

// Filter returns the elements of els for which fn is true, nil when there are none.
func Filter[T any](els []T, fn func(T) bool) []T {
	var out []T
	for _, el := range els {
		if fn(el) {
			out = append(out, el)
		}
	}
	return out
}
