// Package lox complements samber/lo with index-free callbacks.
package lox

// Map is lo.Map without the index argument, so one-argument converters can
// be passed as is.
func Map[T, R any](collection []T, iteratee func(item T) R) []R {
	result := make([]R, len(collection))

	for i, item := range collection {
		result[i] = iteratee(item)
	}

	return result
}
