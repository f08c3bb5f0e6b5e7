// Package enums holds the closed string sets stored in the database and
// accepted over the API. Parsing is exact; callers normalise case first.
package enums

import (
	"fmt"
	"slices"
)

func parse[T ~string](kind string, known []T, value string) (T, error) {
	if v := T(value); slices.Contains(known, v) {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", kind, value)
}
