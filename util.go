package transcode

import (
	"bytes"

	"golang.org/x/exp/constraints"
)

// Roundup rounds n up to the nearest multiple of align.
func Roundup[T constraints.Integer](n, align T) T {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}

// Rounddown rounds n down to the nearest multiple of align. Unlike Roundup it
// does not require align to be a power of two.
func Rounddown[T constraints.Integer](n, align T) T {
	if align <= 1 {
		return n
	}
	return n - n%align
}

// windows calls fn for each consecutive [start, end) window of size step over
// [0, total), stopping at the first error.
func windows[T constraints.Integer](total, step T, fn func(start, end T) error) error {
	for start := T(0); start < total; start += step {
		end := min(start+step, total)
		if err := fn(start, end); err != nil {
			return err
		}
	}
	return nil
}

// isAbsent reports whether v is a missing input that converts to an empty value.
func isAbsent(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case []byte:
		return x == nil
	case *Text:
		return x == nil
	case *bytes.Buffer:
		return x == nil
	}
	return false
}
