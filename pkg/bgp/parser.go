// SPDX-License-Identifier: MIT

// Package bgp decodes BGP-4 messages (RFC 4271) from raw byte slices using
// small parser combinators, per spec.md §4.4 and the "parser-combinator
// idiom" of §9. A Parser[T] is a function from a byte slice to (remaining
// bytes, value, error); error is either nil, an *IncompleteError (need more
// bytes), or a *DecodeError (malformed input). No panics: every parser is
// total over its input.
package bgp

import (
	"encoding/binary"
)

// Parser is the combinator type every decoder piece is built from: a
// function taking the not-yet-consumed input and returning the remainder,
// the parsed value, and an error (nil, *IncompleteError, or *DecodeError).
type Parser[T any] func([]byte) ([]byte, T, error)

// Take consumes exactly n bytes, or reports IncompleteError if fewer remain.
func Take(n int) Parser[[]byte] {
	return func(b []byte) ([]byte, []byte, error) {
		if len(b) < n {
			return b, nil, &IncompleteError{Needed: n - len(b)}
		}
		return b[n:], b[:n], nil
	}
}

// Tag matches exactly the given bytes, calling onMismatch to build the
// error (with the offending bytes) when they don't match.
func Tag(expected []byte, onMismatch func(got []byte) error) Parser[[]byte] {
	return func(b []byte) ([]byte, []byte, error) {
		if len(b) < len(expected) {
			return b, nil, &IncompleteError{Needed: len(expected) - len(b)}
		}
		got := b[:len(expected)]
		for i := range expected {
			if got[i] != expected[i] {
				return b, nil, onMismatch(got)
			}
		}
		return b[len(expected):], got, nil
	}
}

// Verify runs p, then checks pred against its value; onFail builds the
// error to report if pred returns false. The input position does not
// advance on failure.
func Verify[T any](p Parser[T], pred func(T) bool, onFail func(T) error) Parser[T] {
	return func(b []byte) ([]byte, T, error) {
		rest, v, err := p(b)
		if err != nil {
			return rest, v, err
		}
		if !pred(v) {
			return b, v, onFail(v)
		}
		return rest, v, nil
	}
}

// Map runs p, then transforms its value with f.
func Map[A, B any](p Parser[A], f func(A) (B, error)) Parser[B] {
	return func(b []byte) ([]byte, B, error) {
		rest, a, err := p(b)
		if err != nil {
			var zero B
			return rest, zero, err
		}
		v, err := f(a)
		return rest, v, err
	}
}

// FlatMap runs p, then uses its value to build and run the next parser —
// the combinator bind operation, used whenever a later field's shape
// depends on an earlier field's value (e.g. a length-prefixed list).
func FlatMap[A, B any](p Parser[A], f func(A) Parser[B]) Parser[B] {
	return func(b []byte) ([]byte, B, error) {
		rest, a, err := p(b)
		if err != nil {
			var zero B
			return rest, zero, err
		}
		return f(a)(rest)
	}
}

// Bounded runs p over exactly the next n bytes as an isolated slice,
// advancing the outer input by n regardless of how much of the bounded
// slice p itself consumed. This is how a length-prefixed field (an
// optional parameter's value, a path attribute's value) gets parsed without
// letting an inner parser run past its declared boundary.
func Bounded[T any](n int, p Parser[T]) Parser[T] {
	return func(b []byte) ([]byte, T, error) {
		if len(b) < n {
			var zero T
			return b, zero, &IncompleteError{Needed: n - len(b)}
		}
		region, rest := b[:n], b[n:]
		_, v, err := p(region)
		return rest, v, err
	}
}

// Many0 repeats p until the input is exhausted, collecting every value.
func Many0[T any](p Parser[T]) Parser[[]T] {
	return func(b []byte) ([]byte, []T, error) {
		var out []T
		rest := b
		for len(rest) > 0 {
			next, v, err := p(rest)
			if err != nil {
				return rest, out, err
			}
			out = append(out, v)
			rest = next
		}
		return rest, out, nil
	}
}

// LengthCount reads a count with countP, then repeats itemP exactly that
// many times.
func LengthCount[T any](countP Parser[int], itemP Parser[T]) Parser[[]T] {
	return FlatMap(countP, func(n int) Parser[[]T] {
		return func(b []byte) ([]byte, []T, error) {
			out := make([]T, 0, n)
			rest := b
			for i := 0; i < n; i++ {
				next, v, err := itemP(rest)
				if err != nil {
					return rest, out, err
				}
				out = append(out, v)
				rest = next
			}
			return rest, out, nil
		}
	})
}

// Peek runs p without consuming any input, used to look ahead at a
// discriminator (a type code, a flags byte) before deciding which parser to
// dispatch to.
func Peek[T any](p Parser[T]) Parser[T] {
	return func(b []byte) ([]byte, T, error) {
		_, v, err := p(b)
		return b, v, err
	}
}

// Switch peeks a discriminator with selector, then dispatches to the case
// registered for it; onDefault builds the error for an unrecognised
// discriminator. This is spec.md §4.4's "peek-then-dispatch": the
// discriminator bytes stay available to whichever case parser runs, so it
// can re-read them (e.g. to echo a bad length in a NOTIFICATION's data).
func Switch[K comparable, T any](selector Parser[K], cases map[K]Parser[T], onDefault func(K) error) Parser[T] {
	return func(b []byte) ([]byte, T, error) {
		var zero T
		_, k, err := Peek(selector)(b)
		if err != nil {
			return b, zero, err
		}
		if p, ok := cases[k]; ok {
			return p(b)
		}
		return b, zero, onDefault(k)
	}
}

// U8 reads one byte as an unsigned 8-bit integer.
func U8() Parser[uint8] {
	return Map(Take(1), func(b []byte) (uint8, error) { return b[0], nil })
}

// U16 reads two bytes as a big-endian unsigned 16-bit integer.
func U16() Parser[uint16] {
	return Map(Take(2), func(b []byte) (uint16, error) { return binary.BigEndian.Uint16(b), nil })
}

// U32 reads four bytes as a big-endian unsigned 32-bit integer.
func U32() Parser[uint32] {
	return Map(Take(4), func(b []byte) (uint32, error) { return binary.BigEndian.Uint32(b), nil })
}
