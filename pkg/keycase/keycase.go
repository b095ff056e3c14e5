// Package keycase rewrites object keys between the backend's snake_case and
// the client's camelCase naming.
//
// The rules are deliberately literal. ToCamel only folds an underscore that
// is followed by a lower-case ASCII letter; ToSnake splits before every
// upper-case ASCII letter, so acronyms come apart letter by letter
// (HTTPCode becomes h_t_t_p_code).
package keycase

import (
	"strings"

	"koduck/pkg/value"
)

// ToCamel converts a snake_case name to camelCase. Every "_x" with x in a-z
// becomes "X"; all other characters, including runs of underscores and
// underscores before digits, are kept as they are.
func ToCamel(s string) string {
	if strings.IndexByte(s, '_') < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' && i+1 < len(s) && isLower(s[i+1]) {
			b.WriteByte(s[i+1] - 'a' + 'A')
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// ToSnake converts a camelCase name to snake_case. Every upper-case letter
// becomes "_" plus its lower-case form, except at the start of the name where
// it is only lower-cased.
func ToSnake(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if isUpper(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUpper(c) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteByte(c - 'A' + 'a')
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// KeysToCamel returns a copy of v with every object key, at any depth,
// rewritten by ToCamel.
func KeysToCamel(v value.Value) value.Value {
	return Transform(v, ToCamel)
}

// KeysToSnake returns a copy of v with every object key, at any depth,
// rewritten by ToSnake.
func KeysToSnake(v value.Value) value.Value {
	return Transform(v, ToSnake)
}

// Transform returns a copy of v with every object key rewritten by rename.
// Arrays keep their order and length; scalars and temporal values come back
// unchanged. When two keys of one object rename to the same name, keys are
// visited in sorted order and the last one wins.
func Transform(v value.Value, rename func(string) string) value.Value {
	switch v.Kind() {
	case value.KindAbsent, value.KindNull, value.KindBool, value.KindNumber, value.KindString, value.KindTime:
		return v
	case value.KindArray:
		items := v.Items()
		for i, item := range items {
			items[i] = Transform(item, rename)
		}
		return value.Array(items...)
	case value.KindObject:
		fields := make(map[string]value.Value, v.Len())
		for _, k := range v.Keys() {
			f, _ := v.Get(k)
			fields[rename(k)] = Transform(f, rename)
		}
		return value.Object(fields)
	}
	return v
}

func isLower(c byte) bool { return c >= 'a' && c <= 'z' }

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
