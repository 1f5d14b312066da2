package command

import "strings"

// Query words filter the result set of print-style commands. Each clause
// pushes one boolean result onto the device's evaluation stack; combinators
// pop their operands off that stack and push the combined result.

// QueryEqual adds an equality clause: "?key=value".
func (b *Builder) QueryEqual(key, value string) *Builder {
	return b.queryClause("?" + key + "=" + value)
}

// QueryGreater adds a greater-than clause: "?>key=value".
func (b *Builder) QueryGreater(key, value string) *Builder {
	return b.queryClause("?>" + key + "=" + value)
}

// QueryLess adds a less-than clause: "?<key=value".
func (b *Builder) QueryLess(key, value string) *Builder {
	return b.queryClause("?<" + key + "=" + value)
}

// QueryExists adds a presence clause: "?key" matches items that have the
// property at all.
func (b *Builder) QueryExists(key string) *Builder {
	return b.queryClause("?" + key)
}

// QueryNotExists adds an absence clause: "?-key".
func (b *Builder) QueryNotExists(key string) *Builder {
	return b.queryClause("?-" + key)
}

func (b *Builder) queryClause(word string) *Builder {
	// word carries the operator prefix; the key sits after it
	key := word[1:]
	if len(key) > 0 {
		switch key[0] {
		case '>', '<', '-':
			key = key[1:]
		}
	}
	if i := strings.IndexByte(key, '='); i >= 0 {
		key = key[:i]
	}
	if err := validateKey(key); err != nil {
		return b.fail(err)
	}
	b.args = append(b.args, word)
	b.depth++
	return b
}

// QueryAnd combines the two preceding clause results: "?#&".
func (b *Builder) QueryAnd() *Builder {
	return b.combinator("?#&", 2)
}

// QueryOr combines the two preceding clause results: "?#|".
func (b *Builder) QueryOr() *Builder {
	return b.combinator("?#|", 2)
}

// QueryNot negates the preceding clause result: "?#!".
func (b *Builder) QueryNot() *Builder {
	return b.combinator("?#!", 1)
}

func (b *Builder) combinator(word string, arity int) *Builder {
	if b.depth < arity {
		return b.fail(validationErrorf(
			"query combinator %q needs %d preceding clauses, have %d", word, arity, b.depth))
	}
	b.args = append(b.args, word)
	b.depth -= arity - 1 // pop operands, push the combined result
	return b
}
