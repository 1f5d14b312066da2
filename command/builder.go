package command

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidationError reports a malformed command part detected at build time,
// before anything is written to the device.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return "command: " + e.Detail
}

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Detail: fmt.Sprintf(format, args...)}
}

// PathSeparator separates the segments of a command path.
const PathSeparator = "/"

// Builder accumulates the parts of a command. All methods validate their
// input; the first error is remembered and returned by Build, so call
// chains don't need intermediate error checks.
type Builder struct {
	path  string
	args  []string
	depth int // query clause results available to combinators
	err   error
}

// New starts building a command for the given absolute path. The path must
// begin with the separator and contain no empty segments and no whitespace.
func New(path string) (*Builder, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	return &Builder{path: path}, nil
}

func validatePath(path string) error {
	if path == "" {
		return validationErrorf("empty path")
	}
	if !strings.HasPrefix(path, PathSeparator) {
		return validationErrorf("path %q must begin with %q", path, PathSeparator)
	}
	for _, seg := range strings.Split(path[1:], PathSeparator) {
		if seg == "" {
			return validationErrorf("path %q contains an empty segment", path)
		}
		if strings.ContainsFunc(seg, unicode.IsSpace) {
			return validationErrorf("path segment %q contains whitespace", seg)
		}
	}
	return nil
}

func validateKey(key string) error {
	if key == "" {
		return validationErrorf("empty attribute key")
	}
	if strings.ContainsRune(key, '=') || strings.ContainsFunc(key, unicode.IsSpace) {
		return validationErrorf("invalid attribute key %q", key)
	}
	return nil
}

// fail records the first validation error.
func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Attribute adds a "=key=value" attribute word.
func (b *Builder) Attribute(key, value string) *Builder {
	if err := validateKey(key); err != nil {
		return b.fail(err)
	}
	b.args = append(b.args, "="+key+"="+value)
	return b
}

// Flag adds a bare "key" word, the protocol's form for a directive that
// carries no value.
func (b *Builder) Flag(key string) *Builder {
	if err := validateKey(key); err != nil {
		return b.fail(err)
	}
	b.args = append(b.args, key)
	return b
}

// Build finalizes the command. It returns the first validation error
// recorded during construction, if any.
func (b *Builder) Build() (*Command, error) {
	if b.err != nil {
		return nil, b.err
	}
	args := make([]string, len(b.args))
	copy(args, b.args)
	return &Command{path: b.path, args: args}, nil
}
