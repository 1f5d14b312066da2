package util

import (
	"fmt"
	"strings"

	"github.com/mfellner/rosapi/command"
)

// BuildCommand turns CLI arguments into a validated command. The first
// argument is the command path; the remaining ones are attribute words
// ("key=value" or a bare "key" flag) or query words carrying their operator
// prefix ("?name=ether1", "?>mtu=1400", "?-comment", "?#|", ...).
func BuildCommand(args []string) (*command.Command, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("missing command path")
	}

	builder, err := command.New(args[0])
	if err != nil {
		return nil, err
	}

	for _, arg := range args[1:] {
		if strings.HasPrefix(arg, "?") {
			if builder, err = addQuery(builder, arg[1:]); err != nil {
				return nil, err
			}
			continue
		}
		if key, value, found := strings.Cut(arg, "="); found {
			builder = builder.Attribute(key, value)
		} else {
			builder = builder.Flag(arg)
		}
	}

	return builder.Build()
}

func addQuery(b *command.Builder, q string) (*command.Builder, error) {
	if q == "" {
		return nil, fmt.Errorf("empty query word")
	}
	switch {
	case q == "#&":
		return b.QueryAnd(), nil
	case q == "#|":
		return b.QueryOr(), nil
	case q == "#!":
		return b.QueryNot(), nil
	case strings.HasPrefix(q, ">"):
		key, value, found := strings.Cut(q[1:], "=")
		if !found {
			return nil, fmt.Errorf("query %q needs a value", q)
		}
		return b.QueryGreater(key, value), nil
	case strings.HasPrefix(q, "<"):
		key, value, found := strings.Cut(q[1:], "=")
		if !found {
			return nil, fmt.Errorf("query %q needs a value", q)
		}
		return b.QueryLess(key, value), nil
	case strings.HasPrefix(q, "-"):
		return b.QueryNotExists(q[1:]), nil
	default:
		if key, value, found := strings.Cut(q, "="); found {
			return b.QueryEqual(key, value), nil
		}
		return b.QueryExists(q), nil
	}
}
