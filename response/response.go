package response

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/mfellner/rosapi/proto"
)

// Kind identifies the classification of a response sentence.
type Kind uint8

const (
	KindReply Kind = iota
	KindDone
	KindTrap
	KindFatal
)

// String returns the reply keyword for the kind.
func (k Kind) String() string {
	switch k {
	case KindReply:
		return "!re"
	case KindDone:
		return "!done"
	case KindTrap:
		return "!trap"
	case KindFatal:
		return "!fatal"
	default:
		return "!unknown"
	}
}

// Response is one classified response sentence.
type Response interface {
	Kind() Kind
	// Terminal reports whether no further responses follow for the
	// command (or, for Fatal, for the whole connection).
	Terminal() bool
}

// Tag extracts the correlation tag from a response. ok is false for Fatal
// responses, which are connection-scoped and carry no tag.
func Tag(r Response) (tag uint16, ok bool) {
	switch r := r.(type) {
	case *Reply:
		return r.Tag, true
	case *Done:
		return r.Tag, true
	case *Trap:
		return r.Tag, true
	default:
		return 0, false
	}
}

// Reply is one "!re" result item.
type Reply struct {
	Tag        uint16
	Attributes map[string]string
}

func (*Reply) Kind() Kind     { return KindReply }
func (*Reply) Terminal() bool { return false }

// Done signals successful completion. Some commands attach final attributes
// (for example the "=ret=" challenge of "/login").
type Done struct {
	Tag        uint16
	Attributes map[string]string
}

func (*Done) Kind() Kind     { return KindDone }
func (*Done) Terminal() bool { return true }

// Trap is a command-scoped error reported by the device. It is terminal for
// its command only; sibling commands are unaffected.
type Trap struct {
	Tag         uint16
	Category    TrapCategory
	HasCategory bool
	Message     string
}

func (*Trap) Kind() Kind     { return KindTrap }
func (*Trap) Terminal() bool { return true }

// Error makes a Trap usable as a Go error.
func (t *Trap) Error() string {
	if t.HasCategory {
		return fmt.Sprintf("device trap (%s): %s", t.Category, t.Message)
	}
	return "device trap: " + t.Message
}

// Fatal is a connection-ending failure reported by the device.
type Fatal struct {
	Reason string
}

func (*Fatal) Kind() Kind     { return KindFatal }
func (*Fatal) Terminal() bool { return true }

// Error makes a Fatal usable as a Go error.
func (f *Fatal) Error() string {
	return "device fatal: " + f.Reason
}

// ProtocolError reports a sentence that violates the response grammar. A
// single violation is command-local noise; the connection layer escalates
// only after repeated violations.
type ProtocolError struct {
	Detail string
}

func (e *ProtocolError) Error() string {
	return "response: " + e.Detail
}

// ErrEmptySentence is returned by Parse for a zero-word sentence. The
// connection layer treats those as keepalives and never passes them here.
var ErrEmptySentence = errors.New("response: empty sentence")

const tagPrefix = ".tag="

// Parse classifies one decoded sentence. All word contents are copied out,
// so the result stays valid after the codec buffer is reused.
func Parse(s proto.Sentence) (Response, error) {
	if len(s) == 0 {
		return nil, ErrEmptySentence
	}

	switch string(s[0]) {
	case "!re":
		tag, ok, attrs, err := parseTagged(s[1:])
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &ProtocolError{Detail: "!re sentence without tag"}
		}
		return &Reply{Tag: tag, Attributes: attrs}, nil

	case "!done":
		tag, ok, attrs, err := parseTagged(s[1:])
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &ProtocolError{Detail: "!done sentence without tag"}
		}
		return &Done{Tag: tag, Attributes: attrs}, nil

	case "!trap":
		tag, ok, attrs, err := parseTagged(s[1:])
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &ProtocolError{Detail: "!trap sentence without tag"}
		}
		trap := &Trap{Tag: tag, Message: attrs["message"]}
		if c, present := attrs["category"]; present {
			cat, err := parseTrapCategory(c)
			if err != nil {
				return nil, err
			}
			trap.Category = cat
			trap.HasCategory = true
		}
		return trap, nil

	case "!fatal":
		// The reason is a single free-form word; devices send it without
		// an attribute prefix.
		var reason string
		if len(s) > 1 {
			reason = string(s[1])
		}
		return &Fatal{Reason: reason}, nil

	default:
		return nil, &ProtocolError{Detail: fmt.Sprintf("unrecognized reply keyword %q", s[0])}
	}
}

// parseTagged splits the words after the reply keyword into the correlation
// tag and the attribute mapping. The tag word is stripped from the
// attributes.
func parseTagged(words [][]byte) (tag uint16, hasTag bool, attrs map[string]string, err error) {
	attrs = make(map[string]string, len(words))
	for _, w := range words {
		switch {
		case bytes.HasPrefix(w, []byte(tagPrefix)):
			t, perr := strconv.ParseUint(string(w[len(tagPrefix):]), 10, 16)
			if perr != nil {
				return 0, false, nil, &ProtocolError{Detail: fmt.Sprintf("invalid tag word %q", w)}
			}
			tag, hasTag = uint16(t), true
		case len(w) > 0 && w[0] == '=':
			rest := w[1:]
			if i := bytes.IndexByte(rest, '='); i >= 0 {
				attrs[string(rest[:i])] = string(rest[i+1:])
			} else {
				attrs[string(rest)] = ""
			}
		default:
			return 0, false, nil, &ProtocolError{Detail: fmt.Sprintf("unexpected word %q", w)}
		}
	}
	return tag, hasTag, attrs, nil
}
