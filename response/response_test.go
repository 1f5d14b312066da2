package response

import (
	"errors"
	"reflect"
	"testing"

	"github.com/mfellner/rosapi/proto"
)

func sentence(words ...string) proto.Sentence {
	s := make(proto.Sentence, len(words))
	for i, w := range words {
		s[i] = []byte(w)
	}
	return s
}

func TestParseReply(t *testing.T) {
	resp, err := Parse(sentence("!re", ".tag=3", "=name=ether1", "=mtu=1500"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	reply, ok := resp.(*Reply)
	if !ok {
		t.Fatalf("parsed %T, want *Reply", resp)
	}
	if reply.Tag != 3 {
		t.Errorf("tag %d, want 3", reply.Tag)
	}
	// The tag word must not leak into the attributes.
	want := map[string]string{"name": "ether1", "mtu": "1500"}
	if !reflect.DeepEqual(reply.Attributes, want) {
		t.Errorf("attributes %v, want %v", reply.Attributes, want)
	}
	if reply.Terminal() {
		t.Error("reply reported as terminal")
	}
}

func TestParseDone(t *testing.T) {
	resp, err := Parse(sentence("!done", ".tag=65535", "=ret=00ab"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	done, ok := resp.(*Done)
	if !ok {
		t.Fatalf("parsed %T, want *Done", resp)
	}
	if done.Tag != 65535 {
		t.Errorf("tag %d, want 65535", done.Tag)
	}
	if done.Attributes["ret"] != "00ab" {
		t.Errorf("attributes %v", done.Attributes)
	}
	if !done.Terminal() {
		t.Error("done not reported as terminal")
	}
}

func TestParseTrap(t *testing.T) {
	resp, err := Parse(sentence("!trap", ".tag=5", "=category=2", "=message=interrupted"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	trap, ok := resp.(*Trap)
	if !ok {
		t.Fatalf("parsed %T, want *Trap", resp)
	}
	if trap.Tag != 5 || trap.Message != "interrupted" {
		t.Errorf("trap %+v", trap)
	}
	if !trap.HasCategory || trap.Category != TrapExecutionInterrupted {
		t.Errorf("category %v (has=%v), want %v", trap.Category, trap.HasCategory, TrapExecutionInterrupted)
	}
}

func TestParseTrapWithoutCategory(t *testing.T) {
	resp, err := Parse(sentence("!trap", ".tag=5", "=message=no such command"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	trap := resp.(*Trap)
	if trap.HasCategory {
		t.Errorf("category %v reported for a trap without one", trap.Category)
	}
	if trap.Error() != "device trap: no such command" {
		t.Errorf("Error() = %q", trap.Error())
	}
}

func TestParseTrapBadCategory(t *testing.T) {
	for _, c := range []string{"9", "-1", "12", "x"} {
		_, err := Parse(sentence("!trap", ".tag=5", "=category="+c, "=message=m"))
		var perr *ProtocolError
		if !errors.As(err, &perr) {
			t.Errorf("category %q: Parse = %v, want ProtocolError", c, err)
		}
	}
}

func TestParseFatal(t *testing.T) {
	resp, err := Parse(sentence("!fatal", "session terminated"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	fatal, ok := resp.(*Fatal)
	if !ok {
		t.Fatalf("parsed %T, want *Fatal", resp)
	}
	if fatal.Reason != "session terminated" {
		t.Errorf("reason %q", fatal.Reason)
	}
	if _, hasTag := Tag(fatal); hasTag {
		t.Error("fatal reported a tag")
	}

	// The reason word is optional.
	resp, err = Parse(sentence("!fatal"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if resp.(*Fatal).Reason != "" {
		t.Errorf("reason %q, want empty", resp.(*Fatal).Reason)
	}
}

func TestParseMissingTag(t *testing.T) {
	for _, keyword := range []string{"!re", "!done", "!trap"} {
		_, err := Parse(sentence(keyword, "=message=m"))
		var perr *ProtocolError
		if !errors.As(err, &perr) {
			t.Errorf("%s without tag: Parse = %v, want ProtocolError", keyword, err)
		}
	}
}

func TestParseInvalidTag(t *testing.T) {
	for _, tag := range []string{".tag=", ".tag=abc", ".tag=70000", ".tag=-1"} {
		_, err := Parse(sentence("!re", tag))
		var perr *ProtocolError
		if !errors.As(err, &perr) {
			t.Errorf("%q: Parse = %v, want ProtocolError", tag, err)
		}
	}
}

func TestParseUnknownKeyword(t *testing.T) {
	_, err := Parse(sentence("!bogus", ".tag=1"))
	var perr *ProtocolError
	if !errors.As(err, &perr) {
		t.Errorf("Parse = %v, want ProtocolError", err)
	}
}

func TestParseUnexpectedWord(t *testing.T) {
	_, err := Parse(sentence("!re", ".tag=1", "bare"))
	var perr *ProtocolError
	if !errors.As(err, &perr) {
		t.Errorf("Parse = %v, want ProtocolError", err)
	}
}

func TestParseEmptyValueAttribute(t *testing.T) {
	resp, err := Parse(sentence("!re", ".tag=1", "=comment"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	attrs := resp.(*Reply).Attributes
	if v, present := attrs["comment"]; !present || v != "" {
		t.Errorf("attributes %v, want comment present and empty", attrs)
	}
}

func TestParseEmptySentence(t *testing.T) {
	if _, err := Parse(nil); !errors.Is(err, ErrEmptySentence) {
		t.Errorf("Parse(nil) = %v, want ErrEmptySentence", err)
	}
}

func TestKindString(t *testing.T) {
	tests := map[Kind]string{
		KindReply: "!re",
		KindDone:  "!done",
		KindTrap:  "!trap",
		KindFatal: "!fatal",
	}
	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}

func TestTrapCategoryString(t *testing.T) {
	tests := map[TrapCategory]string{
		TrapMissingItemOrCommand: "missing item or command",
		TrapArgumentValueFailure: "argument value failure",
		TrapExecutionInterrupted: "command execution interrupted",
		TrapScriptingFailure:     "scripting failure",
		TrapGeneralFailure:       "general failure",
		TrapAPIFailure:           "API failure",
		TrapTTYFailure:           "TTY failure",
		TrapReturnValue:          "return value",
		TrapCategory(8):          "unknown",
	}
	for category, want := range tests {
		if got := category.String(); got != want {
			t.Errorf("TrapCategory(%d).String() = %q, want %q", category, got, want)
		}
	}
}
