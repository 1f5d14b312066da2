package command

import (
	"strconv"
	"strings"

	"github.com/mfellner/rosapi/proto"
)

// Command is an immutable, fully validated outbound command. The zero value
// is not usable; obtain one through a Builder or one of the convenience
// constructors.
type Command struct {
	path string
	args []string // attribute and query words, insertion order
}

// Path returns the absolute command path, e.g. "/interface/print".
func (c *Command) Path() string {
	return c.path
}

// Words returns the command's words without the tag word: the path word
// first, then attribute and query words in insertion order.
func (c *Command) Words() []string {
	words := make([]string, 0, len(c.args)+1)
	words = append(words, c.path)
	return append(words, c.args...)
}

// Sentence assembles the wire sentence for this command under the given
// correlation tag. The tag word follows the path word.
func (c *Command) Sentence(tag uint16) proto.Sentence {
	s := make(proto.Sentence, 0, len(c.args)+2)
	s = append(s, []byte(c.path))
	s = append(s, []byte(".tag="+strconv.FormatUint(uint64(tag), 10)))
	for _, a := range c.args {
		s = append(s, []byte(a))
	}
	return s
}

// Encode serializes the command into a wire-ready byte slice under the
// given tag.
func (c *Command) Encode(tag uint16) ([]byte, error) {
	return proto.AppendSentence(nil, c.Sentence(tag))
}

// String returns the command words joined with spaces, for logging.
func (c *Command) String() string {
	return strings.Join(c.Words(), " ")
}

// Login builds the initial "/login" command. An empty password sends an
// empty "=password=" attribute, which the device accepts for accounts
// without one.
func Login(username, password string) *Command {
	return &Command{
		path: "/login",
		args: []string{"=name=" + username, "=password=" + password},
	}
}

// LoginResponse builds the second "/login" command of the challenge scheme,
// carrying the hashed credential response.
func LoginResponse(username, response string) *Command {
	return &Command{
		path: "/login",
		args: []string{"=name=" + username, "=response=" + response},
	}
}

// Cancel builds a "/cancel" command for the given tag. The connection layer
// never sends this on its own; cancellation is caller-local. It is provided
// for callers that want to stop a long-running listen command explicitly.
func Cancel(tag uint16) *Command {
	t := strconv.FormatUint(uint64(tag), 10)
	return &Command{
		path: "/cancel",
		args: []string{"=tag=" + t},
	}
}
