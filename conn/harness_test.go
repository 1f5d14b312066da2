package conn

import (
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mfellner/rosapi/command"
	"github.com/mfellner/rosapi/proto"
)

// fakeDevice drives the device side of an in-memory connection from the
// test. Read failures are reported with Errorf since the helpers usually
// run off the test goroutine.
type fakeDevice struct {
	t  *testing.T
	nc net.Conn
	rd *proto.Reader
}

func newWire(t *testing.T) (client net.Conn, dev *fakeDevice) {
	t.Helper()
	c, s := net.Pipe()
	t.Cleanup(func() {
		c.Close()
		s.Close()
	})
	return c, &fakeDevice{t: t, nc: s, rd: proto.NewReader(s)}
}

// read returns the next inbound sentence with its words copied out of the
// codec buffer.
func (f *fakeDevice) read() proto.Sentence {
	s, err := f.rd.ReadSentence()
	if err != nil {
		f.t.Errorf("device read: %v", err)
		return nil
	}
	out := make(proto.Sentence, len(s))
	for i, w := range s {
		out[i] = append([]byte(nil), w...)
	}
	return out
}

func (f *fakeDevice) write(words ...string) {
	s := make(proto.Sentence, len(words))
	for i, w := range words {
		s[i] = []byte(w)
	}
	data, err := proto.AppendSentence(nil, s)
	if err != nil {
		f.t.Errorf("device encode: %v", err)
		return
	}
	if _, err := f.nc.Write(data); err != nil {
		f.t.Errorf("device write: %v", err)
	}
}

func (f *fakeDevice) writeKeepalive() {
	if _, err := f.nc.Write([]byte{0x00}); err != nil {
		f.t.Errorf("device write: %v", err)
	}
}

// tagOf extracts the ".tag=" word of a command sentence.
func tagOf(t *testing.T, s proto.Sentence) uint16 {
	t.Helper()
	for _, w := range s {
		if rest, found := strings.CutPrefix(string(w), ".tag="); found {
			tag, err := strconv.ParseUint(rest, 10, 16)
			if err != nil {
				t.Fatalf("bad tag word %q: %v", w, err)
			}
			return uint16(tag)
		}
	}
	t.Fatalf("sentence %v carries no tag", s)
	return 0
}

func tagWord(tag uint16) string {
	return ".tag=" + strconv.FormatUint(uint64(tag), 10)
}

// counterTags yields 1, 2, 3, ... for deterministic tag assignment.
func counterTags() func() uint16 {
	var n uint32
	return func() uint16 {
		return uint16(atomic.AddUint32(&n, 1))
	}
}

// sequenceTags replays the given tags in order, cycling at the end.
func sequenceTags(tags ...uint16) func() uint16 {
	i := 0
	return func() uint16 {
		tag := tags[i%len(tags)]
		i++
		return tag
	}
}

func testConfig() Config {
	cfg := Config{
		Address:      "test",
		Username:     "admin",
		Password:     "secret",
		QueueSize:    4,
		StreamBuffer: 8,
		TagSource:    counterTags(),
	}
	return cfg.withDefaults()
}

// startTestConn wires a connection straight to the multiplexing loops,
// skipping the handshake.
func startTestConn(t *testing.T, cfg Config) (*Conn, *fakeDevice) {
	t.Helper()
	client, dev := newWire(t)
	c := newConn(client, proto.NewReader(client), cfg)
	c.run()
	t.Cleanup(func() { c.Close() })
	return c, dev
}

func mustCommand(t *testing.T, path string) *command.Command {
	t.Helper()
	b, err := command.New(path)
	if err != nil {
		t.Fatalf("command.New(%q) failed: %v", path, err)
	}
	cmd, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return cmd
}

const waitTimeout = 2 * time.Second

func recvResult(t *testing.T, s *Stream) Result {
	t.Helper()
	select {
	case r, ok := <-s.Chan():
		if !ok {
			t.Fatalf("stream closed before expected result")
		}
		return r
	case <-time.After(waitTimeout):
		t.Fatalf("timed out waiting for result")
	}
	return Result{}
}

func recvClosed(t *testing.T, s *Stream) {
	t.Helper()
	select {
	case r, ok := <-s.Chan():
		if ok {
			t.Fatalf("unexpected extra result %+v", r)
		}
	case <-time.After(waitTimeout):
		t.Fatalf("timed out waiting for stream close")
	}
}

func awaitDone(t *testing.T, c *Conn) {
	t.Helper()
	select {
	case <-c.Done():
	case <-time.After(waitTimeout):
		t.Fatalf("timed out waiting for connection shutdown")
	}
}

func awaitErr(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(waitTimeout):
		t.Fatalf("timed out")
		return nil
	}
}
