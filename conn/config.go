package conn

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// Default queue sizes. The stream buffer bounds how far a command's replies
// can run ahead of its consumer before the demultiplexer starts discarding
// (see Stream).
const (
	defaultQueueSize    = 16
	defaultStreamBuffer = 64
)

// Config holds all parameters of one device connection.
type Config struct {
	// Address is the device's API endpoint, host:port.
	Address string
	// Username and Password authenticate the connection during the
	// handshake. Password may be empty.
	Username string
	Password string

	// TimeoutSecond bounds dialing and individual sentence writes.
	// Zero disables deadlines. Reads are never bounded: streaming
	// commands may stay idle indefinitely.
	TimeoutSecond int

	// QueueSize is the submission queue buffer (default 16).
	QueueSize int
	// StreamBuffer is the per-command delivery channel buffer
	// (default 64).
	StreamBuffer int

	// TagSource yields candidate correlation tags. Collisions with live
	// tags are retried, so the source only needs to be uniform, not
	// unique. Defaults to math/rand.
	TagSource func() uint16

	// TCP tuning, applied after dialing.
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int
	ReadBufferSize  int
	WriteBufferSize int
}

// DefaultConfig returns a Config with the protocol defaults: the standard
// API port placeholder address and TCP_NODELAY enabled, as interactive
// command traffic consists of small frames.
func DefaultConfig() Config {
	return Config{
		Address:       "192.168.88.1:8728",
		Username:      "admin",
		TimeoutSecond: 10,
		TCPNoDelay:    true,
		TCPLingerSec:  -1,
	}
}

func (c Config) withDefaults() Config {
	if c.QueueSize <= 0 {
		c.QueueSize = defaultQueueSize
	}
	if c.StreamBuffer <= 0 {
		c.StreamBuffer = defaultStreamBuffer
	}
	if c.TagSource == nil {
		c.TagSource = func() uint16 { return uint16(rand.Uint32()) }
	}
	return c
}

// String returns a formatted string representation of the configuration.
// The password is not included.
func (c *Config) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Device")
	addField("Address", c.Address)
	addField("Username", c.Username)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))

	addSection("Multiplexing")
	addField("Submission Queue", strconv.Itoa(c.QueueSize))
	addField("Stream Buffer", strconv.Itoa(c.StreamBuffer))

	addSection("TCP")
	addField("No Delay", strconv.FormatBool(c.TCPNoDelay))
	addField("Keep Alive", fmt.Sprintf("%d sec", c.TCPKeepAliveSec))
	addField("Linger", fmt.Sprintf("%d sec", c.TCPLingerSec))
	addField("Read Buffer", strconv.Itoa(c.ReadBufferSize))
	addField("Write Buffer", strconv.Itoa(c.WriteBufferSize))

	return sb.String()
}
