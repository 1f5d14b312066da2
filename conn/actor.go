package conn

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog/log"

	"github.com/mfellner/rosapi/command"
	"github.com/mfellner/rosapi/proto"
	"github.com/mfellner/rosapi/response"
)

var logger = log.With().Str("component", "conn").Logger()

// MaxProtocolViolations is the number of consecutive unclassifiable (but
// still correctly framed) sentences tolerated before the connection is torn
// down. Framing corruption is fatal immediately, since the byte stream
// cannot be resynchronized.
const MaxProtocolViolations = 3

// ErrClosed is delivered to pending commands and returned by Send after the
// connection has been shut down locally.
var ErrClosed = errors.New("conn: connection closed")

// Result is one demultiplexed unit delivered on a command's stream. Exactly
// one of the fields is set: Response for device sentences, Err for
// connection failures that abort the command.
type Result struct {
	Response response.Response
	Err      error
}

// Stream is the receiving end of one command's responses. The channel
// yields the command's responses in wire order and is closed after the
// terminal one (Done, Trap, a connection-scoped failure, or Fatal).
//
// A caller that stops draining the channel forfeits responses: once the
// buffer is full the demultiplexer discards further results for this
// command rather than stall sibling commands. Close marks the stream
// cancelled so the discards are silent; no cancel frame is sent to the
// device, which will keep executing the command until its natural end.
type Stream struct {
	mu        sync.Mutex
	ch        chan Result
	done      bool
	cancelled bool
}

func newStream(buffer int) *Stream {
	return &Stream{ch: make(chan Result, buffer)}
}

// Chan returns the delivery channel.
func (s *Stream) Chan() <-chan Result {
	return s.ch
}

// Close abandons the stream. It never sends anything to the device.
func (s *Stream) Close() {
	s.mu.Lock()
	s.cancelled = true
	s.mu.Unlock()
}

// deliver forwards one non-terminal result without ever blocking the
// demultiplexer: a full buffer means the result is discarded.
func (s *Stream) deliver(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done || s.cancelled {
		return
	}
	select {
	case s.ch <- r:
	default:
		metricDropped.Inc()
		logger.Warn().Msg("stream buffer full, discarding result")
	}
}

// settle forwards the terminal result and closes the channel. Multiple
// racing settlers (demultiplexer, teardown, a failed submit) are safe; the
// first one wins.
func (s *Stream) settle(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	if !s.cancelled {
		select {
		case s.ch <- r:
		default:
			metricDropped.Inc()
			logger.Warn().Msg("stream buffer full, discarding terminal result")
		}
	}
	close(s.ch)
	s.done = true
}

type submission struct {
	cmd    *command.Command
	stream *Stream
}

// Conn is one authenticated device connection. It is safe for concurrent
// use: any number of goroutines may Send while the two internal loops run.
type Conn struct {
	cfg    Config
	nc     net.Conn
	reader *proto.Reader

	submissions chan submission
	pending     *xsync.MapOf[uint16, *Stream]

	closed    chan struct{}
	closeOnce sync.Once
	err       error // set before closed is closed
}

// Connect dials the configured address, authenticates and starts the
// multiplexing loops. On any handshake failure the socket is closed and no
// Conn is returned.
func Connect(cfg Config) (*Conn, error) {
	cfg = cfg.withDefaults()
	nc, err := dial(cfg)
	if err != nil {
		return nil, err
	}
	return start(nc, cfg)
}

// New runs the handshake over a caller-supplied connection (for example a
// TLS-wrapped one) and starts the multiplexing loops. Ownership of nc
// passes to the returned Conn.
func New(nc net.Conn, cfg Config) (*Conn, error) {
	return start(nc, cfg.withDefaults())
}

func start(nc net.Conn, cfg Config) (*Conn, error) {
	reader := proto.NewReader(nc)

	if err := authenticate(nc, reader, cfg, cfg.TagSource()); err != nil {
		nc.Close()
		return nil, err
	}
	logger.Debug().Str("address", cfg.Address).Str("user", cfg.Username).Msg("authenticated")

	c := newConn(nc, reader, cfg)
	c.run()
	return c, nil
}

// newConn assembles a connection around an already authenticated socket.
func newConn(nc net.Conn, reader *proto.Reader, cfg Config) *Conn {
	return &Conn{
		cfg:         cfg,
		nc:          nc,
		reader:      reader,
		submissions: make(chan submission, cfg.QueueSize),
		pending:     xsync.NewMapOf[uint16, *Stream](),
		closed:      make(chan struct{}),
	}
}

func (c *Conn) run() {
	go c.writeLoop()
	go c.readLoop()
}

// Send submits a command and immediately returns the stream its responses
// will arrive on. It never waits for a reply; it blocks only while the
// submission queue is full.
func (c *Conn) Send(ctx context.Context, cmd *command.Command) (*Stream, error) {
	stream := newStream(c.cfg.StreamBuffer)
	select {
	case c.submissions <- submission{cmd: cmd, stream: stream}:
	case <-c.closed:
		return nil, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	// The submission is queued. If the connection went down meanwhile the
	// queue may never be drained again; settle the stream ourselves (a
	// racing drain is harmless, settling is idempotent).
	select {
	case <-c.closed:
		stream.settle(Result{Err: c.err})
		return nil, c.err
	default:
		return stream, nil
	}
}

// Close shuts the connection down locally. Every pending command receives
// ErrClosed as its terminal result.
func (c *Conn) Close() error {
	c.teardown(ErrClosed, nil)
	return nil
}

// Done is closed once the connection has terminated for any reason.
func (c *Conn) Done() <-chan struct{} {
	return c.closed
}

// Err returns the terminating error after Done is closed, nil before.
func (c *Conn) Err() error {
	select {
	case <-c.closed:
		return c.err
	default:
		return nil
	}
}

// writeLoop drains the submission queue: it assigns a free tag, registers
// the delivery stream and writes the encoded sentence. It is the only
// goroutine writing to the socket after the handshake.
func (c *Conn) writeLoop() {
	for {
		select {
		case <-c.closed:
			return
		case sub := <-c.submissions:
			tag := c.allocateTag()

			data, err := sub.cmd.Encode(tag)
			if err != nil {
				sub.stream.settle(Result{Err: err})
				continue
			}

			// Register before writing so an immediate response routes.
			c.pending.Store(tag, sub.stream)
			atomic.AddInt64(&inflightCommands, 1)

			if c.cfg.TimeoutSecond > 0 {
				c.nc.SetWriteDeadline(time.Now().Add(time.Duration(c.cfg.TimeoutSecond) * time.Second))
			}
			if _, err := c.nc.Write(data); err != nil {
				c.teardown(fmt.Errorf("conn: write failed: %w", err), nil)
				// A teardown racing ahead of the Store above misses this
				// entry in its broadcast; settle it here.
				if stream, ok := c.pending.LoadAndDelete(tag); ok {
					atomic.AddInt64(&inflightCommands, -1)
					stream.settle(Result{Err: c.err})
				}
				return
			}
			metricSentencesWritten.Inc()
			logger.Debug().Uint16("tag", tag).Str("command", sub.cmd.Path()).Msg("command written")
		}
	}
}

// allocateTag draws tags from the configured source until one not bound to
// a live command comes up. Tags are freed as soon as their terminal
// response is delivered, so the space only exhausts with 65536 commands in
// flight at once.
func (c *Conn) allocateTag() uint16 {
	for {
		tag := c.cfg.TagSource()
		if _, live := c.pending.Load(tag); !live {
			return tag
		}
	}
}

// readLoop demultiplexes inbound sentences to the stream registered for
// their tag. It is the only goroutine reading from the socket.
func (c *Conn) readLoop() {
	violations := 0
	for {
		sentence, err := c.reader.ReadSentence()
		if err != nil {
			// Framing errors leave the stream unsynchronized, transport
			// errors end it outright. Both are connection-fatal.
			c.teardown(fmt.Errorf("conn: read failed: %w", err), nil)
			return
		}
		metricSentencesRead.Inc()

		if len(sentence) == 0 {
			// keepalive
			continue
		}

		resp, err := response.Parse(sentence)
		if err != nil {
			violations++
			metricViolations.Inc()
			logger.Warn().Err(err).Int("violations", violations).Msg("unclassifiable sentence")
			if violations >= MaxProtocolViolations {
				c.teardown(fmt.Errorf("conn: %d consecutive protocol violations: %w", violations, err), nil)
				return
			}
			continue
		}
		violations = 0

		if fatal, ok := resp.(*response.Fatal); ok {
			metricFatals.Inc()
			logger.Error().Str("reason", fatal.Reason).Msg("device fatal")
			c.teardown(fatal, fatal)
			return
		}

		c.route(resp)
	}
}

// route forwards one tagged response and retires the tag on terminal ones.
func (c *Conn) route(resp response.Response) {
	tag, _ := response.Tag(resp)

	switch resp.Kind() {
	case response.KindReply:
		metricReplies.Inc()
		stream, ok := c.pending.Load(tag)
		if !ok {
			metricUnroutable.Inc()
			logger.Warn().Uint16("tag", tag).Msg("reply for unknown tag")
			return
		}
		stream.deliver(Result{Response: resp})

	default: // Done or Trap, terminal for the tag
		if resp.Kind() == response.KindTrap {
			metricTraps.Inc()
		}
		stream, ok := c.pending.LoadAndDelete(tag)
		if !ok {
			metricUnroutable.Inc()
			logger.Warn().Uint16("tag", tag).Msg("terminal response for unknown tag")
			return
		}
		atomic.AddInt64(&inflightCommands, -1)
		stream.settle(Result{Response: resp})
	}
}

// teardown terminates the connection exactly once: it records the error,
// closes the socket and settles every pending command and every queued
// submission with a terminal result. fatal is set when the device ended
// the connection with !fatal, in which case pending commands observe the
// Fatal response instead of a bare error.
func (c *Conn) teardown(err error, fatal *response.Fatal) {
	c.closeOnce.Do(func() {
		c.err = err
		close(c.closed)
		c.nc.Close()

		result := Result{Err: err}
		if fatal != nil {
			result = Result{Response: fatal}
		}

		c.pending.Range(func(tag uint16, _ *Stream) bool {
			if stream, ok := c.pending.LoadAndDelete(tag); ok {
				atomic.AddInt64(&inflightCommands, -1)
				stream.settle(result)
			}
			return true
		})

		// Submissions queued but not yet picked up by the writer.
		for {
			select {
			case sub := <-c.submissions:
				sub.stream.settle(result)
			default:
				return
			}
		}
	})
}
