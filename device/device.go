package device

import (
	"context"
	"net"

	"github.com/mfellner/rosapi/command"
	"github.com/mfellner/rosapi/conn"
	"github.com/mfellner/rosapi/response"
)

// Device is a handle to one authenticated router connection. It is cheap to
// share: all methods are safe for concurrent use.
type Device struct {
	conn *conn.Conn
}

// Connect dials the configured address and authenticates. It returns an
// *conn.AuthError when the device rejects the credentials.
func Connect(cfg conn.Config) (*Device, error) {
	c, err := conn.Connect(cfg)
	if err != nil {
		return nil, err
	}
	return &Device{conn: c}, nil
}

// New wraps a caller-supplied connection (for example one already wrapped
// in TLS) and authenticates over it.
func New(nc net.Conn, cfg conn.Config) (*Device, error) {
	c, err := conn.New(nc, cfg)
	if err != nil {
		return nil, err
	}
	return &Device{conn: c}, nil
}

// Send submits a command and returns the stream its responses arrive on.
// The stream is closed after the command's terminal response.
func (d *Device) Send(ctx context.Context, cmd *command.Command) (*conn.Stream, error) {
	return d.conn.Send(ctx, cmd)
}

// Run submits a command and collects its replies until it completes. A trap
// is returned as the error (*response.Trap); replies received before the
// trap are discarded. Cancelling the context abandons the stream but does
// not stop the device-side command.
func (d *Device) Run(ctx context.Context, cmd *command.Command) ([]*response.Reply, error) {
	stream, err := d.conn.Send(ctx, cmd)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var replies []*response.Reply
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case result, ok := <-stream.Chan():
			if !ok {
				return replies, nil
			}
			if result.Err != nil {
				return nil, result.Err
			}
			switch r := result.Response.(type) {
			case *response.Reply:
				replies = append(replies, r)
			case *response.Done:
				return replies, nil
			case *response.Trap:
				return nil, r
			case *response.Fatal:
				return nil, r
			}
		}
	}
}

// Close shuts the underlying connection down. Pending commands observe
// conn.ErrClosed.
func (d *Device) Close() error {
	return d.conn.Close()
}

// Done is closed once the underlying connection has terminated.
func (d *Device) Done() <-chan struct{} {
	return d.conn.Done()
}

// Err reports why the connection terminated, nil while it is alive.
func (d *Device) Err() error {
	return d.conn.Err()
}
