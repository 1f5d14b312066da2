// Package conn owns the socket and the command multiplexing state of one
// device connection.
//
// After the authentication handshake succeeds, two goroutines cooperate
// over the connection: a writer draining the submission queue (assigning
// tags, encoding sentences, registering delivery streams) and a reader
// demultiplexing inbound sentences to the stream registered for their tag.
// The tag to stream mapping is the only state shared between the two and is
// held in a concurrent map; the socket itself is written only by the writer
// goroutine and read only by the reader goroutine.
//
// Per-command failures (traps) reach only the issuing caller. Connection
// scoped failures (transport errors, device fatals, repeated protocol
// violations) are broadcast to every pending command and shut the
// connection down.
package conn
