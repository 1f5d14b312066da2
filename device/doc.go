// Package device is the caller-facing entry point of the library: connect
// to a router, send commands, receive each command's responses on its own
// stream. It holds no protocol state of its own; everything is delegated to
// the connection actor in package conn.
package device
