package conn

import (
	"net"
	"time"
)

// dial establishes the TCP connection and applies the socket tuning from
// the configuration.
func dial(cfg Config) (net.Conn, error) {
	timeout := time.Duration(cfg.TimeoutSecond) * time.Second
	nc, err := net.DialTimeout("tcp", cfg.Address, timeout)
	if err != nil {
		return nil, err
	}
	if err := upgradeConnection(nc, cfg); err != nil {
		nc.Close()
		return nil, err
	}
	return nc, nil
}

// upgradeConnection applies TCP-specific settings to an established
// connection. Non-TCP connections (test pipes, TLS wrappers) pass through
// untouched.
func upgradeConnection(nc net.Conn, cfg Config) error {
	tcpConn, ok := nc.(*net.TCPConn)
	if !ok {
		return nil
	}

	if err := tcpConn.SetNoDelay(cfg.TCPNoDelay); err != nil {
		return err
	}

	if cfg.WriteBufferSize > 0 {
		if err := tcpConn.SetWriteBuffer(cfg.WriteBufferSize); err != nil {
			return err
		}
	}

	if cfg.ReadBufferSize > 0 {
		if err := tcpConn.SetReadBuffer(cfg.ReadBufferSize); err != nil {
			return err
		}
	}

	if cfg.TCPKeepAliveSec > 0 {
		if err := tcpConn.SetKeepAlive(true); err != nil {
			return err
		}
		if err := tcpConn.SetKeepAlivePeriod(time.Duration(cfg.TCPKeepAliveSec) * time.Second); err != nil {
			return err
		}
	}

	if cfg.TCPLingerSec >= 0 {
		if err := tcpConn.SetLinger(cfg.TCPLingerSec); err != nil {
			return err
		}
	}

	return nil
}
