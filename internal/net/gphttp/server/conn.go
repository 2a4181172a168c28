package server

import (
	"net"
	"time"
)

type (
	stallListener struct {
		net.Listener
		timeout time.Duration
	}
	// stallConn pushes the write deadline forward before every write,
	// so a peer that stops reading is dropped after timeout while a slow
	// but steady download keeps going.
	//
	// Reads are left alone: net/http keeps a background read pending
	// on idle connections, and a read deadline would break it.
	stallConn struct {
		net.Conn
		timeout time.Duration
	}
)

func newStallListener(l net.Listener, timeout time.Duration) net.Listener {
	return &stallListener{l, timeout}
}

func (l *stallListener) Accept() (net.Conn, error) {
	c, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return &stallConn{c, l.timeout}, nil
}

func (c *stallConn) Write(b []byte) (int, error) {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(b)
}
