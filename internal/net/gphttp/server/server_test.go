package server

import (
	"bufio"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-acme/lego/v4/challenge/tlsalpn01"
	"github.com/maskserve/maskserve/internal/task"
	. "github.com/maskserve/maskserve/internal/utils/testing"
	"golang.org/x/net/http2"
)

const testDomain = "example.test"

func newTLSServer(t *testing.T) (*Server, *fakeResolver) {
	t.Helper()
	resolver := &fakeResolver{
		certs:      map[string]*tls.Certificate{testDomain: selfSigned(t, testDomain)},
		challenges: map[string]*tls.Certificate{testDomain: selfSigned(t, testDomain)},
	}
	return startServer(t, Options{TLSConfig: NewTLSConfig(resolver)}), resolver
}

func dial(s *Server, serverName string, protos ...string) (*tls.Conn, error) {
	d := &net.Dialer{Timeout: 5 * time.Second}
	return tls.DialWithDialer(d, "tcp", s.Addr().String(), &tls.Config{
		ServerName:         serverName,
		NextProtos:         protos,
		InsecureSkipVerify: true, //nolint:gosec
	})
}

func TestTLSServerServesH2(t *testing.T) {
	s, resolver := newTLSServer(t)
	client := &http.Client{
		Timeout: 5 * time.Second,
		Transport: &http2.Transport{
			TLSClientConfig: &tls.Config{
				ServerName: testDomain,
				RootCAs:    certPool(resolver.certs[testDomain]),
			},
		},
	}
	resp, err := client.Get("https://" + s.Addr().String() + "/")
	ExpectNoError(t, err)
	defer resp.Body.Close()
	body := Must(io.ReadAll(resp.Body))
	ExpectEqual(t, resp.StatusCode, http.StatusOK)
	ExpectEqual(t, string(body), "HTTP/2.0")
}

func TestTLSServerRejectsHTTP1OnlyClient(t *testing.T) {
	s, _ := newTLSServer(t)
	_, err := dial(s, testDomain, "http/1.1")
	ExpectHasError(t, err)
	_, err = dial(s, testDomain, "spdy/3")
	ExpectHasError(t, err)

	// the listener keeps serving after a failed handshake
	conn, err := dial(s, testDomain, "h2", "http/1.1")
	ExpectNoError(t, err)
	defer conn.Close()
	ExpectEqual(t, conn.ConnectionState().NegotiatedProtocol, "h2")
}

func TestTLSServerWithoutALPN(t *testing.T) {
	s, _ := newTLSServer(t)
	conn, err := dial(s, testDomain)
	ExpectNoError(t, err)
	defer conn.Close()
	ExpectEqual(t, conn.ConnectionState().NegotiatedProtocol, "")
}

func TestTLSServerUnknownName(t *testing.T) {
	s, _ := newTLSServer(t)
	_, err := dial(s, "unknown.test", "h2")
	ExpectHasError(t, err)
	_, err = dial(s, "", "h2")
	ExpectHasError(t, err)

	conn, err := dial(s, testDomain, "h2")
	ExpectNoError(t, err)
	conn.Close()
}

func TestTLSServerALPNChallenge(t *testing.T) {
	s, resolver := newTLSServer(t)
	conn, err := dial(s, testDomain, tlsalpn01.ACMETLS1Protocol)
	ExpectNoError(t, err)
	defer conn.Close()

	state := conn.ConnectionState()
	ExpectEqual(t, state.NegotiatedProtocol, tlsalpn01.ACMETLS1Protocol)
	ExpectTrue(t, state.PeerCertificates[0].Equal(resolver.challenges[testDomain].Leaf))

	// regular handshakes still get the real certificate
	conn2, err := dial(s, testDomain, "h2")
	ExpectNoError(t, err)
	defer conn2.Close()
	ExpectTrue(t, conn2.ConnectionState().PeerCertificates[0].Equal(resolver.certs[testDomain].Leaf))
}

func TestPlainServer(t *testing.T) {
	s := startServer(t, Options{})
	resp, err := http.Get("http://" + s.Addr().String() + "/")
	ExpectNoError(t, err)
	defer resp.Body.Close()
	body := Must(io.ReadAll(resp.Body))
	ExpectEqual(t, string(body), "HTTP/1.1")
	ExpectTrue(t, s.Uptime() > 0)
}

func TestServerStopsOnCancel(t *testing.T) {
	parent := task.RootTask(t.Name(), false)
	s := Must(Start(parent, Options{
		Name:    "stop",
		Addr:    "127.0.0.1:0",
		Handler: http.NotFoundHandler(),
	}))
	addr := s.Addr().String()
	parent.Finish(nil)

	_, err := net.DialTimeout("tcp", addr, time.Second)
	ExpectHasError(t, err)
}

func TestStartListenError(t *testing.T) {
	s := startServer(t, Options{})
	parent := task.RootTask(t.Name(), false)
	defer parent.Finish(nil)
	_, err := Start(parent, Options{Name: "dup", Addr: s.Addr().String(), Handler: http.NotFoundHandler()})
	ExpectHasError(t, err)
}

// expectClosedWithin reads from conn until it fails and checks that the
// server closed it between lo and hi after the call.
func expectClosedWithin(t *testing.T, conn net.Conn, lo, hi time.Duration) {
	t.Helper()
	start := time.Now()
	_ = conn.SetReadDeadline(start.Add(hi + time.Second))
	_, err := io.Copy(io.Discard, conn)
	elapsed := time.Since(start)
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		t.Fatalf("connection still open after %s", elapsed)
	}
	ExpectTrue(t, elapsed >= lo)
	ExpectTrue(t, elapsed < hi)
}

func TestTLSServerDropsSilentClient(t *testing.T) {
	resolver := &fakeResolver{
		certs: map[string]*tls.Certificate{testDomain: selfSigned(t, testDomain)},
	}
	s := startServer(t, Options{
		TLSConfig:         NewTLSConfig(resolver),
		ReadHeaderTimeout: 200 * time.Millisecond,
	})

	// connects and never starts the handshake
	conn := Must(net.Dial("tcp", s.Addr().String()))
	defer conn.Close()
	expectClosedWithin(t, conn, 150*time.Millisecond, 2*time.Second)
}

func TestServerDropsIdleConn(t *testing.T) {
	s := startServer(t, Options{IdleTimeout: 200 * time.Millisecond})

	conn := Must(net.Dial("tcp", s.Addr().String()))
	defer conn.Close()
	_, err := io.WriteString(conn, "GET / HTTP/1.1\r\nHost: localhost\r\n\r\n")
	ExpectNoError(t, err)

	br := bufio.NewReader(conn)
	resp := Must(http.ReadResponse(br, nil))
	body := Must(io.ReadAll(resp.Body))
	resp.Body.Close()
	ExpectEqual(t, string(body), "HTTP/1.1")

	// keep-alive connection, nothing more is sent
	expectClosedWithin(t, &bufferedConn{conn, br}, 150*time.Millisecond, 2*time.Second)
}

type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (c *bufferedConn) Read(p []byte) (int, error) {
	return c.r.Read(p)
}

func TestStallConnWriteDeadline(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	c := &stallConn{server, 50 * time.Millisecond}
	defer c.Close()

	// nobody reads from client
	start := time.Now()
	_, err := c.Write([]byte("hello"))
	ExpectTrue(t, errors.Is(err, os.ErrDeadlineExceeded))
	ExpectTrue(t, time.Since(start) < time.Second)

	// a reading peer keeps the connection going
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		buf := make([]byte, 5)
		_, _ = io.ReadFull(client, buf)
	}()
	n, err := c.Write([]byte("hello"))
	ExpectNoError(t, err)
	ExpectEqual(t, n, 5)
	wg.Wait()
}
