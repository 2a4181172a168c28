package server

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"math/big"
	"net/http"
	"testing"
	"time"

	"github.com/maskserve/maskserve/internal/task"
	. "github.com/maskserve/maskserve/internal/utils/testing"
)

var errUnknownName = errors.New("unknown server name")

func selfSigned(t *testing.T, domain string) *tls.Certificate {
	t.Helper()
	key := Must(ecdsa.GenerateKey(elliptic.P256(), rand.Reader))
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: domain},
		DNSNames:     []string{domain},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der := Must(x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key))
	return &tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  key,
		Leaf:        Must(x509.ParseCertificate(der)),
	}
}

type fakeResolver struct {
	certs      map[string]*tls.Certificate
	challenges map[string]*tls.Certificate
}

func (r *fakeResolver) GetCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	if cert, ok := r.certs[hello.ServerName]; ok {
		return cert, nil
	}
	return nil, errUnknownName
}

func (r *fakeResolver) GetChallengeCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	if cert, ok := r.challenges[hello.ServerName]; ok {
		return cert, nil
	}
	return nil, errUnknownName
}

func startServer(t *testing.T, opt Options) *Server {
	t.Helper()
	parent := task.RootTask(t.Name(), false)
	t.Cleanup(func() { parent.Finish(nil) })
	if opt.Addr == "" {
		opt.Addr = "127.0.0.1:0"
	}
	if opt.Name == "" {
		opt.Name = "test"
	}
	if opt.Handler == nil {
		opt.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(r.Proto))
		})
	}
	return Must(Start(parent, opt))
}

func certPool(certs ...*tls.Certificate) *x509.CertPool {
	pool := x509.NewCertPool()
	for _, c := range certs {
		pool.AddCert(c.Leaf)
	}
	return pool
}
