package autocert

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	. "github.com/maskserve/maskserve/internal/utils/testing"
)

func newBundle(domain string, notAfter time.Time) (*Bundle, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		return nil, err
	}
	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: domain},
		DNSNames:     []string{domain},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     notAfter,
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		return nil, err
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, err
	}
	return &Bundle{
		Certificate: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
		PrivateKey:  pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}),
	}, nil
}

func mustBundle(t *testing.T, domain string, validFor time.Duration) *Bundle {
	t.Helper()
	return Must(newBundle(domain, time.Now().Add(validFor)))
}

var errIssuerDown = errors.New("issuer unavailable")

// fakeIssuer issues self-signed certificates, failing the first
// failures[domain] attempts of a domain (forever when negative).
type fakeIssuer struct {
	mu       sync.Mutex
	calls    map[string]int
	failures map[string]int
	validFor time.Duration
}

func newFakeIssuer() *fakeIssuer {
	return &fakeIssuer{
		calls:    make(map[string]int),
		failures: make(map[string]int),
		validFor: 90 * 24 * time.Hour,
	}
}

func (f *fakeIssuer) Obtain(ctx context.Context, domain string) (*Bundle, error) {
	f.mu.Lock()
	f.calls[domain]++
	n := f.calls[domain]
	failN := f.failures[domain]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failN < 0 || n <= failN {
		return nil, errIssuerDown
	}
	return newBundle(domain, time.Now().Add(f.validFor))
}

func (f *fakeIssuer) Calls(domain string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[domain]
}

func testOptions(t *testing.T, domains ...string) Options {
	return Options{
		Email:         "test@example.com",
		Domains:       domains,
		CacheDir:      t.TempDir(),
		RenewBefore:   30 * 24 * time.Hour,
		CheckInterval: 20 * time.Millisecond,
		RetryInitial:  10 * time.Millisecond,
		RetryMax:      50 * time.Millisecond,
	}
}

func waitEvent(t *testing.T, ch <-chan Event, match func(Event) bool) Event {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-ch:
			if match(ev) {
				return ev
			}
		case <-timeout:
			t.Fatal("timeout waiting for event")
			return Event{}
		}
	}
}

func isEvent(domain string, kind EventKind) func(Event) bool {
	return func(ev Event) bool {
		return ev.Domain == domain && ev.Kind == kind
	}
}
