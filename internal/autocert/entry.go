package autocert

import (
	"crypto/tls"
	"crypto/x509"
	"time"

	"github.com/maskserve/maskserve/internal/gperr"
)

// Entry is an immutable, parsed certificate for one domain.
type Entry struct {
	Domain      string
	Certificate *tls.Certificate
	Leaf        *x509.Certificate
	NotBefore   time.Time
	NotAfter    time.Time
}

// ParseEntry parses a PEM bundle holding the certificate chain
// and the private key, and checks that the leaf covers domain.
func ParseEntry(domain string, data []byte) (*Entry, gperr.Error) {
	cert, err := tls.X509KeyPair(data, data)
	if err != nil {
		return nil, gperr.Wrap(err, "parse key pair")
	}
	leaf := cert.Leaf
	if leaf == nil {
		leaf, err = x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			return nil, gperr.Wrap(err, "parse leaf certificate")
		}
		cert.Leaf = leaf
	}
	if err := leaf.VerifyHostname(domain); err != nil {
		return nil, ErrDomainMismatch.Subject(domain).With(err)
	}
	return &Entry{
		Domain:      domain,
		Certificate: &cert,
		Leaf:        leaf,
		NotBefore:   leaf.NotBefore,
		NotAfter:    leaf.NotAfter,
	}, nil
}

func (e *Entry) Expired(now time.Time) bool {
	return !now.Before(e.NotAfter)
}

// RenewAt returns the time a renewal becomes due.
func (e *Entry) RenewAt(renewBefore time.Duration) time.Time {
	return e.NotAfter.Add(-renewBefore)
}

// Same reports whether e and other hold the same leaf certificate.
func (e *Entry) Same(other *Entry) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.Leaf.SerialNumber.Cmp(other.Leaf.SerialNumber) == 0 &&
		e.NotAfter.Equal(other.NotAfter)
}
