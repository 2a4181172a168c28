package autocert

import (
	"crypto/tls"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

type (
	// Resolver maps server names to certificates for the TLS layer.
	//
	// Entries are immutable and swapped by pointer, so a handshake sees
	// either the previous or the new certificate of a domain.
	Resolver struct {
		entries    *xsync.MapOf[string, *Entry]
		challenges *xsync.MapOf[string, *tls.Certificate]
	}
	// ChallengeStore holds TLS-ALPN-01 challenge certificates
	// while their challenge is active.
	ChallengeStore interface {
		PutChallenge(domain string, cert *tls.Certificate)
		DeleteChallenge(domain string)
	}
)

func NewResolver() *Resolver {
	return &Resolver{
		entries:    xsync.NewMapOf[string, *Entry](),
		challenges: xsync.NewMapOf[string, *tls.Certificate](),
	}
}

// GetCertificate implements tls.Config.GetCertificate.
//
// It fails the handshake when no SNI is sent, when the domain
// has no certificate yet, or when its certificate has expired.
func (r *Resolver) GetCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	name := normalizeName(hello.ServerName)
	if name == "" {
		return nil, ErrNoSNI
	}
	entry, ok := r.entries.Load(name)
	if !ok {
		return nil, ErrNoCertificate.Subject(name)
	}
	if entry.Expired(time.Now()) {
		return nil, ErrCertificateExpired.Subject(name)
	}
	return entry.Certificate, nil
}

// GetChallengeCertificate returns the active TLS-ALPN-01 certificate for the SNI.
func (r *Resolver) GetChallengeCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	name := normalizeName(hello.ServerName)
	if name == "" {
		return nil, ErrNoSNI
	}
	cert, ok := r.challenges.Load(name)
	if !ok {
		return nil, ErrNoChallenge.Subject(name)
	}
	return cert, nil
}

// Load returns the entry currently served for domain.
func (r *Resolver) Load(domain string) (*Entry, bool) {
	return r.entries.Load(normalizeName(domain))
}

// Range calls fn for every entry until fn returns false.
func (r *Resolver) Range(fn func(domain string, e *Entry) bool) {
	r.entries.Range(fn)
}

func (r *Resolver) store(e *Entry) {
	r.entries.Store(e.Domain, e)
}

func (r *Resolver) PutChallenge(domain string, cert *tls.Certificate) {
	r.challenges.Store(normalizeName(domain), cert)
}

func (r *Resolver) DeleteChallenge(domain string) {
	r.challenges.Delete(normalizeName(domain))
}
