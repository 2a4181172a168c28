package autocert

import (
	"github.com/go-acme/lego/v4/challenge/tlsalpn01"
	"github.com/maskserve/maskserve/internal/gperr"
)

// tlsALPNProvider answers TLS-ALPN-01 challenges from our own listener
// instead of binding a separate one as lego's default provider does.
type tlsALPNProvider struct {
	store ChallengeStore
}

// Present implements challenge.Provider.
func (p *tlsALPNProvider) Present(domain, _, keyAuth string) error {
	cert, err := tlsalpn01.ChallengeCert(domain, keyAuth)
	if err != nil {
		return gperr.Wrap(err, "create challenge certificate").Subject(domain)
	}
	p.store.PutChallenge(domain, cert)
	logger.Debug().Str("domain", domain).Msg("tls-alpn-01 challenge presented")
	return nil
}

// CleanUp implements challenge.Provider.
func (p *tlsALPNProvider) CleanUp(domain, _, _ string) error {
	p.store.DeleteChallenge(domain)
	return nil
}
