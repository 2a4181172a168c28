package autocert

import (
	"bytes"
	"context"
	"sync"

	"github.com/go-acme/lego/v4/certcrypto"
	"github.com/go-acme/lego/v4/certificate"
	"github.com/go-acme/lego/v4/lego"
	"github.com/go-acme/lego/v4/registration"
	"github.com/maskserve/maskserve/internal/gperr"
)

type (
	// Bundle is a certificate chain and its private key, both PEM encoded.
	Bundle struct {
		Certificate []byte
		PrivateKey  []byte
	}
	// Issuer runs the whole protocol flow for a single domain.
	Issuer interface {
		Obtain(ctx context.Context, domain string) (*Bundle, error)
	}
	// LegoIssuer obtains certificates from an ACME CA with TLS-ALPN-01.
	LegoIssuer struct {
		opt        Options
		user       *User
		challenges ChallengeStore

		mu     sync.Mutex
		client *lego.Client
	}
)

// PEM returns the chain followed by the key, the cache file format.
func (b *Bundle) PEM() []byte {
	var buf bytes.Buffer
	buf.Grow(len(b.Certificate) + len(b.PrivateKey) + 1)
	buf.Write(b.Certificate)
	if len(b.Certificate) > 0 && b.Certificate[len(b.Certificate)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.Write(b.PrivateKey)
	return buf.Bytes()
}

// NewLegoIssuer loads or creates the ACME account in opt.CacheDir.
// The CA is not contacted until the first Obtain.
func NewLegoIssuer(opt Options, challenges ChallengeStore) (*LegoIssuer, gperr.Error) {
	if err := opt.normalize(); err != nil {
		return nil, err
	}
	if _, err := NewDirCache(opt.CacheDir); err != nil {
		return nil, err
	}
	user, err := loadOrCreateUser(opt.CacheDir, opt.Email)
	if err != nil {
		return nil, err
	}
	return &LegoIssuer{
		opt:        opt,
		user:       user,
		challenges: challenges,
	}, nil
}

// Obtain implements Issuer.
//
// lego has no context support, so a canceled ctx returns early
// while the running flow finishes in the background.
func (p *LegoIssuer) Obtain(ctx context.Context, domain string) (*Bundle, error) {
	type result struct {
		bundle *Bundle
		err    error
	}
	done := make(chan result, 1)
	go func() {
		b, err := p.obtain(domain)
		done <- result{b, err}
	}()
	select {
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	case res := <-done:
		return res.bundle, res.err
	}
}

func (p *LegoIssuer) obtain(domain string) (*Bundle, error) {
	client, err := p.getClient()
	if err != nil {
		return nil, err
	}
	res, err := client.Certificate.Obtain(certificate.ObtainRequest{
		Domains: []string{domain},
		Bundle:  true,
	})
	if err != nil {
		return nil, gperr.Wrap(err, "obtain certificate").Subject(domain)
	}
	return &Bundle{Certificate: res.Certificate, PrivateKey: res.PrivateKey}, nil
}

// getClient creates the lego client and registers the account on first use.
func (p *LegoIssuer) getClient() (*lego.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	legoCfg := lego.NewConfig(p.user)
	legoCfg.CADirURL = p.opt.CADirURL
	legoCfg.Certificate.KeyType = certcrypto.EC256
	legoCfg.UserAgent = "maskserve"

	client, err := lego.NewClient(legoCfg)
	if err != nil {
		return nil, gperr.Wrap(err, "create lego client")
	}
	if err := client.Challenge.SetTLSALPN01Provider(&tlsALPNProvider{p.challenges}); err != nil {
		return nil, gperr.Wrap(err, "set challenge provider")
	}
	if err := p.register(client); err != nil {
		return nil, err
	}
	p.client = client
	return client, nil
}

func (p *LegoIssuer) register(client *lego.Client) error {
	if p.user.Registration != nil {
		return nil
	}
	reg, err := client.Registration.ResolveAccountByKey()
	if err != nil {
		reg, err = client.Registration.Register(registration.RegisterOptions{TermsOfServiceAgreed: true})
		if err != nil {
			return gperr.Wrap(err, "register ACME account").Subject(p.user.Email)
		}
		logger.Info().Str("email", p.user.Email).Msg("registered ACME account")
	}
	if err := p.user.saveRegistration(reg); err != nil {
		logger.Warn().Err(err).Msg("failed to save ACME registration")
	}
	return nil
}
