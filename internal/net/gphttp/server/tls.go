package server

import (
	"crypto/tls"
	"slices"

	"github.com/go-acme/lego/v4/challenge/tlsalpn01"
	"github.com/maskserve/maskserve/internal/common"
	"github.com/maskserve/maskserve/internal/gperr"
)

var ErrUnsupportedALPN = gperr.New("client does not support " + common.ALPNProto)

// CertResolver picks the certificate for a handshake.
type CertResolver interface {
	GetCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error)
	GetChallengeCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error)
}

// NewTLSConfig returns a TLS 1.2+ config that only speaks h2 and asks
// resolver for a certificate on every handshake.
//
// Handshakes offering only acme-tls/1 are answered with the
// TLS-ALPN-01 challenge certificate instead. Clients that offer ALPN
// without h2 are refused, crypto/tls would otherwise let
// http/1.1-only clients through without a protocol.
func NewTLSConfig(resolver CertResolver) *tls.Config {
	return &tls.Config{
		MinVersion:     tls.VersionTLS12,
		NextProtos:     []string{common.ALPNProto},
		GetCertificate: resolver.GetCertificate,
		GetConfigForClient: func(hello *tls.ClientHelloInfo) (*tls.Config, error) {
			if !isACMEChallenge(hello) {
				if len(hello.SupportedProtos) > 0 && !slices.Contains(hello.SupportedProtos, common.ALPNProto) {
					return nil, ErrUnsupportedALPN
				}
				return nil, nil
			}
			cert, err := resolver.GetChallengeCertificate(hello)
			if err != nil {
				return nil, err
			}
			return &tls.Config{
				MinVersion:   tls.VersionTLS12,
				NextProtos:   []string{tlsalpn01.ACMETLS1Protocol},
				Certificates: []tls.Certificate{*cert},
			}, nil
		},
	}
}

func isACMEChallenge(hello *tls.ClientHelloInfo) bool {
	return len(hello.SupportedProtos) == 1 &&
		slices.Contains(hello.SupportedProtos, tlsalpn01.ACMETLS1Protocol)
}
