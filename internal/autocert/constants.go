package autocert

import (
	"github.com/go-acme/lego/v4/lego"
	"github.com/maskserve/maskserve/internal/gperr"
	"github.com/maskserve/maskserve/internal/logging"
)

const (
	certFileExt      = ".pem"
	accountKeyFile   = "+account.key"
	registrationFile = "+registration.json"

	// files starting with this marker are account data, not certificates.
	accountMarker = "+"
)

const (
	CADirProduction = lego.LEDirectoryProduction
	CADirStaging    = lego.LEDirectoryStaging
)

var (
	ErrNoSNI              = gperr.New("client did not send a server name")
	ErrNoCertificate      = gperr.New("no certificate available")
	ErrNoChallenge        = gperr.New("no active challenge")
	ErrCertificateExpired = gperr.New("certificate expired")
	ErrDomainMismatch     = gperr.New("certificate does not cover domain")
	ErrInvalidDomain      = gperr.New("invalid domain")
	ErrMissingEmail       = gperr.New("missing field 'email'")
	ErrMissingDomain      = gperr.New("missing field 'domains'")
)

var logger = logging.With().Str("module", "autocert").Logger()
