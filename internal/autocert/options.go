package autocert

import (
	"strings"
	"time"

	"github.com/maskserve/maskserve/internal/common"
	"github.com/maskserve/maskserve/internal/gperr"
)

type Options struct {
	Email    string
	Domains  []string
	CacheDir string
	CADirURL string

	// RenewBefore is how long before expiry a certificate is renewed.
	RenewBefore time.Duration
	// CheckInterval bounds how long a worker sleeps between due checks.
	CheckInterval time.Duration
	RetryInitial  time.Duration
	RetryMax      time.Duration
}

// NewOptions returns Options for email and domains
// with everything else taken from the environment.
func NewOptions(email string, domains []string) Options {
	return Options{
		Email:         email,
		Domains:       domains,
		CacheDir:      common.CertCacheDir,
		CADirURL:      defaultCADirURL(),
		RenewBefore:   common.RenewBefore,
		CheckInterval: common.RenewInterval,
		RetryInitial:  common.RetryInitial,
		RetryMax:      common.RetryMax,
	}
}

func defaultCADirURL() string {
	switch {
	case common.ACMECADirURL != "":
		return common.ACMECADirURL
	case common.ACMEStaging:
		return CADirStaging
	default:
		return CADirProduction
	}
}

// normalize lowercases the domains, drops duplicates
// and fills zero durations with defaults.
func (opt *Options) normalize() gperr.Error {
	errs := gperr.NewBuilder("autocert options")
	if opt.Email == "" {
		errs.Add(ErrMissingEmail)
	}
	if len(opt.Domains) == 0 {
		errs.Add(ErrMissingDomain)
	}

	seen := make(map[string]struct{}, len(opt.Domains))
	domains := make([]string, 0, len(opt.Domains))
	for _, d := range opt.Domains {
		d = normalizeName(d)
		if !validDomain(d) {
			errs.Add(ErrInvalidDomain.Subject(d))
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		domains = append(domains, d)
	}
	opt.Domains = domains

	if opt.CacheDir == "" {
		opt.CacheDir = common.CertCacheDirDefault
	}
	if opt.CADirURL == "" {
		opt.CADirURL = CADirProduction
	}
	setDefault(&opt.RenewBefore, common.RenewBeforeDefault)
	setDefault(&opt.CheckInterval, common.RenewCheckIntervalDefault)
	setDefault(&opt.RetryInitial, common.OrderRetryInitialDefault)
	setDefault(&opt.RetryMax, common.OrderRetryMaxDefault)
	return errs.Error()
}

func setDefault(d *time.Duration, def time.Duration) {
	if *d <= 0 {
		*d = def
	}
}

// normalizeName lowercases a server name and strips the trailing dot.
func normalizeName(name string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".")
}

// validDomain rejects names that cannot be used as a cache file name.
func validDomain(d string) bool {
	if d == "" || strings.HasPrefix(d, accountMarker) || strings.HasPrefix(d, ".") {
		return false
	}
	return !strings.ContainsAny(d, `/\`) && !strings.Contains(d, "..")
}
