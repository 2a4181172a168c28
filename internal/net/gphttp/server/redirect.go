package server

import (
	"net"
	"net/http"
	"strings"

	"github.com/maskserve/maskserve/internal/gperr"
	"github.com/maskserve/maskserve/internal/net/gphttp"
	"golang.org/x/net/idna"
)

var ErrInvalidHost = gperr.New("invalid host")

// RedirectHandler redirects every request to its https equivalent.
//
// A port in the Host header is replaced by securePort, a Host without
// port stays without. GET and HEAD get 301, other methods 308 so the
// method and body are kept.
func RedirectHandler(securePort string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target, err := redirectTarget(r, securePort)
		if err != nil {
			gphttp.ServerError(w, r, err, "Invalid host")
			return
		}
		code := http.StatusPermanentRedirect
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			code = http.StatusMovedPermanently
		}
		http.Redirect(w, r, target, code)
		gphttp.LogDebug(r).Str("target", target).Msg("redirect to https")
	})
}

func redirectTarget(r *http.Request, securePort string) (string, error) {
	host, _, err := net.SplitHostPort(r.Host)
	hasPort := err == nil
	if !hasPort {
		host = strings.TrimSuffix(strings.TrimPrefix(r.Host, "["), "]")
	}
	if host == "" {
		return "", ErrInvalidHost.Subject(r.Host)
	}

	authority := host
	if ip := net.ParseIP(host); ip != nil {
		if ip.To4() == nil {
			authority = "[" + host + "]"
		}
	} else {
		ascii, err := idna.Lookup.ToASCII(host)
		if err != nil {
			return "", ErrInvalidHost.Subject(r.Host).With(err)
		}
		host, authority = ascii, ascii
	}
	if hasPort {
		authority = net.JoinHostPort(host, securePort)
	}

	uri := r.URL.RequestURI()
	if uri == "" || uri == "*" {
		uri = "/"
	}
	return "https://" + authority + uri, nil
}
