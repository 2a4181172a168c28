package notif

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/maskserve/maskserve/internal/gperr"
)

type ProviderBase struct {
	Name  string `json:"name" yaml:"name" validate:"required"`
	URL   string `json:"url" yaml:"url" validate:"url"`
	Token string `json:"token" yaml:"token"`
}

var (
	ErrMissingToken     = gperr.New("token is required")
	ErrURLMissingScheme = gperr.New("url missing scheme, expect 'http://' or 'https://'")
)

func (base *ProviderBase) Validate() gperr.Error {
	if base.Token == "" {
		return ErrMissingToken
	}
	if !strings.HasPrefix(base.URL, "http://") && !strings.HasPrefix(base.URL, "https://") {
		return ErrURLMissingScheme
	}
	u, err := url.Parse(base.URL)
	if err != nil {
		return gperr.Wrap(err)
	}
	base.URL = u.String()
	return nil
}

func (base *ProviderBase) GetName() string {
	return base.Name
}

func (base *ProviderBase) GetURL() string {
	return base.URL
}

func (base *ProviderBase) GetToken() string {
	return base.Token
}

func (base *ProviderBase) GetMethod() string {
	return http.MethodPost
}

func (base *ProviderBase) GetMIMEType() string {
	return "application/json"
}

func (base *ProviderBase) SetHeaders(*Message, http.Header) {}
