package notif

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/maskserve/maskserve/internal/gperr"
)

type Provider interface {
	GetName() string
	GetURL() string
	GetToken() string
	GetMethod() string
	GetMIMEType() string

	Validate() gperr.Error

	MakeBody(msg *Message) (io.Reader, error)
	SetHeaders(msg *Message, headers http.Header)

	makeRespError(resp *http.Response) error
}

const (
	ProviderGotify  = "gotify"
	ProviderNtfy    = "ntfy"
	ProviderWebhook = "webhook"
)

const sendTimeout = 10 * time.Second

var client = &http.Client{Timeout: sendTimeout}

func notifyProvider(ctx context.Context, provider Provider, msg *Message) error {
	body, err := provider.MakeBody(msg)
	if err != nil {
		return gperr.PrependSubject(provider.GetName(), err)
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, provider.GetMethod(), provider.GetURL(), body)
	if err != nil {
		return gperr.PrependSubject(provider.GetName(), err)
	}

	if mime := provider.GetMIMEType(); mime != "" {
		req.Header.Set("Content-Type", mime)
	}
	if token := provider.GetToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	provider.SetHeaders(msg, req.Header)

	resp, err := client.Do(req)
	if err != nil {
		return gperr.PrependSubject(provider.GetName(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return provider.makeRespError(resp)
	}
	return nil
}

func respError(provider Provider, resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s status %d, failed to read body: %w", provider.GetName(), resp.StatusCode, err)
	}
	if len(body) > 0 {
		return fmt.Errorf("%s status %d: %s", provider.GetName(), resp.StatusCode, body)
	}
	return fmt.Errorf("%s status %d", provider.GetName(), resp.StatusCode)
}
