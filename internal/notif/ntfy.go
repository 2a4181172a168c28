package notif

import (
	"io"
	"net/http"
	"strings"

	"github.com/maskserve/maskserve/internal/gperr"
	"github.com/rs/zerolog"
)

// See https://docs.ntfy.sh/publish
type Ntfy struct {
	ProviderBase `yaml:",inline"`
	Topic        string    `json:"topic" yaml:"topic"`
	Style        NtfyStyle `json:"style" yaml:"style"`
}

type NtfyStyle string

const (
	NtfyStyleMarkdown NtfyStyle = "markdown"
	NtfyStylePlain    NtfyStyle = "plain"
)

func (n *Ntfy) Validate() gperr.Error {
	if n.URL == "" {
		return gperr.New("url is required")
	}
	if n.Topic == "" {
		return gperr.New("topic is required")
	}
	if n.Topic[0] == '/' {
		return gperr.New("topic should not start with a slash")
	}
	switch n.Style {
	case "":
		n.Style = NtfyStyleMarkdown
	case NtfyStyleMarkdown, NtfyStylePlain:
	default:
		return gperr.Errorf("invalid style, expecting %q or %q, got %q", NtfyStyleMarkdown, NtfyStylePlain, n.Style)
	}
	return nil
}

func (n *Ntfy) GetURL() string {
	if n.URL[len(n.URL)-1] == '/' {
		return n.URL + n.Topic
	}
	return n.URL + "/" + n.Topic
}

func (n *Ntfy) GetMIMEType() string {
	return ""
}

func (n *Ntfy) MakeBody(msg *Message) (io.Reader, error) {
	if n.Style == NtfyStyleMarkdown {
		return strings.NewReader(formatMarkdown(msg.Fields)), nil
	}
	return strings.NewReader(formatPlain(msg.Fields)), nil
}

func (n *Ntfy) SetHeaders(msg *Message, headers http.Header) {
	headers.Set("Title", msg.Title)

	switch msg.Level {
	// warning (or other unspecified) uses default priority
	case zerolog.FatalLevel:
		headers.Set("Priority", "urgent")
	case zerolog.ErrorLevel:
		headers.Set("Priority", "high")
	case zerolog.InfoLevel:
		headers.Set("Priority", "low")
	case zerolog.DebugLevel:
		headers.Set("Priority", "min")
	}

	if n.Style == NtfyStyleMarkdown {
		headers.Set("Markdown", "yes")
	}
}

func (n *Ntfy) makeRespError(resp *http.Response) error {
	return respError(n, resp)
}
