package notif

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/maskserve/maskserve/internal/gperr"
)

type Webhook struct {
	ProviderBase `yaml:",inline"`
	Template     string `json:"template" yaml:"template"`
	Payload      string `json:"payload" yaml:"payload"`
	Method       string `json:"method" yaml:"method"`
	MIMEType     string `json:"mime_type" yaml:"mime_type"`
	ColorMode    string `json:"color_mode" yaml:"color_mode"`
}

const discordPayload = `{
  "embeds": [
    {
      "title": $title,
      "fields": $fields,
      "color": "$color"
    }
  ]
}`

var webhookTemplates = map[string]string{
	"discord": discordPayload,
}

func (webhook *Webhook) Validate() gperr.Error {
	if err := webhook.ProviderBase.Validate(); err != nil && !err.Is(ErrMissingToken) {
		return err
	}

	switch webhook.MIMEType {
	case "":
		webhook.MIMEType = "application/json"
	case "application/json", "application/x-www-form-urlencoded", "text/plain":
	default:
		return gperr.New("invalid mime_type, expect empty, 'application/json', 'application/x-www-form-urlencoded' or 'text/plain'")
	}

	switch webhook.Template {
	case "":
		if webhook.Payload == "" {
			return gperr.New("invalid payload, expect non-empty")
		}
		if webhook.MIMEType == "application/json" && !json.Valid([]byte(webhook.templatePreview())) {
			return gperr.New("invalid payload, expect valid JSON")
		}
	case "discord":
		webhook.ColorMode = "dec"
		webhook.Method = http.MethodPost
		webhook.MIMEType = "application/json"
		if webhook.Payload == "" {
			webhook.Payload = discordPayload
		}
	default:
		return gperr.New("invalid template, expect empty or 'discord'")
	}

	switch webhook.Method {
	case "":
		webhook.Method = http.MethodPost
	case http.MethodGet, http.MethodPost, http.MethodPut:
	default:
		return gperr.New("invalid method, expect empty, 'GET', 'POST' or 'PUT'")
	}

	switch webhook.ColorMode {
	case "":
		webhook.ColorMode = "hex"
	case "hex", "dec":
	default:
		return gperr.New("invalid color_mode, expect empty, 'hex' or 'dec'")
	}

	return nil
}

// GetMethod implements Provider.
func (webhook *Webhook) GetMethod() string {
	return webhook.Method
}

// GetMIMEType implements Provider.
func (webhook *Webhook) GetMIMEType() string {
	return webhook.MIMEType
}

// makeRespError implements Provider.
func (webhook *Webhook) makeRespError(resp *http.Response) error {
	return respError(webhook, resp)
}

// templatePreview fills the payload with placeholder values,
// so the payload can be checked before any message exists.
func (webhook *Webhook) templatePreview() string {
	return strings.NewReplacer(
		"$title", `""`,
		"$message", `""`,
		"$fields", "[]",
		"$color", "0",
	).Replace(webhook.Payload)
}

func (webhook *Webhook) MakeBody(msg *Message) (io.Reader, error) {
	title, err := json.Marshal(msg.Title)
	if err != nil {
		return nil, err
	}
	fields, err := formatDiscord(msg.Fields)
	if err != nil {
		return nil, err
	}
	var color string
	if webhook.ColorMode == "hex" {
		color = msg.Color.HexString()
	} else {
		color = msg.Color.DecString()
	}
	message, err := json.Marshal(formatMarkdown(msg.Fields))
	if err != nil {
		return nil, err
	}
	plTempl := strings.NewReplacer(
		"$title", string(title),
		"$message", string(message),
		"$fields", fields,
		"$color", color,
	)
	var pl string
	if webhook.Template != "" {
		pl = webhookTemplates[webhook.Template]
	} else {
		pl = webhook.Payload
	}
	pl = plTempl.Replace(pl)
	return strings.NewReader(pl), nil
}
