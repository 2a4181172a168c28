package notif

import (
	"net/http"
	"testing"

	. "github.com/maskserve/maskserve/internal/utils/testing"
)

func TestNotificationConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      string
		expected Provider
		wantErr  bool
	}{
		{
			name: "valid_webhook",
			cfg: `
- name: test
  provider: webhook
  template: discord
  url: https://example.com`,
			expected: &Webhook{
				ProviderBase: ProviderBase{
					Name: "test",
					URL:  "https://example.com",
				},
				Template:  "discord",
				Method:    http.MethodPost,
				MIMEType:  "application/json",
				ColorMode: "dec",
				Payload:   discordPayload,
			},
		},
		{
			name: "valid_gotify",
			cfg: `
- name: test
  provider: gotify
  url: https://example.com
  token: token`,
			expected: &GotifyClient{
				ProviderBase: ProviderBase{
					Name:  "test",
					URL:   "https://example.com",
					Token: "token",
				},
			},
		},
		{
			name: "valid_ntfy",
			cfg: `
- name: test
  provider: ntfy
  url: https://ntfy.sh
  topic: certs`,
			expected: &Ntfy{
				ProviderBase: ProviderBase{
					Name: "test",
					URL:  "https://ntfy.sh",
				},
				Topic: "certs",
				Style: NtfyStyleMarkdown,
			},
		},
		{
			name: "invalid_provider",
			cfg: `
- name: test
  provider: invalid
  url: https://example.com`,
			wantErr: true,
		},
		{
			name: "missing_url",
			cfg: `
- name: test
  provider: webhook`,
			wantErr: true,
		},
		{
			name: "missing_provider",
			cfg: `
- name: test
  url: https://example.com`,
			wantErr: true,
		},
		{
			name: "missing_name",
			cfg: `
- provider: gotify
  url: https://example.com
  token: token`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := parseConfig([]byte(tt.cfg))
			if tt.wantErr {
				ExpectHasError(t, err)
				return
			}
			ExpectNoError(t, err)
			ExpectEqual(t, len(providers), 1)
			ExpectDeepEqual(t, providers[0], tt.expected)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(t.TempDir() + "/missing.yml")
	ExpectError(t, ErrReadNotificationConfig, err)
}
