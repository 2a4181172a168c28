package notif

import (
	"os"

	"github.com/maskserve/maskserve/internal/gperr"
	"github.com/maskserve/maskserve/internal/utils"
	"gopkg.in/yaml.v3"
)

type NotificationConfig struct {
	ProviderName string   `json:"provider" yaml:"provider"`
	Provider     Provider `json:"-" yaml:"-"`
}

var (
	ErrMissingNotifProvider     = gperr.New("missing notification provider")
	ErrUnknownNotifProvider     = gperr.New("unknown notification provider")
	ErrReadNotificationConfig   = gperr.New("failed to read notification config")
	ErrInvalidNotificationEntry = gperr.New("invalid notification entry")
)

// UnmarshalYAML implements yaml.Unmarshaler.
func (cfg *NotificationConfig) UnmarshalYAML(node *yaml.Node) error {
	var named struct {
		Provider string `yaml:"provider"`
	}
	if err := node.Decode(&named); err != nil {
		return err
	}
	cfg.ProviderName = named.Provider

	switch cfg.ProviderName {
	case "":
		return ErrMissingNotifProvider
	case ProviderWebhook:
		cfg.Provider = &Webhook{}
	case ProviderGotify:
		cfg.Provider = &GotifyClient{}
	case ProviderNtfy:
		cfg.Provider = &Ntfy{}
	default:
		return ErrUnknownNotifProvider.
			Subject(cfg.ProviderName).
			Withf("expect %s, %s or %s", ProviderWebhook, ProviderGotify, ProviderNtfy)
	}

	if err := node.Decode(cfg.Provider); err != nil {
		return err
	}
	if err := utils.ValidateWithFieldTags(cfg.Provider); err != nil {
		return err
	}
	return cfg.Provider.Validate()
}

// LoadConfig reads a YAML (or JSON) list of notification providers.
func LoadConfig(path string) ([]Provider, gperr.Error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrReadNotificationConfig.With(err).Subject(path)
	}
	return parseConfig(data)
}

func parseConfig(data []byte) ([]Provider, gperr.Error) {
	var cfgs []NotificationConfig
	if err := yaml.Unmarshal(data, &cfgs); err != nil {
		return nil, ErrInvalidNotificationEntry.With(err)
	}
	providers := make([]Provider, len(cfgs))
	for i, cfg := range cfgs {
		providers[i] = cfg.Provider
	}
	return providers, nil
}
