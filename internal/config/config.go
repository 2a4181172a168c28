package config

import (
	"os"
	"strconv"

	"github.com/maskserve/maskserve/internal/common"
	"github.com/maskserve/maskserve/internal/gperr"
	"github.com/maskserve/maskserve/internal/utils"
)

// Config is loaded once at startup and never mutated afterwards.
type Config struct {
	FrontDir string   `json:"front_dir" yaml:"front_dir" validate:"required"`
	OnnxDir  string   `json:"onnx_dir" yaml:"onnx_dir" validate:"required"`
	Port     int      `json:"port" yaml:"port" validate:"required,min=1,max=65535"`
	Email    string   `json:"email" yaml:"email" validate:"required"`
	Domains  []string `json:"domains" yaml:"domains" validate:"required,min=1,dive,required"`
}

var (
	ErrReadConfig = gperr.New("failed to read config file")
	ErrNotDir     = gperr.New("not a directory")
)

// Load reads and validates the config file at path.
// The file may be JSON or YAML, unknown fields are rejected.
func Load(path string) (*Config, gperr.Error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrReadConfig.With(err).Subject(path)
	}
	cfg := new(Config)
	if err := utils.DeserializeYAML(data, cfg); err != nil {
		return nil, err.Subject(path)
	}
	return cfg, nil
}

// CheckDirectories verifies that both asset roots are readable directories.
func (cfg *Config) CheckDirectories() gperr.Error {
	errs := gperr.NewBuilder("asset directories")
	errs.Add(checkDirectory(cfg.FrontDir))
	errs.Add(checkDirectory(cfg.OnnxDir))
	return errs.Error()
}

func checkDirectory(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return gperr.PrependSubject(dir, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return gperr.PrependSubject(dir, err)
	}
	if !stat.IsDir() {
		return ErrNotDir.Subject(dir)
	}
	if _, err := f.Readdirnames(1); err != nil && !isEOF(err) {
		return gperr.PrependSubject(dir, err)
	}
	return nil
}

// TLSEnabled reports whether ACME, TLS and the plaintext redirect are enabled.
func (cfg *Config) TLSEnabled() bool {
	return cfg.Port == common.TLSPort
}

func (cfg *Config) ListenAddr() string {
	return ":" + strconv.Itoa(cfg.Port)
}
