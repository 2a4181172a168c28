package common

import (
	"time"
)

const (
	DotEnvPath        = ".env"
	ConfigFileDefault = "cfg.json"

	CertCacheDirDefault = "./cache"
)

// TLSPort enables ACME, TLS and the plaintext redirect when it is the configured port.
const (
	TLSPort   = 443
	PlainPort = "80"
)

const ModelsPathPrefix = "/models/"

// ALPNProto is the only application protocol advertised to clients.
const ALPNProto = "h2"

const (
	RenewBeforeDefault        = 30 * 24 * time.Hour
	RenewCheckIntervalDefault = time.Hour
	OrderRetryInitialDefault  = time.Minute
	OrderRetryMaxDefault      = 6 * time.Hour

	ReadHeaderTimeoutDefault = 10 * time.Second
	IdleTimeoutDefault       = 120 * time.Second
	StallTimeoutDefault      = 60 * time.Second

	ShutdownTimeoutDefault = 3 * time.Second
)
