package common

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// loaded before any other package variable so .env values are visible below.
var _ = loadDotEnv()

var (
	prefixes = []string{"MASKSERVE_", ""}

	IsTest       = GetEnvBool("TEST", false) || strings.HasSuffix(os.Args[0], ".test")
	IsDebug      = GetEnvBool("DEBUG", IsTest)
	IsTrace      = GetEnvBool("TRACE", false) && IsDebug
	IsProduction = !IsTest && !IsDebug

	ConfigFile = GetEnvString("CONFIG_FILE", ConfigFileDefault)

	CertCacheDir  = GetEnvString("CERT_CACHE_DIR", CertCacheDirDefault)
	ACMEStaging   = GetEnvBool("ACME_STAGING", false)
	ACMECADirURL  = GetEnvString("ACME_CA_DIR_URL", "")
	RenewBefore   = GetDurationEnv("RENEW_BEFORE", RenewBeforeDefault)
	RenewInterval = GetDurationEnv("RENEW_CHECK_INTERVAL", RenewCheckIntervalDefault)
	RetryInitial  = GetDurationEnv("ORDER_RETRY_INITIAL", OrderRetryInitialDefault)
	RetryMax      = GetDurationEnv("ORDER_RETRY_MAX", OrderRetryMaxDefault)

	RedirectAddr, _, _ = GetAddrEnv("REDIRECT_ADDR", ":"+PlainPort)

	NotificationConfig = GetEnvString("NOTIFICATION_CONFIG", "")

	MetricsAddr       = GetEnvString("METRICS_ADDR", "")
	PrometheusEnabled = MetricsAddr != "" || IsTest

	ReadHeaderTimeout = GetDurationEnv("CONN_READ_HEADER_TIMEOUT", ReadHeaderTimeoutDefault)
	IdleTimeout       = GetDurationEnv("CONN_IDLE_TIMEOUT", IdleTimeoutDefault)
	StallTimeout      = GetDurationEnv("CONN_STALL_TIMEOUT", StallTimeoutDefault)

	ShutdownTimeout = GetDurationEnv("SHUTDOWN_TIMEOUT", ShutdownTimeoutDefault)

	// only used by pprof builds
	PprofAddr = GetEnvString("PPROF_ADDR", ":7777")
)

func loadDotEnv() error {
	err := godotenv.Load(DotEnvPath)
	if err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("failed to load " + DotEnvPath)
	}
	return err
}

func GetEnv[T any](key string, defaultValue T, parser func(string) (T, error)) T {
	var value string
	var ok bool
	for _, prefix := range prefixes {
		value, ok = os.LookupEnv(prefix + key)
		if ok && value != "" {
			break
		}
	}
	if !ok || value == "" {
		return defaultValue
	}
	parsed, err := parser(value)
	if err == nil {
		return parsed
	}
	log.Fatal().Err(err).Msgf("env %s: invalid %T value: %s", key, parsed, value)
	return defaultValue
}

func GetEnvString(key string, defaultValue string) string {
	return GetEnv(key, defaultValue, func(s string) (string, error) {
		return s, nil
	})
}

func GetEnvBool(key string, defaultValue bool) bool {
	return GetEnv(key, defaultValue, strconv.ParseBool)
}

func GetAddrEnv(key, defaultValue string) (addr, host, port string) {
	addr = GetEnvString(key, defaultValue)
	if addr == "" {
		return
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		log.Fatal().Msgf("env %s: invalid address: %s", key, addr)
	}
	return
}

func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	return GetEnv(key, defaultValue, time.ParseDuration)
}
