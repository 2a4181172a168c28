package main

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/maskserve/maskserve/internal/autocert"
	"github.com/maskserve/maskserve/internal/common"
	"github.com/maskserve/maskserve/internal/config"
	"github.com/maskserve/maskserve/internal/gperr"
	"github.com/maskserve/maskserve/internal/logging"
	"github.com/maskserve/maskserve/internal/metrics"
	"github.com/maskserve/maskserve/internal/net/gphttp/middleware"
	"github.com/maskserve/maskserve/internal/net/gphttp/server"
	"github.com/maskserve/maskserve/internal/notif"
	"github.com/maskserve/maskserve/internal/route"
	"github.com/maskserve/maskserve/internal/task"
	"github.com/maskserve/maskserve/internal/utils"
	"github.com/maskserve/maskserve/internal/utils/strutils"
)

func main() {
	initProfiling()
	args := common.GetArgs()

	if args.Command != common.CommandStart {
		logging.InitLogger(os.Stderr)
	}

	cfg, err := config.Load(args.ConfigFile)
	if err != nil {
		gperr.LogFatal("config error", err)
	}

	switch args.Command {
	case common.CommandValidate:
		logging.Info().Msg("config OK")
		return
	case common.CommandListConfig:
		printJSON(cfg)
		return
	case common.CommandListCerts:
		printJSON(listCerts(cfg))
		return
	}

	if err := cfg.CheckDirectories(); err != nil {
		gperr.LogFatal("invalid asset directories", err)
	}

	handler, err := route.NewHandler(cfg)
	if err != nil {
		gperr.LogFatal("failed to create routes", err)
	}

	parent := task.RootTask("main", false)

	if cfg.TLSEnabled() {
		startTLS(parent, cfg, handler)
	} else {
		logging.Info().Int("port", cfg.Port).Msg("TLS disabled, serving plaintext")
		startServer(parent, server.Options{
			Name:    "http",
			Addr:    cfg.ListenAddr(),
			Handler: middleware.WithMetrics("http", handler),
		})
	}

	if common.MetricsAddr != "" {
		startServer(parent, server.Options{
			Name:    "metrics",
			Addr:    common.MetricsAddr,
			Handler: metrics.NewHandler(),
		})
	}

	utils.WaitExit(common.ShutdownTimeout)
}

func startTLS(parent *task.Task, cfg *config.Config, handler http.Handler) {
	m, err := autocert.New(autocert.NewOptions(cfg.Email, cfg.Domains))
	if err != nil {
		gperr.LogFatal("autocert error", err)
	}
	// cached certificates are served before the first handshake
	if common.NotificationConfig != "" {
		providers, err := notif.LoadConfig(common.NotificationConfig)
		if err != nil {
			gperr.LogFatal("notification config error", err)
		}
		m.OnEvent(notif.CertEventHandler(notif.StartDispatcher(parent, providers...)))
	}
	if err := m.Setup(); err != nil {
		gperr.LogFatal("failed to load certificate cache", err)
	}

	startServer(parent, server.Options{
		Name:      "https",
		Addr:      cfg.ListenAddr(),
		Handler:   middleware.WithMetrics("https", handler),
		TLSConfig: server.NewTLSConfig(m.Resolver()),
	})
	m.Start(parent)

	startServer(parent, server.Options{
		Name:    "redirect",
		Addr:    common.RedirectAddr,
		Handler: middleware.WithMetrics("redirect", server.RedirectHandler(strconv.Itoa(cfg.Port))),
	})
}

func startServer(parent *task.Task, opt server.Options) {
	if _, err := server.Start(parent, opt); err != nil {
		gperr.LogFatal("failed to start "+opt.Name+" server", err)
	}
}

type certInfo struct {
	Domain    string `json:"domain"`
	Cached    bool   `json:"cached"`
	NotBefore string `json:"not_before,omitempty"`
	NotAfter  string `json:"not_after,omitempty"`
	Expired   bool   `json:"expired,omitempty"`
	Error     string `json:"error,omitempty"`
}

func listCerts(cfg *config.Config) []certInfo {
	cache, err := autocert.NewDirCache(common.CertCacheDir)
	if err != nil {
		gperr.LogFatal("failed to open certificate cache", err)
	}

	infos := make([]certInfo, 0, len(cfg.Domains))
	for _, domain := range cfg.Domains {
		info := certInfo{Domain: domain}
		entry, err := cache.Load(domain)
		switch {
		case err == nil:
			info.Cached = true
			info.NotBefore = strutils.FormatTime(entry.NotBefore)
			info.NotAfter = strutils.FormatTime(entry.NotAfter)
			info.Expired = entry.Expired(time.Now())
		case !errors.Is(err, fs.ErrNotExist):
			info.Error = err.Error()
		}
		infos = append(infos, info)
	}
	return infos
}

func printJSON(obj any) {
	j, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		logging.Fatal().Err(err).Send()
	}
	rawLogger := log.New(os.Stdout, "", 0)
	rawLogger.Printf("%s", j) // raw output for convenience using "jq"
}
