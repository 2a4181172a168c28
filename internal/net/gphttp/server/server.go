package server

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/maskserve/maskserve/internal/common"
	"github.com/maskserve/maskserve/internal/gperr"
	"github.com/maskserve/maskserve/internal/logging"
	"github.com/maskserve/maskserve/internal/task"
	"github.com/rs/zerolog"
)

type Server struct {
	Name      string
	http      *http.Server
	listener  net.Listener
	startTime time.Time

	l zerolog.Logger
}

type Options struct {
	Name    string
	Addr    string
	Handler http.Handler
	// TLSConfig enables TLS when set, see NewTLSConfig.
	TLSConfig *tls.Config

	// zero values are replaced by the env defaults.
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
	StallTimeout      time.Duration
}

func (opt *Options) setDefaults() {
	if opt.ReadHeaderTimeout <= 0 {
		opt.ReadHeaderTimeout = common.ReadHeaderTimeout
	}
	if opt.IdleTimeout <= 0 {
		opt.IdleTimeout = common.IdleTimeout
	}
	if opt.StallTimeout <= 0 {
		opt.StallTimeout = common.StallTimeout
	}
}

// Start binds opt.Addr and serves opt.Handler until parent is canceled.
//
// ReadTimeout and WriteTimeout are left unset so large downloads are
// not cut off. Stalled connections are dropped by the per-write deadline.
//
// Start() is non-blocking.
func Start(parent *task.Task, opt Options) (*Server, gperr.Error) {
	opt.setDefaults()

	proto := "http"
	if opt.TLSConfig != nil {
		proto = "https"
	}
	logger := logging.With().Str("server", opt.Name).Str("proto", proto).Logger()

	s := &Server{
		Name: opt.Name,
		http: &http.Server{
			Addr:              opt.Addr,
			Handler:           opt.Handler,
			TLSConfig:         opt.TLSConfig,
			ReadHeaderTimeout: opt.ReadHeaderTimeout,
			IdleTimeout:       opt.IdleTimeout,
			// handshake failures and broken clients are not worth more than debug
			ErrorLog: logging.StdLogger(&logger, zerolog.DebugLevel),
		},
		l: logger,
	}

	t := parent.Subtask(opt.Name)
	s.http.BaseContext = func(net.Listener) context.Context {
		return t.Context()
	}

	var lc net.ListenConfig
	l, err := lc.Listen(t.Context(), "tcp", opt.Addr)
	if err != nil {
		t.Finish(err)
		return nil, gperr.Wrap(err, "failed to listen").Subject(opt.Addr)
	}
	l = newStallListener(l, opt.StallTimeout)
	if opt.TLSConfig != nil {
		// Serve adds http/1.1 to the server's own TLSConfig when it configures h2,
		// the listener keeps the h2-only copy.
		l = tls.NewListener(l, opt.TLSConfig.Clone())
	}
	s.listener = l
	s.startTime = time.Now()

	t.OnCancel("stop", func() {
		s.stop()
	})

	logger.Info().Str("addr", l.Addr().String()).Msg("server started")

	go func() {
		err := s.http.Serve(l)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		if err != nil {
			gperr.LogError("failed to serve "+proto+" server", err, &s.l)
		}
		t.Finish(err)
	}()
	return s, nil
}

func (s *Server) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), common.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		gperr.LogWarn("failed to shutdown server gracefully", err, &s.l)
		_ = s.http.Close()
		return
	}
	s.l.Info().Msg("server stopped")
}

// Addr returns the bound address, useful when listening on port 0.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *Server) Uptime() time.Duration {
	return time.Since(s.startTime)
}
