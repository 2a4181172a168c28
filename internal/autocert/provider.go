package autocert

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/maskserve/maskserve/internal/gperr"
	"github.com/maskserve/maskserve/internal/metrics"
	"github.com/maskserve/maskserve/internal/task"
	"github.com/maskserve/maskserve/internal/utils/strutils"
	"github.com/puzpuzpuz/xsync/v3"
)

// Manager keeps a valid certificate for every configured domain.
//
// Each domain has its own worker and its own order,
// so one failing domain never holds back the others.
type Manager struct {
	opt      Options
	issuer   Issuer
	cache    *DirCache
	resolver *Resolver

	domains map[string]struct{}
	// domains whose worker is between writing the cache and swapping the entry.
	writing *xsync.MapOf[string, struct{}]

	events     chan Event
	handlersMu sync.Mutex
	handlers   []func(Event)
}

const subscriberBufferSize = 64

// New creates a Manager that obtains certificates from the ACME CA in opt.
func New(opt Options) (*Manager, gperr.Error) {
	resolver := NewResolver()
	issuer, err := NewLegoIssuer(opt, resolver)
	if err != nil {
		return nil, err
	}
	return newManager(opt, issuer, resolver)
}

// NewManager creates a Manager with its own resolver, obtaining certificates from issuer.
func NewManager(opt Options, issuer Issuer) (*Manager, gperr.Error) {
	return newManager(opt, issuer, NewResolver())
}

func newManager(opt Options, issuer Issuer, resolver *Resolver) (*Manager, gperr.Error) {
	if err := opt.normalize(); err != nil {
		return nil, err
	}
	cache, err := NewDirCache(opt.CacheDir)
	if err != nil {
		return nil, err
	}
	m := &Manager{
		opt:      opt,
		issuer:   issuer,
		cache:    cache,
		resolver: resolver,
		domains:  make(map[string]struct{}, len(opt.Domains)),
		writing:  xsync.NewMapOf[string, struct{}](),
		// Setup emits at most one event per domain before the reporter runs.
		events: make(chan Event, 2*len(opt.Domains)+subscriberBufferSize),
	}
	for _, d := range opt.Domains {
		m.domains[d] = struct{}{}
	}
	return m, nil
}

func (m *Manager) Resolver() *Resolver {
	return m.resolver
}

func (m *Manager) Domains() []string {
	return m.opt.Domains
}

// Events returns a channel receiving a copy of every event emitted
// after the call. Events are dropped when the receiver falls behind.
func (m *Manager) Events() <-chan Event {
	ch := make(chan Event, subscriberBufferSize)
	m.OnEvent(func(ev Event) {
		select {
		case ch <- ev:
		default:
			logger.Warn().Str("domain", ev.Domain).Msg("event subscriber too slow, dropping event")
		}
	})
	return ch
}

// OnEvent registers fn to be called by the reporter loop for every event.
func (m *Manager) OnEvent(fn func(Event)) {
	m.handlersMu.Lock()
	defer m.handlersMu.Unlock()
	m.handlers = append(m.handlers, fn)
}

// Setup loads cached certificates into the resolver.
//
// It must be called before the TLS listener starts, so that
// domains with a valid cached certificate are served right away.
func (m *Manager) Setup() gperr.Error {
	if _, err := m.cache.List(); err != nil {
		return gperr.Wrap(err, "read cert cache").Subject(m.cache.Dir())
	}
	now := time.Now()
	for _, domain := range m.opt.Domains {
		entry, err := m.cache.Load(domain)
		switch {
		case err == nil && entry.Expired(now):
			m.emit(context.Background(), cacheErrorEvent(domain, ErrCertificateExpired.Subject(domain)))
		case err == nil:
			m.resolver.store(entry)
			m.emit(context.Background(), entryEvent(EventCertLoaded, entry))
		case err.Is(os.ErrNotExist):
			logger.Info().Str("domain", domain).Msg("no cached certificate")
		default:
			m.emit(context.Background(), cacheErrorEvent(domain, err))
		}
	}
	return nil
}

// Start starts the reporter loop, one worker per domain and the cache watcher.
// They all stop when parent is canceled.
func (m *Manager) Start(parent *task.Task) {
	t := parent.Subtask("autocert", false)

	go m.report(t.Subtask("reporter"))
	for _, domain := range m.opt.Domains {
		go m.runWorker(t.Subtask(domain), domain)
	}
	if err := m.watch(t.Subtask("watcher")); err != nil {
		gperr.LogWarn("cert cache watcher disabled", err, &logger)
	}
}

func (m *Manager) emit(ctx context.Context, ev Event) {
	select {
	case m.events <- ev:
	case <-ctx.Done():
	}
}

func (m *Manager) report(t *task.Task) {
	defer t.Finish(nil)
	for {
		select {
		case <-t.Context().Done():
			return
		case ev := <-m.events:
			m.handleEvent(ev)
		}
	}
}

func (m *Manager) handleEvent(ev Event) {
	logEvent(ev)
	metrics.ObserveCertEvent(ev.Domain, string(ev.Kind), ev.NotAfter)

	m.handlersMu.Lock()
	handlers := m.handlers
	m.handlersMu.Unlock()

	for _, fn := range handlers {
		invokeHandler(fn, ev)
	}
}

func invokeHandler(fn func(Event), ev Event) {
	defer func() {
		if err := recover(); err != nil {
			logger.Error().
				Str("domain", ev.Domain).
				Interface("err", err).
				Msg("panic in event handler")
		}
	}()
	fn(ev)
}

func logEvent(ev Event) {
	l := logger.With().Str("domain", ev.Domain).Logger()
	switch ev.Kind {
	case EventCertLoaded, EventCertIssued, EventCertReloaded:
		l.Info().
			Str("expires_in", strutils.FormatDuration(time.Until(ev.NotAfter))).
			Msg(string(ev.Kind))
	case EventOrderPending, EventOrderProcessing:
		l.Debug().Int("attempt", ev.Attempt).Msg(string(ev.Kind))
	case EventOrderFailed:
		l.Warn().Int("attempt", ev.Attempt).Err(ev.Err).Msg(string(ev.Kind))
	default:
		l.Error().Err(ev.Err).Msg(string(ev.Kind))
	}
}

func (m *Manager) newBackoff() backoff.BackOff {
	return backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(m.opt.RetryInitial),
		backoff.WithMaxInterval(m.opt.RetryMax),
		backoff.WithMaxElapsedTime(0), // never give up
	)
}

func (m *Manager) runWorker(t *task.Task, domain string) {
	defer t.Finish(nil)

	ctx := t.Context()
	bo := m.newBackoff()
	attempt := 0
	for {
		if wait := m.untilDue(domain, time.Now()); wait > 0 {
			if !sleep(ctx, wait) {
				return
			}
			continue
		}

		attempt++
		err := m.runOrder(ctx, domain, attempt)
		if ctx.Err() != nil {
			return
		}
		delay := m.opt.CheckInterval
		if err == nil {
			bo.Reset()
			attempt = 0
		} else {
			delay = bo.NextBackOff()
		}
		if !sleep(ctx, delay) {
			return
		}
	}
}

// untilDue returns how long the worker of domain should wait before
// checking again, or zero if an order is needed now.
func (m *Manager) untilDue(domain string, now time.Time) time.Duration {
	entry, ok := m.resolver.Load(domain)
	if !ok {
		return 0
	}
	wait := entry.RenewAt(m.opt.RenewBefore).Sub(now)
	if wait <= 0 {
		return 0
	}
	return min(wait, m.opt.CheckInterval)
}

func (m *Manager) runOrder(ctx context.Context, domain string, attempt int) error {
	o := &order{domain: domain, state: OrderStatePending, attempt: attempt}
	m.emit(ctx, o.event(EventOrderPending))

	o.state = OrderStateProcessing
	m.emit(ctx, o.event(EventOrderProcessing))

	entry, err := m.obtain(ctx, domain)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		o.state, o.err = OrderStateFailed, err
		m.emit(ctx, o.event(EventOrderFailed))
		return err
	}

	o.state = OrderStateValid
	ev := entryEvent(EventCertIssued, entry)
	ev.Attempt = attempt
	m.emit(ctx, ev)
	return nil
}

// obtain runs the issuer, then persists and swaps in the result.
func (m *Manager) obtain(ctx context.Context, domain string) (*Entry, error) {
	bundle, err := m.issuer.Obtain(ctx, domain)
	if err != nil {
		return nil, err
	}
	entry, perr := ParseEntry(domain, bundle.PEM())
	if perr != nil {
		return nil, perr
	}
	if entry.Expired(time.Now()) {
		return nil, ErrCertificateExpired.Subject(domain)
	}

	m.writing.Store(domain, struct{}{})
	defer m.writing.Delete(domain)

	if err := m.cache.Store(domain, bundle); err != nil {
		return nil, err
	}
	m.resolver.store(entry)
	return entry, nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
