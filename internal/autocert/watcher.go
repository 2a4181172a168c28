package autocert

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/maskserve/maskserve/internal/gperr"
	"github.com/maskserve/maskserve/internal/task"
)

// watch reloads certificates replaced in the cache directory by
// something other than the workers, e.g. a restore from backup.
//
// subdirectories are not watched.
func (m *Manager) watch(t *task.Task) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		t.Finish(err)
		return gperr.Wrap(err, "create fs watcher")
	}
	if err := w.Add(m.cache.Dir()); err != nil {
		_ = w.Close()
		t.Finish(err)
		return gperr.Wrap(err, "watch cert cache").Subject(m.cache.Dir())
	}

	go func() {
		defer t.Finish(nil)
		defer w.Close()

		for {
			select {
			case <-t.Context().Done():
				return
			case fsEvent, ok := <-w.Events:
				if !ok {
					return
				}
				if !fsEvent.Has(fsnotify.Write) && !fsEvent.Has(fsnotify.Create) {
					continue
				}
				m.reload(t.Context(), fsEvent.Name)
			case err, ok := <-w.Errors:
				if !ok || errors.Is(err, fsnotify.ErrClosed) {
					return
				}
				logger.Warn().Err(err).Msg("cert cache watcher error")
			}
		}
	}()
	return nil
}

func (m *Manager) reload(ctx context.Context, name string) {
	domain, ok := m.cache.domainOf(name)
	if !ok {
		return
	}
	if _, ok := m.domains[domain]; !ok {
		return
	}
	if _, busy := m.writing.Load(domain); busy {
		return
	}

	entry, err := m.cache.Load(domain)
	if err != nil {
		if !err.Is(os.ErrNotExist) {
			m.emit(ctx, cacheErrorEvent(domain, err))
		}
		return
	}
	if entry.Expired(time.Now()) {
		m.emit(ctx, cacheErrorEvent(domain, ErrCertificateExpired.Subject(domain)))
		return
	}
	if cur, ok := m.resolver.Load(domain); ok && cur.Same(entry) {
		return
	}
	m.resolver.store(entry)
	m.emit(ctx, entryEvent(EventCertReloaded, entry))
}
