package autocert

import (
	"strings"
	"time"

	"github.com/maskserve/maskserve/internal/utils/strutils"
)

type EventKind string

const (
	EventCertLoaded      EventKind = "cert-loaded"
	EventOrderPending    EventKind = "order-pending"
	EventOrderProcessing EventKind = "order-processing"
	EventCertIssued      EventKind = "cert-issued"
	EventOrderFailed     EventKind = "order-failed"
	EventCertReloaded    EventKind = "cert-reloaded"
	EventCacheError      EventKind = "cache-error"
)

// Event is a copy of a state change, safe to keep after it is received.
type Event struct {
	Domain   string
	Kind     EventKind
	State    OrderState
	Attempt  int
	NotAfter time.Time
	Err      error
	Time     time.Time
}

func (ev Event) String() string {
	var sb strings.Builder
	sb.WriteString(ev.Domain)
	sb.WriteString(": ")
	sb.WriteString(string(ev.Kind))
	if !ev.NotAfter.IsZero() {
		sb.WriteString(", expires ")
		sb.WriteString(strutils.FormatTime(ev.NotAfter))
	}
	if ev.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(ev.Err.Error())
	}
	return sb.String()
}

func (o *order) event(kind EventKind) Event {
	return Event{
		Domain:  o.domain,
		Kind:    kind,
		State:   o.state,
		Attempt: o.attempt,
		Err:     o.err,
		Time:    time.Now(),
	}
}

func entryEvent(kind EventKind, e *Entry) Event {
	return Event{
		Domain:   e.Domain,
		Kind:     kind,
		State:    OrderStateValid,
		NotAfter: e.NotAfter,
		Time:     time.Now(),
	}
}

func cacheErrorEvent(domain string, err error) Event {
	return Event{
		Domain: domain,
		Kind:   EventCacheError,
		Err:    err,
		Time:   time.Now(),
	}
}
