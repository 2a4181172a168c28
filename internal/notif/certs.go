package notif

import (
	"strconv"

	"github.com/maskserve/maskserve/internal/autocert"
	"github.com/maskserve/maskserve/internal/utils/strutils"
	"github.com/rs/zerolog"
)

// CertEventHandler returns an autocert event handler that notifies
// about issued certificates, failed orders and cache errors.
func CertEventHandler(disp *Dispatcher) func(autocert.Event) {
	return func(ev autocert.Event) {
		if msg := certMessage(ev); msg != nil {
			disp.Notify(msg)
		}
	}
}

func certMessage(ev autocert.Event) *Message {
	msg := &Message{}
	switch ev.Kind {
	case autocert.EventCertIssued:
		msg.Title = "Certificate issued"
		msg.Level = zerolog.InfoLevel
		msg.Color = ColorSuccess
	case autocert.EventOrderFailed:
		msg.Title = "Certificate order failed"
		msg.Level = zerolog.ErrorLevel
		msg.Color = ColorError
	case autocert.EventCacheError:
		msg.Title = "Certificate cache error"
		msg.Level = zerolog.WarnLevel
		msg.Color = ColorWarn
	default:
		return nil
	}

	msg.Fields.Add("Domain", ev.Domain)
	if ev.Attempt > 0 {
		msg.Fields.Add("Attempt", strconv.Itoa(ev.Attempt))
	}
	if !ev.NotAfter.IsZero() {
		msg.Fields.Add("Expires", strutils.FormatTime(ev.NotAfter))
	}
	if ev.Err != nil {
		msg.Fields.Add("Error", ev.Err.Error())
	}
	return msg
}
