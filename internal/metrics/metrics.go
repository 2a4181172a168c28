package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/maskserve/maskserve/internal/common"
	"github.com/prometheus/client_golang/prometheus"
)

type (
	HTTPMetrics struct {
		ReqTotal     *Counter
		RespBytes    *Counter
		ReqElapsedMs *Gauge
	}
	CertMetrics struct {
		NotAfter *Gauge
		Events   *Counter
	}
)

var (
	hm HTTPMetrics
	cm CertMetrics
)

const (
	namespace     = "maskserve"
	httpSubsystem = "http"
	certSubsystem = "cert"
)

func init() {
	if !common.PrometheusEnabled {
		return
	}
	initHTTPMetrics()
	initCertMetrics()
}

func initHTTPMetrics() {
	lbls := []string{"server", "method", "code"}
	partitionsHelp := ", partitioned by " + strings.Join(lbls, ", ")
	hm = HTTPMetrics{
		ReqTotal: NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: httpSubsystem,
			Name:      "req_total",
			Help:      "How many requests processed" + partitionsHelp,
		}, lbls...),
		RespBytes: NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: httpSubsystem,
			Name:      "resp_bytes_total",
			Help:      "How many response body bytes written" + partitionsHelp,
		}, lbls...),
		ReqElapsedMs: NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: httpSubsystem,
			Name:      "req_elapsed_ms",
			Help:      "How long it took to process the last request" + partitionsHelp,
		}, lbls...),
	}
}

func initCertMetrics() {
	cm = CertMetrics{
		NotAfter: NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: certSubsystem,
			Name:      "not_after_seconds",
			Help:      "Expiry of the served certificate as unix time, partitioned by domain",
		}, "domain"),
		Events: NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: certSubsystem,
			Name:      "events_total",
			Help:      "How many certificate events emitted, partitioned by domain, kind",
		}, "domain", "kind"),
	}
}

// ObserveRequest records one finished request. No-op when prometheus is disabled.
func ObserveRequest(server, method string, code int, written int64, elapsed time.Duration) {
	if !common.PrometheusEnabled {
		return
	}
	lbls := &HTTPMetricLabels{Server: server, Method: method, Code: statusClass(code)}
	hm.ReqTotal.With(lbls).Inc()
	hm.RespBytes.With(lbls).Add(float64(written))
	hm.ReqElapsedMs.With(lbls).Set(float64(elapsed.Milliseconds()))
}

// ObserveCertEvent counts one certificate event and updates the expiry
// gauge when notAfter is set. No-op when prometheus is disabled.
func ObserveCertEvent(domain, kind string, notAfter time.Time) {
	if !common.PrometheusEnabled {
		return
	}
	cm.Events.With(&CertEventLabels{Domain: domain, Kind: kind}).Inc()
	if !notAfter.IsZero() {
		cm.NotAfter.With(CertMetricLabels(domain)).Set(float64(notAfter.Unix()))
	}
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return strconv.Itoa(code)
	}
	return strconv.Itoa(code/100) + "xx"
}
