package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/maskserve/maskserve/internal/utils/testing"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	NewHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	ExpectEqual(t, rec.Code, http.StatusOK)
	body, err := io.ReadAll(rec.Body)
	ExpectNoError(t, err)
	return string(body)
}

func TestObserveRequest(t *testing.T) {
	ObserveRequest("tls", http.MethodGet, http.StatusNotFound, 42, 5*time.Millisecond)
	body := scrape(t)
	ExpectContains(t, body, `maskserve_http_req_total{code="4xx",method="GET",server="tls"} 1`)
	ExpectContains(t, body, `maskserve_http_resp_bytes_total{code="4xx",method="GET",server="tls"} 42`)
}

func TestObserveCertEvent(t *testing.T) {
	notAfter := time.Unix(1700000000, 0)
	ObserveCertEvent("example.com", "cert-issued", notAfter)
	body := scrape(t)
	ExpectContains(t, body, `maskserve_cert_events_total{domain="example.com",kind="cert-issued"} 1`)
	ExpectContains(t, body, `maskserve_cert_not_after_seconds{domain="example.com"} 1.7e+09`)
}

func TestStatusClass(t *testing.T) {
	ExpectEqual(t, statusClass(200), "2xx")
	ExpectEqual(t, statusClass(308), "3xx")
	ExpectEqual(t, statusClass(503), "5xx")
	ExpectEqual(t, statusClass(0), "0")
}
