package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewCollector_RegistersMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	if c == nil {
		t.Fatal("expected non-nil collector")
	}

	c.RecordRegistration()
	c.RecordLoginSuccess()
	c.RecordLoginFailure()
	c.RecordHTTPStatus(200)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather returned error: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected gathered metric families")
	}
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordLoginSuccess()

	handler := Handler(reg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if !strings.Contains(string(body), "minpost_logins_total") {
		t.Errorf("expected minpost_logins_total in metrics output")
	}
}

func TestRegisterSessionGauge_ReportsLen(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterSessionGauge(reg, func() int { return 3 })

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather returned error: %v", err)
	}

	for _, fam := range families {
		if fam.GetName() == "minpost_sessions_active" {
			if v := fam.GetMetric()[0].GetGauge().GetValue(); v != 3 {
				t.Errorf("gauge = %v, want 3", v)
			}
			return
		}
	}
	t.Fatal("minpost_sessions_active not found")
}
