package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_Observe(t *testing.T) {
	c := New("https://example.com")
	at := time.Unix(1700000000, 0)

	c.Observe(true, 120*time.Millisecond, at)
	c.Observe(true, 80*time.Millisecond, at)
	c.Observe(false, 3*time.Second, at.Add(time.Second))

	if got := testutil.ToFloat64(c.checks.WithLabelValues("up")); got != 2 {
		t.Errorf("checks{result=up} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.checks.WithLabelValues("down")); got != 1 {
		t.Errorf("checks{result=down} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.up); got != 0 {
		t.Errorf("target_up = %v, want 0 after a down check", got)
	}
	if got := testutil.ToFloat64(c.lastSeen); got != 1700000001 {
		t.Errorf("last_check_timestamp_seconds = %v, want 1700000001", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := New("https://example.com")
	c.Observe(true, 50*time.Millisecond, time.Now())

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	text := string(body)

	for _, want := range []string{
		`pin_checks_total{result="up",target="https://example.com"} 1`,
		`pin_check_duration_seconds_count{target="https://example.com"} 1`,
		`pin_target_up{target="https://example.com"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestCollector_IndependentRegistries(t *testing.T) {
	// two collectors must not panic on duplicate registration
	a := New("https://a.example.com")
	b := New("https://b.example.com")
	a.Observe(true, time.Millisecond, time.Now())

	if got := testutil.ToFloat64(b.checks.WithLabelValues("up")); got != 0 {
		t.Errorf("collector b saw %v checks from a", got)
	}
}
