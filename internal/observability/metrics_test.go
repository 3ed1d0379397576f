package observability

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/lumina/internal/scheduler"
)

var _ scheduler.Observer = (*Metrics)(nil)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetricsObserveEngine(t *testing.T) {
	m := NewMetrics(Namespace)
	m.ObservePass(3*time.Millisecond, 4, nil)
	m.ObservePass(time.Millisecond, 0, errors.New("boom"))
	m.ObserveAlert(scheduler.ChannelOS)
	m.ObserveAlert(scheduler.ChannelInApp)
	m.ObserveAlert(scheduler.ChannelInApp)
	m.ObservePromotion()

	body := scrape(t, m)
	assert.Contains(t, body, `lumina_scheduler_passes_total{result="ok"} 1`)
	assert.Contains(t, body, `lumina_scheduler_passes_total{result="error"} 1`)
	assert.Contains(t, body, `lumina_scheduler_tasks_evaluated 4`)
	assert.Contains(t, body, `lumina_scheduler_alerts_total{channel="os"} 1`)
	assert.Contains(t, body, `lumina_scheduler_alerts_total{channel="in_app"} 2`)
	assert.Contains(t, body, `lumina_scheduler_promotions_total 1`)
	assert.Contains(t, body, `lumina_scheduler_pass_duration_ms_count 2`)
	assert.Contains(t, body, "go_goroutines")
}

func TestMetricsRegistriesAreIndependent(t *testing.T) {
	a := NewMetrics(Namespace)
	b := NewMetrics(Namespace)
	a.ObservePromotion()

	assert.Contains(t, scrape(t, a), "lumina_scheduler_promotions_total 1")
	assert.Contains(t, scrape(t, b), "lumina_scheduler_promotions_total 0")
}
