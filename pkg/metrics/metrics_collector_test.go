package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCollector(t *testing.T) {
	m := NewMetricsCollector(prometheus.NewRegistry())

	m.RecordOrderTransition("awaiting_confirmation", "paid")
	m.RecordOrderTransition("awaiting_confirmation", "paid")
	m.RecordOrderTransition("paid", "refunded")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.orderTransitionsTotal.WithLabelValues("awaiting_confirmation", "paid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.orderTransitionsTotal.WithLabelValues("paid", "refunded")))

	m.RecordHTTPRequest("POST", "/orders", 200, 15*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("POST", "/orders", "200")))

	m.RecordCache("catalog", true)
	m.RecordCache("catalog", false)
	m.RecordCache("catalog", false)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheRequestsTotal.WithLabelValues("catalog", "miss")))
}
