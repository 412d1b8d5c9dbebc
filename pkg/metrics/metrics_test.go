package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMetrics(t *testing.T) {
	InitMetrics()
	InitMetrics() // 重复调用不会重复注册而panic

	require.NotNil(t, HTTPRequestsTotal)
	require.NotNil(t, OrdersCreatedTotal)
	require.NotNil(t, BookCacheRequestsTotal)
	require.NotNil(t, MessagesPublishedTotal)
}

func TestCounter(t *testing.T) {
	InitMetrics()

	before := testutil.ToFloat64(BooksCreatedTotal)
	IncCounter(BooksCreatedTotal)
	IncCounter(BooksCreatedTotal)
	assert.Equal(t, before+2, testutil.ToFloat64(BooksCreatedTotal))
}

func TestCounterVec(t *testing.T) {
	InitMetrics()

	hit := BookCacheRequestsTotal.WithLabelValues("hit")
	miss := BookCacheRequestsTotal.WithLabelValues("miss")
	hitBefore, missBefore := testutil.ToFloat64(hit), testutil.ToFloat64(miss)

	IncCounterVec(BookCacheRequestsTotal, map[string]string{"result": "hit"})
	IncCounterVec(BookCacheRequestsTotal, map[string]string{"result": "hit"})
	IncCounterVec(BookCacheRequestsTotal, map[string]string{"result": "miss"})

	assert.Equal(t, hitBefore+2, testutil.ToFloat64(hit))
	assert.Equal(t, missBefore+1, testutil.ToFloat64(miss))
}

func TestGauge(t *testing.T) {
	InitMetrics()

	before := testutil.ToFloat64(OrdersInProgress)
	IncGauge(OrdersInProgress)
	IncGauge(OrdersInProgress)
	DecGauge(OrdersInProgress)
	assert.Equal(t, before+1, testutil.ToFloat64(OrdersInProgress))
	DecGauge(OrdersInProgress)
}

func TestHistogram(t *testing.T) {
	InitMetrics()

	ObserveHistogram(OrderCreationDuration, 0.02)
	ObserveHistogramVec(HTTPRequestDuration, map[string]string{"method": "GET", "path": "/ping"}, 0.001)

	assert.Equal(t, 1, testutil.CollectAndCount(HTTPRequestDuration))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(OrderCreationDuration), 1)
}

func TestGaugeVec(t *testing.T) {
	InitMetrics()

	SetGaugeVec(CircuitBreakerState, map[string]string{"name": "rabbitmq"}, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(CircuitBreakerState.WithLabelValues("rabbitmq")))
	SetGaugeVec(CircuitBreakerState, map[string]string{"name": "rabbitmq"}, 0)
	assert.Equal(t, 0.0, testutil.ToFloat64(CircuitBreakerState.WithLabelValues("rabbitmq")))
}
