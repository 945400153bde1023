package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsHighCardinalityLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("transition", "approve"),
		attribute.String("application_id", "123"),
		attribute.String("outcome", "ok"),
	)
	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("transition"), attrs[0].Key)
	assert.Equal(t, attribute.Key("outcome"), attrs[1].Key)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordTransition(context.Background(), "approve", "ok")
		m.RecordInvoiceCreated(context.Background(), 3500)
	})
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{}, noop.NewMeterProvider())
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		m.RecordTransition(context.Background(), "approve", "ok")
		m.RecordNotification(context.Background(), "email", "sent")
	})
}

func TestHTTPMetricsMiddlewareCountsRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewHTTPMetrics()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", m.Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/health", "200")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "permitdesk_http_requests_total")
}

func TestHTTPMetricsRecordsLatencyPerRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewHTTPMetrics()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/public/insurance/activities/:name", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, name := range []string{"Festival", "Wedding", "Concert"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/public/insurance/activities/"+name, nil))
	}

	families, err := m.registry.Gather()
	require.NoError(t, err)

	var histogram *dto.Histogram
	for _, family := range families {
		if family.GetName() != "permitdesk_http_request_duration_seconds" {
			continue
		}
		require.Len(t, family.GetMetric(), 1)
		for _, label := range family.GetMetric()[0].GetLabel() {
			if label.GetName() == "route" {
				assert.Equal(t, "/public/insurance/activities/:name", label.GetValue())
			}
		}
		histogram = family.GetMetric()[0].GetHistogram()
	}
	require.NotNil(t, histogram)
	assert.Equal(t, uint64(3), histogram.GetSampleCount())
}
