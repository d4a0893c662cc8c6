package muxprom

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func Test_Middleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	i := NewInstrumentation(reg)

	h := i.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	for n := 0; n < 2; n++ {
		req := httptest.NewRequest(http.MethodGet, "http://example.com/scrape?target=10.0.0.5&chassis_id=1", nil)
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	expected := `
# HELP ilohwmetrics_http_requests_total The total number of requests received
# TYPE ilohwmetrics_http_requests_total counter
ilohwmetrics_http_requests_total{chassis_id="1",code="200",host="example.com",method="GET",route="/scrape"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "ilohwmetrics_http_requests_total"))
}

func Test_Middleware_Status(t *testing.T) {
	reg := prometheus.NewRegistry()
	i := NewInstrumentation(reg)

	h := i.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "http://example.com/scrape", nil))

	assert.Equal(t, 1, testutil.CollectAndCount(i.reqTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(i.reqTotal.WithLabelValues("400", "GET", "example.com", "", "/scrape")))
}
