package metrics

import (
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetrics_ObserveComputation(t *testing.T) {
	m := New()

	m.ObserveComputation("daily_summary", 10*time.Millisecond, false, nil)
	m.ObserveComputation("daily_summary", time.Millisecond, true, nil)
	m.ObserveComputation("daily_summary", time.Millisecond, true, nil)
	m.ObserveComputation("burnout", time.Millisecond, false, errors.New("not enough data"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.computations.WithLabelValues("daily_summary", "miss")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.computations.WithLabelValues("daily_summary", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.computationFailures.WithLabelValues("burnout")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.computationFailures.WithLabelValues("daily_summary")))
}

func TestMetrics_Middleware(t *testing.T) {
	m := New()

	router := mux.NewRouter()
	router.Use(m.Middleware)
	router.HandleFunc("/activity/work-logs", func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusCreated)
	}).Methods(http.MethodPost)
	router.HandleFunc("/users/{id}", func(writer http.ResponseWriter, request *http.Request) {}).Methods(http.MethodGet)

	for _, target := range []string{"/users/1", "/users/2"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/activity/work-logs", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/users/{id}", http.MethodGet, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/activity/work-logs", http.MethodPost, "201")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveComputation("heatmap", time.Millisecond, false, nil)

	server := httptest.NewServer(m.Handler())
	defer server.Close()

	response, err := http.Get(server.URL)
	require.NoError(t, err)
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.True(t, strings.Contains(string(body), `tracktivity_analytics_computations_total{cache="miss",kind="heatmap"} 1`))
}
