package metrics_test

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-ioc/framework/container"
	"github.com/km-arc/go-ioc/framework/metrics"
)

func TestObserver_CountsResolutions(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := metrics.NewObserver(reg)
	c := container.New(container.WithObserver(obs))
	require.NoError(t, c.Set(container.NewInstance("svc", "value")))

	_, err := c.Get("svc")
	require.NoError(t, err)
	_, err = c.Get("svc")
	require.NoError(t, err)
	_, err = c.Fresh("svc")
	require.NoError(t, err)
	_, err = c.Get("missing")
	require.Error(t, err)


	expected := `
# HELP ioc_resolution_errors_total Total number of failed service resolutions by error kind
# TYPE ioc_resolution_errors_total counter
ioc_resolution_errors_total{kind="not_found",namespace="/"} 1
# HELP ioc_resolutions_total Total number of successful service resolutions
# TYPE ioc_resolutions_total counter
ioc_resolutions_total{cached="false",namespace="/"} 2
ioc_resolutions_total{cached="true",namespace="/"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected)))
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&container.AliasCycleError{Chain: []string{"a", "a"}}, "cycle"},
		{&container.ContractViolationError{Name: "x"}, "contract"},
		{&container.ServiceCreateError{Name: "x", Err: errors.New("boom")}, "create"},
		{&container.ServiceCreateError{Name: "x", Err: &container.ServiceNotFoundError{Requested: "dep"}}, "create"},
		{&container.ServiceNotFoundError{Requested: "x"}, "not_found"},
		{fmt.Errorf("wrap: %w", container.ErrNamespaceNotFound), "namespace"},
		{container.ErrInvalidName, "invalid"},
		{errors.New("other"), "other"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, metrics.Kind(tc.err))
		})
	}
}

func TestHandler_ServesCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := metrics.NewObserver(reg)
	obs.Resolved("mail", "smtp", false)

	rec := httptest.NewRecorder()
	metrics.Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `ioc_resolutions_total{cached="false",namespace="mail"} 1`)
}
