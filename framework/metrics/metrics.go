// Package metrics exports container resolution counters to Prometheus.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/km-arc/go-ioc/framework/container"
)

// Observer implements container.Observer on top of two counter vectors.
//
//	obs := metrics.NewObserver(prometheus.NewRegistry())
//	app := container.New(container.WithObserver(obs))
type Observer struct {
	resolutions *prometheus.CounterVec
	failures    *prometheus.CounterVec
}

var _ container.Observer = (*Observer)(nil)

// NewObserver creates the counters and registers them with reg.
func NewObserver(reg prometheus.Registerer) *Observer {
	o := &Observer{
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ioc",
				Name:      "resolutions_total",
				Help:      "Total number of successful service resolutions",
			},
			[]string{"namespace", "cached"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ioc",
				Name:      "resolution_errors_total",
				Help:      "Total number of failed service resolutions by error kind",
			},
			[]string{"namespace", "kind"},
		),
	}
	reg.MustRegister(o.resolutions, o.failures)
	return o
}

// Resolved counts a successful Get or Fresh.
func (o *Observer) Resolved(namespace, _ string, cached bool) {
	label := "false"
	if cached {
		label = "true"
	}
	o.resolutions.WithLabelValues(displayNamespace(namespace), label).Inc()
}

// Failed counts a failed Get or Fresh under its error kind.
func (o *Observer) Failed(namespace, _ string, err error) {
	o.failures.WithLabelValues(displayNamespace(namespace), Kind(err)).Inc()
}

// Kind classifies a container error for the "kind" label.
func Kind(err error) string {
	switch {
	case errors.Is(err, container.ErrAliasCycle):
		return "cycle"
	case errors.Is(err, container.ErrContractViolation):
		return "contract"
	case errors.Is(err, container.ErrServiceCreate):
		return "create"
	case errors.Is(err, container.ErrServiceNotFound):
		return "not_found"
	case errors.Is(err, container.ErrNamespaceNotFound):
		return "namespace"
	case errors.Is(err, container.ErrInvalidName):
		return "invalid"
	}
	return "other"
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func displayNamespace(ns string) string {
	if ns == "" {
		return "/"
	}
	return ns
}
