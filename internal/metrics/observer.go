// Package metrics exports controller outcomes to Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/ahmad-alkadri/editor-depot/internal/ueditor"
	"github.com/prometheus/client_golang/prometheus"
)

const defaultNamespace = "editor_depot"

// Observer records request outcomes, stored bytes and remote fetch failures.
type Observer struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	storedBytes   *prometheus.CounterVec
	fetchFailures prometheus.Counter
}

// NewObserver registers the controller metrics on reg, reusing collectors
// that are already registered under the same names.
func NewObserver(namespace string, reg prometheus.Registerer) (*Observer, error) {
	if namespace == "" {
		namespace = defaultNamespace
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	var err error
	o := &Observer{}
	if o.requests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Controller requests by action and outcome.",
	}, []string{"action", "outcome"})); err != nil {
		return nil, fmt.Errorf("register requests counter: %w", err)
	}
	if o.duration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "Latency of controller actions.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"action"})); err != nil {
		return nil, fmt.Errorf("register duration histogram: %w", err)
	}
	if o.storedBytes, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stored_bytes_total",
		Help:      "Bytes written to the storage root by upload kind.",
	}, []string{"kind"})); err != nil {
		return nil, fmt.Errorf("register stored bytes counter: %w", err)
	}
	if o.fetchFailures, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catcher_fetch_failures_total",
		Help:      "Remote images the catcher could not retrieve.",
	})); err != nil {
		return nil, fmt.Errorf("register fetch failures counter: %w", err)
	}
	return o, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ObserveRequest counts one dispatched action and records its latency.
func (o *Observer) ObserveRequest(action string, success bool, elapsed time.Duration) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	o.requests.WithLabelValues(action, outcome).Inc()
	o.duration.WithLabelValues(action).Observe(elapsed.Seconds())
}

// ObserveStored adds the size of a stored file to its kind's total.
func (o *Observer) ObserveStored(kind string, bytes int64) {
	o.storedBytes.WithLabelValues(kind).Add(float64(bytes))
}

// ObserveFetchFailure counts a remote image the catcher could not retrieve.
func (o *Observer) ObserveFetchFailure() {
	o.fetchFailures.Inc()
}

var _ ueditor.Observer = (*Observer)(nil)
