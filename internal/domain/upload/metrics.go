package upload

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer captures telemetry for asset store operations.
type Observer interface {
	RecordSave(duration time.Duration, sizeBytes int, err error)
	RecordPurge(duration time.Duration, err error)
}

// PrometheusObserver exports asset store metrics to Prometheus.
type PrometheusObserver struct {
	duration   *prometheus.HistogramVec
	errors     *prometheus.CounterVec
	savedBytes prometheus.Counter
}

// NewPrometheusObserver registers save/purge metrics on reg.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "review_assets"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &PrometheusObserver{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of review asset store operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_errors_total",
			Help:      "Failed review asset store operations.",
		}, []string{"operation"}),
		savedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saved_bytes_total",
			Help:      "Bytes of review images successfully persisted.",
		}),
	}

	var err error
	if o.duration, err = registerOrExisting(reg, o.duration); err != nil {
		return nil, err
	}
	if o.errors, err = registerOrExisting(reg, o.errors); err != nil {
		return nil, err
	}
	if o.savedBytes, err = registerOrExisting(reg, o.savedBytes); err != nil {
		return nil, err
	}
	return o, nil
}

// registerOrExisting reuses an already registered collector so that several
// stores can share one registry.
func registerOrExisting[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register asset store metric: %w", err)
	}
	return c, nil
}

// RecordSave tracks save latency, bytes written and failures.
func (o *PrometheusObserver) RecordSave(duration time.Duration, sizeBytes int, err error) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues("save").Observe(duration.Seconds())
	if err != nil {
		o.errors.WithLabelValues("save").Inc()
		return
	}
	o.savedBytes.Add(float64(sizeBytes))
}

func (o *PrometheusObserver) RecordPurge(duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues("purge").Observe(duration.Seconds())
	if err != nil {
		o.errors.WithLabelValues("purge").Inc()
	}
}
