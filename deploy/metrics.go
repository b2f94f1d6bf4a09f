// Package deploy provides deployment metrics.
// This file contains the Prometheus collectors recorded by the Deployer.
package deploy

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var durationBuckets = []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800}

// Metrics holds deployment collectors on a private registry so they can be
// flushed to a node-exporter textfile at the end of a run.
type Metrics struct {
	registry     *prometheus.Registry
	deployments  *prometheus.CounterVec
	hookAttempts *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	lastSuccess  *prometheus.GaugeVec
}

// NewMetrics creates and registers the deployment collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		deployments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "releasy",
			Subsystem: "deploy",
			Name:      "deployments_total",
			Help:      "Number of finished deployments by outcome",
		}, []string{"target", "status"}),
		hookAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "releasy",
			Subsystem: "deploy",
			Name:      "hook_attempts_total",
			Help:      "Number of hook attempts by outcome",
		}, []string{"target", "hook", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "releasy",
			Subsystem: "deploy",
			Name:      "duration_seconds",
			Help:      "Wall time of deployments",
			Buckets:   durationBuckets,
		}, []string{"target"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "releasy",
			Subsystem: "deploy",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful deployment",
		}, []string{"target"}),
	}

	m.registry.MustRegister(m.deployments, m.hookAttempts, m.duration, m.lastSuccess)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current values in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// recordHook counts every failed attempt before the last and the last
// attempt's outcome.
func (m *Metrics) recordHook(target, hook string, attempts int, err error) {
	if m == nil {
		return
	}
	if attempts > 1 {
		m.hookAttempts.With(prometheus.Labels{"target": target, "hook": hook, "outcome": "failure"}).Add(float64(attempts - 1))
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.hookAttempts.With(prometheus.Labels{"target": target, "hook": hook, "outcome": outcome}).Inc()
}

func (m *Metrics) recordDeployment(target string, status Status, elapsed time.Duration, at time.Time) {
	if m == nil {
		return
	}
	m.deployments.With(prometheus.Labels{"target": target, "status": status.String()}).Inc()
	m.duration.With(prometheus.Labels{"target": target}).Observe(elapsed.Seconds())
	if status == StatusSuccess || status == StatusRolledBack {
		m.lastSuccess.With(prometheus.Labels{"target": target}).Set(float64(at.Unix()))
	}
}
