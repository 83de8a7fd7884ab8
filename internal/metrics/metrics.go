// Package metrics registers the Prometheus instruments exposed in serve
// mode.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the aggregation instruments.
type Metrics struct {
	RunsTotal         *prometheus.CounterVec
	RunDuration       *prometheus.SummaryVec
	RecordsProcessed  *prometheus.CounterVec
	UnmatchedLabels   *prometheus.CounterVec
	DuplicatesDropped *prometheus.CounterVec
	CellsWritten      *prometheus.CounterVec
	LastSuccessTS     *prometheus.GaugeVec
}

// New registers all instruments on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recruitsum",
			Name:      "runs_total",
			Help:      "Aggregation runs by kind and result",
		}, []string{"kind", "result"}),
		RunDuration: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Namespace: "recruitsum",
			Name:      "run_duration_seconds",
			Help:      "Time spent per aggregation run",
		}, []string{"kind"}),
		RecordsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recruitsum",
			Name:      "records_processed_total",
			Help:      "Source rows read per kind",
		}, []string{"kind"}),
		UnmatchedLabels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recruitsum",
			Name:      "unmatched_labels_total",
			Help:      "Records excluded because their label did not match the vocabulary",
		}, []string{"kind"}),
		DuplicatesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recruitsum",
			Name:      "duplicates_dropped_total",
			Help:      "Event rows collapsed by composite-key dedup",
		}, []string{"kind"}),
		CellsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recruitsum",
			Name:      "cells_written_total",
			Help:      "Destination cells written per kind",
		}, []string{"kind"}),
		LastSuccessTS: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "recruitsum",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run per kind",
		}, []string{"kind"}),
	}
	reg.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.RecordsProcessed,
		m.UnmatchedLabels,
		m.DuplicatesDropped,
		m.CellsWritten,
		m.LastSuccessTS,
	)
	return m
}
