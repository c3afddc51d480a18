// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package virtual

import "github.com/prometheus/client_golang/prometheus"

// Metrics instruments a VirtualState. Unlike protocol/wave's Averager-based
// WaveMetrics, the virtual state has no poll/confidence concept to average;
// admission and cleanup are simple counters and a gauge.
type Metrics struct {
	CertificatesAdmitted prometheus.Counter
	CertificatesRejected prometheus.Counter
	LastCleanupRound     prometheus.Gauge
}

// NewMetrics registers and returns virtual-state metrics under reg. Callers
// own the registerer; this core does not run an exporter (SPEC_FULL.md §1).
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		CertificatesAdmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dolphin",
			Subsystem: "virtual",
			Name:      "certificates_admitted_total",
			Help:      "Certificates accepted into the virtual DAG.",
		}),
		CertificatesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dolphin",
			Subsystem: "virtual",
			Name:      "certificates_rejected_total",
			Help:      "Certificates rejected by the admission rule.",
		}),
		LastCleanupRound: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dolphin",
			Subsystem: "virtual",
			Name:      "last_cleanup_round",
			Help:      "Last committed round passed to Cleanup.",
		}),
	}
	for _, c := range []prometheus.Collector{m.CertificatesAdmitted, m.CertificatesRejected, m.LastCleanupRound} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
