// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package worker

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/dolphin/wire"
)

// Metrics instruments the ingress server. There is no built-in exporter
// (spec.md §1 scopes metrics exporters out); callers register this with
// whatever Prometheus registry/exporter they run.
type Metrics struct {
	TransactionsReceived prometheus.Counter
	MessagesDispatched   *prometheus.CounterVec
}

// NewMetrics registers and returns ingress metrics under reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		TransactionsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dolphin",
			Subsystem: "worker_ingress",
			Name:      "transactions_received_total",
			Help:      "Raw transaction frames received on transaction channels.",
		}),
		MessagesDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dolphin",
			Subsystem: "worker_ingress",
			Name:      "messages_dispatched_total",
			Help:      "Worker control messages dispatched, by kind.",
		}, []string{"kind"}),
	}
	if err := reg.Register(m.TransactionsReceived); err != nil {
		return nil, err
	}
	if err := reg.Register(m.MessagesDispatched); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Server) observeTransaction() {
	if s.metrics != nil {
		s.metrics.TransactionsReceived.Inc()
	}
}

func (s *Server) observeDispatched(kind wire.Kind) {
	if s.metrics != nil {
		s.metrics.MessagesDispatched.WithLabelValues(kind.String()).Inc()
	}
}
