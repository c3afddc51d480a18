// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command dolphind wires the worker ingress server to a minimal, logging
// consensus loop stand-in. Certificate construction, signature
// verification, and the real DAG engine are out of scope (spec.md §1); this
// binary exists to exercise worker.Server end to end, not to run a
// production node.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/luxfi/dolphin/committee"
	"github.com/luxfi/dolphin/virtual"
	"github.com/luxfi/dolphin/wire"
	"github.com/luxfi/dolphin/worker"
)

var logger = log.NewLogger("dolphind")

func main() {
	listenAddr := flag.String("listen", "127.0.0.1:9100", "worker ingress listen address")
	self := flag.String("self", "", "this authority's node ID, as hex-encoded bytes")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()

	selfID, err := parseSelf(*self)
	if err != nil {
		logger.Error("invalid -self", zap.Error(err))
		os.Exit(1)
	}

	vstate, err := newDemoVirtualState(reg, selfID)
	if err != nil {
		logger.Error("failed to build virtual state", zap.Error(err))
		os.Exit(1)
	}

	workerMessages := make(chan wire.WorkerMessageCommand, 256)
	syncMessages := make(chan wire.WorkerMessageCommand, 256)
	transactions := make(chan worker.Transaction, 1024)

	workerMetrics, err := worker.NewMetrics(reg)
	if err != nil {
		logger.Error("failed to register worker metrics", zap.Error(err))
		os.Exit(1)
	}

	srv := worker.NewServer(
		workerMessages, syncMessages, transactions,
		worker.WithLogger(logger),
		worker.WithMetrics(workerMetrics),
	)

	go drainBackend(ctx, workerMessages, syncMessages, transactions)
	_ = vstate // the real consensus loop would call vstate.TryAdd/Cleanup here

	logger.Info("starting worker ingress server", zap.String("listen", *listenAddr))
	if err := srv.ListenAndServe(ctx, worker.Config{ListenAddr: *listenAddr}); err != nil {
		logger.Error("worker ingress server stopped", zap.Error(err))
		os.Exit(1)
	}
}

// drainBackend is a placeholder for the out-of-scope worker backend: it
// acknowledges Query commands with an absent reply, logs transactions, and
// discards every other command, so the ingress server has somewhere to
// forward commands in this standalone binary.
func drainBackend(ctx context.Context, workerMessages, syncMessages <-chan wire.WorkerMessageCommand, transactions <-chan worker.Transaction) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-workerMessages:
			if cmd.Message.Kind == wire.KindQuery {
				cmd.Reply().Fill(nil)
			}
		case <-syncMessages:
		case tx := <-transactions:
			logger.Debug("received transaction", zap.Stringer("peer", tx.PeerAddr), zap.Int("bytes", len(tx.Payload)))
		}
	}
}

// parseSelf decodes a hex-encoded node ID, or returns the zero NodeID if s
// is empty.
func parseSelf(s string) (ids.NodeID, error) {
	if s == "" {
		return ids.NodeID{}, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return ids.NodeID{}, err
	}
	return ids.ToNodeID(b)
}

// newDemoVirtualState builds a single-authority VirtualState purely so
// this binary has something concrete to wire virtual.VirtualState to; a
// real deployment supplies the committee and genesis certificates produced
// by the real DAG engine.
func newDemoVirtualState(reg prometheus.Registerer, self ids.NodeID) (*virtual.VirtualState, error) {
	metrics, err := virtual.NewMetrics(reg)
	if err != nil {
		return nil, err
	}
	c := committee.New(committee.Authority{ID: self, Weight: 1})
	return virtual.New(c, nil, virtual.WithLogger(logger), virtual.WithMetrics(metrics)), nil
}
