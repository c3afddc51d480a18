// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/luxfi/dolphin/wire"
)

// handleTransactionChannel treats every subsequent frame as a raw
// transaction payload: emit it downstream with the peer address, then ack
// (spec.md §4.4, transaction handler). It imposes no backpressure beyond
// the downstream channel's own capacity.
func (s *Server) handleTransactionChannel(ctx context.Context, f *framer) {
	defer f.close()

	for {
		data, err := f.readFrame()
		if err != nil {
			return
		}

		select {
		case s.TransactionOutput <- Transaction{PeerAddr: f.remoteAddr(), Payload: data}:
		case <-ctx.Done():
			return
		}
		s.observeTransaction()

		if err := f.writeFrame(wire.Ack); err != nil {
			s.log.Error("failed to write transaction ack", zap.Error(err), zap.Stringer("peer", f.remoteAddr()))
			return
		}
	}
}
