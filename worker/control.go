// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/luxfi/dolphin/wire"
)

// replyQueueCapacity bounds how many worker-control requests on one
// connection may have their reply in flight at once before the reader
// blocks pushing a new one onto the FIFO. It is generous enough that
// ordinary Query/Synchronize/Batch traffic never backpressures on it.
const replyQueueCapacity = 4096

// frameResult is the outcome of dispatching one inbound worker message:
// either the bytes to write back, or an error that terminates the
// connection.
type frameResult struct {
	data []byte
	err  error
}

// handleWorkerChannel multiplexes request/reply over a single stream,
// preserving per-connection reply order even though Query replies resolve
// asynchronously while Synchronize/Batch/Ping ack immediately (spec.md
// §4.4, rule 4). The FIFO of pending frameResult channels is this core's
// realization of the Rust implementation's FuturesOrdered: the reader
// goroutine enqueues one result channel per inbound frame, in order, and
// a single writer goroutine drains them in that same order, blocking on
// whichever is still unresolved at the head.
func (s *Server) handleWorkerChannel(ctx context.Context, f *framer) {
	defer f.close()

	connCtx, cancel := context.WithCancel(ctx)

	pending := make(chan chan frameResult, replyQueueCapacity)
	writerDone := make(chan struct{})

	go s.writeReplies(connCtx, f, pending, writerDone)

	// cancel must run before close(pending)/<-writerDone, not after: a Query
	// whose reply slot is never filled (spec.md §5 — a dropped slot is a
	// normal, sanctioned outcome) leaves its dispatch goroutine blocked in
	// slot.Get(ctx) forever unless connCtx is canceled here. Canceling only
	// via a deferred cancel() registered before this closure would instead
	// wait on <-writerDone first, which itself waits on that same blocked
	// goroutine — a deadlock that also leaks the reader/writer goroutines and
	// the socket.
	defer func() {
		cancel()
		close(pending)
		<-writerDone
	}()

	for {
		data, err := f.readFrame()
		if err != nil {
			return
		}

		msg, err := wire.UnmarshalMessage(data)
		if err != nil {
			s.log.Warn("parsing error, closing worker channel", zap.Error(err), zap.Stringer("peer", f.remoteAddr()))
			return
		}

		result := make(chan frameResult, 1)
		select {
		case pending <- result:
		case <-connCtx.Done():
			return
		case <-writerDone:
			return
		}

		s.dispatch(connCtx, msg, result)

		select {
		case <-writerDone:
			return
		default:
		}
	}
}

// dispatch applies the §4.4 dispatch table: Query forwards to the worker
// backend and awaits a reply (replying NOTFOUND if the slot resolves
// absent); Synchronize forwards to the sync backend and acks immediately;
// everything else forwards to the worker backend and acks immediately.
func (s *Server) dispatch(ctx context.Context, msg wire.WorkerMessage, result chan<- frameResult) {
	cmd, slot := wire.NewWorkerMessageCommand(msg)

	var target chan<- wire.WorkerMessageCommand
	mustWait := msg.Kind == wire.KindQuery
	if msg.Kind == wire.KindSynchronize {
		target = s.SynchronizeOutput
	} else {
		target = s.WorkerOutput
	}

	select {
	case target <- cmd:
	case <-ctx.Done():
		result <- frameResult{err: ctx.Err()}
		return
	}
	s.observeDispatched(msg.Kind)

	if !mustWait {
		result <- frameResult{data: wire.Ack}
		return
	}

	go func() {
		resp, err := slot.Get(ctx)
		if err != nil {
			result <- frameResult{err: err}
			return
		}
		if resp == nil {
			result <- frameResult{data: wire.NotFound}
			return
		}
		data, err := wire.MarshalResponse(*resp)
		if err != nil {
			result <- frameResult{err: err}
			return
		}
		result <- frameResult{data: data}
	}()
}

// writeReplies drains pending in FIFO order, writing each resolved result
// to the wire before moving to the next. It stops and closes signal
// writerDone on the first write error, the first frameResult error, or
// once pending is closed and drained.
func (s *Server) writeReplies(ctx context.Context, f *framer, pending <-chan chan frameResult, writerDone chan<- struct{}) {
	defer close(writerDone)

	for resultCh := range pending {
		var res frameResult
		select {
		case res = <-resultCh:
		case <-ctx.Done():
			return
		}

		if res.err != nil {
			s.log.Error("backend reply failed", zap.Error(res.err), zap.Stringer("peer", f.remoteAddr()))
			return
		}
		if err := f.writeFrame(res.data); err != nil {
			s.log.Error("failed to write worker reply", zap.Error(err), zap.Stringer("peer", f.remoteAddr()))
			return
		}
	}
}
