// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

import "context"

// ReplySlot is a single-producer single-consumer promise: the backend
// fills it at most once with Fill, the ingress handler awaits it at most
// once with Get. It is the Go realization of the spec's reply slot
// (spec.md glossary), standing in for the Rust oneshot channel that
// FuturesOrdered polls.
//
// Filling a slot nobody is waiting on (the connection closed and the
// handler stopped reading) is a no-op: the buffered channel absorbs one
// send without blocking, and is otherwise simply dropped.
type ReplySlot struct {
	ch chan *Response
}

// NewReplySlot creates an empty, unfilled reply slot.
func NewReplySlot() *ReplySlot {
	return &ReplySlot{ch: make(chan *Response, 1)}
}

// Fill delivers resp to the slot. resp may be nil to signal "no response"
// (the Query produced nothing, e.g. the backend has no matching data).
// Filling an already-filled or orphaned slot is a no-op.
func (r *ReplySlot) Fill(resp *Response) {
	select {
	case r.ch <- resp:
	default:
	}
}

// Get blocks until the slot is filled or ctx is done, whichever comes
// first. A nil *Response with a nil error means the backend explicitly
// responded with "absent".
func (r *ReplySlot) Get(ctx context.Context) (*Response, error) {
	select {
	case resp := <-r.ch:
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// WorkerMessageCommand pairs a WorkerMessage with the reply slot its
// sender may await. Backends receive these over the worker/sync channels
// exposed by the ingress server.
type WorkerMessageCommand struct {
	Message WorkerMessage
	slot    *ReplySlot
}

// NewWorkerMessageCommand wraps msg into a command and returns the reply
// slot its producer should fill (for Query messages) or ignore (for
// everything else).
func NewWorkerMessageCommand(msg WorkerMessage) (WorkerMessageCommand, *ReplySlot) {
	slot := NewReplySlot()
	return WorkerMessageCommand{Message: msg, slot: slot}, slot
}

// Reply returns the command's reply slot.
func (c WorkerMessageCommand) Reply() *ReplySlot {
	return c.slot
}
