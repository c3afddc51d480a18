// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

import "github.com/fxamacker/cbor/v2"

// Kind tags a WorkerMessage's variant. The dispatch table in worker/control.go
// is exhaustive over these tags (spec.md §4.5).
type Kind uint8

const (
	// KindQuery requests a response from the worker backend; the ingress
	// handler awaits the paired reply slot before replying.
	KindQuery Kind = iota
	// KindSynchronize requests the sync backend fetch missing state; the
	// ingress handler acks immediately without awaiting a reply.
	KindSynchronize
	// KindBatch is a fire-and-forget worker-to-worker batch announcement.
	KindBatch
	// KindPing is a fire-and-forget liveness probe, a second
	// fire-and-forget variant alongside Batch (SPEC_FULL.md §4.5).
	KindPing
)

func (k Kind) String() string {
	switch k {
	case KindQuery:
		return "query"
	case KindSynchronize:
		return "synchronize"
	case KindBatch:
		return "batch"
	case KindPing:
		return "ping"
	default:
		return "unknown"
	}
}

// WorkerMessage is the tagged union of messages exchanged on a worker
// control channel. Payload is opaque to this core: certificate digests,
// batch contents, and query parameters are the concern of the backend
// collaborators this core forwards commands to.
type WorkerMessage struct {
	Kind    Kind   `cbor:"0,keyasint"`
	Payload []byte `cbor:"1,keyasint,omitempty"`
}

// NewQuery builds a Query-kind WorkerMessage.
func NewQuery(payload []byte) WorkerMessage {
	return WorkerMessage{Kind: KindQuery, Payload: payload}
}

// NewSynchronize builds a Synchronize-kind WorkerMessage.
func NewSynchronize(payload []byte) WorkerMessage {
	return WorkerMessage{Kind: KindSynchronize, Payload: payload}
}

// NewBatch builds a Batch-kind WorkerMessage.
func NewBatch(payload []byte) WorkerMessage {
	return WorkerMessage{Kind: KindBatch, Payload: payload}
}

// NewPing builds a Ping-kind WorkerMessage.
func NewPing() WorkerMessage {
	return WorkerMessage{Kind: KindPing}
}

// Response is the payload of a successful reply to a Query.
type Response struct {
	Payload []byte
}

// MarshalMessage encodes a WorkerMessage frame.
func MarshalMessage(m WorkerMessage) ([]byte, error) {
	return cbor.Marshal(m)
}

// UnmarshalMessage decodes a WorkerMessage frame.
func UnmarshalMessage(data []byte) (WorkerMessage, error) {
	var m WorkerMessage
	if err := cbor.Unmarshal(data, &m); err != nil {
		return WorkerMessage{}, err
	}
	return m, nil
}

// MarshalResponse encodes a Response frame.
func MarshalResponse(r Response) ([]byte, error) {
	return cbor.Marshal(r)
}
