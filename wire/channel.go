// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package wire defines the message taxonomy at the worker ingress protocol
// boundary (spec.md §4.5): the one-shot channel-type banner, the
// WorkerMessage tagged union, and the reply-slot promise used to preserve
// per-connection reply ordering across asynchronous backend processing.
package wire

import "github.com/fxamacker/cbor/v2"

// ChannelType classifies a freshly accepted connection after its banner
// frame. It is the first and only frame exchanged before the server picks
// a handler.
type ChannelType uint8

const (
	// ChannelWorker carries WorkerMessage traffic: Query, Synchronize, and
	// other worker-to-worker control messages.
	ChannelWorker ChannelType = iota
	// ChannelTransaction carries raw client transaction payloads.
	ChannelTransaction
)

// String renders the channel type for logging.
func (c ChannelType) String() string {
	switch c {
	case ChannelWorker:
		return "worker"
	case ChannelTransaction:
		return "transaction"
	default:
		return "unknown"
	}
}

// MarshalChannelType encodes a banner frame payload.
func MarshalChannelType(c ChannelType) ([]byte, error) {
	return cbor.Marshal(c)
}

// UnmarshalChannelType decodes a banner frame payload.
func UnmarshalChannelType(data []byte) (ChannelType, error) {
	var c ChannelType
	if err := cbor.Unmarshal(data, &c); err != nil {
		return 0, err
	}
	return c, nil
}

// Ack is the literal acknowledgement frame sent after a successful banner
// handshake, and after any non-Query worker message or transaction frame.
var Ack = []byte("OK")

// NotFound is the literal frame sent when a Query's reply slot resolves
// with no response.
var NotFound = []byte("NOTFOUND")
