// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package worker implements the worker ingress protocol boundary: a
// length-delimited framed TCP server that classifies each connection via a
// one-frame banner handshake, then multiplexes worker-control traffic and
// raw client transactions over that single stream (spec.md §4.4).
package worker

import (
	"net"

	"github.com/libp2p/go-msgio"
)

// framer wraps a net.Conn in the wire framing required by the spec: each
// logical message is a 4-byte big-endian length prefix followed by that
// many payload bytes (spec.md §6). go-msgio's base (non-varint) Reader and
// Writer implement exactly this fixed-size, network-byte-order framing,
// which is why this core reaches for it instead of hand-rolling
// encoding/binary length-prefixing (see DESIGN.md).
type framer struct {
	conn net.Conn
	r    msgio.Reader
	w    msgio.Writer
}

func newFramer(conn net.Conn) *framer {
	return &framer{
		conn: conn,
		r:    msgio.NewReader(conn),
		w:    msgio.NewWriter(conn),
	}
}

// readFrame blocks for the next frame. A returned error of io.EOF (wrapped
// or not) means the peer closed the stream cleanly.
func (f *framer) readFrame() ([]byte, error) {
	msg, err := f.r.ReadMsg()
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(msg))
	copy(out, msg)
	f.r.ReleaseMsg(msg)
	return out, nil
}

func (f *framer) writeFrame(data []byte) error {
	return f.w.WriteMsg(data)
}

func (f *framer) remoteAddr() net.Addr {
	return f.conn.RemoteAddr()
}

func (f *framer) close() error {
	return f.conn.Close()
}
