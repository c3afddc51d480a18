// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package certificate defines the read-only certificate view the virtual
// consensus core requires. Certificate construction, signing, and
// verification live outside this core (see SPEC_FULL.md §1); this package
// only describes the shape callers hand in.
package certificate

import "github.com/luxfi/ids"

// Digest is the fixed-width content hash of a Certificate.
type Digest = ids.ID

// Round is a non-negative real or virtual round number. Round 0 is the
// genesis round.
type Round uint64

// Certificate is the read-only view of a certificate required by the
// virtual consensus core. Implementations are supplied by the surrounding
// system (the real DAG engine, or a test double).
type Certificate interface {
	// Origin is the authority that produced this certificate.
	Origin() ids.NodeID
	// Digest is this certificate's own content hash.
	Digest() Digest
	// VirtualRound is the round this certificate occupies in the virtual
	// DAG, as distinct from the underlying reliable-broadcast round.
	VirtualRound() Round
	// VirtualParents lists the digests of this certificate's parents in
	// the virtual DAG, in the order the certificate recorded them.
	VirtualParents() []Digest
}
