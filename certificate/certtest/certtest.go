// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package certtest provides a fake Certificate for tests outside this
// module's own package (virtual).
package certtest

import (
	"github.com/luxfi/ids"

	"github.com/luxfi/dolphin/certificate"
)

// Fake is a minimal certificate.Certificate for tests.
type Fake struct {
	origin  ids.NodeID
	digest  certificate.Digest
	round   certificate.Round
	parents []certificate.Digest
}

// New builds a Fake certificate. digest defaults to ids.GenerateTestID() if
// the zero value is passed.
func New(origin ids.NodeID, digest certificate.Digest, round certificate.Round, parents []certificate.Digest) *Fake {
	if digest == (certificate.Digest{}) {
		digest = ids.GenerateTestID()
	}
	return &Fake{origin: origin, digest: digest, round: round, parents: parents}
}

func (f *Fake) Origin() ids.NodeID                { return f.origin }
func (f *Fake) Digest() certificate.Digest        { return f.digest }
func (f *Fake) VirtualRound() certificate.Round   { return f.round }
func (f *Fake) VirtualParents() []certificate.Digest { return f.parents }
