// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package virtual

import "github.com/luxfi/dolphin/certificate"

// Leader pairs a certificate with its digest, the value type returned by
// the two elections below.
type Leader struct {
	Digest certificate.Digest
	Cert   certificate.Certificate
}

// SteadyLeader returns the steady-state leader's certificate for round r,
// if that leader has one. The election is a pure function of (committee,
// round, dag): seed = WaveOf(r), leader = sorted(committee)[seed % n]
// (spec.md §4.3). In test mode the seed is pinned to 0.
func (s *VirtualState) SteadyLeader(r certificate.Round) (Leader, bool) {
	seed := uint64(WaveOf(r))
	if s.TestMode {
		seed = 0
	}
	return s.leaderAt(r, seed)
}

// FallbackLeader returns the fallback leader's certificate for round r, if
// that leader has one. The fallback election is a deterministic
// round-robin placeholder for a common-coin reveal (spec.md §4.3, §9): the
// production replacement elects the leader of round r-2 using the coin
// revealed at round r; this core keeps the round-robin placeholder for
// interface stability. coin = (r+1)/4, leader = sorted(committee)[coin % n].
// In test mode the coin is pinned to 0.
func (s *VirtualState) FallbackLeader(r certificate.Round) (Leader, bool) {
	coin := uint64(r+1) / 4
	if s.TestMode {
		coin = 0
	}
	return s.leaderAt(r, coin)
}

func (s *VirtualState) leaderAt(r certificate.Round, seed uint64) (Leader, bool) {
	n := s.committee.Size()
	if n == 0 {
		return Leader{}, false
	}
	sorted := s.committee.Sorted()
	leader := sorted[seed%uint64(n)]

	slots, ok := s.dag[r]
	if !ok {
		return Leader{}, false
	}
	slot, ok := slots[leader]
	if !ok {
		return Leader{}, false
	}
	return Leader{Digest: slot.digest, Cert: slot.cert}, true
}
