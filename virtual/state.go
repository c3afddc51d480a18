// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package virtual implements the virtual consensus state: the DAG derived
// from certificate metadata, its admission rule, wave-oriented garbage
// collection, and the two leader elections. See SPEC_FULL.md §4.1-§4.3.
package virtual

import (
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"go.uber.org/zap"

	"github.com/luxfi/dolphin/certificate"
	"github.com/luxfi/dolphin/committee"
)

// Wave is the commit-progress unit, W(R) = (R+1)/2.
type Wave uint64

// WaveOf returns the wave containing round r.
func WaveOf(r certificate.Round) Wave {
	return Wave((r + 1) / 2)
}

// roundSlot holds, for one virtual round, the certificate each authority
// contributed.
type roundSlot struct {
	digest certificate.Digest
	cert   certificate.Certificate
}

// VirtualState is the derived DAG plus per-wave authority-set tracking and
// leader election. It is single-owner: the spec requires no internal
// synchronization (SPEC_FULL.md §5), so a VirtualState must be driven by one
// goroutine.
type VirtualState struct {
	committee *committee.Committee
	log       log.Logger
	metrics   *Metrics

	// TestMode pins the election seed/coin to 0, for deterministic tests.
	// It is set once at construction and never changed afterward
	// (invariant 4: committee membership, and this flag, are immutable).
	TestMode bool

	dag             map[certificate.Round]map[ids.NodeID]roundSlot
	steadyAuthSets  map[Wave]map[ids.NodeID]struct{}
	fallbackAuthSets map[Wave]map[ids.NodeID]struct{}

	maxCommittedRound certificate.Round
	haveCommitted     bool
}

// Option configures a VirtualState at construction.
type Option func(*VirtualState)

// WithLogger attaches a logger. Defaults to a no-op logger.
func WithLogger(l log.Logger) Option {
	return func(s *VirtualState) { s.log = l }
}

// WithMetrics attaches Prometheus instrumentation. Defaults to no metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *VirtualState) { s.metrics = m }
}

// WithTestMode pins the leader-election seed/coin to 0, matching the
// spec's test-mode behavior (SPEC_FULL.md §4.3).
func WithTestMode() Option {
	return func(s *VirtualState) { s.TestMode = true }
}

// New creates a VirtualState for committee c, seeded with one genesis
// certificate per authority at round 0. genesis must contain at most one
// certificate per authority; a later entry for the same origin overwrites
// an earlier one, matching the teacher's genesis map-collection behavior.
func New(c *committee.Committee, genesis []certificate.Certificate, opts ...Option) *VirtualState {
	s := &VirtualState{
		committee:        c,
		log:              log.NewNoOpLogger(),
		dag:              make(map[certificate.Round]map[ids.NodeID]roundSlot),
		steadyAuthSets:   make(map[Wave]map[ids.NodeID]struct{}),
		fallbackAuthSets: make(map[Wave]map[ids.NodeID]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	genesisSlots := make(map[ids.NodeID]roundSlot, len(genesis))
	for _, cert := range genesis {
		genesisSlots[cert.Origin()] = roundSlot{digest: cert.Digest(), cert: cert}
	}
	s.dag[0] = genesisSlots

	initialSteady := make(map[ids.NodeID]struct{}, c.Size())
	for _, a := range c.Sorted() {
		initialSteady[a] = struct{}{}
	}
	s.steadyAuthSets[1] = initialSteady

	return s
}

// TryAdd admits certificate cert into the virtual DAG iff all four
// admission predicates hold (SPEC_FULL.md §4.1 / spec.md §4.1):
//
//  1. cert's virtual round is >= 1.
//  2. the DAG has an entry at round-1.
//  3. every virtual parent digest is present among round-1 certificates.
//  4. cert's origin itself has a certificate at round-1, and cert lists
//     that certificate's digest among its virtual parents.
//
// On acceptance the certificate overwrites any prior entry for the same
// (round, origin) slot; on rejection the DAG is left unmodified.
func (s *VirtualState) TryAdd(cert certificate.Certificate) bool {
	round := cert.VirtualRound()
	if round == 0 {
		s.observeRejected()
		return false
	}

	previous, ok := s.dag[round-1]
	if !ok {
		s.observeRejected()
		return false
	}

	for _, parent := range cert.VirtualParents() {
		if !containsDigest(previous, parent) {
			s.observeRejected()
			return false
		}
	}

	own, ok := previous[cert.Origin()]
	if !ok {
		s.observeRejected()
		return false
	}
	extendsOwn := false
	for _, parent := range cert.VirtualParents() {
		if parent == own.digest {
			extendsOwn = true
			break
		}
	}
	if !extendsOwn {
		s.observeRejected()
		return false
	}

	slot, exists := s.dag[round]
	if !exists {
		slot = make(map[ids.NodeID]roundSlot)
		s.dag[round] = slot
	}
	slot[cert.Origin()] = roundSlot{digest: cert.Digest(), cert: cert}

	s.log.Debug("admitted certificate into virtual dag",
		zap.Stringer("origin", cert.Origin()),
		zap.Uint64("round", uint64(round)),
		zap.Stringer("digest", cert.Digest()),
	)
	s.observeAdmitted()
	return true
}

func containsDigest(slots map[ids.NodeID]roundSlot, d certificate.Digest) bool {
	for _, slot := range slots {
		if slot.digest == d {
			return true
		}
	}
	return false
}

// Cleanup retains only dag rounds strictly greater than lastCommittedRound,
// and only S/F waves strictly greater than WaveOf(lastCommittedRound)
// (spec.md §4.2). Calling with a smaller round than previously observed is
// a programming error: cleanup panics rather than silently resurrecting
// state.
func (s *VirtualState) Cleanup(lastCommittedRound certificate.Round) {
	if s.haveCommitted && lastCommittedRound < s.maxCommittedRound {
		panic("virtual: cleanup called with a regressing last committed round")
	}
	s.maxCommittedRound = lastCommittedRound
	s.haveCommitted = true

	w0 := WaveOf(lastCommittedRound)

	for r := range s.dag {
		if r <= lastCommittedRound {
			delete(s.dag, r)
		}
	}
	for w := range s.steadyAuthSets {
		if w <= w0 {
			delete(s.steadyAuthSets, w)
		}
	}
	for w := range s.fallbackAuthSets {
		if w <= w0 {
			delete(s.fallbackAuthSets, w)
		}
	}

	s.log.Debug("cleaned up virtual state",
		zap.Uint64("lastCommittedRound", uint64(lastCommittedRound)),
		zap.Uint64("wave", uint64(w0)),
	)
	s.observeCleanup(lastCommittedRound)
}

// DAGRound returns the certificates stored at round r, keyed by origin, and
// whether any entry exists. The returned map is a defensive copy; mutating
// it does not affect the VirtualState.
func (s *VirtualState) DAGRound(r certificate.Round) (map[ids.NodeID]certificate.Certificate, bool) {
	slots, ok := s.dag[r]
	if !ok {
		return nil, false
	}
	out := make(map[ids.NodeID]certificate.Certificate, len(slots))
	for author, slot := range slots {
		out[author] = slot.cert
	}
	return out, true
}

// SteadyAuthorities returns the steady-state authority set for wave w, and
// whether it is still tracked (it may have been garbage collected).
func (s *VirtualState) SteadyAuthorities(w Wave) (map[ids.NodeID]struct{}, bool) {
	set, ok := s.steadyAuthSets[w]
	return copySet(set), ok
}

// FallbackAuthorities returns the fallback authority set for wave w, and
// whether it is still tracked.
func (s *VirtualState) FallbackAuthorities(w Wave) (map[ids.NodeID]struct{}, bool) {
	set, ok := s.fallbackAuthSets[w]
	return copySet(set), ok
}

func copySet(in map[ids.NodeID]struct{}) map[ids.NodeID]struct{} {
	if in == nil {
		return nil
	}
	out := make(map[ids.NodeID]struct{}, len(in))
	for k := range in {
		out[k] = struct{}{}
	}
	return out
}

func (s *VirtualState) observeAdmitted() {
	if s.metrics != nil {
		s.metrics.CertificatesAdmitted.Inc()
	}
}

func (s *VirtualState) observeRejected() {
	if s.metrics != nil {
		s.metrics.CertificatesRejected.Inc()
	}
}

func (s *VirtualState) observeCleanup(round certificate.Round) {
	if s.metrics != nil {
		s.metrics.LastCleanupRound.Set(float64(round))
	}
}
