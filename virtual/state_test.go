// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package virtual

import (
	"testing"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/dolphin/certificate"
	"github.com/luxfi/dolphin/certificate/certtest"
	"github.com/luxfi/dolphin/committee"
)

// fourAuthorityCommittee builds the {A,B,C,D} committee used throughout
// spec.md's scenarios, sorted by NodeID byte order, along with genesis
// certificates for each.
func fourAuthorityCommittee(t *testing.T) (*committee.Committee, []ids.NodeID, []certificate.Certificate) {
	t.Helper()
	ids4 := []ids.NodeID{
		ids.GenerateTestNodeID(),
		ids.GenerateTestNodeID(),
		ids.GenerateTestNodeID(),
		ids.GenerateTestNodeID(),
	}
	auths := make([]committee.Authority, len(ids4))
	genesis := make([]certificate.Certificate, len(ids4))
	for i, id := range ids4 {
		auths[i] = committee.Authority{ID: id, Weight: 1}
		genesis[i] = certtest.New(id, certificate.Digest{}, 0, nil)
	}
	return committee.New(auths...), ids4, genesis
}

func genesisDigests(genesis []certificate.Certificate) []certificate.Digest {
	out := make([]certificate.Digest, len(genesis))
	for i, g := range genesis {
		out[i] = g.Digest()
	}
	return out
}

// Scenario S1 — admission happy path.
func TestTryAdd_S1_AllFourAdmitted(t *testing.T) {
	c, authIDs, genesis := fourAuthorityCommittee(t)
	s := New(c, genesis, WithTestMode())

	parents := genesisDigests(genesis)
	for _, author := range authIDs {
		cert := certtest.New(author, certificate.Digest{}, 1, parents)
		require.True(t, s.TryAdd(cert))
	}

	round1, ok := s.DAGRound(1)
	require.True(t, ok)
	require.Len(t, round1, 4)
}

// Scenario S2 — admission missing self-parent.
func TestTryAdd_S2_MissingSelfParentRejected(t *testing.T) {
	c, authIDs, genesis := fourAuthorityCommittee(t)
	s := New(c, genesis, WithTestMode())

	parents := genesisDigests(genesis)
	// Populate round 1 for all four authorities first so round 2 has a
	// previous round to extend.
	round1Digests := make([]certificate.Digest, 0, 4)
	round1ByAuthor := make(map[ids.NodeID]certificate.Digest, 4)
	for _, author := range authIDs {
		cert := certtest.New(author, certificate.Digest{}, 1, parents)
		require.True(t, s.TryAdd(cert))
		round1Digests = append(round1Digests, cert.Digest())
		round1ByAuthor[author] = cert.Digest()
	}
	_ = round1Digests

	// A attempts round 2 listing only B1,C1,D1 (omitting A1).
	a := authIDs[0]
	missingSelf := []certificate.Digest{
		round1ByAuthor[authIDs[1]],
		round1ByAuthor[authIDs[2]],
		round1ByAuthor[authIDs[3]],
	}
	cert := certtest.New(a, certificate.Digest{}, 2, missingSelf)
	require.False(t, s.TryAdd(cert))

	round2, ok := s.DAGRound(2)
	require.False(t, ok)
	require.Nil(t, round2)
}

func TestTryAdd_RoundZeroRejected(t *testing.T) {
	c, authIDs, genesis := fourAuthorityCommittee(t)
	s := New(c, genesis, WithTestMode())

	cert := certtest.New(authIDs[0], certificate.Digest{}, 0, nil)
	require.False(t, s.TryAdd(cert))
}

func TestTryAdd_MissingPreviousRoundRejected(t *testing.T) {
	c, authIDs, genesis := fourAuthorityCommittee(t)
	s := New(c, genesis, WithTestMode())

	// Round 2 attempted directly: no round-1 entries exist yet.
	cert := certtest.New(authIDs[0], certificate.Digest{}, 2, genesisDigests(genesis))
	require.False(t, s.TryAdd(cert))
}

func TestTryAdd_UnknownParentRejected(t *testing.T) {
	c, authIDs, genesis := fourAuthorityCommittee(t)
	s := New(c, genesis, WithTestMode())

	bogus := ids.GenerateTestID()
	cert := certtest.New(authIDs[0], certificate.Digest{}, 1, []certificate.Digest{bogus})
	require.False(t, s.TryAdd(cert))
}

func TestTryAdd_OverwritesSameRoundOrigin(t *testing.T) {
	c, authIDs, genesis := fourAuthorityCommittee(t)
	s := New(c, genesis, WithTestMode())

	parents := genesisDigests(genesis)
	first := certtest.New(authIDs[0], certificate.Digest{}, 1, parents)
	require.True(t, s.TryAdd(first))

	second := certtest.New(authIDs[0], certificate.Digest{}, 1, parents)
	require.True(t, s.TryAdd(second))

	round1, ok := s.DAGRound(1)
	require.True(t, ok)
	require.Equal(t, second.Digest(), round1[authIDs[0]].Digest())
}

// Scenario S4 — cleanup boundary.
func TestCleanup_S4_Boundary(t *testing.T) {
	c, authIDs, genesis := fourAuthorityCommittee(t)
	s := New(c, genesis, WithTestMode())

	parents := genesisDigests(genesis)
	round1 := make([]certificate.Digest, 0, 4)
	for _, author := range authIDs {
		cert := certtest.New(author, certificate.Digest{}, 1, parents)
		require.True(t, s.TryAdd(cert))
		round1 = append(round1, cert.Digest())
	}
	round2 := make([]certificate.Digest, 0, 4)
	for _, author := range authIDs {
		cert := certtest.New(author, certificate.Digest{}, 2, round1)
		require.True(t, s.TryAdd(cert))
		round2 = append(round2, cert.Digest())
	}
	for _, author := range authIDs {
		cert := certtest.New(author, certificate.Digest{}, 3, round2)
		require.True(t, s.TryAdd(cert))
	}
	// S at waves {1,2}: wave 1 comes from New, wave 2 is set here.
	s.steadyAuthSets[2] = map[ids.NodeID]struct{}{authIDs[0]: {}}

	s.Cleanup(2)

	_, ok0 := s.DAGRound(0)
	require.False(t, ok0)
	_, ok1 := s.DAGRound(1)
	require.False(t, ok1)
	_, ok2 := s.DAGRound(2)
	require.False(t, ok2)
	_, ok3 := s.DAGRound(3)
	require.True(t, ok3)

	_, steady1 := s.SteadyAuthorities(1)
	require.False(t, steady1)
	_, steady2 := s.SteadyAuthorities(2)
	require.True(t, steady2)
}

func TestCleanup_Idempotent(t *testing.T) {
	c, _, genesis := fourAuthorityCommittee(t)
	s := New(c, genesis, WithTestMode())

	s.Cleanup(0)
	require.NotPanics(t, func() { s.Cleanup(0) })
}

func TestCleanup_RegressingRoundPanics(t *testing.T) {
	c, _, genesis := fourAuthorityCommittee(t)
	s := New(c, genesis, WithTestMode())

	s.Cleanup(3)
	require.Panics(t, func() { s.Cleanup(1) })
}

func TestCleanup_ExceedingMaxStoredRoundClearsDAG(t *testing.T) {
	c, authIDs, genesis := fourAuthorityCommittee(t)
	s := New(c, genesis, WithTestMode())

	parents := genesisDigests(genesis)
	for _, author := range authIDs {
		cert := certtest.New(author, certificate.Digest{}, 1, parents)
		require.True(t, s.TryAdd(cert))
	}

	s.Cleanup(100)

	_, ok := s.DAGRound(1)
	require.False(t, ok)
	_, ok0 := s.DAGRound(0)
	require.False(t, ok0)
}
