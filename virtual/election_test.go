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

// Scenario S3 — steady leader cycling, non-test mode.
// Committee {A,B,C,D} sorted as listed. Rounds 1-8 produce seeds
// 1,1,2,2,3,3,4,4 -> leaders B,B,C,C,D,D,A,A.
func TestSteadyLeader_S3_Cycling(t *testing.T) {
	c, authIDs, genesis := fourAuthorityCommittee(t)
	s := New(c, genesis) // non-test mode

	// Populate rounds 1-8 with every authority so every round has a
	// leader certificate to return.
	prevParents := genesisDigests(genesis)
	allDigests := make(map[certificate.Round][]certificate.Digest)
	for r := certificate.Round(1); r <= 8; r++ {
		roundDigests := make([]certificate.Digest, 0, 4)
		for _, author := range authIDs {
			cert := certtest.New(author, certificate.Digest{}, r, prevParents)
			require.True(t, s.TryAdd(cert))
			roundDigests = append(roundDigests, cert.Digest())
		}
		allDigests[r] = roundDigests
		prevParents = roundDigests
	}

	sorted := c.Sorted()
	expectedIndex := []int{1, 1, 2, 2, 3, 3, 0, 0} // B,B,C,C,D,D,A,A (0-indexed into sorted list)
	for i, r := range []certificate.Round{1, 2, 3, 4, 5, 6, 7, 8} {
		leader, ok := s.SteadyLeader(r)
		require.True(t, ok, "round %d", r)
		want := sorted[expectedIndex[i]]
		require.Equal(t, want, leader.Cert.Origin(), "round %d", r)
	}
}

func TestSteadyLeader_TestModePinsSeedToZero(t *testing.T) {
	c, authIDs, genesis := fourAuthorityCommittee(t)
	s := New(c, genesis, WithTestMode())

	parents := genesisDigests(genesis)
	for _, author := range authIDs {
		cert := certtest.New(author, certificate.Digest{}, 1, parents)
		require.True(t, s.TryAdd(cert))
	}

	sorted := c.Sorted()
	leader1, ok1 := s.SteadyLeader(1)
	require.True(t, ok1)
	require.Equal(t, sorted[0], leader1.Cert.Origin())
}

func TestLeaderElection_SingleAuthority(t *testing.T) {
	id := ids.GenerateTestNodeID()
	c := committee.New(committee.Authority{ID: id, Weight: 1})
	genesis := []certificate.Certificate{certtest.New(id, certificate.Digest{}, 0, nil)}
	s := New(c, genesis, WithTestMode())

	cert := certtest.New(id, certificate.Digest{}, 1, genesisDigests(genesis))
	require.True(t, s.TryAdd(cert))

	steady, ok := s.SteadyLeader(1)
	require.True(t, ok)
	require.Equal(t, id, steady.Cert.Origin())

	fallback, ok := s.FallbackLeader(1)
	require.True(t, ok)
	require.Equal(t, id, fallback.Cert.Origin())
}

func TestLeaderElection_PureFunctionOfRoundAndDAG(t *testing.T) {
	c, authIDs, genesis := fourAuthorityCommittee(t)
	s := New(c, genesis, WithTestMode())

	parents := genesisDigests(genesis)
	for _, author := range authIDs {
		cert := certtest.New(author, certificate.Digest{}, 1, parents)
		require.True(t, s.TryAdd(cert))
	}

	first, ok1 := s.SteadyLeader(1)
	second, ok2 := s.SteadyLeader(1)
	require.Equal(t, ok1, ok2)
	require.Equal(t, first, second)
}

func TestLeaderElection_NoLeaderCertificateAtRound(t *testing.T) {
	c, _, genesis := fourAuthorityCommittee(t)
	s := New(c, genesis, WithTestMode())

	_, ok := s.SteadyLeader(1)
	require.False(t, ok)
	_, ok = s.FallbackLeader(1)
	require.False(t, ok)
}
