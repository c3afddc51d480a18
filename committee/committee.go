// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package committee holds the fixed authority set for an epoch: stable
// public identifiers, voting weight, and the Byzantine quorum arithmetic
// derived from them.
package committee

import (
	"sort"

	"github.com/luxfi/ids"
)

// Authority is a single committee member.
type Authority struct {
	ID     ids.NodeID
	Weight uint64
}

// Committee is the fixed, immutable authority set for the lifetime of a
// VirtualState. It is never mutated after construction.
type Committee struct {
	authorities map[ids.NodeID]uint64
	sorted      []ids.NodeID
	totalWeight uint64
}

// New builds a Committee from the given authorities. Authorities are
// deduplicated by ID; the last weight given for a duplicate ID wins.
func New(authorities ...Authority) *Committee {
	c := &Committee{
		authorities: make(map[ids.NodeID]uint64, len(authorities)),
	}
	for _, a := range authorities {
		if _, ok := c.authorities[a.ID]; !ok {
			c.sorted = append(c.sorted, a.ID)
		}
		c.authorities[a.ID] = a.Weight
	}
	sort.Slice(c.sorted, func(i, j int) bool {
		return c.sorted[i].Compare(c.sorted[j]) < 0
	})
	for _, id := range c.sorted {
		c.totalWeight += c.authorities[id]
	}
	return c
}

// Size returns the number of authorities.
func (c *Committee) Size() int {
	return len(c.sorted)
}

// TotalWeight returns n, the total voting weight of the committee.
func (c *Committee) TotalWeight() uint64 {
	return c.totalWeight
}

// F returns the Byzantine fault threshold f = floor((n-1)/3), where n is the
// total voting weight.
func (c *Committee) F() int {
	n := c.totalWeight
	if n == 0 {
		return 0
	}
	return int((n - 1) / 3)
}

// Quorum returns 2f+1, the voting weight required for a quorum.
func (c *Committee) Quorum() int {
	return 2*c.F() + 1
}

// Has reports whether id is a member of the committee.
func (c *Committee) Has(id ids.NodeID) bool {
	_, ok := c.authorities[id]
	return ok
}

// Weight returns the voting weight of id, or 0 if it is not a member.
func (c *Committee) Weight(id ids.NodeID) uint64 {
	return c.authorities[id]
}

// Sorted returns the committee's authority identifiers in ascending byte
// order. The slice is owned by the caller; mutating it does not affect the
// Committee.
func (c *Committee) Sorted() []ids.NodeID {
	out := make([]ids.NodeID, len(c.sorted))
	copy(out, c.sorted)
	return out
}
