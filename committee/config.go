// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package committee

import "github.com/luxfi/ids"

// Config is the plain, JSON-tagged description of a committee, loaded by a
// caller (file, flags, or a hard-coded genesis) and turned into an immutable
// Committee via Build. It carries no defaults and no validation beyond what
// Build itself needs, matching config.Config's plain-struct shape rather
// than a file-loading framework.
type Config struct {
	Authorities []AuthorityConfig `json:"authorities"`
}

// AuthorityConfig is one committee member as loaded from configuration.
type AuthorityConfig struct {
	ID     ids.NodeID `json:"id"`
	Weight uint64     `json:"weight"`
}

// Build turns c into a Committee. Authorities are taken as given; New
// handles deduplication and ordering.
func (c Config) Build() *Committee {
	authorities := make([]Authority, len(c.Authorities))
	for i, a := range c.Authorities {
		authorities[i] = Authority{ID: a.ID, Weight: a.Weight}
	}
	return New(authorities...)
}
