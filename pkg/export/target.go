// SPDX-License-Identifier: Apache-2.0

package export

import (
	"strings"

	"github.com/supabase/pgdiff/pkg/catalog"
	"github.com/supabase/pgdiff/pkg/change"
)

// target resolves the StableID a change is filed under: its own identity
// for whole-object changes, or the result of OwnedBy() for the
// column/constraint/comment/privilege/storage/membership/sequence-
// ownership sub-object changes implementing change.Owned (spec.md §4.4).
func target(c change.Change) catalog.StableID {
	return Target(c)
}

// Target is target's exported form, reused by pkg/integration so a DSL
// Pattern can match the same schema/name pkg/export files a change
// under, without pkg/export importing pkg/integration back.
func Target(c change.Change) catalog.StableID {
	if o, ok := c.(change.Owned); ok {
		return o.OwnedBy()
	}
	return c.StableID()
}

// ParseTarget is parseTarget's exported form (see Target).
func ParseTarget(id catalog.StableID) (kind, schema, name string) {
	return parseTarget(id)
}

// parseTarget splits a StableID of the canonical "<kind>:<schema>.<name>"
// or "<kind>:<schema>.<name>(<args>)" shape into its parts. Cluster-level
// kinds have no schema component ("<kind>:<name>") and report schema="".
func parseTarget(id catalog.StableID) (kind, schema, name string) {
	s := string(id)
	colon := strings.IndexByte(s, ':')
	if colon < 0 {
		return "", "", s
	}
	kind = s[:colon]
	rest := s[colon+1:]

	head, sig := rest, ""
	if paren := strings.IndexByte(rest, '('); paren >= 0 {
		head, sig = rest[:paren], rest[paren:]
	}
	dot := strings.LastIndexByte(head, '.')
	if dot < 0 {
		return kind, "", head + sig
	}
	return kind, head[:dot], head[dot+1:] + sig
}
