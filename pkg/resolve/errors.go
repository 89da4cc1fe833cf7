// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"fmt"
	"strings"

	"github.com/supabase/pgdiff/pkg/catalog"
)

// CycleError reports that the ordering constraints generated over the
// input change-set are not a DAG — no total order exists, so Resolve
// emits nothing rather than a partially-ordered plan (spec.md §4.3).
type CycleError struct {
	// Members holds the StableIDs of the changes left unresolved once
	// every node with a satisfiable in-degree has been emitted; every
	// remaining node participates in, or is downstream of, at least one
	// cycle in the constraint graph.
	Members []catalog.StableID
}

func (e *CycleError) Error() string {
	ids := make([]string, len(e.Members))
	for i, id := range e.Members {
		ids[i] = string(id)
	}
	return fmt.Sprintf("resolve: dependency cycle among %d object(s): %s", len(e.Members), strings.Join(ids, ", "))
}
