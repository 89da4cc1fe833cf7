// SPDX-License-Identifier: Apache-2.0

package export

import "github.com/supabase/pgdiff/pkg/change"

// FilterDeclarative implements spec.md §4.4's declarative filter: DROP
// changes are removed from a declarative export, except
// default_privilege drops (REVOKEs), which are retained because they
// express desired state against PostgreSQL's implicit PUBLIC defaults
// rather than undoing something the declarative source ever created.
func FilterDeclarative(changes []change.Change) []change.Change {
	out := make([]change.Change, 0, len(changes))
	for _, c := range changes {
		if c.Operation() == change.OpDrop && c.Scope() != change.ScopeDefaultPrivilege {
			continue
		}
		out = append(out, c)
	}
	return out
}
