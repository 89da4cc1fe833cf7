// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"github.com/supabase/pgdiff/pkg/catalog"
	"github.com/supabase/pgdiff/pkg/change"
)

// DiffComment implements the comment sub-diff spec.md §4.1.4 describes:
// comment scope is independent of whether the owning object's other
// fields changed, so it is always checked even when the caller skips the
// rest of a kind's field comparison (e.g. the object is otherwise Equal).
func DiffComment(ot catalog.ObjectType, id catalog.StableID, kind change.CommentTargetKind, target string, owner catalog.StableID, mainComment, branchComment string) change.Change {
	if mainComment == branchComment {
		return nil
	}
	if branchComment == "" {
		return change.NewDropComment(ot, catalog.CommentID(id), kind, target, owner)
	}
	return change.NewCreateComment(ot, catalog.CommentID(id), kind, target, branchComment, owner)
}
