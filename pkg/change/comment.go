// SPDX-License-Identifier: Apache-2.0

package change

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/supabase/pgdiff/pkg/catalog"
)

// CommentTargetKind names the SQL object class a COMMENT ON statement
// addresses; PostgreSQL requires a different keyword (and sometimes a
// different reference shape) per class.
type CommentTargetKind string

const (
	CommentTargetSchema     CommentTargetKind = "SCHEMA"
	CommentTargetTable      CommentTargetKind = "TABLE"
	CommentTargetView       CommentTargetKind = "VIEW"
	CommentTargetMatview    CommentTargetKind = "MATERIALIZED VIEW"
	CommentTargetSequence   CommentTargetKind = "SEQUENCE"
	CommentTargetColumn     CommentTargetKind = "COLUMN"
	CommentTargetFunction   CommentTargetKind = "FUNCTION"
	CommentTargetProcedure  CommentTargetKind = "PROCEDURE"
	CommentTargetAggregate  CommentTargetKind = "AGGREGATE"
	CommentTargetType       CommentTargetKind = "TYPE"
	CommentTargetDomain     CommentTargetKind = "DOMAIN"
	CommentTargetIndex      CommentTargetKind = "INDEX"
	CommentTargetTrigger    CommentTargetKind = "TRIGGER"
	CommentTargetRule       CommentTargetKind = "RULE"
	CommentTargetPolicy     CommentTargetKind = "POLICY"
	CommentTargetExtension  CommentTargetKind = "EXTENSION"
	CommentTargetConstraint CommentTargetKind = "CONSTRAINT"
)

// CreateComment sets or replaces an object's or column's COMMENT text,
// per spec.md §4.1.4's comment sub-diff (comment scope is independent of
// whether the owning object's other fields changed).
type CreateComment struct {
	Header
	Owner  catalog.StableID
	Kind   CommentTargetKind
	Target string // fully rendered "ON ..." target clause, e.g. `"public"."orders"` or `"c" ON "public"."orders"`
	Text   string
}

func NewCreateComment(ot catalog.ObjectType, id catalog.StableID, kind CommentTargetKind, target, text string, owner catalog.StableID) *CreateComment {
	return &CreateComment{
		Header: NewAlterHeader(ScopeComment, ot, id, owner),
		Owner:  owner,
		Kind:   kind,
		Target: target,
		Text:   text,
	}
}

func (c *CreateComment) OwnedBy() catalog.StableID { return c.Owner }

func (c *CreateComment) Serialize() string {
	return fmt.Sprintf("COMMENT ON %s %s IS %s", c.Kind, c.Target, quoteLiteral(c.Text))
}

// DropComment clears a previously set comment (COMMENT ON ... IS NULL).
type DropComment struct {
	Header
	Owner  catalog.StableID
	Kind   CommentTargetKind
	Target string
}

func NewDropComment(ot catalog.ObjectType, id catalog.StableID, kind CommentTargetKind, target string, owner catalog.StableID) *DropComment {
	return &DropComment{
		Header: NewAlterHeader(ScopeComment, ot, id, owner),
		Owner:  owner,
		Kind:   kind,
		Target: target,
	}
}

func (c *DropComment) OwnedBy() catalog.StableID { return c.Owner }

func (c *DropComment) Serialize() string {
	return fmt.Sprintf("COMMENT ON %s %s IS NULL", c.Kind, c.Target)
}

// quoteLiteral escapes a string for use as a SQL string literal, doubling
// embedded single quotes per the standard-conforming-strings convention
// pq itself assumes for literals it does not parametrize.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// ColumnCommentTarget renders the "<table>.<col>" target that follows
// COMMENT ON COLUMN, reusing the table's qualified name.
func ColumnCommentTarget(table catalog.StableID, column string) string {
	return qualifiedFromID(table) + "." + pq.QuoteIdentifier(column)
}
