// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"fmt"
	"strings"
)

// StableID is the colon-delimited identity string for a persistent catalog
// object, e.g. "schema:public", "table:public.users",
// "procedure:public.fn(integer,text)",
// "acl:table:public.users::grantee:PUBLIC".
//
// A StableID is unique across a catalog and stable across extractions of an
// unchanged object. It is the sole currency for dependency edges between
// objects — model values never reference each other directly (see
// DESIGN.md's note on the resolver's arena-of-indices design).
type StableID string

// ObjectType identifies the kind of catalog object a StableID names.
type ObjectType string

const (
	ObjectTypeSchema            ObjectType = "schema"
	ObjectTypeTable             ObjectType = "table"
	ObjectTypeForeignTable      ObjectType = "foreignTable"
	ObjectTypeView              ObjectType = "view"
	ObjectTypeMaterializedView  ObjectType = "materializedView"
	ObjectTypeSequence          ObjectType = "sequence"
	ObjectTypeCompositeType     ObjectType = "compositeType"
	ObjectTypeEnumType          ObjectType = "enumType"
	ObjectTypeRangeType         ObjectType = "rangeType"
	ObjectTypeDomain            ObjectType = "domain"
	ObjectTypeFunction          ObjectType = "function"
	ObjectTypeProcedure         ObjectType = "procedure"
	ObjectTypeAggregate         ObjectType = "aggregate"
	ObjectTypeIndex             ObjectType = "index"
	ObjectTypeTrigger           ObjectType = "trigger"
	ObjectTypeRule              ObjectType = "rule"
	ObjectTypePolicy            ObjectType = "policy"
	ObjectTypeRole              ObjectType = "role"
	ObjectTypeExtension         ObjectType = "extension"
	ObjectTypePublication       ObjectType = "publication"
	ObjectTypeSubscription      ObjectType = "subscription"
	ObjectTypeForeignDataWrapper ObjectType = "foreignDataWrapper"
	ObjectTypeForeignServer     ObjectType = "foreignServer"
	ObjectTypeUserMapping       ObjectType = "userMapping"
	ObjectTypeLanguage          ObjectType = "language"
	ObjectTypeEventTrigger      ObjectType = "eventTrigger"
	ObjectTypeCollation         ObjectType = "collation"
	ObjectTypeColumn            ObjectType = "column"
	ObjectTypeConstraint        ObjectType = "constraint"
	ObjectTypeComment           ObjectType = "comment"
	ObjectTypeACL               ObjectType = "acl"
	ObjectTypeDefaultACL        ObjectType = "defacl"
)

// unknownPrefix marks a depends-edge endpoint the extractor could not
// resolve to a recognized stableId. Per spec.md §4.3 / §7, edges with an
// unknown endpoint are silently filtered, never an error.
const unknownPrefix = "unknown."

// IsUnknown reports whether id names an unresolved reference.
func (id StableID) IsUnknown() bool {
	return strings.HasPrefix(string(id), unknownPrefix)
}

func schemaQualified(schema, name string) string {
	if schema == "" {
		return name
	}
	return schema + "." + name
}

func SchemaID(name string) StableID {
	return StableID("schema:" + name)
}

func TableID(schema, name string) StableID {
	return StableID("table:" + schemaQualified(schema, name))
}

func ForeignTableID(schema, name string) StableID {
	return StableID("foreignTable:" + schemaQualified(schema, name))
}

func ViewID(schema, name string) StableID {
	return StableID("view:" + schemaQualified(schema, name))
}

func MaterializedViewID(schema, name string) StableID {
	return StableID("materializedView:" + schemaQualified(schema, name))
}

func SequenceID(schema, name string) StableID {
	return StableID("sequence:" + schemaQualified(schema, name))
}

func CompositeTypeID(schema, name string) StableID {
	return StableID("compositeType:" + schemaQualified(schema, name))
}

func EnumTypeID(schema, name string) StableID {
	return StableID("enumType:" + schemaQualified(schema, name))
}

func RangeTypeID(schema, name string) StableID {
	return StableID("rangeType:" + schemaQualified(schema, name))
}

func DomainID(schema, name string) StableID {
	return StableID("domain:" + schemaQualified(schema, name))
}

// FunctionID, ProcedureID and AggregateID key by the PostgreSQL signature
// (name plus input-argument type list) since names alone are not unique
// under overloading.
func FunctionID(schema, name, argTypes string) StableID {
	return StableID(fmt.Sprintf("function:%s(%s)", schemaQualified(schema, name), argTypes))
}

func ProcedureID(schema, name, argTypes string) StableID {
	return StableID(fmt.Sprintf("procedure:%s(%s)", schemaQualified(schema, name), argTypes))
}

func AggregateID(schema, name, argTypes string) StableID {
	return StableID(fmt.Sprintf("aggregate:%s(%s)", schemaQualified(schema, name), argTypes))
}

func IndexID(schema, table, name string) StableID {
	return StableID(fmt.Sprintf("index:%s.%s", schemaQualified(schema, table), name))
}

func TriggerID(schema, table, name string) StableID {
	return StableID(fmt.Sprintf("trigger:%s.%s", schemaQualified(schema, table), name))
}

func RuleID(schema, table, name string) StableID {
	return StableID(fmt.Sprintf("rule:%s.%s", schemaQualified(schema, table), name))
}

func PolicyID(schema, table, name string) StableID {
	return StableID(fmt.Sprintf("policy:%s.%s", schemaQualified(schema, table), name))
}

func RoleID(name string) StableID {
	return StableID("role:" + name)
}

func ExtensionID(name string) StableID {
	return StableID("extension:" + name)
}

func PublicationID(name string) StableID {
	return StableID("publication:" + name)
}

func SubscriptionID(name string) StableID {
	return StableID("subscription:" + name)
}

func ForeignDataWrapperID(name string) StableID {
	return StableID("foreignDataWrapper:" + name)
}

func ForeignServerID(name string) StableID {
	return StableID("foreignServer:" + name)
}

func UserMappingID(server, user string) StableID {
	return StableID(fmt.Sprintf("userMapping:%s:%s", server, user))
}

func LanguageID(name string) StableID {
	return StableID("language:" + name)
}

func EventTriggerID(name string) StableID {
	return StableID("eventTrigger:" + name)
}

func CollationID(schema, name string) StableID {
	return StableID("collation:" + schemaQualified(schema, name))
}

// ConstraintID names a table- or domain-owned constraint.
func ConstraintID(owner StableID, name string) StableID {
	return StableID(fmt.Sprintf("constraint:%s.%s", owner, name))
}

// ColumnCommentID names the comment attached to a single column of a
// relation, per spec.md §4.1.1.
func ColumnCommentID(relation StableID, column string) StableID {
	return StableID(fmt.Sprintf("comment:%s.%s", relation, column))
}

// CommentID names the comment attached to an object as a whole.
func CommentID(object StableID) StableID {
	return StableID(fmt.Sprintf("comment:%s", object))
}

// ACLID names a single-grantee privilege record on an object, per spec.md §3.
func ACLID(object StableID, grantee string) StableID {
	return StableID(fmt.Sprintf("acl:%s::grantee:%s", object, grantee))
}

// DefaultACLID names a default-privilege entry, per spec.md §3 and §4.1.4.
func DefaultACLID(grantor, objType, scope, grantee string) StableID {
	return StableID(fmt.Sprintf("defacl:%s:%s:%s:grantee:%s", grantor, objType, scope, grantee))
}

// ColumnOwnerID names the "column of a table" reference used by
// AlterSequenceOwnedBy's requires set (spec.md §4.2 example).
func ColumnOwnerID(table StableID, column string) StableID {
	return StableID(fmt.Sprintf("%s.%s", table, column))
}
