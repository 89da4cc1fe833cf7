// SPDX-License-Identifier: Apache-2.0

package catalog

import "fmt"

// InvalidInputError is raised when a catalog value is structurally
// incomplete: a required field is missing, or a StableID is empty
// (spec.md §7).
type InvalidInputError struct {
	Reason string
}

func (e InvalidInputError) Error() string {
	return fmt.Sprintf("invalid catalog input: %s", e.Reason)
}

// MissingParentError is raised when an index, trigger, or policy change
// lacks its parent table information — the differ's responsibility to
// fill in, per spec.md §7.
type MissingParentError struct {
	ObjectType ObjectType
	Name       string
}

func (e MissingParentError) Error() string {
	return fmt.Sprintf("%s %q is missing parent table information", e.ObjectType, e.Name)
}

// Validate checks that every table referenced by Catalog.Indexes,
// Catalog.Triggers, and Catalog.Policies is actually present, and that no
// StableID anywhere is empty. This is the one piece of fail-fast input
// validation spec.md §7 assigns to the core rather than to the (external)
// catalog extractor.
func (c *Catalog) Validate() error {
	for id, idx := range c.Indexes {
		if id == "" {
			return InvalidInputError{Reason: "empty stableId for index"}
		}
		if idx.Table == "" {
			return MissingParentError{ObjectType: ObjectTypeIndex, Name: idx.Name}
		}
	}
	for id, t := range c.Triggers {
		if id == "" {
			return InvalidInputError{Reason: "empty stableId for trigger"}
		}
		if t.Table == "" {
			return MissingParentError{ObjectType: ObjectTypeTrigger, Name: t.Name}
		}
	}
	for id, p := range c.Policies {
		if id == "" {
			return InvalidInputError{Reason: "empty stableId for policy"}
		}
		if p.Table == "" {
			return MissingParentError{ObjectType: ObjectTypePolicy, Name: p.Name}
		}
	}
	for id, t := range c.Tables {
		if id == "" || t.Name == "" {
			return InvalidInputError{Reason: "table with empty stableId or name"}
		}
	}
	return nil
}
