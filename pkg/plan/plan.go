// SPDX-License-Identifier: Apache-2.0

// Package plan assembles the resolver's ordered change list and the
// exporter's file groups into the transportable plan envelope of
// spec.md §6: fingerprinted source/target scopes, risk classification,
// and per-file SQL ready to apply or hand to pkg/state for history
// tracking.
package plan

import (
	"time"

	"github.com/google/uuid"
	"github.com/supabase/pgdiff/pkg/catalog"
	"github.com/supabase/pgdiff/pkg/change"
	"github.com/supabase/pgdiff/pkg/export"
)

const envelopeVersion = 1

// Mode names how the plan was exported, mirroring pkg/export's two
// layouts plus the declarative-only entry point.
type Mode string

const (
	ModeDeclarative Mode = "declarative"
	ModeDetailed    Mode = "detailed"
	ModeSimple      Mode = "simple"
)

// FileMetadata is the file-level descriptive block of spec.md §6's
// envelope, carried alongside each file's rendered SQL.
type FileMetadata struct {
	ObjectType string `json:"objectType"`
	SchemaName string `json:"schemaName,omitempty"`
	ObjectName string `json:"objectName,omitempty"`
}

// File is one entry of the envelope's files list.
type File struct {
	Path       string       `json:"path"`
	Order      int          `json:"order"`
	Statements int          `json:"statements"`
	SQL        string       `json:"sql"`
	Metadata   FileMetadata `json:"metadata"`
}

// Fingerprints pairs a scope's hash with nothing else — kept as its own
// type so Envelope's source/target fields read the way spec.md §6 writes
// them (`{fingerprint: sha256-hex}`) rather than as bare strings.
type Fingerprints struct {
	Fingerprint string `json:"fingerprint"`
}

// Envelope is the plan-assembly layer's sole output, spec.md §6's "Plan
// envelope".
type Envelope struct {
	PlanID      string       `json:"planId"`
	Version     int          `json:"version"`
	Mode        Mode         `json:"mode"`
	GeneratedAt string       `json:"generatedAt"`
	Source      Fingerprints `json:"source"`
	Target      Fingerprints `json:"target"`
	Files       []File       `json:"files"`
	Risk        *Risk        `json:"risk,omitempty"`
}

// Assemble implements spec.md §4's Plan assembly stage F: it fingerprints
// both sides of the diff over the filtered change set, classifies risk,
// and wraps the exporter's file groups into an Envelope. changes must
// already be resolver-ordered; groups must be export.GroupChangesByFile's
// output over the same changes, so Order reflects resolver position.
func Assemble(mode Mode, changes []change.Change, groups []*export.FileGroup, mainCatalog, branchCatalog *catalog.Catalog, serializer export.Serializer) *Envelope {
	files := make([]File, 0, len(groups))
	for i, g := range groups {
		sql := export.Render(g, serializer)
		files = append(files, File{
			Path:       g.Path,
			Order:      i,
			Statements: len(g.Changes),
			SQL:        sql,
			Metadata:   fileMetadata(g),
		})
	}

	return &Envelope{
		PlanID:      uuid.NewString(),
		Version:     envelopeVersion,
		Mode:        mode,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Source:      Fingerprints{Fingerprint: Fingerprint(changes, mainCatalog)},
		Target:      Fingerprints{Fingerprint: Fingerprint(changes, branchCatalog)},
		Files:       files,
		Risk:        ClassifyRisk(changes),
	}
}

// fileMetadata derives a group's descriptive block from its first change,
// since every change in a group shares the same owning object by
// construction (export.GroupChangesByFile keys groups by target path).
func fileMetadata(g *export.FileGroup) FileMetadata {
	md := FileMetadata{ObjectType: string(g.Category)}
	if len(g.Changes) == 0 {
		return md
	}
	md.SchemaName = g.Metadata["schema"]
	md.ObjectName = g.Metadata["name"]
	if md.ObjectName == "" {
		md.ObjectName = g.Metadata["table"]
	}
	return md
}
