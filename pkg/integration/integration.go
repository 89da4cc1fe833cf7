// SPDX-License-Identifier: Apache-2.0

// Package integration implements the external collaborator interface of
// spec.md §4.5: an Integration hook lets a caller drop changes from an
// export and override how individual changes serialize to SQL, either
// with hand-written closures or a data-driven DSL rule document.
package integration

import (
	"github.com/supabase/pgdiff/pkg/change"
	"github.com/supabase/pgdiff/pkg/export"
)

// Integration is `{filter?, serialize?}` per spec.md §4.5. A nil Filter
// accepts every change; a nil Serialize always falls back to the
// change's own Serialize().
type Integration struct {
	Filter    func(c change.Change) bool
	Serialize export.Serializer
}

// ApplyFilter implements spec.md §4.5's "applies filter first, dropping
// rejected changes" step.
func (i *Integration) ApplyFilter(changes []change.Change) []change.Change {
	if i == nil || i.Filter == nil {
		return changes
	}
	out := make([]change.Change, 0, len(changes))
	for _, c := range changes {
		if i.Filter(c) {
			out = append(out, c)
		}
	}
	return out
}

// AsSerializer adapts i for export.Render/export.WriteAll's override
// parameter, so pkg/export never needs to import pkg/integration.
func (i *Integration) AsSerializer() export.Serializer {
	if i == nil || i.Serialize == nil {
		return nil
	}
	return i.Serialize
}

// Compose returns an Integration whose Filter is the logical AND of fs
// and whose Serialize is the first non-nil override in order, per
// spec.md §4.5's "falls back... when the hook returns null" — letting
// several independent hooks (e.g. a hand-written one plus a compiled
// DSL) stack without either needing to know about the other.
func Compose(hooks ...*Integration) *Integration {
	return &Integration{
		Filter: func(c change.Change) bool {
			for _, h := range hooks {
				if h == nil || h.Filter == nil {
					continue
				}
				if !h.Filter(c) {
					return false
				}
			}
			return true
		},
		Serialize: func(c change.Change) (string, bool) {
			for _, h := range hooks {
				if h == nil || h.Serialize == nil {
					continue
				}
				if sql, ok := h.Serialize(c); ok {
					return sql, true
				}
			}
			return "", false
		},
	}
}
