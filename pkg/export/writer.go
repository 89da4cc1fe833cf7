// SPDX-License-Identifier: Apache-2.0

package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/supabase/pgdiff/pkg/change"
)

// Serializer lets a caller override how an individual change renders to
// SQL — pkg/integration uses this to splice in DSL-driven statement
// rewrites without pkg/export importing pkg/integration. ok is false to
// fall back to the change's own Serialize().
type Serializer func(c change.Change) (sql string, ok bool)

// Render writes out g's statements in resolver order, preceded by any
// preamble set by GroupChangesByFile (currently just the
// check_function_bodies guard for routine files).
func Render(g *FileGroup, override Serializer) string {
	var b strings.Builder
	if p := g.Metadata["preamble"]; p != "" {
		b.WriteString(p)
		b.WriteString("\n\n")
	}
	for _, c := range g.Changes {
		stmt := ""
		if override != nil {
			if s, ok := override(c); ok {
				stmt = s
			}
		}
		if stmt == "" {
			stmt = c.Serialize()
		}
		if stmt == "" {
			continue
		}
		b.WriteString(stmt)
		b.WriteString(";\n")
	}
	return b.String()
}

// WriteAll renders every group and hands it to open for persistence. open
// is caller-supplied so the exporter has no opinion on destination —
// local filesystem, tar stream, or an in-memory buffer for tests.
func WriteAll(groups []*FileGroup, override Serializer, open func(path string) (io.WriteCloser, error)) error {
	for _, g := range groups {
		w, err := open(g.Path)
		if err != nil {
			return fmt.Errorf("open %s: %w", g.Path, err)
		}
		_, writeErr := io.WriteString(w, Render(g, override))
		closeErr := w.Close()
		if writeErr != nil {
			return fmt.Errorf("write %s: %w", g.Path, writeErr)
		}
		if closeErr != nil {
			return fmt.Errorf("close %s: %w", g.Path, closeErr)
		}
	}
	return nil
}
