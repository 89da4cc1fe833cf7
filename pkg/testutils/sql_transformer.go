// SPDX-License-Identifier: Apache-2.0

package testutils

import (
	"github.com/supabase/pgdiff/pkg/change"
	"github.com/supabase/pgdiff/pkg/export"
)

// MockSerializer is a fake export.Serializer: it maps a change's own
// serialized SQL to an override string, letting integration/plan tests
// exercise a serializer override without hand-writing a closure per case.
type MockSerializer struct {
	overrides map[string]string
}

// NewMockSerializer builds a MockSerializer from a map of a change's own
// serialized SQL to the SQL it should be overridden with. A change whose
// serialized SQL is not in overrides is left unserialized (ok=false), the
// same as export.Render's fallback to c.Serialize().
func NewMockSerializer(overrides map[string]string) *MockSerializer {
	return &MockSerializer{overrides: overrides}
}

// AsSerializer adapts m to export.Serializer's signature.
func (m *MockSerializer) AsSerializer() export.Serializer {
	return func(c change.Change) (string, bool) {
		out, ok := m.overrides[c.Serialize()]
		return out, ok
	}
}
