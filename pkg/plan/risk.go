// SPDX-License-Identifier: Apache-2.0

package plan

import "github.com/supabase/pgdiff/pkg/change"

// RiskLevel classifies a plan's destructive potential, per spec.md §6/§7.
type RiskLevel string

const (
	RiskSafe     RiskLevel = "safe"
	RiskDataLoss RiskLevel = "data_loss"
)

// Risk is the plan envelope's optional risk block.
type Risk struct {
	Level      RiskLevel `json:"level"`
	Statements []string  `json:"statements"`
}

// ClassifyRisk implements spec.md §7's "any DROP or destructive ALTER ⇒
// risk.level = data_loss" rule. DROP and REPLACE changes (a REPLACE is a
// drop+create pair of the same identity, spec.md §3) are always
// destructive; among targeted ALTERs only AlterColumnType and
// AlterColumnNotNull can discard or reject existing data, so those two
// kinds count and the rest (default/identity/generated/collation) do not.
func ClassifyRisk(changes []change.Change) *Risk {
	var statements []string
	for _, c := range changes {
		if isDestructive(c) {
			if sql := c.Serialize(); sql != "" {
				statements = append(statements, sql)
			}
		}
	}
	if len(statements) == 0 {
		return &Risk{Level: RiskSafe}
	}
	return &Risk{Level: RiskDataLoss, Statements: statements}
}

func isDestructive(c change.Change) bool {
	switch c.Operation() {
	case change.OpDrop, change.OpReplace:
		return true
	}
	if alt, ok := c.(*change.AlterColumn); ok {
		return alt.Kind == change.AlterColumnType || alt.Kind == change.AlterColumnNotNull
	}
	return false
}
