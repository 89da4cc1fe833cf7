// SPDX-License-Identifier: Apache-2.0

package integration

import (
	"regexp"
	"strings"

	"github.com/supabase/pgdiff/pkg/change"
	"github.com/supabase/pgdiff/pkg/export"
)

// Pattern is a rule's `when` clause: every present field must match for
// the rule to fire; an absent (zero-value) field matches anything.
type Pattern struct {
	ObjectType  string `json:"objectType,omitempty"`
	Schema      string `json:"schema,omitempty"`
	NamePattern string `json:"namePattern,omitempty"`
	Operation   string `json:"operation,omitempty"`

	compiled *regexp.Regexp
}

// compile precompiles NamePattern once at DSL-load time so Match never
// pays regex-compilation cost per change.
func (p *Pattern) compile() error {
	if p.NamePattern == "" {
		return nil
	}
	re, err := regexp.Compile(p.NamePattern)
	if err != nil {
		return err
	}
	p.compiled = re
	return nil
}

// Match reports whether c satisfies every non-zero field of p, resolving
// c's schema/name the same way pkg/export's mapper does (export.Target +
// export.ParseTarget) so a DSL rule matches exactly the object a change
// would be filed under.
func (p *Pattern) Match(c change.Change) bool {
	if p.ObjectType != "" && p.ObjectType != string(c.ObjectType()) {
		return false
	}
	if p.Operation != "" && p.Operation != string(c.Operation()) {
		return false
	}
	if p.Schema == "" && p.compiled == nil {
		return true
	}
	_, schema, name := export.ParseTarget(export.Target(c))
	if p.Schema != "" && p.Schema != schema {
		return false
	}
	if p.compiled != nil && !p.compiled.MatchString(name) {
		return false
	}
	return true
}

// RuleOptions is a rule's `options` clause, per spec.md §4.5.
type RuleOptions struct {
	Skip              bool   `json:"skip,omitempty"`
	SkipAuthorization bool   `json:"skipAuthorization,omitempty"`
	Serialize         string `json:"serialize,omitempty"`
}

// authorizationScopes are the scopes RuleOptions.SkipAuthorization
// targets: privilege grants/revokes, default-privilege entries, and role
// membership changes, per spec.md §3's scope enum.
var authorizationScopes = map[change.Scope]bool{
	change.ScopePrivilege:        true,
	change.ScopeDefaultPrivilege: true,
	change.ScopeMembership:       true,
}

// Rule is one `{when, options}` entry of a DSL document.
type Rule struct {
	When    Pattern     `json:"when"`
	Options RuleOptions `json:"options,omitempty"`
}

// renderSerialize substitutes c's own serialized SQL into Options.Serialize
// wherever it contains a single "%s" placeholder, or returns the literal
// text unchanged otherwise.
func (r *Rule) renderSerialize(c change.Change) string {
	if !strings.Contains(r.Options.Serialize, "%s") {
		return r.Options.Serialize
	}
	return strings.Replace(r.Options.Serialize, "%s", c.Serialize(), 1)
}

// skips reports whether this rule's options drop c from the export.
func (r *Rule) skips(c change.Change) bool {
	if r.Options.Skip {
		return true
	}
	return r.Options.SkipAuthorization && authorizationScopes[c.Scope()]
}
