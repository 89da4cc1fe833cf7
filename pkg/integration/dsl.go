// SPDX-License-Identifier: Apache-2.0

package integration

import (
	"fmt"

	"github.com/supabase/pgdiff/internal/jsonschema"
	"github.com/supabase/pgdiff/pkg/change"
	"sigs.k8s.io/yaml"
)

// DSL is a compiled `{rules: [{when, options}, ...]}` document, per
// spec.md §4.5's "data-driven DSL variant... evaluated in order, first
// match wins".
type DSL struct {
	Rules []Rule `json:"rules"`
}

// Compile parses raw as YAML (or JSON, a YAML subset), validates it
// against the committed DSL schema, and precompiles every rule's regex.
// schemaPath is the filesystem path to schema.json, threaded through
// rather than hardcoded so tests can point at a fixture copy.
func Compile(schemaPath string, raw []byte) (*DSL, error) {
	jsonDoc, err := yaml.YAMLToJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("parse DSL document: %w", err)
	}
	if err := jsonschema.Validate(schemaPath, jsonDoc); err != nil {
		return nil, err
	}

	var d DSL
	if err := yaml.Unmarshal(jsonDoc, &d); err != nil {
		return nil, fmt.Errorf("unmarshal DSL document: %w", err)
	}
	for i := range d.Rules {
		if err := d.Rules[i].When.compile(); err != nil {
			return nil, fmt.Errorf("rule %d: compile namePattern: %w", i, err)
		}
	}
	return &d, nil
}

// firstMatch returns the first rule whose When matches c, or nil.
func (d *DSL) firstMatch(c change.Change) *Rule {
	for i := range d.Rules {
		if d.Rules[i].When.Match(c) {
			return &d.Rules[i]
		}
	}
	return nil
}

// ToIntegration compiles d into an Integration: Filter drops changes
// matched by a `skip`/`skipAuthorization` rule, Serialize applies a
// matched rule's literal/templated SQL override.
func (d *DSL) ToIntegration() *Integration {
	return &Integration{
		Filter: func(c change.Change) bool {
			if r := d.firstMatch(c); r != nil {
				return !r.skips(c)
			}
			return true
		},
		Serialize: func(c change.Change) (string, bool) {
			r := d.firstMatch(c)
			if r == nil || r.Options.Serialize == "" {
				return "", false
			}
			return r.renderSerialize(c), true
		},
	}
}
