// SPDX-License-Identifier: Apache-2.0

// Package jsonschema validates pgdiff's data-driven documents — the
// Integration DSL rule list (pkg/integration) and export Grouping
// documents (pkg/export) — against the schema committed at the repo
// root, the same way the teacher validates migration files.
package jsonschema

import (
	"bytes"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Validate checks raw (already-decoded-to-JSON document bytes, typically
// produced by sigs.k8s.io/yaml's YAML->JSON conversion) against the JSON
// Schema document at schemaPath.
func Validate(schemaPath string, raw []byte) error {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(schemaPath)
	if err != nil {
		return fmt.Errorf("compile schema %s: %w", schemaPath, err)
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}

	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("document does not satisfy %s: %w", schemaPath, err)
	}
	return nil
}
