// SPDX-License-Identifier: Apache-2.0

package jsonschema

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/tools/txtar"
)

const (
	schemaPath  = "../../schema.json"
	testDataDir = "./testdata"
)

// TestJSONSchemaValidation checks every testdata/*.txtar fixture (an
// integration-rule document plus a "true"/"false" verdict) against the
// DSL schema committed at the repo root, per spec.md §4.5's rule-list
// shape.
func TestJSONSchemaValidation(t *testing.T) {
	t.Parallel()

	files, err := os.ReadDir(testDataDir)
	assert.NoError(t, err)

	for _, file := range files {
		t.Run(file.Name(), func(t *testing.T) {
			ac, err := txtar.ParseFile(filepath.Join(testDataDir, file.Name()))
			assert.NoError(t, err)
			assert.Len(t, ac.Files, 2)

			shouldValidate, err := strconv.ParseBool(strings.TrimSpace(string(ac.Files[1].Data)))
			assert.NoError(t, err)

			err = Validate(schemaPath, ac.Files[0].Data)
			if shouldValidate && err != nil {
				t.Errorf("%#v", err)
			} else if !shouldValidate && err == nil {
				t.Errorf("expected %q to be invalid", ac.Files[0].Name)
			}
		})
	}
}
