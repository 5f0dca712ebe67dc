package config

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON string

var schemaLoader = gojsonschema.NewStringLoader(schemaJSON)

// ValidateSettings checks merged viper settings (file, env and defaults)
// against the embedded JSON schema. Problems are reported as "field: reason"
// sorted by field.
func ValidateSettings(settings map[string]any) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(settings))
	if err != nil {
		return fmt.Errorf("validate config schema: %w", err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	sort.Strings(problems)
	return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
}
