// internal/server/schema.go
package server

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Request payload schemas. Validated before any store access so malformed
// payloads never reach the resolvers.
var (
	accessRequestSchema = map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"client_id":   map[string]interface{}{"type": "string"},
			"customer_id": map[string]interface{}{"type": "string"},
		},
		"required":             []interface{}{"client_id", "customer_id"},
		"additionalProperties": false,
	}

	compareRequestSchema = map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"data":      map[string]interface{}{"type": "string", "minLength": 1},
			"is_msisdn": map[string]interface{}{"type": "boolean"},
			"process":   map[string]interface{}{"type": "string"},
		},
		"required":             []interface{}{"data"},
		"additionalProperties": false,
	}

	smsRequestSchema = map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"client_id":       map[string]interface{}{"type": "string", "minLength": 1},
			"phone_number":    map[string]interface{}{"type": "string", "minLength": 1},
			"sms_template_id": map[string]interface{}{"type": "string", "minLength": 1},
			"max_retries":     map[string]interface{}{"type": "integer", "minimum": 0},
			"date_to_send":    map[string]interface{}{"type": "string"},
			"params":          map[string]interface{}{"type": "object"},
		},
		"required":             []interface{}{"client_id", "phone_number", "sms_template_id"},
		"additionalProperties": false,
	}
)

// validatePayload checks a decoded JSON document against a schema and
// returns one aggregated error message.
func validatePayload(schema map[string]interface{}, document interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, e := range result.Errors() {
			errs[i] = e.String()
		}
		return fmt.Errorf("invalid payload: %s", strings.Join(errs, "; "))
	}
	return nil
}
