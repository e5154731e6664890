package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/qri-io/jsonschema"
)

//go:embed carnet_schema.json
var carnetSchemaJSON []byte

var carnetSchema = mustSchema(carnetSchemaJSON)

func mustSchema(b []byte) *jsonschema.Schema {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(b, rs); err != nil {
		panic(fmt.Sprintf("embedded carnet schema is invalid: %v", err))
	}
	return rs
}

// validateCarnetPayload checks a create request body against the embedded
// JSON schema before decoding. The first problem is returned as a message
// suitable for the error body; an empty string means the body is valid.
func validateCarnetPayload(ctx context.Context, body []byte) string {
	keyErrs, err := carnetSchema.ValidateBytes(ctx, body)
	if err != nil {
		return "invalid json"
	}
	if len(keyErrs) == 0 {
		return ""
	}

	ke := keyErrs[0]
	if ke.PropertyPath != "" && ke.PropertyPath != "/" {
		return fmt.Sprintf("%s: %s", ke.PropertyPath, ke.Message)
	}
	return ke.Message
}
