package api

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Request payloads on the direct send endpoints are validated against
// JSON Schema before decoding, so malformed input is rejected with a
// field-level message instead of a decode error.

const executeSchema = `{
	"type": "object",
	"required": ["text"],
	"properties": {
		"text": {"type": "string", "minLength": 1},
		"contactMethod": {"type": "string"}
	},
	"additionalProperties": false
}`

const sendSMSSchema = `{
	"type": "object",
	"required": ["recipients", "message"],
	"properties": {
		"recipients": {
			"type": "array",
			"minItems": 1,
			"items": {"type": "string", "minLength": 1}
		},
		"message": {"type": "string", "minLength": 1},
		"enhance": {"type": "boolean"}
	},
	"additionalProperties": false
}`

const sendEmailSchema = `{
	"type": "object",
	"required": ["recipients", "message"],
	"properties": {
		"recipients": {
			"type": "array",
			"minItems": 1,
			"items": {"type": "string", "minLength": 1}
		},
		"subject": {"type": "string"},
		"message": {"type": "string", "minLength": 1},
		"enhance": {"type": "boolean"}
	},
	"additionalProperties": false
}`

const sendMixedSchema = `{
	"type": "object",
	"required": ["recipients", "message"],
	"properties": {
		"recipients": {
			"type": "array",
			"minItems": 1,
			"items": {"type": "string", "minLength": 1}
		},
		"subject": {"type": "string"},
		"message": {"type": "string", "minLength": 1}
	},
	"additionalProperties": false
}`

const createReminderSchema = `{
	"type": "object",
	"required": ["description", "dueDate", "contactMethod"],
	"properties": {
		"serviceType": {"type": "string"},
		"vehicle": {"type": "string"},
		"description": {"type": "string", "minLength": 1},
		"dueDate": {"type": "string", "minLength": 1},
		"contactMethod": {"type": "string", "minLength": 1}
	},
	"additionalProperties": false
}`

var schemas = map[string]*gojsonschema.Schema{}

func init() {
	for name, raw := range map[string]string{
		"execute":        executeSchema,
		"sendSMS":        sendSMSSchema,
		"sendEmail":      sendEmailSchema,
		"sendMixed":      sendMixedSchema,
		"createReminder": createReminderSchema,
	} {
		s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
		if err != nil {
			panic(fmt.Sprintf("invalid %s schema: %v", name, err))
		}
		schemas[name] = s
	}
}

// validateBody checks raw JSON against a named schema and returns a
// joined field-level message on failure.
func validateBody(schemaName string, body []byte) error {
	result, err := schemas[schemaName].Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var problems []string
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return fmt.Errorf("%s", strings.Join(problems, "; "))
}
