package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_PostAnalysis(t *testing.T) {
	valid := `{
		"score": 72,
		"core_message": "We shipped a feature",
		"improvements": ["Say what the feature does"],
		"key_elements": ["the launch"],
		"tone_guidance": "plain and warm"
	}`

	assert.NoError(t, Validate(PostAnalysis, valid))
}

func TestValidate_PostAnalysis_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		json  string
		field string
	}{
		{
			name:  "missing core message",
			json:  `{"score": 10, "improvements": ["x"], "key_elements": [], "tone_guidance": ""}`,
			field: "(root)",
		},
		{
			name:  "score out of range",
			json:  `{"score": 140, "core_message": "m", "improvements": ["x"], "key_elements": [], "tone_guidance": ""}`,
			field: "score",
		},
		{
			name:  "improvements wrong type",
			json:  `{"score": 10, "core_message": "m", "improvements": "x", "key_elements": [], "tone_guidance": ""}`,
			field: "improvements",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(PostAnalysis, tt.json)
			require.Error(t, err)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Contains(t, validationErr.Fields(), tt.field)
		})
	}
}

func TestValidate_PersonaRewrite(t *testing.T) {
	valid := `{
		"analysis": {"score": 60, "target_score": 30, "cringe_factors": ["synergy"], "recommendations": ["Be direct"]},
		"rewrites": {"human_relatable": "a", "bold_edgy": "b", "playful_witty": "c"}
	}`
	assert.NoError(t, Validate(PersonaRewrite, valid))

	incomplete := `{
		"analysis": {"score": 60, "recommendations": []},
		"rewrites": {"human_relatable": "a", "bold_edgy": ""}
	}`
	err := Validate(PersonaRewrite, incomplete)
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields(), "rewrites.bold_edgy")
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("nope", `{}`)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, err.Error(), "nope.schema.json")
}

func TestValidateJSONString_Valid(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"}
		}
	}`
	jsonContent := `{"name": "test"}`

	err := ValidateJSONString(schemaContent, jsonContent)
	assert.NoError(t, err)
}

func TestValidateJSONString_Invalid(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"}
		}
	}`
	jsonContent := `{"age": 30}`

	err := ValidateJSONString(schemaContent, jsonContent)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidateJSONString_BadSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": 12}`, `{}`)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "score", Message: "is required"},
			{Field: "rewrites", Message: "must be an object"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "score")
	assert.Contains(t, errorMsg, "rewrites")
	assert.Equal(t, []string{"score", "rewrites"}, err.Fields())
}
