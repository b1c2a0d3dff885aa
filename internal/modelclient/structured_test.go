package modelclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripFencesRemovesJSONCodeBlock(t *testing.T) {
	raw := "```json\n{\"a\": 1}\n```"
	assert.Equal(t, `{"a": 1}`, stripFences(raw))
}

func TestStripFencesLeavesBareJSONUntouched(t *testing.T) {
	raw := `{"a": 1}`
	assert.Equal(t, raw, stripFences(raw))
}

func TestValidateRequiredDetectsMissingField(t *testing.T) {
	doc := map[string]any{"is_relevant": true}
	err := validateRequired(doc, []string{"is_relevant", "risk_score"})
	assert.ErrorContains(t, err, "risk_score")
}

func TestValidateRequiredPassesWhenAllPresent(t *testing.T) {
	doc := map[string]any{"is_relevant": true, "risk_score": 50.0}
	assert.NoError(t, validateRequired(doc, []string{"is_relevant", "risk_score"}))
}

func TestSchemaRequiredNamesFiltersOptional(t *testing.T) {
	s := Schema{Fields: []SchemaField{
		{Name: "is_relevant", Type: "boolean", Required: true},
		{Name: "notes", Type: "string", Required: false},
		{Name: "risk_score", Type: "number", Required: true},
	}}
	assert.ElementsMatch(t, []string{"is_relevant", "risk_score"}, s.requiredNames())
}

func TestSchemaExampleJSONIncludesAllFieldNames(t *testing.T) {
	s := Schema{Fields: []SchemaField{
		{Name: "is_relevant", Type: "boolean", Required: true},
		{Name: "risk_score", Type: "number", Required: true},
	}}
	out := s.exampleJSON()
	assert.Contains(t, out, "is_relevant")
	assert.Contains(t, out, "risk_score")
}
