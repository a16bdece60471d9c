package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var pointSchema = MustCompile(map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"x"},
	"properties": map[string]interface{}{
		"x": map[string]interface{}{"type": "integer"},
	},
})

func TestSchema_ValidateBytes(t *testing.T) {
	assert.True(t, pointSchema.ValidateBytes([]byte(`{"x":1}`)).Valid)

	res := pointSchema.ValidateBytes([]byte(`{"x":"one"}`))
	assert.False(t, res.Valid)
	assert.Contains(t, res.Summary(), "x")

	res = pointSchema.ValidateBytes([]byte(`{`))
	assert.False(t, res.Valid)
	assert.Equal(t, "UNPARSEABLE_DOCUMENT", res.Errors[0].Code)
}

func TestSchema_ValidateValue(t *testing.T) {
	assert.True(t, pointSchema.ValidateValue(map[string]interface{}{"x": 2}).Valid)
	assert.False(t, pointSchema.ValidateValue(map[string]interface{}{}).Valid)
}

func TestCompile_BadSchema(t *testing.T) {
	_, err := Compile(map[string]interface{}{"type": 12})
	assert.Error(t, err)
	assert.Panics(t, func() { MustCompile(map[string]interface{}{"type": 12}) })
}

func TestSummary_Valid(t *testing.T) {
	assert.Equal(t, "", (&ValidationResult{Valid: true}).Summary())
}
