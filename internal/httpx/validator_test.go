package httpx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type testPayload struct {
	Title string `json:"title" validate:"max=10"`
	Notes string `json:"personalNotes,omitempty" validate:"max=20"`
	Code  string `json:"code" validate:"omitempty,hexadecimal"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid input", func(t *testing.T) {
		assert.Empty(t, ValidateStruct(testPayload{Title: "Dune"}))
	})

	t.Run("too long uses json field name", func(t *testing.T) {
		details := ValidateStruct(testPayload{Title: "A Very Long Title Indeed", Notes: strings.Repeat("n", 21)})
		assert.Equal(t, []ErrorDetail{
			{Field: "title", Message: "title must be at most 10 characters"},
			{Field: "personalNotes", Message: "personalNotes must be at most 20 characters"},
		}, details)
	})

	t.Run("limit counts characters", func(t *testing.T) {
		assert.Empty(t, ValidateStruct(testPayload{Title: strings.Repeat("é", 10)}))
	})

	t.Run("other tags get a generic message", func(t *testing.T) {
		details := ValidateStruct(testPayload{Title: "Dune", Code: "xyz"})
		assert.Equal(t, []ErrorDetail{{Field: "code", Message: "code is invalid"}}, details)
	})
}
