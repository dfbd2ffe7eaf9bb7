package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reviewInput struct {
	CourseID uint   `json:"courseId" validate:"required"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Comment  string `json:"comment" validate:"max=10"`
	Level    string `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
}

func TestFormatValidationErrorsUsesJSONNames(t *testing.T) {
	v := NewValidator()

	err := v.ValidateStruct(reviewInput{Rating: 7, Comment: "far too long a comment", Level: "Expert"})
	require.Error(t, err)

	errs := FormatValidationErrors(err)
	assert.Equal(t, "courseId is required", errs["courseId"])
	assert.Equal(t, "rating must be at most 5", errs["rating"])
	assert.Equal(t, "comment must be at most 10 characters", errs["comment"])
	assert.Equal(t, "level must be one of: Beginner, Intermediate, Advanced", errs["level"])
}

func TestValidInputPasses(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.ValidateStruct(reviewInput{CourseID: 1, Rating: 5}))
}

func TestFirstError(t *testing.T) {
	v := NewValidator()
	err := v.ValidateStruct(reviewInput{CourseID: 1, Rating: 0})
	assert.Equal(t, "rating is required", FirstError(err))
	assert.Equal(t, "Validation failed", FirstError(nil))
}

func TestEmailHelpers(t *testing.T) {
	assert.True(t, ValidateEmail("ada@example.com"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.Equal(t, "ada@example.com", NormalizeEmail("  Ada@Example.COM "))
	assert.Equal(t, "hello", SanitizeString(" hel\x00lo "))
}
