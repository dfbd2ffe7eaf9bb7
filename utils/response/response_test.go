package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/utils/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFromErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantError  string
	}{
		{"validation", apperror.Validation("rating must be between 1 and 5"), fiber.StatusBadRequest, "VALIDATION_ERROR", "rating must be between 1 and 5"},
		{"unauthorized", apperror.Unauthorized("Invalid credentials"), fiber.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials"},
		{"forbidden", apperror.Forbidden("Not enrolled in this course"), fiber.StatusForbidden, "FORBIDDEN", "Not enrolled in this course"},
		{"not found", apperror.NotFound("Course not found"), fiber.StatusNotFound, "NOT_FOUND", "Course not found"},
		{"conflict", apperror.Conflict("Already enrolled in this course"), fiber.StatusBadRequest, "CONFLICT", "Already enrolled in this course"},
		{"unavailable", apperror.Unavailable("storage offline"), fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "storage offline"},
		{"wrapped", fmt.Errorf("enroll: %w", apperror.NotFound("Course not found")), fiber.StatusNotFound, "NOT_FOUND", "Course not found"},
		{"gorm not found", gorm.ErrRecordNotFound, fiber.StatusNotFound, "NOT_FOUND", "Resource not found"},
		{"gorm duplicate", gorm.ErrDuplicatedKey, fiber.StatusBadRequest, "CONFLICT", "Resource already exists"},
		{"unknown", errors.New("pq: connection refused"), fiber.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return FromError(c, tt.err)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			var got Response
			require.NoError(t, json.Unmarshal(body, &got))
			assert.False(t, got.Success)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantError, got.Error)
		})
	}
}

func TestCalculatePagination(t *testing.T) {
	meta := CalculatePagination(2, 10, 25)
	assert.Equal(t, 2, meta.CurrentPage)
	assert.Equal(t, 10, meta.PerPage)
	assert.Equal(t, 3, meta.TotalPages)

	meta = CalculatePagination(0, 0, 0)
	assert.Equal(t, 1, meta.CurrentPage)
	assert.Equal(t, 10, meta.PerPage)
	assert.Equal(t, 0, meta.TotalPages)

	meta = CalculatePagination(1, 500, 150)
	assert.Equal(t, 100, meta.PerPage)
	assert.Equal(t, 2, meta.TotalPages)
}
