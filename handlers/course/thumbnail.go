package course

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/services/storage"
	"github.com/sahilchouksey/learnhub-api/utils/response"
)

const maxThumbnailSize = 5 * 1024 * 1024

// UploadThumbnail handles POST /api/courses/:id/thumbnail (multipart field "file")
func (h *CourseHandler) UploadThumbnail(c *fiber.Ctx) error {
	if h.storage == nil {
		return response.ServiceUnavailable(c, "File storage is not configured")
	}

	course, err := h.loadOwnedCourse(c, "update")
	if course == nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "No file provided")
	}
	if fileHeader.Size > maxThumbnailSize {
		return response.BadRequest(c, "Thumbnail must be 5MB or smaller")
	}
	contentType, ok := storage.ImageContentType(fileHeader.Filename)
	if !ok {
		return response.BadRequest(c, "Thumbnail must be a jpg, png, webp or gif image")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read file")
	}
	defer file.Close()

	key := storage.GenerateKey(fmt.Sprintf("courses/%d/thumbnails", course.ID), fileHeader.Filename)
	url, err := h.storage.Upload(c.UserContext(), key, file, contentType)
	if err != nil {
		h.log.Error("thumbnail upload failed", "course_id", course.ID, "error", err)
		return response.InternalServerError(c, "Failed to upload thumbnail")
	}

	previous := course.Thumbnail
	if err := h.db.Model(course).Update("thumbnail", url).Error; err != nil {
		return response.InternalServerError(c, "Failed to save thumbnail")
	}
	course.Thumbnail = url

	// Only objects we uploaded ourselves are removed
	if oldKey, ok := h.storage.KeyFromURL(previous); ok && previous != "" {
		if err := h.storage.Delete(c.UserContext(), oldKey); err != nil {
			h.log.Warn("failed to delete previous thumbnail", "key", oldKey, "error", err)
		}
	}

	return response.SuccessWithMessage(c, "Thumbnail uploaded successfully", fiber.Map{"course": course})
}
