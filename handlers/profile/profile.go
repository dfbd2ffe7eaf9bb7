package profile

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils/middleware"
	"github.com/sahilchouksey/learnhub-api/utils/query"
	"github.com/sahilchouksey/learnhub-api/utils/response"
	"github.com/sahilchouksey/learnhub-api/utils/validation"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const recentLimit = 5

// ProfileHandler handles profile requests
type ProfileHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	analytics *services.AnalyticsService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(db *gorm.DB, analytics *services.AnalyticsService) *ProfileHandler {
	return &ProfileHandler{
		db:        db,
		validator: validation.NewValidator(),
		analytics: analytics,
	}
}

// UpdateProfileRequest lists the profile fields a user may edit
type UpdateProfileRequest struct {
	Name   *string                      `json:"name" column:"name" validate:"omitempty,min=2,max=100"`
	Bio    *string                      `json:"bio" column:"bio" validate:"omitempty,max=500"`
	Skills *datatypes.JSONSlice[string] `json:"skills" column:"skills" validate:"omitempty,max=20"`
	Avatar *string                      `json:"avatar" column:"avatar" validate:"omitempty,url"`
}

// EnrolledCourseSummary is a recent enrollment on the owner's profile
type EnrolledCourseSummary struct {
	CourseID   uint      `json:"courseId"`
	Title      string    `json:"title"`
	Thumbnail  string    `json:"thumbnail"`
	EnrolledAt time.Time `json:"enrolledAt"`
}

// CreatedCourseSummary is a recent authored course on the owner's profile
type CreatedCourseSummary struct {
	CourseID      uint    `json:"courseId"`
	Title         string  `json:"title"`
	Thumbnail     string  `json:"thumbnail"`
	EnrolledCount int     `json:"enrolledCount"`
	AverageRating float64 `json:"averageRating"`
}

// PublicUser is what anyone may see about an account
type PublicUser struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Bio       string    `json:"bio"`
	Skills    []string  `json:"skills"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// GetMyProfile handles GET /api/profile
func (h *ProfileHandler) GetMyProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	enrolled := []EnrolledCourseSummary{}
	if user.Role == model.RoleStudent {
		var enrollments []model.Enrollment
		if err := h.db.Preload("Course").
			Where("student_id = ?", user.ID).
			Order("enrolled_at DESC").
			Limit(recentLimit).
			Find(&enrollments).Error; err != nil {
			return response.InternalServerError(c, "Failed to fetch enrollments")
		}
		for _, e := range enrollments {
			if e.Course == nil {
				continue
			}
			enrolled = append(enrolled, EnrolledCourseSummary{
				CourseID:   e.CourseID,
				Title:      e.Course.Title,
				Thumbnail:  e.Course.Thumbnail,
				EnrolledAt: e.EnrolledAt,
			})
		}
	}

	created := []CreatedCourseSummary{}
	if user.IsPrivileged() {
		var courses []model.Course
		if err := h.db.Select("id", "title", "thumbnail", "enrolled_count", "average_rating").
			Where("instructor_id = ?", user.ID).
			Order("created_at DESC").
			Limit(recentLimit).
			Find(&courses).Error; err != nil {
			return response.InternalServerError(c, "Failed to fetch courses")
		}
		for _, course := range courses {
			created = append(created, CreatedCourseSummary{
				CourseID:      course.ID,
				Title:         course.Title,
				Thumbnail:     course.Thumbnail,
				EnrolledCount: course.EnrolledCount,
				AverageRating: course.AverageRating,
			})
		}
	}

	return response.Success(c, fiber.Map{
		"user":            user,
		"enrolledCourses": enrolled,
		"createdCourses":  created,
	})
}

// UpdateProfile handles PUT /api/profile
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Name != nil {
		name := validation.SanitizeString(*req.Name)
		req.Name = &name
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.FirstError(err), validation.FormatValidationErrors(err))
	}

	if updates := query.UpdateColumns(&req); len(updates) > 0 {
		if err := h.db.Model(&model.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			return response.InternalServerError(c, "Failed to update profile")
		}
	}

	var updated model.User
	if err := h.db.First(&updated, user.ID).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch profile")
	}

	return response.SuccessWithMessage(c, "Profile updated successfully", fiber.Map{"user": updated})
}

// GetPublicProfile handles GET /api/profile/:userId. Instructors also get
// their teaching statistics.
func (h *ProfileHandler) GetPublicProfile(c *fiber.Ctx) error {
	id, ok := query.ParseID(c.Params("userId"))
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	var user model.User
	if err := h.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch user")
	}

	skills := []string(user.Skills)
	if skills == nil {
		skills = []string{}
	}

	var stats interface{} = fiber.Map{}
	if user.Role == model.RoleInstructor {
		instructorStats, err := h.analytics.InstructorPublicStats(c.UserContext(), user.ID)
		if err != nil {
			return response.FromError(c, err)
		}
		stats = instructorStats
	}

	return response.Success(c, fiber.Map{
		"user": PublicUser{
			ID:        user.ID,
			Name:      user.Name,
			Avatar:    user.Avatar,
			Bio:       user.Bio,
			Skills:    skills,
			Role:      user.Role,
			CreatedAt: user.CreatedAt,
		},
		"stats": stats,
	})
}
