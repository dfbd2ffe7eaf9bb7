package course

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/services/storage"
	"github.com/sahilchouksey/learnhub-api/utils"
	"github.com/sahilchouksey/learnhub-api/utils/access"
	"github.com/sahilchouksey/learnhub-api/utils/middleware"
	"github.com/sahilchouksey/learnhub-api/utils/query"
	"github.com/sahilchouksey/learnhub-api/utils/response"
	"github.com/sahilchouksey/learnhub-api/utils/validation"
	"gorm.io/gorm"
)

// CourseHandler handles course-related requests
type CourseHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	storage   storage.ObjectStore
	log       *utils.Logger
}

// NewCourseHandler creates a new course handler. store may be nil when
// object storage is not configured.
func NewCourseHandler(db *gorm.DB, store storage.ObjectStore, log *utils.Logger) *CourseHandler {
	return &CourseHandler{
		db:        db,
		validator: validation.NewValidator(),
		storage:   store,
		log:       log,
	}
}

// CreateCourseRequest represents the request body for creating a course
type CreateCourseRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"required"`
	Category    string  `json:"category" validate:"required,max=100"`
	Level       string  `json:"level" validate:"required,oneof=Beginner Intermediate Advanced"`
	Price       float64 `json:"price" validate:"gte=0"`
	Thumbnail   string  `json:"thumbnail" validate:"omitempty,url"`
	IsPublished bool    `json:"isPublished"`
}

// UpdateCourseRequest lists the fields a course author may change.
// Derived statistics are not writable here.
type UpdateCourseRequest struct {
	Title       *string  `json:"title" column:"title" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description" column:"description" validate:"omitempty,min=1"`
	Category    *string  `json:"category" column:"category" validate:"omitempty,min=1,max=100"`
	Level       *string  `json:"level" column:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Price       *float64 `json:"price" column:"price" validate:"omitempty,gte=0"`
	Thumbnail   *string  `json:"thumbnail" column:"thumbnail" validate:"omitempty,url"`
	IsPublished *bool    `json:"isPublished" column:"is_published"`
}

var courseSorts = map[string]string{
	"newest":     "created_at DESC",
	"oldest":     "created_at ASC",
	"popular":    "enrolled_count DESC",
	"rating":     "average_rating DESC",
	"price-low":  "price ASC",
	"price-high": "price DESC",
}

func publicInstructor(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "avatar")
}

// instructorCard adds the bio shown on a course page
func instructorCard(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "avatar", "bio")
}

// ListCourses handles GET /api/courses
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	page, limit := query.Page(c.Query("page"), c.Query("limit"))

	q := h.db.Model(&model.Course{}).Where("is_published = ?", true)

	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	if level := c.Query("level"); level != "" {
		q = q.Where("level = ?", level)
	}
	if v := c.Query("minPrice"); v != "" {
		minPrice, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return response.BadRequest(c, "minPrice must be a number")
		}
		q = q.Where("price >= ?", minPrice)
	}
	if v := c.Query("maxPrice"); v != "" {
		maxPrice, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return response.BadRequest(c, "maxPrice must be a number")
		}
		q = q.Where("price <= ?", maxPrice)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := query.ContainsPattern(search)
		q = q.Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count courses")
	}

	order, ok := courseSorts[c.Query("sort", "newest")]
	if !ok {
		order = courseSorts["newest"]
	}

	var courses []model.Course
	if err := q.Preload("Instructor", publicInstructor).
		Order(order).
		Order("id DESC").
		Scopes(query.Paginate(page, limit)).
		Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	return response.Paginated(c, courses, response.CalculatePagination(page, limit, total))
}

// CourseDetail is the course page payload
type CourseDetail struct {
	Course             *model.Course `json:"course"`
	IsEnrolled         bool          `json:"isEnrolled"`
	CanViewFullContent bool          `json:"canViewFullContent"`
}

// GetCourse handles GET /api/courses/:id. Lesson content is only included
// for enrolled students, the instructor, admins, and preview lessons.
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	id, ok := query.ParseID(c.Params("id"))
	if !ok {
		return response.BadRequest(c, "Invalid course ID")
	}

	caller := middleware.GetCaller(c)

	var course model.Course
	if err := h.db.Preload("Instructor", instructorCard).First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	// Drafts are only visible to their author
	if !course.IsPublished && !access.OwnerOrAdmin(caller, course.InstructorID).Allowed {
		return response.NotFound(c, "Course not found")
	}

	isEnrolled := false
	if caller.Authenticated() {
		enrolled, err := services.IsEnrolled(c.UserContext(), h.db, caller.ID, course.ID)
		if err != nil {
			return response.InternalServerError(c, "Failed to check enrollment")
		}
		isEnrolled = enrolled
	}
	canViewFull := access.EnrolledOrPrivileged(caller, course.InstructorID, isEnrolled).Allowed

	var lessons []model.Lesson
	if err := h.db.Where("course_id = ?", course.ID).Order("lesson_number ASC, id ASC").Find(&lessons).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch lessons")
	}
	for i, l := range lessons {
		if !access.CanViewLessonContent(caller, course.InstructorID, isEnrolled, l.IsPreview).Allowed {
			lessons[i] = l.WithoutContent()
		}
	}
	course.Lessons = lessons

	return response.Success(c, CourseDetail{
		Course:             &course,
		IsEnrolled:         isEnrolled,
		CanViewFullContent: canViewFull,
	})
}

// CreateCourse handles POST /api/courses
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	caller := middleware.GetCaller(c)

	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.FirstError(err), validation.FormatValidationErrors(err))
	}

	course := model.Course{
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		InstructorID: caller.ID,
		Category:     strings.TrimSpace(req.Category),
		Level:        req.Level,
		Price:        req.Price,
		Thumbnail:    req.Thumbnail,
		IsPublished:  req.IsPublished,
	}
	if err := h.db.Create(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to create course")
	}

	return response.Created(c, "Course created successfully", fiber.Map{"course": course})
}

// loadOwnedCourse fetches a course and checks that the caller may change it
func (h *CourseHandler) loadOwnedCourse(c *fiber.Ctx, action string) (*model.Course, error) {
	id, ok := query.ParseID(c.Params("id"))
	if !ok {
		return nil, response.BadRequest(c, "Invalid course ID")
	}

	var course model.Course
	if err := h.db.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFound(c, "Course not found")
		}
		return nil, response.InternalServerError(c, "Failed to fetch course")
	}

	if !access.OwnerOrAdmin(middleware.GetCaller(c), course.InstructorID).Allowed {
		return nil, response.Forbidden(c, "Not authorized to "+action+" this course")
	}
	return &course, nil
}

// UpdateCourse handles PUT /api/courses/:id
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	course, err := h.loadOwnedCourse(c, "update")
	if course == nil {
		return err
	}

	var req UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.FirstError(err), validation.FormatValidationErrors(err))
	}

	if updates := query.UpdateColumns(&req); len(updates) > 0 {
		if err := h.db.Model(course).Updates(updates).Error; err != nil {
			return response.InternalServerError(c, "Failed to update course")
		}
	}

	if err := h.db.Preload("Instructor", publicInstructor).First(course, course.ID).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch updated course")
	}

	return response.SuccessWithMessage(c, "Course updated successfully", fiber.Map{"course": course})
}

// DeleteCourse handles DELETE /api/courses/:id. The course is soft deleted;
// its lessons and their progress rows are removed.
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	course, err := h.loadOwnedCourse(c, "delete")
	if course == nil {
		return err
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", course.ID).Delete(&model.Progress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&model.Lesson{}).Error; err != nil {
			return err
		}
		return tx.Delete(course).Error
	})
	if err != nil {
		h.log.Error("failed to delete course", "course_id", course.ID, "error", err)
		return response.InternalServerError(c, "Failed to delete course")
	}

	return response.SuccessWithMessage(c, "Course deleted successfully", nil)
}

// MyCourses handles GET /api/courses/instructor/my-courses
func (h *CourseHandler) MyCourses(c *fiber.Ctx) error {
	caller := middleware.GetCaller(c)

	var courses []model.Course
	if err := h.db.Where("instructor_id = ?", caller.ID).
		Preload("Instructor", publicInstructor).
		Order("created_at DESC").
		Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	return response.Success(c, fiber.Map{"courses": courses})
}
