package admin

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/database"
	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils/auth"
	"github.com/sahilchouksey/learnhub-api/utils/middleware"
	"github.com/sahilchouksey/learnhub-api/utils/query"
	"github.com/sahilchouksey/learnhub-api/utils/response"
	"github.com/sahilchouksey/learnhub-api/utils/validation"
	"gorm.io/gorm"
)

var validate = validation.NewValidator()

var userSorts = map[string]string{
	"created_at": "created_at",
	"name":       "name",
	"email":      "email",
}

// UpdateUserRequest represents the request body for updating a user
type UpdateUserRequest struct {
	Name *string `json:"name" column:"name" validate:"omitempty,min=2,max=100"`
	Role *string `json:"role" column:"role" validate:"omitempty,oneof=student instructor admin"`
}

// ResetPasswordRequest represents the request for admin password reset
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

func findUser(c *fiber.Ctx, db *gorm.DB) (*model.User, error) {
	userID, ok := query.ParseID(c.Params("id"))
	if !ok {
		return nil, response.BadRequest(c, "Invalid user ID")
	}

	var user model.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFound(c, "User not found")
		}
		return nil, response.InternalServerError(c, "Failed to fetch user")
	}
	return &user, nil
}

// ListUsers retrieves all users with pagination and filters
// GET /api/admin/users
func ListUsers(c *fiber.Ctx, store database.Storage) error {
	db := store.GetDB()
	page, limit := query.Page(c.Query("page"), c.Query("limit"))

	q := db.Model(&model.User{})

	if role := c.Query("role"); role != "" {
		if !model.ValidRole(role) {
			return response.BadRequest(c, "Invalid role filter")
		}
		q = q.Where("role = ?", role)
	}

	// Search by name or email
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		term := query.ContainsPattern(search)
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\'`, term, term)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count users")
	}

	column, ok := userSorts[c.Query("sort")]
	if !ok {
		column = "created_at"
	}
	dir := "DESC"
	if c.Query("sortDir") == "asc" {
		dir = "ASC"
	}

	var users []model.User
	if err := q.Scopes(query.Paginate(page, limit)).Order(column + " " + dir).Find(&users).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch users")
	}

	return response.Paginated(c, users, response.CalculatePagination(page, limit, total))
}

// GetUser retrieves a specific user with activity counts
// GET /api/admin/users/:id
func GetUser(c *fiber.Ctx, store database.Storage) error {
	db := store.GetDB()
	user, err := findUser(c, db)
	if user == nil {
		return err
	}

	var stats struct {
		Enrollments    int64 `json:"enrollments"`
		CoursesCreated int64 `json:"coursesCreated"`
		Reviews        int64 `json:"reviews"`
	}
	counts := []struct {
		model  interface{}
		column string
		dst    *int64
	}{
		{&model.Enrollment{}, "student_id", &stats.Enrollments},
		{&model.Course{}, "instructor_id", &stats.CoursesCreated},
		{&model.Review{}, "student_id", &stats.Reviews},
	}
	for _, cnt := range counts {
		if err := db.Model(cnt.model).Where(cnt.column+" = ?", user.ID).Count(cnt.dst).Error; err != nil {
			return response.InternalServerError(c, "Failed to load user statistics")
		}
	}

	return response.Success(c, fiber.Map{
		"user":  user,
		"stats": stats,
	})
}

// UpdateUser changes a user's name or role
// PUT /api/admin/users/:id
func UpdateUser(c *fiber.Ctx, store database.Storage) error {
	db := store.GetDB()

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.FirstError(err), validation.FormatValidationErrors(err))
	}

	user, err := findUser(c, db)
	if user == nil {
		return err
	}

	// An admin demoting themselves could leave the system without one
	if req.Role != nil && *req.Role != model.RoleAdmin && user.ID == middleware.GetCaller(c).ID {
		return response.BadRequest(c, "Cannot change your own role")
	}

	if updates := query.UpdateColumns(&req); len(updates) > 0 {
		if err := db.Model(user).Updates(updates).Error; err != nil {
			return response.InternalServerError(c, "Failed to update user")
		}
	}

	if err := db.First(user, user.ID).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch user")
	}

	return response.SuccessWithMessage(c, "User updated successfully", fiber.Map{
		"user": user,
	})
}

// DeleteUser soft deletes a user
// DELETE /api/admin/users/:id
func DeleteUser(c *fiber.Ctx, store database.Storage) error {
	db := store.GetDB()
	user, err := findUser(c, db)
	if user == nil {
		return err
	}

	if user.ID == middleware.GetCaller(c).ID {
		return response.BadRequest(c, "Cannot delete your own account")
	}

	if err := db.Delete(user).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete user")
	}

	return response.SuccessWithMessage(c, "User deleted successfully", fiber.Map{
		"userId": user.ID,
	})
}

// ResetUserPassword allows admin to reset a user's password
// POST /api/admin/users/:id/reset-password
func ResetUserPassword(c *fiber.Ctx, store database.Storage) error {
	db := store.GetDB()

	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.FirstError(err), validation.FormatValidationErrors(err))
	}

	user, err := findUser(c, db)
	if user == nil {
		return err
	}

	hashedPassword, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return response.InternalServerError(c, "Failed to hash password")
	}

	// bumping the token version signs the user out everywhere
	err = db.Model(user).Updates(map[string]interface{}{
		"password_hash": hashedPassword,
		"token_version": gorm.Expr("token_version + 1"),
	}).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to update password")
	}

	return response.SuccessWithMessage(c, "Password reset successfully", fiber.Map{
		"userId": user.ID,
	})
}

// GetUserStats retrieves overall user statistics
// GET /api/admin/users/stats
func GetUserStats(c *fiber.Ctx, store database.Storage) error {
	db := store.GetDB()

	var stats struct {
		TotalUsers       int64 `json:"totalUsers"`
		Students         int64 `json:"students"`
		Instructors      int64 `json:"instructors"`
		Admins           int64 `json:"admins"`
		NewThisWeek      int64 `json:"newThisWeek"`
		TotalEnrollments int64 `json:"totalEnrollments"`
	}

	var byRole []struct {
		Role  string
		Count int64
	}
	if err := db.Model(&model.User{}).Select("role, COUNT(*) AS count").Group("role").Scan(&byRole).Error; err != nil {
		return response.InternalServerError(c, "Failed to count users")
	}
	for _, r := range byRole {
		stats.TotalUsers += r.Count
		switch r.Role {
		case model.RoleStudent:
			stats.Students = r.Count
		case model.RoleInstructor:
			stats.Instructors = r.Count
		case model.RoleAdmin:
			stats.Admins = r.Count
		}
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	if err := db.Model(&model.User{}).Where("created_at >= ?", weekAgo).Count(&stats.NewThisWeek).Error; err != nil {
		return response.InternalServerError(c, "Failed to count new users")
	}
	if err := db.Model(&model.Enrollment{}).Count(&stats.TotalEnrollments).Error; err != nil {
		return response.InternalServerError(c, "Failed to count enrollments")
	}

	return response.Success(c, stats)
}
