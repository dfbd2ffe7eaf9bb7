package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/config"
	"github.com/sahilchouksey/learnhub-api/database"
	"github.com/sahilchouksey/learnhub-api/handlers"
	admin_handlers "github.com/sahilchouksey/learnhub-api/handlers/admin"
	analytics_handlers "github.com/sahilchouksey/learnhub-api/handlers/analytics"
	auth_handlers "github.com/sahilchouksey/learnhub-api/handlers/auth"
	course_handlers "github.com/sahilchouksey/learnhub-api/handlers/course"
	enrollment_handlers "github.com/sahilchouksey/learnhub-api/handlers/enrollment"
	lesson_handlers "github.com/sahilchouksey/learnhub-api/handlers/lesson"
	profile_handlers "github.com/sahilchouksey/learnhub-api/handlers/profile"
	progress_handlers "github.com/sahilchouksey/learnhub-api/handlers/progress"
	review_handlers "github.com/sahilchouksey/learnhub-api/handlers/review"
	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/services/storage"
	"github.com/sahilchouksey/learnhub-api/utils"
	"github.com/sahilchouksey/learnhub-api/utils/auth"
	"github.com/sahilchouksey/learnhub-api/utils/middleware"
)

// Dependencies are the long-lived components routes are built from.
// Attempts and Objects are optional; nil disables login lockout and
// thumbnail uploads respectively.
type Dependencies struct {
	Store    database.Storage
	Config   *config.EnviornmentVariable
	Log      *utils.Logger
	Attempts middleware.AttemptStore
	Objects  storage.ObjectStore
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	env := deps.Config
	db := deps.Store.GetDB()
	log := deps.Log

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		AccessSecret:  env.JWT_ACCESS_SECRET,
		RefreshSecret: env.JWT_REFRESH_SECRET,
		Expiry:        env.JWT_ACCESS_EXPIRY,
		RefreshExpiry: env.JWT_REFRESH_EXPIRY,
		Issuer:        env.JWT_ISSUER,
	})
	blacklist := auth.NewBlacklistService(db)
	bruteForceProtection := middleware.NewBruteForceProtection(deps.Attempts)
	if deps.Attempts == nil {
		log.Warn("no attempt store configured, login lockout disabled")
	}
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, blacklist, db)

	// Services
	statsService := services.NewCourseStatsService(db, log)
	enrollmentService := services.NewEnrollmentService(db, log)
	progressService := services.NewProgressService(db, log)
	reviewService := services.NewReviewService(db, log)
	analyticsService := services.NewAnalyticsService(db)

	// Handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, blacklist, bruteForceProtection)
	courseHandler := course_handlers.NewCourseHandler(db, deps.Objects, log)
	lessonHandler := lesson_handlers.NewLessonHandler(db, statsService, log)
	enrollmentHandler := enrollment_handlers.NewEnrollmentHandler(enrollmentService)
	progressHandler := progress_handlers.NewProgressHandler(progressService)
	reviewHandler := review_handlers.NewReviewHandler(reviewService)
	analyticsHandler := analytics_handlers.NewAnalyticsHandler(analyticsService)
	profileHandler := profile_handlers.NewProfileHandler(db, analyticsService)

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    env.ALLOWED_ORIGINS,
		RateLimitRequests: env.RATE_LIMIT_REQUESTS,
		RateLimitWindow:   env.RATE_LIMIT_WINDOW,
		DisableAccessLog:  env.GO_ENV == "test",
	})

	// Health check endpoints (public)
	app.Get("/ping", handlers.HandlePing)

	api := app.Group("/api")
	api.Get("/health", handlers.MakeHTTPHandleFunc(handlers.HandleCheckHealth, deps.Store))

	student := authMiddleware.RequireRole(model.RoleStudent, model.RoleAdmin)
	instructor := authMiddleware.RequireRole(model.RoleInstructor, model.RoleAdmin)

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Get("/me", authMiddleware.Required(), authHandler.Me)
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)

	// Courses routes
	courses := api.Group("/courses")
	courses.Get("/", courseHandler.ListCourses)
	courses.Get("/instructor/my-courses", authMiddleware.Required(), instructor, courseHandler.MyCourses)
	courses.Get("/:id", authMiddleware.Optional(), courseHandler.GetCourse)
	courses.Post("/", authMiddleware.Required(), instructor, courseHandler.CreateCourse)
	courses.Put("/:id", authMiddleware.Required(), courseHandler.UpdateCourse)
	courses.Delete("/:id", authMiddleware.Required(), courseHandler.DeleteCourse)
	courses.Post("/:id/thumbnail", authMiddleware.Required(), courseHandler.UploadThumbnail)

	// Lessons nested under courses
	courses.Get("/:courseId/lessons", authMiddleware.Optional(), lessonHandler.ListLessons)
	courses.Post("/:courseId/lessons", authMiddleware.Required(), lessonHandler.CreateLesson)

	lessons := api.Group("/lessons", authMiddleware.Required())
	lessons.Get("/:id", lessonHandler.GetLesson)
	lessons.Put("/:id", lessonHandler.UpdateLesson)
	lessons.Delete("/:id", lessonHandler.DeleteLesson)

	// Enrollments
	enrollments := api.Group("/enrollments", authMiddleware.Required())
	enrollments.Post("/", student, enrollmentHandler.Enroll)
	enrollments.Get("/my-courses", student, enrollmentHandler.MyCourses)
	enrollments.Get("/:courseId/status", enrollmentHandler.Status)

	// Progress
	progress := api.Group("/progress", authMiddleware.Required())
	progress.Post("/complete", student, progressHandler.Complete)
	progress.Get("/course/:courseId", progressHandler.CourseProgress)
	progress.Get("/overview", student, progressHandler.Overview)

	// Reviews
	reviews := api.Group("/reviews")
	reviews.Get("/course/:courseId", reviewHandler.CourseReviews)
	reviews.Post("/", authMiddleware.Required(), student, reviewHandler.CreateReview)
	reviews.Put("/:id", authMiddleware.Required(), reviewHandler.UpdateReview)
	reviews.Delete("/:id", authMiddleware.Required(), reviewHandler.DeleteReview)

	// Instructor analytics
	analytics := api.Group("/analytics/instructor", authMiddleware.Required(), instructor)
	analytics.Get("/overview", analyticsHandler.InstructorOverview)
	analytics.Get("/course/:courseId", analyticsHandler.CourseAnalytics)

	// Profile
	profile := api.Group("/profile")
	profile.Get("/", authMiddleware.Required(), profileHandler.GetMyProfile)
	profile.Put("/", authMiddleware.Required(), profileHandler.UpdateProfile)
	profile.Get("/:userId", profileHandler.GetPublicProfile)

	// Admin user management
	admin := api.Group("/admin", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleAdmin))
	admin.Get("/users", handlers.MakeHTTPHandleFunc(admin_handlers.ListUsers, deps.Store))
	admin.Get("/users/stats", handlers.MakeHTTPHandleFunc(admin_handlers.GetUserStats, deps.Store))
	admin.Get("/users/:id", handlers.MakeHTTPHandleFunc(admin_handlers.GetUser, deps.Store))
	admin.Put("/users/:id", handlers.MakeHTTPHandleFunc(admin_handlers.UpdateUser, deps.Store))
	admin.Delete("/users/:id", handlers.MakeHTTPHandleFunc(admin_handlers.DeleteUser, deps.Store))
	admin.Post("/users/:id/reset-password", handlers.MakeHTTPHandleFunc(admin_handlers.ResetUserPassword, deps.Store))

	log.Info("routes registered")
}
