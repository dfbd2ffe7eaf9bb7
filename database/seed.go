package database

import (
	"context"
	"fmt"

	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils"
	"github.com/sahilchouksey/learnhub-api/utils/auth"
	"gorm.io/gorm"
)

// Recomputer rebuilds cached course statistics after rows are inserted directly
type Recomputer interface {
	RecomputeAll(ctx context.Context) (int, error)
}

// SeedOptions controls what the seeder creates
type SeedOptions struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
	Demo          bool
	DemoPassword  string
}

// Seeder handles database seeding operations
type Seeder struct {
	db    *gorm.DB
	stats Recomputer
	log   *utils.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, stats Recomputer, log *utils.Logger) *Seeder {
	return &Seeder{db: db, stats: stats, log: log}
}

// SeedAll runs all seed functions. Every step is idempotent.
func (s *Seeder) SeedAll(ctx context.Context, opts SeedOptions) error {
	s.log.Info("starting database seeding")

	if err := s.SeedAdminUser(ctx, opts); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if opts.Demo {
		if err := s.SeedDemoCatalog(ctx, opts.DemoPassword); err != nil {
			return fmt.Errorf("failed to seed demo catalog: %w", err)
		}
	}

	n, err := s.stats.RecomputeAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to recompute course stats: %w", err)
	}

	s.log.Info("database seeding completed", "coursesRecomputed", n)
	return nil
}

// SeedAdminUser creates the admin account. Admins cannot self-register,
// so this is the only way one comes into existence.
func (s *Seeder) SeedAdminUser(ctx context.Context, opts SeedOptions) error {
	if opts.AdminEmail == "" || opts.AdminPassword == "" {
		s.log.Warn("ADMIN_EMAIL and ADMIN_PASSWORD not set, skipping admin user creation")
		return nil
	}

	created, err := s.ensureUser(ctx, model.User{
		Name:  defaultString(opts.AdminName, "Administrator"),
		Email: opts.AdminEmail,
		Role:  model.RoleAdmin,
	}, opts.AdminPassword)
	if err != nil {
		return err
	}
	if !created {
		s.log.Info("admin user already exists, skipping", "email", opts.AdminEmail)
	}
	return nil
}

// SeedDemoCatalog creates a demo instructor with one published course
func (s *Seeder) SeedDemoCatalog(ctx context.Context, password string) error {
	password = defaultString(password, "password123")

	db := s.db.WithContext(ctx)
	instructor := model.User{
		Name:  "Demo Instructor",
		Email: "instructor@learnhub.dev",
		Role:  model.RoleInstructor,
		Bio:   "Teaches backend engineering.",
	}
	if _, err := s.ensureUser(ctx, instructor, password); err != nil {
		return err
	}
	if err := db.Where("email = ?", instructor.Email).First(&instructor).Error; err != nil {
		return err
	}

	if _, err := s.ensureUser(ctx, model.User{
		Name:  "Demo Student",
		Email: "student@learnhub.dev",
		Role:  model.RoleStudent,
	}, password); err != nil {
		return err
	}

	var count int64
	if err := db.Model(&model.Course{}).Where("instructor_id = ?", instructor.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		s.log.Info("demo course already exists, skipping")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		course := model.Course{
			Title:        "Building REST APIs in Go",
			Description:  "Design, build and test a production-ready JSON API.",
			InstructorID: instructor.ID,
			Category:     "Programming",
			Level:        model.LevelBeginner,
			Price:        19.99,
			IsPublished:  true,
		}
		if err := tx.Create(&course).Error; err != nil {
			return err
		}

		lessons := []model.Lesson{
			{SectionTitle: "Getting Started", LessonNumber: 1, Title: "Welcome", ContentType: model.ContentVideo, VideoURL: "https://videos.learnhub.dev/welcome.mp4", Duration: 5, IsPreview: true},
			{SectionTitle: "Getting Started", LessonNumber: 2, Title: "Project Layout", ContentType: model.ContentText, TextContent: "cmd/, internal/ and friends.", Duration: 10},
			{SectionTitle: "HTTP", LessonNumber: 3, Title: "Routing and Handlers", ContentType: model.ContentVideo, VideoURL: "https://videos.learnhub.dev/routing.mp4", Duration: 20},
			{SectionTitle: "HTTP", LessonNumber: 4, Title: "Check Your Understanding", ContentType: model.ContentQuiz, Duration: 5},
		}
		for i := range lessons {
			lessons[i].CourseID = course.ID
		}
		return tx.Create(&lessons).Error
	})
}

// ensureUser creates u with password unless the email is taken
func (s *Seeder) ensureUser(ctx context.Context, u model.User, password string) (bool, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&model.User{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}
	u.PasswordHash = hash

	if err := db.Create(&u).Error; err != nil {
		return false, err
	}
	s.log.Info("user created", "email", u.Email, "role", u.Role)
	return true, nil
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
