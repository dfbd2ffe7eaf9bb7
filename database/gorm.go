package database

import (
	"fmt"
	"time"

	"github.com/sahilchouksey/learnhub-api/config"
	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage defines the lifecycle every database backend must satisfy
type Storage interface {
	Init() error
	Close() error
	HealthCheck() error
	GetDB() *gorm.DB
}

type GORMStore struct {
	db  *gorm.DB
	log *utils.Logger
}

// StartGORM opens the database selected by DB_DRIVER (postgres or sqlite)
func StartGORM(env *config.EnviornmentVariable, log *utils.Logger) (*GORMStore, error) {
	// Configure GORM logger
	gormLogger := logger.Default.LogMode(logger.Info)
	if env.IsProduction() {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	var dialector gorm.Dialector
	switch env.DB_DRIVER {
	case "sqlite":
		dialector = sqlite.Open(env.DB_PATH)
	case "postgres", "":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			env.DB_HOST,
			env.DB_USER_NAME,
			env.DB_PASSWORD,
			env.DB_NAME,
			env.DB_PORT,
			env.DB_SSL_MODE,
		)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", env.DB_DRIVER)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		PrepareStmt:    env.DB_DRIVER != "sqlite",
		TranslateError: true, // unique violations surface as gorm.ErrDuplicatedKey
	})
	if err != nil {
		log.Error("unable to connect to database", "driver", env.DB_DRIVER, "error", err)
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if env.DB_DRIVER == "sqlite" {
		// SQLite serialises writers; one connection avoids "database is locked".
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	log.Info("connected to database", "driver", env.DB_DRIVER)

	return &GORMStore{db: db, log: log}, nil
}

// OpenSQLite opens a quiet SQLite store at dsn. Tests pass an in-memory dsn.
func OpenSQLite(dsn string) (*GORMStore, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return &GORMStore{db: db, log: utils.NewNopLogger()}, nil
}

// Init runs AutoMigrate for every model
func (s *GORMStore) Init() error {
	s.log.Info("running AutoMigrate")

	if err := s.db.AutoMigrate(model.AllModels()...); err != nil {
		s.log.Error("AutoMigrate failed", "error", err)
		return err
	}

	s.log.Info("AutoMigrate completed")
	return nil
}

// Close closes the database connection
func (s *GORMStore) Close() error {
	s.log.Info("closing database connection")
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the GORM DB instance for use in services and handlers
func (s *GORMStore) GetDB() *gorm.DB {
	return s.db
}

// HealthCheck verifies the database connection is alive
func (s *GORMStore) HealthCheck() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
