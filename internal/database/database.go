package repository

import (
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"ChatCRM/entity"
	"ChatCRM/internal/config"
	"ChatCRM/internal/lib/sl"
)

// Sentinel errors surfaced to handlers. Handlers map them to HTTP statuses;
// the chat core treats ErrNotFound as "zero targets", never as fatal.
var (
	ErrNotFound      = errors.New("record not found")
	ErrForbidden     = errors.New("operation not allowed")
	ErrClaimConflict = errors.New("support room claimed by another agent")
)

// Storage is the durable relational store behind the chat core and the API
// layer.
type Storage struct {
	db  *gorm.DB
	log *slog.Logger
}

// New connects to PostgreSQL and migrates the schema.
func New(conf *config.Config, logger *slog.Logger) (*Storage, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		conf.Database.Host,
		conf.Database.Port,
		conf.Database.User,
		conf.Database.Password,
		conf.Database.Name,
		conf.Database.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}

	storage := &Storage{
		db:  db,
		log: logger.With(sl.Module("repository")),
	}
	if err := storage.migrate(); err != nil {
		return nil, err
	}
	return storage, nil
}

// NewWithDB wraps an already-open gorm connection. Used by tests with an
// in-memory SQLite database.
func NewWithDB(db *gorm.DB, logger *slog.Logger) (*Storage, error) {
	storage := &Storage{
		db:  db,
		log: logger.With(sl.Module("repository")),
	}
	if err := storage.migrate(); err != nil {
		return nil, err
	}
	return storage, nil
}

func (s *Storage) migrate() error {
	if err := s.db.AutoMigrate(entity.AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// notFound translates gorm's record-not-found into the package sentinel.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
