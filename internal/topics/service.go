package topics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrInvalidInput indicates a required topic field is missing.
	ErrInvalidInput = errors.New("topics: invalid input")

	errMissingDatabase = errors.New("database handle is required")
	noOpLogger         = zap.NewNop()
)

// ServiceConfig describes the dependencies required for topic persistence.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Service persists topics, reusing existing rows by exact title match.
type Service struct {
	db     *gorm.DB
	clock  func() time.Time
	logger *zap.Logger
}

// NewService constructs the topic service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("topics: %w", errMissingDatabase)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Service{db: cfg.Database, clock: clock, logger: logger}, nil
}

// SaveInput carries the fields of an explicit topic save.
type SaveInput struct {
	Title       string
	Description string
	ImageURL    string
	Traffic     string
	Source      string
}

// Save stores the topic unless a row with the same title already exists.
// The boolean reports whether a new row was created.
func (s *Service) Save(ctx context.Context, input SaveInput) (Topic, bool, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || strings.TrimSpace(input.Description) == "" {
		return Topic{}, false, ErrInvalidInput
	}

	var existing Topic
	err := s.db.WithContext(ctx).Where("title = ?", title).Take(&existing).Error
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("topic lookup failed", zap.Error(err), zap.String("title", title))
		return Topic{}, false, err
	}

	topic := Topic{
		ID:          uuid.NewString(),
		Title:       title,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Traffic:     input.Traffic,
		Source:      input.Source,
		CreatedAt:   s.clock().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&topic).Error; err != nil {
		s.logger.Error("topic insert failed", zap.Error(err), zap.String("title", title))
		return Topic{}, false, err
	}
	return topic, true, nil
}

// FindOrCreate returns the topic with the given title, creating it when absent.
// Two concurrent calls for a brand-new title may both create a row; the race
// is accepted as benign.
func (s *Service) FindOrCreate(ctx context.Context, title, description string) (Topic, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Topic{}, ErrInvalidInput
	}

	var existing Topic
	err := s.db.WithContext(ctx).Where("title = ?", title).Take(&existing).Error
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("topic lookup failed", zap.Error(err), zap.String("title", title))
		return Topic{}, err
	}

	topic := Topic{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		CreatedAt:   s.clock().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&topic).Error; err != nil {
		s.logger.Error("topic insert failed", zap.Error(err), zap.String("title", title))
		return Topic{}, err
	}
	return topic, nil
}
