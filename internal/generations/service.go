package generations

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
	// ErrInvalidInput indicates a required generation field is missing.
	ErrInvalidInput = errors.New("generations: invalid input")
	// ErrNotFound indicates no generation exists with the requested id.
	ErrNotFound = errors.New("generations: not found")
	// ErrForbidden indicates the generation belongs to a different user.
	ErrForbidden = errors.New("generations: forbidden")

	errMissingDatabase = errors.New("database handle is required")
	noOpLogger         = zap.NewNop()
)

// ServiceConfig describes the dependencies required for generation persistence.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Service persists generations and enforces per-user ownership on reads and deletes.
type Service struct {
	db     *gorm.DB
	clock  func() time.Time
	logger *zap.Logger
}

// NewService constructs the generation service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("generations: %w", errMissingDatabase)
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

// CreateInput carries the fields of a new generation row.
type CreateInput struct {
	Type      Type
	Content   string
	ImageData string
	ImageMime string
	TopicID   string
	UserID    string
}

// Create stores one generation row for the owning user.
func (s *Service) Create(ctx context.Context, input CreateInput) (Generation, error) {
	if _, ok := ParseType(string(input.Type)); !ok {
		return Generation{}, ErrInvalidInput
	}
	if strings.TrimSpace(input.TopicID) == "" || strings.TrimSpace(input.UserID) == "" {
		return Generation{}, ErrInvalidInput
	}

	generation := Generation{
		ID:        uuid.NewString(),
		Type:      input.Type,
		Content:   input.Content,
		ImageData: input.ImageData,
		ImageMime: input.ImageMime,
		TopicID:   input.TopicID,
		UserID:    input.UserID,
		CreatedAt: s.clock().UTC(),
	}
	if err := s.db.WithContext(ctx).Omit("Topic").Create(&generation).Error; err != nil {
		s.logger.Error("generation insert failed", zap.Error(err),
			zap.String("user_id", input.UserID),
			zap.String("topic_id", input.TopicID))
		return Generation{}, err
	}
	return generation, nil
}

// History lists the user's generations, newest first, with their topics attached.
func (s *Service) History(ctx context.Context, userID string) ([]Generation, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}

	var rows []Generation
	err := s.db.WithContext(ctx).
		Preload("Topic").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		s.logger.Error("history query failed", zap.Error(err), zap.String("user_id", userID))
		return nil, err
	}
	return rows, nil
}

// Get fetches one generation, enforcing that the requester owns it.
func (s *Service) Get(ctx context.Context, id, userID string) (Generation, error) {
	generation, err := s.find(ctx, id)
	if err != nil {
		return Generation{}, err
	}
	if generation.UserID != userID {
		return Generation{}, ErrForbidden
	}
	return generation, nil
}

// Delete removes one generation, enforcing that the requester owns it.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	generation, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if generation.UserID != userID {
		return ErrForbidden
	}

	if err := s.db.WithContext(ctx).Delete(&Generation{}, "id = ?", id).Error; err != nil {
		s.logger.Error("generation delete failed", zap.Error(err), zap.String("id", id))
		return err
	}
	return nil
}

func (s *Service) find(ctx context.Context, id string) (Generation, error) {
	if strings.TrimSpace(id) == "" {
		return Generation{}, ErrInvalidInput
	}

	var generation Generation
	err := s.db.WithContext(ctx).Preload("Topic").Where("id = ?", id).Take(&generation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Generation{}, ErrNotFound
	}
	if err != nil {
		s.logger.Error("generation lookup failed", zap.Error(err), zap.String("id", id))
		return Generation{}, err
	}
	return generation, nil
}
