package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/trendforge/backend/internal/auth"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrEmailTaken indicates an account already exists for the email.
	ErrEmailTaken = errors.New("users: email already registered")
	// ErrInvalidCredentials indicates the email/password pair did not match an account.
	ErrInvalidCredentials = errors.New("users: invalid credentials")
	// ErrInvalidInput indicates a required registration field is missing.
	ErrInvalidInput = errors.New("users: invalid input")

	errMissingDatabase = errors.New("database handle is required")
	noOpLogger         = zap.NewNop()
)

// ServiceConfig describes the dependencies required for account management.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Service manages account registration and credential verification.
type Service struct {
	db     *gorm.DB
	clock  func() time.Time
	logger *zap.Logger
}

// NewService constructs the user service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("users: %w", errMissingDatabase)
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

// RegisterInput carries the fields required to create an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a new account with a hashed password.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return User{}, ErrInvalidInput
	}

	var existing User
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&existing).Error
	if err == nil {
		return User{}, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("user lookup failed", zap.Error(err))
		return User{}, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		s.logger.Error("password hashing failed", zap.Error(err))
		return User{}, err
	}

	user := User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.clock().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		s.logger.Error("user insert failed", zap.Error(err))
		return User{}, err
	}
	return user, nil
}

// Authenticate verifies the email/password pair and returns the account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}

	var user User
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		s.logger.Error("user lookup failed", zap.Error(err))
		return User{}, err
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
