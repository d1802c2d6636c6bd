package identities

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/novatoken/marketplace/pkg/errors"
	"github.com/novatoken/marketplace/pkg/models"
)

// ProfileUpdate carries optional profile fields; nil means leave unchanged.
type ProfileUpdate struct {
	Username *string
	Bio      *string
	Avatar   *string
}

// IdentityService defines wallet-keyed user profile operations.
type IdentityService interface {
	Start() error
	Stop() error
	AuthUser(ctx context.Context, walletAddress string) (*models.User, bool, error)
	GetUser(ctx context.Context, walletAddress string) (*models.User, error)
	UpdateProfile(ctx context.Context, walletAddress string, update ProfileUpdate) (*models.User, error)
}

// Service implements IdentityService
type Service struct {
	logger    *zap.Logger
	db        *gorm.DB
	sanitizer *bluemonday.Policy
	validate  *validator.Validate
}

// NewService creates a new IdentityService
func NewService(logger *zap.Logger, db *gorm.DB) (IdentityService, error) {
	return &Service{
		logger:    logger,
		db:        db,
		sanitizer: bluemonday.StrictPolicy(),
		validate:  validator.New(),
	}, nil
}

// Start starts the identities service
func (s *Service) Start() error {
	s.logger.Info("Identities service started")
	return nil
}

// Stop stops the identities service
func (s *Service) Stop() error {
	s.logger.Info("Identities service stopped")
	return nil
}

// AuthUser returns the profile for the given wallet, creating it on first
// sight. The second return reports whether the user is new.
func (s *Service) AuthUser(ctx context.Context, walletAddress string) (*models.User, bool, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("wallet_address = ?", walletAddress).First(&user).Error
	if err == nil {
		return &user, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, fmt.Errorf("failed to find user: %w", err)
	}

	now := time.Now()
	user = models.User{
		ID:            uuid.New(),
		WalletAddress: walletAddress,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", zap.String("wallet", walletAddress))
	return &user, true, nil
}

// GetUser returns the profile for the given wallet address.
func (s *Service) GetUser(ctx context.Context, walletAddress string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("wallet_address = ?", walletAddress).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound("user", walletAddress)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// UpdateProfile applies the supplied fields to the profile. Free-text fields
// are sanitized before storage. At least one field must be supplied.
func (s *Service) UpdateProfile(ctx context.Context, walletAddress string, update ProfileUpdate) (*models.User, error) {
	fields := map[string]interface{}{}
	if update.Username != nil {
		if err := s.validate.Var(*update.Username, "max=30"); err != nil {
			return nil, apperrors.NewValidation("username", "must be at most 30 characters")
		}
		fields["username"] = s.sanitizer.Sanitize(*update.Username)
	}
	if update.Bio != nil {
		if err := s.validate.Var(*update.Bio, "max=500"); err != nil {
			return nil, apperrors.NewValidation("bio", "must be at most 500 characters")
		}
		fields["bio"] = s.sanitizer.Sanitize(*update.Bio)
	}
	if update.Avatar != nil {
		if err := s.validate.Var(*update.Avatar, "omitempty,url"); err != nil {
			return nil, apperrors.NewValidation("avatar", "must be a url")
		}
		fields["avatar"] = s.sanitizer.Sanitize(*update.Avatar)
	}
	if len(fields) == 0 {
		return nil, apperrors.NewValidation("", "no update data provided")
	}
	fields["updated_at"] = time.Now()

	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("wallet_address = ?", walletAddress).Updates(fields)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NewNotFound("user", walletAddress)
	}

	return s.GetUser(ctx, walletAddress)
}
