package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/novatoken/marketplace/pkg/errors"
	"github.com/novatoken/marketplace/pkg/models"
)

// ItemFilter narrows Items queries.
type ItemFilter struct {
	CollectionID string
	IsListed     *bool
	Limit        int
	Skip         int
}

// RegistryService defines item and collection catalog operations. Listing
// state mutations (SetListingState, TransferOwnership) are reserved for the
// listing manager and run inside its transaction.
type RegistryService interface {
	Start() error
	Stop() error
	RegisterItem(ctx context.Context, item *models.Item) (*models.Item, error)
	GetItem(ctx context.Context, itemID string) (*models.Item, error)
	GetItemForUpdate(tx *gorm.DB, itemID string) (*models.Item, error)
	Items(ctx context.Context, filter ItemFilter) ([]*models.Item, error)
	ItemsByOwner(ctx context.Context, owner string, limit int) ([]*models.Item, error)
	SetListingState(tx *gorm.DB, itemID uuid.UUID, price decimal.Decimal, listedAt time.Time) error
	TransferOwnership(tx *gorm.DB, itemID uuid.UUID, newOwner string) error
	ClearListingState(tx *gorm.DB, itemID uuid.UUID) error
	CreateCollection(ctx context.Context, collection *models.Collection) (*models.Collection, error)
	Collections(ctx context.Context, limit, skip int) ([]*models.Collection, error)
	GetCollection(ctx context.Context, collectionID string) (*models.Collection, error)
	CountItems(ctx context.Context) (int64, error)
	CountCollections(ctx context.Context) (int64, error)
}

// Service implements RegistryService
type Service struct {
	logger *zap.Logger
	db     *gorm.DB
}

// NewService creates a new RegistryService
func NewService(logger *zap.Logger, db *gorm.DB) (RegistryService, error) {
	return &Service{logger: logger, db: db}, nil
}

// Start starts the registry service
func (s *Service) Start() error {
	s.logger.Info("Registry service started")
	return nil
}

// Stop stops the registry service
func (s *Service) Stop() error {
	s.logger.Info("Registry service stopped")
	return nil
}

// RegisterItem inserts a new item with listing state cleared. The
// token_id/contract_address pair must not already be registered.
func (s *Service) RegisterItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Item{}).
		Where("token_id = ? AND contract_address = ?", item.TokenID, item.ContractAddress).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check item identity: %w", err)
	}
	if count > 0 {
		return nil, apperrors.NewConflict("item", fmt.Sprintf("token %s at %s already registered", item.TokenID, item.ContractAddress))
	}

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.IsListed = false
	item.Price = nil
	item.ListedAt = nil
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	return item, nil
}

// GetItem returns the item with the given id.
func (s *Service) GetItem(ctx context.Context, itemID string) (*models.Item, error) {
	var item models.Item
	if err := s.db.WithContext(ctx).Where("id = ?", itemID).First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound("item", itemID)
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}
	return &item, nil
}

// GetItemForUpdate loads an item inside the caller's transaction holding a
// row lock, so the ownership the caller observes is the ownership its
// subsequent writes apply to.
func (s *Service) GetItemForUpdate(tx *gorm.DB, itemID string) (*models.Item, error) {
	var item models.Item
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", itemID).First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound("item", itemID)
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}
	return &item, nil
}

// Items returns items matching the filter, newest first.
func (s *Service) Items(ctx context.Context, filter ItemFilter) ([]*models.Item, error) {
	query := s.db.WithContext(ctx).Model(&models.Item{})
	if filter.CollectionID != "" {
		query = query.Where("collection_id = ?", filter.CollectionID)
	}
	if filter.IsListed != nil {
		query = query.Where("is_listed = ?", *filter.IsListed)
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	var items []*models.Item
	if err := query.Order("created_at DESC").Offset(filter.Skip).Limit(filter.Limit).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to find items: %w", err)
	}
	return items, nil
}

// ItemsByOwner returns items owned by the given address.
func (s *Service) ItemsByOwner(ctx context.Context, owner string, limit int) ([]*models.Item, error) {
	if limit <= 0 {
		limit = 50
	}
	var items []*models.Item
	if err := s.db.WithContext(ctx).Where("owner_address = ?", owner).Limit(limit).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to find items by owner: %w", err)
	}
	return items, nil
}

// SetListingState marks the item listed at the given price. Runs on the
// caller's transaction handle.
func (s *Service) SetListingState(tx *gorm.DB, itemID uuid.UUID, price decimal.Decimal, listedAt time.Time) error {
	if err := tx.Model(&models.Item{}).Where("id = ?", itemID).Updates(map[string]interface{}{
		"is_listed": true,
		"price":     price,
		"listed_at": listedAt,
	}).Error; err != nil {
		return fmt.Errorf("failed to set listing state: %w", err)
	}
	return nil
}

// ClearListingState unmarks the item as listed and clears price and
// listed_at together.
func (s *Service) ClearListingState(tx *gorm.DB, itemID uuid.UUID) error {
	if err := tx.Model(&models.Item{}).Where("id = ?", itemID).Updates(map[string]interface{}{
		"is_listed": false,
		"price":     nil,
		"listed_at": nil,
	}).Error; err != nil {
		return fmt.Errorf("failed to clear listing state: %w", err)
	}
	return nil
}

// TransferOwnership sets the new owner and clears the listing state in the
// same update. Used only as part of a settlement.
func (s *Service) TransferOwnership(tx *gorm.DB, itemID uuid.UUID, newOwner string) error {
	if err := tx.Model(&models.Item{}).Where("id = ?", itemID).Updates(map[string]interface{}{
		"owner_address": newOwner,
		"is_listed":     false,
		"price":         nil,
		"listed_at":     nil,
	}).Error; err != nil {
		return fmt.Errorf("failed to transfer ownership: %w", err)
	}
	return nil
}

// CreateCollection creates a new collection
func (s *Service) CreateCollection(ctx context.Context, collection *models.Collection) (*models.Collection, error) {
	if collection.ID == uuid.Nil {
		collection.ID = uuid.New()
	}
	if collection.ChainID == 0 {
		collection.ChainID = 137
	}
	if collection.CreatedAt.IsZero() {
		collection.CreatedAt = time.Now()
	}

	if err := s.db.WithContext(ctx).Create(collection).Error; err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}
	return collection, nil
}

// Collections returns collections ordered by total volume descending.
func (s *Service) Collections(ctx context.Context, limit, skip int) ([]*models.Collection, error) {
	if limit <= 0 {
		limit = 20
	}
	var collections []*models.Collection
	if err := s.db.WithContext(ctx).Order("total_volume DESC").Offset(skip).Limit(limit).Find(&collections).Error; err != nil {
		return nil, fmt.Errorf("failed to find collections: %w", err)
	}
	return collections, nil
}

// GetCollection returns the collection with the given id.
func (s *Service) GetCollection(ctx context.Context, collectionID string) (*models.Collection, error) {
	var collection models.Collection
	if err := s.db.WithContext(ctx).Where("id = ?", collectionID).First(&collection).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound("collection", collectionID)
		}
		return nil, fmt.Errorf("failed to find collection: %w", err)
	}
	return &collection, nil
}

// CountItems returns the total number of registered items.
func (s *Service) CountItems(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Item{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

// CountCollections returns the total number of collections.
func (s *Service) CountCollections(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Collection{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count collections: %w", err)
	}
	return count, nil
}
