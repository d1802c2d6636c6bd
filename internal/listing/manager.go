package listing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/novatoken/marketplace/internal/ledger"
	"github.com/novatoken/marketplace/internal/registry"
	apperrors "github.com/novatoken/marketplace/pkg/errors"
	"github.com/novatoken/marketplace/pkg/metrics"
	"github.com/novatoken/marketplace/pkg/models"
)

// Manager owns the listing lifecycle state machine. It is the only writer of
// listing status and coordinates item registry and ledger updates so that
// each transition lands as one transaction: a reader never sees a listing
// marked sold while the item still shows the old owner.
type Manager interface {
	Start() error
	Stop() error
	Create(ctx context.Context, itemID, sellerAddress string, price decimal.Decimal) (*models.Listing, error)
	Settle(ctx context.Context, listingID, buyerAddress, txHash string) (*models.Transaction, error)
	Cancel(ctx context.Context, listingID, requesterAddress string) (*models.Listing, error)
	Get(ctx context.Context, listingID string) (*models.Listing, error)
	Active(ctx context.Context, limit int) ([]*models.Listing, error)
	CountActive(ctx context.Context) (int64, error)
}

// Service implements Manager
type Service struct {
	logger   *zap.Logger
	db       *gorm.DB
	registry registry.RegistryService
	ledger   ledger.LedgerService
}

// NewManager creates a new listing Manager
func NewManager(logger *zap.Logger, db *gorm.DB, reg registry.RegistryService, led ledger.LedgerService) (Manager, error) {
	return &Service{logger: logger, db: db, registry: reg, ledger: led}, nil
}

// Start starts the listing manager
func (s *Service) Start() error {
	s.logger.Info("Listing manager started")
	return nil
}

// Stop stops the listing manager
func (s *Service) Stop() error {
	s.logger.Info("Listing manager stopped")
	return nil
}

// Create lists an item for sale. The seller must be the item's current
// persisted owner and the price must be positive. An item that already has
// an active listing cannot be listed again until that listing terminates.
func (s *Service) Create(ctx context.Context, itemID, sellerAddress string, price decimal.Decimal) (*models.Listing, error) {
	if !price.IsPositive() {
		return nil, apperrors.NewValidation("price", "must be a positive number")
	}

	now := time.Now()
	listing := &models.Listing{
		ID:            uuid.New(),
		SellerAddress: sellerAddress,
		Price:         price,
		Status:        models.ListingStatusActive,
		CreatedAt:     now,
	}

	// Ownership and the single-active-listing rule are checked against a
	// locked item row in the same transaction as the insert. A concurrent
	// settlement or create for the same item serializes on that lock. The
	// partial unique index uniq_listings_item_active backs the rule at the
	// schema level.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.registry.GetItemForUpdate(tx, itemID)
		if err != nil {
			return err
		}
		if !strings.EqualFold(item.OwnerAddress, sellerAddress) {
			return apperrors.NewAuthorization("seller does not own this item")
		}
		listing.ItemID = item.ID

		var active int64
		if err := tx.Model(&models.Listing{}).
			Where("item_id = ? AND status = ?", item.ID, models.ListingStatusActive).
			Count(&active).Error; err != nil {
			return fmt.Errorf("failed to check active listings: %w", err)
		}
		if active > 0 {
			return apperrors.NewInvalidState("item already has an active listing")
		}

		if err := tx.Create(listing).Error; err != nil {
			return fmt.Errorf("failed to create listing: %w", err)
		}
		return s.registry.SetListingState(tx, listing.ItemID, price, now)
	})
	if err != nil {
		return nil, err
	}

	metrics.ListingsCreated.Inc()
	s.logger.Info("Listing created",
		zap.String("listing_id", listing.ID.String()),
		zap.String("item_id", itemID),
		zap.String("seller", sellerAddress))
	return listing, nil
}

// Settle converts an active listing into a completed sale: the listing
// becomes sold, item ownership moves to the buyer and a confirmed buy entry
// is appended to the ledger, all in one transaction. The active-to-sold
// transition is a conditional update keyed on the current status, so of two
// concurrent settlements exactly one succeeds and the loser gets
// InvalidStateError.
func (s *Service) Settle(ctx context.Context, listingID, buyerAddress, txHash string) (*models.Transaction, error) {
	listing, err := s.Get(ctx, listingID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entry := &models.Transaction{
		ID:          uuid.New(),
		TxHash:      txHash,
		FromAddress: listing.SellerAddress,
		ToAddress:   buyerAddress,
		ItemID:      listing.ItemID,
		Amount:      listing.Price,
		Type:        models.TxTypeBuy,
		Status:      models.TxStatusConfirmed,
		CreatedAt:   now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Listing{}).
			Where("id = ? AND status = ?", listing.ID, models.ListingStatusActive).
			Updates(map[string]interface{}{
				"status":        models.ListingStatusSold,
				"sold_at":       now,
				"buyer_address": buyerAddress,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to mark listing sold: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			metrics.SettlementConflicts.Inc()
			return apperrors.NewInvalidState("listing is not active")
		}

		if err := s.registry.TransferOwnership(tx, listing.ItemID, buyerAddress); err != nil {
			return err
		}
		return s.ledger.Append(tx, entry)
	})
	if err != nil {
		return nil, err
	}

	metrics.SalesSettled.Inc()
	s.logger.Info("Listing settled",
		zap.String("listing_id", listingID),
		zap.String("buyer", buyerAddress),
		zap.String("amount", listing.Price.String()))
	return entry, nil
}

// Cancel terminates an active listing without a sale. Only the seller may
// cancel; the item's listing state is cleared in the same transaction.
func (s *Service) Cancel(ctx context.Context, listingID, requesterAddress string) (*models.Listing, error) {
	listing, err := s.Get(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(listing.SellerAddress, requesterAddress) {
		return nil, apperrors.NewAuthorization("only the seller may cancel this listing")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Listing{}).
			Where("id = ? AND status = ?", listing.ID, models.ListingStatusActive).
			Update("status", models.ListingStatusCancelled)
		if res.Error != nil {
			return fmt.Errorf("failed to cancel listing: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.NewInvalidState("listing is not active")
		}
		return s.registry.ClearListingState(tx, listing.ItemID)
	})
	if err != nil {
		return nil, err
	}

	listing.Status = models.ListingStatusCancelled
	metrics.ListingsCancelled.Inc()
	s.logger.Info("Listing cancelled",
		zap.String("listing_id", listingID),
		zap.String("seller", requesterAddress))
	return listing, nil
}

// Get returns the listing with the given id.
func (s *Service) Get(ctx context.Context, listingID string) (*models.Listing, error) {
	var listing models.Listing
	if err := s.db.WithContext(ctx).Where("id = ?", listingID).First(&listing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound("listing", listingID)
		}
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}
	return &listing, nil
}

// Active returns active listings, newest first.
func (s *Service) Active(ctx context.Context, limit int) ([]*models.Listing, error) {
	if limit <= 0 {
		limit = 50
	}
	var listings []*models.Listing
	if err := s.db.WithContext(ctx).
		Where("status = ?", models.ListingStatusActive).
		Order("created_at DESC").Limit(limit).Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to find active listings: %w", err)
	}
	return listings, nil
}

// CountActive returns the number of active listings.
func (s *Service) CountActive(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Listing{}).
		Where("status = ?", models.ListingStatusActive).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count active listings: %w", err)
	}
	return count, nil
}
