package marketplace

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/novatoken/marketplace/internal/ledger"
	"github.com/novatoken/marketplace/internal/listing"
	"github.com/novatoken/marketplace/internal/registry"
	"github.com/novatoken/marketplace/pkg/models"
)

const (
	statsCacheKey = "marketplace:stats"
	statsCacheTTL = 30 * time.Second
)

// Stats aggregates marketplace-wide counters.
type Stats struct {
	TotalCollections int64           `json:"total_collections"`
	TotalItems       int64           `json:"total_nfts"`
	ActiveListings   int64           `json:"active_listings"`
	TotalSales       int64           `json:"total_sales"`
	TotalVolume      decimal.Decimal `json:"total_volume"`
}

// MarketplaceService is the facade over the listing manager, item registry
// and ledger. It normalizes every caller-supplied address to canonical form,
// delegates to the listing manager for lifecycle transitions and surfaces
// domain errors unchanged.
type MarketplaceService interface {
	Start() error
	Stop() error
	RegisterItem(ctx context.Context, item *models.Item) (*models.Item, error)
	GetItem(ctx context.Context, itemID string) (*models.Item, error)
	Items(ctx context.Context, filter registry.ItemFilter) ([]*models.Item, error)
	ItemsByOwner(ctx context.Context, ownerAddress string, limit int) ([]*models.Item, error)
	ListItem(ctx context.Context, itemID, sellerAddress string, price decimal.Decimal) (*models.Listing, error)
	ActiveListings(ctx context.Context, limit int) ([]*models.Listing, error)
	BuyListing(ctx context.Context, listingID, buyerAddress, txHash string) (*models.Transaction, error)
	CancelListing(ctx context.Context, listingID, sellerAddress string) (*models.Listing, error)
	TransactionsByAddress(ctx context.Context, address string, limit int) ([]*models.Transaction, error)
	CreateCollection(ctx context.Context, collection *models.Collection) (*models.Collection, error)
	Collections(ctx context.Context, limit, skip int) ([]*models.Collection, error)
	GetCollection(ctx context.Context, collectionID string) (*models.Collection, error)
	Stats(ctx context.Context) (*Stats, error)
	Seed(ctx context.Context) (*SeedResult, error)
}

// Service implements MarketplaceService
type Service struct {
	logger   *zap.Logger
	registry registry.RegistryService
	listings listing.Manager
	ledger   ledger.LedgerService
	cache    *redis.Client
}

// NewService creates a new MarketplaceService. The redis client is optional;
// nil disables stats caching.
func NewService(logger *zap.Logger, reg registry.RegistryService, listings listing.Manager, led ledger.LedgerService, cache *redis.Client) (MarketplaceService, error) {
	return &Service{
		logger:   logger,
		registry: reg,
		listings: listings,
		ledger:   led,
		cache:    cache,
	}, nil
}

// Start starts the marketplace service
func (s *Service) Start() error {
	s.logger.Info("Marketplace service started")
	return nil
}

// Stop stops the marketplace service
func (s *Service) Stop() error {
	s.logger.Info("Marketplace service stopped")
	return nil
}

// RegisterItem registers a new item with its owner and contract addresses in
// canonical form.
func (s *Service) RegisterItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	owner, err := NormalizeAddress("owner_address", item.OwnerAddress)
	if err != nil {
		return nil, err
	}
	contract, err := NormalizeAddress("contract_address", item.ContractAddress)
	if err != nil {
		return nil, err
	}
	item.OwnerAddress = owner
	item.ContractAddress = contract
	return s.registry.RegisterItem(ctx, item)
}

// GetItem returns the item with the given id.
func (s *Service) GetItem(ctx context.Context, itemID string) (*models.Item, error) {
	return s.registry.GetItem(ctx, itemID)
}

// Items returns items matching the filter.
func (s *Service) Items(ctx context.Context, filter registry.ItemFilter) ([]*models.Item, error) {
	return s.registry.Items(ctx, filter)
}

// ItemsByOwner returns items owned by the given address.
func (s *Service) ItemsByOwner(ctx context.Context, ownerAddress string, limit int) ([]*models.Item, error) {
	owner, err := NormalizeAddress("owner_address", ownerAddress)
	if err != nil {
		return nil, err
	}
	return s.registry.ItemsByOwner(ctx, owner, limit)
}

// ListItem lists an item for sale on behalf of its owner.
func (s *Service) ListItem(ctx context.Context, itemID, sellerAddress string, price decimal.Decimal) (*models.Listing, error) {
	seller, err := NormalizeAddress("seller_address", sellerAddress)
	if err != nil {
		return nil, err
	}
	return s.listings.Create(ctx, itemID, seller, price)
}

// ActiveListings returns active listings, newest first.
func (s *Service) ActiveListings(ctx context.Context, limit int) ([]*models.Listing, error) {
	return s.listings.Active(ctx, limit)
}

// BuyListing settles an active listing for the buyer.
func (s *Service) BuyListing(ctx context.Context, listingID, buyerAddress, txHash string) (*models.Transaction, error) {
	buyer, err := NormalizeAddress("buyer_address", buyerAddress)
	if err != nil {
		return nil, err
	}
	entry, err := s.listings.Settle(ctx, listingID, buyer, txHash)
	if err != nil {
		return nil, err
	}
	s.invalidateStats(ctx)
	return entry, nil
}

// CancelListing cancels an active listing on behalf of its seller.
func (s *Service) CancelListing(ctx context.Context, listingID, sellerAddress string) (*models.Listing, error) {
	seller, err := NormalizeAddress("seller_address", sellerAddress)
	if err != nil {
		return nil, err
	}
	cancelled, err := s.listings.Cancel(ctx, listingID, seller)
	if err != nil {
		return nil, err
	}
	s.invalidateStats(ctx)
	return cancelled, nil
}

// TransactionsByAddress returns ledger entries involving the given address.
func (s *Service) TransactionsByAddress(ctx context.Context, address string, limit int) ([]*models.Transaction, error) {
	addr, err := NormalizeAddress("wallet_address", address)
	if err != nil {
		return nil, err
	}
	return s.ledger.ByAddress(ctx, addr, limit)
}

// CreateCollection creates a collection with its addresses in canonical
// form.
func (s *Service) CreateCollection(ctx context.Context, collection *models.Collection) (*models.Collection, error) {
	creator, err := NormalizeAddress("creator_address", collection.CreatorAddress)
	if err != nil {
		return nil, err
	}
	contract, err := NormalizeAddress("contract_address", collection.ContractAddress)
	if err != nil {
		return nil, err
	}
	collection.CreatorAddress = creator
	collection.ContractAddress = contract
	return s.registry.CreateCollection(ctx, collection)
}

// Collections returns collections ordered by total volume descending.
func (s *Service) Collections(ctx context.Context, limit, skip int) ([]*models.Collection, error) {
	return s.registry.Collections(ctx, limit, skip)
}

// GetCollection returns the collection with the given id.
func (s *Service) GetCollection(ctx context.Context, collectionID string) (*models.Collection, error) {
	return s.registry.GetCollection(ctx, collectionID)
}

// Stats returns marketplace-wide counters, served from the Redis cache when
// available.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, statsCacheKey).Bytes(); err == nil {
			var cached Stats
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	collections, err := s.registry.CountCollections(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.registry.CountItems(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.listings.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	sales, volume, err := s.ledger.ConfirmedBuyStats(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalCollections: collections,
		TotalItems:       items,
		ActiveListings:   active,
		TotalSales:       sales,
		TotalVolume:      volume,
	}

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, statsCacheKey, raw, statsCacheTTL).Err(); err != nil {
				s.logger.Warn("Failed to cache stats", zap.Error(err))
			}
		}
	}

	return stats, nil
}

func (s *Service) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, statsCacheKey).Err(); err != nil {
		s.logger.Warn("Failed to invalidate stats cache", zap.Error(err))
	}
}
