package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Listing status values
const (
	ListingStatusActive    = "active"
	ListingStatusSold      = "sold"
	ListingStatusCancelled = "cancelled"
)

// Transaction types
const (
	TxTypeBuy      = "buy"
	TxTypeSell     = "sell"
	TxTypeTransfer = "transfer"
)

// Transaction status values
const (
	TxStatusPending   = "pending"
	TxStatusConfirmed = "confirmed"
	TxStatusFailed    = "failed"
)

// User represents a wallet-keyed user profile
type User struct {
	ID            uuid.UUID `json:"id" gorm:"primaryKey;type:uuid" validate:"required,uuid"`
	WalletAddress string    `json:"wallet_address" gorm:"uniqueIndex" validate:"required"`
	Username      string    `json:"username" validate:"omitempty,max=30"`
	Bio           string    `json:"bio" validate:"omitempty,max=500"`
	Avatar        string    `json:"avatar" validate:"omitempty,max=500"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Collection represents an NFT collection
type Collection struct {
	ID              uuid.UUID        `json:"id" gorm:"primaryKey;type:uuid" validate:"required,uuid"`
	Name            string           `json:"name" validate:"required,max=100"`
	Description     string           `json:"description" validate:"omitempty,max=1000"`
	ContractAddress string           `json:"contract_address" gorm:"index" validate:"required"`
	BannerImage     string           `json:"banner_image" validate:"omitempty,max=500"`
	LogoImage       string           `json:"logo_image" validate:"omitempty,max=500"`
	CreatorAddress  string           `json:"creator_address" validate:"required"`
	FloorPrice      *decimal.Decimal `json:"floor_price" gorm:"type:numeric"`
	TotalVolume     decimal.Decimal  `json:"total_volume" gorm:"type:numeric"`
	ItemCount       int              `json:"item_count" validate:"min=0"`
	OwnerCount      int              `json:"owner_count" validate:"min=0"`
	ChainID         int              `json:"chain_id" gorm:"default:137"`
	CreatedAt       time.Time        `json:"created_at"`
}

// Item represents a non-fungible item in the registry.
// The token_id/contract_address pair identifies the underlying asset and is
// unique across the registry. Listing fields (IsListed, Price, ListedAt) are
// mutated only by the listing manager: IsListed is true exactly when Price
// and ListedAt are set.
type Item struct {
	ID              uuid.UUID        `json:"id" gorm:"primaryKey;type:uuid" validate:"required,uuid"`
	TokenID         string           `json:"token_id" gorm:"uniqueIndex:idx_items_token_contract" validate:"required,max=100"`
	ContractAddress string           `json:"contract_address" gorm:"uniqueIndex:idx_items_token_contract" validate:"required"`
	Name            string           `json:"name" validate:"required,max=200"`
	Description     string           `json:"description" validate:"omitempty,max=2000"`
	Image           string           `json:"image" validate:"required,max=500"`
	OwnerAddress    string           `json:"owner_address" gorm:"index" validate:"required"`
	CollectionID    *uuid.UUID       `json:"collection_id" gorm:"type:uuid;index" validate:"omitempty,uuid"`
	Attributes      string           `json:"attributes" gorm:"type:text" validate:"omitempty,json"` // JSON array of trait_type/value pairs
	Price           *decimal.Decimal `json:"price" gorm:"type:numeric"`
	IsListed        bool             `json:"is_listed" gorm:"index"`
	ListedAt        *time.Time       `json:"listed_at"`
	CreatedAt       time.Time        `json:"created_at"`
}

// Listing represents a fixed-price offer to sell one item.
// At most one listing per item is active at any time. A listing transitions
// once from active to sold or cancelled and is immutable afterwards; a new
// sale requires a new listing row.
type Listing struct {
	ID            uuid.UUID       `json:"id" gorm:"primaryKey;type:uuid" validate:"required,uuid"`
	ItemID        uuid.UUID       `json:"item_id" gorm:"type:uuid;index;uniqueIndex:uniq_listings_item_active,where:status = 'active'" validate:"required,uuid"`
	SellerAddress string          `json:"seller_address" gorm:"index" validate:"required"`
	Price         decimal.Decimal `json:"price" gorm:"type:numeric" validate:"required"`
	Status        string          `json:"status" gorm:"index" validate:"required,oneof=active sold cancelled"`
	CreatedAt     time.Time       `json:"created_at"`
	SoldAt        *time.Time      `json:"sold_at"`
	BuyerAddress  *string         `json:"buyer_address"`
}

// Transaction represents an immutable ledger entry for a completed
// ownership transfer. TxHash is an opaque client-supplied attestation and is
// not verified or deduplicated here.
type Transaction struct {
	ID           uuid.UUID       `json:"id" gorm:"primaryKey;type:uuid" validate:"required,uuid"`
	TxHash       string          `json:"tx_hash" validate:"required,max=200"`
	FromAddress  string          `json:"from_address" gorm:"index" validate:"required"`
	ToAddress    string          `json:"to_address" gorm:"index" validate:"required"`
	ItemID       uuid.UUID       `json:"item_id" gorm:"type:uuid;index" validate:"required,uuid"`
	CollectionID *uuid.UUID      `json:"collection_id" gorm:"type:uuid" validate:"omitempty,uuid"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:numeric" validate:"required"`
	Type         string          `json:"type" validate:"required,oneof=buy sell transfer"`
	Status       string          `json:"status" validate:"required,oneof=pending confirmed failed"`
	CreatedAt    time.Time       `json:"created_at"`
}
