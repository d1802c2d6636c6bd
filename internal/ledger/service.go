package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/novatoken/marketplace/pkg/models"
)

// LedgerService defines the append-only transaction ledger. Entries are
// written once by the settlement path and never mutated.
type LedgerService interface {
	Start() error
	Stop() error
	Append(tx *gorm.DB, entry *models.Transaction) error
	ByAddress(ctx context.Context, address string, limit int) ([]*models.Transaction, error)
	ConfirmedBuyStats(ctx context.Context) (int64, decimal.Decimal, error)
}

// Service implements LedgerService
type Service struct {
	logger *zap.Logger
	db     *gorm.DB
}

// NewService creates a new LedgerService
func NewService(logger *zap.Logger, db *gorm.DB) (LedgerService, error) {
	return &Service{logger: logger, db: db}, nil
}

// Start starts the ledger service
func (s *Service) Start() error {
	s.logger.Info("Ledger service started")
	return nil
}

// Stop stops the ledger service
func (s *Service) Stop() error {
	s.logger.Info("Ledger service stopped")
	return nil
}

// Append inserts a ledger entry on the caller's transaction handle. The
// tx hash is stored as supplied; no format or uniqueness check is applied.
func (s *Service) Append(tx *gorm.DB, entry *models.Transaction) error {
	if tx == nil {
		tx = s.db
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}

// ByAddress returns entries where the address appears as sender or
// recipient, newest first.
func (s *Service) ByAddress(ctx context.Context, address string, limit int) ([]*models.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []*models.Transaction
	if err := s.db.WithContext(ctx).
		Where("from_address = ? OR to_address = ?", address, address).
		Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to find ledger entries: %w", err)
	}
	return entries, nil
}

// ConfirmedBuyStats returns the count and summed amount of confirmed buy
// entries.
func (s *Service) ConfirmedBuyStats(ctx context.Context) (int64, decimal.Decimal, error) {
	var row struct {
		Sales  int64
		Volume decimal.Decimal
	}
	if err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("COUNT(*) AS sales, COALESCE(SUM(amount), 0) AS volume").
		Where("type = ? AND status = ?", models.TxTypeBuy, models.TxStatusConfirmed).
		Scan(&row).Error; err != nil {
		return 0, decimal.Zero, fmt.Errorf("failed to aggregate ledger entries: %w", err)
	}
	return row.Sales, row.Volume, nil
}
