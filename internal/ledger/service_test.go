package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/novatoken/marketplace/internal/database"
	"github.com/novatoken/marketplace/pkg/models"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	svc, err := NewService(zap.NewNop(), db)
	require.NoError(t, err)
	return svc.(*Service)
}

func entry(from, to, amount, txType, status string, at time.Time) *models.Transaction {
	return &models.Transaction{
		TxHash:      "0xhash",
		FromAddress: from,
		ToAddress:   to,
		ItemID:      uuid.New(),
		Amount:      decimal.RequireFromString(amount),
		Type:        txType,
		Status:      status,
		CreatedAt:   at,
	}
}

func TestAppendAndByAddress(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	a := "0x00000000000000000000000000000000000000d1"
	b := "0x00000000000000000000000000000000000000d2"
	c := "0x00000000000000000000000000000000000000d3"

	base := time.Now()
	require.NoError(t, svc.Append(nil, entry(a, b, "1", models.TxTypeBuy, models.TxStatusConfirmed, base)))
	require.NoError(t, svc.Append(nil, entry(b, c, "2", models.TxTypeBuy, models.TxStatusConfirmed, base.Add(time.Second))))
	require.NoError(t, svc.Append(nil, entry(c, a, "3", models.TxTypeBuy, models.TxStatusConfirmed, base.Add(2*time.Second))))

	// b appears once as sender, once as recipient
	got, err := svc.ByAddress(ctx, b, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest first
	require.Equal(t, b, got[0].FromAddress)
	require.Equal(t, b, got[1].ToAddress)

	limited, err := svc.ByAddress(ctx, a, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	require.Equal(t, a, limited[0].ToAddress)

	none, err := svc.ByAddress(ctx, "0x00000000000000000000000000000000000000d9", 10)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestConfirmedBuyStats(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	a := "0x00000000000000000000000000000000000000d1"
	b := "0x00000000000000000000000000000000000000d2"

	count, volume, err := svc.ConfirmedBuyStats(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
	require.True(t, volume.IsZero(), "got %s", volume)

	now := time.Now()
	require.NoError(t, svc.Append(nil, entry(a, b, "2.5", models.TxTypeBuy, models.TxStatusConfirmed, now)))
	require.NoError(t, svc.Append(nil, entry(a, b, "1.5", models.TxTypeBuy, models.TxStatusConfirmed, now)))
	// Not counted: wrong type or status
	require.NoError(t, svc.Append(nil, entry(a, b, "10", models.TxTypeTransfer, models.TxStatusConfirmed, now)))
	require.NoError(t, svc.Append(nil, entry(a, b, "10", models.TxTypeBuy, models.TxStatusPending, now)))

	count, volume, err = svc.ConfirmedBuyStats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)
	require.True(t, volume.Equal(decimal.RequireFromString("4")), "got %s", volume)
}
