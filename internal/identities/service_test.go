package identities

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/novatoken/marketplace/internal/database"
	apperrors "github.com/novatoken/marketplace/pkg/errors"
)

func setupService(t *testing.T) IdentityService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	svc, err := NewService(zap.NewNop(), db)
	require.NoError(t, err)
	return svc
}

func strPtr(s string) *string { return &s }

func TestAuthUser(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	wallet := "0x00000000000000000000000000000000000000e1"

	user, isNew, err := svc.AuthUser(ctx, wallet)
	require.NoError(t, err)
	require.True(t, isNew)
	require.Equal(t, wallet, user.WalletAddress)

	again, isNew, err := svc.AuthUser(ctx, wallet)
	require.NoError(t, err)
	require.False(t, isNew)
	require.Equal(t, user.ID, again.ID)
}

func TestGetUserNotFound(t *testing.T) {
	svc := setupService(t)

	_, err := svc.GetUser(context.Background(), "0x00000000000000000000000000000000000000e9")
	var notFound *apperrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestUpdateProfile(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	wallet := "0x00000000000000000000000000000000000000e1"
	_, _, err := svc.AuthUser(ctx, wallet)
	require.NoError(t, err)

	user, err := svc.UpdateProfile(ctx, wallet, ProfileUpdate{
		Username: strPtr("nova"),
		Bio:      strPtr("collector of cosmic art"),
	})
	require.NoError(t, err)
	require.Equal(t, "nova", user.Username)
	require.Equal(t, "collector of cosmic art", user.Bio)

	// Partial update leaves other fields alone
	user, err = svc.UpdateProfile(ctx, wallet, ProfileUpdate{Bio: strPtr("updated bio")})
	require.NoError(t, err)
	require.Equal(t, "nova", user.Username)
	require.Equal(t, "updated bio", user.Bio)
}

func TestUpdateProfileSanitizesMarkup(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	wallet := "0x00000000000000000000000000000000000000e1"
	_, _, err := svc.AuthUser(ctx, wallet)
	require.NoError(t, err)

	user, err := svc.UpdateProfile(ctx, wallet, ProfileUpdate{
		Bio: strPtr(`hello <script>alert("x")</script>world`),
	})
	require.NoError(t, err)
	require.NotContains(t, user.Bio, "<script>")
	require.Contains(t, user.Bio, "hello")
}

func TestUpdateProfileNoFields(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	wallet := "0x00000000000000000000000000000000000000e1"
	_, _, err := svc.AuthUser(ctx, wallet)
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, wallet, ProfileUpdate{})
	var validation *apperrors.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestUpdateProfileUserMissing(t *testing.T) {
	svc := setupService(t)

	_, err := svc.UpdateProfile(context.Background(), "0x00000000000000000000000000000000000000e9", ProfileUpdate{
		Username: strPtr("ghost"),
	})
	var notFound *apperrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestUpdateProfileUsernameTooLong(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	wallet := "0x00000000000000000000000000000000000000e1"
	_, _, err := svc.AuthUser(ctx, wallet)
	require.NoError(t, err)

	long := "0123456789012345678901234567890"
	_, err = svc.UpdateProfile(ctx, wallet, ProfileUpdate{Username: &long})
	var validation *apperrors.ValidationError
	require.ErrorAs(t, err, &validation)
}
