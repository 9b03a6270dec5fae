package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/auctionhive/auction-backend/internal/auctionerrors"
	"github.com/auctionhive/auction-backend/internal/models"
	"github.com/auctionhive/auction-backend/internal/store/memstore"
)

func seedUser(t *testing.T, stores *memstore.Stores) models.User {
	t.Helper()

	user := models.User{
		Username: "alice",
		Email:    "alice@example.com",
		Status:   models.UserStatusActive,
		Role:     models.UserRoleUser,
	}
	require.NoError(t, stores.Users().Create(context.Background(), &user))
	return user
}

func TestResolve_Roundtrip(t *testing.T) {
	stores := memstore.New()
	user := seedUser(t, stores)
	resolver := NewJWTResolver("test-secret", stores.Users())

	token, err := resolver.IssueToken(&user, time.Hour)
	require.NoError(t, err)

	id, err := resolver.Resolve(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, user.ID, id.UserID)
	require.Equal(t, "alice", id.Username)
	require.Equal(t, models.UserStatusActive, id.Status)
	require.Equal(t, models.UserRoleUser, id.Role)
}

func TestResolve_BadToken(t *testing.T) {
	stores := memstore.New()
	resolver := NewJWTResolver("test-secret", stores.Users())

	for name, token := range map[string]string{
		"garbage": "not-a-token",
		"empty":   "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := resolver.Resolve(context.Background(), token)
			require.Equal(t, auctionerrors.CodeUnauthorized, auctionerrors.CodeOf(err))
		})
	}
}

func TestResolve_WrongSecret(t *testing.T) {
	stores := memstore.New()
	user := seedUser(t, stores)

	token, err := NewJWTResolver("other-secret", stores.Users()).IssueToken(&user, time.Hour)
	require.NoError(t, err)

	resolver := NewJWTResolver("test-secret", stores.Users())
	_, err = resolver.Resolve(context.Background(), token)
	require.Equal(t, auctionerrors.CodeUnauthorized, auctionerrors.CodeOf(err))
}

func TestResolve_ExpiredToken(t *testing.T) {
	stores := memstore.New()
	user := seedUser(t, stores)
	resolver := NewJWTResolver("test-secret", stores.Users())

	token, err := resolver.IssueToken(&user, -time.Minute)
	require.NoError(t, err)

	_, err = resolver.Resolve(context.Background(), token)
	require.Equal(t, auctionerrors.CodeUnauthorized, auctionerrors.CodeOf(err))
}

func TestResolve_ReflectsCurrentStatus(t *testing.T) {
	stores := memstore.New()
	user := seedUser(t, stores)
	resolver := NewJWTResolver("test-secret", stores.Users())

	token, err := resolver.IssueToken(&user, time.Hour)
	require.NoError(t, err)

	user.Status = models.UserStatusSuspended
	stores.PutUser(user)

	id, err := resolver.Resolve(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, models.UserStatusSuspended, id.Status)
}

func TestResolve_UnknownUser(t *testing.T) {
	stores := memstore.New()
	resolver := NewJWTResolver("test-secret", stores.Users())

	ghost := models.User{Username: "ghost"}
	token, err := resolver.IssueToken(&ghost, time.Hour)
	require.NoError(t, err)

	_, err = resolver.Resolve(context.Background(), token)
	require.Equal(t, auctionerrors.CodeUnauthorized, auctionerrors.CodeOf(err))
}
