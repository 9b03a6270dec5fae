// Package identity resolves caller tokens into a user id, status and
// role. It is consulted once per request boundary; everything below it
// works with plain user ids.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/auctionhive/auction-backend/internal/auctionerrors"
	"github.com/auctionhive/auction-backend/internal/models"
	"github.com/auctionhive/auction-backend/internal/store"
)

// Identity is the resolved caller.
type Identity struct {
	UserID   uuid.UUID
	Username string
	Status   models.UserStatus
	Role     models.UserRole
}

type Resolver interface {
	Resolve(ctx context.Context, token string) (Identity, error)
}

type claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTResolver validates HMAC-signed tokens and loads the user's current
// status from the store, so suspension takes effect on the next request
// rather than at token expiry.
type JWTResolver struct {
	secret []byte
	users  store.UserStore
}

func NewJWTResolver(secret string, users store.UserStore) *JWTResolver {
	return &JWTResolver{secret: []byte(secret), users: users}
}

func (r *JWTResolver) Resolve(ctx context.Context, tokenString string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return r.secret, nil
	})
	if err != nil {
		return Identity{}, auctionerrors.New(auctionerrors.CodeUnauthorized, "invalid token")
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return Identity{}, auctionerrors.New(auctionerrors.CodeUnauthorized, "invalid token")
	}

	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return Identity{}, auctionerrors.New(auctionerrors.CodeUnauthorized, "malformed subject")
	}

	user, err := r.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Identity{}, auctionerrors.New(auctionerrors.CodeUnauthorized, "unknown user")
		}
		return Identity{}, auctionerrors.Transient(fmt.Errorf("resolve token: %w", err))
	}

	return Identity{
		UserID:   user.ID,
		Username: user.Username,
		Status:   user.Status,
		Role:     user.Role,
	}, nil
}

// IssueToken mints a token for a user. The registration and login flows
// live outside the core; this is used by seeds and tests.
func (r *JWTResolver) IssueToken(user *models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		UserID:   user.ID.String(),
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "auctionhive",
			Subject:   user.ID.String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(r.secret)
}
