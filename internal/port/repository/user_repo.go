package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Dev-2427/Dev-MyTodo/internal/entity"
)

// UserRepository is the store contract the auth usecase depends on. The
// Mongo implementation lives in internal/repository.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) (primitive.ObjectID, error)
	FindByID(ctx context.Context, userID primitive.ObjectID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*entity.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)

	SaveSignupVerification(ctx context.Context, userID primitive.ObjectID, passwordHash, code string, expiry time.Time) error
	MarkVerified(ctx context.Context, userID primitive.ObjectID) error
	SaveResetCode(ctx context.Context, userID primitive.ObjectID, code string, expiry time.Time) error
	GrantResetWindow(ctx context.Context, userID primitive.ObjectID, until time.Time) error
	UpdatePassword(ctx context.Context, userID primitive.ObjectID, passwordHash string) error
	CompleteReset(ctx context.Context, userID primitive.ObjectID, passwordHash string) error
	UpdateUsername(ctx context.Context, userID primitive.ObjectID, username string) error
	LinkProvider(ctx context.Context, userID primitive.ObjectID, provider entity.Provider, providerID string) error
	Delete(ctx context.Context, userID primitive.ObjectID) error

	CacheToken(ctx context.Context, keySuffix, token string, expiration time.Duration) error
	InvalidateToken(ctx context.Context, keySuffix string) error
	GetToken(ctx context.Context, keySuffix string) (string, error)
}
