package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/Dev-2427/Dev-MyTodo/internal/entity"
)

var (
	ErrDuplicateEmail      = errors.New("email already exists")
	ErrDuplicateUsername   = errors.New("username already exists")
	ErrDuplicateProviderID = errors.New("provider id already exists")
	ErrUserNotFound        = errors.New("user not found")
)

type mongoUser struct {
	ID                        primitive.ObjectID `bson:"_id,omitempty"`
	Username                  string             `bson:"username,omitempty"`
	Email                     string             `bson:"email"`
	Password                  string             `bson:"password,omitempty"`
	Provider                  string             `bson:"provider"`
	ProviderID                string             `bson:"provider_id,omitempty"`
	IsVerified                bool               `bson:"is_verified"`
	VerifyCode                string             `bson:"verify_code,omitempty"`
	VerifyCodeExpiry          *time.Time         `bson:"verify_code_expiry,omitempty"`
	ResetPasswordCodeExpiry   *time.Time         `bson:"reset_password_code_expiry,omitempty"`
	ResetPasswordVerifyExpiry *time.Time         `bson:"reset_password_verify_expiry,omitempty"`
	CreatedAt                 time.Time          `bson:"created_at"`
	UpdatedAt                 time.Time          `bson:"updated_at"`
}

func (m *mongoUser) toEntity() *entity.User {
	return &entity.User{
		ID:                        m.ID,
		Username:                  m.Username,
		Email:                     m.Email,
		Password:                  m.Password,
		Provider:                  entity.Provider(m.Provider),
		ProviderID:                m.ProviderID,
		IsVerified:                m.IsVerified,
		VerifyCode:                m.VerifyCode,
		VerifyCodeExpiry:          m.VerifyCodeExpiry,
		ResetPasswordCodeExpiry:   m.ResetPasswordCodeExpiry,
		ResetPasswordVerifyExpiry: m.ResetPasswordVerifyExpiry,
		CreatedAt:                 m.CreatedAt,
		UpdatedAt:                 m.UpdatedAt,
	}
}

func fromEntity(e *entity.User) *mongoUser {
	return &mongoUser{
		ID:                        e.ID,
		Username:                  e.Username,
		Email:                     e.Email,
		Password:                  e.Password,
		Provider:                  string(e.Provider),
		ProviderID:                e.ProviderID,
		IsVerified:                e.IsVerified,
		VerifyCode:                e.VerifyCode,
		VerifyCodeExpiry:          e.VerifyCodeExpiry,
		ResetPasswordCodeExpiry:   e.ResetPasswordCodeExpiry,
		ResetPasswordVerifyExpiry: e.ResetPasswordVerifyExpiry,
		CreatedAt:                 e.CreatedAt,
		UpdatedAt:                 e.UpdatedAt,
	}
}

type UserRepository struct {
	db     *mongo.Database
	redis  *redis.Client
	logger *zap.Logger
}

func NewUserRepository(db *mongo.Database, rds *redis.Client, logger *zap.Logger) *UserRepository {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Ensure indexes (idempotent operation). Username and provider_id are
	// sparse: absent for unnamed accounts and pure-credentials accounts.
	userCollection := db.Collection("users")
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "provider_id", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	}
	_, err := userCollection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Warn("Failed to create indexes for users collection (may already exist)", zap.Error(err))
	} else {
		logger.Info("Successfully ensured indexes for users collection")
	}

	return &UserRepository{
		db:     db,
		redis:  rds,
		logger: logger.Named("UserRepository"),
	}
}

func (r *UserRepository) users() *mongo.Collection {
	return r.db.Collection("users")
}

// duplicateKeyError maps a Mongo duplicate-key write error to the sentinel
// for the index that collided.
func duplicateKeyError(err error) error {
	var writeException mongo.WriteException
	if !errors.As(err, &writeException) {
		return nil
	}
	for _, writeError := range writeException.WriteErrors {
		if writeError.Code != 11000 {
			continue
		}
		switch {
		case strings.Contains(writeError.Message, "email_1"):
			return ErrDuplicateEmail
		case strings.Contains(writeError.Message, "username_1"):
			return ErrDuplicateUsername
		case strings.Contains(writeError.Message, "provider_id_1"):
			return ErrDuplicateProviderID
		}
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) (primitive.ObjectID, error) {
	r.logger.Info("Attempting to create user", zap.String("email", user.Email), zap.String("provider", string(user.Provider)))

	dbUser := fromEntity(user)
	if dbUser.ID.IsZero() {
		dbUser.ID = primitive.NewObjectID()
	}
	now := time.Now()
	dbUser.CreatedAt = now
	dbUser.UpdatedAt = now

	_, err := r.users().InsertOne(ctx, dbUser)
	if err != nil {
		if dupErr := duplicateKeyError(err); dupErr != nil {
			r.logger.Warn("Duplicate key during user creation", zap.String("email", user.Email), zap.Error(dupErr))
			return primitive.NilObjectID, dupErr
		}
		r.logger.Error("Database error during user creation", zap.String("email", user.Email), zap.Error(err))
		return primitive.NilObjectID, err
	}
	r.logger.Info("User created successfully", zap.String("userID", dbUser.ID.Hex()))
	return dbUser.ID, nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var dbUser mongoUser
	err := r.users().FindOne(ctx, filter).Decode(&dbUser)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		r.logger.Error("Database error fetching user", zap.Any("filter", filter), zap.Error(err))
		return nil, err
	}
	return dbUser.toEntity(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, userID primitive.ObjectID) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"_id": userID})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// FindByIdentifier resolves a login identifier that may be either an email
// address or a username.
func (r *UserRepository) FindByIdentifier(ctx context.Context, identifier string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{
		"$or": []bson.M{
			{"email": identifier},
			{"username": identifier},
		},
	})
}

// UsernameTaken reports whether a verified account already holds the
// username. Unverified accounts do not reserve a name.
func (r *UserRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	err := r.users().FindOne(ctx, bson.M{"username": username, "is_verified": true}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		r.logger.Error("Database error checking username", zap.String("username", username), zap.Error(err))
		return false, err
	}
	return true, nil
}

func (r *UserRepository) updateOne(ctx context.Context, userID primitive.ObjectID, update bson.M) error {
	result, err := r.users().UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		if dupErr := duplicateKeyError(err); dupErr != nil {
			return dupErr
		}
		r.logger.Error("Database error updating user", zap.String("userID", userID.Hex()), zap.Error(err))
		return err
	}
	if result.MatchedCount == 0 {
		r.logger.Warn("User not found during update", zap.String("userID", userID.Hex()))
		return ErrUserNotFound
	}
	return nil
}

// SaveSignupVerification overwrites the password hash and the signup
// verification code/expiry on an unverified account. Re-signup with the same
// email reuses the record rather than conflicting.
func (r *UserRepository) SaveSignupVerification(ctx context.Context, userID primitive.ObjectID, passwordHash, code string, expiry time.Time) error {
	r.logger.Info("Saving signup verification details", zap.String("userID", userID.Hex()))
	return r.updateOne(ctx, userID, bson.M{
		"$set": bson.M{
			"password":           passwordHash,
			"verify_code":        code,
			"verify_code_expiry": expiry,
			"updated_at":         time.Now(),
		},
	})
}

// MarkVerified flips the account to verified and discards the consumed code.
func (r *UserRepository) MarkVerified(ctx context.Context, userID primitive.ObjectID) error {
	r.logger.Info("Marking user as verified", zap.String("userID", userID.Hex()))
	return r.updateOne(ctx, userID, bson.M{
		"$set": bson.M{
			"is_verified": true,
			"updated_at":  time.Now(),
		},
		"$unset": bson.M{
			"verify_code":        "",
			"verify_code_expiry": "",
		},
	})
}

// SaveResetCode stores a fresh reset code and its window. Any verify window
// granted by an earlier code is revoked at the same time.
func (r *UserRepository) SaveResetCode(ctx context.Context, userID primitive.ObjectID, code string, expiry time.Time) error {
	r.logger.Info("Saving password reset code", zap.String("userID", userID.Hex()))
	return r.updateOne(ctx, userID, bson.M{
		"$set": bson.M{
			"verify_code":                code,
			"reset_password_code_expiry": expiry,
			"updated_at":                 time.Now(),
		},
		"$unset": bson.M{
			"reset_password_verify_expiry": "",
		},
	})
}

// GrantResetWindow opens the short window that authorizes the actual
// password write, after the reset code validated.
func (r *UserRepository) GrantResetWindow(ctx context.Context, userID primitive.ObjectID, until time.Time) error {
	r.logger.Info("Granting password reset window", zap.String("userID", userID.Hex()))
	return r.updateOne(ctx, userID, bson.M{
		"$set": bson.M{
			"reset_password_verify_expiry": until,
			"updated_at":                   time.Now(),
		},
	})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID primitive.ObjectID, passwordHash string) error {
	r.logger.Info("Updating password", zap.String("userID", userID.Hex()))
	return r.updateOne(ctx, userID, bson.M{
		"$set": bson.M{
			"password":   passwordHash,
			"updated_at": time.Now(),
		},
	})
}

// CompleteReset stores the new password hash and consumes both reset windows.
func (r *UserRepository) CompleteReset(ctx context.Context, userID primitive.ObjectID, passwordHash string) error {
	r.logger.Info("Completing password reset", zap.String("userID", userID.Hex()))
	return r.updateOne(ctx, userID, bson.M{
		"$set": bson.M{
			"password":   passwordHash,
			"updated_at": time.Now(),
		},
		"$unset": bson.M{
			"reset_password_code_expiry":   "",
			"reset_password_verify_expiry": "",
		},
	})
}

func (r *UserRepository) UpdateUsername(ctx context.Context, userID primitive.ObjectID, username string) error {
	r.logger.Info("Updating username", zap.String("userID", userID.Hex()), zap.String("username", username))
	return r.updateOne(ctx, userID, bson.M{
		"$set": bson.M{
			"username":   username,
			"updated_at": time.Now(),
		},
	})
}

// LinkProvider records the external identity on an account, transitioning
// its provider state.
func (r *UserRepository) LinkProvider(ctx context.Context, userID primitive.ObjectID, provider entity.Provider, providerID string) error {
	r.logger.Info("Linking external provider", zap.String("userID", userID.Hex()), zap.String("provider", string(provider)))
	return r.updateOne(ctx, userID, bson.M{
		"$set": bson.M{
			"provider":    string(provider),
			"provider_id": providerID,
			"updated_at":  time.Now(),
		},
	})
}

func (r *UserRepository) Delete(ctx context.Context, userID primitive.ObjectID) error {
	r.logger.Info("Deleting user", zap.String("userID", userID.Hex()))
	result, err := r.users().DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		r.logger.Error("Database error deleting user", zap.String("userID", userID.Hex()), zap.Error(err))
		return err
	}
	if result.DeletedCount == 0 {
		r.logger.Warn("User not found for delete", zap.String("userID", userID.Hex()))
		return ErrUserNotFound
	}
	if err := r.InvalidateToken(ctx, userID.Hex()); err != nil {
		r.logger.Warn("Failed to invalidate session token during delete, proceeding", zap.String("userID", userID.Hex()), zap.Error(err))
	}
	return nil
}

// CacheToken stores an active session token in Redis.
func (r *UserRepository) CacheToken(ctx context.Context, keySuffix, token string, expiration time.Duration) error {
	return r.redis.Set(ctx, "token:"+keySuffix, token, expiration).Err()
}

// InvalidateToken removes a session token from Redis.
func (r *UserRepository) InvalidateToken(ctx context.Context, keySuffix string) error {
	return r.redis.Del(ctx, "token:"+keySuffix).Err()
}

// GetToken retrieves a session token from Redis.
func (r *UserRepository) GetToken(ctx context.Context, keySuffix string) (string, error) {
	token, err := r.redis.Get(ctx, "token:"+keySuffix).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil // Token not found is not an application error here
	}
	return token, err
}
