package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dev-2427/Dev-MyTodo/internal/entity"
	"github.com/Dev-2427/Dev-MyTodo/internal/mailer"
	portrepo "github.com/Dev-2427/Dev-MyTodo/internal/port/repository"
	"github.com/Dev-2427/Dev-MyTodo/internal/repository"
	"github.com/Dev-2427/Dev-MyTodo/internal/session"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("please verify your account before login")
	ErrGoogleAccount      = errors.New("this account was created with Google, please sign in with Google")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrCodeExpired        = errors.New("your verification code has expired, please request a new one")
	ErrCodeMismatch       = errors.New("incorrect verification code")
	ErrResetNotAuthorized = errors.New("you are not authorized to change the password, please verify your email again")
	ErrMailDelivery       = errors.New("failed to send verification email")
)

// Both the code itself and the post-confirmation reset window live for ten
// minutes.
const (
	verifyCodeTTL  = 10 * time.Minute
	resetWindowTTL = 10 * time.Minute
)

// EventPublisher announces account lifecycle events. May be nil when no
// broker is configured.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, userID, email string) error
	PublishUserDeleted(ctx context.Context, userID string) error
	PublishTodoCreated(ctx context.Context, userID, todoID string) error
}

type AuthUsecase struct {
	users      portrepo.UserRepository
	todos      portrepo.TodoRepository
	mail       mailer.Mailer
	sessions   *session.Manager
	publisher  EventPublisher
	sessionTTL time.Duration
	logger     *zap.Logger
}

func NewAuthUsecase(
	users portrepo.UserRepository,
	todos portrepo.TodoRepository,
	mail mailer.Mailer,
	sessions *session.Manager,
	publisher EventPublisher,
	sessionTTL time.Duration,
	logger *zap.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		users:      users,
		todos:      todos,
		mail:       mail,
		sessions:   sessions,
		publisher:  publisher,
		sessionTTL: sessionTTL,
		logger:     logger.Named("AuthUsecase"),
	}
}

// generateVerifyCode produces a uniform random 6-digit code. Collisions are
// fine: codes are looked up by identity, never by code.
func generateVerifyCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

func parseUserID(userID string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: malformed user id", ErrValidation)
	}
	return id, nil
}

func expired(t *time.Time) bool {
	return t == nil || !t.After(time.Now())
}

// issueSession produces a session token for the user and caches it as the
// account's active session.
func (u *AuthUsecase) issueSession(ctx context.Context, user *entity.User) (string, error) {
	token, err := u.sessions.Issue(user)
	if err != nil {
		u.logger.Error("Failed to issue session token", zap.String("userID", user.ID.Hex()), zap.Error(err))
		return "", err
	}
	if err := u.users.CacheToken(ctx, user.ID.Hex(), token, u.sessionTTL); err != nil {
		u.logger.Warn("Failed to cache session token, proceeding", zap.String("userID", user.ID.Hex()), zap.Error(err))
	}
	return token, nil
}

// Signup creates a credentials account (or re-uses an existing unverified
// record for the same email), stores a fresh verification code and mails it.
func (u *AuthUsecase) Signup(ctx context.Context, username, email, password string) error {
	username, err := validateUsername(username)
	if err != nil {
		return err
	}
	email, err = validateEmail(email)
	if err != nil {
		return err
	}
	password, err = validatePassword(password)
	if err != nil {
		return err
	}

	existingByUsername, err := u.users.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}
	if existingByUsername != nil && existingByUsername.IsVerified {
		return ErrUsernameTaken
	}

	code, err := generateVerifyCode()
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		u.logger.Error("Failed to hash password during signup", zap.String("email", email), zap.Error(err))
		return err
	}
	expiry := time.Now().Add(verifyCodeTTL)

	existingByEmail, err := u.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existingByEmail.IsVerified {
			return ErrEmailTaken
		}
		// Unverified record for this email: overwrite password and code
		// instead of conflicting.
		if err := u.users.SaveSignupVerification(ctx, existingByEmail.ID, string(hash), code, expiry); err != nil {
			return err
		}
	case errors.Is(err, repository.ErrUserNotFound):
		user := &entity.User{
			Username:         username,
			Email:            email,
			Password:         string(hash),
			Provider:         entity.ProviderCredentials,
			IsVerified:       false,
			VerifyCode:       code,
			VerifyCodeExpiry: &expiry,
		}
		userID, err := u.users.Create(ctx, user)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicateUsername) {
				return ErrUsernameTaken
			}
			if errors.Is(err, repository.ErrDuplicateEmail) {
				return ErrEmailTaken
			}
			return err
		}
		u.publishUserRegistered(ctx, userID.Hex(), email)
	default:
		return err
	}

	if err := u.mail.SendSignupCode(email, username, code); err != nil {
		u.logger.Error("Failed to send signup verification email", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return nil
}

// VerifySignupCode validates a signup code and, on success, marks the
// account verified and signs the user in directly, returning a session token.
func (u *AuthUsecase) VerifySignupCode(ctx context.Context, username, code string) (string, error) {
	if err := validateCode(code); err != nil {
		return "", err
	}

	user, err := u.users.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}

	if expired(user.VerifyCodeExpiry) {
		return "", ErrCodeExpired
	}
	if user.VerifyCode != code {
		return "", ErrCodeMismatch
	}

	if err := u.users.MarkVerified(ctx, user.ID); err != nil {
		return "", err
	}
	user.IsVerified = true

	return u.issueSession(ctx, user)
}

// CheckUsernameAvailable reports whether a verified account already reserves
// the username.
func (u *AuthUsecase) CheckUsernameAvailable(ctx context.Context, username string) error {
	username, err := validateUsername(username)
	if err != nil {
		return err
	}
	taken, err := u.users.UsernameTaken(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		return ErrUsernameTaken
	}
	return nil
}

// Login authenticates by email or username plus password.
func (u *AuthUsecase) Login(ctx context.Context, identifier, password string) (string, error) {
	if identifier == "" || password == "" {
		return "", fmt.Errorf("%w: identifier and password are required", ErrValidation)
	}

	user, err := u.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if !user.IsVerified {
		return "", ErrNotVerified
	}
	if !user.HasPassword() || user.Provider == entity.ProviderGoogle {
		return "", ErrGoogleAccount
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	// Reuse the active session if one is cached and still valid.
	if cached, err := u.users.GetToken(ctx, user.ID.Hex()); err == nil && cached != "" {
		if _, err := u.sessions.Parse(cached); err == nil {
			return cached, nil
		}
	}

	return u.issueSession(ctx, user)
}

// LoginWithGoogle signs in a Google identity that the OAuth collaborator has
// already verified. A fresh email creates a verified google account; an
// existing credentials account is linked and becomes hybrid.
func (u *AuthUsecase) LoginWithGoogle(ctx context.Context, email, name, providerID string) (string, error) {
	email, err := validateEmail(email)
	if err != nil {
		return "", err
	}
	if providerID == "" {
		return "", fmt.Errorf("%w: provider id is required", ErrValidation)
	}

	// The desired display name becomes the username only if nobody holds it;
	// otherwise the account stays unnamed until the onboarding step.
	desiredUsername := stripSpaces(name)
	if desiredUsername != "" {
		if _, err := u.users.FindByUsername(ctx, desiredUsername); err == nil {
			desiredUsername = ""
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return "", err
		}
	}

	user, err := u.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		user = &entity.User{
			Username:   desiredUsername,
			Email:      email,
			Provider:   entity.ProviderGoogle,
			ProviderID: providerID,
			IsVerified: true,
		}
		userID, err := u.users.Create(ctx, user)
		if err != nil {
			return "", err
		}
		user.ID = userID
		u.publishUserRegistered(ctx, userID.Hex(), email)
	case err == nil:
		if user.Provider.CanTransition(entity.ProviderHybrid) {
			if err := u.users.LinkProvider(ctx, user.ID, entity.ProviderHybrid, providerID); err != nil {
				return "", err
			}
			user.Provider = entity.ProviderHybrid
			user.ProviderID = providerID
		}
	default:
		return "", err
	}

	return u.issueSession(ctx, user)
}

// RequestPasswordReset issues a reset code for an existing account. Any
// window granted by an earlier code is revoked.
func (u *AuthUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	email, err := validateEmail(email)
	if err != nil {
		return err
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := generateVerifyCode()
	if err != nil {
		return err
	}
	if err := u.users.SaveResetCode(ctx, user.ID, code, time.Now().Add(verifyCodeTTL)); err != nil {
		return err
	}

	toName := user.Username
	if toName == "" {
		toName = "User"
	}
	if err := u.mail.SendPasswordResetCode(email, toName, code); err != nil {
		u.logger.Error("Failed to send password reset email", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return nil
}

// VerifyResetCode validates a reset code and, on success, grants the short
// window that authorizes the actual password write. The password itself is
// untouched here.
func (u *AuthUsecase) VerifyResetCode(ctx context.Context, email, code string) error {
	email, err := validateEmail(email)
	if err != nil {
		return err
	}
	if err := validateCode(code); err != nil {
		return err
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	if expired(user.ResetPasswordCodeExpiry) {
		return ErrCodeExpired
	}
	if user.VerifyCode != code {
		return ErrCodeMismatch
	}

	return u.users.GrantResetWindow(ctx, user.ID, time.Now().Add(resetWindowTTL))
}

// ResetPassword stores a new password without the old one, permitted only
// while the post-verification window is open. Both expiry fields are
// consumed on success.
func (u *AuthUsecase) ResetPassword(ctx context.Context, email, newPassword, confirmNewPassword string) error {
	email, err := validateEmail(email)
	if err != nil {
		return err
	}
	if newPassword != confirmNewPassword {
		return fmt.Errorf("%w: new password and confirm password do not match", ErrValidation)
	}
	newPassword, err = validatePassword(newPassword)
	if err != nil {
		return err
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	if expired(user.ResetPasswordVerifyExpiry) {
		return ErrResetNotAuthorized
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		u.logger.Error("Failed to hash new password", zap.String("userID", user.ID.Hex()), zap.Error(err))
		return err
	}
	return u.users.CompleteReset(ctx, user.ID, string(hash))
}

// ChangePassword replaces an authenticated user's password after checking
// the current one. Accounts without a stored password (pure Google) are
// rejected.
func (u *AuthUsecase) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	id, err := parseUserID(userID)
	if err != nil {
		return err
	}
	newPassword, err = validatePassword(newPassword)
	if err != nil {
		return err
	}

	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !user.HasPassword() || user.Provider == entity.ProviderGoogle {
		return ErrGoogleAccount
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		u.logger.Error("Failed to hash new password", zap.String("userID", userID), zap.Error(err))
		return err
	}
	return u.users.UpdatePassword(ctx, id, string(hash))
}

// ChangeUsername updates the username and returns a freshly issued session
// token carrying the new claims.
func (u *AuthUsecase) ChangeUsername(ctx context.Context, userID, username string) (string, error) {
	id, err := parseUserID(userID)
	if err != nil {
		return "", err
	}
	username, err = validateUsername(username)
	if err != nil {
		return "", err
	}

	existing, err := u.users.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return "", err
	}
	if existing != nil && existing.ID != id {
		return "", ErrUsernameTaken
	}

	if err := u.users.UpdateUsername(ctx, id, username); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return "", ErrUsernameTaken
		}
		return "", err
	}

	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return u.issueSession(ctx, user)
}

// CurrentUsername returns the user's username, empty when onboarding is
// incomplete. A missing user means the account was deleted under an active
// session; the caller must terminate it.
func (u *AuthUsecase) CurrentUsername(ctx context.Context, userID string) (string, error) {
	id, err := parseUserID(userID)
	if err != nil {
		return "", err
	}
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

// DeleteAccount removes the account and cascades to all owned todos.
func (u *AuthUsecase) DeleteAccount(ctx context.Context, userID string) error {
	id, err := parseUserID(userID)
	if err != nil {
		return err
	}

	if _, err := u.todos.DeleteAllForUser(ctx, id); err != nil {
		return err
	}
	if err := u.users.Delete(ctx, id); err != nil {
		return err
	}

	if u.publisher != nil {
		if err := u.publisher.PublishUserDeleted(ctx, userID); err != nil {
			u.logger.Warn("Failed to publish user.deleted event", zap.String("userID", userID), zap.Error(err))
		}
	}
	return nil
}

// Logout drops the account's cached session token.
func (u *AuthUsecase) Logout(ctx context.Context, userID string) error {
	if _, err := parseUserID(userID); err != nil {
		return err
	}
	return u.users.InvalidateToken(ctx, userID)
}

func (u *AuthUsecase) publishUserRegistered(ctx context.Context, userID, email string) {
	if u.publisher == nil {
		return
	}
	if err := u.publisher.PublishUserRegistered(ctx, userID, email); err != nil {
		u.logger.Warn("Failed to publish user.registered event", zap.String("userID", userID), zap.Error(err))
	}
}
