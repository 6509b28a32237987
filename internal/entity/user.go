package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Provider identifies how an account authenticates. An account created with
// credentials that later links a Google identity becomes "hybrid"; no other
// transition is allowed and there is no unlink operation.
type Provider string

const (
	ProviderCredentials Provider = "credentials"
	ProviderGoogle      Provider = "google"
	ProviderHybrid      Provider = "hybrid"
)

// CanTransition reports whether moving from p to target is an allowed edge.
// The only legal runtime transition is credentials -> hybrid; google and
// hybrid are terminal.
func (p Provider) CanTransition(target Provider) bool {
	return p == ProviderCredentials && target == ProviderHybrid
}

// User is one account document. Username is empty until the user has picked
// one (a Google signup whose desired name collided stays unnamed until the
// onboarding step completes). Password is the bcrypt hash and is empty for
// pure Google accounts.
type User struct {
	ID         primitive.ObjectID
	Username   string
	Email      string
	Password   string
	Provider   Provider
	ProviderID string
	IsVerified bool

	// VerifyCode is the last issued 6-digit one-time code. It is shared by
	// the signup and password-reset flows; which flow it belongs to is
	// decided by which expiry field is set.
	VerifyCode       string
	VerifyCodeExpiry *time.Time

	// ResetPasswordCodeExpiry bounds the reset code itself.
	// ResetPasswordVerifyExpiry is the second, post-confirmation window that
	// authorizes the actual password write. It is set only after a reset
	// code validated and cleared once consumed or superseded.
	ResetPasswordCodeExpiry   *time.Time
	ResetPasswordVerifyExpiry *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPassword reports whether the account can be authenticated with
// credentials at all.
func (u *User) HasPassword() bool {
	return u.Password != ""
}
