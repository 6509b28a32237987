package middleware

// ContextKey is a private key type so context values cannot collide with
// other packages.
type ContextKey string

const (
	// UserIDCtxKey holds the authenticated user's id (hex ObjectID).
	UserIDCtxKey = ContextKey("user_id")

	// ClaimsCtxKey holds the full parsed session claims.
	ClaimsCtxKey = ContextKey("session_claims")
)
