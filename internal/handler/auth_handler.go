package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/Dev-2427/Dev-MyTodo/internal/middleware"
	"github.com/Dev-2427/Dev-MyTodo/internal/platform/metrics"
)

// AuthService is the account surface the HTTP layer depends on.
type AuthService interface {
	Signup(ctx context.Context, username, email, password string) error
	VerifySignupCode(ctx context.Context, username, code string) (string, error)
	CheckUsernameAvailable(ctx context.Context, username string) error
	Login(ctx context.Context, identifier, password string) (string, error)
	LoginWithGoogle(ctx context.Context, email, name, providerID string) (string, error)
	RequestPasswordReset(ctx context.Context, email string) error
	VerifyResetCode(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, newPassword, confirmNewPassword string) error
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	ChangeUsername(ctx context.Context, userID, username string) (string, error)
	CurrentUsername(ctx context.Context, userID string) (string, error)
	DeleteAccount(ctx context.Context, userID string) error
	Logout(ctx context.Context, userID string) error
}

type AuthHandler struct {
	auth    AuthService
	metrics *metrics.Manager
	logger  *zap.Logger
}

func NewAuthHandler(auth AuthService, m *metrics.Manager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		metrics: m,
		logger:  logger.Named("AuthHTTPHandler"),
	}
}

func (h *AuthHandler) fail(w http.ResponseWriter, handlerName string, err error) {
	kind := "client"
	if statusForError(err) >= http.StatusInternalServerError {
		kind = "server"
	}
	h.metrics.APIErrorsTotal.WithLabelValues(handlerName, kind).Inc()
	writeError(w, err)
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request body for Signup", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.logger.Info("HTTP Signup request received", zap.String("email", req.Email))

	if err := h.auth.Signup(r.Context(), req.Username, req.Email, req.Password); err != nil {
		h.logger.Error("Signup failed", zap.String("email", req.Email), zap.Error(err))
		h.fail(w, "signup", err)
		return
	}

	h.metrics.SignupsTotal.Inc()
	writeSuccess(w, http.StatusCreated, "verification code sent to your email", nil)
	h.logger.Info("HTTP Signup request processed successfully", zap.String("email", req.Email))
}

func (h *AuthHandler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if err := h.auth.CheckUsernameAvailable(r.Context(), username); err != nil {
		h.fail(w, "check_username", err)
		return
	}
	writeSuccess(w, http.StatusOK, "username is available", nil)
}

func (h *AuthHandler) VerifySignupCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Code     string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request body for VerifySignupCode", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.logger.Info("HTTP VerifySignupCode request received", zap.String("username", req.Username))

	token, err := h.auth.VerifySignupCode(r.Context(), req.Username, req.Code)
	if err != nil {
		h.logger.Error("Signup code verification failed", zap.String("username", req.Username), zap.Error(err))
		h.fail(w, "verify_code", err)
		return
	}

	h.metrics.VerificationsTotal.WithLabelValues("signup").Inc()
	writeSuccess(w, http.StatusOK, "account verified", map[string]string{"token": token})
	h.logger.Info("HTTP VerifySignupCode request processed successfully", zap.String("username", req.Username))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request body for Login", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.auth.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		h.logger.Warn("Login failed", zap.String("identifier", req.Identifier), zap.Error(err))
		h.fail(w, "login", err)
		return
	}

	h.metrics.LoginsTotal.WithLabelValues("credentials").Inc()
	writeSuccess(w, http.StatusOK, "login successful", map[string]string{"token": token})
}

func (h *AuthHandler) LoginWithGoogle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email      string `json:"email"`
		Name       string `json:"name"`
		ProviderID string `json:"provider_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request body for LoginWithGoogle", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.logger.Info("HTTP Google login request received", zap.String("email", req.Email))

	token, err := h.auth.LoginWithGoogle(r.Context(), req.Email, req.Name, req.ProviderID)
	if err != nil {
		h.logger.Error("Google login failed", zap.String("email", req.Email), zap.Error(err))
		h.fail(w, "login_google", err)
		return
	}

	h.metrics.LoginsTotal.WithLabelValues("google").Inc()
	writeSuccess(w, http.StatusOK, "login successful", map[string]string{"token": token})
}

// ForgotPassword starts a reset for the authenticated user using the email
// from their session claims.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.logger.Warn("Session claims not found in context for ForgotPassword")
		http.Error(w, "User not found in token", http.StatusUnauthorized)
		return
	}

	if err := h.auth.RequestPasswordReset(r.Context(), claims.Email); err != nil {
		h.logger.Error("Password reset request failed", zap.String("email", claims.Email), zap.Error(err))
		h.fail(w, "forgot_password", err)
		return
	}
	writeSuccess(w, http.StatusOK, "password reset code sent to your email", nil)
}

// ForgotPasswordByEmail starts a reset for a logged-out user who supplies
// their email.
func (h *AuthHandler) ForgotPasswordByEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request body for ForgotPasswordByEmail", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.logger.Error("Password reset request failed", zap.String("email", req.Email), zap.Error(err))
		h.fail(w, "forgot_password_login", err)
		return
	}
	writeSuccess(w, http.StatusOK, "password reset code sent to your email", nil)
}

func (h *AuthHandler) VerifyResetCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request body for VerifyResetCode", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.auth.VerifyResetCode(r.Context(), req.Email, req.Code); err != nil {
		h.logger.Error("Reset code verification failed", zap.String("email", req.Email), zap.Error(err))
		h.fail(w, "verify_reset_code", err)
		return
	}

	h.metrics.VerificationsTotal.WithLabelValues("reset").Inc()
	writeSuccess(w, http.StatusOK, "code verified, you may now reset your password", nil)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email              string `json:"email"`
		NewPassword        string `json:"new_password"`
		ConfirmNewPassword string `json:"confirm_new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request body for ResetPassword", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.logger.Info("HTTP ResetPassword request received", zap.String("email", req.Email))

	if err := h.auth.ResetPassword(r.Context(), req.Email, req.NewPassword, req.ConfirmNewPassword); err != nil {
		h.logger.Error("Password reset failed", zap.String("email", req.Email), zap.Error(err))
		h.fail(w, "reset_password", err)
		return
	}

	h.metrics.PasswordResetsTotal.Inc()
	writeSuccess(w, http.StatusOK, "password has been reset", nil)
	h.logger.Info("HTTP ResetPassword request processed successfully", zap.String("email", req.Email))
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.logger.Warn("User ID not found in token for ChangePassword")
		http.Error(w, "User ID not found in token", http.StatusUnauthorized)
		return
	}
	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.auth.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		h.logger.Error("Password change failed", zap.String("userID", userID), zap.Error(err))
		h.fail(w, "change_password", err)
		return
	}
	writeSuccess(w, http.StatusOK, "password changed", nil)
}

// ChangeUsername updates the username and returns a fresh token so the
// session claims stay in sync.
func (h *AuthHandler) ChangeUsername(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.logger.Warn("User ID not found in token for ChangeUsername")
		http.Error(w, "User ID not found in token", http.StatusUnauthorized)
		return
	}
	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	h.logger.Info("HTTP ChangeUsername request received", zap.String("userID", userID), zap.String("username", req.Username))

	token, err := h.auth.ChangeUsername(r.Context(), userID, req.Username)
	if err != nil {
		h.logger.Error("Username change failed", zap.String("userID", userID), zap.Error(err))
		h.fail(w, "change_username", err)
		return
	}
	writeSuccess(w, http.StatusOK, "username updated", map[string]string{"token": token})
}

// Me returns the caller's current username. A 404 here means the account no
// longer exists and the client must end the session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.logger.Warn("User ID not found in token for Me")
		http.Error(w, "User ID not found in token", http.StatusUnauthorized)
		return
	}

	username, err := h.auth.CurrentUsername(r.Context(), userID)
	if err != nil {
		h.logger.Warn("Failed to resolve current user", zap.String("userID", userID), zap.Error(err))
		h.fail(w, "me", err)
		return
	}
	writeSuccess(w, http.StatusOK, "ok", map[string]string{"username": username})
}

func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.logger.Warn("User ID not found in token for DeleteAccount")
		http.Error(w, "User ID not found in token", http.StatusUnauthorized)
		return
	}
	h.logger.Info("HTTP DeleteAccount request received", zap.String("userID", userID))

	if err := h.auth.DeleteAccount(r.Context(), userID); err != nil {
		h.logger.Error("Account deletion failed", zap.String("userID", userID), zap.Error(err))
		h.fail(w, "delete_account", err)
		return
	}
	writeSuccess(w, http.StatusOK, "account deleted", nil)
	h.logger.Info("HTTP DeleteAccount request processed successfully", zap.String("userID", userID))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.logger.Warn("User ID not found in token for Logout")
		http.Error(w, "User ID not found in token", http.StatusUnauthorized)
		return
	}

	if err := h.auth.Logout(r.Context(), userID); err != nil {
		h.logger.Error("Logout failed", zap.String("userID", userID), zap.Error(err))
		h.fail(w, "logout", err)
		return
	}
	writeSuccess(w, http.StatusOK, "logged out", nil)
}
