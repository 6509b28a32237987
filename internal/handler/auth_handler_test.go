package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	mw "github.com/Dev-2427/Dev-MyTodo/internal/middleware"
	"github.com/Dev-2427/Dev-MyTodo/internal/platform/metrics"
	"github.com/Dev-2427/Dev-MyTodo/internal/repository"
	"github.com/Dev-2427/Dev-MyTodo/internal/session"
	"github.com/Dev-2427/Dev-MyTodo/internal/usecase"
)

type MockAuthService struct{ mock.Mock }

func (m *MockAuthService) Signup(ctx context.Context, username, email, password string) error {
	args := m.Called(ctx, username, email, password)
	return args.Error(0)
}
func (m *MockAuthService) VerifySignupCode(ctx context.Context, username, code string) (string, error) {
	args := m.Called(ctx, username, code)
	return args.String(0), args.Error(1)
}
func (m *MockAuthService) CheckUsernameAvailable(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}
func (m *MockAuthService) Login(ctx context.Context, identifier, password string) (string, error) {
	args := m.Called(ctx, identifier, password)
	return args.String(0), args.Error(1)
}
func (m *MockAuthService) LoginWithGoogle(ctx context.Context, email, name, providerID string) (string, error) {
	args := m.Called(ctx, email, name, providerID)
	return args.String(0), args.Error(1)
}
func (m *MockAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}
func (m *MockAuthService) VerifyResetCode(ctx context.Context, email, code string) error {
	args := m.Called(ctx, email, code)
	return args.Error(0)
}
func (m *MockAuthService) ResetPassword(ctx context.Context, email, newPassword, confirmNewPassword string) error {
	args := m.Called(ctx, email, newPassword, confirmNewPassword)
	return args.Error(0)
}
func (m *MockAuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	args := m.Called(ctx, userID, oldPassword, newPassword)
	return args.Error(0)
}
func (m *MockAuthService) ChangeUsername(ctx context.Context, userID, username string) (string, error) {
	args := m.Called(ctx, userID, username)
	return args.String(0), args.Error(1)
}
func (m *MockAuthService) CurrentUsername(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}
func (m *MockAuthService) DeleteAccount(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
func (m *MockAuthService) Logout(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func newAuthHandlerForTest(t *testing.T) (*AuthHandler, *MockAuthService) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	svc := new(MockAuthService)
	return NewAuthHandler(svc, metrics.NewManager("test"), logger), svc
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// withUserID mimics what JWTAuth puts into the request context.
func withUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), mw.UserIDCtxKey, userID))
}

func TestAuthHandler_Signup(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		h, svc := newAuthHandlerForTest(t)
		svc.On("Signup", mock.Anything, "alice", "alice@example.com", "password123").Return(nil).Once()

		body := `{"username":"alice","email":"alice@example.com","password":"password123"}`
		req := httptest.NewRequest(http.MethodPost, "/api/user/signup", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Signup(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		resp := decodeResponse(t, rec)
		assert.True(t, resp.Success)
		svc.AssertExpectations(t)
	})

	t.Run("UsernameConflict", func(t *testing.T) {
		h, svc := newAuthHandlerForTest(t)
		svc.On("Signup", mock.Anything, "alice", "alice@example.com", "password123").Return(usecase.ErrUsernameTaken).Once()

		body := `{"username":"alice","email":"alice@example.com","password":"password123"}`
		req := httptest.NewRequest(http.MethodPost, "/api/user/signup", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Signup(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeResponse(t, rec)
		assert.False(t, resp.Success)
		assert.Equal(t, usecase.ErrUsernameTaken.Error(), resp.Message)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		h, svc := newAuthHandlerForTest(t)

		req := httptest.NewRequest(http.MethodPost, "/api/user/signup", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		h.Signup(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_VerifySignupCode(t *testing.T) {
	t.Run("ReturnsToken", func(t *testing.T) {
		h, svc := newAuthHandlerForTest(t)
		svc.On("VerifySignupCode", mock.Anything, "alice", "123456").Return("issued-token", nil).Once()

		body := `{"username":"alice","code":"123456"}`
		req := httptest.NewRequest(http.MethodPost, "/api/user/verify-code", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.VerifySignupCode(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		resp := decodeResponse(t, rec)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "issued-token", data["token"])
	})

	t.Run("ExpiredCode", func(t *testing.T) {
		h, svc := newAuthHandlerForTest(t)
		svc.On("VerifySignupCode", mock.Anything, "alice", "123456").Return("", usecase.ErrCodeExpired).Once()

		body := `{"username":"alice","code":"123456"}`
		req := httptest.NewRequest(http.MethodPost, "/api/user/verify-code", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.VerifySignupCode(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		h, svc := newAuthHandlerForTest(t)
		svc.On("Login", mock.Anything, "alice", "password123").Return("issued-token", nil).Once()

		body := `{"identifier":"alice","password":"password123"}`
		req := httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Login(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("BadCredentials", func(t *testing.T) {
		h, svc := newAuthHandlerForTest(t)
		svc.On("Login", mock.Anything, "alice", "wrong").Return("", usecase.ErrInvalidCredentials).Once()

		body := `{"identifier":"alice","password":"wrong"}`
		req := httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Login(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("UnverifiedAccount", func(t *testing.T) {
		h, svc := newAuthHandlerForTest(t)
		svc.On("Login", mock.Anything, "alice", "password123").Return("", usecase.ErrNotVerified).Once()

		body := `{"identifier":"alice","password":"password123"}`
		req := httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Login(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestAuthHandler_ResetPassword(t *testing.T) {
	t.Run("OutsideWindow", func(t *testing.T) {
		h, svc := newAuthHandlerForTest(t)
		svc.On("ResetPassword", mock.Anything, "alice@example.com", "new-password-1", "new-password-1").
			Return(usecase.ErrResetNotAuthorized).Once()

		body := `{"email":"alice@example.com","new_password":"new-password-1","confirm_new_password":"new-password-1"}`
		req := httptest.NewRequest(http.MethodPost, "/api/user/reset-password", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.ResetPassword(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Success", func(t *testing.T) {
		h, svc := newAuthHandlerForTest(t)
		svc.On("ResetPassword", mock.Anything, "alice@example.com", "new-password-1", "new-password-1").Return(nil).Once()

		body := `{"email":"alice@example.com","new_password":"new-password-1","confirm_new_password":"new-password-1"}`
		req := httptest.NewRequest(http.MethodPost, "/api/user/reset-password", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.ResetPassword(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	t.Run("ReturnsUsername", func(t *testing.T) {
		h, svc := newAuthHandlerForTest(t)
		svc.On("CurrentUsername", mock.Anything, "user-1").Return("alice", nil).Once()

		req := withUserID(httptest.NewRequest(http.MethodGet, "/api/user/me", nil), "user-1")
		rec := httptest.NewRecorder()
		h.Me(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		resp := decodeResponse(t, rec)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "alice", data["username"])
	})

	t.Run("DeletedAccount", func(t *testing.T) {
		h, svc := newAuthHandlerForTest(t)
		svc.On("CurrentUsername", mock.Anything, "user-1").Return("", repository.ErrUserNotFound).Once()

		req := withUserID(httptest.NewRequest(http.MethodGet, "/api/user/me", nil), "user-1")
		rec := httptest.NewRecorder()
		h.Me(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("NoSession", func(t *testing.T) {
		h, svc := newAuthHandlerForTest(t)

		req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
		rec := httptest.NewRecorder()
		h.Me(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		svc.AssertNotCalled(t, "CurrentUsername", mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	svc := new(MockAuthService)
	h := NewAuthHandler(svc, metrics.NewManager("test"), logger)

	claims := &session.Claims{Email: "alice@example.com"}
	svc.On("RequestPasswordReset", mock.Anything, "alice@example.com").Return(nil).Once()

	req := httptest.NewRequest(http.MethodPatch, "/api/user/forgot-password", nil)
	req = req.WithContext(context.WithValue(req.Context(), mw.ClaimsCtxKey, claims))
	rec := httptest.NewRecorder()
	h.ForgotPassword(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestAuthHandler_DeleteAccount(t *testing.T) {
	h, svc := newAuthHandlerForTest(t)
	svc.On("DeleteAccount", mock.Anything, "user-1").Return(nil).Once()

	req := withUserID(httptest.NewRequest(http.MethodDelete, "/api/user", nil), "user-1")
	rec := httptest.NewRecorder()
	h.DeleteAccount(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}
