package router

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Dev-2427/Dev-MyTodo/internal/handler"
	"github.com/Dev-2427/Dev-MyTodo/internal/middleware"
	"github.com/Dev-2427/Dev-MyTodo/internal/session"
)

// SetupUserRoutes configures all account related routes.
func SetupUserRoutes(r *chi.Mux, authHandler *handler.AuthHandler, sessions *session.Manager, logger *zap.Logger) {
	// Public account routes
	r.Post("/api/user/signup", authHandler.Signup)
	r.Get("/api/user/check-username", authHandler.CheckUsername)
	r.Post("/api/user/verify-code", authHandler.VerifySignupCode)
	r.Post("/api/user/login", authHandler.Login)
	r.Post("/api/user/login/google", authHandler.LoginWithGoogle)

	// Logged-out password reset flow
	r.Patch("/api/user/forgot-password/login", authHandler.ForgotPasswordByEmail)
	r.Post("/api/user/verify-reset-code", authHandler.VerifyResetCode)
	r.Post("/api/user/reset-password", authHandler.ResetPassword)

	// Protected account routes
	r.Group(func(authRouter chi.Router) {
		authRouter.Use(middleware.JWTAuth(sessions, logger))

		authRouter.Get("/api/user/me", authHandler.Me)
		authRouter.Patch("/api/user/username", authHandler.ChangeUsername)
		authRouter.Patch("/api/user/forgot-password", authHandler.ForgotPassword)
		authRouter.Patch("/api/user/change-password", authHandler.ChangePassword)
		authRouter.Post("/api/user/logout", authHandler.Logout)
		authRouter.Delete("/api/user", authHandler.DeleteAccount)
	})
}

// SetupTodoRoutes configures all todo routes. Every todo route requires an
// authenticated session.
func SetupTodoRoutes(r *chi.Mux, todoHandler *handler.TodoHandler, sessions *session.Manager, logger *zap.Logger) {
	r.Group(func(authRouter chi.Router) {
		authRouter.Use(middleware.JWTAuth(sessions, logger))

		authRouter.Post("/api/todo", todoHandler.Create)
		authRouter.Get("/api/todo", todoHandler.List)
		authRouter.Patch("/api/todo/{todoID}/title", todoHandler.UpdateTitle)
		authRouter.Patch("/api/todo/{todoID}/completion", todoHandler.UpdateCompletion)
		authRouter.Patch("/api/todo/{todoID}/importance", todoHandler.UpdateImportance)
		authRouter.Delete("/api/todo/{todoID}", todoHandler.Delete)
	})
}
