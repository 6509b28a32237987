package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dev-2427/Dev-MyTodo/internal/repository"
	"github.com/Dev-2427/Dev-MyTodo/internal/session"
	"github.com/Dev-2427/Dev-MyTodo/internal/usecase"
)

type apiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, apiResponse{Success: true, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	writeJSON(w, status, apiResponse{Success: false, Message: message})
}

// statusForError maps usecase and repository errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, usecase.ErrValidation),
		errors.Is(err, usecase.ErrCodeExpired),
		errors.Is(err, usecase.ErrCodeMismatch),
		errors.Is(err, usecase.ErrGoogleAccount),
		errors.Is(err, usecase.ErrUsernameTaken),
		errors.Is(err, usecase.ErrEmailTaken),
		errors.Is(err, repository.ErrDuplicateTodo):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, session.ErrInvalidToken),
		errors.Is(err, session.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, usecase.ErrNotVerified),
		errors.Is(err, usecase.ErrResetNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrTodoNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
