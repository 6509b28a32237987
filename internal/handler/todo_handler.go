package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Dev-2427/Dev-MyTodo/internal/entity"
	"github.com/Dev-2427/Dev-MyTodo/internal/middleware"
	"github.com/Dev-2427/Dev-MyTodo/internal/platform/metrics"
)

// TodoService is the todo surface the HTTP layer depends on.
type TodoService interface {
	Create(ctx context.Context, userID, todoID, title string) (*entity.Todo, error)
	List(ctx context.Context, userID, sort, search string) ([]*entity.Todo, error)
	UpdateTitle(ctx context.Context, userID, todoID, title string) error
	UpdateCompletion(ctx context.Context, userID, todoID string, isCompleted bool) error
	UpdateImportance(ctx context.Context, userID, todoID string, isImportant bool) error
	Delete(ctx context.Context, userID, todoID string) error
}

type todoView struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	IsCompleted bool      `json:"is_completed"`
	IsImportant bool      `json:"is_important"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toTodoView(t *entity.Todo) todoView {
	return todoView{
		ID:          t.ID,
		Title:       t.Title,
		IsCompleted: t.IsCompleted,
		IsImportant: t.IsImportant,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type TodoHandler struct {
	todos   TodoService
	metrics *metrics.Manager
	logger  *zap.Logger
}

func NewTodoHandler(todos TodoService, m *metrics.Manager, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		todos:   todos,
		metrics: m,
		logger:  logger.Named("TodoHTTPHandler"),
	}
}

func (h *TodoHandler) fail(w http.ResponseWriter, handlerName string, err error) {
	kind := "client"
	if statusForError(err) >= http.StatusInternalServerError {
		kind = "server"
	}
	h.metrics.APIErrorsTotal.WithLabelValues(handlerName, kind).Inc()
	writeError(w, err)
}

func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.logger.Warn("User ID not found in token for Create todo")
		http.Error(w, "User ID not found in token", http.StatusUnauthorized)
		return
	}
	var req struct {
		ID    string `json:"_id"`
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request body for Create todo", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	todo, err := h.todos.Create(r.Context(), userID, req.ID, req.Title)
	if err != nil {
		h.logger.Error("Todo creation failed", zap.String("userID", userID), zap.Error(err))
		h.fail(w, "todo_create", err)
		return
	}

	h.metrics.TodosCreatedTotal.Inc()
	writeSuccess(w, http.StatusCreated, "todo created", toTodoView(todo))
}

func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.logger.Warn("User ID not found in token for List todos")
		http.Error(w, "User ID not found in token", http.StatusUnauthorized)
		return
	}

	sort := r.URL.Query().Get("sort")
	search := r.URL.Query().Get("search")
	todos, err := h.todos.List(r.Context(), userID, sort, search)
	if err != nil {
		h.logger.Error("Todo listing failed", zap.String("userID", userID), zap.Error(err))
		h.fail(w, "todo_list", err)
		return
	}

	views := make([]todoView, 0, len(todos))
	for _, t := range todos {
		views = append(views, toTodoView(t))
	}
	writeSuccess(w, http.StatusOK, "ok", views)
}

func (h *TodoHandler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User ID not found in token", http.StatusUnauthorized)
		return
	}
	todoID := chi.URLParam(r, "todoID")
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.todos.UpdateTitle(r.Context(), userID, todoID, req.Title); err != nil {
		h.logger.Error("Todo title update failed", zap.String("userID", userID), zap.String("todoID", todoID), zap.Error(err))
		h.fail(w, "todo_update_title", err)
		return
	}
	writeSuccess(w, http.StatusOK, "todo updated", nil)
}

func (h *TodoHandler) UpdateCompletion(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User ID not found in token", http.StatusUnauthorized)
		return
	}
	todoID := chi.URLParam(r, "todoID")
	var req struct {
		IsCompleted bool `json:"is_completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.todos.UpdateCompletion(r.Context(), userID, todoID, req.IsCompleted); err != nil {
		h.logger.Error("Todo completion update failed", zap.String("userID", userID), zap.String("todoID", todoID), zap.Error(err))
		h.fail(w, "todo_update_completion", err)
		return
	}
	writeSuccess(w, http.StatusOK, "todo updated", nil)
}

func (h *TodoHandler) UpdateImportance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User ID not found in token", http.StatusUnauthorized)
		return
	}
	todoID := chi.URLParam(r, "todoID")
	var req struct {
		IsImportant bool `json:"is_important"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.todos.UpdateImportance(r.Context(), userID, todoID, req.IsImportant); err != nil {
		h.logger.Error("Todo importance update failed", zap.String("userID", userID), zap.String("todoID", todoID), zap.Error(err))
		h.fail(w, "todo_update_importance", err)
		return
	}
	writeSuccess(w, http.StatusOK, "todo updated", nil)
}

func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User ID not found in token", http.StatusUnauthorized)
		return
	}
	todoID := chi.URLParam(r, "todoID")

	if err := h.todos.Delete(r.Context(), userID, todoID); err != nil {
		h.logger.Error("Todo deletion failed", zap.String("userID", userID), zap.String("todoID", todoID), zap.Error(err))
		h.fail(w, "todo_delete", err)
		return
	}
	writeSuccess(w, http.StatusOK, "todo deleted", nil)
}
