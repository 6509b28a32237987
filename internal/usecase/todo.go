package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Dev-2427/Dev-MyTodo/internal/entity"
	portrepo "github.com/Dev-2427/Dev-MyTodo/internal/port/repository"
	"github.com/Dev-2427/Dev-MyTodo/internal/repository"
)

type TodoUsecase struct {
	todos     portrepo.TodoRepository
	publisher EventPublisher
	logger    *zap.Logger
}

func NewTodoUsecase(todos portrepo.TodoRepository, publisher EventPublisher, logger *zap.Logger) *TodoUsecase {
	return &TodoUsecase{
		todos:     todos,
		publisher: publisher,
		logger:    logger.Named("TodoUsecase"),
	}
}

func validateTodoID(todoID string) error {
	if strings.TrimSpace(todoID) == "" {
		return fmt.Errorf("%w: todo id is required", ErrValidation)
	}
	return nil
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", ErrValidation)
	}
	if len(title) > 500 {
		return "", fmt.Errorf("%w: title must be at most 500 characters", ErrValidation)
	}
	return title, nil
}

// Create stores a todo under the caller's account. The id is supplied by the
// client so an optimistic UI can render the item before the write lands.
func (u *TodoUsecase) Create(ctx context.Context, userID, todoID, title string) (*entity.Todo, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	if err := validateTodoID(todoID); err != nil {
		return nil, err
	}
	title, err = validateTitle(title)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	todo := &entity.Todo{
		ID:        todoID,
		UserID:    uid,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.todos.Create(ctx, todo); err != nil {
		return nil, err
	}

	if u.publisher != nil {
		if err := u.publisher.PublishTodoCreated(ctx, userID, todoID); err != nil {
			u.logger.Warn("Failed to publish todo.created event", zap.String("todoID", todoID), zap.Error(err))
		}
	}
	return todo, nil
}

// List returns the caller's todos filtered by search and ordered by sort.
// Unknown sort values fall back to newest-first.
func (u *TodoUsecase) List(ctx context.Context, userID, sort, search string) ([]*entity.Todo, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	switch sort {
	case repository.SortNewFirst, repository.SortOldFirst, repository.SortImportantFirst, repository.SortAlphabetically:
	default:
		sort = repository.SortNewFirst
	}
	return u.todos.List(ctx, uid, sort, search)
}

func (u *TodoUsecase) UpdateTitle(ctx context.Context, userID, todoID, title string) error {
	uid, err := parseUserID(userID)
	if err != nil {
		return err
	}
	if err := validateTodoID(todoID); err != nil {
		return err
	}
	title, err = validateTitle(title)
	if err != nil {
		return err
	}
	return u.todos.UpdateTitle(ctx, uid, todoID, title)
}

func (u *TodoUsecase) UpdateCompletion(ctx context.Context, userID, todoID string, isCompleted bool) error {
	uid, err := parseUserID(userID)
	if err != nil {
		return err
	}
	if err := validateTodoID(todoID); err != nil {
		return err
	}
	return u.todos.UpdateCompletion(ctx, uid, todoID, isCompleted)
}

func (u *TodoUsecase) UpdateImportance(ctx context.Context, userID, todoID string, isImportant bool) error {
	uid, err := parseUserID(userID)
	if err != nil {
		return err
	}
	if err := validateTodoID(todoID); err != nil {
		return err
	}
	return u.todos.UpdateImportance(ctx, uid, todoID, isImportant)
}

func (u *TodoUsecase) Delete(ctx context.Context, userID, todoID string) error {
	uid, err := parseUserID(userID)
	if err != nil {
		return err
	}
	if err := validateTodoID(todoID); err != nil {
		return err
	}
	return u.todos.Delete(ctx, uid, todoID)
}
