package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Dev-2427/Dev-MyTodo/internal/entity"
)

type TodoRepository interface {
	Create(ctx context.Context, todo *entity.Todo) error
	List(ctx context.Context, userID primitive.ObjectID, sort, search string) ([]*entity.Todo, error)
	UpdateTitle(ctx context.Context, userID primitive.ObjectID, todoID, title string) error
	UpdateCompletion(ctx context.Context, userID primitive.ObjectID, todoID string, isCompleted bool) error
	UpdateImportance(ctx context.Context, userID primitive.ObjectID, todoID string, isImportant bool) error
	Delete(ctx context.Context, userID primitive.ObjectID, todoID string) error
	DeleteAllForUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}
