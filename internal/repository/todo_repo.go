package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/Dev-2427/Dev-MyTodo/internal/entity"
)

var (
	ErrTodoNotFound  = errors.New("todo not found")
	ErrDuplicateTodo = errors.New("todo id already exists")
)

// Sort orders accepted by the todo list operation.
const (
	SortNewFirst       = "newfirst"
	SortOldFirst       = "oldfirst"
	SortImportantFirst = "importantfirst"
	SortAlphabetically = "alphabetically"
)

type mongoTodo struct {
	ID          string             `bson:"_id"`
	UserID      primitive.ObjectID `bson:"user_id"`
	Title       string             `bson:"title"`
	IsCompleted bool               `bson:"is_completed"`
	IsImportant bool               `bson:"is_important"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (m *mongoTodo) toEntity() *entity.Todo {
	return &entity.Todo{
		ID:          m.ID,
		UserID:      m.UserID,
		Title:       m.Title,
		IsCompleted: m.IsCompleted,
		IsImportant: m.IsImportant,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type TodoRepository struct {
	db     *mongo.Database
	logger *zap.Logger
}

func NewTodoRepository(db *mongo.Database, logger *zap.Logger) *TodoRepository {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	todoCollection := db.Collection("todos")
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}
	_, err := todoCollection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Warn("Failed to create indexes for todos collection (may already exist)", zap.Error(err))
	}

	return &TodoRepository{
		db:     db,
		logger: logger.Named("TodoRepository"),
	}
}

func (r *TodoRepository) todos() *mongo.Collection {
	return r.db.Collection("todos")
}

// sortSpec maps a sort order name to a Mongo sort document. Unknown names
// fall back to newest first.
func sortSpec(sort string) bson.D {
	switch sort {
	case SortOldFirst:
		return bson.D{{Key: "created_at", Value: 1}}
	case SortImportantFirst:
		return bson.D{{Key: "is_important", Value: -1}, {Key: "created_at", Value: -1}}
	case SortAlphabetically:
		return bson.D{{Key: "title", Value: 1}}
	case SortNewFirst:
		return bson.D{{Key: "created_at", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

// listFilter builds the owner filter, OR-extended with one case-insensitive
// title regex per search word.
func listFilter(userID primitive.ObjectID, search string) bson.M {
	filter := bson.M{"user_id": userID}

	search = strings.TrimSpace(search)
	if search == "" {
		return filter
	}

	words := strings.Fields(search)
	regexFilters := make([]bson.M, 0, len(words))
	for _, word := range words {
		regexFilters = append(regexFilters, bson.M{
			"title": bson.M{"$regex": word, "$options": "i"},
		})
	}
	filter["$or"] = regexFilters
	return filter
}

func (r *TodoRepository) Create(ctx context.Context, todo *entity.Todo) error {
	now := time.Now()
	dbTodo := &mongoTodo{
		ID:          todo.ID,
		UserID:      todo.UserID,
		Title:       todo.Title,
		IsCompleted: todo.IsCompleted,
		IsImportant: todo.IsImportant,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := r.todos().InsertOne(ctx, dbTodo)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Warn("Duplicate todo id", zap.String("todoID", todo.ID))
			return ErrDuplicateTodo
		}
		r.logger.Error("Database error creating todo", zap.String("todoID", todo.ID), zap.Error(err))
		return err
	}
	return nil
}

// List returns the user's todos ordered by the requested sort, optionally
// narrowed by a free-text title search. Alphabetical ordering is
// case-insensitive via collation.
func (r *TodoRepository) List(ctx context.Context, userID primitive.ObjectID, sort, search string) ([]*entity.Todo, error) {
	findOptions := options.Find().
		SetSort(sortSpec(sort)).
		SetCollation(&options.Collation{Locale: "en", Strength: 1})

	cursor, err := r.todos().Find(ctx, listFilter(userID, search), findOptions)
	if err != nil {
		r.logger.Error("Database error listing todos", zap.String("userID", userID.Hex()), zap.Error(err))
		return nil, err
	}
	defer cursor.Close(ctx)

	var dbTodos []*mongoTodo
	if err = cursor.All(ctx, &dbTodos); err != nil {
		r.logger.Error("Error decoding todos", zap.String("userID", userID.Hex()), zap.Error(err))
		return nil, err
	}

	todos := make([]*entity.Todo, 0, len(dbTodos))
	for _, dbTodo := range dbTodos {
		todos = append(todos, dbTodo.toEntity())
	}
	return todos, nil
}

// updateOwned applies an update to a todo only if it belongs to the user.
func (r *TodoRepository) updateOwned(ctx context.Context, userID primitive.ObjectID, todoID string, set bson.M) error {
	set["updated_at"] = time.Now()
	result, err := r.todos().UpdateOne(ctx,
		bson.M{"_id": todoID, "user_id": userID},
		bson.M{"$set": set},
	)
	if err != nil {
		r.logger.Error("Database error updating todo", zap.String("todoID", todoID), zap.Error(err))
		return err
	}
	if result.MatchedCount == 0 {
		return ErrTodoNotFound
	}
	return nil
}

func (r *TodoRepository) UpdateTitle(ctx context.Context, userID primitive.ObjectID, todoID, title string) error {
	return r.updateOwned(ctx, userID, todoID, bson.M{"title": title})
}

func (r *TodoRepository) UpdateCompletion(ctx context.Context, userID primitive.ObjectID, todoID string, isCompleted bool) error {
	return r.updateOwned(ctx, userID, todoID, bson.M{"is_completed": isCompleted})
}

func (r *TodoRepository) UpdateImportance(ctx context.Context, userID primitive.ObjectID, todoID string, isImportant bool) error {
	return r.updateOwned(ctx, userID, todoID, bson.M{"is_important": isImportant})
}

func (r *TodoRepository) Delete(ctx context.Context, userID primitive.ObjectID, todoID string) error {
	result, err := r.todos().DeleteOne(ctx, bson.M{"_id": todoID, "user_id": userID})
	if err != nil {
		r.logger.Error("Database error deleting todo", zap.String("todoID", todoID), zap.Error(err))
		return err
	}
	if result.DeletedCount == 0 {
		return ErrTodoNotFound
	}
	return nil
}

// DeleteAllForUser removes every todo owned by the user. Used by the account
// deletion cascade.
func (r *TodoRepository) DeleteAllForUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	result, err := r.todos().DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		r.logger.Error("Database error deleting user's todos", zap.String("userID", userID.Hex()), zap.Error(err))
		return 0, err
	}
	r.logger.Info("Deleted user's todos", zap.String("userID", userID.Hex()), zap.Int64("count", result.DeletedCount))
	return result.DeletedCount, nil
}
