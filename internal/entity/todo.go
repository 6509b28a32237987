package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Todo is one user-owned work item. The ID is supplied by the client on
// creation (the web client generates it so the item can render before the
// request round-trips).
type Todo struct {
	ID          string
	UserID      primitive.ObjectID
	Title       string
	IsCompleted bool
	IsImportant bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
