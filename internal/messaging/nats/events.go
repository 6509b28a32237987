package nats

import (
	"context"
	"time"
)

type userEvent struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type todoEvent struct {
	UserID     string    `json:"user_id"`
	TodoID     string    `json:"todo_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Events adapts the raw publisher to the lifecycle events the usecases emit.
type Events struct {
	publisher *Publisher
}

func NewEvents(publisher *Publisher) *Events {
	return &Events{publisher: publisher}
}

func (e *Events) PublishUserRegistered(ctx context.Context, userID, email string) error {
	return e.publisher.Publish(ctx, SubjectUserRegistered, userEvent{UserID: userID, Email: email, OccurredAt: time.Now()})
}

func (e *Events) PublishUserDeleted(ctx context.Context, userID string) error {
	return e.publisher.Publish(ctx, SubjectUserDeleted, userEvent{UserID: userID, OccurredAt: time.Now()})
}

func (e *Events) PublishTodoCreated(ctx context.Context, userID, todoID string) error {
	return e.publisher.Publish(ctx, SubjectTodoCreated, todoEvent{UserID: userID, TodoID: todoID, OccurredAt: time.Now()})
}
