// Package nats publishes account and todo lifecycle events. Publishing is
// best effort: a failed publish is logged by the caller, never surfaced to
// the user.
package nats

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
)

const (
	SubjectUserRegistered = "user.registered"
	SubjectUserDeleted    = "user.deleted"
	SubjectTodoCreated    = "todo.created"
)

type Publisher struct {
	conn *nats.Conn
}

func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn}, nil
}

func (p *Publisher) Publish(ctx context.Context, subject string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, jsonData)
}

func (p *Publisher) Close() {
	p.conn.Close()
}
