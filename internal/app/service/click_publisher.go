package service

import (
	"encoding/json"

	"github.com/linkhub-app/linkhub/internal/app/model"
	"github.com/nats-io/nats.go"
)

// ClickPublisher fans recorded clicks out on NATS JetStream. The event log in
// Postgres is already durable by the time Publish runs; subscribers only feed
// metrics and rollups.
type ClickPublisher struct {
	js nats.JetStreamContext
}

// NewClickPublisher creates a new click event publisher.
func NewClickPublisher(js nats.JetStreamContext) *ClickPublisher {
	return &ClickPublisher{js: js}
}

// Publish sends one recorded click event to the stream.
func (p *ClickPublisher) Publish(event *model.ClickEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = p.js.Publish(model.ClickStreamSubject, data)
	return err
}
