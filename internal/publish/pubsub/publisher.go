// Package pubsub implements scrape.EventPublisher on Google Cloud Pub/Sub.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"

	"github.com/zaplinks/linkmonitor/internal/scrape"
)

// Publisher pushes link-found events to a Pub/Sub topic.
type Publisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
	logger *zap.Logger
}

// New connects to Pub/Sub and verifies the topic exists.
func New(ctx context.Context, projectID, topicName string, logger *zap.Logger) (*Publisher, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	topic := client.Topic(topicName)
	ok, err := topic.Exists(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("check topic %q: %w", topicName, err)
	}
	if !ok {
		client.Close()
		return nil, fmt.Errorf("topic %q does not exist", topicName)
	}
	return &Publisher{client: client, topic: topic, logger: logger}, nil
}

// linkFoundEvent is the wire shape of a published discovery.
type linkFoundEvent struct {
	URL     string    `json:"url"`
	Source  string    `json:"source"`
	Owner   int64     `json:"owner"`
	FoundAt time.Time `json:"found_at"`
}

// PublishLinkFound publishes one discovery and waits for the server ack.
func (p *Publisher) PublishLinkFound(ctx context.Context, link scrape.Link) error {
	data, err := json.Marshal(linkFoundEvent{
		URL:     link.URL,
		Source:  link.Source,
		Owner:   link.Owner,
		FoundAt: link.FoundAt,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event": "link_found",
		},
	})
	id, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	p.logger.Debug("link event published",
		zap.String("url", link.URL),
		zap.String("message_id", id),
	)
	return nil
}

// Close flushes pending messages and releases the client.
func (p *Publisher) Close() {
	p.topic.Stop()
	p.client.Close() //nolint:errcheck
}
