package alerting

import (
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

// ConsumerGroup is the Redis stream consumer group shared by all replicas,
// so each notification is delivered by exactly one of them.
const ConsumerGroup = "candor-webhooks"

// PubSub bundles both halves of the transport.
type PubSub struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	Backend    string
}

// Close closes both halves.
func (p *PubSub) Close() error {
	pubErr := p.Publisher.Close()
	if p.Backend == "gochannel" {
		// Same object on both sides
		return pubErr
	}
	subErr := p.Subscriber.Close()
	if pubErr != nil {
		return pubErr
	}
	return subErr
}

// NewPubSub returns a Redis stream transport when client is non-nil, or an
// in-process channel otherwise.
func NewPubSub(client redis.UniversalClient, logger *slog.Logger) (*PubSub, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	if client == nil {
		ch := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
		}, wmLogger)
		return &PubSub{Publisher: ch, Subscriber: ch, Backend: "gochannel"}, nil
	}

	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: client,
	}, wmLogger)
	if err != nil {
		return nil, err
	}

	subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        client,
		ConsumerGroup: ConsumerGroup,
	}, wmLogger)
	if err != nil {
		_ = publisher.Close()
		return nil, err
	}

	return &PubSub{Publisher: publisher, Subscriber: subscriber, Backend: "redis"}, nil
}
