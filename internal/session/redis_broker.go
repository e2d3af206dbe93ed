package session

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const sessionEndedChannel = "auth:session-ended"

type redisPubSubClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// RedisBroker publica en Redis y reparte a los suscriptores locales de cada instancia.
type RedisBroker struct {
	client redisPubSubClient
	local  *MemoryBroker
	logger *zap.Logger
}

func NewRedisBroker(client *redis.Client, logger *zap.Logger) *RedisBroker {
	if client == nil {
		return newRedisBroker(nil, logger)
	}
	return newRedisBroker(client, logger)
}

func newRedisBroker(client redisPubSubClient, logger *zap.Logger) *RedisBroker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBroker{client: client, local: NewMemoryBroker(), logger: logger}
}

func (b *RedisBroker) Publish(ctx context.Context, userID string) error {
	if b.client == nil {
		return b.local.Publish(ctx, userID)
	}
	return b.client.Publish(ctx, sessionEndedChannel, userID).Err()
}

func (b *RedisBroker) Subscribe(userID string, fn func()) func() {
	return b.local.Subscribe(userID, fn)
}

// Run escucha el canal hasta que ctx se cancela.
func (b *RedisBroker) Run(ctx context.Context) {
	if b.client == nil {
		return
	}
	pubsub := b.client.Subscribe(ctx, sessionEndedChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				b.logger.Warn("session channel closed")
				return
			}
			b.handle(msg.Payload)
		}
	}
}

func (b *RedisBroker) handle(payload string) {
	b.logger.Debug("session ended event", zap.String("user_id", payload))
	b.local.dispatch(payload)
}
