package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const DefaultChannel = "mandi:events"

// RedisBroadcaster relays events through a redis channel so every API
// instance can push them to its own clients. When redis is unreachable the
// event is delivered to the local hub only.
type RedisBroadcaster struct {
	rdb     *redis.Client
	hub     *Hub
	channel string
	log     *logrus.Logger
}

func NewRedisBroadcaster(rdb *redis.Client, hub *Hub, channel string, log *logrus.Logger) *RedisBroadcaster {
	if channel == "" {
		channel = DefaultChannel
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RedisBroadcaster{rdb: rdb, hub: hub, channel: channel, log: log}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		b.log.WithField("type", ev.Type).WithError(err).Warn("event not encodable")
		b.hub.Publish(ctx, ev)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		b.log.WithField("type", ev.Type).WithError(err).Warn("redis publish failed, delivering locally")
		b.hub.Publish(ctx, ev)
	}
}

// Run subscribes to the channel and feeds the local hub until ctx is done.
func (b *RedisBroadcaster) Run(ctx context.Context) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.log.WithError(err).Warn("dropping malformed event")
				continue
			}
			b.hub.Publish(ctx, ev)
		}
	}
}
