package progress

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const relayChannel = "droneplan:progress"

type relayEnvelope struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
}

// RedisRelay mirrors local progress events onto a Redis channel and feeds
// events published by other instances into the local hub, so listeners on
// any replica see the full stream.
type RedisRelay struct {
	hub    *Hub
	rdb    *redis.Client
	origin string
}

func NewRedisRelay(hub *Hub, url string) (*RedisRelay, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	r := &RedisRelay{
		hub:    hub,
		rdb:    redis.NewClient(opt),
		origin: uuid.NewString(),
	}
	go r.subscribe()
	return r, nil
}

// Active reports local listeners only. Planning on this instance keeps
// emitting for remote listeners via the remote instance's own planner.
func (r *RedisRelay) Active() bool { return r.hub.Active() }

// Broadcast fans out locally and publishes a copy. Publish is fire and
// forget so planning never stalls on Redis.
func (r *RedisRelay) Broadcast(evt Event) {
	r.hub.Broadcast(evt)
	data, err := json.Marshal(relayEnvelope{Origin: r.origin, Event: evt})
	if err != nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := r.rdb.Publish(ctx, relayChannel, data).Err(); err != nil {
			log.Printf("progress relay publish failed: %v", err)
		}
	}()
}

func (r *RedisRelay) subscribe() {
	sub := r.rdb.Subscribe(context.Background(), relayChannel)
	for msg := range sub.Channel() {
		var env relayEnvelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			continue
		}
		if env.Origin == r.origin {
			continue
		}
		r.hub.Broadcast(env.Event)
	}
}
