package fanout

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const publishTimeout = 2 * time.Second

func channelFor(listingID int64) string {
	return "listing:" + strconv.FormatInt(listingID, 10) + ":events"
}

// RedisBridge fans accepted-bid events out across service instances: local
// publishes go to Redis pub/sub, and a relay loop feeds every message on
// "listing:*:events" into the in-process hub.
type RedisBridge struct {
	rdb *redis.Client
	hub *Hub
}

func NewRedisBridge(rdb *redis.Client, hub *Hub) *RedisBridge {
	return &RedisBridge{rdb: rdb, hub: hub}
}

// PublishBid is fire-and-forget: the network round-trip happens on its own
// goroutine so a bid submission never waits on subscriber I/O.
func (b *RedisBridge) PublishBid(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		zap.L().Warn("fanout.encode", zap.Error(err))
		return
	}

	pubCtx := context.WithoutCancel(ctx)
	go func() {
		pubCtx, cancel := context.WithTimeout(pubCtx, publishTimeout)
		defer cancel()
		if err := b.rdb.Publish(pubCtx, channelFor(ev.ListingID), payload).Err(); err != nil {
			zap.L().Warn("fanout.publish",
				zap.Int64("listing_id", ev.ListingID), zap.Error(err))
		}
	}()
}

// Run relays events published by any instance into the local hub.
// It blocks until ctx is cancelled; start it once at service boot.
func (b *RedisBridge) Run(ctx context.Context) {
	pubsub := b.rdb.PSubscribe(ctx, "listing:*:events")
	defer pubsub.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			// channel format: "listing:<id>:events"
			parts := strings.Split(m.Channel, ":")
			if len(parts) != 3 {
				continue
			}
			id, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				continue
			}
			var ev Event
			if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
				zap.L().Warn("fanout.decode", zap.Error(err))
				continue
			}
			b.hub.Publish(id, ev)
		}
	}
}
