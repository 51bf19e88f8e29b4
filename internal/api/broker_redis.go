package api

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

type EventBroker interface {
	Subscribe(jobID string) chan JobEvent
	Unsubscribe(jobID string, ch chan JobEvent)
	Publish(jobID string, evt JobEvent)
}

// In-memory broker already implemented in broker.go and satisfies EventBroker

// RedisBroker implements EventBroker over Redis Pub/Sub so job streams work
// across API replicas. Each fan-out channel is closed only by its reader
// goroutine, after the underlying PubSub is closed; Unsubscribe must never
// close it directly or a concurrent publish would panic.
type RedisBroker struct {
	rdb  *redis.Client
	mu   sync.Mutex
	subs map[chan JobEvent]*redis.PubSub
}

func NewRedisBroker() (*RedisBroker, error) {
	url := os.Getenv("REDIS_URL")
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	return &RedisBroker{rdb: rdb, subs: map[chan JobEvent]*redis.PubSub{}}, nil
}

func (b *RedisBroker) Subscribe(jobID string) chan JobEvent {
	ch := make(chan JobEvent, 16)
	ctx := context.Background()
	ps := b.rdb.Subscribe(ctx, b.chanName(jobID))
	// initial consume to ensure subscription
	_, _ = ps.Receive(ctx)
	b.mu.Lock()
	b.subs[ch] = ps
	b.mu.Unlock()
	go func() {
		defer close(ch)
		for msg := range ps.Channel() {
			var evt JobEvent
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err == nil {
				select {
				case ch <- evt:
				default:
				}
			}
		}
	}()
	return ch
}

func (b *RedisBroker) Unsubscribe(jobID string, ch chan JobEvent) {
	b.mu.Lock()
	ps := b.subs[ch]
	delete(b.subs, ch)
	b.mu.Unlock()
	if ps != nil {
		// Closing the PubSub ends ps.Channel(), which lets the reader
		// goroutine exit and close ch.
		_ = ps.Close()
	}
}

func (b *RedisBroker) Publish(jobID string, evt JobEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	data, _ := json.Marshal(evt)
	_ = b.rdb.Publish(ctx, b.chanName(jobID), data).Err()
}

func (b *RedisBroker) chanName(jobID string) string { return "job:" + jobID }
