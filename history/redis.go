package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/GoCodeAlone/eventhub"
)

// redisSink persists records to a Redis sorted set scored by event number,
// or by record time in nanoseconds when Number is 0, connecting with
// redis.Options{Addr, DB}. Query passes FromNum/ToNum to ZRangeByScore as the
// score range; EventType/Source/Mask filtering happens after the range
// fetch, same as the memory sink.
type redisSink struct {
	cfg    Config
	client *redis.Client
	key    string
}

func newRedisSink(cfg Config) (*redisSink, error) {
	addr := cfg.RedisAddr
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: cfg.RedisDB})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("history: redis ping: %w", err)
	}

	return &redisSink{cfg: cfg, client: client, key: "eventhub:history"}, nil
}

func (r *redisSink) Append(ctx context.Context, rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("history: marshaling redis record: %w", err)
	}
	score := float64(rec.Number)
	if rec.Number == 0 {
		score = float64(rec.Recorded.UnixNano())
	}
	return r.client.ZAdd(ctx, r.key, redis.Z{Score: score, Member: payload}).Err()
}

func (r *redisSink) Query(ctx context.Context, q eventhub.HistoryQuery) ([]Record, error) {
	min, max := "-inf", "+inf"
	if q.FromNum != 0 {
		min = fmt.Sprintf("%d", q.FromNum)
	}
	if q.ToNum != 0 {
		max = fmt.Sprintf("%d", q.ToNum)
	}
	members, err := r.client.ZRangeByScore(ctx, r.key, &redis.ZRangeBy{Min: min, Max: max}).Result()
	if err != nil {
		return nil, fmt.Errorf("history: redis range query: %w", err)
	}

	out := make([]Record, 0, len(members))
	for _, m := range members {
		var rec Record
		if err := json.Unmarshal([]byte(m), &rec); err != nil {
			continue
		}
		if matches(rec, q) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *redisSink) Evict(ctx context.Context, olderThan time.Time) int {
	members, err := r.client.ZRangeByScore(ctx, r.key, &redis.ZRangeBy{Min: "-inf", Max: "+inf"}).Result()
	if err != nil {
		return 0
	}
	evicted := 0
	for _, m := range members {
		var rec Record
		if err := json.Unmarshal([]byte(m), &rec); err != nil {
			continue
		}
		if rec.Recorded.Before(olderThan) {
			r.client.ZRem(ctx, r.key, m)
			evicted++
		}
	}
	return evicted
}

func (r *redisSink) Close() error {
	return r.client.Close()
}
