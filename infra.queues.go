package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Predefinied Queue IDs.
const (
	ReturnsQueue = "returns"
)

// Ensure *redisQueue implements Queuer.
var _ Queuer = (*redisQueue)(nil)

// Queuer describes a queue of completed returns pending archiving.
type Queuer interface {
	Push(ctx context.Context, qid string, record History) error
	Pop(ctx context.Context, qids ...string) (string, History, error)
}

// redisQueue represents a queue which implements the Queuer interface.
type redisQueue struct {
	client *redis.Client
}

func NewRedisQueue(client *redis.Client) Queuer {
	return &redisQueue{client: client}
}

// Push enqueues a history record onto the queue identified by qid.
func (q *redisQueue) Push(ctx context.Context, qid string, record History) error {
	recordBytes, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return q.client.RPush(ctx, qid, recordBytes).Err()
}

// Pop returns the first dequeued history record from the list of queue ids.
func (q *redisQueue) Pop(ctx context.Context, qids ...string) (string, History, error) {
	var record History
	var qid string
	infos, err := q.client.BLPop(ctx, 0*time.Second, qids...).Result()
	if err != nil {
		return qid, record, err
	}

	if err = json.Unmarshal([]byte(infos[1]), &record); err != nil {
		return qid, record, err
	}
	qid = infos[0]
	return qid, record, nil
}
