package worker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Queue is the list-based transport jobs travel on.
type Queue interface {
	// Push prepends data to queue (LPUSH).
	Push(ctx context.Context, queue string, data []byte) error
	// Pop blocks up to timeout for the oldest entry of any queue (BRPOP).
	Pop(ctx context.Context, timeout time.Duration, queues ...string) (queue, data string, err error)
	Len(ctx context.Context, queue string) (int64, error)
}

type redisQueue struct{ rdb *redis.Client }

// NewRedisQueue backs Queue with Redis lists.
func NewRedisQueue(rdb *redis.Client) Queue { return &redisQueue{rdb: rdb} }

func (q *redisQueue) Push(ctx context.Context, queue string, data []byte) error {
	return q.rdb.LPush(ctx, queue, data).Err()
}

func (q *redisQueue) Pop(ctx context.Context, timeout time.Duration, queues ...string) (string, string, error) {
	res, err := q.rdb.BRPop(ctx, timeout, queues...).Result()
	if err != nil {
		return "", "", err
	}
	if len(res) < 2 {
		return "", "", redis.Nil
	}
	return res[0], res[1], nil
}

func (q *redisQueue) Len(ctx context.Context, queue string) (int64, error) {
	return q.rdb.LLen(ctx, queue).Result()
}
