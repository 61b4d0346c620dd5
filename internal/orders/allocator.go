package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/gang93/pos-backend/pkg/config"
	"github.com/gang93/pos-backend/pkg/redis"
	"gorm.io/gorm"
)

const orderIDCounter = "order_id"

// IDAllocator hands out collision-free order ids. tx is the order's
// transaction; allocators that need the database read through it.
type IDAllocator interface {
	Next(ctx context.Context, tx *gorm.DB) (int64, error)
	Name() string
}

// NewIDAllocator picks the allocator configured for the deployment.
func NewIDAllocator(kind string, repo Repository, counters redis.CounterStore) (IDAllocator, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	switch strings.ToLower(kind) {
	case config.IDAllocatorSequence:
		return &SequenceAllocator{repo: repo}, nil
	case config.IDAllocatorRedis:
		if counters == nil {
			return nil, fmt.Errorf("redis counter store required for %q allocator", kind)
		}
		return &CounterAllocator{repo: repo, counters: counters}, nil
	default:
		return nil, fmt.Errorf("unknown order id allocator %q", kind)
	}
}

// SequenceAllocator draws ids from the orders_order_id_seq Postgres sequence.
type SequenceAllocator struct {
	repo Repository
}

func (a *SequenceAllocator) Name() string { return config.IDAllocatorSequence }

func (a *SequenceAllocator) Next(ctx context.Context, tx *gorm.DB) (int64, error) {
	id, err := a.repo.WithTx(tx).NextSequenceValue(ctx)
	if err != nil {
		return 0, fmt.Errorf("nextval %s: %w", OrderIDSequence, err)
	}
	return id, nil
}

// CounterAllocator increments a Redis counter seeded from the current maximum
// order id the first time it is used.
type CounterAllocator struct {
	repo     Repository
	counters redis.CounterStore
}

func (a *CounterAllocator) Name() string { return config.IDAllocatorRedis }

func (a *CounterAllocator) Next(ctx context.Context, tx *gorm.DB) (int64, error) {
	key := a.counters.CounterKey(orderIDCounter)
	id, err := a.counters.SeededIncr(ctx, key, func(ctx context.Context) (int64, error) {
		return a.repo.WithTx(tx).MaxID(ctx)
	})
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", key, err)
	}
	return id, nil
}
