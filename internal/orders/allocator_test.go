package orders

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gang93/pos-backend/pkg/config"
	"github.com/gang93/pos-backend/pkg/db/dbtest"
	"gorm.io/gorm"
)

type fakeCounters struct {
	mu     sync.Mutex
	values map[string]int64
	seeded int
}

func newFakeCounters() *fakeCounters {
	return &fakeCounters{values: map[string]int64{}}
}

func (f *fakeCounters) CounterKey(name string) string { return "pos:counter:" + name }

func (f *fakeCounters) SeededIncr(ctx context.Context, key string, seed func(context.Context) (int64, error)) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[key]; !ok {
		start, err := seed(ctx)
		if err != nil {
			return 0, err
		}
		f.seeded++
		f.values[key] = start
	}
	f.values[key]++
	return f.values[key], nil
}

type sequenceRepo struct {
	Repository
	mu   sync.Mutex
	next int64
	err  error
}

func (s *sequenceRepo) WithTx(*gorm.DB) Repository { return s }

func (s *sequenceRepo) MaxID(context.Context) (int64, error) { return 0, nil }

func (s *sequenceRepo) NextSequenceValue(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.next++
	return s.next, nil
}

func TestNewIDAllocatorSelectsKind(t *testing.T) {
	repo := &sequenceRepo{}
	seq, err := NewIDAllocator("SEQUENCE", repo, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seq.Name() != config.IDAllocatorSequence {
		t.Fatalf("expected sequence allocator, got %s", seq.Name())
	}

	if _, err := NewIDAllocator(config.IDAllocatorRedis, repo, nil); err == nil {
		t.Fatal("expected redis allocator without counters to fail")
	}
	counter, err := NewIDAllocator(config.IDAllocatorRedis, repo, newFakeCounters())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counter.Name() != config.IDAllocatorRedis {
		t.Fatalf("expected redis allocator, got %s", counter.Name())
	}

	if _, err := NewIDAllocator("max-plus-one", repo, nil); err == nil {
		t.Fatal("expected unknown allocator to fail")
	}
	if _, err := NewIDAllocator(config.IDAllocatorSequence, nil, nil); err == nil {
		t.Fatal("expected nil repository to fail")
	}
}

func TestSequenceAllocatorWrapsErrors(t *testing.T) {
	boom := errors.New("relation does not exist")
	alloc, err := NewIDAllocator(config.IDAllocatorSequence, &sequenceRepo{err: boom}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := alloc.Next(context.Background(), nil); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped sequence error, got %v", err)
	}
}

func TestCounterAllocatorSeedsFromMaxOrderID(t *testing.T) {
	conn := dbtest.Open(t)
	seedOrders(t, conn)
	counters := newFakeCounters()
	alloc, err := NewIDAllocator(config.IDAllocatorRedis, NewRepository(conn), counters)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	first, err := alloc.Next(ctx, conn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := alloc.Next(ctx, conn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != 4 || second != 5 {
		t.Fatalf("expected 4 then 5 after max id 3, got %d and %d", first, second)
	}
	if counters.seeded != 1 {
		t.Fatalf("expected a single seed, got %d", counters.seeded)
	}
}

func TestAllocatorsHandOutDistinctIDsConcurrently(t *testing.T) {
	allocators := map[string]IDAllocator{
		"sequence": &SequenceAllocator{repo: &sequenceRepo{}},
		"redis":    &CounterAllocator{repo: &sequenceRepo{}, counters: newFakeCounters()},
	}
	for name, alloc := range allocators {
		t.Run(name, func(t *testing.T) {
			const callers = 50
			ids := make(chan int64, callers)
			var wg sync.WaitGroup
			for i := 0; i < callers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					id, err := alloc.Next(context.Background(), nil)
					if err != nil {
						t.Errorf("unexpected error: %v", err)
						return
					}
					ids <- id
				}()
			}
			wg.Wait()
			close(ids)

			seen := map[int64]bool{}
			for id := range ids {
				if seen[id] {
					t.Fatalf("duplicate id %d", id)
				}
				seen[id] = true
			}
			if len(seen) != callers {
				t.Fatalf("expected %d distinct ids, got %d", callers, len(seen))
			}
		})
	}
}
