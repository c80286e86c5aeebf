package feed

import (
	"context"
	"sync"

	"github.com/spec-kit/verif-backoffice/internal/domain"
)

const subscriberBuffer = 16

// Feed fans stored notifications out to connected admin dashboards.
type Feed interface {
	Publish(ctx context.Context, n domain.Notification) error
	// Subscribe returns a channel of notifications and a cancel func that closes it.
	Subscribe(ctx context.Context) (<-chan domain.Notification, func(), error)
}

// MemoryFeed delivers notifications inside a single process.
// Slow subscribers miss notifications rather than block publishers.
type MemoryFeed struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan domain.Notification
}

// NewMemoryFeed creates an empty feed.
func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{subs: make(map[int]chan domain.Notification)}
}

func (f *MemoryFeed) Publish(_ context.Context, n domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- n:
		default:
		}
	}
	return nil
}

func (f *MemoryFeed) Subscribe(_ context.Context) (<-chan domain.Notification, func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	ch := make(chan domain.Notification, subscriberBuffer)
	f.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			close(ch)
			f.mu.Unlock()
		})
	}
	return ch, cancel, nil
}
