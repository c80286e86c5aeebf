package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/verif-backoffice/internal/domain"
	"github.com/spec-kit/verif-backoffice/internal/events"
	"github.com/spec-kit/verif-backoffice/internal/persistence"
	"github.com/spec-kit/verif-backoffice/internal/repository"
)

type collected struct {
	mu  sync.Mutex
	ids []string
}

func (c *collected) handle(_ context.Context, e events.Event) error {
	c.mu.Lock()
	c.ids = append(c.ids, string(e.Type)+":"+e.EntityID)
	c.mu.Unlock()
	return nil
}

func (c *collected) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.ids...)
}

func TestArrivalWatcherBaselineThenNewDocuments(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemoryDocumentStore()
	submissions := repository.NewSubmissionRepository(store)
	refunds := repository.NewRefundRepository(store)
	contacts := repository.NewContactRepository(store)

	dispatcher := events.NewInMemoryDispatcher(zaptest.NewLogger(t))
	got := &collected{}
	for _, et := range []events.EventType{events.EventNewSubmission, events.EventNewRefundRequest, events.EventNewContactMessage} {
		dispatcher.Subscribe(et, got.handle)
	}

	t0 := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, submissions.Create(ctx, &domain.Submission{Email: "old@example.com", CreatedAt: t0}))
	require.NoError(t, contacts.Create(ctx, &domain.ContactMessage{Subject: "old", CreatedAt: t0}))

	w := NewArrivalWatcher(time.Minute, ArrivalDependencies{
		SubmissionRepo: submissions,
		RefundRepo:     refunds,
		ContactRepo:    contacts,
		Dispatcher:     dispatcher,
		Logger:         zaptest.NewLogger(t),
	})

	w.Poll(ctx)
	assert.Empty(t, got.snapshot(), "first poll only records the baseline")

	fresh := &domain.Submission{Email: "new@example.com", CreatedAt: t0.Add(time.Minute)}
	require.NoError(t, submissions.Create(ctx, fresh))
	refund := &domain.RefundRequest{ReferenceNumber: "RB-9", SubmittedAt: t0.Add(2 * time.Minute)}
	require.NoError(t, refunds.Create(ctx, refund))
	sameInstant := &domain.ContactMessage{Subject: "same second", CreatedAt: t0}
	require.NoError(t, contacts.Create(ctx, sameInstant))

	w.Poll(ctx)
	assert.ElementsMatch(t, []string{
		"new_submission:" + fresh.ID,
		"new_refund_request:" + refund.ID,
		"new_contact_message:" + sameInstant.ID,
	}, got.snapshot())

	w.Poll(ctx)
	assert.Len(t, got.snapshot(), 3, "documents are announced once")
}

func TestArrivalWatcherRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := NewArrivalWatcher(10*time.Millisecond, ArrivalDependencies{
		SubmissionRepo: repository.NewSubmissionRepository(persistence.NewMemoryDocumentStore()),
	})

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
