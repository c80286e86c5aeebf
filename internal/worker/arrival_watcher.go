package worker

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/verif-backoffice/internal/events"
	"github.com/spec-kit/verif-backoffice/internal/repository"
)

const recentWindow = 50

type arrival struct {
	id    string
	at    time.Time
	event events.Event
}

type arrivalSource struct {
	name  string
	fetch func(ctx context.Context) ([]arrival, error)
}

type watermark struct {
	seeded bool
	at     time.Time
	seen   map[string]struct{}
}

// ArrivalWatcher polls the customer-facing collections and publishes new_* events for
// documents created after the watcher started.
type ArrivalWatcher struct {
	sources    []arrivalSource
	dispatcher events.Dispatcher
	interval   time.Duration
	logger     *zap.Logger

	mu    sync.Mutex
	marks map[string]*watermark
}

// ArrivalDependencies bundles repositories for the watcher.
type ArrivalDependencies struct {
	SubmissionRepo repository.SubmissionRepository
	RefundRepo     repository.RefundRepository
	ContactRepo    repository.ContactRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewArrivalWatcher builds a watcher polling every interval.
func NewArrivalWatcher(interval time.Duration, deps ArrivalDependencies) *ArrivalWatcher {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &ArrivalWatcher{
		dispatcher: deps.Dispatcher,
		interval:   interval,
		logger:     logger,
		marks:      make(map[string]*watermark),
	}
	if deps.SubmissionRepo != nil {
		w.sources = append(w.sources, submissionSource(deps.SubmissionRepo))
	}
	if deps.RefundRepo != nil {
		w.sources = append(w.sources, refundSource(deps.RefundRepo))
	}
	if deps.ContactRepo != nil {
		w.sources = append(w.sources, contactSource(deps.ContactRepo))
	}
	return w
}

// Run polls until ctx is cancelled.
func (w *ArrivalWatcher) Run(ctx context.Context) {
	w.logger.Info("arrival watcher started", zap.Duration("interval", w.interval))
	w.Poll(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("arrival watcher stopped")
			return
		case <-ticker.C:
			w.Poll(ctx)
		}
	}
}

// Poll checks every source once. The first successful poll of a source only records its baseline.
func (w *ArrivalWatcher) Poll(ctx context.Context) {
	for _, src := range w.sources {
		items, err := src.fetch(ctx)
		if err != nil {
			w.logger.Warn("arrival poll failed", zap.String("source", src.name), zap.Error(err))
			continue
		}
		for _, item := range w.advance(src.name, items) {
			if w.dispatcher != nil {
				_ = w.dispatcher.Publish(ctx, item.event)
			}
		}
	}
}

// advance returns the items newer than the watermark, oldest first, and moves the watermark.
func (w *ArrivalWatcher) advance(source string, items []arrival) []arrival {
	w.mu.Lock()
	defer w.mu.Unlock()

	mark, ok := w.marks[source]
	if !ok {
		mark = &watermark{seen: map[string]struct{}{}}
		w.marks[source] = mark
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].at.Before(items[j].at) })

	if !mark.seeded {
		mark.seeded = true
		for _, item := range items {
			mark.observe(item)
		}
		return nil
	}

	var fresh []arrival
	for _, item := range items {
		if item.at.Before(mark.at) {
			continue
		}
		if _, dup := mark.seen[item.id]; dup {
			continue
		}
		fresh = append(fresh, item)
		mark.observe(item)
	}
	return fresh
}

func (m *watermark) observe(item arrival) {
	if item.at.After(m.at) {
		m.at = item.at
		// ids at older timestamps can no longer collide
		m.seen = map[string]struct{}{}
	}
	m.seen[item.id] = struct{}{}
}

func submissionSource(repo repository.SubmissionRepository) arrivalSource {
	return arrivalSource{name: "coupon_submissions", fetch: func(ctx context.Context) ([]arrival, error) {
		list, err := repo.List(ctx, repository.SubmissionFilter{Limit: recentWindow})
		if err != nil {
			return nil, err
		}
		out := make([]arrival, 0, len(list))
		for _, s := range list {
			out = append(out, arrival{id: s.ID, at: s.CreatedAt, event: events.NewEvent(events.EventNewSubmission, s.ID, events.Actor{}, events.NewSubmissionPayload{
				Email:       s.Email,
				Type:        s.Type,
				CouponCount: len(s.Coupons),
				TotalAmount: s.TotalAmount().StringFixed(2),
			})})
		}
		return out, nil
	}}
}

func refundSource(repo repository.RefundRepository) arrivalSource {
	return arrivalSource{name: "refund_requests", fetch: func(ctx context.Context) ([]arrival, error) {
		list, err := repo.List(ctx, repository.RefundFilter{Limit: recentWindow})
		if err != nil {
			return nil, err
		}
		out := make([]arrival, 0, len(list))
		for _, r := range list {
			out = append(out, arrival{id: r.ID, at: r.SubmittedAt, event: events.NewEvent(events.EventNewRefundRequest, r.ID, events.Actor{}, events.NewRefundRequestPayload{
				ReferenceNumber: r.ReferenceNumber,
				FullName:        r.FullName,
				TotalAmount:     r.TotalAmount.StringFixed(2),
			})})
		}
		return out, nil
	}}
}

func contactSource(repo repository.ContactRepository) arrivalSource {
	return arrivalSource{name: "contact_messages", fetch: func(ctx context.Context) ([]arrival, error) {
		list, err := repo.List(ctx, false)
		if err != nil {
			return nil, err
		}
		if len(list) > recentWindow {
			list = list[:recentWindow]
		}
		out := make([]arrival, 0, len(list))
		for _, m := range list {
			out = append(out, arrival{id: m.ID, at: m.CreatedAt, event: events.NewEvent(events.EventNewContactMessage, m.ID, events.Actor{}, events.NewContactMessagePayload{
				Name:    m.Name,
				Email:   m.Email,
				Subject: m.Subject,
			})})
		}
		return out, nil
	}}
}
