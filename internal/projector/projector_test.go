package projector

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakmart/orders-backend/internal/config"
	"github.com/oakmart/orders-backend/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCfg() config.ProjectorConfig {
	return config.ProjectorConfig{
		BatchSize:    10,
		PollInterval: time.Millisecond,
		MaxBackoff:   10 * time.Millisecond,
	}
}

// fakeStore is an in-memory outbox with the same fetch-by-status semantics
// as the real one. The mutex keeps Run tests race-free.
type fakeStore struct {
	mu      sync.Mutex
	entries []domain.OutboxEntry

	fetchErr error
	markErr  error
}

func (s *fakeStore) setFetchErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchErr = err
}

func (s *fakeStore) FetchPending(_ context.Context, limit int) ([]domain.OutboxEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	var out []domain.OutboxEntry
	for _, e := range s.entries {
		if e.Status != domain.OutboxStatusDelivered {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeStore) MarkDelivered(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markErr != nil {
		return s.markErr
	}
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i].Status = domain.OutboxStatusDelivered
		}
	}
	return nil
}

func (s *fakeStore) MarkFailed(_ context.Context, id int64, cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i].Status = domain.OutboxStatusFailed
			s.entries[i].Attempts++
			msg := cause.Error()
			s.entries[i].LastError = &msg
		}
	}
	return nil
}

func entry(id int64, orderID domain.OrderID, topic string) domain.OutboxEntry {
	return domain.OutboxEntry{
		ID:      id,
		OrderID: orderID,
		Topic:   topic,
		Status:  domain.OutboxStatusPending,
	}
}

func TestPublishAll_DeliversInOrder(t *testing.T) {
	t.Parallel()

	orderID := domain.NewOrderID()
	store := &fakeStore{entries: []domain.OutboxEntry{
		entry(1, orderID, domain.TopicOrderCreated),
		entry(2, orderID, domain.TopicOrderPaid),
		entry(3, orderID, domain.TopicOrderCancelled),
	}}

	var delivered []string
	p := New(testLogger(), store, testCfg())
	handler := func(_ context.Context, e domain.OutboxEntry) error {
		delivered = append(delivered, e.Topic)
		return nil
	}
	p.Register(domain.TopicOrderCreated, handler)
	p.Register(domain.TopicOrderPaid, handler)
	p.Register(domain.TopicOrderCancelled, handler)

	n, err := p.PublishAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{domain.TopicOrderCreated, domain.TopicOrderPaid, domain.TopicOrderCancelled}, delivered)

	for _, e := range store.entries {
		assert.Equal(t, domain.OutboxStatusDelivered, e.Status)
	}
}

func TestPublishAll_FailureBlocksLaterEntriesOfSameAggregate(t *testing.T) {
	t.Parallel()

	blockedOrder := domain.NewOrderID()
	otherOrder := domain.NewOrderID()
	store := &fakeStore{entries: []domain.OutboxEntry{
		entry(1, blockedOrder, domain.TopicOrderCreated),
		entry(2, blockedOrder, domain.TopicOrderPaid),
		entry(3, otherOrder, domain.TopicOrderCreated),
	}}

	var paidDelivered bool
	p := New(testLogger(), store, testCfg())
	p.Register(domain.TopicOrderCreated, func(_ context.Context, e domain.OutboxEntry) error {
		if e.OrderID == blockedOrder {
			return errors.New("projection store down")
		}
		return nil
	})
	p.Register(domain.TopicOrderPaid, func(_ context.Context, e domain.OutboxEntry) error {
		paidDelivered = true
		return nil
	})

	n, err := p.PublishAll(context.Background())
	require.NoError(t, err)

	// Only the healthy aggregate's entry is delivered; the paid event must
	// not overtake its failed created event.
	assert.Equal(t, 1, n)
	assert.False(t, paidDelivered)

	assert.Equal(t, domain.OutboxStatusFailed, store.entries[0].Status)
	assert.Equal(t, 1, store.entries[0].Attempts)
	require.NotNil(t, store.entries[0].LastError)
	assert.Contains(t, *store.entries[0].LastError, "projection store down")

	assert.Equal(t, domain.OutboxStatusPending, store.entries[1].Status)
	assert.Equal(t, domain.OutboxStatusDelivered, store.entries[2].Status)
}

func TestPublishAll_TerminatesOnPermanentFailure(t *testing.T) {
	t.Parallel()

	// FAILED entries are immediately retry-eligible, so a handler that
	// never succeeds would spin a naive drain forever.
	store := &fakeStore{entries: []domain.OutboxEntry{
		entry(1, domain.NewOrderID(), domain.TopicOrderCreated),
	}}

	calls := 0
	p := New(testLogger(), store, testCfg())
	p.Register(domain.TopicOrderCreated, func(_ context.Context, _ domain.OutboxEntry) error {
		calls++
		return errors.New("always failing")
	})

	done := make(chan struct{})
	var n int
	var err error
	go func() {
		n, err = p.PublishAll(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("PublishAll did not terminate")
	}

	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, calls)
}

func TestPublishAll_UnknownTopicIsMarkedFailed(t *testing.T) {
	t.Parallel()

	store := &fakeStore{entries: []domain.OutboxEntry{
		entry(1, domain.NewOrderID(), "order.unknown"),
	}}

	p := New(testLogger(), store, testCfg())
	n, err := p.PublishAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, domain.OutboxStatusFailed, store.entries[0].Status)
}

func TestPublishAll_FetchErrorPropagates(t *testing.T) {
	t.Parallel()

	store := &fakeStore{fetchErr: errors.New("connection refused")}
	p := New(testLogger(), store, testCfg())

	_, err := p.PublishAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestPublishAll_MarkDeliveredErrorDoesNotCount(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		entries: []domain.OutboxEntry{entry(1, domain.NewOrderID(), domain.TopicOrderCreated)},
		markErr: errors.New("write failed"),
	}

	handled := 0
	p := New(testLogger(), store, testCfg())
	p.Register(domain.TopicOrderCreated, func(_ context.Context, _ domain.OutboxEntry) error {
		handled++
		return nil
	})

	n, err := p.PublishAll(context.Background())
	require.NoError(t, err)

	// The handler ran but the entry stays undelivered; it will be handled
	// again later, which at-least-once delivery permits.
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, handled)
	assert.Equal(t, domain.OutboxStatusPending, store.entries[0].Status)
}

func TestRun_StopsOnCancel(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	p := New(testLogger(), store, testCfg())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRun_RecoversFromFetchErrors(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		entries:  []domain.OutboxEntry{entry(1, domain.NewOrderID(), domain.TopicOrderCreated)},
		fetchErr: errors.New("temporarily down"),
	}

	delivered := make(chan struct{})
	p := New(testLogger(), store, testCfg())
	p.Register(domain.TopicOrderCreated, func(_ context.Context, _ domain.OutboxEntry) error {
		close(delivered)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	// Let a few failing fetches back off, then heal the store.
	time.Sleep(20 * time.Millisecond)
	store.setFetchErr(nil)

	select {
	case <-delivered:
	case <-time.After(5 * time.Second):
		t.Fatal("entry not delivered after store recovered")
	}
}
