package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fixedNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type fakeSource struct {
	platform domain.Platform
	markets  []domain.UnifiedMarket
	err      error
	history  []domain.HistoryPoint
	histErr  error
	lookups  int
}

func (f *fakeSource) Platform() domain.Platform { return f.platform }

func (f *fakeSource) FetchMarkets(context.Context) ([]domain.UnifiedMarket, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.markets, nil
}

func (f *fakeSource) GetMarket(_ context.Context, nativeID string) (domain.UnifiedMarket, error) {
	f.lookups++
	id := domain.MarketID(f.platform, nativeID)
	for _, m := range f.markets {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.UnifiedMarket{}, domain.ErrNotFound
}

func (f *fakeSource) History(context.Context, string, domain.HistoryRange) ([]domain.HistoryPoint, error) {
	return f.history, f.histErr
}

type staticSnapshot struct{ snap *domain.Snapshot }

func (s staticSnapshot) Snapshot() *domain.Snapshot { return s.snap }

type recordingBus struct {
	mu   sync.Mutex
	msgs map[string][][]byte
}

func (b *recordingBus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.msgs == nil {
		b.msgs = map[string][][]byte{}
	}
	b.msgs[channel] = append(b.msgs[channel], payload)
	return nil
}

func (b *recordingBus) Subscribe(context.Context, string) (<-chan []byte, error) {
	return make(chan []byte), nil
}

func (b *recordingBus) count(channel string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.msgs[channel])
}

type recordingSender struct {
	mu     sync.Mutex
	titles []string
}

func (r *recordingSender) Send(_ context.Context, title, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, title)
	return nil
}

func (r *recordingSender) Name() string { return "recording" }

func (r *recordingSender) sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.titles...)
}

func market(p domain.Platform, native, question string, prob, volume float64) domain.UnifiedMarket {
	return domain.UnifiedMarket{
		ID:          domain.MarketID(p, native),
		Question:    question,
		Platform:    p,
		Probability: prob,
		Volume:      volume,
		Category:    domain.CategoryPolitics,
	}
}
