package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

// EmbedService serves single markets to embeddable widgets. Results are
// kept in a short-lived cache in front of the snapshot and the platforms.
type EmbedService struct {
	cache   domain.MarketCache
	markets SnapshotProvider
	lookups map[domain.Platform]domain.MarketLookup
	logger  *slog.Logger
}

func NewEmbedService(
	cache domain.MarketCache,
	markets SnapshotProvider,
	lookups map[domain.Platform]domain.MarketLookup,
	logger *slog.Logger,
) *EmbedService {
	return &EmbedService{
		cache:   cache,
		markets: markets,
		lookups: lookups,
		logger:  logger.With(slog.String("component", "embed")),
	}
}

// Lookup resolves "{platform}-{nativeId}". Unknown platforms yield
// domain.ErrUnknownPlatform and missing markets domain.ErrNotFound.
func (s *EmbedService) Lookup(ctx context.Context, embedID string) (domain.UnifiedMarket, error) {
	platform, nativeID, err := domain.SplitMarketID(embedID)
	if err != nil {
		return domain.UnifiedMarket{}, fmt.Errorf("embed_service: %q: %w", embedID, err)
	}

	if m, err := s.cache.Get(ctx, embedID); err == nil {
		return m, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		s.logger.WarnContext(ctx, "embed_service: cache get failed",
			slog.String("id", embedID),
			slog.String("error", err.Error()),
		)
	}

	m, ok := s.markets.Snapshot().Market(embedID)
	if !ok {
		lk, has := s.lookups[platform]
		if !has {
			return domain.UnifiedMarket{}, fmt.Errorf("embed_service: %q: %w", embedID, domain.ErrNotFound)
		}
		m, err = lk.GetMarket(ctx, nativeID)
		if err != nil {
			return domain.UnifiedMarket{}, fmt.Errorf("embed_service: fetch %q: %w", embedID, err)
		}
	}

	if err := s.cache.Set(ctx, m); err != nil {
		s.logger.WarnContext(ctx, "embed_service: cache set failed",
			slog.String("id", embedID),
			slog.String("error", err.Error()),
		)
	}
	return m, nil
}
