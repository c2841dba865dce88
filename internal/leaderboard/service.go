// Package leaderboard maintains per-category ranked score sets in the
// shared key-value store.
package leaderboard

import (
	"context"

	"github.com/Blockchain-Oracle/sensay-learn-sub001/internal/kv"
	"go.uber.org/zap"
)

const keyPrefix = "leaderboard:"

// Entry is one ranked identity in a category.
type Entry struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Service answers top-N and rank queries over per-category sorted sets.
// Each identity holds at most one score per category; updating replaces
// the previous score rather than accumulating it.
type Service struct {
	store  kv.Store
	logger *zap.Logger
}

// NewService creates a leaderboard service on top of the given store.
func NewService(store kv.Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// UpdateScore sets identifier's score in category. Last write wins. Store
// failures are logged and swallowed.
func (s *Service) UpdateScore(ctx context.Context, category, identifier string, score float64) {
	err := s.store.SortedSetUpsert(ctx, keyPrefix+category, identifier, score)
	if err != nil {
		s.logger.Warn("score update failed",
			zap.String("category", category),
			zap.String("identifier", identifier),
			zap.Error(err),
		)
	}
}

// TopN returns up to n entries of category ordered by descending score.
// Store failures return an empty leaderboard.
func (s *Service) TopN(ctx context.Context, category string, n int64) []Entry {
	if n <= 0 {
		return []Entry{}
	}

	members, err := s.store.SortedSetRangeDesc(ctx, keyPrefix+category, 0, n-1)
	if err != nil {
		s.logger.Warn("leaderboard read failed",
			zap.String("category", category),
			zap.Error(err),
		)

		return []Entry{}
	}

	entries := make([]Entry, 0, len(members))
	for _, m := range members {
		entries = append(entries, Entry{ID: m.ID, Score: m.Score})
	}

	return entries
}

// RankOf returns identifier's 1-based rank within category, or ok=false
// when the identifier is absent or the store is unreachable.
//
// The rank is found by fetching the whole descending range and scanning
// for the identifier, so the cost grows linearly with the set size. That
// is acceptable while category sets stay small; large deployments would
// need a native rank primitive instead.
func (s *Service) RankOf(ctx context.Context, category, identifier string) (int64, bool) {
	members, err := s.store.SortedSetRangeDesc(ctx, keyPrefix+category, 0, -1)
	if err != nil {
		s.logger.Warn("rank read failed",
			zap.String("category", category),
			zap.String("identifier", identifier),
			zap.Error(err),
		)

		return 0, false
	}

	for i, m := range members {
		if m.ID == identifier {
			return int64(i) + 1, true
		}
	}

	return 0, false
}
