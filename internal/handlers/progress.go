// Package handlers exposes the coordination layer's operations to the
// routing shell: activity recording, streak and leaderboard queries, and
// session caching.
package handlers

import (
	"context"
	"time"

	"github.com/Blockchain-Oracle/sensay-learn-sub001/internal/events"
	"github.com/Blockchain-Oracle/sensay-learn-sub001/internal/leaderboard"
	"github.com/Blockchain-Oracle/sensay-learn-sub001/internal/messaging"
	"github.com/Blockchain-Oracle/sensay-learn-sub001/internal/session"
	"github.com/Blockchain-Oracle/sensay-learn-sub001/internal/streak"
	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// ProgressHandler serves streak, leaderboard, and session operations.
//
// Mutations are applied synchronously so callers see their own writes, and
// additionally published to the activity stream for downstream consumers.
// Both applications are idempotent (same-day streak re-entry, last-write-
// wins scores), so a replayed event cannot corrupt state.
type ProgressHandler struct {
	tracker         *streak.Tracker
	boards          *leaderboard.Service
	sessions        *session.Cache
	publishActivity messaging.Publish[events.ActivityRecorded]
	publishScore    messaging.Publish[events.ScoreUpdated]
	logger          *zap.Logger
}

// NewProgressHandler creates a handler over the coordination components.
func NewProgressHandler(
	tracker *streak.Tracker,
	boards *leaderboard.Service,
	sessions *session.Cache,
	publishActivity messaging.Publish[events.ActivityRecorded],
	publishScore messaging.Publish[events.ScoreUpdated],
	logger *zap.Logger,
) *ProgressHandler {
	return &ProgressHandler{
		tracker:         tracker,
		boards:          boards,
		sessions:        sessions,
		publishActivity: publishActivity,
		publishScore:    publishScore,
		logger:          logger,
	}
}

// RecordActivity records a qualifying study activity and returns the
// resulting streak length.
func (h *ProgressHandler) RecordActivity(ctx context.Context, req *RecordActivityRequest) (*StreakResponse, error) {
	length := h.tracker.RecordActivity(ctx, req.Body.Identifier)

	event := &events.ActivityRecorded{
		Identifier: req.Body.Identifier,
		OccurredAt: time.Now().UTC(),
	}

	if err := h.publishActivity(event); err != nil {
		h.logger.Error("failed to publish activity event",
			zap.String("identifier", req.Body.Identifier),
			zap.Error(err),
		)
	}

	resp := &StreakResponse{}
	resp.Body.Identifier = req.Body.Identifier
	resp.Body.Streak = length

	return resp, nil
}

// GetStreak returns the identity's current streak without recording
// activity.
func (h *ProgressHandler) GetStreak(ctx context.Context, req *GetStreakRequest) (*StreakResponse, error) {
	resp := &StreakResponse{}
	resp.Body.Identifier = req.Identifier
	resp.Body.Streak = h.tracker.Current(ctx, req.Identifier)

	return resp, nil
}

// PutSession caches an opaque session payload for the identity.
func (h *ProgressHandler) PutSession(ctx context.Context, req *PutSessionRequest) (*struct{}, error) {
	ttl := time.Duration(req.Body.TTLSeconds) * time.Second

	h.sessions.Put(ctx, req.Identifier, req.Body.Payload, ttl)

	return nil, nil
}

// GetSession returns the identity's cached session payload, if any.
func (h *ProgressHandler) GetSession(ctx context.Context, req *GetSessionRequest) (*SessionResponse, error) {
	payload, ok := h.sessions.Get(ctx, req.Identifier)
	if !ok {
		return nil, huma.Error404NotFound("no session for identifier")
	}

	resp := &SessionResponse{}
	resp.Body.Payload = payload

	return resp, nil
}

// DeleteSession drops the identity's cached session.
func (h *ProgressHandler) DeleteSession(ctx context.Context, req *DeleteSessionRequest) (*struct{}, error) {
	h.sessions.Delete(ctx, req.Identifier)

	return nil, nil
}

// UpdateScore replaces the identity's score in a category.
func (h *ProgressHandler) UpdateScore(ctx context.Context, req *UpdateScoreRequest) (*struct{}, error) {
	h.boards.UpdateScore(ctx, req.Body.Category, req.Body.Identifier, req.Body.Score)

	event := &events.ScoreUpdated{
		Category:   req.Body.Category,
		Identifier: req.Body.Identifier,
		Score:      req.Body.Score,
		OccurredAt: time.Now().UTC(),
	}

	if err := h.publishScore(event); err != nil {
		h.logger.Error("failed to publish score event",
			zap.String("category", req.Body.Category),
			zap.String("identifier", req.Body.Identifier),
			zap.Error(err),
		)
	}

	return nil, nil
}

// TopN returns the top entries of a category leaderboard.
func (h *ProgressHandler) TopN(ctx context.Context, req *TopNRequest) (*LeaderboardResponse, error) {
	entries := h.boards.TopN(ctx, req.Category, req.Limit)

	resp := &LeaderboardResponse{}
	resp.Body.Category = req.Category
	resp.Body.Entries = make([]LeaderboardEntry, 0, len(entries))

	for _, e := range entries {
		resp.Body.Entries = append(resp.Body.Entries, LeaderboardEntry{ID: e.ID, Score: e.Score})
	}

	return resp, nil
}

// Rank returns the identity's 1-based rank within a category.
func (h *ProgressHandler) Rank(ctx context.Context, req *RankRequest) (*RankResponse, error) {
	rank, ok := h.boards.RankOf(ctx, req.Category, req.Identifier)
	if !ok {
		return nil, huma.Error404NotFound("identifier not on leaderboard")
	}

	resp := &RankResponse{}
	resp.Body.Identifier = req.Identifier
	resp.Body.Rank = rank

	return resp, nil
}
