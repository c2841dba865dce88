package events

import (
	"context"

	"github.com/Blockchain-Oracle/sensay-learn-sub001/internal/leaderboard"
	"github.com/Blockchain-Oracle/sensay-learn-sub001/internal/streak"
	"go.uber.org/zap"
)

// StreakHandler folds ActivityRecorded events into study streaks.
type StreakHandler struct {
	tracker *streak.Tracker
	logger  *zap.Logger
}

// NewStreakHandler creates a handler that records activity against the
// given tracker.
func NewStreakHandler(tracker *streak.Tracker, logger *zap.Logger) *StreakHandler {
	return &StreakHandler{tracker: tracker, logger: logger}
}

// Handle records the activity. The tracker swallows store failures
// internally, so the event is never redelivered for a store outage.
func (h *StreakHandler) Handle(ctx context.Context, event *ActivityRecorded) error {
	length := h.tracker.RecordActivity(ctx, event.Identifier)

	h.logger.Debug("activity recorded",
		zap.String("identifier", event.Identifier),
		zap.Int("streak", length),
	)

	return nil
}

// ScoreHandler applies ScoreUpdated events to category leaderboards.
type ScoreHandler struct {
	boards *leaderboard.Service
	logger *zap.Logger
}

// NewScoreHandler creates a handler that updates the given leaderboard
// service.
func NewScoreHandler(boards *leaderboard.Service, logger *zap.Logger) *ScoreHandler {
	return &ScoreHandler{boards: boards, logger: logger}
}

// Handle replaces the identity's score in the event's category.
func (h *ScoreHandler) Handle(ctx context.Context, event *ScoreUpdated) error {
	h.boards.UpdateScore(ctx, event.Category, event.Identifier, event.Score)

	h.logger.Debug("score updated",
		zap.String("category", event.Category),
		zap.String("identifier", event.Identifier),
		zap.Float64("score", event.Score),
	)

	return nil
}
