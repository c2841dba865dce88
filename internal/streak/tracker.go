// Package streak computes consecutive-day study streaks per identity.
//
// Day boundaries use UTC everywhere. The recorded date and the streak
// length live in two separate keys and are updated by a plain
// read-modify-write sequence, so two concurrent activity records for the
// same identity on a boundary day can race; at day granularity the window
// is considered low-impact.
package streak

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/Blockchain-Oracle/sensay-learn-sub001/internal/kv"
	"go.uber.org/zap"
)

const (
	streakKeyPrefix  = "streak:"
	lastDayKeyPrefix = "last_study:"
	dayFormat        = "2006-01-02"
)

// Tracker records study activity and maintains each identity's streak.
type Tracker struct {
	store  kv.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewTracker creates a streak tracker on top of the given store.
func NewTracker(store kv.Store, logger *zap.Logger) *Tracker {
	return NewTrackerWithClock(store, logger, time.Now)
}

// NewTrackerWithClock creates a tracker with an injected clock. Tests use
// this to step through calendar days without sleeping.
func NewTrackerWithClock(store kv.Store, logger *zap.Logger, now func() time.Time) *Tracker {
	return &Tracker{store: store, logger: logger, now: now}
}

// RecordActivity records a qualifying activity for identifier and returns
// the resulting streak length. Calling it again on the same calendar day
// leaves the streak unchanged; activity on the day after the last recorded
// one extends the streak by one; anything else (first activity, a gap of
// two or more days, or a recorded day in the future from clock skew)
// starts a fresh streak of one.
func (t *Tracker) RecordActivity(ctx context.Context, identifier string) int {
	today := t.now().UTC().Truncate(24 * time.Hour)

	lastDay, hasLast := t.readDay(ctx, identifier)
	current := t.Current(ctx, identifier)

	if hasLast && lastDay.Equal(today) {
		if current > 0 {
			return current
		}

		// The day marker survived a lost streak value. One is the only
		// length still provable from today's activity.
		t.writeStreak(ctx, identifier, 1)

		return 1
	}

	streak := 1
	if hasLast && lastDay.Equal(today.AddDate(0, 0, -1)) {
		streak = current + 1
	}

	if !t.writeStreak(ctx, identifier, streak) {
		// Skip the day marker so the next attempt recomputes from the
		// prior state instead of pinning a zero streak to today.
		return streak
	}

	err := t.store.Set(ctx, lastDayKeyPrefix+identifier, []byte(today.Format(dayFormat)), 0)
	if err != nil {
		t.logger.Warn("last study day write failed",
			zap.String("identifier", identifier),
			zap.Error(err),
		)
	}

	return streak
}

func (t *Tracker) writeStreak(ctx context.Context, identifier string, streak int) bool {
	if err := t.store.Set(ctx, streakKeyPrefix+identifier, []byte(strconv.Itoa(streak)), 0); err != nil {
		t.logger.Warn("streak write failed",
			zap.String("identifier", identifier),
			zap.Error(err),
		)

		return false
	}

	return true
}

// Current returns identifier's streak length without recording activity.
// Absent, malformed, or unreadable values read as zero.
func (t *Tracker) Current(ctx context.Context, identifier string) int {
	value, err := t.store.Get(ctx, streakKeyPrefix+identifier)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			t.logger.Warn("streak read failed",
				zap.String("identifier", identifier),
				zap.Error(err),
			)
		}

		return 0
	}

	streak, err := strconv.Atoi(string(value))
	if err != nil || streak < 0 {
		return 0
	}

	return streak
}

// readDay returns the last recorded study day, or ok=false when absent,
// malformed, or unreadable.
func (t *Tracker) readDay(ctx context.Context, identifier string) (time.Time, bool) {
	value, err := t.store.Get(ctx, lastDayKeyPrefix+identifier)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			t.logger.Warn("last study day read failed",
				zap.String("identifier", identifier),
				zap.Error(err),
			)
		}

		return time.Time{}, false
	}

	day, err := time.ParseInLocation(dayFormat, string(value), time.UTC)
	if err != nil {
		return time.Time{}, false
	}

	return day, true
}
