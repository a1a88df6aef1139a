package store

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/hydrate/internal/domain"
)

// Records loads the typed application records. Absent or corrupt records are
// replaced by defaults; a load never fails.
type Records struct {
	repo Repo
	log  *zap.Logger
}

func NewRecords(repo Repo, log *zap.Logger) *Records {
	return &Records{repo: repo, log: log}
}

// LoadSettings returns the stored settings merged over the defaults and sanitized.
func (r *Records) LoadSettings(ctx context.Context) domain.Settings {
	s := domain.DefaultSettings()
	if !r.decode(ctx, KeySettings, &s) {
		s = domain.DefaultSettings()
	}
	return s.Sanitize()
}

// LoadReminder returns the stored reminder state with its invariants restored.
func (r *Records) LoadReminder(ctx context.Context) domain.ReminderState {
	var st domain.ReminderState
	if !r.decode(ctx, KeyReminder, &st) {
		st = domain.ReminderState{}
	}
	return st.Normalize()
}

// LoadHydration returns today's ledger. A ledger from another day is discarded.
func (r *Records) LoadHydration(ctx context.Context, now time.Time) domain.HydrationState {
	var h domain.HydrationState
	if !r.decode(ctx, KeyHydration, &h) || h.DateKey == "" {
		return domain.NewHydrationState(now)
	}
	if h.Entries == nil {
		h.Entries = []domain.IntakeEntry{}
	}
	h, rolled := h.Rollover(now)
	if rolled {
		r.log.Info("hydration ledger rolled over on load", zap.String("day", h.DateKey))
	}
	return h
}

// decode reports false when the record was present but unusable.
func (r *Records) decode(ctx context.Context, key string, v any) bool {
	raw, ok, err := r.repo.Get(ctx, key)
	if err != nil {
		r.log.Warn("record read failed, using defaults", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return true
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		r.log.Warn("record corrupt, using defaults", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}
