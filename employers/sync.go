package employers

import (
	"context"
	"time"

	"freelancehub/models"

	"go.uber.org/zap"
)

// Mirror is the store surface the sync routines write through.
type Mirror interface {
	MirrorUser(ctx context.Context, u *models.User, now time.Time) error
	SyncPassword(ctx context.Context, email, hash string, now time.Time) error
}

// Sync keeps employer records in step with employer-role users. Failures
// are logged and never returned: the user-side write has already happened.
type Sync struct {
	store Mirror
	log   *zap.Logger
	now   func() time.Time
}

func NewSync(store Mirror, log *zap.Logger) *Sync {
	return &Sync{store: store, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Sync) MirrorUser(ctx context.Context, u *models.User) {
	if u == nil || u.Role != models.RoleEmployer {
		return
	}
	if err := s.store.MirrorUser(ctx, u, s.now()); err != nil {
		s.log.Warn("employer mirror failed", zap.String("user", u.ID.Hex()), zap.Error(err))
	}
}

func (s *Sync) SyncPassword(ctx context.Context, email, hash string) {
	if err := s.store.SyncPassword(ctx, email, hash, s.now()); err != nil {
		s.log.Warn("employer password sync failed", zap.String("email", email), zap.Error(err))
	}
}
