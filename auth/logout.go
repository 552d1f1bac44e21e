package auth

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Signout revokes the presented token. Bad or missing tokens are not an
// error: the caller is signed out either way.
func (s *Service) Signout(ctx context.Context, raw string) {
	if raw == "" {
		return
	}
	claims, err := s.tokens.Parse(ctx, raw)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		s.log.Warn("token revocation failed", zap.String("user", claims.UserID()), zap.Error(err))
	}
}
