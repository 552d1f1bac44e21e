package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"freelancehub/apperr"
	"freelancehub/mailer"
	"freelancehub/models"
	"freelancehub/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const otpDigits = 6

// GenerateOTP returns a random numeric code of the given length.
func GenerateOTP(length int) (string, error) {
	var b strings.Builder
	ten := big.NewInt(10)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("generate otp: %w", err)
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

// Forgot stores a reset code and mails it. Unknown emails get the same
// response as known ones.
func (s *Service) Forgot(ctx context.Context, email string) error {
	email = utils.NormalizeEmail(email)
	if email == "" {
		return apperr.Invalid("Email is required")
	}
	code, err := GenerateOTP(otpDigits)
	if err != nil {
		return err
	}
	now := s.now()
	found, err := s.accounts.SetResetCode(ctx, email, code, now.Add(ResetCodeTTL), now)
	if err != nil {
		return fmt.Errorf("store reset code: %w", err)
	}
	if !found {
		return nil
	}

	subject, body := mailer.ResetCodeEmail(code, ResetCodeTTL)
	if err := s.mail.Send(ctx, email, subject, body); err != nil {
		s.log.Warn("reset mail failed", zap.String("email", email), zap.Error(err))
	}
	return nil
}

type ResetInput struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

var errBadCode = apperr.Invalid("Invalid or expired code")

// Reset sets a new password when the code matches and is still valid.
func (s *Service) Reset(ctx context.Context, in ResetInput) error {
	email := utils.NormalizeEmail(in.Email)
	otp := strings.TrimSpace(in.OTP)
	if email == "" || otp == "" || in.NewPassword == "" {
		return apperr.Invalid("Email, OTP and newPassword are required")
	}

	u, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return errBadCode
	}
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if u.ResetOTP == "" || u.ResetOTPExpires == nil {
		return errBadCode
	}
	if subtle.ConstantTimeCompare([]byte(u.ResetOTP), []byte(otp)) != 1 {
		return apperr.Invalid("Invalid code")
	}
	now := s.now()
	if u.ResetOTPExpires.Before(now) {
		return apperr.Invalid("Code expired")
	}

	hash, err := utils.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	// the filter re-checks code and expiry so a code works once
	if _, err := s.accounts.ConsumeResetCode(ctx, email, otp, hash, now); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return errBadCode
		}
		return fmt.Errorf("reset password: %w", err)
	}
	if u.Role == models.RoleEmployer {
		s.sync.SyncPassword(ctx, email, hash)
	}
	s.log.Info("password reset", zap.String("user", u.ID.Hex()))
	return nil
}
