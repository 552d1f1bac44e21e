// Package auth handles account sign-up, sign-in, sign-out, self-service
// profile edits and the emailed password reset.
package auth

import (
	"context"
	"time"

	"freelancehub/mailer"
	"freelancehub/models"
	"freelancehub/tokens"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Accounts is the user store surface auth needs.
type Accounts interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, u *models.User) error
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string, now time.Time) error
	Update(ctx context.Context, id primitive.ObjectID, set, unset bson.M) (*models.User, error)
	SetResetCode(ctx context.Context, email, code string, expires, now time.Time) (bool, error)
	ConsumeResetCode(ctx context.Context, email, code, hash string, now time.Time) (*models.User, error)
}

// EmployerSync mirrors employer accounts into the employers collection.
type EmployerSync interface {
	MirrorUser(ctx context.Context, u *models.User)
	SyncPassword(ctx context.Context, email, hash string)
}

// ResetCodeTTL is how long an emailed reset code stays valid.
const ResetCodeTTL = 5 * time.Minute

type Service struct {
	accounts Accounts
	sync     EmployerSync
	tokens   *tokens.Manager
	mail     mailer.Sender
	log      *zap.Logger
	now      func() time.Time
}

func NewService(accounts Accounts, sync EmployerSync, tm *tokens.Manager, mail mailer.Sender, log *zap.Logger) *Service {
	return &Service{
		accounts: accounts,
		sync:     sync,
		tokens:   tm,
		mail:     mail,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Session is returned by signup and signin.
type Session struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (s *Service) session(u *models.User) (*Session, error) {
	tok, err := s.tokens.Issue(u.ID.Hex(), u.Role)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Token: tok}, nil
}
