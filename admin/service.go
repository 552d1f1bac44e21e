// Package admin bootstraps and signs in administrator accounts.
package admin

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"freelancehub/apperr"
	"freelancehub/models"
	"freelancehub/tokens"
	"freelancehub/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Repository interface {
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	Insert(ctx context.Context, a *models.Admin) error
}

// ErrExists is returned by Create when the email is already an admin.
var ErrExists = apperr.Conflict("Admin already exists")

type Service struct {
	repo           Repository
	tokens         *tokens.Manager
	bootstrapToken string
	log            *zap.Logger
	now            func() time.Time
}

// NewService wires the admin service. An empty bootstrapToken disables the
// HTTP bootstrap route; Create still works for the seed command.
func NewService(repo Repository, tm *tokens.Manager, bootstrapToken string, log *zap.Logger) *Service {
	return &Service{
		repo:           repo,
		tokens:         tm,
		bootstrapToken: bootstrapToken,
		log:            log,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

type Input struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

func (s *Service) Create(ctx context.Context, in Input) (*models.Admin, error) {
	email := utils.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, apperr.Invalid("email and password are required")
	}
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrExists
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := s.now()
	a := &models.Admin{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Password:  hash,
		Role:      models.RoleAdmin,
		Profile:   models.AdminProfile{FullName: strings.TrimSpace(in.FullName)},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, a); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrExists
		}
		return nil, fmt.Errorf("insert admin: %w", err)
	}
	s.log.Info("admin created", zap.String("admin", a.ID.Hex()))
	return a, nil
}

// Bootstrap creates an admin when the presented token matches the
// configured one.
func (s *Service) Bootstrap(ctx context.Context, token string, in Input) (*models.Admin, error) {
	if s.bootstrapToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.bootstrapToken)) != 1 {
		return nil, apperr.Forbidden("Forbidden")
	}
	return s.Create(ctx, in)
}

type Session struct {
	Admin *models.Admin `json:"admin"`
	Token string        `json:"token"`
}

func (s *Service) Signin(ctx context.Context, email, password string) (*Session, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Invalid("email and password are required")
	}
	a, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("lookup admin: %w", err)
	}
	if ok, _ := utils.CheckPassword(a.Password, password); !ok {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	tok, err := s.tokens.Issue(a.ID.Hex(), models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return &Session{Admin: a, Token: tok}, nil
}
