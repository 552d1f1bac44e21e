package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"freelancehub/apperr"
	"freelancehub/models"
	"freelancehub/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type SignupInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	Title    string `json:"title"`
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	email := utils.NormalizeEmail(in.Email)
	fullName := strings.TrimSpace(in.FullName)
	if email == "" || in.Password == "" || fullName == "" {
		return nil, apperr.Invalid("email, password and fullName are required")
	}
	role := strings.TrimSpace(in.Role)
	if !models.ValidUserRole(role) {
		return nil, apperr.Invalid("role must be freelancer or employer")
	}

	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("User already exists")
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := s.now()
	u := &models.User{
		ID:       primitive.NewObjectID(),
		Email:    email,
		Password: hash,
		Role:     role,
		Profile: models.Profile{
			Email:    email,
			FullName: fullName,
			Role:     role,
			Title:    strings.TrimSpace(in.Title),
			Skills:   []string{},
			Reviews:  []models.Review{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.accounts.Insert(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Conflict("User already exists")
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	s.log.Info("user signed up", zap.String("user", u.ID.Hex()), zap.String("role", role))

	s.sync.MirrorUser(ctx, u)
	u.Profile.Normalize()
	return s.session(u)
}

type SigninInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signin verifies the password. Accounts still holding a plaintext password
// are upgraded to bcrypt on their first successful sign-in.
func (s *Service) Signin(ctx context.Context, in SigninInput) (*Session, error) {
	email := utils.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, apperr.Invalid("email and password are required")
	}
	u, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	ok, legacy := utils.CheckPassword(u.Password, in.Password)
	if !ok {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	if legacy {
		hash, err := utils.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		if err := s.accounts.SetPassword(ctx, u.ID, hash, s.now()); err != nil {
			return nil, fmt.Errorf("upgrade password: %w", err)
		}
		u.Password = hash
		s.log.Info("legacy password upgraded", zap.String("user", u.ID.Hex()))
		if u.Role == models.RoleEmployer {
			s.sync.SyncPassword(ctx, u.Email, hash)
		}
	}

	s.sync.MirrorUser(ctx, u)
	return s.session(u)
}
