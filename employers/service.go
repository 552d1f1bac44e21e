package employers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"freelancehub/apperr"
	"freelancehub/models"
	"freelancehub/tokens"
	"freelancehub/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Repository interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Employer, error)
	GetByEmail(ctx context.Context, email string) (*models.Employer, error)
	List(ctx context.Context) ([]models.Employer, error)
	Insert(ctx context.Context, e *models.Employer) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string, now time.Time) error
	UpsertProfile(ctx context.Context, id primitive.ObjectID, in ProfileInput, seed *Seed, now time.Time) (*models.Employer, error)
	SetMetrics(ctx context.Context, id primitive.ObjectID, m map[string]int, now time.Time) (*models.Employer, error)
}

// JobLister is the read side of the jobs store used for reconciliation.
type JobLister interface {
	ListByEmployer(ctx context.Context, employerIDs ...string) ([]models.Job, error)
}

// UserFinder resolves the user an employer record mirrors.
type UserFinder interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type Service struct {
	repo   Repository
	jobs   JobLister
	users  UserFinder
	tokens *tokens.Manager
	log    *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, jobs JobLister, users UserFinder, tm *tokens.Manager, log *zap.Logger) *Service {
	return &Service{repo: repo, jobs: jobs, users: users, tokens: tm, log: log, now: func() time.Time { return time.Now().UTC() }}
}

type SignupInput struct {
	FullName string `json:"fullName"`
	Title    string `json:"title"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Session struct {
	Employer *models.Employer `json:"employer"`
	Token    string           `json:"token"`
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	email := utils.NormalizeEmail(in.Email)
	if strings.TrimSpace(in.FullName) == "" || email == "" || in.Password == "" {
		return nil, apperr.Invalid("fullName, email and password are required")
	}
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("Employer already exists")
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("lookup employer: %w", err)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := s.now()
	e := &models.Employer{
		ID:       primitive.NewObjectID(),
		Email:    email,
		Password: hash,
		Role:     models.RoleEmployer,
		Profile: models.EmployerProfile{
			FullName: strings.TrimSpace(in.FullName),
			Title:    strings.TrimSpace(in.Title),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Conflict("Employer already exists")
		}
		return nil, fmt.Errorf("insert employer: %w", err)
	}
	return s.session(e)
}

type SigninInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Service) Signin(ctx context.Context, in SigninInput) (*Session, error) {
	email := utils.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, apperr.Invalid("email and password are required")
	}
	e, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("lookup employer: %w", err)
	}
	ok, legacy := utils.CheckPassword(e.Password, in.Password)
	if !ok {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	if legacy {
		hash, err := utils.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		if err := s.repo.SetPassword(ctx, e.ID, hash, s.now()); err != nil {
			return nil, fmt.Errorf("upgrade password: %w", err)
		}
		e.Password = hash
	}
	return s.session(e)
}

func (s *Service) session(e *models.Employer) (*Session, error) {
	tok, err := s.tokens.Issue(e.ID.Hex(), models.RoleEmployer)
	if err != nil {
		return nil, err
	}
	return &Session{Employer: e, Token: tok}, nil
}

func (s *Service) List(ctx context.Context) ([]models.Employer, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list employers: %w", err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.Employer, error) {
	e, err := s.repo.Get(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("Employer not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get employer: %w", err)
	}
	return e, nil
}

// ForUser returns the employer record for id, or one synthesized from the
// user with that id when no record exists.
func (s *Service) ForUser(ctx context.Context, id primitive.ObjectID) (*models.Employer, error) {
	e, err := s.repo.Get(ctx, id)
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("get employer: %w", err)
	}
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("Employer not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return models.EmployerFromUser(u), nil
}

// Remove deletes the employer record with id, if any.
func (s *Service) Remove(ctx context.Context, id primitive.ObjectID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete employer: %w", err)
	}
	return nil
}

// ProfileInput lists the editable employer profile fields.
type ProfileInput struct {
	Email     *string `json:"email"`
	FullName  *string `json:"fullName"`
	Title     *string `json:"title"`
	AvatarURL *string `json:"avatarUrl"`
	Phone     *string `json:"phone"`
	Location  *string `json:"location"`
	Website   *string `json:"website"`
	LinkedIn  *string `json:"linkedin"`
	Github    *string `json:"github"`
	Bio       *string `json:"bio"`
}

func (in ProfileInput) fields() bson.M {
	set := bson.M{}
	put := func(key string, v *string) {
		if v != nil {
			set[key] = strings.TrimSpace(*v)
		}
	}
	if in.Email != nil {
		set["email"] = utils.NormalizeEmail(*in.Email)
	}
	put("profile.fullName", in.FullName)
	put("profile.title", in.Title)
	put("profile.avatarUrl", in.AvatarURL)
	put("profile.phone", in.Phone)
	put("profile.location", in.Location)
	put("profile.website", in.Website)
	put("profile.linkedin", in.LinkedIn)
	put("profile.github", in.Github)
	if in.Bio != nil {
		set["profile.bio"] = utils.CleanText(*in.Bio)
	}
	return set
}

// UpdateProfile edits the employer record, creating it from the user with
// the same id when it does not exist yet.
func (s *Service) UpdateProfile(ctx context.Context, id primitive.ObjectID, in ProfileInput) (*models.Employer, error) {
	if in.Email != nil && utils.NormalizeEmail(*in.Email) == "" {
		return nil, apperr.Invalid("email must not be empty")
	}

	var seed *Seed
	if _, err := s.repo.Get(ctx, id); errors.Is(err, mongo.ErrNoDocuments) {
		seed = &Seed{}
		if u, uerr := s.users.GetByID(ctx, id); uerr == nil {
			seed = &Seed{Email: u.Email, FullName: u.Profile.FullName, Title: u.Profile.Title}
		} else if !errors.Is(uerr, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("get user: %w", uerr)
		}
		if in.Email != nil {
			seed.Email = *in.Email
		}
		if seed.Email == "" {
			return nil, apperr.NotFound("Employer not found")
		}
	} else if err != nil {
		return nil, fmt.Errorf("get employer: %w", err)
	}

	e, err := s.repo.UpsertProfile(ctx, id, in, seed, s.now())
	if mongo.IsDuplicateKeyError(err) {
		return nil, apperr.Conflict("Email already exists for another employer")
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("Employer not found")
	}
	if err != nil {
		return nil, fmt.Errorf("update employer profile: %w", err)
	}
	return e, nil
}

func (s *Service) Metrics(ctx context.Context, id primitive.ObjectID) (models.EmployerMetrics, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return models.EmployerMetrics{}, err
	}
	return e.Profile.EmployerMetrics, nil
}

// SetMetrics overwrites the counters present in body. Unknown keys and
// non-numeric values are ignored.
func (s *Service) SetMetrics(ctx context.Context, id primitive.ObjectID, body map[string]any) (models.EmployerMetrics, error) {
	picked := PickMetrics(body)
	if len(picked) == 0 {
		return s.Metrics(ctx, id)
	}
	e, err := s.repo.SetMetrics(ctx, id, picked, s.now())
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.EmployerMetrics{}, apperr.NotFound("Employer not found")
	}
	if err != nil {
		return models.EmployerMetrics{}, fmt.Errorf("set employer metrics: %w", err)
	}
	return e.Profile.EmployerMetrics, nil
}

// Reconcile recomputes the counters from the jobs the employer posted and
// stores them. Running it twice gives the same result.
func (s *Service) Reconcile(ctx context.Context, id primitive.ObjectID) (models.EmployerMetrics, error) {
	var (
		employer *models.Employer
		jobs     []models.Job
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		e, err := s.Get(gctx, id)
		employer = e
		return err
	})
	g.Go(func() error {
		j, err := s.jobs.ListByEmployer(gctx, id.Hex())
		jobs = j
		return err
	})
	if err := g.Wait(); err != nil {
		return models.EmployerMetrics{}, err
	}

	// jobs may have been posted under the id of the user this record mirrors
	if u, err := s.users.GetByEmail(ctx, employer.Email); err == nil && u.ID != id {
		more, err := s.jobs.ListByEmployer(ctx, u.ID.Hex())
		if err != nil {
			return models.EmployerMetrics{}, fmt.Errorf("list jobs: %w", err)
		}
		jobs = append(jobs, more...)
	}

	m := ComputeMetrics(jobs)
	e, err := s.repo.SetMetrics(ctx, id, asMap(m), s.now())
	if err != nil {
		return models.EmployerMetrics{}, fmt.Errorf("store employer metrics: %w", err)
	}
	s.log.Info("employer metrics reconciled", zap.String("employer", id.Hex()), zap.Int("jobs", len(jobs)))
	return e.Profile.EmployerMetrics, nil
}
