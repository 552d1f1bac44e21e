package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"freelancehub/apperr"
	"freelancehub/employers"
	"freelancehub/models"
	"freelancehub/mq"
	"freelancehub/projects"
	"freelancehub/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Repository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	ListByRole(ctx context.Context, role string) ([]models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, set, unset bson.M) (*models.User, error)
	AddReview(ctx context.Context, id primitive.ObjectID, r models.Review, now time.Time) (*models.User, error)
	SetMetrics(ctx context.Context, id primitive.ObjectID, m models.FreelancerMetrics, now time.Time) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// Portfolio is the projects service as seen from a user profile.
type Portfolio interface {
	Public(ctx context.Context, freelancerID primitive.ObjectID) ([]models.Project, error)
	Create(ctx context.Context, freelancerID primitive.ObjectID, in projects.Input) ([]models.Project, error)
	Update(ctx context.Context, id primitive.ObjectID, owner *primitive.ObjectID, in projects.Input) (*models.Project, error)
	Delete(ctx context.Context, id primitive.ObjectID, owner *primitive.ObjectID) error
	DeleteAll(ctx context.Context, freelancerID primitive.ObjectID) error
}

// EmployerProfiles serves the ?type=employer variants of the user routes.
type EmployerProfiles interface {
	ForUser(ctx context.Context, id primitive.ObjectID) (*models.Employer, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, in employers.ProfileInput) (*models.Employer, error)
	Remove(ctx context.Context, id primitive.ObjectID) error
}

type JobLister interface {
	ListByApplicant(ctx context.Context, freelancerID string) ([]models.Job, error)
}

type Service struct {
	repo      Repository
	portfolio Portfolio
	employers EmployerProfiles
	jobs      JobLister
	events    mq.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewService(repo Repository, portfolio Portfolio, emp EmployerProfiles, jobs JobLister, events mq.Publisher, log *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		portfolio: portfolio,
		employers: emp,
		jobs:      jobs,
		events:    events,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

var errUserNotFound = apperr.NotFound("User not found")

func (s *Service) load(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *Service) Freelancers(ctx context.Context) ([]models.Freelancer, error) {
	list, err := s.repo.ListByRole(ctx, models.RoleFreelancer)
	if err != nil {
		return nil, fmt.Errorf("list freelancers: %w", err)
	}
	out := make([]models.Freelancer, 0, len(list))
	for i := range list {
		out = append(out, list[i].Freelancer())
	}
	return out, nil
}

// Get returns the user with the public portfolio filled in.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	ps, err := s.portfolio.Public(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Profile.Projects = ps
	u.Profile.Normalize()
	return u, nil
}

func (s *Service) Employer(ctx context.Context, id primitive.ObjectID) (*models.Employer, error) {
	return s.employers.ForUser(ctx, id)
}

func (s *Service) Metrics(ctx context.Context, id primitive.ObjectID) (models.FreelancerMetrics, error) {
	u, err := s.load(ctx, id)
	if err != nil {
		return models.FreelancerMetrics{}, err
	}
	return u.Profile.Metrics(), nil
}

type ProfileInput struct {
	FullName   *string         `json:"fullName"`
	Title      *string         `json:"title"`
	AvatarURL  *string         `json:"avatarUrl"`
	Location   *string         `json:"location"`
	Website    *string         `json:"website"`
	LinkedIn   *string         `json:"linkedin"`
	Github     *string         `json:"github"`
	Bio        *string         `json:"bio"`
	Phone      *string         `json:"phone"`
	Email      *string         `json:"email"`
	HourlyRate utils.FlexFloat `json:"hourlyRate"`
}

func (in ProfileInput) employer() employers.ProfileInput {
	return employers.ProfileInput{
		Email:     in.Email,
		FullName:  in.FullName,
		Title:     in.Title,
		AvatarURL: in.AvatarURL,
		Phone:     in.Phone,
		Location:  in.Location,
		Website:   in.Website,
		LinkedIn:  in.LinkedIn,
		Github:    in.Github,
		Bio:       in.Bio,
	}
}

// updates splits the input into $set and $unset documents. A null
// hourlyRate clears it; a blank email is ignored.
func (in ProfileInput) updates() (bson.M, bson.M) {
	set, unset := bson.M{}, bson.M{}
	put := func(key string, v *string) {
		if v != nil {
			set["profile."+key] = strings.TrimSpace(*v)
		}
	}
	put("fullName", in.FullName)
	put("title", in.Title)
	put("avatarUrl", in.AvatarURL)
	put("location", in.Location)
	put("website", in.Website)
	put("linkedin", in.LinkedIn)
	put("github", in.Github)
	put("phone", in.Phone)
	if in.Bio != nil {
		set["profile.bio"] = utils.CleanText(*in.Bio)
	}
	if in.Email != nil {
		if e := utils.NormalizeEmail(*in.Email); e != "" {
			set["profile.email"] = e
			set["email"] = e
		}
	}
	if in.HourlyRate.Set {
		if in.HourlyRate.Value == nil {
			unset["profile.hourlyRate"] = ""
		} else {
			set["profile.hourlyRate"] = *in.HourlyRate.Value
		}
	}
	return set, unset
}

func (s *Service) UpdateProfile(ctx context.Context, id primitive.ObjectID, in ProfileInput) (*models.User, error) {
	if in.HourlyRate.Value != nil && *in.HourlyRate.Value < 0 {
		return nil, apperr.Invalid("hourlyRate must not be negative")
	}
	set, unset := in.updates()
	set["updatedAt"] = s.now()
	u, err := s.repo.Update(ctx, id, set, unset)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errUserNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return nil, apperr.Conflict("Email already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

func (s *Service) UpdateEmployerProfile(ctx context.Context, id primitive.ObjectID, in ProfileInput) (*models.Employer, error) {
	return s.employers.UpdateProfile(ctx, id, in.employer())
}

func (s *Service) SetSkills(ctx context.Context, id primitive.ObjectID, skills []string) ([]string, error) {
	cleaned := utils.TrimStrings(skills)
	u, err := s.repo.Update(ctx, id, bson.M{"profile.skills": cleaned, "updatedAt": s.now()}, nil)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("set skills: %w", err)
	}
	return u.Profile.Skills, nil
}

func (s *Service) AddProject(ctx context.Context, id primitive.ObjectID, in projects.Input) ([]models.Project, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	return s.portfolio.Create(ctx, id, in)
}

func (s *Service) UpdateProject(ctx context.Context, id, projectID primitive.ObjectID, in projects.Input) (*models.Project, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	return s.portfolio.Update(ctx, projectID, &id, in)
}

func (s *Service) DeleteProject(ctx context.Context, id, projectID primitive.ObjectID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	return s.portfolio.Delete(ctx, projectID, &id)
}

type ReviewInput struct {
	JobID      string `json:"jobId"`
	EmployerID string `json:"employerId"`
	Rating     any    `json:"rating"`
	Comment    string `json:"comment"`
}

// AddReview records an employer's review of the freelancer with id.
func (s *Service) AddReview(ctx context.Context, id primitive.ObjectID, in ReviewInput) (*models.Review, error) {
	jobID, employerID := strings.TrimSpace(in.JobID), strings.TrimSpace(in.EmployerID)
	if jobID == "" || employerID == "" {
		return nil, apperr.Invalid("jobId and employerId are required")
	}
	rating, ok := in.Rating.(float64)
	if !ok || rating < 1 || rating > 5 {
		return nil, apperr.Invalid("rating must be a number between 1 and 5")
	}

	now := s.now()
	r := models.Review{
		ID:         primitive.NewObjectID(),
		JobID:      jobID,
		EmployerID: employerID,
		Rating:     rating,
		Comment:    utils.CleanText(in.Comment),
		CreatedAt:  now,
	}
	u, err := s.repo.AddReview(ctx, id, r, now)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("add review: %w", err)
	}
	s.log.Debug("review added", zap.String("user", id.Hex()), zap.Float64("totalRating", u.Profile.TotalRating))
	s.events.Emit(ctx, mq.Event{Name: mq.ReviewAdded, EntityType: "user", EntityID: id.Hex(), ItemID: r.ID.Hex(), ActorID: employerID, At: now})
	return &r, nil
}

// Delete removes the account, its portfolio and, for employers, the
// employer record. Cleanup failures after the user is gone are logged.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	u, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if !ok {
		return errUserNotFound
	}
	if err := s.portfolio.DeleteAll(ctx, id); err != nil {
		s.log.Warn("portfolio cleanup failed", zap.String("user", id.Hex()), zap.Error(err))
	}
	if u.Role == models.RoleEmployer {
		if err := s.employers.Remove(ctx, id); err != nil {
			s.log.Warn("employer cleanup failed", zap.String("user", id.Hex()), zap.Error(err))
		}
	}
	return nil
}

// Reconcile recomputes the freelancer counters from the jobs they applied to
// and stores them.
func (s *Service) Reconcile(ctx context.Context, id primitive.ObjectID) (models.FreelancerMetrics, error) {
	var (
		user *models.User
		jobs []models.Job
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.load(gctx, id)
		user = u
		return err
	})
	g.Go(func() error {
		j, err := s.jobs.ListByApplicant(gctx, id.Hex())
		if err != nil {
			return fmt.Errorf("list applied jobs: %w", err)
		}
		jobs = j
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.FreelancerMetrics{}, err
	}

	m := ComputeMetrics(id.Hex(), jobs, user.Profile.Reviews)
	u, err := s.repo.SetMetrics(ctx, id, m, s.now())
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.FreelancerMetrics{}, errUserNotFound
	}
	if err != nil {
		return models.FreelancerMetrics{}, fmt.Errorf("store metrics: %w", err)
	}
	s.log.Info("freelancer metrics reconciled", zap.String("user", id.Hex()), zap.Int("jobs", len(jobs)))
	return u.Profile.Metrics(), nil
}
