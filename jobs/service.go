package jobs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"freelancehub/apperr"
	"freelancehub/models"
	"freelancehub/mq"
	"freelancehub/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Filter narrows the job list. Empty fields are ignored.
type Filter struct {
	Search          string
	ExperienceLevel string
	EmployerID      string
	AppliedBy       string
	BudgetMin       *float64
	BudgetMax       *float64
}

// ParseBudgetRange reads "min-max" into inclusive bounds.
func ParseBudgetRange(s string) (*float64, *float64, error) {
	lo, hi, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return nil, nil, apperr.Invalid("Invalid budgetRange")
	}
	minV, err1 := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	maxV, err2 := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if err1 != nil || err2 != nil {
		return nil, nil, apperr.Invalid("Invalid budgetRange")
	}
	return &minV, &maxV, nil
}

type Applicant struct {
	Name  string
	Title string
}

// Repository is the persistence the service needs. *Store implements it.
type Repository interface {
	List(ctx context.Context, f Filter) ([]models.Job, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Job, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	Insert(ctx context.Context, j *models.Job) error
	Update(ctx context.Context, id primitive.ObjectID, p Patch, now time.Time) (*models.Job, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	PushApplication(ctx context.Context, jobID primitive.ObjectID, app models.Application) (*models.Job, error)
	AcceptApplication(ctx context.Context, appID primitive.ObjectID, now time.Time) (*models.Job, error)
	DeclineApplication(ctx context.Context, appID primitive.ObjectID, now time.Time) (*models.Job, error)
	PushSubmission(ctx context.Context, jobID primitive.ObjectID, sub models.Submission, onlyIfAbsent bool) (bool, error)
	UpdateSubmission(ctx context.Context, jobID primitive.ObjectID, freelancerID string, p SubmissionPatch, now time.Time) (*models.Submission, error)
	Applicants(ctx context.Context, ids []primitive.ObjectID) (map[string]Applicant, error)
}

type Service struct {
	repo   Repository
	events mq.Publisher
	log    *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, events mq.Publisher, log *zap.Logger) *Service {
	if events == nil {
		events = mq.Nop{}
	}
	return &Service{repo: repo, events: events, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.Job, error) {
	jobs, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	if err := s.enrich(ctx, jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.Job, error) {
	j, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	one := []models.Job{*j}
	if err := s.enrich(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

func (s *Service) load(ctx context.Context, id primitive.ObjectID) (*models.Job, error) {
	j, err := s.repo.Get(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("Job not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

// enrich attaches applicant names with one batched lookup. Ids that are not
// valid ObjectIDs are skipped.
func (s *Service) enrich(ctx context.Context, jobs []models.Job) error {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for i := range jobs {
		jobs[i].Normalize()
		for _, a := range jobs[i].Applications {
			oid, err := primitive.ObjectIDFromHex(a.FreelancerID)
			if err != nil || seen[oid] {
				continue
			}
			seen[oid] = true
			ids = append(ids, oid)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	names, err := s.repo.Applicants(ctx, ids)
	if err != nil {
		return fmt.Errorf("load applicants: %w", err)
	}
	for i := range jobs {
		for k := range jobs[i].Applications {
			a := &jobs[i].Applications[k]
			if n, ok := names[a.FreelancerID]; ok {
				a.FreelancerName = n.Name
				a.FreelancerTitle = n.Title
			}
		}
	}
	return nil
}

// JobInput is the writable shape of a job on create.
type JobInput struct {
	EmployerID         string          `json:"employerId"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	BudgetType         string          `json:"budgetType"`
	BudgetMin          utils.FlexFloat `json:"budgetMin"`
	BudgetMax          utils.FlexFloat `json:"budgetMax"`
	DurationWeeks      utils.FlexFloat `json:"durationWeeks"`
	Status             string          `json:"status"`
	Location           string          `json:"location"`
	RemoteAllowed      *bool           `json:"remoteAllowed"`
	ExperienceLevel    string          `json:"experienceLevel"`
	RelevantExperience string          `json:"relevantExperience"`
	ProposedApproach   string          `json:"proposedApproach"`
	Skills             []models.Skill  `json:"skills"`
}

func (in JobInput) validate() error {
	switch {
	case strings.TrimSpace(in.EmployerID) == "":
		return apperr.Invalid("employerId is required")
	case strings.TrimSpace(in.Title) == "":
		return apperr.Invalid("title is required")
	case strings.TrimSpace(in.Description) == "":
		return apperr.Invalid("description is required")
	case !models.ValidBudgetType(in.BudgetType):
		return apperr.Invalid("budgetType must be fixed or hourly")
	case in.ExperienceLevel != "" && !models.ValidExperienceLevel(in.ExperienceLevel):
		return apperr.Invalid("experienceLevel must be entry, intermediate or expert")
	case in.Status != "" && !models.ValidJobStatus(in.Status):
		return apperr.Invalid("Invalid status")
	}
	if in.BudgetMin.Value != nil && in.BudgetMax.Value != nil && *in.BudgetMin.Value > *in.BudgetMax.Value {
		return errBudgetOrder
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in JobInput) (*models.Job, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := s.now()
	j := &models.Job{
		ID:                 primitive.NewObjectID(),
		EmployerID:         strings.TrimSpace(in.EmployerID),
		Title:              strings.TrimSpace(in.Title),
		Description:        strings.TrimSpace(in.Description),
		BudgetType:         in.BudgetType,
		BudgetMin:          in.BudgetMin.Value,
		BudgetMax:          in.BudgetMax.Value,
		DurationWeeks:      in.DurationWeeks.Value,
		Status:             in.Status,
		Location:           strings.TrimSpace(in.Location),
		RemoteAllowed:      true,
		ExperienceLevel:    in.ExperienceLevel,
		RelevantExperience: in.RelevantExperience,
		ProposedApproach:   in.ProposedApproach,
		Applications:       []models.Application{},
		Skills:             in.Skills,
		Submissions:        []models.Submission{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if j.Status == "" {
		j.Status = models.JobOpen
	}
	if in.RemoteAllowed != nil {
		j.RemoteAllowed = *in.RemoteAllowed
	}
	if j.Skills == nil {
		j.Skills = []models.Skill{}
	}
	if err := s.repo.Insert(ctx, j); err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return j, nil
}

// Patch holds the fields a job owner may change after creation. Nil means
// untouched. The embedded applications and submissions are not patchable.
type Patch struct {
	EmployerID         *string         `json:"employerId"`
	Title              *string         `json:"title"`
	Description        *string         `json:"description"`
	BudgetType         *string         `json:"budgetType"`
	BudgetMin          utils.FlexFloat `json:"budgetMin"`
	BudgetMax          utils.FlexFloat `json:"budgetMax"`
	DurationWeeks      utils.FlexFloat `json:"durationWeeks"`
	Status             *string         `json:"status"`
	Location           *string         `json:"location"`
	RemoteAllowed      *bool           `json:"remoteAllowed"`
	ExperienceLevel    *string         `json:"experienceLevel"`
	RelevantExperience *string         `json:"relevantExperience"`
	ProposedApproach   *string         `json:"proposedApproach"`
	Skills             *[]models.Skill `json:"skills"`
}

func (p Patch) validate() error {
	switch {
	case p.Title != nil && strings.TrimSpace(*p.Title) == "":
		return apperr.Invalid("title is required")
	case p.Description != nil && strings.TrimSpace(*p.Description) == "":
		return apperr.Invalid("description is required")
	case p.EmployerID != nil && strings.TrimSpace(*p.EmployerID) == "":
		return apperr.Invalid("employerId is required")
	case p.BudgetType != nil && !models.ValidBudgetType(*p.BudgetType):
		return apperr.Invalid("budgetType must be fixed or hourly")
	case p.Status != nil && !models.ValidJobStatus(*p.Status):
		return apperr.Invalid("Invalid status")
	case p.ExperienceLevel != nil && *p.ExperienceLevel != "" && !models.ValidExperienceLevel(*p.ExperienceLevel):
		return apperr.Invalid("experienceLevel must be entry, intermediate or expert")
	case p.BudgetMin.Value != nil && p.BudgetMax.Value != nil && *p.BudgetMin.Value > *p.BudgetMax.Value:
		return errBudgetOrder
	}
	return nil
}

var errBudgetOrder = apperr.Invalid("budgetMin must not exceed budgetMax")

// checkBudget compares a lone budget bound against the stored other bound.
func (s *Service) checkBudget(ctx context.Context, id primitive.ObjectID, p Patch) error {
	if (p.BudgetMin.Value == nil) == (p.BudgetMax.Value == nil) {
		return nil
	}
	cur, err := s.repo.Get(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound("Job not found")
	}
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}
	lo, hi := cur.BudgetMin, cur.BudgetMax
	if p.BudgetMin.Set {
		lo = p.BudgetMin.Value
	}
	if p.BudgetMax.Set {
		hi = p.BudgetMax.Value
	}
	if lo != nil && hi != nil && *lo > *hi {
		return errBudgetOrder
	}
	return nil
}

func (p Patch) fields() bson.M {
	set := bson.M{}
	str := func(key string, v *string) {
		if v != nil {
			set[key] = strings.TrimSpace(*v)
		}
	}
	num := func(key string, v utils.FlexFloat) {
		if v.Set {
			set[key] = v.Value
		}
	}
	str("employerId", p.EmployerID)
	str("title", p.Title)
	str("description", p.Description)
	str("budgetType", p.BudgetType)
	str("status", p.Status)
	str("location", p.Location)
	str("experienceLevel", p.ExperienceLevel)
	str("relevantExperience", p.RelevantExperience)
	str("proposedApproach", p.ProposedApproach)
	num("budgetMin", p.BudgetMin)
	num("budgetMax", p.BudgetMax)
	num("durationWeeks", p.DurationWeeks)
	if p.RemoteAllowed != nil {
		set["remoteAllowed"] = *p.RemoteAllowed
	}
	if p.Skills != nil {
		skills := *p.Skills
		if skills == nil {
			skills = []models.Skill{}
		}
		set["skills"] = skills
	}
	return set
}

func (s *Service) Update(ctx context.Context, id primitive.ObjectID, p Patch) (*models.Job, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if err := s.checkBudget(ctx, id, p); err != nil {
		return nil, err
	}
	j, err := s.repo.Update(ctx, id, p, s.now())
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("Job not found")
	}
	if err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}
	j.Normalize()
	return j, nil
}

// Delete removes the job with its applications and submissions.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if !ok {
		return apperr.NotFound("Job not found")
	}
	return nil
}
