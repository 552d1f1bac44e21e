// Package projects owns the freelancer portfolio. The projects collection is
// the only copy; user profiles read from it.
package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"freelancehub/apperr"
	"freelancehub/models"
	"freelancehub/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Repository interface {
	ListPublicByFreelancer(ctx context.Context, freelancerID primitive.ObjectID) ([]models.Project, error)
	ListByFreelancer(ctx context.Context, freelancerID primitive.ObjectID) ([]models.Project, error)
	Insert(ctx context.Context, p *models.Project) error
	Update(ctx context.Context, id primitive.ObjectID, owner *primitive.ObjectID, set bson.M) (*models.Project, error)
	Delete(ctx context.Context, id primitive.ObjectID, owner *primitive.ObjectID) (bool, error)
	DeleteByFreelancer(ctx context.Context, freelancerID primitive.ObjectID) (int64, error)
}

type Service struct {
	repo Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Input is the body accepted for creating and editing projects. Older
// clients send "public" instead of "isPublic".
type Input struct {
	Title        *string         `json:"title"`
	Description  *string         `json:"description"`
	Technologies *[]string       `json:"technologies"`
	Duration     *string         `json:"duration"`
	Budget       utils.FlexFloat `json:"budget"`
	CompletedAt  *string         `json:"completedAt"`
	Images       *[]string       `json:"images"`
	ProjectURL   *string         `json:"projectUrl"`
	GithubURL    *string         `json:"githubUrl"`
	ClientName   *string         `json:"clientName"`
	IsPublic     *bool           `json:"isPublic"`
	Public       *bool           `json:"public"`
}

func (in Input) visibility() *bool {
	if in.IsPublic != nil {
		return in.IsPublic
	}
	return in.Public
}

func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperr.Invalid("completedAt must be a date")
}

func text(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

// fields builds the $set document for a partial edit. Blank title and
// description are ignored rather than cleared.
func (in Input) fields() (bson.M, error) {
	set := bson.M{}
	if t := text(in.Title); t != "" {
		set["title"] = t
	}
	if d := text(in.Description); d != "" {
		set["description"] = utils.CleanText(d)
	}
	if in.Technologies != nil {
		set["technologies"] = utils.TrimStrings(*in.Technologies)
	}
	if in.Images != nil {
		set["images"] = utils.TrimStrings(*in.Images)
	}
	if in.Duration != nil {
		set["duration"] = text(in.Duration)
	}
	if in.Budget.Set && in.Budget.Value != nil {
		set["budget"] = *in.Budget.Value
	}
	if in.CompletedAt != nil {
		at, err := parseDate(*in.CompletedAt)
		if err != nil {
			return nil, err
		}
		if at != nil {
			set["completedAt"] = *at
		}
	}
	if in.ProjectURL != nil {
		set["projectUrl"] = text(in.ProjectURL)
	}
	if in.GithubURL != nil {
		set["githubUrl"] = text(in.GithubURL)
	}
	if in.ClientName != nil {
		set["clientName"] = text(in.ClientName)
	}
	if v := in.visibility(); v != nil {
		set["isPublic"] = *v
	}
	return set, nil
}

func (s *Service) Public(ctx context.Context, freelancerID primitive.ObjectID) ([]models.Project, error) {
	out, err := s.repo.ListPublicByFreelancer(ctx, freelancerID)
	if err != nil {
		return nil, fmt.Errorf("list public projects: %w", err)
	}
	return out, nil
}

func (s *Service) All(ctx context.Context, freelancerID primitive.ObjectID) ([]models.Project, error) {
	out, err := s.repo.ListByFreelancer(ctx, freelancerID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

// Create adds a project to the freelancer's portfolio and returns the whole
// portfolio. The caller checks the freelancer exists.
func (s *Service) Create(ctx context.Context, freelancerID primitive.ObjectID, in Input) ([]models.Project, error) {
	title, desc := text(in.Title), text(in.Description)
	if title == "" || desc == "" {
		return nil, apperr.Invalid("title and description are required")
	}
	var completed *time.Time
	if in.CompletedAt != nil {
		at, err := parseDate(*in.CompletedAt)
		if err != nil {
			return nil, err
		}
		completed = at
	}

	now := s.now()
	p := &models.Project{
		ID:           primitive.NewObjectID(),
		FreelancerID: freelancerID,
		Title:        title,
		Description:  utils.CleanText(desc),
		Duration:     text(in.Duration),
		CompletedAt:  completed,
		ProjectURL:   text(in.ProjectURL),
		GithubURL:    text(in.GithubURL),
		ClientName:   text(in.ClientName),
		IsPublic:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Technologies != nil {
		p.Technologies = utils.TrimStrings(*in.Technologies)
	}
	if in.Images != nil {
		p.Images = utils.TrimStrings(*in.Images)
	}
	if in.Budget.Value != nil {
		p.Budget = in.Budget.Value
	}
	if v := in.visibility(); v != nil {
		p.IsPublic = *v
	}
	p.Normalize()

	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return s.All(ctx, freelancerID)
}

// Update edits a project. owner, when set, must own it.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, owner *primitive.ObjectID, in Input) (*models.Project, error) {
	set, err := in.fields()
	if err != nil {
		return nil, err
	}
	set["updatedAt"] = s.now()
	p, err := s.repo.Update(ctx, id, owner, set)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("Project not found")
	}
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID, owner *primitive.ObjectID) error {
	ok, err := s.repo.Delete(ctx, id, owner)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if !ok {
		return apperr.NotFound("Project not found")
	}
	return nil
}

// DeleteAll removes a freelancer's portfolio when the account goes away.
func (s *Service) DeleteAll(ctx context.Context, freelancerID primitive.ObjectID) error {
	n, err := s.repo.DeleteByFreelancer(ctx, freelancerID)
	if err != nil {
		return fmt.Errorf("delete projects: %w", err)
	}
	s.log.Debug("portfolio removed", zap.String("freelancer", freelancerID.Hex()), zap.Int64("projects", n))
	return nil
}
