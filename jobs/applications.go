package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"freelancehub/apperr"
	"freelancehub/models"
	"freelancehub/mq"
	"freelancehub/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ApplyInput struct {
	JobID             string          `json:"jobId"`
	FreelancerID      string          `json:"freelancerId"`
	CoverLetter       string          `json:"coverLetter"`
	Experience        string          `json:"experience"`
	Approach          string          `json:"approach"`
	ProposedRate      utils.FlexFloat `json:"proposedRate"`
	EstimatedDuration utils.FlexFloat `json:"estimatedDuration"`
}

type ApplyResult struct {
	Application models.Application
	JobID       string
	JobStatus   string
}

// Apply adds one application per (job, freelancer) and moves the job to
// pending.
func (s *Service) Apply(ctx context.Context, in ApplyInput) (*ApplyResult, error) {
	jobID, err := utils.ParseID(in.JobID, "Invalid jobId")
	if err != nil {
		return nil, err
	}
	freelancerID := strings.TrimSpace(in.FreelancerID)
	if freelancerID == "" {
		return nil, apperr.Invalid("freelancerId is required")
	}
	cover := utils.CleanText(in.CoverLetter)
	if cover == "" {
		return nil, apperr.Invalid("coverLetter is required")
	}

	now := s.now()
	app := models.Application{
		ID:                primitive.NewObjectID(),
		FreelancerID:      freelancerID,
		CoverLetter:       cover,
		Experience:        utils.CleanText(in.Experience),
		Approach:          utils.CleanText(in.Approach),
		ProposedRate:      in.ProposedRate.Value,
		EstimatedDuration: in.EstimatedDuration.Value,
		Status:            models.ApplicationApplied,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	j, err := s.repo.PushApplication(ctx, jobID, app)
	if errors.Is(err, mongo.ErrNoDocuments) {
		exists, xerr := s.repo.Exists(ctx, jobID)
		if xerr != nil {
			return nil, fmt.Errorf("check job: %w", xerr)
		}
		if !exists {
			return nil, apperr.NotFound("Job not found")
		}
		return nil, apperr.Conflict("You have already applied to this job")
	}
	if err != nil {
		return nil, fmt.Errorf("push application: %w", err)
	}

	stored := app
	if a := j.FindApplication(app.ID); a != nil {
		stored = *a
	}
	s.events.Emit(ctx, mq.Event{
		Name: mq.ApplicationCreated, EntityType: "job", EntityID: j.ID.Hex(),
		ItemID: app.ID.Hex(), ActorID: freelancerID,
	})
	return &ApplyResult{Application: stored, JobID: j.ID.Hex(), JobStatus: j.Status}, nil
}

type DecisionResult struct {
	Message   string
	JobID     string
	JobStatus string
}

// Accept marks the application accepted and forces the job to accepted.
// Other applications on the job keep their status.
func (s *Service) Accept(ctx context.Context, applicationID string) (*DecisionResult, error) {
	appID, err := primitive.ObjectIDFromHex(strings.TrimSpace(applicationID))
	if err != nil {
		return nil, apperr.NotFound("Application not found")
	}
	j, err := s.repo.AcceptApplication(ctx, appID, s.now())
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("Application not found")
	}
	if err != nil {
		return nil, fmt.Errorf("accept application: %w", err)
	}
	s.emitDecision(ctx, mq.ApplicationAccepted, j, appID)
	return &DecisionResult{Message: "Application accepted successfully", JobID: j.ID.Hex(), JobStatus: j.Status}, nil
}

// Decline marks the application declined. The job status follows what is
// left: accepted if anyone was accepted, pending while anyone is still
// applied, declined otherwise.
func (s *Service) Decline(ctx context.Context, applicationID string) (*DecisionResult, error) {
	appID, err := primitive.ObjectIDFromHex(strings.TrimSpace(applicationID))
	if err != nil {
		return nil, apperr.NotFound("Application not found")
	}
	j, err := s.repo.DeclineApplication(ctx, appID, s.now())
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("Application not found")
	}
	if err != nil {
		return nil, fmt.Errorf("decline application: %w", err)
	}
	s.emitDecision(ctx, mq.ApplicationDeclined, j, appID)
	return &DecisionResult{Message: "Application declined successfully", JobID: j.ID.Hex(), JobStatus: j.Status}, nil
}

func (s *Service) emitDecision(ctx context.Context, name string, j *models.Job, appID primitive.ObjectID) {
	e := mq.Event{Name: name, EntityType: "job", EntityID: j.ID.Hex(), ItemID: appID.Hex()}
	if a := j.FindApplication(appID); a != nil {
		e.ActorID = a.FreelancerID
	}
	s.events.Emit(ctx, e)
}
