package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"freelancehub/apperr"
	"freelancehub/models"
	"freelancehub/mq"
	"freelancehub/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SubmissionInput struct {
	FreelancerID string  `json:"freelancerId"`
	DeployLink   *string `json:"deployLink"`
	GithubLink   *string `json:"githubLink"`
	Description  *string `json:"description"`
}

// SubmissionPatch carries only the fields the caller supplied.
type SubmissionPatch struct {
	DeployLink  *string
	GithubLink  *string
	Description *string
}

func (in SubmissionInput) patch() SubmissionPatch {
	p := SubmissionPatch{}
	if in.DeployLink != nil {
		v := strings.TrimSpace(*in.DeployLink)
		p.DeployLink = &v
	}
	if in.GithubLink != nil {
		v := strings.TrimSpace(*in.GithubLink)
		p.GithubLink = &v
	}
	if in.Description != nil {
		v := utils.CleanText(*in.Description)
		p.Description = &v
	}
	return p
}

func (in SubmissionInput) submission(now time.Time) models.Submission {
	p := in.patch()
	sub := models.Submission{
		ID:           primitive.NewObjectID(),
		FreelancerID: strings.TrimSpace(in.FreelancerID),
		CreatedAt:    now,
	}
	if p.DeployLink != nil {
		sub.DeployLink = *p.DeployLink
	}
	if p.GithubLink != nil {
		sub.GithubLink = *p.GithubLink
	}
	if p.Description != nil {
		sub.Description = *p.Description
	}
	return sub
}

type SubmissionResult struct {
	Submission models.Submission
	JobID      string
	Created    bool
}

func (s *Service) checkSubmission(jobID string, in SubmissionInput) (primitive.ObjectID, error) {
	id, err := utils.ParseID(jobID, "Invalid job id")
	if err != nil {
		return id, err
	}
	if strings.TrimSpace(in.FreelancerID) == "" {
		return id, apperr.Invalid("freelancerId is required")
	}
	return id, nil
}

// Submit always appends a new submission.
func (s *Service) Submit(ctx context.Context, jobID string, in SubmissionInput) (*SubmissionResult, error) {
	id, err := s.checkSubmission(jobID, in)
	if err != nil {
		return nil, err
	}
	sub := in.submission(s.now())
	ok, err := s.repo.PushSubmission(ctx, id, sub, false)
	if err != nil {
		return nil, fmt.Errorf("push submission: %w", err)
	}
	if !ok {
		return nil, apperr.NotFound("Job not found")
	}
	s.emitSubmission(ctx, id, sub)
	return &SubmissionResult{Submission: sub, JobID: id.Hex(), Created: true}, nil
}

// UpsertSubmission updates the freelancer's submission in place, or appends
// one when none exists yet.
func (s *Service) UpsertSubmission(ctx context.Context, jobID string, in SubmissionInput) (*SubmissionResult, error) {
	id, err := s.checkSubmission(jobID, in)
	if err != nil {
		return nil, err
	}
	freelancerID := strings.TrimSpace(in.FreelancerID)

	// a concurrent writer can create the submission between our update and
	// our guarded append; one retry of the update picks it up
	for attempt := 0; attempt < 2; attempt++ {
		existing, err := s.repo.UpdateSubmission(ctx, id, freelancerID, in.patch(), s.now())
		if err != nil {
			return nil, fmt.Errorf("update submission: %w", err)
		}
		if existing != nil {
			s.emitSubmission(ctx, id, *existing)
			return &SubmissionResult{Submission: *existing, JobID: id.Hex()}, nil
		}
		if attempt > 0 {
			break
		}

		sub := in.submission(s.now())
		ok, err := s.repo.PushSubmission(ctx, id, sub, true)
		if err != nil {
			return nil, fmt.Errorf("push submission: %w", err)
		}
		if ok {
			s.emitSubmission(ctx, id, sub)
			return &SubmissionResult{Submission: sub, JobID: id.Hex(), Created: true}, nil
		}
		exists, err := s.repo.Exists(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("check job: %w", err)
		}
		if !exists {
			return nil, apperr.NotFound("Job not found")
		}
	}
	return nil, fmt.Errorf("upsert submission for job %s: concurrent update", id.Hex())
}

func (s *Service) emitSubmission(ctx context.Context, jobID primitive.ObjectID, sub models.Submission) {
	s.events.Emit(ctx, mq.Event{
		Name: mq.SubmissionSaved, EntityType: "job", EntityID: jobID.Hex(),
		ItemID: sub.ID.Hex(), ActorID: sub.FreelancerID,
	})
}
