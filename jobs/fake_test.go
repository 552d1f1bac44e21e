package jobs

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"freelancehub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// memRepo mirrors the Store's single-document update semantics under one
// mutex.
type memRepo struct {
	mu         sync.Mutex
	jobs       map[primitive.ObjectID]*models.Job
	applicants map[string]Applicant
}

func newMemRepo() *memRepo {
	return &memRepo{jobs: map[primitive.ObjectID]*models.Job{}, applicants: map[string]Applicant{}}
}

func clone(j *models.Job) *models.Job {
	c := *j
	c.Applications = append([]models.Application(nil), j.Applications...)
	c.Submissions = append([]models.Submission(nil), j.Submissions...)
	c.Skills = append([]models.Skill(nil), j.Skills...)
	return &c
}

func (m *memRepo) List(_ context.Context, f Filter) ([]models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Job{}
	for _, j := range m.jobs {
		if f.Search != "" {
			s := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(j.Title), s) && !strings.Contains(strings.ToLower(j.Description), s) {
				continue
			}
		}
		if f.EmployerID != "" && j.EmployerID != f.EmployerID {
			continue
		}
		if f.ExperienceLevel != "" && j.ExperienceLevel != f.ExperienceLevel {
			continue
		}
		if f.AppliedBy != "" && j.ApplicationBy(f.AppliedBy) == nil {
			continue
		}
		if f.BudgetMin != nil && (j.BudgetMin == nil || *j.BudgetMin < *f.BudgetMin) {
			continue
		}
		if f.BudgetMax != nil && (j.BudgetMax == nil || *j.BudgetMax > *f.BudgetMax) {
			continue
		}
		out = append(out, *clone(j))
	}
	sort.Slice(out, func(a, b int) bool { return out[a].UpdatedAt.After(out[b].UpdatedAt) })
	return out, nil
}

func (m *memRepo) Get(_ context.Context, id primitive.ObjectID) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return clone(j), nil
}

func (m *memRepo) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jobs[id]
	return ok, nil
}

func (m *memRepo) Insert(_ context.Context, j *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[j.ID] = clone(j)
	return nil
}

func (m *memRepo) Update(_ context.Context, id primitive.ObjectID, p Patch, now time.Time) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if p.Title != nil {
		j.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		j.Description = strings.TrimSpace(*p.Description)
	}
	if p.Status != nil {
		j.Status = *p.Status
	}
	if p.BudgetMin.Set {
		j.BudgetMin = p.BudgetMin.Value
	}
	if p.BudgetMax.Set {
		j.BudgetMax = p.BudgetMax.Value
	}
	j.UpdatedAt = now
	return clone(j), nil
}

func (m *memRepo) Delete(_ context.Context, id primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jobs[id]
	delete(m.jobs, id)
	return ok, nil
}

func (m *memRepo) PushApplication(_ context.Context, jobID primitive.ObjectID, app models.Application) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobID]
	if !ok || j.ApplicationBy(app.FreelancerID) != nil {
		return nil, mongo.ErrNoDocuments
	}
	j.Applications = append(j.Applications, app)
	j.ApplicationsCount++
	j.Status = models.JobPending
	j.UpdatedAt = app.CreatedAt
	return clone(j), nil
}

func (m *memRepo) byApplication(appID primitive.ObjectID) (*models.Job, *models.Application) {
	for _, j := range m.jobs {
		if a := j.FindApplication(appID); a != nil {
			return j, a
		}
	}
	return nil, nil
}

func (m *memRepo) AcceptApplication(_ context.Context, appID primitive.ObjectID, now time.Time) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, a := m.byApplication(appID)
	if j == nil {
		return nil, mongo.ErrNoDocuments
	}
	a.Status = models.ApplicationAccepted
	a.UpdatedAt = now
	j.Status = models.JobAccepted
	j.UpdatedAt = now
	return clone(j), nil
}

func (m *memRepo) DeclineApplication(_ context.Context, appID primitive.ObjectID, now time.Time) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, a := m.byApplication(appID)
	if j == nil {
		return nil, mongo.ErrNoDocuments
	}
	a.Status = models.ApplicationDeclined
	a.UpdatedAt = now
	j.Status = j.DeriveStatus()
	j.UpdatedAt = now
	return clone(j), nil
}

func (m *memRepo) PushSubmission(_ context.Context, jobID primitive.ObjectID, sub models.Submission, onlyIfAbsent bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobID]
	if !ok || (onlyIfAbsent && j.SubmissionBy(sub.FreelancerID) != nil) {
		return false, nil
	}
	j.Submissions = append(j.Submissions, sub)
	return true, nil
}

func (m *memRepo) UpdateSubmission(_ context.Context, jobID primitive.ObjectID, freelancerID string, p SubmissionPatch, now time.Time) (*models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobID]
	if !ok {
		return nil, nil
	}
	sub := j.SubmissionBy(freelancerID)
	if sub == nil {
		return nil, nil
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
	sub.UpdatedAt = now
	c := *sub
	return &c, nil
}

func (m *memRepo) Applicants(_ context.Context, ids []primitive.ObjectID) (map[string]Applicant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]Applicant{}
	for _, id := range ids {
		if a, ok := m.applicants[id.Hex()]; ok {
			out[id.Hex()] = a
		}
	}
	return out, nil
}
