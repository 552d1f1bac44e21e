package users

import (
	"context"
	"sync"
	"time"

	"freelancehub/employers"
	"freelancehub/models"
	"freelancehub/projects"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type memRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemRepo(us ...models.User) *memRepo {
	m := &memRepo{users: map[primitive.ObjectID]*models.User{}}
	for i := range us {
		u := us[i]
		m.users[u.ID] = &u
	}
	return m
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.Profile.Skills = append([]string(nil), u.Profile.Skills...)
	c.Profile.Reviews = append([]models.Review(nil), u.Profile.Reviews...)
	c.Profile.Normalize()
	return &c
}

func (m *memRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return copyUser(u), nil
}

func (m *memRepo) ListByRole(_ context.Context, role string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, u := range m.users {
		if u.Role == role || u.Profile.Role == role {
			out = append(out, *copyUser(u))
		}
	}
	return out, nil
}

func (m *memRepo) Update(_ context.Context, id primitive.ObjectID, set, unset bson.M) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	for k, v := range set {
		switch k {
		case "email":
			u.Email = v.(string)
		case "profile.email":
			u.Profile.Email = v.(string)
		case "profile.fullName":
			u.Profile.FullName = v.(string)
		case "profile.title":
			u.Profile.Title = v.(string)
		case "profile.bio":
			u.Profile.Bio = v.(string)
		case "profile.hourlyRate":
			r := v.(float64)
			u.Profile.HourlyRate = &r
		case "profile.skills":
			u.Profile.Skills = v.([]string)
		case "updatedAt":
			u.UpdatedAt = v.(time.Time)
		}
	}
	if _, ok := unset["profile.hourlyRate"]; ok {
		u.Profile.HourlyRate = nil
	}
	return copyUser(u), nil
}

func (m *memRepo) AddReview(_ context.Context, id primitive.ObjectID, r models.Review, now time.Time) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	u.Profile.Reviews = append(u.Profile.Reviews, r)
	u.Profile.TotalRating = models.AverageRating(u.Profile.Reviews)
	u.UpdatedAt = now
	return copyUser(u), nil
}

func (m *memRepo) SetMetrics(_ context.Context, id primitive.ObjectID, fm models.FreelancerMetrics, now time.Time) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	u.Profile.ActiveProjects = fm.ActiveProjects
	u.Profile.PendingApplications = fm.PendingApplications
	u.Profile.CompletedProjects = fm.CompletedProjects
	u.Profile.TotalRating = fm.TotalRating
	u.UpdatedAt = now
	return copyUser(u), nil
}

func (m *memRepo) Delete(_ context.Context, id primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[id]
	delete(m.users, id)
	return ok, nil
}

// fakePortfolio keeps projects in a slice and records cascade deletes.
type fakePortfolio struct {
	mu       sync.Mutex
	projects []models.Project
	wiped    []primitive.ObjectID
}

func (f *fakePortfolio) Public(_ context.Context, id primitive.ObjectID) ([]models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Project{}
	for _, p := range f.projects {
		if p.FreelancerID == id && p.IsPublic {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePortfolio) Create(_ context.Context, id primitive.ObjectID, in projects.Input) ([]models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := models.Project{ID: primitive.NewObjectID(), FreelancerID: id, IsPublic: true}
	if in.Title != nil {
		p.Title = *in.Title
	}
	f.projects = append(f.projects, p)
	return f.projects, nil
}

func (f *fakePortfolio) Update(_ context.Context, id primitive.ObjectID, owner *primitive.ObjectID, in projects.Input) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.projects {
		if f.projects[i].ID == id && f.projects[i].FreelancerID == *owner {
			if in.Title != nil {
				f.projects[i].Title = *in.Title
			}
			p := f.projects[i]
			return &p, nil
		}
	}
	return nil, errProjectNotFound
}

func (f *fakePortfolio) Delete(_ context.Context, id primitive.ObjectID, owner *primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.projects {
		if f.projects[i].ID == id && f.projects[i].FreelancerID == *owner {
			f.projects = append(f.projects[:i], f.projects[i+1:]...)
			return nil
		}
	}
	return errProjectNotFound
}

func (f *fakePortfolio) DeleteAll(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wiped = append(f.wiped, id)
	return nil
}

type fakeEmployers struct {
	removed []primitive.ObjectID
	updated []employers.ProfileInput
}

func (f *fakeEmployers) ForUser(_ context.Context, id primitive.ObjectID) (*models.Employer, error) {
	return &models.Employer{ID: id, Role: models.RoleEmployer}, nil
}

func (f *fakeEmployers) UpdateProfile(_ context.Context, id primitive.ObjectID, in employers.ProfileInput) (*models.Employer, error) {
	f.updated = append(f.updated, in)
	e := &models.Employer{ID: id}
	if in.FullName != nil {
		e.Profile.FullName = *in.FullName
	}
	return e, nil
}

func (f *fakeEmployers) Remove(_ context.Context, id primitive.ObjectID) error {
	f.removed = append(f.removed, id)
	return nil
}

type jobsByApplicant map[string][]models.Job

func (j jobsByApplicant) ListByApplicant(_ context.Context, freelancerID string) ([]models.Job, error) {
	return j[freelancerID], nil
}
