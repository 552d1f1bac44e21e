package testutil

import (
	"time"

	"freelancehub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func Float(v float64) *float64 { return &v }

// NewJob returns a valid open job owned by employerID.
func NewJob(employerID string) models.Job {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return models.Job{
		EmployerID:    employerID,
		Title:         "Build a landing page",
		Description:   "Responsive marketing page with a contact form",
		BudgetType:    models.BudgetFixed,
		BudgetMin:     Float(500),
		BudgetMax:     Float(1500),
		Status:        models.JobOpen,
		RemoteAllowed: true,
		Applications:  []models.Application{},
		Skills:        []models.Skill{{Name: "React"}},
		Submissions:   []models.Submission{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// NewApplication returns an applied application for freelancerID.
func NewApplication(freelancerID string) models.Application {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return models.Application{
		ID:           primitive.NewObjectID(),
		FreelancerID: freelancerID,
		CoverLetter:  "I can do this",
		Status:       models.ApplicationApplied,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewUser returns a user with the given role and a placeholder hash.
func NewUser(email, role, fullName string) models.User {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return models.User{
		Email:    email,
		Password: "$2a$10$placeholderplaceholderplaceholderplaceholderplace",
		Role:     role,
		Profile: models.Profile{
			Email:    email,
			FullName: fullName,
			Role:     role,
			Skills:   []string{},
			Reviews:  []models.Review{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
