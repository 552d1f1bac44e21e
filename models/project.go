package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project is a portfolio entry. The projects collection is the only place
// projects are stored.
type Project struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FreelancerID primitive.ObjectID `bson:"freelancerId" json:"freelancerId"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	Technologies []string           `bson:"technologies" json:"technologies"`
	Duration     string             `bson:"duration,omitempty" json:"duration,omitempty"`
	Budget       *float64           `bson:"budget,omitempty" json:"budget,omitempty"`
	CompletedAt  *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	Images       []string           `bson:"images" json:"images"`
	ProjectURL   string             `bson:"projectUrl,omitempty" json:"projectUrl,omitempty"`
	GithubURL    string             `bson:"githubUrl,omitempty" json:"githubUrl,omitempty"`
	ClientName   string             `bson:"clientName,omitempty" json:"clientName,omitempty"`
	IsPublic     bool               `bson:"isPublic" json:"isPublic"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (p *Project) Normalize() {
	if p.Technologies == nil {
		p.Technologies = []string{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
}
