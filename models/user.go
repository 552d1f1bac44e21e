package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleFreelancer = "freelancer"
	RoleEmployer   = "employer"
	RoleAdmin      = "admin"
)

func ValidUserRole(r string) bool { return r == RoleFreelancer || r == RoleEmployer }

type Review struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	JobID      string             `bson:"jobId" json:"jobId"`
	EmployerID string             `bson:"employerId" json:"employerId"`
	Rating     float64            `bson:"rating" json:"rating"`
	Comment    string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

type Profile struct {
	Email               string   `bson:"email,omitempty" json:"email,omitempty"`
	Phone               string   `bson:"phone,omitempty" json:"phone,omitempty"`
	FullName            string   `bson:"fullName,omitempty" json:"fullName,omitempty"`
	Role                string   `bson:"role,omitempty" json:"role,omitempty"`
	AvatarURL           string   `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	Title               string   `bson:"title,omitempty" json:"title,omitempty"`
	Bio                 string   `bson:"bio,omitempty" json:"bio,omitempty"`
	HourlyRate          *float64 `bson:"hourlyRate,omitempty" json:"hourlyRate,omitempty"`
	Location            string   `bson:"location,omitempty" json:"location,omitempty"`
	Website             string   `bson:"website,omitempty" json:"website,omitempty"`
	LinkedIn            string   `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	Github              string   `bson:"github,omitempty" json:"github,omitempty"`
	Skills              []string `bson:"skills" json:"skills"`
	Reviews             []Review `bson:"reviews" json:"reviews"`
	ActiveProjects      int      `bson:"activeProjects" json:"activeProjects"`
	PendingApplications int      `bson:"pendingApplications" json:"pendingApplications"`
	CompletedProjects   int      `bson:"completedProjects" json:"completedProjects"`
	TotalRating         float64  `bson:"totalRating" json:"totalRating"`

	// Projects is never persisted on the user; it is filled from the
	// projects collection when a profile is read.
	Projects []Project `bson:"-" json:"projects"`
}

type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email           string             `bson:"email" json:"email"`
	Password        string             `bson:"password" json:"-"`
	Role            string             `bson:"role" json:"role"`
	Profile         Profile            `bson:"profile" json:"profile"`
	ResetOTP        string             `bson:"resetOtp,omitempty" json:"-"`
	ResetOTPExpires *time.Time         `bson:"resetOtpExpires,omitempty" json:"-"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AverageRating is the mean of the review ratings, 0 with no reviews.
func AverageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var sum float64
	for _, r := range reviews {
		sum += r.Rating
	}
	return sum / float64(len(reviews))
}

func (p *Profile) Normalize() {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Reviews == nil {
		p.Reviews = []Review{}
	}
	if p.Projects == nil {
		p.Projects = []Project{}
	}
}

type FreelancerMetrics struct {
	ActiveProjects      int     `bson:"activeProjects" json:"activeProjects"`
	PendingApplications int     `bson:"pendingApplications" json:"pendingApplications"`
	CompletedProjects   int     `bson:"completedProjects" json:"completedProjects"`
	TotalRating         float64 `bson:"totalRating" json:"totalRating"`
}

func (p *Profile) Metrics() FreelancerMetrics {
	return FreelancerMetrics{
		ActiveProjects:      p.ActiveProjects,
		PendingApplications: p.PendingApplications,
		CompletedProjects:   p.CompletedProjects,
		TotalRating:         p.TotalRating,
	}
}

// Freelancer is the directory listing shape for GET /users?role=freelancer.
type Freelancer struct {
	ID           string   `json:"id"`
	FullName     string   `json:"fullName"`
	Title        string   `json:"title"`
	Email        string   `json:"email"`
	Bio          string   `json:"bio"`
	Location     string   `json:"location"`
	HourlyRate   *float64 `json:"hourlyRate"`
	Skills       []string `json:"skills"`
	TotalRating  float64  `json:"totalRating"`
	ReviewsCount int      `json:"reviewsCount"`
}

func (u *User) Freelancer() Freelancer {
	skills := u.Profile.Skills
	if skills == nil {
		skills = []string{}
	}
	email := u.Profile.Email
	if email == "" {
		email = u.Email
	}
	return Freelancer{
		ID:           u.ID.Hex(),
		FullName:     u.Profile.FullName,
		Title:        u.Profile.Title,
		Email:        email,
		Bio:          u.Profile.Bio,
		Location:     u.Profile.Location,
		HourlyRate:   u.Profile.HourlyRate,
		Skills:       skills,
		TotalRating:  u.Profile.TotalRating,
		ReviewsCount: len(u.Profile.Reviews),
	}
}
