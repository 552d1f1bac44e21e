package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EmployerMetrics struct {
	ActiveJobs        int `bson:"activeJobs" json:"activeJobs"`
	TotalApplications int `bson:"totalApplications" json:"totalApplications"`
	ActiveProjects    int `bson:"activeProjects" json:"activeProjects"`
	DraftJobs         int `bson:"draftJobs" json:"draftJobs"`
}

type EmployerProfile struct {
	FullName  string `bson:"fullName,omitempty" json:"fullName,omitempty"`
	Title     string `bson:"title,omitempty" json:"title,omitempty"`
	AvatarURL string `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	Phone     string `bson:"phone,omitempty" json:"phone,omitempty"`
	Location  string `bson:"location,omitempty" json:"location,omitempty"`
	Website   string `bson:"website,omitempty" json:"website,omitempty"`
	LinkedIn  string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	Github    string `bson:"github,omitempty" json:"github,omitempty"`
	Bio       string `bson:"bio,omitempty" json:"bio,omitempty"`

	EmployerMetrics `bson:",inline"`
}

// Employer mirrors an employer-role User. A mirror created from a User
// shares the User's _id.
type Employer struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password,omitempty" json:"-"`
	Role      string             `bson:"role" json:"role"`
	Profile   EmployerProfile    `bson:"profile" json:"profile"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// EmployerFromUser synthesizes an employer view of u with zero metrics.
func EmployerFromUser(u *User) *Employer {
	return &Employer{
		ID:    u.ID,
		Email: u.Email,
		Role:  RoleEmployer,
		Profile: EmployerProfile{
			FullName:  u.Profile.FullName,
			Title:     u.Profile.Title,
			AvatarURL: u.Profile.AvatarURL,
			Phone:     u.Profile.Phone,
			Location:  u.Profile.Location,
			Website:   u.Profile.Website,
			LinkedIn:  u.Profile.LinkedIn,
			Github:    u.Profile.Github,
			Bio:       u.Profile.Bio,
		},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type AdminProfile struct {
	FullName  string `bson:"fullName,omitempty" json:"fullName,omitempty"`
	AvatarURL string `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
}

type Admin struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Role      string             `bson:"role" json:"role"`
	Profile   AdminProfile       `bson:"profile" json:"profile"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
