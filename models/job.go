package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	BudgetFixed  = "fixed"
	BudgetHourly = "hourly"
)

const (
	JobOpen      = "open"
	JobPending   = "pending"
	JobAccepted  = "accepted"
	JobDeclined  = "declined"
	JobCompleted = "completed"
	JobPaused    = "paused"
	JobCancelled = "cancelled"
)

const (
	ApplicationApplied  = "applied"
	ApplicationAccepted = "accepted"
	ApplicationDeclined = "declined"
)

var (
	jobStatuses      = []string{JobOpen, JobPending, JobAccepted, JobDeclined, JobCompleted, JobPaused, JobCancelled}
	experienceLevels = []string{"entry", "intermediate", "expert"}
)

func ValidJobStatus(s string) bool       { return contains(jobStatuses, s) }
func ValidExperienceLevel(s string) bool { return contains(experienceLevels, s) }
func ValidBudgetType(s string) bool      { return s == BudgetFixed || s == BudgetHourly }

type Skill struct {
	ID       string `bson:"id,omitempty" json:"id,omitempty"`
	Name     string `bson:"name" json:"name"`
	Category string `bson:"category,omitempty" json:"category,omitempty"`
}

type Application struct {
	ID                primitive.ObjectID `bson:"_id" json:"_id"`
	FreelancerID      string             `bson:"freelancerId" json:"freelancerId"`
	CoverLetter       string             `bson:"coverLetter" json:"coverLetter"`
	Experience        string             `bson:"experience,omitempty" json:"experience,omitempty"`
	Approach          string             `bson:"approach,omitempty" json:"approach,omitempty"`
	ProposedRate      *float64           `bson:"proposedRate,omitempty" json:"proposedRate,omitempty"`
	EstimatedDuration *float64           `bson:"estimatedDuration,omitempty" json:"estimatedDuration,omitempty"`
	Status            string             `bson:"status" json:"status"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`

	// filled on read from the applicant's profile
	FreelancerName  string `bson:"-" json:"freelancerName,omitempty"`
	FreelancerTitle string `bson:"-" json:"freelancerTitle,omitempty"`
}

type Submission struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	FreelancerID string             `bson:"freelancerId" json:"freelancerId"`
	DeployLink   string             `bson:"deployLink,omitempty" json:"deployLink,omitempty"`
	GithubLink   string             `bson:"githubLink,omitempty" json:"githubLink,omitempty"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Job is the aggregate root. Applications and submissions only change
// through the jobs service.
type Job struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	EmployerID         string             `bson:"employerId" json:"employerId"`
	Title              string             `bson:"title" json:"title"`
	Description        string             `bson:"description" json:"description"`
	BudgetType         string             `bson:"budgetType" json:"budgetType"`
	BudgetMin          *float64           `bson:"budgetMin,omitempty" json:"budgetMin,omitempty"`
	BudgetMax          *float64           `bson:"budgetMax,omitempty" json:"budgetMax,omitempty"`
	DurationWeeks      *float64           `bson:"durationWeeks,omitempty" json:"durationWeeks,omitempty"`
	Status             string             `bson:"status" json:"status"`
	Location           string             `bson:"location,omitempty" json:"location,omitempty"`
	RemoteAllowed      bool               `bson:"remoteAllowed" json:"remoteAllowed"`
	ExperienceLevel    string             `bson:"experienceLevel,omitempty" json:"experienceLevel,omitempty"`
	RelevantExperience string             `bson:"relevantExperience,omitempty" json:"relevantExperience,omitempty"`
	ProposedApproach   string             `bson:"proposedApproach,omitempty" json:"proposedApproach,omitempty"`
	ApplicationsCount  int                `bson:"applicationsCount" json:"applicationsCount"`
	Applications       []Application      `bson:"applications" json:"applications"`
	Skills             []Skill            `bson:"skills" json:"skills"`
	Submissions        []Submission       `bson:"submissions" json:"submissions"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Normalize fixes up a job read from storage: nil slices become empty and
// the application count is recomputed from the embedded list.
func (j *Job) Normalize() {
	if j.Applications == nil {
		j.Applications = []Application{}
	}
	if j.Skills == nil {
		j.Skills = []Skill{}
	}
	if j.Submissions == nil {
		j.Submissions = []Submission{}
	}
	j.ApplicationsCount = len(j.Applications)
}

func (j *Job) FindApplication(id primitive.ObjectID) *Application {
	for i := range j.Applications {
		if j.Applications[i].ID == id {
			return &j.Applications[i]
		}
	}
	return nil
}

func (j *Job) ApplicationBy(freelancerID string) *Application {
	for i := range j.Applications {
		if j.Applications[i].FreelancerID == freelancerID {
			return &j.Applications[i]
		}
	}
	return nil
}

func (j *Job) SubmissionBy(freelancerID string) *Submission {
	for i := range j.Submissions {
		if j.Submissions[i].FreelancerID == freelancerID {
			return &j.Submissions[i]
		}
	}
	return nil
}

func (j *Job) HasAcceptedApplication() bool {
	for _, a := range j.Applications {
		if a.Status == ApplicationAccepted {
			return true
		}
	}
	return false
}

// DeriveStatus computes the job status implied by its applications after a
// decline: any accepted wins, then any still applied, otherwise declined.
func (j *Job) DeriveStatus() string {
	pending := false
	for _, a := range j.Applications {
		switch a.Status {
		case ApplicationAccepted:
			return JobAccepted
		case ApplicationApplied, "":
			pending = true
		}
	}
	if pending {
		return JobPending
	}
	return JobDeclined
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
