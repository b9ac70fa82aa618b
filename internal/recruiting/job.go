package recruiting

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the publication state of a job posting.
type JobStatus string

const (
	JobActive JobStatus = "active"
	JobPaused JobStatus = "paused"
	JobClosed JobStatus = "closed"
)

// JobPosting is an employer-owned vacancy.
type JobPosting struct {
	ID              uuid.UUID
	CompanyID       uuid.UUID
	Title           string
	Description     string
	Requirements    []string
	EmploymentType  string
	ExperienceLevel string
	Remote          bool
	Location        string
	SalaryMin       int
	SalaryMax       int
	SalaryCurrency  string
	Status          JobStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CandidateProfile is the candidate-owned profile read by the scorer and the
// curriculum generator.
type CandidateProfile struct {
	ID                 uuid.UUID
	DisplayName        string
	Bio                string
	Location           string
	Skills             []string
	ExperienceYears    int
	PreferredSalaryMin int
	PreferredSalaryMax int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
