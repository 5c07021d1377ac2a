package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// FileRef points at an uploaded file. Only Filename and UploadedAt are ever
// shown outside the service; Path stays server-side.
type FileRef struct {
	Filename   string    `json:"filename"`
	Path       string    `json:"path,omitempty"`
	UploadedAt time.Time `json:"uploadDate"`
}

type Education struct {
	Institution   string   `json:"institution,omitempty"`
	DegreeField   string   `json:"degreeField,omitempty"`
	CurrentDegree string   `json:"currentDegree,omitempty"` // normalized enum, see mapping package
	StudyYear     string   `json:"studyYear,omitempty"`
	GPA           *float64 `json:"gpa,omitempty"`
	Transcript    *FileRef `json:"transcriptFile,omitempty"`
}

// WorkExperience keeps HasExperience as a pointer: nil means the question was
// never answered, false is a real answer and counts toward completion.
type WorkExperience struct {
	HasExperience *bool  `json:"hasExperience,omitempty"`
	Description   string `json:"description,omitempty"`
}

type Location struct {
	City string `json:"city,omitempty"`
}

type Availability struct {
	HoursPerWeek  string `json:"hoursPerWeek,omitempty"` // normalized enum
	FlexibleHours *bool  `json:"flexibleHours,omitempty"`
}

type Links struct {
	GitHub    string `json:"github,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
}

// Student is a candidate profile record, created as an empty skeleton when a
// chat session starts and filled in step by step.
type Student struct {
	ID         string `json:"id"`
	SessionID  string `json:"-"`
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"` // stored case-folded
	Phone      string `json:"phone,omitempty"`
	IsActive   bool   `json:"isActive"`
	ReplacedBy string `json:"replacedBy,omitempty"` // id of the record that superseded this one

	Education      Education      `json:"education"`
	WorkExperience WorkExperience `json:"workExperience"`
	Location       Location       `json:"location"`
	Availability   Availability   `json:"availability"`

	PersonalStatement string `json:"personalStatement,omitempty"`
	AdditionalInfo    string `json:"additionalInfo,omitempty"`
	SpecialRoles      string `json:"specialRoles,omitempty"`
	SoftSkills        string `json:"softSkills,omitempty"`
	KeyInfo           string `json:"keyInfo,omitempty"`

	Links  Links    `json:"links"`
	CVFile *FileRef `json:"cvFile,omitempty"`

	ProfileComplete bool       `json:"profileComplete"`
	TermsAccepted   bool       `json:"termsAccepted"`
	TermsAcceptedAt *time.Time `json:"termsAcceptedAt,omitempty"`

	ChatStep      int  `json:"currentStep"`
	ChatCompleted bool `json:"chatCompleted"`

	CreatedAt    time.Time `json:"createdAt"`
	LastUpdated  time.Time `json:"lastUpdated"`
	LastAccessed time.Time `json:"-"`
}

// Exposure grants a viewer (agency user) access to a candidate's real name
// until ExpiresAt. Owned by the admin side; this service only reads it when
// building recruiter views.
type Exposure struct {
	ID        string
	UserID    string
	StudentID string
	IsActive  bool
	ExpiresAt time.Time
	CreatedAt time.Time
}

// StudentFilter narrows ListStudents. Zero values mean "no constraint".
type StudentFilter struct {
	Search        string
	Completed     string // "", "true", "false" or "all"; empty shows completed only
	GPAMin        *float64
	GPAMax        *float64
	HasExperience *bool
	Institution   string
	DegreeField   string
	CurrentDegree string
	HoursPerWeek  string
	StudyYear     string
	City          string
	FlexibleHours *bool
	Page          int
	Limit         int
}

// Stats summarizes the active candidate pool.
type Stats struct {
	Total          int       `json:"total"`
	Completed      int       `json:"completed"`
	InProgress     int       `json:"inProgress"`
	CompletionRate int       `json:"completionRate"`
	Recent         []Student `json:"recentStudents"`
}
