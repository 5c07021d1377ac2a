// Package anonview renders candidate profiles for recruiter consumption.
// Everything identifying is masked or dropped unless the viewer holds a live
// exposure grant for the specific candidate, in which case the real name is
// restored. The view is built from a copy; the source record is never touched.
package anonview

import (
	"time"

	"github.com/cvgo/cvgo/internal/masking"
	"github.com/cvgo/cvgo/internal/scoring"
	"github.com/cvgo/cvgo/internal/storage"
)

// NamePlaceholder stands in for the candidate's name until exposure is granted.
const NamePlaceholder = "&*******&"

// FileInfo is the recruiter-visible slice of an uploaded file. No path.
type FileInfo struct {
	Filename   string    `json:"filename"`
	UploadDate time.Time `json:"uploadDate"`
}

// View is the anonymized profile. Email, phone and links have no fields here
// at all, so they cannot leak through serialization.
type View struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	HasAccess bool   `json:"hasAccess"`

	Education      storage.Education      `json:"education"`
	WorkExperience storage.WorkExperience `json:"workExperience"`
	Location       storage.Location       `json:"location"`
	Availability   storage.Availability   `json:"availability"`

	PersonalStatement string `json:"personalStatement,omitempty"`
	AdditionalInfo    string `json:"additionalInfo,omitempty"`
	SpecialRoles      string `json:"specialRoles,omitempty"`
	SoftSkills        string `json:"softSkills,omitempty"`
	KeyInfo           string `json:"keyInfo,omitempty"`

	CVFile *FileInfo `json:"cvFile,omitempty"`

	CompletionScore int       `json:"completionScore"`
	ProfileComplete bool      `json:"profileComplete"`
	CreatedAt       time.Time `json:"createdAt"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

// Build renders st for a viewer whose live exposure grants are in granted
// (keyed by student id). st is read-only here.
func Build(st *storage.Student, granted map[string]bool) View {
	v := View{
		ID:   st.ID,
		Name: NamePlaceholder,

		Education:      st.Education,
		WorkExperience: st.WorkExperience,
		Location:       st.Location,
		Availability:   st.Availability,

		PersonalStatement: masking.Mask(st.PersonalStatement),
		AdditionalInfo:    masking.Mask(st.AdditionalInfo),
		SpecialRoles:      masking.Mask(st.SpecialRoles),
		SoftSkills:        masking.Mask(st.SoftSkills),
		KeyInfo:           masking.Mask(st.KeyInfo),

		CompletionScore: scoring.Score(st),
		ProfileComplete: st.ProfileComplete,
		CreatedAt:       st.CreatedAt,
		LastUpdated:     st.LastUpdated,
	}

	// Education was copied by value but its transcript is a pointer; replace
	// it with a path-stripped copy instead of editing the original.
	if st.Education.Transcript != nil {
		v.Education.Transcript = &storage.FileRef{
			Filename:   st.Education.Transcript.Filename,
			UploadedAt: st.Education.Transcript.UploadedAt,
		}
	}

	if st.CVFile != nil {
		v.CVFile = &FileInfo{
			Filename:   st.CVFile.Filename,
			UploadDate: st.CVFile.UploadedAt,
		}
	}

	if granted[st.ID] {
		v.Name = st.Name
		v.HasAccess = true
	}

	return v
}

// BuildAll renders a page of profiles for one viewer.
func BuildAll(students []storage.Student, granted map[string]bool) []View {
	views := make([]View, 0, len(students))
	for i := range students {
		views = append(views, Build(&students[i], granted))
	}
	return views
}
