// Package scoring computes the weighted profile completion score shown to
// candidates and used for recruiter-facing sorting.
package scoring

import (
	"math"

	"github.com/cvgo/cvgo/internal/storage"
)

// Category weights. They sum to 1.0 so a fully populated profile scores 100.
const (
	weightBasicInfo    = 0.25 // name, email, phone, all or nothing
	weightEducation    = 0.25 // degree, institution, gpa
	weightFiles        = 0.20 // CV and transcript
	weightExperience   = 0.10 // the question was answered, either way
	weightAvailability = 0.10 // city and hours per week
	weightPersonal     = 0.10 // personal statement and additional info
)

// Score returns the completion percentage of a profile, 0..100.
// Pure: st is never modified and equal inputs always yield equal outputs.
func Score(st *storage.Student) int {
	var score float64

	if st.Name != "" && st.Email != "" && st.Phone != "" {
		score += weightBasicInfo
	}

	var education float64
	if st.Education.CurrentDegree != "" {
		education += 0.4
	}
	if st.Education.Institution != "" {
		education += 0.4
	}
	if st.Education.GPA != nil {
		education += 0.2
	}
	score += weightEducation * education

	var files float64
	if st.CVFile != nil && st.CVFile.Filename != "" {
		files += 0.6
	}
	if st.Education.Transcript != nil && st.Education.Transcript.Filename != "" {
		files += 0.4
	}
	score += weightFiles * files

	// An explicit "no experience" answer counts: presence, not truthiness.
	if st.WorkExperience.HasExperience != nil {
		score += weightExperience
	}

	var availability float64
	if st.Location.City != "" {
		availability += 0.5
	}
	if st.Availability.HoursPerWeek != "" {
		availability += 0.5
	}
	score += weightAvailability * availability

	var personal float64
	if st.PersonalStatement != "" {
		personal += 0.7
	}
	if st.AdditionalInfo != "" {
		personal += 0.3
	}
	score += weightPersonal * personal

	return int(math.Round(score * 100))
}
