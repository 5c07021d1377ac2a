// Package mapping normalizes the Hebrew button labels collected by the chat
// flow into the enum values stored on a profile. Lookup order is exact match,
// then a symbol-stripped fuzzy match (labels carry emoji prefixes that older
// clients sometimes drop), then a fixed fallback.
package mapping

import (
	"strconv"
	"strings"
	"unicode"
)

// Degree enum values.
const (
	DegreeBachelor           = "bachelor"
	DegreeMaster             = "master"
	DegreeCertificate        = "certificate"
	DegreeProfessionalCourse = "professional_course"
	DegreeOther              = "other"
)

// Hours-per-week enum values.
const (
	HoursFullTime = "full_time"
	HoursPartTime = "part_time"
	HoursFlexible = "flexible"
	HoursOther    = "other"
)

// Tables holds the label lookup maps. Build once at process start with
// NewTables and pass by reference; never mutate after construction.
type Tables struct {
	degrees map[string]string
	hours   map[string]string
}

func NewTables() *Tables {
	return &Tables{
		degrees: map[string]string{
			"🎓 תואר ראשון":  DegreeBachelor,
			"🎓 תואר שני":    DegreeMaster,
			"📜 תעודת מקצוע": DegreeCertificate,
			"🏛️ קורס מקצועי": DegreeProfessionalCourse,
			"🤔 אחר":         DegreeOther,
		},
		hours: map[string]string{
			"משרה מלאה":  HoursFullTime,
			"משרה חלקית": HoursPartTime,
			"גמיש":       HoursFlexible,
			"אחר":        HoursOther,
		},
	}
}

// Degree maps a degree label to its enum value, defaulting to "other".
func (t *Tables) Degree(label string) string {
	clean := strings.TrimSpace(label)
	if clean == "" {
		return DegreeOther
	}
	if v, ok := t.degrees[clean]; ok {
		return v
	}

	// Fuzzy fallback: compare Hebrew text only, ignoring emoji and symbols.
	stripped := hebrewOnly(clean)
	if stripped != "" {
		for key, v := range t.degrees {
			if hebrewOnly(key) == stripped {
				return v
			}
		}
	}
	return DegreeOther
}

// Hours maps an hours label to its enum value. Numeric answers are bucketed:
// 35+ hours is full time, anything positive is part time. Unrecognized input
// defaults to "flexible".
func (t *Tables) Hours(label string) string {
	clean := strings.TrimSpace(label)
	if clean == "" {
		return HoursFlexible
	}
	if v, ok := t.hours[clean]; ok {
		return v
	}

	if n, err := strconv.Atoi(clean); err == nil {
		if n >= 35 {
			return HoursFullTime
		}
		if n > 0 {
			return HoursPartTime
		}
	}
	return HoursFlexible
}

// hebrewOnly strips everything but Hebrew letters and spaces, collapsing the
// result for comparison.
func hebrewOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.Is(unicode.Hebrew, r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
