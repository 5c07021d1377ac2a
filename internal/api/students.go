package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cvgo/cvgo/internal/anonview"
	"github.com/cvgo/cvgo/internal/storage"
)

// viewerGrants loads the live exposure grants for the viewer named in the
// X-Viewer-ID header. No header means no grants; a store failure degrades to
// the fully anonymized view rather than failing the request.
func viewerGrants(deps Deps, r *http.Request) map[string]bool {
	viewerID := r.Header.Get("X-Viewer-ID")
	if viewerID == "" {
		return nil
	}
	granted, err := deps.Store.ActiveGrantIDs(viewerID, time.Now().UTC())
	if err != nil {
		return nil
	}
	return granted
}

func handleListStudents(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := storage.StudentFilter{
			Search:        q.Get("search"),
			Completed:     q.Get("completed"),
			Institution:   q.Get("institution"),
			DegreeField:   q.Get("degreeField"),
			CurrentDegree: q.Get("currentDegree"),
			HoursPerWeek:  q.Get("hoursPerWeek"),
			StudyYear:     q.Get("studyYear"),
			City:          q.Get("city"),
			Page:          parseIntParam(r, "page", 1, 0),
			Limit:         parseIntParam(r, "limit", 20, 100),
		}
		if v, err := strconv.ParseFloat(q.Get("gpaMin"), 64); err == nil {
			filter.GPAMin = &v
		}
		if v, err := strconv.ParseFloat(q.Get("gpaMax"), 64); err == nil {
			filter.GPAMax = &v
		}
		if v, err := strconv.ParseBool(q.Get("hasExperience")); err == nil {
			filter.HasExperience = &v
		}
		if v, err := strconv.ParseBool(q.Get("flexibleHours")); err == nil {
			filter.FlexibleHours = &v
		}

		students, total, err := deps.Store.ListStudents(filter)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "listing students: %v", err)
			return
		}

		granted := viewerGrants(deps, r)
		writeJSON(w, http.StatusOK, map[string]any{
			"students": anonview.BuildAll(students, granted),
			"total":    total,
			"page":     filter.Page,
			"limit":    filter.Limit,
		})
	}
}

func handleGetStudent(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		student, err := deps.Store.GetStudentByID(id)
		if err != nil {
			serviceError(w, err)
			return
		}
		if !student.IsActive {
			httpError(w, http.StatusNotFound, "not_found", "student not found")
			return
		}

		granted := viewerGrants(deps, r)
		writeJSON(w, http.StatusOK, anonview.Build(&student, granted))
	}
}

func handleStatistics(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := deps.Store.Statistics()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "computing statistics: %v", err)
			return
		}

		// Recent entries go out anonymized like everything agency-facing.
		views := anonview.BuildAll(stats.Recent, nil)
		writeJSON(w, http.StatusOK, map[string]any{
			"total":          stats.Total,
			"completed":      stats.Completed,
			"inProgress":     stats.InProgress,
			"completionRate": stats.CompletionRate,
			"recentStudents": views,
		})
	}
}
