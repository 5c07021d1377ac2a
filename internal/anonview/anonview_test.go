package anonview

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/cvgo/cvgo/internal/storage"
)

func sampleStudent() storage.Student {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	gpa := 88.5
	hasExp := true
	return storage.Student{
		ID:       "stu-1",
		Name:     "Dana Levi",
		Email:    "dana@example.com",
		Phone:    "050-123-4567",
		IsActive: true,
		Education: storage.Education{
			Institution: "האוניברסיטה העברית",
			GPA:         &gpa,
			Transcript:  &storage.FileRef{Filename: "grades.pdf", Path: "/data/uploads/grades.pdf", UploadedAt: now},
		},
		WorkExperience:    storage.WorkExperience{HasExperience: &hasExp, Description: "backend intern"},
		Location:          storage.Location{City: "ירושלים"},
		PersonalStatement: "Contact me at dana@example.com or 050-123-4567",
		Links:             storage.Links{GitHub: "https://github.com/dana"},
		CVFile:            &storage.FileRef{Filename: "cv.pdf", Path: "/data/uploads/cv.pdf", UploadedAt: now},
		ProfileComplete:   true,
		CreatedAt:         now,
		LastUpdated:       now,
	}
}

func TestBuildMasksIdentity(t *testing.T) {
	st := sampleStudent()
	v := Build(&st, nil)

	if v.Name != NamePlaceholder {
		t.Errorf("name = %q, want placeholder", v.Name)
	}
	if v.HasAccess {
		t.Error("hasAccess should be false without a grant")
	}
	if strings.Contains(v.PersonalStatement, "dana@example.com") {
		t.Errorf("email leaked through free text: %q", v.PersonalStatement)
	}
	if strings.Contains(v.PersonalStatement, "050-123-4567") {
		t.Errorf("phone leaked through free text: %q", v.PersonalStatement)
	}
}

func TestBuildNeverSerializesContactFields(t *testing.T) {
	st := sampleStudent()
	v := Build(&st, nil)

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshaling view: %v", err)
	}
	for _, leak := range []string{"dana@example.com", "050-123-4567", "github.com/dana", `"path"`} {
		if strings.Contains(string(data), leak) {
			t.Errorf("serialized view contains %q", leak)
		}
	}
}

func TestBuildStripsFilePaths(t *testing.T) {
	st := sampleStudent()
	v := Build(&st, nil)

	if v.CVFile == nil || v.CVFile.Filename != "cv.pdf" {
		t.Fatalf("cv file info wrong: %+v", v.CVFile)
	}
	if v.Education.Transcript == nil {
		t.Fatal("transcript reference dropped entirely")
	}
	if v.Education.Transcript.Path != "" {
		t.Errorf("transcript path leaked: %q", v.Education.Transcript.Path)
	}
	if v.Education.Transcript.Filename != "grades.pdf" {
		t.Errorf("transcript filename = %q", v.Education.Transcript.Filename)
	}
}

func TestBuildWithGrant(t *testing.T) {
	st := sampleStudent()
	v := Build(&st, map[string]bool{"stu-1": true})

	if v.Name != "Dana Levi" {
		t.Errorf("granted viewer should see the real name, got %q", v.Name)
	}
	if !v.HasAccess {
		t.Error("hasAccess should be true with a grant")
	}
	// Everything else stays masked even with access.
	if strings.Contains(v.PersonalStatement, "dana@example.com") {
		t.Error("free text should stay masked even with a grant")
	}
}

func TestBuildDoesNotMutateSource(t *testing.T) {
	st := sampleStudent()
	before := sampleStudent()

	v1 := Build(&st, map[string]bool{"stu-1": true})
	v2 := Build(&st, map[string]bool{"stu-1": true})

	if !reflect.DeepEqual(st, before) {
		t.Error("Build mutated the source record")
	}
	if !reflect.DeepEqual(v1, v2) {
		t.Error("Build is not deterministic for identical inputs")
	}
}

func TestBuildAll(t *testing.T) {
	a := sampleStudent()
	b := sampleStudent()
	b.ID = "stu-2"
	b.Name = "Noa Cohen"

	views := BuildAll([]storage.Student{a, b}, map[string]bool{"stu-2": true})

	if len(views) != 2 {
		t.Fatalf("len(views) = %d", len(views))
	}
	if views[0].Name != NamePlaceholder {
		t.Errorf("ungranted view shows %q", views[0].Name)
	}
	if views[1].Name != "Noa Cohen" || !views[1].HasAccess {
		t.Errorf("granted view wrong: %+v", views[1])
	}
}
