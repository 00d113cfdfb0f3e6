package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"survey_backend/internal/config"
	"survey_backend/internal/model"
	"survey_backend/internal/util"
)

func newTestExport(t *testing.T, svc *SurveyService, dir string) *ExportService {
	t.Helper()
	exp := NewExportService(svc, NewStorageService(&config.StorageConfig{Type: "local", LocalPath: dir}))
	exp.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }
	return exp
}

func TestRenderCSVWideLayout(t *testing.T) {
	svc, _, _ := newTestService(t, config.SurveyConfig{StrictAnswers: true})
	ctx := context.Background()
	survey := createSample(t, svc)

	id, err := svc.SubmitResponse(ctx, survey.ID, SubmitResponseReq{UserRef: "u1", Answers: fullAnswers(survey, "ship, it", float64(4), "Zig")})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	data, err := newTestExport(t, svc, t.TempDir()).RenderCSV(ctx, survey.ID)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header and one row, got %d records", len(records))
	}

	wantHeader := []string{"response_id", "user_ref", "submitted_at", "What went well?", "Rate the week", "Favourite tool"}
	if !reflect.DeepEqual(records[0], wantHeader) {
		t.Fatalf("unexpected header %v", records[0])
	}
	row := records[1]
	if row[0] != id || row[1] != "u1" {
		t.Fatalf("unexpected identity columns %v", row[:3])
	}
	if _, err := time.Parse(time.RFC3339, row[2]); err != nil {
		t.Fatalf("submitted_at not RFC3339: %q", row[2])
	}
	if want := []string{"ship, it", "4", "Zig"}; !reflect.DeepEqual(row[3:], want) {
		t.Fatalf("expected answers %v, got %v", want, row[3:])
	}
}

func TestExportWideCSVEscapesFormulas(t *testing.T) {
	survey := &model.Survey{Questions: []model.Question{
		{UUIDBase: model.UUIDBase{ID: "q1"}, Type: model.QuestionText, Label: "=SUM(A1:A9)"},
		{UUIDBase: model.UUIDBase{ID: "q2"}, Type: model.QuestionRating, Label: "Score"},
	}}
	responses := []model.Response{{
		UUIDBase:    model.UUIDBase{ID: "r1"},
		UserRef:     "@admin",
		Answers:     map[string]interface{}{"q1": "=HYPERLINK(\"http://x\")", "q2": float64(-2)},
		SubmittedAt: time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
	}, {
		UUIDBase:    model.UUIDBase{ID: "r2"},
		UserRef:     "u2",
		Answers:     map[string]interface{}{"q1": "+1 from me", "q2": "-"},
		SubmittedAt: time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
	}}

	data, err := ExportWideCSV(survey, responses)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}

	if records[0][3] != "'=SUM(A1:A9)" {
		t.Fatalf("header label not escaped: %q", records[0][3])
	}
	if want := []string{"r1", "'@admin", "2024-05-06T07:08:09Z", "'=HYPERLINK(\"http://x\")", "-2"}; !reflect.DeepEqual(records[1], want) {
		t.Fatalf("expected %v, got %v", want, records[1])
	}
	if want := []string{"'+1 from me", "'-"}; !reflect.DeepEqual(records[2][3:], want) {
		t.Fatalf("expected %v, got %v", want, records[2][3:])
	}
}

func TestArchiveWritesToStorage(t *testing.T) {
	svc, _, _ := newTestService(t, config.SurveyConfig{StrictAnswers: true})
	ctx := context.Background()
	survey := createSample(t, svc)
	dir := t.TempDir()

	result, err := newTestExport(t, svc, dir).Archive(ctx, survey.ID)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}

	wantKey := "surveys/" + survey.ID + "/results-20240506T070809Z.csv"
	if result.Key != wantKey {
		t.Fatalf("expected key %q, got %q", wantKey, result.Key)
	}
	if result.URL != "/exports/"+wantKey {
		t.Fatalf("unexpected url %q", result.URL)
	}

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(wantKey)))
	if err != nil {
		t.Fatalf("archived file missing: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("response_id,user_ref,submitted_at")) {
		t.Fatalf("unexpected archive content: %s", data)
	}
}

func TestArchiveUnknownSurvey(t *testing.T) {
	svc, _, _ := newTestService(t, config.SurveyConfig{})
	_, err := newTestExport(t, svc, t.TempDir()).Archive(context.Background(), "missing")
	if !errors.Is(err, util.ErrSurveyNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
