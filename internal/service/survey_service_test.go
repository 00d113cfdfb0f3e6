package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"survey_backend/internal/config"
	"survey_backend/internal/model"
	"survey_backend/internal/repository"
	"survey_backend/internal/testutil"
	"survey_backend/internal/util"

	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []SurveyEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event SurveyEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// steppingClock 每次调用前进一秒，保证答卷顺序确定
func steppingClock() func() time.Time {
	var mu sync.Mutex
	current := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

func newTestService(t *testing.T, cfg config.SurveyConfig) (*SurveyService, *recordingPublisher, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	events := &recordingPublisher{}
	svc := NewSurveyService(repository.NewSurveyRepository(db), events, cfg)
	svc.now = steppingClock()
	return svc, events, db
}

func sampleSurveyReq() CreateSurveyReq {
	return CreateSurveyReq{
		Title:       "  Team Pulse  ",
		Description: "weekly check-in",
		OwnerGroup:  "platform",
		Templates:   []string{"weekly"},
		Questions: []QuestionReq{
			{Type: "text", Label: "What went well?"},
			{Type: "rating", Label: "Rate the week"},
			{Type: "multiple-choice", Label: "Favourite tool", Options: []string{"Go", "Rust", "Zig"}},
		},
	}
}

func createSample(t *testing.T, svc *SurveyService) *model.Survey {
	t.Helper()
	ctx := context.Background()
	id, err := svc.CreateSurvey(ctx, sampleSurveyReq())
	if err != nil {
		t.Fatalf("create survey: %v", err)
	}
	survey, err := svc.GetSurvey(ctx, id)
	if err != nil {
		t.Fatalf("get survey: %v", err)
	}
	return survey
}

func fullAnswers(s *model.Survey, text string, rating interface{}, choice string) map[string]interface{} {
	return map[string]interface{}{
		s.Questions[0].ID: text,
		s.Questions[1].ID: rating,
		s.Questions[2].ID: choice,
	}
}

func assertFieldError(t *testing.T, err error, field string) {
	t.Helper()
	var verr *util.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := verr.Fields[field]; !ok {
		t.Fatalf("expected error on %q, got %v", field, verr.Fields)
	}
}

func TestCreateSurveyRoundTrip(t *testing.T) {
	svc, events, _ := newTestService(t, config.SurveyConfig{StrictAnswers: true})
	survey := createSample(t, svc)

	if survey.Title != "Team Pulse" {
		t.Fatalf("expected trimmed title, got %q", survey.Title)
	}
	if survey.OwnerGroup != "platform" || len(survey.Templates) != 1 || survey.Templates[0] != "weekly" {
		t.Fatalf("metadata not preserved: %+v", survey)
	}
	if len(survey.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(survey.Questions))
	}

	wantTypes := []model.QuestionType{model.QuestionText, model.QuestionRating, model.QuestionMultipleChoice}
	seen := make(map[string]bool)
	for i, q := range survey.Questions {
		if q.Type != wantTypes[i] {
			t.Fatalf("question %d: expected %s, got %s", i, wantTypes[i], q.Type)
		}
		if q.ID == "" || seen[q.ID] {
			t.Fatalf("question %d has missing or duplicate id %q", i, q.ID)
		}
		seen[q.ID] = true
	}

	opts := survey.Questions[2].Options
	if len(opts) != 3 || opts[0] != "Go" || opts[1] != "Rust" || opts[2] != "Zig" {
		t.Fatalf("options not preserved in order: %v", opts)
	}
	if survey.Questions[0].Options != nil || survey.Questions[1].Options != nil {
		t.Fatalf("non multiple-choice questions should not carry options")
	}

	if got := events.types(); len(got) != 1 || got[0] != EventSurveyCreated {
		t.Fatalf("expected survey.created event, got %v", got)
	}
}

func TestCreateSurveyValidation(t *testing.T) {
	svc, _, db := newTestService(t, config.SurveyConfig{})
	ctx := context.Background()

	cases := []struct {
		name  string
		req   CreateSurveyReq
		field string
	}{
		{"blank title", CreateSurveyReq{Title: "   "}, "title"},
		{"unknown type", CreateSurveyReq{Title: "t", Questions: []QuestionReq{{Type: "slider", Label: "x"}}}, "questions[0].type"},
		{"blank label", CreateSurveyReq{Title: "t", Questions: []QuestionReq{{Type: "text", Label: " "}}}, "questions[0].label"},
		{"choice without options", CreateSurveyReq{Title: "t", Questions: []QuestionReq{{Type: "multiple-choice", Label: "x"}}}, "questions[0].options"},
		{"duplicate option", CreateSurveyReq{Title: "t", Questions: []QuestionReq{{Type: "multiple-choice", Label: "x", Options: []string{"a", "a"}}}}, "questions[0].options[1]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateSurvey(ctx, tc.req)
			assertFieldError(t, err, tc.field)
		})
	}

	var count int64
	db.Model(&model.Survey{}).Count(&count)
	if count != 0 {
		t.Fatalf("invalid surveys must not be stored, found %d", count)
	}
}

func TestListSurveysNewestFirst(t *testing.T) {
	svc, _, _ := newTestService(t, config.SurveyConfig{})
	ctx := context.Background()

	first, _ := svc.CreateSurvey(ctx, CreateSurveyReq{Title: "first"})
	second, _ := svc.CreateSurvey(ctx, CreateSurveyReq{Title: "second"})

	surveys, err := svc.ListSurveys(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(surveys) != 2 || surveys[0].ID != second || surveys[1].ID != first {
		t.Fatalf("unexpected order: %+v", surveys)
	}
	if surveys[0].Questions == nil || surveys[0].Templates == nil {
		t.Fatalf("empty collections should be non-nil")
	}
}

func TestUnknownSurveyIsNotFound(t *testing.T) {
	svc, _, _ := newTestService(t, config.SurveyConfig{})
	ctx := context.Background()

	if _, err := svc.GetSurvey(ctx, "missing"); !errors.Is(err, util.ErrSurveyNotFound) {
		t.Fatalf("get: expected not found, got %v", err)
	}
	if _, err := svc.SubmitResponse(ctx, "missing", SubmitResponseReq{UserRef: "u1", Answers: map[string]interface{}{}}); !errors.Is(err, util.ErrSurveyNotFound) {
		t.Fatalf("submit: expected not found, got %v", err)
	}
	if _, err := svc.ListResponses(ctx, "missing"); !errors.Is(err, util.ErrSurveyNotFound) {
		t.Fatalf("list responses: expected not found, got %v", err)
	}
	if _, err := svc.GetResults(ctx, "missing"); !errors.Is(err, util.ErrSurveyNotFound) {
		t.Fatalf("results: expected not found, got %v", err)
	}
	if err := svc.DeleteSurvey(ctx, "missing"); !errors.Is(err, util.ErrSurveyNotFound) {
		t.Fatalf("delete: expected not found, got %v", err)
	}
}

func TestSubmitResponseStrictValidation(t *testing.T) {
	svc, _, _ := newTestService(t, config.SurveyConfig{StrictAnswers: true})
	ctx := context.Background()
	survey := createSample(t, svc)
	text, rating, choice := survey.Questions[0].ID, survey.Questions[1].ID, survey.Questions[2].ID

	t.Run("missing answer", func(t *testing.T) {
		answers := fullAnswers(survey, "ok", float64(4), "Go")
		delete(answers, text)
		_, err := svc.SubmitResponse(ctx, survey.ID, SubmitResponseReq{UserRef: "u1", Answers: answers})
		assertFieldError(t, err, "answers."+text)
	})
	t.Run("unknown question", func(t *testing.T) {
		answers := fullAnswers(survey, "ok", float64(4), "Go")
		answers["nope"] = "x"
		_, err := svc.SubmitResponse(ctx, survey.ID, SubmitResponseReq{UserRef: "u1", Answers: answers})
		assertFieldError(t, err, "answers.nope")
	})
	t.Run("rating out of range", func(t *testing.T) {
		_, err := svc.SubmitResponse(ctx, survey.ID, SubmitResponseReq{UserRef: "u1", Answers: fullAnswers(survey, "ok", float64(6), "Go")})
		assertFieldError(t, err, "answers."+rating)
	})
	t.Run("fractional rating", func(t *testing.T) {
		_, err := svc.SubmitResponse(ctx, survey.ID, SubmitResponseReq{UserRef: "u1", Answers: fullAnswers(survey, "ok", 3.5, "Go")})
		assertFieldError(t, err, "answers."+rating)
	})
	t.Run("undeclared option", func(t *testing.T) {
		_, err := svc.SubmitResponse(ctx, survey.ID, SubmitResponseReq{UserRef: "u1", Answers: fullAnswers(survey, "ok", float64(4), "Java")})
		assertFieldError(t, err, "answers."+choice)
	})
	t.Run("blank text", func(t *testing.T) {
		_, err := svc.SubmitResponse(ctx, survey.ID, SubmitResponseReq{UserRef: "u1", Answers: fullAnswers(survey, " \t\n ", float64(4), "Go")})
		assertFieldError(t, err, "answers."+text)
	})
	t.Run("missing user", func(t *testing.T) {
		_, err := svc.SubmitResponse(ctx, survey.ID, SubmitResponseReq{Answers: fullAnswers(survey, "ok", float64(4), "Go")})
		assertFieldError(t, err, "userRef")
	})

	responses, err := svc.ListResponses(ctx, survey.ID)
	if err != nil {
		t.Fatalf("list responses: %v", err)
	}
	if len(responses) != 0 {
		t.Fatalf("rejected answers must not be stored, found %d", len(responses))
	}
}

func TestSubmitResponseLenientStoresAnswersAsGiven(t *testing.T) {
	svc, _, _ := newTestService(t, config.SurveyConfig{StrictAnswers: false})
	ctx := context.Background()
	survey := createSample(t, svc)

	answers := map[string]interface{}{survey.Questions[1].ID: float64(9), "extra": "kept"}
	if _, err := svc.SubmitResponse(ctx, survey.ID, SubmitResponseReq{UserRef: "u1", Answers: answers}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	responses, _ := svc.ListResponses(ctx, survey.ID)
	if len(responses) != 1 {
		t.Fatalf("expected 1 response, got %d", len(responses))
	}
	if got, _ := AnswerKey(responses[0].Answers["extra"]); got != "kept" {
		t.Fatalf("expected extra answer kept, got %q", got)
	}
	if got, _ := AnswerKey(responses[0].Answers[survey.Questions[1].ID]); got != "9" {
		t.Fatalf("expected rating 9 kept, got %q", got)
	}
}

func TestGetResultsAggregatesResponses(t *testing.T) {
	svc, events, _ := newTestService(t, config.SurveyConfig{StrictAnswers: true})
	ctx := context.Background()
	survey := createSample(t, svc)

	submissions := []map[string]interface{}{
		fullAnswers(survey, "fast", float64(5), "Go"),
		fullAnswers(survey, "stable", float64(5), "Rust"),
		fullAnswers(survey, "quiet", float64(3), "Go"),
	}
	var ids []string
	for i, answers := range submissions {
		id, err := svc.SubmitResponse(ctx, survey.ID, SubmitResponseReq{UserRef: "u" + string(rune('1'+i)), Answers: answers})
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		ids = append(ids, id)
	}

	results, err := svc.GetResults(ctx, survey.ID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if results.TotalResponses != 3 || len(results.Responses) != 3 {
		t.Fatalf("expected 3 responses, got %d/%d", results.TotalResponses, len(results.Responses))
	}
	for i, r := range results.Responses {
		if r.ID != ids[i] {
			t.Fatalf("responses out of submission order at %d", i)
		}
	}

	rating := results.Summary[1]
	if rating.Buckets[4].Count != 2 || rating.Buckets[2].Count != 1 {
		t.Fatalf("unexpected rating buckets: %v", rating.Buckets)
	}
	choice := results.Summary[2]
	if choice.Tally["Go"] != 2 || choice.Tally["Rust"] != 1 || choice.Tally["Zig"] != 0 {
		t.Fatalf("unexpected choice tally: %v", choice.Tally)
	}
	if len(results.Summary[0].Texts) != 3 {
		t.Fatalf("expected 3 text answers, got %v", results.Summary[0].Texts)
	}

	if got := events.types(); len(got) != 4 || got[3] != EventResponseSubmitted {
		t.Fatalf("unexpected events: %v", got)
	}
}

func TestOneResponsePerUser(t *testing.T) {
	svc, _, _ := newTestService(t, config.SurveyConfig{StrictAnswers: true, OneResponsePerUser: true})
	ctx := context.Background()
	survey := createSample(t, svc)
	req := SubmitResponseReq{UserRef: "u1", Answers: fullAnswers(survey, "ok", float64(4), "Go")}

	if _, err := svc.SubmitResponse(ctx, survey.ID, req); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := svc.SubmitResponse(ctx, survey.ID, req); !errors.Is(err, util.ErrAlreadyResponded) {
		t.Fatalf("expected already responded, got %v", err)
	}
	req.UserRef = "u2"
	if _, err := svc.SubmitResponse(ctx, survey.ID, req); err != nil {
		t.Fatalf("other user submit: %v", err)
	}
}

func TestOneResponsePerUserConcurrent(t *testing.T) {
	svc, _, db := newTestService(t, config.SurveyConfig{StrictAnswers: true, OneResponsePerUser: true})
	ctx := context.Background()
	survey := createSample(t, svc)

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.SubmitResponse(ctx, survey.ID, SubmitResponseReq{UserRef: "u1", Answers: fullAnswers(survey, "ok", float64(4), "Go")})
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, util.ErrAlreadyResponded):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || dup != workers-1 {
		t.Fatalf("expected 1 success and %d duplicates, got %d and %d", workers-1, ok, dup)
	}

	var count int64
	db.Model(&model.Response{}).Where("survey_id = ? AND user_ref = ?", survey.ID, "u1").Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one stored response, got %d", count)
	}
}

func TestUpdateConfigAppliesToLaterSubmissions(t *testing.T) {
	svc, _, _ := newTestService(t, config.SurveyConfig{StrictAnswers: true})
	ctx := context.Background()
	survey := createSample(t, svc)
	req := SubmitResponseReq{UserRef: "u1", Answers: fullAnswers(survey, "ok", float64(4), "Go")}

	if _, err := svc.SubmitResponse(ctx, survey.ID, req); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	svc.UpdateConfig(config.SurveyConfig{StrictAnswers: true, OneResponsePerUser: true})
	if !svc.Config().OneResponsePerUser {
		t.Fatal("config not updated")
	}
	if _, err := svc.SubmitResponse(ctx, survey.ID, req); !errors.Is(err, util.ErrAlreadyResponded) {
		t.Fatalf("expected already responded after reload, got %v", err)
	}

	// 关闭严格校验后未知题目照常入库
	svc.UpdateConfig(config.SurveyConfig{})
	if _, err := svc.SubmitResponse(ctx, survey.ID, SubmitResponseReq{UserRef: "u1", Answers: map[string]interface{}{"nope": "x"}}); err != nil {
		t.Fatalf("lenient submit after reload: %v", err)
	}
}

func TestDeleteSurveyRemovesEverything(t *testing.T) {
	svc, events, db := newTestService(t, config.SurveyConfig{StrictAnswers: true})
	ctx := context.Background()
	survey := createSample(t, svc)
	other := createSample(t, svc)

	for _, s := range []*model.Survey{survey, other} {
		if _, err := svc.SubmitResponse(ctx, s.ID, SubmitResponseReq{UserRef: "u1", Answers: fullAnswers(s, "ok", float64(4), "Go")}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	if err := svc.DeleteSurvey(ctx, survey.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var questions, responses int64
	db.Model(&model.Question{}).Where("survey_id = ?", survey.ID).Count(&questions)
	db.Model(&model.Response{}).Where("survey_id = ?", survey.ID).Count(&responses)
	if questions != 0 || responses != 0 {
		t.Fatalf("expected no orphans, found %d questions and %d responses", questions, responses)
	}
	if _, err := svc.GetSurvey(ctx, survey.ID); !errors.Is(err, util.ErrSurveyNotFound) {
		t.Fatalf("expected deleted survey to be gone, got %v", err)
	}

	// 其他问卷不受影响
	remaining, err := svc.GetResults(ctx, other.ID)
	if err != nil || remaining.TotalResponses != 1 {
		t.Fatalf("other survey affected: %v %+v", err, remaining)
	}

	got := events.types()
	if got[len(got)-1] != EventSurveyDeleted {
		t.Fatalf("expected survey.deleted event last, got %v", got)
	}
}

func TestDeleteSurveyRollsBackOnFailure(t *testing.T) {
	svc, _, db := newTestService(t, config.SurveyConfig{StrictAnswers: true})
	ctx := context.Background()
	survey := createSample(t, svc)
	if _, err := svc.SubmitResponse(ctx, survey.ID, SubmitResponseReq{UserRef: "u1", Answers: fullAnswers(survey, "ok", float64(4), "Go")}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	boom := errors.New("disk full")
	err := db.Callback().Delete().Before("gorm:delete").Register("test:fail_survey_delete", func(tx *gorm.DB) {
		if tx.Statement.Table == "surveys" {
			tx.AddError(boom)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	err = svc.DeleteSurvey(ctx, survey.ID)
	if !errors.Is(err, util.ErrTransaction) || !errors.Is(err, boom) {
		t.Fatalf("expected transaction error wrapping cause, got %v", err)
	}

	var questions, responses int64
	db.Model(&model.Question{}).Where("survey_id = ?", survey.ID).Count(&questions)
	db.Model(&model.Response{}).Where("survey_id = ?", survey.ID).Count(&responses)
	if questions != 3 || responses != 1 {
		t.Fatalf("expected rollback to keep 3 questions and 1 response, got %d and %d", questions, responses)
	}
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	svc, events, _ := newTestService(t, config.SurveyConfig{})
	events.err = errors.New("redis down")

	if _, err := svc.CreateSurvey(context.Background(), CreateSurveyReq{Title: "t"}); err != nil {
		t.Fatalf("create should succeed despite publish failure: %v", err)
	}
}
