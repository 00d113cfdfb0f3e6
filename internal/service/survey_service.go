package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"survey_backend/internal/config"
	"survey_backend/internal/model"
	"survey_backend/internal/repository"
	"survey_backend/internal/util"
	"survey_backend/pkg/logger"
	"survey_backend/pkg/monitoring"
	"survey_backend/pkg/tracing"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SurveyService struct {
	Repo   *repository.SurveyRepository
	Events EventPublisher

	mu  sync.RWMutex
	cfg config.SurveyConfig
	now func() time.Time
}

func NewSurveyService(repo *repository.SurveyRepository, events EventPublisher, cfg config.SurveyConfig) *SurveyService {
	if events == nil {
		events = NoopEventPublisher{}
	}
	return &SurveyService{Repo: repo, Events: events, cfg: cfg, now: time.Now}
}

// UpdateConfig 配置热更新，对之后的请求生效
func (s *SurveyService) UpdateConfig(cfg config.SurveyConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func (s *SurveyService) Config() config.SurveyConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

type QuestionReq struct {
	Type    string   `json:"type" binding:"required"`
	Label   string   `json:"label" binding:"required"`
	Options []string `json:"options"`
}

type CreateSurveyReq struct {
	Title       string        `json:"title" binding:"required"`
	Description string        `json:"description"`
	OwnerGroup  string        `json:"ownerGroup"`
	Templates   []string      `json:"templates"`
	Questions   []QuestionReq `json:"questions" binding:"required,dive"`
}

type SubmitResponseReq struct {
	UserRef string                 `json:"userRef" binding:"required"`
	Answers map[string]interface{} `json:"answers" binding:"required"`
}

type SurveyResults struct {
	Survey         *model.Survey     `json:"survey"`
	TotalResponses int               `json:"totalResponses"`
	Responses      []model.Response  `json:"responses"`
	Summary        []QuestionSummary `json:"summary"`
}

func validateSurveyReq(req *CreateSurveyReq) error {
	verr := util.NewValidationError()

	if strings.TrimSpace(req.Title) == "" {
		verr.Add("title", "is required")
	}

	for i, q := range req.Questions {
		field := fmt.Sprintf("questions[%d]", i)
		qt := model.QuestionType(q.Type)
		if !qt.Valid() {
			verr.Add(field+".type", "must be one of text, rating, multiple-choice")
		}
		if strings.TrimSpace(q.Label) == "" {
			verr.Add(field+".label", "is required")
		}
		if qt != model.QuestionMultipleChoice {
			continue
		}
		if len(q.Options) == 0 {
			verr.Add(field+".options", "multiple-choice questions need at least one option")
			continue
		}
		seen := make(map[string]bool, len(q.Options))
		for j, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				verr.Add(fmt.Sprintf("%s.options[%d]", field, j), "must not be empty")
				continue
			}
			if seen[opt] {
				verr.Add(fmt.Sprintf("%s.options[%d]", field, j), "duplicate option")
			}
			seen[opt] = true
		}
	}

	return verr.OrNil()
}

func (s *SurveyService) CreateSurvey(ctx context.Context, req CreateSurveyReq) (id string, err error) {
	ctx, end := tracing.StartSpan(ctx, "SurveyService.CreateSurvey")
	defer func() { end(err); monitoring.ObserveOperation("create_survey", err) }()

	if err := validateSurveyReq(&req); err != nil {
		return "", err
	}

	survey := &model.Survey{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		OwnerGroup:  req.OwnerGroup,
		Templates:   req.Templates,
		CreatedAt:   s.now(),
	}
	survey.ID = model.GenerateUUID()

	questions := make([]model.Question, 0, len(req.Questions))
	for i, q := range req.Questions {
		question := model.Question{
			Type:     model.QuestionType(q.Type),
			Label:    q.Label,
			Position: i,
		}
		question.ID = model.GenerateUUID()
		if question.Type == model.QuestionMultipleChoice {
			question.Options = append([]string(nil), q.Options...)
		}
		questions = append(questions, question)
	}

	if err := s.Repo.CreateWithQuestions(ctx, survey, questions); err != nil {
		return "", fmt.Errorf("create survey: %w", err)
	}

	logger.Log.Info("survey created",
		zap.String("survey_id", survey.ID),
		zap.Int("questions", len(questions)),
	)
	s.publish(ctx, SurveyEvent{Type: EventSurveyCreated, SurveyID: survey.ID})

	return survey.ID, nil
}

func (s *SurveyService) ListSurveys(ctx context.Context) (surveys []model.Survey, err error) {
	ctx, end := tracing.StartSpan(ctx, "SurveyService.ListSurveys")
	defer func() { end(err); monitoring.ObserveOperation("list_surveys", err) }()

	surveys, err = s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	for i := range surveys {
		normalizeSurvey(&surveys[i])
	}
	return surveys, nil
}

func (s *SurveyService) GetSurvey(ctx context.Context, id string) (survey *model.Survey, err error) {
	ctx, end := tracing.StartSpan(ctx, "SurveyService.GetSurvey", attribute.String("survey.id", id))
	defer func() { end(err); monitoring.ObserveOperation("get_survey", err) }()

	return s.findSurvey(ctx, id)
}

func (s *SurveyService) findSurvey(ctx context.Context, id string) (*model.Survey, error) {
	survey, err := s.Repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSurveyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find survey %s: %w", id, err)
	}
	normalizeSurvey(survey)
	return survey, nil
}

func (s *SurveyService) ensureSurveyExists(ctx context.Context, id string) error {
	exists, err := s.Repo.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check survey %s: %w", id, err)
	}
	if !exists {
		return util.ErrSurveyNotFound
	}
	return nil
}

func normalizeSurvey(s *model.Survey) {
	if s.Templates == nil {
		s.Templates = []string{}
	}
	if s.Questions == nil {
		s.Questions = []model.Question{}
	}
	for i := range s.Questions {
		if s.Questions[i].Type != model.QuestionMultipleChoice {
			s.Questions[i].Options = nil
		}
	}
}

func (s *SurveyService) SubmitResponse(ctx context.Context, surveyID string, req SubmitResponseReq) (id string, err error) {
	ctx, end := tracing.StartSpan(ctx, "SurveyService.SubmitResponse", attribute.String("survey.id", surveyID))
	defer func() { end(err); monitoring.ObserveOperation("submit_response", err) }()

	verr := util.NewValidationError()
	if strings.TrimSpace(req.UserRef) == "" {
		verr.Add("userRef", "is required")
	}
	if req.Answers == nil {
		verr.Add("answers", "is required")
	}
	if verr.HasErrors() {
		return "", verr
	}

	survey, err := s.findSurvey(ctx, surveyID)
	if err != nil {
		return "", err
	}

	settings := s.Config()
	answers := req.Answers
	if settings.StrictAnswers {
		answers, err = validateAnswers(survey, req.Answers)
		if err != nil {
			return "", err
		}
	}

	resp := &model.Response{
		SurveyID:    surveyID,
		UserRef:     req.UserRef,
		Answers:     answers,
		SubmittedAt: s.now(),
	}
	resp.ID = model.GenerateUUID()

	if settings.OneResponsePerUser {
		err = s.Repo.CreateResponseOnce(ctx, resp)
	} else {
		err = s.Repo.CreateResponse(ctx, resp)
	}
	if errors.Is(err, util.ErrAlreadyResponded) {
		return "", err
	}
	// 提交期间问卷被删除
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", util.ErrSurveyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("create response: %w", err)
	}

	monitoring.ResponsesSubmitted.Inc()
	s.publish(ctx, SurveyEvent{
		Type:       EventResponseSubmitted,
		SurveyID:   surveyID,
		ResponseID: resp.ID,
		UserRef:    resp.UserRef,
	})

	return resp.ID, nil
}

// validateAnswers 严格模式：答案必须覆盖全部题目且取值合法
func validateAnswers(survey *model.Survey, answers map[string]interface{}) (map[string]interface{}, error) {
	verr := util.NewValidationError()
	index := survey.QuestionIndex()

	for key := range answers {
		if _, ok := index[key]; !ok {
			verr.Add("answers."+key, "does not belong to this survey")
		}
	}

	clean := make(map[string]interface{}, len(answers))
	for i := range survey.Questions {
		q := &survey.Questions[i]
		field := "answers." + q.ID
		raw, present := answers[q.ID]
		if _, ok := AnswerKey(raw); !present || !ok {
			verr.Add(field, "is required")
			continue
		}

		switch q.Type {
		case model.QuestionText:
			text, ok := raw.(string)
			if !ok {
				verr.Add(field, "must be a string")
				continue
			}
			if strings.TrimSpace(text) == "" {
				verr.Add(field, "is required")
				continue
			}
			clean[q.ID] = text
		case model.QuestionRating:
			rating, ok := ratingValue(raw)
			if !ok {
				verr.Add(field, fmt.Sprintf("must be an integer between %d and %d", model.RatingMin, model.RatingMax))
				continue
			}
			clean[q.ID] = rating
		case model.QuestionMultipleChoice:
			choice, ok := raw.(string)
			if !ok || !q.HasOption(choice) {
				verr.Add(field, "must be one of the declared options")
				continue
			}
			clean[q.ID] = choice
		}
	}

	if verr.HasErrors() {
		return nil, verr
	}
	return clean, nil
}

func ratingValue(v interface{}) (int, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if f != math.Trunc(f) || f < model.RatingMin || f > model.RatingMax {
		return 0, false
	}
	return int(f), true
}

func (s *SurveyService) ListResponses(ctx context.Context, surveyID string) (responses []model.Response, err error) {
	ctx, end := tracing.StartSpan(ctx, "SurveyService.ListResponses", attribute.String("survey.id", surveyID))
	defer func() { end(err); monitoring.ObserveOperation("list_responses", err) }()

	if err := s.ensureSurveyExists(ctx, surveyID); err != nil {
		return nil, err
	}
	return s.listResponses(ctx, surveyID)
}

func (s *SurveyService) listResponses(ctx context.Context, surveyID string) ([]model.Response, error) {
	responses, err := s.Repo.ListResponses(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("list responses of %s: %w", surveyID, err)
	}
	if responses == nil {
		responses = []model.Response{}
	}
	return responses, nil
}

// GetResults 问卷、答卷总数、全部答卷以及逐题统计
func (s *SurveyService) GetResults(ctx context.Context, surveyID string) (results *SurveyResults, err error) {
	ctx, end := tracing.StartSpan(ctx, "SurveyService.GetResults", attribute.String("survey.id", surveyID))
	defer func() { end(err); monitoring.ObserveOperation("get_results", err) }()

	survey, err := s.findSurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	responses, err := s.listResponses(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	return &SurveyResults{
		Survey:         survey,
		TotalResponses: len(responses),
		Responses:      responses,
		Summary:        SummarizeSurvey(survey, responses),
	}, nil
}

func (s *SurveyService) DeleteSurvey(ctx context.Context, surveyID string) (err error) {
	ctx, end := tracing.StartSpan(ctx, "SurveyService.DeleteSurvey", attribute.String("survey.id", surveyID))
	defer func() { end(err); monitoring.ObserveOperation("delete_survey", err) }()

	if err := s.ensureSurveyExists(ctx, surveyID); err != nil {
		return err
	}

	if err := s.Repo.Delete(ctx, surveyID); err != nil {
		// 并发删除时问卷可能已不存在
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrSurveyNotFound
		}
		return fmt.Errorf("delete survey %s: %w: %w", surveyID, util.ErrTransaction, err)
	}

	logger.Log.Info("survey deleted", zap.String("survey_id", surveyID))
	s.publish(ctx, SurveyEvent{Type: EventSurveyDeleted, SurveyID: surveyID})

	return nil
}

func (s *SurveyService) publish(ctx context.Context, event SurveyEvent) {
	event.OccurredAt = s.now()
	if err := s.Events.Publish(ctx, event); err != nil {
		logger.Log.Warn("publish survey event failed",
			zap.String("type", event.Type),
			zap.String("survey_id", event.SurveyID),
			zap.Error(err),
		)
	}
}
