package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"survey_backend/internal/model"
	"survey_backend/pkg/logger"
	"survey_backend/pkg/tracing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const csvContentType = "text/csv; charset=utf-8"

type ExportService struct {
	Surveys *SurveyService
	Storage *StorageService

	now func() time.Time
}

func NewExportService(surveys *SurveyService, storage *StorageService) *ExportService {
	return &ExportService{Surveys: surveys, Storage: storage, now: time.Now}
}

type ArchiveResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ExportWideCSV 每份答卷一行，题目按声明顺序成列
func ExportWideCSV(survey *model.Survey, responses []model.Response) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{"response_id", "user_ref", "submitted_at"}
	for _, q := range survey.Questions {
		header = append(header, csvCell(q.Label))
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, r := range responses {
		row := make([]string, 0, len(header))
		row = append(row, r.ID, csvCell(r.UserRef), r.SubmittedAt.UTC().Format(time.RFC3339))
		for _, q := range survey.Questions {
			cell, _ := AnswerKey(r.Answers[q.ID])
			row = append(row, csvCell(cell))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// csvCell 公式前缀（= + - @ \t \r）开头的文本加单引号，数字原样输出
func csvCell(v string) string {
	if v == "" || !strings.ContainsRune("=+-@\t\r", rune(v[0])) {
		return v
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return v
	}
	return "'" + v
}

func (s *ExportService) RenderCSV(ctx context.Context, surveyID string) ([]byte, error) {
	results, err := s.Surveys.GetResults(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	return ExportWideCSV(results.Survey, results.Responses)
}

// Archive 生成 CSV 并写入配置的存储后端
func (s *ExportService) Archive(ctx context.Context, surveyID string) (result *ArchiveResult, err error) {
	ctx, end := tracing.StartSpan(ctx, "ExportService.Archive", attribute.String("survey.id", surveyID))
	defer func() { end(err) }()

	data, err := s.RenderCSV(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("surveys/%s/results-%s.csv", surveyID, s.now().UTC().Format("20060102T150405Z"))
	url, err := s.Storage.UploadBytes(ctx, key, data, csvContentType)
	if err != nil {
		return nil, fmt.Errorf("upload export %s: %w", key, err)
	}

	logger.Log.Info("survey results archived", zap.String("survey_id", surveyID), zap.String("key", key))
	return &ArchiveResult{Key: key, URL: url}, nil
}
