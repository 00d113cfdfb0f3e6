package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"survey_backend/internal/model"
)

// Bucket 某个答案值及其出现次数
type Bucket struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// QuestionSummary 单题统计结果，按题型填充不同字段
type QuestionSummary struct {
	QuestionID string             `json:"questionId"`
	Type       model.QuestionType `json:"type"`
	Label      string             `json:"label"`
	Answered   int                `json:"answered"`
	Tally      map[string]int     `json:"tally,omitempty"`
	Buckets    []Bucket           `json:"buckets,omitempty"`
	OutOfRange []Bucket           `json:"outOfRange,omitempty"`
	Texts      []string           `json:"texts,omitempty"`
}

// AnswerKey 答案的字符串形式；nil 和空串视为未作答
func AnswerKey(v interface{}) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, val != ""
	case json.Number:
		return val.String(), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case bool:
		return strconv.FormatBool(val), true
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v), true
	}
	return string(b), true
}

// TallyAnswers 统计某题各答案出现次数，order 为首次出现顺序
func TallyAnswers(questionID string, responses []model.Response) (counts map[string]int, order []string) {
	counts = make(map[string]int)
	for _, r := range responses {
		key, ok := AnswerKey(r.Answers[questionID])
		if !ok {
			continue
		}
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}
	return counts, order
}

func AggregateQuestion(q *model.Question, responses []model.Response) QuestionSummary {
	summary := QuestionSummary{
		QuestionID: q.ID,
		Type:       q.Type,
		Label:      q.Label,
	}

	if q.Type == model.QuestionText {
		for _, r := range responses {
			if text, ok := AnswerKey(r.Answers[q.ID]); ok {
				summary.Texts = append(summary.Texts, text)
			}
		}
		summary.Answered = len(summary.Texts)
		return summary
	}

	counts, order := TallyAnswers(q.ID, responses)
	summary.Tally = counts
	for _, c := range counts {
		summary.Answered += c
	}

	switch q.Type {
	case model.QuestionRating:
		for i := model.RatingMin; i <= model.RatingMax; i++ {
			key := strconv.Itoa(i)
			summary.Buckets = append(summary.Buckets, Bucket{Value: key, Count: counts[key]})
		}
		for _, key := range order {
			if !isRatingKey(key) {
				summary.OutOfRange = append(summary.OutOfRange, Bucket{Value: key, Count: counts[key]})
			}
		}
	case model.QuestionMultipleChoice:
		declared := make(map[string]bool, len(q.Options))
		for _, opt := range q.Options {
			if declared[opt] {
				continue
			}
			declared[opt] = true
			summary.Buckets = append(summary.Buckets, Bucket{Value: opt, Count: counts[opt]})
		}
		// 未声明的答案仍计入，排在声明选项之后
		for _, key := range order {
			if !declared[key] {
				summary.Buckets = append(summary.Buckets, Bucket{Value: key, Count: counts[key]})
			}
		}
	}

	return summary
}

func isRatingKey(key string) bool {
	n, err := strconv.Atoi(key)
	if err != nil {
		return false
	}
	return n >= model.RatingMin && n <= model.RatingMax && key == strconv.Itoa(n)
}

// SummarizeSurvey 按题目声明顺序逐题统计
func SummarizeSurvey(s *model.Survey, responses []model.Response) []QuestionSummary {
	summaries := make([]QuestionSummary, 0, len(s.Questions))
	for i := range s.Questions {
		summaries = append(summaries, AggregateQuestion(&s.Questions[i], responses))
	}
	return summaries
}
