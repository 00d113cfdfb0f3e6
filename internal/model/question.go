package model

import "gorm.io/datatypes"

type QuestionType string

const (
	QuestionText           QuestionType = "text"
	QuestionRating         QuestionType = "rating"
	QuestionMultipleChoice QuestionType = "multiple-choice"
)

const (
	RatingMin = 1
	RatingMax = 5
)

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionText, QuestionRating, QuestionMultipleChoice:
		return true
	}
	return false
}

// Question 问卷中的一道题，Position 保存声明顺序
// swagger:model Question
type Question struct {
	UUIDBase
	SurveyID string                      `gorm:"index;type:varchar(36);not null" json:"surveyId"`
	Type     QuestionType                `gorm:"size:32;not null" json:"type"`
	Label    string                      `gorm:"size:255;not null" json:"label"`
	Options  datatypes.JSONSlice[string] `json:"options,omitempty"` // 仅 multiple-choice
	Position int                         `gorm:"default:0" json:"position"`
}

func (Question) TableName() string {
	return "questions"
}

// HasOption 判断答案是否为声明的选项之一
func (q *Question) HasOption(value string) bool {
	for _, o := range q.Options {
		if o == value {
			return true
		}
	}
	return false
}
