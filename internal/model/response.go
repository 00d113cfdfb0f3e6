package model

import (
	"time"

	"gorm.io/datatypes"
)

// Response 一次问卷提交，Answers 为 questionId -> 答案
// swagger:model Response
type Response struct {
	UUIDBase
	SurveyID    string            `gorm:"index:idx_responses_survey_user,priority:1;type:varchar(36);not null" json:"surveyId"`
	UserRef     string            `gorm:"index:idx_responses_survey_user,priority:2;size:255;not null" json:"userRef"`
	Answers     datatypes.JSONMap `gorm:"not null" json:"answers"`
	SubmittedAt time.Time         `gorm:"autoCreateTime" json:"submittedAt"`
}

func (Response) TableName() string {
	return "responses"
}
