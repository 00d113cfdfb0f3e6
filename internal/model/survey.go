package model

import (
	"time"

	"gorm.io/datatypes"
)

// swagger:model Survey
type Survey struct {
	UUIDBase
	Title       string                      `gorm:"size:255;not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description"`
	OwnerGroup  string                      `gorm:"size:255" json:"ownerGroup,omitempty"`
	Templates   datatypes.JSONSlice[string] `json:"templates"`
	CreatedAt   time.Time                   `gorm:"index" json:"createdAt"`
	Questions   []Question                  `gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE" json:"questions"`
	Responses   []Response                  `gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Survey) TableName() string {
	return "surveys"
}

// QuestionIndex 按 ID 索引问题
func (s *Survey) QuestionIndex() map[string]*Question {
	idx := make(map[string]*Question, len(s.Questions))
	for i := range s.Questions {
		idx[s.Questions[i].ID] = &s.Questions[i]
	}
	return idx
}
