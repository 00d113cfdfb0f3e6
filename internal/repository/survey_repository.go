package repository

import (
	"context"
	"survey_backend/internal/model"
	"survey_backend/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SurveyRepository struct {
	DB *gorm.DB
}

func NewSurveyRepository(db *gorm.DB) *SurveyRepository {
	return &SurveyRepository{DB: db}
}

func orderedQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}

// CreateWithQuestions 问卷与题目在同一事务内写入
func (r *SurveyRepository) CreateWithQuestions(ctx context.Context, survey *model.Survey, questions []model.Question) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(survey).Error; err != nil {
			return err
		}
		if len(questions) == 0 {
			return nil
		}
		for i := range questions {
			questions[i].SurveyID = survey.ID
		}
		return tx.Create(&questions).Error
	})
}

func (r *SurveyRepository) List(ctx context.Context) ([]model.Survey, error) {
	var surveys []model.Survey
	err := r.DB.WithContext(ctx).
		Preload("Questions", orderedQuestions).
		Order("created_at desc").
		Find(&surveys).Error
	return surveys, err
}

func (r *SurveyRepository) FindByID(ctx context.Context, id string) (*model.Survey, error) {
	var s model.Survey
	err := r.DB.WithContext(ctx).
		Preload("Questions", orderedQuestions).
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SurveyRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Survey{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *SurveyRepository) CreateResponse(ctx context.Context, resp *model.Response) error {
	return r.DB.WithContext(ctx).Create(resp).Error
}

// CreateResponseOnce 同一用户对同一问卷只能提交一次。
// 先对问卷行加 FOR UPDATE 锁，同一问卷的提交在 mysql/postgres 上串行执行（sqlite 本身串行写入）
func (r *SurveyRepository) CreateResponseOnce(ctx context.Context, resp *model.Response) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var parent model.Survey
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&parent, "id = ?", resp.SurveyID).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.Response{}).
			Where("survey_id = ? AND user_ref = ?", resp.SurveyID, resp.UserRef).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return util.ErrAlreadyResponded
		}
		return tx.Create(resp).Error
	})
}

func (r *SurveyRepository) ListResponses(ctx context.Context, surveyID string) ([]model.Response, error) {
	var rs []model.Response
	err := r.DB.WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Order("submitted_at asc, id asc").
		Find(&rs).Error
	return rs, err
}

func (r *SurveyRepository) CountResponses(ctx context.Context, surveyID string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Response{}).Where("survey_id = ?", surveyID).Count(&count).Error
	return count, err
}

// Delete 按依赖顺序删除：答卷 -> 题目 -> 问卷，任一步失败整体回滚
func (r *SurveyRepository) Delete(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("survey_id = ?", id).Delete(&model.Response{}).Error; err != nil {
			return err
		}
		if err := tx.Where("survey_id = ?", id).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Survey{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
