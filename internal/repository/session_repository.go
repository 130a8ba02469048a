package repository

import (
	"nihongo_edu_backend/internal/model"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(s *model.AssessmentSession) error {
	return r.DB.Create(s).Error
}

// FindActiveBySubject 取学员当前进行中的会话（closed 之外的都算进行中）
func (r *SessionRepository) FindActiveBySubject(subjectID uint) (*model.AssessmentSession, error) {
	var s model.AssessmentSession
	err := r.DB.Where("subject_id = ? AND state <> ?", subjectID, model.StateClosed).
		Order("id desc").
		First(&s).Error
	return &s, err
}

func (r *SessionRepository) Update(s *model.AssessmentSession) error {
	return r.DB.Save(s).Error
}

func (r *SessionRepository) UpdateTx(tx *gorm.DB, s *model.AssessmentSession) error {
	return tx.Save(s).Error
}

// CloseActiveBySubject 关闭学员所有进行中的会话（开新会话前调用）
func (r *SessionRepository) CloseActiveBySubject(subjectID uint) error {
	return r.DB.Model(&model.AssessmentSession{}).
		Where("subject_id = ? AND state <> ?", subjectID, model.StateClosed).
		Update("state", model.StateClosed).Error
}
