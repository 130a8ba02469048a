package repository

import (
	"nihongo_edu_backend/internal/model"

	"gorm.io/gorm"
)

type MotivationRepository struct {
	DB *gorm.DB
}

func NewMotivationRepository(db *gorm.DB) *MotivationRepository {
	return &MotivationRepository{DB: db}
}

func (r *MotivationRepository) GetAll() ([]*model.Motivation, error) {
	var motivations []*model.Motivation
	err := r.DB.Order("id asc").Find(&motivations).Error
	return motivations, err
}

func (r *MotivationRepository) GetEnabled(language string) ([]*model.Motivation, error) {
	var motivations []*model.Motivation
	err := r.DB.Where("is_enabled = ? AND language = ?", true, language).
		Order("id asc").Find(&motivations).Error
	return motivations, err
}

func (r *MotivationRepository) Create(m *model.Motivation) error {
	return r.DB.Create(m).Error
}

func (r *MotivationRepository) Update(m *model.Motivation) error {
	return r.DB.Save(m).Error
}

func (r *MotivationRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Motivation{}, id).Error
}

func (r *MotivationRepository) FindCurrent(language string) (*model.Motivation, error) {
	var m model.Motivation
	err := r.DB.Where("is_enabled = ? AND language = ?", true, language).
		Order("is_currently_used desc, last_used_at asc").
		First(&m).Error
	return &m, err
}

func (r *MotivationRepository) MarkUsed(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Motivation{}).
			Where("is_currently_used = ?", true).
			Update("is_currently_used", false).Error; err != nil {
			return err
		}
		return tx.Model(&model.Motivation{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"is_currently_used": true,
				"last_used_at":      gorm.Expr("CURRENT_TIMESTAMP"),
			}).Error
	})
}
