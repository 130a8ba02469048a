package repository

import (
	"nihongo_edu_backend/internal/model"

	"gorm.io/gorm"
)

type SyllabusRepository struct {
	DB *gorm.DB
}

func NewSyllabusRepository(db *gorm.DB) *SyllabusRepository {
	return &SyllabusRepository{DB: db}
}

func (r *SyllabusRepository) Create(q *model.SyllabusQuestion) error {
	return r.DB.Create(q).Error
}

func (r *SyllabusRepository) FindByID(id uint) (*model.SyllabusQuestion, error) {
	var q model.SyllabusQuestion
	err := r.DB.First(&q, id).Error
	return &q, err
}

// FindByTrackTopicIndex 按 (track, topic) 内的序号取题，题目游标的底层查询
func (r *SyllabusRepository) FindByTrackTopicIndex(track model.Track, topic string, index int) (*model.SyllabusQuestion, error) {
	var q model.SyllabusQuestion
	err := r.DB.Where("track = ? AND topic = ? AND enabled = ?", track, topic, true).
		Order("`order` asc, id asc").
		Offset(index).
		First(&q).Error
	return &q, err
}

func (r *SyllabusRepository) CountByTrackTopic(track model.Track, topic string) (int64, error) {
	var total int64
	err := r.DB.Model(&model.SyllabusQuestion{}).
		Where("track = ? AND topic = ? AND enabled = ?", track, topic, true).
		Count(&total).Error
	return total, err
}

func (r *SyllabusRepository) List(track model.Track, topic string, page, limit int) ([]model.SyllabusQuestion, int64, error) {
	var qs []model.SyllabusQuestion
	var total int64
	query := r.DB.Model(&model.SyllabusQuestion{})
	if track != "" {
		query = query.Where("track = ?", track)
	}
	if topic != "" {
		query = query.Where("topic = ?", topic)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("`order` asc, created_at desc").Offset(offset).Limit(limit).Find(&qs).Error
	return qs, total, err
}

func (r *SyllabusRepository) Update(q *model.SyllabusQuestion) error {
	return r.DB.Save(q).Error
}

func (r *SyllabusRepository) Delete(id uint) error {
	return r.DB.Delete(&model.SyllabusQuestion{}, id).Error
}
