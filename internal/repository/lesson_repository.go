package repository

import (
	"nihongo_edu_backend/internal/model"

	"gorm.io/gorm"
)

type LessonRepository struct {
	DB *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{DB: db}
}

func (r *LessonRepository) Create(v *model.LessonVideo) error {
	return r.DB.Create(v).Error
}

func (r *LessonRepository) FindByID(id uint) (*model.LessonVideo, error) {
	var v model.LessonVideo
	err := r.DB.First(&v, id).Error
	return &v, err
}

func (r *LessonRepository) List(track model.Track, topic string, publishedOnly bool) ([]model.LessonVideo, error) {
	var vs []model.LessonVideo
	query := r.DB.Model(&model.LessonVideo{})
	if track != "" {
		query = query.Where("track = ?", track)
	}
	if topic != "" {
		query = query.Where("topic = ?", topic)
	}
	if publishedOnly {
		query = query.Where("published = ?", true)
	}
	err := query.Order("track asc, topic asc, id asc").Find(&vs).Error
	return vs, err
}

func (r *LessonRepository) Delete(id uint) error {
	return r.DB.Delete(&model.LessonVideo{}, id).Error
}
