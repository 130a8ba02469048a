package repository

import (
	"nihongo_edu_backend/internal/model"

	"gorm.io/gorm"
)

// DialogueRepository 对话日志仓储。日志是审计与掌握度聚合的唯一事实来源，
// 因此这里只提供追加和读取：不存在更新或删除已有条目的方法。
type DialogueRepository struct {
	DB *gorm.DB
}

func NewDialogueRepository(db *gorm.DB) *DialogueRepository {
	return &DialogueRepository{DB: db}
}

// Append 追加一条对话记录
func (r *DialogueRepository) Append(entry *model.DialogueEntry) error {
	return r.DB.Create(entry).Error
}

// AppendTx 在外部事务里追加，供会话服务把“写日志 + 推进状态机”做成原子操作
func (r *DialogueRepository) AppendTx(tx *gorm.DB, entry *model.DialogueEntry) error {
	return tx.Create(entry).Error
}

// ListBySubject 按插入顺序返回学员的完整对话序列
func (r *DialogueRepository) ListBySubject(subjectID uint) ([]model.DialogueEntry, error) {
	var entries []model.DialogueEntry
	err := r.DB.Where("subject_id = ?", subjectID).
		Order("id asc").
		Find(&entries).Error
	return entries, err
}

func (r *DialogueRepository) CountBySubject(subjectID uint) (int64, error) {
	var total int64
	err := r.DB.Model(&model.DialogueEntry{}).
		Where("subject_id = ?", subjectID).
		Count(&total).Error
	return total, err
}
