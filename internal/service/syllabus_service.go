package service

import (
	"errors"
	"nihongo_edu_backend/internal/model"
	"nihongo_edu_backend/internal/repository"
	"nihongo_edu_backend/internal/util"
	"strings"

	"gorm.io/gorm"
)

// SyllabusService 教师侧题库管理
type SyllabusService struct {
	SyllabusRepo *repository.SyllabusRepository
}

func NewSyllabusService(syllabusRepo *repository.SyllabusRepository) *SyllabusService {
	return &SyllabusService{SyllabusRepo: syllabusRepo}
}

// CreateQuestion 新建题目。探究式题目文本允许 "Initial: ... | Follow-up: ..." 形式，
// 入库时拆开：主问题进 Prompt，追问保留在 ProbingText
func (s *SyllabusService) CreateQuestion(q *model.SyllabusQuestion) error {
	if !q.Track.Valid() {
		return errors.New("未知的职业赛道")
	}
	if strings.TrimSpace(q.Topic) == "" || strings.TrimSpace(q.Prompt) == "" {
		return errors.New("主题和题干不能为空")
	}

	prompt, probing := SplitProbingPrompt(q.Prompt)
	q.Prompt = prompt
	if q.ProbingText == "" {
		q.ProbingText = probing
	}
	return s.SyllabusRepo.Create(q)
}

// SplitProbingPrompt 拆分 "Initial: 主问题 | Follow-up: 追问" 形式的题目文本。
// 不符合该形式时原样返回，追问为空。
func SplitProbingPrompt(text string) (prompt, probing string) {
	const initialTag = "Initial:"
	const followUpTag = "Follow-up:"

	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, initialTag) {
		return trimmed, ""
	}
	rest := strings.TrimPrefix(trimmed, initialTag)
	parts := strings.SplitN(rest, "|", 2)
	prompt = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		probing = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(parts[1]), followUpTag))
	}
	if prompt == "" {
		return trimmed, ""
	}
	return prompt, probing
}

// GetQuestion 获取单题
func (s *SyllabusService) GetQuestion(id uint) (*model.SyllabusQuestion, error) {
	q, err := s.SyllabusRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

// ListQuestions 分页列出题目，可按赛道/主题过滤
func (s *SyllabusService) ListQuestions(track model.Track, topic string, page, limit int) ([]model.SyllabusQuestion, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.SyllabusRepo.List(track, topic, page, limit)
}

// UpdateQuestion 更新题目
func (s *SyllabusService) UpdateQuestion(q *model.SyllabusQuestion) error {
	existing, err := s.SyllabusRepo.FindByID(q.ID)
	if err != nil {
		return util.ErrQuestionNotFound
	}

	existing.Topic = q.Topic
	existing.Prompt = q.Prompt
	existing.Context = q.Context
	existing.RubricHints = q.RubricHints
	existing.ProbingText = q.ProbingText
	existing.IsInitial = q.IsInitial
	existing.Order = q.Order
	existing.Enabled = q.Enabled
	if q.Track.Valid() {
		existing.Track = q.Track
	}
	return s.SyllabusRepo.Update(existing)
}

// DeleteQuestion 删除题目。已有会话引用的题目快照存在对话日志里，不受删除影响
func (s *SyllabusService) DeleteQuestion(id uint) error {
	if _, err := s.SyllabusRepo.FindByID(id); err != nil {
		return util.ErrQuestionNotFound
	}
	return s.SyllabusRepo.Delete(id)
}
