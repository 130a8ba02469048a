package model

import (
	"time"
)

// Evaluation 单次作答的评定结果，写入后不再修改（纠正通过新的一轮作答完成）
type Evaluation struct {
	Tier           EvaluationTier  `json:"tier"`
	Explanation    string          `json:"explanation"`
	Feedback       string          `json:"feedback"`
	AffectedSkills []SkillCategory `json:"affectedSkills"`
	Resumable      bool            `json:"resumable"`
	Degraded       bool            `json:"degraded"` // 评分服务降级（本地启发式兜底）时为 true
}

// SessionSnapshot 会话触发时刻捕获的上下文，创建后只读
type SessionSnapshot struct {
	Track        Track     `json:"track"`
	Topic        string    `json:"topic"`
	VideoOffset  float64   `json:"videoOffset"` // 点击“开始练习”时的视频秒数
	SessionStart time.Time `json:"sessionStart"`
	Origin       string    `json:"origin"` // 例如 video_hub
}

// DialogueEntry 对话日志的原子单元：一问一答一评定，仅追加、不更新、不删除
// swagger:model DialogueEntry
type DialogueEntry struct {
	BaseModel
	SubjectID       uint             `gorm:"index;type:bigint unsigned;not null" json:"subjectId"`
	SessionID       uint             `gorm:"index;type:bigint unsigned" json:"sessionId"`
	Question        QuestionSnapshot `gorm:"serializer:json;type:json" json:"question"`
	AnswerText      string           `gorm:"type:text;not null" json:"answerText"`
	AnswerTimestamp time.Time        `json:"answerTimestamp"`
	Evaluation      Evaluation       `gorm:"serializer:json;type:json" json:"evaluation"`
	Snapshot        SessionSnapshot  `gorm:"serializer:json;type:json" json:"snapshot"`
}

func (DialogueEntry) TableName() string {
	return "dialogue_entries"
}
