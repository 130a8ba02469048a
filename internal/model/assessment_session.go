package model

import (
	"time"
)

// AssessmentSession 每个学员至多一个进行中的评估会话（单写者约束）
// swagger:model AssessmentSession
type AssessmentSession struct {
	BaseModel
	SubjectID uint         `gorm:"index;type:bigint unsigned;not null" json:"subjectId"`
	State     SessionState `gorm:"size:30;not null;default:'awaiting_question'" json:"state"`

	// 快照字段，Start 时写入一次，之后只读
	Track        Track     `gorm:"size:20;not null" json:"track"`
	Topic        string    `gorm:"size:100;not null" json:"topic"`
	VideoOffset  float64   `json:"videoOffset"`
	SessionStart time.Time `json:"sessionStart"`
	Origin       string    `gorm:"size:30;default:'video_hub'" json:"origin"`

	// 题目游标
	QuestionID    uint `gorm:"type:bigint unsigned" json:"questionId"` // 当前题目
	QuestionIndex int  `gorm:"default:0" json:"questionIndex"`         // (track, topic) 内的序号
	Turns         int  `gorm:"default:0" json:"turns"`                 // 已评定的作答轮数

	// 最近一次评定的缓存，便于前端在 gated 状态重新拉取反馈；真实记录在对话日志里
	LastEvaluation Evaluation `gorm:"serializer:json;type:json" json:"lastEvaluation"`
}

func (AssessmentSession) TableName() string {
	return "assessment_sessions"
}

// Snapshot 导出写入对话日志的会话快照
func (s *AssessmentSession) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		Track:        s.Track,
		Topic:        s.Topic,
		VideoOffset:  s.VideoOffset,
		SessionStart: s.SessionStart,
		Origin:       s.Origin,
	}
}
