package model

// SyllabusQuestion 课程大纲中的苏格拉底提问，由教学内容预先创建，引擎只读
// swagger:model SyllabusQuestion
type SyllabusQuestion struct {
	BaseModel
	Track       Track  `gorm:"size:20;index:idx_track_topic;not null" json:"track"`
	Topic       string `gorm:"size:100;index:idx_track_topic;not null" json:"topic"`
	Prompt      string `gorm:"type:text;not null" json:"prompt"`
	Context     string `gorm:"type:text" json:"context"`               // 题目背景（如场景设定）
	RubricHints string `gorm:"type:text" json:"rubricHints"`           // 评分提示，会拼进评分模型的提示词
	ProbingText string `gorm:"type:text" json:"probingText,omitempty"` // 高风险场景的追问，可为空
	IsInitial   bool   `gorm:"default:false" json:"isInitial"`         // 是否为场景的起始题（带追问逻辑）
	Order       int    `gorm:"default:0" json:"order"`
	Enabled     bool   `gorm:"default:true" json:"enabled"`
}

func (SyllabusQuestion) TableName() string {
	return "syllabus_questions"
}

// QuestionSnapshot 写入对话日志的题目快照，避免大纲后续编辑影响历史记录
type QuestionSnapshot struct {
	QuestionID uint   `json:"questionId"`
	Track      Track  `json:"track"`
	Topic      string `json:"topic"`
	Prompt     string `json:"prompt"`
	Context    string `json:"context,omitempty"`
	IsProbing  bool   `json:"isProbing,omitempty"`
}

func (q *SyllabusQuestion) Snapshot() QuestionSnapshot {
	return QuestionSnapshot{
		QuestionID: q.ID,
		Track:      q.Track,
		Topic:      q.Topic,
		Prompt:     q.Prompt,
		Context:    q.Context,
	}
}
