package model

// LessonVideo 预录课程视频，评估会话从视频页的“开始练习”按钮触发
// swagger:model LessonVideo
type LessonVideo struct {
	BaseModel
	Track       Track   `gorm:"size:20;index;not null" json:"track"`
	Topic       string  `gorm:"size:100;index;not null" json:"topic"`
	Title       string  `gorm:"size:255;not null" json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	URL         string  `gorm:"size:500;not null" json:"url"`
	Duration    float64 `gorm:"default:0" json:"duration"` // 秒，上传时用 ffmpeg 探测
	Size        int64   `gorm:"default:0" json:"size"`
	Format      string  `gorm:"size:20" json:"format"`
	Thumbnail   string  `gorm:"size:500" json:"thumbnail"`
	UploaderID  uint    `gorm:"index;type:bigint unsigned" json:"uploaderId"`
	Published   bool    `gorm:"default:true" json:"published"`
}

func (LessonVideo) TableName() string {
	return "lesson_videos"
}
