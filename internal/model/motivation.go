package model

import (
	"time"
)

// Motivation 每日激励短句，按学员界面语言提供三语内容
type Motivation struct {
	BaseModel
	Content         string    `gorm:"type:text;not null" json:"content"`
	Language        string    `gorm:"size:10;default:'en'" json:"language"` // en / ja / ne
	IsEnabled       bool      `gorm:"default:true" json:"isEnabled"`
	IsCurrentlyUsed bool      `gorm:"default:false" json:"isCurrentlyUsed"`
	LastUsedAt      time.Time `gorm:"autoCreateTime" json:"lastUsedAt"`
}

func (Motivation) TableName() string {
	return "motivations"
}
