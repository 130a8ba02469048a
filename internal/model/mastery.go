package model

import "time"

// 掌握度是对话日志的纯投影，不落库；以下类型只用于服务层返回值

// MasteryBucket 一个 (track, skill) 桶的聚合结果
// HasData 区分“得了 0 分”和“没有任何数据”，报表层必须保留这个差别
type MasteryBucket struct {
	Skill   SkillCategory `json:"skill"`
	Score   float64       `json:"score"`
	Samples int           `json:"samples"`
	HasData bool          `json:"hasData"`
}

// TrackMastery 单一赛道下三个技能桶，顺序固定为 AllSkills
type TrackMastery struct {
	Track   Track           `json:"track"`
	Buckets []MasteryBucket `json:"buckets"`
}

// MasteryReport scores(subject) 的完整输出
type MasteryReport struct {
	SubjectID   uint           `json:"subjectId"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Tracks      []TrackMastery `json:"tracks"`
	TotalTurns  int            `json:"totalTurns"` // 参与统计的对话条目数（含未命中任何技能桶的）
}

// Bucket 按 (track, skill) 取桶，取不到返回 nil
func (r *MasteryReport) Bucket(track Track, skill SkillCategory) *MasteryBucket {
	for i := range r.Tracks {
		if r.Tracks[i].Track != track {
			continue
		}
		for j := range r.Tracks[i].Buckets {
			if r.Tracks[i].Buckets[j].Skill == skill {
				return &r.Tracks[i].Buckets[j]
			}
		}
	}
	return nil
}
