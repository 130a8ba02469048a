package service

import (
	"nihongo_edu_backend/internal/model"
	"nihongo_edu_backend/internal/repository"
	"time"
)

// MasteryService 技能掌握度聚合。掌握度没有独立存储——
// 每次都从对话日志整体重算，日志是唯一事实来源。
type MasteryService struct {
	Dialogue *repository.DialogueRepository
}

func NewMasteryService(dialogue *repository.DialogueRepository) *MasteryService {
	return &MasteryService{Dialogue: dialogue}
}

// Project 对一组对话条目做纯投影：按 (track, skill) 分桶，
// 桶内分数为各次评定分值的算术平均。同一输入永远产出同一报告，
// 桶的顺序固定为 AllTracks × AllSkills。
func Project(subjectID uint, entries []model.DialogueEntry) *model.MasteryReport {
	type acc struct {
		sum     float64
		samples int
	}
	buckets := make(map[model.Track]map[model.SkillCategory]*acc)
	for _, track := range model.AllTracks {
		buckets[track] = make(map[model.SkillCategory]*acc)
		for _, skill := range model.AllSkills {
			buckets[track][skill] = &acc{}
		}
	}

	for _, entry := range entries {
		trackBuckets, ok := buckets[entry.Snapshot.Track]
		if !ok {
			continue
		}
		score := entry.Evaluation.Tier.Score()
		// 分数只记入本次评定实际涉及的技能；
		// 空技能列表的条目不污染任何桶
		for _, skill := range entry.Evaluation.AffectedSkills {
			if b, ok := trackBuckets[skill]; ok {
				b.sum += score
				b.samples++
			}
		}
	}

	report := &model.MasteryReport{
		SubjectID:   subjectID,
		GeneratedAt: time.Now().UTC(),
		TotalTurns:  len(entries),
	}
	for _, track := range model.AllTracks {
		tm := model.TrackMastery{Track: track}
		for _, skill := range model.AllSkills {
			b := buckets[track][skill]
			bucket := model.MasteryBucket{Skill: skill, Samples: b.samples}
			if b.samples > 0 {
				bucket.Score = b.sum / float64(b.samples)
				bucket.HasData = true
			}
			tm.Buckets = append(tm.Buckets, bucket)
		}
		report.Tracks = append(report.Tracks, tm)
	}
	return report
}

// Report 读取学员全部对话条目并投影出掌握度报告
func (s *MasteryService) Report(subjectID uint) (*model.MasteryReport, error) {
	entries, err := s.Dialogue.ListBySubject(subjectID)
	if err != nil {
		return nil, err
	}
	return Project(subjectID, entries), nil
}
