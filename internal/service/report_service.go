package service

import (
	"context"
	"fmt"
	"nihongo_edu_backend/internal/model"
	"nihongo_edu_backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
)

// JLPT 等级映射阈值
const (
	jlptN3Threshold = 70
	jlptN4Threshold = 50
)

// ProgressReport 面向学员/监护人的进度报告
type ProgressReport struct {
	Mastery   *model.MasteryReport `json:"mastery"`
	Tracks    []TrackProgress      `json:"tracks"`
	Narrative string               `json:"narrative"`
}

// TrackProgress 单个职业赛道的汇总
type TrackProgress struct {
	Track           model.Track `json:"track"`
	OverallScore    float64     `json:"overallScore"`
	HasData         bool        `json:"hasData"`
	JLPTEstimate    string      `json:"jlptEstimate"`
	CareerReadiness int         `json:"careerReadiness"`
}

// ReportService 在掌握度投影之上生成带叙述的进度报告。
// 叙述部分优先由评分服务生成，不可用时回落到模板文案。
type ReportService struct {
	Mastery *MasteryService
	AI      *AIService // 可为 nil
}

func NewReportService(mastery *MasteryService, ai *AIService) *ReportService {
	return &ReportService{Mastery: mastery, AI: ai}
}

// JLPTBand 把赛道平均分映射到 JLPT 估计等级
func JLPTBand(score float64) string {
	switch {
	case score >= jlptN3Threshold:
		return "N3"
	case score >= jlptN4Threshold:
		return "N4"
	default:
		return "N5"
	}
}

// CareerReadiness 就业准备度三档：入门33 / 进阶66 / 就绪100
func CareerReadiness(score float64) int {
	switch {
	case score >= jlptN3Threshold:
		return 100
	case score >= jlptN4Threshold:
		return 66
	default:
		return 33
	}
}

func trackProgress(tm model.TrackMastery) TrackProgress {
	var sum float64
	var n int
	for _, b := range tm.Buckets {
		if b.HasData {
			sum += b.Score
			n++
		}
	}
	p := TrackProgress{Track: tm.Track}
	if n == 0 {
		// 无数据赛道不给出等级估计，避免把“未评估”伪装成低水平
		p.JLPTEstimate = "unassessed"
		return p
	}
	p.HasData = true
	p.OverallScore = sum / float64(n)
	p.JLPTEstimate = JLPTBand(p.OverallScore)
	p.CareerReadiness = CareerReadiness(p.OverallScore)
	return p
}

// Generate 生成学员进度报告
func (s *ReportService) Generate(ctx context.Context, subjectID uint) (*ProgressReport, error) {
	mastery, err := s.Mastery.Report(subjectID)
	if err != nil {
		return nil, err
	}

	report := &ProgressReport{Mastery: mastery}
	for _, tm := range mastery.Tracks {
		report.Tracks = append(report.Tracks, trackProgress(tm))
	}
	report.Narrative = s.narrative(ctx, report)
	return report, nil
}

func (s *ReportService) narrative(ctx context.Context, report *ProgressReport) string {
	if s.AI != nil {
		text, err := s.AI.GenerateNarrative(ctx, narrativePrompt(report))
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		if err != nil {
			logger.Log.Warn("narrative generation failed, using template", zap.Error(err))
		}
	}
	return staticNarrative(report)
}

func narrativePrompt(report *ProgressReport) string {
	var sb strings.Builder
	sb.WriteString("Write a short, encouraging progress summary (3-4 sentences, plain English) for a Japanese-language vocational learner based on these assessment results:\n")
	for _, t := range report.Tracks {
		if !t.HasData {
			continue
		}
		sb.WriteString(fmt.Sprintf("- track %s: average score %.0f/100, estimated JLPT %s, career readiness %d%%\n",
			t.Track, t.OverallScore, t.JLPTEstimate, t.CareerReadiness))
	}
	sb.WriteString("Mention concrete next steps. Do not invent results not listed above.")
	return sb.String()
}

func staticNarrative(report *ProgressReport) string {
	var assessed []string
	for _, t := range report.Tracks {
		if t.HasData {
			assessed = append(assessed, fmt.Sprintf("%s (%.0f/100, JLPT %s)", t.Track, t.OverallScore, t.JLPTEstimate))
		}
	}
	if len(assessed) == 0 {
		return "No assessments recorded yet. Complete a video lesson and answer the comprehension questions to begin building your mastery profile."
	}
	return "Assessed tracks: " + strings.Join(assessed, ", ") + ". Keep practicing regularly; scores update after every answered question."
}
