package service

import (
	"context"
	"nihongo_edu_backend/internal/config"
	"nihongo_edu_backend/internal/model"
	"nihongo_edu_backend/internal/util"
	"nihongo_edu_backend/pkg/logger"
	"nihongo_edu_backend/pkg/monitoring"
	"strings"

	"go.uber.org/zap"
)

// Grader 外部评分模型的接口契约，AIService 是生产实现
type Grader interface {
	GradeResponse(ctx context.Context, req GradingRequest) (*GraderVerdict, error)
}

// EvaluationService 三档评定分类器：包一层外部评分调用，外加确定性的本地降级。
// 评定永远会完成——评分服务故障只降级，不上抛。
type EvaluationService struct {
	Grader Grader
	Cfg    config.AssessmentConfig
}

func NewEvaluationService(grader Grader, cfg config.AssessmentConfig) *EvaluationService {
	return &EvaluationService{Grader: grader, Cfg: cfg}
}

// Classify 评定一次作答。空白回答直接判 non_acceptable，不调用评分模型。
func (s *EvaluationService) Classify(ctx context.Context, question *model.SyllabusQuestion, responseText string, track model.Track) *model.Evaluation {
	trimmed := strings.TrimSpace(responseText)
	if trimmed == "" {
		return &model.Evaluation{
			Tier:           model.TierNonAcceptable,
			Explanation:    "No answer was given.",
			Feedback:       "Please provide a response to the question.",
			AffectedSkills: []model.SkillCategory{},
			Resumable:      false,
		}
	}

	verdict, err := s.Grader.GradeResponse(ctx, GradingRequest{
		QuestionText:    question.Prompt,
		QuestionContext: question.Context,
		RubricHints:     question.RubricHints,
		ResponseText:    trimmed,
		Track:           track,
	})
	if err != nil {
		logger.Log.Warn("grader unavailable, using local fallback",
			zap.Error(err),
			zap.String("track", string(track)),
			zap.Uint("questionId", question.ID))
		monitoring.GraderFallbackCounter.WithLabelValues("unavailable").Inc()
		return s.fallbackEvaluation(trimmed)
	}

	tier, ok := NormalizeTier(verdict.Status)
	if !ok {
		logger.Log.Warn("grader returned unrecognized tier, using local fallback",
			zap.String("status", verdict.Status),
			zap.String("track", string(track)))
		monitoring.GraderFallbackCounter.WithLabelValues("malformed").Inc()
		return s.fallbackEvaluation(trimmed)
	}

	// 技能归因是两段式的：显式列表优先（未知标签丢弃），否则走关键词兜底。
	// 注意档位与技能互相独立：档位先定，技能后附，永远不会由技能反推档位。
	var skills []model.SkillCategory
	if len(verdict.AffectedSkills) > 0 {
		skills = normalizeSkills(verdict.AffectedSkills)
	} else {
		skills = InferAffectedSkills(verdict.Explanation + " " + verdict.Feedback)
	}

	monitoring.EvaluationCounter.WithLabelValues(string(track), string(tier)).Inc()

	return &model.Evaluation{
		Tier:           tier,
		Explanation:    verdict.Explanation,
		Feedback:       verdict.Feedback,
		AffectedSkills: skills,
		Resumable:      tier.Resumable(),
	}
}

// fallbackEvaluation 保守的本地启发式：回答达到最小词数判 partially_acceptable，
// 否则 non_acceptable。技能集合为空，解释注明走了降级路径。
func (s *EvaluationService) fallbackEvaluation(responseText string) *model.Evaluation {
	tier := model.TierNonAcceptable
	if util.CountTokens(responseText) > s.Cfg.FallbackMinTokens {
		tier = model.TierPartiallyAcceptable
	}
	return &model.Evaluation{
		Tier:           tier,
		Explanation:    "The evaluation service was unavailable, so a conservative local assessment was applied. Please review your response for correct vocabulary, tone and grammar.",
		Feedback:       "Ensure you use appropriate vocabulary and tone for the track context.",
		AffectedSkills: []model.SkillCategory{},
		Resumable:      false,
		Degraded:       true,
	}
}

// NormalizeTier 把评分模型输出的档位标签映射到内部枚举。
// 只接受三个规范标签（大小写、连字符、下划线不敏感），其余一律视为畸形输出。
func NormalizeTier(status string) (model.EvaluationTier, bool) {
	normalized := strings.ToLower(strings.TrimSpace(status))
	normalized = strings.NewReplacer("-", " ", "_", " ").Replace(normalized)
	normalized = strings.Join(strings.Fields(normalized), " ")

	switch normalized {
	case "acceptable":
		return model.TierAcceptable, true
	case "partially acceptable":
		return model.TierPartiallyAcceptable, true
	case "non acceptable":
		return model.TierNonAcceptable, true
	}
	return "", false
}

// normalizeSkills 显式技能列表的校验：合法标签映射进枚举，未知标签丢弃
func normalizeSkills(labels []string) []model.SkillCategory {
	skills := make([]model.SkillCategory, 0, len(labels))
	seen := make(map[model.SkillCategory]bool)
	for _, label := range labels {
		normalized := strings.ToLower(strings.TrimSpace(label))
		normalized = strings.NewReplacer("/", "", "-", "", "_", "", " ", "").Replace(normalized)

		var skill model.SkillCategory
		switch normalized {
		case "vocabulary":
			skill = model.SkillVocabulary
		case "tonehonorifics":
			skill = model.SkillToneHonorifics
		case "contextuallogic":
			skill = model.SkillContextualLogic
		default:
			continue
		}
		if !seen[skill] {
			seen[skill] = true
			skills = append(skills, skill)
		}
	}
	return skills
}

// 关键词兜底的固定词表，按技能维度的固定优先顺序匹配
var skillKeywords = []struct {
	skill    model.SkillCategory
	keywords []string
}{
	{model.SkillVocabulary, []string{"vocabulary", "terminology", "word", "term"}},
	{model.SkillToneHonorifics, []string{"tone", "honorific", "desu", "masu", "keigo", "polite", "formal"}},
	{model.SkillContextualLogic, []string{"meaning", "context", "logic", "understand", "comprehension"}},
}

// InferAffectedSkills 关键词兜底归因：对解释/反馈文本做大小写不敏感的子串匹配，
// 收集所有命中的技能维度。没有任何命中时返回空集——一次作答完全可以不落在
// 任何具体技能上，空集不会稀释掌握度分数。
func InferAffectedSkills(text string) []model.SkillCategory {
	lowered := strings.ToLower(text)
	var skills []model.SkillCategory
	for _, entry := range skillKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lowered, kw) {
				skills = append(skills, entry.skill)
				break
			}
		}
	}
	if skills == nil {
		skills = []model.SkillCategory{}
	}
	return skills
}
