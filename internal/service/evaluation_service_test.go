package service

import (
	"context"
	"errors"
	"nihongo_edu_backend/internal/config"
	"nihongo_edu_backend/internal/model"
	"nihongo_edu_backend/pkg/logger"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.InitTestLogger()
}

type stubGrader struct {
	verdict *GraderVerdict
	err     error
	calls   int
	lastReq GradingRequest
}

func (s *stubGrader) GradeResponse(ctx context.Context, req GradingRequest) (*GraderVerdict, error) {
	s.calls++
	s.lastReq = req
	return s.verdict, s.err
}

func testQuestion() *model.SyllabusQuestion {
	return &model.SyllabusQuestion{
		Track:       model.TrackFoodTech,
		Topic:       "haccp_basics",
		Prompt:      "Why must the freezer temperature log be checked twice per shift?",
		RubricHints: "Expect HACCP vocabulary and plain-form technical Japanese.",
	}
}

func newTestEvaluator(grader Grader) *EvaluationService {
	return NewEvaluationService(grader, config.AssessmentConfig{FallbackMinTokens: 5})
}

func TestClassifyEmptyResponseSkipsGrader(t *testing.T) {
	grader := &stubGrader{}
	svc := newTestEvaluator(grader)

	eval := svc.Classify(context.Background(), testQuestion(), "   ", model.TrackFoodTech)

	assert.Equal(t, 0, grader.calls)
	assert.Equal(t, model.TierNonAcceptable, eval.Tier)
	assert.False(t, eval.Resumable)
	assert.Empty(t, eval.AffectedSkills)
}

func TestClassifyAcceptableVerdict(t *testing.T) {
	grader := &stubGrader{verdict: &GraderVerdict{
		Status:         "Acceptable",
		Explanation:    "Correct use of HACCP terminology.",
		Feedback:       "Well done.",
		AffectedSkills: []string{"vocabulary"},
	}}
	svc := newTestEvaluator(grader)

	eval := svc.Classify(context.Background(), testQuestion(), "冷凍庫の温度記録はHACCPの重要管理点だからです。", model.TrackFoodTech)

	require.Equal(t, 1, grader.calls)
	assert.Equal(t, model.TierAcceptable, eval.Tier)
	assert.True(t, eval.Resumable)
	assert.False(t, eval.Degraded)
	assert.Equal(t, []model.SkillCategory{model.SkillVocabulary}, eval.AffectedSkills)
}

func TestClassifyOnlyAcceptableIsResumable(t *testing.T) {
	for _, tc := range []struct {
		status    string
		resumable bool
	}{
		{"Acceptable", true},
		{"Partially Acceptable", false},
		{"Non-Acceptable", false},
	} {
		grader := &stubGrader{verdict: &GraderVerdict{Status: tc.status, Explanation: "x", Feedback: "y"}}
		svc := newTestEvaluator(grader)

		eval := svc.Classify(context.Background(), testQuestion(), "some answer text", model.TrackFoodTech)
		assert.Equal(t, tc.resumable, eval.Resumable, "status %q", tc.status)
	}
}

func TestClassifyGraderUnavailableFallsBack(t *testing.T) {
	grader := &stubGrader{err: errors.New("connection refused")}
	svc := newTestEvaluator(grader)

	// 超过最小词数 → partially_acceptable
	eval := svc.Classify(context.Background(), testQuestion(),
		"The freezer log must be checked because temperature control is critical", model.TrackFoodTech)
	assert.Equal(t, model.TierPartiallyAcceptable, eval.Tier)
	assert.True(t, eval.Degraded)
	assert.False(t, eval.Resumable)
	assert.Empty(t, eval.AffectedSkills)

	// 过短的回答 → non_acceptable
	eval = svc.Classify(context.Background(), testQuestion(), "I think so", model.TrackFoodTech)
	assert.Equal(t, model.TierNonAcceptable, eval.Tier)
	assert.True(t, eval.Degraded)
}

func TestClassifyMalformedTierFallsBack(t *testing.T) {
	grader := &stubGrader{verdict: &GraderVerdict{Status: "excellent", Explanation: "great"}}
	svc := newTestEvaluator(grader)

	eval := svc.Classify(context.Background(), testQuestion(),
		"a longer answer that would pass the token heuristic easily", model.TrackFoodTech)
	assert.True(t, eval.Degraded)
	assert.Equal(t, model.TierPartiallyAcceptable, eval.Tier)
}

func TestClassifyExplicitSkillsBeatKeywordInference(t *testing.T) {
	// 解释文本里带 vocabulary 关键词，但显式列表只给了 tone
	grader := &stubGrader{verdict: &GraderVerdict{
		Status:         "Partially Acceptable",
		Explanation:    "The vocabulary was fine but tone was off.",
		Feedback:       "Work on politeness.",
		AffectedSkills: []string{"Tone/Honorifics", "bogus_skill"},
	}}
	svc := newTestEvaluator(grader)

	eval := svc.Classify(context.Background(), testQuestion(), "お客様に対して丁寧に話します", model.TrackCareGiving)
	assert.Equal(t, []model.SkillCategory{model.SkillToneHonorifics}, eval.AffectedSkills)
}

func TestClassifyEmptySkillListTriggersInference(t *testing.T) {
	grader := &stubGrader{verdict: &GraderVerdict{
		Status:      "Non-Acceptable",
		Explanation: "The tone and honorific form was incorrect",
		Feedback:    "Use desu/masu form.",
	}}
	svc := newTestEvaluator(grader)

	eval := svc.Classify(context.Background(), testQuestion(), "行くよ", model.TrackCareGiving)
	assert.Equal(t, []model.SkillCategory{model.SkillToneHonorifics}, eval.AffectedSkills)
}

func TestNormalizeTier(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want model.EvaluationTier
		ok   bool
	}{
		{"Acceptable", model.TierAcceptable, true},
		{"  acceptable  ", model.TierAcceptable, true},
		{"Partially Acceptable", model.TierPartiallyAcceptable, true},
		{"partially_acceptable", model.TierPartiallyAcceptable, true},
		{"PARTIALLY-ACCEPTABLE", model.TierPartiallyAcceptable, true},
		{"Non-Acceptable", model.TierNonAcceptable, true},
		{"non_acceptable", model.TierNonAcceptable, true},
		{"nonacceptable", "", false},
		{"excellent", "", false},
		{"", "", false},
	} {
		got, ok := NormalizeTier(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, "input %q", tc.in)
		}
	}
}

func TestInferAffectedSkills(t *testing.T) {
	// 典型的语气类反馈只命中 tone_honorifics
	skills := InferAffectedSkills("The tone and honorific form was incorrect")
	assert.Equal(t, []model.SkillCategory{model.SkillToneHonorifics}, skills)

	// 多维度命中
	skills = InferAffectedSkills("Wrong word choice and the meaning was misunderstood")
	assert.Equal(t, []model.SkillCategory{model.SkillVocabulary, model.SkillContextualLogic}, skills)

	// 无命中返回空集而不是 nil
	skills = InferAffectedSkills("よくできました")
	assert.NotNil(t, skills)
	assert.Empty(t, skills)
}

func TestTierScore(t *testing.T) {
	assert.Equal(t, 100.0, model.TierAcceptable.Score())
	assert.Equal(t, 50.0, model.TierPartiallyAcceptable.Score())
	assert.Equal(t, 0.0, model.TierNonAcceptable.Score())
}
