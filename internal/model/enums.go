package model

// Track 职业课程分支，题目与会话创建后不可变更
type Track string

const (
	TrackCareGiving Track = "care_giving"
	TrackAcademic   Track = "academic"
	TrackFoodTech   Track = "food_tech"
)

// AllTracks 固定枚举顺序，聚合输出按此排序保证确定性
var AllTracks = []Track{TrackCareGiving, TrackAcademic, TrackFoodTech}

func (t Track) Valid() bool {
	switch t {
	case TrackCareGiving, TrackAcademic, TrackFoodTech:
		return true
	}
	return false
}

// SkillCategory 掌握度的三个技能维度
type SkillCategory string

const (
	SkillVocabulary      SkillCategory = "vocabulary"
	SkillToneHonorifics  SkillCategory = "tone_honorifics"
	SkillContextualLogic SkillCategory = "contextual_logic"
)

var AllSkills = []SkillCategory{SkillVocabulary, SkillToneHonorifics, SkillContextualLogic}

func (s SkillCategory) Valid() bool {
	switch s {
	case SkillVocabulary, SkillToneHonorifics, SkillContextualLogic:
		return true
	}
	return false
}

// EvaluationTier 单次作答的三档评定结果
type EvaluationTier string

const (
	TierAcceptable          EvaluationTier = "acceptable"
	TierPartiallyAcceptable EvaluationTier = "partially_acceptable"
	TierNonAcceptable       EvaluationTier = "non_acceptable"
)

func (t EvaluationTier) Valid() bool {
	switch t {
	case TierAcceptable, TierPartiallyAcceptable, TierNonAcceptable:
		return true
	}
	return false
}

// Resumable 只有 acceptable 可以直接恢复视频，其余一律先过反馈确认门
func (t EvaluationTier) Resumable() bool {
	return t == TierAcceptable
}

// Score 档位到数值贡献的映射：acceptable=100 / partially=50 / non=0
func (t EvaluationTier) Score() float64 {
	switch t {
	case TierAcceptable:
		return 100
	case TierPartiallyAcceptable:
		return 50
	default:
		return 0
	}
}

// SessionState 评估会话状态机
type SessionState string

const (
	StateAwaitingQuestion SessionState = "awaiting_question"
	StateAwaitingResponse SessionState = "awaiting_response"
	StateEvaluated        SessionState = "evaluated"
	StateGated            SessionState = "gated"
	StateReadyToContinue  SessionState = "ready_to_continue"
	StateClosed           SessionState = "closed"
)

// ContinueAction 会话继续动作
type ContinueAction string

const (
	ActionAcknowledge  ContinueAction = "acknowledge"
	ActionTryAgain     ContinueAction = "try_again"
	ActionNextQuestion ContinueAction = "next_question"
	ActionResume       ContinueAction = "resume"
)

func (a ContinueAction) Valid() bool {
	switch a {
	case ActionAcknowledge, ActionTryAgain, ActionNextQuestion, ActionResume:
		return true
	}
	return false
}
