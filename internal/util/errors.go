package util

import "errors"

var (
	ErrUserNotFound    = errors.New("用户不存在")
	ErrEmailRegistered = errors.New("该邮箱已被注册")

	// 状态机错误：动作在当前状态下不合法，直接拒绝而不是静默纠正
	ErrInvalidTransition = errors.New("invalid session transition")
	// Gated 状态下 resume 被反馈确认门拦截
	ErrFeedbackNotAcknowledged = errors.New("feedback must be acknowledged before resuming")

	ErrSessionNotFound      = errors.New("no active assessment session")
	ErrSessionAlreadyActive = errors.New("an assessment session is already active for this subject")
	ErrSessionBusy          = errors.New("another answer is being processed for this subject")
	ErrQuestionNotFound     = errors.New("no syllabus question available for this track and topic")
	ErrLessonNotFound       = errors.New("lesson video not found")

	ErrUnauthorized    = errors.New("未授权的操作")
	ErrInvalidVideoExt = errors.New("不支持的视频格式")
)
