package service

import (
	"context"
	"nihongo_edu_backend/internal/config"
	"nihongo_edu_backend/internal/model"
	"nihongo_edu_backend/internal/repository"
	"nihongo_edu_backend/internal/util"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.SyllabusQuestion{},
		&model.AssessmentSession{},
		&model.DialogueEntry{},
	))
	return db
}

func seedQuestions(t *testing.T, db *gorm.DB, track model.Track, topic string, prompts ...string) {
	t.Helper()
	for i, prompt := range prompts {
		require.NoError(t, db.Create(&model.SyllabusQuestion{
			Track:   track,
			Topic:   topic,
			Prompt:  prompt,
			Order:   i + 1,
			Enabled: true,
		}).Error)
	}
}

func newSessionTestEnv(t *testing.T, grader Grader) (*SessionService, *repository.DialogueRepository, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	dialogue := repository.NewDialogueRepository(db)
	svc := NewSessionService(
		repository.NewSessionRepository(db),
		dialogue,
		repository.NewSyllabusRepository(db),
		newTestEvaluator(grader),
		nil, // 测试不挂 Redis，进程内锁已覆盖
		db,
		config.AssessmentConfig{FallbackMinTokens: 5},
	)
	return svc, dialogue, db
}

func acceptableGrader() *stubGrader {
	return &stubGrader{verdict: &GraderVerdict{
		Status:         "Acceptable",
		Explanation:    "Correct usage.",
		Feedback:       "Well done.",
		AffectedSkills: []string{"vocabulary"},
	}}
}

func nonAcceptableGrader() *stubGrader {
	return &stubGrader{verdict: &GraderVerdict{
		Status:         "Non-Acceptable",
		Explanation:    "The tone was too casual.",
		Feedback:       "Use desu/masu form.",
		AffectedSkills: []string{"tone_honorifics"},
	}}
}

func TestStartPosesFirstQuestion(t *testing.T) {
	svc, _, _ := newSessionTestEnv(t, acceptableGrader())
	seedQuestions(t, svc.DB, model.TrackFoodTech, "haccp", "Q1", "Q2")

	session, first, err := svc.Start(context.Background(), 1, model.TrackFoodTech, "haccp", 42.5, util.OriginVideoHub)
	require.NoError(t, err)
	assert.Equal(t, model.StateAwaitingQuestion, session.State)
	assert.Equal(t, "Q1", first.Prompt)
	assert.Equal(t, 42.5, session.VideoOffset)

	question, err := svc.Pose(1)
	require.NoError(t, err)
	assert.Equal(t, "Q1", question.Prompt)

	current, _, err := svc.Current(1)
	require.NoError(t, err)
	assert.Equal(t, model.StateAwaitingResponse, current.State)
}

func TestStartWithoutQuestionsFails(t *testing.T) {
	svc, _, _ := newSessionTestEnv(t, acceptableGrader())

	_, _, err := svc.Start(context.Background(), 1, model.TrackAcademic, "missing_topic", 0, "")
	assert.ErrorIs(t, err, util.ErrQuestionNotFound)
}

func TestStartClosesPriorSession(t *testing.T) {
	svc, _, _ := newSessionTestEnv(t, acceptableGrader())
	seedQuestions(t, svc.DB, model.TrackFoodTech, "haccp", "Q1")

	first, _, err := svc.Start(context.Background(), 1, model.TrackFoodTech, "haccp", 0, "")
	require.NoError(t, err)

	second, _, err := svc.Start(context.Background(), 1, model.TrackFoodTech, "haccp", 10, "")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	var closed model.AssessmentSession
	require.NoError(t, svc.DB.First(&closed, first.ID).Error)
	assert.Equal(t, model.StateClosed, closed.State)
}

func TestAnswerAcceptableReadyToContinueAndResume(t *testing.T) {
	svc, dialogue, _ := newSessionTestEnv(t, acceptableGrader())
	seedQuestions(t, svc.DB, model.TrackFoodTech, "haccp", "Q1")

	_, _, err := svc.Start(context.Background(), 1, model.TrackFoodTech, "haccp", 33.0, "")
	require.NoError(t, err)
	_, err = svc.Pose(1)
	require.NoError(t, err)

	result, err := svc.Answer(context.Background(), 1, "温度記録はHACCPの重要管理点です")
	require.NoError(t, err)
	assert.Equal(t, model.TierAcceptable, result.Tier)
	assert.False(t, result.Gated)

	entries, err := dialogue.ListBySubject(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Q1", entries[0].Question.Prompt)
	assert.Equal(t, model.TrackFoodTech, entries[0].Snapshot.Track)
	assert.Equal(t, 33.0, entries[0].Snapshot.VideoOffset)

	// acceptable 后无须确认即可恢复播放
	cont, err := svc.Continue(context.Background(), 1, model.ActionResume)
	require.NoError(t, err)
	assert.True(t, cont.Resumed)
	assert.Equal(t, 33.0, cont.VideoOffset)
	assert.Equal(t, model.StateClosed, cont.State)
}

func TestAnswerNonAcceptableGatesUntilAcknowledged(t *testing.T) {
	svc, _, _ := newSessionTestEnv(t, nonAcceptableGrader())
	seedQuestions(t, svc.DB, model.TrackCareGiving, "bathing", "Q1")

	_, _, err := svc.Start(context.Background(), 1, model.TrackCareGiving, "bathing", 0, "")
	require.NoError(t, err)
	_, err = svc.Pose(1)
	require.NoError(t, err)

	result, err := svc.Answer(context.Background(), 1, "行くよ")
	require.NoError(t, err)
	assert.True(t, result.Gated)

	// 门控期间 resume 被拒绝
	_, err = svc.Continue(context.Background(), 1, model.ActionResume)
	assert.ErrorIs(t, err, util.ErrFeedbackNotAcknowledged)

	// 确认反馈后放行
	_, err = svc.Continue(context.Background(), 1, model.ActionAcknowledge)
	require.NoError(t, err)

	cont, err := svc.Continue(context.Background(), 1, model.ActionResume)
	require.NoError(t, err)
	assert.True(t, cont.Resumed)
}

func TestAcknowledgeOnlyLegalWhileGated(t *testing.T) {
	svc, _, _ := newSessionTestEnv(t, acceptableGrader())
	seedQuestions(t, svc.DB, model.TrackFoodTech, "haccp", "Q1")

	_, _, err := svc.Start(context.Background(), 1, model.TrackFoodTech, "haccp", 0, "")
	require.NoError(t, err)

	// awaiting_question 状态下 acknowledge 不合法
	err = svc.Acknowledge(1)
	assert.ErrorIs(t, err, util.ErrInvalidTransition)
}

func TestAnswerRejectedOutsideAwaitingResponse(t *testing.T) {
	svc, dialogue, _ := newSessionTestEnv(t, acceptableGrader())
	seedQuestions(t, svc.DB, model.TrackFoodTech, "haccp", "Q1")

	_, _, err := svc.Start(context.Background(), 1, model.TrackFoodTech, "haccp", 0, "")
	require.NoError(t, err)

	// 题目还没下发
	_, err = svc.Answer(context.Background(), 1, "answer")
	assert.ErrorIs(t, err, util.ErrInvalidTransition)

	_, err = svc.Pose(1)
	require.NoError(t, err)
	_, err = svc.Answer(context.Background(), 1, "answer one")
	require.NoError(t, err)

	// 已评定后重复提交
	_, err = svc.Answer(context.Background(), 1, "answer two")
	assert.ErrorIs(t, err, util.ErrInvalidTransition)

	entries, err := dialogue.ListBySubject(1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAnswerWithoutActiveSession(t *testing.T) {
	svc, _, _ := newSessionTestEnv(t, acceptableGrader())

	_, err := svc.Answer(context.Background(), 42, "hello")
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestTryAgainRepeatsSameQuestion(t *testing.T) {
	svc, _, _ := newSessionTestEnv(t, nonAcceptableGrader())
	seedQuestions(t, svc.DB, model.TrackCareGiving, "bathing", "Q1", "Q2")

	_, _, err := svc.Start(context.Background(), 1, model.TrackCareGiving, "bathing", 0, "")
	require.NoError(t, err)
	_, err = svc.Pose(1)
	require.NoError(t, err)
	_, err = svc.Answer(context.Background(), 1, "だめな答え")
	require.NoError(t, err)

	cont, err := svc.Continue(context.Background(), 1, model.ActionTryAgain)
	require.NoError(t, err)
	assert.Equal(t, model.StateAwaitingQuestion, cont.State)

	question, err := svc.Pose(1)
	require.NoError(t, err)
	assert.Equal(t, "Q1", question.Prompt)
	assert.Equal(t, 0, question.Index)
}

func TestNextQuestionAdvancesThenCompletes(t *testing.T) {
	svc, _, _ := newSessionTestEnv(t, acceptableGrader())
	seedQuestions(t, svc.DB, model.TrackFoodTech, "haccp", "Q1", "Q2")

	_, _, err := svc.Start(context.Background(), 1, model.TrackFoodTech, "haccp", 0, "")
	require.NoError(t, err)
	_, err = svc.Pose(1)
	require.NoError(t, err)
	_, err = svc.Answer(context.Background(), 1, "first answer")
	require.NoError(t, err)

	cont, err := svc.Continue(context.Background(), 1, model.ActionNextQuestion)
	require.NoError(t, err)
	require.NotNil(t, cont.Question)
	assert.Equal(t, "Q2", cont.Question.Prompt)
	assert.Equal(t, 1, cont.Question.Index)

	_, err = svc.Pose(1)
	require.NoError(t, err)
	_, err = svc.Answer(context.Background(), 1, "second answer")
	require.NoError(t, err)

	// 题目耗尽，会话完成
	cont, err = svc.Continue(context.Background(), 1, model.ActionNextQuestion)
	require.NoError(t, err)
	assert.True(t, cont.Completed)
	assert.Equal(t, model.StateClosed, cont.State)
}

func TestMaxQuestionsPerSessionCapsSession(t *testing.T) {
	svc, _, _ := newSessionTestEnv(t, acceptableGrader())
	svc.Cfg.MaxQuestionsPerSession = 1
	seedQuestions(t, svc.DB, model.TrackFoodTech, "haccp", "Q1", "Q2")

	_, _, err := svc.Start(context.Background(), 1, model.TrackFoodTech, "haccp", 0, "")
	require.NoError(t, err)
	_, err = svc.Pose(1)
	require.NoError(t, err)
	_, err = svc.Answer(context.Background(), 1, "answer")
	require.NoError(t, err)

	cont, err := svc.Continue(context.Background(), 1, model.ActionNextQuestion)
	require.NoError(t, err)
	assert.True(t, cont.Completed)
}

func TestConcurrentAnswersSerialized(t *testing.T) {
	svc, dialogue, _ := newSessionTestEnv(t, acceptableGrader())
	seedQuestions(t, svc.DB, model.TrackFoodTech, "haccp", "Q1")

	_, _, err := svc.Start(context.Background(), 1, model.TrackFoodTech, "haccp", 0, "")
	require.NoError(t, err)
	_, err = svc.Pose(1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Answer(context.Background(), 1, "concurrent answer attempt")
		}(i)
	}
	wg.Wait()

	// 恰好一个成功，另一个被状态机拒绝
	var okCount, rejectedCount int
	for _, err := range errs {
		if err == nil {
			okCount++
		} else if assert.ErrorIs(t, err, util.ErrInvalidTransition) {
			rejectedCount++
		}
	}
	assert.Equal(t, 1, okCount)
	assert.Equal(t, 1, rejectedCount)

	entries, err := dialogue.ListBySubject(1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSessionsIndependentAcrossSubjects(t *testing.T) {
	svc, _, _ := newSessionTestEnv(t, acceptableGrader())
	seedQuestions(t, svc.DB, model.TrackFoodTech, "haccp", "Q1")

	_, _, err := svc.Start(context.Background(), 1, model.TrackFoodTech, "haccp", 0, "")
	require.NoError(t, err)
	_, _, err = svc.Start(context.Background(), 2, model.TrackFoodTech, "haccp", 0, "")
	require.NoError(t, err)

	_, err = svc.Pose(1)
	require.NoError(t, err)
	_, err = svc.Answer(context.Background(), 1, "subject one answer")
	require.NoError(t, err)

	// 学员2的会话不受学员1影响
	current, _, err := svc.Current(2)
	require.NoError(t, err)
	assert.Equal(t, model.StateAwaitingQuestion, current.State)
}
