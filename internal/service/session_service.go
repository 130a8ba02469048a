package service

import (
	"context"
	"errors"
	"fmt"
	"nihongo_edu_backend/internal/config"
	"nihongo_edu_backend/internal/model"
	"nihongo_edu_backend/internal/repository"
	"nihongo_edu_backend/internal/util"
	"nihongo_edu_backend/pkg/logger"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sessionLockShards = 16

// answerLockTTL Redis侧跨实例写锁的存活时间，防止实例崩溃后死锁
const answerLockTTL = 30 * time.Second

type lockShard struct {
	locks map[uint]*sync.Mutex
	mu    sync.Mutex
}

func (s *lockShard) get(subjectID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[subjectID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[subjectID] = l
	}
	return l
}

// SessionService 苏格拉底评估会话的状态机控制器。
// 每个学员至多一个活动会话；同一学员的写操作经分片互斥锁串行化，
// 跨实例部署时再叠加一层Redis写锁。不同学员之间完全独立。
type SessionService struct {
	Sessions  *repository.SessionRepository
	Dialogue  *repository.DialogueRepository
	Syllabus  *repository.SyllabusRepository
	Evaluator *EvaluationService
	Redis     *redis.Client // 可为 nil（单实例/测试环境）
	DB        *gorm.DB
	Cfg       config.AssessmentConfig

	shards [sessionLockShards]*lockShard
}

func NewSessionService(
	sessions *repository.SessionRepository,
	dialogue *repository.DialogueRepository,
	syllabus *repository.SyllabusRepository,
	evaluator *EvaluationService,
	rdb *redis.Client,
	db *gorm.DB,
	cfg config.AssessmentConfig,
) *SessionService {
	s := &SessionService{
		Sessions:  sessions,
		Dialogue:  dialogue,
		Syllabus:  syllabus,
		Evaluator: evaluator,
		Redis:     rdb,
		DB:        db,
		Cfg:       cfg,
	}
	for i := 0; i < sessionLockShards; i++ {
		s.shards[i] = &lockShard{locks: make(map[uint]*sync.Mutex)}
	}
	return s
}

func (s *SessionService) subjectLock(subjectID uint) *sync.Mutex {
	return s.shards[subjectID%sessionLockShards].get(subjectID)
}

// QuestionPayload 下发给前端的题目载荷
type QuestionPayload struct {
	QuestionID uint        `json:"questionId"`
	Track      model.Track `json:"track"`
	Topic      string      `json:"topic"`
	Prompt     string      `json:"prompt"`
	Context    string      `json:"context,omitempty"`
	Index      int         `json:"index"`
}

// AnswerResult 一次作答评定后的返回
type AnswerResult struct {
	Tier           model.EvaluationTier  `json:"tier"`
	Explanation    string                `json:"explanation"`
	Feedback       string                `json:"feedback"`
	AffectedSkills []model.SkillCategory `json:"affectedSkills"`
	Gated          bool                  `json:"gated"`
	Degraded       bool                  `json:"degraded"`
}

// ContinueResult continue动作的返回：要么给出下一步状态，要么发出恢复/完成信号
type ContinueResult struct {
	State       model.SessionState `json:"state"`
	Question    *QuestionPayload   `json:"question,omitempty"`
	Resumed     bool               `json:"resumed"`
	Completed   bool               `json:"completed"`
	VideoOffset float64            `json:"videoOffset,omitempty"`
}

func questionPayload(q *model.SyllabusQuestion, index int) *QuestionPayload {
	return &QuestionPayload{
		QuestionID: q.ID,
		Track:      q.Track,
		Topic:      q.Topic,
		Prompt:     q.Prompt,
		Context:    q.Context,
		Index:      index,
	}
}

// Start 触发新的评估会话：捕获一次性的会话快照并选定 (track, topic) 的第一题。
// 已有的活动会话会被关闭——单写者约束下同一学员只能有一个状态机实例。
func (s *SessionService) Start(ctx context.Context, subjectID uint, track model.Track, topic string, videoOffset float64, origin string) (*model.AssessmentSession, *QuestionPayload, error) {
	lock := s.subjectLock(subjectID)
	lock.Lock()
	defer lock.Unlock()

	question, err := s.Syllabus.FindByTrackTopicIndex(track, topic, 0)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrQuestionNotFound
		}
		return nil, nil, err
	}

	if err := s.Sessions.CloseActiveBySubject(subjectID); err != nil {
		return nil, nil, err
	}

	if origin == "" {
		origin = util.OriginVideoHub
	}

	session := &model.AssessmentSession{
		SubjectID:     subjectID,
		State:         model.StateAwaitingQuestion,
		Track:         track,
		Topic:         topic,
		VideoOffset:   videoOffset,
		SessionStart:  time.Now().UTC(),
		Origin:        origin,
		QuestionID:    question.ID,
		QuestionIndex: 0,
	}
	if err := s.Sessions.Create(session); err != nil {
		return nil, nil, err
	}

	logger.Log.Info("assessment session started",
		zap.Uint("subjectId", subjectID),
		zap.String("track", string(track)),
		zap.String("topic", topic),
		zap.Float64("videoOffset", videoOffset))

	return session, questionPayload(question, 0), nil
}

// Pose 下发当前题目，AwaitingQuestion → AwaitingResponse
func (s *SessionService) Pose(subjectID uint) (*QuestionPayload, error) {
	lock := s.subjectLock(subjectID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.activeSession(subjectID)
	if err != nil {
		return nil, err
	}
	if session.State != model.StateAwaitingQuestion {
		return nil, util.ErrInvalidTransition
	}

	question, err := s.Syllabus.FindByID(session.QuestionID)
	if err != nil {
		return nil, err
	}

	session.State = model.StateAwaitingResponse
	if err := s.Sessions.Update(session); err != nil {
		return nil, err
	}
	return questionPayload(question, session.QuestionIndex), nil
}

// Answer 提交作答：调用分类器评定，把完整的问答评定元组追加进对话日志，
// 再按 resumable 落到 ReadyToContinue 或 Gated。
// 日志追加失败时整个迁移回滚并向调用方报错——未持久化的作答绝不能上报为已评定。
func (s *SessionService) Answer(ctx context.Context, subjectID uint, text string) (*AnswerResult, error) {
	lock := s.subjectLock(subjectID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.acquireAnswerLock(ctx, subjectID); err != nil {
		return nil, err
	}
	defer s.releaseAnswerLock(subjectID)

	session, err := s.activeSession(subjectID)
	if err != nil {
		return nil, err
	}
	if session.State != model.StateAwaitingResponse {
		return nil, util.ErrInvalidTransition
	}

	question, err := s.Syllabus.FindByID(session.QuestionID)
	if err != nil {
		return nil, err
	}

	// 评定永远完成：评分服务故障时 Classify 内部降级，不会在这里失败
	evaluation := s.Evaluator.Classify(ctx, question, text, session.Track)

	entry := &model.DialogueEntry{
		SubjectID:       subjectID,
		SessionID:       session.ID,
		Question:        question.Snapshot(),
		AnswerText:      text,
		AnswerTimestamp: time.Now().UTC(),
		Evaluation:      *evaluation,
		Snapshot:        session.Snapshot(),
	}

	nextState := model.StateGated
	if evaluation.Resumable {
		nextState = model.StateReadyToContinue
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.Dialogue.AppendTx(tx, entry); err != nil {
			return err
		}
		session.State = nextState
		session.LastEvaluation = *evaluation
		session.Turns++
		return s.Sessions.UpdateTx(tx, session)
	})
	if err != nil {
		// 持久化失败必须对调用方可见，会话停留在 AwaitingResponse
		logger.Log.Error("dialogue append failed, answer not recorded",
			zap.Uint("subjectId", subjectID), zap.Error(err))
		return nil, err
	}

	return &AnswerResult{
		Tier:           evaluation.Tier,
		Explanation:    evaluation.Explanation,
		Feedback:       evaluation.Feedback,
		AffectedSkills: evaluation.AffectedSkills,
		Gated:          nextState == model.StateGated,
		Degraded:       evaluation.Degraded,
	}, nil
}

// Acknowledge 反馈确认：仅在 Gated 状态合法，Gated → ReadyToContinue。
// 只是放行动作，不会改动已存储的评定。
func (s *SessionService) Acknowledge(subjectID uint) error {
	lock := s.subjectLock(subjectID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.activeSession(subjectID)
	if err != nil {
		return err
	}
	if session.State != model.StateGated {
		return util.ErrInvalidTransition
	}
	session.State = model.StateReadyToContinue
	return s.Sessions.Update(session)
}

// Continue 会话继续动作。门控不变量：评定不是 acceptable 时，
// 在 acknowledge 之前 resume 一律被拒绝。
func (s *SessionService) Continue(ctx context.Context, subjectID uint, action model.ContinueAction) (*ContinueResult, error) {
	if action == model.ActionAcknowledge {
		if err := s.Acknowledge(subjectID); err != nil {
			return nil, err
		}
		return &ContinueResult{State: model.StateReadyToContinue}, nil
	}

	lock := s.subjectLock(subjectID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.activeSession(subjectID)
	if err != nil {
		return nil, err
	}
	if session.State != model.StateGated && session.State != model.StateReadyToContinue {
		return nil, util.ErrInvalidTransition
	}

	switch action {
	case model.ActionTryAgain:
		// 同一题重来，游标不动
		session.State = model.StateAwaitingQuestion
		if err := s.Sessions.Update(session); err != nil {
			return nil, err
		}
		return &ContinueResult{State: model.StateAwaitingQuestion}, nil

	case model.ActionNextQuestion:
		return s.advanceQuestion(session)

	case model.ActionResume:
		if session.State == model.StateGated {
			return nil, util.ErrFeedbackNotAcknowledged
		}
		session.State = model.StateClosed
		if err := s.Sessions.Update(session); err != nil {
			return nil, err
		}
		return &ContinueResult{
			State:       model.StateClosed,
			Resumed:     true,
			VideoOffset: session.VideoOffset,
		}, nil
	}

	return nil, util.ErrInvalidTransition
}

// advanceQuestion 推进题目游标；题目耗尽或达到单会话上限时关闭会话
func (s *SessionService) advanceQuestion(session *model.AssessmentSession) (*ContinueResult, error) {
	if s.Cfg.MaxQuestionsPerSession > 0 && session.Turns >= s.Cfg.MaxQuestionsPerSession {
		return s.completeSession(session)
	}

	nextIndex := session.QuestionIndex + 1
	question, err := s.Syllabus.FindByTrackTopicIndex(session.Track, session.Topic, nextIndex)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.completeSession(session)
		}
		return nil, err
	}

	session.QuestionIndex = nextIndex
	session.QuestionID = question.ID
	session.State = model.StateAwaitingQuestion
	if err := s.Sessions.Update(session); err != nil {
		return nil, err
	}
	return &ContinueResult{
		State:    model.StateAwaitingQuestion,
		Question: questionPayload(question, nextIndex),
	}, nil
}

func (s *SessionService) completeSession(session *model.AssessmentSession) (*ContinueResult, error) {
	session.State = model.StateClosed
	if err := s.Sessions.Update(session); err != nil {
		return nil, err
	}
	return &ContinueResult{
		State:       model.StateClosed,
		Completed:   true,
		VideoOffset: session.VideoOffset,
	}, nil
}

// Current 查询当前会话状态（含当前题目与最近评定），供前端刷新后恢复界面
func (s *SessionService) Current(subjectID uint) (*model.AssessmentSession, *QuestionPayload, error) {
	session, err := s.activeSession(subjectID)
	if err != nil {
		return nil, nil, err
	}
	question, err := s.Syllabus.FindByID(session.QuestionID)
	if err != nil {
		return session, nil, nil
	}
	return session, questionPayload(question, session.QuestionIndex), nil
}

func (s *SessionService) activeSession(subjectID uint) (*model.AssessmentSession, error) {
	session, err := s.Sessions.FindActiveBySubject(subjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// acquireAnswerLock / releaseAnswerLock 跨实例的学员级写锁（存储边界的二道防线）。
// Redis 未配置时跳过，进程内互斥锁已经覆盖单实例场景。
func (s *SessionService) acquireAnswerLock(ctx context.Context, subjectID uint) error {
	if s.Redis == nil {
		return nil
	}
	key := fmt.Sprintf("assessment:answer_lock:%d", subjectID)
	ok, err := s.Redis.SetNX(ctx, key, 1, answerLockTTL).Result()
	if err != nil {
		// Redis 故障不阻塞评定，进程内锁仍然有效
		logger.Log.Warn("answer lock unavailable", zap.Error(err))
		return nil
	}
	if !ok {
		return util.ErrSessionBusy
	}
	return nil
}

func (s *SessionService) releaseAnswerLock(subjectID uint) {
	if s.Redis == nil {
		return
	}
	key := fmt.Sprintf("assessment:answer_lock:%d", subjectID)
	s.Redis.Del(context.Background(), key)
}
