package controller

import (
	"errors"
	"nihongo_edu_backend/internal/model"
	"nihongo_edu_backend/internal/service"
	"nihongo_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// SessionController 苏格拉底评估会话接口
type SessionController struct {
	SessionService *service.SessionService
}

func NewSessionController(sessionService *service.SessionService) *SessionController {
	return &SessionController{SessionService: sessionService}
}

// StartSessionRequest 发起评估会话
// swagger:model StartSessionRequest
type StartSessionRequest struct {
	Track       string  `json:"track" binding:"required,oneof=care_giving academic food_tech"`
	Topic       string  `json:"topic" binding:"required"`
	VideoOffset float64 `json:"videoOffset"`
	Origin      string  `json:"origin" binding:"omitempty,oneof=video_hub dashboard"`
}

// StartSession godoc
// @Summary 发起评估会话
// @Description 暂停课程视频后发起苏格拉底问答，返回第一道题
// @Tags 评估会话
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body StartSessionRequest true "赛道、主题与视频时间点"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "该赛道主题下没有题目"
// @Router /api/sessions/start [post]
func (c *SessionController) StartSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req StartSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, _, err := c.SessionService.Start(ctx, claims.UserID, model.Track(req.Track), req.Topic, req.VideoOffset, req.Origin)
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.Error(ctx, 404, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	// 发起后立刻下发第一题
	question, err := c.SessionService.Pose(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"sessionId": session.ID,
		"state":     model.StateAwaitingResponse,
		"question":  question,
	})
}

// GetCurrentSession godoc
// @Summary 查询当前会话
// @Description 返回当前活动会话的状态、当前题目与最近一次评定，供页面刷新后恢复
// @Tags 评估会话
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 404 {object} util.Response "没有活动会话"
// @Router /api/sessions/current [get]
func (c *SessionController) GetCurrentSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	session, question, err := c.SessionService.Current(claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrSessionNotFound) {
			util.Error(ctx, 404, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	resp := gin.H{
		"sessionId":   session.ID,
		"state":       session.State,
		"track":       session.Track,
		"topic":       session.Topic,
		"videoOffset": session.VideoOffset,
		"turns":       session.Turns,
		"question":    question,
	}
	if session.LastEvaluation.Tier != "" {
		resp["lastEvaluation"] = session.LastEvaluation
	}
	util.Success(ctx, resp)
}

// AnswerRequest 提交作答
// swagger:model AnswerRequest
type AnswerRequest struct {
	Text string `json:"text"`
}

// SubmitAnswer godoc
// @Summary 提交作答
// @Description 对当前题目提交回答，返回三档评定与反馈；非 acceptable 时会话进入门控状态
// @Tags 评估会话
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body AnswerRequest true "回答文本"
// @Success 200 {object} util.Response{data=service.AnswerResult} "评定结果"
// @Failure 404 {object} util.Response "没有活动会话"
// @Failure 409 {object} util.Response "当前状态不接受作答"
// @Router /api/sessions/answer [post]
func (c *SessionController) SubmitAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.SessionService.Answer(ctx, claims.UserID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSessionNotFound):
			util.Error(ctx, 404, err.Error())
		case errors.Is(err, util.ErrInvalidTransition), errors.Is(err, util.ErrSessionBusy):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}

// ContinueRequest 会话继续动作
// swagger:model ContinueRequest
type ContinueRequest struct {
	Action string `json:"action" binding:"required,oneof=acknowledge try_again next_question resume"`
}

// ContinueSession godoc
// @Summary 会话继续动作
// @Description 反馈确认、重答、下一题或恢复视频播放。门控状态下未确认反馈前 resume 会被拒绝
// @Tags 评估会话
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body ContinueRequest true "动作"
// @Success 200 {object} util.Response{data=service.ContinueResult} "成功"
// @Failure 404 {object} util.Response "没有活动会话"
// @Failure 409 {object} util.Response "动作在当前状态下不合法"
// @Router /api/sessions/continue [post]
func (c *SessionController) ContinueSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ContinueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.SessionService.Continue(ctx, claims.UserID, model.ContinueAction(req.Action))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSessionNotFound):
			util.Error(ctx, 404, err.Error())
		case errors.Is(err, util.ErrInvalidTransition), errors.Is(err, util.ErrFeedbackNotAcknowledged):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}
