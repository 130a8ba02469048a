package controller

import (
	"errors"
	"nihongo_edu_backend/internal/model"
	"nihongo_edu_backend/internal/service"
	"nihongo_edu_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// SyllabusController 教师侧题库管理接口
type SyllabusController struct {
	SyllabusService *service.SyllabusService
}

func NewSyllabusController(syllabusService *service.SyllabusService) *SyllabusController {
	return &SyllabusController{SyllabusService: syllabusService}
}

// QuestionRequest 题目创建/更新请求
// swagger:model QuestionRequest
type QuestionRequest struct {
	Track       string `json:"track" binding:"required,oneof=care_giving academic food_tech"`
	Topic       string `json:"topic" binding:"required"`
	Prompt      string `json:"prompt" binding:"required"`
	Context     string `json:"context"`
	RubricHints string `json:"rubricHints"`
	ProbingText string `json:"probingText"`
	IsInitial   bool   `json:"isInitial"`
	Order       int    `json:"order"`
	Enabled     *bool  `json:"enabled"`
}

func (r *QuestionRequest) toModel() *model.SyllabusQuestion {
	q := &model.SyllabusQuestion{
		Track:       model.Track(r.Track),
		Topic:       r.Topic,
		Prompt:      r.Prompt,
		Context:     r.Context,
		RubricHints: r.RubricHints,
		ProbingText: r.ProbingText,
		IsInitial:   r.IsInitial,
		Order:       r.Order,
		Enabled:     true,
	}
	if r.Enabled != nil {
		q.Enabled = *r.Enabled
	}
	return q
}

// CreateQuestion godoc
// @Summary 新建题目
// @Description 向题库添加一道苏格拉底评估题目
// @Tags 题库
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body QuestionRequest true "题目内容"
// @Success 201 {object} util.Response{data=model.SyllabusQuestion} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/teacher/syllabus [post]
func (c *SyllabusController) CreateQuestion(ctx *gin.Context) {
	var req QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q := req.toModel()
	if err := c.SyllabusService.CreateQuestion(q); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, q)
}

// ListQuestions godoc
// @Summary 题目列表
// @Description 分页列出题库题目，可按赛道和主题过滤
// @Tags 题库
// @Produce  json
// @Security ApiKeyAuth
// @Param   track query string false "职业赛道"
// @Param   topic query string false "主题"
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/teacher/syllabus [get]
func (c *SyllabusController) ListQuestions(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	questions, total, err := c.SyllabusService.ListQuestions(
		model.Track(ctx.Query("track")), ctx.Query("topic"), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"items": questions,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetQuestion godoc
// @Summary 获取单题
// @Tags 题库
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "题目ID"
// @Success 200 {object} util.Response{data=model.SyllabusQuestion} "成功"
// @Failure 404 {object} util.Response "题目不存在"
// @Router /api/teacher/syllabus/{id} [get]
func (c *SyllabusController) GetQuestion(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	q, err := c.SyllabusService.GetQuestion(id)
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// UpdateQuestion godoc
// @Summary 更新题目
// @Description 修改题目内容。进行中会话持有的是题目快照，不受更新影响
// @Tags 题库
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "题目ID"
// @Param   body body QuestionRequest true "题目内容"
// @Success 200 {object} util.Response{data=model.SyllabusQuestion} "成功"
// @Failure 404 {object} util.Response "题目不存在"
// @Router /api/teacher/syllabus/{id} [put]
func (c *SyllabusController) UpdateQuestion(ctx *gin.Context) {
	var req QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q := req.toModel()
	q.ID = util.MustParseUint(ctx.Param("id"))
	if err := c.SyllabusService.UpdateQuestion(q); err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// DeleteQuestion godoc
// @Summary 删除题目
// @Tags 题库
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "题目ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "题目不存在"
// @Router /api/teacher/syllabus/{id} [delete]
func (c *SyllabusController) DeleteQuestion(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if err := c.SyllabusService.DeleteQuestion(id); err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
