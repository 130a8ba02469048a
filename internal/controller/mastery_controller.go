package controller

import (
	"nihongo_edu_backend/internal/service"
	"nihongo_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// MasteryController 掌握度与进度报告接口
type MasteryController struct {
	MasteryService *service.MasteryService
	ReportService  *service.ReportService
	UserService    *service.UserService
}

func NewMasteryController(masteryService *service.MasteryService, reportService *service.ReportService, userService *service.UserService) *MasteryController {
	return &MasteryController{
		MasteryService: masteryService,
		ReportService:  reportService,
		UserService:    userService,
	}
}

// GetScores godoc
// @Summary 获取技能掌握度
// @Description 按 (赛道, 技能) 分桶返回当前学员的掌握度分数，每次从对话日志重算
// @Tags 掌握度
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.MasteryReport} "成功"
// @Router /api/mastery/scores [get]
func (c *MasteryController) GetScores(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	report, err := c.MasteryService.Report(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// GetReport godoc
// @Summary 获取进度报告
// @Description 掌握度之上叠加 JLPT 等级估计、就业准备度与叙述性总结
// @Tags 掌握度
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.ProgressReport} "成功"
// @Router /api/mastery/report [get]
func (c *MasteryController) GetReport(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	report, err := c.ReportService.Generate(ctx, claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// GetLearnerReport godoc
// @Summary 教师查看学员进度报告
// @Description 教师/管理员按学员ID查看进度报告
// @Tags 掌握度
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "学员ID"
// @Success 200 {object} util.Response{data=service.ProgressReport} "成功"
// @Failure 404 {object} util.Response "学员不存在"
// @Router /api/teacher/learners/{id}/report [get]
func (c *MasteryController) GetLearnerReport(ctx *gin.Context) {
	learnerID := util.MustParseUint(ctx.Param("id"))
	if learnerID == 0 {
		util.BadRequest(ctx, "无效的学员ID")
		return
	}

	if _, err := c.UserService.GetUserByID(learnerID); err != nil {
		util.NotFound(ctx)
		return
	}

	report, err := c.ReportService.Generate(ctx, learnerID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, report)
}
