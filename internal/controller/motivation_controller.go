package controller

import (
	"nihongo_edu_backend/internal/service"
	"nihongo_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// MotivationController 激励短句接口
type MotivationController struct {
	MotivationService *service.MotivationService
	AuthService       *service.AuthService
}

func NewMotivationController(motivationService *service.MotivationService, authService *service.AuthService) *MotivationController {
	return &MotivationController{
		MotivationService: motivationService,
		AuthService:       authService,
	}
}

// GetCurrent godoc
// @Summary 获取当前激励短句
// @Description 按学员界面语言返回当前激励短句，每12小时轮换
// @Tags 激励短句
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/motivation/current [get]
func (c *MotivationController) GetCurrent(ctx *gin.Context) {
	language := "en"
	if user := c.AuthService.GetCurrentUser(ctx); user != nil && user.Language != "" {
		language = user.Language
	}

	content, err := c.MotivationService.GetCurrentMotivation(language)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"content": content, "language": language})
}

// ListMotivations godoc
// @Summary 激励短句列表
// @Tags 激励短句
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Motivation} "成功"
// @Router /api/admin/motivations [get]
func (c *MotivationController) ListMotivations(ctx *gin.Context) {
	motivations, err := c.MotivationService.GetAllMotivations()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, motivations)
}

// MotivationRequest 激励短句创建/更新请求
// swagger:model MotivationRequest
type MotivationRequest struct {
	Content   string `json:"content" binding:"required"`
	Language  string `json:"language" binding:"omitempty,oneof=en ja ne"`
	IsEnabled *bool  `json:"isEnabled"`
}

// CreateMotivation godoc
// @Summary 新建激励短句
// @Tags 激励短句
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body MotivationRequest true "短句内容"
// @Success 201 {object} util.Response "创建成功"
// @Router /api/admin/motivations [post]
func (c *MotivationController) CreateMotivation(ctx *gin.Context) {
	var req MotivationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.MotivationService.CreateMotivation(req.Content, req.Language); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, nil)
}

// UpdateMotivation godoc
// @Summary 更新激励短句
// @Tags 激励短句
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "短句ID"
// @Param   body body MotivationRequest true "短句内容"
// @Success 200 {object} util.Response "成功"
// @Router /api/admin/motivations/{id} [put]
func (c *MotivationController) UpdateMotivation(ctx *gin.Context) {
	var req MotivationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	isEnabled := true
	if req.IsEnabled != nil {
		isEnabled = *req.IsEnabled
	}

	id := util.MustParseUint(ctx.Param("id"))
	if err := c.MotivationService.UpdateMotivation(id, req.Content, isEnabled); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, nil)
}

// DeleteMotivation godoc
// @Summary 删除激励短句
// @Tags 激励短句
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "短句ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/admin/motivations/{id} [delete]
func (c *MotivationController) DeleteMotivation(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if err := c.MotivationService.DeleteMotivation(id); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, nil)
}
