package controller

import (
	"nihongo_edu_backend/internal/model"
	"nihongo_edu_backend/internal/service"
	"nihongo_edu_backend/internal/util"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// UserController 管理员侧用户管理接口
type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// GetUsers godoc
// @Summary 用户列表
// @Description 分页获取用户列表，支持按角色、状态、关键词筛选
// @Tags 用户管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "页码"
// @Param   pageSize query int false "每页数量"
// @Param   role query string false "角色"
// @Param   status query string false "状态 online/offline/disabled"
// @Param   search query string false "姓名或邮箱关键词"
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/admin/users [get]
func (c *UserController) GetUsers(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filter := service.UserFilter{
		Role:   ctx.Query("role"),
		Status: ctx.Query("status"),
		Search: ctx.Query("search"),
	}
	if v := ctx.Query("startDate"); v != "" {
		filter.StartDate, _ = time.Parse(util.DateFormat, v)
	}
	if v := ctx.Query("endDate"); v != "" {
		filter.EndDate, _ = time.Parse(util.DateFormat, v)
	}

	users, total, err := c.UserService.GetUsers(page, pageSize, filter)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"items":    users,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// UpdateUserRequest 用户更新请求
// swagger:model UpdateUserRequest
type UpdateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Role     string `json:"role" binding:"required,oneof=learner teacher admin"`
	Language string `json:"language" binding:"omitempty,oneof=en ja ne"`
	Disabled bool   `json:"disabled"`
}

// UpdateUser godoc
// @Summary 更新用户
// @Tags 用户管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "用户ID"
// @Param   body body UpdateUserRequest true "用户信息"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/admin/users/{id} [put]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	var req UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Role:     model.UserRole(req.Role),
		Language: req.Language,
		Disabled: req.Disabled,
	}
	user.ID = util.MustParseUint(ctx.Param("id"))

	if err := c.UserService.UpdateUser(user); err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, nil)
}

// ResetPassword godoc
// @Summary 重置用户密码
// @Description 生成临时密码并返回给管理员
// @Tags 用户管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "用户ID"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/admin/users/{id}/reset-password [post]
func (c *UserController) ResetPassword(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	tempPassword, err := c.UserService.ResetPassword(id)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, gin.H{"tempPassword": tempPassword})
}

// DisableUser godoc
// @Summary 禁用/启用用户
// @Tags 用户管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "用户ID"
// @Param   disable query bool true "true禁用 false启用"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/admin/users/{id}/disable [post]
func (c *UserController) DisableUser(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	disable := ctx.DefaultQuery("disable", "true") == "true"

	if err := c.UserService.DisableUser(id, disable); err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, nil)
}

// DeleteUser godoc
// @Summary 删除用户
// @Tags 用户管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "用户ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/admin/users/{id} [delete]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if err := c.UserService.DeleteUser(id); err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, nil)
}
