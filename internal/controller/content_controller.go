package controller

import (
	"errors"
	"nihongo_edu_backend/internal/model"
	"nihongo_edu_backend/internal/service"
	"nihongo_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ContentController 课程视频接口
type ContentController struct {
	ContentService *service.ContentService
}

func NewContentController(contentService *service.ContentService) *ContentController {
	return &ContentController{ContentService: contentService}
}

// UploadLesson godoc
// @Summary 上传课程视频
// @Description 教师上传预录课程视频，服务端探测时长并生成缩略图
// @Tags 课程
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   file formData file true "视频文件"
// @Param   track formData string true "职业赛道"
// @Param   topic formData string true "主题"
// @Param   title formData string true "标题"
// @Param   description formData string false "描述"
// @Success 201 {object} util.Response{data=model.LessonVideo} "创建成功"
// @Failure 400 {object} util.Response "文件或参数错误"
// @Router /api/teacher/lessons [post]
func (c *ContentController) UploadLesson(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "缺少视频文件")
		return
	}

	track := model.Track(ctx.PostForm("track"))
	if !track.Valid() {
		util.BadRequest(ctx, "未知的职业赛道")
		return
	}
	title := ctx.PostForm("title")
	topic := ctx.PostForm("topic")
	if title == "" || topic == "" {
		util.BadRequest(ctx, "标题和主题不能为空")
		return
	}

	lesson := &model.LessonVideo{
		Track:       track,
		Topic:       topic,
		Title:       title,
		Description: ctx.PostForm("description"),
		UploaderID:  claims.UserID,
		Published:   true,
	}

	created, err := c.ContentService.UploadLesson(ctx, file, lesson)
	if err != nil {
		if errors.Is(err, util.ErrInvalidVideoExt) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, created)
}

// ListLessons godoc
// @Summary 课程视频列表
// @Description 按赛道/主题列出课程视频，学员只能看到已发布的
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   track query string false "职业赛道"
// @Param   topic query string false "主题"
// @Success 200 {object} util.Response{data=[]model.LessonVideo} "成功"
// @Router /api/lessons [get]
func (c *ContentController) ListLessons(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	includeUnpublished := claims.Role == model.Teacher || claims.Role == model.Admin
	lessons, err := c.ContentService.ListLessons(model.Track(ctx.Query("track")), ctx.Query("topic"), includeUnpublished)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, lessons)
}

// GetLesson godoc
// @Summary 获取课程视频
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.LessonVideo} "成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/lessons/{id} [get]
func (c *ContentController) GetLesson(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	lesson, err := c.ContentService.GetLesson(id)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, lesson)
}

// DeleteLesson godoc
// @Summary 删除课程视频
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/teacher/lessons/{id} [delete]
func (c *ContentController) DeleteLesson(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if err := c.ContentService.DeleteLesson(id); err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, nil)
}
