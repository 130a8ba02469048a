package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"nihongo_edu_backend/internal/config"
	"nihongo_edu_backend/internal/model"
	"nihongo_edu_backend/internal/repository"
	"nihongo_edu_backend/internal/util"
	"nihongo_edu_backend/pkg/logger"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ContentService 课程视频的上传与查询
type ContentService struct {
	LessonRepo     *repository.LessonRepository
	StorageService *StorageService
	Cfg            *config.Config
}

func NewContentService(lessonRepo *repository.LessonRepository, storageService *StorageService, cfg *config.Config) *ContentService {
	return &ContentService{
		LessonRepo:     lessonRepo,
		StorageService: storageService,
		Cfg:            cfg,
	}
}

// UploadLesson 上传课程视频：MIME 深度校验、转存、ffmpeg 探测时长并生成缩略图
func (s *ContentService) UploadLesson(ctx context.Context, file *multipart.FileHeader, lesson *model.LessonVideo) (*model.LessonVideo, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	isValidType := false
	for _, e := range util.AllowedVideoExtensions {
		if ext == e {
			isValidType = true
			break
		}
	}
	if !isValidType {
		return nil, util.ErrInvalidVideoExt
	}

	// 使用当前时间生成唯一文件名
	videoFilename := "lessons/" + time.Now().Format("20060102150405") + "_" +
		util.GenerateRandomString(6) + ext

	// 临时保存到本地进行处理
	tempDir := filepath.Join(s.Cfg.Storage.LocalPath, "temp")
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, err
	}

	tempFilename := fmt.Sprintf("temp_lesson_%d%s", time.Now().UnixNano(), ext)
	videoPath := filepath.Join(tempDir, tempFilename)
	defer os.Remove(videoPath) // 上传完成后立即清理

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	// 深度验证 MIME 类型
	if _, err := util.ValidateMimeType(src, []string{util.MimeVideo}); err != nil {
		return nil, fmt.Errorf("非法的文件内容，仅允许视频格式: %v", err)
	}
	// 重置读取指针
	if seeker, ok := src.(io.Seeker); ok {
		seeker.Seek(0, io.SeekStart)
	}

	dst, err := os.Create(videoPath)
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return nil, err
	}

	videoURL, err := s.StorageService.UploadFile(ctx, videoFilename, videoPath, file.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	// 生成缩略图
	thumbnailFilename := "thumbnails/" + time.Now().Format("20060102150405") + "_" +
		util.GenerateRandomString(6) + ".jpg"
	thumbnailPath := filepath.Join(s.Cfg.Storage.LocalPath, "thumbnails", filepath.Base(thumbnailFilename))
	defer os.Remove(thumbnailPath)

	var thumbnailURL string
	if err := util.GenerateThumbnail(videoPath, thumbnailPath, "3"); err != nil {
		logger.Log.Error("生成缩略图失败", zap.Error(err))
		thumbnailURL = s.StorageService.GetURL("thumbnails/default-lesson-thumbnail.jpg")
	} else {
		thumbnailURL, err = s.StorageService.UploadFile(ctx, thumbnailFilename, thumbnailPath, "image/jpeg")
		if err != nil {
			thumbnailURL = s.StorageService.GetURL("thumbnails/default-lesson-thumbnail.jpg")
		}
	}

	// 获取视频时长
	var duration float64
	if videoInfo, err := util.GetVideoInfo(videoPath); err == nil {
		duration = videoInfo.Duration
	}

	lesson.URL = videoURL
	lesson.Duration = duration
	lesson.Size = file.Size
	lesson.Format = strings.TrimPrefix(ext, ".")
	lesson.Thumbnail = thumbnailURL

	if err := s.LessonRepo.Create(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

// ListLessons 按赛道/主题列出课程视频（学员只看已发布的）
func (s *ContentService) ListLessons(track model.Track, topic string, includeUnpublished bool) ([]model.LessonVideo, error) {
	return s.LessonRepo.List(track, topic, !includeUnpublished)
}

// GetLesson 获取单个课程视频
func (s *ContentService) GetLesson(id uint) (*model.LessonVideo, error) {
	lesson, err := s.LessonRepo.FindByID(id)
	if err != nil {
		return nil, util.ErrLessonNotFound
	}
	return lesson, nil
}

// DeleteLesson 删除课程视频记录（存储中的文件保留，便于误删恢复）
func (s *ContentService) DeleteLesson(id uint) error {
	if _, err := s.LessonRepo.FindByID(id); err != nil {
		return util.ErrLessonNotFound
	}
	return s.LessonRepo.Delete(id)
}
