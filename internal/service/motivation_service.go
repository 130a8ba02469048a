package service

import (
	"context"
	"errors"
	"math/rand"
	"nihongo_edu_backend/internal/model"
	"nihongo_edu_backend/internal/repository"
	"time"

	"github.com/go-redis/redis/v8"
)

// motivationCacheTTL 首页每次刷新都会拉取当前短句，缓存几分钟即可明显减压
const motivationCacheTTL = 5 * time.Minute

type MotivationService struct {
	MotivationRepo *repository.MotivationRepository
	Redis          *redis.Client // 可为 nil
}

func NewMotivationService(motivationRepo *repository.MotivationRepository, rdb *redis.Client) *MotivationService {
	return &MotivationService{MotivationRepo: motivationRepo, Redis: rdb}
}

// 获取所有激励短句
func (s *MotivationService) GetAllMotivations() ([]*model.Motivation, error) {
	return s.MotivationRepo.GetAll()
}

// 获取当前显示的激励短句（按学员界面语言）
func (s *MotivationService) GetCurrentMotivation(language string) (string, error) {
	if language == "" {
		language = "en"
	}

	cacheKey := "motivation:current:" + language
	if s.Redis != nil {
		if cached, err := s.Redis.Get(context.Background(), cacheKey).Result(); err == nil && cached != "" {
			return cached, nil
		}
	}

	content, err := s.currentFromStore(language)
	if err != nil {
		return "", err
	}
	if s.Redis != nil && content != "" {
		s.Redis.Set(context.Background(), cacheKey, content, motivationCacheTTL)
	}
	return content, nil
}

func (s *MotivationService) currentFromStore(language string) (string, error) {
	current, err := s.MotivationRepo.FindCurrent(language)
	if err != nil {
		// 如果没有当前使用的，或者出错，获取启用的激励短句列表
		enabledMotivations, err := s.MotivationRepo.GetEnabled(language)
		if err != nil || len(enabledMotivations) == 0 {
			return "", err
		}
		s.MotivationRepo.MarkUsed(enabledMotivations[0].ID)
		return enabledMotivations[0].Content, nil
	}

	// 检查是否需要切换（每12小时切换一次）
	elapsed := time.Now().Sub(current.LastUsedAt)
	enabledMotivations, err := s.MotivationRepo.GetEnabled(language)

	// 如果只有一条启用的短句，则不切换
	if err == nil && len(enabledMotivations) > 1 && elapsed.Hours() >= 12 {
		var candidates []*model.Motivation
		for _, m := range enabledMotivations {
			if m.ID != current.ID {
				candidates = append(candidates, m)
			}
		}
		if len(candidates) > 0 {
			newCurrent := candidates[rand.Intn(len(candidates))]
			s.MotivationRepo.MarkUsed(newCurrent.ID)
			return newCurrent.Content, nil
		}
	}

	return current.Content, nil
}

// 创建新的激励短句
func (s *MotivationService) CreateMotivation(content, language string) error {
	if language == "" {
		language = "en"
	}
	motivation := &model.Motivation{
		Content:         content,
		Language:        language,
		IsEnabled:       true,
		IsCurrentlyUsed: false,
	}
	if err := s.MotivationRepo.Create(motivation); err != nil {
		return err
	}
	s.invalidateCache(language)
	return nil
}

func (s *MotivationService) invalidateCache(language string) {
	if s.Redis == nil {
		return
	}
	s.Redis.Del(context.Background(), "motivation:current:"+language)
}

// 更新激励短句
func (s *MotivationService) UpdateMotivation(id uint, content string, isEnabled bool) error {
	var motivation model.Motivation
	err := s.MotivationRepo.DB.First(&motivation, id).Error
	if err != nil {
		return err
	}

	if motivation.IsCurrentlyUsed && !isEnabled {
		enabled, err := s.MotivationRepo.GetEnabled(motivation.Language)
		if err != nil {
			return err
		}
		if len(enabled) <= 1 {
			return errors.New("至少需要保留一个启用的激励短句")
		}
	}

	motivation.Content = content
	motivation.IsEnabled = isEnabled
	if err := s.MotivationRepo.Update(&motivation); err != nil {
		return err
	}
	s.invalidateCache(motivation.Language)
	return nil
}

// 删除激励短句
func (s *MotivationService) DeleteMotivation(id uint) error {
	var motivation model.Motivation
	if err := s.MotivationRepo.DB.First(&motivation, id).Error; err != nil {
		return err
	}

	if motivation.IsCurrentlyUsed {
		enabled, err := s.MotivationRepo.GetEnabled(motivation.Language)
		if err != nil {
			return err
		}
		// 如果只有这一个启用的，则不允许删除
		if len(enabled) <= 1 {
			return errors.New("至少需要保留一个启用的激励短句")
		}
	}

	if err := s.MotivationRepo.Delete(id); err != nil {
		return err
	}
	s.invalidateCache(motivation.Language)
	return nil
}
