// 批量导入大纲题库脚本
//
// 日常的单题维护走 /api/teacher/syllabus 接口；此脚本用于首次部署
// 或教研团队整理好的 YAML 题库的一次性导入。
//
// 用法: go run scripts/import_syllabus.go <questions.yaml>

package main

import (
	"log"
	"nihongo_edu_backend/internal/config"
	"nihongo_edu_backend/internal/model"
	"nihongo_edu_backend/internal/service"
	"nihongo_edu_backend/pkg/database"
	"os"

	"gopkg.in/yaml.v3"
)

type questionFile struct {
	Questions []struct {
		Track       string `yaml:"track"`
		Topic       string `yaml:"topic"`
		Prompt      string `yaml:"prompt"`
		Context     string `yaml:"context"`
		RubricHints string `yaml:"rubric_hints"`
		Order       int    `yaml:"order"`
	} `yaml:"questions"`
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("用法: go run scripts/import_syllabus.go <questions.yaml>")
	}

	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}
	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("无法读取题库文件: %v", err)
	}
	var file questionFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		log.Fatalf("解析题库文件失败: %v", err)
	}

	imported := 0
	for _, q := range file.Questions {
		track := model.Track(q.Track)
		if !track.Valid() {
			log.Printf("跳过未知赛道的题目: track=%q topic=%q", q.Track, q.Topic)
			continue
		}

		prompt, probing := service.SplitProbingPrompt(q.Prompt)
		question := &model.SyllabusQuestion{
			Track:       track,
			Topic:       q.Topic,
			Prompt:      prompt,
			Context:     q.Context,
			RubricHints: q.RubricHints,
			ProbingText: probing,
			IsInitial:   probing != "",
			Order:       q.Order,
			Enabled:     true,
		}
		if err := db.Create(question).Error; err != nil {
			log.Fatalf("写入题目失败 (topic=%q): %v", q.Topic, err)
		}
		imported++
	}

	log.Printf("导入完成: %d 道题目", imported)
}
