package database

import (
	"fmt"
	"log"
	"nihongo_edu_backend/internal/config"
	"nihongo_edu_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Motivation{},
		&model.SyllabusQuestion{},
		&model.AssessmentSession{},
		&model.DialogueEntry{},
		&model.LessonVideo{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedDefaults(db)

	return db, nil
}

// seedDefaults 初始数据：三语激励短句与各赛道默认大纲题目
func seedDefaults(db *gorm.DB) {
	var count int64
	db.Model(&model.Motivation{}).Count(&count)
	if count == 0 {
		defaultMotivations := []model.Motivation{
			{Content: "Every sentence you practice today is one less mistake at your future workplace. Keep going!", Language: "en", IsEnabled: true, IsCurrentlyUsed: true},
			{Content: "継続は力なり。毎日の練習が自信につながります。", Language: "ja", IsEnabled: true},
			{Content: "आजको अभ्यास भोलिको आत्मविश्वास हो।", Language: "ne", IsEnabled: true},
			{Content: "Polite Japanese opens doors that vocabulary alone cannot.", Language: "en", IsEnabled: true},
		}
		for i := range defaultMotivations {
			db.Create(&defaultMotivations[i])
		}
	}

	var sqCount int64
	db.Model(&model.SyllabusQuestion{}).Count(&sqCount)
	if sqCount == 0 {
		defaultQuestions := []model.SyllabusQuestion{
			{
				Track:       model.TrackFoodTech,
				Topic:       "food_safety",
				Prompt:      "The temperature log shows the walk-in freezer at -10°C. Is this acceptable under Japanese standards? If not, what is the corrective action?",
				Context:     "HACCP temperature monitoring scenario in a Japanese commercial kitchen.",
				RubricHints: "Expect: frozen storage must be below -15°C; corrective action reported to the supervisor in Desu/Masu form.",
				ProbingText: "You reported the issue to your supervisor. How would you phrase the report in polite Japanese?",
				IsInitial:   true,
				Order:       1,
			},
			{
				Track:       model.TrackFoodTech,
				Topic:       "food_safety",
				Prompt:      "Can you explain the difference between Seiso and Sakkin? Why is air-drying (Kansou) better than using a towel?",
				Context:     "Three-step sanitization: Seiso (cleaning), Sakkin (disinfection), Kansou (air-drying).",
				RubricHints: "Expect correct use of the three sanitization terms and the cross-contamination risk of towels.",
				Order:       2,
			},
			{
				Track:       model.TrackCareGiving,
				Topic:       "patient_communication",
				Prompt:      "A resident refuses to take a bath today. How do you respond to them in Japanese?",
				Context:     "Respecting dignity while encouraging daily care routines.",
				RubricHints: "Expect gentle Desu/Masu form, no imperative forms toward the resident.",
				Order:       1,
			},
			{
				Track:       model.TrackAcademic,
				Topic:       "seminar_discussion",
				Prompt:      "Your professor asks for your opinion on the assigned paper. Give a two-sentence answer in Japanese.",
				Context:     "Graduate seminar setting.",
				RubricHints: "Expect formal academic register and hedged disagreement if any.",
				Order:       1,
			},
		}
		for i := range defaultQuestions {
			defaultQuestions[i].Enabled = true
			db.Create(&defaultQuestions[i])
		}
	}
}
