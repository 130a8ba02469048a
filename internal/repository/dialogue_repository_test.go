package repository

import (
	"fmt"
	"nihongo_edu_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newDialogueTestRepo(t *testing.T) *DialogueRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.DialogueEntry{}))
	return NewDialogueRepository(db)
}

func sampleEntry(subjectID uint, answer string) *model.DialogueEntry {
	return &model.DialogueEntry{
		SubjectID: subjectID,
		SessionID: 1,
		Question: model.QuestionSnapshot{
			QuestionID: 7,
			Track:      model.TrackCareGiving,
			Topic:      "bathing",
			Prompt:     "入浴介助の声かけは？",
		},
		AnswerText:      answer,
		AnswerTimestamp: time.Now().UTC(),
		Evaluation: model.Evaluation{
			Tier:           model.TierPartiallyAcceptable,
			Explanation:    "語彙は正しいが敬語が不足",
			Feedback:       "です・ます形を使いましょう",
			AffectedSkills: []model.SkillCategory{model.SkillToneHonorifics},
		},
		Snapshot: model.SessionSnapshot{
			Track:       model.TrackCareGiving,
			Topic:       "bathing",
			VideoOffset: 12.5,
			Origin:      "video_hub",
		},
	}
}

func TestAppendPreservesInsertionOrder(t *testing.T) {
	repo := newDialogueTestRepo(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Append(sampleEntry(1, fmt.Sprintf("answer %d", i))))
	}

	entries, err := repo.ListBySubject(1)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	for i, entry := range entries {
		assert.Equal(t, fmt.Sprintf("answer %d", i), entry.AnswerText)
		if i > 0 {
			assert.Greater(t, entry.ID, entries[i-1].ID)
		}
	}
}

func TestListBySubjectFiltersOtherSubjects(t *testing.T) {
	repo := newDialogueTestRepo(t)

	require.NoError(t, repo.Append(sampleEntry(1, "mine")))
	require.NoError(t, repo.Append(sampleEntry(2, "theirs")))

	entries, err := repo.ListBySubject(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "mine", entries[0].AnswerText)

	total, err := repo.CountBySubject(2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestEntryRoundTripsEvaluationAndSnapshots(t *testing.T) {
	repo := newDialogueTestRepo(t)

	require.NoError(t, repo.Append(sampleEntry(1, "15度くらいに傾けます")))

	entries, err := repo.ListBySubject(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, model.TierPartiallyAcceptable, entry.Evaluation.Tier)
	assert.Equal(t, []model.SkillCategory{model.SkillToneHonorifics}, entry.Evaluation.AffectedSkills)
	assert.Equal(t, uint(7), entry.Question.QuestionID)
	assert.Equal(t, model.TrackCareGiving, entry.Snapshot.Track)
	assert.Equal(t, 12.5, entry.Snapshot.VideoOffset)
}

func TestAppendTxRollsBackWithTransaction(t *testing.T) {
	repo := newDialogueTestRepo(t)

	err := repo.DB.Transaction(func(tx *gorm.DB) error {
		if err := repo.AppendTx(tx, sampleEntry(1, "will be rolled back")); err != nil {
			return err
		}
		return gorm.ErrInvalidTransaction
	})
	require.Error(t, err)

	total, err := repo.CountBySubject(1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}
