package service

import (
	"nihongo_edu_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(track model.Track, tier model.EvaluationTier, skills ...model.SkillCategory) model.DialogueEntry {
	return model.DialogueEntry{
		Evaluation: model.Evaluation{
			Tier:           tier,
			AffectedSkills: skills,
		},
		Snapshot: model.SessionSnapshot{Track: track, Topic: "t"},
	}
}

func TestProjectMeanPerBucket(t *testing.T) {
	entries := []model.DialogueEntry{
		entry(model.TrackFoodTech, model.TierAcceptable, model.SkillVocabulary),
		entry(model.TrackFoodTech, model.TierPartiallyAcceptable, model.SkillVocabulary),
		entry(model.TrackFoodTech, model.TierNonAcceptable, model.SkillVocabulary),
	}

	report := Project(7, entries)
	require.Equal(t, uint(7), report.SubjectID)
	assert.Equal(t, 3, report.TotalTurns)

	bucket := report.Bucket(model.TrackFoodTech, model.SkillVocabulary)
	require.NotNil(t, bucket)
	assert.True(t, bucket.HasData)
	assert.Equal(t, 3, bucket.Samples)
	assert.InDelta(t, 50.0, bucket.Score, 0.001) // (100+50+0)/3
}

func TestProjectEmptyLogHasNoData(t *testing.T) {
	report := Project(1, nil)

	require.Len(t, report.Tracks, len(model.AllTracks))
	for _, tm := range report.Tracks {
		require.Len(t, tm.Buckets, len(model.AllSkills))
		for _, b := range tm.Buckets {
			assert.False(t, b.HasData)
			assert.Zero(t, b.Samples)
			assert.Zero(t, b.Score)
		}
	}
}

func TestProjectEmptySkillSetContributesNothing(t *testing.T) {
	// 降级评定技能集合为空，不应污染任何桶
	entries := []model.DialogueEntry{
		entry(model.TrackCareGiving, model.TierNonAcceptable),
	}

	report := Project(1, entries)
	assert.Equal(t, 1, report.TotalTurns)
	for _, tm := range report.Tracks {
		for _, b := range tm.Buckets {
			assert.False(t, b.HasData)
		}
	}
}

func TestProjectTracksStayIndependent(t *testing.T) {
	entries := []model.DialogueEntry{
		entry(model.TrackCareGiving, model.TierAcceptable, model.SkillToneHonorifics),
		entry(model.TrackAcademic, model.TierNonAcceptable, model.SkillToneHonorifics),
	}

	report := Project(1, entries)

	care := report.Bucket(model.TrackCareGiving, model.SkillToneHonorifics)
	require.NotNil(t, care)
	assert.InDelta(t, 100.0, care.Score, 0.001)

	academic := report.Bucket(model.TrackAcademic, model.SkillToneHonorifics)
	require.NotNil(t, academic)
	assert.True(t, academic.HasData)
	assert.InDelta(t, 0.0, academic.Score, 0.001)

	food := report.Bucket(model.TrackFoodTech, model.SkillToneHonorifics)
	require.NotNil(t, food)
	assert.False(t, food.HasData)
}

func TestProjectDeterministicOrdering(t *testing.T) {
	entries := []model.DialogueEntry{
		entry(model.TrackAcademic, model.TierAcceptable, model.SkillVocabulary, model.SkillContextualLogic),
	}

	a := Project(1, entries)
	b := Project(1, entries)

	require.Len(t, a.Tracks, len(b.Tracks))
	for i := range a.Tracks {
		assert.Equal(t, a.Tracks[i].Track, b.Tracks[i].Track)
		assert.Equal(t, a.Tracks[i].Buckets, b.Tracks[i].Buckets)
	}
	// 桶顺序固定为枚举顺序
	for i, tm := range a.Tracks {
		assert.Equal(t, model.AllTracks[i], tm.Track)
		for j, bucket := range tm.Buckets {
			assert.Equal(t, model.AllSkills[j], bucket.Skill)
		}
	}
}

func TestProjectMultiSkillEntryCountsInEachBucket(t *testing.T) {
	entries := []model.DialogueEntry{
		entry(model.TrackFoodTech, model.TierPartiallyAcceptable, model.SkillVocabulary, model.SkillToneHonorifics),
	}

	report := Project(1, entries)
	for _, skill := range []model.SkillCategory{model.SkillVocabulary, model.SkillToneHonorifics} {
		b := report.Bucket(model.TrackFoodTech, skill)
		require.NotNil(t, b)
		assert.Equal(t, 1, b.Samples)
		assert.InDelta(t, 50.0, b.Score, 0.001)
	}
	logic := report.Bucket(model.TrackFoodTech, model.SkillContextualLogic)
	require.NotNil(t, logic)
	assert.False(t, logic.HasData)
}

func TestJLPTBandAndCareerReadiness(t *testing.T) {
	assert.Equal(t, "N5", JLPTBand(0))
	assert.Equal(t, "N5", JLPTBand(49.9))
	assert.Equal(t, "N4", JLPTBand(50))
	assert.Equal(t, "N4", JLPTBand(69.9))
	assert.Equal(t, "N3", JLPTBand(70))
	assert.Equal(t, "N3", JLPTBand(100))

	assert.Equal(t, 33, CareerReadiness(20))
	assert.Equal(t, 66, CareerReadiness(55))
	assert.Equal(t, 100, CareerReadiness(85))
}

func TestTrackProgressUnassessed(t *testing.T) {
	p := trackProgress(model.TrackMastery{
		Track: model.TrackAcademic,
		Buckets: []model.MasteryBucket{
			{Skill: model.SkillVocabulary},
			{Skill: model.SkillToneHonorifics},
			{Skill: model.SkillContextualLogic},
		},
	})
	assert.False(t, p.HasData)
	assert.Equal(t, "unassessed", p.JLPTEstimate)
	assert.Zero(t, p.CareerReadiness)
}
