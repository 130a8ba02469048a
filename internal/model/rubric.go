package model

// RubricProfile 各赛道的评分侧重：语体要求与词汇领域不同
type RubricProfile struct {
	Track           Track  `json:"track"`
	ToneRequirement string `json:"toneRequirement"`
	VocabularyFocus string `json:"vocabularyFocus"`
}

var rubricProfiles = map[Track]RubricProfile{
	TrackCareGiving: {
		Track:           TrackCareGiving,
		ToneRequirement: "Use polite, respectful language (Desu/Masu form is mandatory). Tone should be gentle and caring.",
		VocabularyFocus: "Caregiving and medical terminology, patient communication, respect for dignity",
	},
	TrackAcademic: {
		Track:           TrackAcademic,
		ToneRequirement: "Use formal academic language (Desu/Masu form is mandatory). Tone should be professional and clear.",
		VocabularyFocus: "Academic and research terminology, formal expressions, structured communication",
	},
	TrackFoodTech: {
		Track:           TrackFoodTech,
		ToneRequirement: "Use professional workplace language. Plain form is allowed in purely technical content, but Desu/Masu is required for customer-facing situations.",
		VocabularyFocus: "Japanese food safety (HACCP) terminology, kitchen operations vocabulary, temperature monitoring, sanitation procedures",
	},
}

// RubricFor 取赛道对应的评分档案，未知赛道回退为照护赛道（与旧版行为一致）
func RubricFor(track Track) RubricProfile {
	if p, ok := rubricProfiles[track]; ok {
		return p
	}
	return rubricProfiles[TrackCareGiving]
}
