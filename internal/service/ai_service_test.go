package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGraderVerdictPlainJSON(t *testing.T) {
	verdict, err := parseGraderVerdict(`{
		"status": "Acceptable",
		"explanation": "Correct keigo usage.",
		"feedback": "",
		"affected_skills": ["Vocabulary"]
	}`)
	require.NoError(t, err)
	assert.Equal(t, "Acceptable", verdict.Status)
	assert.Equal(t, "Correct keigo usage.", verdict.Explanation)
	assert.Equal(t, []string{"Vocabulary"}, verdict.AffectedSkills)
}

func TestParseGraderVerdictMarkdownFence(t *testing.T) {
	content := "Here is my evaluation:\n```json\n{\"status\": \"Non-Acceptable\", \"explanation\": \"Too casual.\", \"feedback\": \"Use desu/masu.\", \"affected_skills\": [\"Tone/Honorifics\"]}\n```\nHope this helps."
	verdict, err := parseGraderVerdict(content)
	require.NoError(t, err)
	assert.Equal(t, "Non-Acceptable", verdict.Status)
	assert.Equal(t, "Use desu/masu.", verdict.Feedback)
}

func TestParseGraderVerdictBareFence(t *testing.T) {
	content := "```\n{\"status\": \"Partially Acceptable\", \"explanation\": \"x\", \"feedback\": \"y\"}\n```"
	verdict, err := parseGraderVerdict(content)
	require.NoError(t, err)
	assert.Equal(t, "Partially Acceptable", verdict.Status)
}

func TestParseGraderVerdictGarbage(t *testing.T) {
	_, err := parseGraderVerdict("I would rate this answer as quite good overall.")
	assert.Error(t, err)
}

func TestSplitProbingPrompt(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		prompt  string
		probing string
	}{
		{
			name:    "带追问",
			text:    "Initial: 車椅子の操作手順を説明してください | Follow-up: 段差がある場合はどうしますか？",
			prompt:  "車椅子の操作手順を説明してください",
			probing: "段差がある場合はどうしますか？",
		},
		{
			name:   "只有主问题",
			text:   "Initial: HACCPの重要管理点とは何ですか",
			prompt: "HACCPの重要管理点とは何ですか",
		},
		{
			name:   "无标记原样返回",
			text:   "敬語で自己紹介をしてください",
			prompt: "敬語で自己紹介をしてください",
		},
		{
			name:   "主问题为空时回退原文",
			text:   "Initial: | Follow-up: x",
			prompt: "Initial: | Follow-up: x",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			prompt, probing := SplitProbingPrompt(tc.text)
			assert.Equal(t, tc.prompt, prompt)
			assert.Equal(t, tc.probing, probing)
		})
	}
}
