package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"nihongo_edu_backend/internal/config"
	"nihongo_edu_backend/internal/model"
	"strings"
	"time"
)

// AIService 封装外部评分模型（OpenAI兼容的chat completion接口）
type AIService struct {
	config config.GraderConfig
	client *http.Client
}

func NewAIService(cfg config.GraderConfig) *AIService {
	return &AIService{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []AIChatMessage `json:"messages"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GradingRequest 发往评分模型的一次评定请求
type GradingRequest struct {
	QuestionText    string
	QuestionContext string
	RubricHints     string
	ResponseText    string
	Track           model.Track
}

// GraderVerdict 评分模型返回的结构化结果（未经本地校验的原始形态）
type GraderVerdict struct {
	Status         string   `json:"status"`
	Explanation    string   `json:"explanation"`
	Feedback       string   `json:"feedback"`
	AffectedSkills []string `json:"affected_skills"`
}

// GradeResponse 调用评分模型评定一次作答。返回错误时由上层走本地降级路径。
func (s *AIService) GradeResponse(ctx context.Context, req GradingRequest) (*GraderVerdict, error) {
	prompt := buildGradingPrompt(req)

	messages := []AIChatMessage{
		{
			Role:    "system",
			Content: "You are a strict but fair Japanese language evaluator for vocational training. Always answer with a single JSON object and nothing else.",
		},
		{
			Role:    "user",
			Content: prompt,
		},
	}

	content, err := s.chat(ctx, messages)
	if err != nil {
		return nil, err
	}

	verdict, err := parseGraderVerdict(content)
	if err != nil {
		return nil, err
	}
	return verdict, nil
}

// GenerateNarrative 生成进度报告的叙述段落
func (s *AIService) GenerateNarrative(ctx context.Context, prompt string) (string, error) {
	messages := []AIChatMessage{
		{
			Role:    "system",
			Content: "You are a supportive tutor writing progress summaries for Japanese vocational language learners.",
		},
		{
			Role:    "user",
			Content: prompt,
		},
	}
	return s.chat(ctx, messages)
}

// chat 单轮对话补全请求，返回首个choice的文本
func (s *AIService) chat(ctx context.Context, messages []AIChatMessage) (string, error) {
	reqBody := ChatCompletionRequest{
		Model:    s.config.Model,
		Messages: messages,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("grader API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", fmt.Errorf("grader API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("grader returned no choices")
	}
	return result.Choices[0].Message.Content, nil
}

// buildGradingPrompt 按赛道评分档案构造评定提示词
func buildGradingPrompt(req GradingRequest) string {
	rubric := model.RubricFor(req.Track)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You are evaluating a Japanese language response in the context of %s vocational training.\n\n", req.Track))
	sb.WriteString("**Question:**\n" + req.QuestionText + "\n\n")
	if req.QuestionContext != "" {
		sb.WriteString("**Scenario context:**\n" + req.QuestionContext + "\n\n")
	}
	sb.WriteString("**Candidate response:**\n" + req.ResponseText + "\n\n")
	sb.WriteString(`**Evaluation rubric:**

1. "Acceptable":
   - Correct vocabulary appropriate for the track context
   - Appropriate tone and register
   - Grammar is correct
   - Meaning is clear and accurate

2. "Partially Acceptable":
   - Grammar is correct
   - BUT the register is wrong (e.g. Plain form where Desu/Masu was required, or vice versa)
   - OR vocabulary is slightly off while the meaning is preserved
   - Meaning is still understandable

3. "Non-Acceptable":
   - Meaning is lost or incorrect
   - Wrong terminology used
   - Grammar errors that break comprehension
   - Response does not address the question

`)
	sb.WriteString("**Track-specific requirements:**\n")
	sb.WriteString("- Tone: " + rubric.ToneRequirement + "\n")
	sb.WriteString("- Vocabulary focus: " + rubric.VocabularyFocus + "\n")
	if req.RubricHints != "" {
		sb.WriteString("- Grading hints: " + req.RubricHints + "\n")
	}
	sb.WriteString(`
Respond in JSON format:
{
    "status": "Acceptable|Partially Acceptable|Non-Acceptable",
    "explanation": "why this status was assigned",
    "feedback": "specific guidance for improvement (empty if Acceptable)",
    "affected_skills": ["Vocabulary", "Tone/Honorifics", "Contextual Logic"]
}
`)
	return sb.String()
}

// parseGraderVerdict 解析模型输出。兼容被markdown代码块包裹的JSON。
func parseGraderVerdict(content string) (*GraderVerdict, error) {
	text := strings.TrimSpace(content)

	if idx := strings.Index(text, "```json"); idx >= 0 {
		text = text[idx+len("```json"):]
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	} else if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+3:]
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	}
	text = strings.TrimSpace(text)

	var verdict GraderVerdict
	if err := json.Unmarshal([]byte(text), &verdict); err != nil {
		return nil, fmt.Errorf("grader output is not valid JSON: %w", err)
	}
	return &verdict, nil
}
