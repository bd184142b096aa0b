package aiservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/RUDRA212003/Career-mock/internal/pkg/env"
)

const (
	defaultGroqAPIBaseURL = "https://api.groq.com/openai/v1"
	defaultGroqModel      = "llama-3.1-8b-instant"
)

// ErrGenerationFailed covers LLM transport failures and unusable completions.
var ErrGenerationFailed = errors.New("ai generation failed")

// Question is one generated interview question.
type Question struct {
	Question string `json:"question"`
	Type     string `json:"type"`
}

// QuestionSet is the JSON document the model is asked to produce for an
// interview. The raw document is stored on the interview as-is.
type QuestionSet struct {
	InterviewQuestions []Question `json:"interviewQuestions"`
}

// Feedback is the structured evaluation generated over a candidate session.
type Feedback struct {
	Rating          int    `json:"rating"`
	Summary         string `json:"summary"`
	Recommendation  string `json:"recommendation"`
	Recommendations string `json:"recommendations"`
}

// Generator produces interview questions and candidate feedback.
type Generator interface {
	GenerateInterviewQuestions(ctx context.Context, jobPosition, jobDescription, duration string, types []string) (string, *QuestionSet, error)
	GenerateFeedback(ctx context.Context, jobPosition, candidateName, transcriptJSON string) (string, *Feedback, error)
}

// Client talks to an OpenAI-compatible chat completion API (Groq in
// production).
type Client struct {
	APIKey     string
	APIBaseURL string
	Model      string

	HTTPClient *http.Client
}

func NewClientFromEnv() *Client {
	return &Client{
		APIKey:     strings.TrimSpace(env.GetEnv("GROQ_API_KEY", "")),
		APIBaseURL: strings.TrimRight(env.GetEnv("GROQ_API_BASE_URL", defaultGroqAPIBaseURL), "/"),
		Model:      env.GetEnv("GROQ_MODEL", defaultGroqModel),
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// GenerateInterviewQuestions asks the model for a question set and returns
// both the raw JSON document and its parsed form. The raw document is what
// gets persisted; the parsed form is only used to validate it.
func (c *Client) GenerateInterviewQuestions(ctx context.Context, jobPosition, jobDescription, duration string, types []string) (string, *QuestionSet, error) {
	prompt := questionPrompt(jobPosition, jobDescription, duration, types)

	content, err := c.chatCompletion(ctx, prompt)
	if err != nil {
		return "", nil, err
	}

	raw := ExtractJSONBlock(content)
	var set QuestionSet
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		return "", nil, fmt.Errorf("%w: unparseable question set: %v", ErrGenerationFailed, err)
	}
	if len(set.InterviewQuestions) == 0 {
		return "", nil, fmt.Errorf("%w: model returned no questions", ErrGenerationFailed)
	}
	return raw, &set, nil
}

// GenerateFeedback evaluates a candidate transcript and returns the raw
// feedback JSON plus its parsed form.
func (c *Client) GenerateFeedback(ctx context.Context, jobPosition, candidateName, transcriptJSON string) (string, *Feedback, error) {
	prompt := feedbackPrompt(jobPosition, candidateName, transcriptJSON)

	content, err := c.chatCompletion(ctx, prompt)
	if err != nil {
		return "", nil, err
	}

	raw := ExtractJSONBlock(content)
	var feedback Feedback
	if err := json.Unmarshal([]byte(raw), &feedback); err != nil {
		return "", nil, fmt.Errorf("%w: unparseable feedback: %v", ErrGenerationFailed, err)
	}
	return raw, &feedback, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Client) chatCompletion(ctx context.Context, prompt string) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("%w: api key is not configured", ErrGenerationFailed)
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrGenerationFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d: %s", ErrGenerationFailed, resp.StatusCode, truncate(string(respBody), 200))
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return "", fmt.Errorf("%w: invalid response body: %v", ErrGenerationFailed, err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrGenerationFailed, completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", ErrGenerationFailed)
	}
	return completion.Choices[0].Message.Content, nil
}

// ExtractJSONBlock strips markdown code fences and surrounding prose from a
// model completion, returning the outermost JSON object. Models regularly
// wrap their output in ```json fences or add a closing sentence.
func ExtractJSONBlock(content string) string {
	cleaned := strings.ReplaceAll(content, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		return cleaned[start : end+1]
	}
	return cleaned
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func questionPrompt(jobPosition, jobDescription, duration string, types []string) string {
	return fmt.Sprintf(`You are an expert interviewer AI.
Generate a JSON output with 10 interview questions for a %s role.
Job Description: %s
Duration: %s
Type: %s
Output in this format:
{
  "interviewQuestions": [
    {"question": "string", "type": "behavioral"},
    {"question": "string", "type": "technical"}
  ]
}`, jobPosition, jobDescription, duration, strings.Join(types, ", "))
}

func feedbackPrompt(jobPosition, candidateName, transcriptJSON string) string {
	return fmt.Sprintf(`You are an expert interview evaluator.
Candidate %s interviewed for a %s role. Below is the full conversation transcript as JSON.
Transcript: %s
Evaluate the candidate and output JSON in this format:
{
  "rating": 7,
  "summary": "string",
  "recommendation": "yes|no|maybe",
  "recommendations": "string with improvement advice"
}`, candidateName, jobPosition, transcriptJSON)
}
