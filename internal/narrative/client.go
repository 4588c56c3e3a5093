package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"ecoscope/internal/models"
)

// Client calls the chat-completions API to turn scores and attributions into
// the structured story.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

type contentItem struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentItem `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// TokenUsage reports the cost of one story generation.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// storySections mirrors the JSON object the model is instructed to return.
type storySections struct {
	Introduction   string `json:"introduction"`
	KeyDrivers     string `json:"key_drivers"`
	RiskAssessment string `json:"risk_assessment"`
	Conclusion     string `json:"conclusion"`
}

func NewClient() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o"
	}

	return &Client{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{},
	}, nil
}

// topAttributions keeps the prompt bounded to the strongest drivers.
const topAttributions = 8

func buildAttributionTable(report *models.AttributionReport) string {
	var table strings.Builder
	table.WriteString("| Feature | Variable | Attribution |\n")
	table.WriteString("|-----|-----|-----|\n")

	count := 0
	for _, set := range report.Sets {
		for _, leaf := range set.Leaves {
			if count >= topAttributions {
				return table.String()
			}
			table.WriteString(fmt.Sprintf("| %s | %s | %+.6f |\n", leaf.Feature, leaf.Variable, leaf.Value))
			count++
		}
	}
	return table.String()
}

func buildScoresTable(outcome models.CompositeOutcome) string {
	var table strings.Builder
	table.WriteString("| Dimension | Score |\n")
	table.WriteString("|-----|-----|\n")
	write := func(name string, v *float64) {
		if v == nil {
			table.WriteString(fmt.Sprintf("| %s | unavailable |\n", name))
			return
		}
		table.WriteString(fmt.Sprintf("| %s | %.4f |\n", name, *v))
	}
	write("climate", outcome.ClimateScore)
	write("geographic", outcome.GeographicScore)
	write("economic", outcome.EconomicScore)
	table.WriteString(fmt.Sprintf("| composite | %.4f |\n", outcome.FinalScore))
	return table.String()
}

// GenerateStory asks the model for the four named sections. The response
// must be a bare JSON object so it can be decoded straight into the story.
func (c *Client) GenerateStory(ctx context.Context, outcome models.CompositeOutcome, report *models.AttributionReport, region string) (*models.NarrativeStory, TokenUsage, error) {
	systemPrompt := `### General Request:
Your job is to explain an environmental change score to a non-expert reader.

### How to Act:
- Act as an **environmental analyst** writing for the general public.
- Use simple, everyday language; avoid jargon like SHAP or standardization, and explain any technical term you must use.
- Attribution values show how much each measured feature pushed the score: positive values push toward more adverse change, negative values are protective.

### Output Format:
The output must be a JSON object with exactly these string fields:
- 'introduction': two sentences stating the region, the overall score and what it means.
- 'key_drivers': two or three sentences walking through the strongest features in the attribution table.
- 'risk_assessment': two sentences on the risk level and trend direction.
- 'conclusion': one or two sentences summarizing the outlook.
Do not enclose the JSON in markdown code. Only return the JSON object.`

	userPrompt := fmt.Sprintf(`Region: %s
Risk level: %s
Trend: %s
Confidence: %.2f

Dimension scores:
%s
Strongest feature attributions:
%s
Write the four sections for this assessment.`,
		region, outcome.RiskLevel, outcome.TrendDirection, outcome.ConfidenceScore,
		buildScoresTable(outcome), buildAttributionTable(report))

	req := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: []contentItem{{Type: "text", Text: systemPrompt}}},
			{Role: "user", Content: []contentItem{{Type: "text", Text: userPrompt}}},
		},
		Temperature: 0.2,
		MaxTokens:   1200,
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, TokenUsage{}, fmt.Errorf("failed to marshal request: %v", err)
	}

	request, err := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, TokenUsage{}, fmt.Errorf("failed to create request: %v", err)
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, TokenUsage{}, fmt.Errorf("failed to send request: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		var errorResponse struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(response.Body).Decode(&errorResponse); err != nil {
			return nil, TokenUsage{}, fmt.Errorf("OpenAI API returned non-200 status code: %d", response.StatusCode)
		}
		return nil, TokenUsage{}, fmt.Errorf("OpenAI API error: %s", errorResponse.Error.Message)
	}

	var result chatCompletionResponse
	if err := json.NewDecoder(response.Body).Decode(&result); err != nil {
		return nil, TokenUsage{}, fmt.Errorf("failed to decode response: %v", err)
	}

	if len(result.Choices) == 0 {
		return nil, TokenUsage{}, fmt.Errorf("no completion choices returned")
	}

	tokenUsage := TokenUsage{
		PromptTokens:     result.Usage.PromptTokens,
		CompletionTokens: result.Usage.CompletionTokens,
		TotalTokens:      result.Usage.TotalTokens,
	}

	content := result.Choices[0].Message.Content
	var sections storySections
	if err := json.Unmarshal([]byte(content), &sections); err != nil {
		return nil, tokenUsage, fmt.Errorf("failed to parse JSON response: %v", err)
	}
	if sections.Introduction == "" || sections.Conclusion == "" {
		return nil, tokenUsage, fmt.Errorf("incomplete story sections in response. Raw content: %s", content)
	}

	return &models.NarrativeStory{
		Introduction:   sections.Introduction,
		KeyDrivers:     sections.KeyDrivers,
		RiskAssessment: sections.RiskAssessment,
		Conclusion:     sections.Conclusion,
	}, tokenUsage, nil
}
