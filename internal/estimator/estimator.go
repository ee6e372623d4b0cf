// Package estimator estimates the macros of a meal from a photo or a short
// description, using Gemini. It is an optional collaborator: the rest of the
// application works without an API key.
package estimator

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/hkaya/meallogger/internal/apperrors"
	"github.com/hkaya/meallogger/internal/logging"
)

const modelName = "gemini-1.5-flash"

// Estimate is the model's best guess for one meal.
type Estimate struct {
	Name       string `json:"name"`
	Protein    int    `json:"protein"`
	Carbs      int    `json:"carbs"`
	Fat        int    `json:"fat"`
	Sugar      int    `json:"sugar"`
	Confidence string `json:"confidence"` // low|medium|high
	Notes      string `json:"notes"`
}

const prompt = `You are a nutritionist. Estimate the macros of the meal.

TASK:
1. Name the meal in a few words
2. Estimate protein, carbohydrates, fat and sugar in grams, rounded to whole numbers
3. Assess your confidence (low, medium, high)
4. Note anything the user should double-check, in one short sentence

CRITICAL JSON FORMAT REQUIREMENTS:
- Your response MUST be a valid JSON object
- Do not include any markdown formatting or explanatory text before or after the JSON
- The JSON must have these exact fields:
  {
    "name": "meal name",
    "protein": 12,
    "carbs": 34,
    "fat": 5,
    "sugar": 6,
    "confidence": "low|medium|high",
    "notes": "one sentence"
  }`

// Gemini estimates meals via the Gemini API.
type Gemini struct {
	client *genai.Client
}

// NewGemini creates an estimator. The key comes from the process config.
func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	if apiKey == "" {
		return nil, apperrors.New(apperrors.ErrEstimationFailed, "no Gemini API key configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrEstimationFailed, "failed to create Gemini client", err)
	}
	return &Gemini{client: client}, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// EstimateFromImage estimates the macros of the photographed meal.
func (g *Gemini) EstimateFromImage(ctx context.Context, mimeType string, imageData []byte) (*Estimate, error) {
	model := g.client.GenerativeModel(modelName)
	img := genai.ImageData(strings.TrimPrefix(mimeType, "image/"), imageData)
	resp, err := model.GenerateContent(ctx, img, genai.Text(prompt))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrEstimationFailed, "failed to generate estimate", err)
	}
	return estimateFromResponse(resp)
}

// EstimateFromText estimates the macros from a free-text description.
func (g *Gemini) EstimateFromText(ctx context.Context, description string) (*Estimate, error) {
	model := g.client.GenerativeModel(modelName)
	resp, err := model.GenerateContent(ctx, genai.Text("Meal description: "+description+"\n\n"+prompt))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrEstimationFailed, "failed to generate estimate", err)
	}
	return estimateFromResponse(resp)
}

func estimateFromResponse(resp *genai.GenerateContentResponse) (*Estimate, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, apperrors.New(apperrors.ErrEstimationFailed, "empty model response")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, apperrors.New(apperrors.ErrEstimationFailed, "unexpected response part type")
	}
	est, err := parseEstimate(string(text))
	if err != nil {
		logging.Warn("estimator returned unparseable output", map[string]interface{}{
			"output": string(text),
		})
		return nil, err
	}
	return est, nil
}

// parseEstimate extracts the JSON object from the model output. Models wrap
// JSON in code fences or prose despite instructions, so the parser scans for
// the outermost braces instead of trusting the raw output.
func parseEstimate(s string) (*Estimate, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return nil, apperrors.New(apperrors.ErrEstimationFailed, "no JSON object in model output")
	}

	var est Estimate
	if err := json.Unmarshal([]byte(s[start:end+1]), &est); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrEstimationFailed, "failed to parse model output", err)
	}
	if est.Name == "" {
		return nil, apperrors.New(apperrors.ErrEstimationFailed, "model output has no meal name")
	}
	return &est, nil
}
