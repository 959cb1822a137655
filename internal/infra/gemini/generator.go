// internal/infra/gemini/generator.go
package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"routine_review_service/internal/domain/review"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Generator produces review narratives with Google Gemini. The caller's
// context carries the time budget; cancelling it aborts the in-flight call.
type Generator struct {
	apiKey string
	model  string
}

func NewGenerator(apiKey, model string) *Generator {
	return &Generator{apiKey: apiKey, model: model}
}

func (g *Generator) GenerateNarrative(ctx context.Context, snap *review.Snapshot) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	model.SetTemperature(0.7)
	model.SetTopP(0.9)
	model.SetMaxOutputTokens(600)

	payload, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to serialize review data: %w", err)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(string(payload))))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	narrative := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			narrative += string(text)
		}
	}
	if narrative == "" {
		return "", fmt.Errorf("generated content contained no text parts")
	}
	return narrative, nil
}

func buildPrompt(reviewJSON string) string {
	return `You are a personal routine coach. Using the JSON data below, write a monthly
review message for the user. Keep it under 500 characters and use a warm,
encouraging tone. The message MUST follow these three stages in order:

1. [Key results summary]: present totalScore, participatingGroups,
   personalRoutineAchievementRate and totalAuthCount as a clearly titled,
   structured list (e.g. under "📈 This Month's Results"). Highlight
   scoreDifference and groupDifference (change versus last month) in
   parentheses.

2. [Interpretation and encouragement]: in two or three sentences, praise the
   user's effort based on those numbers. If personalRoutineAchievementRate is
   90 or above, call it flawless consistency; if scoreDifference is positive,
   call it remarkable growth.

3. [Next month's goal and closing]: propose one concrete, positive goal that
   fits the user's current results (a low achievement rate, no groups joined,
   or a high score), then close with a sentence about growing together next
   month.

Data: ` + reviewJSON
}
