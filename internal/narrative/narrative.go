// Package narrative produces an optional plain-language summary of today's
// conditions via the OpenAI API. The dashboard works fully without it.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/patcharlton/chamonix-ski-status/internal/conditions"
)

// Generator wraps the OpenAI chat API for conditions narratives.
type Generator struct {
	client openai.Client
	model  string
}

// NewGenerator creates a narrative generator. It reads the OPENAI_API_KEY
// environment variable; callers treat an error as "narrative disabled".
func NewGenerator() (*Generator, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &Generator{
		client: client,
		model:  openai.ChatModelGPT4oMini,
	}, nil
}

const systemPrompt = "You are a Chamonix valley ski report writer. Write a single short paragraph " +
	"(3-4 sentences) summarising today's skiing for visitors. Plain text, no markdown, " +
	"no greetings. Be concrete about where to ski and when."

// Describe produces a short narrative for the given conditions and pick.
func (g *Generator) Describe(ctx context.Context, c conditions.ResortConditions, rec conditions.Recommendation) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Mean morning temp %.0f°C, max wind %.0f km/h, snow base %dcm, avalanche risk %d/5.\n",
		c.MeanMorningTempC, c.MaxWindKmh, c.MeanSnowDepthCm, c.MaxAvalancheRisk)
	if c.FreshSnowCm > 0 {
		fmt.Fprintf(&sb, "Fresh snow: %dcm, about %d hours old.\n", c.FreshSnowCm, c.HoursSinceSnowfall)
	}
	if c.FoehnActive {
		sb.WriteString("Foehn wind is active.\n")
	}
	if rec.Pick != nil {
		fmt.Fprintf(&sb, "Best sector today: %s (%d of %d lifts open, reasons: %s).\n",
			rec.Pick.Name, rec.Pick.LiftsOpen, rec.Pick.LiftsTotal, strings.Join(rec.Pick.Reasons, ", "))
	} else {
		sb.WriteString("No sector has enough lifts open for a recommendation.\n")
	}

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(sb.String()),
		},
	})
	if err != nil {
		return "", fmt.Errorf("narrative generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no narrative returned")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("empty narrative returned")
	}
	return text, nil
}

// Cache holds the narrative for one snapshot so the API is called at most
// once per stored snapshot.
type Cache struct {
	mu         sync.RWMutex
	snapshotID int64
	text       string
}

func (c *Cache) Get(snapshotID int64) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.text == "" || c.snapshotID != snapshotID {
		return "", false
	}
	return c.text, true
}

func (c *Cache) Set(snapshotID int64, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshotID = snapshotID
	c.text = text
}
