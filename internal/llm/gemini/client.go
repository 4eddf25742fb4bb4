package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"secretary-backend/internal/extract"
	"secretary-backend/internal/llm"
	"secretary-backend/internal/prompt"
)

// Client implements llm.Invoker using the Gemini API.
type Client struct {
	client *genai.Client
}

// NewClient constructs a Gemini client from an API key.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{client: client}, nil
}

// Attempt issues one generation call against the given model. Low
// temperature and a JSON response MIME keep the output deterministic and
// machine-parseable.
func (c *Client) Attempt(ctx context.Context, model string, req prompt.Request) (json.RawMessage, llm.TokenUsage, error) {
	parts := make([]*genai.Part, 0, len(req.Fragments))
	for _, frag := range req.Fragments {
		switch frag.Kind {
		case extract.FragmentText:
			parts = append(parts, genai.NewPartFromText(frag.Text))
		case extract.FragmentBinary:
			parts = append(parts, genai.NewPartFromBytes(frag.Data, frag.MIME))
		}
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](0.2),
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(prompt.SystemInstruction, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, llm.TokenUsage{}, fmt.Errorf("gemini %s: %w", model, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, llm.TokenUsage{}, fmt.Errorf("gemini %s: empty response", model)
	}
	if !json.Valid([]byte(text)) {
		return nil, llm.TokenUsage{}, fmt.Errorf("gemini %s: response is not valid JSON", model)
	}

	var usage llm.TokenUsage
	if meta := resp.UsageMetadata; meta != nil {
		usage = llm.TokenUsage{
			InputTokens:  int(meta.PromptTokenCount),
			OutputTokens: int(meta.CandidatesTokenCount),
			TotalTokens:  int(meta.TotalTokenCount),
		}
	}

	return json.RawMessage(text), usage, nil
}

var _ llm.Invoker = (*Client)(nil)
