// Package ai provides Bedrock integration for collage captions and backgrounds.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// BedrockClientInterface defines the interface for Bedrock client.
type BedrockClientInterface interface {
	InvokeModel(ctx context.Context, modelID string, body []byte) ([]byte, error)
}

// Claude 3 Haiku model ID
const DefaultCaptionModelID = "anthropic.claude-3-haiku-20240307-v1:0"

// MaxCaptionWords is the longest caption we accept from the model.
const MaxCaptionWords = 20

// ClaudeRequest represents the request body for Claude via Bedrock.
type ClaudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Temperature      float64         `json:"temperature"`
	Messages         []ClaudeMessage `json:"messages"`
}

// ClaudeMessage represents a message in the Bedrock request.
type ClaudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ClaudeResponse represents the response from Claude.
type ClaudeResponse struct {
	Content []ContentBlock `json:"content"`
}

// ContentBlock represents a content block in Claude's response.
type ContentBlock struct {
	Text string `json:"text"`
}

// CaptionGenerator summarizes a transcript into a short collage caption.
type CaptionGenerator struct {
	client          BedrockClientInterface
	modelID         string
	fallbackEnabled bool
}

// NewCaptionGenerator creates a new CaptionGenerator.
// An empty modelID uses DefaultCaptionModelID.
func NewCaptionGenerator(client BedrockClientInterface, modelID string) *CaptionGenerator {
	if modelID == "" {
		modelID = DefaultCaptionModelID
	}
	return &CaptionGenerator{
		client:  client,
		modelID: modelID,
	}
}

// EnableFallback enables or disables fallback mode.
// When enabled, the transcript itself is shortened into a caption when the API fails.
func (g *CaptionGenerator) EnableFallback(enabled bool) {
	g.fallbackEnabled = enabled
}

// Summarize returns a single-line caption of at most MaxCaptionWords words.
func (g *CaptionGenerator) Summarize(ctx context.Context, transcript string) (string, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "", errors.New("empty transcript")
	}

	body, err := json.Marshal(ClaudeRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        256,
		Temperature:      1,
		Messages: []ClaudeMessage{
			{Role: "user", Content: g.buildPrompt(transcript)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	response, err := g.client.InvokeModel(ctx, g.modelID, body)
	if err != nil {
		if g.fallbackEnabled {
			return fallbackCaption(transcript), nil
		}
		return "", fmt.Errorf("failed to invoke Bedrock: %w", err)
	}

	caption, err := parseResponse(response)
	if err != nil {
		if g.fallbackEnabled {
			return fallbackCaption(transcript), nil
		}
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return limitWords(caption, MaxCaptionWords), nil
}

// buildPrompt creates the prompt for transcript summarization.
func (g *CaptionGenerator) buildPrompt(transcript string) string {
	return fmt.Sprintf(`Summarize the key moments of the conversation transcript below.
Output a single string, no longer than %d words, with no quotes and no line breaks.

%s`, MaxCaptionWords, transcript)
}

// parseResponse parses the Claude response JSON.
func parseResponse(response []byte) (string, error) {
	var claudeResp ClaudeResponse
	if err := json.Unmarshal(response, &claudeResp); err != nil {
		return "", err
	}

	if len(claudeResp.Content) == 0 {
		return "", errors.New("empty content in response")
	}

	text := strings.Trim(strings.TrimSpace(claudeResp.Content[0].Text), `"`)
	if text == "" {
		return "", errors.New("empty text in response")
	}
	return text, nil
}

// fallbackCaption shortens the transcript itself when the model is unavailable.
func fallbackCaption(transcript string) string {
	return limitWords(transcript, MaxCaptionWords)
}

// limitWords keeps the first n words of s on a single line.
func limitWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
