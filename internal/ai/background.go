package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Titan Image Generator G1 v2 model ID
const DefaultBackgroundModelID = "amazon.titan-image-generator-v2:0"

// Titan rejects prompts longer than this many characters.
const maxTitanPromptLength = 512

// TitanImageRequest is the TEXT_IMAGE request body for Titan Image Generator.
type TitanImageRequest struct {
	TaskType              string                `json:"taskType"`
	TextToImageParams     TitanTextToImage      `json:"textToImageParams"`
	ImageGenerationConfig TitanGenerationConfig `json:"imageGenerationConfig"`
}

// TitanTextToImage holds the prompt.
type TitanTextToImage struct {
	Text string `json:"text"`
}

// TitanGenerationConfig controls the generated image.
type TitanGenerationConfig struct {
	NumberOfImages int     `json:"numberOfImages"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	CfgScale       float64 `json:"cfgScale"`
	Seed           int64   `json:"seed,omitempty"`
}

// TitanImageResponse is the response body of Titan Image Generator.
type TitanImageResponse struct {
	Images []string `json:"images"`
	Error  *string  `json:"error"`
}

// BackgroundGenerator produces a background bitmap for a story.
type BackgroundGenerator struct {
	client  BedrockClientInterface
	modelID string
	width   int
	height  int
}

// NewBackgroundGenerator creates a new BackgroundGenerator producing portrait images.
// An empty modelID uses DefaultBackgroundModelID.
func NewBackgroundGenerator(client BedrockClientInterface, modelID string) *BackgroundGenerator {
	if modelID == "" {
		modelID = DefaultBackgroundModelID
	}
	return &BackgroundGenerator{
		client:  client,
		modelID: modelID,
		width:   768,
		height:  1152,
	}
}

// Generate returns encoded image bytes for a background matching the transcript.
func (g *BackgroundGenerator) Generate(ctx context.Context, transcript string, seed int64) ([]byte, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, errors.New("empty transcript")
	}

	body, err := json.Marshal(TitanImageRequest{
		TaskType:          "TEXT_IMAGE",
		TextToImageParams: TitanTextToImage{Text: g.buildPrompt(transcript)},
		ImageGenerationConfig: TitanGenerationConfig{
			NumberOfImages: 1,
			Width:          g.width,
			Height:         g.height,
			CfgScale:       8,
			Seed:           titanSeed(seed),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	response, err := g.client.InvokeModel(ctx, g.modelID, body)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock: %w", err)
	}

	var resp TitanImageResponse
	if err := json.Unmarshal(response, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Error != nil && *resp.Error != "" {
		return nil, fmt.Errorf("image generation failed: %s", *resp.Error)
	}
	if len(resp.Images) == 0 {
		return nil, errors.New("no image in response")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Images[0])
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return data, nil
}

// buildPrompt creates the image prompt, trimmed to Titan's length limit.
func (g *BackgroundGenerator) buildPrompt(transcript string) string {
	const suffix = "\ngenerate a background image for this story."
	runes := []rune(transcript)
	if limit := maxTitanPromptLength - len(suffix); len(runes) > limit {
		runes = runes[:limit]
	}
	return string(runes) + suffix
}

// titanSeed folds a build seed into Titan's accepted range [0, 2147483646].
func titanSeed(seed int64) int64 {
	seed %= 2147483647
	if seed < 0 {
		seed = -seed
	}
	return seed
}
