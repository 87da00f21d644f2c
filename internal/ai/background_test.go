package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/kyiku/hackz-collage-back/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackgroundGenerator_Generate(t *testing.T) {
	png := testutil.CreateTestPNG(16, 24)
	encoded := base64.StdEncoding.EncodeToString(png)

	tests := []struct {
		name         string
		transcript   string
		mockResponse string
		mockErr      error
		want         []byte
		wantErr      string
	}{
		{
			name:         "正常系: 画像を返す",
			transcript:   "a picnic under cherry blossoms",
			mockResponse: `{"images":["` + encoded + `"],"error":null}`,
			want:         png,
		},
		{
			name:       "異常系: APIエラー",
			transcript: "story",
			mockErr:    errors.New("throttled"),
			wantErr:    "failed to invoke Bedrock",
		},
		{
			name:         "異常系: 生成エラー",
			transcript:   "story",
			mockResponse: `{"images":[],"error":"content filtered"}`,
			wantErr:      "content filtered",
		},
		{
			name:         "異常系: 画像なし",
			transcript:   "story",
			mockResponse: `{"images":[]}`,
			wantErr:      "no image in response",
		},
		{
			name:         "異常系: base64ではない",
			transcript:   "story",
			mockResponse: `{"images":["***"]}`,
			wantErr:      "failed to decode image",
		},
		{
			name:       "異常系: 空のトランスクリプト",
			transcript: "",
			wantErr:    "empty transcript",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockBedrock := testutil.NewMockBedrockClient()
			mockBedrock.Response = []byte(tt.mockResponse)
			mockBedrock.Err = tt.mockErr

			gen := NewBackgroundGenerator(mockBedrock, "")

			data, err := gen.Generate(context.Background(), tt.transcript, 42)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, data)
		})
	}
}

func TestBackgroundGenerator_Request(t *testing.T) {
	mockBedrock := testutil.NewMockBedrockClient()
	mockBedrock.Response = []byte(`{"images":["` + base64.StdEncoding.EncodeToString([]byte("x")) + `"]}`)

	gen := NewBackgroundGenerator(mockBedrock, "")
	_, err := gen.Generate(context.Background(), strings.Repeat("あ", 1000), -5)
	require.NoError(t, err)

	assert.Equal(t, DefaultBackgroundModelID, mockBedrock.LastModelID)

	body := mockBedrock.LastBodyAsMap()
	assert.Equal(t, "TEXT_IMAGE", body["taskType"])

	params := body["textToImageParams"].(map[string]interface{})
	text := params["text"].(string)
	assert.LessOrEqual(t, len([]rune(text)), maxTitanPromptLength)
	assert.True(t, strings.HasSuffix(text, "generate a background image for this story."))

	config := body["imageGenerationConfig"].(map[string]interface{})
	assert.Equal(t, float64(1), config["numberOfImages"])
	assert.Equal(t, float64(768), config["width"])
	assert.Equal(t, float64(1152), config["height"])
	assert.Equal(t, float64(5), config["seed"])
}

func TestTitanSeed(t *testing.T) {
	assert.Equal(t, int64(0), titanSeed(0))
	assert.Equal(t, int64(42), titanSeed(42))
	assert.Equal(t, int64(42), titanSeed(-42))
	assert.Equal(t, int64(1), titanSeed(2147483648))
}
