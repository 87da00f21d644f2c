package collage

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/kyiku/hackz-collage-back/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Options)
		wantErr bool
	}{
		{name: "有効な設定", modify: func(o *Options) {}},
		{name: "不正なキャンバスサイズ", modify: func(o *Options) { o.CanvasWidth = 0 }, wantErr: true},
		{name: "不正な倍率（負）", modify: func(o *Options) { o.Scale = layout.Range{Min: -1, Max: 1} }, wantErr: true},
		{name: "不正な倍率（逆転）", modify: func(o *Options) { o.Scale = layout.Range{Min: 2, Max: 1} }, wantErr: true},
		{name: "不正な回転角", modify: func(o *Options) { o.MaxRotation = 270 }, wantErr: true},
		{name: "不正な倍率（NaN上限）", modify: func(o *Options) { o.Scale.Max = math.NaN() }, wantErr: true},
		{name: "不正な倍率（NaN下限）", modify: func(o *Options) { o.Scale.Min = math.NaN() }, wantErr: true},
		{name: "不正な倍率（無限大）", modify: func(o *Options) { o.Scale.Max = math.Inf(1) }, wantErr: true},
		{name: "不正な回転角（NaN）", modify: func(o *Options) { o.MaxRotation = math.NaN() }, wantErr: true},
		{name: "試行回数0", modify: func(o *Options) { o.MaxAttempts = 0 }, wantErr: true},
		{name: "試行回数が上限ちょうど", modify: func(o *Options) { o.MaxAttempts = MaxAttemptsLimit }},
		{name: "試行回数が上限超過", modify: func(o *Options) { o.MaxAttempts = MaxAttemptsLimit + 1 }, wantErr: true},
		{name: "不正な文字サイズ（NaN）", modify: func(o *Options) { o.CaptionSize = math.NaN() }, wantErr: true},
		{name: "不正な背景色", modify: func(o *Options) { o.Background = "#12" }, wantErr: true},
		{name: "不正な文字サイズ", modify: func(o *Options) { o.CaptionSize = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := ClassicOptions()
			tt.modify(&opts)

			err := opts.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPresets(t *testing.T) {
	presets := DefaultPresets()

	classic := presets[PresetClassic]
	assert.Equal(t, 1000, classic.MaxAttempts)
	assert.Equal(t, layout.Range{Min: 0.8, Max: 1.2}, classic.Scale)
	assert.True(t, classic.Frame)
	assert.True(t, classic.Labels)
	assert.False(t, classic.Rotate)
	assert.Equal(t, layout.Fixed(0), classic.LayoutParams().Rotation)

	story := presets[PresetStory]
	assert.Equal(t, 100, story.MaxAttempts)
	assert.Equal(t, layout.Range{Min: 0.9, Max: 1.05}, story.Scale)
	assert.Equal(t, layout.Range{Min: -15, Max: 15}, story.LayoutParams().Rotation)
	assert.False(t, story.Frame)

	for name, p := range presets {
		assert.NoError(t, p.Validate(), name)
		assert.Equal(t, DefaultCanvasWidth, p.CanvasWidth)
		assert.Equal(t, DefaultCanvasHeight, p.CanvasHeight)
	}
}

func TestLoadPresets(t *testing.T) {
	t.Run("正常系: パス未指定は組み込みプリセット", func(t *testing.T) {
		presets, err := LoadPresets("")
		require.NoError(t, err)
		assert.Equal(t, DefaultPresets(), presets)
	})

	t.Run("正常系: YAMLで上書きと追加", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "presets.yaml")
		yamlData := `
story:
  max-attempts: 250
  max-rotation: 5
postcard:
  canvas-width: 1800
  canvas-height: 1200
  scale:
    min: 0.5
    max: 0.7
  labels: false
  background: "#f0e6d2"
`
		require.NoError(t, os.WriteFile(path, []byte(yamlData), 0o600))

		presets, err := LoadPresets(path)
		require.NoError(t, err)

		story := presets[PresetStory]
		assert.Equal(t, 250, story.MaxAttempts)
		assert.Equal(t, 5.0, story.MaxRotation)
		// 指定していない項目は元のまま
		assert.True(t, story.Rotate)
		assert.Equal(t, layout.Range{Min: 0.9, Max: 1.05}, story.Scale)

		postcard := presets["postcard"]
		assert.Equal(t, 1800, postcard.CanvasWidth)
		assert.Equal(t, 1200, postcard.CanvasHeight)
		assert.Equal(t, layout.Range{Min: 0.5, Max: 0.7}, postcard.Scale)
		assert.False(t, postcard.Labels)
		assert.True(t, postcard.Frame)
		assert.Equal(t, 1000, postcard.MaxAttempts)

		assert.Contains(t, presets, PresetClassic)
	})

	t.Run("異常系: 不正なプリセット", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "presets.yaml")
		require.NoError(t, os.WriteFile(path, []byte("bad:\n  max-attempts: 0\n"), 0o600))

		_, err := LoadPresets(path)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), `preset "bad"`)
	})

	t.Run("異常系: ファイルがない", func(t *testing.T) {
		_, err := LoadPresets(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}
