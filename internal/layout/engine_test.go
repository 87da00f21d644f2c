package layout

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var a4 = Size{Width: 2480, Height: 3508}

func assertValidLayout(t *testing.T, canvas Size, placements []Placement) {
	t.Helper()
	for i := 0; i < len(placements); i++ {
		assert.True(t, placements[i].Rect.Within(canvas), "配置 %d がキャンバス外: %+v", i, placements[i].Rect)
		for j := i + 1; j < len(placements); j++ {
			assert.False(t, Overlaps(placements[i].Rect, placements[j].Rect),
				"配置 %d と %d が重なっている", i, j)
		}
	}
}

func squares(n int, size float64) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{Width: size, Height: size}
	}
	return items
}

func TestEngine_Layout(t *testing.T) {
	t.Run("正常系: 200x200を5枚", func(t *testing.T) {
		engine := NewEngine(Params{Scale: Range{Min: 0.8, Max: 1.2}, Rotation: Fixed(0), MaxAttempts: 1000})

		placements, err := engine.Layout(rand.New(rand.NewSource(42)), a4, squares(5, 200))

		require.NoError(t, err)
		require.Len(t, placements, 5)
		assertValidLayout(t, a4, placements)
		for i, p := range placements {
			assert.Equal(t, i, p.Index)
			assert.Equal(t, 0.0, p.Angle)
		}
	})

	t.Run("正常系: 同じシードなら同じ配置", func(t *testing.T) {
		engine := NewEngine(Params{Scale: Range{Min: 0.9, Max: 1.05}, Rotation: Range{Min: -15, Max: 15}, MaxAttempts: 100})

		first, err := engine.Layout(rand.New(rand.NewSource(99)), a4, squares(8, 300))
		require.NoError(t, err)
		second, err := engine.Layout(rand.New(rand.NewSource(99)), a4, squares(8, 300))
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("正常系: 実効サイズは元サイズ×倍率", func(t *testing.T) {
		engine := NewEngine(Params{Scale: Range{Min: 0.8, Max: 1.2}, MaxAttempts: 1000})
		items := []Item{
			{Width: 300, Height: 200},
			{Width: 120, Height: 480},
			{Width: 640, Height: 360},
		}

		placements, err := engine.Layout(rand.New(rand.NewSource(3)), a4, items)

		require.NoError(t, err)
		for i, p := range placements {
			assert.GreaterOrEqual(t, p.Scale, 0.8)
			assert.LessOrEqual(t, p.Scale, 1.2)
			assert.InDelta(t, items[i].Width*p.Scale, p.Rect.Width, 1e-9)
			assert.InDelta(t, items[i].Height*p.Scale, p.Rect.Height, 1e-9)
		}
	})

	t.Run("正常系: アイテムごとの倍率を優先", func(t *testing.T) {
		engine := NewEngine(Params{Scale: Range{Min: 0.8, Max: 1.2}, MaxAttempts: 1000})
		items := []Item{{Width: 100, Height: 100, Scale: Fixed(2)}}

		placements, err := engine.Layout(rand.New(rand.NewSource(3)), a4, items)

		require.NoError(t, err)
		assert.Equal(t, 2.0, placements[0].Scale)
		assert.Equal(t, 200.0, placements[0].Rect.Width)
	})

	t.Run("正常系: 回転角は範囲内", func(t *testing.T) {
		engine := NewEngine(Params{Scale: Fixed(1), Rotation: Range{Min: -15, Max: 15}, MaxAttempts: 100})

		placements, err := engine.Layout(rand.New(rand.NewSource(5)), a4, squares(10, 100))

		require.NoError(t, err)
		limit := 15 * math.Pi / 180
		for _, p := range placements {
			assert.GreaterOrEqual(t, p.Angle, -limit)
			assert.LessOrEqual(t, p.Angle, limit)
		}
	})

	t.Run("異常系: キャンバスより大きいアイテム", func(t *testing.T) {
		engine := NewEngine(Params{Scale: Range{Min: 0.8, Max: 1.2}, MaxAttempts: 1000})
		items := []Item{
			{Width: 100, Height: 100},
			{Width: 4000, Height: 100},
		}

		placements, err := engine.Layout(rand.New(rand.NewSource(1)), a4, items)

		require.Error(t, err)
		assert.Nil(t, placements)
		assert.ErrorIs(t, err, ErrInvalidItemSize)

		var perr *PlacementError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, 1, perr.Index)
	})

	t.Run("異常系: 倍率NaNは配置しない", func(t *testing.T) {
		engine := NewEngine(Params{Scale: Range{Min: 1, Max: math.NaN()}, MaxAttempts: 100})

		placements, err := engine.Layout(rand.New(rand.NewSource(1)), a4, squares(2, 200))

		require.Error(t, err)
		assert.Nil(t, placements)
		assert.ErrorIs(t, err, ErrInvalidItemSize)

		var perr *PlacementError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, 0, perr.Index)
	})

	t.Run("異常系: 1000x1000を1000枚は配置できない", func(t *testing.T) {
		engine := NewEngine(Params{Scale: Fixed(1), MaxAttempts: 1000})

		placements, err := engine.Layout(rand.New(rand.NewSource(1)), a4, squares(1000, 1000))

		require.Error(t, err)
		assert.Nil(t, placements)
		assert.ErrorIs(t, err, ErrPlacementExhausted)

		var perr *PlacementError
		require.True(t, errors.As(err, &perr))
		// A4には1000x1000が最大6枚しか入らない
		assert.GreaterOrEqual(t, perr.Index, 1)
		assert.LessOrEqual(t, perr.Index, 6)
		assert.Equal(t, 1000, perr.Attempts)
		assert.Contains(t, err.Error(), "after 1000 attempts")
	})
}

func TestEngine_Layout_RandomizedInvariants(t *testing.T) {
	engine := NewEngine(Params{Scale: Range{Min: 0.8, Max: 1.2}, Rotation: Range{Min: -15, Max: 15}, MaxAttempts: 1000})

	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		items := make([]Item, 40)
		for i := range items {
			items[i] = Item{
				Width:  float64(50 + rng.Intn(250)),
				Height: float64(50 + rng.Intn(250)),
			}
		}

		placements, err := engine.Layout(rng, a4, items)

		require.NoError(t, err, "seed %d", seed)
		require.Len(t, placements, len(items))
		assertValidLayout(t, a4, placements)
	}
}

func TestRects(t *testing.T) {
	placements := []Placement{
		{Index: 0, Rect: Rect{X: 1, Y: 2, Width: 3, Height: 4}},
		{Index: 1, Rect: Rect{X: 5, Y: 6, Width: 7, Height: 8}},
	}

	assert.Equal(t, []Rect{placements[0].Rect, placements[1].Rect}, Rects(placements))
}
