package layout

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a    Rect
		b    Rect
		want bool
	}{
		{
			name: "重ならない: 離れている",
			a:    Rect{X: 0, Y: 0, Width: 10, Height: 10},
			b:    Rect{X: 20, Y: 20, Width: 10, Height: 10},
			want: false,
		},
		{
			name: "重ならない: 隣接（右）",
			a:    Rect{X: 0, Y: 0, Width: 10, Height: 10},
			b:    Rect{X: 10, Y: 0, Width: 10, Height: 10},
			want: false,
		},
		{
			name: "重ならない: 隣接（下）",
			a:    Rect{X: 0, Y: 0, Width: 10, Height: 10},
			b:    Rect{X: 0, Y: 10, Width: 10, Height: 10},
			want: false,
		},
		{
			name: "重ならない: 角で接する",
			a:    Rect{X: 0, Y: 0, Width: 10, Height: 10},
			b:    Rect{X: 10, Y: 10, Width: 10, Height: 10},
			want: false,
		},
		{
			name: "重なる: 部分的に重複",
			a:    Rect{X: 0, Y: 0, Width: 10, Height: 10},
			b:    Rect{X: 5, Y: 5, Width: 10, Height: 10},
			want: true,
		},
		{
			name: "重なる: 小数座標でわずかに重複",
			a:    Rect{X: 0, Y: 0, Width: 10.5, Height: 10},
			b:    Rect{X: 10.25, Y: 0, Width: 10, Height: 10},
			want: true,
		},
		{
			name: "重なる: 完全に含む",
			a:    Rect{X: 0, Y: 0, Width: 100, Height: 100},
			b:    Rect{X: 25, Y: 25, Width: 10, Height: 10},
			want: true,
		},
		{
			name: "重なる: 同じ位置",
			a:    Rect{X: 50, Y: 50, Width: 10, Height: 10},
			b:    Rect{X: 50, Y: 50, Width: 10, Height: 10},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.a, tt.b))
			// 対称性
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestRect_Within(t *testing.T) {
	canvas := Size{Width: 100, Height: 50}

	assert.True(t, Rect{X: 0, Y: 0, Width: 100, Height: 50}.Within(canvas))
	assert.True(t, Rect{X: 10, Y: 10, Width: 20, Height: 20}.Within(canvas))
	assert.False(t, Rect{X: -1, Y: 0, Width: 10, Height: 10}.Within(canvas))
	assert.False(t, Rect{X: 95, Y: 0, Width: 10, Height: 10}.Within(canvas))
	assert.False(t, Rect{X: 0, Y: 45, Width: 10, Height: 10}.Within(canvas))
}

func TestRect_Bounds(t *testing.T) {
	r := Rect{X: 10.4, Y: 20.6, Width: 30.2, Height: 40}

	assert.Equal(t, image.Rect(10, 21, 41, 61), r.Bounds())

	cx, cy := r.Center()
	assert.InDelta(t, 25.5, cx, 1e-9)
	assert.InDelta(t, 40.6, cy, 1e-9)
}
