package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rgb8(c color.Color) [3]uint8 {
	r, g, b, _ := c.RGBA()
	return [3]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    color.NRGBA
		wantErr bool
	}{
		{"red", "#FF0000", color.NRGBA{255, 0, 0, 255}, false},
		{"no hash", "00FF00", color.NRGBA{0, 255, 0, 255}, false},
		{"lowercase", "#0000ff", color.NRGBA{0, 0, 255, 255}, false},
		{"with alpha", "#FF000080", color.NRGBA{255, 0, 0, 128}, false},
		{"empty", "", color.NRGBA{}, true},
		{"bad length", "#FFF0", color.NRGBA{}, true},
		{"bad digits", "#GG0000", color.NRGBA{}, true},
		{"bad alpha", "#FF0000ZZ", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHexColor(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, color.NRGBAModel.Convert(got))
		})
	}
}

func TestStrengthColor(t *testing.T) {
	bad := rgb8(ColorBadCandidate)
	good := rgb8(ColorGoodCandidate)

	for i := 0; i < 3; i++ {
		assert.InDelta(t, int(bad[i]), int(rgb8(StrengthColor(0))[i]), 1)
		assert.InDelta(t, int(good[i]), int(rgb8(StrengthColor(1))[i]), 1)
	}

	// Out of range values clamp to the ends.
	assert.Equal(t, rgb8(StrengthColor(0)), rgb8(StrengthColor(-3)))
	assert.Equal(t, rgb8(StrengthColor(1)), rgb8(StrengthColor(7)))
}

func TestDrawRect(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	white := color.RGBA{255, 255, 255, 255}

	DrawRect(img, image.Rect(5, 5, 10, 12), white)

	assert.Equal(t, white, img.RGBAAt(5, 5))
	assert.Equal(t, white, img.RGBAAt(9, 11))
	assert.Equal(t, white, img.RGBAAt(7, 5))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(7, 8), "outline only")
	assert.Equal(t, color.RGBA{}, img.RGBAAt(10, 12), "max corner is exclusive")

	// Clipped shapes must not panic.
	DrawRect(img, image.Rect(-5, -5, 50, 50), white)
	DrawRect(img, image.Rectangle{}, white)
}

func TestDrawEllipse(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 100, 100))
	white := color.Gray{Y: 255}
	cx, cy, a, b, angle := 50.0, 50.0, 30.0, 15.0, math.Pi/6

	DrawEllipse(img, cx, cy, a, b, angle, white)

	drawn := 0
	cos, sin := math.Cos(angle), math.Sin(angle)
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if img.GrayAt(x, y).Y == 0 {
				continue
			}
			drawn++
			dx, dy := float64(x)-cx, float64(y)-cy
			u := dx*cos + dy*sin
			v := -dx*sin + dy*cos
			rho := math.Sqrt(u*u/(a*a) + v*v/(b*b))
			assert.InDelta(t, 1.0, rho, 0.1, "pixel (%d,%d) off the ellipse", x, y)
		}
	}
	assert.Greater(t, drawn, 100)

	// Degenerate axes draw nothing.
	empty := image.NewGray(image.Rect(0, 0, 10, 10))
	DrawEllipse(empty, 5, 5, 0, 3, 0, white)
	assert.Equal(t, make([]uint8, 100), empty.Pix)
}

func TestDrawCross(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 9, 9))
	white := color.Gray{Y: 255}

	DrawCross(img, image.Pt(4, 4), 2, white)

	assert.Equal(t, uint8(255), img.GrayAt(2, 4).Y)
	assert.Equal(t, uint8(255), img.GrayAt(4, 6).Y)
	assert.Equal(t, uint8(0), img.GrayAt(5, 5).Y)
	assert.Equal(t, uint8(0), img.GrayAt(4, 7).Y)
}

func TestDrawLabel(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))

	DrawLabel(img, 10, 10, "0.93")

	// Verify something was drawn (not empty)
	hasWhite := false
	hasBlack := false
	for y := 9; y < 20; y++ {
		for x := 9; x < 40; x++ {
			c := img.RGBAAt(x, y)
			if c.R > 200 {
				hasWhite = true
			}
			if c.A > 0 && c.R < 50 {
				hasBlack = true
			}
		}
	}

	assert.True(t, hasWhite, "label should have white pixels (text)")
	assert.True(t, hasBlack, "label should have dark pixels (background)")
}

func TestDrawLabel_BoundsCheck(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))

	// These should not panic even if label extends past bounds
	DrawLabel(img, 15, 15, "100,100")
	DrawLabel(img, 0, 0, "0,0")
	DrawLabel(img, -5, -5, "test")
	DrawLabel(img, 10, 10, "")
}
