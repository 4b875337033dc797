package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// Overlay palette.
var (
	ColorGoodCandidate = mustHex("#3CB44B")
	ColorBadCandidate  = mustHex("#E6194B")
	ColorEllipse       = mustHex("#FFE119")
	ColorROI           = mustHex("#4363D8")

	labelForeground = color.RGBA{255, 255, 255, 255}
	labelBackground = color.RGBA{0, 0, 0, 180}
)

func mustHex(s string) color.Color {
	c, err := ParseHexColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseHexColor parses a hex color string like "#FF0000" or "#FF000080".
// The leading '#' is optional.
func ParseHexColor(hex string) (color.Color, error) {
	if len(hex) == 0 {
		return nil, fmt.Errorf("empty color string")
	}
	if hex[0] != '#' {
		hex = "#" + hex
	}

	switch len(hex) {
	case 7:
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, err
		}
		return c.Clamped(), nil
	case 9:
		c, err := colorful.Hex(hex[:7])
		if err != nil {
			return nil, err
		}
		a, err := strconv.ParseUint(hex[7:], 16, 8)
		if err != nil {
			return nil, err
		}
		r, g, b := c.Clamped().RGB255()
		// color.RGBA is alpha-premultiplied.
		return color.NRGBA{R: r, G: g, B: b, A: uint8(a)}, nil
	default:
		return nil, fmt.Errorf("invalid hex color length")
	}
}

// StrengthColor maps t in [0, 1] onto the bad-to-good candidate gradient,
// blended in HCL space. Values outside the range are clamped.
func StrengthColor(t float64) color.Color {
	t = math.Max(0, math.Min(1, t))
	bad, _ := colorful.MakeColor(ColorBadCandidate)
	good, _ := colorful.MakeColor(ColorGoodCandidate)
	return bad.BlendHcl(good, t).Clamped()
}

// DrawRect draws the one-pixel outline of r. Pixels outside img are skipped.
func DrawRect(img draw.Image, r image.Rectangle, c color.Color) {
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		setClipped(img, x, r.Min.Y, c)
		setClipped(img, x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		setClipped(img, r.Min.X, y, c)
		setClipped(img, r.Max.X-1, y, c)
	}
}

// DrawEllipse draws the outline of an ellipse centered at (cx, cy) with the
// given semi-axes. angle is the orientation of the first axis in radians.
func DrawEllipse(img draw.Image, cx, cy, semiA, semiB, angle float64, c color.Color) {
	if semiA <= 0 || semiB <= 0 {
		return
	}
	cos, sin := math.Cos(angle), math.Sin(angle)

	// Two samples per pixel of the longer axis' circumference.
	steps := max(16, int(4*math.Pi*math.Max(semiA, semiB)))
	for i := 0; i < steps; i++ {
		t := 2 * math.Pi * float64(i) / float64(steps)
		u, v := semiA*math.Cos(t), semiB*math.Sin(t)
		x := cx + u*cos - v*sin
		y := cy + u*sin + v*cos
		setClipped(img, int(math.Round(x)), int(math.Round(y)), c)
	}
}

// DrawCross draws a plus sign of the given arm length centered at p.
func DrawCross(img draw.Image, p image.Point, arm int, c color.Color) {
	for d := -arm; d <= arm; d++ {
		setClipped(img, p.X+d, p.Y, c)
		setClipped(img, p.X, p.Y+d, c)
	}
}

// DrawLabel draws a simple text label at the given position.
func DrawLabel(img draw.Image, x, y int, text string) {
	drawLabel(img, x, y, text, labelForeground, labelBackground)
}

// drawLabel renders text with a 3x5 pixel font. Only digits and a few
// punctuation marks have glyphs; other characters leave a gap.
func drawLabel(img draw.Image, x, y int, text string, fg, bg color.Color) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
		',': {"000", "000", "000", "010", "010"},
		'.': {"000", "000", "000", "000", "010"},
		'-': {"000", "000", "111", "000", "000"},
	}

	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	// Draw background
	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			setClipped(img, x+dx, y+dy, bg)
		}
	}

	// Draw text
	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					setClipped(img, cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}

func setClipped(img draw.Image, x, y int, c color.Color) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.Set(x, y, c)
	}
}
