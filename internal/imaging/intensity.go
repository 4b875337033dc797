package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/histogram"
)

// spikeMinCount is the population a histogram bin needs to count as a spike
// on frames large enough to reach it.
const spikeMinCount = 40

// IntensityHistogram returns the 256-bin intensity histogram of gray.
func IntensityHistogram(gray *image.Gray) []int {
	// Gray pixels expand to equal R, G and B; any channel is the intensity.
	return histogram.NewRGBAHistogram(gray).R.Bins
}

// DarkestSpike returns the lowest intensity whose bin holds a significant
// population: at least spikeMinCount pixels, or 1% of the total on small
// images. It returns 0 for an empty histogram.
//
// On an eye image the pupil is the darkest large region, so the darkest
// spike approximates the pupil intensity while isolated dark pixels are
// skipped.
func DarkestSpike(hist []int) int {
	total := 0
	for _, n := range hist {
		total += n
	}
	if total == 0 {
		return 0
	}

	need := max(1, min(spikeMinCount, total/100))
	for i, n := range hist {
		if n >= need {
			return i
		}
	}
	return 0
}

// ThresholdBelow returns a zero-origin mask that is 255 where gray is at or
// below level and 0 elsewhere.
func ThresholdBelow(gray *image.Gray, level int) *image.Gray {
	b := gray.Bounds()
	mask := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := gray.Pix[gray.PixOffset(b.Min.X, b.Min.Y+y):]
		dst := mask.Pix[y*mask.Stride:]
		for x := 0; x < b.Dx(); x++ {
			if int(src[x]) <= level {
				dst[x] = 255
			}
		}
	}
	return mask
}
