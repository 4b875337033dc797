package config

import (
	"fmt"
	"sort"
)

// Namespace is the configuration sub-tree consumed by the 2D detector.
const Namespace = "2d"

// Properties maps parameter names to their values. Values are bool, int or
// float64.
type Properties map[string]any

// Kind names the type of a parameter value.
type Kind string

const (
	KindBool    Kind = "bool"
	KindInt     Kind = "int"
	KindFloat   Kind = "float"
	KindInvalid Kind = "invalid"
)

// Parameter names.
const (
	KeyCoarseDetection              = "coarse_detection"
	KeyCoarseFilterMin              = "coarse_filter_min"
	KeyCoarseFilterMax              = "coarse_filter_max"
	KeyIntensityRange               = "intensity_range"
	KeyBlurSize                     = "blur_size"
	KeyCannyThreshold               = "canny_treshold"
	KeyCannyRatio                   = "canny_ration"
	KeyCannyAperture                = "canny_aperture"
	KeyPupilSizeMax                 = "pupil_size_max"
	KeyPupilSizeMin                 = "pupil_size_min"
	KeyStrongPerimeterRatioRangeMin = "strong_perimeter_ratio_range_min"
	KeyStrongPerimeterRatioRangeMax = "strong_perimeter_ratio_range_max"
	KeyStrongAreaRatioRangeMin      = "strong_area_ratio_range_min"
	KeyStrongAreaRatioRangeMax      = "strong_area_ratio_range_max"
	KeyContourSizeMin               = "contour_size_min"
	KeyEllipseRoundnessRatio        = "ellipse_roundness_ratio"
	KeyInitialEllipseFitThreshold   = "initial_ellipse_fit_treshhold"
	KeyFinalPerimeterRatioRangeMin  = "final_perimeter_ratio_range_min"
	KeyFinalPerimeterRatioRangeMax  = "final_perimeter_ratio_range_max"
	KeyEllipseTrueSupportMinDist    = "ellipse_true_support_min_dist"
	KeySupportPixelRatioExponent    = "support_pixel_ratio_exponent"
)

// Defaults returns the factory schema. Every call returns a fresh map.
func Defaults() Properties {
	return Properties{
		KeyCoarseDetection:              true,
		KeyCoarseFilterMin:              128,
		KeyCoarseFilterMax:              280,
		KeyIntensityRange:               23,
		KeyBlurSize:                     5,
		KeyCannyThreshold:               160,
		KeyCannyRatio:                   2,
		KeyCannyAperture:                5,
		KeyPupilSizeMax:                 100,
		KeyPupilSizeMin:                 10,
		KeyStrongPerimeterRatioRangeMin: 0.8,
		KeyStrongPerimeterRatioRangeMax: 1.1,
		KeyStrongAreaRatioRangeMin:      0.6,
		KeyStrongAreaRatioRangeMax:      1.1,
		KeyContourSizeMin:               5,
		KeyEllipseRoundnessRatio:        0.1,
		KeyInitialEllipseFitThreshold:   1.8,
		KeyFinalPerimeterRatioRangeMin:  0.6,
		KeyFinalPerimeterRatioRangeMax:  1.2,
		KeyEllipseTrueSupportMinDist:    2.5,
		KeySupportPixelRatioExponent:    2.0,
	}
}

// Namespaces lists the configuration sub-trees this detector occupies.
func Namespaces() []string {
	return []string{Namespace}
}

// Clone returns a shallow copy of p.
func (p Properties) Clone() Properties {
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Keys returns the parameter names in lexical order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// normalize maps Go numeric types onto the schema's int and float64.
func normalize(v any) (any, Kind) {
	switch n := v.(type) {
	case bool:
		return n, KindBool
	case int:
		return n, KindInt
	case int8:
		return int(n), KindInt
	case int16:
		return int(n), KindInt
	case int32:
		return int(n), KindInt
	case int64:
		return int(n), KindInt
	case uint8:
		return int(n), KindInt
	case uint16:
		return int(n), KindInt
	case uint32:
		return int(n), KindInt
	case float32:
		return float64(n), KindFloat
	case float64:
		return n, KindFloat
	default:
		return v, KindInvalid
	}
}

// KindOf reports the schema kind of v.
func KindOf(v any) Kind {
	_, k := normalize(v)
	return k
}

func describe(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T(%v)", v, v)
}
