package config

// Snapshot is an immutable view of the detector properties at one point in
// time. The zero value is not usable; obtain snapshots from a Store or
// DefaultSnapshot.
type Snapshot struct {
	values Properties
}

// DefaultSnapshot returns a snapshot of the factory schema.
func DefaultSnapshot() *Snapshot {
	return &Snapshot{values: Defaults()}
}

// Properties returns a copy of the snapshot values.
func (s *Snapshot) Properties() Properties {
	return s.values.Clone()
}

// Bool returns a bool parameter, false if absent or of another kind.
func (s *Snapshot) Bool(key string) bool {
	v, _ := s.values[key].(bool)
	return v
}

// Int returns an int parameter, 0 if absent or of another kind.
func (s *Snapshot) Int(key string) int {
	v, _ := s.values[key].(int)
	return v
}

// Float returns a float64 parameter, 0 if absent or of another kind.
func (s *Snapshot) Float(key string) float64 {
	v, _ := s.values[key].(float64)
	return v
}

// Params is the typed form of a Snapshot used by the detection stages.
type Params struct {
	CoarseDetection bool
	CoarseFilterMin int
	CoarseFilterMax int

	IntensityRange int
	BlurSize       int
	CannyThreshold int
	CannyRatio     int
	CannyAperture  int

	PupilSizeMax int
	PupilSizeMin int

	StrongPerimeterRatioRangeMin float64
	StrongPerimeterRatioRangeMax float64
	StrongAreaRatioRangeMin      float64
	StrongAreaRatioRangeMax      float64

	ContourSizeMin             int
	EllipseRoundnessRatio      float64
	InitialEllipseFitThreshold float64

	FinalPerimeterRatioRangeMin float64
	FinalPerimeterRatioRangeMax float64
	EllipseTrueSupportMinDist   float64
	SupportPixelRatioExponent   float64
}

// Params converts the snapshot into its typed form.
func (s *Snapshot) Params() Params {
	return Params{
		CoarseDetection:              s.Bool(KeyCoarseDetection),
		CoarseFilterMin:              s.Int(KeyCoarseFilterMin),
		CoarseFilterMax:              s.Int(KeyCoarseFilterMax),
		IntensityRange:               s.Int(KeyIntensityRange),
		BlurSize:                     s.Int(KeyBlurSize),
		CannyThreshold:               s.Int(KeyCannyThreshold),
		CannyRatio:                   s.Int(KeyCannyRatio),
		CannyAperture:                s.Int(KeyCannyAperture),
		PupilSizeMax:                 s.Int(KeyPupilSizeMax),
		PupilSizeMin:                 s.Int(KeyPupilSizeMin),
		StrongPerimeterRatioRangeMin: s.Float(KeyStrongPerimeterRatioRangeMin),
		StrongPerimeterRatioRangeMax: s.Float(KeyStrongPerimeterRatioRangeMax),
		StrongAreaRatioRangeMin:      s.Float(KeyStrongAreaRatioRangeMin),
		StrongAreaRatioRangeMax:      s.Float(KeyStrongAreaRatioRangeMax),
		ContourSizeMin:               s.Int(KeyContourSizeMin),
		EllipseRoundnessRatio:        s.Float(KeyEllipseRoundnessRatio),
		InitialEllipseFitThreshold:   s.Float(KeyInitialEllipseFitThreshold),
		FinalPerimeterRatioRangeMin:  s.Float(KeyFinalPerimeterRatioRangeMin),
		FinalPerimeterRatioRangeMax:  s.Float(KeyFinalPerimeterRatioRangeMax),
		EllipseTrueSupportMinDist:    s.Float(KeyEllipseTrueSupportMinDist),
		SupportPixelRatioExponent:    s.Float(KeySupportPixelRatioExponent),
	}
}
