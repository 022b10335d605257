package domain

// QualityTier is the discrete label derived from a solution's average rating.
type QualityTier string

const (
	QualityExcellent QualityTier = "EXCELENTE"
	QualityGood      QualityTier = "BOA"
	QualityFair      QualityTier = "REGULAR"
	QualityPoor      QualityTier = "RUIM"
)

// QualityScheme names a set of tier thresholds. Unrecognized schemes fall
// back to SchemeDefault.
type QualityScheme string

const (
	SchemeDefault QualityScheme = "default"
	SchemeStrict  QualityScheme = "strict"
	SchemeLenient QualityScheme = "lenient"
)

// qualityBands holds the lower bounds for EXCELENTE, BOA and REGULAR;
// anything below the last band is RUIM.
type qualityBands struct {
	excellent, good, fair float64
}

var schemes = map[QualityScheme]qualityBands{
	SchemeDefault: {excellent: 4.5, good: 3.5, fair: 2.5},
	SchemeStrict:  {excellent: 4.7, good: 4.0, fair: 3.0},
	SchemeLenient: {excellent: 4.0, good: 3.0, fair: 2.0},
}

// QualityFor maps an average rating onto a tier under the named scheme.
func QualityFor(average float64, scheme QualityScheme) QualityTier {
	bands, ok := schemes[scheme]
	if !ok {
		bands = schemes[SchemeDefault]
	}

	switch {
	case average >= bands.excellent:
		return QualityExcellent
	case average >= bands.good:
		return QualityGood
	case average >= bands.fair:
		return QualityFair
	default:
		return QualityPoor
	}
}
