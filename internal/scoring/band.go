package scoring

// Score bands shown next to the cringometer.
const (
	BandAuthentic         = "Authentic"
	BandSlightlyCorporate = "Slightly Corporate"
	BandVeryCorporate     = "Very Corporate"
	BandMaximumCringe     = "Maximum Cringe"
)

// Band returns the human label for a score.
func Band(score int) string {
	switch {
	case score <= 20:
		return BandAuthentic
	case score <= 50:
		return BandSlightlyCorporate
	case score <= 80:
		return BandVeryCorporate
	default:
		return BandMaximumCringe
	}
}
