package model

// Tier is the three-level grade assigned to a marked answer.
type Tier string

const (
	TierIncorrect    Tier = "Incorrect"
	TierPartialMarks Tier = "Partial Marks"
	TierFullMarks    Tier = "Full Marks"
)

// PartialMarksWeight is the fraction of full credit a partially correct
// answer contributes to the overall accuracy.
const PartialMarksWeight = 0.5

// Valid reports whether t is one of the three recognised tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierIncorrect, TierPartialMarks, TierFullMarks:
		return true
	}
	return false
}

// Weight returns the accuracy contribution of this tier in [0, 1].
func (t Tier) Weight() float64 {
	switch t {
	case TierFullMarks:
		return 1.0
	case TierPartialMarks:
		return PartialMarksWeight
	default:
		return 0.0
	}
}
