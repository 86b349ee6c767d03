// Package scoring holds the score arithmetic: recency decay, source
// weighting and the diversity bonus. Every operation is unsigned and checked;
// an out-of-range intermediate fails with CodeOverflow instead of wrapping.
package scoring

import (
	"math/bits"

	dErrors "trustscore/pkg/domain-errors"
)

// Recency bucket boundaries in seconds (30, 90 and 180 days).
const (
	RecentWindow int64 = 2_592_000
	MediumWindow int64 = 7_776_000
	StaleWindow  int64 = 15_552_000
)

// PercentScale is the denominator for weights, recency and bonus percentages.
const PercentScale uint64 = 100

// RecencyFactor returns the percentage of a proof's weighted score that
// still counts after ageSeconds. Negative ages are treated as fresh.
func RecencyFactor(ageSeconds int64) uint64 {
	switch {
	case ageSeconds < RecentWindow:
		return 100
	case ageSeconds < MediumWindow:
		return 75
	case ageSeconds < StaleWindow:
		return 50
	default:
		return 25
	}
}

// WeightedScore is floor(base*weight/100).
func WeightedScore(base, weight uint64) (uint64, error) {
	return mulDiv(base, weight, PercentScale, "weighted score")
}

// DecayedScore is floor(weighted*RecencyFactor(age)/100).
func DecayedScore(weighted uint64, ageSeconds int64) (uint64, error) {
	return mulDiv(weighted, RecencyFactor(ageSeconds), PercentScale, "decayed score")
}

// ApplyDiversityBonus adds floor(base*bonusPercent/100) when more than one
// source is active and the bonus is enabled.
func ApplyDiversityBonus(base uint64, activeSources, bonusPercent uint8) (uint64, error) {
	if activeSources <= 1 || bonusPercent == 0 {
		return base, nil
	}
	bonus, err := mulDiv(base, uint64(bonusPercent), PercentScale, "diversity bonus")
	if err != nil {
		return 0, err
	}
	total, carry := bits.Add64(base, bonus, 0)
	if carry != 0 {
		return 0, overflow("diversity bonus")
	}
	return total, nil
}

// StripDiversityBonus recovers the un-bonused sum for the same activeSources
// and bonusPercent that ApplyDiversityBonus was called with.
func StripDiversityBonus(total uint64, activeSources, bonusPercent uint8) (uint64, error) {
	if activeSources <= 1 || bonusPercent == 0 {
		return total, nil
	}
	return mulDiv(total, PercentScale, PercentScale+uint64(bonusPercent), "strip diversity bonus")
}

// Replacement describes swapping one source's contribution in an aggregate.
type Replacement struct {
	Aggregate       uint64
	OldActive       uint8
	NewActive       uint8
	BonusPercent    uint8
	OldContribution uint64
	NewContribution uint64
}

// Replace strips the bonus for OldActive, subtracts the old contribution
// (flooring at zero), adds the new one and re-applies the bonus for NewActive.
func Replace(r Replacement) (uint64, error) {
	base, err := StripDiversityBonus(r.Aggregate, r.OldActive, r.BonusPercent)
	if err != nil {
		return 0, err
	}
	base = SaturatingSub(base, r.OldContribution)
	sum, carry := bits.Add64(base, r.NewContribution, 0)
	if carry != 0 {
		return 0, overflow("aggregate score")
	}
	return ApplyDiversityBonus(sum, r.NewActive, r.BonusPercent)
}

// SaturatingSub returns a-b, or 0 when b > a.
func SaturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// CheckedAddSeconds adds two signed second counts, failing on overflow.
func CheckedAddSeconds(a, b int64) (int64, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, overflow("timestamp")
	}
	return sum, nil
}

func mulDiv(a, b, d uint64, what string) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, overflow(what)
	}
	return lo / d, nil
}

func overflow(what string) error {
	return dErrors.Newf(dErrors.CodeOverflow, "%s overflows", what)
}
