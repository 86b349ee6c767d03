package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "trustscore/pkg/domain-errors"
)

type ScoringSuite struct {
	suite.Suite
}

func TestScoringSuite(t *testing.T) {
	suite.Run(t, new(ScoringSuite))
}

func (s *ScoringSuite) TestRecencyFactor() {
	cases := []struct {
		age  int64
		want uint64
	}{
		{-10, 100},
		{0, 100},
		{RecentWindow - 1, 100},
		{RecentWindow, 75},
		{MediumWindow - 1, 75},
		{MediumWindow, 50},
		{StaleWindow - 1, 50},
		{StaleWindow, 25},
		{math.MaxInt64, 25},
	}
	for _, tc := range cases {
		s.Equal(tc.want, RecencyFactor(tc.age), "age %d", tc.age)
	}
}

func (s *ScoringSuite) TestWeightedScore() {
	s.Run("floors exactly", func() {
		for base := uint64(0); base < 500; base += 7 {
			for _, weight := range []uint64{0, 1, 33, 100, 150, 10_000} {
				got, err := WeightedScore(base, weight)
				s.Require().NoError(err)
				s.Equal(base*weight/100, got)
			}
		}
	})

	s.Run("overflow is reported", func() {
		_, err := WeightedScore(math.MaxUint64, 2)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeOverflow))
	})

	s.Run("large product that fits succeeds", func() {
		got, err := WeightedScore(math.MaxUint64/10_000, 10_000)
		s.Require().NoError(err)
		s.Equal(uint64((math.MaxUint64/10_000)*100), got)
	})
}

func (s *ScoringSuite) TestDecayedScore() {
	got, err := DecayedScore(80, MediumWindow)
	s.Require().NoError(err)
	s.Equal(uint64(40), got)

	got, err = DecayedScore(99, RecentWindow)
	s.Require().NoError(err)
	s.Equal(uint64(74), got)
}

func (s *ScoringSuite) TestDiversityBonus() {
	s.Run("no-op for a single source or zero bonus", func() {
		for _, tc := range []struct{ active, bonus uint8 }{{0, 10}, {1, 10}, {3, 0}} {
			applied, err := ApplyDiversityBonus(123, tc.active, tc.bonus)
			s.Require().NoError(err)
			s.Equal(uint64(123), applied)

			stripped, err := StripDiversityBonus(123, tc.active, tc.bonus)
			s.Require().NoError(err)
			s.Equal(uint64(123), stripped)
		}
	})

	s.Run("two sources at ten percent", func() {
		applied, err := ApplyDiversityBonus(140, 2, 10)
		s.Require().NoError(err)
		s.Equal(uint64(154), applied)

		stripped, err := StripDiversityBonus(154, 2, 10)
		s.Require().NoError(err)
		s.Equal(uint64(140), stripped)
	})

	s.Run("strip inverts apply when the bonus divides evenly", func() {
		for _, bonus := range []uint8{10, 20, 25, 50, 100} {
			for base := uint64(0); base <= 2_000; base += 20 {
				applied, err := ApplyDiversityBonus(base, 3, bonus)
				s.Require().NoError(err)
				stripped, err := StripDiversityBonus(applied, 3, bonus)
				s.Require().NoError(err)
				s.Equal(base, stripped, "base %d bonus %d", base, bonus)
			}
		}
	})

	s.Run("strip after apply never drifts by more than one", func() {
		for _, bonus := range []uint8{1, 7, 13, 99} {
			for base := uint64(0); base < 1_000; base++ {
				applied, err := ApplyDiversityBonus(base, 2, bonus)
				s.Require().NoError(err)
				stripped, err := StripDiversityBonus(applied, 2, bonus)
				s.Require().NoError(err)
				s.LessOrEqual(stripped, base)
				s.GreaterOrEqual(stripped+1, base)
			}
		}
	})

	s.Run("overflow on apply", func() {
		_, err := ApplyDiversityBonus(math.MaxUint64-1, 2, 100)
		s.True(dErrors.HasCode(err, dErrors.CodeOverflow))
	})

	s.Run("overflow on strip", func() {
		_, err := StripDiversityBonus(math.MaxUint64, 2, 10)
		s.True(dErrors.HasCode(err, dErrors.CodeOverflow))
	})
}

func (s *ScoringSuite) TestReplace() {
	s.Run("adds a second source", func() {
		got, err := Replace(Replacement{
			Aggregate: 80, OldActive: 1, NewActive: 2, BonusPercent: 10,
			NewContribution: 60,
		})
		s.Require().NoError(err)
		s.Equal(uint64(154), got)
	})

	s.Run("replaces rather than doubles a refreshed source", func() {
		got, err := Replace(Replacement{
			Aggregate: 154, OldActive: 2, NewActive: 2, BonusPercent: 10,
			OldContribution: 60, NewContribution: 70,
		})
		s.Require().NoError(err)
		s.Equal(uint64(165), got)
	})

	s.Run("removal floors at zero", func() {
		got, err := Replace(Replacement{
			Aggregate: 10, OldActive: 1, NewActive: 0, BonusPercent: 10,
			OldContribution: 50,
		})
		s.Require().NoError(err)
		s.Equal(uint64(0), got)
	})
}

func (s *ScoringSuite) TestCheckedAddSeconds() {
	got, err := CheckedAddSeconds(1_700_000_000, 3600)
	s.Require().NoError(err)
	s.Equal(int64(1_700_003_600), got)

	_, err = CheckedAddSeconds(math.MaxInt64, 1)
	s.True(dErrors.HasCode(err, dErrors.CodeOverflow))

	_, err = CheckedAddSeconds(math.MinInt64, -1)
	s.True(dErrors.HasCode(err, dErrors.CodeOverflow))
}
