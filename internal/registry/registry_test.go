package registry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"trustscore/internal/sources"
	"trustscore/pkg/domain"
	dErrors "trustscore/pkg/domain-errors"
)

var (
	admin    = domain.Identity{1}
	stranger = domain.Identity{2}
	verifier = domain.Identity{3}
	next     = domain.Identity{4}
)

type RegistrySuite struct {
	suite.Suite
	reg *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func validParams() Params {
	return Params{
		MinScore:              50,
		CooldownPeriod:        60,
		DiversityBonusPercent: 10,
		ProofTTLSeconds:       86_400,
		VerifierAuthority:     verifier,
	}
}

func (s *RegistrySuite) SetupTest() {
	reg, err := New(admin, validParams())
	s.Require().NoError(err)
	s.reg = reg
}

func (s *RegistrySuite) TestNew() {
	s.Equal(admin, s.reg.Authority)
	s.Equal(verifier, s.reg.VerifierAuthority)
	s.False(s.reg.HasPendingRotation())
	s.Zero(s.reg.TotalVerifiedUsers)

	invalid := map[string]func(p *Params){
		"negative cooldown": func(p *Params) { p.CooldownPeriod = -1 },
		"bonus over 100":    func(p *Params) { p.DiversityBonusPercent = 101 },
		"zero ttl":          func(p *Params) { p.ProofTTLSeconds = 0 },
		"zero verifier":     func(p *Params) { p.VerifierAuthority = domain.Identity{} },
	}
	for name, mutate := range invalid {
		s.Run(name, func() {
			p := validParams()
			mutate(&p)
			_, err := New(admin, p)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidConfig))
		})
	}

	s.Run("boundary values accepted", func() {
		p := validParams()
		p.CooldownPeriod = 0
		p.DiversityBonusPercent = 100
		p.ProofTTLSeconds = 1
		_, err := New(admin, p)
		s.NoError(err)
	})
}

func (s *RegistrySuite) TestUpdateMinScore() {
	_, err := s.reg.UpdateMinScore(stranger, 10)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	s.Equal(uint64(50), s.reg.MinScore)

	old, err := s.reg.UpdateMinScore(admin, 75)
	s.Require().NoError(err)
	s.Equal(uint64(50), old)
	s.Equal(uint64(75), s.reg.MinScore)
}

func (s *RegistrySuite) TestUpdateConfig() {
	s.True(dErrors.HasCode(s.reg.UpdateConfig(stranger, 0, 0, 1), dErrors.CodeUnauthorized))

	err := s.reg.UpdateConfig(admin, 10, 101, 100)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidConfig))
	s.Equal(uint8(10), s.reg.DiversityBonusPercent, "rejected update leaves registry untouched")

	s.Require().NoError(s.reg.UpdateConfig(admin, 0, 25, 3600))
	s.Equal(int64(0), s.reg.CooldownPeriod)
	s.Equal(uint8(25), s.reg.DiversityBonusPercent)
	s.Equal(int64(3600), s.reg.ProofTTLSeconds)
}

func (s *RegistrySuite) TestVerifierRotation() {
	const now int64 = 1_000

	s.Run("finalize without pending", func() {
		_, _, err := s.reg.FinalizeVerifierRotation(admin, now)
		s.True(dErrors.HasCode(err, dErrors.CodeNoVerifierRotationPending))
	})

	s.Run("initiate validates input", func() {
		_, err := s.reg.InitiateVerifierRotation(stranger, next, 10, now)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		_, err = s.reg.InitiateVerifierRotation(admin, domain.Identity{}, 10, now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidConfig))
		_, err = s.reg.InitiateVerifierRotation(admin, next, 0, now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidConfig))
		_, err = s.reg.InitiateVerifierRotation(admin, next, math.MaxInt64, now)
		s.True(dErrors.HasCode(err, dErrors.CodeOverflow))
		s.False(s.reg.HasPendingRotation())
	})

	s.Run("timelock is enforced", func() {
		activateAt, err := s.reg.InitiateVerifierRotation(admin, next, 3600, now)
		s.Require().NoError(err)
		s.Equal(now+3600, activateAt)

		_, _, err = s.reg.FinalizeVerifierRotation(admin, now+3599)
		s.True(dErrors.HasCode(err, dErrors.CodeVerifierRotationNotReady))
		s.Equal(verifier, s.reg.VerifierAuthority)

		old, current, err := s.reg.FinalizeVerifierRotation(admin, now+3600)
		s.Require().NoError(err)
		s.Equal(verifier, old)
		s.Equal(next, current)
		s.Equal(next, s.reg.VerifierAuthority)
		s.False(s.reg.HasPendingRotation())
		s.Zero(s.reg.VerifierRotationAvailableAt)
	})

	s.Run("re-initiation replaces a pending rotation", func() {
		other := domain.Identity{5}
		_, err := s.reg.InitiateVerifierRotation(admin, verifier, 100, now)
		s.Require().NoError(err)
		at, err := s.reg.InitiateVerifierRotation(admin, other, 10, now)
		s.Require().NoError(err)
		s.Equal(other, s.reg.PendingVerifierAuthority)
		s.Equal(now+10, at)
	})
}

func (s *RegistrySuite) TestCountVerifiedUser() {
	s.Require().NoError(s.reg.CountVerifiedUser())
	s.Equal(uint64(1), s.reg.TotalVerifiedUsers)

	s.reg.TotalVerifiedUsers = math.MaxUint64
	s.True(dErrors.HasCode(s.reg.CountVerifiedUser(), dErrors.CodeOverflow))
}

func (s *RegistrySuite) TestScoringConfig() {
	cfg, err := NewScoringConfig(admin)
	s.Require().NoError(err)
	for _, src := range sources.All() {
		s.Equal(DefaultWeight, cfg.Weight(src))
	}

	s.True(dErrors.HasCode(cfg.SetWeight(stranger, sources.Lens, 50), dErrors.CodeUnauthorized))
	s.True(dErrors.HasCode(cfg.SetWeight(admin, sources.Lens, MaxWeight+1), dErrors.CodeInvalidConfig))
	s.True(dErrors.HasCode(cfg.SetWeight(admin, sources.Source(sources.Count), 1), dErrors.CodeInvalidConfig))

	s.Require().NoError(cfg.SetWeight(admin, sources.Lens, 150))
	s.Equal(uint64(150), cfg.Weight(sources.Lens))
	s.Equal(DefaultWeight, cfg.Weight(sources.Twitter))

	_, err = NewScoringConfig(domain.Identity{})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidConfig))
}
