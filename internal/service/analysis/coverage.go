package analysis

import (
	"github.com/kapu/poketeam-kakao-bot/internal/domain"
	"github.com/kapu/poketeam-kakao-bot/internal/service/typechart"
)

// CoverageLevel classifies the best hit the team can land on a defending type.
type CoverageLevel string

const (
	CoverageSuperEffective   CoverageLevel = "super-effective"
	CoverageEffective        CoverageLevel = "effective"
	CoverageNotVeryEffective CoverageLevel = "not-very-effective"
	CoverageNoEffect         CoverageLevel = "no-effect"
)

// CoverageProfile classifies every defending type.
type CoverageProfile struct {
	levels map[domain.ElementalType]CoverageLevel
	best   map[domain.ElementalType]float64
}

// Coverage finds, for each defending type, the strongest single-type attack
// any member of r can use. Each member contributes once per own type.
func Coverage(r domain.Roster) CoverageProfile {
	profile := CoverageProfile{
		levels: make(map[domain.ElementalType]CoverageLevel, len(domain.AllTypes)),
		best:   make(map[domain.ElementalType]float64, len(domain.AllTypes)),
	}

	members := r.Members()
	for _, defending := range domain.AllTypes {
		best := 0.0
		for _, c := range members {
			if m := typechart.BestMultiplier(c.Types, defending); m > best {
				best = m
			}
		}
		profile.levels[defending] = classifyCoverage(best)
		profile.best[defending] = best
	}

	return profile
}

func classifyCoverage(best float64) CoverageLevel {
	switch {
	case best >= 2:
		return CoverageSuperEffective
	case best >= 1:
		return CoverageEffective
	case best == 0:
		return CoverageNoEffect
	default:
		return CoverageNotVeryEffective
	}
}

// Get returns the classification for t. Unknown types report no-effect.
func (p CoverageProfile) Get(t domain.ElementalType) CoverageLevel {
	if level, ok := p.levels[t]; ok {
		return level
	}
	return CoverageNoEffect
}

// Best returns the strongest multiplier found against t.
func (p CoverageProfile) Best(t domain.ElementalType) float64 {
	return p.best[t]
}

// Len returns the number of classified types; always 18.
func (p CoverageProfile) Len() int {
	return len(p.levels)
}

// SuperEffective lists defending types the team can hit for double damage.
func (p CoverageProfile) SuperEffective() []domain.ElementalType {
	return p.with(CoverageSuperEffective)
}

// Gaps lists defending types nobody on the team can hit at least neutrally.
func (p CoverageProfile) Gaps() []domain.ElementalType {
	out := p.with(CoverageNotVeryEffective)
	return append(out, p.with(CoverageNoEffect)...)
}

// SuperEffectiveCount is the "N/18 types" figure shown to users.
func (p CoverageProfile) SuperEffectiveCount() int {
	return len(p.SuperEffective())
}

func (p CoverageProfile) with(level CoverageLevel) []domain.ElementalType {
	out := make([]domain.ElementalType, 0)
	for _, t := range domain.AllTypes {
		if p.levels[t] == level {
			out = append(out, t)
		}
	}
	return out
}
