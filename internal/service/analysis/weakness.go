package analysis

import (
	"github.com/kapu/poketeam-kakao-bot/internal/domain"
	"github.com/kapu/poketeam-kakao-bot/internal/service/typechart"
)

// WeaknessLevel classifies how hard an attacking type hits the whole team.
type WeaknessLevel string

const (
	WeaknessSuperEffective WeaknessLevel = "super-effective"
	WeaknessEffective      WeaknessLevel = "effective"
	WeaknessResistant      WeaknessLevel = "resistant"
	WeaknessImmune         WeaknessLevel = "immune"
)

// WeaknessProfile holds only the attacking types worth reporting; neutral
// types have no entry.
type WeaknessProfile struct {
	levels   map[domain.ElementalType]WeaknessLevel
	averages map[domain.ElementalType]float64
}

// Weaknesses averages every attacking type's multiplier over the occupied
// slots of r and keeps the strategically significant results.
func Weaknesses(r domain.Roster) WeaknessProfile {
	profile := WeaknessProfile{
		levels:   make(map[domain.ElementalType]WeaknessLevel),
		averages: make(map[domain.ElementalType]float64),
	}

	members := r.Members()
	if len(members) == 0 {
		return profile
	}

	count := float64(len(members))
	for _, attacking := range domain.AllTypes {
		sum := 0.0
		for _, c := range members {
			sum += typechart.Multiplier(attacking, c.Types...)
		}

		level, ok := classifyWeakness(sum, count)
		if !ok {
			continue
		}
		profile.levels[attacking] = level
		profile.averages[attacking] = sum / count
	}

	return profile
}

// classifyWeakness works on the sum so thresholds are compared exactly.
func classifyWeakness(sum, count float64) (WeaknessLevel, bool) {
	switch {
	case sum >= 2*count:
		return WeaknessSuperEffective, true
	case sum >= 1.5*count:
		return WeaknessEffective, true
	case sum == 0:
		return WeaknessImmune, true
	case sum <= 0.5*count:
		return WeaknessResistant, true
	default:
		return "", false
	}
}

// Get returns the classification of t and whether t was classified at all.
func (p WeaknessProfile) Get(t domain.ElementalType) (WeaknessLevel, bool) {
	level, ok := p.levels[t]
	return level, ok
}

// Average returns the team-wide multiplier recorded for a classified type.
func (p WeaknessProfile) Average(t domain.ElementalType) (float64, bool) {
	avg, ok := p.averages[t]
	return avg, ok
}

// Len returns the number of classified types.
func (p WeaknessProfile) Len() int {
	return len(p.levels)
}

// Types returns classified types in canonical order.
func (p WeaknessProfile) Types() []domain.ElementalType {
	return p.filter(func(WeaknessLevel) bool { return true })
}

// Critical returns attacking types the team is super-effectively weak to.
func (p WeaknessProfile) Critical() []domain.ElementalType {
	return p.filter(func(l WeaknessLevel) bool { return l == WeaknessSuperEffective })
}

// Notable returns attacking types classified as effective.
func (p WeaknessProfile) Notable() []domain.ElementalType {
	return p.filter(func(l WeaknessLevel) bool { return l == WeaknessEffective })
}

// Resisted returns attacking types the team resists or is immune to.
func (p WeaknessProfile) Resisted() []domain.ElementalType {
	return p.filter(func(l WeaknessLevel) bool {
		return l == WeaknessResistant || l == WeaknessImmune
	})
}

func (p WeaknessProfile) filter(keep func(WeaknessLevel) bool) []domain.ElementalType {
	out := make([]domain.ElementalType, 0, len(p.levels))
	for _, t := range domain.AllTypes {
		if level, ok := p.levels[t]; ok && keep(level) {
			out = append(out, t)
		}
	}
	return out
}
