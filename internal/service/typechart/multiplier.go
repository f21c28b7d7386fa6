package typechart

import "github.com/kapu/poketeam-kakao-bot/internal/domain"

// Multiplier combines the relations of attacking against every defending type.
// Factors stack multiplicatively, so an immunity to either type zeroes the result.
func Multiplier(attacking domain.ElementalType, defending ...domain.ElementalType) float64 {
	m := 1.0
	for _, d := range defending {
		m *= Relationship(attacking, d).Factor()
	}
	return m
}

// BestMultiplier returns the strongest single-type attack from attackers
// against the defending types. Unknown attacking types carry no attack; when
// none is usable the result is 0.
func BestMultiplier(attackers []domain.ElementalType, defending ...domain.ElementalType) float64 {
	best := 0.0
	for _, a := range attackers {
		if !a.IsKnown() {
			continue
		}
		if m := Multiplier(a, defending...); m > best {
			best = m
		}
	}
	return best
}
