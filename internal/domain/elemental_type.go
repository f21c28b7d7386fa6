package domain

import (
	"strings"

	"github.com/kapu/poketeam-kakao-bot/pkg/errors"
)

// ElementalType is one of the 18 combat affinities a creature can carry.
type ElementalType string

const (
	TypeNormal   ElementalType = "normal"
	TypeFire     ElementalType = "fire"
	TypeWater    ElementalType = "water"
	TypeElectric ElementalType = "electric"
	TypeGrass    ElementalType = "grass"
	TypeIce      ElementalType = "ice"
	TypeFighting ElementalType = "fighting"
	TypePoison   ElementalType = "poison"
	TypeGround   ElementalType = "ground"
	TypeFlying   ElementalType = "flying"
	TypePsychic  ElementalType = "psychic"
	TypeBug      ElementalType = "bug"
	TypeRock     ElementalType = "rock"
	TypeGhost    ElementalType = "ghost"
	TypeDragon   ElementalType = "dragon"
	TypeDark     ElementalType = "dark"
	TypeSteel    ElementalType = "steel"
	TypeFairy    ElementalType = "fairy"
)

// AllTypes lists every known type in canonical chart order.
var AllTypes = []ElementalType{
	TypeNormal, TypeFire, TypeWater, TypeElectric, TypeGrass, TypeIce,
	TypeFighting, TypePoison, TypeGround, TypeFlying, TypePsychic, TypeBug,
	TypeRock, TypeGhost, TypeDragon, TypeDark, TypeSteel, TypeFairy,
}

var typeIndex = func() map[ElementalType]int {
	idx := make(map[ElementalType]int, len(AllTypes))
	for i, t := range AllTypes {
		idx[t] = i
	}
	return idx
}()

func (t ElementalType) String() string {
	return string(t)
}

// IsKnown reports whether t belongs to the closed set of 18 types.
func (t ElementalType) IsKnown() bool {
	_, ok := typeIndex[t]
	return ok
}

// Index returns the canonical position of t, or -1 for unknown types.
func (t ElementalType) Index() int {
	if i, ok := typeIndex[t]; ok {
		return i
	}
	return -1
}

// ParseElementalType normalizes s and validates it against the known set.
func ParseElementalType(s string) (ElementalType, error) {
	t := ElementalType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsKnown() {
		return t, errors.NewUnknownTypeError(s)
	}
	return t, nil
}
