package typechart

import "github.com/kapu/poketeam-kakao-bot/internal/domain"

// Relation describes how one attacking type fares against one defending type.
type Relation uint8

const (
	RelationNeutral Relation = iota
	RelationImmune
	RelationHalved
	RelationDoubled
)

func (r Relation) String() string {
	switch r {
	case RelationImmune:
		return "immune"
	case RelationHalved:
		return "halved"
	case RelationDoubled:
		return "doubled"
	default:
		return "neutral"
	}
}

// Factor returns the damage multiplier of the relation.
func (r Relation) Factor() float64 {
	switch r {
	case RelationImmune:
		return 0
	case RelationHalved:
		return 0.5
	case RelationDoubled:
		return 2
	default:
		return 1
	}
}

type matchup struct {
	immune  []domain.ElementalType
	halved  []domain.ElementalType
	doubled []domain.ElementalType
}

// Generation 6+ type chart, keyed by the attacking type.
var chart = map[domain.ElementalType]matchup{
	domain.TypeNormal: {
		immune: []domain.ElementalType{domain.TypeGhost},
		halved: []domain.ElementalType{domain.TypeRock, domain.TypeSteel},
	},
	domain.TypeFire: {
		halved:  []domain.ElementalType{domain.TypeFire, domain.TypeWater, domain.TypeRock, domain.TypeDragon},
		doubled: []domain.ElementalType{domain.TypeGrass, domain.TypeIce, domain.TypeBug, domain.TypeSteel},
	},
	domain.TypeWater: {
		halved:  []domain.ElementalType{domain.TypeWater, domain.TypeGrass, domain.TypeDragon},
		doubled: []domain.ElementalType{domain.TypeFire, domain.TypeGround, domain.TypeRock},
	},
	domain.TypeElectric: {
		immune:  []domain.ElementalType{domain.TypeGround},
		halved:  []domain.ElementalType{domain.TypeElectric, domain.TypeGrass, domain.TypeDragon},
		doubled: []domain.ElementalType{domain.TypeWater, domain.TypeFlying},
	},
	domain.TypeGrass: {
		halved: []domain.ElementalType{
			domain.TypeFire, domain.TypeGrass, domain.TypePoison, domain.TypeFlying,
			domain.TypeBug, domain.TypeDragon, domain.TypeSteel,
		},
		doubled: []domain.ElementalType{domain.TypeWater, domain.TypeGround, domain.TypeRock},
	},
	domain.TypeIce: {
		halved:  []domain.ElementalType{domain.TypeFire, domain.TypeWater, domain.TypeIce, domain.TypeSteel},
		doubled: []domain.ElementalType{domain.TypeGrass, domain.TypeGround, domain.TypeFlying, domain.TypeDragon},
	},
	domain.TypeFighting: {
		immune: []domain.ElementalType{domain.TypeGhost},
		halved: []domain.ElementalType{
			domain.TypePoison, domain.TypeFlying, domain.TypePsychic, domain.TypeBug, domain.TypeFairy,
		},
		doubled: []domain.ElementalType{
			domain.TypeNormal, domain.TypeIce, domain.TypeRock, domain.TypeDark, domain.TypeSteel,
		},
	},
	domain.TypePoison: {
		immune:  []domain.ElementalType{domain.TypeSteel},
		halved:  []domain.ElementalType{domain.TypePoison, domain.TypeGround, domain.TypeRock, domain.TypeGhost},
		doubled: []domain.ElementalType{domain.TypeGrass, domain.TypeFairy},
	},
	domain.TypeGround: {
		immune: []domain.ElementalType{domain.TypeFlying},
		halved: []domain.ElementalType{domain.TypeGrass, domain.TypeBug},
		doubled: []domain.ElementalType{
			domain.TypeFire, domain.TypeElectric, domain.TypePoison, domain.TypeRock, domain.TypeSteel,
		},
	},
	domain.TypeFlying: {
		halved:  []domain.ElementalType{domain.TypeElectric, domain.TypeRock, domain.TypeSteel},
		doubled: []domain.ElementalType{domain.TypeGrass, domain.TypeFighting, domain.TypeBug},
	},
	domain.TypePsychic: {
		immune:  []domain.ElementalType{domain.TypeDark},
		halved:  []domain.ElementalType{domain.TypePsychic, domain.TypeSteel},
		doubled: []domain.ElementalType{domain.TypeFighting, domain.TypePoison},
	},
	domain.TypeBug: {
		halved: []domain.ElementalType{
			domain.TypeFire, domain.TypeFighting, domain.TypePoison, domain.TypeFlying,
			domain.TypeGhost, domain.TypeSteel, domain.TypeFairy,
		},
		doubled: []domain.ElementalType{domain.TypeGrass, domain.TypePsychic, domain.TypeDark},
	},
	domain.TypeRock: {
		halved:  []domain.ElementalType{domain.TypeFighting, domain.TypeGround, domain.TypeSteel},
		doubled: []domain.ElementalType{domain.TypeFire, domain.TypeIce, domain.TypeFlying, domain.TypeBug},
	},
	domain.TypeGhost: {
		immune:  []domain.ElementalType{domain.TypeNormal},
		halved:  []domain.ElementalType{domain.TypeDark},
		doubled: []domain.ElementalType{domain.TypePsychic, domain.TypeGhost},
	},
	domain.TypeDragon: {
		immune:  []domain.ElementalType{domain.TypeFairy},
		halved:  []domain.ElementalType{domain.TypeSteel},
		doubled: []domain.ElementalType{domain.TypeDragon},
	},
	domain.TypeDark: {
		halved:  []domain.ElementalType{domain.TypeFighting, domain.TypeDark, domain.TypeFairy},
		doubled: []domain.ElementalType{domain.TypePsychic, domain.TypeGhost},
	},
	domain.TypeSteel: {
		halved:  []domain.ElementalType{domain.TypeFire, domain.TypeWater, domain.TypeElectric, domain.TypeSteel},
		doubled: []domain.ElementalType{domain.TypeIce, domain.TypeRock, domain.TypeFairy},
	},
	domain.TypeFairy: {
		halved:  []domain.ElementalType{domain.TypeFire, domain.TypePoison, domain.TypeSteel},
		doubled: []domain.ElementalType{domain.TypeFighting, domain.TypeDragon, domain.TypeDark},
	},
}

const typeCount = 18

// relations is the frozen lookup built from chart; indexed [attacker][defender].
var relations = buildRelations()

func buildRelations() [typeCount][typeCount]Relation {
	var table [typeCount][typeCount]Relation
	for attacker, m := range chart {
		a := attacker.Index()
		for _, d := range m.immune {
			table[a][d.Index()] = RelationImmune
		}
		for _, d := range m.halved {
			table[a][d.Index()] = RelationHalved
		}
		for _, d := range m.doubled {
			table[a][d.Index()] = RelationDoubled
		}
	}
	return table
}

// Relationship looks up how attacker fares against defender. Unknown types on
// either side have no relationships and are reported as neutral.
func Relationship(attacker, defender domain.ElementalType) Relation {
	a, d := attacker.Index(), defender.Index()
	if a < 0 || d < 0 {
		return RelationNeutral
	}
	return relations[a][d]
}
