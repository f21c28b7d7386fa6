package domain

import "strings"

// StatKey names one of the six base statistics.
type StatKey string

const (
	StatHP             StatKey = "hp"
	StatAttack         StatKey = "attack"
	StatDefense        StatKey = "defense"
	StatSpecialAttack  StatKey = "special-attack"
	StatSpecialDefense StatKey = "special-defense"
	StatSpeed          StatKey = "speed"
)

// StatKeys is the fixed display order of base statistics.
var StatKeys = []StatKey{
	StatHP, StatAttack, StatDefense, StatSpecialAttack, StatSpecialDefense, StatSpeed,
}

func (k StatKey) String() string {
	return string(k)
}

// IsKnown reports whether k is one of the six tracked statistics.
func (k StatKey) IsKnown() bool {
	for _, known := range StatKeys {
		if k == known {
			return true
		}
	}
	return false
}

// Stats maps a stat key to its base value.
type Stats map[StatKey]int

// Total sums the six tracked statistics.
func (s Stats) Total() int {
	total := 0
	for _, key := range StatKeys {
		total += s[key]
	}
	return total
}

// Ability is a creature ability as reported by the catalog.
type Ability struct {
	Name     string `json:"name"`
	IsHidden bool   `json:"isHidden,omitempty"`
}

// Creature is an immutable record obtained from the catalog.
type Creature struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Types     []ElementalType `json:"types"`
	Stats     Stats           `json:"stats"`
	Height    int             `json:"height,omitempty"`
	Weight    int             `json:"weight,omitempty"`
	Abilities []Ability       `json:"abilities,omitempty"`
	Sprite    string          `json:"sprite,omitempty"`
}

// NormalizeName lowercases and trims a creature name for comparisons.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizedName returns the comparison key for the creature.
func (c *Creature) NormalizedName() string {
	if c == nil {
		return ""
	}
	return NormalizeName(c.Name)
}

// BaseStatTotal returns the sum of all six base statistics.
func (c *Creature) BaseStatTotal() int {
	if c == nil {
		return 0
	}
	return c.Stats.Total()
}

// HasType reports whether the creature carries t.
func (c *Creature) HasType(t ElementalType) bool {
	if c == nil {
		return false
	}
	for _, own := range c.Types {
		if own == t {
			return true
		}
	}
	return false
}

// Stat returns a single base value, 0 when absent.
func (c *Creature) Stat(key StatKey) int {
	if c == nil || c.Stats == nil {
		return 0
	}
	return c.Stats[key]
}
