package analysis

import (
	"github.com/kapu/poketeam-kakao-bot/internal/domain"
	"github.com/kapu/poketeam-kakao-bot/internal/service/typechart"
)

// Report bundles every analysis of one roster snapshot.
type Report struct {
	Size        int
	Capacity    int
	Empty       bool
	Members     []*domain.Creature
	UniqueTypes []domain.ElementalType
	Weaknesses  WeaknessProfile
	Coverage    CoverageProfile
	Stats       domain.Stats
}

// Analyze runs all analyzers against r. An empty roster is not an error: the
// report is flagged Empty and carries the documented empty results.
func Analyze(r domain.Roster) *Report {
	members := r.Members()
	return &Report{
		Size:        len(members),
		Capacity:    domain.MaxTeamSize,
		Empty:       len(members) == 0,
		Members:     members,
		UniqueTypes: UniqueTypes(r),
		Weaknesses:  Weaknesses(r),
		Coverage:    Coverage(r),
		Stats:       AverageStats(r),
	}
}

// UniqueTypes returns the distinct types carried by the team in first-seen order.
func UniqueTypes(r domain.Roster) []domain.ElementalType {
	seen := make(map[domain.ElementalType]struct{})
	out := make([]domain.ElementalType, 0)
	for _, c := range r.Members() {
		for _, t := range c.Types {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// StatLine compares a single base stat between two creatures.
type StatLine struct {
	Key   domain.StatKey
	Left  int
	Right int
}

// Diff is Left minus Right.
func (l StatLine) Diff() int {
	return l.Left - l.Right
}

// Comparison puts two creatures side by side.
type Comparison struct {
	Left       *domain.Creature
	Right      *domain.Creature
	Stats      []StatLine
	LeftTotal  int
	RightTotal int
	// LeftOffense is the best multiplier Left's own types deal to Right.
	LeftOffense  float64
	RightOffense float64
}

// Compare builds a side-by-side view of two creatures.
func Compare(left, right *domain.Creature) *Comparison {
	if left == nil || right == nil {
		return nil
	}

	lines := make([]StatLine, 0, len(domain.StatKeys))
	for _, key := range domain.StatKeys {
		lines = append(lines, StatLine{Key: key, Left: left.Stat(key), Right: right.Stat(key)})
	}

	return &Comparison{
		Left:         left,
		Right:        right,
		Stats:        lines,
		LeftTotal:    left.BaseStatTotal(),
		RightTotal:   right.BaseStatTotal(),
		LeftOffense:  typechart.BestMultiplier(left.Types, right.Types...),
		RightOffense: typechart.BestMultiplier(right.Types, left.Types...),
	}
}
