package domain

import "github.com/kapu/poketeam-kakao-bot/pkg/errors"

// MaxTeamSize is the number of slots in a roster.
const MaxTeamSize = 6

// Roster is an immutable snapshot of a team. Every mutation returns a new
// value and leaves the receiver untouched; creatures are shared, never copied,
// since they are read-only.
type Roster struct {
	slots [MaxTeamSize]*Creature
}

// NewRoster restores a roster from persisted slots. Nil entries stay as gaps,
// entries past the last slot and repeated names are dropped.
func NewRoster(slots ...*Creature) Roster {
	var r Roster
	for i, c := range slots {
		if i >= MaxTeamSize {
			break
		}
		if c == nil || r.Contains(c.Name) {
			continue
		}
		r.slots[i] = c
	}
	return r
}

// Add places c in the first empty slot.
func (r Roster) Add(c *Creature) (Roster, error) {
	if c == nil {
		return r, errors.NewValidationError("creature must not be nil", "creature", nil)
	}
	if !r.HasCapacity() {
		return r, errors.NewTeamFullError(MaxTeamSize)
	}
	if r.Contains(c.Name) {
		return r, errors.NewDuplicateMemberError(c.NormalizedName())
	}

	next := r
	for i := range next.slots {
		if next.slots[i] == nil {
			next.slots[i] = c
			break
		}
	}
	return next, nil
}

// Remove empties the slot holding name. Removing an absent name is a no-op.
func (r Roster) Remove(name string) Roster {
	key := NormalizeName(name)
	next := r
	for i, c := range next.slots {
		if c != nil && c.NormalizedName() == key {
			next.slots[i] = nil
			break
		}
	}
	return next
}

// Clear returns an empty roster.
func (r Roster) Clear() Roster {
	return Roster{}
}

// Contains reports whether a creature with the given name occupies a slot.
func (r Roster) Contains(name string) bool {
	key := NormalizeName(name)
	for _, c := range r.slots {
		if c != nil && c.NormalizedName() == key {
			return true
		}
	}
	return false
}

// HasCapacity reports whether at least one slot is empty.
func (r Roster) HasCapacity() bool {
	return r.Count() < MaxTeamSize
}

// Count returns the number of occupied slots.
func (r Roster) Count() int {
	n := 0
	for _, c := range r.slots {
		if c != nil {
			n++
		}
	}
	return n
}

// IsEmpty reports whether no slot is occupied.
func (r Roster) IsEmpty() bool {
	return r.Count() == 0
}

// Members returns the occupied slots in slot order.
func (r Roster) Members() []*Creature {
	members := make([]*Creature, 0, MaxTeamSize)
	for _, c := range r.slots {
		if c != nil {
			members = append(members, c)
		}
	}
	return members
}

// Slots returns all six slots including gaps.
func (r Roster) Slots() []*Creature {
	out := make([]*Creature, MaxTeamSize)
	copy(out, r.slots[:])
	return out
}
