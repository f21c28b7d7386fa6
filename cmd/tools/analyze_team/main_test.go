package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kapu/poketeam-kakao-bot/internal/domain"
	"github.com/kapu/poketeam-kakao-bot/pkg/errors"
)

type stubLookup map[string]*domain.Creature

func (s stubLookup) GetCreature(_ context.Context, name string) (*domain.Creature, error) {
	return s[name], nil
}

func TestParseTeamFile(t *testing.T) {
	def, err := parseTeamFile([]byte(`
members:
  - name: charizard
  - name: Custom-Mon
    types: [Water, ice]
    stats: {hp: 90, speed: 70}
`))
	require.NoError(t, err)
	require.Len(t, def.Members, 2)
	assert.Equal(t, "charizard", def.Members[0].Name)
	assert.Equal(t, []string{"Water", "ice"}, def.Members[1].Types)
	assert.Equal(t, 70, def.Members[1].Stats["speed"])
}

func TestParseTeamFileRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: "members: []"},
		{name: "missing name", data: "members:\n  - types: [fire]"},
		{name: "too many", data: "members: [{name: a}, {name: b}, {name: c}, {name: d}, {name: e}, {name: f}, {name: g}]"},
		{name: "malformed", data: "members: {"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseTeamFile([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestBuildRoster(t *testing.T) {
	lookup := stubLookup{
		"charizard": {Name: "charizard", Types: []domain.ElementalType{domain.TypeFire, domain.TypeFlying}},
	}
	def := &teamDefinition{Members: []memberDefinition{
		{Name: "charizard"},
		{Name: "Custom-Mon", Types: []string{"Water", "ice"}, Stats: map[string]int{"HP": 90}},
	}}

	roster, err := buildRoster(context.Background(), def, lookup)
	require.NoError(t, err)
	require.Equal(t, 2, roster.Count())

	custom := roster.Members()[1]
	assert.Equal(t, "custom-mon", custom.Name)
	assert.Equal(t, []domain.ElementalType{domain.TypeWater, domain.TypeIce}, custom.Types)
	assert.Equal(t, 90, custom.Stats[domain.StatHP])
}

func TestBuildRosterErrors(t *testing.T) {
	t.Run("unknown type", func(t *testing.T) {
		def := &teamDefinition{Members: []memberDefinition{{Name: "x", Types: []string{"cosmic"}}}}
		_, err := buildRoster(context.Background(), def, stubLookup{})
		require.Error(t, err)
		var unknown *errors.UnknownTypeError
		assert.ErrorAs(t, err, &unknown)
	})

	t.Run("unknown stat", func(t *testing.T) {
		def := &teamDefinition{Members: []memberDefinition{{Name: "x", Types: []string{"fire"}, Stats: map[string]int{"luck": 1}}}}
		_, err := buildRoster(context.Background(), def, stubLookup{})
		assert.Error(t, err)
	})

	t.Run("too many types", func(t *testing.T) {
		def := &teamDefinition{Members: []memberDefinition{{Name: "x", Types: []string{"fire", "water", "grass"}}}}
		_, err := buildRoster(context.Background(), def, stubLookup{})
		assert.ErrorContains(t, err, "at most 2 allowed")
	})

	t.Run("negative stat", func(t *testing.T) {
		def := &teamDefinition{Members: []memberDefinition{{Name: "x", Types: []string{"fire"}, Stats: map[string]int{"hp": -5}}}}
		_, err := buildRoster(context.Background(), def, stubLookup{})
		assert.ErrorContains(t, err, "must not be negative")
	})

	t.Run("not in catalog", func(t *testing.T) {
		def := &teamDefinition{Members: []memberDefinition{{Name: "missingno"}}}
		_, err := buildRoster(context.Background(), def, stubLookup{})
		assert.Error(t, err)
	})

	t.Run("duplicate", func(t *testing.T) {
		def := &teamDefinition{Members: []memberDefinition{
			{Name: "dup", Types: []string{"fire"}},
			{Name: "DUP", Types: []string{"water"}},
		}}
		_, err := buildRoster(context.Background(), def, stubLookup{})
		require.Error(t, err)
		var dup *errors.DuplicateMemberError
		assert.ErrorAs(t, err, &dup)
	})
}
