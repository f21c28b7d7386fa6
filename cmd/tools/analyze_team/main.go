// Command analyze_team reads a team file and prints the same analysis the
// bot replies with. Members that list their types inline are analyzed as
// written; the rest are looked up in the catalog.
//
// Example file:
//
//	members:
//	  - name: charizard
//	  - name: custom-mon
//	    types: [water, ice]
//	    stats: {hp: 90, attack: 80, speed: 70}
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kapu/poketeam-kakao-bot/internal/adapter"
	"github.com/kapu/poketeam-kakao-bot/internal/constants"
	"github.com/kapu/poketeam-kakao-bot/internal/domain"
	"github.com/kapu/poketeam-kakao-bot/internal/service/analysis"
	"github.com/kapu/poketeam-kakao-bot/internal/service/catalog"
	"github.com/kapu/poketeam-kakao-bot/internal/util"
)

const (
	requestTimeout = 15 * time.Second
	maxTypes       = 2
)

var (
	teamFile = flag.String("file", "team.yaml", "Team definition file")
	baseURL  = flag.String("api", constants.APIConfig.PokeAPIBaseURL, "Catalog API base URL")
	prefix   = flag.String("prefix", "!", "Command prefix shown in the output")
	logLevel = flag.String("log-level", "warn", "Log level")
)

type teamDefinition struct {
	Members []memberDefinition `yaml:"members"`
}

type memberDefinition struct {
	Name  string         `yaml:"name"`
	Types []string       `yaml:"types"`
	Stats map[string]int `yaml:"stats"`
}

type creatureLookup interface {
	GetCreature(ctx context.Context, nameOrID string) (*domain.Creature, error)
}

func main() {
	flag.Parse()

	logger, err := util.NewLogger(*logLevel, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	def, err := loadTeamFile(*teamFile)
	if err != nil {
		logger.Fatal("failed to load team file", zap.String("file", *teamFile), zap.Error(err))
	}

	lookup := catalog.NewService(
		catalog.NewClient(&http.Client{Timeout: requestTimeout}, *baseURL, logger),
		nil,
		nil,
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	roster, err := buildRoster(ctx, def, lookup)
	if err != nil {
		logger.Fatal("failed to build roster", zap.Error(err))
	}

	formatter := adapter.NewResponseFormatter(*prefix)
	fmt.Println(formatter.FormatTeam(roster))
	fmt.Println()
	fmt.Println(formatter.FormatTeamAnalysis(analysis.Analyze(roster)))
}

func loadTeamFile(path string) (*teamDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseTeamFile(data)
}

func parseTeamFile(data []byte) (*teamDefinition, error) {
	var def teamDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("decode team file: %w", err)
	}
	if len(def.Members) == 0 {
		return nil, fmt.Errorf("team file has no members")
	}
	if len(def.Members) > domain.MaxTeamSize {
		return nil, fmt.Errorf("team file lists %d members, at most %d allowed", len(def.Members), domain.MaxTeamSize)
	}
	for i, m := range def.Members {
		if strings.TrimSpace(m.Name) == "" {
			return nil, fmt.Errorf("member %d has no name", i+1)
		}
	}
	return &def, nil
}

func buildRoster(ctx context.Context, def *teamDefinition, lookup creatureLookup) (domain.Roster, error) {
	var roster domain.Roster
	for _, m := range def.Members {
		creature, err := resolveMember(ctx, m, lookup)
		if err != nil {
			return roster, fmt.Errorf("member %q: %w", m.Name, err)
		}
		if roster, err = roster.Add(creature); err != nil {
			return roster, fmt.Errorf("member %q: %w", m.Name, err)
		}
	}
	return roster, nil
}

func resolveMember(ctx context.Context, m memberDefinition, lookup creatureLookup) (*domain.Creature, error) {
	if len(m.Types) == 0 {
		creature, err := lookup.GetCreature(ctx, m.Name)
		if err != nil {
			return nil, err
		}
		if creature == nil {
			return nil, fmt.Errorf("not found in catalog")
		}
		return creature, nil
	}

	if len(m.Types) > maxTypes {
		return nil, fmt.Errorf("%d types listed, at most %d allowed", len(m.Types), maxTypes)
	}

	creature := &domain.Creature{
		Name:  domain.NormalizeName(m.Name),
		Stats: domain.Stats{},
	}
	for _, raw := range m.Types {
		t, err := domain.ParseElementalType(raw)
		if err != nil {
			return nil, err
		}
		creature.Types = append(creature.Types, t)
	}
	for key, value := range m.Stats {
		stat := domain.StatKey(strings.ToLower(strings.TrimSpace(key)))
		if !stat.IsKnown() {
			return nil, fmt.Errorf("unknown stat %q", key)
		}
		if value < 0 {
			return nil, fmt.Errorf("stat %q must not be negative", key)
		}
		creature.Stats[stat] = value
	}
	return creature, nil
}
