package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/kapu/poketeam-kakao-bot/internal/constants"
	"github.com/kapu/poketeam-kakao-bot/internal/domain"
	"github.com/kapu/poketeam-kakao-bot/internal/util"
	"github.com/kapu/poketeam-kakao-bot/pkg/errors"
)

const scraperTimeout = 15 * time.Second

var scrapedStatLabels = map[string]domain.StatKey{
	"HP":      domain.StatHP,
	"Attack":  domain.StatAttack,
	"Defense": domain.StatDefense,
	"Sp. Atk": domain.StatSpecialAttack,
	"Sp. Def": domain.StatSpecialDefense,
	"Speed":   domain.StatSpeed,
}

// DexScraper reads pokedex pages from pokemondb.net.
type DexScraper struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

func NewDexScraper(httpClient *http.Client, baseURL string, logger *zap.Logger) *DexScraper {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: scraperTimeout}
	}
	if baseURL == "" {
		baseURL = constants.APIConfig.ScraperBaseURL
	}
	return &DexScraper{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     util.LoggerOrNop(logger),
	}
}

// FetchCreature scrapes the dex page for name. Only the default form's
// national number, types, abilities and base stats are read.
func (s *DexScraper) FetchCreature(ctx context.Context, name string) (*domain.Creature, error) {
	slug := util.NormalizeQuery(name)
	if slug == "" {
		return nil, errors.NewValidationError("name is required", "name", name)
	}

	pageURL := s.baseURL + "/pokedex/" + slug
	s.logger.Info("Fetching dex page (FALLBACK MODE)", zap.String("url", pageURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; PokeTeamBot/1.0)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.NewNotFoundError("dex page", slug)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	creature := parseDexPage(doc, slug)
	if len(creature.Types) == 0 {
		return nil, fmt.Errorf("dex page for %s has no type data", slug)
	}

	s.logger.Info("Scraper completed",
		zap.String("name", creature.Name),
		zap.Int("id", creature.ID),
	)
	return creature, nil
}

func parseDexPage(doc *goquery.Document, slug string) *domain.Creature {
	creature := &domain.Creature{
		Name:  slug,
		Stats: make(domain.Stats, len(domain.StatKeys)),
	}

	doc.Find("table.vitals-table tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSpace(row.Find("th").First().Text())
		cell := row.Find("td").First()

		switch {
		case strings.HasPrefix(label, "National"):
			if creature.ID == 0 {
				creature.ID, _ = strconv.Atoi(strings.TrimSpace(cell.Find("strong").First().Text()))
			}
		case label == "Type":
			if len(creature.Types) > 0 {
				return
			}
			cell.Find("a").Each(func(_ int, a *goquery.Selection) {
				creature.Types = append(creature.Types, domain.ElementalType(util.Normalize(a.Text())))
			})
		case label == "Abilities":
			if len(creature.Abilities) > 0 {
				return
			}
			cell.Find("a").Each(func(_ int, a *goquery.Selection) {
				creature.Abilities = append(creature.Abilities, domain.Ability{
					Name:     util.NormalizeQuery(a.Text()),
					IsHidden: a.ParentFiltered("small").Length() > 0,
				})
			})
		default:
			key, ok := scrapedStatLabels[label]
			if !ok {
				return
			}
			if _, seen := creature.Stats[key]; seen {
				return
			}
			value, err := strconv.Atoi(strings.TrimSpace(row.Find("td.cell-num").First().Text()))
			if err == nil {
				creature.Stats[key] = value
			}
		}
	})

	return creature
}
