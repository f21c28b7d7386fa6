package adapter

import (
	"fmt"
	"strings"

	"github.com/kapu/poketeam-kakao-bot/internal/constants"
	"github.com/kapu/poketeam-kakao-bot/internal/domain"
	"github.com/kapu/poketeam-kakao-bot/internal/service/analysis"
	"github.com/kapu/poketeam-kakao-bot/internal/util"
)

// DexEntry is everything shown for a single dex lookup.
type DexEntry struct {
	Creature   *domain.Creature
	Genus      string
	FlavorText string
	Legendary  bool
	Mythical   bool
	Evolution  []EvolutionStep
	Abilities  []AbilityLine
	Favorite   bool
}

// EvolutionStep is one node of an evolution chain; Depth 0 is the base form.
type EvolutionStep struct {
	Name  string
	Depth int
}

// AbilityLine is a single ability with its short description.
type AbilityLine struct {
	Name        string
	Description string
	Hidden      bool
}

// DexListPage is one page of the national dex.
type DexListPage struct {
	Type       domain.ElementalType // empty for the whole dex
	Page       int
	TotalPages int
	Total      int
	Entries    []DexListEntry
}

type DexListEntry struct {
	ID   int
	Name string
}

// RecentEntry is a recently viewed creature.
type RecentEntry struct {
	ID   int
	Name string
}

type statView struct {
	Label string
	Value int
}

type slotView struct {
	Number   int
	Creature *domain.Creature
}

// ResponseFormatter formats bot responses
type ResponseFormatter struct {
	prefix string
}

// NewResponseFormatter creates a new ResponseFormatter
func NewResponseFormatter(prefix string) *ResponseFormatter {
	if strings.TrimSpace(prefix) == "" {
		prefix = "!"
	}
	return &ResponseFormatter{prefix: prefix}
}

// Prefix returns the command prefix shown in usage hints.
func (f *ResponseFormatter) Prefix() string {
	return f.prefix
}

// FormatDexEntry formats a creature's dex page.
func (f *ResponseFormatter) FormatDexEntry(entry DexEntry) string {
	if entry.Creature == nil {
		return f.FormatError("포켓몬 정보를 찾을 수 없습니다.")
	}

	data := struct {
		DexEntry
		FlavorText string
		Stats      []statView
		Size       string
		Chain      string
	}{
		DexEntry:   entry,
		FlavorText: util.TruncateString(entry.FlavorText, constants.StringLimits.FlavorText),
		Stats:      statLines(entry.Creature.Stats),
		Size:       formatSize(entry.Creature),
		Chain:      formatChain(entry.Evolution),
	}
	data.Abilities = make([]AbilityLine, len(entry.Abilities))
	for i, a := range entry.Abilities {
		a.Description = util.TruncateString(a.Description, constants.StringLimits.AbilityText)
		data.Abilities[i] = a
	}

	return f.render("dex_info", data)
}

// FormatDexList formats one page of the national dex.
func (f *ResponseFormatter) FormatDexList(page DexListPage) string {
	if len(page.Entries) == 0 {
		return fmt.Sprintf("📖 %d페이지에 표시할 포켓몬이 없습니다.", page.Page)
	}

	title, nextArgs := "포켓몬 도감", ""
	if page.Type != "" {
		label := typeLabel(page.Type)
		title = label + " 타입 포켓몬"
		nextArgs = label + " "
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📖 %s (%d/%d 페이지, 전체 %d종)\n\n", title, page.Page, page.TotalPages, page.Total))
	for _, e := range page.Entries {
		sb.WriteString(fmt.Sprintf("No.%04d %s\n", e.ID, util.DisplayName(e.Name)))
	}
	if page.Page < page.TotalPages {
		sb.WriteString(fmt.Sprintf("\n💡 %s도감 목록 %s%d 으로 다음 페이지", f.prefix, nextArgs, page.Page+1))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// FormatTeam formats the current roster slot by slot.
func (f *ResponseFormatter) FormatTeam(roster domain.Roster) string {
	if roster.IsEmpty() {
		return fmt.Sprintf("👥 팀이 비어 있습니다.\n\n💡 사용법:\n%s팀 추가 [포켓몬]\n예) %s팀 추가 피카츄\n예) %s팀 추가 25",
			f.prefix, f.prefix, f.prefix)
	}

	slots := make([]slotView, 0, domain.MaxTeamSize)
	for i, c := range roster.Slots() {
		slots = append(slots, slotView{Number: i + 1, Creature: c})
	}

	return f.render("team_list", struct {
		Count    int
		Capacity int
		Slots    []slotView
		Prefix   string
	}{
		Count:    roster.Count(),
		Capacity: domain.MaxTeamSize,
		Slots:    slots,
		Prefix:   f.prefix,
	})
}

// FormatTeamAdded confirms a new team member.
func (f *ResponseFormatter) FormatTeamAdded(c *domain.Creature, roster domain.Roster) string {
	return fmt.Sprintf("✅ %s [%s] 을(를) 팀에 추가했습니다. (%d/%d)",
		util.DisplayName(c.Name), typeList(c.Types), roster.Count(), domain.MaxTeamSize)
}

// FormatTeamRemoved confirms a removal, or reports the name was not on the team.
func (f *ResponseFormatter) FormatTeamRemoved(name string, removed bool, roster domain.Roster) string {
	if !removed {
		return fmt.Sprintf("❌ %s 은(는) 팀에 없습니다.", util.DisplayName(name))
	}
	return fmt.Sprintf("✅ %s 을(를) 팀에서 제거했습니다. (%d/%d)",
		util.DisplayName(name), roster.Count(), domain.MaxTeamSize)
}

// FormatTeamCleared formats team cleared confirmation
func (f *ResponseFormatter) FormatTeamCleared(count int) string {
	if count == 0 {
		return "팀이 이미 비어 있습니다."
	}
	return fmt.Sprintf("✅ 팀원 %d마리를 모두 내보냈습니다.", count)
}

// FormatTeamFull explains that no slot is left.
func (f *ResponseFormatter) FormatTeamFull() string {
	return f.FormatError(fmt.Sprintf("팀이 가득 찼습니다. (최대 %d마리)\n%s팀 제거 [포켓몬] 으로 자리를 비워주세요.",
		domain.MaxTeamSize, f.prefix))
}

// FormatDuplicateMember reports a creature that is already on the team.
func (f *ResponseFormatter) FormatDuplicateMember(name string) string {
	return f.FormatError(fmt.Sprintf("%s 은(는) 이미 팀에 있습니다.", util.DisplayName(name)))
}

// FormatTeamAnalysis formats weaknesses, coverage and average stats.
func (f *ResponseFormatter) FormatTeamAnalysis(report *analysis.Report) string {
	if report == nil || report.Empty {
		return fmt.Sprintf("📊 분석할 팀원이 없습니다.\n\n💡 %s팀 추가 [포켓몬] 으로 팀을 먼저 구성하세요.", f.prefix)
	}

	immune := make([]domain.ElementalType, 0)
	resisted := make([]domain.ElementalType, 0)
	for _, t := range report.Weaknesses.Resisted() {
		if level, _ := report.Weaknesses.Get(t); level == analysis.WeaknessImmune {
			immune = append(immune, t)
			continue
		}
		resisted = append(resisted, t)
	}

	return f.render("team_analysis", struct {
		*analysis.Report
		Critical       []domain.ElementalType
		Notable        []domain.ElementalType
		Resisted       []domain.ElementalType
		Immune         []domain.ElementalType
		SuperEffective []domain.ElementalType
		Gaps           []domain.ElementalType
		CoverageCount  int
		TotalTypes     int
		AverageStats   []statView
		AverageTotal   int
	}{
		Report:         report,
		Critical:       report.Weaknesses.Critical(),
		Notable:        report.Weaknesses.Notable(),
		Resisted:       resisted,
		Immune:         immune,
		SuperEffective: report.Coverage.SuperEffective(),
		Gaps:           report.Coverage.Gaps(),
		CoverageCount:  report.Coverage.SuperEffectiveCount(),
		TotalTypes:     len(domain.AllTypes),
		AverageStats:   statLines(report.Stats),
		AverageTotal:   report.Stats.Total(),
	})
}

// FormatComparison formats two creatures side by side.
func (f *ResponseFormatter) FormatComparison(cmp *analysis.Comparison) string {
	if cmp == nil {
		return f.FormatError("비교할 포켓몬 정보를 찾을 수 없습니다.")
	}
	return f.render("compare", cmp)
}

// FormatFavoriteToggled confirms a favorite being added or removed.
func (f *ResponseFormatter) FormatFavoriteToggled(c *domain.Creature, added bool) string {
	name := util.DisplayName(c.Name)
	if added {
		return fmt.Sprintf("⭐ %s 을(를) 즐겨찾기에 추가했습니다.\n%s즐겨찾기 목록 으로 확인 가능합니다.", name, f.prefix)
	}
	return fmt.Sprintf("✅ %s 을(를) 즐겨찾기에서 제거했습니다.", name)
}

// FormatFavoriteList formats resolved favorites. total counts stored names,
// so entries the catalog could not resolve are reported separately.
func (f *ResponseFormatter) FormatFavoriteList(creatures []*domain.Creature, total int) string {
	if total == 0 {
		return fmt.Sprintf("⭐ 즐겨찾기한 포켓몬이 없습니다.\n\n💡 사용법:\n%s즐겨찾기 [포켓몬]\n예) %s즐겨찾기 리자몽", f.prefix, f.prefix)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⭐ 즐겨찾기 (%d마리)\n\n", total))
	for idx, c := range creatures {
		sb.WriteString(fmt.Sprintf("%d. No.%d %s [%s]\n", idx+1, c.ID, util.DisplayName(c.Name), typeList(c.Types)))
	}
	if missing := total - len(creatures); missing > 0 {
		sb.WriteString(fmt.Sprintf("\n⚠️ %d마리는 지금 정보를 불러오지 못했습니다.\n", missing))
	}
	sb.WriteString(fmt.Sprintf("\n💡 %s즐겨찾기 [포켓몬] 을 다시 입력하면 해제됩니다.", f.prefix))
	return sb.String()
}

// FormatFavoriteCleared formats all favorites cleared confirmation
func (f *ResponseFormatter) FormatFavoriteCleared(count int) string {
	if count == 0 {
		return "즐겨찾기한 포켓몬이 없습니다."
	}
	return fmt.Sprintf("✅ 즐겨찾기 %d개를 모두 삭제했습니다.", count)
}

// FormatRecent formats recently viewed creatures, newest first.
func (f *ResponseFormatter) FormatRecent(entries []RecentEntry) string {
	if len(entries) == 0 {
		return fmt.Sprintf("🕘 최근 조회한 포켓몬이 없습니다.\n\n💡 %s도감 [포켓몬] 으로 조회해 보세요.", f.prefix)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🕘 최근 조회 (%d마리)\n\n", len(entries)))
	for idx, e := range entries {
		sb.WriteString(fmt.Sprintf("%d. No.%d %s\n", idx+1, e.ID, util.DisplayName(e.Name)))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// FormatRecentCleared confirms the history was wiped.
func (f *ResponseFormatter) FormatRecentCleared() string {
	return "✅ 최근 조회 기록을 삭제했습니다."
}

// FormatHelp formats help message
func (f *ResponseFormatter) FormatHelp() string {
	return f.render("help", struct{ Prefix string }{Prefix: f.prefix})
}

// FormatUnknownType tells the user which type names the dex filter accepts.
func (f *ResponseFormatter) FormatUnknownType(value string) string {
	labels := make([]string, 0, len(domain.AllTypes))
	for _, t := range domain.AllTypes {
		labels = append(labels, typeLabel(t))
	}
	return fmt.Sprintf("'%s' 은(는) 알 수 없는 타입입니다.\n사용 가능: %s", value, strings.Join(labels, ", "))
}

// FormatUsage formats a short usage hint for a command missing its argument.
func (f *ResponseFormatter) FormatUsage(usage, example string) string {
	return fmt.Sprintf("❓ 사용법: %s%s\n예) %s%s", f.prefix, usage, f.prefix, example)
}

// FormatError formats error message
func (f *ResponseFormatter) FormatError(message string) string {
	return fmt.Sprintf("❌ %s", message)
}

// FormatNotFound formats creature not found error
func (f *ResponseFormatter) FormatNotFound(query string) string {
	return f.FormatError(fmt.Sprintf("'%s' 포켓몬을 찾을 수 없습니다.", query))
}

// FormatServiceUnavailable is shown when the catalog or storage is down.
func (f *ResponseFormatter) FormatServiceUnavailable() string {
	return f.FormatError("포켓몬 정보를 불러오지 못했습니다. 잠시 후 다시 시도해주세요.")
}

func (f *ResponseFormatter) render(name string, data any) string {
	out, err := executeFormatterTemplate(name, data)
	if err != nil {
		return f.FormatError("응답을 만들지 못했습니다.")
	}
	return util.TruncateString(out, constants.StringLimits.MessageTotal)
}

func statLines(stats domain.Stats) []statView {
	lines := make([]statView, 0, len(domain.StatKeys))
	for _, key := range domain.StatKeys {
		lines = append(lines, statView{Label: statLabel(key), Value: stats[key]})
	}
	return lines
}

// formatSize converts decimetres and hectograms to metres and kilograms.
func formatSize(c *domain.Creature) string {
	if c.Height == 0 && c.Weight == 0 {
		return ""
	}
	return fmt.Sprintf("%.1fm · %.1fkg", float64(c.Height)/10, float64(c.Weight)/10)
}

// formatChain renders stages by depth: "Eevee → Vaporeon / Jolteon".
func formatChain(stages []EvolutionStep) string {
	if len(stages) < 2 {
		return ""
	}

	var levels [][]string
	for _, s := range stages {
		for len(levels) <= s.Depth {
			levels = append(levels, nil)
		}
		levels[s.Depth] = append(levels[s.Depth], util.DisplayName(s.Name))
	}

	parts := make([]string, 0, len(levels))
	for _, names := range levels {
		if len(names) > 0 {
			parts = append(parts, strings.Join(names, " / "))
		}
	}
	return strings.Join(parts, " → ")
}
