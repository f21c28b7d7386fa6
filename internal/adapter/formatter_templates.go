package adapter

import (
	"embed"
	"strconv"
	"strings"
	"sync"
	"text/template"

	"github.com/kapu/poketeam-kakao-bot/internal/domain"
	"github.com/kapu/poketeam-kakao-bot/internal/util"
)

//go:embed templates/*.tmpl
var formatterTemplateFS embed.FS

var (
	formatterTemplates *template.Template
	formatterOnce      sync.Once
	formatterErr       error
)

var typeLabels = map[domain.ElementalType]string{
	domain.TypeNormal:   "노말",
	domain.TypeFire:     "불꽃",
	domain.TypeWater:    "물",
	domain.TypeElectric: "전기",
	domain.TypeGrass:    "풀",
	domain.TypeIce:      "얼음",
	domain.TypeFighting: "격투",
	domain.TypePoison:   "독",
	domain.TypeGround:   "땅",
	domain.TypeFlying:   "비행",
	domain.TypePsychic:  "에스퍼",
	domain.TypeBug:      "벌레",
	domain.TypeRock:     "바위",
	domain.TypeGhost:    "고스트",
	domain.TypeDragon:   "드래곤",
	domain.TypeDark:     "악",
	domain.TypeSteel:    "강철",
	domain.TypeFairy:    "페어리",
}

var statLabels = map[domain.StatKey]string{
	domain.StatHP:             "HP",
	domain.StatAttack:         "공격",
	domain.StatDefense:        "방어",
	domain.StatSpecialAttack:  "특수공격",
	domain.StatSpecialDefense: "특수방어",
	domain.StatSpeed:          "스피드",
}

func executeFormatterTemplate(name string, data any) (string, error) {
	formatterOnce.Do(func() {
		funcMap := template.FuncMap{
			"add":         func(a, b int) int { return a + b },
			"neg":         func(a int) int { return -a },
			"displayName": util.DisplayName,
			"typeLabel":   typeLabel,
			"typeList":    typeList,
			"statLabel":   statLabel,
			"multiplier":  formatMultiplier,
		}
		tmpl := template.New("formatter").Funcs(funcMap)
		formatterTemplates, formatterErr = tmpl.ParseFS(formatterTemplateFS, "templates/*.tmpl")
	})

	if formatterErr != nil {
		return "", formatterErr
	}

	var builder strings.Builder
	if err := formatterTemplates.ExecuteTemplate(&builder, name, data); err != nil {
		return "", err
	}

	return strings.TrimRight(builder.String(), "\n"), nil
}

// typeLabel returns the Korean type name. Types outside the chart keep their
// catalog name so they still show up.
func typeLabel(t domain.ElementalType) string {
	if label, ok := typeLabels[t]; ok {
		return label
	}
	return util.DisplayName(string(t))
}

func typeList(types []domain.ElementalType) string {
	if len(types) == 0 {
		return "없음"
	}
	labels := make([]string, len(types))
	for i, t := range types {
		labels[i] = typeLabel(t)
	}
	return strings.Join(labels, ", ")
}

func statLabel(key domain.StatKey) string {
	if label, ok := statLabels[key]; ok {
		return label
	}
	return util.DisplayName(string(key))
}

// formatMultiplier renders 2 as "×2" and 0.25 as "×0.25".
func formatMultiplier(m float64) string {
	return "×" + strconv.FormatFloat(m, 'f', -1, 64)
}
