package domain

import (
	_ "embed"
	"encoding/json"
	"strings"
	"sync"
)

//go:embed data/names_ko.json
var koreanNamesJSON []byte

type koreanName struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Ko   string `json:"ko"`
}

var (
	koreanNamesOnce sync.Once
	koreanToSlug    map[string]string
	slugToKorean    map[string]string
)

func loadKoreanNames() {
	koreanToSlug = make(map[string]string)
	slugToKorean = make(map[string]string)

	var names []koreanName
	if err := json.Unmarshal(koreanNamesJSON, &names); err != nil {
		return
	}
	for _, n := range names {
		koreanToSlug[koreanKey(n.Ko)] = n.Name
		slugToKorean[n.Name] = n.Ko
	}
}

// koreanKey drops whitespace so "리 자몽" and "리자몽" match.
func koreanKey(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// SlugForKoreanName maps a Korean creature name to its catalog slug.
func SlugForKoreanName(name string) (string, bool) {
	koreanNamesOnce.Do(loadKoreanNames)
	slug, ok := koreanToSlug[koreanKey(name)]
	return slug, ok
}

// KoreanName returns the Korean name for a catalog slug, or "".
func KoreanName(slug string) string {
	koreanNamesOnce.Do(loadKoreanNames)
	return slugToKorean[NormalizeName(slug)]
}
