package analysis

import "github.com/kapu/poketeam-kakao-bot/internal/domain"

// AverageStats returns the mean of each base stat over occupied slots,
// rounded half up. An empty roster yields zero for every key.
func AverageStats(r domain.Roster) domain.Stats {
	averages := make(domain.Stats, len(domain.StatKeys))
	members := r.Members()
	count := len(members)

	for _, key := range domain.StatKeys {
		if count == 0 {
			averages[key] = 0
			continue
		}
		sum := 0
		for _, c := range members {
			sum += c.Stat(key)
		}
		averages[key] = roundHalfUp(sum, count)
	}

	return averages
}

// roundHalfUp divides non-negative sum by count rounding .5 upward.
func roundHalfUp(sum, count int) int {
	return (2*sum + count) / (2 * count)
}
