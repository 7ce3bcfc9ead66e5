package brackets

import (
	"fmt"
	"math"
	"sort"

	"github.com/Ob91190/hud-manager/models"
)

// NewSEBracket builds a single elimination tree for the given number of
// teams. The bracket is sized to the smallest power of two that seats
// everyone; round-one pairs that would contain a bye are elided rather than
// materialized, so the result always has exactly teams-1 matchups and
// exactly one final (the single matchup without a winner_to link).
func NewSEBracket(teams int) []models.Matchup {
	if teams < 2 {
		return []models.Matchup{}
	}

	totalRounds := int(math.Ceil(math.Log2(float64(teams))))
	bracketSize := 1 << uint(totalRounds)

	matchups := make([]models.Matchup, 0, teams-1)

	for r := totalRounds; r >= 1; r-- {
		matchesInRound := 1 << uint(totalRounds-r)

		for order := 1; order <= matchesInRound; order++ {
			m := models.Matchup{ID: matchupID(r, order)}
			if r < totalRounds {
				parent := matchupID(r+1, (order+1)/2)
				m.WinnerTo = &parent
			}

			if r == 1 && pairHasBye(order, bracketSize, teams) {
				// The seeded team advances without playing; the slot in
				// the parent matchup is filled directly by the caller.
				continue
			}
			matchups = append(matchups, m)
		}
	}

	sortByRoundOrder(matchups)

	return matchups
}

func matchupID(round, order int) string {
	return fmt.Sprintf("R%dM%d", round, order)
}

// pairHasBye reports whether round-one pair number `order` (1-based)
// contains a seed beyond the entrant count. Seeds are paired so that each
// pair holds exactly one bottom-half seed, which keeps byes from ever
// meeting each other.
func pairHasBye(order, bracketSize, teams int) bool {
	pairs := round1Pairs(bracketSize)
	pair := pairs[order-1]
	return pair[0] >= teams || pair[1] >= teams
}

// round1Pairs returns the standard seed pairing for the opening round as
// 0-based seed indexes: for size 8 that is (0,7), (3,4), (2,5), (1,6).
func round1Pairs(bracketSize int) [][2]int {
	seeds := []int{0}
	for len(seeds) < bracketSize {
		grown := make([]int, 0, len(seeds)*2)
		max := len(seeds)*2 - 1
		for _, s := range seeds {
			grown = append(grown, s, max-s)
		}
		seeds = grown
	}

	pairs := make([][2]int, 0, bracketSize/2)
	for i := 0; i < len(seeds); i += 2 {
		pairs = append(pairs, [2]int{seeds[i], seeds[i+1]})
	}
	return pairs
}

// sortByRoundOrder puts matchups in round/seed order: all of round one
// first, in pair order, then round two, and so on up to the final.
func sortByRoundOrder(matchups []models.Matchup) {
	sort.SliceStable(matchups, func(i, j int) bool {
		ri, oi := parseMatchupID(matchups[i].ID)
		rj, oj := parseMatchupID(matchups[j].ID)
		if ri != rj {
			return ri < rj
		}
		return oi < oj
	})
}

func parseMatchupID(id string) (round, order int) {
	fmt.Sscanf(id, "R%dM%d", &round, &order)
	return round, order
}
