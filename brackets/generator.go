package brackets

import (
	"sync"

	"github.com/Ob91190/hud-manager/models"
)

// Generator builds the matchup tree for a tournament with the given number
// of teams. Generators are pure: same input, same output, no I/O.
type Generator func(teams int) []models.Matchup

const FormatSingleElimination = "se"

var (
	registryMu sync.RWMutex
	registry   = map[string]Generator{
		FormatSingleElimination: NewSEBracket,
	}
)

// Register adds or replaces the generator for a format tag.
func Register(format string, gen Generator) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[format] = gen
}

// Generate builds matchups for the given format tag. An unknown tag yields
// an empty list, not an error: callers may create a tournament shell before
// its format is implemented.
func Generate(format string, teams int) []models.Matchup {
	registryMu.RLock()
	gen, ok := registry[format]
	registryMu.RUnlock()
	if !ok {
		return []models.Matchup{}
	}
	return gen(teams)
}
