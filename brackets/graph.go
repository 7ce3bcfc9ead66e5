package brackets

import "github.com/Ob91190/hud-manager/models"

// Graph is an indexed view over a tournament's matchups. Lookups by matchup
// id and by bound match id are O(1); the returned pointers alias the
// tournament's own slice, so mutations through them are visible on the
// tournament when it is persisted.
type Graph struct {
	byID      map[string]*models.Matchup
	byMatchID map[string]*models.Matchup
}

func NewGraph(t *models.Tournament) *Graph {
	g := &Graph{
		byID:      make(map[string]*models.Matchup, len(t.Matchups)),
		byMatchID: make(map[string]*models.Matchup),
	}
	for i := range t.Matchups {
		m := &t.Matchups[i]
		g.byID[m.ID] = m
		if m.MatchID != nil {
			g.byMatchID[*m.MatchID] = m
		}
	}
	return g
}

// ByID returns the matchup with the given id, or nil.
func (g *Graph) ByID(id string) *models.Matchup {
	return g.byID[id]
}

// ByMatchID returns the matchup bound to the given match id, or nil. At
// most one matchup per tournament carries a given match id; the engine and
// the unique index on the binding enforce that.
func (g *Graph) ByMatchID(matchID string) *models.Matchup {
	return g.byMatchID[matchID]
}

// Downstream resolves the matchup that receives m's winner. A nil result
// means m is the final.
func (g *Graph) Downstream(m *models.Matchup) *models.Matchup {
	if m == nil || m.WinnerTo == nil {
		return nil
	}
	return g.byID[*m.WinnerTo]
}
