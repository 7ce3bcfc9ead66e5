package brackets

import (
	"testing"

	"github.com/Ob91190/hud-manager/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func graphFixture() *models.Tournament {
	final := "R2M1"
	boundMatch := "match-1"
	return &models.Tournament{
		ID: "t1",
		Matchups: []models.Matchup{
			{ID: "R1M1", MatchID: &boundMatch, WinnerTo: &final},
			{ID: "R1M2", WinnerTo: &final},
			{ID: "R2M1"},
		},
	}
}

func TestGraph_ByID(t *testing.T) {
	g := NewGraph(graphFixture())

	require.NotNil(t, g.ByID("R1M2"))
	assert.Equal(t, "R1M2", g.ByID("R1M2").ID)
	assert.Nil(t, g.ByID("R9M9"))
}

func TestGraph_ByMatchID(t *testing.T) {
	g := NewGraph(graphFixture())

	m := g.ByMatchID("match-1")
	require.NotNil(t, m)
	assert.Equal(t, "R1M1", m.ID)
	assert.Nil(t, g.ByMatchID("match-2"))
}

func TestGraph_Downstream(t *testing.T) {
	g := NewGraph(graphFixture())

	next := g.Downstream(g.ByID("R1M1"))
	require.NotNil(t, next)
	assert.Equal(t, "R2M1", next.ID)

	assert.Nil(t, g.Downstream(g.ByID("R2M1")), "final has no downstream")
	assert.Nil(t, g.Downstream(nil))
}

func TestGraph_MutationVisibleOnTournament(t *testing.T) {
	tournament := graphFixture()
	g := NewGraph(tournament)

	matchID := "match-2"
	g.ByID("R2M1").MatchID = &matchID

	require.NotNil(t, tournament.Matchups[2].MatchID)
	assert.Equal(t, "match-2", *tournament.Matchups[2].MatchID)
}
