package models

import "time"

// Tournament is a bracket: an ordered list of matchups in round/seed order.
// The order matters for rendering, not for correctness.
type Tournament struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	AutoCreate bool      `json:"autoCreate"`
	Matchups   []Matchup `json:"matchups"`
	CreatedAt  time.Time `json:"created_at"`

	LogoKey *string `json:"-"`
	LogoURL *string `json:"logo_url,omitempty"`
}

// Matchup is a node in the bracket tree. It exists before any match is
// played: MatchID stays nil until a match is created or explicitly bound,
// and WinnerTo names the matchup that receives this matchup's winner.
// The final is the one matchup with a nil WinnerTo.
type Matchup struct {
	ID       string  `json:"id"`
	MatchID  *string `json:"matchId,omitempty"`
	WinnerTo *string `json:"winner_to,omitempty"`
}
