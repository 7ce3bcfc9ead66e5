package models

// BOType is the best-of format of a series.
type BOType string

const (
	BO1 BOType = "bo1"
	BO3 BOType = "bo3"
	BO5 BOType = "bo5"
)

// WinsRequired returns the number of map wins that decides a series of
// this format. Unrecognized formats fall back to 2.
func (t BOType) WinsRequired() int {
	switch t {
	case BO1:
		return 1
	case BO3:
		return 2
	case BO5:
		return 3
	default:
		return 2
	}
}

// MatchSide holds one slot of a match. ID is nil while the slot is still
// waiting for a winner from an upstream matchup (a TBD slot).
type MatchSide struct {
	ID   *string `json:"id"`
	Wins int     `json:"wins"`
}

type Match struct {
	ID        string    `json:"id"`
	Current   bool      `json:"current"`
	Left      MatchSide `json:"left"`
	Right     MatchSide `json:"right"`
	MatchType BOType    `json:"matchType"`
	Vetos     []Veto    `json:"vetos"`
}
