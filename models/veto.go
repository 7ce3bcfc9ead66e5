package models

type VetoSide string

const (
	VetoSideCT   VetoSide = "CT"
	VetoSideT    VetoSide = "T"
	VetoSideNone VetoSide = "NO"
)

type VetoType string

const (
	VetoPick    VetoType = "pick"
	VetoBan     VetoType = "ban"
	VetoDecider VetoType = "decider"
)

// Veto is one step of a map selection sequence.
type Veto struct {
	TeamID      string   `json:"teamId"`
	MapName     string   `json:"mapName"`
	Side        VetoSide `json:"side"`
	Type        VetoType `json:"type"`
	MapEnd      bool     `json:"mapEnd"`
	ReverseSide bool     `json:"reverseSide"`
}

// InitialVetoCount is tied to the size of the supported map pool, not to
// the match format.
const InitialVetoCount = 7

// InitialVetos returns the placeholder veto sequence for a newly created
// match. Every step is empty and waits for the map selection workflow.
func InitialVetos() []Veto {
	vetos := make([]Veto, InitialVetoCount)
	for i := range vetos {
		vetos[i] = Veto{
			Side: VetoSideNone,
			Type: VetoPick,
		}
	}
	return vetos
}
