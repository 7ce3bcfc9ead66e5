package services

import "errors"

// Shared error kinds, mapped to HTTP statuses by the handlers.
var (
	// Not-found family.
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchupNotFound    = errors.New("matchup not found")
	ErrMatchNotFound      = errors.New("match not found")
	// ErrNoDownstreamMatchup: the source matchup is the final, or its
	// winner_to link points nowhere. Nothing further to advance.
	ErrNoDownstreamMatchup = errors.New("no downstream matchup to advance into")

	// ErrMatchNotDecided is the waiting state, not a failure: no side has
	// reached the win threshold yet (an exact tie at the threshold counts
	// as undecided). Callers should treat it as normal flow.
	ErrMatchNotDecided = errors.New("match is not decided yet")

	// ErrSlotConflict means both downstream slots are held by other
	// teams. That only happens when the bracket is corrupted.
	ErrSlotConflict = errors.New("both downstream slots are already taken")

	ErrPersistenceFailed = errors.New("persistence operation failed")

	// Validation.
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrTeamCountInvalid       = errors.New("team count must not be negative")
	ErrLogoStorageDisabled    = errors.New("logo storage is not configured")
)
