package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Ob91190/hud-manager/brackets"
	"github.com/Ob91190/hud-manager/models"
	"github.com/Ob91190/hud-manager/repositories"
	"github.com/google/uuid"
)

// slotFillAttempts bounds the retry loop around the conditional slot fill.
// Two sides can race at most once each, so three reads always settle it.
const slotFillAttempts = 3

// AdvanceService is the bracket progression engine: it binds matches to
// matchups and moves winners of decided matches into their downstream
// matchup, creating the downstream match on first arrival.
type AdvanceService interface {
	BindMatch(ctx context.Context, matchID, matchupID, tournamentID string) (*models.Tournament, error)
	CreateNextMatch(ctx context.Context, matchID string) (*models.Match, error)
}

type advanceService struct {
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewAdvanceService(
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) AdvanceService {
	return &advanceService{
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		hub:            hub,
		logger:         logger,
	}
}

// BindMatch sets a matchup's bound match id, overwriting any prior value.
// This is an administrative override; the normal advancement path binds
// through the create-if-absent branch of CreateNextMatch instead.
func (s *advanceService) BindMatch(ctx context.Context, matchID, matchupID, tournamentID string) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("%w: loading tournament %s: %w", ErrPersistenceFailed, tournamentID, err)
	}

	graph := brackets.NewGraph(tournament)
	matchup := graph.ByID(matchupID)
	if matchup == nil {
		return nil, ErrMatchupNotFound
	}
	matchup.MatchID = &matchID

	if err := s.tournamentRepo.Replace(ctx, tournament); err != nil {
		return nil, fmt.Errorf("%w: binding match %s to matchup %s: %w", ErrPersistenceFailed, matchID, matchupID, err)
	}

	s.broadcastMatchup(tournament.ID, *matchup)
	return tournament, nil
}

// CreateNextMatch resolves the winner of a decided match and advances it
// into the downstream matchup. The first winner to arrive creates the
// downstream match with an open right slot; the second fills the remaining
// slot. Repeated delivery of the same completion is a no-op.
func (s *advanceService) CreateNextMatch(ctx context.Context, matchID string) (*models.Match, error) {
	tournament, err := s.tournamentRepo.GetByBoundMatchID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrMatchupNotFound
		}
		return nil, fmt.Errorf("%w: reverse lookup for match %s: %w", ErrPersistenceFailed, matchID, err)
	}

	graph := brackets.NewGraph(tournament)
	matchup := graph.ByMatchID(matchID)
	if matchup == nil {
		return nil, ErrMatchupNotFound
	}
	next := graph.Downstream(matchup)
	if next == nil {
		return nil, ErrNoDownstreamMatchup
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("%w: loading match %s: %w", ErrPersistenceFailed, matchID, err)
	}

	winnerID, err := winner(match)
	if err != nil {
		return nil, err
	}

	if next.MatchID == nil {
		created, err := s.createDownstreamMatch(ctx, tournament, next, winnerID)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, repositories.ErrMatchupAlreadyBound) {
			return nil, err
		}
		// Lost the create race: a sibling bound the downstream matchup
		// first. Re-read the binding and fall through to the fill branch.
		nextID := next.ID
		fresh, err := s.tournamentRepo.GetByID(ctx, tournament.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: re-reading tournament %s: %w", ErrPersistenceFailed, tournament.ID, err)
		}
		next = brackets.NewGraph(fresh).ByID(nextID)
		if next == nil || next.MatchID == nil {
			return nil, fmt.Errorf("%w: matchup %s lost its binding", ErrPersistenceFailed, nextID)
		}
	}

	return s.fillDownstreamSlot(ctx, tournament.ID, *next.MatchID, winnerID)
}

// winner resolves the decided side of a match, or reports that the series
// is still in progress. An exact tie at the threshold is a data anomaly
// with no defensible winner, so it reads as undecided too.
func winner(match *models.Match) (string, error) {
	required := match.MatchType.WinsRequired()

	if match.Left.Wins != required && match.Right.Wins != required {
		return "", ErrMatchNotDecided
	}
	if match.Left.Wins == match.Right.Wins {
		return "", ErrMatchNotDecided
	}

	side := match.Left
	if match.Right.Wins > match.Left.Wins {
		side = match.Right
	}
	if side.ID == nil {
		return "", ErrMatchNotDecided
	}
	return *side.ID, nil
}

func (s *advanceService) createDownstreamMatch(ctx context.Context, tournament *models.Tournament, next *models.Matchup, winnerID string) (*models.Match, error) {
	newMatch := &models.Match{
		ID:        uuid.NewString(),
		Current:   false,
		Left:      models.MatchSide{ID: &winnerID},
		Right:     models.MatchSide{},
		MatchType: models.BO1,
		Vetos:     models.InitialVetos(),
	}

	if err := s.matchRepo.Add(ctx, newMatch); err != nil {
		return nil, fmt.Errorf("%w: inserting downstream match: %w", ErrPersistenceFailed, err)
	}

	if err := s.tournamentRepo.BindMatchupIfUnbound(ctx, tournament.ID, next.ID, newMatch.ID); err != nil {
		// The already-bound case belongs to the caller; the inserted
		// match stays unreferenced and harmless.
		if errors.Is(err, repositories.ErrMatchupAlreadyBound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: binding matchup %s: %w", ErrPersistenceFailed, next.ID, err)
	}

	created, err := s.matchRepo.GetByID(ctx, newMatch.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: reloading created match %s: %w", ErrPersistenceFailed, newMatch.ID, err)
	}

	s.logger.Info("downstream match created",
		slog.String("tournament_id", tournament.ID),
		slog.String("matchup_id", next.ID),
		slog.String("match_id", created.ID),
		slog.String("winner_id", winnerID))

	s.broadcastMatchup(tournament.ID, models.Matchup{ID: next.ID, MatchID: &created.ID, WinnerTo: next.WinnerTo})
	s.broadcastMatch(tournament.ID, created)
	return created, nil
}

// fillDownstreamSlot seats the winner in the first open side of the bound
// downstream match. The conditional update loses to a concurrent sibling at
// most once per side, so the loop re-reads and resolves within a bounded
// number of attempts.
func (s *advanceService) fillDownstreamSlot(ctx context.Context, tournamentID, nextMatchID, winnerID string) (*models.Match, error) {
	for attempt := 0; attempt < slotFillAttempts; attempt++ {
		nextMatch, err := s.matchRepo.GetByID(ctx, nextMatchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return nil, ErrMatchNotFound
			}
			return nil, fmt.Errorf("%w: loading downstream match %s: %w", ErrPersistenceFailed, nextMatchID, err)
		}

		// Duplicate delivery: the winner is already seated.
		if sideHolds(nextMatch.Left, winnerID) || sideHolds(nextMatch.Right, winnerID) {
			return nextMatch, nil
		}

		var slot repositories.MatchSlot
		switch {
		case nextMatch.Left.ID == nil:
			slot = repositories.SlotLeft
		case nextMatch.Right.ID == nil:
			slot = repositories.SlotRight
		default:
			return nil, ErrSlotConflict
		}

		err = s.matchRepo.FillSlot(ctx, nextMatchID, slot, winnerID)
		if errors.Is(err, repositories.ErrSlotTaken) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: filling %s slot of match %s: %w", ErrPersistenceFailed, slot, nextMatchID, err)
		}

		updated, err := s.matchRepo.GetByID(ctx, nextMatchID)
		if err != nil {
			return nil, fmt.Errorf("%w: reloading match %s: %w", ErrPersistenceFailed, nextMatchID, err)
		}
		s.logger.Info("winner advanced into downstream match",
			slog.String("tournament_id", tournamentID),
			slog.String("match_id", nextMatchID),
			slog.String("winner_id", winnerID))
		s.broadcastMatch(tournamentID, updated)
		return updated, nil
	}

	return nil, fmt.Errorf("%w: slot fill for match %s did not settle after %d attempts", ErrPersistenceFailed, nextMatchID, slotFillAttempts)
}

func sideHolds(side models.MatchSide, teamID string) bool {
	return side.ID != nil && *side.ID == teamID
}

func (s *advanceService) broadcastMatchup(tournamentID string, matchup models.Matchup) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(tournamentID, brackets.Event{
		Type:         brackets.EventMatchupUpdated,
		Payload:      matchup,
		TournamentID: tournamentID,
	})
}

func (s *advanceService) broadcastMatch(tournamentID string, match *models.Match) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(tournamentID, brackets.Event{
		Type:         brackets.EventMatchUpdated,
		Payload:      match,
		TournamentID: tournamentID,
	})
}
