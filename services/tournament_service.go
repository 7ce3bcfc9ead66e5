package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Ob91190/hud-manager/brackets"
	"github.com/Ob91190/hud-manager/models"
	"github.com/Ob91190/hud-manager/repositories"
	"github.com/Ob91190/hud-manager/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type CreateTournamentInput struct {
	Name       string `json:"name"`
	Format     string `json:"format"`
	Teams      int    `json:"teams"`
	AutoCreate *bool  `json:"autoCreate,omitempty"`
}

// TournamentData bundles a tournament with the matches its matchups are
// bound to, keyed by match id. It is what a bracket renderer needs in one
// round trip.
type TournamentData struct {
	Tournament *models.Tournament       `json:"tournament"`
	Matches    map[string]*models.Match `json:"matches"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	GetData(ctx context.Context, id string) (*TournamentData, error)
	List(ctx context.Context) ([]models.Tournament, error)
	Delete(ctx context.Context, id string) error
	UploadLogo(ctx context.Context, id, contentType string, logo io.Reader) (*models.Tournament, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, ErrTournamentNameRequired
	}
	if input.Teams < 0 {
		return nil, ErrTeamCountInvalid
	}

	autoCreate := true
	if input.AutoCreate != nil {
		autoCreate = *input.AutoCreate
	}

	tournament := &models.Tournament{
		ID:         uuid.NewString(),
		Name:       input.Name,
		AutoCreate: autoCreate,
		Matchups:   brackets.Generate(input.Format, input.Teams),
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, fmt.Errorf("%w: creating tournament: %w", ErrPersistenceFailed, err)
	}

	s.logger.Info("tournament created",
		slog.String("tournament_id", tournament.ID),
		slog.String("format", input.Format),
		slog.Int("teams", input.Teams),
		slog.Int("matchups", len(tournament.Matchups)))

	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("%w: loading tournament %s: %w", ErrPersistenceFailed, id, err)
	}
	s.resolveLogoURL(tournament)
	return tournament, nil
}

// GetData loads a tournament and every match its matchups are bound to.
// The match fetches run in parallel; a matchup whose match has vanished is
// skipped rather than failing the whole bracket.
func (s *tournamentService) GetData(ctx context.Context, id string) (*TournamentData, error) {
	tournament, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	matches := make(map[string]*models.Match)
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	for _, matchup := range tournament.Matchups {
		if matchup.MatchID == nil {
			continue
		}
		matchID := *matchup.MatchID
		g.Go(func() error {
			match, err := s.matchRepo.GetByID(gCtx, matchID)
			if err != nil {
				if errors.Is(err, repositories.ErrMatchNotFound) {
					s.logger.Warn("matchup bound to missing match",
						slog.String("tournament_id", id),
						slog.String("match_id", matchID))
					return nil
				}
				return err
			}
			mu.Lock()
			matches[matchID] = match
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: loading matches for tournament %s: %w", ErrPersistenceFailed, id, err)
	}

	return &TournamentData{Tournament: tournament, Matches: matches}, nil
}

func (s *tournamentService) List(ctx context.Context) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing tournaments: %w", ErrPersistenceFailed, err)
	}
	for i := range tournaments {
		s.resolveLogoURL(&tournaments[i])
	}
	return tournaments, nil
}

func (s *tournamentService) Delete(ctx context.Context, id string) error {
	tournament, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("%w: deleting tournament %s: %w", ErrPersistenceFailed, id, err)
	}

	if s.uploader != nil && tournament.LogoKey != nil {
		if err := s.uploader.Delete(ctx, *tournament.LogoKey); err != nil {
			s.logger.Warn("failed to delete tournament logo",
				slog.String("tournament_id", id),
				slog.String("logo_key", *tournament.LogoKey),
				slog.Any("error", err))
		}
	}
	return nil
}

func (s *tournamentService) UploadLogo(ctx context.Context, id, contentType string, logo io.Reader) (*models.Tournament, error) {
	if s.uploader == nil {
		return nil, ErrLogoStorageDisabled
	}

	tournament, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("tournaments/%s/logo", id)
	result, err := s.uploader.Upload(ctx, key, contentType, logo)
	if err != nil {
		return nil, fmt.Errorf("%w: uploading logo for tournament %s: %w", ErrPersistenceFailed, id, err)
	}

	if err := s.tournamentRepo.UpdateLogoKey(ctx, id, &result.Key); err != nil {
		return nil, fmt.Errorf("%w: saving logo key for tournament %s: %w", ErrPersistenceFailed, id, err)
	}

	tournament.LogoKey = &result.Key
	s.resolveLogoURL(tournament)
	return tournament, nil
}

func (s *tournamentService) resolveLogoURL(t *models.Tournament) {
	if s.uploader == nil || t.LogoKey == nil {
		return
	}
	url := s.uploader.GetPublicURL(*t.LogoKey)
	if url != "" {
		t.LogoURL = &url
	}
}
