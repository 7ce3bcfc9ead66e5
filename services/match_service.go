package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ob91190/hud-manager/models"
	"github.com/Ob91190/hud-manager/repositories"
)

type MatchService interface {
	GetByID(ctx context.Context, id string) (*models.Match, error)
	// SetCurrent marks one match as the live one; every other match loses
	// the flag.
	SetCurrent(ctx context.Context, id string) (*models.Match, error)
}

type matchService struct {
	matchRepo repositories.MatchRepository
}

func NewMatchService(matchRepo repositories.MatchRepository) MatchService {
	return &matchService{matchRepo: matchRepo}
}

func (s *matchService) GetByID(ctx context.Context, id string) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("%w: loading match %s: %w", ErrPersistenceFailed, id, err)
	}
	return match, nil
}

func (s *matchService) SetCurrent(ctx context.Context, id string) (*models.Match, error) {
	match, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.matchRepo.ClearCurrent(ctx); err != nil {
		return nil, fmt.Errorf("%w: clearing current flag: %w", ErrPersistenceFailed, err)
	}

	match.Current = true
	if err := s.matchRepo.Update(ctx, match); err != nil {
		return nil, fmt.Errorf("%w: updating match %s: %w", ErrPersistenceFailed, id, err)
	}
	return match, nil
}
