package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Ob91190/hud-manager/models"
)

var (
	ErrMatchNotFound = errors.New("match not found")
	// ErrSlotTaken is the losing side of the conditional slot fill: the
	// side picked up a team id between read and write.
	ErrSlotTaken = errors.New("match slot already taken")
)

// MatchSlot names one side of a match for conditional slot fills.
type MatchSlot string

const (
	SlotLeft  MatchSlot = "left"
	SlotRight MatchSlot = "right"
)

type MatchRepository interface {
	GetByID(ctx context.Context, id string) (*models.Match, error)
	Add(ctx context.Context, m *models.Match) error
	Update(ctx context.Context, m *models.Match) error
	// FillSlot assigns a team to one side only if that side is still
	// empty, in a single conditional update. Returns ErrSlotTaken when the
	// condition fails.
	FillSlot(ctx context.Context, matchID string, slot MatchSlot, teamID string) error
	// ClearCurrent drops the live flag from every match.
	ClearCurrent(ctx context.Context) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	m := &models.Match{}
	var vetos []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT id, current, left_id, left_wins, right_id, right_wins, match_type, vetos
		FROM matches
		WHERE id = $1`, id,
	).Scan(&m.ID, &m.Current, &m.Left.ID, &m.Left.Wins, &m.Right.ID, &m.Right.Wins, &m.MatchType, &vetos)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(vetos, &m.Vetos); err != nil {
		return nil, fmt.Errorf("failed to decode vetos for match %s: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) Add(ctx context.Context, m *models.Match) error {
	vetos, err := json.Marshal(m.Vetos)
	if err != nil {
		return fmt.Errorf("failed to encode vetos: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO matches (id, current, left_id, left_wins, right_id, right_wins, match_type, vetos)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.Current, m.Left.ID, m.Left.Wins, m.Right.ID, m.Right.Wins, m.MatchType, vetos,
	)
	return err
}

func (r *postgresMatchRepository) Update(ctx context.Context, m *models.Match) error {
	vetos, err := json.Marshal(m.Vetos)
	if err != nil {
		return fmt.Errorf("failed to encode vetos: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE matches SET
			current = $1,
			left_id = $2,
			left_wins = $3,
			right_id = $4,
			right_wins = $5,
			match_type = $6,
			vetos = $7
		WHERE id = $8`,
		m.Current, m.Left.ID, m.Left.Wins, m.Right.ID, m.Right.Wins, m.MatchType, vetos, m.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) FillSlot(ctx context.Context, matchID string, slot MatchSlot, teamID string) error {
	var query string
	switch slot {
	case SlotLeft:
		query = `UPDATE matches SET left_id = $1 WHERE id = $2 AND left_id IS NULL`
	case SlotRight:
		query = `UPDATE matches SET right_id = $1 WHERE id = $2 AND right_id IS NULL`
	default:
		return fmt.Errorf("unknown match slot %q", slot)
	}

	result, err := r.db.ExecContext(ctx, query, teamID, matchID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSlotTaken)
}

func (r *postgresMatchRepository) ClearCurrent(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `UPDATE matches SET current = FALSE WHERE current`)
	return err
}
