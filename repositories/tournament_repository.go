package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Ob91190/hud-manager/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchupNotFound    = errors.New("matchup not found")
	// ErrMatchupAlreadyBound is the losing side of the create-if-absent
	// bind: the matchup picked up a match id between read and write.
	ErrMatchupAlreadyBound = errors.New("matchup already bound to a match")
	ErrMatchIDConflict     = errors.New("match id already bound to another matchup")
)

type TournamentRepository interface {
	List(ctx context.Context) ([]models.Tournament, error)
	Create(ctx context.Context, t *models.Tournament) error
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	// GetByBoundMatchID finds the tournament owning the matchup bound to
	// the given match id. Served by the unique index on matchups.match_id,
	// never by a scan.
	GetByBoundMatchID(ctx context.Context, matchID string) (*models.Tournament, error)
	// Replace writes the tournament row and all matchup bindings as they
	// stand in memory, keyed by id.
	Replace(ctx context.Context, t *models.Tournament) error
	Delete(ctx context.Context, id string) error
	UpdateLogoKey(ctx context.Context, id string, logoKey *string) error
	// BindMatchupIfUnbound sets the matchup's match id only if it has
	// none, in a single conditional update. Returns ErrMatchupAlreadyBound
	// when the condition fails.
	BindMatchupIfUnbound(ctx context.Context, tournamentID, matchupID, matchID string) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) List(ctx context.Context) ([]models.Tournament, error) {
	query := `
		SELECT id, name, auto_create, created_at, logo_key
		FROM tournaments
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	index := make(map[string]int)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(&t.ID, &t.Name, &t.AutoCreate, &t.CreatedAt, &t.LogoKey); scanErr != nil {
			return nil, scanErr
		}
		t.Matchups = []models.Matchup{}
		index[t.ID] = len(tournaments)
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	matchupRows, err := r.db.QueryContext(ctx, `
		SELECT tournament_id, id, match_id, winner_to
		FROM matchups
		ORDER BY tournament_id, position`)
	if err != nil {
		return nil, err
	}
	defer matchupRows.Close()

	for matchupRows.Next() {
		var tournamentID string
		var m models.Matchup
		if scanErr := matchupRows.Scan(&tournamentID, &m.ID, &m.MatchID, &m.WinnerTo); scanErr != nil {
			return nil, scanErr
		}
		if i, ok := index[tournamentID]; ok {
			tournaments[i].Matchups = append(tournaments[i].Matchups, m)
		}
	}
	if err = matchupRows.Err(); err != nil {
		return nil, err
	}

	return tournaments, nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO tournaments (id, name, auto_create, logo_key)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		t.ID, t.Name, t.AutoCreate, t.LogoKey,
	).Scan(&t.CreatedAt)
	if err != nil {
		return handleTournamentError(err)
	}

	if err := insertMatchups(ctx, tx, t.ID, t.Matchups); err != nil {
		return handleTournamentError(err)
	}

	return tx.Commit()
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, auto_create, created_at, logo_key
		FROM tournaments
		WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.AutoCreate, &t.CreatedAt, &t.LogoKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	if t.Matchups, err = r.loadMatchups(ctx, t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) GetByBoundMatchID(ctx context.Context, matchID string) (*models.Tournament, error) {
	var tournamentID string
	err := r.db.QueryRowContext(ctx, `
		SELECT tournament_id FROM matchups WHERE match_id = $1`, matchID,
	).Scan(&tournamentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, tournamentID)
}

func (r *postgresTournamentRepository) Replace(ctx context.Context, t *models.Tournament) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE tournaments SET name = $1, auto_create = $2, logo_key = $3
		WHERE id = $4`,
		t.Name, t.AutoCreate, t.LogoKey, t.ID,
	)
	if err != nil {
		return handleTournamentError(err)
	}
	if err := checkAffectedRows(result, ErrTournamentNotFound); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM matchups WHERE tournament_id = $1`, t.ID); err != nil {
		return err
	}
	if err := insertMatchups(ctx, tx, t.ID, t.Matchups); err != nil {
		return handleTournamentError(err)
	}

	return tx.Commit()
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateLogoKey(ctx context.Context, id string, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE tournaments SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament logo key: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) BindMatchupIfUnbound(ctx context.Context, tournamentID, matchupID, matchID string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE matchups SET match_id = $1
		WHERE tournament_id = $2 AND id = $3 AND match_id IS NULL`,
		matchID, tournamentID, matchupID,
	)
	if err != nil {
		return handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrMatchupAlreadyBound)
}

func (r *postgresTournamentRepository) loadMatchups(ctx context.Context, tournamentID string) ([]models.Matchup, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, match_id, winner_to
		FROM matchups
		WHERE tournament_id = $1
		ORDER BY position`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matchups := make([]models.Matchup, 0)
	for rows.Next() {
		var m models.Matchup
		if scanErr := rows.Scan(&m.ID, &m.MatchID, &m.WinnerTo); scanErr != nil {
			return nil, scanErr
		}
		matchups = append(matchups, m)
	}
	return matchups, rows.Err()
}

func insertMatchups(ctx context.Context, tx *sql.Tx, tournamentID string, matchups []models.Matchup) error {
	for i, m := range matchups {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO matchups (tournament_id, id, position, match_id, winner_to)
			VALUES ($1, $2, $3, $4, $5)`,
			tournamentID, m.ID, i, m.MatchID, m.WinnerTo,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "matchups_match_id_key" {
				return ErrMatchIDConflict
			}
		case "23503":
			return ErrTournamentNotFound
		}
	}
	return err
}
