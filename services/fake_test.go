package services

import (
	"context"
	"errors"

	"github.com/Ob91190/hud-manager/models"
	"github.com/Ob91190/hud-manager/repositories"
)

// In-memory repository fakes with the same conditional-update semantics as
// the Postgres implementations. Values are deep-copied on the way in and
// out so the engine can only mutate state through repository calls.

type fakeTournamentRepo struct {
	tournaments map[string]*models.Tournament

	failCreate  error
	failReplace error
	failBind    error

	// beforeBind runs ahead of the conditional bind, to stage a
	// concurrent writer winning the race.
	beforeBind func(r *fakeTournamentRepo)
}

func newFakeTournamentRepo(tournaments ...*models.Tournament) *fakeTournamentRepo {
	r := &fakeTournamentRepo{tournaments: make(map[string]*models.Tournament)}
	for _, t := range tournaments {
		r.tournaments[t.ID] = copyTournament(t)
	}
	return r
}

func (r *fakeTournamentRepo) List(ctx context.Context) ([]models.Tournament, error) {
	out := make([]models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		out = append(out, *copyTournament(t))
	}
	return out, nil
}

func (r *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	r.tournaments[t.ID] = copyTournament(t)
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return copyTournament(t), nil
}

func (r *fakeTournamentRepo) GetByBoundMatchID(ctx context.Context, matchID string) (*models.Tournament, error) {
	for _, t := range r.tournaments {
		for _, m := range t.Matchups {
			if m.MatchID != nil && *m.MatchID == matchID {
				return copyTournament(t), nil
			}
		}
	}
	return nil, repositories.ErrTournamentNotFound
}

func (r *fakeTournamentRepo) Replace(ctx context.Context, t *models.Tournament) error {
	if r.failReplace != nil {
		return r.failReplace
	}
	if _, ok := r.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	r.tournaments[t.ID] = copyTournament(t)
	return nil
}

func (r *fakeTournamentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

func (r *fakeTournamentRepo) UpdateLogoKey(ctx context.Context, id string, logoKey *string) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.LogoKey = copyStringPtr(logoKey)
	return nil
}

func (r *fakeTournamentRepo) BindMatchupIfUnbound(ctx context.Context, tournamentID, matchupID, matchID string) error {
	if r.beforeBind != nil {
		hook := r.beforeBind
		r.beforeBind = nil
		hook(r)
	}
	if r.failBind != nil {
		return r.failBind
	}
	t, ok := r.tournaments[tournamentID]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	for i := range t.Matchups {
		if t.Matchups[i].ID != matchupID {
			continue
		}
		if t.Matchups[i].MatchID != nil {
			return repositories.ErrMatchupAlreadyBound
		}
		id := matchID
		t.Matchups[i].MatchID = &id
		return nil
	}
	return repositories.ErrMatchupNotFound
}

// mustBind force-binds a matchup, bypassing the conditional check. Test
// staging only.
func (r *fakeTournamentRepo) mustBind(tournamentID, matchupID, matchID string) {
	t := r.tournaments[tournamentID]
	for i := range t.Matchups {
		if t.Matchups[i].ID == matchupID {
			id := matchID
			t.Matchups[i].MatchID = &id
			return
		}
	}
	panic("mustBind: unknown matchup " + matchupID)
}

type fakeMatchRepo struct {
	matches map[string]*models.Match

	failAdd    error
	failUpdate error

	// beforeFill runs ahead of the conditional slot fill, to stage a
	// concurrent writer winning the race.
	beforeFill func(r *fakeMatchRepo)
}

func newFakeMatchRepo(matches ...*models.Match) *fakeMatchRepo {
	r := &fakeMatchRepo{matches: make(map[string]*models.Match)}
	for _, m := range matches {
		r.matches[m.ID] = copyMatch(m)
	}
	return r
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id string) (*models.Match, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return copyMatch(m), nil
}

func (r *fakeMatchRepo) Add(ctx context.Context, m *models.Match) error {
	if r.failAdd != nil {
		return r.failAdd
	}
	r.matches[m.ID] = copyMatch(m)
	return nil
}

func (r *fakeMatchRepo) Update(ctx context.Context, m *models.Match) error {
	if r.failUpdate != nil {
		return r.failUpdate
	}
	if _, ok := r.matches[m.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	r.matches[m.ID] = copyMatch(m)
	return nil
}

func (r *fakeMatchRepo) FillSlot(ctx context.Context, matchID string, slot repositories.MatchSlot, teamID string) error {
	if r.beforeFill != nil {
		hook := r.beforeFill
		r.beforeFill = nil
		hook(r)
	}
	m, ok := r.matches[matchID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	id := teamID
	switch slot {
	case repositories.SlotLeft:
		if m.Left.ID != nil {
			return repositories.ErrSlotTaken
		}
		m.Left.ID = &id
	case repositories.SlotRight:
		if m.Right.ID != nil {
			return repositories.ErrSlotTaken
		}
		m.Right.ID = &id
	default:
		return errors.New("unknown slot")
	}
	return nil
}

func (r *fakeMatchRepo) ClearCurrent(ctx context.Context) error {
	for _, m := range r.matches {
		m.Current = false
	}
	return nil
}

func copyTournament(t *models.Tournament) *models.Tournament {
	clone := *t
	clone.LogoKey = copyStringPtr(t.LogoKey)
	clone.LogoURL = copyStringPtr(t.LogoURL)
	clone.Matchups = make([]models.Matchup, len(t.Matchups))
	for i, m := range t.Matchups {
		clone.Matchups[i] = models.Matchup{
			ID:       m.ID,
			MatchID:  copyStringPtr(m.MatchID),
			WinnerTo: copyStringPtr(m.WinnerTo),
		}
	}
	return &clone
}

func copyMatch(m *models.Match) *models.Match {
	clone := *m
	clone.Left.ID = copyStringPtr(m.Left.ID)
	clone.Right.ID = copyStringPtr(m.Right.ID)
	clone.Vetos = append([]models.Veto(nil), m.Vetos...)
	return &clone
}

func copyStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
