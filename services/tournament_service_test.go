package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ob91190/hud-manager/brackets"
	"github.com/Ob91190/hud-manager/models"
	"github.com/Ob91190/hud-manager/storage"
)

type fakeUploader struct {
	uploaded map[string][]byte
	deleted  []string
	baseURL  string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploaded: make(map[string][]byte), baseURL: "https://cdn.test"}
}

func (u *fakeUploader) Upload(ctx context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.uploaded[key] = data
	return &storage.UploadResult{Key: key, Location: u.baseURL + "/" + key}, nil
}

func (u *fakeUploader) Delete(ctx context.Context, key string) error {
	u.deleted = append(u.deleted, key)
	delete(u.uploaded, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return u.baseURL + "/" + key
}

func newTestTournamentService(tr *fakeTournamentRepo, mr *fakeMatchRepo, uploader storage.FileUploader) TournamentService {
	return NewTournamentService(tr, mr, uploader, testLogger())
}

func TestTournamentService_Create(t *testing.T) {
	t.Run("single elimination bracket", func(t *testing.T) {
		tr := newFakeTournamentRepo()
		svc := newTestTournamentService(tr, newFakeMatchRepo(), nil)

		tournament, err := svc.Create(context.Background(), CreateTournamentInput{
			Name:   "Spring Cup",
			Format: brackets.FormatSingleElimination,
			Teams:  8,
		})
		require.NoError(t, err)

		assert.NotEmpty(t, tournament.ID)
		assert.Equal(t, "Spring Cup", tournament.Name)
		assert.True(t, tournament.AutoCreate)
		assert.Len(t, tournament.Matchups, 7)

		stored, err := svc.GetByID(context.Background(), tournament.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Matchups, 7)
	})

	t.Run("autoCreate can be disabled", func(t *testing.T) {
		svc := newTestTournamentService(newFakeTournamentRepo(), newFakeMatchRepo(), nil)
		off := false

		tournament, err := svc.Create(context.Background(), CreateTournamentInput{
			Name:       "Manual Cup",
			Format:     brackets.FormatSingleElimination,
			Teams:      4,
			AutoCreate: &off,
		})
		require.NoError(t, err)
		assert.False(t, tournament.AutoCreate)
	})

	t.Run("unknown format yields an empty bracket", func(t *testing.T) {
		svc := newTestTournamentService(newFakeTournamentRepo(), newFakeMatchRepo(), nil)

		tournament, err := svc.Create(context.Background(), CreateTournamentInput{
			Name:   "Oddball",
			Format: "triple-elimination",
			Teams:  8,
		})
		require.NoError(t, err)
		assert.NotNil(t, tournament.Matchups)
		assert.Empty(t, tournament.Matchups)
	})

	t.Run("name is required", func(t *testing.T) {
		svc := newTestTournamentService(newFakeTournamentRepo(), newFakeMatchRepo(), nil)
		_, err := svc.Create(context.Background(), CreateTournamentInput{Format: "se", Teams: 8})
		assert.ErrorIs(t, err, ErrTournamentNameRequired)
	})

	t.Run("negative team count", func(t *testing.T) {
		svc := newTestTournamentService(newFakeTournamentRepo(), newFakeMatchRepo(), nil)
		_, err := svc.Create(context.Background(), CreateTournamentInput{Name: "x", Format: "se", Teams: -1})
		assert.ErrorIs(t, err, ErrTeamCountInvalid)
	})
}

func TestTournamentService_GetData(t *testing.T) {
	tr := newFakeTournamentRepo(fourTeamTournament())
	mr := newFakeMatchRepo(
		decidedMatch("m1", "team-a", "team-b", 1, 0, models.BO1),
		decidedMatch("m2", "team-c", "team-d", 0, 1, models.BO1),
	)
	tr.mustBind("t1", "R1M1", "m1")
	tr.mustBind("t1", "R1M2", "m2")
	tr.mustBind("t1", "R2M1", "gone")

	svc := newTestTournamentService(tr, mr, nil)
	data, err := svc.GetData(context.Background(), "t1")
	require.NoError(t, err)

	assert.Equal(t, "t1", data.Tournament.ID)
	require.Len(t, data.Matches, 2, "vanished match is skipped, not fatal")
	assert.Contains(t, data.Matches, "m1")
	assert.Contains(t, data.Matches, "m2")

	_, err = svc.GetData(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestTournamentService_Delete(t *testing.T) {
	tr := newFakeTournamentRepo(fourTeamTournament())
	uploader := newFakeUploader()
	key := "tournaments/t1/logo"
	require.NoError(t, tr.UpdateLogoKey(context.Background(), "t1", &key))

	svc := newTestTournamentService(tr, newFakeMatchRepo(), uploader)
	require.NoError(t, svc.Delete(context.Background(), "t1"))

	_, err := svc.GetByID(context.Background(), "t1")
	assert.ErrorIs(t, err, ErrTournamentNotFound)
	assert.Equal(t, []string{key}, uploader.deleted)

	assert.ErrorIs(t, svc.Delete(context.Background(), "t1"), ErrTournamentNotFound)
}

func TestTournamentService_UploadLogo(t *testing.T) {
	t.Run("stores the logo and resolves its URL", func(t *testing.T) {
		tr := newFakeTournamentRepo(fourTeamTournament())
		uploader := newFakeUploader()
		svc := newTestTournamentService(tr, newFakeMatchRepo(), uploader)

		logo := bytes.NewBufferString("png-bytes")
		tournament, err := svc.UploadLogo(context.Background(), "t1", "image/png", logo)
		require.NoError(t, err)

		require.NotNil(t, tournament.LogoURL)
		assert.True(t, strings.HasSuffix(*tournament.LogoURL, "tournaments/t1/logo"))
		assert.Contains(t, uploader.uploaded, "tournaments/t1/logo")
	})

	t.Run("disabled without object storage", func(t *testing.T) {
		svc := newTestTournamentService(newFakeTournamentRepo(), newFakeMatchRepo(), nil)
		_, err := svc.UploadLogo(context.Background(), "t1", "image/png", strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrLogoStorageDisabled)
	})
}
