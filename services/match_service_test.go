package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ob91190/hud-manager/models"
)

func TestMatchService_SetCurrent(t *testing.T) {
	old := decidedMatch("old", "team-a", "team-b", 1, 0, models.BO1)
	old.Current = true
	mr := newFakeMatchRepo(
		old,
		decidedMatch("next", "team-c", "team-d", 0, 0, models.BO1),
	)

	svc := NewMatchService(mr)
	updated, err := svc.SetCurrent(context.Background(), "next")
	require.NoError(t, err)
	assert.True(t, updated.Current)

	previous, err := svc.GetByID(context.Background(), "old")
	require.NoError(t, err)
	assert.False(t, previous.Current, "only one match carries the current flag")
}

func TestMatchService_GetByID_NotFound(t *testing.T) {
	svc := NewMatchService(newFakeMatchRepo())
	_, err := svc.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrMatchNotFound)
}
