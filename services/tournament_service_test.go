package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTournamentServiceFixture(t *testing.T) (TournamentService, *matchServiceFixture) {
	t.Helper()
	fx := newMatchServiceFixture(t)
	svc := NewTournamentService(nil, fx.tournaments, fx.matchStore, fx.service)
	return svc, fx
}

func TestTournamentCreate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTournamentServiceFixture(t)

	t.Run("owner creates tournament", func(t *testing.T) {
		tournament, err := svc.Create(ctx, CreateTournamentInput{Name: "Winter Cup"}, ownerActor)
		require.NoError(t, err)
		assert.Equal(t, "Winter Cup", tournament.Name)
		assert.Equal(t, ownerActor.ID, tournament.OwnerID)
	})

	t.Run("player is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateTournamentInput{Name: "Winter Cup"}, playerActor)
		assert.ErrorIs(t, err, ErrForbiddenOperation)
	})

	t.Run("name is required", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateTournamentInput{}, adminActor)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})
}

func TestTournamentGetOverview(t *testing.T) {
	ctx := context.Background()
	svc, fx := newTournamentServiceFixture(t)

	t.Run("returns tournament with its matches", func(t *testing.T) {
		first := fx.createMatch(t, 21)
		second := fx.createMatch(t, 21)

		overview, err := svc.GetOverview(ctx, fx.tournamentID)
		require.NoError(t, err)
		require.NotNil(t, overview.Tournament)
		assert.Equal(t, "Spring Cup", overview.Tournament.Name)
		require.Len(t, overview.Matches, 2)
		assert.Equal(t, first.ID, overview.Matches[0].ID)
		assert.Equal(t, second.ID, overview.Matches[1].ID)
	})

	t.Run("unknown tournament", func(t *testing.T) {
		_, err := svc.GetOverview(ctx, 999)
		assert.ErrorIs(t, err, ErrTournamentNotFound)
	})
}
