package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Adilet09/academy-league/middleware"
	"github.com/Adilet09/academy-league/models"
	"github.com/Adilet09/academy-league/services"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJWTSecret = []byte("test-secret")

type stubMatchService struct {
	recordPointFn   func(ctx context.Context, matchID int, team models.TeamSelector, actor models.Actor) (*models.Match, error)
	assignRefereeFn func(ctx context.Context, matchID int, input services.AssignRefereeInput, actor models.Actor) (*models.Match, error)
}

func (s *stubMatchService) Create(ctx context.Context, tournamentID int, input services.CreateMatchInput, actor models.Actor) (*models.Match, error) {
	panic("not implemented")
}

func (s *stubMatchService) GetByID(ctx context.Context, matchID int) (*models.Match, error) {
	panic("not implemented")
}

func (s *stubMatchService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	panic("not implemented")
}

func (s *stubMatchService) RecordPoint(ctx context.Context, matchID int, team models.TeamSelector, actor models.Actor) (*models.Match, error) {
	return s.recordPointFn(ctx, matchID, team, actor)
}

func (s *stubMatchService) SetResult(ctx context.Context, matchID int, input services.SetResultInput, actor models.Actor) (*models.Match, error) {
	panic("not implemented")
}

func (s *stubMatchService) AssignReferee(ctx context.Context, matchID int, input services.AssignRefereeInput, actor models.Actor) (*models.Match, error) {
	return s.assignRefereeFn(ctx, matchID, input, actor)
}

func signTestToken(t *testing.T, userID int, role models.UserRole) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"exp":     time.Now().Add(time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testJWTSecret)
	require.NoError(t, err)
	return token
}

func newMatchRouter(stub *stubMatchService) *chi.Mux {
	h := NewMatchHandler(stub)
	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(testJWTSecret))
		r.Put("/matches/{matchID}/score", h.RecordPointHandler)
		r.Put("/matches/{matchID}/referee", h.AssignRefereeHandler)
	})
	return router
}

func doRequest(t *testing.T, router http.Handler, method, url, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, url, bytes.NewBufferString(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAssignRefereeHandlerThreeWayBody(t *testing.T) {
	dummy := &models.Match{ID: 10, TournamentID: 1, Status: models.MatchStatusPending}
	token := signTestToken(t, 2, models.RoleAdmin)

	t.Run("absent field means no change", func(t *testing.T) {
		var captured services.AssignRefereeInput
		stub := &stubMatchService{
			assignRefereeFn: func(_ context.Context, _ int, input services.AssignRefereeInput, _ models.Actor) (*models.Match, error) {
				captured = input
				return dummy, nil
			},
		}
		rec := doRequest(t, newMatchRouter(stub), http.MethodPut, "/matches/10/referee", `{}`, token)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, captured.Provided)
		assert.Nil(t, captured.RefereeID)
	})

	t.Run("explicit null clears the referee", func(t *testing.T) {
		var captured services.AssignRefereeInput
		stub := &stubMatchService{
			assignRefereeFn: func(_ context.Context, _ int, input services.AssignRefereeInput, _ models.Actor) (*models.Match, error) {
				captured = input
				return dummy, nil
			},
		}
		rec := doRequest(t, newMatchRouter(stub), http.MethodPut, "/matches/10/referee", `{"referee_id": null}`, token)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, captured.Provided)
		assert.Nil(t, captured.RefereeID)
	})

	t.Run("id sets the referee", func(t *testing.T) {
		var captured services.AssignRefereeInput
		stub := &stubMatchService{
			assignRefereeFn: func(_ context.Context, _ int, input services.AssignRefereeInput, _ models.Actor) (*models.Match, error) {
				captured = input
				return dummy, nil
			},
		}
		rec := doRequest(t, newMatchRouter(stub), http.MethodPut, "/matches/10/referee", `{"referee_id": 7}`, token)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, captured.Provided)
		require.NotNil(t, captured.RefereeID)
		assert.Equal(t, 7, *captured.RefereeID)
	})

	t.Run("non-integer referee_id is a bad request", func(t *testing.T) {
		stub := &stubMatchService{
			assignRefereeFn: func(_ context.Context, _ int, _ services.AssignRefereeInput, _ models.Actor) (*models.Match, error) {
				t.Fatal("service must not be called on invalid body")
				return nil, nil
			},
		}
		rec := doRequest(t, newMatchRouter(stub), http.MethodPut, "/matches/10/referee", `{"referee_id": "abc"}`, token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing token is unauthorized", func(t *testing.T) {
		stub := &stubMatchService{}
		rec := doRequest(t, newMatchRouter(stub), http.MethodPut, "/matches/10/referee", `{}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRecordPointHandlerErrorMapping(t *testing.T) {
	token := signTestToken(t, 42, models.RoleReferee)

	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"completed match", services.ErrMatchAlreadyCompleted, http.StatusBadRequest},
		{"not authorized", services.ErrForbiddenOperation, http.StatusForbidden},
		{"not found", services.ErrMatchNotFound, http.StatusNotFound},
		{"version conflict", services.ErrMatchVersionConflict, http.StatusConflict},
		{"store unavailable", services.ErrServiceUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubMatchService{
				recordPointFn: func(_ context.Context, _ int, _ models.TeamSelector, _ models.Actor) (*models.Match, error) {
					return nil, tt.serviceErr
				},
			}
			rec := doRequest(t, newMatchRouter(stub), http.MethodPut, "/matches/10/score", `{"team": "team1"}`, token)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRecordPointHandlerPassesActorAndTeam(t *testing.T) {
	token := signTestToken(t, 42, models.RoleReferee)

	var gotMatchID int
	var gotTeam models.TeamSelector
	var gotActor models.Actor
	stub := &stubMatchService{
		recordPointFn: func(_ context.Context, matchID int, team models.TeamSelector, actor models.Actor) (*models.Match, error) {
			gotMatchID = matchID
			gotTeam = team
			gotActor = actor
			return &models.Match{ID: matchID}, nil
		},
	}

	rec := doRequest(t, newMatchRouter(stub), http.MethodPut, "/matches/15/score", `{"team": "team2"}`, token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 15, gotMatchID)
	assert.Equal(t, models.TeamTwo, gotTeam)
	assert.Equal(t, models.Actor{ID: 42, Role: models.RoleReferee}, gotActor)
}
