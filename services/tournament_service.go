package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Adilet09/academy-league/models"
	"github.com/Adilet09/academy-league/repositories"
	"golang.org/x/sync/errgroup"
)

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput, actor models.Actor) (*models.Tournament, error)
	GetOverview(ctx context.Context, tournamentID int) (*TournamentOverview, error)
	Delete(ctx context.Context, tournamentID int, actor models.Actor) error
}

type CreateTournamentInput struct {
	Name string `json:"name"`
}

// TournamentOverview - турнир вместе со всеми его матчами для read-стороны.
type TournamentOverview struct {
	Tournament *models.Tournament `json:"tournament"`
	Matches    []*models.Match    `json:"matches"`
}

type tournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	matchService   MatchService
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	matchService MatchService,
) TournamentService {
	return &tournamentService{
		db:             db,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		matchService:   matchService,
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput, actor models.Actor) (*models.Tournament, error) {
	if actor.Role != models.RoleOwner && actor.Role != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}
	if input.Name == "" {
		return nil, fmt.Errorf("%w: tournament name is required", ErrValidationFailed)
	}

	tournament := &models.Tournament{
		Name:    input.Name,
		OwnerID: actor.ID,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return tournament, nil
}

// GetOverview загружает турнир и его матчи параллельно.
func (s *tournamentService) GetOverview(ctx context.Context, tournamentID int) (*TournamentOverview, error) {
	overview := &TournamentOverview{}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		tournament, err := s.tournamentRepo.GetByID(gCtx, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return fmt.Errorf("failed to fetch tournament %d: %w", tournamentID, err)
		}
		overview.Tournament = tournament
		return nil
	})

	g.Go(func() error {
		matches, err := s.matchService.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return err
		}
		overview.Matches = matches
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return overview, nil
}

// Delete удаляет турнир вместе с матчами в одной транзакции.
// Это единственный путь, которым исчезает завершённый матч.
func (s *tournamentService) Delete(ctx context.Context, tournamentID int, actor models.Actor) error {
	if actor.Role != models.RoleOwner && actor.Role != models.RoleAdmin {
		return ErrForbiddenOperation
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.matchRepo.DeleteByTournament(ctx, tx, tournamentID); err != nil {
		return err
	}
	if err := s.tournamentRepo.Delete(ctx, tx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tournament deletion: %w", err)
	}
	return nil
}
