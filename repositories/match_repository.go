package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Adilet09/academy-league/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchVersionConflict   = errors.New("match version conflict")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
	ErrMatchRefereeInvalid    = errors.New("match referee conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, status *models.MatchStatus) ([]*models.Match, error)
	// Update записывает агрегат целиком с проверкой ожидаемой версии.
	// При несовпадении версии возвращает ErrMatchVersionConflict,
	// при успехе инкрементирует match.Version.
	Update(ctx context.Context, match *models.Match, expectedVersion int) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tournament_id, match_number, round,
	       team1_name, team1_score, team2_name, team2_score,
	       target_score, status, winner, referee_id, score_history, version, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	historyJSON, err := json.Marshal(match.ScoreHistory)
	if err != nil {
		return fmt.Errorf("failed to marshal score history: %w", err)
	}

	query := `
		INSERT INTO matches
			(tournament_id, match_number, round,
			 team1_name, team1_score, team2_name, team2_score,
			 target_score, status, winner, referee_id, score_history, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 1)
		RETURNING id, version, created_at`

	err = exec.QueryRowContext(ctx, query,
		match.TournamentID,
		match.MatchNumber,
		match.Round,
		match.Team1.Name,
		match.Team1.Score,
		match.Team2.Name,
		match.Team2.Score,
		match.TargetScore,
		match.Status,
		match.Winner,
		match.RefereeID,
		historyJSON,
	).Scan(&match.ID, &match.Version, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match, err := r.scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int, statusFilter *models.MatchStatus) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	if statusFilter != nil {
		queryBuilder.WriteString(" AND status = $" + strconv.Itoa(len(args)+1))
		args = append(args, *statusFilter)
	}
	queryBuilder.WriteString(" ORDER BY round ASC, match_number ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := r.scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, match *models.Match, expectedVersion int) error {
	historyJSON, err := json.Marshal(match.ScoreHistory)
	if err != nil {
		return fmt.Errorf("failed to marshal score history: %w", err)
	}

	// Запись проходит только если версия в БД совпала с ожидаемой.
	query := `
		UPDATE matches
		SET team1_score = $1, team2_score = $2, status = $3, winner = $4,
		    referee_id = $5, score_history = $6, version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version`

	var newVersion int
	err = r.db.QueryRowContext(ctx, query,
		match.Team1.Score,
		match.Team2.Score,
		match.Status,
		match.Winner,
		match.RefereeID,
		historyJSON,
		match.ID,
		expectedVersion,
	).Scan(&newVersion)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Либо матча нет, либо версия устарела - различаем отдельным запросом.
			var exists bool
			checkErr := r.db.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM matches WHERE id = $1)`, match.ID,
			).Scan(&exists)
			if checkErr != nil {
				return fmt.Errorf("failed to check match %d existence: %w", match.ID, checkErr)
			}
			if !exists {
				return ErrMatchNotFound
			}
			return ErrMatchVersionConflict
		}
		return r.handleMatchError(err)
	}

	match.Version = newVersion
	return nil
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	query := `DELETE FROM matches WHERE tournament_id = $1`
	// Ноль удалённых строк - не ошибка: у турнира могло не быть матчей.
	if _, err := exec.ExecContext(ctx, query, tournamentID); err != nil {
		return fmt.Errorf("failed to delete matches for tournament %d: %w", tournamentID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *postgresMatchRepository) scanMatch(row rowScanner) (*models.Match, error) {
	match := &models.Match{}
	var historyJSON []byte

	err := row.Scan(
		&match.ID,
		&match.TournamentID,
		&match.MatchNumber,
		&match.Round,
		&match.Team1.Name,
		&match.Team1.Score,
		&match.Team2.Name,
		&match.Team2.Score,
		&match.TargetScore,
		&match.Status,
		&match.Winner,
		&match.RefereeID,
		&historyJSON,
		&match.Version,
		&match.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	match.ScoreHistory = make([]models.ScoreEvent, 0)
	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &match.ScoreHistory); err != nil {
			return nil, fmt.Errorf("failed to unmarshal score history for match %d: %w", match.ID, err)
		}
	}
	return match, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		// "23503": foreign_key_violation
		switch pqErr.Constraint {
		case "matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "matches_referee_id_fkey":
			return ErrMatchRefereeInvalid
		}
	}
	return err
}
