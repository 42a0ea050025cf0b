package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Adilet09/academy-league/live"
	"github.com/Adilet09/academy-league/models"
	"github.com/Adilet09/academy-league/policy"
	"github.com/Adilet09/academy-league/repositories"
)

// recordPointMaxAttempts ограничивает цикл перечитать-применить-записать
// при конфликте версий. Каждый повтор начинается с чтения актуального
// состояния, так что двойной инкремент от одного вызова невозможен.
const recordPointMaxAttempts = 3

type MatchService interface {
	Create(ctx context.Context, tournamentID int, input CreateMatchInput, actor models.Actor) (*models.Match, error)
	GetByID(ctx context.Context, matchID int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	RecordPoint(ctx context.Context, matchID int, team models.TeamSelector, actor models.Actor) (*models.Match, error)
	SetResult(ctx context.Context, matchID int, input SetResultInput, actor models.Actor) (*models.Match, error)
	AssignReferee(ctx context.Context, matchID int, input AssignRefereeInput, actor models.Actor) (*models.Match, error)
}

type CreateMatchInput struct {
	MatchNumber int    `json:"match_number"`
	Round       int    `json:"round"`
	Team1Name   string `json:"team1_name"`
	Team2Name   string `json:"team2_name"`
	TargetScore int    `json:"target_score"`
}

// SetResultInput - административная корректировка результата.
// nil-поле означает "не менять".
type SetResultInput struct {
	Status *models.MatchStatus  `json:"status"`
	Winner *models.TeamSelector `json:"winner"`
}

// AssignRefereeInput различает три случая: поле не передано (Provided=false,
// ничего не менять), передан явный null (Provided=true, RefereeID=nil, снять
// судью) и передан id (назначить).
type AssignRefereeInput struct {
	Provided  bool
	RefereeID *int
}

// LiveBroadcaster - то, что сервису нужно от websocket-хаба.
type LiveBroadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

type matchService struct {
	db             *sql.DB
	matchRepo      repositories.MatchRepository
	userRepo       repositories.UserRepository
	tournamentRepo repositories.TournamentRepository
	hub            LiveBroadcaster
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	userRepo repositories.UserRepository,
	tournamentRepo repositories.TournamentRepository,
	hub LiveBroadcaster,
) MatchService {
	return &matchService{
		db:             db,
		matchRepo:      matchRepo,
		userRepo:       userRepo,
		tournamentRepo: tournamentRepo,
		hub:            hub,
	}
}

func (s *matchService) Create(ctx context.Context, tournamentID int, input CreateMatchInput, actor models.Actor) (*models.Match, error) {
	if !policy.CanMutate(actor, nil, policy.ActionCreateMatch) {
		return nil, ErrForbiddenOperation
	}
	// targetScore == 0 означал бы матч, завершённый до первого очка.
	if input.TargetScore < 1 {
		return nil, ErrInvalidTargetScore
	}
	if input.Team1Name == "" || input.Team2Name == "" {
		return nil, ErrTeamNamesRequired
	}

	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, s.collaboratorError("fetch tournament", err)
	}

	match := &models.Match{
		TournamentID: tournamentID,
		MatchNumber:  input.MatchNumber,
		Round:        input.Round,
		Team1:        models.TeamSlot{Name: input.Team1Name},
		Team2:        models.TeamSlot{Name: input.Team2Name},
		TargetScore:  input.TargetScore,
		Status:       models.MatchStatusPending,
		ScoreHistory: []models.ScoreEvent{},
	}

	if err := s.matchRepo.Create(ctx, s.db, match); err != nil {
		if errors.Is(err, repositories.ErrMatchTournamentInvalid) {
			return nil, ErrTournamentNotFound
		}
		return nil, s.collaboratorError("create match", err)
	}
	return match, nil
}

func (s *matchService) GetByID(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	s.populateReferee(ctx, match)
	return match, nil
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID, nil)
	if err != nil {
		return nil, s.collaboratorError(fmt.Sprintf("list matches for tournament %d", tournamentID), err)
	}
	for _, match := range matches {
		s.populateReferee(ctx, match)
	}
	return matches, nil
}

// RecordPoint - единственный путь изменения счёта. Конфликт версий
// разрешается повторным чтением: терминальность и авторизация
// перепроверяются на каждой попытке, фиксируется ровно один инкремент.
func (s *matchService) RecordPoint(ctx context.Context, matchID int, team models.TeamSelector, actor models.Actor) (*models.Match, error) {
	if !team.Valid() {
		return nil, ErrInvalidTeamSelector
	}

	for attempt := 1; ; attempt++ {
		match, err := s.loadMatch(ctx, matchID)
		if err != nil {
			return nil, err
		}
		if !policy.CanMutate(actor, match, policy.ActionRecordPoint) {
			return nil, ErrForbiddenOperation
		}
		if match.Status == models.MatchStatusCompleted {
			return nil, ErrMatchAlreadyCompleted
		}

		applyPoint(match, team)

		err = s.matchRepo.Update(ctx, match, match.Version)
		if err == nil {
			s.broadcastMatchUpdate(ctx, match)
			s.populateReferee(ctx, match)
			return match, nil
		}
		if errors.Is(err, repositories.ErrMatchVersionConflict) {
			if attempt < recordPointMaxAttempts {
				continue
			}
			return nil, ErrMatchVersionConflict
		}
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, s.collaboratorError("save match score", err)
	}
}

// applyPoint применяет одно очко: перевод pending -> in_progress, инкремент
// счёта, запись в историю и завершение с победителем в том же изменении,
// если достигнут целевой счёт. Изменяет match на месте, фиксация - Update.
func applyPoint(match *models.Match, team models.TeamSelector) {
	if match.Status == models.MatchStatusPending {
		match.Status = models.MatchStatusInProgress
	}

	slot := match.Slot(team)
	slot.Score++

	match.ScoreHistory = append(match.ScoreHistory, models.ScoreEvent{
		Team:      team,
		Score:     slot.Score,
		Timestamp: time.Now().UTC(),
	})

	if slot.Score >= match.TargetScore {
		match.Status = models.MatchStatusCompleted
		winner := team
		match.Winner = &winner
	}
}

// SetResult - путь ручной корректировки (например, техническое поражение).
// Завершённый матч не переоткрывается ни при каких ролях.
func (s *matchService) SetResult(ctx context.Context, matchID int, input SetResultInput, actor models.Actor) (*models.Match, error) {
	if input.Status == nil && input.Winner == nil {
		return nil, fmt.Errorf("%w: status or winner is required", ErrValidationFailed)
	}
	if input.Status != nil && !isValidMatchStatus(*input.Status) {
		return nil, ErrInvalidMatchStatus
	}
	if input.Winner != nil && !input.Winner.Valid() {
		return nil, ErrInvalidTeamSelector
	}

	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutate(actor, match, policy.ActionEditResult) {
		return nil, ErrForbiddenOperation
	}
	if match.Status == models.MatchStatusCompleted {
		return nil, ErrMatchAlreadyCompleted
	}

	nextStatus := match.Status
	if input.Status != nil {
		if !isValidMatchStatusTransition(match.Status, *input.Status) {
			return nil, ErrInvalidStatusTransition
		}
		nextStatus = *input.Status
	}
	if input.Winner != nil && nextStatus != models.MatchStatusCompleted {
		return nil, ErrWinnerRequiresCompleted
	}
	if nextStatus == models.MatchStatusCompleted && input.Winner == nil {
		// Завершение без победителя оставило бы терминальный матч
		// без результата навсегда.
		return nil, fmt.Errorf("%w: winner is required when completing a match", ErrValidationFailed)
	}

	match.Status = nextStatus
	if input.Winner != nil {
		match.Winner = input.Winner
	}

	if err := s.saveMatch(ctx, match); err != nil {
		return nil, err
	}
	s.broadcastMatchUpdate(ctx, match)
	s.populateReferee(ctx, match)
	return match, nil
}

func (s *matchService) AssignReferee(ctx context.Context, matchID int, input AssignRefereeInput, actor models.Actor) (*models.Match, error) {
	match, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutate(actor, match, policy.ActionAssignReferee) {
		return nil, ErrForbiddenOperation
	}

	if !input.Provided {
		// Поле не передано - ничего не меняем, возвращаем текущее состояние.
		s.populateReferee(ctx, match)
		return match, nil
	}

	if match.Status == models.MatchStatusCompleted {
		return nil, ErrMatchAlreadyCompleted
	}

	if input.RefereeID == nil {
		match.RefereeID = nil
	} else {
		user, err := s.userRepo.GetByID(ctx, *input.RefereeID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return nil, ErrRefereeNotFound
			}
			return nil, s.collaboratorError("fetch referee", err)
		}
		if user.Role != models.RoleReferee {
			return nil, ErrRefereeRoleRequired
		}
		match.RefereeID = input.RefereeID
	}

	if err := s.saveMatch(ctx, match); err != nil {
		return nil, err
	}
	s.broadcastMatchUpdate(ctx, match)
	s.populateReferee(ctx, match)
	return match, nil
}

func (s *matchService) loadMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, s.collaboratorError(fmt.Sprintf("fetch match %d", matchID), err)
	}
	return match, nil
}

// saveMatch - запись без повторов: конфликт версий здесь отдаётся
// вызывающему, оператор должен перечитать актуальное состояние.
func (s *matchService) saveMatch(ctx context.Context, match *models.Match) error {
	err := s.matchRepo.Update(ctx, match, match.Version)
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, repositories.ErrMatchVersionConflict):
		return ErrMatchVersionConflict
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrMatchRefereeInvalid):
		return ErrRefereeNotFound
	}
	return s.collaboratorError(fmt.Sprintf("save match %d", match.ID), err)
}

// collaboratorError переводит таймауты и отмену внешних вызовов в
// ErrServiceUnavailable, остальное оборачивает как внутреннюю ошибку.
func (s *matchService) collaboratorError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s: %v", ErrServiceUnavailable, op, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func (s *matchService) populateReferee(ctx context.Context, match *models.Match) {
	match.Referee = nil
	if match.RefereeID == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, *match.RefereeID)
	if err != nil {
		// Проекция судьи не критична для ответа, матч возвращаем как есть.
		return
	}
	match.Referee = &models.RefereeView{
		ID:    user.ID,
		Name:  user.FirstName + " " + user.LastName,
		Email: user.Email,
	}
}

func (s *matchService) broadcastMatchUpdate(ctx context.Context, match *models.Match) {
	if s.hub == nil {
		return
	}
	roomID := live.TournamentRoomID(match.TournamentID)
	s.hub.BroadcastToRoom(roomID, live.WebSocketMessage{
		Type:    live.MatchUpdated,
		Payload: match,
		RoomID:  roomID,
	})
}

func isValidMatchStatus(status models.MatchStatus) bool {
	switch status {
	case models.MatchStatusPending, models.MatchStatusInProgress, models.MatchStatusCompleted:
		return true
	}
	return false
}

// isValidMatchStatusTransition: статус монотонен, назад не возвращается.
// pending -> completed разрешён только здесь, в административном пути
// (техническое поражение до первого очка).
func isValidMatchStatusTransition(current, next models.MatchStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.MatchStatus][]models.MatchStatus{
		models.MatchStatusPending:    {models.MatchStatusInProgress, models.MatchStatusCompleted},
		models.MatchStatusInProgress: {models.MatchStatusCompleted},
		models.MatchStatusCompleted:  {},
	}
	for _, allowedNextStatus := range allowedTransitions[current] {
		if next == allowedNextStatus {
			return true
		}
	}
	return false
}
