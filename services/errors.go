package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурсы не найдены
	ErrMatchNotFound      = errors.New("match not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrRefereeNotFound    = errors.New("referee not found")
	ErrUserNotFound       = errors.New("user not found")

	// Ошибки валидации и бизнес-правил (InvalidState)
	ErrValidationFailed        = errors.New("validation failed")
	ErrMatchAlreadyCompleted   = errors.New("match is already completed")
	ErrInvalidTeamSelector     = errors.New("team must be team1 or team2")
	ErrInvalidTargetScore      = errors.New("match target score must be positive")
	ErrTeamNamesRequired       = errors.New("both team names are required")
	ErrWinnerRequiresCompleted = errors.New("winner can only be set together with completed status")
	ErrInvalidStatusTransition = errors.New("invalid match status transition")
	ErrInvalidMatchStatus      = errors.New("invalid match status provided")
	ErrRefereeRoleRequired     = errors.New("assigned user must have the referee role")
	ErrInvalidUserRole         = errors.New("invalid user role provided")
	ErrPasswordTooShort        = errors.New("password is too short")

	// Конфликт версий: запись проиграла гонку, вызывающий должен
	// перечитать матч и решить, повторять ли операцию.
	ErrMatchVersionConflict = errors.New("match was modified concurrently, reload and retry")

	// Ошибки аутентификации и авторизации
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Внешний коллаборатор (БД, identity) недоступен или не ответил вовремя.
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
