package models

import "time"

type MatchStatus string

const (
	MatchStatusPending    MatchStatus = "pending"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
)

// TeamSelector указывает на один из двух слотов команд матча.
type TeamSelector string

const (
	TeamOne TeamSelector = "team1"
	TeamTwo TeamSelector = "team2"
)

func (t TeamSelector) Valid() bool {
	return t == TeamOne || t == TeamTwo
}

type TeamSlot struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// ScoreEvent - одна запись в истории счёта. История только дополняется,
// Score - значение счёта команды сразу после инкремента.
type ScoreEvent struct {
	Team      TeamSelector `json:"team"`
	Score     int          `json:"score"`
	Timestamp time.Time    `json:"timestamp"`
}

// Match - агрегат матча. Version - токен оптимистической блокировки,
// инкрементируется хранилищем при каждой успешной записи.
type Match struct {
	ID           int           `json:"id"`
	TournamentID int           `json:"tournament_id"`
	MatchNumber  int           `json:"match_number"`
	Round        int           `json:"round"`
	Team1        TeamSlot      `json:"team1"`
	Team2        TeamSlot      `json:"team2"`
	TargetScore  int           `json:"target_score"`
	Status       MatchStatus   `json:"status"`
	Winner       *TeamSelector `json:"winner,omitempty"`
	RefereeID    *int          `json:"referee_id,omitempty"`
	Referee      *RefereeView  `json:"referee,omitempty"`
	ScoreHistory []ScoreEvent  `json:"score_history"`
	Version      int           `json:"version"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Slot возвращает слот команды по селектору, nil для невалидного селектора.
func (m *Match) Slot(team TeamSelector) *TeamSlot {
	switch team {
	case TeamOne:
		return &m.Team1
	case TeamTwo:
		return &m.Team2
	}
	return nil
}
