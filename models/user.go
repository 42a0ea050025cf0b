package models

import "time"

// UserRole - закрытый набор ролей. Любое значение вне набора невалидно.
type UserRole string

const (
	RoleOwner   UserRole = "owner"
	RoleAdmin   UserRole = "admin"
	RoleReferee UserRole = "referee"
	RolePlayer  UserRole = "player"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleReferee, RolePlayer:
		return true
	}
	return false
}

type User struct {
	ID           int       `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Actor - аутентифицированный вызывающий, восстановленный из JWT claims.
type Actor struct {
	ID   int
	Role UserRole
}

// RefereeView - безопасная для отображения проекция судьи в ответах API.
type RefereeView struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
