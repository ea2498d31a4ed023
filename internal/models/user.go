package models

import (
	"encoding/json"
)

// UserProfile представляет текущего пользователя (GET /core/profiles/me/).
// Сервер может добавлять поля; клиент знает только username и имя,
// остальное читается как есть.
type UserProfile struct {
	Department  json.RawMessage `json:"department,omitempty"`
	Profile     json.RawMessage `json:"profile,omitempty"`
	Username    string          `json:"username"`
	FirstName   string          `json:"first_name,omitempty"`
	LastName    string          `json:"last_name,omitempty"`
	Email       string          `json:"email,omitempty"`
	Roles       []string        `json:"roles,omitempty"`
	ID          int64           `json:"id,omitempty"`
	IsSuperuser bool            `json:"is_superuser,omitempty"`
	IsAuthor    bool            `json:"is_author,omitempty"`
	IsManager   bool            `json:"is_manager,omitempty"`
	IsAdmin     bool            `json:"is_admin,omitempty"`
}

// FullName возвращает "Имя Фамилия", если заданы оба поля, иначе username
func (u *UserProfile) FullName() string {
	if u == nil {
		return ""
	}
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.Username
}

// HasRole reports whether the profile carries the given role code.
func (u *UserProfile) HasRole(code string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == code {
			return true
		}
	}
	return false
}
