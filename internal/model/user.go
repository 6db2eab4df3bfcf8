// Package model defines domain entities for the application.
package model

import "time"

// User is a registered account.
type User struct {
	ID           string     `json:"id"`
	UserName     string     `json:"user_name"`
	FullName     string     `json:"full_name"`
	Nickname     *string    `json:"nickname,omitempty"`
	PasswordHash string     `json:"-"` // Never serialize
	DateCreated  time.Time  `json:"date_created"`
	DateModified *time.Time `json:"date_modified,omitempty"`
}

// NicknameOrEmpty returns the nickname, or "" when none was given.
func (u *User) NicknameOrEmpty() string {
	if u.Nickname == nil {
		return ""
	}
	return *u.Nickname
}

// Authentication schemes accepted by the gate.
const (
	SchemeBasic  = "basic"
	SchemeBearer = "bearer"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID   string
	UserName string
	FullName string
	Nickname string
	Scheme   string
}

// PrincipalFor builds a principal for the given user and scheme.
func PrincipalFor(u *User, scheme string) *Principal {
	return &Principal{
		UserID:   u.ID,
		UserName: u.UserName,
		FullName: u.FullName,
		Nickname: u.NicknameOrEmpty(),
		Scheme:   scheme,
	}
}
