package dto

import (
	"time"

	"github.com/baechuer/account-service/internal/domain"
)

// UserView is the outward shape of a user. There is no password field to
// forget to blank.
type UserView struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name,omitempty"`
	IsRegistered bool      `json:"is_registered"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

func NewUserView(u domain.User) UserView {
	return UserView{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		IsRegistered: u.IsRegistered,
		CreatedAt:    u.CreatedAt,
	}
}

type RegisterData struct {
	User    UserView `json:"user"`
	Message string   `json:"message"`
}

type MessageData struct {
	Message string `json:"message"`
}

type LoginData struct {
	User        UserView `json:"user"`
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int64    `json:"expires_in"`
}

type ProfileData struct {
	User    UserView `json:"user"`
	Message string   `json:"message"`
}
