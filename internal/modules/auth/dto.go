package auth

import (
	"time"

	"bluemoon/internal/domain"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type MeResponse struct {
	ID        int64           `json:"id"`
	Username  string          `json:"username"`
	FullName  *string         `json:"full_name"`
	Email     *string         `json:"email"`
	Phone     *string         `json:"phone"`
	Role      domain.UserRole `json:"role"`
	PersonID  *int64          `json:"person_id"`
	CreatedAt time.Time       `json:"created_at"`
}

func toMeResponse(u *domain.User) MeResponse {
	return MeResponse{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		PersonID:  u.PersonID,
		CreatedAt: u.CreatedAt,
	}
}
