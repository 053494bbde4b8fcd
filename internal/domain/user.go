package domain

import "time"

type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleResident UserRole = "RESIDENT"
)

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleResident
}

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"type:varchar(64);not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Phone        *string   `json:"phone" gorm:"type:varchar(32)"`
	Email        *string   `json:"email"`
	FullName     *string   `json:"full_name"`
	Role         UserRole  `json:"role" gorm:"type:varchar(16);not null;default:RESIDENT"`
	PersonID     *int64    `json:"person_id" gorm:"index"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (User) TableName() string { return "users" }
