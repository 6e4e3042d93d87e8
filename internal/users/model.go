package users

import (
	"time"
)

// User is a registered account able to request and own generations.
type User struct {
	ID           string    `gorm:"column:id;primaryKey;size:36;not null"`
	Name         string    `gorm:"column:name;size:190;not null"`
	Email        string    `gorm:"column:email;size:320;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;size:120;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName exposes the table backing user accounts.
func (User) TableName() string {
	return "users"
}

// Summary is the client-facing projection of a user, without credentials.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summary projects the account into its client-facing shape.
func (u User) Summary() Summary {
	return Summary{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
