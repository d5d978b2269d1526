package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// User represents the users table. Rows are owned by the user directory;
// this service only reads them.
type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	AvatarURL sql.NullString
	CreatedAt time.Time
}

// Profile is the public view of a user joined onto participants and messages.
type Profile struct {
	ID        uuid.UUID
	Name      string
	Email     string
	AvatarURL sql.NullString
}

func (u User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}
}

func (User) TableName() string {
	return "users"
}
