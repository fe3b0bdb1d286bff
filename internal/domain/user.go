package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateEmail is returned by UserRepository writes that collide on email.
var ErrDuplicateEmail = errors.New("email already in use")

type User struct {
	ID               string      `gorm:"primaryKey;size:36" json:"id"`
	Name             string      `gorm:"size:64;not null" json:"name"`
	Email            string      `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Password         string      `gorm:"size:100;not null" json:"-"`
	Permissions      Permissions `gorm:"size:255;not null" json:"permissions"`
	ResetToken       *string     `gorm:"index;size:64" json:"-"`
	ResetTokenExpiry *time.Time  `json:"-"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// HasResetToken reports whether a reset token is currently stored. Token and
// expiry are always written together.
func (u *User) HasResetToken() bool {
	return u.ResetToken != nil && u.ResetTokenExpiry != nil
}

// UserRepository is the slice of the credential store the auth flow needs.
// Find methods return (nil, nil) when no row matches.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindByResetToken returns the user holding token whose expiry is not
	// before notBefore.
	FindByResetToken(ctx context.Context, token string, notBefore time.Time) (*User, error)
	List(ctx context.Context, f UserFilter) ([]User, int64, error)
	Update(ctx context.Context, u *User) error
}

type UserFilter struct {
	Offset int
	Limit  int
	Query  string // email/name substring
}
