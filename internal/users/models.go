package users

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

var ErrInvalidRole = errors.New("invalid user role")

const (
	RoleAdmin Role = "ADMIN"
	RoleStaff Role = "STAFF"
	RoleUser  Role = "USER"
)

type User struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	FirstName string    `json:"first_name" gorm:"not null"`
	LastName  string    `json:"last_name" gorm:"not null"`
	Password  string    `json:"-" gorm:"not null"` // hide in json
	Role      Role      `json:"role" gorm:"not null;default:'USER'"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns the ID, defaults the role to USER and refuses roles
// the middleware would not recognise
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if !IsValidRole(string(u.Role)) {
		return fmt.Errorf("%w: %q", ErrInvalidRole, u.Role)
	}
	return nil
}

func IsValidRole(role string) bool {
	switch role {
	case string(RoleUser), string(RoleStaff), string(RoleAdmin):
		return true
	default:
		return false
	}
}

// StaffRoles lists the roles allowed into the admin
func StaffRoles() []string {
	return []string{string(RoleAdmin), string(RoleStaff)}
}
