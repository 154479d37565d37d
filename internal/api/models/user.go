package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role choices. A superuser is admin-equivalent regardless of role.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type User struct {
	ID          string     `gorm:"primaryKey;type:uuid" json:"id"`
	Username    string     `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email       string     `gorm:"uniqueIndex;size:254;not null" json:"email"`
	FirstName   string     `gorm:"size:150" json:"first_name"`
	LastName    string     `gorm:"size:150" json:"last_name"`
	Bio         string     `json:"bio"`
	Role        string     `gorm:"size:20;default:'user';not null" json:"role"`
	IsSuperuser bool       `gorm:"default:false;not null" json:"-"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports admin rights: the admin role or the superuser flag.
func (user *User) IsAdmin() bool {
	return user.Role == RoleAdmin || user.IsSuperuser
}

func (user *User) IsModerator() bool {
	return user.Role == RoleModerator
}
