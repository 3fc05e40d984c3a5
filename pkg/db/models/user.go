package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/fieldhr/fieldhr-backend/pkg/enums"
)

// User is an authenticated account scoped to a company.
type User struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID    uuid.UUID        `gorm:"column:company_id;type:uuid;not null"`
	Email        string           `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string           `gorm:"column:password_hash;type:text;not null"`
	FirstName    string           `gorm:"column:first_name;type:text;not null"`
	LastName     string           `gorm:"column:last_name;type:text;not null"`
	Role         enums.MemberRole `gorm:"column:role;type:text;not null;default:'employee'"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// FullName returns the display name, falling back to the email.
func (u User) FullName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Email
	}
	return name
}
