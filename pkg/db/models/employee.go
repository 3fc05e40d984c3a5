package models

import (
	"time"

	"github.com/google/uuid"
)

// Employee is the HR profile a user account may be linked to. Time entries
// and assignments reference employees, not users.
type Employee struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID uuid.UUID  `gorm:"column:company_id;type:uuid;not null;index"`
	UserID    *uuid.UUID `gorm:"column:user_id;type:uuid;index"`
	Email     string     `gorm:"column:email;type:text;not null"`
	FirstName string     `gorm:"column:first_name;type:text;not null"`
	LastName  string     `gorm:"column:last_name;type:text;not null"`
	Active    bool       `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// FullName returns the display name, falling back to the email.
func (e Employee) FullName() string {
	name := e.FirstName
	if e.LastName != "" {
		if name != "" {
			name += " "
		}
		name += e.LastName
	}
	if name == "" {
		return e.Email
	}
	return name
}
