package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/fieldhr/fieldhr-backend/pkg/enums"
)

// Notification stores in-app notification payloads addressed to users.
type Notification struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	Type      enums.NotificationType `gorm:"column:type;type:text;not null"`
	Payload   map[string]any         `gorm:"column:payload;type:jsonb;serializer:json"`
	ReadAt    *time.Time             `gorm:"column:read_at"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}
