package domain

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog records staff actions for the admin audit export. Writes are
// best-effort; a failed log line never fails the action it describes.
type ActivityLog struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   *uint  `gorm:"index" json:"user_id"`
	User     *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action   string `gorm:"size:50;not null" json:"action"`
	Entity   string `gorm:"size:50;not null" json:"entity"`
	EntityID uint   `json:"entity_id"`

	Details datatypes.JSON `json:"details"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (ActivityLog) TableName() string { return "activity_logs" }
