package domain

import "time"

// Roles. Brokers own listings; admins see and manage everything.
const (
	RoleBroker = "broker"
	RoleAdmin  = "admin"
)

// User is a staff account (broker or admin). Customers are not users:
// inquiries and contacts come in unauthenticated.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:100;not null" json:"name"`
	Email        string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;size:255;not null" json:"-"`
	Phone        string     `gorm:"size:20;not null" json:"phone"`
	Role         string     `gorm:"size:20;not null;default:broker" json:"role"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// IsStaff reports whether the role may handle submissions.
func (u *User) IsStaff() bool {
	return u.Role == RoleBroker || u.Role == RoleAdmin
}
