package entity

import (
	"time"
)

// Session - сессия входа пользователя
type Session struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	LoginTime  time.Time  `gorm:"not null" json:"login_time"`
	LogoutTime *time.Time `json:"logout_time,omitempty"`
	IPAddress  string     `gorm:"size:64;not null;default:''" json:"ip_address"`
	UserAgent  string     `gorm:"size:255;not null;default:''" json:"user_agent"`
}

// TableName определяет имя таблицы для GORM
func (Session) TableName() string {
	return "sessions"
}

// IsActive проверяет, что сессия не закрыта
func (s *Session) IsActive() bool {
	return s.LogoutTime == nil
}
