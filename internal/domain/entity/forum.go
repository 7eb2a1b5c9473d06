package entity

import (
	"time"
)

// ForumThread - тема обсуждения курса
type ForumThread struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	CourseID  uint        `gorm:"not null;index" json:"course_id"`
	AuthorID  uint        `gorm:"not null" json:"author_id"`
	Title     string      `gorm:"size:200;not null" json:"title"`
	IsClosed  bool        `gorm:"not null;default:false" json:"is_closed"`
	Posts     []ForumPost `gorm:"foreignKey:ThreadID;constraint:OnDelete:CASCADE" json:"posts,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (ForumThread) TableName() string {
	return "forum_threads"
}

// ForumPost - сообщение в теме
type ForumPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ThreadID  uint      `gorm:"not null;index" json:"thread_id"`
	AuthorID  uint      `gorm:"not null" json:"author_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (ForumPost) TableName() string {
	return "forum_posts"
}
