package entity

import (
	"time"
)

// Категории значков
const (
	BadgeCategoryCompletion  = "completion"
	BadgeCategoryEngagement  = "engagement"
	BadgeCategoryAchievement = "achievement"
	BadgeCategorySocial      = "social"
)

// Редкость значков
const (
	BadgeRarityCommon    = "common"
	BadgeRarityRare      = "rare"
	BadgeRarityEpic      = "epic"
	BadgeRarityLegendary = "legendary"
)

// Коды значков, выдаваемых автоматически
const (
	BadgeFirstQuiz       = "first_quiz"
	BadgePerfectScore    = "perfect_score"
	BadgeCourseCompleted = "course_completed"
	BadgeFirstPost       = "first_post"
)

// PointsEntry - запись истории начисления опыта
type PointsEntry struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	CourseID      *uint     `gorm:"index" json:"course_id,omitempty"`
	Points        int       `gorm:"not null" json:"points"`
	Reason        string    `gorm:"size:50;not null" json:"reason"`
	RelatedEntity string    `gorm:"size:100;not null;default:''" json:"related_entity"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (PointsEntry) TableName() string {
	return "points_history"
}

// Badge - значок (достижение)
type Badge struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Code        string `gorm:"size:50;not null;uniqueIndex" json:"code"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"type:text;not null;default:''" json:"description"`
	Category    string `gorm:"size:20;not null" json:"category"`
	Rarity      string `gorm:"size:20;not null;default:'common'" json:"rarity"`
	XPReward    int    `gorm:"not null;default:0" json:"xp_reward"`
}

// TableName определяет имя таблицы для GORM
func (Badge) TableName() string {
	return "badges"
}

// UserBadge - выданный пользователю значок
type UserBadge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_badge" json:"user_id"`
	BadgeID   uint      `gorm:"not null;uniqueIndex:idx_user_badge" json:"badge_id"`
	AwardedAt time.Time `gorm:"not null" json:"awarded_at"`
	Badge     *Badge    `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
}

// TableName определяет имя таблицы для GORM
func (UserBadge) TableName() string {
	return "user_badges"
}

// GlobalLeaderboard - значение CourseID для общего рейтинга
const GlobalLeaderboard uint = 0

// LeaderboardEntry - позиция пользователя в рейтинге курса (CourseID = 0 - общий рейтинг)
type LeaderboardEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_leaderboard_user_course" json:"user_id"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_leaderboard_user_course;index" json:"course_id"`
	Username  string    `gorm:"->" json:"username"`
	Points    int       `gorm:"not null;default:0" json:"points"`
	Rank      int       `gorm:"not null;default:0" json:"rank"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (LeaderboardEntry) TableName() string {
	return "leaderboards"
}
