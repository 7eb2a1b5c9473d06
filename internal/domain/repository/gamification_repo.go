package repository

import (
	"context"
	"time"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

// GamificationRepository определяет методы для опыта, значков и рейтингов
type GamificationRepository interface {
	// AwardPoints атомарно записывает историю, увеличивает XP пользователя
	// и обновляет очки в общем рейтинге и рейтинге курса
	AwardPoints(ctx context.Context, entry *entity.PointsEntry) error
	ListPointsHistory(ctx context.Context, userID uint, limit int) ([]entity.PointsEntry, error)

	GetBadgeByCode(ctx context.Context, code string) (*entity.Badge, error)
	// AwardBadge выдает значок; возвращает false, если он уже был выдан
	AwardBadge(ctx context.Context, userID, badgeID uint) (bool, error)
	ListUserBadges(ctx context.Context, userID uint) ([]entity.UserBadge, error)

	// Leaderboard возвращает рейтинг курса (0 - общий) по возрастанию места
	Leaderboard(ctx context.Context, courseID uint, limit int) ([]entity.LeaderboardEntry, error)
	// LeaderboardSince считает рейтинг по истории начислений начиная с момента since
	LeaderboardSince(ctx context.Context, courseID uint, since time.Time, limit int) ([]entity.LeaderboardEntry, error)
	// RecomputeRanks пересчитывает места во всех рейтингах
	RecomputeRanks(ctx context.Context) error
}
