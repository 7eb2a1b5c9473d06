package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

// GamificationRepo реализует repository.GamificationRepository
type GamificationRepo struct {
	db *gorm.DB
}

// NewGamificationRepo создает новый репозиторий геймификации
func NewGamificationRepo(db *gorm.DB) *GamificationRepo {
	return &GamificationRepo{db: db}
}

// AwardPoints записывает начисление, увеличивает XP и очки в рейтингах в одной транзакции
func (r *GamificationRepo) AwardPoints(ctx context.Context, entry *entity.PointsEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to create points entry: %w", err)
		}

		result := tx.Model(&entity.User{}).Where("id = ?", entry.UserID).
			UpdateColumn("xp", gorm.Expr("xp + ?", entry.Points))
		if result.Error != nil {
			return fmt.Errorf("failed to increment user xp: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return mapError(gorm.ErrRecordNotFound, "user")
		}

		boards := []uint{entity.GlobalLeaderboard}
		if entry.CourseID != nil {
			boards = append(boards, *entry.CourseID)
		}
		now := time.Now()
		for _, courseID := range boards {
			row := entity.LeaderboardEntry{
				UserID:    entry.UserID,
				CourseID:  courseID,
				Points:    entry.Points,
				UpdatedAt: now,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"points":     gorm.Expr("leaderboards.points + EXCLUDED.points"),
					"updated_at": now,
				}),
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("failed to upsert leaderboard %d: %w", courseID, err)
			}
		}
		return nil
	})
}

// ListPointsHistory возвращает последние начисления пользователя
func (r *GamificationRepo) ListPointsHistory(ctx context.Context, userID uint, limit int) ([]entity.PointsEntry, error) {
	var entries []entity.PointsEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// GetBadgeByCode возвращает значок по коду
func (r *GamificationRepo) GetBadgeByCode(ctx context.Context, code string) (*entity.Badge, error) {
	var badge entity.Badge
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&badge).Error; err != nil {
		return nil, mapError(err, "badge")
	}
	return &badge, nil
}

// AwardBadge выдает значок пользователю один раз
func (r *GamificationRepo) AwardBadge(ctx context.Context, userID, badgeID uint) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&entity.UserBadge{
		UserID:    userID,
		BadgeID:   badgeID,
		AwardedAt: time.Now(),
	})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListUserBadges возвращает значки пользователя
func (r *GamificationRepo) ListUserBadges(ctx context.Context, userID uint) ([]entity.UserBadge, error) {
	var badges []entity.UserBadge
	err := r.db.WithContext(ctx).
		Preload("Badge").
		Where("user_id = ?", userID).
		Order("awarded_at ASC").
		Find(&badges).Error
	return badges, err
}

// Leaderboard возвращает рейтинг курса (0 - общий)
func (r *GamificationRepo) Leaderboard(ctx context.Context, courseID uint, limit int) ([]entity.LeaderboardEntry, error) {
	var entries []entity.LeaderboardEntry
	err := r.db.WithContext(ctx).
		Table("leaderboards").
		Select("leaderboards.*, users.username").
		Joins("JOIN users ON users.id = leaderboards.user_id").
		Where("leaderboards.course_id = ?", courseID).
		Order("leaderboards.points DESC, leaderboards.user_id ASC").
		Limit(limit).
		Scan(&entries).Error
	return entries, err
}

// LeaderboardSince считает рейтинг по истории начислений за период
func (r *GamificationRepo) LeaderboardSince(ctx context.Context, courseID uint, since time.Time, limit int) ([]entity.LeaderboardEntry, error) {
	var entries []entity.LeaderboardEntry
	query := r.db.WithContext(ctx).
		Table("points_history AS ph").
		Select("ph.user_id, users.username, SUM(ph.points) AS points").
		Joins("JOIN users ON users.id = ph.user_id").
		Where("ph.created_at >= ?", since)
	if courseID != entity.GlobalLeaderboard {
		query = query.Where("ph.course_id = ?", courseID)
	}
	err := query.
		Group("ph.user_id, users.username").
		Order("points DESC, ph.user_id ASC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].CourseID = courseID
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// RecomputeRanks пересчитывает места во всех рейтингах одним запросом
func (r *GamificationRepo) RecomputeRanks(ctx context.Context) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE leaderboards AS l
		SET rank = ranked.position
		FROM (
			SELECT id, RANK() OVER (PARTITION BY course_id ORDER BY points DESC) AS position
			FROM leaderboards
		) AS ranked
		WHERE l.id = ranked.id`).Error
}
