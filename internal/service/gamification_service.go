package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jinzhu/now"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/domain/repository"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
	"github.com/yourusername/lms-api/internal/service/progress"
)

// Начисления опыта
const (
	XPContentCompleted = 10
	XPQuizPassed       = 50
	XPPerfectScore     = 25
	XPCourseCompleted  = 200
	XPForumPost        = 5
)

// Причины начисления в истории
const (
	ReasonContentCompleted = "content_completed"
	ReasonQuizPassed       = "quiz_passed"
	ReasonPerfectScore     = "perfect_score"
	ReasonCourseCompleted  = "course_completed"
	ReasonForumPost        = "forum_post"
	ReasonBadge            = "badge"
)

// Периоды рейтинга
const (
	PeriodAllTime = "all"
	PeriodWeek    = "week"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// Rewarder начисляет опыт и значки за учебные события.
// Ошибки начисления не прерывают основное действие и только логируются.
type Rewarder interface {
	OnContentCompleted(ctx context.Context, userID, courseID uint, item progress.Item)
	OnQuizPassed(ctx context.Context, userID, courseID uint, attempt *entity.Attempt, firstPass bool)
	OnCourseCompleted(ctx context.Context, userID, courseID uint)
	OnForumPost(ctx context.Context, userID, courseID, postID uint)
}

// UserStats - сводка геймификации для профиля
type UserStats struct {
	XP            int64                `json:"xp"`
	Level         int                  `json:"level"`
	LevelProgress int                  `json:"level_progress"`
	NextLevelXP   int64                `json:"next_level_xp"`
	QuizzesPassed int64                `json:"quizzes_passed"`
	ForumPosts    int64                `json:"forum_posts"`
	Badges        []entity.UserBadge   `json:"badges"`
	RecentPoints  []entity.PointsEntry `json:"recent_points"`
}

// GamificationService управляет опытом, значками и рейтингами
type GamificationService struct {
	repo        repository.GamificationRepository
	userRepo    repository.UserRepository
	attemptRepo repository.AttemptRepository
	forumRepo   repository.ForumRepository
	cacheRepo   repository.CacheRepository
	notifier    Notifier
	cacheTTL    time.Duration
	clock       func() time.Time
}

// NewGamificationService создает сервис геймификации
func NewGamificationService(
	repo repository.GamificationRepository,
	userRepo repository.UserRepository,
	attemptRepo repository.AttemptRepository,
	forumRepo repository.ForumRepository,
	cacheRepo repository.CacheRepository,
	notifier Notifier,
	cacheTTL time.Duration,
) *GamificationService {
	return &GamificationService{
		repo:        repo,
		userRepo:    userRepo,
		attemptRepo: attemptRepo,
		forumRepo:   forumRepo,
		cacheRepo:   cacheRepo,
		notifier:    notifier,
		cacheTTL:    cacheTTL,
		clock:       time.Now,
	}
}

// AwardPoints начисляет опыт пользователю (courseID == 0 - вне курса)
func (s *GamificationService) AwardPoints(ctx context.Context, userID, courseID uint, points int, reason, related string) error {
	if points <= 0 {
		return nil
	}
	entry := &entity.PointsEntry{
		UserID:        userID,
		Points:        points,
		Reason:        reason,
		RelatedEntity: related,
	}
	if courseID != 0 {
		entry.CourseID = &courseID
	}
	if err := s.repo.AwardPoints(ctx, entry); err != nil {
		return fmt.Errorf("failed to award points: %w", err)
	}
	s.notifier.NotifyUser(userID, EventXPAwarded, map[string]interface{}{
		"points": points,
		"reason": reason,
	})
	return nil
}

// AwardBadge выдает значок, если он еще не был выдан. Награда значка в XP
// начисляется только при первой выдаче.
func (s *GamificationService) AwardBadge(ctx context.Context, userID uint, code string) (bool, error) {
	badge, err := s.repo.GetBadgeByCode(ctx, code)
	if err != nil {
		return false, err
	}
	awarded, err := s.repo.AwardBadge(ctx, userID, badge.ID)
	if err != nil || !awarded {
		return false, err
	}

	log.Printf("[GamificationService] Пользователь %d получил значок %s", userID, code)
	if badge.XPReward > 0 {
		if err := s.AwardPoints(ctx, userID, 0, badge.XPReward, ReasonBadge, "badge:"+code); err != nil {
			log.Printf("[GamificationService] Ошибка начисления награды за значок %s: %v", code, err)
		}
	}
	s.notifier.NotifyUser(userID, EventBadgeAwarded, badge)
	return true, nil
}

// OnContentCompleted начисляет опыт за завершенный элемент курса
func (s *GamificationService) OnContentCompleted(ctx context.Context, userID, courseID uint, item progress.Item) {
	related := fmt.Sprintf("%s:%d", item.Kind, item.ID)
	if err := s.AwardPoints(ctx, userID, courseID, XPContentCompleted, ReasonContentCompleted, related); err != nil {
		log.Printf("[GamificationService] %v", err)
	}
}

// OnQuizPassed начисляет опыт за первую успешную попытку и выдает значки
func (s *GamificationService) OnQuizPassed(ctx context.Context, userID, courseID uint, attempt *entity.Attempt, firstPass bool) {
	if !attempt.Passed {
		return
	}
	related := fmt.Sprintf("quiz:%d", attempt.QuizID)
	if firstPass {
		if err := s.AwardPoints(ctx, userID, courseID, XPQuizPassed, ReasonQuizPassed, related); err != nil {
			log.Printf("[GamificationService] %v", err)
		}
	}
	s.tryBadge(ctx, userID, entity.BadgeFirstQuiz)

	if attempt.MaxScore > 0 && attempt.Score == attempt.MaxScore {
		if firstPass {
			if err := s.AwardPoints(ctx, userID, courseID, XPPerfectScore, ReasonPerfectScore, related); err != nil {
				log.Printf("[GamificationService] %v", err)
			}
		}
		s.tryBadge(ctx, userID, entity.BadgePerfectScore)
	}
}

// OnCourseCompleted начисляет опыт и значок за завершение курса
func (s *GamificationService) OnCourseCompleted(ctx context.Context, userID, courseID uint) {
	related := fmt.Sprintf("course:%d", courseID)
	if err := s.AwardPoints(ctx, userID, courseID, XPCourseCompleted, ReasonCourseCompleted, related); err != nil {
		log.Printf("[GamificationService] %v", err)
	}
	s.tryBadge(ctx, userID, entity.BadgeCourseCompleted)
	s.notifier.NotifyUser(userID, EventCourseCompleted, map[string]uint{"course_id": courseID})
}

// OnForumPost начисляет опыт за сообщение на форуме
func (s *GamificationService) OnForumPost(ctx context.Context, userID, courseID, postID uint) {
	related := fmt.Sprintf("forum_post:%d", postID)
	if err := s.AwardPoints(ctx, userID, courseID, XPForumPost, ReasonForumPost, related); err != nil {
		log.Printf("[GamificationService] %v", err)
	}
	s.tryBadge(ctx, userID, entity.BadgeFirstPost)
}

func (s *GamificationService) tryBadge(ctx context.Context, userID uint, code string) {
	if _, err := s.AwardBadge(ctx, userID, code); err != nil {
		log.Printf("[GamificationService] Ошибка выдачи значка %s пользователю %d: %v", code, userID, err)
	}
}

// Leaderboard возвращает рейтинг курса (courseID == 0 - общий) за период
func (s *GamificationService) Leaderboard(ctx context.Context, courseID uint, period string, limit int) ([]entity.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}
	if period == "" {
		period = PeriodAllTime
	}
	if period != PeriodAllTime && period != PeriodWeek {
		return nil, fmt.Errorf("%w: unknown leaderboard period %q", apperrors.ErrValidation, period)
	}

	key := leaderboardKey(courseID, period, limit)
	var cached []entity.LeaderboardEntry
	if err := s.cacheRepo.GetJSON(ctx, key, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		log.Printf("[GamificationService] Ошибка чтения кеша рейтинга: %v", err)
	}

	var (
		entries []entity.LeaderboardEntry
		err     error
	)
	if period == PeriodWeek {
		entries, err = s.repo.LeaderboardSince(ctx, courseID, s.WeekStart(), limit)
	} else {
		entries, err = s.repo.Leaderboard(ctx, courseID, limit)
	}
	if err != nil {
		return nil, err
	}

	if err := s.cacheRepo.SetJSON(ctx, key, entries, s.cacheTTL); err != nil {
		log.Printf("[GamificationService] Не удалось закешировать рейтинг: %v", err)
	}
	return entries, nil
}

// WeekStart возвращает начало текущей недели (понедельник, 00:00)
func (s *GamificationService) WeekStart() time.Time {
	cfg := &now.Config{WeekStartDay: time.Monday}
	return cfg.With(s.clock()).BeginningOfWeek()
}

// UserStats собирает опыт, уровень, значки и историю начислений пользователя
func (s *GamificationService) UserStats(ctx context.Context, userID uint) (*UserStats, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	badges, err := s.repo.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	history, err := s.repo.ListPointsHistory(ctx, userID, 20)
	if err != nil {
		return nil, err
	}
	passed, err := s.attemptRepo.CountPassedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	posts, err := s.forumRepo.CountPostsByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}

	level := entity.LevelForXP(user.XP)
	return &UserStats{
		XP:            user.XP,
		Level:         level,
		LevelProgress: entity.LevelProgress(user.XP),
		NextLevelXP:   int64(level+1) * entity.XPPerLevel,
		QuizzesPassed: passed,
		ForumPosts:    posts,
		Badges:        badges,
		RecentPoints:  history,
	}, nil
}

// RecomputeRanks пересчитывает места во всех рейтингах
func (s *GamificationService) RecomputeRanks(ctx context.Context) error {
	start := time.Now()
	if err := s.repo.RecomputeRanks(ctx); err != nil {
		return fmt.Errorf("failed to recompute ranks: %w", err)
	}
	log.Printf("[GamificationService] Места в рейтингах пересчитаны за %v", time.Since(start))
	return nil
}
