package service

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// SchedulerConfig - расписания фоновых задач (формат cron с секундами)
type SchedulerConfig struct {
	LeaderboardSpec string
	CleanupSpec     string
	StaleAttemptTTL time.Duration
	StaleSessionTTL time.Duration
	JobTimeout      time.Duration
}

// Scheduler запускает периодические задачи: пересчет мест в рейтингах,
// удаление брошенных попыток и закрытие забытых сессий
type Scheduler struct {
	cron         *cron.Cron
	cfg          SchedulerConfig
	gamification *GamificationService
	attempts     *AttemptService
	auth         *AuthService
}

// NewScheduler создает планировщик
func NewScheduler(cfg SchedulerConfig, gamification *GamificationService, attempts *AttemptService, authService *AuthService) *Scheduler {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = time.Minute
	}
	return &Scheduler{
		cron:         cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		cfg:          cfg,
		gamification: gamification,
		attempts:     attempts,
		auth:         authService,
	}
}

// Start регистрирует задачи и запускает планировщик
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.LeaderboardSpec, s.recomputeRanks); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.CleanupSpec, s.cleanup); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("[Scheduler] Запущен: рейтинги %q, очистка %q", s.cfg.LeaderboardSpec, s.cfg.CleanupSpec)
	return nil
}

// Stop останавливает планировщик и ждет завершения выполняющихся задач
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		log.Println("[Scheduler] Остановлен")
	case <-ctx.Done():
		log.Println("[Scheduler] Задачи не завершились до таймаута")
	}
}

func (s *Scheduler) recomputeRanks() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()
	if err := s.gamification.RecomputeRanks(ctx); err != nil {
		log.Printf("[Scheduler] %v", err)
	}
}

func (s *Scheduler) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	if s.cfg.StaleAttemptTTL > 0 {
		deleted, err := s.attempts.DeleteUnfinishedBefore(ctx, time.Now().Add(-s.cfg.StaleAttemptTTL))
		if err != nil {
			log.Printf("[Scheduler] Ошибка удаления брошенных попыток: %v", err)
		} else if deleted > 0 {
			log.Printf("[Scheduler] Удалено брошенных попыток: %d", deleted)
		}
	}
	if s.cfg.StaleSessionTTL > 0 {
		closed, err := s.auth.CloseStaleSessions(ctx, s.cfg.StaleSessionTTL)
		if err != nil {
			log.Printf("[Scheduler] Ошибка закрытия старых сессий: %v", err)
		} else if closed > 0 {
			log.Printf("[Scheduler] Закрыто старых сессий: %d", closed)
		}
	}
}
