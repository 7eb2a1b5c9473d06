package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/domain/repository"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
	"github.com/yourusername/lms-api/pkg/auth"
)

// ForumService управляет обсуждениями курса
type ForumService struct {
	forumRepo      repository.ForumRepository
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
	rewards        Rewarder
	notifier       Notifier
}

// NewForumService создает сервис форума
func NewForumService(
	forumRepo repository.ForumRepository,
	courseRepo repository.CourseRepository,
	enrollmentRepo repository.EnrollmentRepository,
	rewards Rewarder,
	notifier Notifier,
) *ForumService {
	return &ForumService{
		forumRepo:      forumRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		rewards:        rewards,
		notifier:       notifier,
	}
}

// CreateThread открывает тему с первым сообщением
func (s *ForumService) CreateThread(ctx context.Context, p *auth.Principal, courseID uint, title, body string) (*entity.ForumThread, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" || body == "" {
		return nil, fmt.Errorf("%w: title and body are required", apperrors.ErrValidation)
	}
	if _, err := s.participant(ctx, p, courseID); err != nil {
		return nil, err
	}

	thread := &entity.ForumThread{
		CourseID: courseID,
		AuthorID: p.UserID,
		Title:    title,
		Posts:    []entity.ForumPost{{AuthorID: p.UserID, Body: body}},
	}
	if err := s.forumRepo.CreateThread(ctx, thread); err != nil {
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}
	post := thread.Posts[0]

	s.rewards.OnForumPost(ctx, p.UserID, courseID, post.ID)
	log.Printf("[ForumService] Тема ID=%d создана в курсе %d пользователем %d", thread.ID, courseID, p.UserID)
	return thread, nil
}

// ListThreads возвращает темы курса, последние обновленные первыми
func (s *ForumService) ListThreads(ctx context.Context, p *auth.Principal, courseID uint, page, pageSize int) ([]entity.ForumThread, int64, error) {
	if _, err := s.participant(ctx, p, courseID); err != nil {
		return nil, 0, err
	}
	limit, offset := paginate(page, pageSize)
	return s.forumRepo.ListThreads(ctx, courseID, limit, offset)
}

// GetThread возвращает тему с сообщениями
func (s *ForumService) GetThread(ctx context.Context, p *auth.Principal, threadID uint) (*entity.ForumThread, error) {
	thread, err := s.forumRepo.GetThreadWithPosts(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if _, err := s.participant(ctx, p, thread.CourseID); err != nil {
		return nil, err
	}
	return thread, nil
}

// Reply добавляет сообщение в открытую тему
func (s *ForumService) Reply(ctx context.Context, p *auth.Principal, threadID uint, body string) (*entity.ForumPost, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: body is required", apperrors.ErrValidation)
	}
	thread, err := s.forumRepo.GetThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if _, err := s.participant(ctx, p, thread.CourseID); err != nil {
		return nil, err
	}
	if thread.IsClosed {
		return nil, ErrThreadClosed
	}

	post := &entity.ForumPost{ThreadID: thread.ID, AuthorID: p.UserID, Body: body}
	if err := s.forumRepo.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.rewards.OnForumPost(ctx, p.UserID, thread.CourseID, post.ID)
	if thread.AuthorID != p.UserID {
		s.notifier.NotifyUser(thread.AuthorID, EventForumPostCreated, map[string]interface{}{
			"thread_id": thread.ID,
			"post_id":   post.ID,
			"title":     thread.Title,
		})
	}
	return post, nil
}

// SetClosed закрывает или открывает тему (автор темы, преподаватель курса, администратор)
func (s *ForumService) SetClosed(ctx context.Context, p *auth.Principal, threadID uint, closed bool) error {
	thread, err := s.forumRepo.GetThread(ctx, threadID)
	if err != nil {
		return err
	}
	course, err := s.participant(ctx, p, thread.CourseID)
	if err != nil {
		return err
	}
	if thread.AuthorID != p.UserID && !p.Owns(course.InstructorID) {
		return fmt.Errorf("%w: only the author or the instructor can close the thread", apperrors.ErrForbidden)
	}
	return s.forumRepo.SetClosed(ctx, threadID, closed)
}

// participant проверяет доступ к форуму курса: записанные, преподаватель, администратор
func (s *ForumService) participant(ctx context.Context, p *auth.Principal, courseID uint) (*entity.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if p.Owns(course.InstructorID) {
		return course, nil
	}
	if _, err := s.enrollmentRepo.Get(ctx, p.UserID, courseID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, err
	}
	return course, nil
}
