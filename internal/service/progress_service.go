package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/domain/repository"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
	"github.com/yourusername/lms-api/internal/service/content"
	"github.com/yourusername/lms-api/internal/service/progress"
)

// ErrModuleLocked возвращается при отметке элемента закрытого модуля
var ErrModuleLocked = fmt.Errorf("%w: module is locked until the previous one is completed", apperrors.ErrForbidden)

// ProgressService записывает завершение элементов и пересчитывает прогресс курса
type ProgressService struct {
	courseRepo     repository.CourseRepository
	completionRepo repository.CompletionRepository
	enrollmentRepo repository.EnrollmentRepository
	userRepo       repository.UserRepository
	viewers        *content.Registry
	rewards        Rewarder
	email          EmailService
	clock          func() time.Time
}

// NewProgressService создает сервис прогресса
func NewProgressService(
	courseRepo repository.CourseRepository,
	completionRepo repository.CompletionRepository,
	enrollmentRepo repository.EnrollmentRepository,
	userRepo repository.UserRepository,
	viewers *content.Registry,
	rewards Rewarder,
	email EmailService,
) *ProgressService {
	return &ProgressService{
		courseRepo:     courseRepo,
		completionRepo: completionRepo,
		enrollmentRepo: enrollmentRepo,
		userRepo:       userRepo,
		viewers:        viewers,
		rewards:        rewards,
		email:          email,
		clock:          time.Now,
	}
}

// CourseProgress считает прогресс пользователя по курсу
func (s *ProgressService) CourseProgress(ctx context.Context, userID, courseID uint) (*progress.CourseProgress, error) {
	course, set, err := s.load(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	cp := progress.Course(course, set)
	return &cp, nil
}

// MarkComplete отмечает элемент курса завершенным. Викторины завершаются
// только успешной попыткой, поэтому напрямую их отметить нельзя.
func (s *ProgressService) MarkComplete(ctx context.Context, userID, courseID uint, item progress.Item) (*progress.CourseProgress, error) {
	if !item.Kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown item kind %q", apperrors.ErrValidation, item.Kind)
	}
	if item.Kind == entity.ItemKindQuiz {
		return nil, fmt.Errorf("%w: quizzes are completed by passing them", apperrors.ErrValidation)
	}

	enrollment, err := s.enrollment(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	course, set, err := s.load(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	module, ok := progress.ModuleOf(course, item)
	if !ok {
		return nil, fmt.Errorf("%w: %s %d in course %d", apperrors.ErrNotFound, item.Kind, item.ID, courseID)
	}
	if c := findContent(module, item); c != nil && c.Kind == entity.ContentKindQuiz {
		return nil, fmt.Errorf("%w: quiz content is completed by passing the quiz", apperrors.ErrValidation)
	}
	cp, _, err := s.complete(ctx, enrollment, course, set, module, item, true)
	return cp, err
}

// ReportSignal передает сигналы просмотра (прокрутка, воспроизведение, завершение)
// и отмечает элемент завершенным, если просмотрщик считает его пройденным.
func (s *ProgressService) ReportSignal(ctx context.Context, userID, courseID uint, item progress.Item, signal content.Signal) (bool, *progress.CourseProgress, error) {
	if item.Kind == entity.ItemKindQuiz || !item.Kind.IsValid() {
		return false, nil, fmt.Errorf("%w: signals are not accepted for %q", apperrors.ErrValidation, item.Kind)
	}
	enrollment, err := s.enrollment(ctx, userID, courseID)
	if err != nil {
		return false, nil, err
	}
	course, set, err := s.load(ctx, userID, courseID)
	if err != nil {
		return false, nil, err
	}

	module, ok := progress.ModuleOf(course, item)
	if !ok {
		return false, nil, fmt.Errorf("%w: %s %d in course %d", apperrors.ErrNotFound, item.Kind, item.ID, courseID)
	}

	done, err := s.judge(module, item, signal)
	if err != nil {
		return false, nil, err
	}
	if !done {
		cp := progress.Course(course, set)
		return false, &cp, nil
	}

	cp, _, err := s.complete(ctx, enrollment, course, set, module, item, true)
	if err != nil {
		return false, nil, err
	}
	return true, cp, nil
}

// judge решает по сигналу, завершен ли элемент модуля
func (s *ProgressService) judge(module *entity.Module, item progress.Item, signal content.Signal) (bool, error) {
	switch item.Kind {
	case entity.ItemKindLessonContent:
		c := findContent(module, item)
		if c == nil {
			break
		}
		// содержимое-викторина засчитывается только по успешной попытке
		if c.Kind == entity.ContentKindQuiz {
			return false, fmt.Errorf("%w: quiz content is completed by passing the quiz", apperrors.ErrValidation)
		}
		return s.viewers.IsComplete(c, signal)
	default:
		for _, resource := range module.Resources() {
			if string(resource.ResourceKind()) == string(item.Kind) && resource.ResourceID() == item.ID {
				return content.ResourceComplete(resource, signal), nil
			}
		}
	}
	return false, fmt.Errorf("%w: %s %d", apperrors.ErrNotFound, item.Kind, item.ID)
}

func findContent(module *entity.Module, item progress.Item) *entity.LessonContent {
	if item.Kind != entity.ItemKindLessonContent {
		return nil
	}
	for li := range module.Lessons {
		contents := module.Lessons[li].Contents
		for i := range contents {
			if contents[i].ID == item.ID {
				return &contents[i]
			}
		}
	}
	return nil
}

// RecordQuizPassed отмечает викторину пройденной. Если пользователь не записан
// на курс, отметка не создается. Возвращает true при первой отметке.
func (s *ProgressService) RecordQuizPassed(ctx context.Context, userID uint, quiz *entity.Quiz) (bool, uint, error) {
	owner, err := s.courseRepo.GetModule(ctx, quiz.ModuleID)
	if err != nil {
		return false, 0, err
	}
	courseID := owner.CourseID

	enrollment, err := s.enrollment(ctx, userID, courseID)
	if errors.Is(err, ErrNotEnrolled) {
		log.Printf("[ProgressService] Пользователь %d не записан на курс %d, викторина %d не учитывается", userID, courseID, quiz.ID)
		return false, courseID, nil
	}
	if err != nil {
		return false, courseID, err
	}

	course, set, err := s.load(ctx, userID, courseID)
	if err != nil {
		return false, courseID, err
	}
	// викторина урока не входит в элементы модуля, но засчитывает содержимое урока
	var module *entity.Module
	for i := range course.Modules {
		if course.Modules[i].ID == quiz.ModuleID {
			module = &course.Modules[i]
			break
		}
	}
	if module == nil {
		return false, courseID, fmt.Errorf("%w: module %d in course %d", apperrors.ErrNotFound, quiz.ModuleID, courseID)
	}
	_, created, err := s.complete(ctx, enrollment, course, set, module, progress.Item{Kind: entity.ItemKindQuiz, ID: quiz.ID}, false)
	return created, courseID, err
}

func (s *ProgressService) complete(
	ctx context.Context,
	enrollment *entity.Enrollment,
	course *entity.Course,
	set progress.Completions,
	module *entity.Module,
	item progress.Item,
	checkLock bool,
) (*progress.CourseProgress, bool, error) {
	if checkLock {
		before := progress.Course(course, set)
		for _, mp := range before.Modules {
			if mp.ModuleID == module.ID && mp.Locked {
				return nil, false, ErrModuleLocked
			}
		}
	}

	created, err := s.completionRepo.Upsert(ctx, &entity.Completion{
		UserID:      enrollment.UserID,
		ItemKind:    item.Kind,
		ItemID:      item.ID,
		ModuleID:    module.ID,
		CourseID:    course.ID,
		CompletedAt: s.clock(),
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to save completion: %w", err)
	}
	set[item] = true

	if created && item.Kind != entity.ItemKindQuiz {
		s.rewards.OnContentCompleted(ctx, enrollment.UserID, course.ID, item)
	}

	cp := progress.Course(course, set)
	if err := s.updateEnrollment(ctx, enrollment, course, cp); err != nil {
		return nil, created, err
	}
	return &cp, created, nil
}

// updateEnrollment сохраняет процент и переводит запись в completed,
// когда завершены все элементы курса
func (s *ProgressService) updateEnrollment(ctx context.Context, enrollment *entity.Enrollment, course *entity.Course, cp progress.CourseProgress) error {
	justCompleted := cp.Done() && enrollment.Status != entity.EnrollmentStatusCompleted
	if enrollment.ProgressPercent == cp.Percent && !justCompleted {
		return nil
	}

	enrollment.ProgressPercent = cp.Percent
	if justCompleted {
		completedAt := s.clock()
		enrollment.Status = entity.EnrollmentStatusCompleted
		enrollment.CompletedAt = &completedAt
	}
	if err := s.enrollmentRepo.UpdateProgress(ctx, enrollment); err != nil {
		return fmt.Errorf("failed to update enrollment: %w", err)
	}

	if justCompleted {
		log.Printf("[ProgressService] Пользователь %d завершил курс %d", enrollment.UserID, course.ID)
		s.rewards.OnCourseCompleted(ctx, enrollment.UserID, course.ID)
		s.sendCourseCompleted(ctx, enrollment.UserID, course)
	}
	return nil
}

func (s *ProgressService) sendCourseCompleted(ctx context.Context, userID uint, course *entity.Course) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		log.Printf("[ProgressService] Не удалось загрузить пользователя %d для письма: %v", userID, err)
		return
	}
	if err := s.email.SendCourseCompleted(ctx, user.Email, user.FullName, course.Title); err != nil {
		log.Printf("[ProgressService] Ошибка отправки письма о завершении курса %d: %v", course.ID, err)
	}
}

func (s *ProgressService) enrollment(ctx context.Context, userID, courseID uint) (*entity.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.Get(ctx, userID, courseID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, ErrNotEnrolled
	}
	return enrollment, err
}

func (s *ProgressService) load(ctx context.Context, userID, courseID uint) (*entity.Course, progress.Completions, error) {
	course, err := s.courseRepo.GetStructure(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.completionRepo.ListByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, nil, err
	}
	return course, progress.NewCompletions(records), nil
}
