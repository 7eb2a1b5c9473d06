package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/domain/repository"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
	"github.com/yourusername/lms-api/internal/service/content"
	"github.com/yourusername/lms-api/pkg/auth"
)

// VideoEnricher дополняет видео метаданными площадки
type VideoEnricher interface {
	Enrich(ctx context.Context, video *entity.Video)
}

// UpdateCourseInput - изменяемые поля курса
type UpdateCourseInput struct {
	Title       *string
	Description *string
	Level       *entity.CourseLevel
	IsPublished *bool
}

// CourseService управляет каталогом курсов, структурой и записью на курсы
type CourseService struct {
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
	cacheRepo      repository.CacheRepository
	viewers        *content.Registry
	videos         VideoEnricher
	cacheTTL       time.Duration
	clock          func() time.Time
}

// NewCourseService создает сервис курсов
func NewCourseService(
	courseRepo repository.CourseRepository,
	enrollmentRepo repository.EnrollmentRepository,
	cacheRepo repository.CacheRepository,
	viewers *content.Registry,
	videos VideoEnricher,
	cacheTTL time.Duration,
) *CourseService {
	return &CourseService{
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		cacheRepo:      cacheRepo,
		viewers:        viewers,
		videos:         videos,
		cacheTTL:       cacheTTL,
		clock:          time.Now,
	}
}

// ListCourses возвращает страницу каталога. Неопубликованные курсы видят
// только их авторы и администраторы.
func (s *CourseService) ListCourses(ctx context.Context, p *auth.Principal, filters repository.CourseFilters, page, pageSize int) ([]entity.Course, int64, error) {
	if filters.Level != "" && !filters.Level.IsValid() {
		return nil, 0, fmt.Errorf("%w: unknown course level %q", apperrors.ErrValidation, filters.Level)
	}
	switch {
	case p.IsAdmin():
	case p.CanAuthor() && filters.InstructorID == p.UserID:
	default:
		filters.PublishedOnly = true
	}
	limit, offset := paginate(page, pageSize)
	return s.courseRepo.List(ctx, filters, limit, offset)
}

// GetStructure возвращает курс со всей структурой, используя кеш
func (s *CourseService) GetStructure(ctx context.Context, p *auth.Principal, courseID uint) (*entity.Course, error) {
	course, err := s.structure(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished && !p.Owns(course.InstructorID) {
		return nil, fmt.Errorf("%w: course %d", apperrors.ErrNotFound, courseID)
	}
	return course, nil
}

func (s *CourseService) structure(ctx context.Context, courseID uint) (*entity.Course, error) {
	var cached entity.Course
	err := s.cacheRepo.GetJSON(ctx, courseStructureKey(courseID), &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		log.Printf("[CourseService] Ошибка чтения кеша курса %d: %v", courseID, err)
	}

	course, err := s.courseRepo.GetStructure(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.cacheRepo.SetJSON(ctx, courseStructureKey(courseID), course, s.cacheTTL); err != nil {
		log.Printf("[CourseService] Не удалось закешировать курс %d: %v", courseID, err)
	}
	return course, nil
}

// CreateCourse проверяет и сохраняет курс со всей структурой одной транзакцией
func (s *CourseService) CreateCourse(ctx context.Context, p *auth.Principal, course *entity.Course) error {
	if !p.CanAuthor() {
		return ErrNotAuthor
	}
	if err := validateCourse(course); err != nil {
		return err
	}
	course.InstructorID = p.UserID
	for i := range course.Modules {
		for j := range course.Modules[i].Videos {
			s.videos.Enrich(ctx, &course.Modules[i].Videos[j])
		}
	}

	if err := s.courseRepo.CreateWithModules(ctx, course); err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	log.Printf("[CourseService] Курс ID=%d создан пользователем %d (%d модулей)", course.ID, p.UserID, len(course.Modules))
	return nil
}

func validateCourse(course *entity.Course) error {
	course.Title = strings.TrimSpace(course.Title)
	if course.Title == "" {
		return fmt.Errorf("%w: course title is required", apperrors.ErrValidation)
	}
	if course.Level == "" {
		course.Level = entity.CourseLevelBeginner
	}
	if !course.Level.IsValid() {
		return fmt.Errorf("%w: unknown course level %q", apperrors.ErrValidation, course.Level)
	}
	for i, module := range course.Modules {
		if strings.TrimSpace(module.Title) == "" {
			return fmt.Errorf("%w: module %d title is required", apperrors.ErrValidation, i+1)
		}
		for j, lesson := range module.Lessons {
			if strings.TrimSpace(lesson.Title) == "" {
				return fmt.Errorf("%w: lesson %d of module %d title is required", apperrors.ErrValidation, j+1, i+1)
			}
			for _, c := range lesson.Contents {
				if !c.Kind.IsValid() {
					return fmt.Errorf("%w: unknown content kind %q", apperrors.ErrValidation, c.Kind)
				}
				if (c.Kind == entity.ContentKindVideo || c.Kind == entity.ContentKindPDF) && strings.TrimSpace(c.Body) == "" {
					return fmt.Errorf("%w: %s content requires a URL", apperrors.ErrValidation, c.Kind)
				}
			}
		}
		for _, v := range module.Videos {
			if strings.TrimSpace(v.URL) == "" {
				return fmt.Errorf("%w: video URL is required", apperrors.ErrValidation)
			}
		}
		for _, d := range module.Documents {
			if strings.TrimSpace(d.URL) == "" {
				return fmt.Errorf("%w: document URL is required", apperrors.ErrValidation)
			}
		}
	}
	return nil
}

// UpdateCourse изменяет основные поля курса и публикацию
func (s *CourseService) UpdateCourse(ctx context.Context, p *auth.Principal, courseID uint, in UpdateCourseInput) (*entity.Course, error) {
	course, err := s.ownedCourse(ctx, p, courseID)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: course title is required", apperrors.ErrValidation)
		}
		course.Title = title
	}
	if in.Description != nil {
		course.Description = *in.Description
	}
	if in.Level != nil {
		if !in.Level.IsValid() {
			return nil, fmt.Errorf("%w: unknown course level %q", apperrors.ErrValidation, *in.Level)
		}
		course.Level = *in.Level
	}
	if in.IsPublished != nil {
		course.IsPublished = *in.IsPublished
	}

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}
	s.invalidate(ctx, courseID)
	return course, nil
}

// DeleteCourse удаляет курс со всей структурой
func (s *CourseService) DeleteCourse(ctx context.Context, p *auth.Principal, courseID uint) error {
	if _, err := s.ownedCourse(ctx, p, courseID); err != nil {
		return err
	}
	if err := s.courseRepo.Delete(ctx, courseID); err != nil {
		return err
	}
	s.invalidate(ctx, courseID)
	log.Printf("[CourseService] Курс ID=%d удален пользователем %d", courseID, p.UserID)
	return nil
}

// AddVideo добавляет видео в модуль; тип и метаданные определяются по ссылке
func (s *CourseService) AddVideo(ctx context.Context, p *auth.Principal, moduleID uint, video *entity.Video) error {
	module, err := s.ownedModule(ctx, p, moduleID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(video.URL) == "" {
		return fmt.Errorf("%w: video URL is required", apperrors.ErrValidation)
	}
	video.ModuleID = module.ID
	s.videos.Enrich(ctx, video)
	if strings.TrimSpace(video.Title) == "" {
		return fmt.Errorf("%w: video title is required", apperrors.ErrValidation)
	}
	if err := s.courseRepo.AddVideo(ctx, video); err != nil {
		return err
	}
	s.invalidate(ctx, module.CourseID)
	return nil
}

// AddDocument добавляет документ в модуль
func (s *CourseService) AddDocument(ctx context.Context, p *auth.Principal, moduleID uint, document *entity.Document) error {
	module, err := s.ownedModule(ctx, p, moduleID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(document.Title) == "" || strings.TrimSpace(document.URL) == "" {
		return fmt.Errorf("%w: document title and URL are required", apperrors.ErrValidation)
	}
	if document.Type != entity.DocumentTypeFile {
		document.Type = entity.DocumentTypeURL
	}
	document.ModuleID = module.ID
	if err := s.courseRepo.AddDocument(ctx, document); err != nil {
		return err
	}
	s.invalidate(ctx, module.CourseID)
	return nil
}

// Enroll записывает пользователя на опубликованный курс
func (s *CourseService) Enroll(ctx context.Context, userID, courseID uint) (*entity.Enrollment, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished {
		return nil, fmt.Errorf("%w: course %d", apperrors.ErrNotFound, courseID)
	}

	if _, err := s.enrollmentRepo.Get(ctx, userID, courseID); err == nil {
		return nil, ErrAlreadyEnrolled
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	enrollment := &entity.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		Status:     entity.EnrollmentStatusActive,
		EnrolledAt: s.clock(),
	}
	if err := s.enrollmentRepo.Create(ctx, enrollment); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, fmt.Errorf("failed to enroll: %w", err)
	}
	log.Printf("[CourseService] Пользователь %d записан на курс %d", userID, courseID)
	return enrollment, nil
}

// MyCourses возвращает записи пользователя на курсы с сохраненным прогрессом
func (s *CourseService) MyCourses(ctx context.Context, userID uint) ([]entity.Enrollment, error) {
	return s.enrollmentRepo.ListByUser(ctx, userID)
}

// ContentView строит представление элемента урока для записанного пользователя
func (s *CourseService) ContentView(ctx context.Context, p *auth.Principal, contentID uint) (*content.View, error) {
	item, _, courseID, err := s.courseRepo.GetContent(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(ctx, p, courseID); err != nil {
		return nil, err
	}
	view, err := s.viewers.Render(item)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ModuleResources возвращает представления ресурсов модуля
func (s *CourseService) ModuleResources(ctx context.Context, p *auth.Principal, moduleID uint) ([]content.View, error) {
	module, err := s.courseRepo.GetModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(ctx, p, module.CourseID); err != nil {
		return nil, err
	}
	course, err := s.structure(ctx, module.CourseID)
	if err != nil {
		return nil, err
	}
	for i := range course.Modules {
		if course.Modules[i].ID != moduleID {
			continue
		}
		resources := course.Modules[i].Resources()
		views := make([]content.View, 0, len(resources))
		for _, r := range resources {
			views = append(views, content.RenderResource(r))
		}
		return views, nil
	}
	return nil, fmt.Errorf("%w: module %d", apperrors.ErrNotFound, moduleID)
}

// checkAccess пропускает записанных на курс, автора курса и администратора
func (s *CourseService) checkAccess(ctx context.Context, p *auth.Principal, courseID uint) error {
	if p.IsAdmin() {
		return nil
	}
	_, err := s.enrollmentRepo.Get(ctx, p.UserID, courseID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return err
	}
	if course.InstructorID == p.UserID {
		return nil
	}
	return ErrNotEnrolled
}

func (s *CourseService) ownedCourse(ctx context.Context, p *auth.Principal, courseID uint) (*entity.Course, error) {
	if !p.CanAuthor() {
		return nil, ErrNotAuthor
	}
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !p.Owns(course.InstructorID) {
		return nil, fmt.Errorf("%w: course %d belongs to another instructor", apperrors.ErrForbidden, courseID)
	}
	return course, nil
}

func (s *CourseService) ownedModule(ctx context.Context, p *auth.Principal, moduleID uint) (*entity.Module, error) {
	module, err := s.courseRepo.GetModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedCourse(ctx, p, module.CourseID); err != nil {
		return nil, err
	}
	return module, nil
}

func (s *CourseService) invalidate(ctx context.Context, courseID uint) {
	if err := s.cacheRepo.Delete(ctx, courseStructureKey(courseID)); err != nil {
		log.Printf("[CourseService] Не удалось сбросить кеш курса %d: %v", courseID, err)
	}
}
