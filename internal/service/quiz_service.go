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
	"github.com/yourusername/lms-api/internal/service/quizbuilder"
	"github.com/yourusername/lms-api/pkg/auth"
)

// QuizService предоставляет методы для создания и чтения викторин
type QuizService struct {
	quizRepo     repository.QuizRepository
	questionRepo repository.QuestionRepository
	courseRepo   repository.CourseRepository
	cacheRepo    repository.CacheRepository
	draftTTL     time.Duration
	cacheTTL     time.Duration
}

// NewQuizService создает новый сервис викторин
func NewQuizService(
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	courseRepo repository.CourseRepository,
	cacheRepo repository.CacheRepository,
	draftTTL time.Duration,
	cacheTTL time.Duration,
) *QuizService {
	return &QuizService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		courseRepo:   courseRepo,
		cacheRepo:    cacheRepo,
		draftTTL:     draftTTL,
		cacheTTL:     cacheTTL,
	}
}

// UpdateQuizInput - изменяемые поля викторины
type UpdateQuizInput struct {
	Title        *string
	Description  *string
	PassingScore *int
}

// CreateWithQuestions сохраняет викторину вместе с вопросами.
// Используется мастером создания как Submitter.
func (s *QuizService) CreateWithQuestions(ctx context.Context, quiz *entity.Quiz) error {
	module, err := s.courseRepo.GetModule(ctx, quiz.ModuleID)
	if err != nil {
		return err
	}
	if quiz.LessonID != nil {
		lesson, err := s.courseRepo.GetLesson(ctx, *quiz.LessonID)
		if err != nil {
			return err
		}
		if lesson.ModuleID != module.ID {
			return fmt.Errorf("%w: lesson %d does not belong to module %d", apperrors.ErrValidation, lesson.ID, module.ID)
		}
	}

	if err := s.quizRepo.CreateWithQuestions(ctx, quiz); err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	s.invalidate(ctx, quiz.ID, module.CourseID)
	log.Printf("[QuizService] Создана викторина ID=%d (%d вопросов) в модуле %d", quiz.ID, len(quiz.Questions), module.ID)
	return nil
}

// SubmitWizard проверяет черновик мастера и сохраняет викторину.
// Каждый вопрос проходит ту же проверку, что и при добавлении в конструкторе.
func (s *QuizService) SubmitWizard(ctx context.Context, p *auth.Principal, draft quizbuilder.Draft) (*entity.Quiz, error) {
	if !p.CanAuthor() {
		return nil, ErrNotAuthor
	}

	wizard := quizbuilder.NewWizard(s, p.UserID)
	wizard.SetInfo(draft.Info)
	if err := wizard.Next(); err != nil {
		return nil, err
	}
	builder := wizard.Builder()
	for _, q := range draft.Questions {
		builder.LoadQuestion(q)
		if err := builder.CommitQuestion(); err != nil {
			return nil, err
		}
	}
	if err := wizard.Next(); err != nil {
		return nil, err
	}

	quiz, err := wizard.Submit(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cacheRepo.Delete(ctx, quizDraftKey(p.UserID)); err != nil {
		log.Printf("[QuizService] Не удалось удалить черновик пользователя %d: %v", p.UserID, err)
	}
	return quiz, nil
}

// SaveDraft сохраняет черновик мастера пользователя
func (s *QuizService) SaveDraft(ctx context.Context, userID uint, draft quizbuilder.Draft) error {
	return s.cacheRepo.SetJSON(ctx, quizDraftKey(userID), draft, s.draftTTL)
}

// LoadDraft возвращает сохраненный черновик, приведенный к допустимому шагу
func (s *QuizService) LoadDraft(ctx context.Context, userID uint) (*quizbuilder.Draft, error) {
	var draft quizbuilder.Draft
	if err := s.cacheRepo.GetJSON(ctx, quizDraftKey(userID), &draft); err != nil {
		return nil, err
	}
	restored := quizbuilder.RestoreWizard(draft, s, userID).Snapshot()
	return &restored, nil
}

// DeleteDraft удаляет черновик пользователя
func (s *QuizService) DeleteDraft(ctx context.Context, userID uint) error {
	return s.cacheRepo.Delete(ctx, quizDraftKey(userID))
}

// GetQuiz возвращает викторину с вопросами, используя кеш структуры
func (s *QuizService) GetQuiz(ctx context.Context, quizID uint) (*entity.Quiz, error) {
	var cached entity.Quiz
	err := s.cacheRepo.GetJSON(ctx, quizStructureKey(quizID), &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		log.Printf("[QuizService] Ошибка чтения кеша викторины %d: %v", quizID, err)
	}

	quiz, err := s.quizRepo.GetWithQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if err := s.cacheRepo.SetJSON(ctx, quizStructureKey(quizID), quiz, s.cacheTTL); err != nil {
		log.Printf("[QuizService] Не удалось закешировать викторину %d: %v", quizID, err)
	}
	return quiz, nil
}

// GetQuestionRows возвращает плоскую выборку вопросов для плеера
func (s *QuizService) GetQuestionRows(ctx context.Context, quizID uint) ([]entity.QuestionRow, error) {
	return s.quizRepo.GetQuestionRows(ctx, quizID)
}

// ListQuizzes возвращает страницу викторин
func (s *QuizService) ListQuizzes(ctx context.Context, filters repository.QuizFilters, page, pageSize int) ([]entity.Quiz, int64, error) {
	limit, offset := paginate(page, pageSize)
	return s.quizRepo.ListWithFilters(ctx, filters, limit, offset)
}

// UpdateQuiz изменяет название, описание или порог прохождения
func (s *QuizService) UpdateQuiz(ctx context.Context, p *auth.Principal, quizID uint, in UpdateQuizInput) (*entity.Quiz, error) {
	quiz, err := s.ownedQuiz(ctx, p, quizID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, &quizbuilder.ValidationError{Message: quizbuilder.MsgTitleRequired}
		}
		quiz.Title = title
	}
	if in.Description != nil {
		quiz.Description = *in.Description
	}
	if in.PassingScore != nil {
		if *in.PassingScore < 1 || *in.PassingScore > 100 {
			return nil, fmt.Errorf("%w: passing score must be between 1 and 100", apperrors.ErrValidation)
		}
		quiz.PassingScore = *in.PassingScore
	}

	if err := s.quizRepo.Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}
	s.invalidateQuiz(ctx, quiz)
	return quiz, nil
}

// DeleteQuiz удаляет викторину вместе с вопросами и попытками
func (s *QuizService) DeleteQuiz(ctx context.Context, p *auth.Principal, quizID uint) error {
	quiz, err := s.ownedQuiz(ctx, p, quizID)
	if err != nil {
		return err
	}
	if err := s.quizRepo.Delete(ctx, quizID); err != nil {
		return err
	}
	s.invalidateQuiz(ctx, quiz)
	log.Printf("[QuizService] Викторина ID=%d удалена пользователем %d", quizID, p.UserID)
	return nil
}

// AddQuestions проверяет и добавляет вопросы в конец существующей викторины
func (s *QuizService) AddQuestions(ctx context.Context, p *auth.Principal, quizID uint, drafts []quizbuilder.QuestionDraft) (*entity.Quiz, error) {
	quiz, err := s.ownedQuiz(ctx, p, quizID)
	if err != nil {
		return nil, err
	}
	if len(drafts) == 0 {
		return nil, &quizbuilder.ValidationError{Message: quizbuilder.MsgQuestionsRequired}
	}

	builder := quizbuilder.NewBuilder()
	for _, q := range drafts {
		builder.LoadQuestion(q)
		if err := builder.CommitQuestion(); err != nil {
			return nil, err
		}
	}

	if err := s.questionRepo.AppendToQuiz(ctx, quizID, builder.Entities()); err != nil {
		return nil, fmt.Errorf("failed to add questions: %w", err)
	}
	s.invalidateQuiz(ctx, quiz)
	return s.GetQuiz(ctx, quizID)
}

// DeleteQuestion удаляет вопрос викторины
func (s *QuizService) DeleteQuestion(ctx context.Context, p *auth.Principal, questionID uint) error {
	question, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		return err
	}
	quiz, err := s.ownedQuiz(ctx, p, question.QuizID)
	if err != nil {
		return err
	}
	if err := s.questionRepo.Delete(ctx, questionID); err != nil {
		return err
	}
	s.invalidateQuiz(ctx, quiz)
	return nil
}

// SetFinalQuiz назначает (или снимает при quizID == nil) итоговую викторину модуля
func (s *QuizService) SetFinalQuiz(ctx context.Context, p *auth.Principal, moduleID uint, quizID *uint) error {
	if !p.CanAuthor() {
		return ErrNotAuthor
	}
	module, err := s.courseRepo.GetModule(ctx, moduleID)
	if err != nil {
		return err
	}
	if quizID != nil {
		quiz, err := s.ownedQuiz(ctx, p, *quizID)
		if err != nil {
			return err
		}
		if quiz.ModuleID != moduleID {
			return fmt.Errorf("%w: quiz %d does not belong to module %d", apperrors.ErrValidation, quiz.ID, moduleID)
		}
	}
	if err := s.courseRepo.SetModuleFinalQuiz(ctx, moduleID, quizID); err != nil {
		return err
	}
	s.invalidate(ctx, 0, module.CourseID)
	return nil
}

// ownedQuiz загружает викторину и проверяет, что пользователь может ее менять
func (s *QuizService) ownedQuiz(ctx context.Context, p *auth.Principal, quizID uint) (*entity.Quiz, error) {
	if !p.CanAuthor() {
		return nil, ErrNotAuthor
	}
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !p.Owns(quiz.CreatedBy) {
		return nil, fmt.Errorf("%w: quiz %d belongs to another author", apperrors.ErrForbidden, quizID)
	}
	return quiz, nil
}

func (s *QuizService) invalidateQuiz(ctx context.Context, quiz *entity.Quiz) {
	var courseID uint
	if module, err := s.courseRepo.GetModule(ctx, quiz.ModuleID); err == nil {
		courseID = module.CourseID
	}
	s.invalidate(ctx, quiz.ID, courseID)
}

func (s *QuizService) invalidate(ctx context.Context, quizID, courseID uint) {
	keys := make([]string, 0, 2)
	if quizID != 0 {
		keys = append(keys, quizStructureKey(quizID))
	}
	if courseID != 0 {
		keys = append(keys, courseStructureKey(courseID))
	}
	if err := s.cacheRepo.Delete(ctx, keys...); err != nil {
		log.Printf("[QuizService] Не удалось сбросить кеш %v: %v", keys, err)
	}
}
