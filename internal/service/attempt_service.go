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
	"github.com/yourusername/lms-api/internal/service/quizplayer"
	"github.com/yourusername/lms-api/internal/service/scoring"
	"github.com/yourusername/lms-api/pkg/auth"
)

// QuizReader загружает викторину с вопросами и вариантами
type QuizReader interface {
	GetQuiz(ctx context.Context, quizID uint) (*entity.Quiz, error)
}

// QuizPassRecorder засчитывает успешно пройденную викторину в прогресс курса
type QuizPassRecorder interface {
	RecordQuizPassed(ctx context.Context, userID uint, quiz *entity.Quiz) (bool, uint, error)
}

// AnswerInput - ответ пользователя на вопрос
type AnswerInput struct {
	QuestionID uint
	OptionID   *uint
	Text       string
}

// AttemptService управляет попытками прохождения викторин и их проверкой
type AttemptService struct {
	attemptRepo repository.AttemptRepository
	userRepo    repository.UserRepository
	quizzes     QuizReader
	recorder    QuizPassRecorder
	rewards     Rewarder
	email       EmailService
	clock       func() time.Time
}

// NewAttemptService создает сервис попыток
func NewAttemptService(
	attemptRepo repository.AttemptRepository,
	userRepo repository.UserRepository,
	quizzes QuizReader,
	recorder QuizPassRecorder,
	rewards Rewarder,
	email EmailService,
) *AttemptService {
	return &AttemptService{
		attemptRepo: attemptRepo,
		userRepo:    userRepo,
		quizzes:     quizzes,
		recorder:    recorder,
		rewards:     rewards,
		email:       email,
		clock:       time.Now,
	}
}

// Start создает новую незавершенную попытку
func (s *AttemptService) Start(ctx context.Context, userID, quizID uint) (*entity.Attempt, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	attempt := &entity.Attempt{
		QuizID:         quiz.ID,
		UserID:         userID,
		StartedAt:      s.clock(),
		MaxScore:       quiz.MaxScore(),
		TotalQuestions: len(quiz.Questions),
	}
	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to start attempt: %w", err)
	}
	log.Printf("[AttemptService] Пользователь %d начал попытку %d викторины %d", userID, attempt.ID, quizID)
	return attempt, nil
}

// SubmitAnswer сохраняет ответ; повторный ответ на тот же вопрос заменяет предыдущий
func (s *AttemptService) SubmitAnswer(ctx context.Context, userID, attemptID uint, in AnswerInput) (*entity.Answer, error) {
	attempt, err := s.openAttempt(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}
	quiz, err := s.quizzes.GetQuiz(ctx, attempt.QuizID)
	if err != nil {
		return nil, err
	}
	question, ok := quiz.QuestionByID(in.QuestionID)
	if !ok {
		return nil, fmt.Errorf("%w: question %d is not part of quiz %d", apperrors.ErrValidation, in.QuestionID, quiz.ID)
	}

	answer := &entity.Answer{
		AttemptID:  attempt.ID,
		QuestionID: question.ID,
	}
	if question.Type.HasOptions() {
		if in.OptionID == nil {
			return nil, quizplayer.ErrWrongAnswerKind
		}
		if _, ok := question.OptionByID(*in.OptionID); !ok {
			return nil, quizplayer.ErrUnknownOption
		}
		answer.SelectedOptionID = in.OptionID
	} else {
		if in.OptionID != nil {
			return nil, quizplayer.ErrWrongAnswerKind
		}
		answer.TextAnswer = in.Text
	}

	if err := s.attemptRepo.UpsertAnswer(ctx, answer); err != nil {
		return nil, fmt.Errorf("failed to save answer: %w", err)
	}
	return answer, nil
}

// Complete проверяет ответы, завершает попытку и запускает последствия:
// отметку прогресса, опыт и значки, письмо с результатом.
func (s *AttemptService) Complete(ctx context.Context, userID, attemptID uint, elapsed time.Duration) (*entity.Attempt, error) {
	attempt, err := s.attemptRepo.GetWithAnswers(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, ErrAttemptNotOwned
	}
	if attempt.IsCompleted() {
		return nil, ErrAttemptCompleted
	}
	quiz, err := s.quizzes.GetQuiz(ctx, attempt.QuizID)
	if err != nil {
		return nil, err
	}

	result := scoring.Grade(quiz, attempt.Answers)
	scoring.Apply(attempt, result)
	completedAt := s.clock()
	attempt.CompletedAt = &completedAt
	if elapsed <= 0 {
		elapsed = completedAt.Sub(attempt.StartedAt)
	}
	attempt.DurationSeconds = int(elapsed / time.Second)

	if err := s.attemptRepo.Finish(ctx, attempt); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, ErrAttemptCompleted
		}
		return nil, fmt.Errorf("failed to save attempt result: %w", err)
	}
	log.Printf("[AttemptService] Попытка %d завершена: %d/%d (%d%%), passed=%v, на проверке=%d",
		attempt.ID, attempt.Score, attempt.MaxScore, attempt.Percentage, attempt.Passed, result.PendingReview)

	if attempt.Passed {
		s.onPassed(ctx, quiz, attempt)
	}
	s.sendResult(ctx, quiz, attempt)
	return attempt, nil
}

// onPassed засчитывает викторину и начисляет награды; ошибки только логируются
func (s *AttemptService) onPassed(ctx context.Context, quiz *entity.Quiz, attempt *entity.Attempt) {
	firstPass, courseID, err := s.recorder.RecordQuizPassed(ctx, attempt.UserID, quiz)
	if err != nil {
		log.Printf("[AttemptService] Не удалось засчитать викторину %d пользователю %d: %v", quiz.ID, attempt.UserID, err)
	}
	s.rewards.OnQuizPassed(ctx, attempt.UserID, courseID, attempt, firstPass)
}

func (s *AttemptService) sendResult(ctx context.Context, quiz *entity.Quiz, attempt *entity.Attempt) {
	user, err := s.userRepo.GetByID(ctx, attempt.UserID)
	if err != nil {
		log.Printf("[AttemptService] Не удалось загрузить пользователя %d для письма: %v", attempt.UserID, err)
		return
	}
	if err := s.email.SendQuizResult(ctx, user.Email, user.FullName, quiz.Title, attempt.Percentage, attempt.Passed); err != nil {
		log.Printf("[AttemptService] Ошибка отправки результата попытки %d: %v", attempt.ID, err)
	}
}

// GetAttempt возвращает попытку владельцу, автору викторины или администратору
func (s *AttemptService) GetAttempt(ctx context.Context, p *auth.Principal, attemptID uint) (*entity.Attempt, *entity.Quiz, error) {
	attempt, err := s.attemptRepo.GetWithAnswers(ctx, attemptID)
	if err != nil {
		return nil, nil, err
	}
	quiz, err := s.quizzes.GetQuiz(ctx, attempt.QuizID)
	if err != nil {
		return nil, nil, err
	}
	if attempt.UserID != p.UserID && !p.Owns(quiz.CreatedBy) {
		return nil, nil, ErrAttemptNotOwned
	}
	return attempt, quiz, nil
}

// Review возвращает разбор завершенной попытки по вопросам
func (s *AttemptService) Review(ctx context.Context, p *auth.Principal, attemptID uint) ([]quizplayer.ReviewItem, error) {
	attempt, quiz, err := s.GetAttempt(ctx, p, attemptID)
	if err != nil {
		return nil, err
	}
	if !attempt.IsCompleted() {
		return nil, quizplayer.ErrNotCompleted
	}
	return BuildReview(quiz, attempt.Answers), nil
}

// BuildReview строит разбор по вопросам викторины в порядке их следования.
// Проверенный вручную короткий ответ получает итоговую отметку.
func BuildReview(quiz *entity.Quiz, answers []entity.Answer) []quizplayer.ReviewItem {
	byQuestion := make(map[uint]*entity.Answer, len(answers))
	for i := range answers {
		byQuestion[answers[i].QuestionID] = &answers[i]
	}

	items := make([]quizplayer.ReviewItem, 0, len(quiz.Questions))
	for i := range quiz.Questions {
		question := &quiz.Questions[i]
		item := quizplayer.ReviewItem{
			Index:       i,
			QuestionID:  question.ID,
			Text:        question.Text,
			Explanation: question.Explanation,
		}
		if correct, ok := question.CorrectOption(); ok {
			id := correct.ID
			item.CorrectOptionID = &id
		}

		var given *quizplayer.Answer
		stored := byQuestion[question.ID]
		if stored != nil {
			given = &quizplayer.Answer{QuestionID: question.ID, OptionID: stored.SelectedOptionID, Text: stored.TextAnswer}
			item.SelectedOptionID = stored.SelectedOptionID
			item.TextAnswer = stored.TextAnswer
		}
		item.Status = quizplayer.ReviewQuestion(question, given)

		if question.Type == entity.QuestionTypeShortAnswer && stored != nil && !stored.NeedsReview {
			item.Status = quizplayer.ReviewIncorrect
			if stored.IsCorrect {
				item.Status = quizplayer.ReviewCorrect
			}
		}
		items = append(items, item)
	}
	return items
}

// GradeShortAnswer выставляет оценку короткому ответу и пересчитывает попытку.
// Если попытка становится успешной, она засчитывается в прогресс.
func (s *AttemptService) GradeShortAnswer(ctx context.Context, p *auth.Principal, answerID uint, isCorrect bool, points int) (*entity.Attempt, error) {
	if !p.CanAuthor() {
		return nil, ErrNotAuthor
	}
	stored, err := s.attemptRepo.GetAnswerByID(ctx, answerID)
	if err != nil {
		return nil, err
	}
	attempt, err := s.attemptRepo.GetWithAnswers(ctx, stored.AttemptID)
	if err != nil {
		return nil, err
	}
	quiz, err := s.quizzes.GetQuiz(ctx, attempt.QuizID)
	if err != nil {
		return nil, err
	}
	if !p.Owns(quiz.CreatedBy) {
		return nil, fmt.Errorf("%w: quiz %d belongs to another author", apperrors.ErrForbidden, quiz.ID)
	}
	if !attempt.IsCompleted() {
		return nil, quizplayer.ErrNotCompleted
	}

	question, ok := quiz.QuestionByID(stored.QuestionID)
	if !ok {
		return nil, fmt.Errorf("%w: question %d", apperrors.ErrNotFound, stored.QuestionID)
	}
	var answer *entity.Answer
	for i := range attempt.Answers {
		if attempt.Answers[i].ID == answerID {
			answer = &attempt.Answers[i]
			break
		}
	}
	if answer == nil {
		return nil, fmt.Errorf("%w: answer %d", apperrors.ErrNotFound, answerID)
	}
	if err := scoring.Review(question, answer, isCorrect, points); err != nil {
		return nil, err
	}

	wasPassed := attempt.Passed
	scoring.Apply(attempt, scoring.Summarize(quiz, attempt.Answers))
	if err := s.attemptRepo.SaveGrade(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to save review: %w", err)
	}
	log.Printf("[AttemptService] Ответ %d проверен пользователем %d: correct=%v, points=%d", answerID, p.UserID, isCorrect, points)

	if attempt.Passed && !wasPassed {
		s.onPassed(ctx, quiz, attempt)
	}
	return attempt, nil
}

// ListQuizResults возвращает завершенные попытки викторины ее автору
func (s *AttemptService) ListQuizResults(ctx context.Context, p *auth.Principal, quizID uint, page, pageSize int) ([]entity.Attempt, int64, error) {
	if err := s.authorizeResults(ctx, p, quizID); err != nil {
		return nil, 0, err
	}
	limit, offset := paginate(page, pageSize)
	return s.attemptRepo.ListByQuiz(ctx, quizID, limit, offset)
}

// ExportQuizResults возвращает все завершенные попытки для выгрузки
func (s *AttemptService) ExportQuizResults(ctx context.Context, p *auth.Principal, quizID uint) (*entity.Quiz, []entity.Attempt, error) {
	if err := s.authorizeResults(ctx, p, quizID); err != nil {
		return nil, nil, err
	}
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}
	attempts, err := s.attemptRepo.ListAllByQuiz(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}
	return quiz, attempts, nil
}

// ListMyAttempts возвращает попытки пользователя
func (s *AttemptService) ListMyAttempts(ctx context.Context, userID uint, page, pageSize int) ([]entity.Attempt, int64, error) {
	limit, offset := paginate(page, pageSize)
	return s.attemptRepo.ListByUser(ctx, userID, limit, offset)
}

// DeleteUnfinishedBefore удаляет брошенные попытки
func (s *AttemptService) DeleteUnfinishedBefore(ctx context.Context, before time.Time) (int64, error) {
	return s.attemptRepo.DeleteUnfinishedBefore(ctx, before)
}

func (s *AttemptService) authorizeResults(ctx context.Context, p *auth.Principal, quizID uint) error {
	if !p.CanAuthor() {
		return ErrNotAuthor
	}
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	if !p.Owns(quiz.CreatedBy) {
		return fmt.Errorf("%w: quiz %d belongs to another author", apperrors.ErrForbidden, quizID)
	}
	return nil
}

func (s *AttemptService) openAttempt(ctx context.Context, userID, attemptID uint) (*entity.Attempt, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, ErrAttemptNotOwned
	}
	if attempt.IsCompleted() {
		return nil, ErrAttemptCompleted
	}
	return attempt, nil
}

func paginate(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return pageSize, (page - 1) * pageSize
}
