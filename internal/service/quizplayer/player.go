// Package quizplayer реализует прохождение викторины: загрузку вопросов,
// навигацию, ответы, отправку и разбор результата.
package quizplayer

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/yourusername/lms-api/internal/domain/entity"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
)

// Сообщения для пользователя
const (
	MsgLoadFailed     = "Erreur lors du chargement du quiz"
	MsgStartFailed    = "Impossible de démarrer la tentative"
	MsgAnswerFailed   = "Erreur lors de l'envoi des réponses"
	MsgCompleteFailed = "Erreur lors de la finalisation du quiz"
	MsgNotStarted     = "La tentative n'a pas démarré, les réponses ne peuvent pas être envoyées"
	MsgCompleted      = "Quiz terminé"
)

// Ошибки плеера
var (
	ErrNotLoaded       = fmt.Errorf("%w: quiz is not loaded", apperrors.ErrConflict)
	ErrNotStarted      = fmt.Errorf("%w: attempt is not started", apperrors.ErrConflict)
	ErrAlreadyStarted  = fmt.Errorf("%w: attempt is already started", apperrors.ErrConflict)
	ErrCompleted       = fmt.Errorf("%w: attempt is already completed", apperrors.ErrConflict)
	ErrNotCompleted    = fmt.Errorf("%w: attempt is not completed", apperrors.ErrConflict)
	ErrIndexOutOfRange = fmt.Errorf("%w: question index out of range", apperrors.ErrValidation)
	ErrWrongAnswerKind = fmt.Errorf("%w: answer kind does not match question type", apperrors.ErrValidation)
	ErrUnknownOption   = fmt.Errorf("%w: option does not belong to question", apperrors.ErrValidation)
)

// State - состояние плеера
type State string

// Состояния плеера
const (
	StateIdle       State = "idle"
	StateLoaded     State = "loaded"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

// Answer - ответ на вопрос: выбранный вариант или свободный текст
type Answer struct {
	QuestionID uint   `json:"question_id"`
	OptionID   *uint  `json:"option_id,omitempty"`
	Text       string `json:"text,omitempty"`
}

// Gateway - доступ плеера к хранилищу. Реализация привязана к конкретному пользователю.
type Gateway interface {
	LoadQuiz(ctx context.Context, quizID uint) (*entity.Quiz, []entity.QuestionRow, error)
	StartAttempt(ctx context.Context, quizID uint) (*entity.Attempt, error)
	SubmitAnswer(ctx context.Context, attemptID uint, answer Answer) error
	// CompleteAttempt завершает попытку и возвращает проверенный результат
	CompleteAttempt(ctx context.Context, attemptID uint, elapsed time.Duration) (*entity.Attempt, error)
}

// Level - уровень уведомления
type Level string

// Уровни уведомлений
const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier показывает пользователю временные уведомления
type Notifier interface {
	Notify(level Level, message string)
}

// NotifierFunc адаптирует функцию к Notifier
type NotifierFunc func(level Level, message string)

// Notify вызывает f(level, message)
func (f NotifierFunc) Notify(level Level, message string) {
	f(level, message)
}

// PlayerOption настраивает плеер
type PlayerOption func(*Player)

// WithClock подменяет источник текущего времени
func WithClock(clock func() time.Time) PlayerOption {
	return func(p *Player) {
		p.clock = clock
	}
}

// Player хранит состояние прохождения одной викторины одним пользователем.
// Методы безопасны для вызова из нескольких горутин.
type Player struct {
	mu       sync.Mutex
	gateway  Gateway
	notifier Notifier
	clock    func() time.Time

	state      State
	quiz       *entity.Quiz
	questions  []entity.Question
	current    int
	answers    map[uint]Answer
	attempt    *entity.Attempt
	startedAt  time.Time
	finishedAt time.Time
	result     *entity.Attempt
}

// NewPlayer создает плеер
func NewPlayer(gateway Gateway, notifier Notifier, opts ...PlayerOption) *Player {
	p := &Player{
		gateway:  gateway,
		notifier: notifier,
		clock:    time.Now,
		state:    StateIdle,
		answers:  make(map[uint]Answer),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Player) notify(level Level, message string) {
	if p.notifier != nil {
		p.notifier.Notify(level, message)
	}
}

// Load загружает викторину и сбрасывает прохождение
func (p *Player) Load(ctx context.Context, quizID uint) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	quiz, rows, err := p.gateway.LoadQuiz(ctx, quizID)
	if err != nil {
		log.Printf("[QuizPlayer] Ошибка загрузки викторины %d: %v", quizID, err)
		p.notify(LevelError, MsgLoadFailed)
		return err
	}

	p.quiz = quiz
	p.questions = GroupRows(rows)
	p.quiz.Questions = p.questions
	p.resetAttempt()
	p.state = StateLoaded
	return nil
}

func (p *Player) resetAttempt() {
	p.current = 0
	p.answers = make(map[uint]Answer)
	p.attempt = nil
	p.result = nil
	p.startedAt = time.Time{}
	p.finishedAt = time.Time{}
}

// Start создает попытку. Ошибка не мешает просматривать вопросы.
func (p *Player) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StateIdle:
		return ErrNotLoaded
	case StateInProgress:
		return ErrAlreadyStarted
	case StateCompleted:
		return ErrCompleted
	}

	attempt, err := p.gateway.StartAttempt(ctx, p.quiz.ID)
	if err != nil {
		log.Printf("[QuizPlayer] Ошибка создания попытки для викторины %d: %v", p.quiz.ID, err)
		p.notify(LevelError, MsgStartFailed)
		return err
	}

	p.attempt = attempt
	p.startedAt = p.clock()
	p.state = StateInProgress
	return nil
}

func (p *Player) questionAt(index int) (*entity.Question, error) {
	if p.state == StateIdle {
		return nil, ErrNotLoaded
	}
	if p.state == StateCompleted {
		return nil, ErrCompleted
	}
	if index < 0 || index >= len(p.questions) {
		return nil, ErrIndexOutOfRange
	}
	return &p.questions[index], nil
}

// AnswerOption запоминает выбранный вариант. Повторный ответ перезаписывает предыдущий.
func (p *Player) AnswerOption(index int, optionID uint) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	question, err := p.questionAt(index)
	if err != nil {
		return err
	}
	if !question.Type.HasOptions() {
		return ErrWrongAnswerKind
	}
	if _, ok := question.OptionByID(optionID); !ok {
		return ErrUnknownOption
	}
	id := optionID
	p.answers[question.ID] = Answer{QuestionID: question.ID, OptionID: &id}
	return nil
}

// AnswerText запоминает свободный ответ. Повторный ответ перезаписывает предыдущий.
func (p *Player) AnswerText(index int, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	question, err := p.questionAt(index)
	if err != nil {
		return err
	}
	if question.Type != entity.QuestionTypeShortAnswer {
		return ErrWrongAnswerKind
	}
	p.answers[question.ID] = Answer{QuestionID: question.ID, Text: text}
	return nil
}

// Navigate переходит к вопросу; индекс ограничивается диапазоном [0, n-1]
func (p *Player) Navigate(index int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.navigate(index)
}

func (p *Player) navigate(index int) int {
	switch {
	case len(p.questions) == 0:
		index = 0
	case index < 0:
		index = 0
	case index >= len(p.questions):
		index = len(p.questions) - 1
	}
	p.current = index
	return p.current
}

// Next переходит к следующему вопросу
func (p *Player) Next() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.navigate(p.current + 1)
}

// Prev переходит к предыдущему вопросу
func (p *Player) Prev() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.navigate(p.current - 1)
}

// Submit отправляет ответы в порядке вопросов и завершает попытку.
// При первой ошибке отправка прерывается, состояние плеера не меняется.
func (p *Player) Submit(ctx context.Context) (*entity.Attempt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StateIdle:
		return nil, ErrNotLoaded
	case StateLoaded:
		p.notify(LevelError, MsgNotStarted)
		return nil, ErrNotStarted
	case StateCompleted:
		return nil, ErrCompleted
	}

	for _, question := range p.questions {
		answer, ok := p.answers[question.ID]
		if !ok {
			continue
		}
		if err := p.gateway.SubmitAnswer(ctx, p.attempt.ID, answer); err != nil {
			log.Printf("[QuizPlayer] Ошибка отправки ответа на вопрос %d (попытка %d): %v", question.ID, p.attempt.ID, err)
			p.notify(LevelError, MsgAnswerFailed)
			return nil, err
		}
	}

	finishedAt := p.clock()
	result, err := p.gateway.CompleteAttempt(ctx, p.attempt.ID, finishedAt.Sub(p.startedAt))
	if err != nil {
		log.Printf("[QuizPlayer] Ошибка завершения попытки %d: %v", p.attempt.ID, err)
		p.notify(LevelError, MsgCompleteFailed)
		return nil, err
	}

	p.finishedAt = finishedAt
	p.result = result
	p.state = StateCompleted
	p.notify(LevelSuccess, MsgCompleted)
	return result, nil
}

// Restart начинает прохождение той же викторины заново
func (p *Player) Restart() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateIdle {
		return ErrNotLoaded
	}
	p.resetAttempt()
	p.state = StateLoaded
	return nil
}

// Elapsed возвращает время с начала попытки
func (p *Player) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elapsed()
}

func (p *Player) elapsed() time.Duration {
	switch p.state {
	case StateInProgress:
		return p.clock().Sub(p.startedAt)
	case StateCompleted:
		return p.finishedAt.Sub(p.startedAt)
	}
	return 0
}

// FormatElapsed форматирует длительность как m:ss
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// State возвращает состояние плеера
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Current возвращает индекс текущего вопроса
func (p *Player) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Answers возвращает ответы в порядке вопросов
func (p *Player) Answers() []Answer {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Answer, 0, len(p.answers))
	for _, question := range p.questions {
		if answer, ok := p.answers[question.ID]; ok {
			out = append(out, answer)
		}
	}
	return out
}

// Result возвращает результат завершенной попытки
func (p *Player) Result() *entity.Attempt {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}
