package quizbuilder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yourusername/lms-api/internal/domain/entity"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
)

// Сообщения шагов мастера
const (
	MsgTitleRequired     = "Le titre du quiz est requis"
	MsgModuleRequired    = "Veuillez sélectionner un module"
	MsgQuestionsRequired = "Au moins une question est requise"
	MsgCreateFailed      = "Erreur lors de la création du quiz"
)

// Step - шаг мастера создания викторины
type Step int

// Шаги мастера
const (
	StepInfo Step = iota + 1
	StepQuestions
	StepConfirmation
	StepSubmitted
)

func (s Step) String() string {
	switch s {
	case StepInfo:
		return "info"
	case StepQuestions:
		return "questions"
	case StepConfirmation:
		return "confirmation"
	case StepSubmitted:
		return "submitted"
	}
	return "unknown"
}

// ErrAlreadySubmitted возвращается при повторной отправке мастера
var ErrAlreadySubmitted = fmt.Errorf("%w: quiz wizard already submitted", apperrors.ErrConflict)

// Info - общие сведения о викторине (первый шаг)
type Info struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ModuleID     uint   `json:"module_id"`
	LessonID     *uint  `json:"lesson_id,omitempty"`
	PassingScore int    `json:"passing_score"`
}

// Submitter сохраняет викторину со всеми вопросами одной операцией
type Submitter interface {
	CreateWithQuestions(ctx context.Context, quiz *entity.Quiz) error
}

// Draft - сериализуемый снимок мастера для продолжения работы позже
type Draft struct {
	Step      Step            `json:"step"`
	Info      Info            `json:"info"`
	Current   QuestionDraft   `json:"current"`
	Questions []QuestionDraft `json:"questions"`
}

// Wizard - линейный мастер Info -> Questions -> Confirmation -> Submitted
type Wizard struct {
	step      Step
	info      Info
	builder   *Builder
	submitter Submitter
	authorID  uint
}

// NewWizard создает мастер на первом шаге
func NewWizard(submitter Submitter, authorID uint) *Wizard {
	return &Wizard{
		step:      StepInfo,
		builder:   NewBuilder(),
		submitter: submitter,
		authorID:  authorID,
	}
}

// RestoreWizard восстанавливает мастер из черновика.
// Отправленный черновик возвращается на шаг подтверждения.
func RestoreWizard(d Draft, submitter Submitter, authorID uint) *Wizard {
	w := NewWizard(submitter, authorID)
	w.info = d.Info
	w.builder.LoadQuestion(d.Current)
	if len(d.Current.Options) == 0 && d.Current.Type == entity.QuestionTypeMultipleChoice {
		w.builder.current.Options = canonicalOptions(entity.QuestionTypeMultipleChoice)
	}
	if w.builder.current.Points == 0 {
		w.builder.current.Points = entity.DefaultQuestionPoints
	}
	for _, q := range d.Questions {
		w.builder.questions = append(w.builder.questions, q.clone())
	}

	switch d.Step {
	case StepInfo, StepQuestions, StepConfirmation:
		w.step = d.Step
	case StepSubmitted:
		w.step = StepConfirmation
	default:
		w.step = StepInfo
	}
	return w
}

// Snapshot возвращает черновик текущего состояния
func (w *Wizard) Snapshot() Draft {
	return Draft{
		Step:      w.step,
		Info:      w.info,
		Current:   w.builder.Current(),
		Questions: w.builder.Questions(),
	}
}

// Step возвращает текущий шаг
func (w *Wizard) Step() Step {
	return w.step
}

// Info возвращает сведения о викторине
func (w *Wizard) Info() Info {
	return w.info
}

// SetInfo задает сведения о викторине
func (w *Wizard) SetInfo(info Info) {
	w.info = info
}

// Builder возвращает конструктор вопросов
func (w *Wizard) Builder() *Builder {
	return w.builder
}

// Back возвращает на предыдущий шаг; на первом шаге ничего не делает
func (w *Wizard) Back() {
	if w.step > StepInfo && w.step < StepSubmitted {
		w.step--
	}
}

// Next переходит на следующий шаг, если текущий заполнен
func (w *Wizard) Next() error {
	switch w.step {
	case StepInfo:
		if err := w.checkInfo(); err != nil {
			return err
		}
		w.step = StepQuestions
	case StepQuestions:
		if w.builder.Len() == 0 {
			return invalid(MsgQuestionsRequired)
		}
		w.step = StepConfirmation
	case StepSubmitted:
		return ErrAlreadySubmitted
	}
	return nil
}

func (w *Wizard) checkInfo() error {
	if strings.TrimSpace(w.info.Title) == "" {
		return invalid(MsgTitleRequired)
	}
	if w.info.ModuleID == 0 {
		return invalid(MsgModuleRequired)
	}
	return nil
}

// Submit сохраняет викторину. При ошибке мастер остается на шаге подтверждения,
// и отправку можно повторить.
func (w *Wizard) Submit(ctx context.Context) (*entity.Quiz, error) {
	if w.step == StepSubmitted {
		return nil, ErrAlreadySubmitted
	}
	if err := w.checkInfo(); err != nil {
		return nil, err
	}
	if w.builder.Len() == 0 {
		return nil, invalid(MsgQuestionsRequired)
	}
	w.step = StepConfirmation

	passing := w.info.PassingScore
	if passing <= 0 || passing > 100 {
		passing = entity.DefaultPassingScore
	}
	quiz := &entity.Quiz{
		Title:        strings.TrimSpace(w.info.Title),
		Description:  w.info.Description,
		ModuleID:     w.info.ModuleID,
		LessonID:     w.info.LessonID,
		PassingScore: passing,
		CreatedBy:    w.authorID,
		Questions:    w.builder.Entities(),
	}

	if err := w.submitter.CreateWithQuestions(ctx, quiz); err != nil {
		return nil, &SubmitError{Err: err}
	}

	w.step = StepSubmitted
	return quiz, nil
}

// SubmitError - ошибка сохранения викторины
type SubmitError struct {
	Err error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("%s: %v", MsgCreateFailed, e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// IsValidationError сообщает, является ли ошибка ошибкой заполнения формы
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
