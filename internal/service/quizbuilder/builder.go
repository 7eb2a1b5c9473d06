// Package quizbuilder содержит состояние мастера создания викторины:
// конструктор текущего вопроса и пошаговый мастер Info -> Questions -> Confirmation.
package quizbuilder

import (
	"strings"

	"github.com/yourusername/lms-api/internal/domain/entity"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
)

// Сообщения валидации, показываемые автору викторины
const (
	MsgQuestionTextRequired    = "Le texte de la question est requis"
	MsgMinOptions              = "Au moins 2 options sont requises pour les QCM"
	MsgSelectCorrect           = "Veuillez sélectionner la bonne réponse"
	MsgSelectCorrectTrueFalse  = "Veuillez sélectionner la bonne réponse (Vrai ou Faux)"
	MsgSingleCorrect           = "Une seule bonne réponse est autorisée"
	MsgTrueFalseOptions        = "Une question Vrai/Faux doit contenir exactement les options Vrai et Faux"
	MsgUnknownQuestionType     = "Type de question inconnu"
	MsgOptionsNotAllowed       = "Ce type de question n'a pas d'options"
	MsgOptionIndexOutOfRange   = "Option introuvable"
	MsgQuestionIndexOutOfRange = "Question introuvable"
	MsgInvalidPoints           = "Le nombre de points doit être positif"
)

// ValidationError - ошибка заполнения формы с сообщением для пользователя
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap позволяет обработчикам сопоставить ошибку с apperrors.ErrValidation
func (e *ValidationError) Unwrap() error {
	return apperrors.ErrValidation
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// OptionDraft - вариант ответа в черновике вопроса
type OptionDraft struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionDraft - вопрос в процессе создания
type QuestionDraft struct {
	Text        string              `json:"text"`
	Type        entity.QuestionType `json:"type"`
	Points      int                 `json:"points"`
	Explanation string              `json:"explanation"`
	Options     []OptionDraft       `json:"options"`
}

func newQuestionDraft() QuestionDraft {
	return QuestionDraft{
		Type:    entity.QuestionTypeMultipleChoice,
		Points:  entity.DefaultQuestionPoints,
		Options: canonicalOptions(entity.QuestionTypeMultipleChoice),
	}
}

func (q QuestionDraft) clone() QuestionDraft {
	c := q
	if q.Options != nil {
		c.Options = append([]OptionDraft(nil), q.Options...)
	}
	return c
}

// canonicalOptions возвращает набор вариантов, с которого начинается вопрос данного типа
func canonicalOptions(t entity.QuestionType) []OptionDraft {
	switch t {
	case entity.QuestionTypeMultipleChoice:
		return []OptionDraft{{}, {}}
	case entity.QuestionTypeTrueFalse:
		return []OptionDraft{{Text: entity.TrueOptionText}, {Text: entity.FalseOptionText}}
	default:
		return []OptionDraft{}
	}
}

// Builder собирает вопросы викторины по одному
type Builder struct {
	current   QuestionDraft
	questions []QuestionDraft
}

// NewBuilder создает конструктор с пустым вопросом типа multiple_choice
func NewBuilder() *Builder {
	return &Builder{current: newQuestionDraft()}
}

// Current возвращает копию вопроса под редактированием
func (b *Builder) Current() QuestionDraft {
	return b.current.clone()
}

// Questions возвращает копию списка добавленных вопросов
func (b *Builder) Questions() []QuestionDraft {
	out := make([]QuestionDraft, len(b.questions))
	for i, q := range b.questions {
		out[i] = q.clone()
	}
	return out
}

// Len возвращает количество добавленных вопросов
func (b *Builder) Len() int {
	return len(b.questions)
}

// SetQuestionText задает текст текущего вопроса
func (b *Builder) SetQuestionText(text string) {
	b.current.Text = text
}

// SetExplanation задает пояснение, показываемое после проверки
func (b *Builder) SetExplanation(text string) {
	b.current.Explanation = text
}

// SetPoints задает стоимость вопроса в баллах
func (b *Builder) SetPoints(points int) error {
	if points < 1 {
		return invalid(MsgInvalidPoints)
	}
	b.current.Points = points
	return nil
}

// SetQuestionType меняет тип вопроса и сбрасывает варианты к каноническому виду.
// Ранее введенные варианты теряются, даже если тип не изменился.
func (b *Builder) SetQuestionType(t entity.QuestionType) error {
	if !t.IsValid() {
		return invalid(MsgUnknownQuestionType)
	}
	b.current.Type = t
	b.current.Options = canonicalOptions(t)
	return nil
}

// AddOption добавляет пустой вариант (только для multiple_choice)
func (b *Builder) AddOption() error {
	if b.current.Type != entity.QuestionTypeMultipleChoice {
		return invalid(MsgOptionsNotAllowed)
	}
	b.current.Options = append(b.current.Options, OptionDraft{})
	return nil
}

// RemoveOption удаляет вариант. Если вариантов два или меньше, ничего не делает и возвращает false.
func (b *Builder) RemoveOption(index int) (bool, error) {
	if b.current.Type != entity.QuestionTypeMultipleChoice {
		return false, invalid(MsgOptionsNotAllowed)
	}
	if index < 0 || index >= len(b.current.Options) {
		return false, invalid(MsgOptionIndexOutOfRange)
	}
	if len(b.current.Options) <= 2 {
		return false, nil
	}
	b.current.Options = append(b.current.Options[:index], b.current.Options[index+1:]...)
	return true, nil
}

// SetOptionText задает текст варианта. Тексты вариантов Vrai/Faux не редактируются.
func (b *Builder) SetOptionText(index int, text string) error {
	if b.current.Type != entity.QuestionTypeMultipleChoice {
		return invalid(MsgOptionsNotAllowed)
	}
	if index < 0 || index >= len(b.current.Options) {
		return invalid(MsgOptionIndexOutOfRange)
	}
	b.current.Options[index].Text = text
	return nil
}

// SetOptionCorrect отмечает вариант правильным и снимает отметку с остальных
func (b *Builder) SetOptionCorrect(index int) error {
	if !b.current.Type.HasOptions() {
		return invalid(MsgOptionsNotAllowed)
	}
	if index < 0 || index >= len(b.current.Options) {
		return invalid(MsgOptionIndexOutOfRange)
	}
	for i := range b.current.Options {
		b.current.Options[i].IsCorrect = i == index
	}
	return nil
}

// LoadQuestion заменяет текущий вопрос готовым черновиком без сброса вариантов
func (b *Builder) LoadQuestion(q QuestionDraft) {
	b.current = q.clone()
	if b.current.Type == "" {
		b.current.Type = entity.QuestionTypeMultipleChoice
	}
}

// ValidateCurrentQuestion проверяет текущий вопрос
func (b *Builder) ValidateCurrentQuestion() error {
	return validateQuestion(b.current)
}

func validateQuestion(q QuestionDraft) error {
	if strings.TrimSpace(q.Text) == "" {
		return invalid(MsgQuestionTextRequired)
	}
	if q.Points < 0 {
		return invalid(MsgInvalidPoints)
	}

	switch q.Type {
	case entity.QuestionTypeMultipleChoice:
		filled, correct := 0, 0
		for _, opt := range q.Options {
			if strings.TrimSpace(opt.Text) == "" {
				continue
			}
			filled++
			if opt.IsCorrect {
				correct++
			}
		}
		if filled < 2 {
			return invalid(MsgMinOptions)
		}
		if correct == 0 {
			return invalid(MsgSelectCorrect)
		}
		if correct > 1 {
			return invalid(MsgSingleCorrect)
		}
	case entity.QuestionTypeTrueFalse:
		if len(q.Options) != 2 ||
			q.Options[0].Text != entity.TrueOptionText ||
			q.Options[1].Text != entity.FalseOptionText {
			return invalid(MsgTrueFalseOptions)
		}
		if q.Options[0].IsCorrect == q.Options[1].IsCorrect {
			return invalid(MsgSelectCorrectTrueFalse)
		}
	case entity.QuestionTypeShortAnswer:
		// правильность проверяется вручную
	default:
		return invalid(MsgUnknownQuestionType)
	}
	return nil
}

// CommitQuestion проверяет текущий вопрос, добавляет его в список
// без пустых вариантов и начинает новый вопрос multiple_choice
func (b *Builder) CommitQuestion() error {
	if err := b.ValidateCurrentQuestion(); err != nil {
		return err
	}

	q := b.current.clone()
	q.Text = strings.TrimSpace(q.Text)
	if q.Points < 1 {
		q.Points = entity.DefaultQuestionPoints
	}
	options := make([]OptionDraft, 0, len(q.Options))
	if q.Type.HasOptions() {
		for _, opt := range q.Options {
			if strings.TrimSpace(opt.Text) == "" {
				continue
			}
			options = append(options, opt)
		}
	}
	q.Options = options

	b.questions = append(b.questions, q)
	b.current = newQuestionDraft()
	return nil
}

// EditQuestion возвращает добавленный вопрос в конструктор для правки.
// Текущий несохраненный вопрос при этом теряется.
func (b *Builder) EditQuestion(index int) error {
	if index < 0 || index >= len(b.questions) {
		return invalid(MsgQuestionIndexOutOfRange)
	}
	b.current = b.questions[index].clone()
	b.questions = append(b.questions[:index], b.questions[index+1:]...)
	return nil
}

// RemoveQuestion удаляет добавленный вопрос
func (b *Builder) RemoveQuestion(index int) error {
	if index < 0 || index >= len(b.questions) {
		return invalid(MsgQuestionIndexOutOfRange)
	}
	b.questions = append(b.questions[:index], b.questions[index+1:]...)
	return nil
}

// Entities превращает добавленные вопросы в сущности для сохранения
func (b *Builder) Entities() []entity.Question {
	questions := make([]entity.Question, 0, len(b.questions))
	for _, q := range b.questions {
		question := entity.Question{
			Text:        q.Text,
			Type:        q.Type,
			Points:      q.Points,
			Explanation: q.Explanation,
		}
		for _, opt := range q.Options {
			question.Options = append(question.Options, entity.Option{
				Text:      opt.Text,
				IsCorrect: opt.IsCorrect,
			})
		}
		questions = append(questions, question)
	}
	return questions
}
