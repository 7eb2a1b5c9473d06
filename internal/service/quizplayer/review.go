package quizplayer

import (
	"time"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

// ReviewStatus - отметка вопроса в разборе результата
type ReviewStatus string

// Отметки разбора
const (
	ReviewCorrect     ReviewStatus = "correct"
	ReviewIncorrect   ReviewStatus = "incorrect"
	ReviewNeedsReview ReviewStatus = "needs_review"
	ReviewUnanswered  ReviewStatus = "unanswered"
)

// ReviewItem - разбор одного вопроса
type ReviewItem struct {
	Index            int          `json:"index"`
	QuestionID       uint         `json:"question_id"`
	Text             string       `json:"text"`
	Status           ReviewStatus `json:"status"`
	SelectedOptionID *uint        `json:"selected_option_id,omitempty"`
	CorrectOptionID  *uint        `json:"correct_option_id,omitempty"`
	TextAnswer       string       `json:"text_answer,omitempty"`
	Explanation      string       `json:"explanation,omitempty"`
}

// ReviewQuestion отмечает вопрос по ответу пользователя.
// Короткие ответы всегда требуют ручной проверки, независимо от текста.
func ReviewQuestion(question *entity.Question, answer *Answer) ReviewStatus {
	if question.Type == entity.QuestionTypeShortAnswer {
		return ReviewNeedsReview
	}
	if answer == nil || answer.OptionID == nil {
		return ReviewUnanswered
	}
	if option, ok := question.OptionByID(*answer.OptionID); ok && option.IsCorrect {
		return ReviewCorrect
	}
	return ReviewIncorrect
}

// Review возвращает разбор завершенной попытки
func (p *Player) Review() ([]ReviewItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateCompleted {
		return nil, ErrNotCompleted
	}

	items := make([]ReviewItem, 0, len(p.questions))
	for i := range p.questions {
		question := &p.questions[i]
		item := ReviewItem{
			Index:       i,
			QuestionID:  question.ID,
			Text:        question.Text,
			Explanation: question.Explanation,
		}
		if correct, ok := question.CorrectOption(); ok {
			id := correct.ID
			item.CorrectOptionID = &id
		}

		var answer *Answer
		if a, ok := p.answers[question.ID]; ok {
			answer = &a
			item.SelectedOptionID = a.OptionID
			item.TextAnswer = a.Text
		}
		item.Status = ReviewQuestion(question, answer)
		items = append(items, item)
	}
	return items, nil
}

// OptionView - вариант ответа без отметки о правильности
type OptionView struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// QuestionView - вопрос в том виде, в каком его видит ученик
type QuestionView struct {
	ID      uint                `json:"id"`
	Text    string              `json:"text"`
	Type    entity.QuestionType `json:"type"`
	Points  int                 `json:"points"`
	Options []OptionView        `json:"options"`
}

// View - снимок состояния плеера для клиента
type View struct {
	State          State           `json:"state"`
	QuizID         uint            `json:"quiz_id,omitempty"`
	Title          string          `json:"title,omitempty"`
	AttemptID      uint            `json:"attempt_id,omitempty"`
	Current        int             `json:"current"`
	Total          int             `json:"total"`
	Answered       int             `json:"answered"`
	Question       *QuestionView   `json:"question,omitempty"`
	Answer         *Answer         `json:"answer,omitempty"`
	ElapsedSeconds int             `json:"elapsed_seconds"`
	Elapsed        string          `json:"elapsed"`
	Result         *entity.Attempt `json:"result,omitempty"`
}

// View возвращает снимок состояния плеера
func (p *Player) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := p.elapsed()
	view := View{
		State:          p.state,
		Current:        p.current,
		Total:          len(p.questions),
		Answered:       len(p.answers),
		ElapsedSeconds: int(elapsed / time.Second),
		Elapsed:        FormatElapsed(elapsed),
		Result:         p.result,
	}
	if p.quiz != nil {
		view.QuizID = p.quiz.ID
		view.Title = p.quiz.Title
	}
	if p.attempt != nil {
		view.AttemptID = p.attempt.ID
	}
	if p.current < len(p.questions) {
		question := p.questions[p.current]
		qv := &QuestionView{
			ID:      question.ID,
			Text:    question.Text,
			Type:    question.Type,
			Points:  question.EffectivePoints(),
			Options: make([]OptionView, 0, len(question.Options)),
		}
		for _, opt := range question.Options {
			qv.Options = append(qv.Options, OptionView{ID: opt.ID, Text: opt.Text})
		}
		view.Question = qv
		if answer, ok := p.answers[question.ID]; ok {
			view.Answer = &answer
		}
	}
	return view
}
