// Package scoring подсчитывает результат попытки прохождения викторины.
package scoring

import (
	"fmt"
	"math"

	"github.com/yourusername/lms-api/internal/domain/entity"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
)

// Result - итог проверки попытки
type Result struct {
	Score          int  `json:"score"`
	MaxScore       int  `json:"max_score"`
	CorrectAnswers int  `json:"correct_answers"`
	TotalQuestions int  `json:"total_questions"`
	Percentage     int  `json:"percentage"`
	Passed         bool `json:"passed"`
	PendingReview  int  `json:"pending_review"`
}

// Percentage возвращает round(100 * earned / max); при max == 0 результат 0
func Percentage(earned, max int) int {
	if max <= 0 {
		return 0
	}
	return int(math.Round(float64(earned) * 100 / float64(max)))
}

// Passed сравнивает долю набранных баллов с порогом без округления.
// Граница включается: ровно 70% при пороге 70 - зачет.
func Passed(earned, max, passingScore int) bool {
	if max <= 0 {
		return false
	}
	return earned*100 >= passingScore*max
}

// GradeAnswer проверяет один ответ. Короткие ответы не проверяются автоматически:
// они получают 0 баллов и отметку о ручной проверке.
func GradeAnswer(question *entity.Question, answer *entity.Answer) {
	answer.IsCorrect = false
	answer.PointsEarned = 0
	answer.NeedsReview = false

	switch question.Type {
	case entity.QuestionTypeShortAnswer:
		answer.NeedsReview = true
	default:
		if answer.SelectedOptionID == nil {
			return
		}
		option, ok := question.OptionByID(*answer.SelectedOptionID)
		if ok && option.IsCorrect {
			answer.IsCorrect = true
			answer.PointsEarned = question.EffectivePoints()
		}
	}
}

// Grade проверяет все ответы попытки и подводит итог.
// Ответы на вопросы, не входящие в викторину, не учитываются.
func Grade(quiz *entity.Quiz, answers []entity.Answer) Result {
	for i := range answers {
		question, ok := quiz.QuestionByID(answers[i].QuestionID)
		if !ok {
			continue
		}
		GradeAnswer(question, &answers[i])
	}
	return Summarize(quiz, answers)
}

// Summarize подводит итог по уже проверенным ответам (после ручной проверки)
func Summarize(quiz *entity.Quiz, answers []entity.Answer) Result {
	result := Result{
		MaxScore:       quiz.MaxScore(),
		TotalQuestions: len(quiz.Questions),
	}

	seen := make(map[uint]bool, len(answers))
	for _, answer := range answers {
		if _, ok := quiz.QuestionByID(answer.QuestionID); !ok || seen[answer.QuestionID] {
			continue
		}
		seen[answer.QuestionID] = true

		result.Score += answer.PointsEarned
		if answer.IsCorrect {
			result.CorrectAnswers++
		}
		if answer.NeedsReview {
			result.PendingReview++
		}
	}

	result.Percentage = Percentage(result.Score, result.MaxScore)
	result.Passed = Passed(result.Score, result.MaxScore, quiz.EffectivePassingScore())
	return result
}

// Apply переносит итог в попытку
func Apply(attempt *entity.Attempt, result Result) {
	attempt.Score = result.Score
	attempt.MaxScore = result.MaxScore
	attempt.CorrectAnswers = result.CorrectAnswers
	attempt.TotalQuestions = result.TotalQuestions
	attempt.Percentage = result.Percentage
	attempt.Passed = result.Passed
}

// ErrAlreadyReviewed возвращается при повторной проверке ответа: зачет
// викторины и начисленный опыт после первой проверки не отзываются.
var ErrAlreadyReviewed = fmt.Errorf("%w: answer is already reviewed", apperrors.ErrConflict)

// Review выставляет оценку короткому ответу, ожидающему проверки
func Review(question *entity.Question, answer *entity.Answer, isCorrect bool, points int) error {
	if question.Type != entity.QuestionTypeShortAnswer {
		return fmt.Errorf("%w: only short answers can be reviewed", apperrors.ErrValidation)
	}
	if points < 0 || points > question.EffectivePoints() {
		return fmt.Errorf("%w: points must be between 0 and %d", apperrors.ErrValidation, question.EffectivePoints())
	}
	if !answer.NeedsReview {
		return ErrAlreadyReviewed
	}
	answer.IsCorrect = isCorrect
	answer.PointsEarned = points
	answer.NeedsReview = false
	return nil
}
