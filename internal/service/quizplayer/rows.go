package quizplayer

import (
	"sort"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

// GroupRows собирает плоскую выборку "вопрос x вариант" в вопросы.
// Метаданные вопроса берутся из первой строки, варианты добавляются в порядке строк,
// вопросы сортируются по позиции, затем по ID.
func GroupRows(rows []entity.QuestionRow) []entity.Question {
	index := make(map[uint]int)
	seenOptions := make(map[uint]bool)
	questions := make([]entity.Question, 0)

	for _, row := range rows {
		i, ok := index[row.QuestionID]
		if !ok {
			questions = append(questions, entity.Question{
				ID:          row.QuestionID,
				QuizID:      row.QuizID,
				Text:        row.QuestionText,
				Type:        row.QuestionType,
				Points:      row.Points,
				Explanation: row.Explanation,
				Position:    row.QuestionPosition,
			})
			i = len(questions) - 1
			index[row.QuestionID] = i
		}

		if row.OptionID == nil || seenOptions[*row.OptionID] {
			continue
		}
		seenOptions[*row.OptionID] = true

		option := entity.Option{ID: *row.OptionID, QuestionID: row.QuestionID}
		if row.OptionText != nil {
			option.Text = *row.OptionText
		}
		if row.OptionIsCorrect != nil {
			option.IsCorrect = *row.OptionIsCorrect
		}
		if row.OptionPosition != nil {
			option.Position = *row.OptionPosition
		}
		questions[i].Options = append(questions[i].Options, option)
	}

	sort.SliceStable(questions, func(a, b int) bool {
		if questions[a].Position != questions[b].Position {
			return questions[a].Position < questions[b].Position
		}
		return questions[a].ID < questions[b].ID
	})
	return questions
}
