package service

import (
	"context"
	"time"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/service/quizplayer"
)

// PlayerGateway связывает плеер викторины одного пользователя с сервисами
type PlayerGateway struct {
	quizzes  *QuizService
	attempts *AttemptService
	userID   uint
}

// NewPlayerGateway создает шлюз плеера для пользователя
func NewPlayerGateway(quizzes *QuizService, attempts *AttemptService, userID uint) *PlayerGateway {
	return &PlayerGateway{quizzes: quizzes, attempts: attempts, userID: userID}
}

func (g *PlayerGateway) LoadQuiz(ctx context.Context, quizID uint) (*entity.Quiz, []entity.QuestionRow, error) {
	quiz, err := g.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}
	rows, err := g.quizzes.GetQuestionRows(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}
	return quiz, rows, nil
}

func (g *PlayerGateway) StartAttempt(ctx context.Context, quizID uint) (*entity.Attempt, error) {
	return g.attempts.Start(ctx, g.userID, quizID)
}

func (g *PlayerGateway) SubmitAnswer(ctx context.Context, attemptID uint, answer quizplayer.Answer) error {
	_, err := g.attempts.SubmitAnswer(ctx, g.userID, attemptID, AnswerInput{
		QuestionID: answer.QuestionID,
		OptionID:   answer.OptionID,
		Text:       answer.Text,
	})
	return err
}

func (g *PlayerGateway) CompleteAttempt(ctx context.Context, attemptID uint, elapsed time.Duration) (*entity.Attempt, error) {
	return g.attempts.Complete(ctx, g.userID, attemptID, elapsed)
}
