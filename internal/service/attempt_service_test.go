package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/lms-api/internal/domain/entity"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
	"github.com/yourusername/lms-api/internal/service/quizplayer"
	"github.com/yourusername/lms-api/pkg/auth"
)

// sampleQuiz - викторина из трех вопросов по 1 баллу, порог 70%
func sampleQuiz() *entity.Quiz {
	return &entity.Quiz{
		ID:           7,
		Title:        "Les bases",
		ModuleID:     3,
		PassingScore: 70,
		CreatedBy:    100,
		Questions: []entity.Question{
			{ID: 1, Type: entity.QuestionTypeMultipleChoice, Points: 1, Options: []entity.Option{
				{ID: 11, Text: "A", IsCorrect: true},
				{ID: 12, Text: "B"},
			}},
			{ID: 2, Type: entity.QuestionTypeTrueFalse, Points: 1, Options: []entity.Option{
				{ID: 21, Text: entity.TrueOptionText},
				{ID: 22, Text: entity.FalseOptionText, IsCorrect: true},
			}},
			{ID: 3, Type: entity.QuestionTypeShortAnswer, Points: 1},
		},
	}
}

type attemptDeps struct {
	attempts *MockAttemptRepository
	users    *MockUserRepository
	quizzes  *MockQuizReader
	recorder *MockQuizPassRecorder
	rewards  *MockRewarder
	email    *MockEmailService
}

func newAttemptService() (*AttemptService, attemptDeps) {
	deps := attemptDeps{
		attempts: new(MockAttemptRepository),
		users:    new(MockUserRepository),
		quizzes:  new(MockQuizReader),
		recorder: new(MockQuizPassRecorder),
		rewards:  new(MockRewarder),
		email:    new(MockEmailService),
	}
	svc := NewAttemptService(deps.attempts, deps.users, deps.quizzes, deps.recorder, deps.rewards, deps.email)
	svc.clock = fixedClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	return svc, deps
}

// ============================================================================
// Start / SubmitAnswer
// ============================================================================

func TestAttemptService_Start_Success(t *testing.T) {
	// Arrange
	svc, deps := newAttemptService()
	ctx := context.Background()
	deps.quizzes.On("GetQuiz", ctx, uint(7)).Return(sampleQuiz(), nil)
	deps.attempts.On("Create", ctx, mock.AnythingOfType("*entity.Attempt")).Return(nil)

	// Act
	attempt, err := svc.Start(ctx, 5, 7)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(5), attempt.UserID)
	assert.Equal(t, 3, attempt.MaxScore)
	assert.Equal(t, 3, attempt.TotalQuestions)
	assert.False(t, attempt.IsCompleted(), "новая попытка не завершена")
	deps.attempts.AssertExpectations(t)
}

func TestAttemptService_SubmitAnswer_CompletedAttemptIsConflict(t *testing.T) {
	// Arrange
	svc, deps := newAttemptService()
	ctx := context.Background()
	completed := time.Now()
	deps.attempts.On("GetByID", ctx, uint(1)).Return(&entity.Attempt{ID: 1, QuizID: 7, UserID: 5, CompletedAt: &completed}, nil)

	// Act
	_, err := svc.SubmitAnswer(ctx, 5, 1, AnswerInput{QuestionID: 1, OptionID: uintPtr(11)})

	// Assert
	assert.ErrorIs(t, err, ErrAttemptCompleted)
	deps.attempts.AssertNotCalled(t, "UpsertAnswer", mock.Anything, mock.Anything)
}

func TestAttemptService_SubmitAnswer_ForeignAttempt(t *testing.T) {
	svc, deps := newAttemptService()
	ctx := context.Background()
	deps.attempts.On("GetByID", ctx, uint(1)).Return(&entity.Attempt{ID: 1, QuizID: 7, UserID: 6}, nil)

	_, err := svc.SubmitAnswer(ctx, 5, 1, AnswerInput{QuestionID: 1, OptionID: uintPtr(11)})

	assert.ErrorIs(t, err, ErrAttemptNotOwned)
}

func TestAttemptService_SubmitAnswer_ValidatesAnswerKind(t *testing.T) {
	svc, deps := newAttemptService()
	ctx := context.Background()
	deps.attempts.On("GetByID", ctx, uint(1)).Return(&entity.Attempt{ID: 1, QuizID: 7, UserID: 5}, nil)
	deps.quizzes.On("GetQuiz", ctx, uint(7)).Return(sampleQuiz(), nil)

	_, err := svc.SubmitAnswer(ctx, 5, 1, AnswerInput{QuestionID: 1, Text: "A"})
	assert.ErrorIs(t, err, quizplayer.ErrWrongAnswerKind, "вопрос с вариантами требует OptionID")

	_, err = svc.SubmitAnswer(ctx, 5, 1, AnswerInput{QuestionID: 1, OptionID: uintPtr(21)})
	assert.ErrorIs(t, err, quizplayer.ErrUnknownOption, "вариант другого вопроса")

	_, err = svc.SubmitAnswer(ctx, 5, 1, AnswerInput{QuestionID: 3, OptionID: uintPtr(11)})
	assert.ErrorIs(t, err, quizplayer.ErrWrongAnswerKind, "короткий ответ не принимает вариант")

	deps.attempts.AssertNotCalled(t, "UpsertAnswer", mock.Anything, mock.Anything)
}

func TestAttemptService_SubmitAnswer_SavesShortAnswer(t *testing.T) {
	svc, deps := newAttemptService()
	ctx := context.Background()
	deps.attempts.On("GetByID", ctx, uint(1)).Return(&entity.Attempt{ID: 1, QuizID: 7, UserID: 5}, nil)
	deps.quizzes.On("GetQuiz", ctx, uint(7)).Return(sampleQuiz(), nil)
	deps.attempts.On("UpsertAnswer", ctx, mock.MatchedBy(func(a *entity.Answer) bool {
		return a.AttemptID == 1 && a.QuestionID == 3 && a.TextAnswer == "Paris" && a.SelectedOptionID == nil
	})).Return(nil)

	answer, err := svc.SubmitAnswer(ctx, 5, 1, AnswerInput{QuestionID: 3, Text: "Paris"})

	require.NoError(t, err)
	assert.Equal(t, "Paris", answer.TextAnswer)
	deps.attempts.AssertExpectations(t)
}

// ============================================================================
// Complete
// ============================================================================

func TestAttemptService_Complete_PassedTriggersProgressAndRewards(t *testing.T) {
	// Arrange
	svc, deps := newAttemptService()
	ctx := context.Background()
	quiz := sampleQuiz()
	quiz.PassingScore = 60
	started := time.Date(2025, 3, 10, 11, 58, 0, 0, time.UTC)
	attempt := &entity.Attempt{ID: 1, QuizID: 7, UserID: 5, StartedAt: started, Answers: []entity.Answer{
		{ID: 1, QuestionID: 1, SelectedOptionID: uintPtr(11)},
		{ID: 2, QuestionID: 2, SelectedOptionID: uintPtr(22)},
		{ID: 3, QuestionID: 3, TextAnswer: "peu importe"},
	}}
	deps.attempts.On("GetWithAnswers", ctx, uint(1)).Return(attempt, nil)
	deps.quizzes.On("GetQuiz", ctx, uint(7)).Return(quiz, nil)
	deps.attempts.On("Finish", ctx, attempt).Return(nil)
	deps.recorder.On("RecordQuizPassed", ctx, uint(5), quiz).Return(true, uint(9), nil)
	deps.rewards.On("OnQuizPassed", ctx, uint(5), uint(9), attempt, true).Return()
	deps.users.On("GetByID", ctx, uint(5)).Return(&entity.User{ID: 5, Email: "eleve@example.com", FullName: "Élève"}, nil)
	deps.email.On("SendQuizResult", ctx, "eleve@example.com", "Élève", "Les bases", 67, true).Return(nil)

	// Act
	result, err := svc.Complete(ctx, 5, 1, 0)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, result.Score)
	assert.Equal(t, 3, result.MaxScore)
	assert.Equal(t, 67, result.Percentage)
	assert.True(t, result.Passed, "2/3 при пороге 60% - зачет")
	assert.True(t, result.NeedsReview(), "короткий ответ ждет проверки")
	assert.Equal(t, 120, result.DurationSeconds, "длительность считается от начала попытки")
	deps.recorder.AssertExpectations(t)
	deps.rewards.AssertExpectations(t)
	deps.email.AssertExpectations(t)
}

func TestAttemptService_Complete_FailedSkipsRewards(t *testing.T) {
	svc, deps := newAttemptService()
	ctx := context.Background()
	attempt := &entity.Attempt{ID: 1, QuizID: 7, UserID: 5, Answers: []entity.Answer{
		{ID: 1, QuestionID: 1, SelectedOptionID: uintPtr(12)},
	}}
	deps.attempts.On("GetWithAnswers", ctx, uint(1)).Return(attempt, nil)
	deps.quizzes.On("GetQuiz", ctx, uint(7)).Return(sampleQuiz(), nil)
	deps.attempts.On("Finish", ctx, attempt).Return(nil)
	deps.users.On("GetByID", ctx, uint(5)).Return(&entity.User{ID: 5, Email: "eleve@example.com"}, nil)
	deps.email.On("SendQuizResult", ctx, "eleve@example.com", "", "Les bases", 0, false).Return(assert.AnError)

	result, err := svc.Complete(ctx, 5, 1, 45*time.Second)

	require.NoError(t, err, "ошибка письма не прерывает завершение попытки")
	assert.False(t, result.Passed)
	assert.Equal(t, 45, result.DurationSeconds)
	deps.recorder.AssertNotCalled(t, "RecordQuizPassed", mock.Anything, mock.Anything, mock.Anything)
	deps.rewards.AssertNotCalled(t, "OnQuizPassed", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAttemptService_Complete_Twice(t *testing.T) {
	svc, deps := newAttemptService()
	ctx := context.Background()
	completed := time.Now()
	deps.attempts.On("GetWithAnswers", ctx, uint(1)).Return(&entity.Attempt{ID: 1, QuizID: 7, UserID: 5, CompletedAt: &completed}, nil)

	_, err := svc.Complete(ctx, 5, 1, 0)

	assert.ErrorIs(t, err, ErrAttemptCompleted)
}

func TestAttemptService_Complete_ConcurrentCompletionWins(t *testing.T) {
	// Arrange: попытка прочитана незавершенной, но ее уже завершил другой запрос
	svc, deps := newAttemptService()
	ctx := context.Background()
	quiz := sampleQuiz()
	attempt := &entity.Attempt{ID: 1, QuizID: 7, UserID: 5, Answers: []entity.Answer{
		{ID: 1, QuestionID: 1, SelectedOptionID: uintPtr(11)},
	}}
	deps.attempts.On("GetWithAnswers", ctx, uint(1)).Return(attempt, nil)
	deps.quizzes.On("GetQuiz", ctx, uint(7)).Return(quiz, nil)
	deps.attempts.On("Finish", ctx, attempt).Return(fmt.Errorf("%w: attempt 1 is already completed", apperrors.ErrConflict))

	// Act
	_, err := svc.Complete(ctx, 5, 1, 0)

	// Assert
	assert.ErrorIs(t, err, ErrAttemptCompleted)
	deps.recorder.AssertNotCalled(t, "RecordQuizPassed", mock.Anything, mock.Anything, mock.Anything)
	deps.email.AssertNotCalled(t, "SendQuizResult", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// ============================================================================
// Разбор и ручная проверка
// ============================================================================

func TestBuildReview_StatusesInQuestionOrder(t *testing.T) {
	quiz := sampleQuiz()
	answers := []entity.Answer{
		{QuestionID: 2, SelectedOptionID: uintPtr(21)},
		{QuestionID: 1, SelectedOptionID: uintPtr(11)},
	}

	items := BuildReview(quiz, answers)

	require.Len(t, items, 3)
	assert.Equal(t, quizplayer.ReviewCorrect, items[0].Status)
	assert.Equal(t, quizplayer.ReviewIncorrect, items[1].Status)
	assert.Equal(t, uintPtr(22), items[1].CorrectOptionID)
	assert.Equal(t, quizplayer.ReviewNeedsReview, items[2].Status, "короткий ответ без ответа тоже ждет проверки")
}

func TestBuildReview_ManuallyGradedShortAnswer(t *testing.T) {
	quiz := sampleQuiz()
	answers := []entity.Answer{{QuestionID: 3, TextAnswer: "Paris", IsCorrect: true, PointsEarned: 1}}

	items := BuildReview(quiz, answers)

	assert.Equal(t, quizplayer.ReviewCorrect, items[2].Status)
	assert.Equal(t, "Paris", items[2].TextAnswer)
}

func TestAttemptService_GradeShortAnswer_NewPassTriggersRewards(t *testing.T) {
	// Arrange
	svc, deps := newAttemptService()
	ctx := context.Background()
	quiz := sampleQuiz()
	completed := time.Now()
	attempt := &entity.Attempt{ID: 1, QuizID: 7, UserID: 5, CompletedAt: &completed, Score: 1, Answers: []entity.Answer{
		{ID: 1, QuestionID: 1, SelectedOptionID: uintPtr(11), IsCorrect: true, PointsEarned: 1},
		{ID: 2, QuestionID: 2, SelectedOptionID: uintPtr(22), IsCorrect: true, PointsEarned: 1},
		{ID: 3, AttemptID: 1, QuestionID: 3, TextAnswer: "Paris", NeedsReview: true},
	}}
	author := &auth.Principal{UserID: 100, Role: entity.RoleInstructor}
	deps.attempts.On("GetAnswerByID", ctx, uint(3)).Return(&entity.Answer{ID: 3, AttemptID: 1, QuestionID: 3}, nil)
	deps.attempts.On("GetWithAnswers", ctx, uint(1)).Return(attempt, nil)
	deps.quizzes.On("GetQuiz", ctx, uint(7)).Return(quiz, nil)
	deps.attempts.On("SaveGrade", ctx, attempt).Return(nil)
	deps.recorder.On("RecordQuizPassed", ctx, uint(5), quiz).Return(true, uint(9), nil)
	deps.rewards.On("OnQuizPassed", ctx, uint(5), uint(9), attempt, true).Return()

	// Act
	result, err := svc.GradeShortAnswer(ctx, author, 3, true, 1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, result.Score)
	assert.Equal(t, 100, result.Percentage)
	assert.True(t, result.Passed)
	assert.False(t, result.NeedsReview())
	deps.rewards.AssertExpectations(t)
}

func TestAttemptService_GradeShortAnswer_OtherAuthorForbidden(t *testing.T) {
	svc, deps := newAttemptService()
	ctx := context.Background()
	completed := time.Now()
	deps.attempts.On("GetAnswerByID", ctx, uint(3)).Return(&entity.Answer{ID: 3, AttemptID: 1, QuestionID: 3}, nil)
	deps.attempts.On("GetWithAnswers", ctx, uint(1)).Return(&entity.Attempt{ID: 1, QuizID: 7, UserID: 5, CompletedAt: &completed}, nil)
	deps.quizzes.On("GetQuiz", ctx, uint(7)).Return(sampleQuiz(), nil)

	_, err := svc.GradeShortAnswer(ctx, &auth.Principal{UserID: 200, Role: entity.RoleInstructor}, 3, true, 1)

	assert.Error(t, err)
	deps.attempts.AssertNotCalled(t, "SaveGrade", mock.Anything, mock.Anything)
}

func TestAttemptService_GradeShortAnswer_AlreadyReviewedRejected(t *testing.T) {
	// Arrange: ответ уже проверен, попытка засчитана
	svc, deps := newAttemptService()
	ctx := context.Background()
	completed := time.Now()
	attempt := &entity.Attempt{ID: 1, QuizID: 7, UserID: 5, CompletedAt: &completed, Passed: true, Answers: []entity.Answer{
		{ID: 3, AttemptID: 1, QuestionID: 3, TextAnswer: "Paris", IsCorrect: true, PointsEarned: 1},
	}}
	deps.attempts.On("GetAnswerByID", ctx, uint(3)).Return(&entity.Answer{ID: 3, AttemptID: 1, QuestionID: 3}, nil)
	deps.attempts.On("GetWithAnswers", ctx, uint(1)).Return(attempt, nil)
	deps.quizzes.On("GetQuiz", ctx, uint(7)).Return(sampleQuiz(), nil)

	// Act
	_, err := svc.GradeShortAnswer(ctx, &auth.Principal{UserID: 100, Role: entity.RoleInstructor}, 3, false, 0)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.True(t, attempt.Passed, "зачет не отзывается")
	deps.attempts.AssertNotCalled(t, "SaveGrade", mock.Anything, mock.Anything)
}

func TestAttemptService_GradeShortAnswer_StudentRejected(t *testing.T) {
	svc, _ := newAttemptService()

	_, err := svc.GradeShortAnswer(context.Background(), &auth.Principal{UserID: 5, Role: entity.RoleStudent}, 3, true, 1)

	assert.ErrorIs(t, err, ErrNotAuthor)
}

func TestAttemptService_ListQuizResults_Paginates(t *testing.T) {
	svc, deps := newAttemptService()
	ctx := context.Background()
	deps.quizzes.On("GetQuiz", ctx, uint(7)).Return(sampleQuiz(), nil)
	deps.attempts.On("ListByQuiz", ctx, uint(7), 20, 20).Return([]entity.Attempt{{ID: 1}}, int64(21), nil)

	attempts, total, err := svc.ListQuizResults(ctx, &auth.Principal{UserID: 1, Role: entity.RoleAdmin}, 7, 2, 0)

	require.NoError(t, err)
	assert.Len(t, attempts, 1)
	assert.Equal(t, int64(21), total)
}
