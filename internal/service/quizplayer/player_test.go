package quizplayer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/lms-api/internal/domain/entity"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
)

// ============================================================================
// Моки и вспомогательные функции
// ============================================================================

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) LoadQuiz(ctx context.Context, quizID uint) (*entity.Quiz, []entity.QuestionRow, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*entity.Quiz), args.Get(1).([]entity.QuestionRow), args.Error(2)
}

func (m *MockGateway) StartAttempt(ctx context.Context, quizID uint) (*entity.Attempt, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Attempt), args.Error(1)
}

func (m *MockGateway) SubmitAnswer(ctx context.Context, attemptID uint, answer Answer) error {
	args := m.Called(ctx, attemptID, answer)
	return args.Error(0)
}

func (m *MockGateway) CompleteAttempt(ctx context.Context, attemptID uint, elapsed time.Duration) (*entity.Attempt, error) {
	args := m.Called(ctx, attemptID, elapsed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Attempt), args.Error(1)
}

type recordedNotification struct {
	level   Level
	message string
}

type recordingNotifier struct {
	items []recordedNotification
}

func (n *recordingNotifier) Notify(level Level, message string) {
	n.items = append(n.items, recordedNotification{level: level, message: message})
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }
func uintPtr(u uint) *uint    { return &u }

// iotRows - строки викторины "Quiz sur les bases de l'IoT" и вопрос с коротким ответом
func iotRows() []entity.QuestionRow {
	row := func(optionID uint, text string, correct bool, pos int) entity.QuestionRow {
		return entity.QuestionRow{
			QuestionID:       10,
			QuizID:           1,
			QuestionText:     "Quelle est la couche physique de l'IoT ?",
			QuestionType:     entity.QuestionTypeMultipleChoice,
			Points:           1,
			QuestionPosition: 1,
			OptionID:         uintPtr(optionID),
			OptionText:       strPtr(text),
			OptionIsCorrect:  boolPtr(correct),
			OptionPosition:   intPtr(pos),
		}
	}
	return []entity.QuestionRow{
		row(100, "Capteurs", true, 1),
		row(101, "Cloud", false, 2),
		row(102, "API", false, 3),
		{QuestionID: 11, QuizID: 1, QuestionText: "Citez un protocole", QuestionType: entity.QuestionTypeShortAnswer, Points: 1, QuestionPosition: 2},
	}
}

func newLoadedPlayer(t *testing.T) (*Player, *MockGateway, *recordingNotifier, *fakeClock) {
	t.Helper()
	gw := new(MockGateway)
	notifier := &recordingNotifier{}
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	gw.On("LoadQuiz", mock.Anything, uint(1)).
		Return(&entity.Quiz{ID: 1, Title: "Quiz sur les bases de l'IoT", PassingScore: 70}, iotRows(), nil)

	p := NewPlayer(gw, notifier, WithClock(clock.Now))
	require.NoError(t, p.Load(context.Background(), 1))
	return p, gw, notifier, clock
}

func startPlayer(t *testing.T, p *Player, gw *MockGateway) {
	t.Helper()
	gw.On("StartAttempt", mock.Anything, uint(1)).Return(&entity.Attempt{ID: 77, QuizID: 1}, nil).Once()
	require.NoError(t, p.Start(context.Background()))
}

// ============================================================================
// Загрузка и старт
// ============================================================================

func TestPlayer_Load(t *testing.T) {
	p, _, _, _ := newLoadedPlayer(t)

	view := p.View()
	assert.Equal(t, StateLoaded, view.State)
	assert.Equal(t, 2, view.Total)
	require.NotNil(t, view.Question)
	assert.Equal(t, uint(10), view.Question.ID)
	assert.Len(t, view.Question.Options, 3)
}

func TestPlayer_LoadFailureNotifies(t *testing.T) {
	gw := new(MockGateway)
	notifier := &recordingNotifier{}
	gw.On("LoadQuiz", mock.Anything, uint(5)).Return(nil, nil, errors.New("timeout"))

	p := NewPlayer(gw, notifier)
	err := p.Load(context.Background(), 5)

	require.Error(t, err)
	assert.Equal(t, StateIdle, p.State())
	require.Len(t, notifier.items, 1)
	assert.Equal(t, LevelError, notifier.items[0].level)
	assert.Equal(t, MsgLoadFailed, notifier.items[0].message)
}

func TestPlayer_StartFailureKeepsViewing(t *testing.T) {
	p, gw, notifier, _ := newLoadedPlayer(t)
	gw.On("StartAttempt", mock.Anything, uint(1)).Return(nil, errors.New("db down"))

	err := p.Start(context.Background())

	require.Error(t, err)
	assert.Equal(t, StateLoaded, p.State(), "просмотр вопросов продолжается")
	assert.Equal(t, 1, p.Next())
	require.Len(t, notifier.items, 1)
	assert.Equal(t, MsgStartFailed, notifier.items[0].message)
}

// ============================================================================
// Ответы и навигация
// ============================================================================

func TestPlayer_ReanswerOverwrites(t *testing.T) {
	p, gw, _, _ := newLoadedPlayer(t)
	startPlayer(t, p, gw)

	require.NoError(t, p.AnswerOption(0, 101))
	require.NoError(t, p.AnswerOption(0, 100))

	answers := p.Answers()
	require.Len(t, answers, 1)
	assert.Equal(t, uint(100), *answers[0].OptionID)

	gw.On("SubmitAnswer", mock.Anything, uint(77), mock.Anything).Return(nil)
	gw.On("CompleteAttempt", mock.Anything, uint(77), mock.Anything).Return(&entity.Attempt{ID: 77}, nil)
	_, err := p.Submit(context.Background())
	require.NoError(t, err)

	gw.AssertNumberOfCalls(t, "SubmitAnswer", 1)
	gw.AssertCalled(t, "SubmitAnswer", mock.Anything, uint(77), Answer{QuestionID: 10, OptionID: uintPtr(100)})
}

func TestPlayer_AnswerValidation(t *testing.T) {
	p, _, _, _ := newLoadedPlayer(t)

	assert.ErrorIs(t, p.AnswerOption(0, 999), ErrUnknownOption)
	assert.ErrorIs(t, p.AnswerText(0, "texte"), ErrWrongAnswerKind)
	assert.ErrorIs(t, p.AnswerOption(1, 100), ErrWrongAnswerKind)
	assert.ErrorIs(t, p.AnswerOption(5, 100), apperrors.ErrValidation)
	assert.NoError(t, p.AnswerText(1, "MQTT"))
}

func TestPlayer_NavigateIsClamped(t *testing.T) {
	p, _, _, _ := newLoadedPlayer(t)

	assert.Equal(t, 1, p.Navigate(10))
	assert.Equal(t, 0, p.Navigate(-3))
	assert.Equal(t, 0, p.Prev())
	assert.Equal(t, 1, p.Next())
	assert.Equal(t, 1, p.Next())
}

// ============================================================================
// Отправка
// ============================================================================

func TestPlayer_SubmitSendsAnswersInQuestionOrderThenCompletes(t *testing.T) {
	p, gw, notifier, clock := newLoadedPlayer(t)
	startPlayer(t, p, gw)

	// ответы даются в обратном порядке
	require.NoError(t, p.AnswerText(1, "MQTT"))
	require.NoError(t, p.AnswerOption(0, 100))
	clock.Advance(95 * time.Second)

	var order []uint
	gw.On("SubmitAnswer", mock.Anything, uint(77), mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		order = append(order, args.Get(2).(Answer).QuestionID)
	})
	graded := &entity.Attempt{ID: 77, CorrectAnswers: 1, TotalQuestions: 2, Percentage: 50}
	gw.On("CompleteAttempt", mock.Anything, uint(77), 95*time.Second).Return(graded, nil)

	result, err := p.Submit(context.Background())

	require.NoError(t, err)
	assert.Same(t, graded, result)
	assert.Equal(t, []uint{10, 11}, order)
	assert.Equal(t, StateCompleted, p.State())
	assert.Equal(t, "1:35", FormatElapsed(p.Elapsed()))

	clock.Advance(time.Hour)
	assert.Equal(t, 95*time.Second, p.Elapsed(), "после завершения время не растет")
	assert.Equal(t, MsgCompleted, notifier.items[len(notifier.items)-1].message)
}

func TestPlayer_SubmitFailureLeavesStateIntact(t *testing.T) {
	p, gw, notifier, _ := newLoadedPlayer(t)
	startPlayer(t, p, gw)
	require.NoError(t, p.AnswerOption(0, 100))
	require.NoError(t, p.AnswerText(1, "MQTT"))

	gw.On("SubmitAnswer", mock.Anything, uint(77), Answer{QuestionID: 10, OptionID: uintPtr(100)}).Return(nil)
	gw.On("SubmitAnswer", mock.Anything, uint(77), Answer{QuestionID: 11, Text: "MQTT"}).Return(errors.New("network")).Once()

	_, err := p.Submit(context.Background())

	require.Error(t, err)
	assert.Equal(t, StateInProgress, p.State())
	assert.Len(t, p.Answers(), 2, "ответы сохраняются для повторной отправки")
	gw.AssertNotCalled(t, "CompleteAttempt", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, MsgAnswerFailed, notifier.items[len(notifier.items)-1].message)
}

func TestPlayer_SubmitCompletionFailure(t *testing.T) {
	p, gw, notifier, _ := newLoadedPlayer(t)
	startPlayer(t, p, gw)
	gw.On("CompleteAttempt", mock.Anything, uint(77), mock.Anything).Return(nil, errors.New("boom"))

	_, err := p.Submit(context.Background())

	require.Error(t, err)
	assert.Equal(t, StateInProgress, p.State())
	assert.Equal(t, MsgCompleteFailed, notifier.items[len(notifier.items)-1].message)
}

func TestPlayer_SubmitRequiresAttempt(t *testing.T) {
	p, _, notifier, _ := newLoadedPlayer(t)

	_, err := p.Submit(context.Background())

	assert.ErrorIs(t, err, ErrNotStarted)
	require.Len(t, notifier.items, 1, "Ошибка должна сопровождаться уведомлением")
	assert.Equal(t, MsgNotStarted, notifier.items[0].message)
}

func TestPlayer_SubmitAfterStartFailureNotifies(t *testing.T) {
	// Arrange
	p, gw, notifier, _ := newLoadedPlayer(t)
	gw.On("StartAttempt", mock.Anything, uint(1)).Return(nil, errors.New("db down"))
	require.Error(t, p.Start(context.Background()))

	// Act
	_, err := p.Submit(context.Background())

	// Assert
	assert.ErrorIs(t, err, ErrNotStarted)
	require.Len(t, notifier.items, 2)
	assert.Equal(t, MsgStartFailed, notifier.items[0].message)
	assert.Equal(t, MsgNotStarted, notifier.items[1].message)
	gw.AssertNotCalled(t, "SubmitAnswer", mock.Anything, mock.Anything, mock.Anything)
}

// ============================================================================
// Разбор результата и перезапуск
// ============================================================================

func TestPlayer_Review(t *testing.T) {
	p, gw, _, _ := newLoadedPlayer(t)
	startPlayer(t, p, gw)
	require.NoError(t, p.AnswerOption(0, 101))
	gw.On("SubmitAnswer", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	gw.On("CompleteAttempt", mock.Anything, mock.Anything, mock.Anything).Return(&entity.Attempt{ID: 77}, nil)
	_, err := p.Submit(context.Background())
	require.NoError(t, err)

	items, err := p.Review()

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, ReviewIncorrect, items[0].Status)
	assert.Equal(t, uint(100), *items[0].CorrectOptionID)
	assert.Equal(t, ReviewNeedsReview, items[1].Status, "короткий ответ всегда на ручной проверке")
}

func TestReviewQuestion(t *testing.T) {
	question := &entity.Question{
		Type:    entity.QuestionTypeTrueFalse,
		Options: []entity.Option{{ID: 1, Text: "Vrai", IsCorrect: true}, {ID: 2, Text: "Faux"}},
	}

	assert.Equal(t, ReviewCorrect, ReviewQuestion(question, &Answer{OptionID: uintPtr(1)}))
	assert.Equal(t, ReviewIncorrect, ReviewQuestion(question, &Answer{OptionID: uintPtr(2)}))
	assert.Equal(t, ReviewUnanswered, ReviewQuestion(question, nil))
}

func TestPlayer_Restart(t *testing.T) {
	p, gw, _, _ := newLoadedPlayer(t)
	startPlayer(t, p, gw)
	require.NoError(t, p.AnswerOption(0, 100))
	p.Navigate(1)

	require.NoError(t, p.Restart())

	assert.Equal(t, StateLoaded, p.State())
	assert.Equal(t, 0, p.Current())
	assert.Empty(t, p.Answers())
	assert.Equal(t, time.Duration(0), p.Elapsed())

	startPlayer(t, p, gw)
	assert.Equal(t, StateInProgress, p.State())
}

func TestPlayer_ViewHidesCorrectness(t *testing.T) {
	p, _, _, _ := newLoadedPlayer(t)
	require.NoError(t, p.AnswerOption(0, 102))

	view := p.View()

	require.NotNil(t, view.Answer)
	assert.Equal(t, uint(102), *view.Answer.OptionID)
	assert.Equal(t, "0:00", view.Elapsed)
	assert.Equal(t, OptionView{ID: 100, Text: "Capteurs"}, view.Question.Options[0])
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "0:00", FormatElapsed(0))
	assert.Equal(t, "0:09", FormatElapsed(9*time.Second))
	assert.Equal(t, "2:05", FormatElapsed(125*time.Second+400*time.Millisecond))
	assert.Equal(t, "61:01", FormatElapsed(time.Hour+61*time.Second))
	assert.Equal(t, "0:00", FormatElapsed(-time.Second))
}
