package quizbuilder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/lms-api/internal/domain/entity"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
)

// ============================================================================
// Вспомогательные функции
// ============================================================================

func requireMessage(t *testing.T, err error, msg string) {
	t.Helper()
	require.Error(t, err)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "ожидалась ошибка валидации, получено: %v", err)
	assert.Equal(t, msg, ve.Message)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func newIoTQuestion(b *Builder) {
	b.SetQuestionText("Quelle est la couche physique de l'IoT ?")
	_ = b.AddOption()
	_ = b.SetOptionText(0, "Capteurs")
	_ = b.SetOptionText(1, "Cloud")
	_ = b.SetOptionText(2, "API")
	_ = b.SetOptionCorrect(0)
}

// ============================================================================
// SetQuestionType
// ============================================================================

func TestBuilder_NewQuestionDefaults(t *testing.T) {
	b := NewBuilder()
	current := b.Current()

	assert.Equal(t, entity.QuestionTypeMultipleChoice, current.Type)
	assert.Equal(t, 1, current.Points)
	assert.Len(t, current.Options, 2, "новый QCM начинается с двух пустых вариантов")
}

func TestBuilder_SetQuestionType_TrueFalseDiscardsOptions(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.AddOption())
	require.NoError(t, b.SetOptionText(0, "A"))
	require.NoError(t, b.SetOptionText(1, "B"))
	require.NoError(t, b.SetOptionCorrect(2))

	require.NoError(t, b.SetQuestionType(entity.QuestionTypeTrueFalse))

	options := b.Current().Options
	require.Len(t, options, 2)
	assert.Equal(t, "Vrai", options[0].Text)
	assert.Equal(t, "Faux", options[1].Text)
	assert.False(t, options[0].IsCorrect)
	assert.False(t, options[1].IsCorrect)
}

func TestBuilder_SetQuestionType_ShortAnswerHasNoOptions(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.SetQuestionType(entity.QuestionTypeShortAnswer))

	assert.Empty(t, b.Current().Options)
	requireMessage(t, b.SetOptionCorrect(0), MsgOptionsNotAllowed)
	requireMessage(t, b.AddOption(), MsgOptionsNotAllowed)
}

func TestBuilder_SetQuestionType_Unknown(t *testing.T) {
	b := NewBuilder()
	requireMessage(t, b.SetQuestionType("essay"), MsgUnknownQuestionType)
	assert.Equal(t, entity.QuestionTypeMultipleChoice, b.Current().Type, "тип не должен меняться")
}

// ============================================================================
// Варианты ответа
// ============================================================================

func TestBuilder_RemoveOption_KeepsMinimumOfTwo(t *testing.T) {
	b := NewBuilder()

	removed, err := b.RemoveOption(0)
	require.NoError(t, err)
	assert.False(t, removed, "удаление ниже двух вариантов игнорируется")
	assert.Len(t, b.Current().Options, 2)

	require.NoError(t, b.AddOption())
	require.NoError(t, b.SetOptionText(2, "C"))
	removed, err = b.RemoveOption(0)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, "C", b.Current().Options[1].Text)
}

func TestBuilder_RemoveOption_OnlyForMultipleChoice(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.SetQuestionType(entity.QuestionTypeTrueFalse))

	_, err := b.RemoveOption(0)
	requireMessage(t, err, MsgOptionsNotAllowed)
}

func TestBuilder_SetOptionCorrect_SingleAnswer(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.AddOption())

	require.NoError(t, b.SetOptionCorrect(0))
	require.NoError(t, b.SetOptionCorrect(2))

	options := b.Current().Options
	assert.False(t, options[0].IsCorrect)
	assert.False(t, options[1].IsCorrect)
	assert.True(t, options[2].IsCorrect)

	requireMessage(t, b.SetOptionCorrect(3), MsgOptionIndexOutOfRange)
}

func TestBuilder_CurrentReturnsCopy(t *testing.T) {
	b := NewBuilder()
	current := b.Current()
	current.Options[0].Text = "изменено снаружи"

	assert.Empty(t, b.Current().Options[0].Text)
}

// ============================================================================
// ValidateCurrentQuestion
// ============================================================================

func TestBuilder_ValidateCurrentQuestion(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(b *Builder)
		wantMsg string
	}{
		{
			name:    "пустой текст",
			prepare: func(b *Builder) {},
			wantMsg: MsgQuestionTextRequired,
		},
		{
			name: "текст из пробелов",
			prepare: func(b *Builder) {
				b.SetQuestionText("   ")
			},
			wantMsg: MsgQuestionTextRequired,
		},
		{
			name: "QCM с одним заполненным вариантом",
			prepare: func(b *Builder) {
				b.SetQuestionText("Q")
				_ = b.SetOptionText(0, "A")
				_ = b.SetOptionCorrect(0)
			},
			wantMsg: MsgMinOptions,
		},
		{
			name: "QCM без правильного варианта",
			prepare: func(b *Builder) {
				b.SetQuestionText("Q")
				_ = b.SetOptionText(0, "A")
				_ = b.SetOptionText(1, "B")
			},
			wantMsg: MsgSelectCorrect,
		},
		{
			name: "QCM с правильным, но пустым вариантом",
			prepare: func(b *Builder) {
				b.SetQuestionText("Q")
				_ = b.AddOption()
				_ = b.SetOptionText(0, "A")
				_ = b.SetOptionText(1, "B")
				_ = b.SetOptionCorrect(2)
			},
			wantMsg: MsgSelectCorrect,
		},
		{
			name: "Vrai/Faux без ответа",
			prepare: func(b *Builder) {
				b.SetQuestionText("Q")
				_ = b.SetQuestionType(entity.QuestionTypeTrueFalse)
			},
			wantMsg: MsgSelectCorrectTrueFalse,
		},
		{
			name: "QCM с несколькими правильными из черновика",
			prepare: func(b *Builder) {
				b.LoadQuestion(QuestionDraft{
					Text: "Q",
					Type: entity.QuestionTypeMultipleChoice,
					Options: []OptionDraft{
						{Text: "A", IsCorrect: true},
						{Text: "B", IsCorrect: true},
					},
				})
			},
			wantMsg: MsgSingleCorrect,
		},
		{
			name: "Vrai/Faux с чужими вариантами",
			prepare: func(b *Builder) {
				b.LoadQuestion(QuestionDraft{
					Text:    "Q",
					Type:    entity.QuestionTypeTrueFalse,
					Options: []OptionDraft{{Text: "Oui", IsCorrect: true}, {Text: "Non"}},
				})
			},
			wantMsg: MsgTrueFalseOptions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			tt.prepare(b)
			requireMessage(t, b.ValidateCurrentQuestion(), tt.wantMsg)
		})
	}
}

func TestBuilder_ValidateCurrentQuestion_Valid(t *testing.T) {
	t.Run("QCM с одним правильным и двумя вариантами", func(t *testing.T) {
		b := NewBuilder()
		b.SetQuestionText("Q")
		require.NoError(t, b.SetOptionText(0, "A"))
		require.NoError(t, b.SetOptionText(1, "B"))
		require.NoError(t, b.SetOptionCorrect(1))
		assert.NoError(t, b.ValidateCurrentQuestion())
	})

	t.Run("Vrai/Faux с ответом", func(t *testing.T) {
		b := NewBuilder()
		b.SetQuestionText("Le MQTT est un protocole ?")
		require.NoError(t, b.SetQuestionType(entity.QuestionTypeTrueFalse))
		require.NoError(t, b.SetOptionCorrect(0))
		assert.NoError(t, b.ValidateCurrentQuestion())
	})

	t.Run("короткий ответ всегда корректен по структуре", func(t *testing.T) {
		b := NewBuilder()
		b.SetQuestionText("Expliquez le rôle d'une passerelle")
		require.NoError(t, b.SetQuestionType(entity.QuestionTypeShortAnswer))
		assert.NoError(t, b.ValidateCurrentQuestion())
	})
}

// ============================================================================
// CommitQuestion / EditQuestion / RemoveQuestion
// ============================================================================

func TestBuilder_CommitQuestion_FiltersEmptyOptionsAndResets(t *testing.T) {
	b := NewBuilder()
	b.SetQuestionText("Q")
	require.NoError(t, b.AddOption())
	require.NoError(t, b.SetOptionText(0, "A"))
	require.NoError(t, b.SetOptionText(2, "C"))
	require.NoError(t, b.SetOptionCorrect(2))

	require.NoError(t, b.CommitQuestion())

	questions := b.Questions()
	require.Len(t, questions, 1)
	require.Len(t, questions[0].Options, 2, "пустой вариант должен быть отброшен")
	assert.Equal(t, "A", questions[0].Options[0].Text)
	assert.True(t, questions[0].Options[1].IsCorrect)

	current := b.Current()
	assert.Empty(t, current.Text)
	assert.Equal(t, entity.QuestionTypeMultipleChoice, current.Type)
	assert.Equal(t, 1, current.Points)
	assert.Len(t, current.Options, 2)
}

func TestBuilder_CommitQuestion_InvalidKeepsState(t *testing.T) {
	b := NewBuilder()
	b.SetQuestionText("Q")

	requireMessage(t, b.CommitQuestion(), MsgMinOptions)
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, "Q", b.Current().Text)
}

func TestBuilder_EditAndRemoveQuestion(t *testing.T) {
	b := NewBuilder()
	newIoTQuestion(b)
	require.NoError(t, b.CommitQuestion())
	b.SetQuestionText("Deuxième")
	require.NoError(t, b.SetQuestionType(entity.QuestionTypeShortAnswer))
	require.NoError(t, b.CommitQuestion())

	require.NoError(t, b.EditQuestion(0))
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, "Quelle est la couche physique de l'IoT ?", b.Current().Text)
	assert.Len(t, b.Current().Options, 3)

	require.NoError(t, b.RemoveQuestion(0))
	assert.Equal(t, 0, b.Len())
	requireMessage(t, b.RemoveQuestion(0), MsgQuestionIndexOutOfRange)
}
