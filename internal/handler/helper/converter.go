package helper

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

// Границы пагинации
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// QuestionOption представляет вариант ответа для клиента.
// IsCorrect заполняется только для автора викторины.
type QuestionOption struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	IsCorrect *bool  `json:"is_correct,omitempty"`
}

// ConvertOptions преобразует варианты ответа, скрывая правильный ответ от учащихся
func ConvertOptions(options []entity.Option, includeAnswers bool) []QuestionOption {
	converted := make([]QuestionOption, len(options))
	for i, opt := range options {
		converted[i] = QuestionOption{ID: opt.ID, Text: opt.Text}
		if includeAnswers {
			correct := opt.IsCorrect
			converted[i].IsCorrect = &correct
		}
	}
	return converted
}

// ParsePagination читает page и page_size из запроса.
// Некорректные значения заменяются значениями по умолчанию.
func ParsePagination(c *gin.Context) (page, pageSize int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(DefaultPageSize)))
	if err != nil || pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// QueryUint читает необязательный числовой параметр запроса (0, если не задан или некорректен)
func QueryUint(c *gin.Context, key string) uint {
	value, err := strconv.ParseUint(c.Query(key), 10, 32)
	if err != nil {
		return 0
	}
	return uint(value)
}
