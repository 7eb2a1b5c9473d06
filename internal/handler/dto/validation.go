package dto

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators добавляет в валидатор gin теги предметной области:
// question_type, content_kind, course_level, item_kind.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		rules := map[string]validator.Func{
			"question_type": func(fl validator.FieldLevel) bool {
				return entity.QuestionType(fl.Field().String()).IsValid()
			},
			"content_kind": func(fl validator.FieldLevel) bool {
				return entity.ContentKind(fl.Field().String()).IsValid()
			},
			"course_level": func(fl validator.FieldLevel) bool {
				return entity.CourseLevel(fl.Field().String()).IsValid()
			},
			"item_kind": func(fl validator.FieldLevel) bool {
				return entity.ItemKind(fl.Field().String()).IsValid()
			},
		}
		for tag, fn := range rules {
			if err := v.RegisterValidation(tag, fn); err != nil {
				registerErr = fmt.Errorf("failed to register %s validator: %w", tag, err)
				return
			}
		}
	})
	return registerErr
}
