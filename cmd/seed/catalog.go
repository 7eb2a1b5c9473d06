package main

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/service/quizbuilder"
)

// Catalog - описание демонстрационных данных
type Catalog struct {
	Instructor InstructorSeed `yaml:"instructor"`
	Courses    []CourseSeed   `yaml:"courses"`
}

type InstructorSeed struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	FullName string `yaml:"full_name"`
}

type CourseSeed struct {
	Title       string       `yaml:"title"`
	Description string       `yaml:"description"`
	Level       string       `yaml:"level"`
	Published   bool         `yaml:"published"`
	Modules     []ModuleSeed `yaml:"modules"`
}

type ModuleSeed struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Lessons     []LessonSeed   `yaml:"lessons"`
	Videos      []ResourceSeed `yaml:"videos"`
	Documents   []ResourceSeed `yaml:"documents"`
	Quizzes     []QuizSeed     `yaml:"quizzes"`
}

type LessonSeed struct {
	Title    string        `yaml:"title"`
	Contents []ContentSeed `yaml:"contents"`
}

type ContentSeed struct {
	Kind        string `yaml:"kind"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Body        string `yaml:"body"`
	Minutes     int    `yaml:"minutes"`
}

type ResourceSeed struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Type        string `yaml:"type"`
	URL         string `yaml:"url"`
}

type QuizSeed struct {
	Title        string         `yaml:"title"`
	Description  string         `yaml:"description"`
	PassingScore int            `yaml:"passing_score"`
	Final        bool           `yaml:"final"`
	Questions    []QuestionSeed `yaml:"questions"`
}

type QuestionSeed struct {
	Text        string       `yaml:"text"`
	Type        string       `yaml:"type"`
	Points      int          `yaml:"points"`
	Explanation string       `yaml:"explanation"`
	Options     []OptionSeed `yaml:"options"`
}

type OptionSeed struct {
	Text    string `yaml:"text"`
	Correct bool   `yaml:"correct"`
}

// ParseCatalog читает каталог из YAML. Неизвестные поля считаются ошибкой.
func ParseCatalog(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var catalog Catalog
	if err := dec.Decode(&catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if catalog.Instructor.Email == "" {
		return nil, fmt.Errorf("catalog: instructor email is required")
	}
	return &catalog, nil
}

// ToEntity строит дерево курса без викторин: они создаются
// отдельно через мастер, когда у модулей появляются идентификаторы
func (c CourseSeed) ToEntity() *entity.Course {
	course := &entity.Course{
		Title:       c.Title,
		Description: c.Description,
		Level:       entity.CourseLevel(c.Level),
		IsPublished: c.Published,
	}
	for i, m := range c.Modules {
		module := entity.Module{Title: m.Title, Description: m.Description, Position: i}
		for j, l := range m.Lessons {
			lesson := entity.Lesson{Title: l.Title, Position: j}
			for k, ct := range l.Contents {
				lesson.Contents = append(lesson.Contents, entity.LessonContent{
					Kind:            entity.ContentKind(ct.Kind),
					Title:           ct.Title,
					Description:     ct.Description,
					Body:            ct.Body,
					DurationMinutes: ct.Minutes,
					Position:        k,
				})
			}
			module.Lessons = append(module.Lessons, lesson)
		}
		for j, v := range m.Videos {
			module.Videos = append(module.Videos, entity.Video{
				Title: v.Title, Description: v.Description, Type: resourceType(v.Type), URL: v.URL, Position: j,
			})
		}
		for j, d := range m.Documents {
			module.Documents = append(module.Documents, entity.Document{
				Title: d.Title, Description: d.Description, Type: resourceType(d.Type), URL: d.URL, Position: j,
			})
		}
		course.Modules = append(course.Modules, module)
	}
	return course
}

func resourceType(t string) string {
	if t == "" {
		return entity.DocumentTypeURL
	}
	return t
}

// Draft переводит описание викторины в черновик мастера
func (q QuizSeed) Draft(moduleID uint) quizbuilder.Draft {
	draft := quizbuilder.Draft{
		Info: quizbuilder.Info{
			Title:        q.Title,
			Description:  q.Description,
			ModuleID:     moduleID,
			PassingScore: q.PassingScore,
		},
	}
	for _, qs := range q.Questions {
		question := quizbuilder.QuestionDraft{
			Text:        qs.Text,
			Type:        entity.QuestionType(qs.Type),
			Points:      qs.Points,
			Explanation: qs.Explanation,
		}
		if question.Type == "" {
			question.Type = entity.QuestionTypeMultipleChoice
		}
		if question.Points == 0 {
			question.Points = entity.DefaultQuestionPoints
		}
		for _, o := range qs.Options {
			question.Options = append(question.Options, quizbuilder.OptionDraft{Text: o.Text, IsCorrect: o.Correct})
		}
		draft.Questions = append(draft.Questions, question)
	}
	return draft
}
