// Package progress сворачивает отметки о завершении в проценты модуля и курса.
package progress

import (
	"math"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

// Item - элемент модуля, учитываемый в прогрессе
type Item struct {
	Kind entity.ItemKind `json:"kind"`
	ID   uint            `json:"id"`
}

// Completions - множество завершенных элементов
type Completions map[Item]bool

// NewCompletions строит множество из записей о завершении
func NewCompletions(records []entity.Completion) Completions {
	set := make(Completions, len(records))
	for _, r := range records {
		set[Item{Kind: r.ItemKind, ID: r.ItemID}] = true
	}
	return set
}

// ModuleProgress - прогресс по модулю
type ModuleProgress struct {
	ModuleID  uint   `json:"module_id"`
	Title     string `json:"title"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Percent   int    `json:"percent"`
	Locked    bool   `json:"locked"`
}

// Fraction возвращает долю завершенных элементов без округления
func (m ModuleProgress) Fraction() float64 {
	if m.Total == 0 {
		return 0
	}
	return float64(m.Completed) / float64(m.Total)
}

// Done сообщает, что завершены все элементы модуля. Округленный Percent
// для этого не годится: 199 из 200 дают 100%.
func (m ModuleProgress) Done() bool {
	return m.Total > 0 && m.Completed == m.Total
}

// CourseProgress - прогресс по курсу
type CourseProgress struct {
	CourseID  uint             `json:"course_id"`
	Completed int              `json:"completed"`
	Total     int              `json:"total"`
	Percent   int              `json:"percent"`
	Modules   []ModuleProgress `json:"modules"`
}

// Done сообщает, что завершены все элементы курса
func (c CourseProgress) Done() bool {
	return c.Total > 0 && c.Completed == c.Total
}

// Percent возвращает round(100 * completed / total); пустой набор дает 0
func Percent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) * 100 / float64(total)))
}

// ModuleItems перечисляет элементы модуля: содержимое уроков, видео, документы,
// викторины модуля и итоговую викторину, если ее нет среди викторин модуля
func ModuleItems(m *entity.Module) []Item {
	var items []Item
	for _, lesson := range m.Lessons {
		for _, content := range lesson.Contents {
			items = append(items, Item{Kind: entity.ItemKindLessonContent, ID: content.ID})
		}
	}

	quizzes := make(map[uint]bool)
	for _, resource := range m.Resources() {
		switch r := resource.(type) {
		case entity.Document:
			items = append(items, Item{Kind: entity.ItemKindDocument, ID: r.ID})
		case entity.Video:
			items = append(items, Item{Kind: entity.ItemKindVideo, ID: r.ID})
		case entity.Quiz:
			quizzes[r.ID] = true
			items = append(items, Item{Kind: entity.ItemKindQuiz, ID: r.ID})
		}
	}

	if m.FinalQuizID != nil && !quizzes[*m.FinalQuizID] {
		items = append(items, Item{Kind: entity.ItemKindQuiz, ID: *m.FinalQuizID})
	}
	return items
}

// isDone учитывает, что содержимое урока типа quiz засчитывается и сданной викториной
func isDone(set Completions, m *entity.Module, item Item) bool {
	if set[item] {
		return true
	}
	if item.Kind != entity.ItemKindLessonContent {
		return false
	}
	for _, lesson := range m.Lessons {
		for _, content := range lesson.Contents {
			if content.ID == item.ID && content.Kind == entity.ContentKindQuiz && content.QuizID != nil {
				return set[Item{Kind: entity.ItemKindQuiz, ID: *content.QuizID}]
			}
		}
	}
	return false
}

// Module считает прогресс модуля
func Module(m *entity.Module, set Completions) ModuleProgress {
	items := ModuleItems(m)
	progress := ModuleProgress{
		ModuleID: m.ID,
		Title:    m.Title,
		Total:    len(items),
	}
	for _, item := range items {
		if isDone(set, m, item) {
			progress.Completed++
		}
	}
	progress.Percent = Percent(progress.Completed, progress.Total)
	return progress
}

// Course считает прогресс курса как среднее долей модулей, взвешенное
// по числу элементов. Модуль закрыт, пока не завершены все элементы
// ближайшего предыдущего непустого модуля; пустые модули ничего не закрывают.
func Course(c *entity.Course, set Completions) CourseProgress {
	result := CourseProgress{
		CourseID: c.ID,
		Modules:  make([]ModuleProgress, 0, len(c.Modules)),
	}

	var weighted float64
	blocked := false
	for i := range c.Modules {
		mp := Module(&c.Modules[i], set)
		mp.Locked = blocked
		if mp.Total > 0 {
			blocked = !mp.Done()
		}
		weighted += mp.Fraction() * float64(mp.Total)
		result.Completed += mp.Completed
		result.Total += mp.Total
		result.Modules = append(result.Modules, mp)
	}

	if result.Total > 0 {
		result.Percent = int(math.Round(100 * weighted / float64(result.Total)))
	}
	return result
}

// ModuleOf возвращает модуль курса, содержащий элемент
func ModuleOf(c *entity.Course, item Item) (*entity.Module, bool) {
	for i := range c.Modules {
		for _, candidate := range ModuleItems(&c.Modules[i]) {
			if candidate == item {
				return &c.Modules[i], true
			}
		}
	}
	return nil, false
}
