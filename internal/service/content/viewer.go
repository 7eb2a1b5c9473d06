// Package content описывает просмотрщики содержимого уроков и ресурсов модуля
// и правила, по которым просмотр считается завершенным.
package content

import (
	"fmt"

	"github.com/yourusername/lms-api/internal/domain/entity"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
)

// CompletionThreshold - доля прокрутки или просмотра, после которой элемент завершен
const CompletionThreshold = 0.9

// Signal - сигналы прогресса от клиента
type Signal struct {
	ScrollRatio   float64 `json:"scroll_ratio"`
	PlaybackRatio float64 `json:"playback_ratio"`
	Finished      bool    `json:"finished"`
	QuizPassed    bool    `json:"quiz_passed"`
}

// View - данные для отображения элемента
type View struct {
	Kind            string `json:"kind"`
	ID              uint   `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	Body            string `json:"body,omitempty"`
	EmbedURL        string `json:"embed_url,omitempty"`
	Provider        string `json:"provider,omitempty"`
	QuizID          *uint  `json:"quiz_id,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

// Viewer - просмотрщик одного вида содержимого урока
type Viewer interface {
	Kind() entity.ContentKind
	Render(c *entity.LessonContent) View
	IsComplete(s Signal) bool
}

func baseView(c *entity.LessonContent) View {
	return View{
		Kind:            string(c.Kind),
		ID:              c.ID,
		Title:           c.Title,
		Description:     c.Description,
		DurationMinutes: c.DurationMinutes,
	}
}

type textViewer struct{}

func (textViewer) Kind() entity.ContentKind { return entity.ContentKindText }

func (textViewer) Render(c *entity.LessonContent) View {
	v := baseView(c)
	v.Body = c.Body
	return v
}

func (textViewer) IsComplete(s Signal) bool {
	return s.Finished || s.ScrollRatio >= CompletionThreshold
}

type videoViewer struct{}

func (videoViewer) Kind() entity.ContentKind { return entity.ContentKindVideo }

func (videoViewer) Render(c *entity.LessonContent) View {
	v := baseView(c)
	src := ParseVideoURL(c.Body)
	v.EmbedURL = src.EmbedURL
	v.Provider = src.Provider
	return v
}

func (videoViewer) IsComplete(s Signal) bool {
	return s.PlaybackRatio >= CompletionThreshold
}

type pdfViewer struct{}

func (pdfViewer) Kind() entity.ContentKind { return entity.ContentKindPDF }

func (pdfViewer) Render(c *entity.LessonContent) View {
	v := baseView(c)
	v.EmbedURL = DocumentViewerURL(c.Body)
	return v
}

func (pdfViewer) IsComplete(s Signal) bool {
	return s.ScrollRatio >= CompletionThreshold
}

type quizViewer struct{}

func (quizViewer) Kind() entity.ContentKind { return entity.ContentKindQuiz }

func (quizViewer) Render(c *entity.LessonContent) View {
	v := baseView(c)
	v.QuizID = c.QuizID
	return v
}

func (quizViewer) IsComplete(s Signal) bool {
	return s.QuizPassed
}

type simulationViewer struct{}

func (simulationViewer) Kind() entity.ContentKind { return entity.ContentKindSimulation }

func (simulationViewer) Render(c *entity.LessonContent) View {
	v := baseView(c)
	v.Body = c.Body
	return v
}

func (simulationViewer) IsComplete(s Signal) bool {
	return s.Finished
}

// Registry выбирает просмотрщик по виду содержимого
type Registry struct {
	viewers map[entity.ContentKind]Viewer
}

// NewRegistry создает реестр из переданных просмотрщиков
func NewRegistry(viewers ...Viewer) *Registry {
	r := &Registry{viewers: make(map[entity.ContentKind]Viewer, len(viewers))}
	for _, v := range viewers {
		r.viewers[v.Kind()] = v
	}
	return r
}

// DefaultRegistry возвращает реестр со всеми видами содержимого
func DefaultRegistry() *Registry {
	return NewRegistry(textViewer{}, videoViewer{}, pdfViewer{}, quizViewer{}, simulationViewer{})
}

// For возвращает просмотрщик для вида содержимого
func (r *Registry) For(kind entity.ContentKind) (Viewer, error) {
	v, ok := r.viewers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: no viewer for content kind %q", apperrors.ErrValidation, kind)
	}
	return v, nil
}

// Render строит представление элемента урока
func (r *Registry) Render(c *entity.LessonContent) (View, error) {
	v, err := r.For(c.Kind)
	if err != nil {
		return View{}, err
	}
	return v.Render(c), nil
}

// IsComplete решает по сигналам, завершен ли элемент урока
func (r *Registry) IsComplete(c *entity.LessonContent, s Signal) (bool, error) {
	v, err := r.For(c.Kind)
	if err != nil {
		return false, err
	}
	return v.IsComplete(s), nil
}

// RenderResource строит представление ресурса модуля
func RenderResource(resource entity.Resource) View {
	switch r := resource.(type) {
	case entity.Document:
		return View{
			Kind:        string(entity.ResourceKindDocument),
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			EmbedURL:    DocumentViewerURL(r.URL),
			Provider:    r.Type,
		}
	case entity.Video:
		view := View{
			Kind:        string(entity.ResourceKindVideo),
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Provider:    r.Type,
			EmbedURL:    r.URL,
		}
		if r.Type != entity.VideoTypeFile {
			src := ParseVideoURL(r.URL)
			view.EmbedURL = src.EmbedURL
			view.Provider = src.Provider
		}
		return view
	case entity.Quiz:
		id := r.ID
		return View{
			Kind:        string(entity.ResourceKindQuiz),
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			QuizID:      &id,
		}
	}
	return View{}
}

// ResourceComplete решает по сигналам, завершен ли ресурс модуля
func ResourceComplete(resource entity.Resource, s Signal) bool {
	switch resource.(type) {
	case entity.Document:
		return s.ScrollRatio >= CompletionThreshold
	case entity.Video:
		return s.PlaybackRatio >= CompletionThreshold
	case entity.Quiz:
		return s.QuizPassed
	}
	return false
}
