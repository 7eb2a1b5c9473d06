package content

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

func TestParseVideoURL(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		provider string
		id       string
		embed    string
	}{
		{
			name:     "youtube watch",
			raw:      "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42",
			provider: entity.VideoTypeYouTube,
			id:       "dQw4w9WgXcQ",
			embed:    "https://www.youtube.com/embed/dQw4w9WgXcQ?enablejsapi=1&rel=0",
		},
		{
			name:     "youtu.be",
			raw:      "https://youtu.be/dQw4w9WgXcQ?si=abc",
			provider: entity.VideoTypeYouTube,
			id:       "dQw4w9WgXcQ",
			embed:    "https://www.youtube.com/embed/dQw4w9WgXcQ?enablejsapi=1&rel=0",
		},
		{
			name:     "youtube embed",
			raw:      "https://www.youtube.com/embed/abc123#start",
			provider: entity.VideoTypeYouTube,
			id:       "abc123",
			embed:    "https://www.youtube.com/embed/abc123?enablejsapi=1&rel=0",
		},
		{
			name:     "vimeo",
			raw:      "https://vimeo.com/76979871",
			provider: entity.VideoTypeVimeo,
			id:       "76979871",
			embed:    "https://player.vimeo.com/video/76979871",
		},
		{
			name:     "vimeo player",
			raw:      "https://player.vimeo.com/video/76979871?h=1",
			provider: entity.VideoTypeVimeo,
			id:       "76979871",
			embed:    "https://player.vimeo.com/video/76979871",
		},
		{
			name:     "прочая ссылка",
			raw:      "https://cdn.example.com/cours/intro.mp4",
			provider: entity.VideoTypeURL,
			embed:    "https://cdn.example.com/cours/intro.mp4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := ParseVideoURL(tt.raw)
			assert.Equal(t, tt.provider, src.Provider)
			assert.Equal(t, tt.id, src.VideoID)
			assert.Equal(t, tt.embed, src.EmbedURL)
		})
	}
}

func TestDocumentViewerURL(t *testing.T) {
	got := DocumentViewerURL("https://example.com/docs/iot guide.pdf?v=2")

	assert.Equal(t, "https://docs.google.com/viewer?url=https%3A%2F%2Fexample.com%2Fdocs%2Fiot+guide.pdf%3Fv%3D2&embedded=true", got)
}
