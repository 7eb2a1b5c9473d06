package content

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

// Адреса oEmbed по умолчанию
const (
	DefaultYouTubeOEmbedURL = "https://www.youtube.com/oembed"
	DefaultVimeoOEmbedURL   = "https://vimeo.com/api/oembed.json"
)

// OEmbed - метаданные видео с площадки
type OEmbed struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
	Duration     int    `json:"duration"`
}

// OEmbedClient получает метаданные видео YouTube и Vimeo
type OEmbedClient struct {
	client     *resty.Client
	youtubeURL string
	vimeoURL   string
}

// NewOEmbedClient создает клиент oEmbed
func NewOEmbedClient(timeout time.Duration, youtubeURL, vimeoURL string) *OEmbedClient {
	if youtubeURL == "" {
		youtubeURL = DefaultYouTubeOEmbedURL
	}
	if vimeoURL == "" {
		vimeoURL = DefaultVimeoOEmbedURL
	}
	return &OEmbedClient{
		client:     resty.New().SetTimeout(timeout).SetRetryCount(1),
		youtubeURL: youtubeURL,
		vimeoURL:   vimeoURL,
	}
}

// Lookup запрашивает метаданные видео по ссылке
func (c *OEmbedClient) Lookup(ctx context.Context, videoURL string) (*OEmbed, error) {
	src := ParseVideoURL(videoURL)

	var endpoint string
	switch src.Provider {
	case entity.VideoTypeYouTube:
		endpoint = c.youtubeURL
	case entity.VideoTypeVimeo:
		endpoint = c.vimeoURL
	default:
		return nil, fmt.Errorf("oembed is not supported for %q", videoURL)
	}

	var meta OEmbed
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"url":    videoURL,
			"format": "json",
		}).
		SetResult(&meta).
		Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("oembed request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("oembed request failed with status %d", resp.StatusCode())
	}
	return &meta, nil
}

// Enrich определяет тип видео по ссылке и заполняет пустые название,
// превью и длительность. Ошибки площадки только логируются.
func (c *OEmbedClient) Enrich(ctx context.Context, video *entity.Video) {
	if video.Type == entity.VideoTypeFile {
		return
	}
	src := ParseVideoURL(video.URL)
	video.Type = src.Provider
	if src.Provider != entity.VideoTypeYouTube && src.Provider != entity.VideoTypeVimeo {
		return
	}
	if video.Title != "" && video.ThumbnailURL != "" {
		return
	}

	meta, err := c.Lookup(ctx, video.URL)
	if err != nil {
		log.Printf("[OEmbed] Не удалось получить метаданные для %s: %v", video.URL, err)
		return
	}
	if video.Title == "" {
		video.Title = meta.Title
	}
	if video.ThumbnailURL == "" {
		video.ThumbnailURL = meta.ThumbnailURL
	}
	if video.DurationSeconds == 0 {
		video.DurationSeconds = meta.Duration
	}
}
